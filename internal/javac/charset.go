package javac

import (
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/ianaindex"
)

// javaCharsets maps Java's historical charset names to IANA names.
var javaCharsets = map[string]string{
	"UTF8":       "UTF-8",
	"ASCII":      "US-ASCII",
	"ISO8859_1":  "ISO-8859-1",
	"ISO8859_2":  "ISO-8859-2",
	"ISO8859_5":  "ISO-8859-5",
	"ISO8859_7":  "ISO-8859-7",
	"ISO8859_9":  "ISO-8859-9",
	"ISO8859_15": "ISO-8859-15",
	"CP1250":     "windows-1250",
	"CP1251":     "windows-1251",
	"CP1252":     "windows-1252",
	"CP1253":     "windows-1253",
	"CP1254":     "windows-1254",
	"CP1257":     "windows-1257",
	"KOI8_R":     "KOI8-R",
	"SJIS":       "Shift_JIS",
	"MS932":      "Shift_JIS",
	"EUC_JP":     "EUC-JP",
	"EUC_KR":     "EUC-KR",
}

// Charset resolves an -encoding value. Java names are tried first, then
// IANA names and aliases, then WHATWG labels.
func Charset(name string) (encoding.Encoding, error) {
	if iana, ok := javaCharsets[strings.ToUpper(name)]; ok {
		name = iana
	}
	if enc, err := ianaindex.IANA.Encoding(name); err == nil && enc != nil {
		return enc, nil
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, errors.Errorf("unsupported encoding: %s", name)
	}
	return enc, nil
}
