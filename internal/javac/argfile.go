package javac

import (
	"strings"
	"unicode"

	"github.com/pkg/errors"
)

// ReadFileFunc loads an @argfile. os.ReadFile in production.
type ReadFileFunc func(name string) ([]byte, error)

// Expand replaces every @file argument by the arguments stored in file.
// "@@x" stands for the literal argument "@x". Argfiles are not expanded
// recursively.
func Expand(args []string, readFile ReadFileFunc) ([]string, error) {
	out := make([]string, 0, len(args))
	for _, arg := range args {
		if len(arg) < 2 || arg[0] != '@' {
			out = append(out, arg)
			continue
		}
		name := arg[1:]
		if name[0] == '@' {
			out = append(out, name)
			continue
		}
		data, err := readFile(name)
		if err != nil {
			return nil, errors.Wrapf(err, "reading argument file %s", name)
		}
		out = append(out, tokenize(string(data))...)
	}
	return out, nil
}

// tokenize splits argfile content: whitespace separates arguments, single
// or double quotes group them, '#' starts a comment outside quotes.
func tokenize(s string) []string {
	var (
		toks  []string
		cur   strings.Builder
		inTok bool
		quote rune
	)
	flush := func() {
		if inTok {
			toks = append(toks, cur.String())
			cur.Reset()
			inTok = false
		}
	}

	rs := []rune(s)
	for i := 0; i < len(rs); i++ {
		r := rs[i]
		switch {
		case quote != 0:
			switch {
			case r == quote:
				quote = 0
			case r == '\\' && i+1 < len(rs):
				i++
				cur.WriteRune(unescape(rs[i]))
			default:
				cur.WriteRune(r)
			}
		case r == '"' || r == '\'':
			quote = r
			inTok = true
		case r == '#' && !inTok:
			for i < len(rs) && rs[i] != '\n' {
				i++
			}
		case unicode.IsSpace(r):
			flush()
		default:
			cur.WriteRune(r)
			inTok = true
		}
	}
	flush()
	return toks
}

func unescape(r rune) rune {
	switch r {
	case 'n':
		return '\n'
	case 't':
		return '\t'
	case 'r':
		return '\r'
	case 'f':
		return '\f'
	}
	return r
}
