// Package output serializes scan records in the formats classscan supports.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Supported formats.
const (
	FormatJSON      = "json"
	FormatJSONLines = "jsonl"
	FormatYAML      = "yaml"
	FormatText      = "text"
	FormatNull      = "null"
)

var writers = map[string]func(io.Writer, []Record) error{
	FormatJSON:      writeJSON,
	FormatJSONLines: writeJSONLines,
	FormatYAML:      writeYAML,
	FormatText:      writeLines('\n'),
	FormatNull:      writeLines(0),
}

// ErrUnknownFormat is returned by Write for formats not listed in Formats.
var ErrUnknownFormat = errors.New("unknown output format")

// Record is one class file the compilation would produce.
type Record struct {
	FilePath       string `json:"filePath" yaml:"filePath"`
	ClassName      string `json:"className" yaml:"className"`
	PackageName    string `json:"packageName" yaml:"packageName"`
	SourceFilePath string `json:"sourceFilePath" yaml:"sourceFilePath"`
}

// Formats lists the supported format names, sorted.
func Formats() []string {
	names := make([]string, 0, len(writers))
	for name := range writers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Write serializes recs to w in the given format.
func Write(w io.Writer, format string, recs []Record) error {
	fn, ok := writers[format]
	if !ok {
		return errors.Wrapf(ErrUnknownFormat, "%q (supported: %s)", format, strings.Join(Formats(), ", "))
	}
	if recs == nil {
		recs = []Record{}
	}
	return errors.WithStack(fn(w, recs))
}

func writeJSON(w io.Writer, recs []Record) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(recs)
}

func writeJSONLines(w io.Writer, recs []Record) error {
	enc := json.NewEncoder(w)
	for _, r := range recs {
		if err := enc.Encode(r); err != nil {
			return err
		}
	}
	return nil
}

func writeYAML(w io.Writer, recs []Record) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(recs); err != nil {
		return err
	}
	return enc.Close()
}

// writeLines emits one class file path per record, terminated by term.
func writeLines(term byte) func(io.Writer, []Record) error {
	return func(w io.Writer, recs []Record) error {
		for _, r := range recs {
			if _, err := fmt.Fprintf(w, "%s%c", r.FilePath, term); err != nil {
				return err
			}
		}
		return nil
	}
}
