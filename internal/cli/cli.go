// Package cli is the classscan entry point: it triages the command line,
// drives a Scanner and maps the outcome to a process exit code.
package cli

import (
	"fmt"
	"io"

	"github.com/a2y-d5l/classscan/internal/config"
)

// Exit codes owned by the entry point. Any other code comes from Scanner.Run.
const (
	ExitFailure = 1
	ExitUsage   = 2
)

const usage = "usage: classscan [--output-format <format>] [compiler-argument ...]"

// Scanner is the collaborator that does the actual work.
type Scanner interface {
	SetOutputFormat(format string)
	Run(args []string) (int, error)
	Write(w io.Writer) error
}

// Run executes one invocation and returns the exit code.
func Run(args []string, stdout, stderr io.Writer, s Scanner) int {
	a, err := config.ParseArgs(args)
	if err != nil {
		fmt.Fprintf(stderr, "classscan: %v\n%s\n", err, usage)
		return ExitUsage
	}

	if a.HasOutputFormat {
		s.SetOutputFormat(a.OutputFormat)
	}

	code, err := s.Run(a.CompilerArgs)
	if err != nil {
		fmt.Fprintf(stderr, "%+v\n", err)
		return ExitFailure
	}

	if err := s.Write(stdout); err != nil {
		fmt.Fprintf(stderr, "%+v\n", err)
		return ExitFailure
	}
	return code
}
