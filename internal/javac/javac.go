// Package javac models the subset of the javac command line needed to
// predict compiler outputs.
package javac

import (
	"fmt"
	"strings"
	"unicode"
)

// Result codes returned by javac.
const (
	ResultOK       = 0
	ResultError    = 1
	ResultCmdErr   = 2
	ResultSysErr   = 3
	ResultAbnormal = 4
)

// UsageError is an invalid compiler command line. javac reports these with
// ResultCmdErr.
type UsageError struct {
	Msg string
}

func (e *UsageError) Error() string { return e.Msg }

// Invocation is a parsed compiler command line.
type Invocation struct {
	// OutputDir is the -d directory. Empty means class files are written
	// next to their sources.
	OutputDir       string
	SourceOutputDir string
	HeaderDir       string
	Encoding        string
	// Options holds every other option that takes a value, last one wins.
	Options map[string]string
	Flags   []string
	Sources []string
}

// options taking a separate value. Output directories are handled apart.
var valueOptions = setOf(
	"-cp", "-classpath", "--class-path",
	"-sourcepath", "--source-path",
	"-bootclasspath", "--boot-class-path",
	"-encoding",
	"-source", "--source",
	"-target", "--target",
	"--release",
	"-processorpath", "--processor-path",
	"-processor",
	"--processor-module-path",
	"-p", "--module-path",
	"--module-source-path",
	"--upgrade-module-path",
	"--system",
	"--add-modules",
	"--limit-modules",
	"--add-exports",
	"--add-reads",
	"--patch-module",
	"-m", "--module",
	"--module-version",
	"--default-module-for-created-files",
	"-extdirs",
	"-endorseddirs",
	"-Xmaxerrs",
	"-Xmaxwarns",
)

var dirOptions = setOf("-d", "-s", "-h")

func setOf(names ...string) map[string]bool {
	m := make(map[string]bool, len(names))
	for _, n := range names {
		m[n] = true
	}
	return m
}

// Parse interprets an already expanded argument list.
func Parse(args []string) (*Invocation, error) {
	inv := &Invocation{Options: make(map[string]string)}

	for i := 0; i < len(args); i++ {
		arg := args[i]

		if strings.HasPrefix(arg, "--") && strings.Contains(arg, "=") {
			name, value, _ := strings.Cut(arg, "=")
			if valueOptions[name] {
				inv.set(name, value)
				continue
			}
		}

		switch {
		case dirOptions[arg] || valueOptions[arg]:
			if i+1 >= len(args) {
				return nil, &UsageError{Msg: fmt.Sprintf("%s requires an argument", arg)}
			}
			i++
			inv.set(arg, args[i])
		case strings.HasPrefix(arg, "-"):
			inv.Flags = append(inv.Flags, arg)
		case strings.HasSuffix(arg, ".java"):
			inv.Sources = append(inv.Sources, arg)
		case isClassName(arg):
			return nil, &UsageError{Msg: fmt.Sprintf(
				"Class names, '%s', are only accepted if annotation processing is explicitly requested", arg)}
		default:
			return nil, &UsageError{Msg: "invalid flag: " + arg}
		}
	}

	if len(inv.Sources) == 0 {
		return nil, &UsageError{Msg: "no source files"}
	}
	return inv, nil
}

func (inv *Invocation) set(name, value string) {
	switch name {
	case "-d":
		inv.OutputDir = value
	case "-s":
		inv.SourceOutputDir = value
	case "-h":
		inv.HeaderDir = value
	case "-encoding":
		inv.Encoding = value
	default:
		inv.Options[name] = value
	}
}

// isClassName reports whether s is a (possibly qualified) Java identifier.
func isClassName(s string) bool {
	if s == "" {
		return false
	}
	for _, part := range strings.Split(s, ".") {
		if part == "" {
			return false
		}
		for i, r := range part {
			if r == '_' || r == '$' || unicode.IsLetter(r) {
				continue
			}
			if i > 0 && unicode.IsDigit(r) {
				continue
			}
			return false
		}
	}
	return true
}
