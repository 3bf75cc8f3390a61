package config

import (
	"errors"
	"fmt"
	"runtime"
	"strconv"
	"strings"
)

// Version is injected at build-time with
// -ldflags="-X github.com/a2y-d5l/classscan/internal/config.Version=$(git describe --tags --always --dirty)"
var Version = "dev"

// OutputFormatFlag is the only option recognized in front of the compiler arguments.
const OutputFormatFlag = "--output-format"

// Environment knobs. The argument list belongs to javac, so runtime tuning
// cannot be expressed as flags.
const (
	EnvMaxProcs     = "CLASSSCAN_MAX_PROCS"
	EnvVerbose      = "CLASSSCAN_VERBOSE"
	EnvOutputFormat = "CLASSSCAN_OUTPUT_FORMAT"
)

// DefaultOutputFormat is used when neither the flag nor the environment sets one.
const DefaultOutputFormat = "json"

var (
	// ErrInvalidArgument marks usage errors in the command line.
	ErrInvalidArgument = errors.New("invalid argument")

	ErrMissingOutputFormat = fmt.Errorf("%w: missing required value for %s", ErrInvalidArgument, OutputFormatFlag)
)

// Args is the triaged command line.
type Args struct {
	OutputFormat    string
	HasOutputFormat bool
	CompilerArgs    []string
}

// ParseArgs extracts a leading --output-format pair. Everything else is
// passed through verbatim as compiler arguments. args is not modified.
func ParseArgs(args []string) (*Args, error) {
	if len(args) == 0 || args[0] != OutputFormatFlag {
		return &Args{CompilerArgs: append([]string{}, args...)}, nil
	}
	if len(args) < 2 {
		return nil, ErrMissingOutputFormat
	}
	return &Args{
		OutputFormat:    args[1],
		HasOutputFormat: true,
		CompilerArgs:    append([]string{}, args[2:]...),
	}, nil
}

// Config captures the scanner's runtime knobs.
type Config struct {
	MaxProcs     int
	Verbose      bool
	OutputFormat string
}

// Default returns the configuration used when no environment is set.
func Default() *Config {
	return &Config{
		MaxProcs:     runtime.NumCPU() * 4,
		OutputFormat: DefaultOutputFormat,
	}
}

// FromEnv populates Config from environment variables looked up via getenv
// (normally os.Getenv).
func FromEnv(getenv func(string) string) (*Config, error) {
	cfg := Default()

	if v := strings.TrimSpace(getenv(EnvMaxProcs)); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("%s must be a positive integer, got %q", EnvMaxProcs, v)
		}
		cfg.MaxProcs = n
	}

	if v := strings.TrimSpace(getenv(EnvVerbose)); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("%s must be a boolean, got %q", EnvVerbose, v)
		}
		cfg.Verbose = b
	}

	if v := strings.TrimSpace(getenv(EnvOutputFormat)); v != "" {
		cfg.OutputFormat = v
	}

	return cfg, nil
}
