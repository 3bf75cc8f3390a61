// Package scan implements the compiler scanner: it reads a javac command
// line and predicts the class files the compilation would write.
package scan

import (
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/encoding"

	"github.com/a2y-d5l/classscan/internal/config"
	"github.com/a2y-d5l/classscan/internal/javac"
	"github.com/a2y-d5l/classscan/internal/javasrc"
	"github.com/a2y-d5l/classscan/internal/output"
	"github.com/a2y-d5l/classscan/internal/util"
)

const (
	packageInfo = "package-info"
	// pkgInfoAlways makes javac emit package-info.class for every package-info.java.
	pkgInfoAlways = "-Xpkginfo:always"
)

// Scanner accumulates the records of one Run until Write.
type Scanner struct {
	cfg     *config.Config
	format  string
	diag    io.Writer
	log     *slog.Logger
	records []output.Record
}

// New returns a Scanner writing compiler diagnostics and debug logs to stderr.
func New(cfg *config.Config, stderr io.Writer) *Scanner {
	level := slog.LevelInfo
	if cfg.Verbose {
		level = slog.LevelDebug
	}
	return &Scanner{
		cfg:    cfg,
		format: cfg.OutputFormat,
		diag:   stderr,
		log:    slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level})),
	}
}

// SetOutputFormat selects the serialization used by Write. Unknown formats
// are reported by Write.
func (s *Scanner) SetOutputFormat(format string) { s.format = format }

// source is the per-file outcome of a scan.
type source struct {
	path    string
	unit    *javasrc.Unit
	missing bool
	syntax  *javasrc.SyntaxError
}

// Run scans the compiler arguments and returns the javac result code the
// compilation would have. Only I/O failures are returned as errors.
func (s *Scanner) Run(args []string) (int, error) {
	s.records = nil

	expanded, err := javac.Expand(args, os.ReadFile)
	if err != nil {
		return 0, err
	}

	inv, err := javac.Parse(expanded)
	if err != nil {
		var uerr *javac.UsageError
		if errors.As(err, &uerr) {
			s.errorf("error: %s", uerr.Msg)
			return javac.ResultCmdErr, nil
		}
		return 0, err
	}

	var enc encoding.Encoding
	if inv.Encoding != "" {
		if enc, err = javac.Charset(inv.Encoding); err != nil {
			s.errorf("error: unsupported encoding: %s", inv.Encoding)
			return javac.ResultCmdErr, nil
		}
	}

	s.log.Debug("scanning", "version", config.Version, "sources", len(inv.Sources), "outputDir", inv.OutputDir, "maxProcs", s.cfg.MaxProcs)

	sources := make([]source, len(inv.Sources))
	sem := util.NewSemaphore(s.cfg.MaxProcs)
	var eg errgroup.Group
	for i, path := range inv.Sources {
		sources[i].path = path
		if err := sem.Go(&eg, func() error { return s.scanSource(&sources[i], enc) }); err != nil {
			_ = eg.Wait()
			return 0, err
		}
	}
	if err := eg.Wait(); err != nil {
		return 0, err
	}

	return s.collect(inv, sources), nil
}

// scanSource fills src. Unreadable files other than missing ones are I/O errors.
func (s *Scanner) scanSource(src *source, enc encoding.Encoding) error {
	data, err := os.ReadFile(src.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			src.missing = true
			return nil
		}
		return errors.Wrapf(err, "reading source %s", src.path)
	}
	if enc != nil {
		if data, err = enc.NewDecoder().Bytes(data); err != nil {
			return errors.Wrapf(err, "decoding source %s", src.path)
		}
	}

	unit, err := javasrc.ScanFile(src.path, data)
	if err != nil {
		var serr *javasrc.SyntaxError
		if errors.As(err, &serr) {
			src.syntax = serr
			return nil
		}
		return errors.Wrapf(err, "scanning source %s", src.path)
	}
	src.unit = unit
	s.log.Debug("scanned source", "path", src.path, "package", unit.Package, "classes", len(unit.Classes))
	return nil
}

// collect reports diagnostics in source order and builds the records.
func (s *Scanner) collect(inv *javac.Invocation, sources []source) int {
	var missing, failed int
	for _, src := range sources {
		if src.missing {
			s.errorf("error: file not found: %s", src.path)
			missing++
		}
	}
	if missing > 0 {
		return javac.ResultCmdErr
	}

	always := slices.Contains(inv.Flags, pkgInfoAlways)
	for _, src := range sources {
		if src.syntax != nil {
			s.errorf("%s:%d: error: %s", src.path, src.syntax.Line, src.syntax.Msg)
			failed++
			continue
		}
		classes := src.unit.Classes
		if isPackageInfo(src.path) && (src.unit.PackageAnnotated || always) {
			classes = []string{packageInfo}
		}
		for _, name := range classes {
			s.records = append(s.records, record(inv.OutputDir, src.path, src.unit.Package, name))
		}
	}

	if failed > 0 {
		noun := "error"
		if failed > 1 {
			noun = "errors"
		}
		s.errorf("%d %s", failed, noun)
		return javac.ResultError
	}
	return javac.ResultOK
}

// Write serializes the records of the last Run.
func (s *Scanner) Write(w io.Writer) error {
	return output.Write(w, s.format, s.records)
}

func (s *Scanner) errorf(format string, args ...any) {
	fmt.Fprintf(s.diag, format+"\n", args...)
}

func isPackageInfo(path string) bool {
	return filepath.Base(path) == packageInfo+".java"
}

// record locates the class file of name. Without -d javac writes it next
// to its source.
func record(outDir, srcPath, pkg, name string) output.Record {
	dir := filepath.Dir(srcPath)
	if outDir != "" {
		dir = filepath.Join(outDir, filepath.FromSlash(strings.ReplaceAll(pkg, ".", "/")))
	}
	qualified := name
	if pkg != "" {
		qualified = pkg + "." + name
	}
	return output.Record{
		FilePath:       filepath.Join(dir, name+".class"),
		ClassName:      qualified,
		PackageName:    pkg,
		SourceFilePath: srcPath,
	}
}
