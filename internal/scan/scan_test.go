package scan

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a2y-d5l/classscan/internal/config"
	"github.com/a2y-d5l/classscan/internal/javac"
	"github.com/a2y-d5l/classscan/internal/output"
)

func writeFile(t *testing.T, path, content string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func newScanner(stderr *bytes.Buffer) *Scanner {
	cfg := config.Default()
	cfg.MaxProcs = 2
	return New(cfg, stderr)
}

func decode(t *testing.T, data []byte) []output.Record {
	t.Helper()
	var recs []output.Record
	require.NoError(t, json.Unmarshal(data, &recs))
	return recs
}

func TestRun_OutputDir(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, filepath.Join(dir, "src/com/acme/A.java"),
		"package com.acme;\npublic class A { Runnable r = new Runnable() { public void run() {} }; }\n")
	b := writeFile(t, filepath.Join(dir, "src/com/acme/util/B.java"),
		"package com.acme.util;\nclass B { static class C {} }\n")
	out := filepath.Join(dir, "classes")

	var stderr, stdout bytes.Buffer
	s := newScanner(&stderr)
	code, err := s.Run([]string{"-d", out, "-g", a, b})
	require.NoError(t, err)
	assert.Equal(t, javac.ResultOK, code)
	assert.Empty(t, stderr.String())

	require.NoError(t, s.Write(&stdout))
	assert.Equal(t, []output.Record{
		{FilePath: filepath.Join(out, "com/acme/A.class"), ClassName: "com.acme.A", PackageName: "com.acme", SourceFilePath: a},
		{FilePath: filepath.Join(out, "com/acme/A$1.class"), ClassName: "com.acme.A$1", PackageName: "com.acme", SourceFilePath: a},
		{FilePath: filepath.Join(out, "com/acme/util/B.class"), ClassName: "com.acme.util.B", PackageName: "com.acme.util", SourceFilePath: b},
		{FilePath: filepath.Join(out, "com/acme/util/B$C.class"), ClassName: "com.acme.util.B$C", PackageName: "com.acme.util", SourceFilePath: b},
	}, decode(t, stdout.Bytes()))
}

func TestRun_NoOutputDirUsesSourceDir(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, filepath.Join(dir, "x/Main.java"), "package whatever;\nclass Main {}\n")

	var stderr, stdout bytes.Buffer
	s := newScanner(&stderr)
	s.SetOutputFormat(output.FormatText)
	code, err := s.Run([]string{a})
	require.NoError(t, err)
	assert.Equal(t, javac.ResultOK, code)

	require.NoError(t, s.Write(&stdout))
	assert.Equal(t, filepath.Join(dir, "x/Main.class")+"\n", stdout.String())
}

func TestRun_ArgFile(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, filepath.Join(dir, "A.java"), "class A {}\n")
	argfile := writeFile(t, filepath.Join(dir, "sources.txt"), "# sources\n\""+a+"\"\n")

	var stderr, stdout bytes.Buffer
	s := newScanner(&stderr)
	s.SetOutputFormat(output.FormatText)
	code, err := s.Run([]string{"-d", filepath.Join(dir, "out"), "@" + argfile})
	require.NoError(t, err)
	assert.Equal(t, javac.ResultOK, code)
	require.NoError(t, s.Write(&stdout))
	assert.Equal(t, filepath.Join(dir, "out/A.class")+"\n", stdout.String())
}

func TestRun_MissingArgFileIsIOError(t *testing.T) {
	var stderr bytes.Buffer
	_, err := newScanner(&stderr).Run([]string{"@" + filepath.Join(t.TempDir(), "nope.txt")})
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestRun_UsageErrors(t *testing.T) {
	for _, args := range [][]string{
		nil,
		{"-d"},
		{"A.java", "notes.txt"},
		{"-encoding", "klingon", "A.java"},
	} {
		var stderr, stdout bytes.Buffer
		s := newScanner(&stderr)
		code, err := s.Run(args)
		require.NoError(t, err, "args %v", args)
		assert.Equal(t, javac.ResultCmdErr, code, "args %v", args)
		assert.Contains(t, stderr.String(), "error: ", "args %v", args)

		require.NoError(t, s.Write(&stdout))
		assert.Equal(t, "[]\n", stdout.String())
	}
}

func TestRun_MissingSource(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, filepath.Join(dir, "A.java"), "class A {}\n")
	missing := filepath.Join(dir, "Missing.java")

	var stderr, stdout bytes.Buffer
	s := newScanner(&stderr)
	code, err := s.Run([]string{a, missing})
	require.NoError(t, err)
	assert.Equal(t, javac.ResultCmdErr, code)
	assert.Equal(t, "error: file not found: "+missing+"\n", stderr.String())

	require.NoError(t, s.Write(&stdout))
	assert.Empty(t, decode(t, stdout.Bytes()))
}

func TestRun_UnreadableSourceIsIOError(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "Dir.java"), 0o755))

	var stderr bytes.Buffer
	_, err := newScanner(&stderr).Run([]string{filepath.Join(dir, "Dir.java")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading source")
}

func TestRun_SyntaxError(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, filepath.Join(dir, "Good.java"), "class Good {}\n")
	bad := writeFile(t, filepath.Join(dir, "Bad.java"), "class Bad {\n  void m() {\n}\n")

	var stderr, stdout bytes.Buffer
	s := newScanner(&stderr)
	s.SetOutputFormat(output.FormatText)
	code, err := s.Run([]string{good, bad})
	require.NoError(t, err)
	assert.Equal(t, javac.ResultError, code)
	assert.Equal(t, bad+":3: error: reached end of file while parsing\n1 error\n", stderr.String())

	require.NoError(t, s.Write(&stdout))
	assert.Equal(t, filepath.Join(dir, "Good.class")+"\n", stdout.String())
}

func TestRun_PackageAndModuleInfo(t *testing.T) {
	dir := t.TempDir()
	annotated := writeFile(t, filepath.Join(dir, "a/package-info.java"), "@Deprecated\npackage a;\n")
	plain := writeFile(t, filepath.Join(dir, "b/package-info.java"), "package b;\n")
	module := writeFile(t, filepath.Join(dir, "module-info.java"), "module m { exports a; }\n")
	out := filepath.Join(dir, "out")

	var stderr, stdout bytes.Buffer
	s := newScanner(&stderr)
	s.SetOutputFormat(output.FormatText)
	code, err := s.Run([]string{"-d", out, annotated, plain, module})
	require.NoError(t, err)
	assert.Equal(t, javac.ResultOK, code)
	require.NoError(t, s.Write(&stdout))
	assert.Equal(t,
		filepath.Join(out, "a/package-info.class")+"\n"+
			filepath.Join(out, "module-info.class")+"\n",
		stdout.String())

	stdout.Reset()
	code, err = s.Run([]string{"-d", out, "-Xpkginfo:always", plain})
	require.NoError(t, err)
	assert.Equal(t, javac.ResultOK, code)
	require.NoError(t, s.Write(&stdout))
	assert.Equal(t, filepath.Join(out, "b/package-info.class")+"\n", stdout.String())
}

func TestRun_Encoding(t *testing.T) {
	dir := t.TempDir()
	// "Café" in windows-1252.
	src := []byte("package p;\nclass Caf\xe9 {}\n")
	path := filepath.Join(dir, "Cafe.java")
	require.NoError(t, os.WriteFile(path, src, 0o644))

	var stderr, stdout bytes.Buffer
	s := newScanner(&stderr)
	code, err := s.Run([]string{"-encoding", "windows-1252", "-d", dir, path})
	require.NoError(t, err)
	assert.Equal(t, javac.ResultOK, code)
	require.NoError(t, s.Write(&stdout))

	recs := decode(t, stdout.Bytes())
	require.Len(t, recs, 1)
	assert.Equal(t, "p.Café", recs[0].ClassName)
}

func TestWrite_UnknownFormat(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, filepath.Join(dir, "A.java"), "class A {}\n")

	var stderr, stdout bytes.Buffer
	s := newScanner(&stderr)
	s.SetOutputFormat("xml1")
	_, err := s.Run([]string{a})
	require.NoError(t, err)

	err = s.Write(&stdout)
	assert.ErrorIs(t, err, output.ErrUnknownFormat)
	assert.Empty(t, stdout.String())
}

func TestRun_Deterministic(t *testing.T) {
	dir := t.TempDir()
	var args []string
	for _, name := range []string{"A", "B", "C", "D", "E", "F", "G", "H"} {
		args = append(args, writeFile(t, filepath.Join(dir, name+".java"),
			"class "+name+" { Object o = new Object() {}; class In {} }\n"))
	}

	run := func() (int, string) {
		var stderr, stdout bytes.Buffer
		s := newScanner(&stderr)
		code, err := s.Run(args)
		require.NoError(t, err)
		require.NoError(t, s.Write(&stdout))
		return code, stdout.String()
	}

	code1, out1 := run()
	code2, out2 := run()
	assert.Equal(t, code1, code2)
	assert.Equal(t, out1, out2)
	assert.Len(t, decode(t, []byte(out1)), 24)
}

func TestNew_VerboseLogsToStderr(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, filepath.Join(dir, "A.java"), "class A {}\n")

	var stderr bytes.Buffer
	cfg := config.Default()
	cfg.Verbose = true
	_, err := New(cfg, &stderr).Run([]string{a})
	require.NoError(t, err)
	assert.Contains(t, stderr.String(), "level=DEBUG")
	assert.Contains(t, stderr.String(), "scanned source")
}

func TestRun_CompactSourceFile(t *testing.T) {
	dir := t.TempDir()
	hello := writeFile(t, filepath.Join(dir, "Hello.java"),
		"void main() {\n    System.out.println(\"hi\");\n}\n\nclass Helper {}\n")
	out := filepath.Join(dir, "out")

	var stderr, stdout bytes.Buffer
	s := newScanner(&stderr)
	code, err := s.Run([]string{"-d", out, hello})
	require.NoError(t, err)
	assert.Equal(t, javac.ResultOK, code)
	assert.Empty(t, stderr.String())

	require.NoError(t, s.Write(&stdout))
	assert.Equal(t, []output.Record{
		{FilePath: filepath.Join(out, "Hello.class"), ClassName: "Hello", SourceFilePath: hello},
		{FilePath: filepath.Join(out, "Hello$Helper.class"), ClassName: "Hello$Helper", SourceFilePath: hello},
	}, decode(t, stdout.Bytes()))
}

func TestRun_JavaCharsetNames(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Cafe.java")
	require.NoError(t, os.WriteFile(path, []byte("package p;\nclass Caf\xe9 {}\n"), 0o644))

	for _, name := range []string{"ISO-8859-1", "ISO8859_1", "latin1", "Cp1252"} {
		var stderr, stdout bytes.Buffer
		s := newScanner(&stderr)
		code, err := s.Run([]string{"-encoding", name, "-d", dir, path})
		require.NoError(t, err, name)
		assert.Equal(t, javac.ResultOK, code, name)
		assert.Empty(t, stderr.String(), name)

		require.NoError(t, s.Write(&stdout))
		recs := decode(t, stdout.Bytes())
		require.Len(t, recs, 1, name)
		assert.Equal(t, "p.Café", recs[0].ClassName, name)
	}
}
