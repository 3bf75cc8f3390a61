// Package javasrc finds the classes a Java compilation unit declares,
// named the way javac names their class files.
package javasrc

import (
	"path/filepath"
	"strconv"
	"strings"
)

// Unit is what a compilation unit contributes to the compiler output.
type Unit struct {
	Package string
	// PackageAnnotated is set when the package declaration carries annotations.
	PackageAnnotated bool
	// Module is set for module declarations (module-info.java).
	Module bool
	// Implicit is set for compact source files: top-level methods or
	// fields make the file an implicitly declared class named after it.
	Implicit bool
	// Classes are binary names relative to Package, in source order:
	// Outer, Outer$Member, Outer$1Local, Outer$1.
	Classes []string
}

type scopeKind int

const (
	scopeCode scopeKind = iota
	scopeType
)

type scope struct {
	kind scopeKind
	// class is the binary name of the innermost enclosing class.
	class string
	// enumConstants is true inside an enum body until the constant list ends.
	enumConstants bool
	parens        int
}

type finder struct {
	toks    []token
	unit    *Unit
	stack   []*scope
	bodies  map[int]pendingBody // '{' index -> declared type
	anons   map[int]bool        // '{' index -> anonymous class body
	counter map[string]int      // enclosing$name -> last local index
	annot   bool                // annotation seen at top level
	// base is the number of scopes that belong to the file itself: 1 when
	// the implicit class of a compact source file encloses everything.
	base     int
	implicit int // line of the first top-level member body, 0 if none
}

type pendingBody struct {
	name string
	enum bool
}

// Scan parses src and returns the classes it declares. Compact source
// files are rejected since their class is named after the file; use
// ScanFile for those.
func Scan(src []byte) (*Unit, error) { return ScanFile("", src) }

// ScanFile is Scan for the source file at path. A compact source file
// declares an implicit class named after path, which encloses every other
// class of the file.
func ScanFile(path string, src []byte) (*Unit, error) {
	toks, err := lex(src)
	if err != nil {
		return nil, err
	}
	f := newFinder(toks)
	if err := f.run(); err != nil {
		return nil, err
	}
	if f.implicit == 0 {
		return f.unit, nil
	}

	name := strings.TrimSuffix(filepath.Base(path), ".java")
	if path == "" || !isIdentifier(name) {
		return nil, &SyntaxError{Line: f.implicit, Msg: "class, interface, enum, or record expected"}
	}
	f = newFinder(toks)
	f.unit.Implicit = true
	f.unit.Classes = []string{name}
	f.stack = []*scope{{kind: scopeType, class: name}}
	f.base = 1
	if err := f.run(); err != nil {
		return nil, err
	}
	return f.unit, nil
}

func newFinder(toks []token) *finder {
	return &finder{
		toks:    toks,
		unit:    &Unit{},
		bodies:  make(map[int]pendingBody),
		anons:   make(map[int]bool),
		counter: make(map[string]int),
	}
}

// top returns the innermost scope, nil at the top level of an ordinary file.
func (f *finder) top() *scope {
	if len(f.stack) == 0 {
		return nil
	}
	return f.stack[len(f.stack)-1]
}

func (f *finder) tok(i int) token {
	if i < 0 || i >= len(f.toks) {
		return token{kind: tokLiteral, line: f.lastLine()}
	}
	return f.toks[i]
}

func (f *finder) lastLine() int {
	if len(f.toks) == 0 {
		return 1
	}
	return f.toks[len(f.toks)-1].line
}

func (f *finder) run() error {
	for i := 0; i < len(f.toks); i++ {
		t := f.toks[i]
		sc := f.top()

		if t.kind == tokLiteral {
			continue
		}

		switch t.text {
		case "{":
			f.open(i)
			continue
		case "}":
			if len(f.stack) <= f.base {
				return &SyntaxError{Line: t.line, Msg: "class, interface, enum, or record expected"}
			}
			f.stack = f.stack[:len(f.stack)-1]
			continue
		case "(":
			if sc != nil {
				sc.parens++
			}
			continue
		case ")":
			if sc != nil && sc.parens > 0 {
				sc.parens--
			}
			continue
		case ";":
			if sc != nil && sc.enumConstants && sc.parens == 0 {
				sc.enumConstants = false
			}
			continue
		}

		if t.kind != tokIdent {
			if t.text == "@" && sc == nil && f.unit.Package == "" && !f.tok(i+1).is("interface") {
				f.annot = true
			}
			continue
		}

		switch {
		case sc == nil && t.text == "package":
			j, name := f.qualifiedName(i + 1)
			f.unit.Package = name
			f.unit.PackageAnnotated = f.annot
			i = j
		case sc == nil && t.text == "module" && f.tok(i+1).kind == tokIdent && !f.tok(i-1).is("import"):
			f.unit.Module = true
			f.unit.Classes = append(f.unit.Classes, "module-info")
		case t.text == "new":
			if k, ok := f.anonymousBody(i); ok {
				f.anons[k] = true
			}
		case f.isTypeKeyword(i):
			if err := f.declare(i); err != nil {
				return err
			}
		}
	}

	if len(f.stack) > f.base {
		return &SyntaxError{Line: f.lastLine(), Msg: "reached end of file while parsing"}
	}
	return nil
}

// open pushes the scope for the '{' at index i.
func (f *finder) open(i int) {
	parent := f.top()
	enclosing := ""
	if parent != nil {
		enclosing = parent.class
	}

	if b, ok := f.bodies[i]; ok {
		f.stack = append(f.stack, &scope{kind: scopeType, class: b.name, enumConstants: b.enum})
		return
	}

	anon := f.anons[i] || (parent != nil && parent.enumConstants && parent.parens == 0)
	if anon {
		name := f.localName(enclosing, "")
		f.unit.Classes = append(f.unit.Classes, name)
		f.stack = append(f.stack, &scope{kind: scopeType, class: name})
		return
	}

	if parent == nil && !f.unit.Module && f.implicit == 0 {
		f.implicit = f.toks[i].line
	}
	f.stack = append(f.stack, &scope{kind: scopeCode, class: enclosing})
}

func (f *finder) isTypeKeyword(i int) bool {
	t := f.toks[i]
	if f.tok(i - 1).is(".") {
		return false
	}
	switch t.text {
	case "class", "interface", "enum":
		return true
	case "record":
		// contextual keyword: record Name( or record Name<
		next := f.tok(i + 2)
		return f.tok(i+1).kind == tokIdent && (next.is("(") || next.is("<"))
	}
	return false
}

// declare records the type declared by the keyword at index i and marks
// the '{' that opens its body.
func (f *finder) declare(i int) error {
	kw := f.toks[i]
	nameTok := f.tok(i + 1)
	if nameTok.kind != tokIdent {
		return &SyntaxError{Line: kw.line, Msg: "<identifier> expected"}
	}

	var name string
	sc := f.top()
	switch {
	case sc == nil:
		name = nameTok.text
	case sc.kind == scopeType:
		name = sc.class + "$" + nameTok.text
	default:
		name = f.localName(sc.class, nameTok.text)
	}
	f.unit.Classes = append(f.unit.Classes, name)

	depth := 0
	for j := i + 2; j < len(f.toks); j++ {
		t := f.toks[j]
		switch {
		case t.is("("):
			depth++
		case t.is(")"):
			depth--
		case t.is("{") && depth == 0:
			f.bodies[j] = pendingBody{name: name, enum: kw.text == "enum"}
			return nil
		case t.is(";") && depth == 0, t.is("}") && depth == 0:
			return &SyntaxError{Line: t.line, Msg: "'{' expected"}
		}
	}
	return &SyntaxError{Line: f.lastLine(), Msg: "reached end of file while parsing"}
}

// localName returns the binary name of a local (name != "") or anonymous
// class, numbered per enclosing class the way javac does.
func (f *finder) localName(enclosing, name string) string {
	key := enclosing + "$" + name
	f.counter[key]++
	return enclosing + "$" + strconv.Itoa(f.counter[key]) + name
}

// anonymousBody reports the index of the '{' opening an anonymous class body
// for the instance creation expression starting at the "new" token i.
func (f *finder) anonymousBody(i int) (int, bool) {
	j := i + 1
	for j < len(f.toks) {
		t := f.toks[j]
		switch {
		case t.is("@"):
			j = f.skipAnnotation(j)
		case t.is("<"):
			j = f.skipBalanced(j, "<", ">")
		case t.kind == tokIdent || t.is("."):
			j++
		case t.is("("):
			end := f.skipBalanced(j, "(", ")")
			if f.tok(end).is("{") {
				return end, true
			}
			return 0, false
		default:
			// array creation or something we do not understand
			return 0, false
		}
	}
	return 0, false
}

// skipAnnotation returns the index after the annotation starting at '@'.
func (f *finder) skipAnnotation(j int) int {
	j, _ = f.qualifiedName(j + 1)
	if f.tok(j).is("(") {
		return f.skipBalanced(j, "(", ")")
	}
	return j
}

// skipBalanced returns the index after the token closing the open token at j.
func (f *finder) skipBalanced(j int, open, close string) int {
	depth := 0
	for ; j < len(f.toks); j++ {
		switch {
		case f.toks[j].is(open):
			depth++
		case f.toks[j].is(close):
			depth--
			if depth == 0 {
				return j + 1
			}
		}
	}
	return j
}

// qualifiedName reads a dotted identifier starting at j and returns the
// index after it.
func (f *finder) qualifiedName(j int) (int, string) {
	var parts []string
	for j < len(f.toks) && f.toks[j].kind == tokIdent {
		parts = append(parts, f.toks[j].text)
		j++
		if !f.tok(j).is(".") || f.tok(j+1).kind != tokIdent {
			break
		}
		j++
	}
	return j, strings.Join(parts, ".")
}

func isIdentifier(s string) bool {
	for i, r := range s {
		if i == 0 && !isIdentStart(r) || !isIdentPart(r) {
			return false
		}
	}
	return s != ""
}
