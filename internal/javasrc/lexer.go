package javasrc

import (
	"fmt"
	"unicode"
)

type tokenKind int

const (
	tokIdent tokenKind = iota
	tokPunct
	tokLiteral
)

type token struct {
	kind tokenKind
	text string
	line int
}

func (t token) is(text string) bool { return t.kind != tokLiteral && t.text == text }

// SyntaxError is a lexical or structural error at a source line.
type SyntaxError struct {
	Line int
	Msg  string
}

func (e *SyntaxError) Error() string { return fmt.Sprintf("%d: %s", e.Line, e.Msg) }

// lex splits src into identifiers, single-rune punctuation and literals.
// Comments and whitespace are dropped; literal contents are not kept.
func lex(src []byte) ([]token, error) {
	rs := []rune(string(src))
	var toks []token
	line := 1

	for i := 0; i < len(rs); {
		r := rs[i]
		switch {
		case r == '\n':
			line++
			i++
		case unicode.IsSpace(r):
			i++
		case r == '/' && i+1 < len(rs) && rs[i+1] == '/':
			for i < len(rs) && rs[i] != '\n' {
				i++
			}
		case r == '/' && i+1 < len(rs) && rs[i+1] == '*':
			start := line
			i += 2
			for {
				if i+1 >= len(rs) {
					return nil, &SyntaxError{Line: start, Msg: "unclosed comment"}
				}
				if rs[i] == '*' && rs[i+1] == '/' {
					i += 2
					break
				}
				if rs[i] == '\n' {
					line++
				}
				i++
			}
		case r == '"' && i+2 < len(rs) && rs[i+1] == '"' && rs[i+2] == '"':
			start := line
			i += 3
			for {
				if i+2 >= len(rs) {
					return nil, &SyntaxError{Line: start, Msg: "unclosed text block"}
				}
				if rs[i] == '\\' {
					if rs[i+1] == '\n' {
						line++
					}
					i += 2
					continue
				}
				if rs[i] == '"' && rs[i+1] == '"' && rs[i+2] == '"' {
					i += 3
					break
				}
				if rs[i] == '\n' {
					line++
				}
				i++
			}
			toks = append(toks, token{kind: tokLiteral, line: start})
		case r == '"' || r == '\'':
			j, ok := skipQuoted(rs, i)
			if !ok {
				what := "string"
				if r == '\'' {
					what = "character"
				}
				return nil, &SyntaxError{Line: line, Msg: "unclosed " + what + " literal"}
			}
			i = j
			toks = append(toks, token{kind: tokLiteral, line: line})
		case isIdentStart(r):
			j := i + 1
			for j < len(rs) && isIdentPart(rs[j]) {
				j++
			}
			toks = append(toks, token{kind: tokIdent, text: string(rs[i:j]), line: line})
			i = j
		case unicode.IsDigit(r) || (r == '.' && i+1 < len(rs) && unicode.IsDigit(rs[i+1])):
			j := i + 1
			for j < len(rs) && (isIdentPart(rs[j]) || rs[j] == '.' ||
				((rs[j] == '+' || rs[j] == '-') && (rs[j-1] == 'e' || rs[j-1] == 'E' || rs[j-1] == 'p' || rs[j-1] == 'P'))) {
				j++
			}
			toks = append(toks, token{kind: tokLiteral, line: line})
			i = j
		default:
			toks = append(toks, token{kind: tokPunct, text: string(r), line: line})
			i++
		}
	}
	return toks, nil
}

// skipQuoted returns the index just past the literal opened at rs[i].
func skipQuoted(rs []rune, i int) (int, bool) {
	q := rs[i]
	for j := i + 1; j < len(rs); j++ {
		switch rs[j] {
		case '\\':
			j++
		case '\n':
			return 0, false
		case q:
			return j + 1, true
		}
	}
	return 0, false
}

func isIdentStart(r rune) bool {
	return r == '_' || r == '$' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return isIdentStart(r) || unicode.IsDigit(r)
}
