package manifest

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokString
	tokFString // f-strings have no static value
	tokNumber
	tokPunct
)

type token struct {
	kind tokenKind
	text string // identifier, punctuation, number text, or decoded string
	line int
	col  int
}

func (t token) is(kind tokenKind, text string) bool { return t.kind == kind && t.text == text }

// SyntaxError locates a lexing or bracket error in the manifest source.
type SyntaxError struct {
	Line int
	Col  int
	Msg  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("setup.py:%d:%d: %s", e.Line, e.Col, e.Msg)
}

// Two-character operators lexed as a single token.
var pairs = []string{"**", "==", "!=", "<=", ">=", "->", "//", "<<", ">>", ":="}

type lexer struct {
	src  string
	pos  int
	line int
	col  int
}

func lex(src []byte) ([]token, error) {
	l := &lexer{src: string(src), line: 1, col: 1}
	var out []token
	for {
		t, err := l.next()
		if err != nil {
			return nil, err
		}
		out = append(out, t)
		if t.kind == tokEOF {
			return out, nil
		}
	}
}

func (l *lexer) peekRune(off int) rune {
	if l.pos+off >= len(l.src) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.src[l.pos+off:])
	return r
}

func (l *lexer) advance(n int) {
	for i := 0; i < n && l.pos < len(l.src); {
		r, size := utf8.DecodeRuneInString(l.src[l.pos:])
		l.pos += size
		i += size
		if r == '\n' {
			l.line++
			l.col = 1
		} else {
			l.col++
		}
	}
}

func (l *lexer) errorf(line, col int, format string, args ...any) error {
	return &SyntaxError{Line: line, Col: col, Msg: fmt.Sprintf(format, args...)}
}

func (l *lexer) next() (token, error) {
	for l.pos < len(l.src) {
		r := l.peekRune(0)
		switch {
		case r == '#':
			for l.pos < len(l.src) && l.peekRune(0) != '\n' {
				l.advance(1)
			}
		case r == '\\' && l.peekRune(1) == '\n':
			l.advance(2)
		case unicode.IsSpace(r):
			l.advance(utf8.RuneLen(r))
		default:
			return l.scan()
		}
	}
	return token{kind: tokEOF, line: l.line, col: l.col}, nil
}

func (l *lexer) scan() (token, error) {
	line, col := l.line, l.col
	r := l.peekRune(0)

	switch {
	case r == '\'' || r == '"':
		return l.scanString("", line, col)
	case r == '_' || unicode.IsLetter(r):
		start := l.pos
		for l.pos < len(l.src) {
			c := l.peekRune(0)
			if c != '_' && !unicode.IsLetter(c) && !unicode.IsDigit(c) {
				break
			}
			l.advance(utf8.RuneLen(c))
		}
		word := l.src[start:l.pos]
		if q := l.peekRune(0); (q == '\'' || q == '"') && isStringPrefix(word) {
			return l.scanString(strings.ToLower(word), line, col)
		}
		return token{kind: tokIdent, text: word, line: line, col: col}, nil
	case unicode.IsDigit(r) || (r == '.' && unicode.IsDigit(l.peekRune(1))):
		start := l.pos
		for l.pos < len(l.src) {
			c := l.peekRune(0)
			if !unicode.IsDigit(c) && !unicode.IsLetter(c) && c != '.' && c != '_' {
				break
			}
			l.advance(utf8.RuneLen(c))
		}
		return token{kind: tokNumber, text: l.src[start:l.pos], line: line, col: col}, nil
	}

	for _, p := range pairs {
		if strings.HasPrefix(l.src[l.pos:], p) {
			l.advance(len(p))
			return token{kind: tokPunct, text: p, line: line, col: col}, nil
		}
	}
	size := utf8.RuneLen(r)
	l.advance(size)
	return token{kind: tokPunct, text: string(r), line: line, col: col}, nil
}

func isStringPrefix(w string) bool {
	switch strings.ToLower(w) {
	case "r", "u", "b", "f", "br", "rb", "fr", "rf":
		return true
	}
	return false
}

func (l *lexer) scanString(prefix string, line, col int) (token, error) {
	raw := strings.ContainsRune(prefix, 'r')
	kind := tokString
	if strings.ContainsRune(prefix, 'f') {
		kind = tokFString
	}

	q := l.src[l.pos]
	delim := string(q)
	if strings.HasPrefix(l.src[l.pos:], strings.Repeat(delim, 3)) {
		delim = strings.Repeat(delim, 3)
	}
	l.advance(len(delim))

	var b strings.Builder
	for {
		if l.pos >= len(l.src) {
			return token{}, l.errorf(line, col, "unterminated string literal")
		}
		if strings.HasPrefix(l.src[l.pos:], delim) {
			l.advance(len(delim))
			return token{kind: kind, text: b.String(), line: line, col: col}, nil
		}
		c := l.src[l.pos]
		if c == '\n' && len(delim) == 1 {
			return token{}, l.errorf(line, col, "unterminated string literal")
		}
		if c == '\\' && l.pos+1 < len(l.src) {
			esc := l.src[l.pos+1]
			l.advance(2)
			if raw {
				b.WriteByte('\\')
				b.WriteByte(esc)
				continue
			}
			switch esc {
			case '\n':
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case 'r':
				b.WriteByte('\r')
			case '\\', '\'', '"':
				b.WriteByte(esc)
			default:
				b.WriteByte('\\')
				b.WriteByte(esc)
			}
			continue
		}
		r, size := utf8.DecodeRuneInString(l.src[l.pos:])
		b.WriteRune(r)
		l.advance(size)
	}
}
