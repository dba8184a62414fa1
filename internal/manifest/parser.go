package manifest

import (
	"errors"
	"strconv"
	"strings"
)

// ErrNoSetupCall is returned when the source contains no setup(...) call.
var ErrNoSetupCall = errors.New("no setup() call found")

// nonLiteral stands in for an argument whose value is only known at runtime.
type nonLiteral struct{}

type parser struct {
	toks []token
	i    int
	call token // the "(" of setup(
}

func (p *parser) peek() token { return p.toks[p.i] }

func (p *parser) peekAt(off int) token {
	if p.i+off >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.i+off]
}

func (p *parser) take() token {
	t := p.toks[p.i]
	if t.kind != tokEOF {
		p.i++
	}
	return t
}

func (p *parser) errorf(t token, msg string) error {
	return &SyntaxError{Line: t.line, Col: t.col, Msg: msg}
}

// findSetup positions the parser just past the opening parenthesis of the
// first setup( call that is not a function definition.
func (p *parser) findSetup() bool {
	for j := 0; j+1 < len(p.toks); j++ {
		t := p.toks[j]
		if !t.is(tokIdent, "setup") || !p.toks[j+1].is(tokPunct, "(") {
			continue
		}
		if j > 0 && p.toks[j-1].is(tokIdent, "def") {
			continue
		}
		p.call = p.toks[j+1]
		p.i = j + 2
		return true
	}
	return false
}

// keywordArgs reads the call's arguments up to the closing parenthesis.
// Positional arguments are discarded; **kwargs is reported under "**".
func (p *parser) keywordArgs() (map[string]any, []string, error) {
	args := map[string]any{}
	var order []string
	for {
		t := p.peek()
		switch {
		case t.kind == tokEOF:
			return nil, nil, p.errorf(p.call, "setup( is never closed")
		case t.is(tokPunct, ")"):
			p.take()
			return args, order, nil
		case t.is(tokPunct, ","):
			p.take()
			continue
		case t.is(tokPunct, "**"):
			p.take()
			if err := p.skipExpr(false); err != nil {
				return nil, nil, err
			}
			args["**"] = nonLiteral{}
			order = append(order, "**")
			continue
		}

		if t.kind == tokIdent && p.peekAt(1).is(tokPunct, "=") {
			p.take()
			p.take()
			v, err := p.expr(false)
			if err != nil {
				return nil, nil, err
			}
			if _, dup := args[t.text]; !dup {
				order = append(order, t.text)
			}
			args[t.text] = v
			continue
		}
		if _, err := p.expr(false); err != nil {
			return nil, nil, err
		}
	}
}

// expr parses one argument-level expression. Anything beyond a plain literal
// is skipped and returned as nonLiteral. A dict key stops at ':'.
func (p *parser) expr(key bool) (any, error) {
	v, err := p.atom()
	if err != nil {
		return nil, err
	}
	if p.atExprEnd(key) {
		return v, nil
	}
	if err := p.skipExpr(key); err != nil {
		return nil, err
	}
	return nonLiteral{}, nil
}

func (p *parser) atExprEnd(key bool) bool {
	t := p.peek()
	if t.kind == tokEOF {
		return true
	}
	if t.kind != tokPunct {
		return false
	}
	switch t.text {
	case ",", ")", "]", "}":
		return true
	case ":":
		return key
	}
	return false
}

func (p *parser) atom() (any, error) {
	t := p.take()
	switch t.kind {
	case tokEOF:
		return nil, p.errorf(t, "unexpected end of file")
	case tokString, tokFString:
		var b strings.Builder
		literal := t.kind == tokString
		b.WriteString(t.text)
		for k := p.peek().kind; k == tokString || k == tokFString; k = p.peek().kind {
			s := p.take()
			literal = literal && s.kind == tokString
			b.WriteString(s.text)
		}
		if !literal {
			return nonLiteral{}, nil
		}
		return b.String(), nil
	case tokNumber:
		if n, err := strconv.ParseInt(t.text, 0, 64); err == nil {
			return n, nil
		}
		if _, err := strconv.ParseFloat(t.text, 64); err == nil {
			return number(t.text), nil
		}
		return nonLiteral{}, nil
	case tokIdent:
		switch t.text {
		case "True":
			return true, nil
		case "False":
			return false, nil
		case "None":
			return nil, nil
		}
		if err := p.skipTrailers(); err != nil {
			return nil, err
		}
		return nonLiteral{}, nil
	case tokPunct:
		switch t.text {
		case "[":
			return p.sequence(t, "]")
		case "(":
			return p.sequence(t, ")")
		case "{":
			return p.dict(t)
		case "-", "+":
			v, err := p.atom()
			if err != nil {
				return nil, err
			}
			if n, ok := v.(int64); ok && t.text == "-" {
				return -n, nil
			}
			return v, nil
		}
	}
	return nonLiteral{}, nil
}

// number keeps a float literal's source text, so "0.1" is not reformatted.
type number string

// skipTrailers consumes attribute access, calls and subscripts after a name.
func (p *parser) skipTrailers() error {
	for {
		t := p.peek()
		switch {
		case t.is(tokPunct, "."):
			p.take()
			p.take()
		case t.is(tokPunct, "("):
			p.take()
			if err := p.skipBalanced(t, ")"); err != nil {
				return err
			}
		case t.is(tokPunct, "["):
			p.take()
			if err := p.skipBalanced(t, "]"); err != nil {
				return err
			}
		default:
			return nil
		}
	}
}

func (p *parser) sequence(open token, closer string) (any, error) {
	var items []any
	literal, comma := true, false
	for {
		t := p.peek()
		if t.kind == tokEOF {
			return nil, p.errorf(open, "unclosed "+open.text)
		}
		if t.is(tokPunct, closer) {
			p.take()
			break
		}
		if t.is(tokPunct, ",") {
			p.take()
			comma = true
			continue
		}
		v, err := p.expr(false)
		if err != nil {
			return nil, err
		}
		if _, ok := v.(nonLiteral); ok {
			literal = false
		}
		items = append(items, v)
	}
	if !literal {
		return nonLiteral{}, nil
	}
	// ("a" "b") is a parenthesized expression, not a tuple.
	if closer == ")" && !comma && len(items) == 1 {
		return items[0], nil
	}
	if items == nil {
		items = []any{}
	}
	return items, nil
}

func (p *parser) dict(open token) (any, error) {
	out := map[string]any{}
	literal := true
	for {
		t := p.peek()
		if t.kind == tokEOF {
			return nil, p.errorf(open, "unclosed {")
		}
		if t.is(tokPunct, "}") {
			p.take()
			break
		}
		if t.is(tokPunct, ",") {
			p.take()
			continue
		}
		if t.is(tokPunct, "**") {
			p.take()
			if err := p.skipExpr(false); err != nil {
				return nil, err
			}
			literal = false
			continue
		}
		k, err := p.expr(true)
		if err != nil {
			return nil, err
		}
		if !p.peek().is(tokPunct, ":") {
			// a set literal or a comprehension
			if err := p.skipExpr(false); err != nil {
				return nil, err
			}
			literal = false
			continue
		}
		p.take()
		v, err := p.expr(false)
		if err != nil {
			return nil, err
		}
		key, ok := k.(string)
		if !ok {
			literal = false
			continue
		}
		if _, ok := v.(nonLiteral); ok {
			literal = false
		}
		out[key] = v
	}
	if !literal {
		return nonLiteral{}, nil
	}
	return out, nil
}

// skipExpr consumes tokens up to the next ',' or closing bracket at depth zero.
func (p *parser) skipExpr(key bool) error {
	for !p.atExprEnd(key) {
		t := p.take()
		if t.kind != tokPunct {
			continue
		}
		switch t.text {
		case "(":
			if err := p.skipBalanced(t, ")"); err != nil {
				return err
			}
		case "[":
			if err := p.skipBalanced(t, "]"); err != nil {
				return err
			}
		case "{":
			if err := p.skipBalanced(t, "}"); err != nil {
				return err
			}
		}
	}
	return nil
}

// skipBalanced consumes tokens through the closer matching open.
func (p *parser) skipBalanced(open token, closer string) error {
	stack := []string{closer}
	for len(stack) > 0 {
		t := p.take()
		if t.kind == tokEOF {
			return p.errorf(open, "unclosed "+open.text)
		}
		if t.kind != tokPunct {
			continue
		}
		switch t.text {
		case "(":
			stack = append(stack, ")")
		case "[":
			stack = append(stack, "]")
		case "{":
			stack = append(stack, "}")
		case ")", "]", "}":
			if t.text != stack[len(stack)-1] {
				return p.errorf(t, "mismatched "+t.text)
			}
			stack = stack[:len(stack)-1]
		}
	}
	return nil
}
