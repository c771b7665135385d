// Package mathexpr evaluates fully numeric infix expressions.
//
// Supported: decimal numbers, + - * / % ^, unary sign and parentheses.
// Precedence from low to high: + -, then * / %, then unary sign, then ^
// (right associative, so -2^2 is -4 and 2^3^2 is 512). % is the floating
// point remainder. The evaluator is a pure function; any input it cannot
// parse completely yields a *SyntaxError.
package mathexpr

import (
	"errors"
	"fmt"
	"math"
	"strconv"
)

// ErrEmpty is returned for input that contains only whitespace.
var ErrEmpty = errors.New("mathexpr: empty expression")

// SyntaxError describes where parsing failed.
type SyntaxError struct {
	Pos int    // byte offset into the input
	Msg string // what was expected or found
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("mathexpr: %s at offset %d", e.Msg, e.Pos)
}

// Eval parses and evaluates expr.
func Eval(expr string) (float64, error) {
	p := parser{input: expr}

	p.skipSpaces()
	if p.pos >= len(p.input) {
		return 0, ErrEmpty
	}

	val, err := p.parseExpr()
	if err != nil {
		return 0, err
	}
	p.skipSpaces()
	if p.pos < len(p.input) {
		return 0, p.errorf("unexpected %q", p.input[p.pos])
	}
	return val, nil
}

type parser struct {
	input string
	pos   int
}

func (p *parser) errorf(format string, args ...interface{}) *SyntaxError {
	return &SyntaxError{Pos: p.pos, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) skipSpaces() {
	for p.pos < len(p.input) {
		switch p.input[p.pos] {
		case ' ', '\t', '\n', '\r':
			p.pos++
		default:
			return
		}
	}
}

// peek returns the next non-space byte, or 0 at end of input.
func (p *parser) peek() byte {
	p.skipSpaces()
	if p.pos >= len(p.input) {
		return 0
	}
	return p.input[p.pos]
}

func (p *parser) parseExpr() (float64, error) {
	return p.parseAddSub()
}

func (p *parser) parseAddSub() (float64, error) {
	val, err := p.parseMulDiv()
	if err != nil {
		return 0, err
	}
	for {
		op := p.peek()
		if op != '+' && op != '-' {
			return val, nil
		}
		p.pos++
		right, err := p.parseMulDiv()
		if err != nil {
			return 0, err
		}
		if op == '+' {
			val += right
		} else {
			val -= right
		}
	}
}

func (p *parser) parseMulDiv() (float64, error) {
	val, err := p.parseUnary()
	if err != nil {
		return 0, err
	}
	for {
		op := p.peek()
		if op != '*' && op != '/' && op != '%' {
			return val, nil
		}
		p.pos++
		right, err := p.parseUnary()
		if err != nil {
			return 0, err
		}
		switch op {
		case '*':
			val *= right
		case '/':
			val /= right
		case '%':
			val = math.Mod(val, right)
		}
	}
}

func (p *parser) parseUnary() (float64, error) {
	switch p.peek() {
	case '+':
		p.pos++
		return p.parseUnary()
	case '-':
		p.pos++
		v, err := p.parseUnary()
		if err != nil {
			return 0, err
		}
		return -v, nil
	}
	return p.parsePower()
}

func (p *parser) parsePower() (float64, error) {
	base, err := p.parsePrimary()
	if err != nil {
		return 0, err
	}
	if p.peek() != '^' {
		return base, nil
	}
	p.pos++
	// Right associative; the exponent may carry its own sign.
	exp, err := p.parseUnary()
	if err != nil {
		return 0, err
	}
	return math.Pow(base, exp), nil
}

func (p *parser) parsePrimary() (float64, error) {
	ch := p.peek()
	switch {
	case ch == 0:
		return 0, p.errorf("unexpected end of expression")
	case ch == '(':
		p.pos++
		v, err := p.parseExpr()
		if err != nil {
			return 0, err
		}
		if p.peek() != ')' {
			return 0, p.errorf("missing closing parenthesis")
		}
		p.pos++
		return v, nil
	case isDigit(ch) || ch == '.':
		return p.parseNumber()
	default:
		return 0, p.errorf("unexpected %q", ch)
	}
}

func (p *parser) parseNumber() (float64, error) {
	start := p.pos
	seenDot := false
	for p.pos < len(p.input) {
		c := p.input[p.pos]
		if isDigit(c) {
			p.pos++
			continue
		}
		if c == '.' && !seenDot {
			seenDot = true
			p.pos++
			continue
		}
		break
	}
	text := p.input[start:p.pos]
	if text == "." {
		p.pos = start
		return 0, p.errorf("malformed number")
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		p.pos = start
		return 0, p.errorf("malformed number %q", text)
	}
	return v, nil
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}
