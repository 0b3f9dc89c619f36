// expr.go implements the arithmetic language behind {{#expr:}} and {{#ifexpr:}}.
package wikitext

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// ExprPrecision is the number of decimal places non-integral results are
// rounded to.
const ExprPrecision = 4

var (
	ErrDivisionByZero = errors.New("division by zero")
	ErrBadExpression  = errors.New("malformed expression")
)

// Node is a parsed arithmetic expression.
type Node interface {
	Eval() (float64, error)
}

// Number is a numeric literal or constant.
type Number struct {
	Value float64
}

func (n Number) Eval() (float64, error) { return n.Value, nil }

// BinaryOp is one of + - * / div mod ^ round.
type BinaryOp struct {
	Op       string
	LHS, RHS Node
}

func (b BinaryOp) Eval() (float64, error) {
	l, err := b.LHS.Eval()
	if err != nil {
		return 0, err
	}
	r, err := b.RHS.Eval()
	if err != nil {
		return 0, err
	}
	switch b.Op {
	case "+":
		return l + r, nil
	case "-":
		return l - r, nil
	case "*":
		return l * r, nil
	case "/", "div":
		if r == 0 {
			return 0, ErrDivisionByZero
		}
		return l / r, nil
	case "mod":
		li, ri := math.Trunc(l), math.Trunc(r)
		if ri == 0 {
			return 0, ErrDivisionByZero
		}
		if math.Abs(li) > math.MaxInt64/2 || math.Abs(ri) > math.MaxInt64/2 {
			return 0, ErrBadExpression
		}
		return float64(int64(li) % int64(ri)), nil
	case "^":
		return math.Pow(l, r), nil
	case "round":
		p := math.Pow(10, math.Trunc(r))
		return math.Round(l*p) / p, nil
	}
	return 0, fmt.Errorf("%w: unknown operator %q", ErrBadExpression, b.Op)
}

// UnaryMinus negates its operand.
type UnaryMinus struct {
	X Node
}

func (u UnaryMinus) Eval() (float64, error) {
	v, err := u.X.Eval()
	return -v, err
}

// Comparison yields 1 or 0.
type Comparison struct {
	Op       string
	LHS, RHS Node
}

func (c Comparison) Eval() (float64, error) {
	l, err := c.LHS.Eval()
	if err != nil {
		return 0, err
	}
	r, err := c.RHS.Eval()
	if err != nil {
		return 0, err
	}
	var ok bool
	switch c.Op {
	case "=":
		ok = l == r
	case "!=", "<>":
		ok = l != r
	case "<":
		ok = l < r
	case ">":
		ok = l > r
	case "<=":
		ok = l <= r
	case ">=":
		ok = l >= r
	default:
		return 0, fmt.Errorf("%w: unknown comparison %q", ErrBadExpression, c.Op)
	}
	return boolNumber(ok), nil
}

// Logical is "and" or "or" over the truthiness of its operands.
type Logical struct {
	Op       string
	LHS, RHS Node
}

func (l Logical) Eval() (float64, error) {
	a, err := l.LHS.Eval()
	if err != nil {
		return 0, err
	}
	b, err := l.RHS.Eval()
	if err != nil {
		return 0, err
	}
	if l.Op == "and" {
		return boolNumber(a != 0 && b != 0), nil
	}
	return boolNumber(a != 0 || b != 0), nil
}

func boolNumber(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// EvalExpr parses and evaluates s, returning the formatted result.
// An empty expression evaluates to "".
func EvalExpr(s string) (string, error) {
	if strings.TrimSpace(s) == "" {
		return "", nil
	}
	node, err := ParseExpr(s)
	if err != nil {
		return "", err
	}
	v, err := node.Eval()
	if err != nil {
		return "", err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "", ErrBadExpression
	}
	return FormatNumber(v), nil
}

// FormatNumber renders v the way #expr does: integers without a decimal
// point, everything else rounded to ExprPrecision places.
func FormatNumber(v float64) string {
	p := math.Pow(10, ExprPrecision)
	r := math.Round(v*p) / p
	if r == 0 {
		return "0"
	}
	if r == math.Trunc(r) && math.Abs(r) < 1e15 {
		return strconv.FormatInt(int64(r), 10)
	}
	return strconv.FormatFloat(r, 'f', -1, 64)
}

type exprToken struct {
	kind  byte // 'n' number, 'o' operator or word, '(' and ')', 0 at end
	text  string
	value float64
}

func lexExpr(s string) ([]exprToken, error) {
	var toks []exprToken
	rs := []rune(s)
	for i := 0; i < len(rs); {
		r := rs[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case r == '(' || r == ')':
			toks = append(toks, exprToken{kind: byte(r), text: string(r)})
			i++
		case unicode.IsDigit(r) || r == '.':
			j := i
			for j < len(rs) && (unicode.IsDigit(rs[j]) || rs[j] == '.') {
				j++
			}
			if j < len(rs) && (rs[j] == 'e' || rs[j] == 'E') {
				k := j + 1
				if k < len(rs) && (rs[k] == '+' || rs[k] == '-') {
					k++
				}
				if k < len(rs) && unicode.IsDigit(rs[k]) {
					for k < len(rs) && unicode.IsDigit(rs[k]) {
						k++
					}
					j = k
				}
			}
			v, err := strconv.ParseFloat(string(rs[i:j]), 64)
			if err != nil {
				return nil, fmt.Errorf("%w: bad number %q", ErrBadExpression, string(rs[i:j]))
			}
			toks = append(toks, exprToken{kind: 'n', value: v})
			i = j
		case unicode.IsLetter(r):
			j := i
			for j < len(rs) && unicode.IsLetter(rs[j]) {
				j++
			}
			word := strings.ToLower(string(rs[i:j]))
			switch word {
			case "pi":
				toks = append(toks, exprToken{kind: 'n', value: math.Pi})
			case "e":
				toks = append(toks, exprToken{kind: 'n', value: math.E})
			case "mod", "div", "and", "or", "not", "round":
				toks = append(toks, exprToken{kind: 'o', text: word})
			default:
				return nil, fmt.Errorf("%w: unknown word %q", ErrBadExpression, word)
			}
			i = j
		default:
			op := string(r)
			if i+1 < len(rs) {
				switch two := string(rs[i : i+2]); two {
				case "!=", "<>", "<=", ">=":
					op = two
				}
			}
			switch op {
			case "+", "-", "*", "/", "^", "=", "<", ">", "!=", "<>", "<=", ">=":
			case "−":
				op = "-"
			case "×":
				op = "*"
			case "÷":
				op = "/"
			default:
				return nil, fmt.Errorf("%w: unexpected %q", ErrBadExpression, op)
			}
			toks = append(toks, exprToken{kind: 'o', text: op})
			if len(op) == 2 {
				i += 2
			} else {
				i++
			}
		}
	}
	return toks, nil
}

// ParseExpr parses s into an expression tree.
func ParseExpr(s string) (Node, error) {
	toks, err := lexExpr(s)
	if err != nil {
		return nil, err
	}
	p := &exprParser{toks: toks}
	node, err := p.logical()
	if err != nil {
		return nil, err
	}
	if p.peek().kind != 0 {
		return nil, fmt.Errorf("%w: unexpected %q", ErrBadExpression, p.peek().text)
	}
	return node, nil
}

type exprParser struct {
	toks []exprToken
	pos  int
}

func (p *exprParser) peek() exprToken {
	if p.pos >= len(p.toks) {
		return exprToken{}
	}
	return p.toks[p.pos]
}

func (p *exprParser) acceptOp(ops ...string) (string, bool) {
	t := p.peek()
	if t.kind != 'o' {
		return "", false
	}
	for _, op := range ops {
		if t.text == op {
			p.pos++
			return op, true
		}
	}
	return "", false
}

func (p *exprParser) logical() (Node, error) {
	lhs, err := p.comparison()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := p.acceptOp("and", "or")
		if !ok {
			return lhs, nil
		}
		rhs, err := p.comparison()
		if err != nil {
			return nil, err
		}
		lhs = Logical{Op: op, LHS: lhs, RHS: rhs}
	}
}

func (p *exprParser) comparison() (Node, error) {
	lhs, err := p.rounding()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := p.acceptOp("=", "!=", "<>", "<", ">", "<=", ">=")
		if !ok {
			return lhs, nil
		}
		rhs, err := p.rounding()
		if err != nil {
			return nil, err
		}
		lhs = Comparison{Op: op, LHS: lhs, RHS: rhs}
	}
}

func (p *exprParser) rounding() (Node, error) {
	lhs, err := p.additive()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := p.acceptOp("round")
		if !ok {
			return lhs, nil
		}
		rhs, err := p.additive()
		if err != nil {
			return nil, err
		}
		lhs = BinaryOp{Op: op, LHS: lhs, RHS: rhs}
	}
}

func (p *exprParser) additive() (Node, error) {
	lhs, err := p.multiplicative()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := p.acceptOp("+", "-")
		if !ok {
			return lhs, nil
		}
		rhs, err := p.multiplicative()
		if err != nil {
			return nil, err
		}
		lhs = BinaryOp{Op: op, LHS: lhs, RHS: rhs}
	}
}

func (p *exprParser) multiplicative() (Node, error) {
	lhs, err := p.unary()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := p.acceptOp("*", "/", "div", "mod")
		if !ok {
			return lhs, nil
		}
		rhs, err := p.unary()
		if err != nil {
			return nil, err
		}
		lhs = BinaryOp{Op: op, LHS: lhs, RHS: rhs}
	}
}

func (p *exprParser) unary() (Node, error) {
	if op, ok := p.acceptOp("-", "+", "not"); ok {
		x, err := p.unary()
		if err != nil {
			return nil, err
		}
		switch op {
		case "-":
			return UnaryMinus{X: x}, nil
		case "not":
			return Comparison{Op: "=", LHS: x, RHS: Number{}}, nil
		}
		return x, nil
	}
	return p.power()
}

func (p *exprParser) power() (Node, error) {
	base, err := p.primary()
	if err != nil {
		return nil, err
	}
	if _, ok := p.acceptOp("^"); ok {
		exp, err := p.unary()
		if err != nil {
			return nil, err
		}
		return BinaryOp{Op: "^", LHS: base, RHS: exp}, nil
	}
	return base, nil
}

func (p *exprParser) primary() (Node, error) {
	t := p.peek()
	switch t.kind {
	case 'n':
		p.pos++
		return Number{Value: t.value}, nil
	case '(':
		p.pos++
		node, err := p.logical()
		if err != nil {
			return nil, err
		}
		if p.peek().kind != ')' {
			return nil, fmt.Errorf("%w: missing )", ErrBadExpression)
		}
		p.pos++
		return node, nil
	case 0:
		return nil, fmt.Errorf("%w: unexpected end", ErrBadExpression)
	}
	return nil, fmt.Errorf("%w: unexpected %q", ErrBadExpression, t.text)
}
