// Package expr implements a small, safe expression language used for
// conditional variables in document schemas. Expressions are parsed once and
// evaluated against plain data maps; there is no access to anything outside
// the provided variables.
//
// The grammar supports ternary conditionals, boolean logic, equality and
// ordering comparisons, arithmetic, string concatenation, unary negation,
// parentheses, and literals (numbers, single or double quoted strings, true,
// false, nil).
package expr

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/JimmyYuu29/cartarev"
)

// Expr is a parsed expression ready for evaluation.
type Expr struct {
	src  string
	root node
}

// Parse compiles an expression. Returns EINVALID on syntax errors.
func Parse(src string) (*Expr, error) {
	tokens, err := lex(src)
	if err != nil {
		return nil, err
	}
	p := &parser{src: src, tokens: tokens}
	root, err := p.parseTernary()
	if err != nil {
		return nil, err
	}
	if !p.atEnd() {
		return nil, cartarev.Errorf(cartarev.EINVALID, "expression %q: unexpected %q", src, p.peek().text)
	}
	return &Expr{src: src, root: root}, nil
}

// Eval evaluates the expression against vars. Missing variables evaluate to
// nil. Numeric values of type int, int64 and float64 are all treated as
// float64.
func (e *Expr) Eval(vars map[string]any) (any, error) {
	v, err := e.root.eval(vars)
	if err != nil {
		return nil, cartarev.Errorf(cartarev.EINVALID, "expression %q: %s", e.src, err)
	}
	return v, nil
}

// EvalBool evaluates the expression and reduces the result to a boolean
// using Truthy.
func (e *Expr) EvalBool(vars map[string]any) (bool, error) {
	v, err := e.Eval(vars)
	if err != nil {
		return false, err
	}
	return Truthy(v), nil
}

// String returns the source form of the expression.
func (e *Expr) String() string { return e.src }

// Truthy reports whether a value counts as true: booleans as themselves,
// numbers when non-zero, strings when non-empty, nil as false.
func Truthy(v any) bool {
	switch x := normalize(v).(type) {
	case nil:
		return false
	case bool:
		return x
	case float64:
		return x != 0
	case string:
		return x != ""
	}
	return true
}

type tokenKind int

const (
	tokIdent tokenKind = iota
	tokNumber
	tokString
	tokOp
	tokEOF
)

type token struct {
	kind tokenKind
	text string
}

var operators = []string{
	"||", "&&", "==", "!=", "<=", ">=",
	"<", ">", "+", "-", "*", "/", "%", "!", "?", ":", "(", ")",
}

func lex(src string) ([]token, error) {
	var tokens []token
	i := 0
scan:
	for i < len(src) {
		c := src[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case c == '\'' || c == '"':
			quote := c
			j := i + 1
			for j < len(src) && src[j] != quote {
				j++
			}
			if j >= len(src) {
				return nil, cartarev.Errorf(cartarev.EINVALID, "expression %q: unterminated string", src)
			}
			tokens = append(tokens, token{tokString, src[i+1 : j]})
			i = j + 1
		case c >= '0' && c <= '9' || c == '.' && i+1 < len(src) && src[i+1] >= '0' && src[i+1] <= '9':
			j := i
			for j < len(src) && (src[j] >= '0' && src[j] <= '9' || src[j] == '.') {
				j++
			}
			tokens = append(tokens, token{tokNumber, src[i:j]})
			i = j
		case c == '_' || unicode.IsLetter(rune(c)):
			j := i
			for j < len(src) && (src[j] == '_' || src[j] >= '0' && src[j] <= '9' || unicode.IsLetter(rune(src[j]))) {
				j++
			}
			tokens = append(tokens, token{tokIdent, src[i:j]})
			i = j
		default:
			for _, op := range operators {
				if strings.HasPrefix(src[i:], op) {
					tokens = append(tokens, token{tokOp, op})
					i += len(op)
					continue scan
				}
			}
			return nil, cartarev.Errorf(cartarev.EINVALID, "expression %q: unexpected character %q", src, string(c))
		}
	}
	return append(tokens, token{tokEOF, ""}), nil
}

type parser struct {
	src    string
	tokens []token
	pos    int
}

func (p *parser) peek() token { return p.tokens[p.pos] }

func (p *parser) atEnd() bool { return p.peek().kind == tokEOF }

func (p *parser) acceptOp(ops ...string) (string, bool) {
	t := p.peek()
	if t.kind != tokOp {
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

func (p *parser) expectOp(op string) error {
	if _, ok := p.acceptOp(op); !ok {
		return cartarev.Errorf(cartarev.EINVALID, "expression %q: expected %q, got %q", p.src, op, p.peek().text)
	}
	return nil
}

func (p *parser) parseTernary() (node, error) {
	cond, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if _, ok := p.acceptOp("?"); !ok {
		return cond, nil
	}
	then, err := p.parseTernary()
	if err != nil {
		return nil, err
	}
	if err := p.expectOp(":"); err != nil {
		return nil, err
	}
	otherwise, err := p.parseTernary()
	if err != nil {
		return nil, err
	}
	return &ternaryNode{cond, then, otherwise}, nil
}

func (p *parser) parseOr() (node, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for {
		if _, ok := p.acceptOp("||"); !ok {
			return left, nil
		}
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &logicNode{"||", left, right}
	}
}

func (p *parser) parseAnd() (node, error) {
	left, err := p.parseEquality()
	if err != nil {
		return nil, err
	}
	for {
		if _, ok := p.acceptOp("&&"); !ok {
			return left, nil
		}
		right, err := p.parseEquality()
		if err != nil {
			return nil, err
		}
		left = &logicNode{"&&", left, right}
	}
}

func (p *parser) parseEquality() (node, error) {
	left, err := p.parseComparison()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := p.acceptOp("==", "!=")
		if !ok {
			return left, nil
		}
		right, err := p.parseComparison()
		if err != nil {
			return nil, err
		}
		left = &binaryNode{op, left, right}
	}
}

func (p *parser) parseComparison() (node, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := p.acceptOp("<=", ">=", "<", ">")
		if !ok {
			return left, nil
		}
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		left = &binaryNode{op, left, right}
	}
}

func (p *parser) parseTerm() (node, error) {
	left, err := p.parseFactor()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := p.acceptOp("+", "-")
		if !ok {
			return left, nil
		}
		right, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		left = &binaryNode{op, left, right}
	}
}

func (p *parser) parseFactor() (node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := p.acceptOp("*", "/", "%")
		if !ok {
			return left, nil
		}
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &binaryNode{op, left, right}
	}
}

func (p *parser) parseUnary() (node, error) {
	if op, ok := p.acceptOp("!", "-"); ok {
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &unaryNode{op, operand}, nil
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() (node, error) {
	t := p.peek()
	switch t.kind {
	case tokNumber:
		n, err := strconv.ParseFloat(t.text, 64)
		if err != nil {
			return nil, cartarev.Errorf(cartarev.EINVALID, "expression %q: bad number %q", p.src, t.text)
		}
		p.pos++
		return &literalNode{n}, nil
	case tokString:
		p.pos++
		return &literalNode{t.text}, nil
	case tokIdent:
		p.pos++
		switch t.text {
		case "true":
			return &literalNode{true}, nil
		case "false":
			return &literalNode{false}, nil
		case "nil", "null":
			return &literalNode{nil}, nil
		}
		return &variableNode{t.text}, nil
	case tokOp:
		if t.text == "(" {
			p.pos++
			inner, err := p.parseTernary()
			if err != nil {
				return nil, err
			}
			if err := p.expectOp(")"); err != nil {
				return nil, err
			}
			return inner, nil
		}
	}
	return nil, cartarev.Errorf(cartarev.EINVALID, "expression %q: unexpected %q", p.src, t.text)
}

type node interface {
	eval(vars map[string]any) (any, error)
}

type literalNode struct{ value any }

func (n *literalNode) eval(map[string]any) (any, error) { return n.value, nil }

type variableNode struct{ name string }

func (n *variableNode) eval(vars map[string]any) (any, error) {
	return normalize(vars[n.name]), nil
}

type unaryNode struct {
	op      string
	operand node
}

func (n *unaryNode) eval(vars map[string]any) (any, error) {
	v, err := n.operand.eval(vars)
	if err != nil {
		return nil, err
	}
	switch n.op {
	case "!":
		return !Truthy(v), nil
	case "-":
		f, ok := normalize(v).(float64)
		if !ok {
			return nil, fmt.Errorf("cannot negate %T", v)
		}
		return -f, nil
	}
	return nil, fmt.Errorf("unknown unary operator %q", n.op)
}

type logicNode struct {
	op          string
	left, right node
}

func (n *logicNode) eval(vars map[string]any) (any, error) {
	left, err := n.left.eval(vars)
	if err != nil {
		return nil, err
	}
	// Short-circuit.
	if n.op == "||" && Truthy(left) {
		return true, nil
	}
	if n.op == "&&" && !Truthy(left) {
		return false, nil
	}
	right, err := n.right.eval(vars)
	if err != nil {
		return nil, err
	}
	return Truthy(right), nil
}

type ternaryNode struct {
	cond, then, otherwise node
}

func (n *ternaryNode) eval(vars map[string]any) (any, error) {
	cond, err := n.cond.eval(vars)
	if err != nil {
		return nil, err
	}
	if Truthy(cond) {
		return n.then.eval(vars)
	}
	return n.otherwise.eval(vars)
}

type binaryNode struct {
	op          string
	left, right node
}

func (n *binaryNode) eval(vars map[string]any) (any, error) {
	left, err := n.left.eval(vars)
	if err != nil {
		return nil, err
	}
	right, err := n.right.eval(vars)
	if err != nil {
		return nil, err
	}
	left, right = normalize(left), normalize(right)

	switch n.op {
	case "==":
		return equal(left, right), nil
	case "!=":
		return !equal(left, right), nil
	}

	if ls, lok := left.(string); lok {
		if rs, rok := right.(string); rok {
			switch n.op {
			case "+":
				return ls + rs, nil
			case "<":
				return ls < rs, nil
			case "<=":
				return ls <= rs, nil
			case ">":
				return ls > rs, nil
			case ">=":
				return ls >= rs, nil
			}
			return nil, fmt.Errorf("operator %q not defined on strings", n.op)
		}
	}

	lf, lok := left.(float64)
	rf, rok := right.(float64)
	if !lok || !rok {
		return nil, fmt.Errorf("operator %q needs numbers, got %T and %T", n.op, left, right)
	}
	switch n.op {
	case "+":
		return lf + rf, nil
	case "-":
		return lf - rf, nil
	case "*":
		return lf * rf, nil
	case "/":
		if rf == 0 {
			return nil, fmt.Errorf("division by zero")
		}
		return lf / rf, nil
	case "%":
		if rf == 0 {
			return nil, fmt.Errorf("division by zero")
		}
		return float64(int64(lf) % int64(rf)), nil
	case "<":
		return lf < rf, nil
	case "<=":
		return lf <= rf, nil
	case ">":
		return lf > rf, nil
	case ">=":
		return lf >= rf, nil
	}
	return nil, fmt.Errorf("unknown operator %q", n.op)
}

func equal(left, right any) bool { return left == right }

// normalize widens numeric values to float64 so comparisons behave the same
// regardless of how the data was decoded.
func normalize(v any) any {
	switch x := v.(type) {
	case int:
		return float64(x)
	case int32:
		return float64(x)
	case int64:
		return float64(x)
	case float32:
		return float64(x)
	}
	return v
}
