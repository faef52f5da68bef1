package preprocessor

import (
	"strconv"
	"strings"

	"go.trai.ch/openge/internal/core/domain"
)

// maxExpansionDepth bounds recursive macro expansion in conditions.
const maxExpansionDepth = 32

type tokenKind uint8

const (
	tokIdent tokenKind = iota + 1
	tokNumber
	tokOp
	tokOther
)

type token struct {
	kind tokenKind
	text string
}

// evaluator computes #if conditions. It understands defined checks, logical
// operators, equality and integer literals. Anything else is reported as an
// IdentifierNotDefinedError.
type evaluator struct {
	defines map[string]*domain.DefineDirective
	expr    string
	tokens  []token
	pos     int
	skip    int
	depth   int
}

// evaluate reports whether cond holds under defines.
func evaluate(cond string, defines map[string]*domain.DefineDirective) (bool, error) {
	v, err := evaluateValue(cond, defines, 0)
	if err != nil {
		return false, err
	}
	return v != 0, nil
}

func evaluateValue(cond string, defines map[string]*domain.DefineDirective, depth int) (int64, error) {
	e := &evaluator{
		defines: defines,
		expr:    cond,
		tokens:  tokenize(cond),
		depth:   depth,
	}
	if len(e.tokens) == 0 {
		return 0, e.undefined("")
	}
	v, err := e.parseOr()
	if err != nil {
		return 0, err
	}
	if tok, ok := e.peek(); ok {
		return 0, e.undefined(tok.text)
	}
	return v, nil
}

func (e *evaluator) undefined(identifier string) error {
	return &domain.IdentifierNotDefinedError{Identifier: identifier, Expression: e.expr}
}

func (e *evaluator) peek() (token, bool) {
	if e.pos >= len(e.tokens) {
		return token{}, false
	}
	return e.tokens[e.pos], true
}

func (e *evaluator) accept(op string) bool {
	if tok, ok := e.peek(); ok && tok.kind == tokOp && tok.text == op {
		e.pos++
		return true
	}
	return false
}

func (e *evaluator) parseOr() (int64, error) {
	lhs, err := e.parseAnd()
	if err != nil {
		return 0, err
	}
	for e.accept("||") {
		if lhs != 0 {
			e.skip++
		}
		rhs, err := e.parseAnd()
		if lhs != 0 {
			e.skip--
		}
		if err != nil {
			return 0, err
		}
		lhs = boolValue(lhs != 0 || rhs != 0)
	}
	return lhs, nil
}

func (e *evaluator) parseAnd() (int64, error) {
	lhs, err := e.parseEquality()
	if err != nil {
		return 0, err
	}
	for e.accept("&&") {
		if lhs == 0 {
			e.skip++
		}
		rhs, err := e.parseEquality()
		if lhs == 0 {
			e.skip--
		}
		if err != nil {
			return 0, err
		}
		lhs = boolValue(lhs != 0 && rhs != 0)
	}
	return lhs, nil
}

func (e *evaluator) parseEquality() (int64, error) {
	lhs, err := e.parseUnary()
	if err != nil {
		return 0, err
	}
	for {
		switch {
		case e.accept("=="):
			rhs, err := e.parseUnary()
			if err != nil {
				return 0, err
			}
			lhs = boolValue(lhs == rhs)
		case e.accept("!="):
			rhs, err := e.parseUnary()
			if err != nil {
				return 0, err
			}
			lhs = boolValue(lhs != rhs)
		default:
			return lhs, nil
		}
	}
}

func (e *evaluator) parseUnary() (int64, error) {
	if e.accept("!") {
		v, err := e.parseUnary()
		if err != nil {
			return 0, err
		}
		return boolValue(v == 0), nil
	}
	return e.parsePrimary()
}

func (e *evaluator) parsePrimary() (int64, error) {
	tok, ok := e.peek()
	if !ok {
		return 0, e.undefined("")
	}
	e.pos++

	switch tok.kind {
	case tokNumber:
		return parseNumber(tok.text, e)
	case tokOp:
		if tok.text != "(" {
			return 0, e.undefined(tok.text)
		}
		v, err := e.parseOr()
		if err != nil {
			return 0, err
		}
		if !e.accept(")") {
			return 0, e.undefined("(")
		}
		return v, nil
	case tokIdent:
		if tok.text == "defined" {
			return e.parseDefined()
		}
		return e.identifier(tok.text)
	default:
		return 0, e.undefined(tok.text)
	}
}

func (e *evaluator) parseDefined() (int64, error) {
	paren := e.accept("(")
	tok, ok := e.peek()
	if !ok || tok.kind != tokIdent {
		return 0, e.undefined("defined")
	}
	e.pos++
	if paren && !e.accept(")") {
		return 0, e.undefined("defined")
	}
	_, found := e.defines[tok.text]
	return boolValue(found), nil
}

func (e *evaluator) identifier(name string) (int64, error) {
	if e.skip > 0 {
		e.skipInvocation()
		return 0, nil
	}

	def, ok := e.defines[name]
	if !ok || def.IsFunction || def.Expansion == "" || e.depth >= maxExpansionDepth {
		return 0, e.undefined(name)
	}
	return evaluateValue(def.Expansion, e.defines, e.depth+1)
}

// skipInvocation consumes a parenthesised argument list in a branch that is not evaluated.
func (e *evaluator) skipInvocation() {
	if tok, ok := e.peek(); !ok || tok.kind != tokOp || tok.text != "(" {
		return
	}
	depth := 0
	for ; e.pos < len(e.tokens); e.pos++ {
		tok := e.tokens[e.pos]
		if tok.kind != tokOp {
			continue
		}
		switch tok.text {
		case "(":
			depth++
		case ")":
			depth--
			if depth == 0 {
				e.pos++
				return
			}
		}
	}
}

func parseNumber(text string, e *evaluator) (int64, error) {
	digits := strings.TrimRight(text, "uUlL")
	if v, err := strconv.ParseInt(digits, 0, 64); err == nil {
		return v, nil
	}
	if v, err := strconv.ParseUint(digits, 0, 64); err == nil {
		return int64(v), nil //nolint:gosec // wraps like the C preprocessor does
	}
	return 0, e.undefined(text)
}

func boolValue(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

func tokenize(s string) []token {
	var tokens []token
	for i := 0; i < len(s); {
		c := s[i]
		switch {
		case c == ' ' || c == '\t':
			i++
		case isIdentStart(c):
			j := i + 1
			for j < len(s) && isIdentPart(s[j]) {
				j++
			}
			tokens = append(tokens, token{kind: tokIdent, text: s[i:j]})
			i = j
		case c >= '0' && c <= '9':
			j := i + 1
			for j < len(s) && isIdentPart(s[j]) {
				j++
			}
			tokens = append(tokens, token{kind: tokNumber, text: s[i:j]})
			i = j
		case c == '(' || c == ')':
			tokens = append(tokens, token{kind: tokOp, text: s[i : i+1]})
			i++
		default:
			if i+1 < len(s) {
				switch two := s[i : i+2]; two {
				case "&&", "||", "==", "!=":
					tokens = append(tokens, token{kind: tokOp, text: two})
					i += 2
					continue
				case "<=", ">=", "<<", ">>":
					tokens = append(tokens, token{kind: tokOther, text: two})
					i += 2
					continue
				}
			}
			if c == '!' {
				tokens = append(tokens, token{kind: tokOp, text: "!"})
			} else {
				tokens = append(tokens, token{kind: tokOther, text: s[i : i+1]})
			}
			i++
		}
	}
	return tokens
}
