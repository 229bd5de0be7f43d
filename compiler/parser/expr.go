package parser

import (
	"github.com/brimdata/floyd/compiler/ast"
	"github.com/brimdata/floyd/compiler/srcfiles"
)

// DefaultMaxDepth bounds expression and statement nesting.
const DefaultMaxDepth = 256

// Maker builds the nodes of an expression tree of type T.  The precedence
// climbing in ExprParser is independent of the representation it produces.
type Maker[T any] interface {
	Literal(v ast.Value) T
	UnaryMinus(e T) T
	Binary(op ast.Op, lhs, rhs T) T
	Conditional(cond, then, els T) T
	Call(callee T, args []T) T
	Member(base T, name string) T
	Lookup(coll, key T) T
	Variable(name string) T
	Construct(typ ast.TypeID, args []T) T
}

type ExprParser[T any] struct {
	Maker    Maker[T]
	MaxDepth int
}

func NewExprParser[T any](m Maker[T], maxDepth int) *ExprParser[T] {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	return &ExprParser[T]{Maker: m, MaxDepth: maxDepth}
}

// ParseExpr parses an expression at c whose operators all bind tighter than
// prec and returns it with the cursor that follows.
func ParseExpr[T any](m Maker[T], c Cursor, prec ast.Precedence) (T, Cursor, error) {
	return NewExprParser(m, DefaultMaxDepth).Parse(c, prec)
}

// ParseFullExpr parses a complete expression.
func ParseFullExpr[T any](m Maker[T], c Cursor) (T, Cursor, error) {
	return ParseExpr(m, c, ast.PrecLowest)
}

func (p *ExprParser[T]) Parse(c Cursor, prec ast.Precedence) (T, Cursor, error) {
	return p.expr(c, prec, 0)
}

func (p *ExprParser[T]) expr(c Cursor, prec ast.Precedence, depth int) (T, Cursor, error) {
	var zero T
	if depth > p.MaxDepth {
		return zero, c, srcfiles.NewError(srcfiles.KindDepth, c.Pos(), "expression nesting exceeds %d", p.MaxDepth)
	}
	lhs, rest, err := p.atom(c, depth)
	if err != nil {
		return zero, c, err
	}
	return p.operation(lhs, rest, prec, depth)
}

func (p *ExprParser[T]) atom(c Cursor, depth int) (T, Cursor, error) {
	var zero T
	c = SkipWhitespace(c)
	if c.Empty() {
		return zero, c, srcfiles.NewError(srcfiles.KindGrammar, c.Pos(), "expected expression")
	}
	switch b := c.Peek(1)[0]; {
	case b == '(':
		e, rest, err := p.expr(c.Skip(1), ast.PrecLowest, depth+1)
		if err != nil {
			return zero, c, err
		}
		rest, err = expect(rest, ")")
		if err != nil {
			return zero, c, err
		}
		return e, rest, nil
	case b == '-':
		// The operand is a bare atom.  Suffixes that follow apply to the
		// negation in the caller's climbing loop.
		e, rest, err := p.expr(c.Skip(1), ast.PrecSuffix, depth+1)
		if err != nil {
			return zero, c, err
		}
		return p.Maker.UnaryMinus(e), rest, nil
	case isDigit(b):
		v, rest, err := readNumber(c)
		if err != nil {
			return zero, c, err
		}
		return p.Maker.Literal(v), rest, nil
	case b == '"':
		s, rest, err := readString(c)
		if err != nil {
			return zero, c, err
		}
		return p.Maker.Literal(ast.NewString(s)), rest, nil
	case b == '[':
		typ, rest, err := ParseType(c)
		if err != nil {
			return zero, c, err
		}
		rest, err = expect(rest, "(")
		if err != nil {
			return zero, c, err
		}
		args, rest, err := p.list(rest, ")", depth)
		if err != nil {
			return zero, c, err
		}
		return p.Maker.Construct(typ, args), rest, nil
	case isIdentifierStart(b):
		name, rest := readIdentifier(c)
		switch name {
		case "true":
			return p.Maker.Literal(ast.NewBool(true)), rest, nil
		case "false":
			return p.Maker.Literal(ast.NewBool(false)), rest, nil
		}
		return p.Maker.Variable(name), rest, nil
	}
	return zero, c, srcfiles.NewError(srcfiles.KindGrammar, c.Pos(), "unexpected character %q", c.Peek(1))
}

// operator is the token at the head of the input as seen by the climbing
// loop.
type operator struct {
	tok  string
	prec ast.Precedence
	op   ast.Op
}

// Two-character tokens are listed first so that "<=" is never read as "<".
var operatorTokens = []string{
	"==", "!=", "<=", ">=", "&&", "||",
	"+", "-", "*", "/", "%", "<", ">", "?", "(", "[", ".",
}

func peekOperator(c Cursor) (operator, bool) {
	// ".." starts a range rather than a member access.
	if c.HasPrefix("..") {
		return operator{}, false
	}
	for _, tok := range operatorTokens {
		if !c.HasPrefix(tok) {
			continue
		}
		switch tok {
		case "?":
			return operator{tok: tok, prec: ast.PrecTernary}, true
		case "(", "[", ".":
			return operator{tok: tok, prec: ast.PrecSuffix}, true
		}
		op, _ := ast.LookupOp(tok)
		return operator{tok: tok, prec: op.Precedence(), op: op}, true
	}
	return operator{}, false
}

// operation folds operators into lhs until one binds no tighter than prec.
func (p *ExprParser[T]) operation(lhs T, c Cursor, prec ast.Precedence, depth int) (T, Cursor, error) {
	var zero T
	for {
		c = SkipWhitespace(c)
		op, ok := peekOperator(c)
		if !ok || op.prec >= prec {
			return lhs, c, nil
		}
		rest := c.Skip(len(op.tok))
		switch op.tok {
		case "(":
			args, next, err := p.list(rest, ")", depth)
			if err != nil {
				return zero, c, err
			}
			lhs, c = p.Maker.Call(lhs, args), next
		case "[":
			key, next, err := p.expr(rest, ast.PrecLowest, depth+1)
			if err != nil {
				return zero, c, err
			}
			next, err = expect(next, "]")
			if err != nil {
				return zero, c, err
			}
			lhs, c = p.Maker.Lookup(lhs, key), next
		case ".":
			name, next := readIdentifier(rest)
			if name == "" {
				return zero, c, srcfiles.NewError(srcfiles.KindGrammar, next.Pos(), "expected member name after \".\"")
			}
			lhs, c = p.Maker.Member(lhs, name), next
		case "?":
			then, next, err := p.expr(rest, ast.PrecEqual, depth+1)
			if err != nil {
				return zero, c, err
			}
			next, err = expect(next, ":")
			if err != nil {
				return zero, c, err
			}
			els, next, err := p.expr(next, prec, depth+1)
			if err != nil {
				return zero, c, err
			}
			return p.Maker.Conditional(lhs, then, els), next, nil
		default:
			rhs, next, err := p.expr(rest, op.prec, depth+1)
			if err != nil {
				return zero, c, err
			}
			lhs, c = p.Maker.Binary(op.op, lhs, rhs), next
		}
	}
}

// list parses comma-separated expressions up to and including the closing
// token.
func (p *ExprParser[T]) list(c Cursor, closing string, depth int) ([]T, Cursor, error) {
	elems := []T{}
	c = SkipWhitespace(c)
	if c.HasPrefix(closing) {
		return elems, c.Skip(len(closing)), nil
	}
	for {
		e, rest, err := p.expr(c, ast.PrecLowest, depth+1)
		if err != nil {
			return nil, c, err
		}
		elems = append(elems, e)
		rest = SkipWhitespace(rest)
		switch {
		case rest.HasPrefix(","):
			c = rest.Skip(1)
		case rest.HasPrefix(closing):
			return elems, rest.Skip(len(closing)), nil
		default:
			return nil, rest, srcfiles.NewError(srcfiles.KindGrammar, rest.Pos(), "expected \",\" or %q", closing)
		}
	}
}
