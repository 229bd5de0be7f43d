package ast

import "fmt"

// Op is a binary operator.
type Op int

const (
	OpAdd Op = iota
	OpSubtract
	OpMultiply
	OpDivide
	OpRemainder
	OpLessOrEqual
	OpLess
	OpGreaterOrEqual
	OpGreater
	OpEqual
	OpNotEqual
	OpAnd
	OpOr
)

var opTokens = [...]string{
	OpAdd:            "+",
	OpSubtract:       "-",
	OpMultiply:       "*",
	OpDivide:         "/",
	OpRemainder:      "%",
	OpLessOrEqual:    "<=",
	OpLess:           "<",
	OpGreaterOrEqual: ">=",
	OpGreater:        ">",
	OpEqual:          "==",
	OpNotEqual:       "!=",
	OpAnd:            "&&",
	OpOr:             "||",
}

var tokenOps = func() map[string]Op {
	m := make(map[string]Op, len(opTokens))
	for k, tok := range opTokens {
		m[tok] = Op(k)
	}
	return m
}()

func (o Op) String() string {
	if o < 0 || int(o) >= len(opTokens) {
		return fmt.Sprintf("Op(%d)", int(o))
	}
	return opTokens[o]
}

// LookupOp maps an operator token such as "<=" to its Op.
func LookupOp(tok string) (Op, bool) {
	op, ok := tokenOps[tok]
	return op, ok
}

// Ops returns all binary operators in declaration order.
func Ops() []Op {
	ops := make([]Op, len(opTokens))
	for k := range opTokens {
		ops[k] = Op(k)
	}
	return ops
}

// Precedence is a binding strength where lower numbers bind tighter.
type Precedence int

const (
	PrecSuffix   Precedence = 2 // call, lookup, member access
	PrecUnary    Precedence = 3
	PrecMultiply Precedence = 5
	PrecAdd      Precedence = 6
	PrecCompare  Precedence = 8
	PrecEqual    Precedence = 9
	PrecAnd      Precedence = 13
	PrecOr       Precedence = 14
	PrecTernary  Precedence = 15
	PrecLowest   Precedence = 16
)

func (o Op) Precedence() Precedence {
	switch o {
	case OpMultiply, OpDivide, OpRemainder:
		return PrecMultiply
	case OpAdd, OpSubtract:
		return PrecAdd
	case OpLess, OpLessOrEqual, OpGreater, OpGreaterOrEqual:
		return PrecCompare
	case OpEqual, OpNotEqual:
		return PrecEqual
	case OpAnd:
		return PrecAnd
	case OpOr:
		return PrecOr
	}
	return PrecLowest
}
