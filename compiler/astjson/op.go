// Package astjson converts between Floyd ASTs and their JSON tree form.
//
// A JSON tree is the generic value produced by encoding/json: arrays are
// []any, objects are map[string]any, and numbers are json.Number when the
// tree comes from Unmarshal.  Every node is an array whose first element is
// an opcode string, optionally preceded by a numeric byte offset.
package astjson

import (
	"sort"

	"github.com/brimdata/floyd/compiler/ast"
)

// DefaultMaxDepth bounds the nesting of expressions and bodies.
const DefaultMaxDepth = 256

// Expression opcodes.  Binary operators use their tokens, e.g., "+".
const (
	OpLiteral        = "k"
	OpUnaryMinus     = "unary_minus"
	OpConditional    = "?:"
	OpCall           = "call"
	OpResolveMember  = "->"
	OpLoad           = "@"
	OpLoadAddr       = "@i"
	OpLookup         = "[]"
	OpConstructValue = "construct-value"
)

// Statement opcodes.
const (
	OpReturn              = "return"
	OpBind                = "bind"
	OpStore               = "store"
	OpStoreAddr           = "store2"
	OpBlock               = "block"
	OpIf                  = "if"
	OpFor                 = "for"
	OpWhile               = "while"
	OpExpressionStatement = "expression-statement"
	OpDefStruct           = "def-struct"
	OpDefProtocol         = "def-protocol"
	OpDefFunc             = "def-func"
	OpSoftwareSystem      = "software-system"
	OpContainerDef        = "container-def"
)

// Lengths permitted for each opcode, counting the opcode itself but not a
// leading offset.
var exprArity = func() map[string][]int {
	m := map[string][]int{
		OpLiteral:        {3},
		OpUnaryMinus:     {2, 3},
		OpConditional:    {4, 5},
		OpCall:           {3, 4},
		OpResolveMember:  {3, 4},
		OpLoad:           {2, 3},
		OpLoadAddr:       {3, 4},
		OpLookup:         {3, 4},
		OpConstructValue: {3, 4},
	}
	for _, op := range ast.Ops() {
		m[op.String()] = []int{3, 4}
	}
	return m
}()

var stmtArity = map[string][]int{
	OpReturn:              {2},
	OpBind:                {4, 5},
	OpStore:               {3},
	OpStoreAddr:           {4},
	OpBlock:               {2},
	OpIf:                  {3, 4},
	OpFor:                 {6},
	OpWhile:               {3},
	OpExpressionStatement: {2},
	OpDefStruct:           {2},
	OpDefProtocol:         {2},
	OpDefFunc:             {2},
	OpSoftwareSystem:      {2},
	OpContainerDef:        {2},
}

func opcodes(arity map[string][]int) []string {
	ops := make([]string, 0, len(arity))
	for op := range arity {
		ops = append(ops, op)
	}
	sort.Strings(ops)
	return ops
}

var (
	exprOpcodes = opcodes(exprArity)
	stmtOpcodes = opcodes(stmtArity)
)

func arityOK(lengths []int, n int) bool {
	for _, l := range lengths {
		if l == n {
			return true
		}
	}
	return false
}
