package parser

import (
	"github.com/brimdata/floyd/compiler/ast"
	"github.com/brimdata/floyd/compiler/astjson"
)

// ASTMaker builds ast.Expr nodes directly.
type ASTMaker struct{}

var _ Maker[ast.Expr] = ASTMaker{}

func (ASTMaker) Literal(v ast.Value) ast.Expr {
	return &ast.Literal{Value: v}
}

func (ASTMaker) UnaryMinus(e ast.Expr) ast.Expr {
	return &ast.UnaryMinus{Expr: e}
}

func (ASTMaker) Binary(op ast.Op, lhs, rhs ast.Expr) ast.Expr {
	return &ast.Binary{Op: op, LHS: lhs, RHS: rhs}
}

func (ASTMaker) Conditional(cond, then, els ast.Expr) ast.Expr {
	return &ast.Conditional{Cond: cond, Then: then, Else: els}
}

func (ASTMaker) Call(callee ast.Expr, args []ast.Expr) ast.Expr {
	return &ast.Call{Callee: callee, Args: args}
}

func (ASTMaker) Member(base ast.Expr, name string) ast.Expr {
	return &ast.ResolveMember{Base: base, Member: name}
}

func (ASTMaker) Lookup(coll, key ast.Expr) ast.Expr {
	return &ast.Lookup{Collection: coll, Key: key}
}

func (ASTMaker) Variable(name string) ast.Expr {
	return &ast.Load{Name: name}
}

func (ASTMaker) Construct(typ ast.TypeID, args []ast.Expr) ast.Expr {
	return &ast.ConstructValue{ValueType: typ, Args: args}
}

// JSONMaker builds the generic JSON tree consumed by astjson.
type JSONMaker struct{}

var _ Maker[any] = JSONMaker{}

func (JSONMaker) Literal(v ast.Value) any {
	return []any{astjson.OpLiteral, v.Data, astjson.EncodeType(v.Type)}
}

func (JSONMaker) UnaryMinus(e any) any {
	return []any{astjson.OpUnaryMinus, e}
}

func (JSONMaker) Binary(op ast.Op, lhs, rhs any) any {
	return []any{op.String(), lhs, rhs}
}

func (JSONMaker) Conditional(cond, then, els any) any {
	return []any{astjson.OpConditional, cond, then, els}
}

func (JSONMaker) Call(callee any, args []any) any {
	return []any{astjson.OpCall, callee, args}
}

func (JSONMaker) Member(base any, name string) any {
	return []any{astjson.OpResolveMember, base, name}
}

func (JSONMaker) Lookup(coll, key any) any {
	return []any{astjson.OpLookup, coll, key}
}

func (JSONMaker) Variable(name string) any {
	return []any{astjson.OpLoad, name}
}

func (JSONMaker) Construct(typ ast.TypeID, args []any) any {
	return []any{astjson.OpConstructValue, astjson.EncodeType(typ), args}
}
