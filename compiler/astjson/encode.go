package astjson

import (
	"fmt"

	"github.com/brimdata/floyd/compiler/ast"
)

// EncodeExpr returns the JSON tree of e.  Result types are appended only
// when an expression has been annotated.
func EncodeExpr(e ast.Expr) any {
	switch e := e.(type) {
	case *ast.Literal:
		return []any{OpLiteral, e.Value.Data, EncodeType(e.Value.Type)}
	case *ast.UnaryMinus:
		return annotate([]any{OpUnaryMinus, EncodeExpr(e.Expr)}, e.Annotated)
	case *ast.Binary:
		return annotate([]any{e.Op.String(), EncodeExpr(e.LHS), EncodeExpr(e.RHS)}, e.Annotated)
	case *ast.Conditional:
		return annotate([]any{OpConditional, EncodeExpr(e.Cond), EncodeExpr(e.Then), EncodeExpr(e.Else)}, e.Annotated)
	case *ast.Call:
		return annotate([]any{OpCall, EncodeExpr(e.Callee), encodeExprs(e.Args)}, e.Annotated)
	case *ast.ResolveMember:
		return annotate([]any{OpResolveMember, EncodeExpr(e.Base), e.Member}, e.Annotated)
	case *ast.Load:
		return annotate([]any{OpLoad, e.Name}, e.Annotated)
	case *ast.LoadAddr:
		return annotate([]any{OpLoadAddr, e.Addr.ParentSteps, e.Addr.Index}, e.Annotated)
	case *ast.Lookup:
		return annotate([]any{OpLookup, EncodeExpr(e.Collection), EncodeExpr(e.Key)}, e.Annotated)
	case *ast.ConstructValue:
		return annotate([]any{OpConstructValue, EncodeType(e.ValueType), encodeExprs(e.Args)}, e.Annotated)
	}
	panic(fmt.Sprintf("internal error: unknown expression type %T", e))
}

func annotate(node []any, a ast.Annotated) []any {
	if a.Type != nil {
		node = append(node, EncodeType(*a.Type))
	}
	return node
}

func encodeExprs(exprs []ast.Expr) []any {
	out := make([]any, 0, len(exprs))
	for _, e := range exprs {
		out = append(out, EncodeExpr(e))
	}
	return out
}

// EncodeStatement returns the JSON tree of s prefixed with its offset when
// s has a location.
func EncodeStatement(s ast.Statement) any {
	node := encodeStatement(s)
	if loc := s.Location(); loc.IsValid() {
		node = append([]any{loc.Offset}, node...)
	}
	return node
}

func encodeStatement(s ast.Statement) []any {
	switch s := s.(type) {
	case *ast.Return:
		return []any{OpReturn, EncodeExpr(s.Expr)}
	case *ast.Bind:
		node := []any{OpBind, EncodeType(s.Type), s.Name, EncodeExpr(s.Expr)}
		if s.Mutable {
			node = append(node, map[string]any{"mutable": true})
		}
		return node
	case *ast.Store:
		return []any{OpStore, s.Name, EncodeExpr(s.Expr)}
	case *ast.StoreAddr:
		return []any{OpStoreAddr, s.Addr.ParentSteps, s.Addr.Index, EncodeExpr(s.Expr)}
	case *ast.Block:
		return []any{OpBlock, EncodeBody(s.Body)}
	case *ast.If:
		node := []any{OpIf, EncodeExpr(s.Cond), EncodeBody(s.Then)}
		if s.Else != nil {
			node = append(node, EncodeBody(s.Else))
		}
		return node
	case *ast.For:
		return []any{OpFor, s.Range.String(), s.Iterator, EncodeExpr(s.Start), EncodeExpr(s.End), EncodeBody(s.Body)}
	case *ast.While:
		return []any{OpWhile, EncodeExpr(s.Cond), EncodeBody(s.Body)}
	case *ast.ExprStmt:
		return []any{OpExpressionStatement, EncodeExpr(s.Expr)}
	case *ast.DefStruct:
		return []any{OpDefStruct, encodeNamedMembers(s.Def.Name, s.Def.Members)}
	case *ast.DefProtocol:
		return []any{OpDefProtocol, encodeNamedMembers(s.Def.Name, s.Def.Members)}
	case *ast.DefFunc:
		return []any{OpDefFunc, EncodeFunctionDef(s.Def)}
	case *ast.SoftwareSystem:
		return []any{OpSoftwareSystem, s.JSON}
	case *ast.ContainerDef:
		return []any{OpContainerDef, s.JSON}
	}
	panic(fmt.Sprintf("internal error: unknown statement type %T", s))
}

func encodeMembers(members []ast.Member) []any {
	out := make([]any, 0, len(members))
	for _, m := range members {
		out = append(out, EncodeMember(m))
	}
	return out
}

func encodeNamedMembers(name string, members []ast.Member) map[string]any {
	return map[string]any{"name": name, "members": encodeMembers(members)}
}

func EncodeFunctionDef(f *ast.FunctionDef) map[string]any {
	return map[string]any{
		"name":        f.Name,
		"args":        encodeMembers(f.Args),
		"statements":  EncodeBody(f.Body),
		"return_type": EncodeType(f.ReturnType),
		"impure":      !f.Pure,
	}
}

// EncodeBody returns the statements of b as an array, or as an object that
// also holds the symbol table when the table is not empty.
func EncodeBody(b *ast.Body) any {
	if b == nil {
		return []any{}
	}
	stmts := make([]any, 0, len(b.Statements))
	for _, s := range b.Statements {
		stmts = append(stmts, EncodeStatement(s))
	}
	if b.Symbols.Len() == 0 {
		return stmts
	}
	return map[string]any{
		"statements": stmts,
		"symbols":    EncodeSymbols(b.Symbols),
	}
}

// EncodeAST encodes a Program as its body and a SAST as an object.  The
// body of a Program is always an array so that DecodeAST can tell the two
// forms apart.  Parsed programs have no top-level symbols; MarshalAST
// rejects a Program that does.
func EncodeAST(t ast.Tree) any {
	switch t := t.(type) {
	case *ast.Program:
		body := EncodeBody(t.Body)
		if obj, ok := body.(map[string]any); ok {
			return obj["statements"]
		}
		return body
	case *ast.SAST:
		defs := make([]any, 0, len(t.FunctionDefs))
		for _, f := range t.FunctionDefs {
			defs = append(defs, EncodeFunctionDef(f))
		}
		obj := map[string]any{
			"globals":       EncodeBody(t.Globals),
			"function_defs": defs,
		}
		if t.SoftwareSystem != nil {
			obj[softwareSystemKey] = t.SoftwareSystem
		}
		if t.ContainerDef != nil {
			obj[containerDefKey] = t.ContainerDef
		}
		return obj
	}
	panic(fmt.Sprintf("internal error: unknown tree type %T", t))
}
