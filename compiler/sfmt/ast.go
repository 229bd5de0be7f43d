// Package sfmt formats Floyd ASTs as canonical source text.
//
// Expressions carry the fewest parentheses that preserve their structure,
// so that parsing the output yields an equal expression.  Resolved
// addresses have no source syntax and print as "@(steps,index)".
package sfmt

import (
	"github.com/brimdata/floyd/compiler/ast"
)

func AST(t ast.Tree) string {
	c := newCanon()
	switch t := t.(type) {
	case *ast.Program:
		c.stmts(t.Body.Statements)
	case *ast.SAST:
		c.stmts(t.Globals.Statements)
		for _, f := range t.FunctionDefs {
			c.next()
			c.funcDef(f)
		}
		if t.SoftwareSystem != nil {
			c.next()
			c.write("software-system-def ")
			c.json(t.SoftwareSystem)
		}
		if t.ContainerDef != nil {
			c.next()
			c.write("container-def ")
			c.json(t.ContainerDef)
		}
	}
	if c.Len() > 0 {
		c.write("\n")
	}
	return c.String()
}

func Program(p *ast.Program) string {
	return AST(p)
}

func Expr(e ast.Expr) string {
	c := newCanon()
	c.expr(e, ast.PrecLowest)
	return c.String()
}

type canon struct {
	shared
	first bool
}

func newCanon() *canon {
	return &canon{shared: shared{formatter{tab: 2}}, first: true}
}

// next starts a new statement line.
func (c *canon) next() {
	if c.first {
		c.first = false
		return
	}
	c.ret()
}

func (c *canon) stmts(stmts []ast.Statement) {
	for _, s := range stmts {
		c.next()
		c.stmt(s)
	}
}

func (c *canon) body(b *ast.Body) {
	if b == nil || len(b.Statements) == 0 {
		c.write("{}")
		return
	}
	c.open("{")
	for _, s := range b.Statements {
		c.ret()
		c.stmt(s)
	}
	c.close()
	c.ret()
	c.write("}")
}

func (c *canon) stmt(s ast.Statement) {
	switch s := s.(type) {
	case *ast.Return:
		c.write("return ")
		c.expr(s.Expr, ast.PrecLowest)
		c.write(";")
	case *ast.Bind:
		switch {
		case s.Mutable:
			c.write("mutable ")
		case s.Type.IsUndefined():
			c.write("let ")
		}
		if !s.Type.IsUndefined() {
			c.typ(s.Type)
			c.write(" ")
		}
		c.write("%s = ", s.Name)
		c.expr(s.Expr, ast.PrecLowest)
		c.write(";")
	case *ast.Store:
		c.write("%s = ", s.Name)
		c.expr(s.Expr, ast.PrecLowest)
		c.write(";")
	case *ast.StoreAddr:
		c.addr(s.Addr)
		c.write(" = ")
		c.expr(s.Expr, ast.PrecLowest)
		c.write(";")
	case *ast.Block:
		c.body(s.Body)
	case *ast.If:
		c.ifStmt(s)
	case *ast.For:
		c.write("for (%s in ", s.Iterator)
		c.expr(s.Start, ast.PrecLowest)
		if s.Range == ast.OpenRange {
			c.write("..<")
		} else {
			c.write("...")
		}
		c.expr(s.End, ast.PrecLowest)
		c.write(") ")
		c.body(s.Body)
	case *ast.While:
		c.write("while (")
		c.expr(s.Cond, ast.PrecLowest)
		c.write(") ")
		c.body(s.Body)
	case *ast.ExprStmt:
		c.expr(s.Expr, ast.PrecLowest)
		c.write(";")
	case *ast.DefStruct:
		c.write("struct %s ", s.Def.Name)
		c.members(s.Def.Members, c.member)
	case *ast.DefProtocol:
		c.write("protocol %s ", s.Def.Name)
		c.members(s.Def.Members, c.signature)
	case *ast.DefFunc:
		c.funcDef(s.Def)
	case *ast.SoftwareSystem:
		c.write("software-system-def ")
		c.json(s.JSON)
	case *ast.ContainerDef:
		c.write("container-def ")
		c.json(s.JSON)
	default:
		c.write("unknown statement: %T", s)
	}
}

func (c *canon) ifStmt(s *ast.If) {
	c.write("if (")
	c.expr(s.Cond, ast.PrecLowest)
	c.write(") ")
	c.body(s.Then)
	if s.Else == nil {
		return
	}
	c.write(" else ")
	if len(s.Else.Statements) == 1 && s.Else.Symbols.Len() == 0 {
		if elseIf, ok := s.Else.Statements[0].(*ast.If); ok {
			c.ifStmt(elseIf)
			return
		}
	}
	c.body(s.Else)
}

func (c *canon) members(members []ast.Member, write func(ast.Member)) {
	if len(members) == 0 {
		c.write("{}")
		return
	}
	c.open("{")
	for _, m := range members {
		c.ret()
		write(m)
		c.write(";")
	}
	c.close()
	c.ret()
	c.write("}")
}

func (c *canon) member(m ast.Member) {
	c.typ(m.Type)
	c.write(" %s", m.Name)
}

// signature writes a protocol member of function type as a declaration
// with anonymous parameters.
func (c *canon) signature(m ast.Member) {
	if m.Type.Base != ast.Function {
		c.member(m)
		return
	}
	c.typ(m.Type.Return())
	c.write(" %s(", m.Name)
	c.types(m.Type.Args(), ", ")
	c.write(")")
	if !m.Type.Pure {
		c.write(" impure")
	}
}

func (c *canon) funcDef(f *ast.FunctionDef) {
	c.typ(f.ReturnType)
	c.write(" %s(", f.Name)
	for k, a := range f.Args {
		if k > 0 {
			c.write(", ")
		}
		c.member(a)
	}
	c.write(") ")
	if !f.Pure {
		c.write("impure ")
	}
	c.body(f.Body)
}

func (c *canon) addr(a ast.Addr) {
	c.write("@(%d,%d)", a.ParentSteps, a.Index)
}

// precedence returns the binding strength of the outermost operator of e.
// Atoms bind tightest.
func precedence(e ast.Expr) ast.Precedence {
	switch e := e.(type) {
	case *ast.Binary:
		return e.Op.Precedence()
	case *ast.Conditional:
		return ast.PrecTernary
	case *ast.UnaryMinus:
		// Negation applies to an atom, so it holds tighter than a suffix.
		return ast.PrecSuffix - 1
	case *ast.Call, *ast.Lookup, *ast.ResolveMember:
		return ast.PrecSuffix
	}
	return 0
}

// expr writes e where the parser would stop at operators that bind no
// tighter than prec, adding parentheses when e would not survive that.
func (c *canon) expr(e ast.Expr, prec ast.Precedence) {
	parens := precedence(e) >= prec
	c.maybewrite("(", parens)
	if parens {
		prec = ast.PrecLowest
	}
	switch e := e.(type) {
	case *ast.Literal:
		c.literal(e.Value)
	case *ast.UnaryMinus:
		c.write("-")
		c.expr(e.Expr, ast.PrecSuffix)
	case *ast.Binary:
		p := e.Op.Precedence()
		c.expr(e.LHS, p+1)
		c.write(" %s ", e.Op)
		c.expr(e.RHS, p)
	case *ast.Conditional:
		c.expr(e.Cond, ast.PrecTernary)
		c.write(" ? ")
		c.expr(e.Then, ast.PrecEqual)
		c.write(" : ")
		c.expr(e.Else, prec)
	case *ast.Call:
		c.expr(e.Callee, ast.PrecUnary)
		c.write("(")
		c.exprs(e.Args)
		c.write(")")
	case *ast.Lookup:
		c.expr(e.Collection, ast.PrecUnary)
		c.write("[")
		c.expr(e.Key, ast.PrecLowest)
		c.write("]")
	case *ast.ResolveMember:
		c.expr(e.Base, ast.PrecUnary)
		c.write(".%s", e.Member)
	case *ast.Load:
		c.write(e.Name)
	case *ast.LoadAddr:
		c.addr(e.Addr)
	case *ast.ConstructValue:
		c.typ(e.ValueType)
		c.write("(")
		c.exprs(e.Args)
		c.write(")")
	default:
		c.write("unknown expr: %T", e)
	}
	c.maybewrite(")", parens)
}

func (c *canon) exprs(exprs []ast.Expr) {
	for k, e := range exprs {
		if k > 0 {
			c.write(", ")
		}
		c.expr(e, ast.PrecLowest)
	}
}
