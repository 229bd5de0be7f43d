package ast

import "fmt"

// AddrError reports a resolved address that does not name a slot in the
// scope chain at the point where it is used.
type AddrError struct {
	Addr   Addr
	Depth  int
	Loc    Loc
	Reason string
}

func (e *AddrError) Error() string {
	return fmt.Sprintf("invalid address (%d,%d) at scope depth %d: %s", e.Addr.ParentSteps, e.Addr.Index, e.Depth, e.Reason)
}

type scope struct {
	parent  *scope
	symbols SymbolTable
	// resolved counts the addresses checked in the whole tree.
	resolved *int
}

func (s *scope) depth() int {
	var n int
	for p := s.parent; p != nil; p = p.parent {
		n++
	}
	return n
}

func (s *scope) resolve(a Addr, loc Loc) error {
	*s.resolved++
	target := s
	for range a.ParentSteps {
		if target.parent == nil {
			return &AddrError{a, s.depth(), loc, "not enough enclosing scopes"}
		}
		target = target.parent
	}
	if _, ok := target.symbols.At(a.Index); !ok {
		return &AddrError{a, s.depth(), loc, fmt.Sprintf("scope has %d slots", target.symbols.Len())}
	}
	return nil
}

// CheckAddresses verifies that every LoadAddr and StoreAddr in t names an
// existing slot reachable by walking exactly ParentSteps scopes outward.
// Function bodies are nested directly inside the global scope.
func CheckAddresses(t Tree) error {
	_, err := Addresses(t)
	return err
}

// Addresses is CheckAddresses that also returns the number of resolved
// addresses in t.
func Addresses(t Tree) (int, error) {
	var n int
	switch t := t.(type) {
	case *Program:
		err := checkBody(t.Body, nil, &n)
		return n, err
	case *SAST:
		globals := &scope{symbols: t.Globals.Symbols, resolved: &n}
		if err := checkStmts(t.Globals.Statements, globals); err != nil {
			return n, err
		}
		for _, f := range t.FunctionDefs {
			if err := checkBody(f.Body, globals, &n); err != nil {
				return n, err
			}
		}
		return n, nil
	}
	return 0, fmt.Errorf("internal error: unknown tree type %T", t)
}

func checkBody(b *Body, parent *scope, resolved *int) error {
	if b == nil {
		return nil
	}
	return checkStmts(b.Statements, &scope{parent: parent, symbols: b.Symbols, resolved: resolved})
}

func checkStmts(stmts []Statement, s *scope) error {
	for _, stmt := range stmts {
		if err := checkStmt(stmt, s); err != nil {
			return err
		}
	}
	return nil
}

func checkStmt(stmt Statement, s *scope) error {
	loc := stmt.Location()
	switch stmt := stmt.(type) {
	case *Return:
		return checkExpr(stmt.Expr, s, loc)
	case *Bind:
		return checkExpr(stmt.Expr, s, loc)
	case *Store:
		return checkExpr(stmt.Expr, s, loc)
	case *StoreAddr:
		if err := s.resolve(stmt.Addr, loc); err != nil {
			return err
		}
		return checkExpr(stmt.Expr, s, loc)
	case *Block:
		return checkBody(stmt.Body, s, s.resolved)
	case *If:
		if err := checkExpr(stmt.Cond, s, loc); err != nil {
			return err
		}
		if err := checkBody(stmt.Then, s, s.resolved); err != nil {
			return err
		}
		return checkBody(stmt.Else, s, s.resolved)
	case *For:
		if err := checkExpr(stmt.Start, s, loc); err != nil {
			return err
		}
		if err := checkExpr(stmt.End, s, loc); err != nil {
			return err
		}
		return checkBody(stmt.Body, s, s.resolved)
	case *While:
		if err := checkExpr(stmt.Cond, s, loc); err != nil {
			return err
		}
		return checkBody(stmt.Body, s, s.resolved)
	case *ExprStmt:
		return checkExpr(stmt.Expr, s, loc)
	case *DefFunc:
		return checkBody(stmt.Def.Body, s, s.resolved)
	case *DefStruct, *DefProtocol, *SoftwareSystem, *ContainerDef:
		return nil
	}
	return fmt.Errorf("internal error: unknown statement type %T", stmt)
}

func checkExprs(exprs []Expr, s *scope, loc Loc) error {
	for _, e := range exprs {
		if err := checkExpr(e, s, loc); err != nil {
			return err
		}
	}
	return nil
}

func checkExpr(e Expr, s *scope, loc Loc) error {
	switch e := e.(type) {
	case *Literal, *Load:
		return nil
	case *LoadAddr:
		return s.resolve(e.Addr, loc)
	case *UnaryMinus:
		return checkExpr(e.Expr, s, loc)
	case *Binary:
		return checkExprs([]Expr{e.LHS, e.RHS}, s, loc)
	case *Conditional:
		return checkExprs([]Expr{e.Cond, e.Then, e.Else}, s, loc)
	case *Call:
		if err := checkExpr(e.Callee, s, loc); err != nil {
			return err
		}
		return checkExprs(e.Args, s, loc)
	case *ResolveMember:
		return checkExpr(e.Base, s, loc)
	case *Lookup:
		return checkExprs([]Expr{e.Collection, e.Key}, s, loc)
	case *ConstructValue:
		return checkExprs(e.Args, s, loc)
	}
	return fmt.Errorf("internal error: unknown expression type %T", e)
}
