package astjson_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/brimdata/floyd/compiler/ast"
	"github.com/brimdata/floyd/compiler/astjson"
	"github.com/brimdata/floyd/compiler/srcfiles"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tree(t *testing.T, s string) any {
	t.Helper()
	v, err := astjson.Unmarshal([]byte(s))
	require.NoError(t, err, "JSON %s", s)
	return v
}

func typePtr(t ast.TypeID) *ast.TypeID { return &t }

func TestBuildExpr(t *testing.T) {
	cases := []struct {
		json string
		expr ast.Expr
	}{
		{`["k", 1, "int"]`, &ast.Literal{Value: ast.NewInt(1)}},
		{`["k", 2, "double"]`, &ast.Literal{Value: ast.NewDouble(2)}},
		{`["k", 2.5, "double"]`, &ast.Literal{Value: ast.NewDouble(2.5)}},
		{`["k", "s", "string"]`, &ast.Literal{Value: ast.NewString("s")}},
		{`["k", true, "bool"]`, &ast.Literal{Value: ast.NewBool(true)}},
		{`["k", null, "undefined"]`, &ast.Literal{Value: ast.NewUndefinedValue()}},
		{
			`["+", ["@", "a"], ["k", 1, "int"], "int"]`,
			&ast.Binary{
				Op:        ast.OpAdd,
				LHS:       &ast.Load{Name: "a"},
				RHS:       &ast.Literal{Value: ast.NewInt(1)},
				Annotated: ast.Annotated{Type: typePtr(ast.TypeInt)},
			},
		},
		{`["unary_minus", ["@", "x"]]`, &ast.UnaryMinus{Expr: &ast.Load{Name: "x"}}},
		{`["@i", 1, 2]`, &ast.LoadAddr{Addr: ast.Addr{ParentSteps: 1, Index: 2}}},
		{
			`["?:", ["@", "c"], ["@", "a"], ["@", "b"]]`,
			&ast.Conditional{Cond: &ast.Load{Name: "c"}, Then: &ast.Load{Name: "a"}, Else: &ast.Load{Name: "b"}},
		},
		{
			`["[]", ["->", ["@", "p"], "xs", ["vector", "int"]], ["k", 0, "int"]]`,
			&ast.Lookup{
				Collection: &ast.ResolveMember{
					Base:      &ast.Load{Name: "p"},
					Member:    "xs",
					Annotated: ast.Annotated{Type: typePtr(ast.NewVector(ast.TypeInt))},
				},
				Key: &ast.Literal{Value: ast.NewInt(0)},
			},
		},
		{
			`["call", ["@", "f"], []]`,
			&ast.Call{Callee: &ast.Load{Name: "f"}, Args: []ast.Expr{}},
		},
		{
			`["construct-value", ["dict", ["unresolved", "Point"]], [["k", 1, "int"]]]`,
			&ast.ConstructValue{
				ValueType: ast.NewDict(ast.NewUnresolved("Point")),
				Args:      []ast.Expr{&ast.Literal{Value: ast.NewInt(1)}},
			},
		},
	}
	for _, c := range cases {
		e, err := astjson.BuildExpr(tree(t, c.json))
		require.NoError(t, err, "JSON %s", c.json)
		assert.Equal(t, c.expr, e, "JSON %s", c.json)
	}
}

func TestBind(t *testing.T) {
	cases := []struct {
		json    string
		mutable bool
	}{
		{`[3, "bind", "int", "x", ["k", 1, "int"]]`, false},
		{`[3, "bind", "int", "x", ["k", 1, "int"], {}]`, false},
		{`[3, "bind", "int", "x", ["k", 1, "int"], {"mutable": true}]`, true},
		// Presence of the key marks the binding mutable.
		{`[3, "bind", "int", "x", ["k", 1, "int"], {"mutable": false}]`, true},
	}
	for _, c := range cases {
		s, err := astjson.BuildStatement(tree(t, c.json))
		require.NoError(t, err, "JSON %s", c.json)
		expected := &ast.Bind{
			Name:    "x",
			Type:    ast.TypeInt,
			Expr:    &ast.Literal{Value: ast.NewInt(1)},
			Mutable: c.mutable,
			Loc:     ast.NewLoc(3),
		}
		assert.Equal(t, expected, s, "JSON %s", c.json)
	}
}

func TestBuildErrors(t *testing.T) {
	cases := []struct {
		json string
		msg  string
		kind srcfiles.Kind
	}{
		{`["bind", "int", "x"]`, `"bind" statement has 3 elements, want 4 or 5`, srcfiles.KindGrammar},
		{`["retrun", ["k", 1, "int"]]`, `unknown statement opcode "retrun" (did you mean "return"?)`, srcfiles.KindGrammar},
		{`["whiel", ["@", "x"], []]`, `unknown statement opcode "whiel" (did you mean "while"?)`, srcfiles.KindGrammar},
		{`["zzzzzzzzzzzz"]`, `unknown statement opcode "zzzzzzzzzzzz"`, srcfiles.KindGrammar},
		{`[]`, "statement is missing its opcode", srcfiles.KindGrammar},
		{`"return"`, `statement must be an array, found string "return"`, srcfiles.KindGrammar},
		{`[-1, "return", ["k", 1, "int"]]`, "statement must begin with an opcode or an offset, found number -1", srcfiles.KindGrammar},
		{`["bind", "int", "x", ["k", 1, "int"], []]`, "bind metadata must be an object, found array", srcfiles.KindGrammar},
		{`["bind", "int", "", ["k", 1, "int"]]`, `bind name must be a non-empty string, found string ""`, srcfiles.KindGrammar},
		{`["return", ["k", 1.5, "int"]]`, "literal: json.Number is not a valid int constant", srcfiles.KindGrammar},
		{`["return", ["@i", -1, 0]]`, "parent steps must be a non-negative integer, found number -1", srcfiles.KindGrammar},
		{`["return", ["k", 1, "float"]]`, `unknown type "float"`, srcfiles.KindGrammar},
		{`["for", "half_range", "i", ["k", 0, "int"], ["k", 1, "int"], []]`, `for range must be "open_range" or "closed_range", found string "half_range"`, srcfiles.KindGrammar},
		{
			`["def-func", {"name": "f", "args": [], "statements": [], "return_type": "void", "impure": 1}]`,
			`function "f": "impure" must be true or false, found number 1`,
			srcfiles.KindShape,
		},
		{
			`["def-func", {"name": "f", "args": [], "statements": [], "impure": true}]`,
			`function "f": missing key "return_type"`,
			srcfiles.KindShape,
		},
		{`["def-struct", {"name": "P"}]`, `struct definition: missing key "members"`, srcfiles.KindShape},
		{`["def-struct", {"name": "P", "members": [{"name": "x"}]}]`, `struct definition: member "x" is missing key "type"`, srcfiles.KindShape},
		{`["block", {"symbols": []}]`, `body is missing key "statements"`, srcfiles.KindShape},
	}
	for _, c := range cases {
		_, err := astjson.BuildStatement(tree(t, c.json))
		require.Error(t, err, "JSON %s", c.json)
		assert.Equal(t, c.msg, err.Error(), "JSON %s", c.json)
		var serr *srcfiles.Error
		require.True(t, errors.As(err, &serr), "JSON %s", c.json)
		assert.Equal(t, c.kind, serr.Kind, "JSON %s", c.json)
	}
}

func TestErrorOffset(t *testing.T) {
	body := tree(t, `[[0, "let"], [17, "block", [[21, "return", ["zz"]]]]]`)
	_, err := astjson.BuildBody(body)
	var serr *srcfiles.Error
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, 0, serr.Pos)

	body = tree(t, `[[17, "block", [["return", ["zz"]]]]]`)
	_, err = astjson.BuildBody(body)
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, 17, serr.Pos, "nearest enclosing offset")
	assert.Contains(t, serr.Msg, `unknown expression opcode "zz"`)

	// An offset inside an expression positions errors within it only.
	stmt := tree(t, `[5, "return", ["+", [9, "@", "a"], ["zz"]]]`)
	_, err = astjson.BuildStatement(stmt)
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, 5, serr.Pos)
	stmt = tree(t, `[5, "return", ["+", [9, "@", "a", "extra", "more"], ["k", 1, "int"]]]`)
	_, err = astjson.BuildStatement(stmt)
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, 9, serr.Pos)

	_, err = astjson.BuildExpr(tree(t, `["@", "x", "int", "extra"]`))
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, -1, serr.Pos)
}

func TestDepthLimit(t *testing.T) {
	deep := strings.Repeat(`["unary_minus", `, 10) + `["k", 1, "int"]` + strings.Repeat("]", 10)
	_, err := astjson.NewBuilder(5).Expr(tree(t, deep))
	var serr *srcfiles.Error
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, srcfiles.KindDepth, serr.Kind)
	_, err = astjson.NewBuilder(20).Expr(tree(t, deep))
	assert.NoError(t, err)
}

func TestDecodeSymbols(t *testing.T) {
	table, err := astjson.DecodeSymbols(tree(t, `[[2, "z", {"symbol_type": "mutable_local", "value_type": "string", "init": ["hi", "string"]}]]`))
	require.NoError(t, err)
	require.Equal(t, 3, table.Len())
	for k := range 2 {
		e, _ := table.At(k)
		assert.Equal(t, ast.Placeholder, e)
	}
	init := ast.NewString("hi")
	e, _ := table.At(2)
	assert.Equal(t, ast.SymbolEntry{Name: "z", Symbol: ast.Symbol{Kind: ast.MutableLocal, Type: ast.TypeString, Init: &init}}, e)

	// Order does not matter.
	table, err = astjson.DecodeSymbols(tree(t, `[
		[1, "b", {"symbol_type": "immutable_local", "value_type": "int", "init": null}],
		[0, "a", {"symbol_type": "immutable_local", "value_type": "double", "init": [1, "double"]}]
	]`))
	require.NoError(t, err)
	index, sym, ok := table.Lookup("a")
	require.True(t, ok)
	assert.Equal(t, 0, index)
	assert.Equal(t, ast.NewDouble(1), *sym.Init)

	table, err = astjson.DecodeSymbols(tree(t, `[]`))
	require.NoError(t, err)
	assert.Equal(t, ast.SymbolTable{}, table)

	errs := []struct {
		json, msg string
	}{
		{`{}`, "symbol table must be an array, found object"},
		{`[[0, "a"]]`, "symbol entry must be [index, name, symbol], found array"},
		{`[[-1, "a", {}]]`, "symbol index must be a non-negative integer, found number -1"},
		{`[[99999999, "a", {"symbol_type": "immutable_local", "value_type": "int"}]]`, "symbol index 99999999 is out of range"},
		{`[[0, "a", {"symbol_type": "global", "value_type": "int"}]]`, `symbol "a": unknown symbol_type "global"`},
		{`[[0, "a", {"symbol_type": "immutable_local"}]]`, `symbol "a": missing key "value_type"`},
		{
			`[[0, "a", {"symbol_type": "immutable_local", "value_type": "int"}], [0, "b", {"symbol_type": "immutable_local", "value_type": "int"}]]`,
			"duplicate symbol index 0",
		},
	}
	for _, c := range errs {
		_, err := astjson.DecodeSymbols(tree(t, c.json))
		assert.EqualError(t, err, c.msg, "JSON %s", c.json)
	}
}

func TestEncodeSymbols(t *testing.T) {
	init := ast.NewInt(7)
	table := ast.NewSymbolTable(
		ast.Placeholder,
		ast.SymbolEntry{Name: "n", Symbol: ast.Symbol{Kind: ast.MutableLocal, Type: ast.TypeInt, Init: &init}},
	)
	b, err := astjson.Marshal(astjson.EncodeSymbols(table))
	require.NoError(t, err)
	expected := `[
		[0, "", {"symbol_type": "immutable_local", "value_type": "undefined", "init": null}],
		[1, "n", {"symbol_type": "mutable_local", "value_type": "int", "init": [7, "int"]}]
	]`
	assert.JSONEq(t, expected, string(b))
}

func TestEncodeBody(t *testing.T) {
	assert.Equal(t, []any{}, astjson.EncodeBody(nil))
	b := ast.NewBody(nil, ast.SymbolTable{})
	assert.Equal(t, []any{}, astjson.EncodeBody(b))
	symbols, _ := ast.SymbolTable{}.With("x", ast.Symbol{Type: ast.TypeInt})
	obj, ok := astjson.EncodeBody(ast.NewBody(nil, symbols)).(map[string]any)
	require.True(t, ok)
	assert.Contains(t, obj, "statements")
	assert.Contains(t, obj, "symbols")
}

func TestDecodeAST(t *testing.T) {
	a, err := astjson.UnmarshalAST([]byte(`[["return", ["k", 1, "int"]]]`))
	require.NoError(t, err)
	assert.IsType(t, &ast.Program{}, a)

	a, err = astjson.UnmarshalAST([]byte(`{"globals": [], "function_defs": []}`))
	require.NoError(t, err)
	assert.IsType(t, &ast.SAST{}, a)

	_, err = astjson.UnmarshalAST([]byte(`"program"`))
	assert.EqualError(t, err, `AST must be an array or an object, found string "program"`)
	_, err = astjson.UnmarshalAST([]byte(`{"globals": []}`))
	assert.EqualError(t, err, `AST object is missing key "function_defs"`)
}

func TestUnmarshal(t *testing.T) {
	v, err := astjson.Unmarshal([]byte(" [1, 2.5] \n"))
	require.NoError(t, err)
	assert.Len(t, v, 2)
	_, err = astjson.Unmarshal([]byte(`[1] [2]`))
	assert.ErrorContains(t, err, "trailing data")
	_, err = astjson.Unmarshal([]byte(`[1`))
	assert.Error(t, err)
}

func stmts(s ...ast.Statement) []ast.Statement { return s }

func TestRoundTrip(t *testing.T) {
	init := ast.NewInt(5)
	symbols := ast.NewSymbolTable(
		ast.SymbolEntry{Name: "i", Symbol: ast.Symbol{Kind: ast.MutableLocal, Type: ast.TypeInt, Init: &init}},
		ast.Placeholder,
	)
	point := &ast.StructDef{Name: "Point", Members: []ast.Member{{Name: "x", Type: ast.TypeDouble}}}
	shape := &ast.ProtocolDef{Name: "Shape", Members: []ast.Member{
		{Name: "area", Type: ast.NewFunction(ast.TypeDouble, []ast.TypeID{ast.NewUnresolved("Point")}, false)},
	}}
	fn := &ast.FunctionDef{
		Name:       "f",
		Args:       []ast.Member{{Name: "p", Type: ast.NewUnresolved("Point")}},
		ReturnType: ast.TypeDouble,
		Pure:       true,
		Body: ast.NewBody(stmts(
			&ast.Return{Expr: &ast.ResolveMember{Base: &ast.Load{Name: "p"}, Member: "x"}, Loc: ast.NewLoc(40)},
		), ast.SymbolTable{}),
	}
	program := &ast.Program{Body: ast.NewBody(stmts(
		&ast.DefStruct{Def: point, Loc: ast.NewLoc(0)},
		&ast.DefProtocol{Def: shape, Loc: ast.NoLoc},
		&ast.DefFunc{Def: fn, Loc: ast.NewLoc(30)},
		&ast.Block{Body: ast.NewBody(stmts(
			&ast.For{
				Iterator: "k",
				Start:    &ast.Literal{Value: ast.NewInt(0)},
				End:      &ast.LoadAddr{Addr: ast.Addr{Index: 0}, Annotated: ast.Annotated{Type: typePtr(ast.TypeInt)}},
				Range:    ast.OpenRange,
				Body: ast.NewBody(stmts(
					&ast.StoreAddr{Addr: ast.Addr{ParentSteps: 1, Index: 0}, Expr: &ast.Binary{
						Op:  ast.OpSubtract,
						LHS: &ast.LoadAddr{Addr: ast.Addr{ParentSteps: 1, Index: 0}},
						RHS: &ast.UnaryMinus{Expr: &ast.Literal{Value: ast.NewDouble(1.5)}},
					}, Loc: ast.NoLoc},
				), ast.SymbolTable{}),
				Loc: ast.NewLoc(60),
			},
		), symbols), Loc: ast.NewLoc(55)},
		&ast.If{
			Cond: &ast.Conditional{Cond: &ast.Load{Name: "a"}, Then: &ast.Load{Name: "b"}, Else: &ast.Literal{Value: ast.NewBool(false)}},
			Then: ast.NewBody(nil, ast.SymbolTable{}),
			Else: ast.NewBody(stmts(&ast.While{
				Cond: &ast.Load{Name: "c"},
				Body: ast.NewBody(stmts(&ast.ExprStmt{Expr: &ast.Call{
					Callee: &ast.Load{Name: "g"},
					Args:   []ast.Expr{&ast.ConstructValue{ValueType: ast.NewVector(ast.TypeString), Args: []ast.Expr{}}},
				}, Loc: ast.NoLoc}), ast.SymbolTable{}),
				Loc: ast.NoLoc,
			}), ast.SymbolTable{}),
			Loc: ast.NewLoc(90),
		},
		&ast.Store{Name: "s", Expr: &ast.Lookup{Collection: &ast.Load{Name: "d"}, Key: &ast.Literal{Value: ast.NewString("k")}}, Loc: ast.NoLoc},
		&ast.SoftwareSystem{JSON: map[string]any{"name": "shop"}, Loc: ast.NewLoc(120)},
		&ast.ContainerDef{JSON: []any{"web", true}, Loc: ast.NoLoc},
	), ast.SymbolTable{})}

	b, err := astjson.Marshal(astjson.EncodeAST(program))
	require.NoError(t, err)
	out, err := astjson.UnmarshalAST(b)
	require.NoError(t, err)
	assert.Equal(t, program, out)
	assert.Equal(t, program, astjson.Copy(program))

	sast := &ast.SAST{
		Globals:        ast.NewBody(stmts(&ast.Bind{Name: "g", Type: ast.TypeInt, Expr: &ast.Literal{Value: ast.NewInt(1)}, Mutable: true, Loc: ast.NoLoc}), symbols),
		FunctionDefs:   []*ast.FunctionDef{fn},
		SoftwareSystem: map[string]any{"name": "shop"},
		ContainerDef:   map[string]any{"name": "api"},
	}
	b, err = astjson.Marshal(astjson.EncodeAST(sast))
	require.NoError(t, err)
	out, err = astjson.UnmarshalAST(b)
	require.NoError(t, err)
	assert.Equal(t, sast, out)
}

func TestProgramSymbols(t *testing.T) {
	symbols := ast.NewSymbolTable(ast.SymbolEntry{Name: "n", Symbol: ast.Symbol{Kind: ast.MutableLocal, Type: ast.TypeInt}})
	program := &ast.Program{Body: ast.NewBody(stmts(
		&ast.StoreAddr{Addr: ast.Addr{Index: 0}, Expr: &ast.Literal{Value: ast.NewInt(1)}, Loc: ast.NewLoc(0)},
	), symbols)}

	_, err := astjson.MarshalAST(program)
	assert.ErrorIs(t, err, astjson.ErrProgramSymbols)
	_, err = astjson.MarshalASTIndent(program)
	assert.ErrorIs(t, err, astjson.ErrProgramSymbols)
	assert.Equal(t, program, astjson.Copy(program))

	// Symbols of nested bodies survive the array form.
	nested := &ast.Program{Body: ast.NewBody(stmts(&ast.Block{Body: program.Body, Loc: ast.NewLoc(0)}), ast.SymbolTable{})}
	b, err := astjson.MarshalAST(nested)
	require.NoError(t, err)
	out, err := astjson.UnmarshalAST(b)
	require.NoError(t, err)
	assert.Equal(t, nested, out)
}
