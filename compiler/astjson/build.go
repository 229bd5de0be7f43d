package astjson

import (
	"fmt"

	"github.com/agnivade/levenshtein"
	"github.com/brimdata/floyd/compiler/ast"
	"github.com/brimdata/floyd/compiler/srcfiles"
)

// Builder turns JSON trees into AST nodes.  Errors are *srcfiles.Error
// values positioned at the offset of the nearest enclosing node that
// carries one.
type Builder struct {
	MaxDepth int
}

func NewBuilder(maxDepth int) *Builder {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	return &Builder{MaxDepth: maxDepth}
}

var defaultBuilder = NewBuilder(DefaultMaxDepth)

func BuildStatement(node any) (ast.Statement, error) { return defaultBuilder.Statement(node) }
func BuildExpr(node any) (ast.Expr, error)           { return defaultBuilder.Expr(node) }
func BuildBody(node any) (*ast.Body, error)          { return defaultBuilder.Body(node) }
func BuildProgram(node any) (*ast.Program, error)    { return defaultBuilder.Program(node) }
func DecodeAST(node any) (ast.Tree, error)           { return defaultBuilder.AST(node) }

func (b *Builder) Statement(node any) (ast.Statement, error) {
	return b.session().statement(node)
}

func (b *Builder) Expr(node any) (ast.Expr, error) {
	return b.session().expr(node)
}

func (b *Builder) Body(node any) (*ast.Body, error) {
	return b.session().body(node)
}

// Program builds the flat program form from an array of statements.
func (b *Builder) Program(node any) (*ast.Program, error) {
	body, err := b.session().body(node)
	if err != nil {
		return nil, err
	}
	return &ast.Program{Body: body}, nil
}

// AST decodes either top-level form: an array is a Program and an object
// is a SAST.
func (b *Builder) AST(node any) (ast.Tree, error) {
	s := b.session()
	switch node := node.(type) {
	case []any:
		body, err := s.body(node)
		if err != nil {
			return nil, err
		}
		return &ast.Program{Body: body}, nil
	case map[string]any:
		return s.sast(node)
	}
	return nil, s.errorf(srcfiles.KindGrammar, "AST must be an array or an object, found %s", describe(node))
}

func (b *Builder) session() *builder {
	return &builder{maxDepth: b.MaxDepth, offset: -1}
}

// builder holds the state of one decode.
type builder struct {
	maxDepth int
	depth    int
	offset   int
}

func (b *builder) errorf(kind srcfiles.Kind, format string, args ...any) error {
	return srcfiles.NewError(kind, b.offset, format, args...)
}

func (b *builder) enter() error {
	b.depth++
	if b.depth > b.maxDepth {
		return b.errorf(srcfiles.KindDepth, "nesting exceeds %d", b.maxDepth)
	}
	return nil
}

func (b *builder) leave() { b.depth-- }

// split checks that node is an array holding a known opcode with a
// permitted length and returns the elements following the opcode.  A
// leading offset moves the error position and is returned as a Loc.
func (b *builder) split(node any, arity map[string][]int, known []string, what string) (ast.Loc, string, []any, error) {
	arr, ok := node.([]any)
	if !ok {
		return ast.NoLoc, "", nil, b.errorf(srcfiles.KindGrammar, "%s must be an array, found %s", what, describe(node))
	}
	loc := ast.NoLoc
	if len(arr) > 0 {
		if _, isString := arr[0].(string); !isString {
			offset, ok := toInt(arr[0])
			if !ok || offset < 0 {
				return ast.NoLoc, "", nil, b.errorf(srcfiles.KindGrammar, "%s must begin with an opcode or an offset, found %s", what, describe(arr[0]))
			}
			loc = ast.NewLoc(int(offset))
			b.offset = loc.Pos()
			arr = arr[1:]
		}
	}
	op, ok := stringAt(arr, 0)
	if !ok {
		return ast.NoLoc, "", nil, b.errorf(srcfiles.KindGrammar, "%s is missing its opcode", what)
	}
	lengths, ok := arity[op]
	if !ok {
		return ast.NoLoc, "", nil, b.unknown(op, known, what)
	}
	if !arityOK(lengths, len(arr)) {
		return ast.NoLoc, "", nil, b.errorf(srcfiles.KindGrammar, "%q %s has %d elements, want %s", op, what, len(arr), lengthList(lengths))
	}
	return loc, op, arr[1:], nil
}

func lengthList(lengths []int) string {
	if len(lengths) == 1 {
		return fmt.Sprint(lengths[0])
	}
	return fmt.Sprintf("%d or %d", lengths[0], lengths[1])
}

// unknown reports an unknown opcode and suggests the nearest known one.
func (b *builder) unknown(op string, known []string, what string) error {
	best, dist := "", -1
	for _, k := range known {
		if d := levenshtein.ComputeDistance(op, k); dist < 0 || d < dist {
			best, dist = k, d
		}
	}
	if dist >= 0 && dist <= 3 && dist < len(op) {
		return b.errorf(srcfiles.KindGrammar, "unknown %s opcode %q (did you mean %q?)", what, op, best)
	}
	return b.errorf(srcfiles.KindGrammar, "unknown %s opcode %q", what, op)
}

func (b *builder) expr(node any) (ast.Expr, error) {
	if err := b.enter(); err != nil {
		return nil, err
	}
	defer b.leave()
	outer := b.offset
	defer func() { b.offset = outer }()
	_, op, args, err := b.split(node, exprArity, exprOpcodes, "expression")
	if err != nil {
		return nil, err
	}
	switch op {
	case OpLiteral:
		typ, err := b.typ(args[1])
		if err != nil {
			return nil, err
		}
		v, err := decodeData(args[0], typ)
		if err != nil {
			return nil, b.errorf(srcfiles.KindGrammar, "literal: %s", err)
		}
		return &ast.Literal{Value: v}, nil
	case OpUnaryMinus:
		e, err := b.expr(args[0])
		if err != nil {
			return nil, err
		}
		a, err := b.annotation(args, 1)
		if err != nil {
			return nil, err
		}
		return &ast.UnaryMinus{Expr: e, Annotated: a}, nil
	case OpConditional:
		exprs, err := b.exprs(args[:3])
		if err != nil {
			return nil, err
		}
		a, err := b.annotation(args, 3)
		if err != nil {
			return nil, err
		}
		return &ast.Conditional{Cond: exprs[0], Then: exprs[1], Else: exprs[2], Annotated: a}, nil
	case OpCall:
		callee, err := b.expr(args[0])
		if err != nil {
			return nil, err
		}
		list, err := b.exprList(args[1], "call arguments")
		if err != nil {
			return nil, err
		}
		a, err := b.annotation(args, 2)
		if err != nil {
			return nil, err
		}
		return &ast.Call{Callee: callee, Args: list, Annotated: a}, nil
	case OpResolveMember:
		base, err := b.expr(args[0])
		if err != nil {
			return nil, err
		}
		member, ok := args[1].(string)
		if !ok {
			return nil, b.errorf(srcfiles.KindGrammar, "member name must be a string, found %s", describe(args[1]))
		}
		a, err := b.annotation(args, 2)
		if err != nil {
			return nil, err
		}
		return &ast.ResolveMember{Base: base, Member: member, Annotated: a}, nil
	case OpLoad:
		name, ok := args[0].(string)
		if !ok {
			return nil, b.errorf(srcfiles.KindGrammar, "variable name must be a string, found %s", describe(args[0]))
		}
		a, err := b.annotation(args, 1)
		if err != nil {
			return nil, err
		}
		return &ast.Load{Name: name, Annotated: a}, nil
	case OpLoadAddr:
		addr, err := b.addr(args[0], args[1])
		if err != nil {
			return nil, err
		}
		a, err := b.annotation(args, 2)
		if err != nil {
			return nil, err
		}
		return &ast.LoadAddr{Addr: addr, Annotated: a}, nil
	case OpLookup:
		exprs, err := b.exprs(args[:2])
		if err != nil {
			return nil, err
		}
		a, err := b.annotation(args, 2)
		if err != nil {
			return nil, err
		}
		return &ast.Lookup{Collection: exprs[0], Key: exprs[1], Annotated: a}, nil
	case OpConstructValue:
		typ, err := b.typ(args[0])
		if err != nil {
			return nil, err
		}
		list, err := b.exprList(args[1], "constructor arguments")
		if err != nil {
			return nil, err
		}
		a, err := b.annotation(args, 2)
		if err != nil {
			return nil, err
		}
		return &ast.ConstructValue{ValueType: typ, Args: list, Annotated: a}, nil
	}
	binop, ok := ast.LookupOp(op)
	if !ok {
		return nil, b.errorf(srcfiles.KindGrammar, "internal error: unhandled expression opcode %q", op)
	}
	exprs, err := b.exprs(args[:2])
	if err != nil {
		return nil, err
	}
	a, err := b.annotation(args, 2)
	if err != nil {
		return nil, err
	}
	return &ast.Binary{Op: binop, LHS: exprs[0], RHS: exprs[1], Annotated: a}, nil
}

func (b *builder) exprs(nodes []any) ([]ast.Expr, error) {
	exprs := make([]ast.Expr, 0, len(nodes))
	for _, n := range nodes {
		e, err := b.expr(n)
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, e)
	}
	return exprs, nil
}

func (b *builder) exprList(node any, what string) ([]ast.Expr, error) {
	list, ok := node.([]any)
	if !ok {
		return nil, b.errorf(srcfiles.KindGrammar, "%s must be an array, found %s", what, describe(node))
	}
	return b.exprs(list)
}

// annotation decodes the optional result type at args[k].
func (b *builder) annotation(args []any, k int) (ast.Annotated, error) {
	if k >= len(args) {
		return ast.Annotated{}, nil
	}
	typ, err := b.typ(args[k])
	if err != nil {
		return ast.Annotated{}, err
	}
	return ast.Annotated{Type: &typ}, nil
}

func (b *builder) typ(node any) (ast.TypeID, error) {
	typ, err := DecodeType(node)
	if err != nil {
		return ast.TypeID{}, b.errorf(srcfiles.KindGrammar, "%s", err)
	}
	return typ, nil
}

func (b *builder) addr(steps, index any) (ast.Addr, error) {
	s, ok := toInt(steps)
	if !ok || s < 0 {
		return ast.Addr{}, b.errorf(srcfiles.KindGrammar, "parent steps must be a non-negative integer, found %s", describe(steps))
	}
	i, ok := toInt(index)
	if !ok || i < 0 {
		return ast.Addr{}, b.errorf(srcfiles.KindGrammar, "slot index must be a non-negative integer, found %s", describe(index))
	}
	return ast.Addr{ParentSteps: int(s), Index: int(i)}, nil
}

func (b *builder) statement(node any) (ast.Statement, error) {
	outer := b.offset
	defer func() { b.offset = outer }()
	loc, op, args, err := b.split(node, stmtArity, stmtOpcodes, "statement")
	if err != nil {
		return nil, err
	}
	switch op {
	case OpReturn:
		e, err := b.expr(args[0])
		if err != nil {
			return nil, err
		}
		return &ast.Return{Expr: e, Loc: loc}, nil
	case OpBind:
		typ, err := b.typ(args[0])
		if err != nil {
			return nil, err
		}
		name, ok := args[1].(string)
		if !ok || name == "" {
			return nil, b.errorf(srcfiles.KindGrammar, "bind name must be a non-empty string, found %s", describe(args[1]))
		}
		e, err := b.expr(args[2])
		if err != nil {
			return nil, err
		}
		var mutable bool
		if len(args) == 4 {
			meta, ok := args[3].(map[string]any)
			if !ok {
				return nil, b.errorf(srcfiles.KindGrammar, "bind metadata must be an object, found %s", describe(args[3]))
			}
			_, mutable = meta["mutable"]
		}
		return &ast.Bind{Name: name, Type: typ, Expr: e, Mutable: mutable, Loc: loc}, nil
	case OpStore:
		name, ok := args[0].(string)
		if !ok || name == "" {
			return nil, b.errorf(srcfiles.KindGrammar, "store name must be a non-empty string, found %s", describe(args[0]))
		}
		e, err := b.expr(args[1])
		if err != nil {
			return nil, err
		}
		return &ast.Store{Name: name, Expr: e, Loc: loc}, nil
	case OpStoreAddr:
		addr, err := b.addr(args[0], args[1])
		if err != nil {
			return nil, err
		}
		e, err := b.expr(args[2])
		if err != nil {
			return nil, err
		}
		return &ast.StoreAddr{Addr: addr, Expr: e, Loc: loc}, nil
	case OpBlock:
		body, err := b.body(args[0])
		if err != nil {
			return nil, err
		}
		return &ast.Block{Body: body, Loc: loc}, nil
	case OpIf:
		cond, err := b.expr(args[0])
		if err != nil {
			return nil, err
		}
		then, err := b.body(args[1])
		if err != nil {
			return nil, err
		}
		var els *ast.Body
		if len(args) == 3 {
			if els, err = b.body(args[2]); err != nil {
				return nil, err
			}
		}
		return &ast.If{Cond: cond, Then: then, Else: els, Loc: loc}, nil
	case OpFor:
		mode, _ := args[0].(string)
		rng, ok := ast.LookupRangeKind(mode)
		if !ok {
			return nil, b.errorf(srcfiles.KindGrammar, "for range must be \"open_range\" or \"closed_range\", found %s", describe(args[0]))
		}
		iter, ok := args[1].(string)
		if !ok || iter == "" {
			return nil, b.errorf(srcfiles.KindGrammar, "for iterator must be a non-empty string, found %s", describe(args[1]))
		}
		bounds, err := b.exprs(args[2:4])
		if err != nil {
			return nil, err
		}
		body, err := b.body(args[4])
		if err != nil {
			return nil, err
		}
		return &ast.For{Iterator: iter, Start: bounds[0], End: bounds[1], Range: rng, Body: body, Loc: loc}, nil
	case OpWhile:
		cond, err := b.expr(args[0])
		if err != nil {
			return nil, err
		}
		body, err := b.body(args[1])
		if err != nil {
			return nil, err
		}
		return &ast.While{Cond: cond, Body: body, Loc: loc}, nil
	case OpExpressionStatement:
		e, err := b.expr(args[0])
		if err != nil {
			return nil, err
		}
		return &ast.ExprStmt{Expr: e, Loc: loc}, nil
	case OpDefStruct:
		name, members, err := b.namedMembers(args[0], "struct")
		if err != nil {
			return nil, err
		}
		return &ast.DefStruct{Def: &ast.StructDef{Name: name, Members: members}, Loc: loc}, nil
	case OpDefProtocol:
		name, members, err := b.namedMembers(args[0], "protocol")
		if err != nil {
			return nil, err
		}
		return &ast.DefProtocol{Def: &ast.ProtocolDef{Name: name, Members: members}, Loc: loc}, nil
	case OpDefFunc:
		def, err := b.funcDef(args[0])
		if err != nil {
			return nil, err
		}
		return &ast.DefFunc{Def: def, Loc: loc}, nil
	case OpSoftwareSystem:
		return &ast.SoftwareSystem{JSON: args[0], Loc: loc}, nil
	case OpContainerDef:
		return &ast.ContainerDef{JSON: args[0], Loc: loc}, nil
	}
	return nil, b.errorf(srcfiles.KindGrammar, "internal error: unhandled statement opcode %q", op)
}

// body decodes an array of statements or an object holding "statements"
// and an optional "symbols" table.
func (b *builder) body(node any) (*ast.Body, error) {
	if err := b.enter(); err != nil {
		return nil, err
	}
	defer b.leave()
	var symbols ast.SymbolTable
	if obj, ok := node.(map[string]any); ok {
		stmts, ok := obj["statements"]
		if !ok {
			return nil, b.errorf(srcfiles.KindShape, "body is missing key \"statements\"")
		}
		if s, ok := obj["symbols"]; ok && s != nil {
			var err error
			if symbols, err = DecodeSymbols(s); err != nil {
				return nil, b.errorf(srcfiles.KindShape, "%s", err)
			}
		}
		node = stmts
	}
	list, ok := node.([]any)
	if !ok {
		return nil, b.errorf(srcfiles.KindGrammar, "body must be an array or an object, found %s", describe(node))
	}
	stmts := make([]ast.Statement, 0, len(list))
	for _, n := range list {
		s, err := b.statement(n)
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, s)
	}
	return ast.NewBody(stmts, symbols), nil
}

func (b *builder) object(node any, what string) (map[string]any, error) {
	obj, ok := node.(map[string]any)
	if !ok {
		return nil, b.errorf(srcfiles.KindShape, "%s definition must be an object, found %s", what, describe(node))
	}
	return obj, nil
}

func (b *builder) requireString(obj map[string]any, key, what string) (string, error) {
	s, err := requireString(obj, key)
	if err != nil {
		return "", b.errorf(srcfiles.KindShape, "%s definition: %s", what, err)
	}
	return s, nil
}

func (b *builder) members(obj map[string]any, key, what string) ([]ast.Member, error) {
	v, ok := obj[key]
	if !ok {
		return nil, b.errorf(srcfiles.KindShape, "%s definition: missing key %q", what, key)
	}
	list, ok := v.([]any)
	if !ok {
		return nil, b.errorf(srcfiles.KindShape, "%s definition: key %q must be an array, found %s", what, key, describe(v))
	}
	members := make([]ast.Member, 0, len(list))
	for _, elem := range list {
		m, err := BuildMember(elem)
		if err != nil {
			return nil, b.errorf(srcfiles.KindShape, "%s definition: %s", what, err)
		}
		members = append(members, m)
	}
	return members, nil
}

func (b *builder) namedMembers(node any, what string) (string, []ast.Member, error) {
	obj, err := b.object(node, what)
	if err != nil {
		return "", nil, err
	}
	name, err := b.requireString(obj, "name", what)
	if err != nil {
		return "", nil, err
	}
	members, err := b.members(obj, "members", what)
	if err != nil {
		return "", nil, err
	}
	return name, members, nil
}

func (b *builder) funcDef(node any) (*ast.FunctionDef, error) {
	obj, err := b.object(node, "function")
	if err != nil {
		return nil, err
	}
	name, err := b.requireString(obj, "name", "function")
	if err != nil {
		return nil, err
	}
	args, err := b.members(obj, "args", "function")
	if err != nil {
		return nil, err
	}
	rt, ok := obj["return_type"]
	if !ok {
		return nil, b.errorf(srcfiles.KindShape, "function %q: missing key \"return_type\"", name)
	}
	ret, err := DecodeType(rt)
	if err != nil {
		return nil, b.errorf(srcfiles.KindShape, "function %q: %s", name, err)
	}
	impure, ok := obj["impure"].(bool)
	if !ok {
		return nil, b.errorf(srcfiles.KindShape, "function %q: \"impure\" must be true or false, found %s", name, describe(obj["impure"]))
	}
	stmts, ok := obj["statements"]
	if !ok {
		return nil, b.errorf(srcfiles.KindShape, "function %q: missing key \"statements\"", name)
	}
	body, err := b.body(stmts)
	if err != nil {
		return nil, err
	}
	return &ast.FunctionDef{Name: name, Args: args, Body: body, ReturnType: ret, Pure: !impure}, nil
}

func (b *builder) sast(obj map[string]any) (*ast.SAST, error) {
	g, ok := obj["globals"]
	if !ok {
		return nil, b.errorf(srcfiles.KindShape, "AST object is missing key \"globals\"")
	}
	globals, err := b.body(g)
	if err != nil {
		return nil, err
	}
	f, ok := obj["function_defs"]
	if !ok {
		return nil, b.errorf(srcfiles.KindShape, "AST object is missing key \"function_defs\"")
	}
	list, ok := f.([]any)
	if !ok {
		return nil, b.errorf(srcfiles.KindShape, "\"function_defs\" must be an array, found %s", describe(f))
	}
	defs := make([]*ast.FunctionDef, 0, len(list))
	for _, elem := range list {
		def, err := b.funcDef(elem)
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}
	return &ast.SAST{
		Globals:        globals,
		FunctionDefs:   defs,
		SoftwareSystem: obj[softwareSystemKey],
		ContainerDef:   obj[containerDefKey],
	}, nil
}

const (
	softwareSystemKey = "software-system"
	containerDefKey   = "container-def"
)
