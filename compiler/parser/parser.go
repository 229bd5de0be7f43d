package parser

import (
	"strings"

	"github.com/brimdata/floyd/compiler/ast"
	"github.com/brimdata/floyd/compiler/astjson"
	"github.com/brimdata/floyd/compiler/srcfiles"
)

var keywords = map[string]bool{
	"return":   true,
	"if":       true,
	"else":     true,
	"for":      true,
	"in":       true,
	"while":    true,
	"let":      true,
	"mutable":  true,
	"struct":   true,
	"protocol": true,
	"impure":   true,
	"true":     true,
	"false":    true,
}

const (
	softwareSystemKeyword = "software-system-def"
	containerDefKeyword   = "container-def"
)

// parser turns Floyd source text into the JSON tree consumed by astjson.
// Every statement node is prefixed with its byte offset.
type parser struct {
	exprs    *ExprParser[any]
	maxDepth int
}

func newParser(maxDepth int) *parser {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	return &parser{exprs: NewExprParser[any](JSONMaker{}, maxDepth), maxDepth: maxDepth}
}

// ParseStatements parses all statements in text into a JSON tree.
func ParseStatements(text string) ([]any, error) {
	return newParser(DefaultMaxDepth).program(NewCursor(text))
}

func (p *parser) program(c Cursor) ([]any, error) {
	stmts, rest, err := p.statements(c, 0)
	if err != nil {
		return nil, err
	}
	if rest = SkipWhitespace(rest); !rest.Empty() {
		return nil, srcfiles.NewError(srcfiles.KindGrammar, rest.Pos(), "unexpected %q", rest.Peek(1))
	}
	return stmts, nil
}

// statements parses statements until the end of the text or a closing
// brace, which is left unconsumed.
func (p *parser) statements(c Cursor, depth int) ([]any, Cursor, error) {
	stmts := []any{}
	for {
		c = SkipWhitespace(c)
		if c.Empty() || c.HasPrefix("}") {
			return stmts, c, nil
		}
		stmt, rest, err := p.statement(c, depth)
		if err != nil {
			return nil, c, err
		}
		stmts = append(stmts, stmt)
		c = rest
	}
}

func node(pos int, op string, args ...any) []any {
	return append([]any{pos, op}, args...)
}

func (p *parser) statement(c Cursor, depth int) (any, Cursor, error) {
	if depth > p.maxDepth {
		return nil, c, srcfiles.NewError(srcfiles.KindDepth, c.Pos(), "statement nesting exceeds %d", p.maxDepth)
	}
	c = SkipWhitespace(c)
	pos := c.Pos()
	switch {
	case c.HasPrefix("{"):
		body, rest, err := p.block(c, depth)
		if err != nil {
			return nil, c, err
		}
		return node(pos, astjson.OpBlock, body), rest, nil
	case isMetadata(c, softwareSystemKeyword):
		return p.jsonBlob(c, pos, softwareSystemKeyword, astjson.OpSoftwareSystem)
	case isMetadata(c, containerDefKeyword):
		return p.jsonBlob(c, pos, containerDefKeyword, astjson.OpContainerDef)
	}
	word, after := readIdentifier(c)
	switch word {
	case "return":
		e, rest, err := p.expr(after, depth)
		if err != nil {
			return nil, c, err
		}
		return node(pos, astjson.OpReturn, e), rest, nil
	case "if":
		return p.ifStatement(after, pos, depth)
	case "for":
		return p.forStatement(after, pos, depth)
	case "while":
		return p.whileStatement(after, pos, depth)
	case "struct":
		return p.structDef(after, pos)
	case "protocol":
		return p.protocolDef(after, pos)
	case "let", "mutable":
		return p.bind(after, pos, word == "mutable", depth)
	}
	if stmt, rest, ok, err := p.typed(c, pos, depth); ok || err != nil {
		return stmt, rest, err
	}
	if word != "" && !keywords[word] && isAssign(SkipWhitespace(after)) {
		e, rest, err := p.expr(SkipWhitespace(after).Skip(1), depth)
		if err != nil {
			return nil, c, err
		}
		return node(pos, astjson.OpStore, word, e), rest, nil
	}
	e, rest, err := p.expr(c, depth)
	if err != nil {
		return nil, c, err
	}
	return node(pos, astjson.OpExpressionStatement, e), rest, nil
}

func isAssign(c Cursor) bool {
	return c.HasPrefix("=") && !c.HasPrefix("==")
}

// expr parses an expression terminated by a semicolon.
func (p *parser) expr(c Cursor, depth int) (any, Cursor, error) {
	e, rest, err := p.exprs.expr(c, ast.PrecLowest, depth)
	if err != nil {
		return nil, c, err
	}
	rest, err = expect(rest, ";")
	if err != nil {
		return nil, c, err
	}
	return e, rest, nil
}

// typed recognizes statements that begin with a type followed by a name:
// bindings without a keyword and function definitions.  ok is false when
// the input has some other form.
func (p *parser) typed(c Cursor, pos, depth int) (any, Cursor, bool, error) {
	typ, rest, err := ParseType(c)
	if err != nil {
		return nil, c, false, nil
	}
	name, rest := readIdentifier(rest)
	if name == "" || keywords[name] {
		return nil, c, false, nil
	}
	rest = SkipWhitespace(rest)
	switch {
	case rest.HasPrefix("("):
		stmt, next, err := p.funcDef(rest, pos, typ, name, depth)
		return stmt, next, true, err
	case isAssign(rest):
		e, next, err := p.expr(rest.Skip(1), depth)
		if err != nil {
			return nil, c, true, err
		}
		return node(pos, astjson.OpBind, astjson.EncodeType(typ), name, e), next, true, nil
	}
	return nil, c, false, nil
}

// bind parses the remainder of a let or mutable binding, whose type is
// optional.
func (p *parser) bind(c Cursor, pos int, mutable bool, depth int) (any, Cursor, error) {
	typ := ast.TypeUndefined
	name, rest := readIdentifier(c)
	if !isAssign(SkipWhitespace(rest)) {
		t, next, err := ParseType(c)
		if err != nil {
			return nil, c, err
		}
		typ = t
		name, rest = readIdentifier(next)
	}
	if name == "" || keywords[name] {
		return nil, c, srcfiles.NewError(srcfiles.KindGrammar, SkipWhitespace(rest).Pos(), "expected variable name")
	}
	rest, err := expect(rest, "=")
	if err != nil {
		return nil, c, err
	}
	e, rest, err := p.expr(rest, depth)
	if err != nil {
		return nil, c, err
	}
	args := []any{astjson.EncodeType(typ), name, e}
	if mutable {
		args = append(args, map[string]any{"mutable": true})
	}
	return node(pos, astjson.OpBind, args...), rest, nil
}

// block parses "{ statements }".
func (p *parser) block(c Cursor, depth int) ([]any, Cursor, error) {
	rest, err := expect(c, "{")
	if err != nil {
		return nil, c, err
	}
	stmts, rest, err := p.statements(rest, depth+1)
	if err != nil {
		return nil, c, err
	}
	rest, err = expect(rest, "}")
	if err != nil {
		return nil, c, err
	}
	return stmts, rest, nil
}

// condition parses "( expr )".
func (p *parser) condition(c Cursor, depth int) (any, Cursor, error) {
	rest, err := expect(c, "(")
	if err != nil {
		return nil, c, err
	}
	e, rest, err := p.exprs.expr(rest, ast.PrecLowest, depth)
	if err != nil {
		return nil, c, err
	}
	rest, err = expect(rest, ")")
	if err != nil {
		return nil, c, err
	}
	return e, rest, nil
}

func (p *parser) ifStatement(c Cursor, pos, depth int) (any, Cursor, error) {
	cond, rest, err := p.condition(c, depth)
	if err != nil {
		return nil, c, err
	}
	then, rest, err := p.block(rest, depth)
	if err != nil {
		return nil, c, err
	}
	word, after := readIdentifier(rest)
	if word != "else" {
		return node(pos, astjson.OpIf, cond, then), rest, nil
	}
	if next, after2 := readIdentifier(after); next == "if" {
		elsePos := SkipWhitespace(after).Pos()
		elseIf, rest, err := p.ifStatement(after2, elsePos, depth+1)
		if err != nil {
			return nil, c, err
		}
		return node(pos, astjson.OpIf, cond, then, []any{elseIf}), rest, nil
	}
	els, rest, err := p.block(after, depth)
	if err != nil {
		return nil, c, err
	}
	return node(pos, astjson.OpIf, cond, then, els), rest, nil
}

// forStatement parses "(i in start...end) {...}" or "(i in start..<end) {...}".
func (p *parser) forStatement(c Cursor, pos, depth int) (any, Cursor, error) {
	rest, err := expect(c, "(")
	if err != nil {
		return nil, c, err
	}
	iter, rest := readIdentifier(rest)
	if iter == "" || keywords[iter] {
		return nil, c, srcfiles.NewError(srcfiles.KindGrammar, rest.Pos(), "expected loop variable")
	}
	if word, after := readIdentifier(rest); word == "in" {
		rest = after
	} else {
		return nil, c, srcfiles.NewError(srcfiles.KindGrammar, SkipWhitespace(rest).Pos(), "expected \"in\"")
	}
	start, rest, err := p.exprs.expr(rest, ast.PrecLowest, depth)
	if err != nil {
		return nil, c, err
	}
	rest = SkipWhitespace(rest)
	var mode ast.RangeKind
	switch {
	case rest.HasPrefix("..."):
		mode = ast.ClosedRange
	case rest.HasPrefix("..<"):
		mode = ast.OpenRange
	default:
		return nil, c, srcfiles.NewError(srcfiles.KindGrammar, rest.Pos(), "expected \"...\" or \"..<\"")
	}
	end, rest, err := p.exprs.expr(rest.Skip(3), ast.PrecLowest, depth)
	if err != nil {
		return nil, c, err
	}
	rest, err = expect(rest, ")")
	if err != nil {
		return nil, c, err
	}
	body, rest, err := p.block(rest, depth)
	if err != nil {
		return nil, c, err
	}
	return node(pos, astjson.OpFor, mode.String(), iter, start, end, body), rest, nil
}

func (p *parser) whileStatement(c Cursor, pos, depth int) (any, Cursor, error) {
	cond, rest, err := p.condition(c, depth)
	if err != nil {
		return nil, c, err
	}
	body, rest, err := p.block(rest, depth)
	if err != nil {
		return nil, c, err
	}
	return node(pos, astjson.OpWhile, cond, body), rest, nil
}

// params parses "(type name, ...)".  When anonymous is true, as in
// protocol signatures, names may be omitted.
func (p *parser) params(c Cursor, anonymous bool) ([]ast.Member, Cursor, error) {
	rest, err := expect(c, "(")
	if err != nil {
		return nil, c, err
	}
	members := []ast.Member{}
	if next := SkipWhitespace(rest); next.HasPrefix(")") {
		return members, next.Skip(1), nil
	}
	for {
		typ, next, err := ParseType(rest)
		if err != nil {
			return nil, c, err
		}
		name, next := readIdentifier(next)
		if name == "" && !anonymous {
			return nil, c, srcfiles.NewError(srcfiles.KindGrammar, SkipWhitespace(next).Pos(), "expected parameter name")
		}
		members = append(members, ast.Member{Name: name, Type: typ})
		next = SkipWhitespace(next)
		switch {
		case next.HasPrefix(","):
			rest = next.Skip(1)
		case next.HasPrefix(")"):
			return members, next.Skip(1), nil
		default:
			return nil, c, srcfiles.NewError(srcfiles.KindGrammar, next.Pos(), "expected \",\" or \")\"")
		}
	}
}

// impure consumes an optional "impure" keyword.
func impure(c Cursor) (bool, Cursor) {
	if word, rest := readIdentifier(c); word == "impure" {
		return true, rest
	}
	return false, c
}

func (p *parser) funcDef(c Cursor, pos int, ret ast.TypeID, name string, depth int) (any, Cursor, error) {
	params, rest, err := p.params(c, false)
	if err != nil {
		return nil, c, err
	}
	isImpure, rest := impure(rest)
	body, rest, err := p.block(rest, depth)
	if err != nil {
		return nil, c, err
	}
	args := make([]any, 0, len(params))
	for _, m := range params {
		args = append(args, astjson.EncodeMember(m))
	}
	def := map[string]any{
		"name":        name,
		"args":        args,
		"statements":  body,
		"return_type": astjson.EncodeType(ret),
		"impure":      isImpure,
	}
	return node(pos, astjson.OpDefFunc, def), rest, nil
}

// members parses "{ member; ... }" where each member is parsed by one.
func (p *parser) members(c Cursor, one func(Cursor) (ast.Member, Cursor, error)) ([]any, Cursor, error) {
	rest, err := expect(c, "{")
	if err != nil {
		return nil, c, err
	}
	members := []any{}
	for {
		rest = SkipWhitespace(rest)
		if rest.HasPrefix("}") {
			return members, rest.Skip(1), nil
		}
		m, next, err := one(rest)
		if err != nil {
			return nil, c, err
		}
		next, err = expect(next, ";")
		if err != nil {
			return nil, c, err
		}
		members = append(members, astjson.EncodeMember(m))
		rest = next
	}
}

func typedName(c Cursor) (ast.Member, Cursor, error) {
	typ, rest, err := ParseType(c)
	if err != nil {
		return ast.Member{}, c, err
	}
	name, rest := readIdentifier(rest)
	if name == "" {
		return ast.Member{}, c, srcfiles.NewError(srcfiles.KindGrammar, rest.Pos(), "expected member name")
	}
	return ast.Member{Name: name, Type: typ}, rest, nil
}

// signature parses "ret name(type arg, ...) [impure]" as a member of
// function type.
func (p *parser) signature(c Cursor) (ast.Member, Cursor, error) {
	m, rest, err := typedName(c)
	if err != nil {
		return ast.Member{}, c, err
	}
	params, rest, err := p.params(rest, true)
	if err != nil {
		return ast.Member{}, c, err
	}
	args := make([]ast.TypeID, 0, len(params))
	for _, param := range params {
		args = append(args, param.Type)
	}
	isImpure, rest := impure(rest)
	return ast.Member{Name: m.Name, Type: ast.NewFunction(m.Type, args, !isImpure)}, rest, nil
}

func (p *parser) namedDef(c Cursor, what string) (string, Cursor, error) {
	name, rest := readIdentifier(c)
	if name == "" || keywords[name] {
		return "", c, srcfiles.NewError(srcfiles.KindGrammar, rest.Pos(), "expected %s name", what)
	}
	return name, rest, nil
}

func (p *parser) structDef(c Cursor, pos int) (any, Cursor, error) {
	name, rest, err := p.namedDef(c, "struct")
	if err != nil {
		return nil, c, err
	}
	members, rest, err := p.members(rest, typedName)
	if err != nil {
		return nil, c, err
	}
	return node(pos, astjson.OpDefStruct, map[string]any{"name": name, "members": members}), rest, nil
}

func (p *parser) protocolDef(c Cursor, pos int) (any, Cursor, error) {
	name, rest, err := p.namedDef(c, "protocol")
	if err != nil {
		return nil, c, err
	}
	members, rest, err := p.members(rest, p.signature)
	if err != nil {
		return nil, c, err
	}
	return node(pos, astjson.OpDefProtocol, map[string]any{"name": name, "members": members}), rest, nil
}

// isMetadata reports whether c begins with keyword as a whole word followed
// by "{".  Otherwise the text is an expression such as "container-def;".
func isMetadata(c Cursor, keyword string) bool {
	if !c.HasPrefix(keyword) {
		return false
	}
	rest := c.Skip(len(keyword))
	if p := rest.Peek(1); p != "" && strings.IndexByte(identifierChars, p[0]) >= 0 {
		return false
	}
	return SkipWhitespace(rest).HasPrefix("{")
}

// jsonBlob parses a keyword followed by a braced JSON object.
func (p *parser) jsonBlob(c Cursor, pos int, keyword, op string) (any, Cursor, error) {
	rest := SkipWhitespace(c.Skip(len(keyword)))
	text, next, err := matchQuoted(rest)
	if err != nil {
		return nil, c, err
	}
	blob, err := astjson.Unmarshal([]byte(text))
	if err != nil {
		return nil, c, srcfiles.NewError(srcfiles.KindGrammar, rest.Pos(), "%s: %s", keyword, err)
	}
	return node(pos, op, blob), next, nil
}
