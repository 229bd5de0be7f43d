package parser

import (
	"github.com/brimdata/floyd/compiler/ast"
	"github.com/brimdata/floyd/compiler/srcfiles"
)

var primitiveTypes = map[string]ast.TypeID{
	"bool":   ast.TypeBool,
	"int":    ast.TypeInt,
	"double": ast.TypeDouble,
	"string": ast.TypeString,
	"void":   ast.TypeVoid,
	"json":   ast.TypeJSON,
	"typeid": ast.TypeTypeID,
}

// ParseType parses a type: a primitive name, a struct or other named type,
// "[T]" for a vector of T, or "[string:T]" for a dict of T.
func ParseType(c Cursor) (ast.TypeID, Cursor, error) {
	c = SkipWhitespace(c)
	if c.HasPrefix("[") {
		elem, rest, err := ParseType(c.Skip(1))
		if err != nil {
			return ast.TypeID{}, c, err
		}
		rest = SkipWhitespace(rest)
		if rest.HasPrefix(":") {
			if elem.Base != ast.String {
				return ast.TypeID{}, c, srcfiles.NewError(srcfiles.KindGrammar, rest.Pos(), "dict keys must be string")
			}
			val, next, err := ParseType(rest.Skip(1))
			if err != nil {
				return ast.TypeID{}, c, err
			}
			next, err = expect(next, "]")
			if err != nil {
				return ast.TypeID{}, c, err
			}
			return ast.NewDict(val), next, nil
		}
		rest, err = expect(rest, "]")
		if err != nil {
			return ast.TypeID{}, c, err
		}
		return ast.NewVector(elem), rest, nil
	}
	name, rest := readIdentifier(c)
	if name == "" {
		return ast.TypeID{}, c, srcfiles.NewError(srcfiles.KindGrammar, c.Pos(), "expected type")
	}
	if typ, ok := primitiveTypes[name]; ok {
		return typ, rest, nil
	}
	return ast.NewUnresolved(name), rest, nil
}
