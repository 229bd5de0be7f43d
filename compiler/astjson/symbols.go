package astjson

import (
	"fmt"

	"github.com/brimdata/floyd/compiler/ast"
)

// EncodeSymbols returns the table as an array of [index, name, symbol]
// triples in slot order.
func EncodeSymbols(t ast.SymbolTable) []any {
	out := make([]any, 0, t.Len())
	for k, e := range t.Entries() {
		sym := map[string]any{
			"symbol_type": e.Symbol.Kind.String(),
			"value_type":  EncodeType(e.Symbol.Type),
			"init":        nil,
		}
		if e.Symbol.Init != nil {
			sym["init"] = EncodeValue(*e.Symbol.Init)
		}
		out = append(out, []any{k, e.Name, sym})
	}
	return out
}

// DecodeSymbols rebuilds a table from [index, name, symbol] triples.  The
// triples may appear in any order.  Slots below the largest index that no
// triple names are filled with ast.Placeholder so that every index keeps
// its position.
func DecodeSymbols(node any) (ast.SymbolTable, error) {
	list, ok := node.([]any)
	if !ok {
		return ast.SymbolTable{}, fmt.Errorf("symbol table must be an array, found %s", describe(node))
	}
	if len(list) == 0 {
		return ast.SymbolTable{}, nil
	}
	slots := make(map[int]ast.SymbolEntry, len(list))
	last := -1
	for _, elem := range list {
		triple, ok := elem.([]any)
		if !ok || len(triple) != 3 {
			return ast.SymbolTable{}, fmt.Errorf("symbol entry must be [index, name, symbol], found %s", describe(elem))
		}
		index, ok := toInt(triple[0])
		if !ok || index < 0 {
			return ast.SymbolTable{}, fmt.Errorf("symbol index must be a non-negative integer, found %s", describe(triple[0]))
		}
		if index >= int64(len(list))+1<<16 {
			return ast.SymbolTable{}, fmt.Errorf("symbol index %d is out of range", index)
		}
		name, ok := triple[1].(string)
		if !ok {
			return ast.SymbolTable{}, fmt.Errorf("symbol name must be a string, found %s", describe(triple[1]))
		}
		sym, err := decodeSymbol(triple[2])
		if err != nil {
			return ast.SymbolTable{}, fmt.Errorf("symbol %q: %w", name, err)
		}
		k := int(index)
		if _, ok := slots[k]; ok {
			return ast.SymbolTable{}, fmt.Errorf("duplicate symbol index %d", k)
		}
		slots[k] = ast.SymbolEntry{Name: name, Symbol: sym}
		if k > last {
			last = k
		}
	}
	entries := make([]ast.SymbolEntry, last+1)
	for k := range entries {
		if e, ok := slots[k]; ok {
			entries[k] = e
		} else {
			entries[k] = ast.Placeholder
		}
	}
	return ast.NewSymbolTable(entries...), nil
}

func decodeSymbol(node any) (ast.Symbol, error) {
	obj, ok := node.(map[string]any)
	if !ok {
		return ast.Symbol{}, fmt.Errorf("symbol must be an object, found %s", describe(node))
	}
	s, err := requireString(obj, "symbol_type")
	if err != nil {
		return ast.Symbol{}, err
	}
	kind, ok := ast.LookupSymbolKind(s)
	if !ok {
		return ast.Symbol{}, fmt.Errorf("unknown symbol_type %q", s)
	}
	vt, ok := obj["value_type"]
	if !ok {
		return ast.Symbol{}, fmt.Errorf("missing key %q", "value_type")
	}
	typ, err := DecodeType(vt)
	if err != nil {
		return ast.Symbol{}, err
	}
	sym := ast.Symbol{Kind: kind, Type: typ}
	if init := obj["init"]; init != nil {
		v, err := DecodeValue(init)
		if err != nil {
			return ast.Symbol{}, fmt.Errorf("init: %w", err)
		}
		sym.Init = &v
	}
	return sym, nil
}
