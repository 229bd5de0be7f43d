package ast

import "fmt"

type SymbolKind int

const (
	ImmutableLocal SymbolKind = iota
	MutableLocal
)

func (k SymbolKind) String() string {
	switch k {
	case ImmutableLocal:
		return "immutable_local"
	case MutableLocal:
		return "mutable_local"
	}
	return fmt.Sprintf("SymbolKind(%d)", int(k))
}

func LookupSymbolKind(s string) (SymbolKind, bool) {
	switch s {
	case "immutable_local":
		return ImmutableLocal, true
	case "mutable_local":
		return MutableLocal, true
	}
	return 0, false
}

type Symbol struct {
	Kind SymbolKind `json:"kind"`
	Type TypeID     `json:"type"`
	Init *Value     `json:"init,omitempty"`
}

type SymbolEntry struct {
	Name   string `json:"name"`
	Symbol Symbol `json:"symbol"`
}

// Placeholder is the entry used for slots that have no symbol of their own.
var Placeholder = SymbolEntry{Symbol: Symbol{Kind: ImmutableLocal, Type: TypeUndefined}}

// SymbolTable is an ordered mapping from names to symbols.  An entry's slot
// index is its position in the table.
type SymbolTable struct {
	entries []SymbolEntry
}

func NewSymbolTable(entries ...SymbolEntry) SymbolTable {
	if len(entries) == 0 {
		return SymbolTable{}
	}
	return SymbolTable{entries: append([]SymbolEntry(nil), entries...)}
}

// With returns a copy of t with an entry appended along with the slot index
// of the new entry.
func (t SymbolTable) With(name string, sym Symbol) (SymbolTable, int) {
	entries := make([]SymbolEntry, len(t.entries), len(t.entries)+1)
	copy(entries, t.entries)
	entries = append(entries, SymbolEntry{name, sym})
	return SymbolTable{entries}, len(entries) - 1
}

func (t SymbolTable) Len() int { return len(t.entries) }

func (t SymbolTable) At(index int) (SymbolEntry, bool) {
	if index < 0 || index >= len(t.entries) {
		return SymbolEntry{}, false
	}
	return t.entries[index], true
}

// Lookup returns the slot index of name.  Placeholders are never found.
func (t SymbolTable) Lookup(name string) (int, Symbol, bool) {
	if name == "" {
		return -1, Symbol{}, false
	}
	for k, e := range t.entries {
		if e.Name == name {
			return k, e.Symbol, true
		}
	}
	return -1, Symbol{}, false
}

// Entries returns a copy of the entries in slot order.
func (t SymbolTable) Entries() []SymbolEntry {
	return append([]SymbolEntry(nil), t.entries...)
}

// Body is a lexical scope: its statements and the symbols they bind.
type Body struct {
	Statements []Statement `json:"statements"`
	Symbols    SymbolTable `json:"-"`
}

func NewBody(stmts []Statement, symbols SymbolTable) *Body {
	if stmts == nil {
		stmts = []Statement{}
	}
	return &Body{Statements: stmts, Symbols: symbols}
}
