package srcfiles

import (
	"fmt"
	"strings"
)

// Kind classifies an Error.
type Kind string

const (
	KindLexical Kind = "lexical" // unbalanced brackets, unterminated string
	KindGrammar Kind = "grammar" // malformed syntax or JSON tree shape
	KindShape   Kind = "shape"   // definitions missing keys or with bad values
	KindDepth   Kind = "depth"   // nesting exceeds the configured limit
	KindIO      Kind = "io"
)

// Error is a failure at a position in a compilation unit.  Until it is bound
// to a List, Error renders only its message.
type Error struct {
	Kind Kind
	Msg  string
	Pos  int
	list *List
}

func NewError(kind Kind, pos int, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Pos: pos}
}

// Bind returns a copy of e that resolves its position against list.
func (e *Error) Bind(list *List) *Error {
	out := *e
	out.list = list
	return &out
}

// Location resolves the position of e.  ok is false when e is unbound or
// carries no position.
func (e *Error) Location() (Location2, bool) {
	if e.list == nil || e.Pos < 0 {
		return Location2{}, false
	}
	return e.list.Locate(e.Pos), true
}

func (e *Error) Error() string {
	loc, ok := e.Location()
	if !ok {
		return e.Msg
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s Line: %d \"%s\"", e.Msg, loc.Line+1, strings.TrimSpace(loc.LineText))
	if loc.File != "" {
		fmt.Fprintf(&b, " file: %s", loc.File)
	}
	return b.String()
}
