package ast

import (
	"fmt"
	"strings"
)

type BaseType int

const (
	Undefined BaseType = iota
	Void
	Bool
	Int
	Double
	String
	JSON
	TypeIDType
	Vector
	Dict
	Function
	Unresolved
)

var baseNames = [...]string{
	Undefined:  "undefined",
	Void:       "void",
	Bool:       "bool",
	Int:        "int",
	Double:     "double",
	String:     "string",
	JSON:       "json",
	TypeIDType: "typeid",
	Vector:     "vector",
	Dict:       "dict",
	Function:   "function",
	Unresolved: "unresolved",
}

var baseLookup = func() map[string]BaseType {
	m := make(map[string]BaseType, len(baseNames))
	for k, name := range baseNames {
		m[name] = BaseType(k)
	}
	return m
}()

func (b BaseType) String() string {
	if b < 0 || int(b) >= len(baseNames) {
		return fmt.Sprintf("BaseType(%d)", int(b))
	}
	return baseNames[b]
}

// IsPrimitive is true for the bases that carry no parts and no name.
func (b BaseType) IsPrimitive() bool {
	return b >= Undefined && b <= TypeIDType
}

func LookupBase(name string) (BaseType, bool) {
	b, ok := baseLookup[name]
	return b, ok
}

// TypeID identifies a type in the AST.  Vector and Dict carry their element
// type in Parts[0].  Function carries its return type in Parts[0] followed by
// the argument types.  Unresolved names a type, typically a struct, that
// a later pass binds.
type TypeID struct {
	Base  BaseType `json:"base"`
	Name  string   `json:"name,omitempty"`
	Parts []TypeID `json:"parts,omitempty"`
	Pure  bool     `json:"pure,omitempty"`
}

var (
	TypeUndefined = TypeID{Base: Undefined}
	TypeVoid      = TypeID{Base: Void}
	TypeBool      = TypeID{Base: Bool}
	TypeInt       = TypeID{Base: Int}
	TypeDouble    = TypeID{Base: Double}
	TypeString    = TypeID{Base: String}
	TypeJSON      = TypeID{Base: JSON}
	TypeTypeID    = TypeID{Base: TypeIDType}
)

func NewVector(elem TypeID) TypeID {
	return TypeID{Base: Vector, Parts: []TypeID{elem}}
}

func NewDict(elem TypeID) TypeID {
	return TypeID{Base: Dict, Parts: []TypeID{elem}}
}

func NewFunction(ret TypeID, args []TypeID, pure bool) TypeID {
	parts := make([]TypeID, 0, len(args)+1)
	parts = append(parts, ret)
	parts = append(parts, args...)
	return TypeID{Base: Function, Parts: parts, Pure: pure}
}

func NewUnresolved(name string) TypeID {
	return TypeID{Base: Unresolved, Name: name}
}

func (t TypeID) IsUndefined() bool { return t.Base == Undefined }

// Elem returns the element type of a vector or dict.
func (t TypeID) Elem() TypeID {
	if (t.Base == Vector || t.Base == Dict) && len(t.Parts) == 1 {
		return t.Parts[0]
	}
	return TypeUndefined
}

func (t TypeID) Return() TypeID {
	if t.Base == Function && len(t.Parts) > 0 {
		return t.Parts[0]
	}
	return TypeUndefined
}

func (t TypeID) Args() []TypeID {
	if t.Base == Function && len(t.Parts) > 0 {
		return t.Parts[1:]
	}
	return nil
}

// String formats t in surface syntax.
func (t TypeID) String() string {
	switch t.Base {
	case Vector:
		return "[" + t.Elem().String() + "]"
	case Dict:
		return "[string:" + t.Elem().String() + "]"
	case Function:
		args := make([]string, 0, len(t.Args()))
		for _, a := range t.Args() {
			args = append(args, a.String())
		}
		s := fmt.Sprintf("func %s(%s)", t.Return(), strings.Join(args, ","))
		if !t.Pure {
			s += " impure"
		}
		return s
	case Unresolved:
		return t.Name
	}
	return t.Base.String()
}
