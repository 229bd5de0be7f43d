package ast

import "fmt"

// Value is a constant.  Data is nil for undefined, or a bool, int64,
// float64, or string matching Type.
type Value struct {
	Type TypeID `json:"type"`
	Data any    `json:"data"`
}

func NewBool(b bool) Value        { return Value{TypeBool, b} }
func NewInt(i int64) Value        { return Value{TypeInt, i} }
func NewDouble(f float64) Value   { return Value{TypeDouble, f} }
func NewString(s string) Value    { return Value{TypeString, s} }
func NewUndefinedValue() Value    { return Value{TypeUndefined, nil} }
func (v Value) IsUndefined() bool { return v.Type.Base == Undefined }

// NewValue checks that data has the Go type implied by typ.
func NewValue(typ TypeID, data any) (Value, error) {
	ok := false
	switch typ.Base {
	case Undefined:
		ok = data == nil
	case Bool:
		_, ok = data.(bool)
	case Int:
		_, ok = data.(int64)
	case Double:
		_, ok = data.(float64)
	case String:
		_, ok = data.(string)
	case JSON:
		ok = true
	}
	if !ok {
		return Value{}, fmt.Errorf("%T is not a valid %s constant", data, typ)
	}
	return Value{typ, data}, nil
}
