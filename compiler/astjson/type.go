package astjson

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/brimdata/floyd/compiler/ast"
)

// EncodeType returns the JSON form of a type: the base name for primitives,
// otherwise an array tagged by the base name.
func EncodeType(t ast.TypeID) any {
	switch t.Base {
	case ast.Vector, ast.Dict:
		return []any{t.Base.String(), EncodeType(t.Elem())}
	case ast.Function:
		args := make([]any, 0, len(t.Args()))
		for _, a := range t.Args() {
			args = append(args, EncodeType(a))
		}
		return []any{t.Base.String(), EncodeType(t.Return()), args, t.Pure}
	case ast.Unresolved:
		return []any{t.Base.String(), t.Name}
	}
	return t.Base.String()
}

// DecodeType is the inverse of EncodeType.
func DecodeType(v any) (ast.TypeID, error) {
	switch v := v.(type) {
	case string:
		base, ok := ast.LookupBase(v)
		if !ok || !base.IsPrimitive() {
			return ast.TypeID{}, fmt.Errorf("unknown type %q", v)
		}
		return ast.TypeID{Base: base}, nil
	case []any:
		if len(v) == 0 {
			return ast.TypeID{}, errors.New("empty type array")
		}
		tag, _ := v[0].(string)
		base, ok := ast.LookupBase(tag)
		if !ok || base.IsPrimitive() {
			return ast.TypeID{}, fmt.Errorf("unknown type tag %s", describe(v[0]))
		}
		switch base {
		case ast.Vector, ast.Dict:
			if len(v) != 2 {
				return ast.TypeID{}, fmt.Errorf("%s type must have 2 elements", tag)
			}
			elem, err := DecodeType(v[1])
			if err != nil {
				return ast.TypeID{}, err
			}
			if base == ast.Vector {
				return ast.NewVector(elem), nil
			}
			return ast.NewDict(elem), nil
		case ast.Function:
			if len(v) != 4 {
				return ast.TypeID{}, errors.New("function type must have 4 elements")
			}
			ret, err := DecodeType(v[1])
			if err != nil {
				return ast.TypeID{}, err
			}
			list, ok := v[2].([]any)
			if !ok {
				return ast.TypeID{}, fmt.Errorf("function argument types must be an array, found %s", describe(v[2]))
			}
			args := make([]ast.TypeID, 0, len(list))
			for _, elem := range list {
				arg, err := DecodeType(elem)
				if err != nil {
					return ast.TypeID{}, err
				}
				args = append(args, arg)
			}
			pure, ok := v[3].(bool)
			if !ok {
				return ast.TypeID{}, fmt.Errorf("function purity must be a boolean, found %s", describe(v[3]))
			}
			return ast.NewFunction(ret, args, pure), nil
		case ast.Unresolved:
			name, ok := stringAt(v, 1)
			if len(v) != 2 || !ok || name == "" {
				return ast.TypeID{}, errors.New("unresolved type must be [\"unresolved\", name]")
			}
			return ast.NewUnresolved(name), nil
		}
	}
	return ast.TypeID{}, fmt.Errorf("invalid type %s", describe(v))
}

// EncodeValue returns the JSON form of a constant: [data, type].
func EncodeValue(v ast.Value) any {
	return []any{v.Data, EncodeType(v.Type)}
}

func DecodeValue(v any) (ast.Value, error) {
	pair, ok := v.([]any)
	if !ok || len(pair) != 2 {
		return ast.Value{}, fmt.Errorf("value must be [data, type], found %s", describe(v))
	}
	typ, err := DecodeType(pair[1])
	if err != nil {
		return ast.Value{}, err
	}
	return decodeData(pair[0], typ)
}

// decodeData converts the JSON data of a constant to the Go type implied
// by typ.
func decodeData(data any, typ ast.TypeID) (ast.Value, error) {
	switch typ.Base {
	case ast.Int:
		if i, ok := toInt(data); ok {
			return ast.NewInt(i), nil
		}
	case ast.Double:
		if f, ok := toFloat(data); ok {
			return ast.NewDouble(f), nil
		}
	}
	return ast.NewValue(typ, data)
}

func EncodeMember(m ast.Member) any {
	return map[string]any{"name": m.Name, "type": EncodeType(m.Type)}
}

// BuildMember decodes {"name": string, "type": typeid}.
func BuildMember(v any) (ast.Member, error) {
	obj, ok := v.(map[string]any)
	if !ok {
		return ast.Member{}, fmt.Errorf("member must be an object, found %s", describe(v))
	}
	name, err := requireString(obj, "name")
	if err != nil {
		return ast.Member{}, err
	}
	t, ok := obj["type"]
	if !ok {
		return ast.Member{}, fmt.Errorf("member %q is missing key \"type\"", name)
	}
	typ, err := DecodeType(t)
	if err != nil {
		return ast.Member{}, fmt.Errorf("member %q: %w", name, err)
	}
	return ast.Member{Name: name, Type: typ}, nil
}

func toInt(v any) (int64, bool) {
	switch v := v.(type) {
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return i, true
		}
		f, err := v.Float64()
		if err != nil {
			return 0, false
		}
		return toInt(f)
	case float64:
		if v != math.Trunc(v) || math.Abs(v) > 1<<53 {
			return 0, false
		}
		return int64(v), true
	case int:
		return int64(v), true
	case int64:
		return v, true
	}
	return 0, false
}

func toFloat(v any) (float64, bool) {
	switch v := v.(type) {
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	return 0, false
}

func stringAt(a []any, k int) (string, bool) {
	if k >= len(a) {
		return "", false
	}
	s, ok := a[k].(string)
	return s, ok
}

func requireString(obj map[string]any, key string) (string, error) {
	v, ok := obj[key]
	if !ok {
		return "", fmt.Errorf("missing key %q", key)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("key %q must be a string, found %s", key, describe(v))
	}
	return s, nil
}

// describe names the JSON kind of v for error messages.
func describe(v any) string {
	switch v := v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case string:
		return fmt.Sprintf("string %q", v)
	case json.Number, float64, int, int64:
		return fmt.Sprintf("number %v", v)
	case []any:
		return "array"
	case map[string]any:
		return "object"
	}
	return fmt.Sprintf("%T", v)
}
