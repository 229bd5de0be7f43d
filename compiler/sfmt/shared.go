package sfmt

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/brimdata/floyd/compiler/ast"
)

type shared struct {
	formatter
}

func (s *shared) literal(v ast.Value) {
	switch v.Type.Base {
	case ast.Bool:
		s.write(strconv.FormatBool(v.Data.(bool)))
	case ast.Int:
		s.write(strconv.FormatInt(v.Data.(int64), 10))
	case ast.Double:
		s.write(formatDouble(v.Data.(float64)))
	case ast.String:
		s.write("\"")
		s.write(v.Data.(string))
		s.write("\"")
	default:
		// Undefined and JSON constants have no literal syntax.
		s.json(v.Data)
	}
}

// formatDouble keeps a fraction so the text reads back as a double.
func formatDouble(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsAny(s, ".NI") {
		s += ".0"
	}
	return s
}

func (s *shared) json(v any) {
	b, err := json.Marshal(v)
	if err != nil {
		s.write("null")
		return
	}
	s.write(string(b))
}

// typ writes a type in declaration syntax.  Function types have no
// declaration syntax and print in their descriptive form.
func (s *shared) typ(t ast.TypeID) {
	switch t.Base {
	case ast.Vector:
		s.write("[")
		s.typ(t.Elem())
		s.write("]")
	case ast.Dict:
		s.write("[string:")
		s.typ(t.Elem())
		s.write("]")
	default:
		s.write(t.String())
	}
}

func (s *shared) types(types []ast.TypeID, sep string) {
	for k, t := range types {
		if k != 0 {
			s.write(sep)
		}
		s.typ(t)
	}
}
