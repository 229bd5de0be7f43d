package ast

// Member is a named, typed slot of a struct or protocol, or a function
// parameter.
type Member struct {
	Name string `json:"name"`
	Type TypeID `json:"type"`
}

// Definitions are shared by pointer between the statement that defines them
// and every site that refers to them.  They are never modified once built.
type (
	StructDef struct {
		Name    string   `json:"name"`
		Members []Member `json:"members"`
	}
	ProtocolDef struct {
		Name    string   `json:"name"`
		Members []Member `json:"members"`
	}
	FunctionDef struct {
		Name       string   `json:"name"`
		Args       []Member `json:"args"`
		Body       *Body    `json:"body"`
		ReturnType TypeID   `json:"return_type"`
		Pure       bool     `json:"pure"`
	}
)

// FindMember returns the index of the named member or -1.
func (s *StructDef) FindMember(name string) int {
	return findMember(s.Members, name)
}

func (p *ProtocolDef) FindMember(name string) int {
	return findMember(p.Members, name)
}

// Type returns the function type of f.
func (f *FunctionDef) Type() TypeID {
	args := make([]TypeID, 0, len(f.Args))
	for _, a := range f.Args {
		args = append(args, a.Type)
	}
	return NewFunction(f.ReturnType, args, f.Pure)
}

func findMember(members []Member, name string) int {
	for k, m := range members {
		if m.Name == name {
			return k
		}
	}
	return -1
}
