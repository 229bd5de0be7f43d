package ast

// Expr is the interface implemented by all expression nodes.  ResultType is
// nil until a later pass annotates the node.
type Expr interface {
	ResultType() *TypeID
	exprNode()
}

// Annotated holds the optional result type of an expression.
type Annotated struct {
	Type *TypeID `json:"result_type,omitempty"`
}

func (a Annotated) ResultType() *TypeID { return a.Type }

// Addr is a resolved variable address: the number of enclosing scopes to
// walk outward and the slot index within that scope's symbol table.
type Addr struct {
	ParentSteps int `json:"parent_steps"`
	Index       int `json:"index"`
}

type (
	Literal struct {
		Value Value `json:"value"`
	}
	UnaryMinus struct {
		Expr Expr `json:"expr"`
		Annotated
	}
	Binary struct {
		Op  Op   `json:"op"`
		LHS Expr `json:"lhs"`
		RHS Expr `json:"rhs"`
		Annotated
	}
	Conditional struct {
		Cond Expr `json:"cond"`
		Then Expr `json:"then"`
		Else Expr `json:"else"`
		Annotated
	}
	Call struct {
		Callee Expr   `json:"callee"`
		Args   []Expr `json:"args"`
		Annotated
	}
	ResolveMember struct {
		Base   Expr   `json:"base"`
		Member string `json:"member"`
		Annotated
	}
	Load struct {
		Name string `json:"name"`
		Annotated
	}
	LoadAddr struct {
		Addr Addr `json:"addr"`
		Annotated
	}
	Lookup struct {
		Collection Expr `json:"collection"`
		Key        Expr `json:"key"`
		Annotated
	}
	ConstructValue struct {
		ValueType TypeID `json:"value_type"`
		Args      []Expr `json:"args"`
		Annotated
	}
)

// The type of a literal is the type of its value.
func (l *Literal) ResultType() *TypeID { return &l.Value.Type }

func (*Literal) exprNode()        {}
func (*UnaryMinus) exprNode()     {}
func (*Binary) exprNode()         {}
func (*Conditional) exprNode()    {}
func (*Call) exprNode()           {}
func (*ResolveMember) exprNode()  {}
func (*Load) exprNode()           {}
func (*LoadAddr) exprNode()       {}
func (*Lookup) exprNode()         {}
func (*ConstructValue) exprNode() {}
