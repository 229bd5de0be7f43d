package ast

// Statement is the interface implemented by all statement nodes.
type Statement interface {
	Location() Loc
	stmtNode()
}

type RangeKind int

const (
	ClosedRange RangeKind = iota // a...b
	OpenRange                    // a..<b
)

func (r RangeKind) String() string {
	if r == OpenRange {
		return "open_range"
	}
	return "closed_range"
}

func LookupRangeKind(s string) (RangeKind, bool) {
	switch s {
	case "closed_range":
		return ClosedRange, true
	case "open_range":
		return OpenRange, true
	}
	return 0, false
}

type (
	Return struct {
		Expr Expr `json:"expr"`
		Loc  `json:"loc"`
	}
	Bind struct {
		Name    string `json:"name"`
		Type    TypeID `json:"type"`
		Expr    Expr   `json:"expr"`
		Mutable bool   `json:"mutable"`
		Loc     `json:"loc"`
	}
	Store struct {
		Name string `json:"name"`
		Expr Expr   `json:"expr"`
		Loc  `json:"loc"`
	}
	StoreAddr struct {
		Addr Addr `json:"addr"`
		Expr Expr `json:"expr"`
		Loc  `json:"loc"`
	}
	Block struct {
		Body *Body `json:"body"`
		Loc  `json:"loc"`
	}
	If struct {
		Cond Expr  `json:"cond"`
		Then *Body `json:"then"`
		Else *Body `json:"else"`
		Loc  `json:"loc"`
	}
	For struct {
		Iterator string    `json:"iterator"`
		Start    Expr      `json:"start"`
		End      Expr      `json:"end"`
		Range    RangeKind `json:"range"`
		Body     *Body     `json:"body"`
		Loc      `json:"loc"`
	}
	While struct {
		Cond Expr  `json:"cond"`
		Body *Body `json:"body"`
		Loc  `json:"loc"`
	}
	ExprStmt struct {
		Expr Expr `json:"expr"`
		Loc  `json:"loc"`
	}
	DefStruct struct {
		Def *StructDef `json:"def"`
		Loc `json:"loc"`
	}
	DefProtocol struct {
		Def *ProtocolDef `json:"def"`
		Loc `json:"loc"`
	}
	DefFunc struct {
		Def *FunctionDef `json:"def"`
		Loc `json:"loc"`
	}
	// SoftwareSystem and ContainerDef carry their JSON payloads unexamined.
	SoftwareSystem struct {
		JSON any `json:"json"`
		Loc  `json:"loc"`
	}
	ContainerDef struct {
		JSON any `json:"json"`
		Loc  `json:"loc"`
	}
)

func (*Return) stmtNode()         {}
func (*Bind) stmtNode()           {}
func (*Store) stmtNode()          {}
func (*StoreAddr) stmtNode()      {}
func (*Block) stmtNode()          {}
func (*If) stmtNode()             {}
func (*For) stmtNode()            {}
func (*While) stmtNode()          {}
func (*ExprStmt) stmtNode()       {}
func (*DefStruct) stmtNode()      {}
func (*DefProtocol) stmtNode()    {}
func (*DefFunc) stmtNode()        {}
func (*SoftwareSystem) stmtNode() {}
func (*ContainerDef) stmtNode()   {}
