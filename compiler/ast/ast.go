// Package ast declares the types used to represent syntax trees for Floyd
// programs.
//
// Expression and statement nodes form closed sets.  Consumers switch on the
// concrete type and treat any other type as an internal error.  Nodes are
// never modified after they are built.
package ast

// Tree is either a Program (the flat body produced from source) or a SAST
// (the finalized globals plus function definitions).
type Tree interface {
	treeNode()
}

type Program struct {
	Body *Body `json:"body"`
}

type SAST struct {
	Globals        *Body          `json:"globals"`
	FunctionDefs   []*FunctionDef `json:"function_defs"`
	SoftwareSystem any            `json:"software_system,omitempty"`
	ContainerDef   any            `json:"container_def,omitempty"`
}

func (*Program) treeNode() {}
func (*SAST) treeNode()    {}
