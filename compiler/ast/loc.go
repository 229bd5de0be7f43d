package ast

// Loc is the byte offset of a node within its compilation unit as held by
// a srcfiles.List.  Locations that were never recorded are NoLoc.
type Loc struct {
	Offset int `json:"offset"`
}

var NoLoc = Loc{Offset: -1}

func NewLoc(offset int) Loc {
	if offset < 0 {
		return NoLoc
	}
	return Loc{offset}
}

func (l Loc) Location() Loc { return l }
func (l Loc) Pos() int      { return l.Offset }
func (l Loc) IsValid() bool { return l.Offset >= 0 }
