package srcfiles

import (
	"os"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Source is a named source text.  An empty name is the unnamed program text.
type Source struct {
	Name string
	Text string
}

// List is a compilation unit: one or more source texts concatenated in
// order with a newline after each.  A prelude, when present, comes first and
// the user program comes last.
type List struct {
	Text  string
	Files []File
}

// NewList concatenates sources into a List.  Each text is normalized to
// NFC before it is indexed so that offsets agree with the parsed text.
func NewList(sources ...Source) *List {
	var b strings.Builder
	var files []File
	for k, s := range sources {
		src := norm.NFC.Bytes([]byte(s.Text))
		files = append(files, newFile(s.Name, b.Len(), src))
		b.Write(src)
		if k < len(sources)-1 {
			b.WriteByte('\n')
		}
	}
	if len(files) == 0 {
		files = append(files, newFile("", 0, nil))
	}
	return &List{Text: b.String(), Files: files}
}

// NewUnit returns the List for a prelude followed by a program.  An empty
// prelude is omitted.
func NewUnit(prelude Source, program Source) *List {
	if prelude.Text == "" {
		return NewList(program)
	}
	return NewList(prelude, program)
}

// Concat reads in the indicated files and concatenates their content with
// newlines appending the final program text.
func Concat(filenames []string, program string) (*List, error) {
	var sources []Source
	for _, f := range filenames {
		b, err := os.ReadFile(f)
		if err != nil {
			return nil, err
		}
		sources = append(sources, Source{Name: f, Text: string(b)})
	}
	// Empty string is the unnamed program text while the included files all
	// have names.
	sources = append(sources, Source{Text: program})
	return NewList(sources...), nil
}

// FileOf returns the file containing pos.  Positions before the first file
// belong to it and positions past the end belong to the last.
func (l *List) FileOf(pos int) File {
	i := sort.Search(len(l.Files), func(i int) bool { return l.Files[i].start > pos }) - 1
	if i < 0 {
		i = 0
	}
	return l.Files[i]
}

// Program returns the last file of the list, the user program.
func (l *List) Program() File {
	return l.Files[len(l.Files)-1]
}

// Locate resolves an offset within l.Text.
func (l *List) Locate(pos int) Location2 {
	return l.FileOf(pos).locate(l.Text, pos)
}
