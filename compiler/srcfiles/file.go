package srcfiles

import (
	"sort"
	"strings"
)

// File holds the line index of one source text within a List.
type File struct {
	Name  string
	lines []int
	size  int
	start int
}

func newFile(name string, start int, src []byte) File {
	return File{
		Name:  name,
		lines: BuildLineIndex(string(src)),
		size:  len(src),
		start: start,
	}
}

// Start is the offset of the file within its List.
func (f File) Start() int { return f.start }
func (f File) Size() int  { return f.size }

// BuildLineIndex returns the offset of each line start in text followed by
// a trailing end marker equal to len(text).  The index always has at least
// two entries so that every text, even an empty one, has a line 0.
func BuildLineIndex(text string) []int {
	lines := []int{0}
	for offset := 0; offset < len(text); offset++ {
		if text[offset] == '\n' && offset+1 < len(text) {
			lines = append(lines, offset+1)
		}
	}
	return append(lines, len(text))
}

// Resolve maps offset within text to a zero-based line and column and the
// text of that line, using an index built by BuildLineIndex.  An offset at
// or past the end of text resolves to the last non-blank line.  Resolve
// never fails: out-of-range offsets map to the nearest line.
func Resolve(text string, lines []int, offset int) (int, int, string) {
	nlines := len(lines) - 1
	if nlines <= 0 {
		return 0, 0, ""
	}
	if offset < 0 {
		return 0, 0, lineText(text, lines, 0)
	}
	if offset >= len(text) {
		line := nlines - 1
		for line > 0 && strings.TrimSpace(lineText(text, lines, line)) == "" {
			line--
		}
		s := lineText(text, lines, line)
		return line, len(s), s
	}
	line := searchLine(lines[:nlines], offset)
	s := lineText(text, lines, line)
	column := offset - lines[line]
	if column > len(s) {
		column = len(s)
	}
	return line, column, s
}

// lineText returns the text of line k without its line terminator.
func lineText(text string, lines []int, k int) string {
	start, end := lines[k], lines[k+1]
	if end > len(text) {
		end = len(text)
	}
	if start > end {
		return ""
	}
	return strings.TrimRight(text[start:end], "\r\n")
}

func searchLine(lines []int, offset int) int {
	return sort.Search(len(lines), func(i int) bool { return lines[i] > offset }) - 1
}

// Location2 is a fully resolved source location.  Line and Column are
// zero based.
type Location2 struct {
	File      string `json:"file"`
	Line      int    `json:"line"`
	Column    int    `json:"column"`
	LineStart int    `json:"line_start"`
	LineEnd   int    `json:"line_end"`
	LineText  string `json:"line_text"`
}

func (f File) locate(text string, pos int) Location2 {
	if f.start > len(text) {
		return Location2{File: f.Name}
	}
	end := f.start + f.size
	if end > len(text) {
		end = len(text)
	}
	src := text[f.start:end]
	line, column, s := Resolve(src, f.lines, pos-f.start)
	start := f.start + f.lines[line]
	return Location2{
		File:      f.Name,
		Line:      line,
		Column:    column,
		LineStart: start,
		LineEnd:   start + len(s),
		LineText:  s,
	}
}
