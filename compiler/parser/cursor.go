package parser

import "strings"

// Cursor is an immutable position within a source text.  Every method that
// moves returns a new Cursor.
type Cursor struct {
	text string
	pos  int
}

func NewCursor(text string) Cursor {
	return Cursor{text: text}
}

// NewCursorAt returns a cursor into text positioned at pos, clamped to the
// bounds of text.
func NewCursorAt(text string, pos int) Cursor {
	return Cursor{text: text, pos: clamp(pos, len(text))}
}

func clamp(pos, n int) int {
	if pos < 0 {
		return 0
	}
	if pos > n {
		return n
	}
	return pos
}

// Pos is the offset of c within the full text.
func (c Cursor) Pos() int { return c.pos }

// Text returns the full backing text.
func (c Cursor) Text() string { return c.text }

// Rest returns the text from c to the end.
func (c Cursor) Rest() string { return c.text[c.pos:] }

func (c Cursor) Empty() bool { return c.pos >= len(c.text) }

// Peek returns up to n bytes at c without moving.
func (c Cursor) Peek(n int) string {
	return c.text[c.pos:clamp(c.pos+n, len(c.text))]
}

// HasPrefix is true when the text at c begins with s.
func (c Cursor) HasPrefix(s string) bool {
	return strings.HasPrefix(c.Rest(), s)
}

// Skip returns c moved forward n bytes, stopping at the end of the text.
func (c Cursor) Skip(n int) Cursor {
	return Cursor{c.text, clamp(c.pos+n, len(c.text))}
}

// ReadWhile returns the longest prefix at c whose bytes all satisfy pred and
// the cursor following it.
func (c Cursor) ReadWhile(pred func(byte) bool) (string, Cursor) {
	end := c.pos
	for end < len(c.text) && pred(c.text[end]) {
		end++
	}
	return c.text[c.pos:end], Cursor{c.text, end}
}
