package srcfiles

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildLineIndex(t *testing.T) {
	assert.Equal(t, []int{0, 0}, BuildLineIndex(""))
	assert.Equal(t, []int{0, 2}, BuildLineIndex("a\n"))
	assert.Equal(t, []int{0, 2, 3}, BuildLineIndex("a\nb"))
	assert.Equal(t, []int{0, 2, 4, 5}, BuildLineIndex("a\nb\n\n"))
}

func TestResolve(t *testing.T) {
	text := "let x\n  y = ;\n"
	lines := BuildLineIndex(text)
	line, column, s := Resolve(text, lines, 12)
	assert.Equal(t, 1, line)
	assert.Equal(t, 6, column)
	assert.Equal(t, "  y = ;", s)

	line, column, s = Resolve(text, lines, 0)
	assert.Equal(t, 0, line)
	assert.Equal(t, 0, column)
	assert.Equal(t, "let x", s)

	// End of text resolves to the last line that isn't blank.
	text = "a\nb\n\n"
	line, column, s = Resolve(text, BuildLineIndex(text), len(text))
	assert.Equal(t, 1, line)
	assert.Equal(t, 1, column)
	assert.Equal(t, "b", s)

	line, column, s = Resolve("", BuildLineIndex(""), 0)
	assert.Equal(t, 0, line)
	assert.Equal(t, 0, column)
	assert.Equal(t, "", s)
}

func TestLocate(t *testing.T) {
	l := NewList(Source{Name: "a.floyd", Text: "x\ny"}, Source{Text: "zz"})
	assert.Equal(t, "x\ny\nzz", l.Text)
	assert.Equal(t, 4, l.Program().Start())
	assert.Equal(t, Location2{
		Line:      0,
		Column:    1,
		LineStart: 4,
		LineEnd:   6,
		LineText:  "zz",
	}, l.Locate(5))
	assert.Equal(t, Location2{
		File:      "a.floyd",
		Line:      1,
		LineStart: 2,
		LineEnd:   3,
		LineText:  "y",
	}, l.Locate(2))
	assert.Equal(t, "a.floyd", l.Locate(3).File)
	assert.Equal(t, "", l.Locate(100).File)
}

func TestNewUnit(t *testing.T) {
	l := NewUnit(Source{Name: "prelude"}, Source{Text: "return 1;"})
	require.Len(t, l.Files, 1)
	assert.Equal(t, "return 1;", l.Text)

	l = NewUnit(Source{Name: "prelude", Text: "let a = 1;"}, Source{Text: "return a;"})
	require.Len(t, l.Files, 2)
	assert.Equal(t, "prelude", l.FileOf(0).Name)
	assert.Equal(t, "", l.FileOf(11).Name)
}

func TestNormalize(t *testing.T) {
	l := NewList(Source{Text: "let s = \"e\u0301\";"})
	assert.Equal(t, "let s = \"\u00e9\";", l.Text)
	assert.Equal(t, len(l.Text), l.Program().Size())
}

func TestConcat(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "inc.floyd")
	require.NoError(t, os.WriteFile(path, []byte("let a = 1;"), 0644))
	l, err := Concat([]string{path}, "let b = a;")
	require.NoError(t, err)
	assert.Equal(t, "let a = 1;\nlet b = a;", l.Text)
	assert.Equal(t, path, l.Files[0].Name)

	_, err = Concat([]string{filepath.Join(dir, "missing.floyd")}, "")
	assert.True(t, os.IsNotExist(err))
}

func TestError(t *testing.T) {
	err := NewError(KindGrammar, 18, "expected %q", ";")
	assert.Equal(t, `expected ";"`, err.Error())
	_, ok := err.Location()
	assert.False(t, ok)

	l := NewList(Source{Name: "std.floyd", Text: "let a = 1;"}, Source{Text: "let b = 2\n"})
	bound := err.Bind(l)
	assert.Equal(t, `expected ";" Line: 1 "let b = 2"`, bound.Error())
	assert.Equal(t, `expected ";"`, err.Error(), "Bind copies the error")

	bound = NewError(KindLexical, 4, "unbalanced brackets").Bind(l)
	assert.Equal(t, `unbalanced brackets Line: 1 "let a = 1;" file: std.floyd`, bound.Error())

	_, ok = NewError(KindIO, -1, "read failed").Bind(l).Location()
	assert.False(t, ok)
}
