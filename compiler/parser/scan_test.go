package parser_test

import (
	"errors"
	"testing"

	"github.com/brimdata/floyd/compiler/parser"
	"github.com/brimdata/floyd/compiler/srcfiles"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursor(t *testing.T) {
	c := parser.NewCursor("abc")
	assert.Equal(t, "ab", c.Peek(2))
	next := c.Skip(1)
	assert.Equal(t, 0, c.Pos(), "Skip must not move the original cursor")
	assert.Equal(t, 1, next.Pos())
	assert.Equal(t, "bc", next.Peek(5))
	assert.True(t, next.Skip(10).Empty())
	assert.Equal(t, 3, next.Skip(10).Pos())
	s, rest := c.ReadWhile(func(b byte) bool { return b != 'c' })
	assert.Equal(t, "ab", s)
	assert.Equal(t, "c", rest.Rest())
	assert.Equal(t, 3, parser.NewCursorAt("abc", 7).Pos())
}

func TestSkipWhitespace(t *testing.T) {
	c := parser.SkipWhitespace(parser.NewCursor("  // line\n\t/* block\n */ x"))
	assert.Equal(t, "x", c.Rest())
	c = parser.SkipWhitespace(parser.NewCursor(" /* open"))
	assert.True(t, c.Empty())
}

func TestReadWhile(t *testing.T) {
	s, rest := parser.ReadWhile(parser.NewCursor("123abc"), "0123456789")
	assert.Equal(t, "123", s)
	assert.Equal(t, "abc", rest.Rest())
	s, rest = parser.ReadWhileNot(parser.NewCursor("key: value"), ":")
	assert.Equal(t, "key", s)
	assert.Equal(t, ": value", rest.Rest())
	s, _ = parser.ReadWhile(parser.NewCursor("abc"), "0123456789")
	assert.Equal(t, "", s)
}

func TestGetBalanced(t *testing.T) {
	cases := []struct {
		in, match, rest string
	}{
		{"((abc)[])def", "((abc)[])", "def"},
		{"{}", "{}", ""},
		{"<a<b>>x", "<a<b>>", "x"},
		{"(a>b) rest", "(a>b)", " rest"},
		{"(a]b)rest", "(a]b)", "rest"},
		{"(a[)x", "(a[)", "x"},
		{"[(]])", "[(]", "])"},
		{`("a)b")c`, `("a)`, `b")c`},
	}
	for _, c := range cases {
		match, rest, err := parser.GetBalanced(c.in)
		require.NoError(t, err, "input %q", c.in)
		assert.Equal(t, c.match, match, "input %q", c.in)
		assert.Equal(t, c.rest, rest, "input %q", c.in)
	}
}

func TestGetBalancedErrors(t *testing.T) {
	for _, in := range []string{"(abc", "(]", "abc", "", "((a)", "{[]"} {
		_, _, err := parser.GetBalanced(in)
		require.Error(t, err, "input %q", in)
		var serr *srcfiles.Error
		require.True(t, errors.As(err, &serr))
		assert.Equal(t, srcfiles.KindLexical, serr.Kind, "input %q", in)
	}
}

func TestMatchBracketOffset(t *testing.T) {
	c := parser.NewCursor("xx[1,2] yy").Skip(2)
	match, rest, err := parser.MatchBracket(c)
	require.NoError(t, err)
	assert.Equal(t, "[1,2]", match)
	assert.Equal(t, 7, rest.Pos())
}
