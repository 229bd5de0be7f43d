package parser

import (
	"strconv"
	"strings"

	"github.com/brimdata/floyd/compiler/ast"
	"github.com/brimdata/floyd/compiler/srcfiles"
)

const (
	whitespaceChars = " \t\n\r\f\v"
	identifierChars = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ_0123456789"
	digitChars      = "0123456789"
)

func isIdentifierStart(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

// SkipWhitespace skips spaces and comments.  Line comments begin with "//"
// and block comments are enclosed in "/*" and "*/".  An unterminated block
// comment runs to the end of the text.
func SkipWhitespace(c Cursor) Cursor {
	for {
		_, c = ReadWhile(c, whitespaceChars)
		switch {
		case c.HasPrefix("//"):
			_, c = ReadWhileNot(c, "\n")
		case c.HasPrefix("/*"):
			end := strings.Index(c.Rest()[2:], "*/")
			if end < 0 {
				return c.Skip(len(c.Rest()))
			}
			c = c.Skip(end + 4)
		default:
			return c
		}
	}
}

// ReadWhile returns the longest, possibly empty, prefix at c made only of
// bytes in charset.
func ReadWhile(c Cursor, charset string) (string, Cursor) {
	return c.ReadWhile(func(b byte) bool { return strings.IndexByte(charset, b) >= 0 })
}

// ReadWhileNot returns the longest prefix at c containing no byte from stop.
func ReadWhileNot(c Cursor, stop string) (string, Cursor) {
	return c.ReadWhile(func(b byte) bool { return strings.IndexByte(stop, b) < 0 })
}

var closers = map[byte]byte{'(': ')', '[': ']', '{': '}', '<': '>'}

// MatchBracket expects c to begin with one of "([{<" and returns the
// balanced text including both delimiters along with the cursor following
// it.  Only brackets of the opening kind are counted, so "(a]b)" is
// balanced.
func MatchBracket(c Cursor) (string, Cursor, error) {
	return matchBracket(c, false)
}

// GetBalanced is MatchBracket over a plain string.
func GetBalanced(s string) (string, string, error) {
	match, rest, err := MatchBracket(NewCursor(s))
	if err != nil {
		return "", "", err
	}
	return match, rest.Rest(), nil
}

// matchQuoted is MatchBracket with double-quoted strings skipped, for
// JSON text whose strings may hold brackets.
func matchQuoted(c Cursor) (string, Cursor, error) {
	return matchBracket(c, true)
}

func matchBracket(c Cursor, quotes bool) (string, Cursor, error) {
	if c.Empty() {
		return "", c, srcfiles.NewError(srcfiles.KindLexical, c.Pos(), "expected bracket")
	}
	open := c.Peek(1)[0]
	closer, ok := closers[open]
	if !ok {
		return "", c, srcfiles.NewError(srcfiles.KindLexical, c.Pos(), "expected bracket")
	}
	text := c.Text()
	var depth int
	for i := c.Pos(); i < len(text); i++ {
		switch text[i] {
		case '"':
			if !quotes {
				continue
			}
			j := skipQuoted(text, i)
			if j == i {
				return "", c, srcfiles.NewError(srcfiles.KindLexical, i, "unterminated string literal")
			}
			i = j
		case open:
			depth++
		case closer:
			if depth == 0 {
				return "", c, srcfiles.NewError(srcfiles.KindLexical, i, "unbalanced brackets")
			}
			depth--
			if depth == 0 {
				return text[c.Pos() : i+1], NewCursorAt(text, i+1), nil
			}
		}
	}
	return "", c, srcfiles.NewError(srcfiles.KindLexical, c.Pos(), "unbalanced brackets")
}

// skipQuoted returns the index of the closing quote of the string starting
// at text[i] or i when the string is unterminated.
func skipQuoted(text string, i int) int {
	for j := i + 1; j < len(text); j++ {
		switch text[j] {
		case '\\':
			j++
		case '"':
			return j
		}
	}
	return i
}

func readIdentifier(c Cursor) (string, Cursor) {
	c = SkipWhitespace(c)
	if c.Empty() || !isIdentifierStart(c.Peek(1)[0]) {
		return "", c
	}
	return ReadWhile(c, identifierChars)
}

// readNumber reads an integer or, when a fraction follows, a double.
func readNumber(c Cursor) (ast.Value, Cursor, error) {
	start := c.Pos()
	digits, rest := ReadWhile(c, digitChars)
	if digits == "" {
		return ast.Value{}, c, srcfiles.NewError(srcfiles.KindGrammar, start, "expected number")
	}
	if p := rest.Peek(2); len(p) == 2 && p[0] == '.' && isDigit(p[1]) {
		frac, end := ReadWhile(rest.Skip(1), digitChars)
		f, err := strconv.ParseFloat(digits+"."+frac, 64)
		if err != nil {
			return ast.Value{}, c, srcfiles.NewError(srcfiles.KindGrammar, start, "invalid double literal %q", digits+"."+frac)
		}
		return ast.NewDouble(f), end, nil
	}
	i, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return ast.Value{}, c, srcfiles.NewError(srcfiles.KindGrammar, start, "invalid int literal %q", digits)
	}
	return ast.NewInt(i), rest, nil
}

// readString reads a double-quoted string.  There are no escapes: the body
// runs to the next quote.
func readString(c Cursor) (string, Cursor, error) {
	body, rest := ReadWhileNot(c.Skip(1), "\"")
	if rest.Empty() {
		return "", c, srcfiles.NewError(srcfiles.KindLexical, c.Pos(), "unterminated string literal")
	}
	return body, rest.Skip(1), nil
}

// expect skips whitespace and consumes tok or fails.
func expect(c Cursor, tok string) (Cursor, error) {
	c = SkipWhitespace(c)
	if !c.HasPrefix(tok) {
		return c, srcfiles.NewError(srcfiles.KindGrammar, c.Pos(), "expected %q", tok)
	}
	return c.Skip(len(tok)), nil
}
