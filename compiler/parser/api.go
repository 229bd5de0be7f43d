package parser

import (
	"errors"

	"github.com/brimdata/floyd/compiler/ast"
	"github.com/brimdata/floyd/compiler/astjson"
	"github.com/brimdata/floyd/compiler/srcfiles"
)

type AST struct {
	program *ast.Program
	tree    []any
	files   *srcfiles.List
}

func (a *AST) Parsed() *ast.Program {
	return a.program
}

func (a *AST) Copy() *ast.Program {
	return astjson.Copy(a.program).(*ast.Program)
}

// Tree returns the JSON tree the program was built from.
func (a *AST) Tree() []any {
	return a.tree
}

func (a *AST) Files() *srcfiles.List {
	return a.files
}

// ParseProgram parses the text of a compilation unit into a Program.
// Errors are *srcfiles.Error values bound to files.  A maxDepth of zero
// selects DefaultMaxDepth.
func ParseProgram(files *srcfiles.List, maxDepth int) (*AST, error) {
	tree, err := newParser(maxDepth).program(NewCursor(files.Text))
	if err != nil {
		return nil, bindError(err, files)
	}
	program, err := astjson.NewBuilder(maxDepth).Program(tree)
	if err != nil {
		return nil, bindError(err, files)
	}
	return &AST{program, tree, files}, nil
}

// ParseText parses a program text and an optional set of include files and
// tracks include file names and line numbers for error reporting.
func ParseText(program string, filenames ...string) (*AST, error) {
	files, err := srcfiles.Concat(filenames, program)
	if err != nil {
		return nil, err
	}
	return ParseProgram(files, DefaultMaxDepth)
}

// ParseExpression parses text holding exactly one expression.
func ParseExpression(text string) (ast.Expr, error) {
	files := srcfiles.NewList(srcfiles.Source{Text: text})
	e, rest, err := ParseFullExpr[ast.Expr](ASTMaker{}, NewCursor(files.Text))
	if err != nil {
		return nil, bindError(err, files)
	}
	if rest = SkipWhitespace(rest); !rest.Empty() {
		return nil, srcfiles.NewError(srcfiles.KindGrammar, rest.Pos(), "unexpected %q after expression", rest.Peek(1)).Bind(files)
	}
	return e, nil
}

func bindError(err error, files *srcfiles.List) error {
	var serr *srcfiles.Error
	if errors.As(err, &serr) {
		return serr.Bind(files)
	}
	return err
}
