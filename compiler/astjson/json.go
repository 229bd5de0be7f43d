package astjson

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"

	"github.com/brimdata/floyd/compiler/ast"
)

// Unmarshal decodes a JSON document into a generic tree.  Numbers are kept
// as json.Number so that int and double literals remain distinct.
func Unmarshal(b []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("invalid JSON: trailing data after document")
	}
	return v, nil
}

func Marshal(tree any) ([]byte, error) {
	return json.Marshal(tree)
}

// MarshalIndent is Marshal with the indentation used for display.
func MarshalIndent(tree any) ([]byte, error) {
	return json.MarshalIndent(tree, "", "  ")
}

// ErrProgramSymbols reports a Program whose top-level body has symbols.
// The array form of a Program holds statements only.
var ErrProgramSymbols = errors.New("program has top-level symbols, which its JSON form cannot hold")

// MarshalAST encodes t as JSON.  A Program with top-level symbols fails
// with ErrProgramSymbols rather than losing them.
func MarshalAST(t ast.Tree) ([]byte, error) {
	if err := checkTopLevel(t); err != nil {
		return nil, err
	}
	return Marshal(EncodeAST(t))
}

// MarshalASTIndent is MarshalAST with the indentation of MarshalIndent.
func MarshalASTIndent(t ast.Tree) ([]byte, error) {
	if err := checkTopLevel(t); err != nil {
		return nil, err
	}
	return MarshalIndent(EncodeAST(t))
}

func checkTopLevel(t ast.Tree) error {
	if p, ok := t.(*ast.Program); ok && p.Body != nil && p.Body.Symbols.Len() > 0 {
		return ErrProgramSymbols
	}
	return nil
}

// UnmarshalAST decodes a JSON document holding either top-level form.
func UnmarshalAST(b []byte) (ast.Tree, error) {
	v, err := Unmarshal(b)
	if err != nil {
		return nil, err
	}
	return DecodeAST(v)
}

// Copy returns a deep copy of t made by a round trip through JSON.  The
// top-level symbols of a Program, which the JSON form drops, are carried
// over unchanged.
func Copy(t ast.Tree) ast.Tree {
	b, err := Marshal(EncodeAST(t))
	if err != nil {
		panic(err)
	}
	out, err := UnmarshalAST(b)
	if err != nil {
		panic(err)
	}
	if p, ok := t.(*ast.Program); ok && p.Body != nil && p.Body.Symbols.Len() > 0 {
		q := out.(*ast.Program)
		q.Body = ast.NewBody(q.Body.Statements, p.Body.Symbols)
	}
	return out
}
