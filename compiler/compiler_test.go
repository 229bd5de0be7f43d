package compiler_test

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/brimdata/floyd/compiler"
	"github.com/brimdata/floyd/compiler/ast"
	"github.com/brimdata/floyd/compiler/srcfiles"
	"github.com/brimdata/floyd/pkg/config"
	"github.com/brimdata/floyd/pkg/storage"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func writeFile(t *testing.T, dir, name, text string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(text), 0644))
	return path
}

func TestLoadText(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "prog.floyd", "let x = 1;\nreturn x;\n")
	l, err := compiler.NewLoader(t.Context(), nil, storage.NewLocalEngine(), nil)
	require.NoError(t, err)
	tree, err := l.Load(t.Context(), path)
	require.NoError(t, err)
	p, ok := tree.(*ast.Program)
	require.True(t, ok)
	require.Len(t, p.Body.Statements, 2)
	assert.Equal(t, ast.NewLoc(11), p.Body.Statements[1].Location())
}

func TestLoadJSON(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "prog.json", `{"globals": [], "function_defs": [], "container-def": {"name": "api"}}`)
	l, err := compiler.NewLoader(t.Context(), nil, storage.NewLocalEngine(), nil)
	require.NoError(t, err)
	tree, err := l.Load(t.Context(), path)
	require.NoError(t, err)
	s, ok := tree.(*ast.SAST)
	require.True(t, ok)
	assert.Equal(t, map[string]any{"name": "api"}, s.ContainerDef)

	bad := writeFile(t, dir, "bad.json", `[["retrun", ["k", 1, "int"]]]`)
	_, err = l.Load(t.Context(), bad)
	require.Error(t, err)
	assert.Equal(t, bad+`: unknown statement opcode "retrun" (did you mean "return"?)`, err.Error())
}

func TestLoadMissing(t *testing.T) {
	l, err := compiler.NewLoader(t.Context(), nil, storage.NewLocalEngine(), nil)
	require.NoError(t, err)
	_, err = l.Load(t.Context(), filepath.Join(t.TempDir(), "none.floyd"))
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestPrelude(t *testing.T) {
	dir := t.TempDir()
	conf := config.Default()
	conf.Prelude = []string{writeFile(t, dir, "std.floyd", "int one() { return 1; }")}
	core, logs := observer.New(zapcore.DebugLevel)
	l, err := compiler.NewLoader(t.Context(), conf, storage.NewLocalEngine(), zap.New(core))
	require.NoError(t, err)

	a, err := l.Parse("main.floyd", "let x = one();")
	require.NoError(t, err)
	stmts := a.Parsed().Body.Statements
	require.Len(t, stmts, 2)
	assert.IsType(t, &ast.DefFunc{}, stmts[0])
	assert.Equal(t, "main.floyd", a.Files().FileOf(stmts[1].Location().Pos()).Name)
	assert.Equal(t, 1, logs.FilterMessage("prelude loaded").Len())
	assert.Equal(t, 1, logs.FilterMessage("parsed").Len())

	_, err = l.Parse("main.floyd", "let y = ;")
	var serr *srcfiles.Error
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, srcfiles.KindGrammar, serr.Kind)
	assert.Equal(t, `unexpected character ";" Line: 1 "let y = ;" file: main.floyd`, err.Error())
	warnings := logs.FilterLevelExact(zapcore.WarnLevel).All()
	require.Len(t, warnings, 1)
	assert.Equal(t, "parse failed", warnings[0].Message)

	conf.Prelude = []string{filepath.Join(dir, "missing.floyd")}
	_, err = compiler.NewLoader(t.Context(), conf, storage.NewLocalEngine(), nil)
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "prelude: "))
}

func TestMaxDepth(t *testing.T) {
	conf := config.Default()
	conf.MaxDepth = 8
	l, err := compiler.NewLoader(t.Context(), conf, storage.NewLocalEngine(), nil)
	require.NoError(t, err)
	_, err = l.Parse("", "return "+strings.Repeat("(", 20)+"1"+strings.Repeat(")", 20)+";")
	var serr *srcfiles.Error
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, srcfiles.KindDepth, serr.Kind)

	_, err = l.Decode("deep.json", []byte(`[["return", `+strings.Repeat(`["unary_minus", `, 10)+`["k", 1, "int"]`+strings.Repeat("]", 10)+`]]`))
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, srcfiles.KindDepth, serr.Kind)
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewPedanticRegistry()
	l, err := compiler.NewLoader(t.Context(), nil, storage.NewLocalEngine(), nil)
	require.NoError(t, err)
	l.SetMetrics(compiler.NewMetrics(reg))

	_, err = l.Parse("", "let a = 1; return a;")
	require.NoError(t, err)
	_, err = l.Parse("", "let y = ;")
	require.Error(t, err)
	_, err = l.Decode("", []byte(`{"globals": [[0, "bind", "int", "g", ["k", 1, "int"]]], "function_defs": []}`))
	require.NoError(t, err)

	expected := `
# HELP floyd_statements_total Number of top-level statements built.
# TYPE floyd_statements_total counter
floyd_statements_total 3
# HELP floyd_units_total Number of programs parsed or decoded.
# TYPE floyd_units_total counter
floyd_units_total{form="json",result="ok"} 1
floyd_units_total{form="text",result="error"} 1
floyd_units_total{form="text",result="ok"} 1
`
	err = testutil.GatherAndCompare(reg, strings.NewReader(expected), "floyd_statements_total", "floyd_units_total")
	assert.NoError(t, err)
	n, err := testutil.GatherAndCount(reg, "floyd_build_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}
