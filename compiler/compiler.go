// Package compiler loads Floyd programs from source text or from their JSON
// form.
package compiler

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/brimdata/floyd/compiler/ast"
	"github.com/brimdata/floyd/compiler/astjson"
	"github.com/brimdata/floyd/compiler/parser"
	"github.com/brimdata/floyd/compiler/srcfiles"
	"github.com/brimdata/floyd/pkg/config"
	"github.com/brimdata/floyd/pkg/storage"
	"go.uber.org/zap"
)

type Loader struct {
	engine   storage.Engine
	logger   *zap.Logger
	maxDepth int
	prelude  []srcfiles.Source
	metrics  *Metrics
}

// NewLoader reads the prelude files named by conf.  A nil conf selects
// config.Default and a nil logger discards log output.
func NewLoader(ctx context.Context, conf *config.Config, engine storage.Engine, logger *zap.Logger) (*Loader, error) {
	if conf == nil {
		conf = config.Default()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	l := &Loader{
		engine:   engine,
		logger:   logger,
		maxDepth: conf.MaxDepth,
		metrics:  NewMetrics(nil),
	}
	for _, path := range conf.Prelude {
		b, err := storage.Get(ctx, engine, path)
		if err != nil {
			return nil, fmt.Errorf("prelude: %w", err)
		}
		l.prelude = append(l.prelude, srcfiles.Source{Name: path, Text: string(b)})
		logger.Debug("prelude loaded", zap.String("path", path), zap.Int("bytes", len(b)))
	}
	return l, nil
}

// SetMetrics directs the loader's counters to m.
func (l *Loader) SetMetrics(m *Metrics) {
	l.metrics = m
}

// Files returns the compilation unit for a program text named name.
func (l *Loader) Files(name, text string) *srcfiles.List {
	sources := append([]srcfiles.Source{}, l.prelude...)
	return srcfiles.NewList(append(sources, srcfiles.Source{Name: name, Text: text})...)
}

// Parse parses program text preceded by the prelude.
func (l *Loader) Parse(name, text string) (*parser.AST, error) {
	start := time.Now()
	a, err := parser.ParseProgram(l.Files(name, text), l.maxDepth)
	if err != nil {
		l.metrics.observe(formText, start, 0, err)
		l.logger.Warn("parse failed", zap.String("name", name), zap.Error(err))
		return nil, err
	}
	n := len(a.Parsed().Body.Statements)
	l.metrics.observe(formText, start, n, nil)
	l.logger.Debug("parsed",
		zap.String("name", name),
		zap.Int("statements", n),
		zap.Duration("elapsed", time.Since(start)),
	)
	return a, nil
}

// Decode builds an AST from the JSON form in b.
func (l *Loader) Decode(name string, b []byte) (ast.Tree, error) {
	start := time.Now()
	v, err := astjson.Unmarshal(b)
	if err == nil {
		var t ast.Tree
		if t, err = astjson.NewBuilder(l.maxDepth).AST(v); err == nil {
			l.metrics.observe(formJSON, start, topLevel(t), nil)
			l.logger.Debug("decoded", zap.String("name", name), zap.Duration("elapsed", time.Since(start)))
			return t, nil
		}
	}
	l.metrics.observe(formJSON, start, 0, err)
	l.logger.Warn("decode failed", zap.String("name", name), zap.Error(err))
	return nil, err
}

func topLevel(t ast.Tree) int {
	switch t := t.(type) {
	case *ast.Program:
		return len(t.Body.Statements)
	case *ast.SAST:
		return len(t.Globals.Statements) + len(t.FunctionDefs)
	}
	return 0
}

// IsJSON reports whether path names a file in the JSON form.
func IsJSON(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}

// Load reads the program at path.  Paths ending in ".json" hold the JSON
// form and every other path holds source text.  The path "-" reads
// standard input as source text.
func (l *Loader) Load(ctx context.Context, path string) (ast.Tree, error) {
	b, err := storage.Get(ctx, l.engine, path)
	if err != nil {
		return nil, err
	}
	l.logger.Debug("loaded", zap.String("path", path), zap.Int("bytes", len(b)))
	if IsJSON(path) {
		t, err := l.Decode(path, b)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return t, nil
	}
	name := path
	if path == storage.StdioPath {
		name = ""
	}
	a, err := l.Parse(name, string(b))
	if err != nil {
		return nil, err
	}
	return a.Parsed(), nil
}
