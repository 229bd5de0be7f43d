// Package storage opens program sources and output destinations by path.
// The path "-" names standard input or standard output.
package storage

import (
	"context"
	"io"
)

const StdioPath = "-"

type Engine interface {
	Get(context.Context, string) (io.ReadCloser, error)
	Put(context.Context, string) (io.WriteCloser, error)
}

// Router dispatches "-" to its stdio engine and every other path to its
// file system.
type Router struct {
	Stdio *StdioEngine
	Files *FileSystem
}

var _ Engine = (*Router)(nil)

func NewLocalEngine() *Router {
	return &Router{
		Stdio: NewStdioEngine(),
		Files: NewFileSystem(),
	}
}

func (r *Router) engine(path string) Engine {
	if path == StdioPath {
		return r.Stdio
	}
	return r.Files
}

func (r *Router) Get(ctx context.Context, path string) (io.ReadCloser, error) {
	return r.engine(path).Get(ctx, path)
}

func (r *Router) Put(ctx context.Context, path string) (io.WriteCloser, error) {
	return r.engine(path).Put(ctx, path)
}

// Get reads the whole content at path.
func Get(ctx context.Context, engine Engine, path string) ([]byte, error) {
	r, err := engine.Get(ctx, path)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}

// Put replaces the content at path with b.
func Put(ctx context.Context, engine Engine, path string, b []byte) error {
	w, err := engine.Put(ctx, path)
	if err != nil {
		return err
	}
	if _, err := w.Write(b); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}
