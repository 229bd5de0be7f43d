package storage

import (
	"context"
	"errors"
	"io"
	"os"
)

// StdioEngine reads standard input and writes standard output.  Closing a
// reader or writer it returns leaves the underlying file open so that a
// later Get or Put still works.
type StdioEngine struct {
	Stdin  io.Reader
	Stdout io.Writer
}

var _ Engine = (*StdioEngine)(nil)

func NewStdioEngine() *StdioEngine {
	return &StdioEngine{Stdin: os.Stdin, Stdout: os.Stdout}
}

func (s *StdioEngine) Get(_ context.Context, path string) (io.ReadCloser, error) {
	if path != StdioPath {
		return nil, errors.New("stdio engine: cannot open " + path)
	}
	return io.NopCloser(s.Stdin), nil
}

func (s *StdioEngine) Put(_ context.Context, path string) (io.WriteCloser, error) {
	if path != StdioPath {
		return nil, errors.New("stdio engine: cannot create " + path)
	}
	return nopWriteCloser{s.Stdout}, nil
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }
