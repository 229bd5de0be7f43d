package cmd

import (
	"context"

	"github.com/brimdata/floyd/compiler/ast"
	"golang.org/x/sync/errgroup"
)

// loadAll loads each path concurrently and returns the trees in path order.
// The first failure cancels the remaining loads.
func loadAll(ctx context.Context, paths []string) ([]ast.Tree, error) {
	trees := make([]ast.Tree, len(paths))
	group, ctx := errgroup.WithContext(ctx)
	for k, path := range paths {
		group.Go(func() error {
			t, err := loader.Load(ctx, path)
			if err != nil {
				return err
			}
			trees[k] = t
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return trees, nil
}
