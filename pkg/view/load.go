package view

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"
)

// Loader fills one independent slice of page state.
type Loader func(ctx context.Context) error

// LoadAll runs loaders concurrently and waits for all of them. A failing
// loader does not cancel the others; every failure is returned joined.
func LoadAll(ctx context.Context, loaders ...Loader) error {
	var g errgroup.Group
	errs := make([]error, len(loaders))
	for i, load := range loaders {
		i, load := i, load
		g.Go(func() error {
			errs[i] = load(ctx)
			return nil
		})
	}
	_ = g.Wait()
	return errors.Join(errs...)
}
