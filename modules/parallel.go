package modules

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/alexchoi0/blueprint-engine-sub002/value"
)

// Parallel fans script callables out over goroutines. Results keep input
// order; the first failure cancels the rest.
func Parallel() Module {
	return Module{
		"map": native("map", parallelMap),
		"all": native("all", parallelAll),
	}
}

// map(fn, items, limit=n) applies fn to every item concurrently.
func parallelMap(ctx context.Context, args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
	if err := wantArgCount("map", args, 2, 2); err != nil {
		return nil, err
	}
	fn, err := unpackCallable("map", "fn", args[0])
	if err != nil {
		return nil, err
	}
	items, err := unpackList("map", "items", args[1])
	if err != nil {
		return nil, err
	}
	applier, ok := value.ApplierFrom(ctx)
	if !ok {
		return nil, value.Errorf(value.TypeError, "map() is not available here")
	}

	elements := items.Snapshot()
	results := make([]value.Value, len(elements))

	g, gctx := errgroup.WithContext(ctx)
	if limit, has := optKwarg(kwargs, "limit"); has {
		n, lerr := unpackInt("map", "limit", limit)
		if lerr != nil {
			return nil, lerr
		}
		if n < 1 {
			return nil, value.Errorf(value.ValueError, "map() limit must be positive")
		}
		g.SetLimit(int(n))
	}

	for i, item := range elements {
		i, item := i, item
		g.Go(func() error {
			out, aerr := applier.Apply(gctx, fn, []value.Value{item}, nil)
			if aerr != nil {
				return aerr
			}
			results[i] = out
			return nil
		})
	}
	if werr := g.Wait(); werr != nil {
		return nil, value.FromGoError(werr, value.TypeError)
	}
	return value.NewList(results), nil
}

// all(fns) runs a list of zero-argument callables concurrently.
func parallelAll(ctx context.Context, args []value.Value, _ map[string]value.Value) (value.Value, error) {
	if err := wantArgCount("all", args, 1, 1); err != nil {
		return nil, err
	}
	fns, err := unpackList("all", "fns", args[0])
	if err != nil {
		return nil, err
	}
	applier, ok := value.ApplierFrom(ctx)
	if !ok {
		return nil, value.Errorf(value.TypeError, "all() is not available here")
	}

	elements := fns.Snapshot()
	for _, fn := range elements {
		if _, cerr := unpackCallable("all", "fn", fn); cerr != nil {
			return nil, cerr
		}
	}

	results := make([]value.Value, len(elements))
	g, gctx := errgroup.WithContext(ctx)
	for i, fn := range elements {
		i, fn := i, fn
		g.Go(func() error {
			out, aerr := applier.Apply(gctx, fn, nil, nil)
			if aerr != nil {
				return aerr
			}
			results[i] = out
			return nil
		})
	}
	if werr := g.Wait(); werr != nil {
		return nil, value.FromGoError(werr, value.TypeError)
	}
	return value.NewList(results), nil
}
