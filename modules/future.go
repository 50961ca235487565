package modules

import (
	"context"
	"sync"
)

type futureResult[T any] struct {
	v   T
	err error
}

// future is a single-shot result that completes exactly once; task handles
// wrap one around each spawned callable.
type future[T any] struct {
	doneChannel chan struct{}
	res         futureResult[T]
	once        sync.Once
}

// newFuture runs fn in a goroutine and completes when fn returns.
func newFuture[T any](fn func() (T, error)) *future[T] {
	f := &future[T]{doneChannel: make(chan struct{})}
	go func() {
		v, err := fn()
		f.complete(v, err)
	}()
	return f
}

// Await blocks for completion or context cancellation.
func (f *future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.doneChannel:
		return f.res.v, f.res.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

func (f *future[T]) Done() <-chan struct{} { return f.doneChannel }

func (f *future[T]) complete(v T, err error) {
	f.once.Do(func() {
		f.res = futureResult[T]{v: v, err: err}
		close(f.doneChannel)
	})
}
