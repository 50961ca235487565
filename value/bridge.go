package value

import (
	"context"
)

// Applier is the callback seam natives use to invoke script callables
// (user functions, lambdas, natives) without importing the evaluator.
type Applier interface {
	Apply(ctx context.Context, fn Value, args []Value, kwargs map[string]Value) (Value, error)
}

type applierKey struct{}

// WithApplier makes an Applier available to natives through the context.
func WithApplier(ctx context.Context, a Applier) context.Context {
	return context.WithValue(ctx, applierKey{}, a)
}

// ApplierFrom returns the ambient Applier, if any.
func ApplierFrom(ctx context.Context) (Applier, bool) {
	a, ok := ctx.Value(applierKey{}).(Applier)
	return a, ok
}
