package edge

import "context"

// Yielder is implemented by cooperative schedulers.
// Code running inside a fiber only makes progress while it holds the
// scheduler's baton; Yield and Block are the points where it lets go.
type Yielder interface {
	// Yield hands the baton to the next waiting fiber and takes it back.
	Yield(ctx context.Context) error
	// Block releases the baton while fn runs, then re-acquires it.
	Block(ctx context.Context, fn func() error) error
}

type yielderKey struct{}

// WithYielder returns a context carrying y.
func WithYielder(ctx context.Context, y Yielder) context.Context {
	return context.WithValue(ctx, yielderKey{}, y)
}

// YielderFrom returns the Yielder carried by ctx, or a no-op one.
func YielderFrom(ctx context.Context) Yielder {
	if y, ok := ctx.Value(yielderKey{}).(Yielder); ok {
		return y
	}
	return noopYielder{}
}

type noopYielder struct{}

func (noopYielder) Yield(ctx context.Context) error { return ctx.Err() }

func (noopYielder) Block(_ context.Context, fn func() error) error { return fn() }
