package runner

import (
	"context"
	"errors"
	"fmt"

	"github.com/aretw0/flo/pkg/edge"
	"github.com/aretw0/flo/pkg/flow"
	"github.com/aretw0/flo/pkg/ports"
	"golang.org/x/sync/semaphore"
)

// ErrNotCooperative is returned when a FiberRunner is built over edges
// without yield points.
var ErrNotCooperative = errors.New("fiber runner needs a cooperative stream edge")

// FiberRunner runs every node as a fiber: a goroutine that only makes
// progress while holding the runner's single baton. Fibers hand the baton
// over at the yield points of cooperative edges and in flow.Sleep. Waiting
// fibers get the baton in arrival order.
type FiberRunner struct {
	*base
	baton *semaphore.Weighted
}

var _ flow.Runner = (*FiberRunner)(nil)

// NewFiberRunner creates a runner over a cooperative stream factory.
func NewFiberRunner(factory ports.EdgeFactory, opts ...Option) (*FiberRunner, error) {
	if factory.Kind() != edge.KindCooperativeStream {
		return nil, fmt.Errorf("%w: got %s", ErrNotCooperative, factory.Kind())
	}
	return &FiberRunner{
		base:  newBase("fiber", factory, newOptions(opts)),
		baton: semaphore.NewWeighted(1),
	}, nil
}

// Add registers nodes and assigns them to r.
func (r *FiberRunner) Add(nodes ...*flow.Node) { r.add(r, nodes) }

// Execute runs every node as a fiber and waits for all of them.
func (r *FiberRunner) Execute(ctx context.Context) error {
	return r.execute(ctx, func(ctx context.Context, n *flow.Node) error {
		f := &fiber{baton: r.baton}
		if err := f.acquire(ctx); err != nil {
			return err
		}
		defer f.release()
		return r.runNode(edge.WithYielder(ctx, f), n, n.Run)
	})
}

// fiber tracks whether one node holds the baton.
type fiber struct {
	baton *semaphore.Weighted
	held  bool
}

var _ edge.Yielder = (*fiber)(nil)

func (f *fiber) acquire(ctx context.Context) error {
	if f.held {
		return nil
	}
	if err := f.baton.Acquire(ctx, 1); err != nil {
		return err
	}
	f.held = true
	return nil
}

func (f *fiber) release() {
	if f.held {
		f.held = false
		f.baton.Release(1)
	}
}

// Yield lets the next waiting fiber run, then queues for the baton again.
func (f *fiber) Yield(ctx context.Context) error {
	f.release()
	return f.acquire(ctx)
}

// Block runs fn without the baton.
func (f *fiber) Block(ctx context.Context, fn func() error) error {
	f.release()
	err := fn()
	if aerr := f.acquire(ctx); aerr != nil {
		return errors.Join(err, aerr)
	}
	return err
}
