package runner

import (
	"context"

	"github.com/aretw0/flo/pkg/flow"
	"github.com/aretw0/flo/pkg/ports"
)

// ThreadRunner runs every node on its own goroutine. It works with any edge kind.
type ThreadRunner struct {
	*base
}

var _ flow.Runner = (*ThreadRunner)(nil)

// NewThreadRunner creates a runner whose nodes talk through factory.
func NewThreadRunner(factory ports.EdgeFactory, opts ...Option) *ThreadRunner {
	return &ThreadRunner{base: newBase("thread", factory, newOptions(opts))}
}

// Add registers nodes and assigns them to r.
func (r *ThreadRunner) Add(nodes ...*flow.Node) { r.add(r, nodes) }

// Execute runs every node concurrently and waits for all of them.
func (r *ThreadRunner) Execute(ctx context.Context) error {
	return r.execute(ctx, func(ctx context.Context, n *flow.Node) error {
		return r.runNode(ctx, n, n.Run)
	})
}
