package runner

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aretw0/flo/pkg/domain"
	"github.com/aretw0/flo/pkg/flow"
	"github.com/aretw0/flo/pkg/ports"
)

var seq atomic.Int64

// base holds what every runner shares: the node set, the edge factory and
// the observability plumbing.
type base struct {
	name    string
	factory ports.EdgeFactory
	logger  *slog.Logger
	hooks   domain.LifecycleHooks

	mu    sync.Mutex
	nodes []*flow.Node
	index map[*flow.Node]struct{}
}

func newBase(kind string, factory ports.EdgeFactory, o options) *base {
	name := o.name
	if name == "" {
		name = fmt.Sprintf("%s-%d", kind, seq.Add(1))
	}
	return &base{
		name:    name,
		factory: factory,
		logger:  o.logger.With("runner", name),
		hooks:   o.hooks,
		index:   make(map[*flow.Node]struct{}),
	}
}

func (b *base) Name() string { return b.name }

func (b *base) String() string { return b.name }

func (b *base) Factory() ports.EdgeFactory { return b.factory }

func (b *base) Edge(ids ...string) (ports.Edge, error) {
	return b.factory.Edge(ids...)
}

func (b *base) Nodes() []*flow.Node {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]*flow.Node(nil), b.nodes...)
}

// add registers nodes once each and assigns them to self, the concrete runner.
func (b *base) add(self flow.Runner, nodes []*flow.Node) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, n := range nodes {
		if _, ok := b.index[n]; ok {
			continue
		}
		b.index[n] = struct{}{}
		b.nodes = append(b.nodes, n)
		n.SetRunner(self)
	}
}

// runNode wraps one node invocation with hooks and logs.
func (b *base) runNode(ctx context.Context, n *flow.Node, run func(context.Context) error) error {
	start := time.Now()
	b.hooks.NodeStarted(ctx, &domain.NodeEvent{
		EventBase: domain.EventBase{Timestamp: start},
		NodeID:    n.ID(),
		Spec:      n.Spec().Name,
		Runner:    b.name,
	})
	b.logger.Debug("node started", "node_id", n.ID())

	err := run(ctx)

	elapsed := time.Since(start)
	b.hooks.NodeFinished(ctx, &domain.NodeEvent{
		EventBase: domain.EventBase{Timestamp: time.Now()},
		NodeID:    n.ID(),
		Spec:      n.Spec().Name,
		Runner:    b.name,
		Duration:  elapsed,
		Err:       err,
	})
	if err != nil {
		b.logger.Error("node failed", "node_id", n.ID(), "duration", elapsed, "error", err)
	} else {
		b.logger.Debug("node finished", "node_id", n.ID(), "duration", elapsed)
	}
	return err
}

// execute runs every node through run, each on its own goroutine, and
// aggregates the failures.
func (b *base) execute(ctx context.Context, run func(context.Context, *flow.Node) error) error {
	nodes := b.Nodes()
	start := time.Now()
	b.hooks.RunnerStarted(ctx, &domain.RunnerEvent{
		EventBase: domain.EventBase{Timestamp: start},
		Runner:    b.name,
		Nodes:     len(nodes),
	})
	b.logger.Info("runner started", "nodes", len(nodes))

	var (
		mu       sync.Mutex
		failures = make(map[string]*domain.NodeFailure)
		wg       sync.WaitGroup
	)
	for _, n := range nodes {
		wg.Go(func() {
			if f := b.failure(n, run(ctx, n)); f != nil {
				mu.Lock()
				failures[n.ID()] = f
				mu.Unlock()
			}
		})
	}
	wg.Wait()

	var err error
	if len(failures) > 0 {
		err = &domain.RunnerExecutionError{Runner: b.name, Failures: failures}
	}
	elapsed := time.Since(start)
	b.hooks.RunnerDone(ctx, &domain.RunnerEvent{
		EventBase: domain.EventBase{Timestamp: time.Now()},
		Runner:    b.name,
		Nodes:     len(nodes),
		Duration:  elapsed,
		Err:       err,
	})
	b.logger.Info("runner finished", "nodes", len(nodes), "failed", len(failures), "duration", elapsed)
	return err
}

func (b *base) failure(n *flow.Node, err error) *domain.NodeFailure {
	if err == nil {
		return nil
	}
	if f, ok := err.(*domain.NodeFailure); ok {
		return f
	}
	return flow.Failure(n, err)
}
