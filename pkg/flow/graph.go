package flow

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/aretw0/flo/pkg/domain"
	"github.com/aretw0/flo/pkg/ports"
	"github.com/google/uuid"
)

// Graph owns a set of named nodes and submits them to their runners.
type Graph struct {
	id       string
	runner   Runner
	fallback Runner
	logger   *slog.Logger

	mu     sync.Mutex
	nodes  []*Node
	byName map[string]*Node
}

// Option configures a Graph.
type Option func(*Graph)

// WithID sets the graph id. It prefixes every node and stream id.
func WithID(id string) Option {
	return func(g *Graph) {
		g.id = id
	}
}

// WithRunner sets the runner of nodes added without one. Without it they
// fall back to the process default runner, see SetDefaultRunner.
func WithRunner(r Runner) Option {
	return func(g *Graph) {
		g.runner = r
	}
}

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Graph) {
		g.logger = logger
	}
}

// NewGraph creates an empty graph. Without WithID the id is a random uuid.
func NewGraph(opts ...Option) *Graph {
	g := &Graph{
		byName: make(map[string]*Node),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.id == "" {
		g.id = uuid.NewString()
	}
	return g
}

// ID returns the graph id.
func (g *Graph) ID() string { return g.id }

// DefaultRunner returns the runner of nodes added without one, or nil.
func (g *Graph) DefaultRunner() Runner { return g.runner }

// NodeOption configures a node as it is added.
type NodeOption func(*nodeOptions)

type nodeOptions struct {
	name   string
	runner Runner
}

// Named sets the node name. Without it the name is the spec name followed by
// the smallest positive integer not yet taken.
func Named(name string) NodeOption {
	return func(o *nodeOptions) {
		o.name = name
	}
}

// RunOn assigns the node to r instead of the graph's default runner.
func RunOn(r Runner) NodeOption {
	return func(o *nodeOptions) {
		o.runner = r
	}
}

// Add builds a node from spec. Names are unique within the graph: a taken
// name fails with *domain.DuplicateNodeError and leaves the graph unchanged.
func (g *Graph) Add(spec *Spec, opts ...NodeOption) (*Node, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	var o nodeOptions
	for _, opt := range opts {
		opt(&o)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	name := o.name
	if name == "" {
		name = g.freeName(spec.Name)
	}
	if _, taken := g.byName[name]; taken {
		return nil, &domain.DuplicateNodeError{NodeID: name}
	}

	n, err := NewNode(g.id+"/"+name, spec)
	if err != nil {
		return nil, err
	}
	n.name = name
	n.runner = o.runner

	g.nodes = append(g.nodes, n)
	g.byName[name] = n
	return n, nil
}

func (g *Graph) freeName(base string) string {
	for i := 1; ; i++ {
		name := base + strconv.Itoa(i)
		if _, taken := g.byName[name]; !taken {
			return name
		}
	}
}

// Node returns the node called name, or nil.
func (g *Graph) Node(name string) *Node {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.byName[name]
}

// Nodes returns every node in insertion order.
func (g *Graph) Nodes() []*Node {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]*Node(nil), g.nodes...)
}

// Runners validates every node, registers it with its runner and returns the
// distinct runners in first-seen order, once they passed Compatible.
func (g *Graph) Runners() ([]Runner, error) {
	var runners []Runner
	seen := make(map[Runner]bool)
	for _, n := range g.Nodes() {
		if err := n.Validate(); err != nil {
			return nil, err
		}
		r := n.runner
		if r == nil {
			r = g.runner
		}
		if r == nil {
			r = g.processDefault()
		}
		if r == nil {
			return nil, fmt.Errorf("node %s: %w", n.ID(), domain.ErrNoRunner)
		}
		r.Add(n)
		if !seen[r] {
			seen[r] = true
			runners = append(runners, r)
		}
	}
	if err := Compatible(runners...); err != nil {
		return nil, err
	}
	return runners, nil
}

// processDefault returns the graph's instance of the process default runner,
// building it on first use.
func (g *Graph) processDefault() Runner {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.fallback == nil {
		g.fallback = NewDefaultRunner()
	}
	return g.fallback
}

// Submit executes every runner concurrently and waits for all of them, for at
// most timeout (zero waits without limit) and while ctx is live.
//
// Runner failures are collected into a *domain.GraphExecutionError. When some
// runner is still executing at the deadline, the result is a
// *domain.TimeoutError instead, wrapping the failures collected so far.
// Pending runners are cancelled through their context; nodes that ignore it
// keep running in the background.
func (g *Graph) Submit(ctx context.Context, timeout time.Duration) error {
	runners, err := g.Runners()
	if err != nil {
		return err
	}
	if err := g.purge(ctx, runners); err != nil {
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	type result struct {
		idx int
		err error
	}
	results := make(chan result, len(runners))
	for i, r := range runners {
		go func() {
			results <- result{idx: i, err: r.Execute(runCtx)}
		}()
	}

	var deadline <-chan time.Time
	if timeout > 0 {
		t := time.NewTimer(timeout)
		defer t.Stop()
		deadline = t.C
	}

	start := time.Now()
	g.logger.Info("graph submitted", "graph", g.id, "runners", len(runners), "timeout", timeout)

	finished := make([]bool, len(runners))
	errs := make([]error, len(runners))
	remaining := len(runners)
wait:
	for remaining > 0 {
		select {
		case res := <-results:
			finished[res.idx] = true
			errs[res.idx] = res.err
			remaining--
		case <-deadline:
			break wait
		case <-ctx.Done():
			break wait
		}
	}
	cancel()

	// results that raced the deadline are buffered already
drain:
	for remaining > 0 {
		select {
		case res := <-results:
			finished[res.idx] = true
			errs[res.idx] = res.err
			remaining--
		default:
			break drain
		}
	}

	var failures []error
	var pending []string
	for i, r := range runners {
		switch {
		case !finished[i]:
			pending = append(pending, r.Name())
		case errs[i] != nil:
			failures = append(failures, errs[i])
		}
	}

	var agg *domain.GraphExecutionError
	if len(failures) > 0 {
		agg = &domain.GraphExecutionError{Errors: failures}
	}
	if len(pending) > 0 {
		g.logger.Warn("graph timed out", "graph", g.id, "pending", pending, "elapsed", time.Since(start))
		return &domain.TimeoutError{Pending: pending, Partial: agg}
	}
	if agg != nil {
		g.logger.Error("graph failed", "graph", g.id, "failed_runners", len(failures), "elapsed", time.Since(start))
		return agg
	}
	g.logger.Info("graph finished", "graph", g.id, "elapsed", time.Since(start))
	return nil
}

// purge drops the streams left by a previous submission of this graph.
func (g *Graph) purge(ctx context.Context, runners []Runner) error {
	done := make(map[ports.EdgeFactory]bool)
	for _, r := range runners {
		f := r.Factory()
		if done[f] {
			continue
		}
		done[f] = true
		if p, ok := f.(ports.Purger); ok {
			if err := p.Purge(ctx, g.id+"/"); err != nil {
				return fmt.Errorf("purge graph %s: %w", g.id, err)
			}
		}
	}
	return nil
}
