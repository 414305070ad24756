package flo

import (
	"context"
	"log/slog"

	"github.com/aretw0/flo/pkg/adapters/memory"
	"github.com/aretw0/flo/pkg/adapters/redis"
	"github.com/aretw0/flo/pkg/domain"
	"github.com/aretw0/flo/pkg/flow"
	"github.com/aretw0/flo/pkg/runner"
)

// Option configures the graphs built by this package.
type Option func(*settings)

type settings struct {
	id     string
	logger *slog.Logger
	hooks  domain.LifecycleHooks
}

// WithLogger sets the logger of the graph and of its default runner.
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) {
		s.logger = logger
	}
}

// WithLifecycleHooks registers hooks on the default runner.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(s *settings) {
		s.hooks = s.hooks.Merge(hooks)
	}
}

// WithGraphID replaces the generated graph id.
func WithGraphID(id string) Option {
	return func(s *settings) {
		s.id = id
	}
}

// NewGraph returns a graph whose nodes run as goroutines of this process,
// connected by in-memory edges.
func NewGraph(opts ...Option) *flow.Graph {
	s := newSettings(opts)
	r := runner.NewThreadRunner(memory.NewFactory(nil), s.runnerOptions()...)
	return flow.NewGraph(s.graphOptions(r)...)
}

// NewStreamGraph is NewGraph with edges stored in the Redis streams at url
// (host[:port][/db] or redis://). An empty url falls back to FLO_REDIS_URL,
// then localhost.
func NewStreamGraph(ctx context.Context, url string, opts ...Option) (*flow.Graph, error) {
	client, err := redis.DefaultManager().Client(ctx, url)
	if err != nil {
		return nil, err
	}
	s := newSettings(opts)
	f := redis.NewFactory(redis.NewStreams(client), redis.WithURL(url))
	r := runner.NewThreadRunner(f, s.runnerOptions()...)
	return flow.NewGraph(s.graphOptions(r)...), nil
}

// ServeProcess runs the child side of a process runner when the current
// process was started by one, and reports whether it did. Call it first in
// main:
//
//	if served, err := flo.ServeProcess(ctx, reg); served {
//		if err != nil {
//			os.Exit(1)
//		}
//		return
//	}
func ServeProcess(ctx context.Context, specs flow.SpecSource, opts ...runner.Option) (bool, error) {
	if !runner.IsChild() {
		return false, nil
	}
	return true, runner.Serve(ctx, specs, opts...)
}

func newSettings(opts []Option) *settings {
	s := &settings{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *settings) runnerOptions() []runner.Option {
	opts := []runner.Option{runner.WithHooks(s.hooks)}
	if s.logger != nil {
		opts = append(opts, runner.WithLogger(s.logger))
	}
	return opts
}

func (s *settings) graphOptions(r flow.Runner) []flow.Option {
	opts := []flow.Option{flow.WithRunner(r)}
	if s.id != "" {
		opts = append(opts, flow.WithID(s.id))
	}
	if s.logger != nil {
		opts = append(opts, flow.WithLogger(s.logger))
	}
	return opts
}
