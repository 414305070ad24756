package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/aretw0/flo/pkg/edge"
	"github.com/aretw0/flo/pkg/ports"
)

// Factory builds stream edges over one StreamClient.
type Factory struct {
	client ports.StreamClient
	kind   edge.Kind
	url    string
	block  time.Duration
	count  int64
}

var (
	_ ports.EdgeFactory = (*Factory)(nil)
	_ ports.Purger      = (*Factory)(nil)
	_ ports.Portable    = (*Factory)(nil)
)

// Option configures a Factory.
type Option func(*Factory)

// WithBlock sets how long a single read waits for new entries.
func WithBlock(d time.Duration) Option {
	return func(f *Factory) {
		if d > 0 {
			f.block = d
		}
	}
}

// WithCount caps the entries fetched per stream and read.
func WithCount(n int64) Option {
	return func(f *Factory) {
		if n > 0 {
			f.count = n
		}
	}
}

// WithURL records the broker address handed to child processes.
func WithURL(url string) Option {
	return func(f *Factory) {
		f.url = url
	}
}

// NewFactory creates a factory of edge.KindStream edges.
func NewFactory(client ports.StreamClient, opts ...Option) *Factory {
	return newFactory(client, edge.KindStream, DefaultBlock, opts)
}

// NewCooperativeFactory creates a factory of edge.KindCooperativeStream edges,
// for use by fiber runners.
func NewCooperativeFactory(client ports.StreamClient, opts ...Option) *Factory {
	return newFactory(client, edge.KindCooperativeStream, DefaultCooperativeBlock, opts)
}

func newFactory(client ports.StreamClient, kind edge.Kind, block time.Duration, opts []Option) *Factory {
	f := &Factory{
		client: client,
		kind:   kind,
		block:  block,
		count:  DefaultCount,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// FromConfig rebuilds a factory from its portable description, taking the
// client from m.
func FromConfig(ctx context.Context, m *Manager, cfg ports.EdgeConfig) (*Factory, error) {
	kind, err := edge.ParseKind(cfg.Kind)
	if err != nil {
		return nil, err
	}
	if !kind.Portable() {
		return nil, fmt.Errorf("%w: %s", ErrNotPortable, kind)
	}
	client, err := m.Client(ctx, cfg.URL)
	if err != nil {
		return nil, err
	}
	opts := []Option{WithURL(cfg.URL), WithBlock(cfg.Block), WithCount(cfg.Count)}
	if kind == edge.KindCooperativeStream {
		return NewCooperativeFactory(NewStreams(client), opts...), nil
	}
	return NewFactory(NewStreams(client), opts...), nil
}

// Kind returns the kind of the edges built.
func (f *Factory) Kind() edge.Kind { return f.kind }

// Config describes the factory for a child process.
func (f *Factory) Config() ports.EdgeConfig {
	return ports.EdgeConfig{
		Kind:  f.kind.String(),
		URL:   f.url,
		Block: f.block,
		Count: f.count,
	}
}

// Purge deletes the streams under prefix.
func (f *Factory) Purge(ctx context.Context, prefix string) error {
	return f.client.Delete(ctx, prefix)
}

// Edge binds a new edge to ids.
func (f *Factory) Edge(ids ...string) (ports.Edge, error) {
	if len(ids) == 0 {
		return nil, ErrNoStreams
	}
	return &Edge{
		client: f.client,
		kind:   f.kind,
		ids:    edge.UniqueIDs(ids),
		block:  f.block,
		count:  f.count,
	}, nil
}
