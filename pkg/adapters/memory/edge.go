package memory

import (
	"context"
	"errors"
	"iter"
	"slices"

	"github.com/aretw0/flo/pkg/edge"
	"github.com/aretw0/flo/pkg/ports"
)

// ErrNoStreams is returned when an edge is requested without stream ids.
var ErrNoStreams = errors.New("edge needs at least one stream id")

// Edge implements ports.Edge over a Store.
type Edge struct {
	store *Store
	ids   []string
}

// IDs returns the de-duplicated stream ids of the edge.
func (e *Edge) IDs() []string { return slices.Clone(e.ids) }

// Kind returns edge.KindMemory.
func (e *Edge) Kind() edge.Kind { return edge.KindMemory }

// Send appends payload to every stream of the edge.
func (e *Edge) Send(_ context.Context, key string, payload any) error {
	e.store.append(e.ids, key, payload)
	return nil
}

// Start emits INIT.
func (e *Edge) Start(ctx context.Context) error {
	return e.Send(ctx, edge.KeyInit, nil)
}

// Stop emits DONE.
func (e *Edge) Stop(ctx context.Context) error {
	return e.Send(ctx, edge.KeyDone, nil)
}

// Pull delivers payloads round robin: each pass over the active streams
// takes at most one payload per stream. A stream leaves the rotation once its
// DONE marker is reached. Streams nobody has written to yet stay active.
func (e *Edge) Pull(ctx context.Context) iter.Seq2[any, error] {
	return func(yield func(any, error) bool) {
		active := slices.Clone(e.ids)
		for len(active) > 0 {
			if err := ctx.Err(); err != nil {
				yield(nil, err)
				return
			}

			changed := e.store.watch()
			progressed := false
			for i := 0; i < len(active); {
				payload, res := e.store.take(active[i])
				switch res {
				case takeItem:
					progressed = true
					if !yield(payload, nil) {
						return
					}
					i++
				case takeDone:
					progressed = true
					active = slices.Delete(active, i, i+1)
				default:
					i++
				}
			}

			if progressed {
				continue
			}
			select {
			case <-changed:
			case <-ctx.Done():
				yield(nil, ctx.Err())
				return
			}
		}
	}
}

// Factory builds in-memory edges sharing one Store.
type Factory struct {
	store *Store
}

var (
	_ ports.EdgeFactory = (*Factory)(nil)
	_ ports.Purger      = (*Factory)(nil)
	_ ports.Scoped      = (*Factory)(nil)
)

// NewFactory creates a factory over store, or over a fresh Store when nil.
func NewFactory(store *Store) *Factory {
	if store == nil {
		store = NewStore()
	}
	return &Factory{store: store}
}

// Store returns the backing store.
func (f *Factory) Store() *Store { return f.store }

// Kind returns edge.KindMemory.
func (f *Factory) Kind() edge.Kind { return edge.KindMemory }

// Scope returns the scope of the backing store.
func (f *Factory) Scope() string { return f.store.Scope() }

// Purge drops the streams under prefix.
func (f *Factory) Purge(ctx context.Context, prefix string) error {
	return f.store.Purge(ctx, prefix)
}

// Edge binds a new edge to ids.
func (f *Factory) Edge(ids ...string) (ports.Edge, error) {
	if len(ids) == 0 {
		return nil, ErrNoStreams
	}
	return &Edge{store: f.store, ids: edge.UniqueIDs(ids)}, nil
}
