package ports

import (
	"context"
	"iter"
	"time"

	"github.com/aretw0/flo/pkg/edge"
)

// Edge is a message channel bound to an ordered set of stream ids.
type Edge interface {
	// IDs returns the stream ids this edge is bound to.
	IDs() []string

	// Kind returns the implementation family of the edge.
	Kind() edge.Kind

	// Send appends payload under key to every stream of the edge.
	Send(ctx context.Context, key string, payload any) error

	// Pull returns a single-pass sequence of the payloads of every stream,
	// ending once each stream delivered its DONE marker. Control markers are
	// never yielded. A second pull requires a new Edge.
	Pull(ctx context.Context) iter.Seq2[any, error]

	// Start emits the INIT marker.
	Start(ctx context.Context) error

	// Stop emits the DONE marker.
	Stop(ctx context.Context) error
}

// EdgeFactory builds Edges of a single kind.
type EdgeFactory interface {
	Kind() edge.Kind
	Edge(ids ...string) (Edge, error)
}

// Purger is implemented by factories that can drop every stream whose id
// starts with prefix. Graphs purge their own streams before a submission.
type Purger interface {
	Purge(ctx context.Context, prefix string) error
}

// Scoped is implemented by factories whose edges are only visible to other
// factories reporting the same scope (e.g. one in-memory store).
type Scoped interface {
	Scope() string
}

// Portable is implemented by factories that a child process can rebuild from
// a serialized EdgeConfig.
type Portable interface {
	Config() EdgeConfig
}

// EdgeConfig describes a portable edge factory.
type EdgeConfig struct {
	Kind  string        `json:"kind" yaml:"kind"`
	URL   string        `json:"url" yaml:"url"`
	Block time.Duration `json:"block" yaml:"block"`
	Count int64         `json:"count" yaml:"count"`
}
