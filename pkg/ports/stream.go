package ports

import (
	"context"
	"time"
)

// StreamCursor is the last entry id already read from a stream.
type StreamCursor struct {
	Stream string
	ID     string
}

// StreamEntry is one entry of an append-only stream. Entries hold a single
// key/value field.
type StreamEntry struct {
	Stream string
	ID     string
	Key    string
	Value  []byte
}

// StreamClient is the durable broker collaborator used by stream edges.
type StreamClient interface {
	// Append adds an entry to stream and returns its id. Ids increase
	// monotonically within a stream.
	Append(ctx context.Context, stream, key string, value []byte) (string, error)

	// Read returns entries newer than each cursor, at most count per stream
	// (0 means unbounded), waiting up to block for new data. Entries of one
	// stream keep their order. A read that times out returns no entries and
	// no error.
	Read(ctx context.Context, cursors []StreamCursor, count int64, block time.Duration) ([]StreamEntry, error)

	// Delete removes every stream whose name starts with prefix.
	Delete(ctx context.Context, prefix string) error
}
