package redis

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"slices"
	"time"

	"github.com/aretw0/flo/pkg/edge"
	"github.com/aretw0/flo/pkg/ports"
)

const (
	DefaultBlock = 2 * time.Second
	DefaultCount = 16

	// DefaultCooperativeBlock keeps fibers responsive: a blocked read holds
	// no baton but still delays its own fiber.
	DefaultCooperativeBlock = 500 * time.Millisecond
)

var (
	// ErrCheckpointUnsupported is returned by Edge.Checkpoint.
	ErrCheckpointUnsupported = errors.New("stream edge checkpointing is not implemented")

	// ErrNoStreams is returned when an edge is requested without stream ids.
	ErrNoStreams = errors.New("edge needs at least one stream id")

	// ErrNotPortable is returned by FromConfig for kinds a child process cannot rebuild.
	ErrNotPortable = errors.New("edge kind is not portable")
)

// Edge implements ports.Edge over a ports.StreamClient. Every consumer keeps
// its own cursors, so each consumer of a stream sees all of its payloads.
type Edge struct {
	client ports.StreamClient
	kind   edge.Kind
	ids    []string
	block  time.Duration
	count  int64
}

// IDs returns the de-duplicated stream ids of the edge.
func (e *Edge) IDs() []string { return slices.Clone(e.ids) }

// Kind returns edge.KindStream or edge.KindCooperativeStream.
func (e *Edge) Kind() edge.Kind { return e.kind }

func (e *Edge) cooperative() bool { return e.kind == edge.KindCooperativeStream }

// Send appends one entry {key: payload} to every stream of the edge.
func (e *Edge) Send(ctx context.Context, key string, payload any) error {
	data, err := Encode(payload)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}
	for _, id := range e.ids {
		if _, err := e.client.Append(ctx, id, key, data); err != nil {
			return err
		}
	}
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

// Checkpoint would persist the read cursors of the edge.
func (e *Edge) Checkpoint(context.Context) error {
	return ErrCheckpointUnsupported
}

// Pull reads every stream from its beginning. Each read batch is delivered
// round robin across streams; a stream leaves the rotation at its DONE marker.
// The cooperative kind yields before every read, runs the read with the baton
// released and yields again after each payload.
func (e *Edge) Pull(ctx context.Context) iter.Seq2[any, error] {
	return func(yield func(any, error) bool) {
		y := edge.YielderFrom(ctx)
		cursors := make(map[string]string, len(e.ids))
		for _, id := range e.ids {
			cursors[id] = "0-0"
		}
		active := slices.Clone(e.ids)

		for len(active) > 0 {
			if e.cooperative() {
				if err := y.Yield(ctx); err != nil {
					yield(nil, err)
					return
				}
			}

			req := make([]ports.StreamCursor, len(active))
			for i, id := range active {
				req[i] = ports.StreamCursor{Stream: id, ID: cursors[id]}
			}

			var entries []ports.StreamEntry
			read := func() error {
				var err error
				entries, err = e.client.Read(ctx, req, e.count, e.block)
				return err
			}
			var err error
			if e.cooperative() {
				err = y.Block(ctx, read)
			} else {
				err = read()
			}
			if err != nil {
				yield(nil, contextError(ctx, err))
				return
			}
			if len(entries) == 0 {
				if err := contextError(ctx, nil); err != nil {
					yield(nil, err)
					return
				}
				continue
			}

			for _, en := range interleave(active, entries) {
				cursors[en.Stream] = en.ID
				switch en.Key {
				case edge.KeyInit:
					continue
				case edge.KeyDone:
					active = slices.DeleteFunc(active, func(id string) bool { return id == en.Stream })
					continue
				}

				v, err := Decode(en.Value)
				if err != nil {
					yield(nil, fmt.Errorf("decode %s@%s: %w", en.Stream, en.ID, err))
					return
				}
				if !yield(v, nil) {
					return
				}
				if e.cooperative() {
					if err := y.Yield(ctx); err != nil {
						yield(nil, err)
						return
					}
				}
			}
		}
	}
}

// interleave orders a read batch round robin over streams, in the order of
// ids. INIT markers advance the cursor but are dropped here, as is anything
// after a DONE marker.
func interleave(ids []string, entries []ports.StreamEntry) []ports.StreamEntry {
	per := make(map[string][]ports.StreamEntry, len(ids))
	last := make(map[string]ports.StreamEntry, len(ids))
	closed := make(map[string]bool, len(ids))
	for _, en := range entries {
		if closed[en.Stream] {
			continue
		}
		last[en.Stream] = en
		if en.Key == edge.KeyInit {
			continue
		}
		per[en.Stream] = append(per[en.Stream], en)
		if en.Key == edge.KeyDone {
			closed[en.Stream] = true
		}
	}

	out := make([]ports.StreamEntry, 0, len(entries))
	for i := 0; ; i++ {
		added := false
		for _, id := range ids {
			if i < len(per[id]) {
				out = append(out, per[id][i])
				added = true
			}
		}
		if !added {
			break
		}
	}

	// Streams holding only INIT in this batch still need their cursor moved.
	for _, id := range ids {
		if len(per[id]) == 0 {
			if en, ok := last[id]; ok {
				out = append(out, ports.StreamEntry{Stream: id, ID: en.ID, Key: edge.KeyInit})
			}
		}
	}
	return out
}

func contextError(ctx context.Context, err error) error {
	if cerr := ctx.Err(); cerr != nil {
		return cerr
	}
	if deadline, ok := ctx.Deadline(); ok && !time.Now().Before(deadline) {
		return context.DeadlineExceeded
	}
	return err
}
