package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/aretw0/flo/pkg/edge"
	"github.com/google/uuid"
)

type entry struct {
	key     string
	payload any
}

// Store is the backing registry of in-memory edges: stream id to ordered
// entries. Edges built on the same Store see each other's streams.
// Safe for concurrent use.
type Store struct {
	mu      sync.Mutex
	streams map[string][]entry
	changed chan struct{}
	scope   string
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		streams: make(map[string][]entry),
		changed: make(chan struct{}),
		scope:   uuid.NewString(),
	}
}

// Scope identifies the store. Factories sharing a store share a scope.
func (s *Store) Scope() string {
	return s.scope
}

// Len returns the number of entries held for id, control markers included.
func (s *Store) Len(id string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.streams[id])
}

// Purge drops every stream whose id starts with prefix.
func (s *Store) Purge(_ context.Context, prefix string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id := range s.streams {
		if strings.HasPrefix(id, prefix) {
			delete(s.streams, id)
		}
	}
	return nil
}

func (s *Store) append(ids []string, key string, payload any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		s.streams[id] = append(s.streams[id], entry{key: key, payload: payload})
	}
	close(s.changed)
	s.changed = make(chan struct{})
}

// watch returns a channel closed on the next append.
func (s *Store) watch() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.changed
}

type takeResult int

const (
	takeEmpty takeResult = iota
	takeItem
	takeDone
)

// take removes and returns the first deliverable entry of id. INIT markers
// are skipped in place; a DONE marker ends the stream and stays put.
func (s *Store) take(id string) (any, takeResult) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.streams[id]
	for i, e := range entries {
		switch e.key {
		case edge.KeyInit:
			continue
		case edge.KeyDone:
			return nil, takeDone
		}
		s.streams[id] = append(entries[:i:i], entries[i+1:]...)
		return e.payload, takeItem
	}
	return nil, takeEmpty
}
