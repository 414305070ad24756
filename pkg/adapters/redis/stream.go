package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aretw0/flo/pkg/ports"
	backend "github.com/redis/go-redis/v9"
)

// Streams implements ports.StreamClient with Redis Streams.
type Streams struct {
	client backend.UniversalClient
}

var _ ports.StreamClient = (*Streams)(nil)

// NewStreams wraps an existing go-redis client.
func NewStreams(client backend.UniversalClient) *Streams {
	return &Streams{client: client}
}

// Append issues XADD with a single field.
func (s *Streams) Append(ctx context.Context, stream, key string, value []byte) (string, error) {
	id, err := s.client.XAdd(ctx, &backend.XAddArgs{
		Stream: stream,
		Values: map[string]any{key: value},
	}).Result()
	if err != nil {
		return "", fmt.Errorf("xadd %s: %w", stream, err)
	}
	return id, nil
}

// Read issues XREAD over every cursor. A block of zero or less does not wait.
func (s *Streams) Read(ctx context.Context, cursors []ports.StreamCursor, count int64, block time.Duration) ([]ports.StreamEntry, error) {
	if len(cursors) == 0 {
		return nil, nil
	}

	args := make([]string, 0, 2*len(cursors))
	for _, c := range cursors {
		args = append(args, c.Stream)
	}
	for _, c := range cursors {
		args = append(args, c.ID)
	}

	// go-redis treats BLOCK 0 as "forever" and a negative value as "no BLOCK".
	if block <= 0 {
		block = -1
	}

	res, err := s.client.XRead(ctx, &backend.XReadArgs{
		Streams: args,
		Count:   count,
		Block:   block,
	}).Result()
	if errors.Is(err, backend.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("xread: %w", err)
	}

	var entries []ports.StreamEntry
	for _, stream := range res {
		for _, msg := range stream.Messages {
			for k, v := range msg.Values {
				entries = append(entries, ports.StreamEntry{
					Stream: stream.Stream,
					ID:     msg.ID,
					Key:    k,
					Value:  toBytes(v),
				})
			}
		}
	}
	return entries, nil
}

// Delete removes every key matching prefix using SCAN and DEL.
func (s *Streams) Delete(ctx context.Context, prefix string) error {
	match := escapeGlob(prefix) + "*"
	var cursor uint64
	for {
		keys, next, err := s.client.Scan(ctx, cursor, match, 256).Result()
		if err != nil {
			return fmt.Errorf("scan %s: %w", match, err)
		}
		if len(keys) > 0 {
			if err := s.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("del: %w", err)
			}
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}

func toBytes(v any) []byte {
	switch val := v.(type) {
	case string:
		return []byte(val)
	case []byte:
		return val
	default:
		return []byte(fmt.Sprint(val))
	}
}

var globEscaper = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`, `[`, `\[`, `]`, `\]`)

func escapeGlob(s string) string {
	return globEscaper.Replace(s)
}
