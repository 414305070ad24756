package testutils

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/flo/pkg/adapters/redis"
	backend "github.com/redis/go-redis/v9"
)

// SetupRedis starts an in-process Redis for the test and returns it with a
// stream client connected to it. Both are closed when the test ends.
func SetupRedis(t testing.TB) (*miniredis.Miniredis, *redis.Streams) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return mr, redis.NewStreams(client)
}
