package ports

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunEdgeContract runs a suite of tests to verify that an EdgeFactory and its
// Edges honor the framing, ordering and fairness contract.
// Stream ids are derived from the test name so a shared backend can be reused.
func RunEdgeContract(t *testing.T, factory EdgeFactory) {
	streamID := func(t *testing.T, name string) string {
		return strings.ReplaceAll(t.Name(), "/", ":") + "/" + name
	}

	// produce is safe to call from any goroutine: it reports instead of
	// failing the test.
	produce := func(id string, values ...string) error {
		ctx := context.Background()
		e, err := factory.Edge(id)
		if err != nil {
			return err
		}
		if err := e.Start(ctx); err != nil {
			return err
		}
		for _, v := range values {
			if err := e.Send(ctx, "NULL", v); err != nil {
				return err
			}
		}
		return e.Stop(ctx)
	}

	collect := func(ctx context.Context, t *testing.T, ids ...string) ([]string, error) {
		e, err := factory.Edge(ids...)
		require.NoError(t, err)
		var got []string
		for v, err := range e.Pull(ctx) {
			if err != nil {
				return got, err
			}
			got = append(got, fmt.Sprint(v))
		}
		return got, nil
	}

	values := func(prefix string, n int) []string {
		out := make([]string, n)
		for i := range out {
			out[i] = fmt.Sprintf("%s%d", prefix, i)
		}
		return out
	}

	t.Run("Single Producer Keeps Order", func(t *testing.T) {
		id := streamID(t, "out")
		require.NoError(t, produce(id, values("v", 10)...))

		got, err := collect(context.Background(), t, id)
		require.NoError(t, err)
		assert.Equal(t, values("v", 10), got)
	})

	t.Run("Control Markers Are Not Delivered", func(t *testing.T) {
		id := streamID(t, "out")
		require.NoError(t, produce(id))

		got, err := collect(context.Background(), t, id)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("Fan In Is Round Robin", func(t *testing.T) {
		a, b := streamID(t, "a"), streamID(t, "b")
		require.NoError(t, produce(a, "a0", "a1", "a2"))
		require.NoError(t, produce(b, "b0", "b1", "b2"))

		got, err := collect(context.Background(), t, a, b)
		require.NoError(t, err)
		assert.Equal(t, []string{"a0", "b0", "a1", "b1", "a2", "b2"}, got)
	})

	t.Run("Duplicate Ids Are Read Once", func(t *testing.T) {
		id := streamID(t, "out")
		require.NoError(t, produce(id, "x", "y"))

		got, err := collect(context.Background(), t, id, id)
		require.NoError(t, err)
		assert.Equal(t, []string{"x", "y"}, got)
	})

	t.Run("Concurrent Producers", func(t *testing.T) {
		a, b := streamID(t, "a"), streamID(t, "b")

		var wg sync.WaitGroup
		errs := make(chan error, 2)
		wg.Go(func() {
			errs <- produce(a, values("a", 20)...)
		})
		wg.Go(func() {
			time.Sleep(20 * time.Millisecond)
			errs <- produce(b, values("b", 15)...)
		})

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		got, err := collect(ctx, t, a, b)
		wg.Wait()
		close(errs)
		for perr := range errs {
			require.NoError(t, perr)
		}
		require.NoError(t, err)

		want := append(values("a", 20), values("b", 15)...)
		assert.ElementsMatch(t, want, got)

		// each producer's own order survives the interleaving
		var fromA []string
		for _, v := range got {
			if strings.HasPrefix(v, "a") {
				fromA = append(fromA, v)
			}
		}
		assert.Equal(t, values("a", 20), fromA)
	})

	t.Run("Waits For Late Producer", func(t *testing.T) {
		id := streamID(t, "out")
		produced := make(chan error, 1)
		go func() {
			time.Sleep(50 * time.Millisecond)
			produced <- produce(id, "late")
		}()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		got, err := collect(ctx, t, id)
		require.NoError(t, <-produced)
		require.NoError(t, err)
		assert.Equal(t, []string{"late"}, got)
	})

	t.Run("Pull Honors Context", func(t *testing.T) {
		id := streamID(t, "never")
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
		defer cancel()

		_, err := collect(ctx, t, id)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}
