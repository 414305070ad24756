package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/flo/pkg/adapters/memory"
	"github.com/aretw0/flo/pkg/edge"
	"github.com/aretw0/flo/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryEdge_Contract(t *testing.T) {
	ports.RunEdgeContract(t, memory.NewFactory(nil))
}

func TestMemoryEdge_RemovesDeliveredItems(t *testing.T) {
	ctx := context.Background()
	f := memory.NewFactory(nil)

	out, err := f.Edge("g/a/out")
	require.NoError(t, err)
	require.NoError(t, out.Start(ctx))
	require.NoError(t, out.Send(ctx, edge.KeyData, 1))
	require.NoError(t, out.Send(ctx, edge.KeyData, 2))
	require.NoError(t, out.Stop(ctx))
	assert.Equal(t, 4, f.Store().Len("g/a/out"))

	in, err := f.Edge("g/a/out")
	require.NoError(t, err)
	var got []any
	for v, err := range in.Pull(ctx) {
		require.NoError(t, err)
		got = append(got, v)
	}
	assert.Equal(t, []any{1, 2}, got)
	// INIT and DONE remain
	assert.Equal(t, 2, f.Store().Len("g/a/out"))
}

func TestMemoryEdge_StopEarly(t *testing.T) {
	ctx := context.Background()
	f := memory.NewFactory(nil)

	out, _ := f.Edge("s")
	for i := range 3 {
		require.NoError(t, out.Send(ctx, edge.KeyData, i))
	}

	in, _ := f.Edge("s")
	for v := range in.Pull(ctx) {
		assert.Equal(t, 0, v)
		break
	}
	assert.Equal(t, 2, f.Store().Len("s"))
}

func TestMemoryEdge_WakesOnAppend(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	f := memory.NewFactory(nil)

	go func() {
		out, _ := f.Edge("late")
		time.Sleep(30 * time.Millisecond)
		_ = out.Send(ctx, edge.KeyData, "x")
		time.Sleep(30 * time.Millisecond)
		_ = out.Stop(ctx)
	}()

	in, _ := f.Edge("late")
	var got []any
	for v, err := range in.Pull(ctx) {
		require.NoError(t, err)
		got = append(got, v)
	}
	assert.Equal(t, []any{"x"}, got)
}

func TestFactory_Purge(t *testing.T) {
	ctx := context.Background()
	f := memory.NewFactory(nil)

	a, _ := f.Edge("g1/n/out")
	b, _ := f.Edge("g2/n/out")
	require.NoError(t, a.Stop(ctx))
	require.NoError(t, b.Stop(ctx))

	require.NoError(t, f.Purge(ctx, "g1/"))
	assert.Zero(t, f.Store().Len("g1/n/out"))
	assert.Equal(t, 1, f.Store().Len("g2/n/out"))
}

func TestFactory_Scope(t *testing.T) {
	store := memory.NewStore()
	assert.Equal(t, memory.NewFactory(store).Scope(), memory.NewFactory(store).Scope())
	assert.NotEqual(t, memory.NewFactory(nil).Scope(), memory.NewFactory(nil).Scope())

	_, err := memory.NewFactory(nil).Edge()
	assert.ErrorIs(t, err, memory.ErrNoStreams)
}
