package runner_test

import (
	"bytes"
	"context"
	"encoding/json"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/flo/internal/testutils"
	"github.com/aretw0/flo/pkg/adapters/memory"
	"github.com/aretw0/flo/pkg/adapters/redis"
	"github.com/aretw0/flo/pkg/domain"
	"github.com/aretw0/flo/pkg/flow"
	"github.com/aretw0/flo/pkg/library"
	"github.com/aretw0/flo/pkg/ports"
	"github.com/aretw0/flo/pkg/runner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func skipWithoutExtraFiles(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("report pipe relies on ExtraFiles")
	}
}

func processSetup(t *testing.T) (*miniredis.Miniredis, *redis.Factory) {
	t.Helper()
	mr, streams := testutils.SetupRedis(t)
	f := redis.NewFactory(streams, redis.WithURL(mr.Addr()), redis.WithBlock(50*time.Millisecond))
	return mr, f
}

func TestNewProcessRunner_RejectsMemory(t *testing.T) {
	_, err := runner.NewProcessRunner(memory.NewFactory(nil))
	assert.ErrorIs(t, err, runner.ErrEdgeNotPortable)
}

func TestNewProcessRunner_RejectsMissingURL(t *testing.T) {
	_, streams := testutils.SetupRedis(t)
	_, err := runner.NewProcessRunner(redis.NewFactory(streams))
	assert.ErrorIs(t, err, runner.ErrEdgeNotPortable)
	assert.ErrorContains(t, err, "no url")
}

func TestProcessRunner_Pipeline(t *testing.T) {
	skipWithoutExtraFiles(t)
	mr, f := processSetup(t)

	pr, err := runner.NewProcessRunner(f, runner.WithName("procs"))
	require.NoError(t, err)
	g := flow.NewGraph(flow.WithRunner(pr))

	gen, _ := g.Add(library.Generate)
	require.NoError(t, gen.Init("arg", 10))
	sl, _ := g.Add(library.Sleep)
	require.NoError(t, sl.Init("inflow", gen.Out("outflow"), "duration", 0.02))
	c, _ := g.Add(library.Capture)
	require.NoError(t, c.Init("inflow", sl.Out("outflow"), "url", mr.Addr(), "key", "captured"))

	require.NoError(t, g.Submit(context.Background(), 30*time.Second))

	got, err := mr.List("captured")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"0", "1", "2", "3", "4", "5", "6", "7", "8", "9"}, got)
}

func TestProcessRunner_ReportsNodeFailure(t *testing.T) {
	skipWithoutExtraFiles(t)
	_, f := processSetup(t)

	pr, err := runner.NewProcessRunner(f, runner.WithName("procs"))
	require.NoError(t, err)
	g := flow.NewGraph(flow.WithRunner(pr))

	gen, _ := g.Add(library.Generate)
	require.NoError(t, gen.Init("arg", 10))
	h, _ := g.Add(hater)
	require.NoError(t, h.Init("inflow", gen.Out("outflow")))

	err = g.Submit(context.Background(), 30*time.Second)
	require.Error(t, err)
	assert.True(t, strings.HasSuffix(err.Error(), "I hate 3"), err.Error())

	var rerr *domain.RunnerExecutionError
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, []string{h.ID()}, rerr.NodeIDs())
}

func TestProcessRunner_ReportsPanicTrace(t *testing.T) {
	skipWithoutExtraFiles(t)
	_, f := processSetup(t)

	pr, err := runner.NewProcessRunner(f)
	require.NoError(t, err)
	g := flow.NewGraph(flow.WithRunner(pr))
	p, _ := g.Add(panicker)

	err = g.Submit(context.Background(), 30*time.Second)
	var rerr *domain.RunnerExecutionError
	require.ErrorAs(t, err, &rerr)
	failure := rerr.Failures[p.ID()]
	require.NotNil(t, failure)
	assert.Equal(t, "panic: unreachable state 7", failure.Message)
	assert.Contains(t, failure.Trace, "goroutine")
}

func TestProcessRunner_ReleasesConsumersOfCrashedChild(t *testing.T) {
	skipWithoutExtraFiles(t)
	_, f := processSetup(t)

	pr, err := runner.NewProcessRunner(f)
	require.NoError(t, err)
	sink := &library.Sink{}
	tr := runner.NewThreadRunner(f)

	g := flow.NewGraph(flow.WithRunner(pr))
	crash, _ := g.Add(crasher)
	c, _ := g.Add(library.NewCollect(sink), flow.RunOn(tr))
	require.NoError(t, c.Init("inflow", crash.Out("outflow")))

	err = g.Submit(context.Background(), 30*time.Second)
	var rerr *domain.RunnerExecutionError
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, []string{crash.ID()}, rerr.NodeIDs())
	assert.Contains(t, rerr.Failures[crash.ID()].Message, "exit status 3")
	assert.Empty(t, sink.Values())
}

func TestServeIO(t *testing.T) {
	mr, streams := testutils.SetupRedis(t)
	f := redis.NewFactory(nil, redis.WithURL(mr.Addr()))

	n, err := flow.NewNode("g/hater", hater)
	require.NoError(t, err)
	require.NoError(t, n.Init("inflow", &flow.Port{ID: "g/gen/outflow", Direction: flow.DirOut}))

	// feed the upstream stream directly
	up, _ := redis.NewFactory(streams).Edge("g/gen/outflow")
	ctx := context.Background()
	require.NoError(t, up.Start(ctx))
	for i := range 5 {
		require.NoError(t, up.Send(ctx, "NULL", i))
	}
	require.NoError(t, up.Stop(ctx))

	var in, out bytes.Buffer
	require.NoError(t, json.NewEncoder(&in).Encode(runner.Request{Node: n.Descriptor(), Edge: f.Config()}))

	err = runner.ServeIO(ctx, specs, &in, &out)
	assert.Error(t, err)

	var rep runner.Report
	require.NoError(t, json.Unmarshal(out.Bytes(), &rep))
	assert.Equal(t, "I hate 3", rep.Message)
}

func TestServeIO_BadRequest(t *testing.T) {
	var out bytes.Buffer
	err := runner.ServeIO(context.Background(), specs, strings.NewReader("{"), &out)
	assert.Error(t, err)

	var rep runner.Report
	require.NoError(t, json.Unmarshal(out.Bytes(), &rep))
	assert.Contains(t, rep.Message, "decode request")
}

var _ ports.Portable = (*redis.Factory)(nil)
