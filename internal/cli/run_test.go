package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/flo/internal/config"
	"github.com/aretw0/flo/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lines(s string) []string {
	return strings.Fields(strings.TrimSpace(s))
}

func TestRun_ThreadMemory(t *testing.T) {
	var stdout, stderr bytes.Buffer
	reg := prometheus.NewRegistry()
	cfg := config.Default()
	cfg.LogLevel = "off"

	err := Run(context.Background(), RunOptions{
		Config:   cfg,
		Count:    5,
		Stdout:   &stdout,
		Stderr:   &stderr,
		Registry: reg,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"0", "1", "2", "3", "4"}, lines(stdout.String()))
	assert.Contains(t, stderr.String(), ">>> Running 5 values on thread")
	assert.Contains(t, stderr.String(), ">>> Done.")

	// generate, sleep and log each sent 5 payloads; sleep and log received them.
	expected := `
# HELP flo_edge_payloads_total Payloads sent or received through edges, by edge kind.
# TYPE flo_edge_payloads_total counter
flo_edge_payloads_total{direction="received",kind="memory"} 10
flo_edge_payloads_total{direction="sent",kind="memory"} 15
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "flo_edge_payloads_total"))
}

func TestRun_FiberRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	var stdout bytes.Buffer
	cfg := config.Default()
	cfg.LogLevel = "off"
	cfg.Runner = config.RunnerFiber
	cfg.Redis.URL = mr.Addr()
	cfg.Redis.Block = config.Duration(20 * time.Millisecond)

	err := Run(context.Background(), RunOptions{
		Config: cfg,
		Count:  4,
		Delay:  5 * time.Millisecond,
		Stdout: &stdout,
		Stderr: &bytes.Buffer{},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"0", "1", "2", "3"}, lines(stdout.String()))
}

func TestRun_Timeout(t *testing.T) {
	cfg := config.Default()
	cfg.LogLevel = "off"
	cfg.Timeout = config.Duration(100 * time.Millisecond)

	err := Run(context.Background(), RunOptions{
		Config: cfg,
		Count:  100,
		Delay:  time.Second,
		Stdout: &bytes.Buffer{},
		Stderr: &bytes.Buffer{},
	})
	assert.ErrorIs(t, err, domain.ErrTimeout)
}

func TestRun_InvalidOptions(t *testing.T) {
	cfg := config.Default()
	cfg.Runner = "warp"
	err := Run(context.Background(), RunOptions{Config: cfg})
	assert.ErrorContains(t, err, "unknown runner")

	cfg = config.Default()
	cfg.LogLevel = "loud"
	err = Run(context.Background(), RunOptions{Config: cfg})
	assert.ErrorContains(t, err, "invalid log level")

	err = Run(context.Background(), RunOptions{Config: config.Default(), Count: -1})
	assert.Error(t, err)
}

func TestRun_ProcessNeedsRedis(t *testing.T) {
	cfg := config.Default()
	cfg.LogLevel = "off"
	cfg.Runner = config.RunnerProcess
	cfg.Redis.URL = "127.0.0.1:1"

	err := Run(context.Background(), RunOptions{Config: cfg, Stdout: &bytes.Buffer{}, Stderr: &bytes.Buffer{}})
	assert.ErrorContains(t, err, "error connecting to redis")
}

func TestListSpecs(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ListSpecs(&buf))
	out := buf.String()
	assert.Contains(t, out, "generate")
	assert.Contains(t, out, "out(outflow:int)")
	assert.Contains(t, out, "in(inflow:any)")
}

func TestHandleExecutionError(t *testing.T) {
	assert.NoError(t, handleExecutionError(nil, false))
	assert.NoError(t, handleExecutionError(context.Canceled, true))
	assert.ErrorIs(t, handleExecutionError(context.Canceled, false), context.Canceled)
	assert.NoError(t, handleExecutionError(&domain.TimeoutError{Pending: []string{"r"}}, true))
}

func TestGraph(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Graph(&buf, RunOptions{Count: 3}))
	out := buf.String()
	assert.Contains(t, out, `generate(("generate <br/> generate"))`)
	assert.Contains(t, out, `generate -- "outflow → inflow" --> sleep`)
	assert.Contains(t, out, `sleep -- "outflow → inflow" --> log`)
}
