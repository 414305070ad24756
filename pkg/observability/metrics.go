package observability

import (
	"context"
	"iter"

	"github.com/aretw0/flo/pkg/domain"
	"github.com/aretw0/flo/pkg/edge"
	"github.com/aretw0/flo/pkg/ports"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors of the engine.
type Metrics struct {
	nodeRuns       *prometheus.CounterVec
	nodeDuration   *prometheus.HistogramVec
	nodesActive    *prometheus.GaugeVec
	runnerRuns     *prometheus.CounterVec
	runnerDuration *prometheus.HistogramVec
	payloads       *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		nodeRuns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "flo_node_runs_total",
				Help: "Node invocations by spec, runner and outcome.",
			},
			[]string{"spec", "runner", "status"},
		),
		nodeDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "flo_node_duration_seconds",
				Help:    "Duration of node invocations.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"spec", "runner"},
		),
		nodesActive: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "flo_nodes_active",
				Help: "Nodes currently executing.",
			},
			[]string{"runner"},
		),
		runnerRuns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "flo_runner_executions_total",
				Help: "Runner executions by outcome.",
			},
			[]string{"runner", "status"},
		),
		runnerDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "flo_runner_duration_seconds",
				Help:    "Duration of runner executions.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"runner"},
		),
		payloads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "flo_edge_payloads_total",
				Help: "Payloads sent or received through edges, by edge kind.",
			},
			[]string{"kind", "direction"},
		),
	}
	if reg != nil {
		reg.MustRegister(m.nodeRuns, m.nodeDuration, m.nodesActive, m.runnerRuns, m.runnerDuration, m.payloads)
	}
	return m
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// Hooks returns lifecycle hooks recording node and runner metrics.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnNodeStart: func(_ context.Context, e *domain.NodeEvent) {
			m.nodesActive.WithLabelValues(e.Runner).Inc()
		},
		OnNodeFinish: func(_ context.Context, e *domain.NodeEvent) {
			m.nodesActive.WithLabelValues(e.Runner).Dec()
			m.nodeRuns.WithLabelValues(e.Spec, e.Runner, status(e.Err)).Inc()
			m.nodeDuration.WithLabelValues(e.Spec, e.Runner).Observe(e.Duration.Seconds())
		},
		OnRunnerDone: func(_ context.Context, e *domain.RunnerEvent) {
			m.runnerRuns.WithLabelValues(e.Runner, status(e.Err)).Inc()
			m.runnerDuration.WithLabelValues(e.Runner).Observe(e.Duration.Seconds())
		},
	}
}

// Instrument wraps f so that every payload sent or received through its
// edges is counted. Control markers are not counted.
func (m *Metrics) Instrument(f ports.EdgeFactory) ports.EdgeFactory {
	return &instrumentedFactory{inner: f, m: m}
}

type instrumentedFactory struct {
	inner ports.EdgeFactory
	m     *Metrics
}

var (
	_ ports.Purger   = (*instrumentedFactory)(nil)
	_ ports.Scoped   = (*instrumentedFactory)(nil)
	_ ports.Portable = (*instrumentedFactory)(nil)
)

func (f *instrumentedFactory) Kind() edge.Kind { return f.inner.Kind() }

func (f *instrumentedFactory) Edge(ids ...string) (ports.Edge, error) {
	e, err := f.inner.Edge(ids...)
	if err != nil {
		return nil, err
	}
	kind := e.Kind().String()
	return &instrumentedEdge{
		Edge:     e,
		sent:     f.m.payloads.WithLabelValues(kind, "sent"),
		received: f.m.payloads.WithLabelValues(kind, "received"),
	}, nil
}

func (f *instrumentedFactory) Purge(ctx context.Context, prefix string) error {
	if p, ok := f.inner.(ports.Purger); ok {
		return p.Purge(ctx, prefix)
	}
	return nil
}

func (f *instrumentedFactory) Scope() string {
	if s, ok := f.inner.(ports.Scoped); ok {
		return s.Scope()
	}
	return ""
}

func (f *instrumentedFactory) Config() ports.EdgeConfig {
	if p, ok := f.inner.(ports.Portable); ok {
		return p.Config()
	}
	return ports.EdgeConfig{Kind: f.inner.Kind().String()}
}

type instrumentedEdge struct {
	ports.Edge
	sent     prometheus.Counter
	received prometheus.Counter
}

func (e *instrumentedEdge) Send(ctx context.Context, key string, payload any) error {
	if err := e.Edge.Send(ctx, key, payload); err != nil {
		return err
	}
	if !edge.IsControl(key) {
		e.sent.Inc()
	}
	return nil
}

func (e *instrumentedEdge) Pull(ctx context.Context) iter.Seq2[any, error] {
	return func(yield func(any, error) bool) {
		for v, err := range e.Edge.Pull(ctx) {
			if err == nil {
				e.received.Inc()
			}
			if !yield(v, err) {
				return
			}
		}
	}
}
