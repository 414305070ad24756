/*
Package observability provides tools for monitoring graph execution.

Metrics exposes Prometheus collectors fed by runner lifecycle hooks and by an
edge factory wrapper counting the payloads that cross edges. LogHooks turns
the same lifecycle events into structured log records.

	m := observability.NewMetrics(prometheus.DefaultRegisterer)
	r := runner.NewThreadRunner(m.Instrument(factory), runner.WithHooks(m.Hooks()))
*/
package observability
