package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/flo/pkg/domain"
)

// LogHooks returns lifecycle hooks writing one record per event to logger.
func LogHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnNodeStart: func(ctx context.Context, e *domain.NodeEvent) {
			logger.InfoContext(ctx, "node_start", "node_id", e.NodeID, "spec", e.Spec, "runner", e.Runner)
		},
		OnNodeFinish: func(ctx context.Context, e *domain.NodeEvent) {
			if e.Err != nil {
				logger.ErrorContext(ctx, "node_finish", "node_id", e.NodeID, "runner", e.Runner, "duration", e.Duration, "error", e.Err)
				return
			}
			logger.InfoContext(ctx, "node_finish", "node_id", e.NodeID, "runner", e.Runner, "duration", e.Duration)
		},
		OnRunnerStart: func(ctx context.Context, e *domain.RunnerEvent) {
			logger.InfoContext(ctx, "runner_start", "runner", e.Runner, "nodes", e.Nodes)
		},
		OnRunnerDone: func(ctx context.Context, e *domain.RunnerEvent) {
			logger.InfoContext(ctx, "runner_done", "runner", e.Runner, "nodes", e.Nodes, "duration", e.Duration, "failed", e.Err != nil)
		},
	}
}
