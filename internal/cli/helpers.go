package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/flo/internal/logging"
	"github.com/aretw0/flo/pkg/domain"
	"github.com/aretw0/flo/pkg/observability"
)

// createLogger configures the application logger from a level name.
func createLogger(level string) (*slog.Logger, error) {
	return logging.FromName(level)
}

// createHooks combines debug logging with metrics collection.
func createHooks(logger *slog.Logger, metrics *observability.Metrics) domain.LifecycleHooks {
	return observability.LogHooks(logger).Merge(metrics.Hooks())
}

// printSystemMessage prints a standardized system message.
func printSystemMessage(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, ">>> %s\n", fmt.Sprintf(format, args...))
}

// handleExecutionError turns an interruption into a clean exit.
func handleExecutionError(err error, interrupted bool) error {
	if err == nil {
		return nil
	}
	if interrupted && (errors.Is(err, context.Canceled) || errors.Is(err, domain.ErrTimeout)) {
		return nil
	}
	return err
}
