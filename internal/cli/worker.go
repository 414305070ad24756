package cli

import (
	"context"

	"github.com/aretw0/flo/pkg/library"
	"github.com/aretw0/flo/pkg/runner"
)

// Worker serves one node request sent by a process runner on stdin.
func Worker(ctx context.Context, level string) error {
	logger, err := createLogger(level)
	if err != nil {
		return err
	}
	sm := runner.NewSignalManager(ctx)
	defer sm.Stop()
	return runner.Serve(sm.Context(), library.Registry(), runner.WithLogger(logger))
}
