package flow

import (
	"context"
	"time"

	"github.com/aretw0/flo/pkg/edge"
)

// Sleep pauses for d or until ctx is done. Under a cooperative runner the
// baton is released while sleeping.
func Sleep(ctx context.Context, d time.Duration) error {
	return edge.YielderFrom(ctx).Block(ctx, func() error {
		t := time.NewTimer(d)
		defer t.Stop()
		select {
		case <-t.C:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})
}
