package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"
	"lottery-ledger.backend/pkg/logger"
)

// runEvery calls tick on every interval until ctx is cancelled or stop is closed
func runEvery(ctx context.Context, name string, interval time.Duration, stop <-chan struct{}, tick func(context.Context)) {
	logger.Info(ctx, "starting job", zap.String("job", name), zap.Duration("interval", interval))

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info(ctx, "job stopped (context cancelled)", zap.String("job", name))
			return
		case <-stop:
			logger.Info(ctx, "job stopped", zap.String("job", name))
			return
		case <-ticker.C:
			tick(ctx)
		}
	}
}
