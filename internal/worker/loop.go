package worker

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Every runs fn now and then every interval until ctx is done. Errors are
// logged; the loop keeps going.
func Every(ctx context.Context, name string, interval time.Duration, logger *zap.Logger, fn func(ctx context.Context) error) {
	log := logger.With(zap.String("worker", name))
	log.Info("worker started", zap.Duration("interval", interval))

	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		if err := fn(ctx); err != nil && ctx.Err() == nil {
			log.Error("worker pass failed", zap.Error(err))
		}
		select {
		case <-ctx.Done():
			log.Info("worker stopped")
			return
		case <-t.C:
		}
	}
}
