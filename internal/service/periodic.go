package service

import (
	"context"
	"log/slog"
	"time"
)

// RunPeriodically calls fn immediately and then every interval until ctx is done.
// Failures are logged and the loop keeps going.
func RunPeriodically(ctx context.Context, interval time.Duration, log *slog.Logger, name string, fn func(context.Context) error) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		start := time.Now()
		if err := fn(ctx); err != nil && ctx.Err() == nil {
			log.Warn("periodic task failed", slog.String("task", name), slog.Any("err", err))
		} else if err == nil {
			log.Debug("periodic task done", slog.String("task", name), slog.Duration("took", time.Since(start)))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
