package bootstrap

import (
	"context"
	"log/slog"
	"time"

	"tourbook/internal/pkg/clock"
	"tourbook/internal/pkg/config"
	"tourbook/internal/usecase/commands"

	"go.uber.org/fx"
)

var SweeperModule = fx.Module("sweeper",
	fx.Invoke(StartSweeper),
)

// StartSweeper runs the expiry sweep on a fixed interval. The sweep itself
// is cutoff-gated and idempotent, so a generous interval is safe: runs
// before the cutoff are declared no-ops, and re-runs after it find nothing
// left to cancel.
func StartSweeper(lc fx.Lifecycle, cfg config.Config, sweep commands.SweepCommands, clk clock.Clock, logger *slog.Logger) {
	if !cfg.Sweep.Enabled {
		logger.Info("expiry sweeper disabled")
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			go func() {
				defer close(done)
				ticker := time.NewTicker(cfg.Sweep.Interval)
				defer ticker.Stop()

				logger.Info("expiry sweeper started", "interval", cfg.Sweep.Interval)
				for {
					select {
					case <-ctx.Done():
						return
					case <-ticker.C:
						result, err := sweep.Run(ctx, clk.Now())
						if err != nil {
							logger.Error("expiry sweep failed", "error", err)
							continue
						}
						if result.BeforeCutoff {
							continue
						}
						logger.Info("expiry sweep completed",
							"processed", result.Processed,
							"cancelled", result.Cancelled,
							"errors", len(result.Errors))
					}
				}
			}()
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			cancel()
			select {
			case <-done:
				return nil
			case <-stopCtx.Done():
				return stopCtx.Err()
			}
		},
	})
}
