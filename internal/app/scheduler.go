package app

import (
	"context"
	"time"

	"github.com/corelabs/core/internal/common"
	"github.com/corelabs/core/internal/interfaces"
)

// StartSnapshotScheduler launches the background snapshot job that records a
// daily value snapshot for every stored portfolio. A zero interval disables
// the scheduler.
func (a *App) StartSnapshotScheduler() {
	interval := a.Config.Snapshots.GetInterval()
	if interval <= 0 {
		a.Logger.Info().Msg("Snapshot scheduler: disabled")
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	a.schedulerCancel = cancel
	go runSnapshotScheduler(ctx, a.SnapshotService, a.Logger, interval)
}

func runSnapshotScheduler(ctx context.Context, snapshots interfaces.SnapshotService, logger *common.Logger, interval time.Duration) {
	logger.Info().Dur("interval", interval).Msg("Snapshot scheduler: started")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("Snapshot scheduler: stopped")
			return
		case <-ticker.C:
			runSnapshotPass(ctx, snapshots, logger)
		}
	}
}

func runSnapshotPass(ctx context.Context, snapshots interfaces.SnapshotService, logger *common.Logger) {
	start := time.Now()

	count, err := snapshots.ReconcileAll(ctx)
	if err != nil {
		logger.Warn().Err(err).Msg("Snapshot pass: failed")
		return
	}

	logger.Info().
		Int("portfolios", count).
		Dur("elapsed", time.Since(start)).
		Msg("Snapshot pass: complete")
}
