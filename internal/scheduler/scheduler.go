package scheduler

import (
	"context"
	"time"

	"go.uber.org/zap"

	"bill-management-backend/internal/services/sweep"
)

// SweepScheduler runs the overdue sweep on a fixed interval until its
// context is cancelled. The interval comes from configuration: daily in
// production, seconds in test environments.
type SweepScheduler struct {
	sweeper  *sweep.Sweeper
	interval time.Duration
	log      *zap.Logger
}

func NewSweepScheduler(sweeper *sweep.Sweeper, interval time.Duration, log *zap.Logger) *SweepScheduler {
	return &SweepScheduler{sweeper: sweeper, interval: interval, log: log}
}

// Start launches the scheduler goroutine. One pass runs immediately so a
// restarted service does not wait a full interval to catch up.
func (s *SweepScheduler) Start(ctx context.Context) {
	go func() {
		s.log.Info("sweep scheduler started", zap.Duration("interval", s.interval))

		s.runOnce(ctx)

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				s.log.Info("sweep scheduler stopped")
				return
			case <-ticker.C:
				s.runOnce(ctx)
			}
		}
	}()
}

func (s *SweepScheduler) runOnce(ctx context.Context) {
	if err := s.sweeper.Run(ctx); err != nil {
		s.log.Error("sweep run failed", zap.Error(err))
	}
}
