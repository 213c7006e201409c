package scheduler

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// LifecycleSweeper drives time-based booking transitions. The scheduler's
// clock gates are idempotent, so a missed or doubled tick is harmless.
type LifecycleSweeper struct {
	service  SweepService
	interval time.Duration
	logger   *zap.Logger
}

// SweepService is the slice of the booking service the sweeper needs.
type SweepService interface {
	// SweepLifecycle activates due confirmed bookings and completes due
	// active ones, returning how many of each it transitioned.
	SweepLifecycle(ctx context.Context) (activated, completed int, err error)
}

// NewLifecycleSweeper creates a sweeper that runs every interval.
func NewLifecycleSweeper(service SweepService, interval time.Duration, logger *zap.Logger) *LifecycleSweeper {
	return &LifecycleSweeper{
		service:  service,
		interval: interval,
		logger:   logger,
	}
}

// Start runs the sweep loop until ctx is cancelled. It performs one sweep
// immediately so bookings due before startup are not delayed a full interval.
func (s *LifecycleSweeper) Start(ctx context.Context) {
	s.logger.Info("lifecycle sweeper started", zap.Duration("interval", s.interval))

	s.sweep(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("lifecycle sweeper stopped")
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *LifecycleSweeper) sweep(ctx context.Context) {
	activated, completed, err := s.service.SweepLifecycle(ctx)
	if err != nil {
		s.logger.Error("lifecycle sweep failed", zap.Error(err))
		return
	}
	if activated > 0 || completed > 0 {
		s.logger.Info("lifecycle sweep applied transitions",
			zap.Int("activated", activated),
			zap.Int("completed", completed))
	}
}
