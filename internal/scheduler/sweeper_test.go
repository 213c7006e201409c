package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type countingSweepService struct {
	calls atomic.Int64
}

func (s *countingSweepService) SweepLifecycle(_ context.Context) (int, int, error) {
	s.calls.Add(1)
	return 0, 0, nil
}

func TestLifecycleSweeper_SweepsImmediatelyAndOnTick(t *testing.T) {
	svc := &countingSweepService{}
	sweeper := NewLifecycleSweeper(svc, 20*time.Millisecond, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sweeper.Start(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool {
		return svc.calls.Load() >= 3
	}, 2*time.Second, 5*time.Millisecond, "expected the startup sweep plus ticker sweeps")

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop after context cancellation")
	}
}

type failingSweepService struct {
	calls atomic.Int64
}

func (s *failingSweepService) SweepLifecycle(_ context.Context) (int, int, error) {
	s.calls.Add(1)
	return 0, 0, context.DeadlineExceeded
}

func TestLifecycleSweeper_KeepsRunningAfterSweepErrors(t *testing.T) {
	svc := &failingSweepService{}
	sweeper := NewLifecycleSweeper(svc, 20*time.Millisecond, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go sweeper.Start(ctx)

	assert.Eventually(t, func() bool {
		return svc.calls.Load() >= 2
	}, 2*time.Second, 5*time.Millisecond, "a failed sweep must not stop the loop")
}
