package payment

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"

	paymentDomain "github.com/laraibshahid/carrental/internal/domain/payment"
)

// SimulatedAuthorizer is a pluggable stand-in for a real payment gateway.
// Each call succeeds with a fixed probability after a simulated latency.
// Production wiring swaps a gateway-backed Authorizer in behind the same
// interface without touching the scheduler.
type SimulatedAuthorizer struct {
	successRate float64
	latency     time.Duration

	mu  sync.Mutex
	rng *rand.Rand
}

// NewSimulatedAuthorizer creates a simulator with the given success
// probability in [0, 1] and per-call latency.
func NewSimulatedAuthorizer(successRate float64, latency time.Duration, seed uint64) *SimulatedAuthorizer {
	return &SimulatedAuthorizer{
		successRate: successRate,
		latency:     latency,
		rng:         rand.New(rand.NewPCG(seed, 0)),
	}
}

// Authorize simulates placing a deposit hold.
func (s *SimulatedAuthorizer) Authorize(ctx context.Context, bookingID uuid.UUID, amountCents int64) (paymentDomain.Outcome, error) {
	return s.simulate(ctx)
}

// Refund simulates returning held funds.
func (s *SimulatedAuthorizer) Refund(ctx context.Context, bookingID uuid.UUID, amountCents int64) (paymentDomain.Outcome, error) {
	return s.simulate(ctx)
}

func (s *SimulatedAuthorizer) simulate(ctx context.Context) (paymentDomain.Outcome, error) {
	if s.latency > 0 {
		timer := time.NewTimer(s.latency)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return paymentDomain.OutcomeFailure, ctx.Err()
		case <-timer.C:
		}
	} else if err := ctx.Err(); err != nil {
		return paymentDomain.OutcomeFailure, err
	}

	s.mu.Lock()
	roll := s.rng.Float64()
	s.mu.Unlock()

	if roll < s.successRate {
		return paymentDomain.OutcomeSuccess, nil
	}
	return paymentDomain.OutcomeFailure, nil
}
