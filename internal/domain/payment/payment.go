package payment

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Outcome is the result of an authorization or refund call.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
)

// Kind distinguishes the direction of a payment attempt.
type Kind string

const (
	KindAuthorize Kind = "authorize"
	KindRefund    Kind = "refund"
)

// Attempt is an immutable record of one authorization or refund call.
// Retries produce new rows; nothing is ever updated in place.
type Attempt struct {
	ID          uuid.UUID `json:"id"`
	BookingID   uuid.UUID `json:"booking_id"`
	Kind        Kind      `json:"kind"`
	AmountCents int64     `json:"amount_cents"`
	Outcome     Outcome   `json:"outcome"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewAttempt records the outcome of a payment call against a booking.
func NewAttempt(bookingID uuid.UUID, kind Kind, amountCents int64, outcome Outcome) *Attempt {
	return &Attempt{
		ID:          uuid.New(),
		BookingID:   bookingID,
		Kind:        kind,
		AmountCents: amountCents,
		Outcome:     outcome,
		CreatedAt:   time.Now().UTC(),
	}
}

// Authorizer is the payment capability consumed by the booking scheduler.
// Implementations place a deposit hold or return it; the scheduler only
// reacts to the outcome. A context deadline bounds every call; expiry is
// treated by the caller as a decline.
type Authorizer interface {
	// Authorize attempts to place a hold for the given amount.
	Authorize(ctx context.Context, bookingID uuid.UUID, amountCents int64) (Outcome, error)

	// Refund attempts to return previously held funds.
	Refund(ctx context.Context, bookingID uuid.UUID, amountCents int64) (Outcome, error)
}

// AttemptRepository defines the persistence contract for payment attempts.
type AttemptRepository interface {
	// Save persists a new attempt record.
	Save(ctx context.Context, a *Attempt) error

	// FindByBookingID retrieves all attempts for a booking, oldest first.
	FindByBookingID(ctx context.Context, bookingID uuid.UUID) ([]*Attempt, error)
}
