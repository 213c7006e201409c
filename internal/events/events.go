package events

import (
	"time"

	"github.com/google/uuid"
)

// Kafka topics this service publishes to.
const (
	TopicBookingEvents = "booking.events"
	TopicPaymentEvents = "payment.events"
)

// Event types carried in the CloudEvent envelope.
const (
	BookingRequested = "booking.requested"
	BookingConfirmed = "booking.confirmed"
	BookingCancelled = "booking.cancelled"
	BookingActivated = "booking.activated"
	BookingCompleted = "booking.completed"
	PaymentAttempted = "payment.attempted"
)

// BookingRequestedEvent is published when a new booking enters pending state.
type BookingRequestedEvent struct {
	BookingID        uuid.UUID `json:"booking_id"`
	BookingNumber    string    `json:"booking_number"`
	VehicleID        uuid.UUID `json:"vehicle_id"`
	RequesterID      uuid.UUID `json:"requester_id"`
	Start            time.Time `json:"start"`
	End              time.Time `json:"end"`
	TotalAmountCents int64     `json:"total_amount_cents"`
	Currency         string    `json:"currency"`
	OccurredAt       time.Time `json:"occurred_at"`
}

// BookingConfirmedEvent is published when a deposit hold succeeds and the
// booking wins its window.
type BookingConfirmedEvent struct {
	BookingID     uuid.UUID `json:"booking_id"`
	BookingNumber string    `json:"booking_number"`
	VehicleID     uuid.UUID `json:"vehicle_id"`
	RequesterID   uuid.UUID `json:"requester_id"`
	DepositCents  int64     `json:"deposit_cents"`
	Currency      string    `json:"currency"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// BookingCancelledEvent is published on any transition to cancelled,
// including a lost confirmation race.
type BookingCancelledEvent struct {
	BookingID     uuid.UUID `json:"booking_id"`
	BookingNumber string    `json:"booking_number"`
	CancelledBy   uuid.UUID `json:"cancelled_by"`
	Reason        string    `json:"reason"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// BookingActivatedEvent is published when a confirmed rental starts.
type BookingActivatedEvent struct {
	BookingID     uuid.UUID `json:"booking_id"`
	BookingNumber string    `json:"booking_number"`
	VehicleID     uuid.UUID `json:"vehicle_id"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// BookingCompletedEvent is published when an active rental ends.
type BookingCompletedEvent struct {
	BookingID        uuid.UUID `json:"booking_id"`
	BookingNumber    string    `json:"booking_number"`
	VehicleID        uuid.UUID `json:"vehicle_id"`
	TotalAmountCents int64     `json:"total_amount_cents"`
	Currency         string    `json:"currency"`
	OccurredAt       time.Time `json:"occurred_at"`
}

// PaymentAttemptedEvent is published for every authorization or refund call.
type PaymentAttemptedEvent struct {
	AttemptID   uuid.UUID `json:"attempt_id"`
	BookingID   uuid.UUID `json:"booking_id"`
	Kind        string    `json:"kind"`
	AmountCents int64     `json:"amount_cents"`
	Outcome     string    `json:"outcome"`
	OccurredAt  time.Time `json:"occurred_at"`
}
