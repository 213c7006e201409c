package booking

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"

	"github.com/laraibshahid/carrental/pkg/domain"
)

const bookingNumberChars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// Booking is the aggregate root for the booking domain. It owns the lifecycle
// state machine; all mutations go through its transition methods so that the
// scheduler can rely on the invariants they enforce.
type Booking struct {
	id            uuid.UUID
	bookingNumber string
	vehicleID     uuid.UUID
	requesterID   uuid.UUID
	period        Period
	status        BookingStatus
	paymentStatus PaymentStatus

	dailyRateCents   int64
	totalAmountCents int64
	depositCents     int64
	currency         string

	pickupLocation string
	returnLocation string
	notes          string
	cancelNote     string

	confirmedAt *time.Time
	activatedAt *time.Time
	completedAt *time.Time
	cancelledAt *time.Time

	version   int64
	createdAt time.Time
	updatedAt time.Time
}

// generateBookingNumber creates a booking number in the format "BK-XXXXXX".
func generateBookingNumber() (string, error) {
	result := make([]byte, 6)
	for i := range result {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(bookingNumberChars))))
		if err != nil {
			return "", fmt.Errorf("failed to generate booking number: %w", err)
		}
		result[i] = bookingNumberChars[n.Int64()]
	}
	return "BK-" + string(result), nil
}

// NewBooking creates a new Booking aggregate with status=pending and
// payment_status=unpaid.
func NewBooking(
	vehicleID uuid.UUID,
	requesterID uuid.UUID,
	period Period,
	dailyRateCents int64,
	totalAmountCents int64,
	depositCents int64,
	currency string,
	pickupLocation string,
	returnLocation string,
	notes string,
) (*Booking, error) {
	if vehicleID == uuid.Nil {
		return nil, domain.NewValidationError("vehicle ID is required")
	}
	if requesterID == uuid.Nil {
		return nil, domain.NewValidationError("requester ID is required")
	}
	if dailyRateCents <= 0 {
		return nil, domain.NewValidationError("daily rate must be positive")
	}
	if totalAmountCents <= 0 {
		return nil, domain.NewValidationError("total amount must be positive")
	}
	if depositCents <= 0 {
		return nil, domain.NewValidationError("deposit must be positive")
	}

	bookingNumber, err := generateBookingNumber()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &Booking{
		id:               uuid.New(),
		bookingNumber:    bookingNumber,
		vehicleID:        vehicleID,
		requesterID:      requesterID,
		period:           period,
		status:           StatusPending,
		paymentStatus:    PaymentUnpaid,
		dailyRateCents:   dailyRateCents,
		totalAmountCents: totalAmountCents,
		depositCents:     depositCents,
		currency:         currency,
		pickupLocation:   pickupLocation,
		returnLocation:   returnLocation,
		notes:            notes,
		version:          1,
		createdAt:        now,
		updatedAt:        now,
	}, nil
}

// ReconstructBooking rebuilds a Booking from persistence data (no validation).
func ReconstructBooking(
	id uuid.UUID,
	bookingNumber string,
	vehicleID uuid.UUID,
	requesterID uuid.UUID,
	period Period,
	status BookingStatus,
	paymentStatus PaymentStatus,
	dailyRateCents int64,
	totalAmountCents int64,
	depositCents int64,
	currency string,
	pickupLocation string,
	returnLocation string,
	notes string,
	cancelNote string,
	confirmedAt *time.Time,
	activatedAt *time.Time,
	completedAt *time.Time,
	cancelledAt *time.Time,
	version int64,
	createdAt time.Time,
	updatedAt time.Time,
) *Booking {
	return &Booking{
		id:               id,
		bookingNumber:    bookingNumber,
		vehicleID:        vehicleID,
		requesterID:      requesterID,
		period:           period,
		status:           status,
		paymentStatus:    paymentStatus,
		dailyRateCents:   dailyRateCents,
		totalAmountCents: totalAmountCents,
		depositCents:     depositCents,
		currency:         currency,
		pickupLocation:   pickupLocation,
		returnLocation:   returnLocation,
		notes:            notes,
		cancelNote:       cancelNote,
		confirmedAt:      confirmedAt,
		activatedAt:      activatedAt,
		completedAt:      completedAt,
		cancelledAt:      cancelledAt,
		version:          version,
		createdAt:        createdAt,
		updatedAt:        updatedAt,
	}
}

// --- Getters ---

// ID returns the booking's unique identifier.
func (b *Booking) ID() uuid.UUID { return b.id }

// BookingNumber returns the human-readable booking number.
func (b *Booking) BookingNumber() string { return b.bookingNumber }

// VehicleID returns the rented vehicle's identifier.
func (b *Booking) VehicleID() uuid.UUID { return b.vehicleID }

// RequesterID returns the user who requested the booking.
func (b *Booking) RequesterID() uuid.UUID { return b.requesterID }

// Period returns the half-open rental interval.
func (b *Booking) Period() Period { return b.period }

// Status returns the current booking status.
func (b *Booking) Status() BookingStatus { return b.status }

// PaymentStatus returns the current payment status.
func (b *Booking) PaymentStatus() PaymentStatus { return b.paymentStatus }

// DailyRateCents returns the daily rate snapshot taken at request time.
func (b *Booking) DailyRateCents() int64 { return b.dailyRateCents }

// TotalAmountCents returns the total rental amount in cents.
func (b *Booking) TotalAmountCents() int64 { return b.totalAmountCents }

// DepositCents returns the deposit held at confirmation, in cents.
func (b *Booking) DepositCents() int64 { return b.depositCents }

// Currency returns the currency code.
func (b *Booking) Currency() string { return b.currency }

// PickupLocation returns the pickup location, opaque to the scheduler.
func (b *Booking) PickupLocation() string { return b.pickupLocation }

// ReturnLocation returns the return location, opaque to the scheduler.
func (b *Booking) ReturnLocation() string { return b.returnLocation }

// Notes returns any additional notes for the booking.
func (b *Booking) Notes() string { return b.notes }

// CancelNote returns the cancellation reason.
func (b *Booking) CancelNote() string { return b.cancelNote }

// ConfirmedAt returns when the booking was confirmed, or nil.
func (b *Booking) ConfirmedAt() *time.Time { return b.confirmedAt }

// ActivatedAt returns when the rental started, or nil.
func (b *Booking) ActivatedAt() *time.Time { return b.activatedAt }

// CompletedAt returns when the rental was completed, or nil.
func (b *Booking) CompletedAt() *time.Time { return b.completedAt }

// CancelledAt returns when the booking was cancelled, or nil.
func (b *Booking) CancelledAt() *time.Time { return b.cancelledAt }

// Version returns the entity version for optimistic locking.
func (b *Booking) Version() int64 { return b.version }

// CreatedAt returns the creation timestamp.
func (b *Booking) CreatedAt() time.Time { return b.createdAt }

// UpdatedAt returns the last-updated timestamp.
func (b *Booking) UpdatedAt() time.Time { return b.updatedAt }

// --- Behavior ---

// Confirm transitions the booking from pending to confirmed after a
// successful deposit authorization.
func (b *Booking) Confirm() error {
	if !b.status.CanTransitionTo(StatusConfirmed) {
		return domain.NewInvalidStateError(string(b.status), string(StatusConfirmed))
	}
	now := time.Now().UTC()
	b.status = StatusConfirmed
	b.paymentStatus = PaymentAuthorized
	b.confirmedAt = &now
	b.updatedAt = now
	return nil
}

// DeclinePayment records a failed deposit authorization. The booking stays
// pending and confirmation may be retried.
func (b *Booking) DeclinePayment() {
	b.paymentStatus = PaymentFailed
	b.updatedAt = time.Now().UTC()
}

// Activate transitions the booking from confirmed to active at rental start.
func (b *Booking) Activate() error {
	if !b.status.CanTransitionTo(StatusActive) {
		return domain.NewInvalidStateError(string(b.status), string(StatusActive))
	}
	now := time.Now().UTC()
	b.status = StatusActive
	b.activatedAt = &now
	b.updatedAt = now
	return nil
}

// Complete transitions the booking from active to completed at rental end and
// captures the authorized deposit.
func (b *Booking) Complete() error {
	if !b.status.CanTransitionTo(StatusCompleted) {
		return domain.NewInvalidStateError(string(b.status), string(StatusCompleted))
	}
	now := time.Now().UTC()
	b.status = StatusCompleted
	if b.paymentStatus == PaymentAuthorized {
		b.paymentStatus = PaymentPaid
	}
	b.completedAt = &now
	b.updatedAt = now
	return nil
}

// Cancel transitions the booking to cancelled if it is not in a terminal state.
func (b *Booking) Cancel(reason string) error {
	if !b.status.CanBeCancelled() {
		return domain.NewInvalidStateError(string(b.status), string(StatusCancelled))
	}
	now := time.Now().UTC()
	b.status = StatusCancelled
	b.cancelNote = reason
	b.cancelledAt = &now
	b.updatedAt = now
	return nil
}

// MarkRefunded records that held funds were returned after cancellation.
func (b *Booking) MarkRefunded() {
	b.paymentStatus = PaymentRefunded
	b.updatedAt = time.Now().UTC()
}

// IncrementVersion bumps the version for optimistic locking.
func (b *Booking) IncrementVersion() {
	b.version++
	b.updatedAt = time.Now().UTC()
}
