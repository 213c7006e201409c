package booking

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// SearchFilter narrows a booking search. Nil pointer fields are not applied.
type SearchFilter struct {
	// VehicleID restricts results to one vehicle.
	VehicleID *uuid.UUID
	// OwnerID restricts results to bookings on vehicles owned by this user.
	OwnerID *uuid.UUID
	// RequesterID restricts results to bookings requested by this user.
	RequesterID *uuid.UUID
	// Statuses restricts results to the given status set.
	Statuses []BookingStatus
	// From/To select bookings whose period overlaps [From, To).
	From *time.Time
	To   *time.Time
	// VisibleTo is the caller identity used to hide other users' pending
	// bookings: a pending booking is returned only if the caller is its
	// requester or the vehicle owner. uuid.Nil disables the restriction
	// (admin access).
	VisibleTo uuid.UUID
}

// BookingRepository defines the persistence contract for booking aggregates.
//
// Save and UpdateWithOverlapRecheck carry the scheduler's atomicity contract:
// each must run its overlap query and its write in one transaction that holds
// a row lock on the booking's vehicle, so two concurrent calls for the same
// vehicle serialize and exactly one of two overlapping requests can commit.
// The lock scope is a single vehicle row; unrelated vehicles never contend.
type BookingRepository interface {
	// FindByID retrieves a booking by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Booking, error)

	// FindByNumber retrieves a booking by its human-readable booking number.
	FindByNumber(ctx context.Context, number string) (*Booking, error)

	// FindOverlapping returns bookings for the vehicle in any of the given
	// statuses whose period overlaps the given one.
	FindOverlapping(ctx context.Context, vehicleID uuid.UUID, period Period, statuses []BookingStatus) ([]*Booking, error)

	// Save persists a new booking after atomically verifying that no live
	// booking (pending, confirmed, active) overlaps its period. Returns a
	// conflict error when the overlap check fails.
	Save(ctx context.Context, b *Booking) error

	// Update persists changes to an existing booking with optimistic locking.
	// Returns a stale-version error when the stored version does not match.
	Update(ctx context.Context, b *Booking) error

	// UpdateWithOverlapRecheck persists changes after atomically re-verifying
	// that no other confirmed or active booking overlaps this booking's
	// period. Returns a conflict error when another booking won the window
	// while this one was pending, and a stale-version error when this booking
	// itself was concurrently modified. Callers must tell the two apart: only
	// the former means the window is lost.
	UpdateWithOverlapRecheck(ctx context.Context, b *Booking) error

	// Search retrieves bookings matching the filter with pagination, ordered
	// by period start ascending then ID ascending.
	Search(ctx context.Context, filter SearchFilter, page, limit int) ([]*Booking, int64, error)

	// ListDueForActivation returns confirmed bookings whose period has started.
	ListDueForActivation(ctx context.Context, now time.Time) ([]*Booking, error)

	// ListDueForCompletion returns active bookings whose period has ended.
	ListDueForCompletion(ctx context.Context, now time.Time) ([]*Booking, error)

	// CountLiveForVehicle returns how many live bookings reference the vehicle.
	CountLiveForVehicle(ctx context.Context, vehicleID uuid.UUID) (int64, error)

	// CountByStatus returns booking counts grouped by status (admin).
	CountByStatus(ctx context.Context) (map[string]int64, error)
}
