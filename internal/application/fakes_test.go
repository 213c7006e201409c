package application

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	bookingDomain "github.com/laraibshahid/carrental/internal/domain/booking"
	paymentDomain "github.com/laraibshahid/carrental/internal/domain/payment"
	vehicleDomain "github.com/laraibshahid/carrental/internal/domain/vehicle"
	"github.com/laraibshahid/carrental/pkg/domain"
	"github.com/laraibshahid/carrental/pkg/kafka"
)

// cloneBooking snapshots an aggregate so the fake repository behaves like a
// real store: callers get the persisted state, not a shared pointer.
func cloneBooking(b *bookingDomain.Booking) *bookingDomain.Booking {
	return bookingDomain.ReconstructBooking(
		b.ID(), b.BookingNumber(), b.VehicleID(), b.RequesterID(), b.Period(),
		b.Status(), b.PaymentStatus(),
		b.DailyRateCents(), b.TotalAmountCents(), b.DepositCents(), b.Currency(),
		b.PickupLocation(), b.ReturnLocation(), b.Notes(), b.CancelNote(),
		b.ConfirmedAt(), b.ActivatedAt(), b.CompletedAt(), b.CancelledAt(),
		b.Version(), b.CreatedAt(), b.UpdatedAt(),
	)
}

func cloneVehicle(v *vehicleDomain.Vehicle) *vehicleDomain.Vehicle {
	return vehicleDomain.ReconstructVehicle(
		v.ID(), v.OwnerID(), v.Attrs(), v.DailyRateCents(), v.Currency(),
		v.Status(), v.Version(), v.CreatedAt(), v.UpdatedAt(),
	)
}

// fakeBookingRepo is an in-memory BookingRepository. A single mutex stands in
// for the per-vehicle row lock: overlap check and write happen atomically.
type fakeBookingRepo struct {
	mu       sync.Mutex
	bookings map[uuid.UUID]*bookingDomain.Booking
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{bookings: make(map[uuid.UUID]*bookingDomain.Booking)}
}

// put seeds a booking directly, bypassing the admission check.
func (r *fakeBookingRepo) put(b *bookingDomain.Booking) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bookings[b.ID()] = cloneBooking(b)
}

func (r *fakeBookingRepo) FindByID(_ context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return nil, domain.NewNotFoundError("booking", id.String())
	}
	return cloneBooking(b), nil
}

func (r *fakeBookingRepo) FindByNumber(_ context.Context, number string) (*bookingDomain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.bookings {
		if b.BookingNumber() == number {
			return cloneBooking(b), nil
		}
	}
	return nil, domain.NewNotFoundError("booking", number)
}

func (r *fakeBookingRepo) FindOverlapping(_ context.Context, vehicleID uuid.UUID, period bookingDomain.Period, statuses []bookingDomain.BookingStatus) ([]*bookingDomain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.overlappingLocked(vehicleID, period, statuses, uuid.Nil), nil
}

func (r *fakeBookingRepo) overlappingLocked(vehicleID uuid.UUID, period bookingDomain.Period, statuses []bookingDomain.BookingStatus, excludeID uuid.UUID) []*bookingDomain.Booking {
	var out []*bookingDomain.Booking
	for _, b := range r.bookings {
		if b.VehicleID() != vehicleID || b.ID() == excludeID {
			continue
		}
		if !b.Period().Overlaps(period) {
			continue
		}
		for _, s := range statuses {
			if b.Status() == s {
				out = append(out, cloneBooking(b))
				break
			}
		}
	}
	return out
}

func (r *fakeBookingRepo) Save(_ context.Context, b *bookingDomain.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.overlappingLocked(b.VehicleID(), b.Period(), bookingDomain.LiveStatuses(), uuid.Nil)) > 0 {
		return domain.NewConflictError("requested period overlaps an existing booking")
	}
	r.bookings[b.ID()] = cloneBooking(b)
	return nil
}

func (r *fakeBookingRepo) Update(_ context.Context, b *bookingDomain.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.bookings[b.ID()]
	if !ok {
		return domain.NewNotFoundError("booking", b.ID().String())
	}
	if cur.Version() != b.Version()-1 {
		return domain.NewStaleVersionError("booking")
	}
	r.bookings[b.ID()] = cloneBooking(b)
	return nil
}

func (r *fakeBookingRepo) UpdateWithOverlapRecheck(_ context.Context, b *bookingDomain.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.overlappingLocked(b.VehicleID(), b.Period(), bookingDomain.ExclusiveStatuses(), b.ID())) > 0 {
		return domain.NewConflictError("an overlapping booking was confirmed first")
	}
	cur, ok := r.bookings[b.ID()]
	if !ok {
		return domain.NewNotFoundError("booking", b.ID().String())
	}
	if cur.Version() != b.Version()-1 {
		return domain.NewStaleVersionError("booking")
	}
	r.bookings[b.ID()] = cloneBooking(b)
	return nil
}

func (r *fakeBookingRepo) Search(_ context.Context, filter bookingDomain.SearchFilter, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var matched []*bookingDomain.Booking
	for _, b := range r.bookings {
		if filter.VehicleID != nil && b.VehicleID() != *filter.VehicleID {
			continue
		}
		if filter.RequesterID != nil && b.RequesterID() != *filter.RequesterID {
			continue
		}
		if len(filter.Statuses) > 0 {
			found := false
			for _, s := range filter.Statuses {
				if b.Status() == s {
					found = true
					break
				}
			}
			if !found {
				continue
			}
		}
		if filter.From != nil && !b.Period().End.After(*filter.From) {
			continue
		}
		if filter.To != nil && !b.Period().Start.Before(*filter.To) {
			continue
		}
		if filter.VisibleTo != uuid.Nil &&
			b.Status() == bookingDomain.StatusPending &&
			b.RequesterID() != filter.VisibleTo {
			// The fake has no vehicle join; owner visibility is covered by
			// the integration suite.
			continue
		}
		matched = append(matched, cloneBooking(b))
	}

	sortBookings(matched)

	total := int64(len(matched))
	start := (page - 1) * limit
	if start >= len(matched) {
		return nil, total, nil
	}
	end := start + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func sortBookings(bs []*bookingDomain.Booking) {
	for i := 1; i < len(bs); i++ {
		for j := i; j > 0 && bookingLess(bs[j], bs[j-1]); j-- {
			bs[j], bs[j-1] = bs[j-1], bs[j]
		}
	}
}

func bookingLess(a, b *bookingDomain.Booking) bool {
	if !a.Period().Start.Equal(b.Period().Start) {
		return a.Period().Start.Before(b.Period().Start)
	}
	return a.ID().String() < b.ID().String()
}

func (r *fakeBookingRepo) ListDueForActivation(_ context.Context, now time.Time) ([]*bookingDomain.Booking, error) {
	return r.listDue(bookingDomain.StatusConfirmed, func(b *bookingDomain.Booking) bool {
		return !b.Period().Start.After(now)
	}), nil
}

func (r *fakeBookingRepo) ListDueForCompletion(_ context.Context, now time.Time) ([]*bookingDomain.Booking, error) {
	return r.listDue(bookingDomain.StatusActive, func(b *bookingDomain.Booking) bool {
		return !b.Period().End.After(now)
	}), nil
}

func (r *fakeBookingRepo) listDue(status bookingDomain.BookingStatus, due func(*bookingDomain.Booking) bool) []*bookingDomain.Booking {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*bookingDomain.Booking
	for _, b := range r.bookings {
		if b.Status() == status && due(b) {
			out = append(out, cloneBooking(b))
		}
	}
	return out
}

func (r *fakeBookingRepo) CountLiveForVehicle(_ context.Context, vehicleID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, b := range r.bookings {
		if b.VehicleID() != vehicleID {
			continue
		}
		for _, s := range bookingDomain.LiveStatuses() {
			if b.Status() == s {
				count++
				break
			}
		}
	}
	return count, nil
}

func (r *fakeBookingRepo) CountByStatus(_ context.Context) (map[string]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := make(map[string]int64)
	for _, b := range r.bookings {
		counts[string(b.Status())]++
	}
	return counts, nil
}

// fakeVehicleRepo is an in-memory VehicleRepository.
type fakeVehicleRepo struct {
	mu       sync.Mutex
	vehicles map[uuid.UUID]*vehicleDomain.Vehicle
}

func newFakeVehicleRepo() *fakeVehicleRepo {
	return &fakeVehicleRepo{vehicles: make(map[uuid.UUID]*vehicleDomain.Vehicle)}
}

func (r *fakeVehicleRepo) put(v *vehicleDomain.Vehicle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.vehicles[v.ID()] = cloneVehicle(v)
}

func (r *fakeVehicleRepo) FindByID(_ context.Context, id uuid.UUID) (*vehicleDomain.Vehicle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.vehicles[id]
	if !ok {
		return nil, domain.NewNotFoundError("vehicle", id.String())
	}
	return cloneVehicle(v), nil
}

func (r *fakeVehicleRepo) List(_ context.Context, filter vehicleDomain.ListFilter, page, limit int) ([]*vehicleDomain.Vehicle, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var matched []*vehicleDomain.Vehicle
	for _, v := range r.vehicles {
		if filter.OwnerID != nil && v.OwnerID() != *filter.OwnerID {
			continue
		}
		if filter.Status != nil && v.Status() != *filter.Status {
			continue
		}
		if filter.VehicleType != nil && v.Attrs().VehicleType != *filter.VehicleType {
			continue
		}
		matched = append(matched, cloneVehicle(v))
	}
	total := int64(len(matched))
	start := (page - 1) * limit
	if start >= len(matched) {
		return nil, total, nil
	}
	end := start + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func (r *fakeVehicleRepo) Save(_ context.Context, v *vehicleDomain.Vehicle) error {
	r.put(v)
	return nil
}

func (r *fakeVehicleRepo) Update(_ context.Context, v *vehicleDomain.Vehicle) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.vehicles[v.ID()]
	if !ok {
		return domain.NewNotFoundError("vehicle", v.ID().String())
	}
	if cur.Version() != v.Version()-1 {
		return domain.NewStaleVersionError("vehicle")
	}
	r.vehicles[v.ID()] = cloneVehicle(v)
	return nil
}

// fakeAttemptRepo records payment attempts in memory.
type fakeAttemptRepo struct {
	mu       sync.Mutex
	attempts []*paymentDomain.Attempt
}

func newFakeAttemptRepo() *fakeAttemptRepo {
	return &fakeAttemptRepo{}
}

func (r *fakeAttemptRepo) Save(_ context.Context, a *paymentDomain.Attempt) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.attempts = append(r.attempts, a)
	return nil
}

func (r *fakeAttemptRepo) FindByBookingID(_ context.Context, bookingID uuid.UUID) ([]*paymentDomain.Attempt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*paymentDomain.Attempt
	for _, a := range r.attempts {
		if a.BookingID == bookingID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *fakeAttemptRepo) countKind(kind paymentDomain.Kind) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, a := range r.attempts {
		if a.Kind == kind {
			n++
		}
	}
	return n
}

// scriptedAuthorizer returns queued outcomes, then defaults to success.
type scriptedAuthorizer struct {
	mu      sync.Mutex
	queue   []paymentDomain.Outcome
	auths   int
	refunds int
}

func (a *scriptedAuthorizer) next() paymentDomain.Outcome {
	if len(a.queue) == 0 {
		return paymentDomain.OutcomeSuccess
	}
	out := a.queue[0]
	a.queue = a.queue[1:]
	return out
}

func (a *scriptedAuthorizer) Authorize(_ context.Context, _ uuid.UUID, _ int64) (paymentDomain.Outcome, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.auths++
	return a.next(), nil
}

func (a *scriptedAuthorizer) Refund(_ context.Context, _ uuid.UUID, _ int64) (paymentDomain.Outcome, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.refunds++
	return a.next(), nil
}

func (a *scriptedAuthorizer) refundCalls() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.refunds
}

// gateAuthorizer blocks Authorize calls until released, so tests can line up
// concurrent callers at the payment step before any of them writes.
type gateAuthorizer struct {
	inner   *scriptedAuthorizer
	arrived chan struct{}
	release chan struct{}
}

func newGateAuthorizer(inner *scriptedAuthorizer, callers int) *gateAuthorizer {
	return &gateAuthorizer{
		inner:   inner,
		arrived: make(chan struct{}, callers),
		release: make(chan struct{}),
	}
}

func (a *gateAuthorizer) Authorize(ctx context.Context, bookingID uuid.UUID, amountCents int64) (paymentDomain.Outcome, error) {
	a.arrived <- struct{}{}
	<-a.release
	return a.inner.Authorize(ctx, bookingID, amountCents)
}

func (a *gateAuthorizer) Refund(ctx context.Context, bookingID uuid.UUID, amountCents int64) (paymentDomain.Outcome, error) {
	return a.inner.Refund(ctx, bookingID, amountCents)
}

// fakeClock is a settable Clock.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(now time.Time) *fakeClock {
	return &fakeClock{now: now}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

// recordingPublisher captures published events instead of hitting Kafka.
type recordingPublisher struct {
	mu     sync.Mutex
	events []kafka.CloudEvent
}

func (p *recordingPublisher) PublishEvent(_ context.Context, _ string, event kafka.CloudEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) typesSeen() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}
