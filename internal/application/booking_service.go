package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	bookingDomain "github.com/laraibshahid/carrental/internal/domain/booking"
	paymentDomain "github.com/laraibshahid/carrental/internal/domain/payment"
	vehicleDomain "github.com/laraibshahid/carrental/internal/domain/vehicle"
	"github.com/laraibshahid/carrental/internal/events"
	"github.com/laraibshahid/carrental/pkg/domain"
	"github.com/laraibshahid/carrental/pkg/kafka"
)

const eventSource = "service-rental"

// EventPublisher is the narrow publishing capability the services need.
// *kafka.Producer satisfies it; tests substitute a recorder.
type EventPublisher interface {
	PublishEvent(ctx context.Context, topic string, event kafka.CloudEvent) error
}

// BookingPolicy holds the scheduler's configurable limits.
type BookingPolicy struct {
	// MinDuration and MaxDuration bound a booking's length; requests outside
	// the range are rejected as invalid.
	MinDuration time.Duration
	MaxDuration time.Duration
	// PaymentTimeout bounds every authorizer call. Expiry counts as a decline.
	PaymentTimeout time.Duration
}

// RequestBookingInput holds the data needed to request a new booking.
type RequestBookingInput struct {
	VehicleID      uuid.UUID `json:"vehicle_id" binding:"required"`
	Start          time.Time `json:"start" binding:"required"`
	End            time.Time `json:"end" binding:"required"`
	PickupLocation string    `json:"pickup_location"`
	ReturnLocation string    `json:"return_location"`
	Notes          string    `json:"notes"`
}

// BookingService is the scheduler: it owns admission of new bookings and every
// lifecycle transition, and is the only writer of booking state.
type BookingService struct {
	bookings   bookingDomain.BookingRepository
	vehicles   vehicleDomain.VehicleRepository
	attempts   paymentDomain.AttemptRepository
	authorizer paymentDomain.Authorizer
	pricing    bookingDomain.PricingStrategy
	clock      bookingDomain.Clock
	policy     BookingPolicy
	publisher  EventPublisher
	logger     *zap.Logger
}

// NewBookingService creates a new BookingService.
func NewBookingService(
	bookings bookingDomain.BookingRepository,
	vehicles vehicleDomain.VehicleRepository,
	attempts paymentDomain.AttemptRepository,
	authorizer paymentDomain.Authorizer,
	pricing bookingDomain.PricingStrategy,
	clock bookingDomain.Clock,
	policy BookingPolicy,
	publisher EventPublisher,
	logger *zap.Logger,
) *BookingService {
	return &BookingService{
		bookings:   bookings,
		vehicles:   vehicles,
		attempts:   attempts,
		authorizer: authorizer,
		pricing:    pricing,
		clock:      clock,
		policy:     policy,
		publisher:  publisher,
		logger:     logger,
	}
}

// RequestBooking admits a new booking request for the given requester. The
// overlap check against live bookings and the insert happen atomically in the
// repository, so two racing requests for the same window cannot both succeed.
func (s *BookingService) RequestBooking(ctx context.Context, requesterID uuid.UUID, req RequestBookingInput) (*BookingDTO, error) {
	period, err := bookingDomain.NewPeriod(req.Start, req.End)
	if err != nil {
		return nil, err
	}
	if d := period.Duration(); d < s.policy.MinDuration || d > s.policy.MaxDuration {
		return nil, domain.NewValidationError(fmt.Sprintf(
			"booking duration must be between %s and %s", s.policy.MinDuration, s.policy.MaxDuration))
	}

	veh, err := s.vehicles.FindByID(ctx, req.VehicleID)
	if err != nil {
		return nil, err
	}
	if !veh.IsBookable() {
		return nil, domain.NewConflictError(fmt.Sprintf("vehicle is %s and cannot be booked", veh.Status()))
	}

	totalCents, depositCents := s.pricing.Quote(veh.DailyRateCents(), period)

	bk, err := bookingDomain.NewBooking(
		veh.ID(),
		requesterID,
		period,
		veh.DailyRateCents(),
		totalCents,
		depositCents,
		veh.Currency(),
		req.PickupLocation,
		req.ReturnLocation,
		req.Notes,
	)
	if err != nil {
		return nil, err
	}

	if err := s.bookings.Save(ctx, bk); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.TopicBookingEvents, events.BookingRequested, events.BookingRequestedEvent{
		BookingID:        bk.ID(),
		BookingNumber:    bk.BookingNumber(),
		VehicleID:        bk.VehicleID(),
		RequesterID:      bk.RequesterID(),
		Start:            bk.Period().Start,
		End:              bk.Period().End,
		TotalAmountCents: bk.TotalAmountCents(),
		Currency:         bk.Currency(),
		OccurredAt:       time.Now().UTC(),
	})

	result := toBookingDTO(bk)
	return &result, nil
}

// ConfirmBooking authorizes the deposit for a pending booking and, if the
// hold succeeds, re-validates the overlap invariant before flipping the
// booking to confirmed. A booking that loses the re-validation race is
// cancelled, never left pending.
func (s *BookingService) ConfirmBooking(ctx context.Context, bookingID, callerID uuid.UUID) (*BookingDTO, error) {
	bk, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeCaller(ctx, bk, callerID); err != nil {
		return nil, err
	}
	if bk.Status() != bookingDomain.StatusPending {
		return nil, domain.NewInvalidStateError(string(bk.Status()), string(bookingDomain.StatusConfirmed))
	}

	outcome := s.callAuthorizer(ctx, paymentDomain.KindAuthorize, bk.ID(), bk.DepositCents())
	if outcome != paymentDomain.OutcomeSuccess {
		bk.DeclinePayment()
		bk.IncrementVersion()
		if uerr := s.bookings.Update(ctx, bk); uerr != nil {
			s.logger.Error("failed to record declined payment",
				zap.String("booking_id", bk.ID().String()),
				zap.Error(uerr),
			)
		}
		return nil, domain.NewPaymentDeclinedError("deposit authorization was declined")
	}

	if err := bk.Confirm(); err != nil {
		return nil, err
	}
	bk.IncrementVersion()

	if err := s.bookings.UpdateWithOverlapRecheck(ctx, bk); err != nil {
		switch {
		case domain.IsStaleVersion(err):
			// Another caller modified this same booking while the hold was
			// being placed, for example a concurrent confirm by the other
			// eligible caller. The stored booking stays as that caller left
			// it; only this call's duplicate hold is released. The error is
			// retryable after a reload.
			go s.releaseHold(bk.ID(), bk.DepositCents())
			return nil, err
		case domain.IsConflict(err):
			s.cancelLostRace(ctx, bk.ID(), bk.DepositCents())
			return nil, domain.NewConflictError("an overlapping booking was confirmed first")
		default:
			return nil, err
		}
	}

	s.publishEvent(ctx, events.TopicBookingEvents, events.BookingConfirmed, events.BookingConfirmedEvent{
		BookingID:     bk.ID(),
		BookingNumber: bk.BookingNumber(),
		VehicleID:     bk.VehicleID(),
		RequesterID:   bk.RequesterID(),
		DepositCents:  bk.DepositCents(),
		Currency:      bk.Currency(),
		OccurredAt:    time.Now().UTC(),
	})

	result := toBookingDTO(bk)
	return &result, nil
}

// CancelBooking cancels a booking that is not yet in a terminal state. If a
// deposit is held, a refund is fired asynchronously; cancellation itself
// never waits on the payment collaborator.
func (s *BookingService) CancelBooking(ctx context.Context, bookingID, callerID uuid.UUID, reason string) (*BookingDTO, error) {
	bk, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeCaller(ctx, bk, callerID); err != nil {
		return nil, err
	}

	refundable := bk.PaymentStatus().Refundable()

	if err := bk.Cancel(reason); err != nil {
		return nil, err
	}
	bk.IncrementVersion()
	if err := s.bookings.Update(ctx, bk); err != nil {
		return nil, err
	}

	if refundable {
		go s.refund(bk.ID(), bk.DepositCents())
	}

	s.publishEvent(ctx, events.TopicBookingEvents, events.BookingCancelled, events.BookingCancelledEvent{
		BookingID:     bk.ID(),
		BookingNumber: bk.BookingNumber(),
		CancelledBy:   callerID,
		Reason:        reason,
		OccurredAt:    time.Now().UTC(),
	})

	result := toBookingDTO(bk)
	return &result, nil
}

// Activate moves a confirmed booking to active once its period has started.
// Outside that window the call is a no-op, so a sweep may invoke it on every
// booking unconditionally.
func (s *BookingService) Activate(ctx context.Context, bookingID uuid.UUID) (*BookingDTO, error) {
	bk, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if bk.Status() != bookingDomain.StatusConfirmed || s.clock.Now().Before(bk.Period().Start) {
		result := toBookingDTO(bk)
		return &result, nil
	}

	if err := bk.Activate(); err != nil {
		return nil, err
	}
	bk.IncrementVersion()
	if err := s.bookings.Update(ctx, bk); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.TopicBookingEvents, events.BookingActivated, events.BookingActivatedEvent{
		BookingID:     bk.ID(),
		BookingNumber: bk.BookingNumber(),
		VehicleID:     bk.VehicleID(),
		OccurredAt:    time.Now().UTC(),
	})

	result := toBookingDTO(bk)
	return &result, nil
}

// Complete moves an active booking to completed once its period has ended.
// Like Activate it is an idempotent no-op outside its source state.
func (s *BookingService) Complete(ctx context.Context, bookingID uuid.UUID) (*BookingDTO, error) {
	bk, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if bk.Status() != bookingDomain.StatusActive || s.clock.Now().Before(bk.Period().End) {
		result := toBookingDTO(bk)
		return &result, nil
	}

	if err := bk.Complete(); err != nil {
		return nil, err
	}
	bk.IncrementVersion()
	if err := s.bookings.Update(ctx, bk); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.TopicBookingEvents, events.BookingCompleted, events.BookingCompletedEvent{
		BookingID:        bk.ID(),
		BookingNumber:    bk.BookingNumber(),
		VehicleID:        bk.VehicleID(),
		TotalAmountCents: bk.TotalAmountCents(),
		Currency:         bk.Currency(),
		OccurredAt:       time.Now().UTC(),
	})

	result := toBookingDTO(bk)
	return &result, nil
}

// SweepLifecycle applies time-driven transitions to every due booking:
// confirmed bookings whose period started become active, active bookings
// whose period ended become completed. Both transitions are idempotent, so
// the sweep needs no special-casing of already-transitioned rows.
func (s *BookingService) SweepLifecycle(ctx context.Context) (activated, completed int, err error) {
	now := s.clock.Now()

	dueActive, err := s.bookings.ListDueForActivation(ctx, now)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to list bookings due for activation: %w", err)
	}
	for _, bk := range dueActive {
		if _, aerr := s.Activate(ctx, bk.ID()); aerr != nil {
			s.logger.Error("sweep failed to activate booking",
				zap.String("booking_id", bk.ID().String()),
				zap.Error(aerr),
			)
			continue
		}
		activated++
	}

	dueComplete, err := s.bookings.ListDueForCompletion(ctx, now)
	if err != nil {
		return activated, 0, fmt.Errorf("failed to list bookings due for completion: %w", err)
	}
	for _, bk := range dueComplete {
		if _, cerr := s.Complete(ctx, bk.ID()); cerr != nil {
			s.logger.Error("sweep failed to complete booking",
				zap.String("booking_id", bk.ID().String()),
				zap.Error(cerr),
			)
			continue
		}
		completed++
	}

	return activated, completed, nil
}

// GetPaymentAttempts returns the payment history for a booking.
func (s *BookingService) GetPaymentAttempts(ctx context.Context, bookingID uuid.UUID) ([]PaymentAttemptDTO, error) {
	attempts, err := s.attempts.FindByBookingID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	dtos := make([]PaymentAttemptDTO, len(attempts))
	for i, a := range attempts {
		dtos[i] = toPaymentAttemptDTO(a)
	}
	return dtos, nil
}

// --- Helpers ---

// authorizeCaller permits the booking's requester and the vehicle's owner.
func (s *BookingService) authorizeCaller(ctx context.Context, bk *bookingDomain.Booking, callerID uuid.UUID) error {
	if callerID == bk.RequesterID() {
		return nil
	}
	veh, err := s.vehicles.FindByID(ctx, bk.VehicleID())
	if err != nil {
		return err
	}
	if callerID == veh.OwnerID() {
		return nil
	}
	return domain.NewForbiddenError("caller is neither the requester nor the vehicle owner")
}

// callAuthorizer runs one authorizer call under the payment timeout and
// records the attempt. Transport errors and timeouts count as failures.
func (s *BookingService) callAuthorizer(ctx context.Context, kind paymentDomain.Kind, bookingID uuid.UUID, amountCents int64) paymentDomain.Outcome {
	callCtx, cancel := context.WithTimeout(ctx, s.policy.PaymentTimeout)
	defer cancel()

	var outcome paymentDomain.Outcome
	var err error
	switch kind {
	case paymentDomain.KindRefund:
		outcome, err = s.authorizer.Refund(callCtx, bookingID, amountCents)
	default:
		outcome, err = s.authorizer.Authorize(callCtx, bookingID, amountCents)
	}
	if err != nil {
		s.logger.Warn("payment call failed",
			zap.String("booking_id", bookingID.String()),
			zap.String("kind", string(kind)),
			zap.Error(err),
		)
		outcome = paymentDomain.OutcomeFailure
	}

	attempt := paymentDomain.NewAttempt(bookingID, kind, amountCents, outcome)
	if serr := s.attempts.Save(ctx, attempt); serr != nil {
		s.logger.Error("failed to record payment attempt",
			zap.String("booking_id", bookingID.String()),
			zap.Error(serr),
		)
	}

	s.publishEvent(ctx, events.TopicPaymentEvents, events.PaymentAttempted, events.PaymentAttemptedEvent{
		AttemptID:   attempt.ID,
		BookingID:   bookingID,
		Kind:        string(kind),
		AmountCents: amountCents,
		Outcome:     string(outcome),
		OccurredAt:  time.Now().UTC(),
	})

	return outcome
}

// cancelLostRace transitions a booking that lost the confirmation re-check to
// cancelled and releases the deposit hold that was just placed.
func (s *BookingService) cancelLostRace(ctx context.Context, bookingID uuid.UUID, depositCents int64) {
	fresh, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		s.logger.Error("failed to reload booking after lost race",
			zap.String("booking_id", bookingID.String()),
			zap.Error(err),
		)
		return
	}
	if fresh.Status() != bookingDomain.StatusPending {
		// The booking advanced under a concurrent caller; leave it alone and
		// only release the hold this call placed.
		s.logger.Warn("booking is no longer pending, skipping lost-race cancellation",
			zap.String("booking_id", bookingID.String()),
			zap.String("status", string(fresh.Status())),
		)
		go s.releaseHold(bookingID, depositCents)
		return
	}
	if cerr := fresh.Cancel("an overlapping booking was confirmed first"); cerr != nil {
		s.logger.Error("failed to cancel booking after lost race",
			zap.String("booking_id", bookingID.String()),
			zap.Error(cerr),
		)
		return
	}
	fresh.IncrementVersion()
	if uerr := s.bookings.Update(ctx, fresh); uerr != nil {
		s.logger.Error("failed to cancel booking after lost race",
			zap.String("booking_id", bookingID.String()),
			zap.Error(uerr),
		)
		return
	}

	go s.refund(bookingID, depositCents)

	s.publishEvent(ctx, events.TopicBookingEvents, events.BookingCancelled, events.BookingCancelledEvent{
		BookingID:     fresh.ID(),
		BookingNumber: fresh.BookingNumber(),
		CancelledBy:   fresh.RequesterID(),
		Reason:        fresh.CancelNote(),
		OccurredAt:    time.Now().UTC(),
	})
}

// releaseHold returns a deposit hold that must not survive without touching
// the stored booking. Used when a concurrent caller already settled the
// booking and this call's hold is the duplicate.
func (s *BookingService) releaseHold(bookingID uuid.UUID, amountCents int64) {
	ctx, cancel := context.WithTimeout(context.Background(), s.policy.PaymentTimeout)
	defer cancel()

	if outcome := s.callAuthorizer(ctx, paymentDomain.KindRefund, bookingID, amountCents); outcome != paymentDomain.OutcomeSuccess {
		s.logger.Warn("failed to release duplicate deposit hold",
			zap.String("booking_id", bookingID.String()),
			zap.Int64("amount_cents", amountCents),
		)
	}
}

// refund runs the fire-and-forget refund path with its own deadline, detached
// from the request context that triggered it.
func (s *BookingService) refund(bookingID uuid.UUID, amountCents int64) {
	ctx, cancel := context.WithTimeout(context.Background(), s.policy.PaymentTimeout)
	defer cancel()

	outcome := s.callAuthorizer(ctx, paymentDomain.KindRefund, bookingID, amountCents)
	if outcome != paymentDomain.OutcomeSuccess {
		s.logger.Warn("refund attempt failed",
			zap.String("booking_id", bookingID.String()),
			zap.Int64("amount_cents", amountCents),
		)
		return
	}

	bk, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return
	}
	if !bk.PaymentStatus().Refundable() {
		return
	}
	bk.MarkRefunded()
	bk.IncrementVersion()
	if uerr := s.bookings.Update(ctx, bk); uerr != nil {
		s.logger.Error("failed to record refund",
			zap.String("booking_id", bookingID.String()),
			zap.Error(uerr),
		)
	}
}

func (s *BookingService) publishEvent(ctx context.Context, topic, eventType string, data interface{}) {
	cloudEvent, err := kafka.NewCloudEvent(eventSource, eventType, data)
	if err != nil {
		s.logger.Error("failed to create cloud event",
			zap.String("event_type", eventType),
			zap.Error(err),
		)
		return
	}

	if err := s.publisher.PublishEvent(ctx, topic, cloudEvent); err != nil {
		s.logger.Error("failed to publish event",
			zap.String("topic", topic),
			zap.String("event_type", eventType),
			zap.Error(err),
		)
	}
}
