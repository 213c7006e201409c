package application

import (
	"time"

	"github.com/google/uuid"

	bookingDomain "github.com/laraibshahid/carrental/internal/domain/booking"
	paymentDomain "github.com/laraibshahid/carrental/internal/domain/payment"
	vehicleDomain "github.com/laraibshahid/carrental/internal/domain/vehicle"
)

// BookingDTO is the response representation of a booking.
type BookingDTO struct {
	ID               uuid.UUID  `json:"id"`
	BookingNumber    string     `json:"booking_number"`
	VehicleID        uuid.UUID  `json:"vehicle_id"`
	RequesterID      uuid.UUID  `json:"requester_id"`
	Start            time.Time  `json:"start"`
	End              time.Time  `json:"end"`
	Status           string     `json:"status"`
	PaymentStatus    string     `json:"payment_status"`
	DailyRateCents   int64      `json:"daily_rate_cents"`
	TotalAmountCents int64      `json:"total_amount_cents"`
	DepositCents     int64      `json:"deposit_cents"`
	Currency         string     `json:"currency"`
	PickupLocation   string     `json:"pickup_location,omitempty"`
	ReturnLocation   string     `json:"return_location,omitempty"`
	Notes            string     `json:"notes,omitempty"`
	CancelNote       string     `json:"cancel_note,omitempty"`
	ConfirmedAt      *time.Time `json:"confirmed_at,omitempty"`
	ActivatedAt      *time.Time `json:"activated_at,omitempty"`
	CompletedAt      *time.Time `json:"completed_at,omitempty"`
	CancelledAt      *time.Time `json:"cancelled_at,omitempty"`
	Version          int64      `json:"version"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

func toBookingDTO(bk *bookingDomain.Booking) BookingDTO {
	return BookingDTO{
		ID:               bk.ID(),
		BookingNumber:    bk.BookingNumber(),
		VehicleID:        bk.VehicleID(),
		RequesterID:      bk.RequesterID(),
		Start:            bk.Period().Start,
		End:              bk.Period().End,
		Status:           string(bk.Status()),
		PaymentStatus:    string(bk.PaymentStatus()),
		DailyRateCents:   bk.DailyRateCents(),
		TotalAmountCents: bk.TotalAmountCents(),
		DepositCents:     bk.DepositCents(),
		Currency:         bk.Currency(),
		PickupLocation:   bk.PickupLocation(),
		ReturnLocation:   bk.ReturnLocation(),
		Notes:            bk.Notes(),
		CancelNote:       bk.CancelNote(),
		ConfirmedAt:      bk.ConfirmedAt(),
		ActivatedAt:      bk.ActivatedAt(),
		CompletedAt:      bk.CompletedAt(),
		CancelledAt:      bk.CancelledAt(),
		Version:          bk.Version(),
		CreatedAt:        bk.CreatedAt(),
		UpdatedAt:        bk.UpdatedAt(),
	}
}

// VehicleDTO is the response representation of a vehicle.
type VehicleDTO struct {
	ID             uuid.UUID                `json:"id"`
	OwnerID        uuid.UUID                `json:"owner_id"`
	Attrs          vehicleDomain.Attributes `json:"attributes"`
	DailyRateCents int64                    `json:"daily_rate_cents"`
	Currency       string                   `json:"currency"`
	Status         string                   `json:"status"`
	Version        int64                    `json:"version"`
	CreatedAt      time.Time                `json:"created_at"`
	UpdatedAt      time.Time                `json:"updated_at"`
}

func toVehicleDTO(v *vehicleDomain.Vehicle) VehicleDTO {
	return VehicleDTO{
		ID:             v.ID(),
		OwnerID:        v.OwnerID(),
		Attrs:          v.Attrs(),
		DailyRateCents: v.DailyRateCents(),
		Currency:       v.Currency(),
		Status:         string(v.Status()),
		Version:        v.Version(),
		CreatedAt:      v.CreatedAt(),
		UpdatedAt:      v.UpdatedAt(),
	}
}

// PaymentAttemptDTO is the response representation of a payment attempt.
type PaymentAttemptDTO struct {
	ID          uuid.UUID `json:"id"`
	BookingID   uuid.UUID `json:"booking_id"`
	Kind        string    `json:"kind"`
	AmountCents int64     `json:"amount_cents"`
	Outcome     string    `json:"outcome"`
	CreatedAt   time.Time `json:"created_at"`
}

func toPaymentAttemptDTO(a *paymentDomain.Attempt) PaymentAttemptDTO {
	return PaymentAttemptDTO{
		ID:          a.ID,
		BookingID:   a.BookingID,
		Kind:        string(a.Kind),
		AmountCents: a.AmountCents,
		Outcome:     string(a.Outcome),
		CreatedAt:   a.CreatedAt,
	}
}
