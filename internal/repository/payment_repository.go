package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	paymentDomain "github.com/laraibshahid/carrental/internal/domain/payment"
)

// PaymentAttemptModel is the GORM model for the payment_attempts table.
type PaymentAttemptModel struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	BookingID   uuid.UUID `gorm:"type:uuid;index;not null"`
	Kind        string    `gorm:"not null;size:20"`
	AmountCents int64     `gorm:"not null"`
	Outcome     string    `gorm:"not null;size:20"`
	CreatedAt   time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (PaymentAttemptModel) TableName() string {
	return "payment_attempts"
}

// GormPaymentAttemptRepository is the GORM-based implementation of
// AttemptRepository. Attempts are append-only; there is no update path.
type GormPaymentAttemptRepository struct {
	db *gorm.DB
}

// NewGormPaymentAttemptRepository creates a new GormPaymentAttemptRepository.
func NewGormPaymentAttemptRepository(db *gorm.DB) *GormPaymentAttemptRepository {
	return &GormPaymentAttemptRepository{db: db}
}

// Save persists a new attempt record.
func (r *GormPaymentAttemptRepository) Save(ctx context.Context, a *paymentDomain.Attempt) error {
	model := &PaymentAttemptModel{
		ID:          a.ID,
		BookingID:   a.BookingID,
		Kind:        string(a.Kind),
		AmountCents: a.AmountCents,
		Outcome:     string(a.Outcome),
		CreatedAt:   a.CreatedAt,
	}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to save payment attempt: %w", err)
	}
	return nil
}

// FindByBookingID retrieves all attempts for a booking, oldest first.
func (r *GormPaymentAttemptRepository) FindByBookingID(ctx context.Context, bookingID uuid.UUID) ([]*paymentDomain.Attempt, error) {
	var models []PaymentAttemptModel
	err := r.db.WithContext(ctx).
		Where("booking_id = ?", bookingID).
		Order("created_at ASC, id ASC").
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find payment attempts: %w", err)
	}

	attempts := make([]*paymentDomain.Attempt, len(models))
	for i, m := range models {
		attempts[i] = &paymentDomain.Attempt{
			ID:          m.ID,
			BookingID:   m.BookingID,
			Kind:        paymentDomain.Kind(m.Kind),
			AmountCents: m.AmountCents,
			Outcome:     paymentDomain.Outcome(m.Outcome),
			CreatedAt:   m.CreatedAt,
		}
	}
	return attempts, nil
}
