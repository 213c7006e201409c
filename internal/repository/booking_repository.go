package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	bookingDomain "github.com/laraibshahid/carrental/internal/domain/booking"
	"github.com/laraibshahid/carrental/pkg/domain"
)

// BookingModel is the GORM model for the bookings table.
type BookingModel struct {
	ID               uuid.UUID  `gorm:"type:uuid;primaryKey"`
	BookingNumber    string     `gorm:"uniqueIndex;not null;size:20"`
	VehicleID        uuid.UUID  `gorm:"type:uuid;not null;index:idx_bookings_vehicle_window,priority:1"`
	RequesterID      uuid.UUID  `gorm:"type:uuid;index;not null"`
	StartTime        time.Time  `gorm:"not null;index:idx_bookings_vehicle_window,priority:2"`
	EndTime          time.Time  `gorm:"not null"`
	Status           string     `gorm:"not null;size:20;index"`
	PaymentStatus    string     `gorm:"not null;size:20"`
	DailyRateCents   int64      `gorm:"not null"`
	TotalAmountCents int64      `gorm:"not null"`
	DepositCents     int64      `gorm:"not null"`
	Currency         string     `gorm:"not null;size:3"`
	PickupLocation   string     `gorm:"size:255"`
	ReturnLocation   string     `gorm:"size:255"`
	Notes            string     `gorm:"size:1000"`
	CancelNote       string     `gorm:"size:500"`
	ConfirmedAt      *time.Time `gorm:""`
	ActivatedAt      *time.Time `gorm:""`
	CompletedAt      *time.Time `gorm:""`
	CancelledAt      *time.Time `gorm:""`
	Version          int64      `gorm:"not null;default:1"`
	CreatedAt        time.Time  `gorm:"not null"`
	UpdatedAt        time.Time  `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (BookingModel) TableName() string {
	return "bookings"
}

// GormBookingRepository is the GORM-based implementation of BookingRepository.
//
// The admission contract lives here: Save and UpdateWithOverlapRecheck each
// open a transaction, take a FOR UPDATE lock on the booking's vehicle row,
// run the overlap query and the write under that lock, then commit. Two
// concurrent admissions for the same vehicle therefore serialize at the
// vehicle row; bookings on other vehicles never wait.
type GormBookingRepository struct {
	db *gorm.DB
}

// NewGormBookingRepository creates a new GormBookingRepository.
func NewGormBookingRepository(db *gorm.DB) *GormBookingRepository {
	return &GormBookingRepository{db: db}
}

// FindByID retrieves a booking by its unique identifier.
func (r *GormBookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	var model BookingModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("booking", id.String())
		}
		return nil, fmt.Errorf("failed to find booking by ID: %w", err)
	}
	return toDomainBooking(&model), nil
}

// FindByNumber retrieves a booking by its human-readable booking number.
func (r *GormBookingRepository) FindByNumber(ctx context.Context, number string) (*bookingDomain.Booking, error) {
	var model BookingModel
	if err := r.db.WithContext(ctx).Where("booking_number = ?", number).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("booking", number)
		}
		return nil, fmt.Errorf("failed to find booking by number: %w", err)
	}
	return toDomainBooking(&model), nil
}

// FindOverlapping returns bookings for the vehicle in any of the given
// statuses whose period overlaps the given one. Periods are half-open, so
// back-to-back bookings sharing a boundary instant do not overlap.
func (r *GormBookingRepository) FindOverlapping(ctx context.Context, vehicleID uuid.UUID, period bookingDomain.Period, statuses []bookingDomain.BookingStatus) ([]*bookingDomain.Booking, error) {
	var models []BookingModel
	err := r.db.WithContext(ctx).
		Where("vehicle_id = ? AND status IN ? AND start_time < ? AND end_time > ?",
			vehicleID, statusStrings(statuses), period.End, period.Start).
		Order("start_time ASC, id ASC").
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find overlapping bookings: %w", err)
	}

	bookings := make([]*bookingDomain.Booking, len(models))
	for i, m := range models {
		bookings[i] = toDomainBooking(&m)
	}
	return bookings, nil
}

// Save persists a new booking after verifying, under the vehicle row lock,
// that no live booking overlaps its period.
func (r *GormBookingRepository) Save(ctx context.Context, b *bookingDomain.Booking) error {
	model := toBookingModel(b)

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockVehicleRow(tx, b.VehicleID()); err != nil {
			return err
		}

		count, err := countOverlapping(tx, b.VehicleID(), b.Period(), bookingDomain.LiveStatuses(), uuid.Nil)
		if err != nil {
			return err
		}
		if count > 0 {
			return domain.NewConflictError("requested period overlaps an existing booking")
		}

		if err := tx.Create(model).Error; err != nil {
			return fmt.Errorf("failed to save booking: %w", err)
		}
		return nil
	})
}

// Update persists changes to an existing booking with optimistic locking.
func (r *GormBookingRepository) Update(ctx context.Context, b *bookingDomain.Booking) error {
	result := r.db.WithContext(ctx).
		Model(&BookingModel{}).
		Where("id = ? AND version = ?", b.ID(), b.Version()-1).
		Updates(bookingUpdateColumns(b))

	if result.Error != nil {
		return fmt.Errorf("failed to update booking: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewStaleVersionError("booking")
	}
	return nil
}

// UpdateWithOverlapRecheck persists changes after re-verifying, under the
// vehicle row lock, that no other confirmed or active booking overlaps this
// booking's period.
func (r *GormBookingRepository) UpdateWithOverlapRecheck(ctx context.Context, b *bookingDomain.Booking) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockVehicleRow(tx, b.VehicleID()); err != nil {
			return err
		}

		count, err := countOverlapping(tx, b.VehicleID(), b.Period(), bookingDomain.ExclusiveStatuses(), b.ID())
		if err != nil {
			return err
		}
		if count > 0 {
			return domain.NewConflictError("an overlapping booking was confirmed first")
		}

		result := tx.Model(&BookingModel{}).
			Where("id = ? AND version = ?", b.ID(), b.Version()-1).
			Updates(bookingUpdateColumns(b))
		if result.Error != nil {
			return fmt.Errorf("failed to update booking: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return domain.NewStaleVersionError("booking")
		}
		return nil
	})
}

// Search retrieves bookings matching the filter with pagination, ordered by
// period start ascending then ID ascending.
func (r *GormBookingRepository) Search(ctx context.Context, filter bookingDomain.SearchFilter, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	q := r.db.WithContext(ctx).
		Model(&BookingModel{}).
		Joins("JOIN vehicles ON vehicles.id = bookings.vehicle_id")

	if filter.VehicleID != nil {
		q = q.Where("bookings.vehicle_id = ?", *filter.VehicleID)
	}
	if filter.OwnerID != nil {
		q = q.Where("vehicles.owner_id = ?", *filter.OwnerID)
	}
	if filter.RequesterID != nil {
		q = q.Where("bookings.requester_id = ?", *filter.RequesterID)
	}
	if len(filter.Statuses) > 0 {
		q = q.Where("bookings.status IN ?", statusStrings(filter.Statuses))
	}
	if filter.From != nil {
		q = q.Where("bookings.end_time > ?", *filter.From)
	}
	if filter.To != nil {
		q = q.Where("bookings.start_time < ?", *filter.To)
	}
	if filter.VisibleTo != uuid.Nil {
		q = q.Where("bookings.status <> ? OR bookings.requester_id = ? OR vehicles.owner_id = ?",
			string(bookingDomain.StatusPending), filter.VisibleTo, filter.VisibleTo)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count bookings: %w", err)
	}

	var models []BookingModel
	offset := (page - 1) * limit
	err := q.Select("bookings.*").
		Order("bookings.start_time ASC, bookings.id ASC").
		Offset(offset).Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to search bookings: %w", err)
	}

	bookings := make([]*bookingDomain.Booking, len(models))
	for i, m := range models {
		bookings[i] = toDomainBooking(&m)
	}
	return bookings, total, nil
}

// ListDueForActivation returns confirmed bookings whose period has started.
func (r *GormBookingRepository) ListDueForActivation(ctx context.Context, now time.Time) ([]*bookingDomain.Booking, error) {
	return r.listByStatusAndTime(ctx, bookingDomain.StatusConfirmed, "start_time <= ?", now)
}

// ListDueForCompletion returns active bookings whose period has ended.
func (r *GormBookingRepository) ListDueForCompletion(ctx context.Context, now time.Time) ([]*bookingDomain.Booking, error) {
	return r.listByStatusAndTime(ctx, bookingDomain.StatusActive, "end_time <= ?", now)
}

func (r *GormBookingRepository) listByStatusAndTime(ctx context.Context, status bookingDomain.BookingStatus, timeCond string, now time.Time) ([]*bookingDomain.Booking, error) {
	var models []BookingModel
	err := r.db.WithContext(ctx).
		Where("status = ?", string(status)).
		Where(timeCond, now).
		Order("start_time ASC, id ASC").
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list due bookings: %w", err)
	}

	bookings := make([]*bookingDomain.Booking, len(models))
	for i, m := range models {
		bookings[i] = toDomainBooking(&m)
	}
	return bookings, nil
}

// CountLiveForVehicle returns how many live bookings reference the vehicle.
func (r *GormBookingRepository) CountLiveForVehicle(ctx context.Context, vehicleID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&BookingModel{}).
		Where("vehicle_id = ? AND status IN ?", vehicleID, statusStrings(bookingDomain.LiveStatuses())).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count live bookings: %w", err)
	}
	return count, nil
}

// CountByStatus returns booking counts grouped by status.
func (r *GormBookingRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	var rows []struct {
		Status string
		Count  int64
	}
	err := r.db.WithContext(ctx).
		Model(&BookingModel{}).
		Select("status, COUNT(*) as count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count bookings by status: %w", err)
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

// --- Transaction helpers ---

// lockVehicleRow takes a FOR UPDATE lock on the vehicle row so concurrent
// admissions for the same vehicle serialize.
func lockVehicleRow(tx *gorm.DB, vehicleID uuid.UUID) error {
	var veh VehicleModel
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", vehicleID).
		First(&veh).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.NewNotFoundError("vehicle", vehicleID.String())
		}
		return fmt.Errorf("failed to lock vehicle row: %w", err)
	}
	return nil
}

// countOverlapping counts bookings on the vehicle in the given statuses whose
// period overlaps the given one, excluding excludeID when non-nil.
func countOverlapping(tx *gorm.DB, vehicleID uuid.UUID, period bookingDomain.Period, statuses []bookingDomain.BookingStatus, excludeID uuid.UUID) (int64, error) {
	q := tx.Model(&BookingModel{}).
		Where("vehicle_id = ? AND status IN ? AND start_time < ? AND end_time > ?",
			vehicleID, statusStrings(statuses), period.End, period.Start)
	if excludeID != uuid.Nil {
		q = q.Where("id <> ?", excludeID)
	}

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count overlapping bookings: %w", err)
	}
	return count, nil
}

func statusStrings(statuses []bookingDomain.BookingStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}

func bookingUpdateColumns(b *bookingDomain.Booking) map[string]interface{} {
	return map[string]interface{}{
		"status":         string(b.Status()),
		"payment_status": string(b.PaymentStatus()),
		"cancel_note":    b.CancelNote(),
		"confirmed_at":   b.ConfirmedAt(),
		"activated_at":   b.ActivatedAt(),
		"completed_at":   b.CompletedAt(),
		"cancelled_at":   b.CancelledAt(),
		"version":        b.Version(),
		"updated_at":     b.UpdatedAt(),
	}
}

// --- Conversion Helpers ---

func toBookingModel(b *bookingDomain.Booking) *BookingModel {
	return &BookingModel{
		ID:               b.ID(),
		BookingNumber:    b.BookingNumber(),
		VehicleID:        b.VehicleID(),
		RequesterID:      b.RequesterID(),
		StartTime:        b.Period().Start,
		EndTime:          b.Period().End,
		Status:           string(b.Status()),
		PaymentStatus:    string(b.PaymentStatus()),
		DailyRateCents:   b.DailyRateCents(),
		TotalAmountCents: b.TotalAmountCents(),
		DepositCents:     b.DepositCents(),
		Currency:         b.Currency(),
		PickupLocation:   b.PickupLocation(),
		ReturnLocation:   b.ReturnLocation(),
		Notes:            b.Notes(),
		CancelNote:       b.CancelNote(),
		ConfirmedAt:      b.ConfirmedAt(),
		ActivatedAt:      b.ActivatedAt(),
		CompletedAt:      b.CompletedAt(),
		CancelledAt:      b.CancelledAt(),
		Version:          b.Version(),
		CreatedAt:        b.CreatedAt(),
		UpdatedAt:        b.UpdatedAt(),
	}
}

func toDomainBooking(m *BookingModel) *bookingDomain.Booking {
	return bookingDomain.ReconstructBooking(
		m.ID,
		m.BookingNumber,
		m.VehicleID,
		m.RequesterID,
		bookingDomain.Period{Start: m.StartTime, End: m.EndTime},
		bookingDomain.BookingStatus(m.Status),
		bookingDomain.PaymentStatus(m.PaymentStatus),
		m.DailyRateCents,
		m.TotalAmountCents,
		m.DepositCents,
		m.Currency,
		m.PickupLocation,
		m.ReturnLocation,
		m.Notes,
		m.CancelNote,
		m.ConfirmedAt,
		m.ActivatedAt,
		m.CompletedAt,
		m.CancelledAt,
		m.Version,
		m.CreatedAt,
		m.UpdatedAt,
	)
}
