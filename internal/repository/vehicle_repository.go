package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	vehicleDomain "github.com/laraibshahid/carrental/internal/domain/vehicle"
	"github.com/laraibshahid/carrental/pkg/domain"
)

// VehicleModel is the GORM model for the vehicles table.
type VehicleModel struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	OwnerID        uuid.UUID `gorm:"type:uuid;index;not null"`
	Make           string    `gorm:"not null;size:100"`
	Model          string    `gorm:"not null;size:100"`
	Year           int       `gorm:"not null"`
	LicensePlate   string    `gorm:"uniqueIndex;not null;size:20"`
	VehicleType    string    `gorm:"size:30"`
	Transmission   string    `gorm:"size:20"`
	FuelType       string    `gorm:"size:20"`
	Color          string    `gorm:"size:50"`
	MileageKm      int       `gorm:"not null;default:0"`
	DailyRateCents int64     `gorm:"not null"`
	Currency       string    `gorm:"not null;size:3"`
	Status         string    `gorm:"not null;size:20;index"`
	Version        int64     `gorm:"not null;default:1"`
	CreatedAt      time.Time `gorm:"not null"`
	UpdatedAt      time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (VehicleModel) TableName() string {
	return "vehicles"
}

// GormVehicleRepository is the GORM-based implementation of VehicleRepository.
type GormVehicleRepository struct {
	db *gorm.DB
}

// NewGormVehicleRepository creates a new GormVehicleRepository.
func NewGormVehicleRepository(db *gorm.DB) *GormVehicleRepository {
	return &GormVehicleRepository{db: db}
}

// FindByID retrieves a vehicle by its unique identifier.
func (r *GormVehicleRepository) FindByID(ctx context.Context, id uuid.UUID) (*vehicleDomain.Vehicle, error) {
	var model VehicleModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("vehicle", id.String())
		}
		return nil, fmt.Errorf("failed to find vehicle by ID: %w", err)
	}
	return toDomainVehicle(&model), nil
}

// List retrieves vehicles matching the filter with pagination.
func (r *GormVehicleRepository) List(ctx context.Context, filter vehicleDomain.ListFilter, page, limit int) ([]*vehicleDomain.Vehicle, int64, error) {
	q := r.db.WithContext(ctx).Model(&VehicleModel{})
	if filter.OwnerID != nil {
		q = q.Where("owner_id = ?", *filter.OwnerID)
	}
	if filter.Status != nil {
		q = q.Where("status = ?", string(*filter.Status))
	}
	if filter.VehicleType != nil {
		q = q.Where("vehicle_type = ?", *filter.VehicleType)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count vehicles: %w", err)
	}

	var models []VehicleModel
	offset := (page - 1) * limit
	if err := q.Order("created_at DESC").Offset(offset).Limit(limit).Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list vehicles: %w", err)
	}

	vehicles := make([]*vehicleDomain.Vehicle, len(models))
	for i, m := range models {
		vehicles[i] = toDomainVehicle(&m)
	}
	return vehicles, total, nil
}

// Save persists a new vehicle.
func (r *GormVehicleRepository) Save(ctx context.Context, v *vehicleDomain.Vehicle) error {
	model := toVehicleModel(v)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to save vehicle: %w", err)
	}
	return nil
}

// Update persists changes to an existing vehicle with optimistic locking.
func (r *GormVehicleRepository) Update(ctx context.Context, v *vehicleDomain.Vehicle) error {
	model := toVehicleModel(v)

	expectedVersion := v.Version() - 1
	result := r.db.WithContext(ctx).
		Model(&VehicleModel{}).
		Where("id = ? AND version = ?", model.ID, expectedVersion).
		Updates(map[string]interface{}{
			"make":             model.Make,
			"model":            model.Model,
			"year":             model.Year,
			"vehicle_type":     model.VehicleType,
			"transmission":     model.Transmission,
			"fuel_type":        model.FuelType,
			"color":            model.Color,
			"mileage_km":       model.MileageKm,
			"daily_rate_cents": model.DailyRateCents,
			"currency":         model.Currency,
			"status":           model.Status,
			"version":          model.Version,
			"updated_at":       model.UpdatedAt,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update vehicle: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewStaleVersionError("vehicle")
	}
	return nil
}

// --- Conversion Helpers ---

func toVehicleModel(v *vehicleDomain.Vehicle) *VehicleModel {
	attrs := v.Attrs()
	return &VehicleModel{
		ID:             v.ID(),
		OwnerID:        v.OwnerID(),
		Make:           attrs.Make,
		Model:          attrs.Model,
		Year:           attrs.Year,
		LicensePlate:   attrs.LicensePlate,
		VehicleType:    attrs.VehicleType,
		Transmission:   attrs.Transmission,
		FuelType:       attrs.FuelType,
		Color:          attrs.Color,
		MileageKm:      attrs.MileageKm,
		DailyRateCents: v.DailyRateCents(),
		Currency:       v.Currency(),
		Status:         string(v.Status()),
		Version:        v.Version(),
		CreatedAt:      v.CreatedAt(),
		UpdatedAt:      v.UpdatedAt(),
	}
}

func toDomainVehicle(m *VehicleModel) *vehicleDomain.Vehicle {
	return vehicleDomain.ReconstructVehicle(
		m.ID,
		m.OwnerID,
		vehicleDomain.Attributes{
			Make:         m.Make,
			Model:        m.Model,
			Year:         m.Year,
			LicensePlate: m.LicensePlate,
			VehicleType:  m.VehicleType,
			Transmission: m.Transmission,
			FuelType:     m.FuelType,
			Color:        m.Color,
			MileageKm:    m.MileageKm,
		},
		m.DailyRateCents,
		m.Currency,
		vehicleDomain.VehicleStatus(m.Status),
		m.Version,
		m.CreatedAt,
		m.UpdatedAt,
	)
}
