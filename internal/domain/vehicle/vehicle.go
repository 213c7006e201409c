package vehicle

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/laraibshahid/carrental/pkg/domain"
)

// VehicleStatus is the coarse availability flag set by the fleet owner. It
// represents manual withdrawal only; booking conflicts are prevented by the
// scheduler's overlap check, never by this flag.
type VehicleStatus string

const (
	StatusAvailable   VehicleStatus = "available"
	StatusMaintenance VehicleStatus = "maintenance"
	// StatusRetired is the soft-delete state. Vehicles are never removed
	// while bookings reference them.
	StatusRetired VehicleStatus = "retired"
)

// IsValid returns true if the status is a recognized vehicle status.
func (s VehicleStatus) IsValid() bool {
	switch s {
	case StatusAvailable, StatusMaintenance, StatusRetired:
		return true
	}
	return false
}

// String returns the string representation of the status.
func (s VehicleStatus) String() string {
	return string(s)
}

// ParseVehicleStatus converts a string to a VehicleStatus, returning an error if invalid.
func ParseVehicleStatus(s string) (VehicleStatus, error) {
	status := VehicleStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid vehicle status: %s", s)
	}
	return status, nil
}

// Attributes are the descriptive vehicle fields, opaque to the scheduler.
type Attributes struct {
	Make         string `json:"make"`
	Model        string `json:"model"`
	Year         int    `json:"year"`
	LicensePlate string `json:"license_plate"`
	VehicleType  string `json:"vehicle_type"`
	Transmission string `json:"transmission"`
	FuelType     string `json:"fuel_type"`
	Color        string `json:"color"`
	MileageKm    int    `json:"mileage_km"`
}

// Vehicle is the aggregate root for the fleet inventory.
type Vehicle struct {
	id             uuid.UUID
	ownerID        uuid.UUID
	attrs          Attributes
	dailyRateCents int64
	currency       string
	status         VehicleStatus

	version   int64
	createdAt time.Time
	updatedAt time.Time
}

// NewVehicle creates a new Vehicle aggregate with status=available.
func NewVehicle(ownerID uuid.UUID, attrs Attributes, dailyRateCents int64, currency string) (*Vehicle, error) {
	if ownerID == uuid.Nil {
		return nil, domain.NewValidationError("owner ID is required")
	}
	if attrs.Make == "" {
		return nil, domain.NewValidationError("make is required")
	}
	if attrs.Model == "" {
		return nil, domain.NewValidationError("model is required")
	}
	if attrs.Year < 1900 || attrs.Year > time.Now().Year()+1 {
		return nil, domain.NewValidationError(fmt.Sprintf("invalid year: %d", attrs.Year))
	}
	if attrs.LicensePlate == "" {
		return nil, domain.NewValidationError("license plate is required")
	}
	if dailyRateCents <= 0 {
		return nil, domain.NewValidationError("daily rate must be positive")
	}
	if currency == "" {
		return nil, domain.NewValidationError("currency is required")
	}

	now := time.Now().UTC()
	return &Vehicle{
		id:             uuid.New(),
		ownerID:        ownerID,
		attrs:          attrs,
		dailyRateCents: dailyRateCents,
		currency:       currency,
		status:         StatusAvailable,
		version:        1,
		createdAt:      now,
		updatedAt:      now,
	}, nil
}

// ReconstructVehicle rebuilds a Vehicle from persistence data (no validation).
func ReconstructVehicle(
	id uuid.UUID,
	ownerID uuid.UUID,
	attrs Attributes,
	dailyRateCents int64,
	currency string,
	status VehicleStatus,
	version int64,
	createdAt time.Time,
	updatedAt time.Time,
) *Vehicle {
	return &Vehicle{
		id:             id,
		ownerID:        ownerID,
		attrs:          attrs,
		dailyRateCents: dailyRateCents,
		currency:       currency,
		status:         status,
		version:        version,
		createdAt:      createdAt,
		updatedAt:      updatedAt,
	}
}

// --- Getters ---

// ID returns the vehicle's unique identifier.
func (v *Vehicle) ID() uuid.UUID { return v.id }

// OwnerID returns the fleet owner's user ID.
func (v *Vehicle) OwnerID() uuid.UUID { return v.ownerID }

// Attrs returns the descriptive attributes.
func (v *Vehicle) Attrs() Attributes { return v.attrs }

// DailyRateCents returns the daily rental rate in cents.
func (v *Vehicle) DailyRateCents() int64 { return v.dailyRateCents }

// Currency returns the currency code.
func (v *Vehicle) Currency() string { return v.currency }

// Status returns the availability status.
func (v *Vehicle) Status() VehicleStatus { return v.status }

// Version returns the entity version for optimistic locking.
func (v *Vehicle) Version() int64 { return v.version }

// CreatedAt returns the creation timestamp.
func (v *Vehicle) CreatedAt() time.Time { return v.createdAt }

// UpdatedAt returns the last-updated timestamp.
func (v *Vehicle) UpdatedAt() time.Time { return v.updatedAt }

// IsBookable reports whether new booking requests may target this vehicle.
func (v *Vehicle) IsBookable() bool {
	return v.status == StatusAvailable
}

// --- Behavior ---

// UpdatePatch holds optional replacement values for a partial update.
type UpdatePatch struct {
	Make           *string
	Model          *string
	Year           *int
	VehicleType    *string
	Transmission   *string
	FuelType       *string
	Color          *string
	MileageKm      *int
	DailyRateCents *int64
}

// Apply applies the patch to the vehicle's mutable fields.
func (v *Vehicle) Apply(patch UpdatePatch) error {
	if patch.Make != nil {
		if *patch.Make == "" {
			return domain.NewValidationError("make cannot be empty")
		}
		v.attrs.Make = *patch.Make
	}
	if patch.Model != nil {
		if *patch.Model == "" {
			return domain.NewValidationError("model cannot be empty")
		}
		v.attrs.Model = *patch.Model
	}
	if patch.Year != nil {
		if *patch.Year < 1900 || *patch.Year > time.Now().Year()+1 {
			return domain.NewValidationError(fmt.Sprintf("invalid year: %d", *patch.Year))
		}
		v.attrs.Year = *patch.Year
	}
	if patch.VehicleType != nil {
		v.attrs.VehicleType = *patch.VehicleType
	}
	if patch.Transmission != nil {
		v.attrs.Transmission = *patch.Transmission
	}
	if patch.FuelType != nil {
		v.attrs.FuelType = *patch.FuelType
	}
	if patch.Color != nil {
		v.attrs.Color = *patch.Color
	}
	if patch.MileageKm != nil {
		if *patch.MileageKm < 0 {
			return domain.NewValidationError("mileage cannot be negative")
		}
		v.attrs.MileageKm = *patch.MileageKm
	}
	if patch.DailyRateCents != nil {
		if *patch.DailyRateCents <= 0 {
			return domain.NewValidationError("daily rate must be positive")
		}
		v.dailyRateCents = *patch.DailyRateCents
	}
	v.updatedAt = time.Now().UTC()
	return nil
}

// SetAvailability flips the vehicle between available and maintenance.
// Retired vehicles cannot be brought back through this path.
func (v *Vehicle) SetAvailability(status VehicleStatus) error {
	if status != StatusAvailable && status != StatusMaintenance {
		return domain.NewValidationError(fmt.Sprintf("availability must be %s or %s", StatusAvailable, StatusMaintenance))
	}
	if v.status == StatusRetired {
		return domain.NewInvalidStateError(string(v.status), string(status))
	}
	v.status = status
	v.updatedAt = time.Now().UTC()
	return nil
}

// Retire soft-deletes the vehicle. The caller must first verify that no live
// bookings reference it.
func (v *Vehicle) Retire() error {
	if v.status == StatusRetired {
		return domain.NewInvalidStateError(string(v.status), string(StatusRetired))
	}
	v.status = StatusRetired
	v.updatedAt = time.Now().UTC()
	return nil
}

// IncrementVersion bumps the version for optimistic locking.
func (v *Vehicle) IncrementVersion() {
	v.version++
	v.updatedAt = time.Now().UTC()
}
