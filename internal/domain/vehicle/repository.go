package vehicle

import (
	"context"

	"github.com/google/uuid"
)

// ListFilter narrows a vehicle listing. Nil pointer fields are not applied.
type ListFilter struct {
	OwnerID     *uuid.UUID
	Status      *VehicleStatus
	VehicleType *string
}

// VehicleRepository defines the persistence contract for vehicle aggregates.
type VehicleRepository interface {
	// FindByID retrieves a vehicle by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Vehicle, error)

	// List retrieves vehicles matching the filter with pagination.
	List(ctx context.Context, filter ListFilter, page, limit int) ([]*Vehicle, int64, error)

	// Save persists a new vehicle.
	Save(ctx context.Context, v *Vehicle) error

	// Update persists changes to an existing vehicle with optimistic locking.
	Update(ctx context.Context, v *Vehicle) error
}
