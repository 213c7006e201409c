package application

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	bookingDomain "github.com/laraibshahid/carrental/internal/domain/booking"
	vehicleDomain "github.com/laraibshahid/carrental/internal/domain/vehicle"
	"github.com/laraibshahid/carrental/pkg/domain"
)

// RegisterVehicleInput holds the data needed to register a vehicle.
type RegisterVehicleInput struct {
	Make           string `json:"make" binding:"required"`
	Model          string `json:"model" binding:"required"`
	Year           int    `json:"year" binding:"required"`
	LicensePlate   string `json:"license_plate" binding:"required"`
	VehicleType    string `json:"vehicle_type"`
	Transmission   string `json:"transmission"`
	FuelType       string `json:"fuel_type"`
	Color          string `json:"color"`
	MileageKm      int    `json:"mileage_km"`
	DailyRateCents int64  `json:"daily_rate_cents" binding:"required"`
	Currency       string `json:"currency" binding:"required"`
}

// UpdateVehicleInput holds optional replacement values for a partial update.
type UpdateVehicleInput struct {
	Make           *string `json:"make"`
	Model          *string `json:"model"`
	Year           *int    `json:"year"`
	VehicleType    *string `json:"vehicle_type"`
	Transmission   *string `json:"transmission"`
	FuelType       *string `json:"fuel_type"`
	Color          *string `json:"color"`
	MileageKm      *int    `json:"mileage_km"`
	DailyRateCents *int64  `json:"daily_rate_cents"`
}

// VehicleService is the registry: it owns vehicle records and their
// availability flag. It never touches bookings; conflict prevention belongs
// to the scheduler.
type VehicleService struct {
	vehicles vehicleDomain.VehicleRepository
	bookings bookingDomain.BookingRepository
	logger   *zap.Logger
}

// NewVehicleService creates a new VehicleService.
func NewVehicleService(
	vehicles vehicleDomain.VehicleRepository,
	bookings bookingDomain.BookingRepository,
	logger *zap.Logger,
) *VehicleService {
	return &VehicleService{
		vehicles: vehicles,
		bookings: bookings,
		logger:   logger,
	}
}

// Register creates a new vehicle owned by the caller.
func (s *VehicleService) Register(ctx context.Context, ownerID uuid.UUID, req RegisterVehicleInput) (*VehicleDTO, error) {
	attrs := vehicleDomain.Attributes{
		Make:         req.Make,
		Model:        req.Model,
		Year:         req.Year,
		LicensePlate: req.LicensePlate,
		VehicleType:  req.VehicleType,
		Transmission: req.Transmission,
		FuelType:     req.FuelType,
		Color:        req.Color,
		MileageKm:    req.MileageKm,
	}

	veh, err := vehicleDomain.NewVehicle(ownerID, attrs, req.DailyRateCents, req.Currency)
	if err != nil {
		return nil, err
	}

	if err := s.vehicles.Save(ctx, veh); err != nil {
		return nil, err
	}

	result := toVehicleDTO(veh)
	return &result, nil
}

// Update applies a partial update to a vehicle the caller owns.
func (s *VehicleService) Update(ctx context.Context, vehicleID, callerID uuid.UUID, req UpdateVehicleInput) (*VehicleDTO, error) {
	veh, err := s.ownedVehicle(ctx, vehicleID, callerID)
	if err != nil {
		return nil, err
	}

	patch := vehicleDomain.UpdatePatch{
		Make:           req.Make,
		Model:          req.Model,
		Year:           req.Year,
		VehicleType:    req.VehicleType,
		Transmission:   req.Transmission,
		FuelType:       req.FuelType,
		Color:          req.Color,
		MileageKm:      req.MileageKm,
		DailyRateCents: req.DailyRateCents,
	}
	if err := veh.Apply(patch); err != nil {
		return nil, err
	}

	veh.IncrementVersion()
	if err := s.vehicles.Update(ctx, veh); err != nil {
		return nil, err
	}

	result := toVehicleDTO(veh)
	return &result, nil
}

// SetAvailability flips an owned vehicle between available and maintenance.
// The flag records manual withdrawal only; it is not consulted for overlap
// prevention.
func (s *VehicleService) SetAvailability(ctx context.Context, vehicleID, callerID uuid.UUID, status vehicleDomain.VehicleStatus) (*VehicleDTO, error) {
	veh, err := s.ownedVehicle(ctx, vehicleID, callerID)
	if err != nil {
		return nil, err
	}

	if err := veh.SetAvailability(status); err != nil {
		return nil, err
	}

	veh.IncrementVersion()
	if err := s.vehicles.Update(ctx, veh); err != nil {
		return nil, err
	}

	result := toVehicleDTO(veh)
	return &result, nil
}

// Retire soft-deletes an owned vehicle. Retirement is blocked while live
// bookings still reference the vehicle.
func (s *VehicleService) Retire(ctx context.Context, vehicleID, callerID uuid.UUID) (*VehicleDTO, error) {
	veh, err := s.ownedVehicle(ctx, vehicleID, callerID)
	if err != nil {
		return nil, err
	}

	live, err := s.bookings.CountLiveForVehicle(ctx, vehicleID)
	if err != nil {
		return nil, err
	}
	if live > 0 {
		return nil, domain.NewConflictError("vehicle has live bookings and cannot be retired")
	}

	if err := veh.Retire(); err != nil {
		return nil, err
	}

	veh.IncrementVersion()
	if err := s.vehicles.Update(ctx, veh); err != nil {
		return nil, err
	}

	result := toVehicleDTO(veh)
	return &result, nil
}

// Get retrieves a single vehicle by ID.
func (s *VehicleService) Get(ctx context.Context, vehicleID uuid.UUID) (*VehicleDTO, error) {
	veh, err := s.vehicles.FindByID(ctx, vehicleID)
	if err != nil {
		return nil, err
	}
	result := toVehicleDTO(veh)
	return &result, nil
}

// List retrieves vehicles matching the filter with pagination.
func (s *VehicleService) List(ctx context.Context, filter vehicleDomain.ListFilter, page, limit int) (*domain.PaginatedResult[VehicleDTO], error) {
	vehicles, total, err := s.vehicles.List(ctx, filter, page, limit)
	if err != nil {
		return nil, err
	}

	dtos := make([]VehicleDTO, len(vehicles))
	for i, v := range vehicles {
		dtos[i] = toVehicleDTO(v)
	}

	result := domain.NewPaginatedResult(dtos, total, page, limit)
	return &result, nil
}

func (s *VehicleService) ownedVehicle(ctx context.Context, vehicleID, callerID uuid.UUID) (*vehicleDomain.Vehicle, error) {
	veh, err := s.vehicles.FindByID(ctx, vehicleID)
	if err != nil {
		return nil, err
	}
	if veh.OwnerID() != callerID {
		return nil, domain.NewForbiddenError("vehicle does not belong to this user")
	}
	return veh, nil
}
