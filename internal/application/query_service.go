package application

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	bookingDomain "github.com/laraibshahid/carrental/internal/domain/booking"
	vehicleDomain "github.com/laraibshahid/carrental/internal/domain/vehicle"
	"github.com/laraibshahid/carrental/pkg/domain"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// QueryService is the read side over committed bookings. It performs no
// mutations; results are ordered by period start ascending, then ID ascending
// for a deterministic tiebreak.
type QueryService struct {
	bookings bookingDomain.BookingRepository
	vehicles vehicleDomain.VehicleRepository
	logger   *zap.Logger
}

// NewQueryService creates a new QueryService.
func NewQueryService(
	bookings bookingDomain.BookingRepository,
	vehicles vehicleDomain.VehicleRepository,
	logger *zap.Logger,
) *QueryService {
	return &QueryService{
		bookings: bookings,
		vehicles: vehicles,
		logger:   logger,
	}
}

// ClampPage bounds pagination inputs to sane values.
func ClampPage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	return page, limit
}

// Search retrieves bookings matching the filter on behalf of callerID.
// Pending bookings belonging to other users are hidden unless the caller
// owns the vehicle.
func (s *QueryService) Search(ctx context.Context, callerID uuid.UUID, filter bookingDomain.SearchFilter, page, limit int) (*domain.PaginatedResult[BookingDTO], error) {
	page, limit = ClampPage(page, limit)
	filter.VisibleTo = callerID

	bookings, total, err := s.bookings.Search(ctx, filter, page, limit)
	if err != nil {
		return nil, err
	}

	dtos := make([]BookingDTO, len(bookings))
	for i, bk := range bookings {
		dtos[i] = toBookingDTO(bk)
	}

	result := domain.NewPaginatedResult(dtos, total, page, limit)
	return &result, nil
}

// GetBooking retrieves a single booking, applying the same pending-visibility
// rule as Search.
func (s *QueryService) GetBooking(ctx context.Context, bookingID, callerID uuid.UUID) (*BookingDTO, error) {
	bk, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if bk.Status() == bookingDomain.StatusPending && bk.RequesterID() != callerID {
		veh, verr := s.vehicles.FindByID(ctx, bk.VehicleID())
		if verr != nil {
			return nil, verr
		}
		if veh.OwnerID() != callerID {
			return nil, domain.NewNotFoundError("booking", bookingID.String())
		}
	}

	result := toBookingDTO(bk)
	return &result, nil
}

// --- Admin methods ---

// BookingStatsDTO holds booking statistics for the admin dashboard.
type BookingStatsDTO struct {
	TotalBookings int64            `json:"total_bookings"`
	ByStatus      map[string]int64 `json:"by_status"`
}

// ListAll returns a paginated, unrestricted list of bookings (admin).
func (s *QueryService) ListAll(ctx context.Context, page, limit int) (*domain.PaginatedResult[BookingDTO], error) {
	page, limit = ClampPage(page, limit)

	bookings, total, err := s.bookings.Search(ctx, bookingDomain.SearchFilter{}, page, limit)
	if err != nil {
		return nil, err
	}

	dtos := make([]BookingDTO, len(bookings))
	for i, bk := range bookings {
		dtos[i] = toBookingDTO(bk)
	}

	result := domain.NewPaginatedResult(dtos, total, page, limit)
	return &result, nil
}

// GetBookingStats returns aggregate booking statistics (admin).
func (s *QueryService) GetBookingStats(ctx context.Context) (*BookingStatsDTO, error) {
	counts, err := s.bookings.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}

	var total int64
	for _, c := range counts {
		total += c
	}

	return &BookingStatsDTO{
		TotalBookings: total,
		ByStatus:      counts,
	}, nil
}
