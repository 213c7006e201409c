package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/laraibshahid/carrental/internal/application"
	"github.com/laraibshahid/carrental/pkg/auth"
	"github.com/laraibshahid/carrental/pkg/middleware"
	"github.com/laraibshahid/carrental/pkg/response"
)

// AdminHandler handles HTTP requests for admin operations.
type AdminHandler struct {
	bookings *application.BookingService
	queries  *application.QueryService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(bookings *application.BookingService, queries *application.QueryService) *AdminHandler {
	return &AdminHandler{bookings: bookings, queries: queries}
}

// RegisterRoutes registers all admin routes on the given router group.
func (h *AdminHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	admin := r.Group("/api/v1/admin")
	admin.Use(middleware.AuthMiddleware(jwtManager), middleware.RequireRole(auth.RoleAdmin))
	{
		admin.GET("/bookings", h.ListAllBookings)
		admin.GET("/bookings/stats", h.GetBookingStats)
		admin.POST("/bookings/:id/activate", h.ActivateBooking)
		admin.POST("/bookings/:id/complete", h.CompleteBooking)
		admin.POST("/sweep", h.RunSweep)
	}
}

// ListAllBookings handles GET /api/v1/admin/bookings.
func (h *AdminHandler) ListAllBookings(c *gin.Context) {
	page, limit := parsePagination(c)

	result, err := h.queries.ListAll(c.Request.Context(), page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, result.Items, result.Total, result.Page, result.Limit)
}

// GetBookingStats handles GET /api/v1/admin/bookings/stats.
func (h *AdminHandler) GetBookingStats(c *gin.Context) {
	result, err := h.queries.GetBookingStats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// ActivateBooking handles POST /api/v1/admin/bookings/:id/activate. The call
// is a no-op until the booking is confirmed and its start has passed.
func (h *AdminHandler) ActivateBooking(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid booking ID")
		return
	}

	result, err := h.bookings.Activate(c.Request.Context(), bookingID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// CompleteBooking handles POST /api/v1/admin/bookings/:id/complete. The call
// is a no-op until the booking is active and its end has passed.
func (h *AdminHandler) CompleteBooking(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid booking ID")
		return
	}

	result, err := h.bookings.Complete(c.Request.Context(), bookingID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// RunSweep handles POST /api/v1/admin/sweep, forcing a lifecycle sweep
// outside the ticker schedule.
func (h *AdminHandler) RunSweep(c *gin.Context) {
	activated, completed, err := h.bookings.SweepLifecycle(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{
		"activated": activated,
		"completed": completed,
	})
}
