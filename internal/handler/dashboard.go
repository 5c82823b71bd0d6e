package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Manikandan063/air-ambulance-backend/internal/booking"
)

// DashboardHandler serves the operations overview widgets.
type DashboardHandler struct {
	Svc *booking.Service
}

func NewDashboardHandler(svc *booking.Service) *DashboardHandler {
	return &DashboardHandler{Svc: svc}
}

// RecentBookings handles GET /api/dashboard/recent-bookings. The list is
// scoped by role through the booking service, so hospital staff only see
// their own traffic.
func (h *DashboardHandler) RecentBookings(c echo.Context) error {
	u, ok := currentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	limit := 10
	if v := c.QueryParam("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 50 {
			limit = n
		}
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	list, err := h.Svc.List(ctx, booking.ListFilter{Limit: limit}, u)
	if err != nil {
		return bookingError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"recent_bookings": list})
}

// ActivityTransfers handles GET /api/dashboard/activity-transfers. It
// renders the last 20 touched bookings as a shared activity feed; unlike
// recent-bookings this view is not scoped per creator.
func (h *DashboardHandler) ActivityTransfers(c echo.Context) error {
	if _, ok := currentUser(c); !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	activities, err := h.Svc.ActivityTransfers(ctx, 20)
	if err != nil {
		return bookingError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"activities": activities})
}
