package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Manikandan063/air-ambulance-backend/internal/booking"
	"github.com/Manikandan063/air-ambulance-backend/internal/model"
)

// BookingHandler exposes the booking lifecycle over HTTP. All domain
// decisions live in the service; the handler binds, parses and maps
// errors to status codes.
type BookingHandler struct {
	Svc *booking.Service
}

func NewBookingHandler(svc *booking.Service) *BookingHandler {
	return &BookingHandler{Svc: svc}
}

// currentUser returns the authenticated user stored by the auth
// middleware. The ok flag is false only when a route was wired without
// Authenticate, which is a programming error.
func currentUser(c echo.Context) (*model.User, bool) {
	u, ok := c.Get("user").(*model.User)
	return u, ok
}

// bookingError translates service errors into the HTTP contract.
func bookingError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, booking.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "not enough permissions"})
	case errors.Is(err, booking.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	case errors.Is(err, booking.ErrInvalidInput):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	c.Logger().Errorf("booking: %v", err)
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}

func parseID(c echo.Context, name string) (uint64, error) {
	return strconv.ParseUint(c.Param(name), 10, 64)
}

// Create handles POST /api/bookings.
func (h *BookingHandler) Create(c echo.Context) error {
	u, ok := currentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var in booking.CreateInput
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	b, err := h.Svc.Create(ctx, in, u)
	if err != nil {
		return bookingError(c, err)
	}
	return c.JSON(http.StatusOK, b)
}

// List handles GET /api/bookings with optional status, skip and limit
// query parameters.
func (h *BookingHandler) List(c echo.Context) error {
	u, ok := currentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	f := booking.ListFilter{Status: c.QueryParam("status")}
	if v := c.QueryParam("skip"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			f.Skip = n
		}
	}
	if v := c.QueryParam("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			f.Limit = n
		}
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	list, err := h.Svc.List(ctx, f, u)
	if err != nil {
		return bookingError(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

// Get handles GET /api/bookings/:id.
func (h *BookingHandler) Get(c echo.Context) error {
	u, ok := currentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	detail, err := h.Svc.Get(ctx, id, u)
	if err != nil {
		return bookingError(c, err)
	}
	return c.JSON(http.StatusOK, detail)
}

// Update handles PUT /api/bookings/:id with a partial patch body.
func (h *BookingHandler) Update(c echo.Context) error {
	u, ok := currentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	var in booking.UpdateInput
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	b, err := h.Svc.Update(ctx, id, in, u)
	if err != nil {
		return bookingError(c, err)
	}
	return c.JSON(http.StatusOK, b)
}

// Emergency handles PUT /api/bookings/:id/emergency.
func (h *BookingHandler) Emergency(c echo.Context) error {
	u, ok := currentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	b, err := h.Svc.EscalateEmergency(ctx, id, u)
	if err != nil {
		return bookingError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Emergency escalation triggered",
		"booking": b,
	})
}

// PendingCount handles GET /api/bookings/pending/count.
func (h *BookingHandler) PendingCount(c echo.Context) error {
	u, ok := currentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	n, err := h.Svc.PendingCount(ctx, u)
	if err != nil {
		return bookingError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"pending_approvals_count": n})
}

// CompletedStats handles GET /api/bookings/completed/stats.
func (h *BookingHandler) CompletedStats(c echo.Context) error {
	u, ok := currentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	stats, err := h.Svc.CompletedStats(ctx, u)
	if err != nil {
		return bookingError(c, err)
	}
	return c.JSON(http.StatusOK, stats)
}
