package handler

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// HealthHandler reports process and database liveness.
type HealthHandler struct {
	DB *sql.DB
}

func NewHealthHandler(db *sql.DB) *HealthHandler {
	return &HealthHandler{DB: db}
}

// Check handles GET /health.
func (h *HealthHandler) Check(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	dbStatus := "up"
	if err := h.DB.PingContext(ctx); err != nil {
		dbStatus = "down"
	}
	status := http.StatusOK
	if dbStatus == "down" {
		status = http.StatusServiceUnavailable
	}
	return c.JSON(status, echo.Map{
		"status":   "ok",
		"database": dbStatus,
	})
}
