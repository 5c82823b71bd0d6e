package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Manikandan063/air-ambulance-backend/internal/model"
	"github.com/Manikandan063/air-ambulance-backend/internal/repository"
)

// AircraftHandler manages the fleet registry.
type AircraftHandler struct {
	Aircraft *repository.AircraftRepo
}

func NewAircraftHandler(r *repository.AircraftRepo) *AircraftHandler {
	return &AircraftHandler{Aircraft: r}
}

type aircraftReq struct {
	TailNumber   string `json:"tail_number"`
	Model        string `json:"model"`
	BaseLocation string `json:"base_location"`
	RangeKM      int    `json:"range_km"`
	IsAvailable  *bool  `json:"is_available"`
}

type aircraftResp struct {
	ID           uint64 `json:"id"`
	TailNumber   string `json:"tail_number"`
	Model        string `json:"model"`
	BaseLocation string `json:"base_location"`
	RangeKM      int    `json:"range_km"`
	IsAvailable  bool   `json:"is_available"`
}

func toAircraftResp(a *model.Aircraft) aircraftResp {
	return aircraftResp{
		ID:           a.ID,
		TailNumber:   a.TailNumber,
		Model:        a.Model,
		BaseLocation: a.BaseLocation,
		RangeKM:      a.RangeKM,
		IsAvailable:  a.IsAvailable,
	}
}

// Create handles POST /api/aircraft.
func (h *AircraftHandler) Create(c echo.Context) error {
	var req aircraftReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if strings.TrimSpace(req.TailNumber) == "" || strings.TrimSpace(req.Model) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "tail_number and model required"})
	}
	a := &model.Aircraft{
		TailNumber:   req.TailNumber,
		Model:        req.Model,
		BaseLocation: req.BaseLocation,
		RangeKM:      req.RangeKM,
		IsAvailable:  true,
	}
	if req.IsAvailable != nil {
		a.IsAvailable = *req.IsAvailable
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Aircraft.Create(ctx, a); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create aircraft failed"})
	}
	return c.JSON(http.StatusCreated, toAircraftResp(a))
}

// List handles GET /api/aircraft. ?available=true narrows to the idle
// fleet.
func (h *AircraftHandler) List(c echo.Context) error {
	availableOnly := c.QueryParam("available") == "true"

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	fleet, err := h.Aircraft.List(ctx, availableOnly)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list aircraft failed"})
	}
	out := make([]aircraftResp, 0, len(fleet))
	for i := range fleet {
		out = append(out, toAircraftResp(&fleet[i]))
	}
	return c.JSON(http.StatusOK, out)
}

// Get handles GET /api/aircraft/:id.
func (h *AircraftHandler) Get(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid aircraft id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	a, err := h.Aircraft.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "aircraft not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, toAircraftResp(a))
}

type aircraftPatch struct {
	TailNumber   *string `json:"tail_number"`
	Model        *string `json:"model"`
	BaseLocation *string `json:"base_location"`
	RangeKM      *int    `json:"range_km"`
	IsAvailable  *bool   `json:"is_available"`
}

// Update handles PUT /api/aircraft/:id.
func (h *AircraftHandler) Update(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid aircraft id"})
	}
	var patch aircraftPatch
	if err := c.Bind(&patch); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	updates := map[string]interface{}{}
	if patch.TailNumber != nil {
		updates["tail_number"] = *patch.TailNumber
	}
	if patch.Model != nil {
		updates["model"] = *patch.Model
	}
	if patch.BaseLocation != nil {
		updates["base_location"] = *patch.BaseLocation
	}
	if patch.RangeKM != nil {
		updates["range_km"] = *patch.RangeKM
	}
	if patch.IsAvailable != nil {
		updates["is_available"] = *patch.IsAvailable
	}
	if len(updates) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "no changes"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Aircraft.UpdateFields(ctx, id, updates); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "aircraft not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	a, err := h.Aircraft.GetByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "reload failed"})
	}
	return c.JSON(http.StatusOK, toAircraftResp(a))
}

// Delete handles DELETE /api/aircraft/:id.
func (h *AircraftHandler) Delete(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid aircraft id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Aircraft.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "aircraft not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
