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

// HospitalHandler manages the hospital registry used when choosing pickup
// and destination facilities.
type HospitalHandler struct {
	Hospitals *repository.HospitalRepo
}

func NewHospitalHandler(r *repository.HospitalRepo) *HospitalHandler {
	return &HospitalHandler{Hospitals: r}
}

type hospitalReq struct {
	Name                    string  `json:"name"`
	Address                 string  `json:"address"`
	Latitude                float64 `json:"latitude"`
	Longitude               float64 `json:"longitude"`
	LevelOfCare             string  `json:"level_of_care"`
	ICUCapacity             int     `json:"icu_capacity"`
	ContactName             string  `json:"contact_name"`
	ContactPhone            string  `json:"contact_phone"`
	ContactEmail            string  `json:"contact_email"`
	PreferredPickupLocation string  `json:"preferred_pickup_location"`
}

type hospitalResp struct {
	ID uint64 `json:"id"`
	hospitalReq
}

func toHospitalResp(h *model.Hospital) hospitalResp {
	return hospitalResp{
		ID: h.ID,
		hospitalReq: hospitalReq{
			Name:                    h.Name,
			Address:                 h.Address,
			Latitude:                h.Latitude,
			Longitude:               h.Longitude,
			LevelOfCare:             h.LevelOfCare,
			ICUCapacity:             h.ICUCapacity,
			ContactName:             h.ContactName,
			ContactPhone:            h.ContactPhone,
			ContactEmail:            h.ContactEmail,
			PreferredPickupLocation: h.PreferredPickupLocation,
		},
	}
}

// Create handles POST /api/hospitals.
func (h *HospitalHandler) Create(c echo.Context) error {
	var req hospitalReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if strings.TrimSpace(req.Name) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name required"})
	}
	hospital := &model.Hospital{
		Name:                    req.Name,
		Address:                 req.Address,
		Latitude:                req.Latitude,
		Longitude:               req.Longitude,
		LevelOfCare:             req.LevelOfCare,
		ICUCapacity:             req.ICUCapacity,
		ContactName:             req.ContactName,
		ContactPhone:            req.ContactPhone,
		ContactEmail:            req.ContactEmail,
		PreferredPickupLocation: req.PreferredPickupLocation,
	}
	if hospital.LevelOfCare == "" {
		hospital.LevelOfCare = model.CareBasic
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Hospitals.Create(ctx, hospital); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create hospital failed"})
	}
	return c.JSON(http.StatusCreated, toHospitalResp(hospital))
}

// List handles GET /api/hospitals.
func (h *HospitalHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	hospitals, err := h.Hospitals.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list hospitals failed"})
	}
	out := make([]hospitalResp, 0, len(hospitals))
	for i := range hospitals {
		out = append(out, toHospitalResp(&hospitals[i]))
	}
	return c.JSON(http.StatusOK, out)
}

// Get handles GET /api/hospitals/:id.
func (h *HospitalHandler) Get(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid hospital id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	hospital, err := h.Hospitals.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "hospital not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, toHospitalResp(hospital))
}

// Update handles PUT /api/hospitals/:id with a full replacement body.
func (h *HospitalHandler) Update(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid hospital id"})
	}
	var req hospitalReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if strings.TrimSpace(req.Name) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name required"})
	}

	updates := map[string]interface{}{
		"name":                      req.Name,
		"address":                   req.Address,
		"latitude":                  req.Latitude,
		"longitude":                 req.Longitude,
		"level_of_care":             req.LevelOfCare,
		"icu_capacity":              req.ICUCapacity,
		"contact_name":              req.ContactName,
		"contact_phone":             req.ContactPhone,
		"contact_email":             req.ContactEmail,
		"preferred_pickup_location": req.PreferredPickupLocation,
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Hospitals.UpdateFields(ctx, id, updates); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "hospital not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	hospital, err := h.Hospitals.GetByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "reload failed"})
	}
	return c.JSON(http.StatusOK, toHospitalResp(hospital))
}

// Delete handles DELETE /api/hospitals/:id.
func (h *HospitalHandler) Delete(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid hospital id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Hospitals.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "hospital not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
