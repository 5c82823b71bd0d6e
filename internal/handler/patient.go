package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Manikandan063/air-ambulance-backend/internal/model"
	"github.com/Manikandan063/air-ambulance-backend/internal/repository"
)

// PatientDirectory is the persistence surface the patient handlers need.
// Satisfied by *repository.PatientRepo.
type PatientDirectory interface {
	Create(ctx context.Context, p *model.Patient) error
	GetByID(ctx context.Context, id uint64) (*model.Patient, error)
	List(ctx context.Context, skip, limit int) ([]model.Patient, error)
	CountByAcuity(ctx context.Context, level string) (int64, error)
	UpdateFields(ctx context.Context, id uint64, updates map[string]interface{}) error
	Delete(ctx context.Context, id uint64) error
}

// PatientHandler manages patient records referenced by bookings.
type PatientHandler struct {
	Patients PatientDirectory
}

func NewPatientHandler(p PatientDirectory) *PatientHandler {
	return &PatientHandler{Patients: p}
}

type patientReq struct {
	FullName            string  `json:"full_name"`
	MedicalRecordNumber string  `json:"medical_record_number"`
	AcuityLevel         string  `json:"acuity_level"`
	DateOfBirth         *string `json:"date_of_birth"` // "2006-01-02"
}

type patientResp struct {
	ID                  uint64  `json:"id"`
	FullName            string  `json:"full_name"`
	MedicalRecordNumber string  `json:"medical_record_number"`
	AcuityLevel         string  `json:"acuity_level"`
	DateOfBirth         *string `json:"date_of_birth"`
	CreatedBy           uint64  `json:"created_by"`
}

func toPatientResp(p *model.Patient) patientResp {
	out := patientResp{
		ID:                  p.ID,
		FullName:            p.FullName,
		MedicalRecordNumber: p.MedicalRecordNumber,
		AcuityLevel:         p.AcuityLevel,
		CreatedBy:           p.CreatedBy,
	}
	if p.DateOfBirth != nil {
		d := p.DateOfBirth.Format("2006-01-02")
		out.DateOfBirth = &d
	}
	return out
}

// Create handles POST /api/patients.
func (h *PatientHandler) Create(c echo.Context) error {
	actor, ok := currentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req patientReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if strings.TrimSpace(req.FullName) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "full_name required"})
	}
	p := &model.Patient{
		FullName:            req.FullName,
		MedicalRecordNumber: req.MedicalRecordNumber,
		AcuityLevel:         req.AcuityLevel,
		CreatedBy:           actor.ID,
	}
	if p.AcuityLevel == "" {
		p.AcuityLevel = model.AcuityLow
	}
	if req.DateOfBirth != nil && *req.DateOfBirth != "" {
		dob, err := time.Parse("2006-01-02", *req.DateOfBirth)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "date_of_birth must be YYYY-MM-DD"})
		}
		p.DateOfBirth = &dob
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Patients.Create(ctx, p); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create patient failed"})
	}
	return c.JSON(http.StatusCreated, toPatientResp(p))
}

// List handles GET /api/patients.
func (h *PatientHandler) List(c echo.Context) error {
	skip, _ := strconv.Atoi(c.QueryParam("skip"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	patients, err := h.Patients.List(ctx, skip, limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list patients failed"})
	}
	out := make([]patientResp, 0, len(patients))
	for i := range patients {
		out = append(out, toPatientResp(&patients[i]))
	}
	return c.JSON(http.StatusOK, out)
}

// Get handles GET /api/patients/:id.
func (h *PatientHandler) Get(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid patient id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	p, err := h.Patients.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "patient not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, toPatientResp(p))
}

// CriticalCount handles GET /api/patients/critical/count.
func (h *PatientHandler) CriticalCount(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	n, err := h.Patients.CountByAcuity(ctx, model.AcuityCritical)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "count failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"critical_patients_count": n})
}

type patientPatch struct {
	FullName            *string `json:"full_name"`
	MedicalRecordNumber *string `json:"medical_record_number"`
	AcuityLevel         *string `json:"acuity_level"`
	DateOfBirth         *string `json:"date_of_birth"`
}

// Update handles PUT /api/patients/:id.
func (h *PatientHandler) Update(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid patient id"})
	}
	var patch patientPatch
	if err := c.Bind(&patch); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	updates := map[string]interface{}{}
	if patch.FullName != nil {
		updates["full_name"] = *patch.FullName
	}
	if patch.MedicalRecordNumber != nil {
		updates["medical_record_number"] = *patch.MedicalRecordNumber
	}
	if patch.AcuityLevel != nil {
		updates["acuity_level"] = *patch.AcuityLevel
	}
	if patch.DateOfBirth != nil {
		dob, err := time.Parse("2006-01-02", *patch.DateOfBirth)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "date_of_birth must be YYYY-MM-DD"})
		}
		updates["date_of_birth"] = dob
	}
	if len(updates) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "no changes"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Patients.UpdateFields(ctx, id, updates); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "patient not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	p, err := h.Patients.GetByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "reload failed"})
	}
	return c.JSON(http.StatusOK, toPatientResp(p))
}

// Delete handles DELETE /api/patients/:id. Superadmin only via the router.
func (h *PatientHandler) Delete(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid patient id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Patients.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "patient not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
