package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/Manikandan063/air-ambulance-backend/internal/model"
	"github.com/Manikandan063/air-ambulance-backend/internal/repository"
)

// stubPatientDirectory implements PatientDirectory over an in-memory map.
type stubPatientDirectory struct {
	patients map[uint64]*model.Patient
	critical int64
}

func (s *stubPatientDirectory) Create(ctx context.Context, p *model.Patient) error {
	p.ID = uint64(len(s.patients) + 1)
	s.patients[p.ID] = p
	return nil
}

func (s *stubPatientDirectory) GetByID(ctx context.Context, id uint64) (*model.Patient, error) {
	p, ok := s.patients[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return p, nil
}

func (s *stubPatientDirectory) List(ctx context.Context, skip, limit int) ([]model.Patient, error) {
	out := make([]model.Patient, 0, len(s.patients))
	for _, p := range s.patients {
		out = append(out, *p)
	}
	return out, nil
}

func (s *stubPatientDirectory) CountByAcuity(ctx context.Context, level string) (int64, error) {
	return s.critical, nil
}

func (s *stubPatientDirectory) UpdateFields(ctx context.Context, id uint64, updates map[string]interface{}) error {
	if _, ok := s.patients[id]; !ok {
		return repository.ErrNotFound
	}
	return nil
}

func (s *stubPatientDirectory) Delete(ctx context.Context, id uint64) error {
	if _, ok := s.patients[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.patients, id)
	return nil
}

func TestPatientCriticalCount(t *testing.T) {
	dir := &stubPatientDirectory{patients: map[uint64]*model.Patient{}, critical: 3}
	h := NewPatientHandler(dir)
	e := echo.New()

	req, rec := request(http.MethodGet, "/api/patients/critical/count", "")
	c := e.NewContext(req, rec)
	c.Set("user", &model.User{ID: 1, Role: model.RoleDoctor})

	assert.NoError(t, h.CriticalCount(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"critical_patients_count":3}`, rec.Body.String())
}

func TestPatientGet_NotFound(t *testing.T) {
	h := NewPatientHandler(&stubPatientDirectory{patients: map[uint64]*model.Patient{}})
	e := echo.New()

	req, rec := request(http.MethodGet, "/api/patients/12", "")
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("12")

	assert.NoError(t, h.Get(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
