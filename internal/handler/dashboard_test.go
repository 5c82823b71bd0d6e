package handler

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/Manikandan063/air-ambulance-backend/internal/booking"
	"github.com/Manikandan063/air-ambulance-backend/internal/model"
)

func TestDashboardActivityTransfers(t *testing.T) {
	store := &stubStore{bookings: map[uint64]*model.Booking{
		4: {ID: 4, Status: model.StatusApproved, UpdatedAt: time.Now().UTC()},
	}}
	svc := booking.NewService(store, stubPatients{}, nil, nil, nil)
	h := NewDashboardHandler(svc)
	e := echo.New()

	req, rec := request(http.MethodGet, "/api/dashboard/activity-transfers", "")
	c := e.NewContext(req, rec)
	c.Set("user", &model.User{ID: 9, Role: model.RoleParamedic})

	assert.NoError(t, h.ActivityTransfers(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Activities []booking.Activity `json:"activities"`
	}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body.Activities, 1)
	assert.Equal(t, uint64(4), body.Activities[0].ID)
	assert.Equal(t, "booking_update", body.Activities[0].Type)
	assert.Equal(t, "Booking approved", body.Activities[0].Description)
}

func TestDashboardActivityTransfers_Unauthorized(t *testing.T) {
	svc := booking.NewService(&stubStore{bookings: map[uint64]*model.Booking{}}, stubPatients{}, nil, nil, nil)
	h := NewDashboardHandler(svc)
	e := echo.New()

	req, rec := request(http.MethodGet, "/api/dashboard/activity-transfers", "")
	c := e.NewContext(req, rec)

	assert.NoError(t, h.ActivityTransfers(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
