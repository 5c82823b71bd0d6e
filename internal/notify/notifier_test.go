package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/Manikandan063/air-ambulance-backend/internal/model"
)

type MockUserStore struct {
	mock.Mock
}

func (m *MockUserStore) ListActiveByRoles(ctx context.Context, roles []string) ([]model.User, error) {
	args := m.Called(ctx, roles)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.User), args.Error(1)
}

func TestRecipients_CreatedIncludesDispatchGroup(t *testing.T) {
	users := &MockUserStore{}
	svc := NewService(users, "amqp://test")

	ctx := context.Background()
	actor := &model.User{ID: 1, Email: "staff@example.com", Role: model.RoleHospitalStaff}
	users.On("ListActiveByRoles", ctx, dispatchRoles).Return([]model.User{
		{ID: 2, Email: "dispatch@example.com", Role: model.RoleDispatcher},
		{ID: 3, Email: "admin@example.com", Role: model.RoleSuperadmin},
	}, nil).Once()

	got := svc.Recipients(ctx, &model.Booking{Urgency: model.UrgencyStable}, actor, KindCreated)

	assert.Len(t, got, 3)
	assert.Equal(t, uint64(1), got[0].ID) // actor first
	assert.Equal(t, uint64(2), got[1].ID)
	assert.Equal(t, uint64(3), got[2].ID)
	users.AssertExpectations(t)
}

func TestRecipients_DedupPreservesFirstSeenOrder(t *testing.T) {
	users := &MockUserStore{}
	svc := NewService(users, "amqp://test")

	ctx := context.Background()
	// The actor is a dispatcher, so the dispatch lookup returns them again.
	actor := &model.User{ID: 2, Email: "dispatch@example.com", Role: model.RoleDispatcher}
	users.On("ListActiveByRoles", ctx, dispatchRoles).Return([]model.User{
		{ID: 2, Email: "dispatch@example.com", Role: model.RoleDispatcher},
		{ID: 3, Email: "admin@example.com", Role: model.RoleSuperadmin},
	}, nil).Once()

	got := svc.Recipients(ctx, &model.Booking{Urgency: model.UrgencyStable}, actor, KindUpdated)

	assert.Len(t, got, 2)
	assert.Equal(t, uint64(2), got[0].ID)
	assert.Equal(t, uint64(3), got[1].ID)
}

func TestRecipients_CriticalUrgencyAddsMedicalTeam(t *testing.T) {
	users := &MockUserStore{}
	svc := NewService(users, "amqp://test")

	ctx := context.Background()
	actor := &model.User{ID: 1, Role: model.RoleDispatcher}
	users.On("ListActiveByRoles", ctx, dispatchRoles).Return([]model.User{}, nil).Once()
	users.On("ListActiveByRoles", ctx, medicalRoles).Return([]model.User{
		{ID: 10, Email: "doc@example.com", Role: model.RoleDoctor},
		{ID: 11, Email: "medic@example.com", Role: model.RoleParamedic},
	}, nil).Once()

	got := svc.Recipients(ctx, &model.Booking{Urgency: model.UrgencyCritical}, actor, KindUpdated)

	assert.Len(t, got, 3)
	assert.Equal(t, uint64(10), got[1].ID)
	assert.Equal(t, uint64(11), got[2].ID)
	users.AssertExpectations(t)
}

func TestRecipients_EmergencyKindAddsMedicalTeam(t *testing.T) {
	users := &MockUserStore{}
	svc := NewService(users, "amqp://test")

	ctx := context.Background()
	actor := &model.User{ID: 1, Role: model.RoleDispatcher}
	users.On("ListActiveByRoles", ctx, dispatchRoles).Return([]model.User{}, nil).Once()
	users.On("ListActiveByRoles", ctx, medicalRoles).Return([]model.User{
		{ID: 10, Role: model.RoleDoctor},
	}, nil).Once()

	got := svc.Recipients(ctx, &model.Booking{Urgency: model.UrgencyStable}, actor, KindEmergency)

	assert.Len(t, got, 2)
	users.AssertExpectations(t)
}

func TestRecipients_LookupFailureFallsBackToActor(t *testing.T) {
	users := &MockUserStore{}
	svc := NewService(users, "amqp://test")

	ctx := context.Background()
	actor := &model.User{ID: 1, Email: "staff@example.com", Role: model.RoleHospitalStaff}
	users.On("ListActiveByRoles", ctx, dispatchRoles).
		Return(nil, errors.New("connection refused")).Once()

	got := svc.Recipients(ctx, &model.Booking{Urgency: model.UrgencyCritical}, actor, KindCreated)

	assert.Len(t, got, 1)
	assert.Equal(t, uint64(1), got[0].ID)
}

func TestRecipients_UnknownKindStillReachesActor(t *testing.T) {
	users := &MockUserStore{}
	svc := NewService(users, "amqp://test")

	actor := &model.User{ID: 1, Role: model.RoleHospitalStaff}
	got := svc.Recipients(context.Background(), &model.Booking{Urgency: model.UrgencyStable}, actor, "bogus")

	assert.Len(t, got, 1)
	users.AssertNotCalled(t, "ListActiveByRoles")
}
