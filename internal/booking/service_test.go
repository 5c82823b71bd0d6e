package booking

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/Manikandan063/air-ambulance-backend/internal/model"
	"github.com/Manikandan063/air-ambulance-backend/internal/repository"
)

// ----- mocks -----

type MockBookingStore struct {
	mock.Mock
}

func (m *MockBookingStore) Create(ctx context.Context, b *model.Booking) error {
	args := m.Called(ctx, b)
	return args.Error(0)
}

func (m *MockBookingStore) GetByID(ctx context.Context, id uint64) (*model.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Booking), args.Error(1)
}

func (m *MockBookingStore) List(ctx context.Context, f repository.BookingFilter) ([]model.Booking, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Booking), args.Error(1)
}

func (m *MockBookingStore) ListRecentActivity(ctx context.Context, limit int) ([]model.Booking, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Booking), args.Error(1)
}

func (m *MockBookingStore) UpdateFields(ctx context.Context, id uint64, updates map[string]interface{}) error {
	args := m.Called(ctx, id, updates)
	return args.Error(0)
}

func (m *MockBookingStore) CountByStatus(ctx context.Context, status string) (int64, error) {
	args := m.Called(ctx, status)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockBookingStore) CompletedStats(ctx context.Context) (int64, float64, int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Get(1).(float64), args.Get(2).(int64), args.Error(3)
}

type MockPatientStore struct {
	mock.Mock
}

func (m *MockPatientStore) GetByID(ctx context.Context, id uint64) (*model.Patient, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Patient), args.Error(1)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) SendBookingNotification(ctx context.Context, b *model.Booking, actor *model.User, kind, message, severity string) error {
	args := m.Called(ctx, b, actor, kind, message, severity)
	return args.Error(0)
}

func (m *MockNotifier) SendEmergencyAlert(ctx context.Context, b *model.Booking, actor *model.User, message string) error {
	args := m.Called(ctx, b, actor, message)
	return args.Error(0)
}

type MockBroadcaster struct {
	mock.Mock
}

func (m *MockBroadcaster) Broadcast(v interface{}) {
	m.Called(v)
}

// fixedDuration pins the completion duration so tests are deterministic.
type fixedDuration struct{ minutes int }

func (f fixedDuration) EstimateFlightDuration() int { return f.minutes }

func dispatcher() *model.User {
	return &model.User{ID: 7, Email: "dispatch@example.com", Role: model.RoleDispatcher, IsActive: true}
}

func hospitalStaff(id uint64) *model.User {
	return &model.User{ID: id, Email: "staff@example.com", Role: model.RoleHospitalStaff, IsActive: true}
}

// ----- Create -----

func TestServiceCreate_Success(t *testing.T) {
	store := &MockBookingStore{}
	patients := &MockPatientStore{}
	notifier := &MockNotifier{}
	hub := &MockBroadcaster{}
	svc := NewService(store, patients, notifier, hub, fixedDuration{60})

	ctx := context.Background()
	pid := uint64(3)
	patients.On("GetByID", ctx, pid).
		Return(&model.Patient{ID: pid, FullName: "Arun Kumar", AcuityLevel: model.AcuityHigh}, nil)
	store.On("Create", ctx, mock.AnythingOfType("*model.Booking")).Return(nil).Once()
	notifier.On("SendBookingNotification", ctx, mock.Anything, mock.Anything,
		"created", mock.Anything, "info").Return(nil).Once()
	hub.On("Broadcast", mock.MatchedBy(func(v interface{}) bool {
		ev, ok := v.(LiveEvent)
		return ok && ev.Type == "booking_created" && ev.PatientName == "Arun Kumar"
	})).Return().Once()

	b, err := svc.Create(ctx, CreateInput{
		PatientID:         &pid,
		PickupLocation:    "City General",
		Destination:       "Regional Trauma Center",
		Urgency:           model.UrgencyUrgent,
		RequiredEquipment: []string{"ventilator", "defibrillator"},
	}, dispatcher())

	assert.NoError(t, err)
	assert.Equal(t, model.StatusPending, b.Status)
	assert.Empty(t, b.AssignedCrewIDs)
	assert.Nil(t, b.ActualCost)
	assert.Nil(t, b.FlightDuration)
	assert.Equal(t, 7000.0, b.EstimatedCost) // 5000*1.2 + 2*500
	assert.Equal(t, uint64(7), b.CreatedBy)

	store.AssertExpectations(t)
	notifier.AssertExpectations(t)
	hub.AssertExpectations(t)
}

func TestServiceCreate_CriticalSendsEmergencyAlert(t *testing.T) {
	store := &MockBookingStore{}
	patients := &MockPatientStore{}
	notifier := &MockNotifier{}
	hub := &MockBroadcaster{}
	svc := NewService(store, patients, notifier, hub, fixedDuration{60})

	ctx := context.Background()
	store.On("Create", ctx, mock.Anything).Return(nil).Once()
	notifier.On("SendBookingNotification", ctx, mock.Anything, mock.Anything,
		"created", mock.Anything, "info").Return(nil).Once()
	notifier.On("SendEmergencyAlert", ctx, mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()
	hub.On("Broadcast", mock.Anything).Return().Once()

	_, err := svc.Create(ctx, CreateInput{
		PickupLocation: "Accident Site NH44",
		Destination:    "City General",
		Urgency:        model.UrgencyCritical,
	}, dispatcher())

	assert.NoError(t, err)
	notifier.AssertExpectations(t)
}

func TestServiceCreate_ForbiddenRole(t *testing.T) {
	store := &MockBookingStore{}
	patients := &MockPatientStore{}
	svc := NewService(store, patients, nil, nil, fixedDuration{60})

	doctor := &model.User{ID: 2, Role: model.RoleDoctor}
	_, err := svc.Create(context.Background(), CreateInput{
		PickupLocation: "A", Destination: "B",
	}, doctor)

	assert.ErrorIs(t, err, ErrForbidden)
	store.AssertNotCalled(t, "Create")
}

func TestServiceCreate_MissingLocations(t *testing.T) {
	svc := NewService(&MockBookingStore{}, &MockPatientStore{}, nil, nil, fixedDuration{60})

	_, err := svc.Create(context.Background(), CreateInput{Destination: "B"}, dispatcher())
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Create(context.Background(), CreateInput{PickupLocation: "A"}, dispatcher())
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestServiceCreate_NotificationFailureDoesNotFailCreate(t *testing.T) {
	store := &MockBookingStore{}
	patients := &MockPatientStore{}
	notifier := &MockNotifier{}
	hub := &MockBroadcaster{}
	svc := NewService(store, patients, notifier, hub, fixedDuration{60})

	ctx := context.Background()
	store.On("Create", ctx, mock.Anything).Return(nil).Once()
	notifier.On("SendBookingNotification", ctx, mock.Anything, mock.Anything,
		mock.Anything, mock.Anything, mock.Anything).Return(errors.New("broker down")).Once()
	hub.On("Broadcast", mock.Anything).Return().Once()

	b, err := svc.Create(ctx, CreateInput{
		PickupLocation: "A", Destination: "B",
	}, dispatcher())

	assert.NoError(t, err)
	assert.NotNil(t, b)
}

// ----- List / Get -----

func TestServiceList_HospitalStaffScopedToOwn(t *testing.T) {
	store := &MockBookingStore{}
	svc := NewService(store, &MockPatientStore{}, nil, nil, fixedDuration{60})

	ctx := context.Background()
	actor := hospitalStaff(42)
	store.On("List", ctx, repository.BookingFilter{Status: "pending", CreatedBy: 42, Limit: 20}).
		Return([]model.Booking{}, nil).Once()

	_, err := svc.List(ctx, ListFilter{Status: "pending", Limit: 20}, actor)
	assert.NoError(t, err)
	store.AssertExpectations(t)
}

func TestServiceGet_HospitalStaffCannotReadOthers(t *testing.T) {
	store := &MockBookingStore{}
	svc := NewService(store, &MockPatientStore{}, nil, nil, fixedDuration{60})

	ctx := context.Background()
	store.On("GetByID", ctx, uint64(5)).
		Return(&model.Booking{ID: 5, CreatedBy: 99, Status: model.StatusPending}, nil).Once()

	_, err := svc.Get(ctx, 5, hospitalStaff(42))
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestServiceGet_EnrichesPatientSummary(t *testing.T) {
	store := &MockBookingStore{}
	patients := &MockPatientStore{}
	svc := NewService(store, patients, nil, nil, fixedDuration{60})

	ctx := context.Background()
	pid := uint64(3)
	store.On("GetByID", ctx, uint64(5)).
		Return(&model.Booking{ID: 5, PatientID: &pid, CreatedBy: 7}, nil).Once()
	patients.On("GetByID", ctx, pid).
		Return(&model.Patient{ID: pid, FullName: "Arun Kumar", MedicalRecordNumber: "MRN-1", AcuityLevel: model.AcuityHigh}, nil).Once()

	detail, err := svc.Get(ctx, 5, dispatcher())
	assert.NoError(t, err)
	assert.NotNil(t, detail.PatientDetails)
	assert.Equal(t, "Arun Kumar", detail.PatientDetails.FullName)
}

func TestServiceGet_NotFound(t *testing.T) {
	store := &MockBookingStore{}
	svc := NewService(store, &MockPatientStore{}, nil, nil, fixedDuration{60})

	ctx := context.Background()
	store.On("GetByID", ctx, uint64(404)).Return(nil, repository.ErrNotFound).Once()

	_, err := svc.Get(ctx, 404, dispatcher())
	assert.ErrorIs(t, err, ErrNotFound)
}

// ----- Update -----

func TestServiceUpdate_Forbidden(t *testing.T) {
	store := &MockBookingStore{}
	svc := NewService(store, &MockPatientStore{}, nil, nil, fixedDuration{60})

	status := model.StatusApproved
	_, err := svc.Update(context.Background(), 1, UpdateInput{Status: &status}, hospitalStaff(1))
	assert.ErrorIs(t, err, ErrForbidden)
	store.AssertNotCalled(t, "UpdateFields")
}

func TestServiceUpdate_UnknownStatusRejected(t *testing.T) {
	store := &MockBookingStore{}
	svc := NewService(store, &MockPatientStore{}, nil, nil, fixedDuration{60})

	ctx := context.Background()
	store.On("GetByID", ctx, uint64(1)).
		Return(&model.Booking{ID: 1, Status: model.StatusPending}, nil).Once()

	bad := "teleported"
	_, err := svc.Update(ctx, 1, UpdateInput{Status: &bad}, dispatcher())
	assert.ErrorIs(t, err, ErrInvalidInput)
	store.AssertNotCalled(t, "UpdateFields")
}

func TestServiceUpdate_TerminalStatusFrozen(t *testing.T) {
	store := &MockBookingStore{}
	svc := NewService(store, &MockPatientStore{}, nil, nil, fixedDuration{60})

	ctx := context.Background()
	store.On("GetByID", ctx, uint64(1)).
		Return(&model.Booking{ID: 1, Status: model.StatusCompleted}, nil).Once()

	next := model.StatusPending
	_, err := svc.Update(ctx, 1, UpdateInput{Status: &next}, dispatcher())
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestServiceUpdate_CompletionSynthesizesDurationAndCost(t *testing.T) {
	store := &MockBookingStore{}
	patients := &MockPatientStore{}
	notifier := &MockNotifier{}
	hub := &MockBroadcaster{}
	svc := NewService(store, patients, notifier, hub, fixedDuration{90})

	ctx := context.Background()
	current := &model.Booking{
		ID:                1,
		Status:            model.StatusInProgress,
		Urgency:           model.UrgencyCritical,
		RequiredEquipment: []string{"ventilator"},
	}
	minutes := 90
	cost := 14000.0 // 100*90*1.5 + 500
	completed := &model.Booking{
		ID:             1,
		Status:         model.StatusCompleted,
		Urgency:        model.UrgencyCritical,
		FlightDuration: &minutes,
		ActualCost:     &cost,
	}

	store.On("GetByID", ctx, uint64(1)).Return(current, nil).Once()
	store.On("UpdateFields", ctx, uint64(1), mock.MatchedBy(func(u map[string]interface{}) bool {
		return u["status"] == model.StatusCompleted &&
			u["flight_duration"] == 90 &&
			u["actual_cost"] == 14000.0
	})).Return(nil).Once()
	store.On("GetByID", ctx, uint64(1)).Return(completed, nil).Once()

	// Status-change notification plus the completion summary.
	notifier.On("SendBookingNotification", ctx, mock.Anything, mock.Anything,
		"updated", mock.Anything, "info").Return(nil).Once()
	notifier.On("SendBookingNotification", ctx, mock.Anything, mock.Anything,
		"updated", mock.Anything, "success").Return(nil).Once()
	hub.On("Broadcast", mock.MatchedBy(func(v interface{}) bool {
		ev, ok := v.(LiveEvent)
		return ok && ev.Type == "booking_updated" && ev.Status == model.StatusCompleted
	})).Return().Once()

	status := model.StatusCompleted
	b, err := svc.Update(ctx, 1, UpdateInput{Status: &status}, dispatcher())

	assert.NoError(t, err)
	assert.Equal(t, model.StatusCompleted, b.Status)
	assert.Equal(t, 90, *b.FlightDuration)
	assert.Equal(t, 14000.0, *b.ActualCost)
	store.AssertExpectations(t)
	notifier.AssertExpectations(t)
}

func TestServiceUpdate_CancellationSendsWarning(t *testing.T) {
	store := &MockBookingStore{}
	notifier := &MockNotifier{}
	hub := &MockBroadcaster{}
	svc := NewService(store, &MockPatientStore{}, notifier, hub, fixedDuration{60})

	ctx := context.Background()
	store.On("GetByID", ctx, uint64(1)).
		Return(&model.Booking{ID: 1, Status: model.StatusPending}, nil).Once()
	store.On("UpdateFields", ctx, uint64(1), mock.Anything).Return(nil).Once()
	store.On("GetByID", ctx, uint64(1)).
		Return(&model.Booking{ID: 1, Status: model.StatusCancelled}, nil).Once()
	notifier.On("SendBookingNotification", ctx, mock.Anything, mock.Anything,
		"updated", mock.Anything, "warning").Return(nil).Once()
	hub.On("Broadcast", mock.Anything).Return().Once()

	status := model.StatusCancelled
	_, err := svc.Update(ctx, 1, UpdateInput{Status: &status}, dispatcher())

	assert.NoError(t, err)
	notifier.AssertExpectations(t)
}

func TestServiceUpdate_EmptyPatchIsNotFound(t *testing.T) {
	store := &MockBookingStore{}
	svc := NewService(store, &MockPatientStore{}, nil, nil, fixedDuration{60})

	ctx := context.Background()
	store.On("GetByID", ctx, uint64(1)).
		Return(&model.Booking{ID: 1, Status: model.StatusPending}, nil).Once()

	_, err := svc.Update(ctx, 1, UpdateInput{}, dispatcher())
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "no changes made")
	store.AssertNotCalled(t, "UpdateFields")
}

func TestServiceUpdate_AbsentBooking(t *testing.T) {
	store := &MockBookingStore{}
	svc := NewService(store, &MockPatientStore{}, nil, nil, fixedDuration{60})

	ctx := context.Background()
	store.On("GetByID", ctx, uint64(404)).Return(nil, repository.ErrNotFound).Once()

	loc := "Elsewhere"
	_, err := svc.Update(ctx, 404, UpdateInput{PickupLocation: &loc}, dispatcher())
	assert.ErrorIs(t, err, ErrNotFound)
}

// ----- EscalateEmergency -----

func TestServiceEscalate_ForcesCritical(t *testing.T) {
	store := &MockBookingStore{}
	patients := &MockPatientStore{}
	notifier := &MockNotifier{}
	hub := &MockBroadcaster{}
	svc := NewService(store, patients, notifier, hub, fixedDuration{60})

	ctx := context.Background()
	store.On("GetByID", ctx, uint64(1)).
		Return(&model.Booking{ID: 1, Status: model.StatusApproved, Urgency: model.UrgencyStable,
			PickupLocation: "A", Destination: "B"}, nil).Once()
	store.On("UpdateFields", ctx, uint64(1), mock.MatchedBy(func(u map[string]interface{}) bool {
		return u["urgency"] == model.UrgencyCritical
	})).Return(nil).Once()
	store.On("GetByID", ctx, uint64(1)).
		Return(&model.Booking{ID: 1, Status: model.StatusApproved, Urgency: model.UrgencyCritical}, nil).Once()
	notifier.On("SendEmergencyAlert", ctx, mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()
	hub.On("Broadcast", mock.MatchedBy(func(v interface{}) bool {
		ev, ok := v.(LiveEvent)
		return ok && ev.Type == "emergency_alert" && ev.Urgency == model.UrgencyCritical
	})).Return().Once()

	b, err := svc.EscalateEmergency(ctx, 1, &model.User{ID: 2, Role: model.RoleDoctor})
	assert.NoError(t, err)
	assert.Equal(t, model.UrgencyCritical, b.Urgency)
	store.AssertExpectations(t)
	notifier.AssertExpectations(t)
	hub.AssertExpectations(t)
}

func TestServiceEscalate_AlreadyCriticalStillSucceeds(t *testing.T) {
	store := &MockBookingStore{}
	patients := &MockPatientStore{}
	notifier := &MockNotifier{}
	hub := &MockBroadcaster{}
	svc := NewService(store, patients, notifier, hub, fixedDuration{60})

	critical := &model.Booking{ID: 9, Status: model.StatusApproved, Urgency: model.UrgencyCritical,
		PickupLocation: "A", Destination: "B"}

	// Re-escalating leaves every column at its current value, so the
	// store reports zero rows changed. That must not surface as a
	// missing booking; the alert still goes out.
	ctx := context.Background()
	store.On("GetByID", ctx, uint64(9)).Return(critical, nil).Twice()
	store.On("UpdateFields", ctx, uint64(9), mock.MatchedBy(func(u map[string]interface{}) bool {
		return u["urgency"] == model.UrgencyCritical
	})).Return(repository.ErrNotFound).Once()
	notifier.On("SendEmergencyAlert", ctx, mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()
	hub.On("Broadcast", mock.Anything).Return().Once()

	b, err := svc.EscalateEmergency(ctx, 9, dispatcher())
	assert.NoError(t, err)
	assert.Equal(t, model.UrgencyCritical, b.Urgency)
	store.AssertExpectations(t)
	notifier.AssertExpectations(t)
}

func TestServiceEscalate_ParamedicForbidden(t *testing.T) {
	store := &MockBookingStore{}
	svc := NewService(store, &MockPatientStore{}, nil, nil, fixedDuration{60})

	_, err := svc.EscalateEmergency(context.Background(), 1, &model.User{ID: 2, Role: model.RoleParamedic})
	assert.ErrorIs(t, err, ErrForbidden)
	store.AssertNotCalled(t, "GetByID")
}

// ----- activity feed -----

func TestServiceActivityTransfers(t *testing.T) {
	store := &MockBookingStore{}
	svc := NewService(store, &MockPatientStore{}, nil, nil, fixedDuration{60})

	ctx := context.Background()
	now := time.Now().UTC()
	store.On("ListRecentActivity", ctx, 20).Return([]model.Booking{
		{ID: 5, Status: model.StatusInProgress, UpdatedAt: now},
		{ID: 3, Status: model.StatusCompleted, UpdatedAt: now.Add(-time.Minute)},
	}, nil).Once()

	activities, err := svc.ActivityTransfers(ctx, 20)
	assert.NoError(t, err)
	assert.Len(t, activities, 2)
	assert.Equal(t, uint64(5), activities[0].ID)
	assert.Equal(t, "booking_update", activities[0].Type)
	assert.Equal(t, "Booking in_progress", activities[0].Description)
	assert.Equal(t, now, activities[0].Timestamp)
	store.AssertExpectations(t)
}

// ----- aggregates -----

func TestServicePendingCount(t *testing.T) {
	store := &MockBookingStore{}
	svc := NewService(store, &MockPatientStore{}, nil, nil, fixedDuration{60})

	ctx := context.Background()
	store.On("CountByStatus", ctx, model.StatusPending).Return(int64(4), nil).Once()

	n, err := svc.PendingCount(ctx, dispatcher())
	assert.NoError(t, err)
	assert.Equal(t, int64(4), n)

	_, err = svc.PendingCount(ctx, hospitalStaff(1))
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestServiceCompletedStats(t *testing.T) {
	store := &MockBookingStore{}
	svc := NewService(store, &MockPatientStore{}, nil, nil, fixedDuration{60})

	ctx := context.Background()
	store.On("CompletedStats", ctx).Return(int64(3), 25000.0, int64(275), nil).Once()

	stats, err := svc.CompletedStats(ctx, dispatcher())
	assert.NoError(t, err)
	assert.Equal(t, 3, stats.TotalCompleted)
	assert.Equal(t, 25000.0, stats.TotalRevenue)
	assert.Equal(t, 275, stats.TotalFlightTime)
	assert.Equal(t, 91.67, stats.AverageFlightTime)
	assert.Equal(t, 8333.33, stats.AverageRevenuePerBooking)
}

func TestServiceCompletedStats_EmptySet(t *testing.T) {
	store := &MockBookingStore{}
	svc := NewService(store, &MockPatientStore{}, nil, nil, fixedDuration{60})

	ctx := context.Background()
	store.On("CompletedStats", ctx).Return(int64(0), 0.0, int64(0), nil).Once()

	stats, err := svc.CompletedStats(ctx, dispatcher())
	assert.NoError(t, err)
	assert.Equal(t, 0, stats.TotalCompleted)
	assert.Equal(t, 0.0, stats.AverageFlightTime)
	assert.Equal(t, 0.0, stats.AverageRevenuePerBooking)
}

// ----- patient name resolution -----

func TestPatientNameFallsBackToPlaceholder(t *testing.T) {
	patients := &MockPatientStore{}
	svc := NewService(&MockBookingStore{}, patients, nil, nil, fixedDuration{60})

	ctx := context.Background()
	assert.Equal(t, "Unknown Patient", svc.patientName(ctx, nil))

	missing := uint64(9)
	patients.On("GetByID", ctx, missing).Return(nil, repository.ErrNotFound).Once()
	assert.Equal(t, "Unknown Patient", svc.patientName(ctx, &missing))
}
