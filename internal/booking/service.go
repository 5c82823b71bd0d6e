// Package booking implements the booking lifecycle: authorization,
// state transition validation, cost computation and update orchestration.
// Notification and live-broadcast collaborators are injected so their
// failures can be logged and discarded; a mutation counts as successful
// the moment persistence succeeds.
package booking

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"strings"
	"time"

	"github.com/Manikandan063/air-ambulance-backend/internal/model"
	"github.com/Manikandan063/air-ambulance-backend/internal/notify"
	"github.com/Manikandan063/air-ambulance-backend/internal/repository"
)

const unknownPatient = "Unknown Patient"

// BookingStore is the persistence surface the controller needs. It is
// satisfied by *repository.BookingRepo.
type BookingStore interface {
	Create(ctx context.Context, b *model.Booking) error
	GetByID(ctx context.Context, id uint64) (*model.Booking, error)
	List(ctx context.Context, f repository.BookingFilter) ([]model.Booking, error)
	ListRecentActivity(ctx context.Context, limit int) ([]model.Booking, error)
	UpdateFields(ctx context.Context, id uint64, updates map[string]interface{}) error
	CountByStatus(ctx context.Context, status string) (int64, error)
	CompletedStats(ctx context.Context) (count int64, totalCost float64, totalMinutes int64, err error)
}

// PatientStore resolves patient references for display-name and summary
// enrichment. Satisfied by *repository.PatientRepo.
type PatientStore interface {
	GetByID(ctx context.Context, id uint64) (*model.Patient, error)
}

// Notifier dispatches informational and emergency messages to interested
// users. Implementations compute the recipient set themselves; errors are
// returned so the controller can log and discard them.
type Notifier interface {
	SendBookingNotification(ctx context.Context, b *model.Booking, actor *model.User, kind, message, severity string) error
	SendEmergencyAlert(ctx context.Context, b *model.Booking, actor *model.User, message string) error
}

// Broadcaster pushes a compact event to every open live channel.
// Satisfied by *ws.Hub.
type Broadcaster interface {
	Broadcast(v interface{})
}

// LiveEvent is the payload broadcast to live channels on lifecycle
// events.
type LiveEvent struct {
	Type        string `json:"type"`
	BookingID   uint64 `json:"booking_id"`
	Message     string `json:"message"`
	Status      string `json:"status,omitempty"`
	Urgency     string `json:"urgency,omitempty"`
	PatientName string `json:"patient_name,omitempty"`
}

// Service is the booking lifecycle controller.
type Service struct {
	store    BookingStore
	patients PatientStore
	notifier Notifier
	hub      Broadcaster
	duration DurationEstimator
}

// NewService wires the controller. notifier and hub may be nil in tests;
// duration defaults to the randomized placeholder when nil.
func NewService(store BookingStore, patients PatientStore, notifier Notifier, hub Broadcaster, duration DurationEstimator) *Service {
	if store == nil || patients == nil {
		panic("nil store passed to booking.NewService")
	}
	if duration == nil {
		duration = RandomDuration{}
	}
	return &Service{store: store, patients: patients, notifier: notifier, hub: hub, duration: duration}
}

// ----- capability table -----

type operation int

const (
	opCreate operation = iota
	opUpdate
	opEscalate
	opAggregates
)

// capabilities is the single place role gates live; every mutating or
// restricted operation checks it once at the service boundary.
var capabilities = map[operation][]string{
	opCreate:     {model.RoleSuperadmin, model.RoleDispatcher, model.RoleHospitalStaff},
	opUpdate:     {model.RoleSuperadmin, model.RoleDispatcher},
	opEscalate:   {model.RoleSuperadmin, model.RoleDispatcher, model.RoleDoctor},
	opAggregates: {model.RoleSuperadmin, model.RoleDispatcher},
}

func (s *Service) authorize(op operation, actor *model.User) error {
	for _, role := range capabilities[op] {
		if actor.Role == role {
			return nil
		}
	}
	return ErrForbidden
}

// ----- inputs -----

// CreateInput carries the client-supplied fields of a new booking.
// Status, crew, aircraft and cost fields are never accepted from the
// client; the controller sets them.
type CreateInput struct {
	PatientID         *uint64  `json:"patient_id"`
	PickupLocation    string   `json:"pickup_location"`
	Destination       string   `json:"destination"`
	Urgency           string   `json:"urgency"`
	RequiredEquipment []string `json:"required_equipment"`
	PreferredDate     *string  `json:"preferred_date"` // "2006-01-02"
	PreferredTime     *string  `json:"preferred_time"` // "15:04" or "15:04:05"
}

// UpdateInput is a partial patch. Nil fields are untouched; because Go
// cannot distinguish an absent JSON field from an explicit null, both are
// dropped, which matches the intended partial-update semantics.
type UpdateInput struct {
	PatientID          *uint64   `json:"patient_id"`
	PickupLocation     *string   `json:"pickup_location"`
	Destination        *string   `json:"destination"`
	Urgency            *string   `json:"urgency"`
	RequiredEquipment  []string  `json:"required_equipment"`
	PreferredDate      *string   `json:"preferred_date"`
	PreferredTime      *string   `json:"preferred_time"`
	Status             *string   `json:"status"`
	AssignedCrewIDs    []uint64  `json:"assigned_crew_ids"`
	AssignedAircraftID *uint64   `json:"assigned_aircraft_id"`
	ActualCost         *float64  `json:"actual_cost"`
	FlightDuration     *int      `json:"flight_duration"`
}

// ListFilter narrows List results.
type ListFilter struct {
	Status string
	Skip   int
	Limit  int
}

// ----- operations -----

// Create validates and persists a new booking with status pending, then
// notifies recipients and broadcasts a booking_created event. Notification
// and broadcast failures never fail the request.
func (s *Service) Create(ctx context.Context, in CreateInput, actor *model.User) (*model.Booking, error) {
	if err := s.authorize(opCreate, actor); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.PickupLocation) == "" || strings.TrimSpace(in.Destination) == "" {
		return nil, fmt.Errorf("%w: pickup_location and destination are required", ErrInvalidInput)
	}
	urgency := in.Urgency
	if urgency == "" {
		urgency = model.UrgencyStable
	}
	prefDate, err := normalizeDate(in.PreferredDate)
	if err != nil {
		return nil, err
	}
	prefTime, err := normalizeTime(in.PreferredTime)
	if err != nil {
		return nil, err
	}

	patientName := s.patientName(ctx, in.PatientID)

	now := time.Now().UTC()
	b := &model.Booking{
		PatientID:         in.PatientID,
		PickupLocation:    in.PickupLocation,
		Destination:       in.Destination,
		Urgency:           urgency,
		RequiredEquipment: in.RequiredEquipment,
		PreferredDate:     prefDate,
		PreferredTime:     prefTime,
		Status:            model.StatusPending,
		AssignedCrewIDs:   []uint64{},
		EstimatedCost:     EstimatedCost(urgency, len(in.RequiredEquipment)),
		CreatedBy:         actor.ID,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if b.RequiredEquipment == nil {
		b.RequiredEquipment = []string{}
	}
	if err := s.store.Create(ctx, b); err != nil {
		return nil, fmt.Errorf("create booking: %w", err)
	}

	msg := fmt.Sprintf("New booking created for patient %s. Urgency: %s. Status: Pending", patientName, b.Urgency)
	s.notifyBooking(ctx, b, actor, notify.KindCreated, msg, notify.SeverityInfo)
	if b.Urgency == model.UrgencyCritical {
		alert := fmt.Sprintf("CRITICAL PATIENT: %s requires immediate air ambulance transport from %s", patientName, b.PickupLocation)
		s.alertEmergency(ctx, b, actor, alert)
	}
	s.broadcast(LiveEvent{
		Type:        "booking_created",
		BookingID:   b.ID,
		Message:     "New booking created",
		Urgency:     b.Urgency,
		PatientName: patientName,
	})

	log.Printf("booking created: %d by user %s", b.ID, actor.Email)
	return b, nil
}

// List returns bookings visible to the actor, newest first.
// hospital_staff actors only ever see bookings they created.
func (s *Service) List(ctx context.Context, f ListFilter, actor *model.User) ([]model.Booking, error) {
	filter := repository.BookingFilter{Status: f.Status, Skip: f.Skip, Limit: f.Limit}
	if actor.Role == model.RoleHospitalStaff {
		filter.CreatedBy = actor.ID
	}
	list, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	return list, nil
}

// Get returns a single booking enriched with a patient summary when a
// patient reference exists.
func (s *Service) Get(ctx context.Context, id uint64, actor *model.User) (*model.BookingDetail, error) {
	b, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get booking: %w", err)
	}
	if actor.Role == model.RoleHospitalStaff && b.CreatedBy != actor.ID {
		return nil, ErrForbidden
	}
	detail := &model.BookingDetail{Booking: *b}
	if b.PatientID != nil {
		if p, err := s.patients.GetByID(ctx, *b.PatientID); err == nil {
			detail.PatientDetails = &model.PatientSummary{
				FullName:            p.FullName,
				MedicalRecordNumber: p.MedicalRecordNumber,
				AcuityLevel:         p.AcuityLevel,
			}
		}
	}
	return detail, nil
}

// Update applies a partial patch. Moving to completed synthesizes
// flight_duration and actual_cost when absent. A status change emits a
// notification (warning when cancelled, an extra success message when
// completed) and every update broadcasts a booking_updated event.
func (s *Service) Update(ctx context.Context, id uint64, in UpdateInput, actor *model.User) (*model.Booking, error) {
	if err := s.authorize(opUpdate, actor); err != nil {
		return nil, err
	}
	current, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load booking: %w", err)
	}
	patientName := s.patientName(ctx, current.PatientID)

	updates, err := buildUpdates(in)
	if err != nil {
		return nil, err
	}

	oldStatus := current.Status
	newStatus := oldStatus
	statusChanged := false
	if in.Status != nil {
		if !model.KnownStatus(*in.Status) {
			return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, *in.Status)
		}
		if *in.Status != oldStatus {
			if !model.ValidTransition(oldStatus, *in.Status) {
				return nil, fmt.Errorf("%w: cannot move booking from %s to %s", ErrInvalidInput, oldStatus, *in.Status)
			}
			newStatus = *in.Status
			statusChanged = true
		}
	}

	if statusChanged && newStatus == model.StatusCompleted {
		var minutes int
		if in.FlightDuration != nil {
			minutes = *in.FlightDuration
		} else {
			minutes = s.duration.EstimateFlightDuration()
			updates["flight_duration"] = minutes
		}
		if in.ActualCost == nil {
			// Cost is computed from the pre-update urgency and equipment,
			// matching the quote the flight flew under.
			updates["actual_cost"] = ActualCost(current.Urgency, len(current.RequiredEquipment), minutes)
		}
	}

	if len(updates) == 0 {
		return nil, fmt.Errorf("%w: no changes made", ErrNotFound)
	}
	updates["updated_at"] = time.Now().UTC()

	if err := s.store.UpdateFields(ctx, id, updates); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: no changes made", ErrNotFound)
		}
		return nil, fmt.Errorf("update booking: %w", err)
	}

	updated, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("reload booking: %w", err)
	}

	if statusChanged {
		severity := notify.SeverityInfo
		if newStatus == model.StatusCancelled {
			severity = notify.SeverityWarning
		}
		msg := fmt.Sprintf("Booking status changed for patient %s: %s -> %s", patientName, oldStatus, newStatus)
		s.notifyBooking(ctx, updated, actor, notify.KindUpdated, msg, severity)

		if newStatus == model.StatusCompleted {
			minutes := 0
			if updated.FlightDuration != nil {
				minutes = *updated.FlightDuration
			}
			cost := 0.0
			if updated.ActualCost != nil {
				cost = *updated.ActualCost
			}
			done := fmt.Sprintf("Booking completed for patient %s. Flight duration: %d mins. Cost: $%.2f", patientName, minutes, cost)
			s.notifyBooking(ctx, updated, actor, notify.KindUpdated, done, notify.SeveritySuccess)
		}
	}

	event := LiveEvent{
		Type:        "booking_updated",
		BookingID:   updated.ID,
		Message:     fmt.Sprintf("Booking %d updated", updated.ID),
		PatientName: patientName,
	}
	if statusChanged {
		event.Status = newStatus
	}
	s.broadcast(event)

	log.Printf("booking updated: %d by user %s", updated.ID, actor.Email)
	return updated, nil
}

// EscalateEmergency unconditionally forces a booking's urgency to
// critical. Calling it on an already-critical booking is a no-op that
// still re-sends the alert.
func (s *Service) EscalateEmergency(ctx context.Context, id uint64, actor *model.User) (*model.Booking, error) {
	if err := s.authorize(opEscalate, actor); err != nil {
		return nil, err
	}
	current, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load booking: %w", err)
	}
	patientName := s.patientName(ctx, current.PatientID)

	updates := map[string]interface{}{
		"urgency":    model.UrgencyCritical,
		"updated_at": time.Now().UTC(),
	}
	// The booking was loaded above, so a zero-rows result here only means
	// every column already held its target value. Re-escalating an
	// already-critical booking must still succeed and re-send the alert.
	if err := s.store.UpdateFields(ctx, id, updates); err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("escalate booking: %w", err)
	}
	updated, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("reload booking: %w", err)
	}

	alert := fmt.Sprintf("EMERGENCY ESCALATION: Patient %s condition critical. Immediate transport required from %s to %s",
		patientName, current.PickupLocation, current.Destination)
	s.alertEmergency(ctx, updated, actor, alert)
	s.broadcast(LiveEvent{
		Type:        "emergency_alert",
		BookingID:   updated.ID,
		Message:     "Emergency alert triggered",
		Urgency:     model.UrgencyCritical,
		PatientName: patientName,
	})

	log.Printf("emergency escalation: booking %d by user %s", updated.ID, actor.Email)
	return updated, nil
}

// PendingCount returns the number of bookings awaiting dispatch.
func (s *Service) PendingCount(ctx context.Context, actor *model.User) (int64, error) {
	if err := s.authorize(opAggregates, actor); err != nil {
		return 0, err
	}
	n, err := s.store.CountByStatus(ctx, model.StatusPending)
	if err != nil {
		return 0, fmt.Errorf("pending count: %w", err)
	}
	return n, nil
}

// Activity is one entry of the dashboard activity feed.
type Activity struct {
	ID          uint64    `json:"id"`
	Type        string    `json:"type"`
	Status      string    `json:"status"`
	Timestamp   time.Time `json:"timestamp"`
	Description string    `json:"description"`
}

// ActivityTransfers returns the most recently touched bookings rendered
// as activity entries. The feed is visible to every authenticated role,
// so no capability check applies.
func (s *Service) ActivityTransfers(ctx context.Context, limit int) ([]Activity, error) {
	bookings, err := s.store.ListRecentActivity(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("recent activity: %w", err)
	}
	activities := make([]Activity, 0, len(bookings))
	for i := range bookings {
		b := &bookings[i]
		activities = append(activities, Activity{
			ID:          b.ID,
			Type:        "booking_update",
			Status:      b.Status,
			Timestamp:   b.UpdatedAt,
			Description: fmt.Sprintf("Booking %s", b.Status),
		})
	}
	return activities, nil
}

// CompletedStats aggregates revenue and flight time over completed
// bookings. An empty completed set yields zero averages, not a fault.
func (s *Service) CompletedStats(ctx context.Context, actor *model.User) (*model.CompletedStats, error) {
	if err := s.authorize(opAggregates, actor); err != nil {
		return nil, err
	}
	count, totalCost, totalMinutes, err := s.store.CompletedStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("completed stats: %w", err)
	}
	stats := &model.CompletedStats{
		TotalCompleted:  int(count),
		TotalRevenue:    totalCost,
		TotalFlightTime: int(totalMinutes),
	}
	if count > 0 {
		stats.AverageFlightTime = round2(float64(totalMinutes) / float64(count))
		stats.AverageRevenuePerBooking = round2(totalCost / float64(count))
	}
	return stats, nil
}

// ----- helpers -----

// patientName resolves the display name for a booking's patient
// reference. Lookups are best-effort: a missing patient or a store error
// yields the placeholder, never a failure.
func (s *Service) patientName(ctx context.Context, patientID *uint64) string {
	if patientID == nil {
		return unknownPatient
	}
	p, err := s.patients.GetByID(ctx, *patientID)
	if err != nil || p.FullName == "" {
		return unknownPatient
	}
	return p.FullName
}

func (s *Service) notifyBooking(ctx context.Context, b *model.Booking, actor *model.User, kind, message, severity string) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.SendBookingNotification(ctx, b, actor, kind, message, severity); err != nil {
		log.Printf("booking %d: notification failed: %v", b.ID, err)
	}
}

func (s *Service) alertEmergency(ctx context.Context, b *model.Booking, actor *model.User, message string) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.SendEmergencyAlert(ctx, b, actor, message); err != nil {
		log.Printf("booking %d: emergency alert failed: %v", b.ID, err)
	}
}

func (s *Service) broadcast(event LiveEvent) {
	if s.hub != nil {
		s.hub.Broadcast(event)
	}
}

// buildUpdates maps the non-nil patch fields onto column updates.
func buildUpdates(in UpdateInput) (map[string]interface{}, error) {
	updates := make(map[string]interface{})
	if in.PatientID != nil {
		updates["patient_id"] = *in.PatientID
	}
	if in.PickupLocation != nil {
		updates["pickup_location"] = *in.PickupLocation
	}
	if in.Destination != nil {
		updates["destination"] = *in.Destination
	}
	if in.Urgency != nil {
		updates["urgency"] = *in.Urgency
	}
	if in.RequiredEquipment != nil {
		updates["required_equipment"] = in.RequiredEquipment
	}
	if in.PreferredDate != nil {
		d, err := normalizeDate(in.PreferredDate)
		if err != nil {
			return nil, err
		}
		updates["preferred_date"] = *d
	}
	if in.PreferredTime != nil {
		t, err := normalizeTime(in.PreferredTime)
		if err != nil {
			return nil, err
		}
		updates["preferred_time"] = *t
	}
	if in.Status != nil {
		updates["status"] = *in.Status
	}
	if in.AssignedCrewIDs != nil {
		updates["assigned_crew_ids"] = in.AssignedCrewIDs
	}
	if in.AssignedAircraftID != nil {
		updates["assigned_aircraft_id"] = *in.AssignedAircraftID
	}
	if in.ActualCost != nil {
		updates["actual_cost"] = *in.ActualCost
	}
	if in.FlightDuration != nil {
		updates["flight_duration"] = *in.FlightDuration
	}
	return updates, nil
}

// normalizeDate parses "2006-01-02" into a UTC midnight timestamp, the
// canonical storable form.
func normalizeDate(raw *string) (*time.Time, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	d, err := time.Parse("2006-01-02", strings.TrimSpace(*raw))
	if err != nil {
		return nil, fmt.Errorf("%w: preferred_date must be YYYY-MM-DD", ErrInvalidInput)
	}
	d = d.UTC()
	return &d, nil
}

// normalizeTime accepts "HH:MM" or "HH:MM:SS" and returns the canonical
// "HH:MM:SS" form.
func normalizeTime(raw *string) (*string, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	v := strings.TrimSpace(*raw)
	if t, err := time.Parse("15:04:05", v); err == nil {
		out := t.Format("15:04:05")
		return &out, nil
	}
	if t, err := time.Parse("15:04", v); err == nil {
		out := t.Format("15:04:05")
		return &out, nil
	}
	return nil, fmt.Errorf("%w: preferred_time must be HH:MM or HH:MM:SS", ErrInvalidInput)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
