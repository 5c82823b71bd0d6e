package model

import "time"

// Urgency tiers for a transport booking. The tier drives both the cost
// multiplier and notification escalation.
const (
	UrgencyStable   = "stable"
	UrgencyUrgent   = "urgent"
	UrgencyCritical = "critical"
)

// Booking statuses. A booking starts as StatusPending and ends in one of
// the terminal statuses StatusCompleted or StatusCancelled.
const (
	StatusPending    = "pending"
	StatusApproved   = "approved"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
)

// KnownStatus reports whether the given string is a defined booking status.
func KnownStatus(s string) bool {
	switch s {
	case StatusPending, StatusApproved, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// TerminalStatus reports whether a booking in the given status accepts no
// further status changes.
func TerminalStatus(s string) bool {
	return s == StatusCompleted || s == StatusCancelled
}

// ValidTransition reports whether a booking may move from one status to
// another. Any known non-terminal status may move to any other known
// status; terminal statuses accept nothing.
func ValidTransition(from, to string) bool {
	if !KnownStatus(from) || !KnownStatus(to) {
		return false
	}
	if TerminalStatus(from) {
		return false
	}
	return from != to
}

// Booking is the central entity: a single air-ambulance transport request
// as stored in the `bookings` table. List-valued fields (equipment, crew)
// are persisted as JSON text columns.
//
// ActualCost and FlightDuration stay nil until the booking reaches the
// completed status. CreatedBy is immutable after creation.
type Booking struct {
	ID                 uint64     `json:"id"`
	PatientID          *uint64    `json:"patient_id"`
	PickupLocation     string     `json:"pickup_location"`
	Destination        string     `json:"destination"`
	Urgency            string     `json:"urgency"`
	RequiredEquipment  []string   `json:"required_equipment"`
	PreferredDate      *time.Time `json:"preferred_date"`
	PreferredTime      *string    `json:"preferred_time"` // "HH:MM:SS"
	Status             string     `json:"status"`
	AssignedCrewIDs    []uint64   `json:"assigned_crew_ids"`
	AssignedAircraftID *uint64    `json:"assigned_aircraft_id"`
	EstimatedCost      float64    `json:"estimated_cost"`
	ActualCost         *float64   `json:"actual_cost"`
	FlightDuration     *int       `json:"flight_duration"` // minutes
	CreatedBy          uint64     `json:"created_by"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// PatientSummary carries the patient fields a booking detail view exposes.
type PatientSummary struct {
	FullName            string `json:"full_name"`
	MedicalRecordNumber string `json:"medical_record_number"`
	AcuityLevel         string `json:"acuity_level"`
}

// BookingDetail is a booking enriched with a patient summary when the
// booking references a patient.
type BookingDetail struct {
	Booking
	PatientDetails *PatientSummary `json:"patient_details,omitempty"`
}

// CompletedStats aggregates revenue and flight time over completed
// bookings. Averages are zero when no bookings have completed.
type CompletedStats struct {
	TotalCompleted           int     `json:"total_completed"`
	TotalRevenue             float64 `json:"total_revenue"`
	TotalFlightTime          int     `json:"total_flight_time"`
	AverageFlightTime        float64 `json:"average_flight_time"`
	AverageRevenuePerBooking float64 `json:"average_revenue_per_booking"`
}
