// Package notify determines who should hear about a booking event and
// dispatches the message through the broker. Dispatch is best-effort:
// every failure is logged and reported to the caller, who discards it.
package notify

import (
	"github.com/Manikandan063/air-ambulance-backend/internal/model"
)

// Event kinds. The kind drives recipient selection: created/updated/
// emergency events reach the dispatch group, and emergencies (or critical
// bookings) additionally reach medical staff.
const (
	KindCreated   = "created"
	KindUpdated   = "updated"
	KindEmergency = "emergency"
)

// Severities attached to dispatched messages.
const (
	SeverityInfo    = "info"
	SeverityWarning = "warning"
	SeveritySuccess = "success"
)

// Recipient identifies a user a notification is addressed to.
type Recipient struct {
	ID    uint64 `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Event is the message payload published to the notification queue. It
// carries enough context for downstream consumers (mail, push, SMS
// bridges) to deliver without querying the primary database. Events are
// ephemeral and never persisted by this service.
type Event struct {
	ID         string         `json:"id"`
	Kind       string         `json:"kind"`
	Severity   string         `json:"severity"`
	Message    string         `json:"message"`
	Recipients []Recipient    `json:"recipients"`
	Booking    *model.Booking `json:"booking"`
	SentAt     string         `json:"sent_at"`
}
