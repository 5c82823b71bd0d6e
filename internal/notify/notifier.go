package notify

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/Manikandan063/air-ambulance-backend/internal/model"
)

// QueueName is the durable queue notification events are published to.
const QueueName = "notifications.booking"

// UserStore is the user lookup the fan-out needs to compute recipients.
// Satisfied by *repository.UserRepo.
type UserStore interface {
	ListActiveByRoles(ctx context.Context, roles []string) ([]model.User, error)
}

// Service computes recipient sets and publishes notification events to
// RabbitMQ. A nil-safe zero value is not provided; construct with
// NewService.
type Service struct {
	users UserStore
	url   string
}

// NewService returns a notification service publishing to the broker at
// the given AMQP URL.
func NewService(users UserStore, amqpURL string) *Service {
	return &Service{users: users, url: amqpURL}
}

var dispatchRoles = []string{model.RoleDispatcher, model.RoleSuperadmin, model.RoleAirlineCoordinator}
var medicalRoles = []string{model.RoleDoctor, model.RoleParamedic}

// Recipients returns who should be told about an event of the given kind
// on the given booking. The acting user is always included. Dedup is by
// user id, preserving first-seen order. Any lookup failure degrades to
// the singleton {actor}: recipient resolution must never abort the
// booking mutation that triggered it.
func (s *Service) Recipients(ctx context.Context, b *model.Booking, actor *model.User, kind string) []Recipient {
	recipients := []*model.User{actor}

	switch kind {
	case KindCreated, KindUpdated, KindEmergency:
		dispatchers, err := s.users.ListActiveByRoles(ctx, dispatchRoles)
		if err != nil {
			log.Printf("notify: recipient lookup failed: %v", err)
			return toRecipients([]*model.User{actor})
		}
		for i := range dispatchers {
			recipients = append(recipients, &dispatchers[i])
		}
	}

	if kind == KindEmergency || b.Urgency == model.UrgencyCritical {
		medics, err := s.users.ListActiveByRoles(ctx, medicalRoles)
		if err != nil {
			log.Printf("notify: recipient lookup failed: %v", err)
			return toRecipients([]*model.User{actor})
		}
		for i := range medics {
			recipients = append(recipients, &medics[i])
		}
	}

	return toRecipients(recipients)
}

func toRecipients(users []*model.User) []Recipient {
	seen := make(map[uint64]struct{}, len(users))
	out := make([]Recipient, 0, len(users))
	for _, u := range users {
		if _, ok := seen[u.ID]; ok {
			continue
		}
		seen[u.ID] = struct{}{}
		out = append(out, Recipient{ID: u.ID, Email: u.Email, Role: u.Role})
	}
	return out
}

// SendBookingNotification publishes an informational booking event to the
// computed recipient set. Errors are returned for the caller to log and
// discard.
func (s *Service) SendBookingNotification(ctx context.Context, b *model.Booking, actor *model.User, kind, message, severity string) error {
	return s.publish(ctx, Event{
		ID:         uuid.NewString(),
		Kind:       kind,
		Severity:   severity,
		Message:    message,
		Recipients: s.Recipients(ctx, b, actor, kind),
		Booking:    b,
		SentAt:     time.Now().UTC().Format(time.RFC3339),
	})
}

// SendEmergencyAlert publishes an emergency event. Emergencies always
// carry warning severity and reach medical staff in addition to the
// dispatch group.
func (s *Service) SendEmergencyAlert(ctx context.Context, b *model.Booking, actor *model.User, message string) error {
	return s.publish(ctx, Event{
		ID:         uuid.NewString(),
		Kind:       KindEmergency,
		Severity:   SeverityWarning,
		Message:    message,
		Recipients: s.Recipients(ctx, b, actor, KindEmergency),
		Booking:    b,
		SentAt:     time.Now().UTC().Format(time.RFC3339),
	})
}

// publish dials the broker, declares the durable queue (idempotent) and
// publishes the event as a persistent JSON message. It never panics; any
// error is logged and returned.
func (s *Service) publish(ctx context.Context, ev Event) error {
	conn, err := amqp.Dial(s.url)
	if err != nil {
		log.Printf("notify: dial failed: %v", err)
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Printf("notify: channel open failed: %v", err)
		return err
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(QueueName, true, false, false, false, nil); err != nil {
		log.Printf("notify: queue declare failed: %v", err)
		return err
	}

	body, err := json.Marshal(ev)
	if err != nil {
		log.Printf("notify: marshal event failed: %v", err)
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    ev.ID,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", QueueName, false, false, pub); err != nil {
		log.Printf("notify: publish failed: %v", err)
		return err
	}
	return nil
}
