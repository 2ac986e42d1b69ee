// Package events publishes the job portal's domain events to Kafka and
// consumes them back for the audit trail.
package events

import (
	"encoding/json"
	"time"

	"github.com/gartstein/jobportal/internal/jobportal/models"
	"github.com/google/uuid"
)

var jsonMarshal = json.Marshal

type EventType string

const (
	UserRegistered           EventType = "user_registered"
	UserBlocked              EventType = "user_blocked"
	UserUnblocked            EventType = "user_unblocked"
	RecruiterApproved        EventType = "recruiter_approved"
	CompanyCreated           EventType = "company_created"
	CompanyUpdated           EventType = "company_updated"
	CompanyDeactivated       EventType = "company_deactivated"
	JobCreated               EventType = "job_created"
	JobUpdated               EventType = "job_updated"
	JobStatusChanged         EventType = "job_status_changed"
	JobDeleted               EventType = "job_deleted"
	JobArchived              EventType = "job_archived"
	ApplicationSubmitted     EventType = "application_submitted"
	ApplicationStatusChanged EventType = "application_status_changed"
)

// Event is the envelope written to the topic. Payload is the JSON encoded
// entity (or change) the event is about.
type Event struct {
	ID          uuid.UUID       `json:"id"`
	Type        EventType       `json:"type"`
	AggregateID uuid.UUID       `json:"aggregate_id"`
	ActorID     uuid.UUID       `json:"actor_id"`
	OccurredAt  time.Time       `json:"occurred_at"`
	Payload     json.RawMessage `json:"payload,omitempty"`
}

// NewEvent builds an event about aggregateID performed by actor. A payload
// that cannot be encoded is left out.
func NewEvent(eventType EventType, aggregateID uuid.UUID, actor models.Actor, payload any) Event {
	ev := Event{
		ID:          uuid.New(),
		Type:        eventType,
		AggregateID: aggregateID,
		ActorID:     actor.UserID,
		OccurredAt:  time.Now().UTC(),
	}
	if payload != nil {
		if data, err := jsonMarshal(payload); err == nil {
			ev.Payload = data
		}
	}
	return ev
}

// AuditEntry converts the event into its audit record.
func (ev Event) AuditEntry(recordedAt time.Time) *models.AuditEntry {
	return &models.AuditEntry{
		ID:          ev.ID,
		EventType:   string(ev.Type),
		AggregateID: ev.AggregateID,
		ActorID:     ev.ActorID,
		Payload:     string(ev.Payload),
		OccurredAt:  ev.OccurredAt,
		RecordedAt:  recordedAt,
	}
}

// StatusChange is the payload of the *_status_changed events.
type StatusChange struct {
	From string `json:"from"`
	To   string `json:"to"`
}
