package models

import (
	"time"

	"github.com/google/uuid"
)

// AuditEntry records one domain event for operators.
type AuditEntry struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	EventType   string    `gorm:"size:64;not null;index"`
	AggregateID uuid.UUID `gorm:"type:uuid;not null;index"`
	ActorID     uuid.UUID `gorm:"type:uuid;index"`
	Payload     string    `gorm:"type:text"`
	OccurredAt  time.Time `gorm:"not null"`
	RecordedAt  time.Time `gorm:"not null"`
}
