package db

import (
	"context"

	"github.com/gartstein/jobportal/internal/jobportal/models"
	"github.com/google/uuid"
	"gorm.io/gorm/clause"
)

// RecordAudit stores an audit entry. Replaying an entry with a known id is
// a no-op so redelivered events are recorded once.
func (r *Repository) RecordAudit(ctx context.Context, entry *models.AuditEntry) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, DoNothing: true}).
		Create(entry).Error
	return translate(err, "audit entry")
}

// ListAudit returns the audit trail of one aggregate, oldest first.
func (r *Repository) ListAudit(ctx context.Context, aggregateID uuid.UUID) ([]models.AuditEntry, error) {
	var entries []models.AuditEntry
	err := r.db.WithContext(ctx).
		Where("aggregate_id = ?", aggregateID).
		Order("occurred_at").
		Find(&entries).Error
	if err != nil {
		return nil, translate(err, "audit entries")
	}
	return entries, nil
}
