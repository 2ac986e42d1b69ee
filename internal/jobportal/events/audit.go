package events

import (
	"context"
	"fmt"
	"time"

	"github.com/gartstein/jobportal/internal/jobportal/models"
	"go.uber.org/zap"
)

// AuditStore persists audit entries.
type AuditStore interface {
	RecordAudit(ctx context.Context, entry *models.AuditEntry) error
}

// AuditRecorder returns a consumer handler that writes every event to the
// audit trail.
func AuditRecorder(store AuditStore, logger *zap.Logger) Handler {
	logger = logger.Named("audit")
	return func(ctx context.Context, ev Event) error {
		if err := store.RecordAudit(ctx, ev.AuditEntry(time.Now().UTC())); err != nil {
			return fmt.Errorf("failed to record %s: %w", ev.Type, err)
		}
		logger.Debug("event recorded",
			zap.String("event_type", string(ev.Type)),
			zap.String("aggregate_id", ev.AggregateID.String()),
		)
		return nil
	}
}
