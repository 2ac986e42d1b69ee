package events

import (
	"context"
	"errors"
	"testing"

	"github.com/gartstein/jobportal/internal/jobportal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap/zaptest"
)

type MockAuditStore struct {
	mock.Mock
}

func (m *MockAuditStore) RecordAudit(ctx context.Context, entry *models.AuditEntry) error {
	return m.Called(ctx, entry).Error(0)
}

func TestAuditRecorder(t *testing.T) {
	ev := testEvent()

	t.Run("records the event", func(t *testing.T) {
		store := new(MockAuditStore)
		store.On("RecordAudit", mock.Anything, mock.MatchedBy(func(entry *models.AuditEntry) bool {
			return entry.ID == ev.ID &&
				entry.EventType == string(ev.Type) &&
				entry.AggregateID == ev.AggregateID &&
				!entry.RecordedAt.IsZero()
		})).Return(nil)

		err := AuditRecorder(store, zaptest.NewLogger(t))(context.Background(), ev)

		assert.NoError(t, err)
		store.AssertExpectations(t)
	})

	t.Run("store failure is returned", func(t *testing.T) {
		store := new(MockAuditStore)
		store.On("RecordAudit", mock.Anything, mock.Anything).Return(errors.New("disk full"))

		err := AuditRecorder(store, zaptest.NewLogger(t))(context.Background(), ev)

		assert.ErrorContains(t, err, "disk full")
	})
}
