package controller

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/gartstein/jobportal/internal/jobportal/db"
	"github.com/gartstein/jobportal/internal/jobportal/events"
	"github.com/gartstein/jobportal/internal/jobportal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// MockProducer records produced events.
type MockProducer struct {
	mu     sync.Mutex
	events []events.Event
}

func (m *MockProducer) Produce(ev events.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, ev)
}

// Types lists the produced event types in order.
func (m *MockProducer) Types() []events.EventType {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]events.EventType, 0, len(m.events))
	for _, ev := range m.events {
		out = append(out, ev.Type)
	}
	return out
}

func (m *MockProducer) Last() events.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.events[len(m.events)-1]
}

// fixture is a full service stack over a private in-memory database.
type fixture struct {
	t        *testing.T
	ctx      context.Context
	repo     *db.Repository
	producer *MockProducer
	svc      *Services
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := zaptest.NewLogger(t)
	repo, err := db.NewSQLiteRepository(fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()), logger)
	require.NoError(t, err, "failed to open test database")
	t.Cleanup(func() { _ = repo.Close() })

	producer := &MockProducer{}
	return &fixture{
		t:        t,
		ctx:      context.Background(),
		repo:     repo,
		producer: producer,
		svc:      New(repo, producer, logger),
	}
}

func (f *fixture) user(role models.Role, status models.UserStatus, companyID *uuid.UUID) models.Actor {
	f.t.Helper()
	id := uuid.New()
	u := &models.User{
		ID:        id,
		Name:      "User " + id.String()[:8],
		Email:     id.String() + "@example.com",
		Role:      role,
		Status:    status,
		CompanyID: companyID,
	}
	require.NoError(f.t, f.repo.CreateUser(f.ctx, u))
	return models.Actor{UserID: u.ID, Role: role}
}

func (f *fixture) admin() models.Actor {
	return f.user(models.RoleAdmin, models.UserActive, nil)
}

func (f *fixture) seeker() models.Actor {
	return f.user(models.RoleJobSeeker, models.UserActive, nil)
}

// recruiterAdmin creates an active recruiter admin owning a new company.
func (f *fixture) recruiterAdmin(companyName string) (models.Actor, *models.Company) {
	f.t.Helper()
	actor := f.user(models.RoleRecruiterAdmin, models.UserActive, nil)
	company, err := f.svc.Companies.CreateCompany(f.ctx, actor, &models.CompanyRequest{Name: companyName})
	require.NoError(f.t, err)
	return actor, company
}

// recruiter creates an active recruiter assigned to company.
func (f *fixture) recruiter(company *models.Company) models.Actor {
	return f.user(models.RoleRecruiter, models.UserActive, &company.ID)
}

func (f *fixture) postJob(actor models.Actor, mutate func(*models.JobRequest)) *models.Job {
	f.t.Helper()
	req := &models.JobRequest{
		Title:    "Backend Engineer",
		Location: "Berlin",
		Industry: "IT",
		JobType:  models.FullTime,
	}
	if mutate != nil {
		mutate(req)
	}
	job, err := f.svc.Jobs.CreateJob(f.ctx, actor, req, nil)
	require.NoError(f.t, err)
	return job
}

func (f *fixture) apply(seeker models.Actor, job *models.Job) *models.JobApplication {
	f.t.Helper()
	app, err := f.svc.Applications.Apply(f.ctx, seeker, &models.ApplyRequest{JobID: job.ID})
	require.NoError(f.t, err)
	return app
}
