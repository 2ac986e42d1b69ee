package controller

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	e "github.com/gartstein/jobportal/internal/jobportal/errors"
	"github.com/gartstein/jobportal/internal/jobportal/events"
	"github.com/gartstein/jobportal/internal/jobportal/models"
	"github.com/gartstein/jobportal/internal/jobportal/query"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ApplicationService manages job applications.
type ApplicationService struct {
	repo     Repository
	registry *Registry
	guard    *Guard
	producer EventProducer
	logger   *zap.Logger
	now      func() time.Time
}

func NewApplicationService(repo Repository, registry *Registry, guard *Guard, producer EventProducer, logger *zap.Logger) *ApplicationService {
	return &ApplicationService{
		repo:     repo,
		registry: registry,
		guard:    guard,
		producer: producer,
		logger:   logger.Named("application_service"),
		now:      utcNow,
	}
}

// Apply submits the actor's application to an open job. Applicant fields
// missing from the request are taken from the user and the job seeker's
// profile. Applying twice to the same job fails with ErrConflict.
func (s *ApplicationService) Apply(ctx context.Context, actor models.Actor, req *models.ApplyRequest) (*models.JobApplication, error) {
	if !actor.Authenticated() || actor.Role != models.RoleJobSeeker {
		return nil, fmt.Errorf("%w: only job seekers apply", e.ErrAuthorization)
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	user, err := s.registry.ActiveUser(ctx, actor)
	if err != nil {
		return nil, err
	}

	job, err := visibleJob(ctx, s.repo, req.JobID)
	if err != nil {
		return nil, err
	}
	if job.Status != models.JobOpen {
		return nil, fmt.Errorf("%w: job %s is not open", e.ErrPrecondition, job.ID)
	}

	now := s.now()
	app := &models.JobApplication{
		ID:               uuid.New(),
		JobID:            job.ID,
		JobSeekerID:      user.ID,
		Source:           req.Source(),
		ExternalApplyURL: req.ExternalApplyURL,
		FullName:         firstNonBlank(req.FullName, user.Name),
		Email:            firstNonBlank(req.Email, user.Email),
		Phone:            firstNonBlank(req.Phone, user.Phone),
		Skills:           strings.TrimSpace(req.Skills),
		CoverLetter:      req.CoverLetter,
		ResumeURL:        strings.TrimSpace(req.ResumeURL),
		Status:           models.StatusApplied,
		AppliedAt:        now,
		UpdatedAt:        now,
	}
	if app.Skills == "" {
		profile, err := s.repo.GetProfileByUser(ctx, user.ID)
		switch {
		case err == nil:
			app.Skills = profile.SkillNames()
		case !errors.Is(err, e.ErrNotFound):
			return nil, fmt.Errorf("failed to load profile: %w", err)
		}
	}

	if err := s.repo.CreateApplication(ctx, app); err != nil {
		if errors.Is(err, e.ErrConflict) {
			return nil, fmt.Errorf("%w: already applied to job %s", e.ErrConflict, job.ID)
		}
		return nil, fmt.Errorf("failed to create application: %w", err)
	}
	app.Job = job

	s.producer.Produce(events.NewEvent(events.ApplicationSubmitted, app.ID, actor, map[string]any{
		"job_id":        job.ID,
		"job_seeker_id": user.ID,
		"source":        app.Source,
	}))
	return app, nil
}

// ChangeApplicationStatus moves an application to status. Admins may set
// any status; recruiting actors need the guard's approval for the job and
// a legal transition.
func (s *ApplicationService) ChangeApplicationStatus(ctx context.Context, actor models.Actor, applicationID uuid.UUID, status models.ApplicationStatus) (*models.JobApplication, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown application status %q", e.ErrValidation, status)
	}
	app, err := s.repo.GetApplication(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	job := app.Job
	if job == nil {
		if job, err = s.repo.GetJob(ctx, app.JobID); err != nil {
			return nil, err
		}
	}

	admin, err := s.registry.Admin(ctx, actor)
	if err != nil {
		return nil, err
	}
	if !admin {
		if err := s.guard.Authorize(ctx, actor, job); err != nil {
			return nil, err
		}
		if !app.Status.CanTransitionTo(status) {
			return nil, fmt.Errorf("%w: cannot move application from %s to %s", e.ErrPrecondition, app.Status, status)
		}
	}

	change := events.StatusChange{From: string(app.Status), To: string(status)}
	app.Status = status
	app.UpdatedBy = &actor.UserID
	app.UpdatedAt = s.now()
	if err := s.repo.UpdateApplication(ctx, app); err != nil {
		return nil, fmt.Errorf("failed to change application status: %w", err)
	}

	s.logger.Info("application status changed",
		zap.String("application_id", app.ID.String()),
		zap.String("from", change.From),
		zap.String("to", change.To),
		zap.Stringer("actor", actor),
	)
	s.producer.Produce(events.NewEvent(events.ApplicationStatusChanged, app.ID, actor, change))
	return app, nil
}

// ListApplicationsByJob pages through the applications of one job. Admins
// see any job; recruiting actors only jobs the guard lets them modify.
func (s *ApplicationService) ListApplicationsByJob(ctx context.Context, actor models.Actor, jobID uuid.UUID, page models.PageRequest) (models.Page[models.JobApplication], error) {
	job, err := s.repo.GetJob(ctx, jobID)
	if err != nil {
		return models.Page[models.JobApplication]{}, err
	}
	if err := s.guard.Authorize(ctx, actor, job); err != nil {
		return models.Page[models.JobApplication]{}, err
	}
	return s.find(ctx, query.Eq(query.ApplicationJobID, jobID), page)
}

// ListMyApplications pages through the actor's own applications.
func (s *ApplicationService) ListMyApplications(ctx context.Context, actor models.Actor, page models.PageRequest) (models.Page[models.JobApplication], error) {
	if !actor.Authenticated() || actor.Role != models.RoleJobSeeker {
		return models.Page[models.JobApplication]{}, fmt.Errorf("%w: only job seekers have applications", e.ErrAuthorization)
	}
	return s.find(ctx, query.Eq(query.ApplicationJobSeekerID, actor.UserID), page)
}

// ListCompanyApplications pages through every application to the jobs of
// the actor's company.
func (s *ApplicationService) ListCompanyApplications(ctx context.Context, actor models.Actor, page models.PageRequest) (models.Page[models.JobApplication], error) {
	company, err := s.registry.ResolveCompany(ctx, actor)
	if err != nil {
		return models.Page[models.JobApplication]{}, err
	}
	return s.find(ctx, query.Eq(query.ApplicationJobCompanyID, company.ID), page)
}

func (s *ApplicationService) find(ctx context.Context, where query.Predicate, page models.PageRequest) (models.Page[models.JobApplication], error) {
	page, err := page.Normalize()
	if err != nil {
		return models.Page[models.JobApplication]{}, err
	}
	spec := query.Spec{Where: where, OrderBy: query.NewestApplicationsFirst}
	apps, total, err := s.repo.FindApplications(ctx, spec, page)
	if err != nil {
		return models.Page[models.JobApplication]{}, fmt.Errorf("failed to find applications: %w", err)
	}
	return models.NewPage(apps, page, total), nil
}

func firstNonBlank(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
