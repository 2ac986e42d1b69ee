package controller

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gartstein/jobportal/internal/jobportal/db"
	e "github.com/gartstein/jobportal/internal/jobportal/errors"
	"github.com/gartstein/jobportal/internal/jobportal/events"
	"github.com/gartstein/jobportal/internal/jobportal/models"
	"github.com/gartstein/jobportal/internal/jobportal/query"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// JobService manages job postings.
type JobService struct {
	repo     Repository
	registry *Registry
	guard    *Guard
	producer EventProducer
	logger   *zap.Logger
}

func NewJobService(repo Repository, registry *Registry, guard *Guard, producer EventProducer, logger *zap.Logger) *JobService {
	return &JobService{
		repo:     repo,
		registry: registry,
		guard:    guard,
		producer: producer,
		logger:   logger.Named("job_service"),
	}
}

// CreateJob posts a job. Admins name the company explicitly; recruiting
// actors post for the company the registry resolves for them.
func (s *JobService) CreateJob(ctx context.Context, actor models.Actor, req *models.JobRequest, companyID *uuid.UUID) (*models.Job, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var company *models.Company
	var err error
	switch {
	case actor.IsAdmin():
		if companyID == nil || *companyID == uuid.Nil {
			return nil, fmt.Errorf("%w: company id required", e.ErrValidation)
		}
		if _, err = s.registry.ActiveUser(ctx, actor); err == nil {
			company, err = s.repo.GetCompany(ctx, *companyID)
		}
	case actor.Authenticated() && actor.Role.Recruiting():
		company, err = s.registry.ResolveCompany(ctx, actor)
		if err == nil && companyID != nil && *companyID != company.ID {
			err = fmt.Errorf("%w: cross-company modification denied", e.ErrAuthorization)
		}
	default:
		return nil, fmt.Errorf("%w: %s may not post jobs", e.ErrAuthorization, actor)
	}
	if err != nil {
		return nil, err
	}
	if !company.Active {
		return nil, fmt.Errorf("%w: company %q is inactive", e.ErrPrecondition, company.Name)
	}

	job := &models.Job{
		ID:          uuid.New(),
		Status:      models.JobOpen,
		CompanyID:   company.ID,
		CreatedByID: actor.UserID,
	}
	req.Apply(job)
	if err := s.repo.CreateJob(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to create job: %w", err)
	}
	job.Company = company

	s.logger.Info("job created",
		zap.String("job_id", job.ID.String()),
		zap.String("company_id", company.ID.String()),
		zap.Stringer("actor", actor),
	)
	s.producer.Produce(events.NewEvent(events.JobCreated, job.ID, actor, job))
	return job, nil
}

// UpdateJob replaces the editable fields of a job. Company and status are
// never changed here.
func (s *JobService) UpdateJob(ctx context.Context, actor models.Actor, jobID uuid.UUID, req *models.JobRequest) (*models.Job, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	job, err := s.visibleJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if err := s.guard.Authorize(ctx, actor, job); err != nil {
		return nil, err
	}

	req.Apply(job)
	if err := s.repo.UpdateJob(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to update job: %w", err)
	}
	s.producer.Produce(events.NewEvent(events.JobUpdated, job.ID, actor, job))
	return job, nil
}

// ChangeJobStatus opens or closes a job. Any transition between the two is
// allowed.
func (s *JobService) ChangeJobStatus(ctx context.Context, actor models.Actor, jobID uuid.UUID, status models.JobStatus) (*models.Job, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown job status %q", e.ErrValidation, status)
	}
	job, err := s.visibleJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if err := s.guard.Authorize(ctx, actor, job); err != nil {
		return nil, err
	}

	change := events.StatusChange{From: string(job.Status), To: string(status)}
	job.Status = status
	if err := s.repo.UpdateJob(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to change job status: %w", err)
	}
	s.producer.Produce(events.NewEvent(events.JobStatusChanged, job.ID, actor, change))
	return job, nil
}

// DeleteJob removes a job and all of its applications in one transaction.
// Either both go or neither does.
func (s *JobService) DeleteJob(ctx context.Context, actor models.Actor, jobID uuid.UUID) error {
	job, err := s.repo.GetJob(ctx, jobID)
	if err != nil {
		return err
	}
	if err := s.guard.Authorize(ctx, actor, job); err != nil {
		return err
	}

	var removed int64
	err = s.repo.WithTransaction(ctx, func(tx *db.Repository) error {
		n, err := tx.DeleteApplicationsByJob(ctx, jobID)
		if err != nil {
			return err
		}
		removed = n
		return tx.DeleteJob(ctx, jobID)
	})
	if err != nil {
		return fmt.Errorf("failed to delete job: %w", err)
	}

	s.logger.Info("job deleted",
		zap.String("job_id", jobID.String()),
		zap.Int64("applications_removed", removed),
		zap.Stringer("actor", actor),
	)
	s.producer.Produce(events.NewEvent(events.JobDeleted, jobID, actor, map[string]any{
		"company_id":           job.CompanyID,
		"applications_removed": removed,
	}))
	return nil
}

// ArchiveJob hides a job from every read path while keeping its
// applications. Admin only.
func (s *JobService) ArchiveJob(ctx context.Context, actor models.Actor, jobID uuid.UUID) error {
	admin, err := s.registry.Admin(ctx, actor)
	if err != nil {
		return err
	}
	if !admin {
		return fmt.Errorf("%w: only admins archive jobs", e.ErrAuthorization)
	}
	job, err := s.visibleJob(ctx, jobID)
	if err != nil {
		return err
	}
	if err := s.repo.ArchiveJob(ctx, job.ID); err != nil {
		return fmt.Errorf("failed to archive job: %w", err)
	}
	job.Deleted = true
	s.producer.Produce(events.NewEvent(events.JobArchived, job.ID, actor, nil))
	return nil
}

// GetJob returns a job. Views by the public are counted.
func (s *JobService) GetJob(ctx context.Context, actor models.Actor, jobID uuid.UUID) (*models.Job, error) {
	job, err := s.visibleJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if !actor.Privileged() {
		if err := s.repo.IncrementViewCount(ctx, jobID); err != nil {
			s.logger.Warn("failed to count job view", zap.Error(err), zap.String("job_id", jobID.String()))
		} else {
			job.ViewCount++
		}
	}
	return job, nil
}

// ListJobs pages through every job visible to actor, newest first.
func (s *JobService) ListJobs(ctx context.Context, actor models.Actor, page models.PageRequest) (models.Page[models.Job], error) {
	return s.find(ctx, query.ComposeJobSearch(query.Criteria{}, query.VisibilityFor(actor)), page)
}

// ListJobsByCompany pages through the visible jobs of one company.
func (s *JobService) ListJobsByCompany(ctx context.Context, actor models.Actor, companyID uuid.UUID, page models.PageRequest) (models.Page[models.Job], error) {
	return s.find(ctx, query.JobsByCompany(query.VisibilityFor(actor), companyID), page)
}

// LatestJobs pages through visible jobs created before lastSeen, newest
// first. A nil lastSeen starts at the newest job.
func (s *JobService) LatestJobs(ctx context.Context, actor models.Actor, lastSeen *time.Time, page models.PageRequest) (models.Page[models.Job], error) {
	return s.find(ctx, query.LatestJobs(query.VisibilityFor(actor), lastSeen), page)
}

// JobsByIndustry pages through open jobs of an industry, ignoring case.
func (s *JobService) JobsByIndustry(ctx context.Context, industry string, page models.PageRequest) (models.Page[models.Job], error) {
	if strings.TrimSpace(industry) == "" {
		return models.Page[models.Job]{}, fmt.Errorf("%w: industry required", e.ErrValidation)
	}
	return s.find(ctx, query.JobsByIndustry(industry), page)
}

func (s *JobService) find(ctx context.Context, spec query.Spec, page models.PageRequest) (models.Page[models.Job], error) {
	return findJobs(ctx, s.repo, spec, page)
}

// visibleJob loads a job that has not been archived.
func (s *JobService) visibleJob(ctx context.Context, jobID uuid.UUID) (*models.Job, error) {
	return visibleJob(ctx, s.repo, jobID)
}

func visibleJob(ctx context.Context, repo Repository, jobID uuid.UUID) (*models.Job, error) {
	job, err := repo.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.Deleted {
		return nil, fmt.Errorf("%w: job %s", e.ErrNotFound, jobID)
	}
	return job, nil
}

func findJobs(ctx context.Context, repo Repository, spec query.Spec, page models.PageRequest) (models.Page[models.Job], error) {
	page, err := page.Normalize()
	if err != nil {
		return models.Page[models.Job]{}, err
	}
	jobs, total, err := repo.FindJobs(ctx, spec, page)
	if err != nil {
		return models.Page[models.Job]{}, fmt.Errorf("failed to find jobs: %w", err)
	}
	return models.NewPage(jobs, page, total), nil
}
