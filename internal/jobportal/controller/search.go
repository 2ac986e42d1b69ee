package controller

import (
	"context"
	"errors"
	"fmt"
	"strings"

	e "github.com/gartstein/jobportal/internal/jobportal/errors"
	"github.com/gartstein/jobportal/internal/jobportal/models"
	"github.com/gartstein/jobportal/internal/jobportal/query"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SearchService answers job discovery queries. It never writes.
type SearchService struct {
	repo   Repository
	logger *zap.Logger
}

func NewSearchService(repo Repository, logger *zap.Logger) *SearchService {
	return &SearchService{
		repo:   repo,
		logger: logger.Named("search_service"),
	}
}

// SearchJobs pages through the jobs matching criteria. Visibility rules of
// the actor always apply on top of the criteria.
func (s *SearchService) SearchJobs(ctx context.Context, actor models.Actor, criteria query.Criteria, page models.PageRequest) (models.Page[models.Job], error) {
	spec := query.ComposeJobSearch(criteria, query.VisibilityFor(actor))
	s.logger.Debug("searching jobs", zap.Stringer("where", spec.Where), zap.Stringer("actor", actor))
	return findJobs(ctx, s.repo, spec, page)
}

// Suggestions returns up to ten distinct titles of open jobs containing
// keyword.
func (s *SearchService) Suggestions(ctx context.Context, keyword string) ([]string, error) {
	if strings.TrimSpace(keyword) == "" {
		return []string{}, nil
	}
	titles, err := s.repo.DistinctJobTitles(ctx, query.TitleSuggestions(keyword))
	if err != nil {
		return nil, fmt.Errorf("failed to suggest titles: %w", err)
	}
	return titles, nil
}

// SuggestedJobs recommends open jobs sharing location and industry with the
// job the user applied to most recently.
func (s *SearchService) SuggestedJobs(ctx context.Context, actor models.Actor, userID uuid.UUID) ([]models.Job, error) {
	if !actor.IsAdmin() && (!actor.Authenticated() || actor.UserID != userID) {
		return nil, fmt.Errorf("%w: suggestions are personal", e.ErrAuthorization)
	}
	last, err := s.repo.LastApplication(ctx, userID)
	if err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return nil, fmt.Errorf("%w: no application history for %s", e.ErrNotFound, userID)
		}
		return nil, err
	}
	if last.Job == nil {
		return nil, fmt.Errorf("%w: job of application %s", e.ErrNotFound, last.ID)
	}
	return s.list(ctx, query.SuggestedJobs(last.Job.Location, last.Job.Industry))
}

// SimilarJobs returns up to six open jobs with the same industry and type,
// excluding the job itself.
func (s *SearchService) SimilarJobs(ctx context.Context, jobID uuid.UUID) ([]models.Job, error) {
	job, err := visibleJob(ctx, s.repo, jobID)
	if err != nil {
		return nil, err
	}
	return s.list(ctx, query.SimilarJobs(job))
}

// TrendingJobs returns the ten most viewed jobs visible to actor.
func (s *SearchService) TrendingJobs(ctx context.Context, actor models.Actor) ([]models.Job, error) {
	return s.list(ctx, query.TrendingJobs(query.VisibilityFor(actor)))
}

func (s *SearchService) list(ctx context.Context, spec query.Spec) ([]models.Job, error) {
	jobs, err := s.repo.ListJobs(ctx, spec)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	if jobs == nil {
		jobs = []models.Job{}
	}
	return jobs, nil
}
