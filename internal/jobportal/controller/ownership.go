package controller

import (
	"context"
	"errors"
	"fmt"

	e "github.com/gartstein/jobportal/internal/jobportal/errors"
	"github.com/gartstein/jobportal/internal/jobportal/models"
	"go.uber.org/zap"
)

// Registry resolves the company a recruiting actor acts for.
type Registry struct {
	repo   Repository
	logger *zap.Logger
}

func NewRegistry(repo Repository, logger *zap.Logger) *Registry {
	return &Registry{
		repo:   repo,
		logger: logger.Named("ownership_registry"),
	}
}

// ActiveUser loads the actor's user row and requires it to be ACTIVE and to
// still hold the actor's role.
func (r *Registry) ActiveUser(ctx context.Context, actor models.Actor) (*models.User, error) {
	if !actor.Authenticated() {
		return nil, fmt.Errorf("%w: authentication required", e.ErrAuthorization)
	}
	user, err := r.repo.GetUser(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return nil, fmt.Errorf("%w: unknown user %s", e.ErrAuthorization, actor.UserID)
		}
		return nil, err
	}
	if user.Role != actor.Role {
		return nil, fmt.Errorf("%w: role %s no longer held", e.ErrAuthorization, actor.Role)
	}
	if user.Status != models.UserActive {
		return nil, fmt.Errorf("%w: user is %s", e.ErrPrecondition, user.Status)
	}
	return user, nil
}

// Admin reports whether actor acts as an admin. An admin token whose user
// is no longer an ACTIVE admin is an error rather than a plain false.
func (r *Registry) Admin(ctx context.Context, actor models.Actor) (bool, error) {
	if !actor.IsAdmin() {
		return false, nil
	}
	if _, err := r.ActiveUser(ctx, actor); err != nil {
		return false, err
	}
	return true, nil
}

// ResolveCompany returns the company of a RECRUITER (assigned company) or a
// RECRUITER_ADMIN (the company it created). Other roles have no company.
func (r *Registry) ResolveCompany(ctx context.Context, actor models.Actor) (*models.Company, error) {
	if !actor.Role.Recruiting() {
		return nil, fmt.Errorf("%w: role %s acts for no company", e.ErrAuthorization, actor.Role)
	}
	user, err := r.ActiveUser(ctx, actor)
	if err != nil {
		return nil, err
	}

	var company *models.Company
	switch user.Role {
	case models.RoleRecruiterAdmin:
		company, err = r.repo.GetCompanyByCreator(ctx, user.ID)
	default:
		if user.CompanyID == nil {
			return nil, fmt.Errorf("%w: recruiter has no company assigned", e.ErrPrecondition)
		}
		company, err = r.repo.GetCompany(ctx, *user.CompanyID)
	}
	if err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return nil, fmt.Errorf("%w: no company registered for %s", e.ErrPrecondition, actor)
		}
		return nil, err
	}
	return company, nil
}

// Guard is the single authority on who may modify a job and its
// applications.
type Guard struct {
	registry *Registry
	logger   *zap.Logger
}

func NewGuard(registry *Registry, logger *zap.Logger) *Guard {
	return &Guard{
		registry: registry,
		logger:   logger.Named("ownership_guard"),
	}
}

// CanModify reports whether actor may modify job. Active admins always
// may; a recruiting actor may only when its resolved company owns the job.
func (g *Guard) CanModify(ctx context.Context, actor models.Actor, job *models.Job) (bool, error) {
	if actor.IsAdmin() {
		return g.registry.Admin(ctx, actor)
	}
	if !actor.Authenticated() || !actor.Role.Recruiting() {
		return false, nil
	}
	company, err := g.registry.ResolveCompany(ctx, actor)
	if err != nil {
		if errors.Is(err, e.ErrPrecondition) || errors.Is(err, e.ErrAuthorization) {
			return false, nil
		}
		return false, err
	}
	return company.ID == job.CompanyID, nil
}

// Authorize is CanModify with a denial turned into ErrAuthorization.
func (g *Guard) Authorize(ctx context.Context, actor models.Actor, job *models.Job) error {
	ok, err := g.CanModify(ctx, actor, job)
	if err != nil {
		return err
	}
	if !ok {
		g.logger.Debug("modification denied",
			zap.Stringer("actor", actor),
			zap.String("job_id", job.ID.String()),
			zap.String("company_id", job.CompanyID.String()),
		)
		return fmt.Errorf("%w: cross-company modification denied", e.ErrAuthorization)
	}
	return nil
}
