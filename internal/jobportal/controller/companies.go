package controller

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gartstein/jobportal/internal/jobportal/db"
	e "github.com/gartstein/jobportal/internal/jobportal/errors"
	"github.com/gartstein/jobportal/internal/jobportal/events"
	"github.com/gartstein/jobportal/internal/jobportal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CompanyService manages users, companies and the assignment of recruiters
// to companies, which is what the ownership registry reads.
type CompanyService struct {
	repo     Repository
	registry *Registry
	producer EventProducer
	logger   *zap.Logger
}

// NewCompanyService constructs a CompanyService with a repository,
// an event producer, and a logger.
func NewCompanyService(repo Repository, registry *Registry, producer EventProducer, logger *zap.Logger) *CompanyService {
	return &CompanyService{
		repo:     repo,
		registry: registry,
		producer: producer,
		logger:   logger.Named("company_service"),
	}
}

// RegisterUser creates an account. Recruiters start PENDING until a
// recruiter admin approves them; everyone else starts ACTIVE.
func (s *CompanyService) RegisterUser(ctx context.Context, req *models.RegisterUserRequest) (*models.User, error) {
	role, err := req.Validate()
	if err != nil {
		return nil, err
	}
	user := &models.User{
		ID:     uuid.New(),
		Name:   strings.TrimSpace(req.Name),
		Email:  strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:  strings.TrimSpace(req.Phone),
		Role:   role,
		Status: models.UserActive,
	}
	if role == models.RoleRecruiter {
		user.Status = models.UserPending
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, e.ErrConflict) {
			return nil, fmt.Errorf("%w: email already registered", e.ErrConflict)
		}
		return nil, fmt.Errorf("failed to register user: %w", err)
	}
	s.producer.Produce(events.NewEvent(events.UserRegistered, user.ID, models.Actor{UserID: user.ID, Role: role}, map[string]any{
		"role":   user.Role,
		"status": user.Status,
	}))
	return user, nil
}

// GetCompany retrieves a Company by ID, returning an error if not found.
func (s *CompanyService) GetCompany(ctx context.Context, id uuid.UUID) (*models.Company, error) {
	return s.repo.GetCompany(ctx, id)
}

// CreateCompany registers a company. A recruiter admin may own a single
// company and becomes its owner.
func (s *CompanyService) CreateCompany(ctx context.Context, actor models.Actor, req *models.CompanyRequest) (*models.Company, error) {
	var owner *models.User
	switch {
	case actor.IsAdmin():
		if _, err := s.registry.ActiveUser(ctx, actor); err != nil {
			return nil, err
		}
	case actor.Authenticated() && actor.Role == models.RoleRecruiterAdmin:
		user, err := s.registry.ActiveUser(ctx, actor)
		if err != nil {
			return nil, err
		}
		_, err = s.repo.GetCompanyByCreator(ctx, user.ID)
		if err == nil {
			return nil, fmt.Errorf("%w: recruiter admin already owns a company", e.ErrConflict)
		}
		if !errors.Is(err, e.ErrNotFound) {
			return nil, err
		}
		owner = user
	default:
		return nil, fmt.Errorf("%w: %s may not create companies", e.ErrAuthorization, actor)
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	exists, err := s.repo.CompanyExistsByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to check name existence: %w", err)
	}
	if exists {
		return nil, fmt.Errorf("%w: company %q already exists", e.ErrConflict, name)
	}

	company := &models.Company{
		ID:          uuid.New(),
		Name:        name,
		Description: req.Description,
		Website:     strings.TrimSpace(req.Website),
		Location:    strings.TrimSpace(req.Location),
		LogoURL:     strings.TrimSpace(req.LogoURL),
		Active:      true,
		CreatedByID: actor.UserID,
	}
	err = s.repo.WithTransaction(ctx, func(tx *db.Repository) error {
		if err := tx.CreateCompany(ctx, company); err != nil {
			return err
		}
		if owner == nil {
			return nil
		}
		owner.CompanyID = &company.ID
		return tx.UpdateUser(ctx, owner)
	})
	if err != nil {
		if errors.Is(err, e.ErrConflict) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create company: %w", err)
	}

	s.producer.Produce(events.NewEvent(events.CompanyCreated, company.ID, actor, company))
	return company, nil
}

// UpdateCompany replaces the editable fields of a company.
func (s *CompanyService) UpdateCompany(ctx context.Context, actor models.Actor, companyID uuid.UUID, req *models.CompanyRequest) (*models.Company, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	company, err := s.ownedCompany(ctx, actor, companyID)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	if name != company.Name {
		exists, err := s.repo.CompanyExistsByName(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("failed to check name existence: %w", err)
		}
		if exists {
			return nil, fmt.Errorf("%w: company %q already exists", e.ErrConflict, name)
		}
	}
	company.Name = name
	company.Description = req.Description
	company.Website = strings.TrimSpace(req.Website)
	company.Location = strings.TrimSpace(req.Location)
	company.LogoURL = strings.TrimSpace(req.LogoURL)

	if err := s.repo.UpdateCompany(ctx, company); err != nil {
		if errors.Is(err, e.ErrConflict) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update company: %w", err)
	}
	s.producer.Produce(events.NewEvent(events.CompanyUpdated, company.ID, actor, company))
	return company, nil
}

// DeactivateCompany soft-deletes a company. Its jobs stay but no new ones
// can be posted.
func (s *CompanyService) DeactivateCompany(ctx context.Context, actor models.Actor, companyID uuid.UUID) error {
	company, err := s.ownedCompany(ctx, actor, companyID)
	if err != nil {
		return err
	}
	if !company.Active {
		return nil
	}
	company.Active = false
	if err := s.repo.UpdateCompany(ctx, company); err != nil {
		return fmt.Errorf("failed to deactivate company: %w", err)
	}
	s.producer.Produce(events.NewEvent(events.CompanyDeactivated, company.ID, actor, nil))
	return nil
}

// ApproveRecruiter assigns a pending recruiter to the actor's company and
// activates it.
func (s *CompanyService) ApproveRecruiter(ctx context.Context, actor models.Actor, recruiterID uuid.UUID) (*models.User, error) {
	if actor.Role != models.RoleRecruiterAdmin {
		return nil, fmt.Errorf("%w: only recruiter admins approve recruiters", e.ErrAuthorization)
	}
	company, err := s.registry.ResolveCompany(ctx, actor)
	if err != nil {
		return nil, err
	}
	if !company.Active {
		return nil, fmt.Errorf("%w: company %q is inactive", e.ErrPrecondition, company.Name)
	}
	recruiter, err := s.recruiter(ctx, recruiterID)
	if err != nil {
		return nil, err
	}
	if recruiter.CompanyID != nil && *recruiter.CompanyID != company.ID {
		return nil, fmt.Errorf("%w: recruiter belongs to another company", e.ErrConflict)
	}
	if recruiter.Status == models.UserBlocked {
		return nil, fmt.Errorf("%w: recruiter is blocked", e.ErrPrecondition)
	}

	recruiter.CompanyID = &company.ID
	recruiter.Status = models.UserActive
	if err := s.repo.UpdateUser(ctx, recruiter); err != nil {
		return nil, fmt.Errorf("failed to approve recruiter: %w", err)
	}
	s.producer.Produce(events.NewEvent(events.RecruiterApproved, recruiter.ID, actor, map[string]any{
		"company_id": company.ID,
	}))
	return recruiter, nil
}

// SetRecruiterBlocked blocks or unblocks a recruiter. Admins may do so for
// anyone; recruiter admins only within their company.
func (s *CompanyService) SetRecruiterBlocked(ctx context.Context, actor models.Actor, recruiterID uuid.UUID, blocked bool) (*models.User, error) {
	recruiter, err := s.recruiter(ctx, recruiterID)
	if err != nil {
		return nil, err
	}
	switch {
	case actor.IsAdmin():
		if _, err := s.registry.ActiveUser(ctx, actor); err != nil {
			return nil, err
		}
	case actor.Role == models.RoleRecruiterAdmin:
		company, err := s.registry.ResolveCompany(ctx, actor)
		if err != nil {
			return nil, err
		}
		if recruiter.CompanyID == nil || *recruiter.CompanyID != company.ID {
			return nil, fmt.Errorf("%w: recruiter belongs to another company", e.ErrAuthorization)
		}
	default:
		return nil, fmt.Errorf("%w: %s may not block recruiters", e.ErrAuthorization, actor)
	}
	return s.setBlocked(ctx, actor, recruiter, blocked)
}

// SetUserBlocked blocks or unblocks any user. Admin only.
func (s *CompanyService) SetUserBlocked(ctx context.Context, actor models.Actor, userID uuid.UUID, blocked bool) (*models.User, error) {
	admin, err := s.registry.Admin(ctx, actor)
	if err != nil {
		return nil, err
	}
	if !admin {
		return nil, fmt.Errorf("%w: only admins block users", e.ErrAuthorization)
	}
	if actor.UserID == userID {
		return nil, fmt.Errorf("%w: admins cannot block themselves", e.ErrValidation)
	}
	user, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.setBlocked(ctx, actor, user, blocked)
}

func (s *CompanyService) setBlocked(ctx context.Context, actor models.Actor, user *models.User, blocked bool) (*models.User, error) {
	eventType := events.UserUnblocked
	switch {
	case blocked:
		user.Status = models.UserBlocked
		eventType = events.UserBlocked
	case user.Role == models.RoleRecruiter && user.CompanyID == nil:
		// An unassigned recruiter still awaits approval.
		user.Status = models.UserPending
	default:
		user.Status = models.UserActive
	}
	if err := s.repo.UpdateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user status: %w", err)
	}
	s.logger.Info("user status changed",
		zap.String("user_id", user.ID.String()),
		zap.String("status", string(user.Status)),
		zap.Stringer("actor", actor),
	)
	s.producer.Produce(events.NewEvent(eventType, user.ID, actor, nil))
	return user, nil
}

func (s *CompanyService) recruiter(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.repo.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if user.Role != models.RoleRecruiter {
		return nil, fmt.Errorf("%w: user %s is not a recruiter", e.ErrValidation, id)
	}
	return user, nil
}

// ownedCompany loads a company the actor administers: any company for an
// admin, the owned company for a recruiter admin.
func (s *CompanyService) ownedCompany(ctx context.Context, actor models.Actor, companyID uuid.UUID) (*models.Company, error) {
	switch {
	case actor.IsAdmin():
		if _, err := s.registry.ActiveUser(ctx, actor); err != nil {
			return nil, err
		}
		return s.repo.GetCompany(ctx, companyID)
	case actor.Role == models.RoleRecruiterAdmin:
		company, err := s.registry.ResolveCompany(ctx, actor)
		if err != nil {
			return nil, err
		}
		if company.ID != companyID {
			return nil, fmt.Errorf("%w: company is administered by someone else", e.ErrAuthorization)
		}
		return company, nil
	}
	return nil, fmt.Errorf("%w: %s may not administer companies", e.ErrAuthorization, actor)
}
