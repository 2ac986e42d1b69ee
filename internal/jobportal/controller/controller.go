// Package controller implements the core business logic (service layer) of
// the job portal: ownership checks, the job and application lifecycles,
// job discovery, company administration and the dashboards. Services take
// the acting identity explicitly, run writes against the repository and
// publish a domain event once a write has committed.
package controller

import (
	"context"
	"time"

	"github.com/gartstein/jobportal/internal/jobportal/db"
	"github.com/gartstein/jobportal/internal/jobportal/events"
	"github.com/gartstein/jobportal/internal/jobportal/models"
	"github.com/gartstein/jobportal/internal/jobportal/query"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// EventProducer publishes domain events. Produce must not block.
type EventProducer interface {
	Produce(event events.Event)
}

// Repository defines the storage the services depend on.
type Repository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error
	ListUsers(ctx context.Context, spec query.Spec) ([]models.User, error)
	CountUsers(ctx context.Context, p query.Predicate) (int64, error)
	CountUsersByRole(ctx context.Context, p query.Predicate) (map[models.Role]int64, error)
	GetProfileByUser(ctx context.Context, userID uuid.UUID) (*models.JobSeekerProfile, error)

	CreateCompany(ctx context.Context, company *models.Company) error
	GetCompany(ctx context.Context, id uuid.UUID) (*models.Company, error)
	GetCompanyByCreator(ctx context.Context, userID uuid.UUID) (*models.Company, error)
	UpdateCompany(ctx context.Context, company *models.Company) error
	CompanyExistsByName(ctx context.Context, name string) (bool, error)
	ListCompanies(ctx context.Context, spec query.Spec) ([]models.Company, error)
	CountCompanies(ctx context.Context, p query.Predicate) (int64, error)

	CreateJob(ctx context.Context, job *models.Job) error
	GetJob(ctx context.Context, id uuid.UUID) (*models.Job, error)
	UpdateJob(ctx context.Context, job *models.Job) error
	ArchiveJob(ctx context.Context, id uuid.UUID) error
	IncrementViewCount(ctx context.Context, id uuid.UUID) error
	FindJobs(ctx context.Context, spec query.Spec, page models.PageRequest) ([]models.Job, int64, error)
	ListJobs(ctx context.Context, spec query.Spec) ([]models.Job, error)
	DistinctJobTitles(ctx context.Context, spec query.Spec) ([]string, error)
	CountJobs(ctx context.Context, p query.Predicate) (int64, error)
	CountJobsByIndustry(ctx context.Context, p query.Predicate) (map[string]int64, error)
	CountJobsWithoutApplications(ctx context.Context) (int64, error)

	CreateApplication(ctx context.Context, app *models.JobApplication) error
	GetApplication(ctx context.Context, id uuid.UUID) (*models.JobApplication, error)
	UpdateApplication(ctx context.Context, app *models.JobApplication) error
	LastApplication(ctx context.Context, jobSeekerID uuid.UUID) (*models.JobApplication, error)
	FindApplications(ctx context.Context, spec query.Spec, page models.PageRequest) ([]models.JobApplication, int64, error)
	ListApplications(ctx context.Context, spec query.Spec) ([]models.JobApplication, error)
	CountApplications(ctx context.Context, p query.Predicate) (int64, error)
	CountApplicationsByStatus(ctx context.Context, p query.Predicate) (map[models.ApplicationStatus]int64, error)

	WithTransaction(ctx context.Context, fn func(repo *db.Repository) error) error
	Close() error
}

// Services bundles every service over one repository and producer.
type Services struct {
	Registry     *Registry
	Guard        *Guard
	Companies    *CompanyService
	Jobs         *JobService
	Search       *SearchService
	Applications *ApplicationService
	Dashboard    *DashboardService
}

// New wires all services.
func New(repo Repository, producer EventProducer, logger *zap.Logger) *Services {
	registry := NewRegistry(repo, logger)
	guard := NewGuard(registry, logger)
	return &Services{
		Registry:     registry,
		Guard:        guard,
		Companies:    NewCompanyService(repo, registry, producer, logger),
		Jobs:         NewJobService(repo, registry, guard, producer, logger),
		Search:       NewSearchService(repo, logger),
		Applications: NewApplicationService(repo, registry, guard, producer, logger),
		Dashboard:    NewDashboardService(repo, registry, logger),
	}
}

func utcNow() time.Time {
	return time.Now().UTC()
}
