package controller

import (
	"context"
	"fmt"
	"time"

	e "github.com/gartstein/jobportal/internal/jobportal/errors"
	"github.com/gartstein/jobportal/internal/jobportal/models"
	"github.com/gartstein/jobportal/internal/jobportal/query"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	recentLimit        = 5
	trendDays          = 7
	expiringWindow     = 7 * 24 * time.Hour
	growthWindow       = 30 * 24 * time.Hour
	applicationsWindow = 7 * 24 * time.Hour
)

var recruitingRoles = []models.Role{models.RoleRecruiter, models.RoleRecruiterAdmin}

// DashboardService computes the read-only reports. Every figure is computed
// on demand.
type DashboardService struct {
	repo     Repository
	registry *Registry
	logger   *zap.Logger
	now      func() time.Time
}

func NewDashboardService(repo Repository, registry *Registry, logger *zap.Logger) *DashboardService {
	return &DashboardService{
		repo:     repo,
		registry: registry,
		logger:   logger.Named("dashboard_service"),
		now:      utcNow,
	}
}

// counter collects the first error of a series of counts so that a report
// can be assembled without checking after every query.
type counter struct {
	ctx  context.Context
	repo Repository
	err  error
}

func (c *counter) users(p query.Predicate) int64 {
	return c.count(c.repo.CountUsers, p)
}

func (c *counter) companies(p query.Predicate) int64 {
	return c.count(c.repo.CountCompanies, p)
}

func (c *counter) jobs(p query.Predicate) int64 {
	return c.count(c.repo.CountJobs, p)
}

func (c *counter) applications(p query.Predicate) int64 {
	return c.count(c.repo.CountApplications, p)
}

func (c *counter) count(fn func(context.Context, query.Predicate) (int64, error), p query.Predicate) int64 {
	if c.err != nil {
		return 0
	}
	n, err := fn(c.ctx, p)
	if err != nil {
		c.err = err
	}
	return n
}

// growth compares the count since now-window with the window before it.
func (c *counter) growth(count func(query.Predicate) int64, scope query.Predicate, field query.Field, now time.Time, window time.Duration) models.Growth {
	current := count(query.And{scope, query.Gte(field, now.Add(-window))})
	previous := count(query.And{scope, query.Between(field, now.Add(-2*window), now.Add(-window))})
	return models.NewGrowth(current, previous)
}

// AdminDashboard reports platform-wide figures. Admin only.
func (s *DashboardService) AdminDashboard(ctx context.Context, actor models.Actor) (*models.AdminDashboard, error) {
	admin, err := s.registry.Admin(ctx, actor)
	if err != nil {
		return nil, err
	}
	if !admin {
		return nil, fmt.Errorf("%w: admin dashboard requires the admin role", e.ErrAuthorization)
	}
	now := s.now().UTC()
	c := &counter{ctx: ctx, repo: s.repo}
	liveJobs := query.Eq(query.JobDeleted, false)
	all := query.And{}

	d := &models.AdminDashboard{
		TotalUsers:        c.users(all),
		TotalCompanies:    c.companies(all),
		TotalJobs:         c.jobs(liveJobs),
		TotalApplications: c.applications(all),
		TotalRecruiters:   c.users(query.In(query.UserRole, recruitingRoles...)),
		ActiveJobs:        c.jobs(query.And{liveJobs, query.Eq(query.JobStatus, models.JobOpen)}),

		UsersGrowth:        c.growth(c.users, all, query.UserCreatedAt, now, growthWindow),
		JobsGrowth:         c.growth(c.jobs, liveJobs, query.JobCreatedAt, now, growthWindow),
		CompaniesGrowth:    c.growth(c.companies, all, query.CompanyCreatedAt, now, growthWindow),
		ApplicationsGrowth: c.growth(c.applications, all, query.ApplicationAppliedAt, now, applicationsWindow),

		JobsExpiringSoon: c.jobs(query.And{
			liveJobs,
			query.Eq(query.JobStatus, models.JobOpen),
			query.Between(query.JobExpiresAt, now, now.Add(expiringWindow)),
		}),
	}
	d.ApplicationsTrend = s.applicationsTrend(c, query.And{}, now)
	if c.err != nil {
		return nil, fmt.Errorf("failed to compute admin dashboard: %w", c.err)
	}

	if d.JobsWithoutApplications, err = s.repo.CountJobsWithoutApplications(ctx); err != nil {
		return nil, fmt.Errorf("failed to count jobs without applications: %w", err)
	}
	if d.JobsPerIndustry, err = s.repo.CountJobsByIndustry(ctx, liveJobs); err != nil {
		return nil, fmt.Errorf("failed to count jobs per industry: %w", err)
	}
	if d.UsersByRole, err = s.repo.CountUsersByRole(ctx, all); err != nil {
		return nil, fmt.Errorf("failed to count users per role: %w", err)
	}

	users, err := s.repo.ListUsers(ctx, query.Spec{
		OrderBy: []query.Order{{Field: query.UserCreatedAt, Desc: true}, {Field: query.UserID, Desc: true}},
		Limit:   recentLimit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list recent users: %w", err)
	}
	d.RecentUsers = make([]models.RecentUser, 0, len(users))
	for _, u := range users {
		d.RecentUsers = append(d.RecentUsers, models.RecentUser{
			ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role, Status: u.Status, Joined: u.CreatedAt,
		})
	}

	companies, err := s.repo.ListCompanies(ctx, query.Spec{
		OrderBy: []query.Order{{Field: query.CompanyCreatedAt, Desc: true}, {Field: query.CompanyID, Desc: true}},
		Limit:   recentLimit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list recent companies: %w", err)
	}
	d.RecentCompanies = make([]models.RecentCompany, 0, len(companies))
	for _, co := range companies {
		d.RecentCompanies = append(d.RecentCompanies, models.RecentCompany{
			ID: co.ID, Name: co.Name, Active: co.Active, Created: co.CreatedAt,
		})
	}

	if d.RecentJobs, err = s.recentJobs(ctx, liveJobs); err != nil {
		return nil, err
	}
	if d.RecentApplications, err = s.recentApplications(ctx, all); err != nil {
		return nil, err
	}
	return d, nil
}

// RecruiterAdminDashboard reports on one company. Admins may view any
// company; a recruiter admin only the company it owns.
func (s *DashboardService) RecruiterAdminDashboard(ctx context.Context, actor models.Actor, companyID uuid.UUID) (*models.RecruiterAdminDashboard, error) {
	switch {
	case actor.IsAdmin():
		if _, err := s.registry.ActiveUser(ctx, actor); err != nil {
			return nil, err
		}
		if _, err := s.repo.GetCompany(ctx, companyID); err != nil {
			return nil, err
		}
	case actor.Role == models.RoleRecruiterAdmin:
		company, err := s.registry.ResolveCompany(ctx, actor)
		if err != nil {
			return nil, err
		}
		if company.ID != companyID {
			return nil, fmt.Errorf("%w: company dashboard of another company", e.ErrAuthorization)
		}
	default:
		return nil, fmt.Errorf("%w: %s may not view company dashboards", e.ErrAuthorization, actor)
	}

	members, err := s.repo.ListUsers(ctx, query.Spec{
		Where: query.And{
			query.Eq(query.UserCompanyID, companyID),
			query.In(query.UserRole, recruitingRoles...),
		},
		OrderBy: []query.Order{{Field: query.UserCreatedAt}, {Field: query.UserID}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list company recruiters: %w", err)
	}

	c := &counter{ctx: ctx, repo: s.repo}
	jobs := query.And{query.Eq(query.JobCompanyID, companyID), query.Eq(query.JobDeleted, false)}
	apps := query.And{query.Eq(query.ApplicationJobCompanyID, companyID), query.Eq(query.ApplicationJobDeleted, false)}

	d := &models.RecruiterAdminDashboard{
		CompanyID:         companyID,
		TotalJobsPosted:   c.jobs(jobs),
		ActiveJobs:        c.jobs(append(query.And{query.Eq(query.JobStatus, models.JobOpen)}, jobs...)),
		ClosedJobs:        c.jobs(append(query.And{query.Eq(query.JobStatus, models.JobClosed)}, jobs...)),
		TotalApplications: c.applications(apps),
	}
	d.RecruiterPerformance = make([]models.RecruiterPerformance, 0, len(members))
	for _, m := range members {
		if m.Role == models.RoleRecruiter {
			d.TotalRecruiters++
		}
		posted := append(query.And{query.Eq(query.JobCreatedBy, m.ID)}, jobs...)
		d.RecruiterPerformance = append(d.RecruiterPerformance, models.RecruiterPerformance{
			RecruiterID:          m.ID,
			RecruiterName:        m.Name,
			JobsPosted:           c.jobs(posted),
			ActiveJobs:           c.jobs(append(posted, query.Eq(query.JobStatus, models.JobOpen))),
			ApplicationsReceived: c.applications(query.And{apps, query.Eq(query.ApplicationJobCreatedBy, m.ID)}),
		})
	}
	if c.err != nil {
		return nil, fmt.Errorf("failed to compute company dashboard: %w", c.err)
	}

	byStatus, err := s.repo.CountApplicationsByStatus(ctx, apps)
	if err != nil {
		return nil, fmt.Errorf("failed to count applications per status: %w", err)
	}
	d.HiringFunnel = models.HiringFunnel{
		Applied:     byStatus[models.StatusApplied],
		Shortlisted: byStatus[models.StatusShortlisted],
		Interview:   byStatus[models.StatusInterviewScheduled],
		Selected:    byStatus[models.StatusSelected],
		Rejected:    byStatus[models.StatusRejected],
	}

	if d.RecentJobs, err = s.recentJobs(ctx, jobs); err != nil {
		return nil, err
	}
	return d, nil
}

// RecruiterDashboard reports on the jobs one recruiter posted. The recruiter
// itself, an admin and the recruiter admin of its company may view it.
func (s *DashboardService) RecruiterDashboard(ctx context.Context, actor models.Actor, recruiterID uuid.UUID) (*models.RecruiterDashboard, error) {
	recruiter, err := s.repo.GetUser(ctx, recruiterID)
	if err != nil {
		return nil, err
	}
	if !recruiter.Role.Recruiting() {
		return nil, fmt.Errorf("%w: user %s is not a recruiter", e.ErrValidation, recruiterID)
	}
	if err := s.authorizeRecruiterView(ctx, actor, recruiter); err != nil {
		return nil, err
	}

	c := &counter{ctx: ctx, repo: s.repo}
	posted := query.And{query.Eq(query.JobCreatedBy, recruiterID), query.Eq(query.JobDeleted, false)}
	apps := query.And{query.Eq(query.ApplicationJobCreatedBy, recruiterID), query.Eq(query.ApplicationJobDeleted, false)}

	d := &models.RecruiterDashboard{
		RecruiterID:       recruiterID,
		PostedJobs:        c.jobs(posted),
		ActiveJobs:        c.jobs(append(query.And{query.Eq(query.JobStatus, models.JobOpen)}, posted...)),
		TotalApplications: c.applications(apps),
	}
	if c.err != nil {
		return nil, fmt.Errorf("failed to compute recruiter dashboard: %w", c.err)
	}

	byStatus, err := s.repo.CountApplicationsByStatus(ctx, apps)
	if err != nil {
		return nil, fmt.Errorf("failed to count applications per status: %w", err)
	}
	d.InterviewsScheduled = byStatus[models.StatusInterviewScheduled]
	d.ShortlistedCandidates = byStatus[models.StatusShortlisted]

	jobs, err := s.repo.ListJobs(ctx, query.Spec{Where: posted, OrderBy: query.NewestJobsFirst})
	if err != nil {
		return nil, fmt.Errorf("failed to list recruiter jobs: %w", err)
	}
	d.PerJobStats = make([]models.JobStats, 0, len(jobs))
	for _, job := range jobs {
		counts, err := s.repo.CountApplicationsByStatus(ctx, query.Eq(query.ApplicationJobID, job.ID))
		if err != nil {
			return nil, fmt.Errorf("failed to count applications of job %s: %w", job.ID, err)
		}
		stats := models.JobStats{
			JobID:       job.ID,
			JobTitle:    job.Title,
			Shortlisted: counts[models.StatusShortlisted],
			Rejected:    counts[models.StatusRejected],
			Pending:     counts[models.StatusApplied] + counts[models.StatusInterviewScheduled],
			Interview:   counts[models.StatusInterviewScheduled],
		}
		for _, n := range counts {
			stats.Applications += n
		}
		d.PerJobStats = append(d.PerJobStats, stats)
	}

	if d.RecentApplications, err = s.recentApplications(ctx, apps); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *DashboardService) authorizeRecruiterView(ctx context.Context, actor models.Actor, recruiter *models.User) error {
	switch {
	case actor.IsAdmin():
		_, err := s.registry.ActiveUser(ctx, actor)
		return err
	case actor.Authenticated() && actor.UserID == recruiter.ID:
		return nil
	case actor.Role == models.RoleRecruiterAdmin:
		company, err := s.registry.ResolveCompany(ctx, actor)
		if err != nil {
			return err
		}
		if recruiter.CompanyID != nil && *recruiter.CompanyID == company.ID {
			return nil
		}
	}
	return fmt.Errorf("%w: recruiter dashboard of %s", e.ErrAuthorization, recruiter.ID)
}

// applicationsTrend counts applications per UTC calendar day over the
// last trendDays days, today included. Days without applications count 0.
func (s *DashboardService) applicationsTrend(c *counter, scope query.Predicate, now time.Time) []models.DailyCount {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	trend := make([]models.DailyCount, 0, trendDays)
	for i := trendDays - 1; i >= 0; i-- {
		day := today.AddDate(0, 0, -i)
		trend = append(trend, models.DailyCount{
			Date:  day.Format(time.DateOnly),
			Count: c.applications(query.And{scope, query.Between(query.ApplicationAppliedAt, day, day.AddDate(0, 0, 1))}),
		})
	}
	return trend
}

func (s *DashboardService) recentJobs(ctx context.Context, where query.Predicate) ([]models.RecentJob, error) {
	jobs, err := s.repo.ListJobs(ctx, query.Spec{Where: where, OrderBy: query.NewestJobsFirst, Limit: recentLimit})
	if err != nil {
		return nil, fmt.Errorf("failed to list recent jobs: %w", err)
	}
	out := make([]models.RecentJob, 0, len(jobs))
	for _, j := range jobs {
		row := models.RecentJob{
			ID: j.ID, Title: j.Title, Location: j.Location, Industry: j.Industry, Status: j.Status, Posted: j.CreatedAt,
		}
		if j.Company != nil {
			row.CompanyName = j.Company.Name
		}
		out = append(out, row)
	}
	return out, nil
}

func (s *DashboardService) recentApplications(ctx context.Context, where query.Predicate) ([]models.RecentApplication, error) {
	apps, err := s.repo.ListApplications(ctx, query.Spec{Where: where, OrderBy: query.NewestApplicationsFirst, Limit: recentLimit})
	if err != nil {
		return nil, fmt.Errorf("failed to list recent applications: %w", err)
	}
	out := make([]models.RecentApplication, 0, len(apps))
	for _, a := range apps {
		row := models.RecentApplication{
			ID: a.ID, CandidateName: a.FullName, Status: a.Status, Source: a.Source, AppliedAt: a.AppliedAt,
		}
		if a.Job != nil {
			row.JobTitle = a.Job.Title
		}
		out = append(out, row)
	}
	return out, nil
}
