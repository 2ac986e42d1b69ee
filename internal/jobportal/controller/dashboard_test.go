package controller

import (
	"context"
	"errors"
	"testing"
	"time"

	e "github.com/gartstein/jobportal/internal/jobportal/errors"
	"github.com/gartstein/jobportal/internal/jobportal/models"
	"github.com/gartstein/jobportal/internal/jobportal/query"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const day = 24 * time.Hour

// dashboardScenario seeds one company with two recruiting members, four
// jobs and six applications spread over the last ten days.
type dashboardScenario struct {
	*fixture
	now       time.Time
	owner     models.Actor
	recruiter models.Actor
	company   *models.Company
	jobA      *models.Job
}

func newDashboardScenario(t *testing.T) *dashboardScenario {
	f := newFixture(t)
	now := time.Now().UTC().Add(time.Minute)
	f.svc.Dashboard.now = func() time.Time { return now }

	owner, acme := f.recruiterAdmin("Acme")
	recruiter := f.recruiter(acme)
	jobA := f.postJob(recruiter, nil)
	jobB := f.postJob(owner, func(r *models.JobRequest) { r.Industry = "Finance" })
	jobC := f.postJob(owner, nil)
	_, err := f.svc.Jobs.ChangeJobStatus(f.ctx, owner, jobC.ID, models.JobClosed)
	require.NoError(t, err)
	f.postJob(owner, nil)

	applyAt := func(job *models.Job, daysAgo int) *models.JobApplication {
		f.svc.Applications.now = func() time.Time { return now.Add(-time.Duration(daysAgo) * day) }
		return f.apply(f.seeker(), job)
	}
	shortlisted := applyAt(jobA, 0)
	rejected := applyAt(jobA, 1)
	interview := applyAt(jobA, 1)
	applyAt(jobA, 3)
	applyAt(jobB, 5)
	applyAt(jobB, 10)

	f.svc.Applications.now = func() time.Time { return now }
	moves := []struct {
		app  *models.JobApplication
		path []models.ApplicationStatus
	}{
		{shortlisted, []models.ApplicationStatus{models.StatusShortlisted}},
		{rejected, []models.ApplicationStatus{models.StatusRejected}},
		{interview, []models.ApplicationStatus{models.StatusShortlisted, models.StatusInterviewScheduled}},
	}
	for _, m := range moves {
		for _, status := range m.path {
			_, err := f.svc.Applications.ChangeApplicationStatus(f.ctx, owner, m.app.ID, status)
			require.NoError(t, err)
		}
	}

	return &dashboardScenario{fixture: f, now: now, owner: owner, recruiter: recruiter, company: acme, jobA: jobA}
}

func TestDashboardService_AdminDashboard(t *testing.T) {
	s := newDashboardScenario(t)
	admin := s.admin()

	d, err := s.svc.Dashboard.AdminDashboard(s.ctx, admin)
	require.NoError(t, err)

	assert.Equal(t, int64(9), d.TotalUsers)
	assert.Equal(t, int64(1), d.TotalCompanies)
	assert.Equal(t, int64(4), d.TotalJobs)
	assert.Equal(t, int64(3), d.ActiveJobs)
	assert.Equal(t, int64(6), d.TotalApplications)
	assert.Equal(t, int64(2), d.TotalRecruiters)
	assert.Equal(t, int64(2), d.JobsWithoutApplications)

	assert.Equal(t, map[string]int64{"IT": 3, "Finance": 1}, d.JobsPerIndustry)
	assert.Equal(t, map[models.Role]int64{
		models.RoleJobSeeker:      6,
		models.RoleRecruiter:      1,
		models.RoleRecruiterAdmin: 1,
		models.RoleAdmin:          1,
	}, d.UsersByRole)

	assert.Equal(t, models.Growth{Current: 5, Previous: 1, ChangePercent: 400}, d.ApplicationsGrowth)
	assert.Equal(t, models.Growth{Current: 4, Previous: 0, ChangePercent: 100}, d.JobsGrowth)

	require.Len(t, d.ApplicationsTrend, 7)
	counts := make([]int64, 0, 7)
	for _, c := range d.ApplicationsTrend {
		counts = append(counts, c.Count)
	}
	assert.Equal(t, []int64{0, 1, 0, 1, 0, 2, 1}, counts)
	assert.Equal(t, s.now.Format(time.DateOnly), d.ApplicationsTrend[6].Date)
	assert.Equal(t, s.now.AddDate(0, 0, -6).Format(time.DateOnly), d.ApplicationsTrend[0].Date)

	assert.Len(t, d.RecentUsers, 5)
	assert.Len(t, d.RecentCompanies, 1)
	assert.Len(t, d.RecentJobs, 4)
	require.Len(t, d.RecentApplications, 5)
	assert.Equal(t, models.StatusShortlisted, d.RecentApplications[0].Status, "newest application first")
	assert.Equal(t, s.jobA.Title, d.RecentApplications[0].JobTitle)

	_, err = s.svc.Dashboard.AdminDashboard(s.ctx, s.owner)
	assert.ErrorIs(t, err, e.ErrAuthorization)
}

func TestDashboardService_AdminDashboardEmpty(t *testing.T) {
	f := newFixture(t)
	admin := f.admin()

	d, err := f.svc.Dashboard.AdminDashboard(f.ctx, admin)
	require.NoError(t, err)
	assert.Equal(t, map[models.Role]int64{models.RoleAdmin: 1}, d.UsersByRole, "roles without users are omitted")
	assert.Empty(t, d.JobsPerIndustry)
	assert.Len(t, d.ApplicationsTrend, 7)
	for _, c := range d.ApplicationsTrend {
		assert.Zero(t, c.Count)
	}
	assert.Equal(t, models.Growth{}, d.ApplicationsGrowth)
	assert.Empty(t, d.RecentJobs)
	assert.NotNil(t, d.RecentApplications)
}

func TestDashboardService_RecruiterAdminDashboard(t *testing.T) {
	s := newDashboardScenario(t)

	d, err := s.svc.Dashboard.RecruiterAdminDashboard(s.ctx, s.owner, s.company.ID)
	require.NoError(t, err)

	assert.Equal(t, int64(1), d.TotalRecruiters)
	assert.Equal(t, int64(4), d.TotalJobsPosted)
	assert.Equal(t, int64(3), d.ActiveJobs)
	assert.Equal(t, int64(1), d.ClosedJobs)
	assert.Equal(t, int64(6), d.TotalApplications)
	assert.Equal(t, models.HiringFunnel{Applied: 3, Shortlisted: 1, Interview: 1, Rejected: 1}, d.HiringFunnel)
	assert.Len(t, d.RecentJobs, 4)

	require.Len(t, d.RecruiterPerformance, 2)
	byID := map[string]models.RecruiterPerformance{}
	for _, p := range d.RecruiterPerformance {
		byID[p.RecruiterID.String()] = p
	}
	own := byID[s.owner.UserID.String()]
	assert.Equal(t, int64(3), own.JobsPosted)
	assert.Equal(t, int64(2), own.ActiveJobs)
	assert.Equal(t, int64(2), own.ApplicationsReceived)
	rec := byID[s.recruiter.UserID.String()]
	assert.Equal(t, int64(1), rec.JobsPosted)
	assert.Equal(t, int64(1), rec.ActiveJobs)
	assert.Equal(t, int64(4), rec.ApplicationsReceived)

	_, err = s.svc.Dashboard.RecruiterAdminDashboard(s.ctx, s.admin(), s.company.ID)
	assert.NoError(t, err)

	outsider, _ := s.recruiterAdmin("Globex")
	_, err = s.svc.Dashboard.RecruiterAdminDashboard(s.ctx, outsider, s.company.ID)
	assert.ErrorIs(t, err, e.ErrAuthorization)

	_, err = s.svc.Dashboard.RecruiterAdminDashboard(s.ctx, s.recruiter, s.company.ID)
	assert.ErrorIs(t, err, e.ErrAuthorization)
}

func TestDashboardService_RecruiterDashboard(t *testing.T) {
	s := newDashboardScenario(t)

	d, err := s.svc.Dashboard.RecruiterDashboard(s.ctx, s.recruiter, s.recruiter.UserID)
	require.NoError(t, err)

	assert.Equal(t, int64(1), d.PostedJobs)
	assert.Equal(t, int64(1), d.ActiveJobs)
	assert.Equal(t, int64(4), d.TotalApplications)
	assert.Equal(t, int64(1), d.InterviewsScheduled)
	assert.Equal(t, int64(1), d.ShortlistedCandidates)
	assert.Len(t, d.RecentApplications, 4)

	require.Len(t, d.PerJobStats, 1)
	assert.Equal(t, models.JobStats{
		JobID:        s.jobA.ID,
		JobTitle:     s.jobA.Title,
		Applications: 4,
		Shortlisted:  1,
		Rejected:     1,
		Pending:      2,
		Interview:    1,
	}, d.PerJobStats[0])

	tests := []struct {
		name          string
		actor         models.Actor
		expectedError error
	}{
		{"own company admin", s.owner, nil},
		{"platform admin", s.admin(), nil},
		{"other recruiter", s.recruiter2(), e.ErrAuthorization},
		{"job seeker", s.seeker(), e.ErrAuthorization},
		{"anonymous", models.Anonymous(), e.ErrAuthorization},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.svc.Dashboard.RecruiterDashboard(s.ctx, tt.actor, s.recruiter.UserID)
			if tt.expectedError == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.expectedError)
		})
	}

	_, err = s.svc.Dashboard.RecruiterDashboard(s.ctx, s.owner, s.seeker().UserID)
	assert.ErrorIs(t, err, e.ErrValidation)
}

// recruiter2 is a second recruiter of the scenario company.
func (s *dashboardScenario) recruiter2() models.Actor {
	return s.fixture.recruiter(s.company)
}

// failingCounts fails every application count.
type failingCounts struct {
	Repository
}

func (failingCounts) CountApplications(context.Context, query.Predicate) (int64, error) {
	return 0, errors.New("disk I/O error")
}

func TestDashboardService_StorageFailure(t *testing.T) {
	f := newFixture(t)
	admin := f.admin()
	svc := New(failingCounts{Repository: f.repo}, f.producer, zaptest.NewLogger(t))

	_, err := svc.Dashboard.AdminDashboard(f.ctx, admin)
	require.Error(t, err)
	assert.Equal(t, "INTERNAL", e.Kind(err))
}

func TestDashboardService_ArchivedJobsExcluded(t *testing.T) {
	s := newDashboardScenario(t)
	require.NoError(t, s.svc.Jobs.ArchiveJob(s.ctx, s.admin(), s.jobA.ID))

	d, err := s.svc.Dashboard.RecruiterDashboard(s.ctx, s.recruiter, s.recruiter.UserID)
	require.NoError(t, err)
	assert.Zero(t, d.PostedJobs)
	assert.Zero(t, d.TotalApplications)
	assert.Zero(t, d.ShortlistedCandidates)
	assert.Empty(t, d.PerJobStats)
	assert.Empty(t, d.RecentApplications)

	company, err := s.svc.Dashboard.RecruiterAdminDashboard(s.ctx, s.owner, s.company.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), company.TotalJobsPosted)
	assert.Equal(t, int64(2), company.TotalApplications)
}
