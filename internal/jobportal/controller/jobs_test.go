package controller

import (
	"context"
	"errors"
	"testing"

	e "github.com/gartstein/jobportal/internal/jobportal/errors"
	"github.com/gartstein/jobportal/internal/jobportal/events"
	"github.com/gartstein/jobportal/internal/jobportal/models"
	"github.com/gartstein/jobportal/internal/jobportal/query"
	"github.com/gartstein/jobportal/internal/pkg/utils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestJobService_CreateJob(t *testing.T) {
	f := newFixture(t)
	owner, acme := f.recruiterAdmin("Acme")
	_, globex := f.recruiterAdmin("Globex")
	admin := f.admin()
	req := func() *models.JobRequest {
		return &models.JobRequest{Title: "Backend Engineer", JobType: models.FullTime}
	}

	inactive := &models.Company{ID: uuid.New(), Name: "Defunct", CreatedByID: admin.UserID}
	require.NoError(t, f.repo.CreateCompany(f.ctx, inactive))

	tests := []struct {
		name          string
		actor         models.Actor
		companyID     *uuid.UUID
		expectedCo    uuid.UUID
		expectedError error
	}{
		{name: "recruiter admin posts for own company", actor: owner, expectedCo: acme.ID},
		{name: "recruiter posts for assigned company", actor: f.recruiter(acme), expectedCo: acme.ID},
		{name: "admin names the company", actor: admin, companyID: &globex.ID, expectedCo: globex.ID},
		{name: "admin without company", actor: admin, expectedError: e.ErrValidation},
		{name: "admin with unknown company", actor: admin, companyID: utils.Ptr(uuid.New()), expectedError: e.ErrNotFound},
		{name: "inactive company", actor: admin, companyID: &inactive.ID, expectedError: e.ErrPrecondition},
		{name: "recruiter naming another company", actor: owner, companyID: &globex.ID, expectedError: e.ErrAuthorization},
		{name: "pending recruiter", actor: f.user(models.RoleRecruiter, models.UserPending, &acme.ID), expectedError: e.ErrPrecondition},
		{name: "recruiter without company", actor: f.user(models.RoleRecruiter, models.UserActive, nil), expectedError: e.ErrPrecondition},
		{name: "recruiter admin without company", actor: f.user(models.RoleRecruiterAdmin, models.UserActive, nil), expectedError: e.ErrPrecondition},
		{name: "job seeker", actor: f.seeker(), expectedError: e.ErrAuthorization},
		{name: "anonymous", actor: models.Anonymous(), expectedError: e.ErrAuthorization},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			job, err := f.svc.Jobs.CreateJob(f.ctx, tt.actor, req(), tt.companyID)
			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expectedCo, job.CompanyID)
			assert.Equal(t, models.JobOpen, job.Status)
			assert.Equal(t, tt.actor.UserID, job.CreatedByID)
			assert.Equal(t, events.JobCreated, f.producer.Last().Type)
		})
	}
}

func TestJobService_CreateJobDefaults(t *testing.T) {
	f := newFixture(t)
	owner, _ := f.recruiterAdmin("Acme")

	job := f.postJob(owner, func(r *models.JobRequest) {
		r.MinExperience = nil
		r.MaxExperience = utils.Ptr(3)
	})

	stored, err := f.repo.GetJob(f.ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.MinExperience, "min experience defaults to 0")
	assert.Equal(t, 3, utils.Deref(stored.MaxExperience))
	assert.Equal(t, models.JobOpen, stored.Status)
	assert.Zero(t, stored.ViewCount)
	assert.False(t, stored.Deleted)
}

func TestJobService_CreateJobValidation(t *testing.T) {
	f := newFixture(t)
	owner, _ := f.recruiterAdmin("Acme")

	_, err := f.svc.Jobs.CreateJob(f.ctx, owner, &models.JobRequest{Title: "", JobType: models.FullTime}, nil)
	assert.ErrorIs(t, err, e.ErrValidation)

	_, err = f.svc.Jobs.CreateJob(f.ctx, owner, &models.JobRequest{Title: "x", JobType: "GIG"}, nil)
	assert.ErrorIs(t, err, e.ErrValidation)

	_, err = f.svc.Jobs.CreateJob(f.ctx, owner, &models.JobRequest{
		Title: "x", JobType: models.Contract, MinExperience: utils.Ptr(5), MaxExperience: utils.Ptr(2),
	}, nil)
	assert.ErrorIs(t, err, e.ErrValidation)
}

// Acme and Globex each belong to their own recruiter admin; neither may
// touch the other's jobs.
func TestJobService_CrossCompanyScenario(t *testing.T) {
	f := newFixture(t)
	userA, _ := f.recruiterAdmin("Acme")
	job := f.postJob(userA, func(r *models.JobRequest) { r.Title = "Backend Engineer" })
	require.Equal(t, models.JobOpen, job.Status)
	userB, _ := f.recruiterAdmin("Globex")

	update := &models.JobRequest{Title: "Senior Backend Engineer", JobType: models.FullTime, Location: "Remote"}

	_, err := f.svc.Jobs.UpdateJob(f.ctx, userB, job.ID, update)
	assert.ErrorIs(t, err, e.ErrAuthorization)

	updated, err := f.svc.Jobs.UpdateJob(f.ctx, userA, job.ID, update)
	require.NoError(t, err)
	assert.Equal(t, "Senior Backend Engineer", updated.Title)
	assert.Equal(t, job.CompanyID, updated.CompanyID, "company never changes")
	assert.Equal(t, models.JobOpen, updated.Status, "update never changes status")
}

func TestJobService_GuardedMutations(t *testing.T) {
	f := newFixture(t)
	owner, acme := f.recruiterAdmin("Acme")
	outsider, _ := f.recruiterAdmin("Globex")
	recruiter := f.recruiter(acme)
	admin := f.admin()
	seeker := f.seeker()

	mutations := map[string]func(actor models.Actor, job *models.Job) error{
		"update": func(actor models.Actor, job *models.Job) error {
			_, err := f.svc.Jobs.UpdateJob(f.ctx, actor, job.ID, &models.JobRequest{Title: "Edited", JobType: models.PartTime})
			return err
		},
		"change status": func(actor models.Actor, job *models.Job) error {
			_, err := f.svc.Jobs.ChangeJobStatus(f.ctx, actor, job.ID, models.JobClosed)
			return err
		},
		"delete": func(actor models.Actor, job *models.Job) error {
			return f.svc.Jobs.DeleteJob(f.ctx, actor, job.ID)
		},
	}
	actors := []struct {
		name    string
		actor   models.Actor
		allowed bool
	}{
		{"owner", owner, true},
		{"assigned recruiter", recruiter, true},
		{"admin", admin, true},
		{"other company", outsider, false},
		{"job seeker", seeker, false},
		{"anonymous", models.Anonymous(), false},
	}

	for op, mutate := range mutations {
		for _, a := range actors {
			t.Run(op+" by "+a.name, func(t *testing.T) {
				job := f.postJob(owner, nil)
				err := mutate(a.actor, job)
				if a.allowed {
					assert.NoError(t, err)
				} else {
					assert.ErrorIs(t, err, e.ErrAuthorization)
				}
			})
		}
	}
}

func TestJobService_ChangeJobStatus(t *testing.T) {
	f := newFixture(t)
	owner, _ := f.recruiterAdmin("Acme")
	job := f.postJob(owner, nil)

	closed, err := f.svc.Jobs.ChangeJobStatus(f.ctx, owner, job.ID, models.JobClosed)
	require.NoError(t, err)
	assert.Equal(t, models.JobClosed, closed.Status)
	assert.JSONEq(t, `{"from":"OPEN","to":"CLOSED"}`, string(f.producer.Last().Payload))

	reopened, err := f.svc.Jobs.ChangeJobStatus(f.ctx, owner, job.ID, models.JobOpen)
	require.NoError(t, err)
	assert.Equal(t, models.JobOpen, reopened.Status)

	_, err = f.svc.Jobs.ChangeJobStatus(f.ctx, owner, job.ID, "PAUSED")
	assert.ErrorIs(t, err, e.ErrValidation)

	_, err = f.svc.Jobs.ChangeJobStatus(f.ctx, owner, uuid.New(), models.JobClosed)
	assert.ErrorIs(t, err, e.ErrNotFound)
}

func TestJobService_DeleteJobCascades(t *testing.T) {
	f := newFixture(t)
	owner, _ := f.recruiterAdmin("Acme")
	job := f.postJob(owner, nil)
	f.apply(f.seeker(), job)
	f.apply(f.seeker(), job)

	require.NoError(t, f.svc.Jobs.DeleteJob(f.ctx, owner, job.ID))

	_, err := f.repo.GetJob(f.ctx, job.ID)
	assert.ErrorIs(t, err, e.ErrNotFound)
	n, err := f.repo.CountApplications(f.ctx, query.Eq(query.ApplicationJobID, job.ID))
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, events.JobDeleted, f.producer.Last().Type)
}

func TestJobService_DeleteJobIsAtomic(t *testing.T) {
	f := newFixture(t)
	owner, _ := f.recruiterAdmin("Acme")
	job := f.postJob(owner, nil)
	f.apply(f.seeker(), job)
	f.apply(f.seeker(), job)
	produced := len(f.producer.Types())

	// The job row fails to delete after its applications are already gone.
	require.NoError(t, f.repo.Exec(f.ctx,
		`CREATE TRIGGER fail_job_delete BEFORE DELETE ON jobs BEGIN SELECT RAISE(ABORT, 'storage failure'); END`))

	err := f.svc.Jobs.DeleteJob(f.ctx, owner, job.ID)
	require.Error(t, err)

	_, err = f.repo.GetJob(f.ctx, job.ID)
	assert.NoError(t, err, "job must survive")
	n, err := f.repo.CountApplications(f.ctx, query.Eq(query.ApplicationJobID, job.ID))
	require.NoError(t, err)
	assert.Equal(t, int64(2), n, "applications must survive")
	assert.Len(t, f.producer.Types(), produced, "no event for a failed delete")
}

func TestJobService_ArchiveJob(t *testing.T) {
	f := newFixture(t)
	owner, _ := f.recruiterAdmin("Acme")
	job := f.postJob(owner, nil)
	seeker := f.seeker()
	f.apply(seeker, job)

	assert.ErrorIs(t, f.svc.Jobs.ArchiveJob(f.ctx, owner, job.ID), e.ErrAuthorization)
	require.NoError(t, f.svc.Jobs.ArchiveJob(f.ctx, f.admin(), job.ID))

	_, err := f.svc.Jobs.GetJob(f.ctx, models.Anonymous(), job.ID)
	assert.ErrorIs(t, err, e.ErrNotFound, "archived jobs are hidden")

	page, err := f.svc.Jobs.ListJobs(f.ctx, owner, models.PageRequest{})
	require.NoError(t, err)
	assert.Empty(t, page.Items)

	n, err := f.repo.CountApplications(f.ctx, query.Eq(query.ApplicationJobID, job.ID))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n, "applications are kept")
}

func TestJobService_GetJobCountsPublicViews(t *testing.T) {
	f := newFixture(t)
	owner, _ := f.recruiterAdmin("Acme")
	job := f.postJob(owner, nil)

	got, err := f.svc.Jobs.GetJob(f.ctx, models.Anonymous(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.ViewCount)

	_, err = f.svc.Jobs.GetJob(f.ctx, f.seeker(), job.ID)
	require.NoError(t, err)

	got, err = f.svc.Jobs.GetJob(f.ctx, owner, job.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.ViewCount, "privileged views are not counted")
}

func TestJobService_Listings(t *testing.T) {
	f := newFixture(t)
	owner, acme := f.recruiterAdmin("Acme")
	globexOwner, _ := f.recruiterAdmin("Globex")

	for i := 0; i < 3; i++ {
		f.postJob(owner, nil)
	}
	closed := f.postJob(owner, nil)
	_, err := f.svc.Jobs.ChangeJobStatus(f.ctx, owner, closed.ID, models.JobClosed)
	require.NoError(t, err)
	f.postJob(globexOwner, func(r *models.JobRequest) { r.Industry = "Finance" })

	t.Run("public listing pages through open jobs", func(t *testing.T) {
		var seen []uuid.UUID
		req := models.PageRequest{Size: 2}
		for {
			page, err := f.svc.Jobs.ListJobs(f.ctx, models.Anonymous(), req)
			require.NoError(t, err)
			assert.Equal(t, int64(4), page.TotalElements)
			assert.Equal(t, 2, page.TotalPages)
			for _, j := range page.Items {
				assert.Equal(t, models.JobOpen, j.Status)
				seen = append(seen, j.ID)
			}
			if page.Last {
				break
			}
			req.Page++
		}
		assert.Len(t, seen, 4)
	})

	t.Run("company listing", func(t *testing.T) {
		page, err := f.svc.Jobs.ListJobsByCompany(f.ctx, owner, acme.ID, models.PageRequest{})
		require.NoError(t, err)
		assert.Equal(t, int64(4), page.TotalElements, "privileged callers see closed jobs")

		page, err = f.svc.Jobs.ListJobsByCompany(f.ctx, models.Anonymous(), acme.ID, models.PageRequest{})
		require.NoError(t, err)
		assert.Equal(t, int64(3), page.TotalElements)
	})

	t.Run("industry ignores case", func(t *testing.T) {
		page, err := f.svc.Jobs.JobsByIndustry(f.ctx, "finance", models.PageRequest{})
		require.NoError(t, err)
		assert.Equal(t, int64(1), page.TotalElements)

		_, err = f.svc.Jobs.JobsByIndustry(f.ctx, " ", models.PageRequest{})
		assert.ErrorIs(t, err, e.ErrValidation)
	})

	t.Run("latest uses a created-at cursor", func(t *testing.T) {
		first, err := f.svc.Jobs.LatestJobs(f.ctx, models.Anonymous(), nil, models.PageRequest{Size: 1})
		require.NoError(t, err)
		require.Len(t, first.Items, 1)

		cursor := first.Items[0].CreatedAt
		rest, err := f.svc.Jobs.LatestJobs(f.ctx, models.Anonymous(), &cursor, models.PageRequest{Size: 10})
		require.NoError(t, err)
		for _, j := range rest.Items {
			assert.True(t, j.CreatedAt.Before(cursor))
		}
	})

	t.Run("invalid page", func(t *testing.T) {
		_, err := f.svc.Jobs.ListJobs(f.ctx, models.Anonymous(), models.PageRequest{Page: -1})
		assert.ErrorIs(t, err, e.ErrValidation)
		_, err = f.svc.Jobs.ListJobs(f.ctx, models.Anonymous(), models.PageRequest{Size: models.MaxPageSize + 1})
		assert.ErrorIs(t, err, e.ErrValidation)
	})

}

// failingRepo fails FindJobs with a storage error.
type failingRepo struct {
	Repository
}

func (failingRepo) FindJobs(context.Context, query.Spec, models.PageRequest) ([]models.Job, int64, error) {
	return nil, 0, errors.New("connection reset")
}

func TestJobService_StorageFailureIsInternal(t *testing.T) {
	f := newFixture(t)
	svc := New(failingRepo{Repository: f.repo}, f.producer, zaptest.NewLogger(t))

	_, err := svc.Jobs.ListJobs(f.ctx, models.Anonymous(), models.PageRequest{})
	require.Error(t, err)
	assert.Equal(t, "INTERNAL", e.Kind(err))
}

// viewsDuringWrite counts public views of a job between the service
// reading it and writing it back.
type viewsDuringWrite struct {
	Repository
	views int
}

func (r viewsDuringWrite) UpdateJob(ctx context.Context, job *models.Job) error {
	for i := 0; i < r.views; i++ {
		if err := r.Repository.IncrementViewCount(ctx, job.ID); err != nil {
			return err
		}
	}
	return r.Repository.UpdateJob(ctx, job)
}

func TestJobService_StatusChangeKeepsConcurrentViews(t *testing.T) {
	f := newFixture(t)
	owner, _ := f.recruiterAdmin("Acme")
	job := f.postJob(owner, nil)
	for i := 0; i < 3; i++ {
		_, err := f.svc.Jobs.GetJob(f.ctx, models.Anonymous(), job.ID)
		require.NoError(t, err)
	}

	svc := New(viewsDuringWrite{Repository: f.repo, views: 5}, f.producer, zaptest.NewLogger(t))
	_, err := svc.Jobs.ChangeJobStatus(f.ctx, owner, job.ID, models.JobClosed)
	require.NoError(t, err)

	stored, err := f.repo.GetJob(f.ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.JobClosed, stored.Status)
	assert.Equal(t, int64(8), stored.ViewCount)
}
