package query

import (
	"testing"
	"time"

	"github.com/gartstein/jobportal/internal/jobportal/models"
	"github.com/gartstein/jobportal/internal/pkg/utils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	public     = Visibility{Public: true}
	privileged = Visibility{Public: false}
)

func TestComposeJobSearch(t *testing.T) {
	notDeleted := Eq(JobDeleted, false)
	openOnly := Eq(JobStatus, models.JobOpen)

	tests := []struct {
		name     string
		criteria Criteria
		vis      Visibility
		expected And
	}{
		{
			name:     "no criteria public",
			vis:      public,
			expected: And{notDeleted, openOnly},
		},
		{
			name:     "no criteria privileged",
			vis:      privileged,
			expected: And{notDeleted},
		},
		{
			name:     "public caller cannot ask for closed jobs",
			criteria: Criteria{Status: utils.Ptr(models.JobClosed)},
			vis:      public,
			expected: And{notDeleted, openOnly},
		},
		{
			name:     "privileged caller filters by status",
			criteria: Criteria{Status: utils.Ptr(models.JobClosed)},
			vis:      privileged,
			expected: And{notDeleted, Eq(JobStatus, models.JobClosed)},
		},
		{
			name:     "blank strings are absent",
			criteria: Criteria{Keyword: "   ", Location: "", Industry: "\t"},
			vis:      public,
			expected: And{notDeleted, openOnly},
		},
		{
			name:     "keyword spans five fields",
			criteria: Criteria{Keyword: " java "},
			vis:      public,
			expected: And{notDeleted, openOnly, Or{
				Contains(JobTitle, "java"),
				Contains(JobLocation, "java"),
				Contains(JobIndustry, "java"),
				Contains(CompanyName, "java"),
				Contains(JobType, "java"),
			}},
		},
		{
			name:     "max experience without lower bound",
			criteria: Criteria{MaxExp: utils.Ptr(5)},
			vis:      public,
			expected: And{notDeleted, openOnly, Lte(JobMaxExperience, 5)},
		},
		{
			name:     "experience bounds are independent",
			criteria: Criteria{MinExp: utils.Ptr(2), MaxExp: utils.Ptr(5)},
			vis:      public,
			expected: And{notDeleted, openOnly, Gte(JobMinExperience, 2), Lte(JobMaxExperience, 5)},
		},
		{
			name:     "max notice period accepts unconstrained jobs",
			criteria: Criteria{MaxNoticePeriod: utils.Ptr(30)},
			vis:      public,
			expected: And{notDeleted, openOnly, Or{IsNull(JobMaxNoticePeriod), Gte(JobMaxNoticePeriod, 30)}},
		},
		{
			name: "all filters are AND-ed",
			criteria: Criteria{
				Location:         "Berlin",
				Industry:         "IT",
				CompanyName:      "Acme",
				JobType:          utils.Ptr(models.FullTime),
				NoticePreference: utils.Ptr(models.NoticeImmediate),
				LWDPreferred:     utils.Ptr(false),
			},
			vis: public,
			expected: And{
				notDeleted, openOnly,
				Contains(JobLocation, "Berlin"),
				Contains(JobIndustry, "IT"),
				Contains(CompanyName, "Acme"),
				Eq(JobType, models.FullTime),
				Eq(JobNoticePreference, models.NoticeImmediate),
				Eq(JobLWDPreferred, false),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := ComposeJobSearch(tt.criteria, tt.vis)
			assert.Equal(t, tt.expected, spec.Where)
			assert.Equal(t, NewestJobsFirst, spec.OrderBy)
			assert.Zero(t, spec.Limit)
		})
	}
}

func TestVisibilityFor(t *testing.T) {
	id := uuid.New()
	assert.True(t, VisibilityFor(models.Anonymous()).Public)
	assert.True(t, VisibilityFor(models.Actor{UserID: id, Role: models.RoleJobSeeker}).Public)
	assert.False(t, VisibilityFor(models.Actor{UserID: id, Role: models.RoleRecruiter}).Public)
	assert.False(t, VisibilityFor(models.Actor{UserID: id, Role: models.RoleRecruiterAdmin}).Public)
	assert.False(t, VisibilityFor(models.Actor{UserID: id, Role: models.RoleAdmin}).Public)
}

func TestLatestJobs(t *testing.T) {
	spec := LatestJobs(public, nil)
	assert.Equal(t, And{Eq(JobDeleted, false), Eq(JobStatus, models.JobOpen)}, spec.Where)

	cursor := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	spec = LatestJobs(privileged, &cursor)
	assert.Equal(t, And{Eq(JobDeleted, false), Lt(JobCreatedAt, cursor)}, spec.Where)
}

func TestSimilarJobs(t *testing.T) {
	job := &models.Job{ID: uuid.New(), Industry: "IT", JobType: models.Contract}
	spec := SimilarJobs(job)

	require.IsType(t, And{}, spec.Where)
	assert.Contains(t, spec.Where.(And), Ne(JobID, job.ID))
	assert.Contains(t, spec.Where.(And), Eq(JobStatus, models.JobOpen))
	assert.Equal(t, SimilarJobsLimit, spec.Limit)
}

func TestTrendingJobs(t *testing.T) {
	spec := TrendingJobs(public)
	assert.Equal(t, TrendingLimit, spec.Limit)
	assert.Equal(t, Order{Field: JobViewCount, Desc: true}, spec.OrderBy[0])
}

func TestBuilder(t *testing.T) {
	b := NewBuilder().
		Where(nil).
		Where(And{}).
		WhereIf(false, Eq(JobTitle, "x")).
		WhereIf(true, Eq(JobTitle, "y"))

	assert.Equal(t, 1, b.Len())
	assert.Equal(t, And{Eq(JobTitle, "y")}, b.Build())

	// Build returns a copy; later additions do not leak into it.
	built := b.Build()
	b.Where(Eq(JobIndustry, "IT"))
	assert.Len(t, built, 1)
}

func TestPredicateString(t *testing.T) {
	p := And{Eq(JobDeleted, false), Or{IsNull(JobMaxNoticePeriod), Gte(JobMaxNoticePeriod, 30)}}
	assert.Equal(t, "(job.deleted = false AND (job.max_notice_period is null OR job.max_notice_period >= 30))", p.String())
	assert.Equal(t, "true", And{}.String())
	assert.Equal(t, "false", Or{}.String())
}
