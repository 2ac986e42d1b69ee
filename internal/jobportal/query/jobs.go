package query

import (
	"strings"
	"time"

	"github.com/gartstein/jobportal/internal/jobportal/models"
	"github.com/google/uuid"
)

const (
	TrendingLimit    = 10
	SuggestionLimit  = 10
	SuggestedLimit   = 10
	SimilarJobsLimit = 6
)

// Visibility captures the mandatory rules a caller cannot override.
type Visibility struct {
	// Public callers only ever see OPEN jobs.
	Public bool
}

// VisibilityFor derives the visibility of an actor: anyone without a
// recruiting or admin role is public.
func VisibilityFor(actor models.Actor) Visibility {
	return Visibility{Public: !actor.Privileged()}
}

// Criteria are the optional job search filters. Empty strings and nil
// pointers mean "not supplied" and contribute no clause.
type Criteria struct {
	Keyword          string
	Location         string
	Industry         string
	CompanyName      string
	MinExp           *int
	MaxExp           *int
	JobType          *models.JobType
	NoticePreference *models.NoticePreference
	MaxNoticePeriod  *int
	LWDPreferred     *bool
	// Status is honored only for non-public callers.
	Status *models.JobStatus
}

// VisibleJobs starts a builder with the visibility rules applied: archived
// jobs are always excluded and public callers see OPEN jobs only.
func VisibleJobs(v Visibility) *Builder {
	b := NewBuilder().Where(Eq(JobDeleted, false))
	if v.Public {
		b.Where(Eq(JobStatus, models.JobOpen))
	}
	return b
}

// ComposeJobSearch turns criteria into a single predicate. All supplied
// filters are AND-ed; the keyword expands into an OR over title, location,
// industry, company name and job type.
func ComposeJobSearch(c Criteria, v Visibility) Spec {
	b := VisibleJobs(v)
	if !v.Public && c.Status != nil {
		b.Where(Eq(JobStatus, *c.Status))
	}

	if kw := strings.TrimSpace(c.Keyword); kw != "" {
		b.Where(Or{
			Contains(JobTitle, kw),
			Contains(JobLocation, kw),
			Contains(JobIndustry, kw),
			Contains(CompanyName, kw),
			Contains(JobType, kw),
		})
	}
	if s := strings.TrimSpace(c.Location); s != "" {
		b.Where(Contains(JobLocation, s))
	}
	if s := strings.TrimSpace(c.Industry); s != "" {
		b.Where(Contains(JobIndustry, s))
	}
	if s := strings.TrimSpace(c.CompanyName); s != "" {
		b.Where(Contains(CompanyName, s))
	}
	if c.MinExp != nil {
		b.Where(Gte(JobMinExperience, *c.MinExp))
	}
	if c.MaxExp != nil {
		b.Where(Lte(JobMaxExperience, *c.MaxExp))
	}
	if c.JobType != nil {
		b.Where(Eq(JobType, *c.JobType))
	}
	if c.NoticePreference != nil {
		b.Where(Eq(JobNoticePreference, *c.NoticePreference))
	}
	if c.MaxNoticePeriod != nil {
		b.Where(Or{IsNull(JobMaxNoticePeriod), Gte(JobMaxNoticePeriod, *c.MaxNoticePeriod)})
	}
	if c.LWDPreferred != nil {
		b.Where(Eq(JobLWDPreferred, *c.LWDPreferred))
	}

	return Spec{Where: b.Build(), OrderBy: NewestJobsFirst}
}

// LatestJobs lists visible jobs created strictly before lastSeen, newest
// first. A nil lastSeen starts from the newest job.
func LatestJobs(v Visibility, lastSeen *time.Time) Spec {
	b := VisibleJobs(v)
	if lastSeen != nil {
		b.Where(Lt(JobCreatedAt, *lastSeen))
	}
	return Spec{Where: b.Build(), OrderBy: NewestJobsFirst}
}

// JobsByCompany lists a company's visible jobs.
func JobsByCompany(v Visibility, companyID uuid.UUID) Spec {
	return Spec{
		Where:   VisibleJobs(v).Where(Eq(JobCompanyID, companyID)).Build(),
		OrderBy: NewestJobsFirst,
	}
}

// JobsByIndustry lists open jobs of an industry, ignoring case.
func JobsByIndustry(industry string) Spec {
	return Spec{
		Where:   VisibleJobs(Visibility{Public: true}).Where(EqFold(JobIndustry, strings.TrimSpace(industry))).Build(),
		OrderBy: NewestJobsFirst,
	}
}

// TitleSuggestions matches open jobs whose title contains keyword.
func TitleSuggestions(keyword string) Spec {
	return Spec{
		Where:   VisibleJobs(Visibility{Public: true}).Where(Contains(JobTitle, strings.TrimSpace(keyword))).Build(),
		OrderBy: []Order{{Field: JobTitle}},
		Limit:   SuggestionLimit,
	}
}

// SuggestedJobs matches open jobs sharing location and industry with a
// reference job.
func SuggestedJobs(location, industry string) Spec {
	return Spec{
		Where: VisibleJobs(Visibility{Public: true}).
			Where(EqFold(JobLocation, location)).
			Where(EqFold(JobIndustry, industry)).
			Build(),
		OrderBy: NewestJobsFirst,
		Limit:   SuggestedLimit,
	}
}

// SimilarJobs matches open jobs of the same industry and type as job,
// excluding job itself.
func SimilarJobs(job *models.Job) Spec {
	return Spec{
		Where: VisibleJobs(Visibility{Public: true}).
			Where(Eq(JobIndustry, job.Industry)).
			Where(Eq(JobType, job.JobType)).
			Where(Ne(JobID, job.ID)).
			Build(),
		OrderBy: NewestJobsFirst,
		Limit:   SimilarJobsLimit,
	}
}

// TrendingJobs is the top of visible jobs by view count.
func TrendingJobs(v Visibility) Spec {
	return Spec{
		Where:   VisibleJobs(v).Build(),
		OrderBy: []Order{{Field: JobViewCount, Desc: true}, {Field: JobCreatedAt, Desc: true}, {Field: JobID, Desc: true}},
		Limit:   TrendingLimit,
	}
}
