package models

import (
	"time"

	"github.com/google/uuid"
)

// Growth compares a count over the latest period with the period before it.
type Growth struct {
	Current       int64   `json:"current"`
	Previous      int64   `json:"previous"`
	ChangePercent float64 `json:"change_percent"`
}

// NewGrowth computes the relative change from previous to current. A change
// from zero is reported as 100% when anything was added.
func NewGrowth(current, previous int64) Growth {
	g := Growth{Current: current, Previous: previous}
	switch {
	case previous > 0:
		g.ChangePercent = float64(current-previous) / float64(previous) * 100
	case current > 0:
		g.ChangePercent = 100
	}
	return g
}

// DailyCount is the number of events on one UTC calendar day.
type DailyCount struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

// RecentUser is a dashboard row for a newly registered user.
type RecentUser struct {
	ID     uuid.UUID  `json:"id"`
	Name   string     `json:"name"`
	Email  string     `json:"email"`
	Role   Role       `json:"role"`
	Status UserStatus `json:"status"`
	Joined time.Time  `json:"joined"`
}

// RecentCompany is a dashboard row for a newly created company.
type RecentCompany struct {
	ID      uuid.UUID `json:"id"`
	Name    string    `json:"name"`
	Active  bool      `json:"active"`
	Created time.Time `json:"created"`
}

// RecentJob is a dashboard row for a newly posted job.
type RecentJob struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	CompanyName string    `json:"company_name,omitempty"`
	Location    string    `json:"location,omitempty"`
	Industry    string    `json:"industry,omitempty"`
	Status      JobStatus `json:"status"`
	Posted      time.Time `json:"posted"`
}

// RecentApplication is a dashboard row for a newly submitted application.
type RecentApplication struct {
	ID            uuid.UUID         `json:"id"`
	CandidateName string            `json:"candidate_name"`
	JobTitle      string            `json:"job_title"`
	Status        ApplicationStatus `json:"status"`
	Source        ApplicationSource `json:"source"`
	AppliedAt     time.Time         `json:"applied_at"`
}

// AdminDashboard is the platform-wide report.
type AdminDashboard struct {
	TotalUsers        int64 `json:"total_users"`
	TotalCompanies    int64 `json:"total_companies"`
	TotalJobs         int64 `json:"total_jobs"`
	TotalApplications int64 `json:"total_applications"`
	TotalRecruiters   int64 `json:"total_recruiters"`
	ActiveJobs        int64 `json:"active_jobs"`

	UsersGrowth        Growth `json:"users_growth"`
	JobsGrowth         Growth `json:"jobs_growth"`
	CompaniesGrowth    Growth `json:"companies_growth"`
	ApplicationsGrowth Growth `json:"applications_growth"`

	RecentUsers        []RecentUser        `json:"recent_users"`
	RecentCompanies    []RecentCompany     `json:"recent_companies"`
	RecentJobs         []RecentJob         `json:"recent_jobs"`
	RecentApplications []RecentApplication `json:"recent_applications"`

	JobsPerIndustry   map[string]int64 `json:"jobs_per_industry"`
	ApplicationsTrend []DailyCount     `json:"applications_trend"`
	UsersByRole       map[Role]int64   `json:"users_by_role"`

	JobsExpiringSoon        int64 `json:"jobs_expiring_soon"`
	JobsWithoutApplications int64 `json:"jobs_without_applications"`
}

// HiringFunnel counts a company's applications per reporting bucket.
type HiringFunnel struct {
	Applied     int64 `json:"applied"`
	Shortlisted int64 `json:"shortlisted"`
	Interview   int64 `json:"interview"`
	Selected    int64 `json:"selected"`
	Rejected    int64 `json:"rejected"`
}

// RecruiterPerformance summarizes one recruiter of a company.
type RecruiterPerformance struct {
	RecruiterID          uuid.UUID `json:"recruiter_id"`
	RecruiterName        string    `json:"recruiter_name"`
	JobsPosted           int64     `json:"jobs_posted"`
	ApplicationsReceived int64     `json:"applications_received"`
	ActiveJobs           int64     `json:"active_jobs"`
}

// RecruiterAdminDashboard is the company-wide report.
type RecruiterAdminDashboard struct {
	CompanyID            uuid.UUID              `json:"company_id"`
	TotalRecruiters      int64                  `json:"total_recruiters"`
	TotalJobsPosted      int64                  `json:"total_jobs_posted"`
	ActiveJobs           int64                  `json:"active_jobs"`
	ClosedJobs           int64                  `json:"closed_jobs"`
	TotalApplications    int64                  `json:"total_applications"`
	RecruiterPerformance []RecruiterPerformance `json:"recruiter_performance"`
	RecentJobs           []RecentJob            `json:"recent_jobs"`
	HiringFunnel         HiringFunnel           `json:"hiring_funnel"`
}

// JobStats is the per-job breakdown of a recruiter's dashboard.
type JobStats struct {
	JobID        uuid.UUID `json:"job_id"`
	JobTitle     string    `json:"job_title"`
	Applications int64     `json:"applications"`
	Shortlisted  int64     `json:"shortlisted"`
	Rejected     int64     `json:"rejected"`
	Pending      int64     `json:"pending"`
	Interview    int64     `json:"interview"`
}

// RecruiterDashboard is the personal report of one recruiter.
type RecruiterDashboard struct {
	RecruiterID           uuid.UUID           `json:"recruiter_id"`
	PostedJobs            int64               `json:"posted_jobs"`
	ActiveJobs            int64               `json:"active_jobs"`
	TotalApplications     int64               `json:"total_applications"`
	InterviewsScheduled   int64               `json:"interviews_scheduled"`
	ShortlistedCandidates int64               `json:"shortlisted_candidates"`
	PerJobStats           []JobStats          `json:"per_job_stats"`
	RecentApplications    []RecentApplication `json:"recent_applications"`
}
