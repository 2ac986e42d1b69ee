package models

import (
	"fmt"
	"strings"
	"time"

	e "github.com/gartstein/jobportal/internal/jobportal/errors"
	"github.com/google/uuid"
)

// JobType represents the employment type of a job.
type JobType string

const (
	FullTime   JobType = "FULL_TIME"
	PartTime   JobType = "PART_TIME"
	Internship JobType = "INTERNSHIP"
	Contract   JobType = "CONTRACT"
)

// Valid reports whether t is a known job type.
func (t JobType) Valid() bool {
	switch t {
	case FullTime, PartTime, Internship, Contract:
		return true
	}
	return false
}

// ParseJobType converts a job type name, case-insensitively.
func ParseJobType(s string) (JobType, error) {
	t := JobType(strings.ToUpper(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("%w: unknown job type %q", e.ErrValidation, s)
	}
	return t, nil
}

// JobStatus is the lifecycle state of a job.
type JobStatus string

const (
	JobOpen   JobStatus = "OPEN"
	JobClosed JobStatus = "CLOSED"
)

// Valid reports whether s is a known job status.
func (s JobStatus) Valid() bool {
	return s == JobOpen || s == JobClosed
}

// ParseJobStatus converts a status name, case-insensitively.
func ParseJobStatus(s string) (JobStatus, error) {
	st := JobStatus(strings.ToUpper(strings.TrimSpace(s)))
	if !st.Valid() {
		return "", fmt.Errorf("%w: unknown job status %q", e.ErrValidation, s)
	}
	return st, nil
}

// NoticePreference expresses which candidates a job prefers with respect to
// their notice period.
type NoticePreference string

const (
	NoticeImmediate     NoticePreference = "IMMEDIATE"
	NoticeServing       NoticePreference = "SERVING_NOTICE"
	NoticePeriodAllowed NoticePreference = "NOTICE_PERIOD"
	NoticeAny           NoticePreference = "ANY"
)

// Valid reports whether p is a known notice preference.
func (p NoticePreference) Valid() bool {
	switch p {
	case NoticeImmediate, NoticeServing, NoticePeriodAllowed, NoticeAny:
		return true
	}
	return false
}

// ParseNoticePreference converts a notice preference name, case-insensitively.
func ParseNoticePreference(s string) (NoticePreference, error) {
	p := NoticePreference(strings.ToUpper(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", fmt.Errorf("%w: unknown notice preference %q", e.ErrValidation, s)
	}
	return p, nil
}

// Job is a job posting owned by exactly one company.
type Job struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	Title         string    `gorm:"size:200;not null"`
	Description   string    `gorm:"type:text"`
	Location      string    `gorm:"size:120;index:idx_jobs_location_type_exp,priority:1"`
	Industry      string    `gorm:"size:120;index"`
	Salary        *float64
	JobType       JobType `gorm:"size:20;not null;index:idx_jobs_location_type_exp,priority:2"`
	MinExperience int     `gorm:"not null;index:idx_jobs_location_type_exp,priority:3"`
	MaxExperience *int
	Status        JobStatus `gorm:"size:10;not null;index:idx_jobs_status_created_at,priority:1"`

	// CompanyID is fixed at creation.
	CompanyID   uuid.UUID `gorm:"type:uuid;not null;index"`
	Company     *Company  `gorm:"foreignKey:CompanyID"`
	CreatedByID uuid.UUID `gorm:"type:uuid;not null;index"`

	ViewCount int64 `gorm:"not null"`
	// Deleted hides an archived job from every read path.
	Deleted bool `gorm:"not null"`

	NoticePreference *NoticePreference `gorm:"size:20"`
	// MaxNoticePeriod is the longest acceptable notice period in days; nil
	// accepts any.
	MaxNoticePeriod *int
	LWDPreferred    bool `gorm:"column:lwd_preferred;not null"`
	ExpiresAt       *time.Time

	CreatedAt time.Time `gorm:"index:idx_jobs_status_created_at,priority:2"`
	UpdatedAt time.Time
}

// JobRequest carries the editable fields of a job for create and update.
type JobRequest struct {
	Title            string            `json:"title"`
	Description      string            `json:"description"`
	Location         string            `json:"location"`
	Industry         string            `json:"industry"`
	Salary           *float64          `json:"salary,omitempty"`
	JobType          JobType           `json:"job_type"`
	MinExperience    *int              `json:"min_experience,omitempty"`
	MaxExperience    *int              `json:"max_experience,omitempty"`
	NoticePreference *NoticePreference `json:"notice_preference,omitempty"`
	MaxNoticePeriod  *int              `json:"max_notice_period,omitempty"`
	LWDPreferred     bool              `json:"lwd_preferred"`
	ExpiresAt        *time.Time        `json:"expires_at,omitempty"`
}

// Validate checks the request fields.
func (r *JobRequest) Validate() error {
	if strings.TrimSpace(r.Title) == "" || len(r.Title) > 200 {
		return fmt.Errorf("%w: invalid title", e.ErrValidation)
	}
	if !r.JobType.Valid() {
		return fmt.Errorf("%w: unknown job type %q", e.ErrValidation, r.JobType)
	}
	if r.MinExperience != nil && *r.MinExperience < 0 {
		return fmt.Errorf("%w: min experience must not be negative", e.ErrValidation)
	}
	if r.MaxExperience != nil && *r.MaxExperience < 0 {
		return fmt.Errorf("%w: max experience must not be negative", e.ErrValidation)
	}
	if r.MinExperience != nil && r.MaxExperience != nil && *r.MaxExperience < *r.MinExperience {
		return fmt.Errorf("%w: max experience below min experience", e.ErrValidation)
	}
	if r.Salary != nil && *r.Salary < 0 {
		return fmt.Errorf("%w: salary must not be negative", e.ErrValidation)
	}
	if r.NoticePreference != nil && !r.NoticePreference.Valid() {
		return fmt.Errorf("%w: unknown notice preference %q", e.ErrValidation, *r.NoticePreference)
	}
	if r.MaxNoticePeriod != nil && *r.MaxNoticePeriod < 0 {
		return fmt.Errorf("%w: max notice period must not be negative", e.ErrValidation)
	}
	return nil
}

// Apply copies the request fields onto job. Company and status are left alone.
func (r *JobRequest) Apply(job *Job) {
	job.Title = strings.TrimSpace(r.Title)
	job.Description = r.Description
	job.Location = strings.TrimSpace(r.Location)
	job.Industry = strings.TrimSpace(r.Industry)
	job.Salary = r.Salary
	job.JobType = r.JobType
	job.MinExperience = 0
	if r.MinExperience != nil {
		job.MinExperience = *r.MinExperience
	}
	job.MaxExperience = r.MaxExperience
	job.NoticePreference = r.NoticePreference
	job.MaxNoticePeriod = r.MaxNoticePeriod
	job.LWDPreferred = r.LWDPreferred
	job.ExpiresAt = r.ExpiresAt
}
