package models

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	e "github.com/gartstein/jobportal/internal/jobportal/errors"
	"github.com/google/uuid"
)

// ApplicationStatus is the state of a job application.
type ApplicationStatus string

const (
	StatusApplied            ApplicationStatus = "APPLIED"
	StatusShortlisted        ApplicationStatus = "SHORTLISTED"
	StatusInterviewScheduled ApplicationStatus = "INTERVIEW_SCHEDULED"
	StatusSelected           ApplicationStatus = "SELECTED"
	StatusRejected           ApplicationStatus = "REJECTED"
	StatusOnHold             ApplicationStatus = "ON_HOLD"
	StatusHired              ApplicationStatus = "HIRED"
)

// applicationTransitions lists the statuses a recruiter may move an
// application to from each status. REJECTED and HIRED are terminal.
var applicationTransitions = map[ApplicationStatus][]ApplicationStatus{
	StatusApplied:            {StatusShortlisted, StatusRejected, StatusOnHold},
	StatusShortlisted:        {StatusInterviewScheduled, StatusRejected, StatusOnHold},
	StatusInterviewScheduled: {StatusSelected, StatusRejected, StatusOnHold},
	StatusOnHold:             {StatusShortlisted, StatusInterviewScheduled, StatusSelected, StatusRejected},
	StatusSelected:           {StatusHired, StatusRejected, StatusOnHold},
	StatusRejected:           nil,
	StatusHired:              nil,
}

// Valid reports whether s is a known application status.
func (s ApplicationStatus) Valid() bool {
	_, ok := applicationTransitions[s]
	return ok
}

// CanTransitionTo reports whether a recruiter may move an application from s
// to next. Re-applying the current status is always allowed.
func (s ApplicationStatus) CanTransitionTo(next ApplicationStatus) bool {
	if s == next {
		return true
	}
	for _, allowed := range applicationTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// ParseApplicationStatus converts a status name, case-insensitively.
func ParseApplicationStatus(s string) (ApplicationStatus, error) {
	st := ApplicationStatus(strings.ToUpper(strings.TrimSpace(s)))
	if !st.Valid() {
		return "", fmt.Errorf("%w: unknown application status %q", e.ErrValidation, s)
	}
	return st, nil
}

// ApplicationSource tells whether an application went through the portal or
// an external career page.
type ApplicationSource string

const (
	SourcePortal   ApplicationSource = "PORTAL"
	SourceExternal ApplicationSource = "EXTERNAL"
)

// JobApplication is a job seeker's application to a job. The applicant
// fields are a snapshot taken at submission and are not kept in sync with
// the user's profile.
type JobApplication struct {
	ID    uuid.UUID `gorm:"type:uuid;primaryKey"`
	JobID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_job_jobseeker,priority:1;index"`
	Job   *Job      `gorm:"foreignKey:JobID;constraint:OnDelete:CASCADE"`
	// JobSeekerID is the applicant. At most one application exists per
	// (JobID, JobSeekerID).
	JobSeekerID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_job_jobseeker,priority:2;index"`

	Source           ApplicationSource `gorm:"size:10;not null"`
	ExternalApplyURL string            `gorm:"size:500"`

	FullName    string `gorm:"size:120"`
	Email       string `gorm:"size:255"`
	Phone       string `gorm:"size:40"`
	Skills      string `gorm:"type:text"`
	CoverLetter string `gorm:"type:text"`
	ResumeURL   string `gorm:"size:500"`

	Status    ApplicationStatus `gorm:"size:20;not null;index"`
	AppliedAt time.Time         `gorm:"not null;index"`
	UpdatedAt time.Time
	UpdatedBy *uuid.UUID `gorm:"type:uuid"`
}

// ApplyRequest carries a job seeker's submission.
type ApplyRequest struct {
	JobID            uuid.UUID `json:"job_id"`
	FullName         string    `json:"full_name"`
	Email            string    `json:"email"`
	Phone            string    `json:"phone"`
	Skills           string    `json:"skills"`
	CoverLetter      string    `json:"cover_letter"`
	ResumeURL        string    `json:"resume_url"`
	ExternalApplyURL string    `json:"external_apply_url,omitempty"`
}

// Validate checks the request fields.
func (r *ApplyRequest) Validate() error {
	if r.JobID == uuid.Nil {
		return fmt.Errorf("%w: job id required", e.ErrValidation)
	}
	if len(r.CoverLetter) > 10000 {
		return fmt.Errorf("%w: cover letter too long", e.ErrValidation)
	}
	if r.ExternalApplyURL != "" {
		u, err := url.Parse(r.ExternalApplyURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("%w: invalid external apply url", e.ErrValidation)
		}
	}
	return nil
}

// Source returns EXTERNAL when the request came through an external apply
// url and PORTAL otherwise.
func (r *ApplyRequest) Source() ApplicationSource {
	if r.ExternalApplyURL != "" {
		return SourceExternal
	}
	return SourcePortal
}
