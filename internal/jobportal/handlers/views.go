package handlers

import (
	"time"

	"github.com/gartstein/jobportal/internal/jobportal/models"
	"github.com/google/uuid"
)

// The view types are the JSON representations served over HTTP.

type jobView struct {
	ID               uuid.UUID                `json:"id"`
	Title            string                   `json:"title"`
	Description      string                   `json:"description,omitempty"`
	Location         string                   `json:"location,omitempty"`
	Industry         string                   `json:"industry,omitempty"`
	Salary           *float64                 `json:"salary,omitempty"`
	JobType          models.JobType           `json:"job_type"`
	MinExperience    int                      `json:"min_experience"`
	MaxExperience    *int                     `json:"max_experience,omitempty"`
	Status           models.JobStatus         `json:"status"`
	CompanyID        uuid.UUID                `json:"company_id"`
	CompanyName      string                   `json:"company_name,omitempty"`
	CreatedBy        uuid.UUID                `json:"created_by"`
	ViewCount        int64                    `json:"view_count"`
	NoticePreference *models.NoticePreference `json:"notice_preference,omitempty"`
	MaxNoticePeriod  *int                     `json:"max_notice_period,omitempty"`
	LWDPreferred     bool                     `json:"lwd_preferred"`
	ExpiresAt        *time.Time               `json:"expires_at,omitempty"`
	CreatedAt        time.Time                `json:"created_at"`
	UpdatedAt        time.Time                `json:"updated_at"`
}

func toJobView(job *models.Job) jobView {
	v := jobView{
		ID:               job.ID,
		Title:            job.Title,
		Description:      job.Description,
		Location:         job.Location,
		Industry:         job.Industry,
		Salary:           job.Salary,
		JobType:          job.JobType,
		MinExperience:    job.MinExperience,
		MaxExperience:    job.MaxExperience,
		Status:           job.Status,
		CompanyID:        job.CompanyID,
		CreatedBy:        job.CreatedByID,
		ViewCount:        job.ViewCount,
		NoticePreference: job.NoticePreference,
		MaxNoticePeriod:  job.MaxNoticePeriod,
		LWDPreferred:     job.LWDPreferred,
		ExpiresAt:        job.ExpiresAt,
		CreatedAt:        job.CreatedAt,
		UpdatedAt:        job.UpdatedAt,
	}
	if job.Company != nil {
		v.CompanyName = job.Company.Name
	}
	return v
}

func toJobViews(jobs []models.Job) []jobView {
	out := make([]jobView, 0, len(jobs))
	for i := range jobs {
		out = append(out, toJobView(&jobs[i]))
	}
	return out
}

type companyView struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Website     string    `json:"website,omitempty"`
	Location    string    `json:"location,omitempty"`
	LogoURL     string    `json:"logo_url,omitempty"`
	Active      bool      `json:"active"`
	CreatedBy   uuid.UUID `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
}

func toCompanyView(c *models.Company) companyView {
	return companyView{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		Website:     c.Website,
		Location:    c.Location,
		LogoURL:     c.LogoURL,
		Active:      c.Active,
		CreatedBy:   c.CreatedByID,
		CreatedAt:   c.CreatedAt,
	}
}

type userView struct {
	ID        uuid.UUID         `json:"id"`
	Name      string            `json:"name"`
	Email     string            `json:"email"`
	Phone     string            `json:"phone,omitempty"`
	Role      models.Role       `json:"role"`
	Status    models.UserStatus `json:"status"`
	CompanyID *uuid.UUID        `json:"company_id,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

func toUserView(u *models.User) userView {
	return userView{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Phone:     u.Phone,
		Role:      u.Role,
		Status:    u.Status,
		CompanyID: u.CompanyID,
		CreatedAt: u.CreatedAt,
	}
}

type applicationView struct {
	ID               uuid.UUID                `json:"id"`
	JobID            uuid.UUID                `json:"job_id"`
	JobTitle         string                   `json:"job_title,omitempty"`
	JobSeekerID      uuid.UUID                `json:"job_seeker_id"`
	Source           models.ApplicationSource `json:"source"`
	ExternalApplyURL string                   `json:"external_apply_url,omitempty"`
	FullName         string                   `json:"full_name"`
	Email            string                   `json:"email"`
	Phone            string                   `json:"phone,omitempty"`
	Skills           string                   `json:"skills,omitempty"`
	CoverLetter      string                   `json:"cover_letter,omitempty"`
	ResumeURL        string                   `json:"resume_url,omitempty"`
	Status           models.ApplicationStatus `json:"status"`
	AppliedAt        time.Time                `json:"applied_at"`
	UpdatedAt        time.Time                `json:"updated_at"`
	UpdatedBy        *uuid.UUID               `json:"updated_by,omitempty"`
}

func toApplicationView(a *models.JobApplication) applicationView {
	v := applicationView{
		ID:               a.ID,
		JobID:            a.JobID,
		JobSeekerID:      a.JobSeekerID,
		Source:           a.Source,
		ExternalApplyURL: a.ExternalApplyURL,
		FullName:         a.FullName,
		Email:            a.Email,
		Phone:            a.Phone,
		Skills:           a.Skills,
		CoverLetter:      a.CoverLetter,
		ResumeURL:        a.ResumeURL,
		Status:           a.Status,
		AppliedAt:        a.AppliedAt,
		UpdatedAt:        a.UpdatedAt,
		UpdatedBy:        a.UpdatedBy,
	}
	if a.Job != nil {
		v.JobTitle = a.Job.Title
	}
	return v
}

// mapPage converts the items of a page, keeping its paging fields.
func mapPage[T, V any](p models.Page[T], convert func(*T) V) models.Page[V] {
	items := make([]V, 0, len(p.Items))
	for i := range p.Items {
		items = append(items, convert(&p.Items[i]))
	}
	return models.Page[V]{
		Items:         items,
		Page:          p.Page,
		Size:          p.Size,
		TotalElements: p.TotalElements,
		TotalPages:    p.TotalPages,
		Last:          p.Last,
	}
}
