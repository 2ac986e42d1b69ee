package db

import (
	"context"
	"fmt"

	"github.com/gartstein/jobportal/internal/jobportal/models"
	"github.com/gartstein/jobportal/internal/jobportal/query"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CreateApplication inserts an application. A second application of the
// same job seeker to the same job fails with ErrConflict through the
// (job_id, job_seeker_id) unique index.
func (r *Repository) CreateApplication(ctx context.Context, app *models.JobApplication) error {
	return r.create(ctx, app, fmt.Sprintf("application of %s to job %s", app.JobSeekerID, app.JobID))
}

// GetApplication loads an application with its job.
func (r *Repository) GetApplication(ctx context.Context, id uuid.UUID) (*models.JobApplication, error) {
	var app models.JobApplication
	if err := r.db.WithContext(ctx).Preload("Job").First(&app, "id = ?", id).Error; err != nil {
		return nil, translate(err, fmt.Sprintf("application %s", id))
	}
	return &app, nil
}

func (r *Repository) UpdateApplication(ctx context.Context, app *models.JobApplication) error {
	return r.save(ctx, app, fmt.Sprintf("application %s", app.ID))
}

// DeleteApplicationsByJob removes every application of a job and returns
// how many there were.
func (r *Repository) DeleteApplicationsByJob(ctx context.Context, jobID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).Delete(&models.JobApplication{}, "job_id = ?", jobID)
	if result.Error != nil {
		return 0, translate(result.Error, fmt.Sprintf("applications of job %s", jobID))
	}
	return result.RowsAffected, nil
}

// LastApplication returns the job seeker's most recent application with
// its job.
func (r *Repository) LastApplication(ctx context.Context, jobSeekerID uuid.UUID) (*models.JobApplication, error) {
	var app models.JobApplication
	err := r.db.WithContext(ctx).
		Preload("Job").
		Where("job_seeker_id = ?", jobSeekerID).
		Order("applied_at DESC").
		First(&app).Error
	if err != nil {
		return nil, translate(err, fmt.Sprintf("applications of %s", jobSeekerID))
	}
	return &app, nil
}

// applications scopes a query to the applications matching p. The job is
// joined so that predicates can reach its company and creator.
func (r *Repository) applications(ctx context.Context, p query.Predicate) (*gorm.DB, error) {
	tx := r.db.WithContext(ctx).Model(&models.JobApplication{}).
		Joins("JOIN jobs ON jobs.id = job_applications.job_id")
	return applicationColumns.apply(tx, p)
}

// FindApplications returns one page of the applications matching spec and
// the total number of matches.
func (r *Repository) FindApplications(ctx context.Context, spec query.Spec, page models.PageRequest) ([]models.JobApplication, int64, error) {
	counter, err := r.applications(ctx, spec.Where)
	if err != nil {
		return nil, 0, err
	}
	var total int64
	if err := counter.Count(&total).Error; err != nil {
		return nil, 0, translate(err, "applications")
	}

	tx, err := r.applications(ctx, spec.Where)
	if err != nil {
		return nil, 0, err
	}
	spec.Limit = 0
	if tx, err = applicationColumns.order(tx, spec); err != nil {
		return nil, 0, err
	}
	var apps []models.JobApplication
	err = tx.Select("job_applications.*").
		Preload("Job").
		Offset(page.Offset()).
		Limit(page.Size).
		Find(&apps).Error
	if err != nil {
		return nil, 0, translate(err, "applications")
	}
	return apps, total, nil
}

// ListApplications returns every application matching spec, capped at
// spec.Limit.
func (r *Repository) ListApplications(ctx context.Context, spec query.Spec) ([]models.JobApplication, error) {
	tx, err := r.applications(ctx, spec.Where)
	if err != nil {
		return nil, err
	}
	if tx, err = applicationColumns.order(tx, spec); err != nil {
		return nil, err
	}
	var apps []models.JobApplication
	if err := tx.Select("job_applications.*").Preload("Job").Find(&apps).Error; err != nil {
		return nil, translate(err, "applications")
	}
	return apps, nil
}

func (r *Repository) CountApplications(ctx context.Context, p query.Predicate) (int64, error) {
	tx, err := r.applications(ctx, p)
	if err != nil {
		return 0, err
	}
	var n int64
	if err := tx.Count(&n).Error; err != nil {
		return 0, translate(err, "applications")
	}
	return n, nil
}

// CountApplicationsByStatus counts matching applications per status.
func (r *Repository) CountApplicationsByStatus(ctx context.Context, p query.Predicate) (map[models.ApplicationStatus]int64, error) {
	tx, err := r.applications(ctx, p)
	if err != nil {
		return nil, err
	}
	var rows []groupCount
	err = tx.Select("job_applications.status AS grp, COUNT(*) AS total").
		Group("job_applications.status").
		Scan(&rows).Error
	if err != nil {
		return nil, translate(err, "applications")
	}
	out := make(map[models.ApplicationStatus]int64, len(rows))
	for _, row := range rows {
		out[models.ApplicationStatus(row.Grp)] = row.Total
	}
	return out, nil
}
