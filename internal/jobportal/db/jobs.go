package db

import (
	"context"
	"fmt"

	e "github.com/gartstein/jobportal/internal/jobportal/errors"
	"github.com/gartstein/jobportal/internal/jobportal/models"
	"github.com/gartstein/jobportal/internal/jobportal/query"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func (r *Repository) CreateJob(ctx context.Context, job *models.Job) error {
	return r.create(ctx, job, fmt.Sprintf("job %s", job.ID))
}

// GetJob loads a job with its company, archived jobs included.
func (r *Repository) GetJob(ctx context.Context, id uuid.UUID) (*models.Job, error) {
	var job models.Job
	if err := r.db.WithContext(ctx).Preload("Company").First(&job, "id = ?", id).Error; err != nil {
		return nil, translate(err, fmt.Sprintf("job %s", id))
	}
	return &job, nil
}

// UpdateJob writes the editable columns and the status of a job. The view
// counter and the archive flag are left to IncrementViewCount and
// ArchiveJob.
func (r *Repository) UpdateJob(ctx context.Context, job *models.Job) error {
	return r.save(ctx, job, fmt.Sprintf("job %s", job.ID), "view_count", "deleted")
}

// ArchiveJob sets the archive flag of a job.
func (r *Repository) ArchiveJob(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Model(&models.Job{}).
		Where("id = ?", id).
		Update("deleted", true)
	if result.Error != nil {
		return translate(result.Error, fmt.Sprintf("job %s", id))
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: job %s", e.ErrNotFound, id)
	}
	return nil
}

// DeleteJob removes the job row. Its applications must be removed first in
// the same transaction.
func (r *Repository) DeleteJob(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.Job{}, "id = ?", id)
	if result.Error != nil {
		return translate(result.Error, fmt.Sprintf("job %s", id))
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: job %s", e.ErrNotFound, id)
	}
	return nil
}

// IncrementViewCount adds one view to the job atomically.
func (r *Repository) IncrementViewCount(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Model(&models.Job{}).
		Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + ?", 1))
	if result.Error != nil {
		return translate(result.Error, fmt.Sprintf("job %s", id))
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: job %s", e.ErrNotFound, id)
	}
	return nil
}

// jobs scopes a query to the jobs matching p. The company is joined so that
// predicates can reach its name.
func (r *Repository) jobs(ctx context.Context, p query.Predicate) (*gorm.DB, error) {
	tx := r.db.WithContext(ctx).Model(&models.Job{}).
		Joins("LEFT JOIN companies ON companies.id = jobs.company_id")
	return jobColumns.apply(tx, p)
}

// FindJobs returns one page of the jobs matching spec and the total number
// of matches.
func (r *Repository) FindJobs(ctx context.Context, spec query.Spec, page models.PageRequest) ([]models.Job, int64, error) {
	counter, err := r.jobs(ctx, spec.Where)
	if err != nil {
		return nil, 0, err
	}
	var total int64
	if err := counter.Count(&total).Error; err != nil {
		return nil, 0, translate(err, "jobs")
	}

	tx, err := r.jobs(ctx, spec.Where)
	if err != nil {
		return nil, 0, err
	}
	spec.Limit = 0
	if tx, err = jobColumns.order(tx, spec); err != nil {
		return nil, 0, err
	}
	var jobs []models.Job
	err = tx.Select("jobs.*").
		Preload("Company").
		Offset(page.Offset()).
		Limit(page.Size).
		Find(&jobs).Error
	if err != nil {
		return nil, 0, translate(err, "jobs")
	}
	return jobs, total, nil
}

// ListJobs returns every job matching spec, capped at spec.Limit.
func (r *Repository) ListJobs(ctx context.Context, spec query.Spec) ([]models.Job, error) {
	tx, err := r.jobs(ctx, spec.Where)
	if err != nil {
		return nil, err
	}
	if tx, err = jobColumns.order(tx, spec); err != nil {
		return nil, err
	}
	var jobs []models.Job
	if err := tx.Select("jobs.*").Preload("Company").Find(&jobs).Error; err != nil {
		return nil, translate(err, "jobs")
	}
	return jobs, nil
}

// DistinctJobTitles returns the distinct titles of the jobs matching spec.
func (r *Repository) DistinctJobTitles(ctx context.Context, spec query.Spec) ([]string, error) {
	tx, err := r.jobs(ctx, spec.Where)
	if err != nil {
		return nil, err
	}
	if tx, err = jobColumns.order(tx, spec); err != nil {
		return nil, err
	}
	var titles []string
	if err := tx.Distinct("jobs.title").Pluck("jobs.title", &titles).Error; err != nil {
		return nil, translate(err, "job titles")
	}
	return titles, nil
}

func (r *Repository) CountJobs(ctx context.Context, p query.Predicate) (int64, error) {
	tx, err := r.jobs(ctx, p)
	if err != nil {
		return 0, err
	}
	var n int64
	if err := tx.Count(&n).Error; err != nil {
		return 0, translate(err, "jobs")
	}
	return n, nil
}

// CountJobsByIndustry counts matching jobs per industry.
func (r *Repository) CountJobsByIndustry(ctx context.Context, p query.Predicate) (map[string]int64, error) {
	tx, err := r.jobs(ctx, p)
	if err != nil {
		return nil, err
	}
	var rows []groupCount
	if err := tx.Select("jobs.industry AS grp, COUNT(*) AS total").Group("jobs.industry").Scan(&rows).Error; err != nil {
		return nil, translate(err, "jobs")
	}
	out := make(map[string]int64, len(rows))
	for _, row := range rows {
		out[row.Grp] = row.Total
	}
	return out, nil
}

// CountJobsWithoutApplications counts non-archived jobs nobody applied to.
func (r *Repository) CountJobsWithoutApplications(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Job{}).
		Where("jobs.deleted = ?", false).
		Where("NOT EXISTS (SELECT 1 FROM job_applications WHERE job_applications.job_id = jobs.id)").
		Count(&n).Error
	if err != nil {
		return 0, translate(err, "jobs")
	}
	return n, nil
}
