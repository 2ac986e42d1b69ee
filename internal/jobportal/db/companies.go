package db

import (
	"context"
	"fmt"

	"github.com/gartstein/jobportal/internal/jobportal/models"
	"github.com/gartstein/jobportal/internal/jobportal/query"
	"github.com/google/uuid"
)

func (r *Repository) CreateCompany(ctx context.Context, company *models.Company) error {
	return r.create(ctx, company, fmt.Sprintf("company %q", company.Name))
}

func (r *Repository) GetCompany(ctx context.Context, id uuid.UUID) (*models.Company, error) {
	var company models.Company
	if err := r.db.WithContext(ctx).First(&company, "id = ?", id).Error; err != nil {
		return nil, translate(err, fmt.Sprintf("company %s", id))
	}
	return &company, nil
}

// GetCompanyByCreator returns the company created by userID.
func (r *Repository) GetCompanyByCreator(ctx context.Context, userID uuid.UUID) (*models.Company, error) {
	var company models.Company
	err := r.db.WithContext(ctx).
		Where("created_by_id = ?", userID).
		Order("created_at").
		First(&company).Error
	if err != nil {
		return nil, translate(err, fmt.Sprintf("company created by %s", userID))
	}
	return &company, nil
}

func (r *Repository) UpdateCompany(ctx context.Context, company *models.Company) error {
	return r.save(ctx, company, fmt.Sprintf("company %q", company.Name))
}

func (r *Repository) CompanyExistsByName(ctx context.Context, name string) (bool, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&models.Company{}).
		Where("name = ?", name).
		Limit(1).
		Count(&count)
	return count > 0, result.Error
}

// ListCompanies returns the companies matching spec.
func (r *Repository) ListCompanies(ctx context.Context, spec query.Spec) ([]models.Company, error) {
	tx, err := companyColumns.apply(r.db.WithContext(ctx).Model(&models.Company{}), spec.Where)
	if err != nil {
		return nil, err
	}
	if tx, err = companyColumns.order(tx, spec); err != nil {
		return nil, err
	}
	var companies []models.Company
	if err := tx.Find(&companies).Error; err != nil {
		return nil, translate(err, "companies")
	}
	return companies, nil
}

func (r *Repository) CountCompanies(ctx context.Context, p query.Predicate) (int64, error) {
	tx, err := companyColumns.apply(r.db.WithContext(ctx).Model(&models.Company{}), p)
	if err != nil {
		return 0, err
	}
	var n int64
	if err := tx.Count(&n).Error; err != nil {
		return 0, translate(err, "companies")
	}
	return n, nil
}
