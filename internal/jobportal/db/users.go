package db

import (
	"context"
	"fmt"

	"github.com/gartstein/jobportal/internal/jobportal/models"
	"github.com/gartstein/jobportal/internal/jobportal/query"
	"github.com/google/uuid"
)

func (r *Repository) CreateUser(ctx context.Context, user *models.User) error {
	return r.create(ctx, user, "user "+user.Email)
}

func (r *Repository) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, translate(err, fmt.Sprintf("user %s", id))
	}
	return &user, nil
}

func (r *Repository) UpdateUser(ctx context.Context, user *models.User) error {
	return r.save(ctx, user, fmt.Sprintf("user %s", user.ID))
}

// ListUsers returns the users matching spec.
func (r *Repository) ListUsers(ctx context.Context, spec query.Spec) ([]models.User, error) {
	tx, err := userColumns.apply(r.db.WithContext(ctx).Model(&models.User{}), spec.Where)
	if err != nil {
		return nil, err
	}
	if tx, err = userColumns.order(tx, spec); err != nil {
		return nil, err
	}
	var users []models.User
	if err := tx.Find(&users).Error; err != nil {
		return nil, translate(err, "users")
	}
	return users, nil
}

func (r *Repository) CountUsers(ctx context.Context, p query.Predicate) (int64, error) {
	tx, err := userColumns.apply(r.db.WithContext(ctx).Model(&models.User{}), p)
	if err != nil {
		return 0, err
	}
	var n int64
	if err := tx.Count(&n).Error; err != nil {
		return 0, translate(err, "users")
	}
	return n, nil
}

// CountUsersByRole counts matching users per role. Roles without users are
// absent from the result.
func (r *Repository) CountUsersByRole(ctx context.Context, p query.Predicate) (map[models.Role]int64, error) {
	tx, err := userColumns.apply(r.db.WithContext(ctx).Model(&models.User{}), p)
	if err != nil {
		return nil, err
	}
	var rows []groupCount
	if err := tx.Select("users.role AS grp, COUNT(*) AS total").Group("users.role").Scan(&rows).Error; err != nil {
		return nil, translate(err, "users")
	}
	out := make(map[models.Role]int64, len(rows))
	for _, row := range rows {
		if row.Total > 0 {
			out[models.Role(row.Grp)] = row.Total
		}
	}
	return out, nil
}

// GetProfileByUser loads a job seeker's profile together with its skills.
func (r *Repository) GetProfileByUser(ctx context.Context, userID uuid.UUID) (*models.JobSeekerProfile, error) {
	var profile models.JobSeekerProfile
	err := r.db.WithContext(ctx).Preload("Skills").First(&profile, "user_id = ?", userID).Error
	if err != nil {
		return nil, translate(err, fmt.Sprintf("profile of user %s", userID))
	}
	return &profile, nil
}

// SaveProfile inserts or replaces a job seeker's profile and its skill set.
// Unknown skills are added to the catalog.
func (r *Repository) SaveProfile(ctx context.Context, profile *models.JobSeekerProfile) error {
	if profile.ID == uuid.Nil {
		profile.ID = uuid.New()
	}
	return r.WithTransaction(ctx, func(tx *Repository) error {
		for i := range profile.Skills {
			skill := &profile.Skills[i]
			err := tx.db.WithContext(ctx).Where("name = ?", skill.Name).
				Attrs(models.Skill{ID: uuid.New()}).
				FirstOrCreate(skill).Error
			if err != nil {
				return translate(err, "skill "+skill.Name)
			}
		}
		if err := tx.db.WithContext(ctx).Omit("Skills").Save(profile).Error; err != nil {
			return translate(err, "profile")
		}
		return translate(tx.db.WithContext(ctx).Model(profile).Association("Skills").Replace(profile.Skills), "profile skills")
	})
}
