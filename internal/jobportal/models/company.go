package models

import (
	"fmt"
	"strings"
	"time"

	e "github.com/gartstein/jobportal/internal/jobportal/errors"
	"github.com/google/uuid"
)

// Company is the tenant jobs are posted for. Companies are never removed;
// deactivation clears Active.
type Company struct {
	// ID is the unique identifier for the company.
	ID uuid.UUID `gorm:"type:uuid;primaryKey"`
	// Name is globally unique and compared case-sensitively.
	Name        string `gorm:"size:150;not null;uniqueIndex"`
	Description string `gorm:"size:3000"`
	Website     string `gorm:"size:255"`
	Location    string `gorm:"size:120"`
	LogoURL     string `gorm:"size:500"`
	// Active is false once the company has been deactivated.
	Active bool `gorm:"not null"`
	// CreatedByID is the RECRUITER_ADMIN or ADMIN who created the company.
	CreatedByID uuid.UUID `gorm:"type:uuid;not null;index"`
	CreatedAt   time.Time `gorm:"index"`
	UpdatedAt   time.Time
}

// CompanyRequest carries the editable fields of a company.
type CompanyRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Website     string `json:"website"`
	Location    string `json:"location"`
	LogoURL     string `json:"logo_url"`
}

// Validate checks field lengths.
func (r *CompanyRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" || len(r.Name) > 150 {
		return fmt.Errorf("%w: invalid company name", e.ErrValidation)
	}
	if len(r.Description) > 3000 {
		return fmt.Errorf("%w: description too long", e.ErrValidation)
	}
	return nil
}
