package models

import (
	"fmt"
	"net/mail"
	"strings"
	"time"

	e "github.com/gartstein/jobportal/internal/jobportal/errors"
	"github.com/google/uuid"
)

// User is a platform account.
type User struct {
	ID    uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name  string    `gorm:"size:120;not null"`
	Email string    `gorm:"size:255;not null;uniqueIndex"`
	Phone string    `gorm:"size:40"`
	// Role is fixed at registration; only an admin may change it.
	Role   Role       `gorm:"size:20;not null;index"`
	Status UserStatus `gorm:"size:10;not null"`
	// CompanyID is the assigned company of a RECRUITER and the owned company
	// of a RECRUITER_ADMIN. Nil for everyone else.
	CompanyID *uuid.UUID `gorm:"type:uuid;index"`
	CreatedAt time.Time  `gorm:"index"`
	UpdatedAt time.Time
}

// RegisterUserRequest carries the fields of a self-registration.
type RegisterUserRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
	Role  string `json:"role"`
}

// Validate checks the request and returns the parsed role.
func (r *RegisterUserRequest) Validate() (Role, error) {
	if strings.TrimSpace(r.Name) == "" || len(r.Name) > 120 {
		return "", fmt.Errorf("%w: invalid name", e.ErrValidation)
	}
	if _, err := mail.ParseAddress(r.Email); err != nil {
		return "", fmt.Errorf("%w: invalid email", e.ErrValidation)
	}
	role, err := ParseRole(r.Role)
	if err != nil {
		return "", err
	}
	if role == RoleAdmin {
		return "", fmt.Errorf("%w: admin accounts cannot self-register", e.ErrValidation)
	}
	return role, nil
}
