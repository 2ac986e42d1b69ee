// Package models defines the core domain models of the job portal: users,
// companies, jobs, job applications and the value types passed between the
// service layer and its collaborators. The structs carry GORM tags and are
// persisted as-is by the db package.
package models

import (
	"fmt"
	"strings"

	e "github.com/gartstein/jobportal/internal/jobportal/errors"
	"github.com/google/uuid"
)

// Role is the platform role of a user.
type Role string

const (
	RoleJobSeeker      Role = "JOB_SEEKER"
	RoleRecruiter      Role = "RECRUITER"
	RoleRecruiterAdmin Role = "RECRUITER_ADMIN"
	RoleAdmin          Role = "ADMIN"
)

// Roles lists every role in display order.
var Roles = []Role{RoleJobSeeker, RoleRecruiter, RoleRecruiterAdmin, RoleAdmin}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleJobSeeker, RoleRecruiter, RoleRecruiterAdmin, RoleAdmin:
		return true
	}
	return false
}

// Recruiting reports whether r posts jobs on behalf of a company.
func (r Role) Recruiting() bool {
	return r == RoleRecruiter || r == RoleRecruiterAdmin
}

// ParseRole converts a role name, case-insensitively, into a Role.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", fmt.Errorf("%w: unknown role %q", e.ErrValidation, s)
	}
	return r, nil
}

// UserStatus is the account state of a user.
type UserStatus string

const (
	UserPending UserStatus = "PENDING"
	UserActive  UserStatus = "ACTIVE"
	UserBlocked UserStatus = "BLOCKED"
)

// Actor is the already-authenticated identity on whose behalf an operation
// runs. The zero value is an anonymous caller.
type Actor struct {
	UserID uuid.UUID
	Role   Role
}

// Anonymous returns the identity of an unauthenticated caller.
func Anonymous() Actor {
	return Actor{}
}

// Authenticated reports whether the actor carries a resolved identity.
func (a Actor) Authenticated() bool {
	return a.UserID != uuid.Nil && a.Role.Valid()
}

// Privileged reports whether the actor may see non-public job data such as
// closed jobs or explicit status filters.
func (a Actor) Privileged() bool {
	return a.Authenticated() && (a.Role == RoleAdmin || a.Role.Recruiting())
}

// IsAdmin reports whether the actor is a platform admin.
func (a Actor) IsAdmin() bool {
	return a.Authenticated() && a.Role == RoleAdmin
}

func (a Actor) String() string {
	if !a.Authenticated() {
		return "anonymous"
	}
	return fmt.Sprintf("%s(%s)", a.Role, a.UserID)
}
