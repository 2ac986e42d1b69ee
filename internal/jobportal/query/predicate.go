// Package query builds storage-agnostic predicates over the job portal's
// entities. A predicate is a small tree of field clauses combined with AND
// and OR; the db package translates it into SQL, other stores can walk the
// same tree.
package query

import (
	"fmt"
	"strings"
)

// Field names an entity attribute a clause can constrain.
type Field string

// Job fields. CompanyName is reached through the job's company.
const (
	JobID               Field = "job.id"
	JobTitle            Field = "job.title"
	JobLocation         Field = "job.location"
	JobIndustry         Field = "job.industry"
	JobType             Field = "job.job_type"
	JobStatus           Field = "job.status"
	JobDeleted          Field = "job.deleted"
	JobMinExperience    Field = "job.min_experience"
	JobMaxExperience    Field = "job.max_experience"
	JobNoticePreference Field = "job.notice_preference"
	JobMaxNoticePeriod  Field = "job.max_notice_period"
	JobLWDPreferred     Field = "job.lwd_preferred"
	JobCompanyID        Field = "job.company_id"
	JobCreatedBy        Field = "job.created_by"
	JobCreatedAt        Field = "job.created_at"
	JobViewCount        Field = "job.view_count"
	JobExpiresAt        Field = "job.expires_at"
	CompanyName         Field = "company.name"
)

// Application fields. The ApplicationJob* fields are reached through the
// application's job.
const (
	ApplicationID           Field = "application.id"
	ApplicationJobID        Field = "application.job_id"
	ApplicationJobSeekerID  Field = "application.job_seeker_id"
	ApplicationStatus       Field = "application.status"
	ApplicationAppliedAt    Field = "application.applied_at"
	ApplicationJobCompanyID Field = "application.job.company_id"
	ApplicationJobCreatedBy Field = "application.job.created_by"
	ApplicationJobDeleted   Field = "application.job.deleted"
)

// User and company fields.
const (
	UserID           Field = "user.id"
	UserRole         Field = "user.role"
	UserStatus       Field = "user.status"
	UserCompanyID    Field = "user.company_id"
	UserCreatedAt    Field = "user.created_at"
	CompanyID        Field = "company.id"
	CompanyCreatedAt Field = "company.created_at"
	CompanyActive    Field = "company.active"
)

// Op is a clause operator.
type Op string

const (
	OpEq Op = "="
	OpNe Op = "<>"
	// OpEqFold is a case-insensitive string equality.
	OpEqFold Op = "=~"
	// OpContains is a case-insensitive substring match.
	OpContains Op = "contains"
	OpLt       Op = "<"
	OpLte      Op = "<="
	OpGt       Op = ">"
	OpGte      Op = ">="
	OpIn       Op = "in"
	OpIsNull   Op = "is null"
)

// Predicate is a node of a predicate tree: a Clause, an And or an Or.
type Predicate interface {
	fmt.Stringer
	predicate()
}

// Clause constrains a single field.
type Clause struct {
	Field Field
	Op    Op
	Value any
}

// And matches when every child matches. An empty And matches everything.
type And []Predicate

// Or matches when any child matches. An empty Or matches nothing.
type Or []Predicate

func (Clause) predicate() {}
func (And) predicate()    {}
func (Or) predicate()     {}

func (c Clause) String() string {
	if c.Op == OpIsNull {
		return fmt.Sprintf("%s is null", c.Field)
	}
	return fmt.Sprintf("%s %s %v", c.Field, c.Op, c.Value)
}

func (a And) String() string { return join(a, " AND ", "true") }
func (o Or) String() string  { return join(o, " OR ", "false") }

func join(ps []Predicate, sep, empty string) string {
	if len(ps) == 0 {
		return empty
	}
	parts := make([]string, len(ps))
	for i, p := range ps {
		parts[i] = p.String()
	}
	return "(" + strings.Join(parts, sep) + ")"
}

func Eq(f Field, v any) Clause { return Clause{Field: f, Op: OpEq, Value: v} }
func Ne(f Field, v any) Clause { return Clause{Field: f, Op: OpNe, Value: v} }
func EqFold(f Field, s string) Clause { return Clause{Field: f, Op: OpEqFold, Value: s} }
func Contains(f Field, s string) Clause { return Clause{Field: f, Op: OpContains, Value: s} }
func Lt(f Field, v any) Clause { return Clause{Field: f, Op: OpLt, Value: v} }
func Lte(f Field, v any) Clause { return Clause{Field: f, Op: OpLte, Value: v} }
func Gt(f Field, v any) Clause { return Clause{Field: f, Op: OpGt, Value: v} }
func Gte(f Field, v any) Clause { return Clause{Field: f, Op: OpGte, Value: v} }
func IsNull(f Field) Clause { return Clause{Field: f, Op: OpIsNull} }
func In[T any](f Field, values ...T) Clause { return Clause{Field: f, Op: OpIn, Value: values} }

// Between matches from <= f < to.
func Between(f Field, from, to any) And {
	return And{Gte(f, from), Lt(f, to)}
}
