package db

import (
	"fmt"
	"strings"

	e "github.com/gartstein/jobportal/internal/jobportal/errors"
	"github.com/gartstein/jobportal/internal/jobportal/query"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// columns maps the query fields reachable from one base table to qualified
// SQL columns.
type columns map[query.Field]string

var jobColumns = columns{
	query.JobID:               "jobs.id",
	query.JobTitle:            "jobs.title",
	query.JobLocation:         "jobs.location",
	query.JobIndustry:         "jobs.industry",
	query.JobType:             "jobs.job_type",
	query.JobStatus:           "jobs.status",
	query.JobDeleted:          "jobs.deleted",
	query.JobMinExperience:    "jobs.min_experience",
	query.JobMaxExperience:    "jobs.max_experience",
	query.JobNoticePreference: "jobs.notice_preference",
	query.JobMaxNoticePeriod:  "jobs.max_notice_period",
	query.JobLWDPreferred:     "jobs.lwd_preferred",
	query.JobCompanyID:        "jobs.company_id",
	query.JobCreatedBy:        "jobs.created_by_id",
	query.JobCreatedAt:        "jobs.created_at",
	query.JobViewCount:        "jobs.view_count",
	query.JobExpiresAt:        "jobs.expires_at",
	query.CompanyName:         "companies.name",
}

var applicationColumns = columns{
	query.ApplicationID:           "job_applications.id",
	query.ApplicationJobID:        "job_applications.job_id",
	query.ApplicationJobSeekerID:  "job_applications.job_seeker_id",
	query.ApplicationStatus:       "job_applications.status",
	query.ApplicationAppliedAt:    "job_applications.applied_at",
	query.ApplicationJobCompanyID: "jobs.company_id",
	query.ApplicationJobCreatedBy: "jobs.created_by_id",
	query.ApplicationJobDeleted:   "jobs.deleted",
}

var userColumns = columns{
	query.UserID:        "users.id",
	query.UserRole:      "users.role",
	query.UserStatus:    "users.status",
	query.UserCompanyID: "users.company_id",
	query.UserCreatedAt: "users.created_at",
}

var companyColumns = columns{
	query.CompanyID:        "companies.id",
	query.CompanyName:      "companies.name",
	query.CompanyActive:    "companies.active",
	query.CompanyCreatedAt: "companies.created_at",
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// where renders p as a SQL condition with positional arguments.
func (c columns) where(p query.Predicate) (string, []any, error) {
	switch v := p.(type) {
	case nil:
		return "1 = 1", nil, nil
	case query.Clause:
		return c.clause(v)
	case query.And:
		return c.group(v, " AND ", "1 = 1")
	case query.Or:
		return c.group(v, " OR ", "1 = 0")
	}
	return "", nil, fmt.Errorf("%w: unsupported predicate %T", e.ErrInternal, p)
}

func (c columns) group(ps []query.Predicate, sep, empty string) (string, []any, error) {
	if len(ps) == 0 {
		return empty, nil, nil
	}
	parts := make([]string, 0, len(ps))
	var args []any
	for _, p := range ps {
		sql, a, err := c.where(p)
		if err != nil {
			return "", nil, err
		}
		parts = append(parts, sql)
		args = append(args, a...)
	}
	return "(" + strings.Join(parts, sep) + ")", args, nil
}

func (c columns) clause(cl query.Clause) (string, []any, error) {
	col, err := c.column(cl.Field)
	if err != nil {
		return "", nil, err
	}
	switch cl.Op {
	case query.OpEq, query.OpNe, query.OpLt, query.OpLte, query.OpGt, query.OpGte:
		return fmt.Sprintf("%s %s ?", col, cl.Op), []any{cl.Value}, nil
	case query.OpEqFold:
		return fmt.Sprintf("LOWER(%s) = ?", col), []any{strings.ToLower(fmt.Sprint(cl.Value))}, nil
	case query.OpContains:
		pattern := "%" + likeEscaper.Replace(strings.ToLower(fmt.Sprint(cl.Value))) + "%"
		return fmt.Sprintf(`LOWER(%s) LIKE ? ESCAPE '\'`, col), []any{pattern}, nil
	case query.OpIn:
		return fmt.Sprintf("%s IN ?", col), []any{cl.Value}, nil
	case query.OpIsNull:
		return fmt.Sprintf("%s IS NULL", col), nil, nil
	}
	return "", nil, fmt.Errorf("%w: unsupported operator %q", e.ErrInternal, cl.Op)
}

func (c columns) column(f query.Field) (string, error) {
	col, ok := c[f]
	if !ok {
		return "", fmt.Errorf("%w: field %s is not queryable here", e.ErrInternal, f)
	}
	return col, nil
}

// apply adds the predicate of spec to tx.
func (c columns) apply(tx *gorm.DB, p query.Predicate) (*gorm.DB, error) {
	sql, args, err := c.where(p)
	if err != nil {
		return nil, err
	}
	return tx.Where(sql, args...), nil
}

// order adds the sort keys and row cap of spec to tx.
func (c columns) order(tx *gorm.DB, spec query.Spec) (*gorm.DB, error) {
	for _, o := range spec.OrderBy {
		col, err := c.column(o.Field)
		if err != nil {
			return nil, err
		}
		tx = tx.Order(clause.OrderByColumn{Column: clause.Column{Name: col, Raw: true}, Desc: o.Desc})
	}
	if spec.Limit > 0 {
		tx = tx.Limit(spec.Limit)
	}
	return tx, nil
}

// groupCount is one row of a GROUP BY count.
type groupCount struct {
	Grp   string
	Total int64
}
