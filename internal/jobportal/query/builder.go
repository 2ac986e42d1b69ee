package query

// Builder accumulates independent clauses that are AND-ed together.
type Builder struct {
	clauses []Predicate
}

// NewBuilder returns an empty builder; its predicate matches everything.
func NewBuilder() *Builder {
	return &Builder{}
}

// Where adds p. Nil predicates and empty Ands are ignored.
func (b *Builder) Where(p Predicate) *Builder {
	switch v := p.(type) {
	case nil:
		return b
	case And:
		if len(v) == 0 {
			return b
		}
	}
	b.clauses = append(b.clauses, p)
	return b
}

// WhereIf adds p only when cond holds.
func (b *Builder) WhereIf(cond bool, p Predicate) *Builder {
	if cond {
		return b.Where(p)
	}
	return b
}

// Build returns the conjunction of every added clause.
func (b *Builder) Build() Predicate {
	out := make(And, len(b.clauses))
	copy(out, b.clauses)
	return out
}

// Len is the number of clauses added so far.
func (b *Builder) Len() int {
	return len(b.clauses)
}

// Order sorts by one field.
type Order struct {
	Field Field
	Desc  bool
}

// Spec is a complete query: what to match, how to sort, and an optional
// row cap (0 means no cap).
type Spec struct {
	Where   Predicate
	OrderBy []Order
	Limit   int
}

// NewestJobsFirst orders by creation time with id as the tiebreak so that
// paging over equal timestamps stays deterministic.
var NewestJobsFirst = []Order{{Field: JobCreatedAt, Desc: true}, {Field: JobID, Desc: true}}

// NewestApplicationsFirst orders by submission time, id as the tiebreak.
var NewestApplicationsFirst = []Order{{Field: ApplicationAppliedAt, Desc: true}, {Field: ApplicationID, Desc: true}}
