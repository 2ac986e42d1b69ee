package handlers

import (
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gartstein/jobportal/internal/jobportal/models"
	"github.com/gartstein/jobportal/internal/jobportal/query"
	"github.com/google/uuid"
	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
)

// queryParams reads typed values from a query string. The first parse
// failure is kept in err and later reads become no-ops.
type queryParams struct {
	values url.Values
	err    error
}

func newQueryParams(r *http.Request) *queryParams {
	return &queryParams{values: r.URL.Query()}
}

func (q *queryParams) str(key string) string {
	return strings.TrimSpace(q.values.Get(key))
}

func (q *queryParams) integer(key string) *int {
	raw := q.str(key)
	if raw == "" || q.err != nil {
		return nil
	}
	n, err := runtime.Int32(raw)
	if err != nil {
		q.err = invalid("%s must be an integer", key)
		return nil
	}
	v := int(n)
	return &v
}

func (q *queryParams) boolean(key string) *bool {
	raw := q.str(key)
	if raw == "" || q.err != nil {
		return nil
	}
	b, err := runtime.Bool(raw)
	if err != nil {
		q.err = invalid("%s must be a boolean", key)
		return nil
	}
	return &b
}

// timestamp parses an RFC 3339 timestamp.
func (q *queryParams) timestamp(key string) *time.Time {
	raw := q.str(key)
	if raw == "" || q.err != nil {
		return nil
	}
	ts, err := runtime.Timestamp(raw)
	if err != nil {
		q.err = invalid("%s must be an RFC 3339 timestamp", key)
		return nil
	}
	t := ts.AsTime()
	return &t
}

func (q *queryParams) page() models.PageRequest {
	var p models.PageRequest
	if n := q.integer("page"); n != nil {
		p.Page = *n
	}
	if n := q.integer("size"); n != nil {
		p.Size = *n
	}
	return p
}

// criteria reads the job search filters.
func (q *queryParams) criteria() query.Criteria {
	c := query.Criteria{
		Keyword:         q.str("keyword"),
		Location:        q.str("location"),
		Industry:        q.str("industry"),
		CompanyName:     q.str("company"),
		MinExp:          q.integer("min_exp"),
		MaxExp:          q.integer("max_exp"),
		MaxNoticePeriod: q.integer("max_notice_period"),
		LWDPreferred:    q.boolean("lwd_preferred"),
	}
	if raw := q.str("job_type"); raw != "" && q.err == nil {
		t, err := models.ParseJobType(raw)
		if err != nil {
			q.err = err
		}
		c.JobType = &t
	}
	if raw := q.str("notice_preference"); raw != "" && q.err == nil {
		p, err := models.ParseNoticePreference(raw)
		if err != nil {
			q.err = err
		}
		c.NoticePreference = &p
	}
	if raw := q.str("status"); raw != "" && q.err == nil {
		s, err := models.ParseJobStatus(raw)
		if err != nil {
			q.err = err
		}
		c.Status = &s
	}
	return c
}

func pathID(params map[string]string, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(params[name])
	if err != nil {
		return uuid.Nil, invalid("invalid %s", name)
	}
	return id, nil
}

// decode reads the JSON request body into v.
func (g *Gateway) decode(r *http.Request, v any) error {
	inbound, _ := runtime.MarshalerForRequest(g.mux, r)
	if err := inbound.NewDecoder(r.Body).Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return invalid("request body required")
		}
		return invalid("malformed request body: %v", err)
	}
	return nil
}

type statusRequest struct {
	Status string `json:"status"`
}
