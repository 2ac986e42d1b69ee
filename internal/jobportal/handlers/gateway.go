// Package handlers exposes the job portal services over HTTP, through a
// grpc-gateway ServeMux, and runs it next to a gRPC server that serves the
// standard health service.
package handlers

import (
	"fmt"
	"net/http"

	"github.com/gartstein/jobportal/internal/jobportal/auth"
	"github.com/gartstein/jobportal/internal/jobportal/controller"
	"github.com/gartstein/jobportal/internal/jobportal/models"
	"github.com/gartstein/jobportal/internal/jobportal/ratelimit"
	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"go.uber.org/zap"
)

// endpoint handles one route. A nil result with a nil error is answered
// with 204 No Content.
type endpoint func(r *http.Request, params map[string]string) (any, error)

// Gateway routes HTTP requests to the services.
type Gateway struct {
	services       *controller.Services
	limiter        *ratelimit.Limiter
	logger         *zap.Logger
	mux            *runtime.ServeMux
	errorMarshaler runtime.Marshaler
}

// NewGateway registers every route. limiter may be nil to disable rate
// limiting.
func NewGateway(services *controller.Services, limiter *ratelimit.Limiter, logger *zap.Logger) (*Gateway, error) {
	g := &Gateway{
		services: services,
		limiter:  limiter,
		logger:   logger.Named("http_handler"),
		mux: runtime.NewServeMux(
			runtime.WithMarshalerOption(runtime.MIMEWildcard, &runtime.JSONBuiltin{}),
		),
		errorMarshaler: &runtime.JSONPb{},
	}
	if err := g.registerRoutes(); err != nil {
		return nil, err
	}
	return g, nil
}

// Handler returns the mux wrapped in recovery, request logging and
// authentication.
func (g *Gateway) Handler(jwtSecret string) http.Handler {
	return Recovery(Logging(auth.HTTPMiddleware(g.mux, jwtSecret, g.logger), g.logger), g.logger)
}

type route struct {
	method  string
	pattern string
	status  int
	fn      endpoint
}

func (g *Gateway) registerRoutes() error {
	routes := []route{
		{http.MethodPost, "/v1/users", http.StatusCreated, g.registerUser},
		{http.MethodPost, "/v1/users/{user_id}/block", http.StatusOK, g.setUserBlocked(true)},
		{http.MethodPost, "/v1/users/{user_id}/unblock", http.StatusOK, g.setUserBlocked(false)},
		{http.MethodPost, "/v1/companies", http.StatusCreated, g.createCompany},
		{http.MethodGet, "/v1/companies/{company_id}", http.StatusOK, g.getCompany},
		{http.MethodPatch, "/v1/companies/{company_id}", http.StatusOK, g.updateCompany},
		{http.MethodDelete, "/v1/companies/{company_id}", http.StatusOK, g.deactivateCompany},
		{http.MethodPost, "/v1/recruiters/{user_id}/approve", http.StatusOK, g.approveRecruiter},
		{http.MethodPost, "/v1/recruiters/{user_id}/block", http.StatusOK, g.setRecruiterBlocked(true)},
		{http.MethodPost, "/v1/recruiters/{user_id}/unblock", http.StatusOK, g.setRecruiterBlocked(false)},

		{http.MethodPost, "/v1/jobs", http.StatusCreated, g.createJob},
		{http.MethodPost, "/v1/companies/{company_id}/jobs", http.StatusCreated, g.createJob},
		{http.MethodGet, "/v1/jobs", http.StatusOK, g.listJobs},
		{http.MethodGet, "/v1/jobs/{job_id}", http.StatusOK, g.getJob},
		{http.MethodPut, "/v1/jobs/{job_id}", http.StatusOK, g.updateJob},
		{http.MethodDelete, "/v1/jobs/{job_id}", http.StatusOK, g.deleteJob},
		{http.MethodPatch, "/v1/jobs/{job_id}/status", http.StatusOK, g.changeJobStatus},
		{http.MethodPost, "/v1/jobs/{job_id}/archive", http.StatusOK, g.archiveJob},
		{http.MethodGet, "/v1/jobs/{job_id}/similar", http.StatusOK, g.similarJobs},
		{http.MethodGet, "/v1/companies/{company_id}/jobs", http.StatusOK, g.listCompanyJobs},
		{http.MethodGet, "/v1/feed/latest", http.StatusOK, g.latestJobs},
		{http.MethodGet, "/v1/feed/industry/{industry}", http.StatusOK, g.industryJobs},
		{http.MethodGet, "/v1/feed/trending", http.StatusOK, g.trendingJobs},
		{http.MethodGet, "/v1/search/jobs", http.StatusOK, g.limited("search", g.searchJobs)},
		{http.MethodGet, "/v1/search/suggestions", http.StatusOK, g.suggestions},
		{http.MethodGet, "/v1/users/{user_id}/suggested-jobs", http.StatusOK, g.suggestedJobs},

		{http.MethodPost, "/v1/applications", http.StatusCreated, g.limited("apply", g.apply)},
		{http.MethodPatch, "/v1/applications/{application_id}/status", http.StatusOK, g.changeApplicationStatus},
		{http.MethodGet, "/v1/jobs/{job_id}/applications", http.StatusOK, g.jobApplications},
		{http.MethodGet, "/v1/me/applications", http.StatusOK, g.myApplications},
		{http.MethodGet, "/v1/company/applications", http.StatusOK, g.companyApplications},

		{http.MethodGet, "/v1/dashboard/admin", http.StatusOK, g.adminDashboard},
		{http.MethodGet, "/v1/dashboard/companies/{company_id}", http.StatusOK, g.companyDashboard},
		{http.MethodGet, "/v1/dashboard/recruiters/{user_id}", http.StatusOK, g.recruiterDashboard},
	}

	for _, rt := range routes {
		if err := g.mux.HandlePath(rt.method, rt.pattern, g.serve(rt.status, rt.fn)); err != nil {
			return fmt.Errorf("failed to register %s %s: %w", rt.method, rt.pattern, err)
		}
	}
	return nil
}

func (g *Gateway) serve(code int, fn endpoint) runtime.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request, params map[string]string) {
		result, err := fn(r, params)
		if err != nil {
			g.writeError(w, r, err)
			return
		}
		if result == nil {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		_, outbound := runtime.MarshalerForRequest(g.mux, r)
		body, err := outbound.Marshal(result)
		if err != nil {
			g.writeError(w, r, fmt.Errorf("failed to marshal response: %w", err))
			return
		}
		w.Header().Set("Content-Type", outbound.ContentType(result))
		w.WriteHeader(code)
		if _, err := w.Write(body); err != nil {
			g.logger.Warn("failed to write response", zap.Error(err))
		}
	}
}

func actor(r *http.Request) models.Actor {
	return auth.ActorFromContext(r.Context())
}
