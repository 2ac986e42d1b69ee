package handlers

import (
	"net/http"

	"github.com/gartstein/jobportal/internal/jobportal/models"
	"github.com/google/uuid"
)

// users and companies

func (g *Gateway) registerUser(r *http.Request, _ map[string]string) (any, error) {
	var req models.RegisterUserRequest
	if err := g.decode(r, &req); err != nil {
		return nil, err
	}
	user, err := g.services.Companies.RegisterUser(r.Context(), &req)
	if err != nil {
		return nil, err
	}
	return toUserView(user), nil
}

func (g *Gateway) setUserBlocked(blocked bool) endpoint {
	return func(r *http.Request, params map[string]string) (any, error) {
		id, err := pathID(params, "user_id")
		if err != nil {
			return nil, err
		}
		user, err := g.services.Companies.SetUserBlocked(r.Context(), actor(r), id, blocked)
		if err != nil {
			return nil, err
		}
		return toUserView(user), nil
	}
}

func (g *Gateway) createCompany(r *http.Request, _ map[string]string) (any, error) {
	var req models.CompanyRequest
	if err := g.decode(r, &req); err != nil {
		return nil, err
	}
	company, err := g.services.Companies.CreateCompany(r.Context(), actor(r), &req)
	if err != nil {
		return nil, err
	}
	return toCompanyView(company), nil
}

func (g *Gateway) getCompany(r *http.Request, params map[string]string) (any, error) {
	id, err := pathID(params, "company_id")
	if err != nil {
		return nil, err
	}
	company, err := g.services.Companies.GetCompany(r.Context(), id)
	if err != nil {
		return nil, err
	}
	return toCompanyView(company), nil
}

func (g *Gateway) updateCompany(r *http.Request, params map[string]string) (any, error) {
	id, err := pathID(params, "company_id")
	if err != nil {
		return nil, err
	}
	var req models.CompanyRequest
	if err := g.decode(r, &req); err != nil {
		return nil, err
	}
	company, err := g.services.Companies.UpdateCompany(r.Context(), actor(r), id, &req)
	if err != nil {
		return nil, err
	}
	return toCompanyView(company), nil
}

func (g *Gateway) deactivateCompany(r *http.Request, params map[string]string) (any, error) {
	id, err := pathID(params, "company_id")
	if err != nil {
		return nil, err
	}
	return nil, g.services.Companies.DeactivateCompany(r.Context(), actor(r), id)
}

func (g *Gateway) approveRecruiter(r *http.Request, params map[string]string) (any, error) {
	id, err := pathID(params, "user_id")
	if err != nil {
		return nil, err
	}
	user, err := g.services.Companies.ApproveRecruiter(r.Context(), actor(r), id)
	if err != nil {
		return nil, err
	}
	return toUserView(user), nil
}

func (g *Gateway) setRecruiterBlocked(blocked bool) endpoint {
	return func(r *http.Request, params map[string]string) (any, error) {
		id, err := pathID(params, "user_id")
		if err != nil {
			return nil, err
		}
		user, err := g.services.Companies.SetRecruiterBlocked(r.Context(), actor(r), id, blocked)
		if err != nil {
			return nil, err
		}
		return toUserView(user), nil
	}
}

// jobs

// createJob serves both POST /v1/jobs and POST /v1/companies/{company_id}/jobs.
func (g *Gateway) createJob(r *http.Request, params map[string]string) (any, error) {
	var companyID *uuid.UUID
	if _, ok := params["company_id"]; ok {
		id, err := pathID(params, "company_id")
		if err != nil {
			return nil, err
		}
		companyID = &id
	}
	var req models.JobRequest
	if err := g.decode(r, &req); err != nil {
		return nil, err
	}
	job, err := g.services.Jobs.CreateJob(r.Context(), actor(r), &req, companyID)
	if err != nil {
		return nil, err
	}
	return toJobView(job), nil
}

func (g *Gateway) getJob(r *http.Request, params map[string]string) (any, error) {
	id, err := pathID(params, "job_id")
	if err != nil {
		return nil, err
	}
	job, err := g.services.Jobs.GetJob(r.Context(), actor(r), id)
	if err != nil {
		return nil, err
	}
	return toJobView(job), nil
}

func (g *Gateway) updateJob(r *http.Request, params map[string]string) (any, error) {
	id, err := pathID(params, "job_id")
	if err != nil {
		return nil, err
	}
	var req models.JobRequest
	if err := g.decode(r, &req); err != nil {
		return nil, err
	}
	job, err := g.services.Jobs.UpdateJob(r.Context(), actor(r), id, &req)
	if err != nil {
		return nil, err
	}
	return toJobView(job), nil
}

func (g *Gateway) deleteJob(r *http.Request, params map[string]string) (any, error) {
	id, err := pathID(params, "job_id")
	if err != nil {
		return nil, err
	}
	return nil, g.services.Jobs.DeleteJob(r.Context(), actor(r), id)
}

func (g *Gateway) changeJobStatus(r *http.Request, params map[string]string) (any, error) {
	id, err := pathID(params, "job_id")
	if err != nil {
		return nil, err
	}
	var req statusRequest
	if err := g.decode(r, &req); err != nil {
		return nil, err
	}
	status, err := models.ParseJobStatus(req.Status)
	if err != nil {
		return nil, err
	}
	job, err := g.services.Jobs.ChangeJobStatus(r.Context(), actor(r), id, status)
	if err != nil {
		return nil, err
	}
	return toJobView(job), nil
}

func (g *Gateway) archiveJob(r *http.Request, params map[string]string) (any, error) {
	id, err := pathID(params, "job_id")
	if err != nil {
		return nil, err
	}
	return nil, g.services.Jobs.ArchiveJob(r.Context(), actor(r), id)
}

func (g *Gateway) listJobs(r *http.Request, _ map[string]string) (any, error) {
	q := newQueryParams(r)
	page := q.page()
	if q.err != nil {
		return nil, q.err
	}
	jobs, err := g.services.Jobs.ListJobs(r.Context(), actor(r), page)
	if err != nil {
		return nil, err
	}
	return mapPage(jobs, toJobView), nil
}

func (g *Gateway) listCompanyJobs(r *http.Request, params map[string]string) (any, error) {
	id, err := pathID(params, "company_id")
	if err != nil {
		return nil, err
	}
	q := newQueryParams(r)
	page := q.page()
	if q.err != nil {
		return nil, q.err
	}
	jobs, err := g.services.Jobs.ListJobsByCompany(r.Context(), actor(r), id, page)
	if err != nil {
		return nil, err
	}
	return mapPage(jobs, toJobView), nil
}

func (g *Gateway) latestJobs(r *http.Request, _ map[string]string) (any, error) {
	q := newQueryParams(r)
	lastSeen := q.timestamp("last_seen")
	page := q.page()
	if q.err != nil {
		return nil, q.err
	}
	jobs, err := g.services.Jobs.LatestJobs(r.Context(), actor(r), lastSeen, page)
	if err != nil {
		return nil, err
	}
	return mapPage(jobs, toJobView), nil
}

func (g *Gateway) industryJobs(r *http.Request, params map[string]string) (any, error) {
	q := newQueryParams(r)
	page := q.page()
	if q.err != nil {
		return nil, q.err
	}
	jobs, err := g.services.Jobs.JobsByIndustry(r.Context(), params["industry"], page)
	if err != nil {
		return nil, err
	}
	return mapPage(jobs, toJobView), nil
}

// discovery

func (g *Gateway) searchJobs(r *http.Request, _ map[string]string) (any, error) {
	q := newQueryParams(r)
	criteria := q.criteria()
	page := q.page()
	if q.err != nil {
		return nil, q.err
	}
	jobs, err := g.services.Search.SearchJobs(r.Context(), actor(r), criteria, page)
	if err != nil {
		return nil, err
	}
	return mapPage(jobs, toJobView), nil
}

func (g *Gateway) suggestions(r *http.Request, _ map[string]string) (any, error) {
	titles, err := g.services.Search.Suggestions(r.Context(), newQueryParams(r).str("keyword"))
	if err != nil {
		return nil, err
	}
	if titles == nil {
		titles = []string{}
	}
	return titles, nil
}

func (g *Gateway) suggestedJobs(r *http.Request, params map[string]string) (any, error) {
	id, err := pathID(params, "user_id")
	if err != nil {
		return nil, err
	}
	jobs, err := g.services.Search.SuggestedJobs(r.Context(), actor(r), id)
	if err != nil {
		return nil, err
	}
	return toJobViews(jobs), nil
}

func (g *Gateway) similarJobs(r *http.Request, params map[string]string) (any, error) {
	id, err := pathID(params, "job_id")
	if err != nil {
		return nil, err
	}
	jobs, err := g.services.Search.SimilarJobs(r.Context(), id)
	if err != nil {
		return nil, err
	}
	return toJobViews(jobs), nil
}

func (g *Gateway) trendingJobs(r *http.Request, _ map[string]string) (any, error) {
	jobs, err := g.services.Search.TrendingJobs(r.Context(), actor(r))
	if err != nil {
		return nil, err
	}
	return toJobViews(jobs), nil
}

// applications

func (g *Gateway) apply(r *http.Request, _ map[string]string) (any, error) {
	var req models.ApplyRequest
	if err := g.decode(r, &req); err != nil {
		return nil, err
	}
	app, err := g.services.Applications.Apply(r.Context(), actor(r), &req)
	if err != nil {
		return nil, err
	}
	return toApplicationView(app), nil
}

func (g *Gateway) changeApplicationStatus(r *http.Request, params map[string]string) (any, error) {
	id, err := pathID(params, "application_id")
	if err != nil {
		return nil, err
	}
	var req statusRequest
	if err := g.decode(r, &req); err != nil {
		return nil, err
	}
	status, err := models.ParseApplicationStatus(req.Status)
	if err != nil {
		return nil, err
	}
	app, err := g.services.Applications.ChangeApplicationStatus(r.Context(), actor(r), id, status)
	if err != nil {
		return nil, err
	}
	return toApplicationView(app), nil
}

func (g *Gateway) jobApplications(r *http.Request, params map[string]string) (any, error) {
	id, err := pathID(params, "job_id")
	if err != nil {
		return nil, err
	}
	q := newQueryParams(r)
	page := q.page()
	if q.err != nil {
		return nil, q.err
	}
	apps, err := g.services.Applications.ListApplicationsByJob(r.Context(), actor(r), id, page)
	if err != nil {
		return nil, err
	}
	return mapPage(apps, toApplicationView), nil
}

func (g *Gateway) myApplications(r *http.Request, _ map[string]string) (any, error) {
	q := newQueryParams(r)
	page := q.page()
	if q.err != nil {
		return nil, q.err
	}
	apps, err := g.services.Applications.ListMyApplications(r.Context(), actor(r), page)
	if err != nil {
		return nil, err
	}
	return mapPage(apps, toApplicationView), nil
}

func (g *Gateway) companyApplications(r *http.Request, _ map[string]string) (any, error) {
	q := newQueryParams(r)
	page := q.page()
	if q.err != nil {
		return nil, q.err
	}
	apps, err := g.services.Applications.ListCompanyApplications(r.Context(), actor(r), page)
	if err != nil {
		return nil, err
	}
	return mapPage(apps, toApplicationView), nil
}

// dashboards

func (g *Gateway) adminDashboard(r *http.Request, _ map[string]string) (any, error) {
	return g.services.Dashboard.AdminDashboard(r.Context(), actor(r))
}

func (g *Gateway) companyDashboard(r *http.Request, params map[string]string) (any, error) {
	id, err := pathID(params, "company_id")
	if err != nil {
		return nil, err
	}
	return g.services.Dashboard.RecruiterAdminDashboard(r.Context(), actor(r), id)
}

func (g *Gateway) recruiterDashboard(r *http.Request, params map[string]string) (any, error) {
	id, err := pathID(params, "user_id")
	if err != nil {
		return nil, err
	}
	return g.services.Dashboard.RecruiterDashboard(r.Context(), actor(r), id)
}
