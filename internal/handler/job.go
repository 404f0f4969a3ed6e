package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/jobpost-server/internal/query"
	"github.com/sakif/jobpost-server/internal/service"
)

// JobHandler exposes the jobs collection over HTTP.
//
// Each method does the same three things: pull inputs out of the request
// (path values, query string, body, identity), call one JobService method,
// and write the result or the mapped error. No rules live here.
type JobHandler struct {
	jobs   *service.JobService
	logger *slog.Logger
}

// NewJobHandler creates a JobHandler.
func NewJobHandler(jobs *service.JobService, logger *slog.Logger) *JobHandler {
	return &JobHandler{jobs: jobs, logger: logger}
}

// HandleList returns every job.
//
// HTTP: GET /jobs
func (h *JobHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.jobs.List(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, jobs)
}

// HandleGet returns one job.
//
// HTTP: GET /job/{id}
func (h *JobHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	job, err := h.jobs.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

// HandleListByBuyer returns the jobs posted by the caller.
//
// HTTP: GET /jobs/{email} (authenticated; email must be the caller's)
func (h *JobHandler) HandleListByBuyer(w http.ResponseWriter, r *http.Request) {
	id, err := identity(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	email, err := emailParam(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	jobs, err := h.jobs.ListByBuyer(r.Context(), id, email)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, jobs)
}

// HandleCreate stores a new job.
//
// HTTP: POST /jobs
// RESPONSE: 201 with the stored job, including its _id.
func (h *JobHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var in service.JobInput
	if err := decodeJSON(w, r, &in, false); err != nil {
		writeError(w, h.logger, err)
		return
	}

	job, err := h.jobs.Create(r.Context(), in)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, job)
}

// HandleUpdate replaces a job's fields, creating it if the id is unknown.
//
// HTTP: PUT /job/{id} (authenticated; caller must own the job)
func (h *JobHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := identity(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	var in service.JobInput
	if err := decodeJSON(w, r, &in, false); err != nil {
		writeError(w, h.logger, err)
		return
	}

	job, err := h.jobs.Update(r.Context(), id, r.PathValue("id"), in)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

// HandleDelete removes a job.
//
// HTTP: DELETE /job/{id} (authenticated; caller must own the job)
// RESPONSE: 204 No Content
func (h *JobHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := identity(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	if err := h.jobs.Delete(r.Context(), id, r.PathValue("id")); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleBrowse returns one page of the filtered listing.
//
// HTTP: GET /all-jobs?size=10&page=2&filter=design&sort=asc&search=web
func (h *JobHandler) HandleBrowse(w http.ResponseWriter, r *http.Request) {
	page, err := query.ParseJobPage(r.URL.Query())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	jobs, err := h.jobs.Browse(r.Context(), page)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, jobs)
}

// HandleCount returns how many jobs match the filter and search terms.
//
// HTTP: GET /jobs-count?filter=design&search=web
// RESPONSE: {"count": 42}
func (h *JobHandler) HandleCount(w http.ResponseWriter, r *http.Request) {
	n, err := h.jobs.Count(r.Context(), query.ParseJobFilter(r.URL.Query()))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, CountResponse{Count: n})
}
