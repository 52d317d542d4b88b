package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/dvloznov/budget-report/internal/api/middleware"
	"github.com/dvloznov/budget-report/internal/jobs"
	"github.com/dvloznov/budget-report/internal/pipeline"
)

// JobsHandler handles job-related endpoints.
type JobsHandler struct {
	store     jobs.JobStore
	publisher jobs.Publisher
	opener    pipeline.Opener
	log       zerolog.Logger
}

// NewJobsHandler creates a new jobs handler. opener is used to reject
// unsupported sources before they are queued.
func NewJobsHandler(store jobs.JobStore, publisher jobs.Publisher, opener pipeline.Opener, log zerolog.Logger) *JobsHandler {
	return &JobsHandler{
		store:     store,
		publisher: publisher,
		opener:    opener,
		log:       log,
	}
}

// CreateJob handles POST /api/jobs
func (h *JobsHandler) CreateJob(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Source string `json:"source"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Source == "" {
		middleware.WriteError(w, http.StatusBadRequest, "source is required")
		return
	}

	ctx := r.Context()

	if _, err := h.opener.Open(ctx, req.Source); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	job := &jobs.ReportJob{Source: req.Source}
	if err := h.publisher.PublishReport(ctx, job); err != nil {
		h.log.Error().Err(err).Str("source", req.Source).Msg("Failed to enqueue report job")
		middleware.WriteError(w, http.StatusServiceUnavailable, "Failed to enqueue report job")
		return
	}

	h.log.Info().Str("job_id", job.JobID).Str("source", req.Source).Msg("Report job enqueued")

	middleware.WriteJSON(w, http.StatusAccepted, map[string]string{
		"job_id": job.JobID,
		"source": job.Source,
		"status": string(job.Status),
	})
}

// GetJob handles GET /api/jobs/{id}
// The report is included once the job has completed.
func (h *JobsHandler) GetJob(w http.ResponseWriter, r *http.Request, jobID string) {
	ctx := r.Context()

	job, err := h.store.GetJob(ctx, jobID)
	if err != nil {
		if errors.Is(err, jobs.ErrJobNotFound) {
			middleware.WriteError(w, http.StatusNotFound, "Job not found")
			return
		}
		h.log.Error().Err(err).Str("job_id", jobID).Msg("Failed to get job")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to get job")
		return
	}

	resp := map[string]interface{}{"job": job}
	if job.Status == jobs.JobStatusCompleted {
		bundle, err := h.store.GetResult(ctx, jobID)
		if err != nil {
			h.log.Error().Err(err).Str("job_id", jobID).Msg("Completed job has no result")
			middleware.WriteError(w, http.StatusInternalServerError, "Failed to load job result")
			return
		}
		resp["report"] = bundle.View()
	}

	middleware.WriteJSON(w, http.StatusOK, resp)
}

// ListJobs handles GET /api/jobs
func (h *JobsHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	// Parse query parameters
	query := r.URL.Query()
	filter := jobs.JobFilter{
		Source: query.Get("source"),
		Status: jobs.JobStatus(query.Get("status")),
	}

	if limitStr := query.Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil {
			filter.Limit = limit
		}
	}

	if offsetStr := query.Get("offset"); offsetStr != "" {
		if offset, err := strconv.Atoi(offsetStr); err == nil {
			filter.Offset = offset
		}
	}

	jobsList, err := h.store.ListJobs(ctx, filter)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list jobs")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list jobs")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"jobs":  jobsList,
		"count": len(jobsList),
	})
}
