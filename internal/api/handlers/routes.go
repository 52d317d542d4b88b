package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/dvloznov/budget-report/internal/api/middleware"
)

// Router groups the handlers served by the API.
type Router struct {
	Meta    *MetaHandler
	Rules   *RulesHandler
	Reports *ReportsHandler
	Jobs    *JobsHandler
}

// Mux registers every route on a new ServeMux.
func (rt Router) Mux() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/meta", method(http.MethodGet, rt.Meta.GetMeta))
	mux.HandleFunc("/api/rules", method(http.MethodGet, rt.Rules.ListRules))
	mux.HandleFunc("/api/categorize", method(http.MethodPost, rt.Rules.Categorize))

	// Reports endpoints
	mux.HandleFunc("/api/reports", method(http.MethodPost, rt.Reports.CreateReport))
	mux.HandleFunc("/api/reports/latest", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			rt.Reports.LatestReport(w, r)
		case http.MethodDelete:
			rt.Reports.ForgetLatest(w, r)
		default:
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	// Jobs endpoints
	mux.HandleFunc("/api/jobs", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			rt.Jobs.ListJobs(w, r)
		case http.MethodPost:
			rt.Jobs.CreateJob(w, r)
		default:
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/jobs/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			// Extract job ID from path
			jobID := strings.TrimPrefix(r.URL.Path, "/api/jobs/")
			if jobID == "" {
				middleware.WriteError(w, http.StatusBadRequest, "Job ID is required")
				return
			}
			rt.Jobs.GetJob(w, r, jobID)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	// Health check endpoint
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	return mux
}

func method(m string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != m {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		h(w, r)
	}
}
