package handlers

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/dvloznov/budget-report/internal/api/middleware"
	"github.com/dvloznov/budget-report/internal/categorize"
	"github.com/dvloznov/budget-report/internal/ledger"
	"github.com/dvloznov/budget-report/internal/logger"
	"github.com/dvloznov/budget-report/internal/pipeline"
	"github.com/dvloznov/budget-report/internal/session"
)

// SessionCookie names the cookie that carries the session id.
const SessionCookie = "budget_session"

// ReportsHandler builds reports from uploaded ledgers and remembers the
// latest one per session.
type ReportsHandler struct {
	categorizer *categorize.Categorizer
	sessions    *session.Store
	maxUpload   int64
	log         zerolog.Logger
}

// NewReportsHandler creates a new reports handler.
func NewReportsHandler(c *categorize.Categorizer, sessions *session.Store, maxUpload int64, log zerolog.Logger) *ReportsHandler {
	return &ReportsHandler{
		categorizer: c,
		sessions:    sessions,
		maxUpload:   maxUpload,
		log:         log,
	}
}

// CreateReport handles POST /api/reports
// The ledger is either a multipart "file" field or the raw CSV body.
func (h *ReportsHandler) CreateReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	src, err := h.readUpload(r)
	if err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr), errors.Is(err, ledger.ErrTooLarge):
			middleware.WriteError(w, http.StatusRequestEntityTooLarge, "Ledger file is too large")
		default:
			middleware.WriteError(w, http.StatusBadRequest, err.Error())
		}
		return
	}

	log := logger.FromContext(ctx)

	bundle, err := pipeline.BuildReport(ctx, h.categorizer, src)
	if err != nil {
		if ledger.IsDataError(err) {
			middleware.WriteError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		log.Error().Err(err).Str("source", src.String()).Msg("Failed to build report")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to build report")
		return
	}

	sessionID := h.sessionID(w, r)
	h.sessions.Put(sessionID, bundle)

	log.Info().
		Str("source", src.String()).
		Int("records", len(bundle.Transactions)).
		Msg("Report built")

	middleware.WriteJSON(w, http.StatusOK, bundle.View())
}

// LatestReport handles GET /api/reports/latest
func (h *ReportsHandler) LatestReport(w http.ResponseWriter, r *http.Request) {
	c, err := r.Cookie(SessionCookie)
	if err != nil {
		middleware.WriteError(w, http.StatusNotFound, "No report for this session")
		return
	}

	bundle, ok := h.sessions.Latest(c.Value)
	if !ok {
		middleware.WriteError(w, http.StatusNotFound, "No report for this session")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, bundle.View())
}

// ForgetLatest handles DELETE /api/reports/latest
func (h *ReportsHandler) ForgetLatest(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(SessionCookie); err == nil {
		h.sessions.Forget(c.Value)
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ReportsHandler) readUpload(r *http.Request) (ledger.BytesSource, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		return ledger.ReadAll("upload.csv", r.Body, h.maxUpload)
	}

	mr, err := r.MultipartReader()
	if err != nil {
		return ledger.BytesSource{}, err
	}
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			return ledger.BytesSource{}, errors.New("file is required")
		}
		if err != nil {
			return ledger.BytesSource{}, err
		}
		if part.FormName() != "file" {
			part.Close()
			continue
		}
		name := filepath.Base(part.FileName())
		if name == "." || name == "/" || name == "" {
			name = "upload.csv"
		}
		defer part.Close()
		return ledger.ReadAll(name, part, h.maxUpload)
	}
}

// sessionID returns the caller's session id, issuing a new cookie when the
// request has none or an invalid one.
func (h *ReportsHandler) sessionID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(SessionCookie); err == nil {
		if _, err := uuid.Parse(c.Value); err == nil {
			return c.Value
		}
	}

	id := uuid.New().String()
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}
