package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/dvloznov/budget-report/internal/api/middleware"
	"github.com/dvloznov/budget-report/internal/categorize"
	"github.com/dvloznov/budget-report/internal/config"
)

// MetaHandler serves the page setup clients apply once at startup.
type MetaHandler struct {
	presentation config.PresentationConfig
}

// NewMetaHandler creates a new meta handler.
func NewMetaHandler(p config.PresentationConfig) *MetaHandler {
	return &MetaHandler{presentation: p}
}

// GetMeta handles GET /api/meta
func (h *MetaHandler) GetMeta(w http.ResponseWriter, r *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, map[string]string{
		"title":           h.presentation.Title,
		"icon":            h.presentation.Icon,
		"layout":          h.presentation.Layout,
		"heading":         h.presentation.Heading,
		"currency_symbol": h.presentation.CurrencySymbol,
	})
}

// RulesHandler exposes the categorization rules.
type RulesHandler struct {
	categorizer *categorize.Categorizer
	log         zerolog.Logger
}

// NewRulesHandler creates a new rules handler.
func NewRulesHandler(c *categorize.Categorizer, log zerolog.Logger) *RulesHandler {
	return &RulesHandler{
		categorizer: c,
		log:         log,
	}
}

// ListRules handles GET /api/rules
func (h *RulesHandler) ListRules(w http.ResponseWriter, r *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"rules":    h.categorizer.Rules(),
		"fallback": h.categorizer.Fallback(),
		"labels":   h.categorizer.Labels(),
	})
}

// Categorize handles POST /api/categorize
func (h *RulesHandler) Categorize(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Description *string `json:"description"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Description == nil {
		middleware.WriteError(w, http.StatusBadRequest, "description is required")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]string{
		"description": *req.Description,
		"category":    h.categorizer.Categorize(*req.Description),
	})
}
