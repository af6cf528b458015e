// Package handlers holds the HTTP handlers for the trigger/ops API.
package handlers

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rivalscope/rivalscope/internal/domain"
	"github.com/rivalscope/rivalscope/pkg/httputil"
)

// CompetitorHandler handles competitor-related requests
type CompetitorHandler struct {
	competitors domain.CompetitorRepository
	changes     domain.ChangeRepository
	logger      *zap.Logger
}

// NewCompetitorHandler creates a new competitor handler
func NewCompetitorHandler(competitors domain.CompetitorRepository, changes domain.ChangeRepository, logger *zap.Logger) *CompetitorHandler {
	return &CompetitorHandler{competitors: competitors, changes: changes, logger: logger}
}

// CreateCompetitorRequest is the payload for registering a competitor
type CreateCompetitorRequest struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// CompetitorResponse is the API representation of a competitor
type CompetitorResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	URL       string `json:"url"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

func toCompetitorResponse(c *domain.Competitor) CompetitorResponse {
	return CompetitorResponse{
		ID:        c.ID.String(),
		Name:      c.Name,
		URL:       c.URL,
		CreatedAt: c.CreatedAt.Format(time.RFC3339),
		UpdatedAt: c.UpdatedAt.Format(time.RFC3339),
	}
}

// Create handles POST /api/v1/competitors
func (h *CompetitorHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateCompetitorRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.JSONError(w, http.StatusBadRequest, domain.ErrCodeValidation, "invalid request body", nil)
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	req.URL = strings.TrimSpace(req.URL)
	if req.Name == "" {
		httputil.ErrorFromDomain(w, domain.ValidationError("name", "name is required"))
		return
	}
	if u, err := url.Parse(req.URL); err != nil || u.Scheme == "" || u.Host == "" {
		httputil.ErrorFromDomain(w, domain.ValidationError("url", "url must be absolute"))
		return
	}

	competitor := domain.NewCompetitor(req.Name, req.URL)
	if err := h.competitors.Create(r.Context(), competitor); err != nil {
		h.logger.Error("Failed to create competitor", zap.Error(err))
		httputil.ErrorFromDomain(w, err)
		return
	}

	httputil.JSON(w, http.StatusCreated, toCompetitorResponse(competitor))
}

// List handles GET /api/v1/competitors
func (h *CompetitorHandler) List(w http.ResponseWriter, r *http.Request) {
	competitors, err := h.competitors.List(r.Context())
	if err != nil {
		h.logger.Error("Failed to list competitors", zap.Error(err))
		httputil.ErrorFromDomain(w, err)
		return
	}

	response := make([]CompetitorResponse, len(competitors))
	for i, c := range competitors {
		response[i] = toCompetitorResponse(c)
	}
	httputil.JSON(w, http.StatusOK, response)
}

// Get handles GET /api/v1/competitors/{id}
func (h *CompetitorHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.ErrorFromDomain(w, domain.ValidationError("id", "invalid competitor id"))
		return
	}

	competitor, err := h.competitors.GetByID(r.Context(), id)
	if err != nil {
		httputil.ErrorFromDomain(w, err)
		return
	}
	httputil.JSON(w, http.StatusOK, toCompetitorResponse(competitor))
}

// ListChanges handles GET /api/v1/competitors/{id}/changes
func (h *CompetitorHandler) ListChanges(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.ErrorFromDomain(w, domain.ValidationError("id", "invalid competitor id"))
		return
	}

	since := time.Now().UTC().AddDate(0, 0, -30)
	if raw := r.URL.Query().Get("since"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			httputil.ErrorFromDomain(w, domain.ValidationError("since", "since must be RFC3339"))
			return
		}
		since = parsed
	}

	changes, err := h.changes.SinceByCompetitor(r.Context(), id, since)
	if err != nil {
		h.logger.Error("Failed to list changes", zap.Error(err))
		httputil.ErrorFromDomain(w, err)
		return
	}
	httputil.JSON(w, http.StatusOK, changes)
}
