package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rivalscope/rivalscope/internal/domain"
	"github.com/rivalscope/rivalscope/internal/services/crawler"
	"github.com/rivalscope/rivalscope/pkg/httputil"
)

// CrawlHandler handles crawl job requests
type CrawlHandler struct {
	trigger *crawler.Trigger
	jobs    domain.CrawlJobRepository
	logger  *zap.Logger
}

// NewCrawlHandler creates a new crawl handler
func NewCrawlHandler(trigger *crawler.Trigger, jobs domain.CrawlJobRepository, logger *zap.Logger) *CrawlHandler {
	return &CrawlHandler{trigger: trigger, jobs: jobs, logger: logger}
}

// JobResponse is the API representation of a crawl job
type JobResponse struct {
	ID           string   `json:"id"`
	CompetitorID string   `json:"competitor_id"`
	Status       string   `json:"status"`
	PagesCrawled int      `json:"pages_crawled"`
	ChangesFound int      `json:"changes_found"`
	Errors       []string `json:"errors,omitempty"`
	StartedAt    *string  `json:"started_at,omitempty"`
	CompletedAt  *string  `json:"completed_at,omitempty"`
	CreatedAt    string   `json:"created_at"`
}

func toJobResponse(j *domain.CrawlJob) JobResponse {
	resp := JobResponse{
		ID:           j.ID.String(),
		CompetitorID: j.CompetitorID.String(),
		Status:       string(j.Status),
		PagesCrawled: j.PagesCrawled,
		ChangesFound: j.ChangesFound,
		Errors:       j.Errors,
		CreatedAt:    j.CreatedAt.Format(time.RFC3339),
	}
	if j.StartedAt != nil {
		s := j.StartedAt.Format(time.RFC3339)
		resp.StartedAt = &s
	}
	if j.CompletedAt != nil {
		s := j.CompletedAt.Format(time.RFC3339)
		resp.CompletedAt = &s
	}
	return resp
}

// Enqueue handles POST /api/v1/competitors/{id}/crawl
func (h *CrawlHandler) Enqueue(w http.ResponseWriter, r *http.Request) {
	competitorID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.ErrorFromDomain(w, domain.ValidationError("id", "invalid competitor id"))
		return
	}

	jobID, err := h.trigger.Enqueue(r.Context(), competitorID)
	if err != nil {
		httputil.ErrorFromDomain(w, err)
		return
	}

	httputil.JSON(w, http.StatusAccepted, map[string]string{"job_id": jobID.String()})
}

// Get handles GET /api/v1/jobs/{id}
func (h *CrawlHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.ErrorFromDomain(w, domain.ValidationError("id", "invalid job id"))
		return
	}

	job, err := h.jobs.GetByID(r.Context(), id)
	if err != nil {
		httputil.ErrorFromDomain(w, err)
		return
	}
	httputil.JSON(w, http.StatusOK, toJobResponse(job))
}
