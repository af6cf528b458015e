package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rivalscope/rivalscope/internal/domain"
	"github.com/rivalscope/rivalscope/internal/observability"
	"github.com/rivalscope/rivalscope/internal/services/intel"
	"github.com/rivalscope/rivalscope/internal/services/profile"
	"github.com/rivalscope/rivalscope/internal/services/seo"
	"github.com/rivalscope/rivalscope/pkg/httputil"
)

// InsightHandler triggers the deterministic analyzers and serves their
// stored outputs.
type InsightHandler struct {
	intel        *intel.Service
	profiles     *profile.Service
	seo          *seo.Service
	insights     domain.InsightRepository
	seoSnapshots domain.SEOSnapshotRepository
	metrics      *observability.Metrics
	logger       *zap.Logger
}

// NewInsightHandler creates a new insight handler
func NewInsightHandler(
	intelSvc *intel.Service,
	profiles *profile.Service,
	seoSvc *seo.Service,
	insights domain.InsightRepository,
	seoSnapshots domain.SEOSnapshotRepository,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *InsightHandler {
	return &InsightHandler{
		intel:        intelSvc,
		profiles:     profiles,
		seo:          seoSvc,
		insights:     insights,
		seoSnapshots: seoSnapshots,
		metrics:      metrics,
		logger:       logger,
	}
}

// GenerateReport handles POST /api/v1/competitors/{id}/report
func (h *InsightHandler) GenerateReport(w http.ResponseWriter, r *http.Request) {
	competitorID, ok := h.competitorID(w, r)
	if !ok {
		return
	}
	report, err := h.intel.GenerateReport(r.Context(), competitorID)
	if err != nil {
		h.logger.Error("Failed to generate report", zap.Error(err))
		httputil.ErrorFromDomain(w, err)
		return
	}
	h.metrics.ReportsGeneratedTotal.WithLabelValues(string(domain.InsightKindReport)).Inc()
	httputil.JSON(w, http.StatusOK, report)
}

// GenerateBaseline handles POST /api/v1/competitors/{id}/baseline
func (h *InsightHandler) GenerateBaseline(w http.ResponseWriter, r *http.Request) {
	competitorID, ok := h.competitorID(w, r)
	if !ok {
		return
	}
	baseline, err := h.profiles.GenerateBaseline(r.Context(), competitorID)
	if err != nil {
		h.logger.Error("Failed to generate baseline", zap.Error(err))
		httputil.ErrorFromDomain(w, err)
		return
	}
	h.metrics.ReportsGeneratedTotal.WithLabelValues(string(domain.InsightKindBaseline)).Inc()
	httputil.JSON(w, http.StatusOK, baseline)
}

// GenerateStrategic handles POST /api/v1/competitors/{id}/strategic
func (h *InsightHandler) GenerateStrategic(w http.ResponseWriter, r *http.Request) {
	competitorID, ok := h.competitorID(w, r)
	if !ok {
		return
	}
	strategic, err := h.profiles.GenerateStrategic(r.Context(), competitorID)
	if err != nil {
		h.logger.Error("Failed to generate strategic dimensions", zap.Error(err))
		httputil.ErrorFromDomain(w, err)
		return
	}
	h.metrics.ReportsGeneratedTotal.WithLabelValues(string(domain.InsightKindStrategic)).Inc()
	httputil.JSON(w, http.StatusOK, strategic)
}

// GenerateSEO handles POST /api/v1/competitors/{id}/seo
func (h *InsightHandler) GenerateSEO(w http.ResponseWriter, r *http.Request) {
	competitorID, ok := h.competitorID(w, r)
	if !ok {
		return
	}
	analysis, err := h.seo.Generate(r.Context(), competitorID)
	if err != nil {
		h.logger.Error("Failed to generate seo analysis", zap.Error(err))
		httputil.ErrorFromDomain(w, err)
		return
	}
	h.metrics.ReportsGeneratedTotal.WithLabelValues("seo").Inc()
	httputil.JSON(w, http.StatusOK, analysis)
}

// SEOGap handles GET /api/v1/competitors/{id}/seo/gap/{peerID}
func (h *InsightHandler) SEOGap(w http.ResponseWriter, r *http.Request) {
	competitorID, ok := h.competitorID(w, r)
	if !ok {
		return
	}
	peerID, err := uuid.Parse(chi.URLParam(r, "peerID"))
	if err != nil {
		httputil.ErrorFromDomain(w, domain.ValidationError("peerID", "invalid peer competitor id"))
		return
	}

	gap, err := h.seo.CompareGapFor(r.Context(), competitorID, peerID)
	if err != nil {
		h.logger.Error("Failed to compare seo gap", zap.Error(err))
		httputil.ErrorFromDomain(w, err)
		return
	}
	httputil.JSON(w, http.StatusOK, gap)
}

// LatestInsight handles GET /api/v1/competitors/{id}/insights/{kind}
func (h *InsightHandler) LatestInsight(w http.ResponseWriter, r *http.Request) {
	competitorID, ok := h.competitorID(w, r)
	if !ok {
		return
	}

	kind := domain.InsightKind(chi.URLParam(r, "kind"))
	switch kind {
	case domain.InsightKindReport, domain.InsightKindBaseline, domain.InsightKindStrategic:
	default:
		httputil.ErrorFromDomain(w, domain.ValidationError("kind", "unknown insight kind"))
		return
	}

	insights, err := h.insights.LatestByKind(r.Context(), competitorID, kind, 1)
	if err != nil {
		httputil.ErrorFromDomain(w, err)
		return
	}
	if len(insights) == 0 {
		httputil.ErrorFromDomain(w, domain.NotFoundError("insight", kind))
		return
	}
	httputil.JSON(w, http.StatusOK, insights[0])
}

func (h *InsightHandler) competitorID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.ErrorFromDomain(w, domain.ValidationError("id", "invalid competitor id"))
		return uuid.Nil, false
	}
	return id, true
}
