package intel

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rivalscope/rivalscope/internal/domain"
)

// Report is the full intelligence output for one competitor
type Report struct {
	CompetitorID string           `json:"competitor_id"`
	Traits       []Trait          `json:"traits"`
	ScoreCard    ScoreCard        `json:"score_card"`
	Ranking      Ranking          `json:"ranking"`
	Narrative    []NarrativeLine  `json:"narrative"`
	Confidence   ConfidenceResult `json:"confidence"`
	GeneratedAt  time.Time        `json:"generated_at"`
}

// Analyze runs the pure pipeline over raw signals. Everything downstream of
// RawSignals is deterministic; GeneratedAt is the only field that varies
// between identical runs.
func Analyze(raw RawSignals) Report {
	traits := DeriveTraits(raw)
	card := Score(traits)
	ranking := Rank(card, traits)
	return Report{
		CompetitorID: raw.CompetitorID,
		Traits:       traits,
		ScoreCard:    card,
		Ranking:      ranking,
		Narrative:    Compose(raw.CompetitorID, ranking),
		Confidence:   Grade(traits, card),
		GeneratedAt:  time.Now().UTC(),
	}
}

// Service builds, analyzes and persists reports
type Service struct {
	builder  *Builder
	insights domain.InsightRepository
	logger   *zap.Logger
}

// NewService creates the intel service
func NewService(builder *Builder, insights domain.InsightRepository, logger *zap.Logger) *Service {
	return &Service{builder: builder, insights: insights, logger: logger}
}

// GenerateReport builds raw signals, runs the analysis and stores the
// result as the latest report insight.
func (s *Service) GenerateReport(ctx context.Context, competitorID uuid.UUID) (*Report, error) {
	raw, err := s.builder.Build(ctx, competitorID)
	if err != nil {
		return nil, err
	}

	report := Analyze(raw)

	insight, err := domain.NewInsight(competitorID, domain.InsightKindReport, report)
	if err != nil {
		return nil, err
	}
	if err := s.insights.Insert(ctx, insight); err != nil {
		return nil, err
	}

	s.logger.Info("intelligence report generated",
		zap.String("competitor_id", competitorID.String()),
		zap.String("confidence", string(report.Confidence.Level)),
		zap.Int("traits_resolved", resolvedCount(report.Traits)),
	)
	return &report, nil
}

func resolvedCount(traits []Trait) int {
	n := 0
	for _, t := range traits {
		if t.Value != ValueUnknown {
			n++
		}
	}
	return n
}
