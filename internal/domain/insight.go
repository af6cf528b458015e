package domain

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// InsightKind distinguishes the deterministic analyzers' outputs
type InsightKind string

const (
	InsightKindReport    InsightKind = "report"
	InsightKindBaseline  InsightKind = "baseline_profile"
	InsightKindStrategic InsightKind = "strategic_dimensions"
)

// Insight is one persisted analyzer output for a competitor. The payload is
// the analyzer's full JSON document; readers decode it by kind.
type Insight struct {
	ID           uuid.UUID       `json:"id" db:"id"`
	CompetitorID uuid.UUID       `json:"competitor_id" db:"competitor_id"`
	Kind         InsightKind     `json:"kind" db:"kind"`
	Payload      json.RawMessage `json:"payload" db:"payload"`
	GeneratedAt  time.Time       `json:"generated_at" db:"generated_at"`
}

// NewInsight wraps an analyzer output for persistence
func NewInsight(competitorID uuid.UUID, kind InsightKind, payload any) (*Insight, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Insight{
		ID:           uuid.New(),
		CompetitorID: competitorID,
		Kind:         kind,
		Payload:      raw,
		GeneratedAt:  time.Now().UTC(),
	}, nil
}

// InsightRepository defines data access for insights
type InsightRepository interface {
	Insert(ctx context.Context, insight *Insight) error
	LatestByKind(ctx context.Context, competitorID uuid.UUID, kind InsightKind, n int) ([]*Insight, error)
}

// SEOSnapshot is one persisted run of the SEO intelligence engine
type SEOSnapshot struct {
	ID           uuid.UUID       `json:"id" db:"id"`
	CompetitorID uuid.UUID       `json:"competitor_id" db:"competitor_id"`
	Payload      json.RawMessage `json:"payload" db:"payload"`
	GeneratedAt  time.Time       `json:"generated_at" db:"generated_at"`
}

// NewSEOSnapshot wraps an SEO analysis for persistence
func NewSEOSnapshot(competitorID uuid.UUID, payload any) (*SEOSnapshot, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &SEOSnapshot{
		ID:           uuid.New(),
		CompetitorID: competitorID,
		Payload:      raw,
		GeneratedAt:  time.Now().UTC(),
	}, nil
}

// SEOSnapshotRepository defines data access for SEO snapshots
type SEOSnapshotRepository interface {
	Insert(ctx context.Context, snap *SEOSnapshot) error
	Latest(ctx context.Context, competitorID uuid.UUID, n int) ([]*SEOSnapshot, error)
}
