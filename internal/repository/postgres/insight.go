package postgres

import (
	"context"

	"github.com/google/uuid"

	"github.com/rivalscope/rivalscope/internal/domain"
)

// InsightRepository implements domain.InsightRepository with PostgreSQL
type InsightRepository struct {
	db *DB
}

// NewInsightRepository creates a new insight repository
func NewInsightRepository(db *DB) *InsightRepository {
	return &InsightRepository{db: db}
}

// Insert stores an analyzer output
func (r *InsightRepository) Insert(ctx context.Context, insight *domain.Insight) error {
	query := `
		INSERT INTO insights (id, competitor_id, kind, payload, generated_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.ExecContext(ctx, query,
		insight.ID, insight.CompetitorID, string(insight.Kind),
		[]byte(insight.Payload), insight.GeneratedAt,
	)
	if isForeignKeyViolation(err) {
		return domain.NotFoundError("competitor", insight.CompetitorID)
	}
	return err
}

// LatestByKind returns up to n most recent insights of a kind, newest first
func (r *InsightRepository) LatestByKind(ctx context.Context, competitorID uuid.UUID, kind domain.InsightKind, n int) ([]*domain.Insight, error) {
	var insights []*domain.Insight
	query := `
		SELECT id, competitor_id, kind, payload, generated_at
		FROM insights
		WHERE competitor_id = $1 AND kind = $2
		ORDER BY generated_at DESC
		LIMIT $3
	`
	if err := r.db.SelectContext(ctx, &insights, query, competitorID, string(kind), n); err != nil {
		return nil, err
	}
	return insights, nil
}

// SEOSnapshotRepository implements domain.SEOSnapshotRepository with PostgreSQL
type SEOSnapshotRepository struct {
	db *DB
}

// NewSEOSnapshotRepository creates a new SEO snapshot repository
func NewSEOSnapshotRepository(db *DB) *SEOSnapshotRepository {
	return &SEOSnapshotRepository{db: db}
}

// Insert stores an SEO analysis run
func (r *SEOSnapshotRepository) Insert(ctx context.Context, snap *domain.SEOSnapshot) error {
	query := `
		INSERT INTO seo_snapshots (id, competitor_id, payload, generated_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err := r.db.ExecContext(ctx, query,
		snap.ID, snap.CompetitorID, []byte(snap.Payload), snap.GeneratedAt,
	)
	if isForeignKeyViolation(err) {
		return domain.NotFoundError("competitor", snap.CompetitorID)
	}
	return err
}

// Latest returns up to n most recent SEO snapshots, newest first
func (r *SEOSnapshotRepository) Latest(ctx context.Context, competitorID uuid.UUID, n int) ([]*domain.SEOSnapshot, error) {
	var snaps []*domain.SEOSnapshot
	query := `
		SELECT id, competitor_id, payload, generated_at
		FROM seo_snapshots
		WHERE competitor_id = $1
		ORDER BY generated_at DESC
		LIMIT $2
	`
	if err := r.db.SelectContext(ctx, &snaps, query, competitorID, n); err != nil {
		return nil, err
	}
	return snaps, nil
}
