package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/rivalscope/rivalscope/internal/domain"
)

// ChangeRepository implements domain.ChangeRepository with PostgreSQL
type ChangeRepository struct {
	db *DB
}

// NewChangeRepository creates a new change repository
func NewChangeRepository(db *DB) *ChangeRepository {
	return &ChangeRepository{db: db}
}

type changeRow struct {
	ID               uuid.UUID `db:"id"`
	PageID           uuid.UUID `db:"page_id"`
	BeforeSnapshotID uuid.UUID `db:"before_snapshot_id"`
	AfterSnapshotID  uuid.UUID `db:"after_snapshot_id"`
	ChangeType       string    `db:"change_type"`
	Category         string    `db:"category"`
	Impact           string    `db:"impact"`
	Summary          string    `db:"summary"`
	Interpretation   string    `db:"interpretation"`
	MonitoringAction string    `db:"monitoring_action"`
	Details          []byte    `db:"details"`
	CreatedAt        time.Time `db:"created_at"`
}

func (r *changeRow) toDomain() (*domain.Change, error) {
	details, err := domain.DecodeDetails(domain.ChangeType(r.ChangeType), r.Details)
	if err != nil {
		return nil, err
	}
	return &domain.Change{
		ID:               r.ID,
		PageID:           r.PageID,
		BeforeSnapshotID: r.BeforeSnapshotID,
		AfterSnapshotID:  r.AfterSnapshotID,
		Type:             domain.ChangeType(r.ChangeType),
		Category:         domain.Category(r.Category),
		Impact:           domain.Impact(r.Impact),
		Summary:          r.Summary,
		Interpretation:   r.Interpretation,
		MonitoringAction: r.MonitoringAction,
		Details:          details,
		CreatedAt:        r.CreatedAt,
	}, nil
}

// InsertBatch inserts all changes in one transaction. All or nothing; a
// partial change set would misreport a page's diff.
func (r *ChangeRepository) InsertBatch(ctx context.Context, changes []*domain.Change) error {
	if len(changes) == 0 {
		return nil
	}

	return r.db.Transaction(ctx, func(tx *sqlx.Tx) error {
		query := `
			INSERT INTO changes (
				id, page_id, before_snapshot_id, after_snapshot_id, change_type,
				category, impact, summary, interpretation, monitoring_action,
				details, created_at
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		`
		for _, c := range changes {
			details, err := domain.EncodeDetails(c.Details)
			if err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx, query,
				c.ID, c.PageID, c.BeforeSnapshotID, c.AfterSnapshotID,
				string(c.Type), string(c.Category), string(c.Impact),
				c.Summary, c.Interpretation, c.MonitoringAction,
				details, c.CreatedAt,
			); err != nil {
				return err
			}
		}
		return nil
	})
}

// SinceByCompetitor returns all changes across a competitor's pages created
// at or after the cutoff, newest first.
func (r *ChangeRepository) SinceByCompetitor(ctx context.Context, competitorID uuid.UUID, since time.Time) ([]*domain.Change, error) {
	var rows []changeRow
	query := `
		SELECT c.id, c.page_id, c.before_snapshot_id, c.after_snapshot_id,
			c.change_type, c.category, c.impact, c.summary, c.interpretation,
			c.monitoring_action, c.details, c.created_at
		FROM changes c
		JOIN pages p ON p.id = c.page_id
		WHERE p.competitor_id = $1 AND c.created_at >= $2
		ORDER BY c.created_at DESC
	`
	if err := r.db.SelectContext(ctx, &rows, query, competitorID, since); err != nil {
		return nil, err
	}

	changes := make([]*domain.Change, 0, len(rows))
	for i := range rows {
		c, err := rows[i].toDomain()
		if err != nil {
			return nil, err
		}
		changes = append(changes, c)
	}
	return changes, nil
}
