package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/rivalscope/rivalscope/internal/domain"
)

// PageRepository implements domain.PageRepository with PostgreSQL
type PageRepository struct {
	db *DB
}

// NewPageRepository creates a new page repository
func NewPageRepository(db *DB) *PageRepository {
	return &PageRepository{db: db}
}

type pageRow struct {
	ID           uuid.UUID `db:"id"`
	CompetitorID uuid.UUID `db:"competitor_id"`
	URL          string    `db:"url"`
	PageType     string    `db:"page_type"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

func (r *pageRow) toDomain() *domain.Page {
	return &domain.Page{
		ID:           r.ID,
		CompetitorID: r.CompetitorID,
		URL:          r.URL,
		PageType:     domain.PageType(r.PageType),
		Timestamps: domain.Timestamps{
			CreatedAt: r.CreatedAt,
			UpdatedAt: r.UpdatedAt,
		},
	}
}

// UpsertByURL creates the page on first discovery, or refreshes its page
// type when already tracked. The returned page carries the persisted ID,
// which differs from the input's on the update path.
func (r *PageRepository) UpsertByURL(ctx context.Context, page *domain.Page) (*domain.Page, error) {
	query := `
		INSERT INTO pages (id, competitor_id, url, page_type, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (competitor_id, url)
		DO UPDATE SET page_type = EXCLUDED.page_type, updated_at = EXCLUDED.updated_at
		RETURNING id, competitor_id, url, page_type, created_at, updated_at
	`
	var row pageRow
	err := r.db.GetContext(ctx, &row, query,
		page.ID, page.CompetitorID, page.URL, string(page.PageType),
		page.CreatedAt, page.UpdatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, domain.NotFoundError("competitor", page.CompetitorID)
		}
		return nil, err
	}
	return row.toDomain(), nil
}

// GetByID retrieves a page by ID
func (r *PageRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Page, error) {
	var row pageRow
	query := `SELECT id, competitor_id, url, page_type, created_at, updated_at FROM pages WHERE id = $1`
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFoundError("page", id)
		}
		return nil, err
	}
	return row.toDomain(), nil
}

// ListByCompetitor returns all tracked pages for a competitor
func (r *PageRepository) ListByCompetitor(ctx context.Context, competitorID uuid.UUID) ([]*domain.Page, error) {
	var rows []pageRow
	query := `
		SELECT id, competitor_id, url, page_type, created_at, updated_at
		FROM pages
		WHERE competitor_id = $1
		ORDER BY created_at
	`
	if err := r.db.SelectContext(ctx, &rows, query, competitorID); err != nil {
		return nil, err
	}

	pages := make([]*domain.Page, 0, len(rows))
	for i := range rows {
		pages = append(pages, rows[i].toDomain())
	}
	return pages, nil
}
