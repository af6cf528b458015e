package postgres

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/rivalscope/rivalscope/internal/domain"
)

// SnapshotRepository implements domain.SnapshotRepository with PostgreSQL
type SnapshotRepository struct {
	db *DB
}

// NewSnapshotRepository creates a new snapshot repository
func NewSnapshotRepository(db *DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

type snapshotRow struct {
	ID            uuid.UUID `db:"id"`
	PageID        uuid.UUID `db:"page_id"`
	CrawlJobID    uuid.UUID `db:"crawl_job_id"`
	Version       int       `db:"version"`
	HTML          string    `db:"html"`
	HTMLHash      string    `db:"html_hash"`
	Title         string    `db:"title"`
	HTTPStatus    int       `db:"http_status"`
	ScreenshotURL *string   `db:"screenshot_url"`
	Signals       []byte    `db:"signals"`
	CapturedAt    time.Time `db:"captured_at"`
}

func (r *snapshotRow) toDomain() (*domain.Snapshot, error) {
	s := &domain.Snapshot{
		ID:         r.ID,
		PageID:     r.PageID,
		CrawlJobID: r.CrawlJobID,
		Version:    r.Version,
		HTML:       r.HTML,
		HTMLHash:   r.HTMLHash,
		Title:      r.Title,
		HTTPStatus: r.HTTPStatus,
		CapturedAt: r.CapturedAt,
	}
	if r.ScreenshotURL != nil {
		s.ScreenshotURL = *r.ScreenshotURL
	}
	if r.Signals != nil {
		if err := json.Unmarshal(r.Signals, &s.Signals); err != nil {
			return nil, err
		}
	}
	return s, nil
}

const snapshotColumns = `id, page_id, crawl_job_id, version, html, html_hash, title, http_status, screenshot_url, signals, captured_at`

// InsertWithNextVersion allocates version = max(version)+1 for the page and
// inserts the snapshot. The page row is locked FOR UPDATE first, so
// concurrent writers for the same page serialize and versions stay gapless.
// On schema drift (missing column) a reduced-column insert is attempted
// before surfacing a hard error.
func (r *SnapshotRepository) InsertWithNextVersion(ctx context.Context, s *domain.Snapshot) error {
	signals, err := json.Marshal(s.Signals)
	if err != nil {
		return err
	}

	var screenshotURL *string
	if s.ScreenshotURL != "" {
		screenshotURL = &s.ScreenshotURL
	}

	return r.db.Transaction(ctx, func(tx *sqlx.Tx) error {
		var lockedPage uuid.UUID
		if err := tx.GetContext(ctx, &lockedPage,
			`SELECT id FROM pages WHERE id = $1 FOR UPDATE`, s.PageID); err != nil {
			return domain.NotFoundError("page", s.PageID)
		}

		var next int
		if err := tx.GetContext(ctx, &next,
			`SELECT COALESCE(MAX(version), 0) + 1 FROM snapshots WHERE page_id = $1`, s.PageID); err != nil {
			return err
		}
		s.Version = next

		query := `
			INSERT INTO snapshots (` + snapshotColumns + `)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		`
		_, err := tx.ExecContext(ctx, query,
			s.ID, s.PageID, s.CrawlJobID, s.Version, s.HTML, s.HTMLHash,
			s.Title, s.HTTPStatus, screenshotURL, signals, s.CapturedAt,
		)
		if isUndefinedColumn(err) {
			return r.insertReduced(ctx, tx, s, signals)
		}
		return err
	})
}

// insertReduced writes only the columns every deployed schema revision has
func (r *SnapshotRepository) insertReduced(ctx context.Context, tx *sqlx.Tx, s *domain.Snapshot, signals []byte) error {
	query := `
		INSERT INTO snapshots (id, page_id, crawl_job_id, version, html, html_hash, signals, captured_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := tx.ExecContext(ctx, query,
		s.ID, s.PageID, s.CrawlJobID, s.Version, s.HTML, s.HTMLHash, signals, s.CapturedAt,
	)
	if err != nil {
		return &domain.DomainError{
			Code:    domain.ErrCodePersistenceFailed,
			Message: "snapshot insert failed after reduced-column fallback",
			Err:     err,
		}
	}
	return nil
}

// LatestByPage returns up to n most recent snapshots for a page, newest first
func (r *SnapshotRepository) LatestByPage(ctx context.Context, pageID uuid.UUID, n int) ([]*domain.Snapshot, error) {
	var rows []snapshotRow
	query := `
		SELECT ` + snapshotColumns + `
		FROM snapshots
		WHERE page_id = $1
		ORDER BY version DESC
		LIMIT $2
	`
	if err := r.db.SelectContext(ctx, &rows, query, pageID, n); err != nil {
		return nil, err
	}

	snapshots := make([]*domain.Snapshot, 0, len(rows))
	for i := range rows {
		s, err := rows[i].toDomain()
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, s)
	}
	return snapshots, nil
}

// LatestByPageType returns the most recent snapshot per tracked page type
// for a competitor. When several pages share a type, the page with the
// newest snapshot wins.
func (r *SnapshotRepository) LatestByPageType(ctx context.Context, competitorID uuid.UUID) (map[domain.PageType]*domain.PageTypeSnapshot, error) {
	type joined struct {
		snapshotRow
		PageURL       string    `db:"page_url"`
		PageCreatedAt time.Time `db:"page_created_at"`
		PageUpdatedAt time.Time `db:"page_updated_at"`
		PageType      string    `db:"page_type"`
	}

	var rows []joined
	query := `
		SELECT DISTINCT ON (p.page_type)
			s.id, s.page_id, s.crawl_job_id, s.version, s.html, s.html_hash,
			s.title, s.http_status, s.screenshot_url, s.signals, s.captured_at,
			p.url AS page_url, p.page_type,
			p.created_at AS page_created_at, p.updated_at AS page_updated_at
		FROM snapshots s
		JOIN pages p ON p.id = s.page_id
		WHERE p.competitor_id = $1
		ORDER BY p.page_type, s.captured_at DESC
	`
	if err := r.db.SelectContext(ctx, &rows, query, competitorID); err != nil {
		return nil, err
	}

	out := make(map[domain.PageType]*domain.PageTypeSnapshot, len(rows))
	for i := range rows {
		s, err := rows[i].snapshotRow.toDomain()
		if err != nil {
			return nil, err
		}
		pt := domain.PageType(rows[i].PageType)
		out[pt] = &domain.PageTypeSnapshot{
			Page: &domain.Page{
				ID:           rows[i].PageID,
				CompetitorID: competitorID,
				URL:          rows[i].PageURL,
				PageType:     pt,
				Timestamps: domain.Timestamps{
					CreatedAt: rows[i].PageCreatedAt,
					UpdatedAt: rows[i].PageUpdatedAt,
				},
			},
			Snapshot: s,
		}
	}
	return out, nil
}
