package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/rivalscope/rivalscope/internal/domain"
)

// CrawlJobRepository implements domain.CrawlJobRepository with PostgreSQL
type CrawlJobRepository struct {
	db *DB
}

// NewCrawlJobRepository creates a new crawl job repository
func NewCrawlJobRepository(db *DB) *CrawlJobRepository {
	return &CrawlJobRepository{db: db}
}

type crawlJobRow struct {
	ID           uuid.UUID      `db:"id"`
	CompetitorID uuid.UUID      `db:"competitor_id"`
	Status       string         `db:"status"`
	PagesCrawled int            `db:"pages_crawled"`
	ChangesFound int            `db:"changes_found"`
	Errors       pq.StringArray `db:"errors"`
	StartedAt    *time.Time     `db:"started_at"`
	CompletedAt  *time.Time     `db:"completed_at"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
}

func (r *crawlJobRow) toDomain() *domain.CrawlJob {
	return &domain.CrawlJob{
		ID:           r.ID,
		CompetitorID: r.CompetitorID,
		Status:       domain.JobStatus(r.Status),
		PagesCrawled: r.PagesCrawled,
		ChangesFound: r.ChangesFound,
		Errors:       r.Errors,
		StartedAt:    r.StartedAt,
		CompletedAt:  r.CompletedAt,
		Timestamps: domain.Timestamps{
			CreatedAt: r.CreatedAt,
			UpdatedAt: r.UpdatedAt,
		},
	}
}

const crawlJobColumns = `id, competitor_id, status, pages_crawled, changes_found, errors, started_at, completed_at, created_at, updated_at`

// Create inserts a new crawl job
func (r *CrawlJobRepository) Create(ctx context.Context, job *domain.CrawlJob) error {
	query := `
		INSERT INTO crawl_jobs (` + crawlJobColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.db.ExecContext(ctx, query,
		job.ID, job.CompetitorID, string(job.Status), job.PagesCrawled,
		job.ChangesFound, pq.StringArray(job.Errors), job.StartedAt,
		job.CompletedAt, job.CreatedAt, job.UpdatedAt,
	)
	if isForeignKeyViolation(err) {
		return domain.NotFoundError("competitor", job.CompetitorID)
	}
	return err
}

// GetByID retrieves a crawl job by ID
func (r *CrawlJobRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.CrawlJob, error) {
	var row crawlJobRow
	query := `SELECT ` + crawlJobColumns + ` FROM crawl_jobs WHERE id = $1`
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFoundError("crawl_job", id)
		}
		return nil, err
	}
	return row.toDomain(), nil
}

// ClaimPending atomically claims the oldest pending job and marks it
// running. FOR UPDATE SKIP LOCKED lets concurrent workers claim distinct
// jobs without blocking each other.
func (r *CrawlJobRepository) ClaimPending(ctx context.Context) (*domain.CrawlJob, error) {
	var row crawlJobRow
	query := `
		UPDATE crawl_jobs
		SET status = 'running', started_at = NOW(), updated_at = NOW()
		WHERE id = (
			SELECT id FROM crawl_jobs
			WHERE status = 'pending'
			ORDER BY created_at
			FOR UPDATE SKIP LOCKED
			LIMIT 1
		)
		RETURNING ` + crawlJobColumns + `
	`
	if err := r.db.GetContext(ctx, &row, query); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFoundError("crawl_job", "pending")
		}
		return nil, err
	}
	return row.toDomain(), nil
}

// Update persists a job's mutable state
func (r *CrawlJobRepository) Update(ctx context.Context, job *domain.CrawlJob) error {
	query := `
		UPDATE crawl_jobs
		SET status = $2, pages_crawled = $3, changes_found = $4, errors = $5,
			started_at = $6, completed_at = $7, updated_at = $8
		WHERE id = $1
	`
	result, err := r.db.ExecContext(ctx, query,
		job.ID, string(job.Status), job.PagesCrawled, job.ChangesFound,
		pq.StringArray(job.Errors), job.StartedAt, job.CompletedAt, job.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return domain.NotFoundError("crawl_job", job.ID)
	}
	return nil
}

// CountActiveByCompetitor counts pending/running jobs for a competitor
func (r *CrawlJobRepository) CountActiveByCompetitor(ctx context.Context, competitorID uuid.UUID) (int, error) {
	var count int
	query := `
		SELECT COUNT(*) FROM crawl_jobs
		WHERE competitor_id = $1 AND status IN ('pending', 'running')
	`
	if err := r.db.GetContext(ctx, &count, query, competitorID); err != nil {
		return 0, err
	}
	return count, nil
}

// FailStale marks pending/running jobs older than maxAge as failed
func (r *CrawlJobRepository) FailStale(ctx context.Context, maxAge time.Duration) (int, error) {
	cutoff := time.Now().UTC().Add(-maxAge)
	query := `
		UPDATE crawl_jobs
		SET status = 'failed',
			errors = array_append(errors, 'reaped: job exceeded stale age'),
			completed_at = NOW(),
			updated_at = NOW()
		WHERE status IN ('pending', 'running') AND created_at < $1
	`
	result, err := r.db.ExecContext(ctx, query, cutoff)
	if err != nil {
		return 0, err
	}
	n, err := result.RowsAffected()
	return int(n), err
}
