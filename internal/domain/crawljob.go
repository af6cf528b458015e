package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// CrawlJob is one execution of the signal pipeline for a competitor
type CrawlJob struct {
	ID           uuid.UUID  `json:"id" db:"id"`
	CompetitorID uuid.UUID  `json:"competitor_id" db:"competitor_id"`
	Status       JobStatus  `json:"status" db:"status"`
	PagesCrawled int        `json:"pages_crawled" db:"pages_crawled"`
	ChangesFound int        `json:"changes_found" db:"changes_found"`
	Errors       []string   `json:"errors,omitempty"`
	StartedAt    *time.Time `json:"started_at,omitempty" db:"started_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty" db:"completed_at"`
	Timestamps
}

// NewCrawlJob creates a pending crawl job
func NewCrawlJob(competitorID uuid.UUID) *CrawlJob {
	j := &CrawlJob{
		ID:           uuid.New(),
		CompetitorID: competitorID,
		Status:       JobStatusPending,
	}
	j.SetTimestamps()
	return j
}

// Start marks the job as running
func (j *CrawlJob) Start() {
	now := time.Now().UTC()
	j.Status = JobStatusRunning
	j.StartedAt = &now
	j.UpdatedAt = now
}

// Complete marks the job as completed. Partial success is still completed;
// accumulated page errors stay attached for visibility.
func (j *CrawlJob) Complete(pagesCrawled, changesFound int) {
	now := time.Now().UTC()
	j.Status = JobStatusCompleted
	j.PagesCrawled = pagesCrawled
	j.ChangesFound = changesFound
	j.CompletedAt = &now
	j.UpdatedAt = now
}

// Fail marks the job as failed
func (j *CrawlJob) Fail(reason string) {
	now := time.Now().UTC()
	j.Status = JobStatusFailed
	if reason != "" {
		j.Errors = append(j.Errors, reason)
	}
	j.CompletedAt = &now
	j.UpdatedAt = now
}

// AddError records a non-fatal page-level error
func (j *CrawlJob) AddError(msg string) {
	j.Errors = append(j.Errors, msg)
	j.Touch()
}

// CrawlJobRepository defines data access for crawl jobs
type CrawlJobRepository interface {
	Create(ctx context.Context, job *CrawlJob) error
	GetByID(ctx context.Context, id uuid.UUID) (*CrawlJob, error)

	// ClaimPending atomically claims the oldest pending job and marks it
	// running. Returns NotFoundError when no pending job exists.
	ClaimPending(ctx context.Context) (*CrawlJob, error)

	Update(ctx context.Context, job *CrawlJob) error

	// CountActiveByCompetitor counts pending/running jobs for a competitor.
	CountActiveByCompetitor(ctx context.Context, competitorID uuid.UUID) (int, error)

	// FailStale marks pending/running jobs older than maxAge as failed and
	// returns how many were reaped.
	FailStale(ctx context.Context, maxAge time.Duration) (int, error)
}
