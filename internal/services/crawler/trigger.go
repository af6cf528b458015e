package crawler

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rivalscope/rivalscope/internal/domain"
)

// Trigger enqueues crawl jobs with single-active-job-per-competitor
// enforcement. Stale jobs are reaped before every enqueue, so a crashed
// worker never wedges a competitor permanently.
type Trigger struct {
	competitors domain.CompetitorRepository
	jobs        domain.CrawlJobRepository
	staleAge    time.Duration
	logger      *zap.Logger
}

// NewTrigger creates a crawl trigger
func NewTrigger(competitors domain.CompetitorRepository, jobs domain.CrawlJobRepository, staleAge time.Duration, logger *zap.Logger) *Trigger {
	return &Trigger{competitors: competitors, jobs: jobs, staleAge: staleAge, logger: logger}
}

// Enqueue creates a pending crawl job for a competitor. Returns
// JobConflictError when an active job already exists after stale reaping.
func (t *Trigger) Enqueue(ctx context.Context, competitorID uuid.UUID) (uuid.UUID, error) {
	if _, err := t.competitors.GetByID(ctx, competitorID); err != nil {
		return uuid.Nil, err
	}

	reaped, err := t.jobs.FailStale(ctx, t.staleAge)
	if err != nil {
		return uuid.Nil, err
	}
	if reaped > 0 {
		t.logger.Warn("reaped stale crawl jobs", zap.Int("count", reaped))
	}

	active, err := t.jobs.CountActiveByCompetitor(ctx, competitorID)
	if err != nil {
		return uuid.Nil, err
	}
	if active > 0 {
		return uuid.Nil, domain.JobConflictError(competitorID.String())
	}

	job := domain.NewCrawlJob(competitorID)
	if err := t.jobs.Create(ctx, job); err != nil {
		return uuid.Nil, err
	}

	t.logger.Info("crawl job enqueued",
		zap.String("job_id", job.ID.String()),
		zap.String("competitor_id", competitorID.String()),
	)
	return job.ID, nil
}
