package crawler

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/rivalscope/rivalscope/internal/config"
	"github.com/rivalscope/rivalscope/internal/domain"
	"github.com/rivalscope/rivalscope/internal/observability"
	"github.com/rivalscope/rivalscope/internal/services/diff"
	"github.com/rivalscope/rivalscope/internal/services/extract"
)

// ScreenshotStore uploads screenshot blobs and returns their public URL
type ScreenshotStore interface {
	UploadScreenshot(ctx context.Context, competitorID uuid.UUID, pageKey string, version int, data []byte) (string, error)
}

// EventPublisher announces pipeline milestones. Implementations are
// best-effort; a publish failure never affects the crawl outcome.
type EventPublisher interface {
	CrawlCompleted(ctx context.Context, job *domain.CrawlJob)
	HighImpactChange(ctx context.Context, change *domain.Change)
}

// FetcherFactory opens a browser for one job's lifetime
type FetcherFactory func() (PageFetcher, error)

// robotsChecker reports crawl permission for a URL. One checker lives per
// job; RobotsGate is the production implementation.
type robotsChecker interface {
	Allowed(ctx context.Context, pageURL string) bool
}

// Runner executes crawl jobs end to end: target selection, fetching,
// extraction, snapshot persistence, diffing and change classification.
type Runner struct {
	cfg         config.CrawlerConfig
	newFetcher  FetcherFactory
	newRobots   func() robotsChecker
	competitors domain.CompetitorRepository
	pages       domain.PageRepository
	snapshots   domain.SnapshotRepository
	jobs        domain.CrawlJobRepository
	changes     domain.ChangeRepository
	screenshots ScreenshotStore
	events      EventPublisher
	metrics     *observability.Metrics
	logger      *zap.Logger
}

// NewRunner creates a crawl runner
func NewRunner(
	cfg config.CrawlerConfig,
	newFetcher FetcherFactory,
	competitors domain.CompetitorRepository,
	pages domain.PageRepository,
	snapshots domain.SnapshotRepository,
	jobs domain.CrawlJobRepository,
	changes domain.ChangeRepository,
	screenshots ScreenshotStore,
	events EventPublisher,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *Runner {
	return &Runner{
		cfg:        cfg,
		newFetcher: newFetcher,
		newRobots: func() robotsChecker {
			return NewRobotsGate(cfg.RobotsTimeout, userAgentFor(0), logger)
		},
		competitors: competitors,
		pages:       pages,
		snapshots:   snapshots,
		jobs:        jobs,
		changes:     changes,
		screenshots: screenshots,
		events:      events,
		metrics:     metrics,
		logger:      logger,
	}
}

// RunCrawl executes one claimed job. Idempotent per job id: a job already
// in a terminal state is a no-op. The job always terminates completed or
// failed; failed only when zero pages were persisted.
func (r *Runner) RunCrawl(ctx context.Context, jobID uuid.UUID) error {
	job, err := r.jobs.GetByID(ctx, jobID)
	if err != nil {
		return err
	}
	if job.Status.IsTerminal() {
		r.logger.Info("job already terminal, skipping",
			zap.String("job_id", jobID.String()),
			zap.String("status", string(job.Status)))
		return nil
	}

	competitor, err := r.competitors.GetByID(ctx, job.CompetitorID)
	if err != nil {
		job.Fail(fmt.Sprintf("loading competitor: %v", err))
		return r.finish(ctx, job)
	}

	if job.Status == domain.JobStatusPending {
		job.Start()
		if err := r.jobs.Update(ctx, job); err != nil {
			return err
		}
	}

	start := time.Now()
	logger := r.logger.With(
		zap.String("job_id", job.ID.String()),
		zap.String("competitor_id", competitor.ID.String()),
	)
	logger.Info("crawl started", zap.String("url", competitor.URL))

	pagesPersisted, changesFound := r.crawl(ctx, job, competitor, logger)

	if pagesPersisted == 0 {
		job.Fail("no pages could be crawled")
		r.metrics.CrawlJobsTotal.WithLabelValues("failed").Inc()
	} else {
		job.Complete(pagesPersisted, changesFound)
		r.metrics.CrawlJobsTotal.WithLabelValues("completed").Inc()
	}
	r.metrics.CrawlDuration.Observe(time.Since(start).Seconds())

	logger.Info("crawl finished",
		zap.String("status", string(job.Status)),
		zap.Int("pages", pagesPersisted),
		zap.Int("changes", changesFound),
		zap.Int("errors", len(job.Errors)),
	)
	return r.finish(ctx, job)
}

// RunNextPending claims the oldest pending job and runs it to completion.
// At most one job is processed per call, so a cron-driven worker drains
// the queue one invocation at a time. Returns NotFoundError when no
// pending job exists.
func (r *Runner) RunNextPending(ctx context.Context) error {
	job, err := r.jobs.ClaimPending(ctx)
	if err != nil {
		return err
	}
	r.logger.Info("claimed crawl job",
		zap.String("job_id", job.ID.String()),
		zap.String("competitor_id", job.CompetitorID.String()),
	)
	return r.RunCrawl(ctx, job.ID)
}

func (r *Runner) finish(ctx context.Context, job *domain.CrawlJob) error {
	if err := r.jobs.Update(ctx, job); err != nil {
		return err
	}
	r.events.CrawlCompleted(ctx, job)
	return nil
}

// crawl fetches the homepage, selects targets from its links and processes
// every target sequentially. Page errors accumulate on the job and never
// abort sibling pages.
func (r *Runner) crawl(ctx context.Context, job *domain.CrawlJob, competitor *domain.Competitor, logger *zap.Logger) (pagesPersisted, changesFound int) {
	fetcher, err := r.newFetcher()
	if err != nil {
		job.AddError(fmt.Sprintf("starting browser: %v", err))
		return 0, 0
	}
	defer fetcher.Close()

	robots := r.newRobots()
	limiter := rate.NewLimiter(rate.Limit(r.cfg.PagesPerSecond), 1)

	// The homepage is always fetched; robots rules apply to the remaining
	// targets only.
	home, err := r.fetchPage(ctx, fetcher, robots, limiter, competitor.URL, true)
	if err != nil {
		job.AddError(errorMessage(competitor.URL, err))
		return 0, 0
	}

	homeSignals := extract.Extract(home.HTML, home.URL)
	targets := SelectTargets(competitor.URL, linkCandidates(homeSignals), r.cfg.MaxPages)

	fetched := map[string]*FetchResult{targets[0].URL: home}
	for _, target := range targets {
		result, ok := fetched[target.URL]
		if !ok {
			result, err = r.fetchPage(ctx, fetcher, robots, limiter, target.URL, false)
			if err != nil {
				job.AddError(errorMessage(target.URL, err))
				if domain.IsRobotsDisallowed(err) {
					logger.Info("robots disallow, skipping", zap.String("url", target.URL))
				}
				continue
			}
		}

		changes, err := r.processPage(ctx, job, competitor, target, result, logger)
		if err != nil {
			job.AddError(errorMessage(target.URL, err))
			continue
		}
		pagesPersisted++
		changesFound += changes
	}
	return pagesPersisted, changesFound
}

func (r *Runner) fetchPage(ctx context.Context, fetcher PageFetcher, robots robotsChecker, limiter *rate.Limiter, pageURL string, homepage bool) (*FetchResult, error) {
	if r.cfg.RespectRobots && !homepage && !robots.Allowed(ctx, pageURL) {
		return nil, &domain.RobotsDisallowedError{URL: pageURL}
	}
	if err := limiter.Wait(ctx); err != nil {
		return nil, err
	}
	start := time.Now()
	result, err := fetcher.Fetch(ctx, pageURL)
	if err != nil {
		r.metrics.PagesFetchedTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	r.metrics.PagesFetchedTotal.WithLabelValues("ok").Inc()
	r.metrics.FetchDuration.Observe(time.Since(start).Seconds())
	return result, nil
}

// processPage persists the snapshot, uploads the screenshot, diffs against
// the previous snapshot and persists classified changes.
func (r *Runner) processPage(ctx context.Context, job *domain.CrawlJob, competitor *domain.Competitor, target Target, result *FetchResult, logger *zap.Logger) (int, error) {
	page, err := r.pages.UpsertByURL(ctx, domain.NewPage(competitor.ID, target.URL, target.PageType))
	if err != nil {
		return 0, err
	}

	previous, err := r.snapshots.LatestByPage(ctx, page.ID, 1)
	if err != nil {
		return 0, err
	}

	signals := extract.Extract(result.HTML, result.URL)
	snapshot := domain.NewSnapshot(page.ID, job.ID, result.HTML, extract.ContentHash(result.HTML), result.Title, result.HTTPStatus, signals)

	// Duplicate active jobs per competitor are rejected at trigger time, so
	// the next version is always previous+1 here.
	nextVersion := 1
	if len(previous) > 0 {
		nextVersion = previous[0].Version + 1
	}

	if len(result.Screenshot) > 0 {
		url, err := r.screenshots.UploadScreenshot(ctx, competitor.ID, page.ID.String(), nextVersion, result.Screenshot)
		if err != nil {
			logger.Warn("screenshot upload failed", zap.String("url", target.URL), zap.Error(err))
		} else {
			snapshot.ScreenshotURL = url
		}
	}

	if err := r.snapshots.InsertWithNextVersion(ctx, snapshot); err != nil {
		return 0, err
	}
	r.metrics.SnapshotsStoredTotal.Inc()

	if len(previous) == 0 {
		return 0, nil
	}
	return r.detectChanges(ctx, page, previous[0], snapshot, logger)
}

// detectChanges runs both diff passes and classifies the results. A diff
// or classification panic is caught and treated as no changes.
func (r *Runner) detectChanges(ctx context.Context, page *domain.Page, before, after *domain.Snapshot, logger *zap.Logger) (n int, err error) {
	var detected []diff.Detected
	func() {
		defer func() {
			if rec := recover(); rec != nil {
				logger.Error("diff pass panicked, treating as no changes",
					zap.String("page_id", page.ID.String()),
					zap.Any("panic", rec))
				detected = nil
			}
		}()
		detected = diff.Detect(before.HTML, after.HTML, page.URL, page.PageType)
		detected = append(detected, diff.ComparePM(before.Signals, after.Signals, page.PageType)...)
	}()
	if len(detected) == 0 {
		return 0, nil
	}

	changes := make([]*domain.Change, 0, len(detected))
	for _, d := range detected {
		category := diff.Classify(d, page.PageType, after.HTML)
		impact := diff.DeriveImpact(d, page.PageType)
		interpretation, action := diff.Interpret(category, impact)
		changes = append(changes, &domain.Change{
			ID:               uuid.New(),
			PageID:           page.ID,
			BeforeSnapshotID: before.ID,
			AfterSnapshotID:  after.ID,
			Type:             d.Type,
			Category:         category,
			Impact:           impact,
			Summary:          d.Summary,
			Interpretation:   interpretation,
			MonitoringAction: action,
			Details:          d.Details,
			CreatedAt:        time.Now().UTC(),
		})
	}

	if err := r.changes.InsertBatch(ctx, changes); err != nil {
		return 0, err
	}
	for _, c := range changes {
		r.metrics.ChangesDetectedTotal.WithLabelValues(string(c.Impact)).Inc()
		if c.Impact == domain.ImpactStrategic {
			r.events.HighImpactChange(ctx, c)
		}
	}
	return len(changes), nil
}

// linkCandidates flattens the homepage's nav and footer links into target
// selection candidates, nav first.
func linkCandidates(signals domain.PageSignals) []Candidate {
	var out []Candidate
	for _, n := range signals.NavItems {
		out = append(out, Candidate{URL: n.Href, Text: n.Text})
	}
	for _, f := range signals.FooterLinks {
		out = append(out, Candidate{URL: f.Href, Text: f.Text})
	}
	for _, c := range signals.CTAs {
		out = append(out, Candidate{URL: c.Href, Text: c.Text})
	}
	return out
}

func errorMessage(pageURL string, err error) string {
	return fmt.Sprintf("%s: %v", pageURL, err)
}
