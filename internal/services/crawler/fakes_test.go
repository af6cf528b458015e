package crawler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rivalscope/rivalscope/internal/domain"
	"github.com/rivalscope/rivalscope/internal/observability"
)

// Shared across the package's tests; promauto registers into the default
// registry, so the metrics set is created exactly once per test binary.
var testMetrics = observability.NewMetrics("crawler_test")

type fakeCompetitorRepo struct {
	mu    sync.Mutex
	items map[uuid.UUID]*domain.Competitor
}

func newFakeCompetitorRepo(cs ...*domain.Competitor) *fakeCompetitorRepo {
	r := &fakeCompetitorRepo{items: map[uuid.UUID]*domain.Competitor{}}
	for _, c := range cs {
		r.items[c.ID] = c
	}
	return r
}

func (r *fakeCompetitorRepo) Create(_ context.Context, c *domain.Competitor) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[c.ID] = c
	return nil
}

func (r *fakeCompetitorRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Competitor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.items[id]
	if !ok {
		return nil, domain.NotFoundError("competitor", id)
	}
	return c, nil
}

func (r *fakeCompetitorRepo) List(_ context.Context) ([]*domain.Competitor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.Competitor, 0, len(r.items))
	for _, c := range r.items {
		out = append(out, c)
	}
	return out, nil
}

type fakeJobRepo struct {
	mu   sync.Mutex
	jobs map[uuid.UUID]*domain.CrawlJob
}

func newFakeJobRepo(jobs ...*domain.CrawlJob) *fakeJobRepo {
	r := &fakeJobRepo{jobs: map[uuid.UUID]*domain.CrawlJob{}}
	for _, j := range jobs {
		r.jobs[j.ID] = j
	}
	return r
}

func (r *fakeJobRepo) Create(_ context.Context, job *domain.CrawlJob) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobs[job.ID] = job
	return nil
}

func (r *fakeJobRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.CrawlJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	j, ok := r.jobs[id]
	if !ok {
		return nil, domain.NotFoundError("crawl job", id)
	}
	return j, nil
}

func (r *fakeJobRepo) ClaimPending(_ context.Context) (*domain.CrawlJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var oldest *domain.CrawlJob
	for _, j := range r.jobs {
		if j.Status != domain.JobStatusPending {
			continue
		}
		if oldest == nil || j.CreatedAt.Before(oldest.CreatedAt) {
			oldest = j
		}
	}
	if oldest == nil {
		return nil, domain.NotFoundError("crawl job", "pending")
	}
	oldest.Start()
	return oldest, nil
}

func (r *fakeJobRepo) Update(_ context.Context, job *domain.CrawlJob) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobs[job.ID] = job
	return nil
}

func (r *fakeJobRepo) CountActiveByCompetitor(_ context.Context, competitorID uuid.UUID) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, j := range r.jobs {
		if j.CompetitorID == competitorID && !j.Status.IsTerminal() {
			n++
		}
	}
	return n, nil
}

func (r *fakeJobRepo) FailStale(_ context.Context, maxAge time.Duration) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cutoff := time.Now().UTC().Add(-maxAge)
	n := 0
	for _, j := range r.jobs {
		if !j.Status.IsTerminal() && j.UpdatedAt.Before(cutoff) {
			j.Fail("stale job reaped")
			n++
		}
	}
	return n, nil
}

type fakePageRepo struct {
	mu    sync.Mutex
	byURL map[string]*domain.Page
}

func newFakePageRepo() *fakePageRepo {
	return &fakePageRepo{byURL: map[string]*domain.Page{}}
}

func (r *fakePageRepo) UpsertByURL(_ context.Context, page *domain.Page) (*domain.Page, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.byURL[page.URL]; ok {
		existing.PageType = page.PageType
		return existing, nil
	}
	r.byURL[page.URL] = page
	return page, nil
}

func (r *fakePageRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Page, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.byURL {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, domain.NotFoundError("page", id)
}

func (r *fakePageRepo) ListByCompetitor(_ context.Context, competitorID uuid.UUID) ([]*domain.Page, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Page
	for _, p := range r.byURL {
		if p.CompetitorID == competitorID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakePageRepo) get(url string) *domain.Page {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.byURL[url]
}

// fakeSnapshotRepo stores snapshots newest first per page
type fakeSnapshotRepo struct {
	mu     sync.Mutex
	byPage map[uuid.UUID][]*domain.Snapshot
}

func newFakeSnapshotRepo() *fakeSnapshotRepo {
	return &fakeSnapshotRepo{byPage: map[uuid.UUID][]*domain.Snapshot{}}
}

func (r *fakeSnapshotRepo) InsertWithNextVersion(_ context.Context, s *domain.Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s.Version = len(r.byPage[s.PageID]) + 1
	r.byPage[s.PageID] = append([]*domain.Snapshot{s}, r.byPage[s.PageID]...)
	return nil
}

func (r *fakeSnapshotRepo) LatestByPage(_ context.Context, pageID uuid.UUID, n int) ([]*domain.Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := r.byPage[pageID]
	if len(all) > n {
		all = all[:n]
	}
	return all, nil
}

func (r *fakeSnapshotRepo) LatestByPageType(_ context.Context, _ uuid.UUID) (map[domain.PageType]*domain.PageTypeSnapshot, error) {
	return map[domain.PageType]*domain.PageTypeSnapshot{}, nil
}

func (r *fakeSnapshotRepo) count(pageID uuid.UUID) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byPage[pageID])
}

type fakeChangeRepo struct {
	mu      sync.Mutex
	changes []*domain.Change
}

func (r *fakeChangeRepo) InsertBatch(_ context.Context, changes []*domain.Change) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.changes = append(r.changes, changes...)
	return nil
}

func (r *fakeChangeRepo) SinceByCompetitor(_ context.Context, _ uuid.UUID, since time.Time) ([]*domain.Change, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Change
	for _, c := range r.changes {
		if !c.CreatedAt.Before(since) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *fakeChangeRepo) all() []*domain.Change {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*domain.Change(nil), r.changes...)
}

type fakeScreenshotStore struct {
	mu      sync.Mutex
	uploads int
}

func (s *fakeScreenshotStore) UploadScreenshot(_ context.Context, competitorID uuid.UUID, pageKey string, version int, _ []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.uploads++
	return fmt.Sprintf("https://cdn.test/%s/%s/v%d.jpg", competitorID, pageKey, version), nil
}

type recordingEvents struct {
	mu         sync.Mutex
	completed  []uuid.UUID
	highImpact int
}

func (e *recordingEvents) CrawlCompleted(_ context.Context, job *domain.CrawlJob) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.completed = append(e.completed, job.ID)
}

func (e *recordingEvents) HighImpactChange(_ context.Context, _ *domain.Change) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.highImpact++
}

// stubFetcher serves canned HTML by URL and fails everything else
type stubFetcher struct {
	mu    sync.Mutex
	pages map[string]string
	calls []string
}

func (f *stubFetcher) Fetch(_ context.Context, pageURL string) (*FetchResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, pageURL)
	html, ok := f.pages[pageURL]
	if !ok {
		return nil, &domain.FetchError{URL: pageURL, Attempts: 1, LastErr: errors.New("page returned status 404")}
	}
	return &FetchResult{
		URL:        pageURL,
		FinalURL:   pageURL,
		HTML:       html,
		Title:      "Acme",
		HTTPStatus: 200,
		Screenshot: []byte{0xff, 0xd8},
		FetchedAt:  time.Now().UTC(),
	}, nil
}

func (f *stubFetcher) Close() error { return nil }

func (f *stubFetcher) set(url, html string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pages[url] = html
}
