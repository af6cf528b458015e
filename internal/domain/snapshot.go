package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Snapshot is one captured rendering of a page at a point in time.
// Immutable after write; never deleted. Version numbers are strictly
// increasing and gapless per page.
type Snapshot struct {
	ID            uuid.UUID   `json:"id" db:"id"`
	PageID        uuid.UUID   `json:"page_id" db:"page_id"`
	CrawlJobID    uuid.UUID   `json:"crawl_job_id" db:"crawl_job_id"`
	Version       int         `json:"version" db:"version"`
	HTML          string      `json:"-" db:"html"`
	HTMLHash      string      `json:"html_hash" db:"html_hash"`
	Title         string      `json:"title" db:"title"`
	HTTPStatus    int         `json:"http_status" db:"http_status"`
	ScreenshotURL string      `json:"screenshot_url,omitempty" db:"screenshot_url"`
	Signals       PageSignals `json:"signals"`
	CapturedAt    time.Time   `json:"captured_at" db:"captured_at"`
}

// NewSnapshot creates a snapshot record for persistence. The version is
// assigned by the repository at insert time.
func NewSnapshot(pageID, crawlJobID uuid.UUID, html, htmlHash, title string, httpStatus int, signals PageSignals) *Snapshot {
	return &Snapshot{
		ID:         uuid.New(),
		PageID:     pageID,
		CrawlJobID: crawlJobID,
		HTML:       html,
		HTMLHash:   htmlHash,
		Title:      title,
		HTTPStatus: httpStatus,
		Signals:    signals,
		CapturedAt: time.Now().UTC(),
	}
}

// PageTypeSnapshot pairs a snapshot with its page for per-type reads
type PageTypeSnapshot struct {
	Page     *Page
	Snapshot *Snapshot
}

// SnapshotRepository defines data access for snapshots
type SnapshotRepository interface {
	// InsertWithNextVersion allocates version = max(version)+1 for the page
	// and inserts the snapshot. The allocation is serialized per page so
	// concurrent jobs can never produce gaps or duplicates.
	InsertWithNextVersion(ctx context.Context, s *Snapshot) error

	// LatestByPage returns up to n most recent snapshots for a page, newest
	// first.
	LatestByPage(ctx context.Context, pageID uuid.UUID, n int) ([]*Snapshot, error)

	// LatestByPageType returns the most recent snapshot per tracked page
	// type for a competitor.
	LatestByPageType(ctx context.Context, competitorID uuid.UUID) (map[PageType]*PageTypeSnapshot, error)
}
