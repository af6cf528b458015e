package domain

import (
	"context"

	"github.com/google/uuid"
)

// Page is a tracked URL within a competitor's site. Created on first
// discovery; its page type may be re-classified on later crawls.
type Page struct {
	ID           uuid.UUID `json:"id" db:"id"`
	CompetitorID uuid.UUID `json:"competitor_id" db:"competitor_id"`
	URL          string    `json:"url" db:"url"`
	PageType     PageType  `json:"page_type" db:"page_type"`
	Timestamps
}

// NewPage creates a new tracked page
func NewPage(competitorID uuid.UUID, url string, pageType PageType) *Page {
	p := &Page{
		ID:           uuid.New(),
		CompetitorID: competitorID,
		URL:          url,
		PageType:     pageType,
	}
	p.SetTimestamps()
	return p
}

// PageRepository defines data access for pages
type PageRepository interface {
	// UpsertByURL creates the page on first discovery, or updates its page
	// type when already tracked, keyed by (competitor_id, url).
	UpsertByURL(ctx context.Context, page *Page) (*Page, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Page, error)
	ListByCompetitor(ctx context.Context, competitorID uuid.UUID) ([]*Page, error)
}
