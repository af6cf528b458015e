package domain

import (
	"context"

	"github.com/google/uuid"
)

// Competitor is one tracked rival company
type Competitor struct {
	ID   uuid.UUID `json:"id" db:"id"`
	Name string    `json:"name" db:"name"`
	URL  string    `json:"url" db:"url"`
	Timestamps
}

// NewCompetitor creates a new competitor
func NewCompetitor(name, url string) *Competitor {
	c := &Competitor{
		ID:   uuid.New(),
		Name: name,
		URL:  url,
	}
	c.SetTimestamps()
	return c
}

// CompetitorRepository defines data access for competitors
type CompetitorRepository interface {
	Create(ctx context.Context, c *Competitor) error
	GetByID(ctx context.Context, id uuid.UUID) (*Competitor, error)
	List(ctx context.Context) ([]*Competitor, error)
}
