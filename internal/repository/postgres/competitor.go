package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/rivalscope/rivalscope/internal/domain"
)

// CompetitorRepository implements domain.CompetitorRepository with PostgreSQL
type CompetitorRepository struct {
	db *DB
}

// NewCompetitorRepository creates a new competitor repository
func NewCompetitorRepository(db *DB) *CompetitorRepository {
	return &CompetitorRepository{db: db}
}

type competitorRow struct {
	ID        uuid.UUID `db:"id"`
	Name      string    `db:"name"`
	URL       string    `db:"url"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r *competitorRow) toDomain() *domain.Competitor {
	return &domain.Competitor{
		ID:   r.ID,
		Name: r.Name,
		URL:  r.URL,
		Timestamps: domain.Timestamps{
			CreatedAt: r.CreatedAt,
			UpdatedAt: r.UpdatedAt,
		},
	}
}

// Create inserts a new competitor
func (r *CompetitorRepository) Create(ctx context.Context, c *domain.Competitor) error {
	query := `
		INSERT INTO competitors (id, name, url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.ExecContext(ctx, query, c.ID, c.Name, c.URL, c.CreatedAt, c.UpdatedAt)
	if isUniqueViolation(err) {
		return domain.AlreadyExistsError("competitor", "url", c.URL)
	}
	return err
}

// GetByID retrieves a competitor by ID
func (r *CompetitorRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Competitor, error) {
	var row competitorRow
	query := `SELECT id, name, url, created_at, updated_at FROM competitors WHERE id = $1`
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFoundError("competitor", id)
		}
		return nil, err
	}
	return row.toDomain(), nil
}

// List returns all competitors ordered by creation time
func (r *CompetitorRepository) List(ctx context.Context) ([]*domain.Competitor, error) {
	var rows []competitorRow
	query := `SELECT id, name, url, created_at, updated_at FROM competitors ORDER BY created_at`
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, err
	}

	competitors := make([]*domain.Competitor, 0, len(rows))
	for i := range rows {
		competitors = append(competitors, rows[i].toDomain())
	}
	return competitors, nil
}
