package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rivalscope/rivalscope/internal/domain"
)

func TestCompetitorRepository(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	testDB := SetupTestDB(t)
	defer testDB.Cleanup(t)

	db := testDB.wrap()
	repo := NewCompetitorRepository(db)
	ctx := context.Background()

	t.Run("Create", func(t *testing.T) {
		testDB.TruncateTables(t)

		comp := domain.NewCompetitor("Acme", "https://acme.test")
		require.NoError(t, repo.Create(ctx, comp))

		fetched, err := repo.GetByID(ctx, comp.ID)
		require.NoError(t, err)
		assert.Equal(t, comp.ID, fetched.ID)
		assert.Equal(t, "Acme", fetched.Name)
		assert.Equal(t, "https://acme.test", fetched.URL)
	})

	t.Run("Create_DuplicateURL", func(t *testing.T) {
		testDB.TruncateTables(t)

		require.NoError(t, repo.Create(ctx, domain.NewCompetitor("Acme", "https://acme.test")))

		err := repo.Create(ctx, domain.NewCompetitor("Acme Clone", "https://acme.test"))
		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrAlreadyExistsVal))
	})

	t.Run("GetByID_NotFound", func(t *testing.T) {
		testDB.TruncateTables(t)

		_, err := repo.GetByID(ctx, uuid.New())
		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrNotFoundVal))
	})

	t.Run("List", func(t *testing.T) {
		testDB.TruncateTables(t)

		first := domain.NewCompetitor("Acme", "https://acme.test")
		require.NoError(t, repo.Create(ctx, first))
		second := domain.NewCompetitor("Globex", "https://globex.test")
		second.CreatedAt = first.CreatedAt.Add(time.Second)
		require.NoError(t, repo.Create(ctx, second))

		list, err := repo.List(ctx)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, "Acme", list[0].Name)
		assert.Equal(t, "Globex", list[1].Name)
	})
}
