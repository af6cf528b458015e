package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rivalscope/rivalscope/internal/domain"
)

func TestInsightRepository(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	testDB := SetupTestDB(t)
	defer testDB.Cleanup(t)

	db := testDB.wrap()
	repo := NewInsightRepository(db)
	ctx := context.Background()

	t.Run("InsertAndLatestByKind", func(t *testing.T) {
		testDB.TruncateTables(t)
		comp := createTestCompetitor(t, db, "Acme", "https://acme.test")

		report, err := domain.NewInsight(comp.ID, domain.InsightKindReport, map[string]string{"summary": "quiet month"})
		require.NoError(t, err)
		require.NoError(t, repo.Insert(ctx, report))

		baseline, err := domain.NewInsight(comp.ID, domain.InsightKindBaseline, map[string]string{"industry": "finance"})
		require.NoError(t, err)
		require.NoError(t, repo.Insert(ctx, baseline))

		got, err := repo.LatestByKind(ctx, comp.ID, domain.InsightKindReport, 10)
		require.NoError(t, err)
		require.Len(t, got, 1, "kinds never mix")
		assert.Equal(t, report.ID, got[0].ID)

		var payload map[string]string
		require.NoError(t, json.Unmarshal(got[0].Payload, &payload))
		assert.Equal(t, "quiet month", payload["summary"])
	})

	t.Run("LatestByKind_NewestFirstWithLimit", func(t *testing.T) {
		testDB.TruncateTables(t)
		comp := createTestCompetitor(t, db, "Acme", "https://acme.test")

		base := time.Now().UTC().Add(-time.Hour)
		var ids []string
		for i := 0; i < 3; i++ {
			insight, err := domain.NewInsight(comp.ID, domain.InsightKindStrategic, map[string]int{"rev": i})
			require.NoError(t, err)
			insight.GeneratedAt = base.Add(time.Duration(i) * time.Minute)
			require.NoError(t, repo.Insert(ctx, insight))
			ids = append(ids, insight.ID.String())
		}

		got, err := repo.LatestByKind(ctx, comp.ID, domain.InsightKindStrategic, 2)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, ids[2], got[0].ID.String())
		assert.Equal(t, ids[1], got[1].ID.String())
	})

	t.Run("Insert_UnknownCompetitor", func(t *testing.T) {
		testDB.TruncateTables(t)

		orphan := domain.NewCompetitor("Ghost", "https://ghost.test")
		insight, err := domain.NewInsight(orphan.ID, domain.InsightKindReport, map[string]string{})
		require.NoError(t, err)

		err = repo.Insert(ctx, insight)
		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrNotFoundVal))
	})
}

func TestSEOSnapshotRepository(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	testDB := SetupTestDB(t)
	defer testDB.Cleanup(t)

	db := testDB.wrap()
	repo := NewSEOSnapshotRepository(db)
	ctx := context.Background()

	t.Run("InsertAndLatest", func(t *testing.T) {
		testDB.TruncateTables(t)
		comp := createTestCompetitor(t, db, "Acme", "https://acme.test")

		base := time.Now().UTC().Add(-time.Hour)
		first, err := domain.NewSEOSnapshot(comp.ID, map[string]string{"domain": "acme.test"})
		require.NoError(t, err)
		first.GeneratedAt = base
		require.NoError(t, repo.Insert(ctx, first))

		second, err := domain.NewSEOSnapshot(comp.ID, map[string]string{"domain": "acme.test"})
		require.NoError(t, err)
		second.GeneratedAt = base.Add(time.Minute)
		require.NoError(t, repo.Insert(ctx, second))

		got, err := repo.Latest(ctx, comp.ID, 1)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, second.ID, got[0].ID)

		var payload map[string]string
		require.NoError(t, json.Unmarshal(got[0].Payload, &payload))
		assert.Equal(t, "acme.test", payload["domain"])
	})

	t.Run("Insert_UnknownCompetitor", func(t *testing.T) {
		testDB.TruncateTables(t)

		orphan := domain.NewCompetitor("Ghost", "https://ghost.test")
		snap, err := domain.NewSEOSnapshot(orphan.ID, map[string]string{})
		require.NoError(t, err)

		err = repo.Insert(ctx, snap)
		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrNotFoundVal))
	})
}
