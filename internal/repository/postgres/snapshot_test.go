package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rivalscope/rivalscope/internal/domain"
)

func insertSnapshot(t *testing.T, repo *SnapshotRepository, page *domain.Page, job *domain.CrawlJob, html string, signals domain.PageSignals) *domain.Snapshot {
	t.Helper()
	snap := domain.NewSnapshot(page.ID, job.ID, html, "hash-"+html, "Acme", 200, signals)
	require.NoError(t, repo.InsertWithNextVersion(context.Background(), snap))
	return snap
}

func TestSnapshotRepository(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	testDB := SetupTestDB(t)
	defer testDB.Cleanup(t)

	db := testDB.wrap()
	repo := NewSnapshotRepository(db)
	ctx := context.Background()

	t.Run("InsertWithNextVersion_GaplessVersions", func(t *testing.T) {
		testDB.TruncateTables(t)
		comp := createTestCompetitor(t, db, "Acme", "https://acme.test")
		page := createTestPage(t, db, comp, "https://acme.test/", domain.PageTypeHomepage)
		job := createTestJob(t, db, comp)

		first := insertSnapshot(t, repo, page, job, "<html>v1</html>", domain.PageSignals{})
		second := insertSnapshot(t, repo, page, job, "<html>v2</html>", domain.PageSignals{})
		third := insertSnapshot(t, repo, page, job, "<html>v3</html>", domain.PageSignals{})

		assert.Equal(t, 1, first.Version)
		assert.Equal(t, 2, second.Version)
		assert.Equal(t, 3, third.Version)
	})

	t.Run("InsertWithNextVersion_UnknownPage", func(t *testing.T) {
		testDB.TruncateTables(t)
		comp := createTestCompetitor(t, db, "Acme", "https://acme.test")
		job := createTestJob(t, db, comp)

		orphan := domain.NewPage(comp.ID, "https://acme.test/ghost", domain.PageTypeOther)
		err := repo.InsertWithNextVersion(ctx, domain.NewSnapshot(orphan.ID, job.ID, "<html></html>", "h", "", 200, domain.PageSignals{}))
		require.Error(t, err)
	})

	t.Run("LatestByPage_NewestFirst", func(t *testing.T) {
		testDB.TruncateTables(t)
		comp := createTestCompetitor(t, db, "Acme", "https://acme.test")
		page := createTestPage(t, db, comp, "https://acme.test/", domain.PageTypeHomepage)
		job := createTestJob(t, db, comp)

		insertSnapshot(t, repo, page, job, "<html>v1</html>", domain.PageSignals{})
		insertSnapshot(t, repo, page, job, "<html>v2</html>", domain.PageSignals{})
		insertSnapshot(t, repo, page, job, "<html>v3</html>", domain.PageSignals{})

		latest, err := repo.LatestByPage(ctx, page.ID, 2)
		require.NoError(t, err)
		require.Len(t, latest, 2)
		assert.Equal(t, 3, latest[0].Version)
		assert.Equal(t, 2, latest[1].Version)
	})

	t.Run("SignalsRoundTrip", func(t *testing.T) {
		testDB.TruncateTables(t)
		comp := createTestCompetitor(t, db, "Acme", "https://acme.test")
		page := createTestPage(t, db, comp, "https://acme.test/", domain.PageTypeHomepage)
		job := createTestJob(t, db, comp)

		signals := domain.PageSignals{
			Headline:      "Ship faster with Acme",
			Headings:      []string{"Features", "Integrations"},
			NavItems:      []domain.NavItem{{Text: "Pricing", Href: "https://acme.test/pricing"}},
			CTAs:          []domain.CTA{{Text: "Get Started", Href: "https://acme.test/signup", Score: 12}},
			PricingTokens: []string{"$29", "$299"},
			SEO:           domain.SEOFields{MetaDescription: "Workflow automation", WordCount: 320},
			ContentHash:   "abc123",
		}
		insertSnapshot(t, repo, page, job, "<html>v1</html>", signals)

		latest, err := repo.LatestByPage(ctx, page.ID, 1)
		require.NoError(t, err)
		require.Len(t, latest, 1)
		assert.Equal(t, signals, latest[0].Signals)
	})

	t.Run("LatestByPageType", func(t *testing.T) {
		testDB.TruncateTables(t)
		comp := createTestCompetitor(t, db, "Acme", "https://acme.test")
		home := createTestPage(t, db, comp, "https://acme.test/", domain.PageTypeHomepage)
		pricing := createTestPage(t, db, comp, "https://acme.test/pricing", domain.PageTypePricing)
		job := createTestJob(t, db, comp)

		insertSnapshot(t, repo, home, job, "<html>home v1</html>", domain.PageSignals{})

		latestHome := domain.NewSnapshot(home.ID, job.ID, "<html>home v2</html>", "hash-v2", "Acme", 200, domain.PageSignals{})
		latestHome.CapturedAt = latestHome.CapturedAt.Add(time.Second)
		require.NoError(t, repo.InsertWithNextVersion(ctx, latestHome))

		latestPricing := insertSnapshot(t, repo, pricing, job, "<html>pricing v1</html>", domain.PageSignals{})

		byType, err := repo.LatestByPageType(ctx, comp.ID)
		require.NoError(t, err)
		require.Len(t, byType, 2)

		require.NotNil(t, byType[domain.PageTypeHomepage])
		assert.Equal(t, latestHome.ID, byType[domain.PageTypeHomepage].Snapshot.ID)
		assert.Equal(t, home.ID, byType[domain.PageTypeHomepage].Page.ID)

		require.NotNil(t, byType[domain.PageTypePricing])
		assert.Equal(t, latestPricing.ID, byType[domain.PageTypePricing].Snapshot.ID)
	})
}
