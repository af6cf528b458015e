package seo

import (
	"context"
	"net/url"
	"sort"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/rivalscope/rivalscope/internal/domain"
)

// Analysis is the full SEO intelligence output for one competitor
type Analysis struct {
	CompetitorID string         `json:"competitor_id"`
	Domain       string         `json:"domain"`
	Keywords     KeywordProfile `json:"keywords"`
	Clusters     []TopicCluster `json:"clusters"`
	Funnel       FunnelBalance  `json:"funnel"`
	Depth        ContentDepth   `json:"depth"`
	Dimensions   map[string]int `json:"dimensions"`
	GeneratedAt  time.Time      `json:"generated_at"`
}

// Service assembles page inputs from stored snapshots, runs the analysis
// and persists the result. Keyword profiles are memoized per run in an
// expiring cache keyed by domain plus page-set hash, so repeated analyses
// over unchanged content skip the n-gram pass.
type Service struct {
	snapshots    domain.SnapshotRepository
	changes      domain.ChangeRepository
	seoSnapshots domain.SEOSnapshotRepository
	window       time.Duration
	profiles     *gocache.Cache
	logger       *zap.Logger
}

// NewService creates the SEO service. window is the recent-change horizon
// used for the momentum dimension.
func NewService(snapshots domain.SnapshotRepository, changes domain.ChangeRepository, seoSnapshots domain.SEOSnapshotRepository, window time.Duration, logger *zap.Logger) *Service {
	return &Service{
		snapshots:    snapshots,
		changes:      changes,
		seoSnapshots: seoSnapshots,
		window:       window,
		profiles:     gocache.New(15*time.Minute, 30*time.Minute),
		logger:       logger,
	}
}

// Analyze runs the pure pipeline over assembled inputs
func Analyze(competitorID, siteDomain string, pages []PageInput, recentChanges int) Analysis {
	profile := BuildKeywordProfile(siteDomain, pages)
	return analyzeWithProfile(competitorID, siteDomain, profile, pages, recentChanges)
}

func analyzeWithProfile(competitorID, siteDomain string, profile KeywordProfile, pages []PageInput, recentChanges int) Analysis {
	clusters := BuildClusters(profile)
	funnel := BuildFunnelBalance(pages)
	depth := BuildContentDepth(pages)
	return Analysis{
		CompetitorID: competitorID,
		Domain:       siteDomain,
		Keywords:     profile,
		Clusters:     clusters,
		Funnel:       funnel,
		Depth:        depth,
		Dimensions:   BuildDimensions(profile, clusters, funnel, depth, recentChanges),
		GeneratedAt:  time.Now().UTC(),
	}
}

// Generate analyzes a competitor's latest snapshots and stores the result
func (s *Service) Generate(ctx context.Context, competitorID uuid.UUID) (*Analysis, error) {
	analysis, err := s.analyze(ctx, competitorID)
	if err != nil {
		return nil, err
	}

	snap, err := newSEOSnapshot(competitorID, *analysis)
	if err != nil {
		return nil, err
	}
	if err := s.seoSnapshots.Insert(ctx, snap); err != nil {
		return nil, err
	}

	s.logger.Info("seo analysis generated",
		zap.String("competitor_id", competitorID.String()),
		zap.Int("keywords", len(analysis.Keywords.Keywords)),
		zap.Int("clusters", len(analysis.Clusters)),
	)
	return analysis, nil
}

// CompareGapFor analyzes both competitors from their latest snapshots and
// surfaces where the peer's search posture outruns the target's. Nothing
// is persisted; the comparison is a read.
func (s *Service) CompareGapFor(ctx context.Context, targetID, peerID uuid.UUID) (*GapAnalysis, error) {
	target, err := s.analyze(ctx, targetID)
	if err != nil {
		return nil, err
	}
	peer, err := s.analyze(ctx, peerID)
	if err != nil {
		return nil, err
	}

	gap := CompareGap(*target, *peer)
	s.logger.Info("seo gap compared",
		zap.String("target_id", targetID.String()),
		zap.String("peer_id", peerID.String()),
		zap.Int("missing_keywords", len(gap.MissingKeywords)),
	)
	return &gap, nil
}

// analyze assembles inputs from stored snapshots and runs the pure pipeline
func (s *Service) analyze(ctx context.Context, competitorID uuid.UUID) (*Analysis, error) {
	pages, siteDomain, err := s.pageInputs(ctx, competitorID)
	if err != nil {
		return nil, err
	}

	since := time.Now().UTC().Add(-s.window)
	recent, err := s.changes.SinceByCompetitor(ctx, competitorID, since)
	if err != nil {
		return nil, err
	}

	profile := s.keywordProfile(siteDomain, pages)
	analysis := analyzeWithProfile(competitorID.String(), siteDomain, profile, pages, len(recent))
	return &analysis, nil
}

// keywordProfile returns the cached profile when the page set is unchanged
func (s *Service) keywordProfile(siteDomain string, pages []PageInput) KeywordProfile {
	key := cacheKey(siteDomain, pages)
	if cached, ok := s.profiles.Get(key); ok {
		return cached.(KeywordProfile)
	}
	profile := BuildKeywordProfile(siteDomain, pages)
	s.profiles.Set(key, profile, gocache.DefaultExpiration)
	return profile
}

func (s *Service) pageInputs(ctx context.Context, competitorID uuid.UUID) ([]PageInput, string, error) {
	latest, err := s.snapshots.LatestByPageType(ctx, competitorID)
	if err != nil {
		return nil, "", err
	}

	// Canonical page-type order keeps the assembled inputs, and the domain
	// fallback below, independent of map iteration.
	types := make([]domain.PageType, 0, len(latest))
	for pt := range latest {
		types = append(types, pt)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })

	var (
		pages      []PageInput
		siteDomain string
	)
	for _, pt := range types {
		pts := latest[pt]
		pages = append(pages, PageInput{
			PageType: pt,
			URL:      pts.Page.URL,
			Title:    pts.Snapshot.Title,
			Signals:  pts.Snapshot.Signals,
		})
		if pt == domain.PageTypeHomepage {
			siteDomain = hostOf(pts.Page.URL)
		}
	}
	if siteDomain == "" && len(pages) > 0 {
		siteDomain = hostOf(pages[0].URL)
	}
	return pages, siteDomain, nil
}

func newSEOSnapshot(competitorID uuid.UUID, analysis Analysis) (*domain.SEOSnapshot, error) {
	return domain.NewSEOSnapshot(competitorID, analysis)
}

func hostOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	return u.Hostname()
}
