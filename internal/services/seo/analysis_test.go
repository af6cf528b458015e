package seo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rivalscope/rivalscope/internal/domain"
)

func TestBuildClusters(t *testing.T) {
	profile := KeywordProfile{Keywords: []Keyword{
		{Term: "workflow automation", Frequency: 4, Pages: 2}, // 8
		{Term: "automated pipelines", Frequency: 2, Pages: 1}, // 2
		{Term: "security audit", Frequency: 1, Pages: 1},      // 1
		{Term: "quarterly report", Frequency: 1, Pages: 1},    // 1
	}}

	clusters := BuildClusters(profile)
	require.NotEmpty(t, clusters)

	byName := map[string]TopicCluster{}
	for _, c := range clusters {
		byName[c.Name] = c
	}

	automation, ok := byName["automation"]
	require.True(t, ok)
	assert.Equal(t, 10, automation.Weight)
	assert.Equal(t, []string{"automated pipelines", "workflow automation"}, automation.Keywords)

	security, ok := byName["security"]
	require.True(t, ok)
	assert.Equal(t, 1, security.Weight)

	// Ordered by weight descending.
	assert.Equal(t, "automation", clusters[0].Name)
}

func TestContainsWordStem(t *testing.T) {
	assert.True(t, containsWordStem("workflow automation", "automat"))
	assert.True(t, containsWordStem("automated pipelines", "pipeline"))
	assert.False(t, containsWordStem("information desk", "format"), "stems match word starts only")
}

func TestClassifyFunnel(t *testing.T) {
	tests := []struct {
		title string
		want  FunnelStage
	}{
		{"Acme vs Globex comparison", FunnelBottom},
		{"Pricing that scales", FunnelBottom},
		{"Customer story: Initech", FunnelMid},
		{"What is workflow automation", FunnelTop},
		{"Release notes", FunnelUnknown},
	}
	for _, tt := range tests {
		stage := ClassifyFunnel(PageInput{PageType: domain.PageTypeBlog, Title: tt.title})
		assert.Equal(t, tt.want, stage, tt.title)
	}
}

func TestClassifyFunnel_BottomWinsOverTop(t *testing.T) {
	p := PageInput{Title: "What is Acme? Book a demo"}
	assert.Equal(t, FunnelBottom, ClassifyFunnel(p))
}

func TestBuildFunnelBalance_ContentPagesOnly(t *testing.T) {
	pages := []PageInput{
		{PageType: domain.PageTypeBlog, Title: "What is automation"},
		{PageType: domain.PageTypeBlog, Title: "Acme vs Globex"},
		{PageType: domain.PageTypeCaseStudies, Title: "Customer story: Initech"},
		{PageType: domain.PageTypePricing, Title: "Pricing"}, // not content
		{PageType: domain.PageTypeBlog, Title: "Release notes"},
	}

	fb := BuildFunnelBalance(pages)
	assert.Equal(t, 1, fb.Top)
	assert.Equal(t, 1, fb.Mid)
	assert.Equal(t, 1, fb.Bottom)
	assert.Equal(t, 1, fb.Unknown)
	assert.Equal(t, 3, fb.Total())
}

func TestFunnelBalance_IsImbalanced(t *testing.T) {
	_, ok := FunnelBalance{Top: 2}.IsImbalanced()
	assert.False(t, ok, "needs at least three classified pages")

	stage, ok := FunnelBalance{Top: 4, Mid: 1}.IsImbalanced()
	assert.True(t, ok)
	assert.Equal(t, FunnelTop, stage)

	_, ok = FunnelBalance{Top: 2, Mid: 2, Bottom: 1}.IsImbalanced()
	assert.False(t, ok)
}

func datedPage(title string, words int, published time.Time) PageInput {
	return PageInput{
		PageType: domain.PageTypeBlog,
		Title:    title,
		Signals: domain.PageSignals{
			SEO: domain.SEOFields{WordCount: words, PublishedAt: &published},
		},
	}
}

func TestBuildContentDepth(t *testing.T) {
	start := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	pages := []PageInput{
		datedPage("a", 1500, start),
		datedPage("b", 500, start.AddDate(0, 0, 10)),
		{PageType: domain.PageTypeHomepage, Signals: domain.PageSignals{SEO: domain.SEOFields{WordCount: 9000}}},
	}

	d := BuildContentDepth(pages)

	assert.Equal(t, 2, d.ContentPageCount)
	assert.Equal(t, 1000, d.AvgWordCount)
	assert.InDelta(t, 0.5, d.LongFormRatio, 0.001)
	assert.InDelta(t, 10.0, d.CadenceDays, 0.001)

	// 2 pages*10 + 1000/50=20 + 0.5*20=10 + cadence<=30 -> 10.
	assert.Equal(t, 60, d.InvestmentScore)
}

func TestBuildContentDepth_NoContentPages(t *testing.T) {
	d := BuildContentDepth([]PageInput{
		{PageType: domain.PageTypeHomepage, Signals: domain.PageSignals{SEO: domain.SEOFields{WordCount: 800}}},
	})

	assert.Equal(t, 0, d.ContentPageCount)
	assert.Equal(t, 0, d.InvestmentScore)
}

func TestCompareGap(t *testing.T) {
	target := Analysis{
		Domain: "acme.com",
		Keywords: KeywordProfile{Keywords: []Keyword{
			{Term: "workflow", Frequency: 5, Pages: 2},
		}},
		Clusters: []TopicCluster{{Name: "automation", Weight: 10}},
		Funnel:   FunnelBalance{Top: 2},
	}
	peer := Analysis{
		Domain: "globex.com",
		Keywords: KeywordProfile{Keywords: []Keyword{
			{Term: "security automation", Frequency: 4, Pages: 2}, // weight 8
			{Term: "workflow", Frequency: 3, Pages: 2},            // weight 6, shared
			{Term: "niche term", Frequency: 1, Pages: 1},          // below the weight floor
		}},
		Clusters: []TopicCluster{
			{Name: "automation", Weight: 8},
			{Name: "security", Weight: 6},
		},
		Funnel: FunnelBalance{Top: 3, Bottom: 2},
	}

	gap := CompareGap(target, peer)

	assert.Equal(t, "acme.com", gap.TargetDomain)
	assert.Equal(t, "globex.com", gap.PeerDomain)

	require.Len(t, gap.MissingKeywords, 1)
	assert.Equal(t, "security automation", gap.MissingKeywords[0].Term)

	require.Len(t, gap.MissingClusters, 1)
	assert.Equal(t, "security", gap.MissingClusters[0].Name)

	require.NotNil(t, gap.FunnelGap)
	assert.Equal(t, FunnelBottom, gap.FunnelGap.Stage)
	assert.Equal(t, 2, gap.FunnelGap.PeerPages)
}

func TestCompareGap_NoGaps(t *testing.T) {
	a := Analysis{
		Domain:   "acme.com",
		Keywords: KeywordProfile{Keywords: []Keyword{{Term: "workflow", Frequency: 5, Pages: 2}}},
		Clusters: []TopicCluster{{Name: "automation", Weight: 10}},
		Funnel:   FunnelBalance{Top: 1, Mid: 1, Bottom: 1},
	}

	gap := CompareGap(a, a)
	assert.Empty(t, gap.MissingKeywords)
	assert.Empty(t, gap.MissingClusters)
	assert.Nil(t, gap.FunnelGap)
}

func TestBuildDimensions(t *testing.T) {
	profile := KeywordProfile{Keywords: []Keyword{
		{Term: "bank automation", Frequency: 4, Pages: 2},
		{Term: "workflow", Frequency: 2, Pages: 1},
	}}
	clusters := []TopicCluster{
		{Name: "automation", Weight: 8},
		{Name: "analytics", Weight: 2},
	}
	fb := FunnelBalance{Top: 1, Mid: 1, Bottom: 1}
	depth := ContentDepth{InvestmentScore: 55}

	dims := BuildDimensions(profile, clusters, fb, depth, 3)

	require.Len(t, dims, len(SEODims))
	assert.Equal(t, 80, dims[DimTopicConcentration])
	assert.Equal(t, 55, dims[DimContentIntensity])
	assert.Equal(t, 36, dims[DimMomentum])
	for _, dim := range SEODims {
		v := dims[dim]
		assert.GreaterOrEqual(t, v, 0, dim)
		assert.LessOrEqual(t, v, 100, dim)
	}
}

func TestAnalyze_Deterministic(t *testing.T) {
	pages := []PageInput{
		{PageType: domain.PageTypeHomepage, URL: "https://acme.com/", Title: "Workflow automation platform",
			Signals: domain.PageSignals{Headline: "Automate everything", ContentHash: "h1"}},
		{PageType: domain.PageTypeBlog, URL: "https://acme.com/blog", Title: "What is workflow automation",
			Signals: domain.PageSignals{SEO: domain.SEOFields{WordCount: 900}, ContentHash: "h2"}},
	}

	first := Analyze("comp-1", "acme.com", pages, 2)
	second := Analyze("comp-1", "acme.com", pages, 2)

	first.GeneratedAt = second.GeneratedAt
	assert.Equal(t, first, second)
	assert.Equal(t, "acme.com", first.Domain)
	assert.NotEmpty(t, first.Keywords.Keywords)
}
