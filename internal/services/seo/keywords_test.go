package seo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rivalscope/rivalscope/internal/domain"
)

func TestNgrams(t *testing.T) {
	grams := ngrams("The workflow automation guide")

	assert.Contains(t, grams, "workflow")
	assert.Contains(t, grams, "automation")
	assert.Contains(t, grams, "workflow automation")
	assert.Contains(t, grams, "workflow automation guide")

	// Grams never start or end on a stopword.
	assert.NotContains(t, grams, "the")
	assert.NotContains(t, grams, "the workflow")
	for _, g := range grams {
		assert.GreaterOrEqual(t, len(g), minTermLength)
	}
}

func TestNgrams_Empty(t *testing.T) {
	assert.Empty(t, ngrams(""))
	assert.Empty(t, ngrams("the and of"))
}

func TestBuildKeywordProfile(t *testing.T) {
	pages := []PageInput{
		{
			PageType: domain.PageTypeHomepage,
			URL:      "https://acme.com/",
			Title:    "Acme workflow automation",
			Signals: domain.PageSignals{
				Headline:    "Workflow automation for teams",
				ContentHash: "h1",
			},
		},
		{
			PageType: domain.PageTypeBlog,
			URL:      "https://acme.com/blog",
			Title:    "Workflow tips",
			Signals:  domain.PageSignals{ContentHash: "h2"},
		},
	}

	profile := BuildKeywordProfile("acme.com", pages)

	require.NotEmpty(t, profile.Keywords)
	assert.Equal(t, "acme.com", profile.Domain)
	assert.True(t, profile.Has("workflow"))
	assert.True(t, profile.Has("workflow automation"))

	var workflow Keyword
	for _, k := range profile.Keywords {
		if k.Term == "workflow" {
			workflow = k
		}
	}
	assert.Equal(t, 3, workflow.Frequency)
	assert.Equal(t, 2, workflow.Pages)
	assert.True(t, workflow.InH1, "headline terms carry the h1 flag")

	// Weight ordering is monotonically non-increasing.
	for i := 1; i < len(profile.Keywords); i++ {
		assert.GreaterOrEqual(t, profile.Keywords[i-1].Weight(), profile.Keywords[i].Weight())
	}
}

func TestBuildKeywordProfile_Deterministic(t *testing.T) {
	pages := []PageInput{
		{URL: "https://acme.com/", Title: "Workflow automation platform", Signals: domain.PageSignals{ContentHash: "h1"}},
		{URL: "https://acme.com/blog", Title: "Analytics dashboard guide", Signals: domain.PageSignals{ContentHash: "h2"}},
	}

	first := BuildKeywordProfile("acme.com", pages)
	second := BuildKeywordProfile("acme.com", pages)
	assert.Equal(t, first, second)
}

func TestKeywordWeight(t *testing.T) {
	assert.Equal(t, 6, Keyword{Term: "x", Frequency: 3, Pages: 2}.Weight())
	assert.Equal(t, 12, Keyword{Term: "x", Frequency: 3, Pages: 2, InH1: true}.Weight())
}

func TestCacheKey_ChangesWithContent(t *testing.T) {
	pages := []PageInput{{URL: "https://acme.com/", Signals: domain.PageSignals{ContentHash: "aaa"}}}
	changed := []PageInput{{URL: "https://acme.com/", Signals: domain.PageSignals{ContentHash: "bbb"}}}

	assert.Equal(t, cacheKey("acme.com", pages), cacheKey("acme.com", pages))
	assert.NotEqual(t, cacheKey("acme.com", pages), cacheKey("acme.com", changed))
	assert.NotEqual(t, cacheKey("acme.com", pages), cacheKey("other.com", pages))
}

func TestCacheKey_OrderInsensitive(t *testing.T) {
	a := []PageInput{
		{URL: "https://acme.com/", Signals: domain.PageSignals{ContentHash: "aaa"}},
		{URL: "https://acme.com/blog", Signals: domain.PageSignals{ContentHash: "bbb"}},
	}
	b := []PageInput{a[1], a[0]}

	assert.Equal(t, cacheKey("acme.com", a), cacheKey("acme.com", b))
}

func TestProfileTop(t *testing.T) {
	profile := KeywordProfile{Keywords: []Keyword{
		{Term: "a", Frequency: 5, Pages: 1},
		{Term: "b", Frequency: 2, Pages: 1},
	}}

	assert.Len(t, profile.Top(1), 1)
	assert.Len(t, profile.Top(10), 2)
	assert.Equal(t, "a", profile.Top(1)[0].Term)
}
