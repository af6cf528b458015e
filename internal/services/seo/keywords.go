// Package seo analyzes a competitor's search posture from stored page
// snapshots: keyword profiles, topic clusters, funnel balance, content
// investment and a six-dimension score, plus gap analysis against a peer.
// All stages are deterministic transforms over the snapshot signals.
package seo

import (
	"regexp"
	"sort"
	"strings"

	"github.com/rivalscope/rivalscope/internal/domain"
	"github.com/rivalscope/rivalscope/pkg/stablehash"
)

// PageInput is one page's SEO-relevant slice of a snapshot
type PageInput struct {
	PageType domain.PageType
	URL      string
	Title    string
	Signals  domain.PageSignals
}

// Keyword is one scored n-gram
type Keyword struct {
	Term      string `json:"term"`
	Frequency int    `json:"frequency"`
	Pages     int    `json:"pages"`
	InH1      bool   `json:"in_h1"`
}

// Weight is the cluster-matching weight: frequency scaled by page spread,
// with a bonus when the term appears in a headline.
func (k Keyword) Weight() int {
	w := k.Frequency * k.Pages
	if k.InH1 {
		w *= 2
	}
	return w
}

// KeywordProfile is the full n-gram frequency profile for one domain
type KeywordProfile struct {
	Domain   string    `json:"domain"`
	CacheKey string    `json:"cache_key"`
	Keywords []Keyword `json:"keywords"`
}

// Top returns up to n keywords ordered by weight then term
func (p KeywordProfile) Top(n int) []Keyword {
	if n > len(p.Keywords) {
		n = len(p.Keywords)
	}
	return p.Keywords[:n]
}

// Has reports whether the profile contains a term
func (p KeywordProfile) Has(term string) bool {
	for _, k := range p.Keywords {
		if k.Term == term {
			return true
		}
	}
	return false
}

var stopwords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true, "of": true,
	"to": true, "in": true, "for": true, "with": true, "on": true, "at": true,
	"is": true, "are": true, "your": true, "our": true, "you": true, "we": true,
	"by": true, "from": true, "it": true, "that": true, "this": true, "as": true,
	"be": true, "can": true, "how": true, "what": true, "all": true, "more": true,
}

var wordRe = regexp.MustCompile(`[a-z0-9][a-z0-9'-]*`)

const (
	maxNGram       = 3
	minTermLength  = 3
	maxProfileSize = 200
)

// BuildKeywordProfile extracts 1-3 gram frequencies from titles, headings
// and anchor texts across the pages. The cache key is a stable hash of the
// domain plus every page's content hash, so any content change produces a
// distinct key.
func BuildKeywordProfile(siteDomain string, pages []PageInput) KeywordProfile {
	type stat struct {
		freq  int
		pages map[string]bool
		inH1  bool
	}
	stats := map[string]*stat{}

	record := func(term, pageURL string, h1 bool) {
		s, ok := stats[term]
		if !ok {
			s = &stat{pages: map[string]bool{}}
			stats[term] = s
		}
		s.freq++
		s.pages[pageURL] = true
		if h1 {
			s.inH1 = true
		}
	}

	for _, p := range pages {
		for _, gram := range ngrams(p.Title) {
			record(gram, p.URL, false)
		}
		for _, gram := range ngrams(p.Signals.Headline) {
			record(gram, p.URL, true)
		}
		for _, h := range p.Signals.Headings {
			for _, gram := range ngrams(h) {
				record(gram, p.URL, false)
			}
		}
		for _, a := range p.Signals.SEO.AnchorTexts {
			for _, gram := range ngrams(a) {
				record(gram, p.URL, false)
			}
		}
	}

	profile := KeywordProfile{Domain: siteDomain, CacheKey: cacheKey(siteDomain, pages)}
	for term, s := range stats {
		profile.Keywords = append(profile.Keywords, Keyword{
			Term:      term,
			Frequency: s.freq,
			Pages:     len(s.pages),
			InH1:      s.inH1,
		})
	}
	sort.Slice(profile.Keywords, func(i, j int) bool {
		a, b := profile.Keywords[i], profile.Keywords[j]
		if a.Weight() != b.Weight() {
			return a.Weight() > b.Weight()
		}
		return a.Term < b.Term
	})
	if len(profile.Keywords) > maxProfileSize {
		profile.Keywords = profile.Keywords[:maxProfileSize]
	}
	return profile
}

// ngrams tokenizes text and emits 1-3 grams, dropping stopword unigrams and
// grams that start or end on a stopword.
func ngrams(text string) []string {
	words := wordRe.FindAllString(strings.ToLower(text), -1)
	var out []string
	for n := 1; n <= maxNGram; n++ {
		for i := 0; i+n <= len(words); i++ {
			gram := words[i : i+n]
			if stopwords[gram[0]] || stopwords[gram[n-1]] {
				continue
			}
			term := strings.Join(gram, " ")
			if len(term) < minTermLength {
				continue
			}
			out = append(out, term)
		}
	}
	return out
}

func cacheKey(siteDomain string, pages []PageInput) string {
	parts := []string{siteDomain}
	hashes := make([]string, 0, len(pages))
	for _, p := range pages {
		hashes = append(hashes, p.Signals.ContentHash)
	}
	sort.Strings(hashes)
	return stablehash.Key(append(parts, hashes...)...)
}
