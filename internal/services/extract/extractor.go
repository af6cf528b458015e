// Package extract pulls structured signals out of rendered competitor
// pages. Everything here is a pure function over raw HTML plus the page
// URL; the crawler and the deterministic engines share its output through
// domain.PageSignals.
package extract

import (
	"net/url"
	"regexp"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/net/html"

	"github.com/rivalscope/rivalscope/internal/domain"
)

const (
	maxHeadings  = 40
	maxListItems = 60
	maxNavItems  = 20
	maxCTAs      = 5
	maxAnchors   = 50
	maxImageAlts = 30
)

// ctaKeywords score anchor/button text as call-to-action candidates
var ctaKeywords = []string{
	"get started", "sign up", "signup", "start free", "free trial", "try",
	"demo", "book a", "contact sales", "talk to", "buy", "subscribe",
	"request", "join", "download", "get a quote",
}

var (
	pricingTokenRe = regexp.MustCompile(`[$€£]\s?\d+(?:[.,]\d+)?`)
	datetimeLayout = "2006-01-02"
)

// Extract builds the structured signal record for a page. It never fails:
// unreadable input yields empty signals with a stable content hash.
func Extract(src, pageURL string) domain.PageSignals {
	signals := domain.PageSignals{ContentHash: ContentHash(src)}

	doc, err := parseHTML(src)
	if err != nil || doc == nil {
		return signals
	}

	base, _ := url.Parse(pageURL)

	var (
		headings    []string
		headingSeen = map[string]bool{}
		listItems   []string
		anchorIdx   int
		ctas        []ctaCandidate
		ctaSeen     = map[string]bool{}
	)

	walk(doc, func(n *html.Node) bool {
		if n.Type != html.ElementNode {
			return true
		}
		switch n.Data {
		case "h1":
			if signals.Headline == "" {
				signals.Headline = nodeText(n)
			}
		case "h2", "h3":
			text := nodeText(n)
			key := NormalizeText(text)
			if text != "" && !headingSeen[key] && len(headings) < maxHeadings {
				headingSeen[key] = true
				headings = append(headings, text)
			}
		case "li":
			if text := nodeText(n); text != "" && len(listItems) < maxListItems {
				listItems = append(listItems, Truncate(text, 120))
			}
		case "a":
			anchorIdx++
			text := nodeText(n)
			href := resolveHref(base, attr(n, "href"))
			if text == "" || href == "" {
				return true
			}
			switch {
			case hasAncestor(n, "nav", "header"):
				if sameOrigin(base, href) && len(signals.NavItems) < maxNavItems {
					signals.NavItems = append(signals.NavItems, domain.NavItem{Text: text, Href: href})
				}
			case hasAncestor(n, "footer"):
				signals.FooterLinks = append(signals.FooterLinks, domain.NavItem{Text: text, Href: href})
			}
			if c, ok := scoreCTA(text, href, base, anchorIdx, hasAncestor(n, "header", "nav")); ok {
				key := NormalizeText(text)
				if !ctaSeen[key] {
					ctaSeen[key] = true
					ctas = append(ctas, c)
				}
			}
			if sameOrigin(base, href) && len(signals.SEO.AnchorTexts) < maxAnchors {
				signals.SEO.AnchorTexts = append(signals.SEO.AnchorTexts, text)
			}
		case "button":
			anchorIdx++
			if c, ok := scoreCTA(nodeText(n), pageURL, base, anchorIdx, hasAncestor(n, "header", "nav")); ok {
				key := NormalizeText(c.cta.Text)
				if !ctaSeen[key] {
					ctaSeen[key] = true
					ctas = append(ctas, c)
				}
			}
		case "img":
			if alt := strings.TrimSpace(attr(n, "alt")); alt != "" && len(signals.SEO.ImageAlts) < maxImageAlts {
				signals.SEO.ImageAlts = append(signals.SEO.ImageAlts, alt)
			}
		case "meta":
			extractMeta(n, &signals)
		case "time":
			if signals.SEO.PublishedAt == nil {
				if ts := parseDatetime(attr(n, "datetime")); ts != nil {
					signals.SEO.PublishedAt = ts
				}
			}
		}
		return true
	})

	signals.Headings = headings
	signals.ListItems = listItems
	signals.CTAs = topCTAs(ctas)
	signals.PricingTokens = pricingTokens(nodeText(doc))
	if base != nil {
		signals.SEO.Slug = strings.Trim(base.Path, "/")
	}
	signals.SEO.WordCount = len(strings.Fields(VisibleText(src)))

	if signals.Headline == "" {
		signals.Headline = signals.SEO.MetaDescription
	}

	return signals
}

type ctaCandidate struct {
	cta   domain.CTA
	order int
}

// scoreCTA scores a candidate by keyword match, position and text length.
// Same-origin candidates only; off-site anchors are never CTAs.
func scoreCTA(text, href string, base *url.URL, order int, inHeader bool) (ctaCandidate, bool) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" || len(trimmed) > 60 || !sameOrigin(base, href) {
		return ctaCandidate{}, false
	}
	norm := NormalizeText(trimmed)

	score := 0
	for _, kw := range ctaKeywords {
		if strings.Contains(norm, kw) {
			score += 3
			break
		}
	}
	if inHeader || order <= 20 {
		score += 2
	}
	if len(trimmed) <= 30 {
		score++
	}
	if score < 3 {
		return ctaCandidate{}, false
	}
	return ctaCandidate{cta: domain.CTA{Text: trimmed, Href: href, Score: score}, order: order}, true
}

// topCTAs orders candidates by score, then document order, and caps the
// result. The ordering must be total so extraction stays deterministic.
func topCTAs(candidates []ctaCandidate) []domain.CTA {
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].cta.Score != candidates[j].cta.Score {
			return candidates[i].cta.Score > candidates[j].cta.Score
		}
		return candidates[i].order < candidates[j].order
	})
	if len(candidates) > maxCTAs {
		candidates = candidates[:maxCTAs]
	}
	out := make([]domain.CTA, len(candidates))
	for i, c := range candidates {
		out[i] = c.cta
	}
	return out
}

func extractMeta(n *html.Node, signals *domain.PageSignals) {
	name := attr(n, "name")
	property := attr(n, "property")
	content := strings.TrimSpace(attr(n, "content"))
	if content == "" {
		return
	}
	switch {
	case name == "description":
		signals.SEO.MetaDescription = content
	case property == "og:title" && signals.Headline == "":
		signals.Headline = content
	case property == "article:published_time" && signals.SEO.PublishedAt == nil:
		signals.SEO.PublishedAt = parseDatetime(content)
	}
}

// pricingTokens extracts currency-prefixed numbers in document order,
// deduplicated.
func pricingTokens(text string) []string {
	matches := pricingTokenRe.FindAllString(text, -1)
	seen := map[string]bool{}
	var out []string
	for _, m := range matches {
		m = strings.ReplaceAll(m, " ", "")
		if !seen[m] {
			seen[m] = true
			out = append(out, m)
		}
	}
	return out
}

func parseDatetime(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return &ts
	}
	if len(s) >= len(datetimeLayout) {
		if ts, err := time.Parse(datetimeLayout, s[:len(datetimeLayout)]); err == nil {
			return &ts
		}
	}
	return nil
}

// resolveHref resolves href against the page URL and strips fragments.
// Returns "" for anchors that cannot navigate anywhere.
func resolveHref(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") ||
		strings.HasPrefix(href, "javascript:") || strings.HasPrefix(href, "mailto:") {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if base != nil {
		ref = base.ResolveReference(ref)
	}
	ref.Fragment = ""
	return strings.TrimSuffix(ref.String(), "/")
}

func sameOrigin(base *url.URL, absHref string) bool {
	if base == nil {
		return false
	}
	u, err := url.Parse(absHref)
	if err != nil {
		return false
	}
	return u.Host == "" || strings.EqualFold(u.Host, base.Host)
}

// Truncate caps s at n bytes without splitting a multi-byte rune, so the
// result is always valid UTF-8.
func Truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
