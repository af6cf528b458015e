package crawler

import (
	"net/url"
	"strings"

	"github.com/rivalscope/rivalscope/internal/domain"
)

// Target is one page selected for crawling
type Target struct {
	URL      string
	PageType domain.PageType
}

// Candidate is one discovered link considered for selection
type Candidate struct {
	URL  string
	Text string
}

// typePriority is the fixed crawl order after the homepage. Earlier types
// carry more competitive signal per page budget slot.
var typePriority = []domain.PageType{
	domain.PageTypePricing,
	domain.PageTypeProduct,
	domain.PageTypeServices,
	domain.PageTypeCaseStudies,
	domain.PageTypeBlog,
	domain.PageTypeAbout,
	domain.PageTypeDocs,
	domain.PageTypeContact,
	domain.PageTypeCareers,
}

// typeKeywords classifies a link by its text and path segments
var typeKeywords = map[domain.PageType][]string{
	domain.PageTypePricing:     {"pricing", "plans", "price"},
	domain.PageTypeProduct:     {"product", "features", "platform", "use-cases", "use cases", "solutions"},
	domain.PageTypeServices:    {"services", "what-we-do", "what we do", "capabilities", "offerings"},
	domain.PageTypeCaseStudies: {"case-studies", "case studies", "customers", "success-stories", "success stories", "testimonials"},
	domain.PageTypeBlog:        {"blog", "articles", "insights", "resources", "news"},
	domain.PageTypeAbout:       {"about", "company", "team", "who-we-are"},
	domain.PageTypeDocs:        {"docs", "documentation", "developers", "api-reference"},
	domain.PageTypeContact:     {"contact", "get-in-touch", "talk-to-us"},
	domain.PageTypeCareers:     {"careers", "jobs", "join-us", "hiring"},
}

// contentPathPatterns match long-form content URLs kept for SEO coverage
var contentPathPatterns = []string{"/blog/", "/case-studies/", "/articles/", "/resources/", "/insights/", "/docs/"}

// mandatoryPaths are probed when the link graph never surfaced a type. The
// fetch executor tolerates the resulting 404s.
var mandatoryPaths = map[domain.PageType][]string{
	domain.PageTypePricing: {"/pricing", "/plans"},
	domain.PageTypeProduct: {"/product", "/features"},
	domain.PageTypeAbout:   {"/about"},
}

const maxContentTargets = 3

// ClassifyLink assigns a page type from link text and URL path. Text wins
// over path when both match different types.
func ClassifyLink(linkURL, text string) domain.PageType {
	needle := strings.ToLower(text)
	path := ""
	if u, err := url.Parse(linkURL); err == nil {
		path = strings.ToLower(u.Path)
	}

	for _, pt := range typePriority {
		for _, kw := range typeKeywords[pt] {
			if strings.Contains(needle, kw) {
				return pt
			}
		}
	}
	for _, pt := range typePriority {
		for _, kw := range typeKeywords[pt] {
			if strings.Contains(path, strings.ReplaceAll(kw, " ", "-")) {
				return pt
			}
		}
	}
	return domain.PageTypeOther
}

// SelectTargets picks up to maxPages pages from the homepage's discovered
// links. The homepage is always first; each page type appears at most once;
// remaining slots go to content paths and then unprobed mandatory paths.
// Selection is deterministic for a fixed candidate order.
func SelectTargets(homepageURL string, candidates []Candidate, maxPages int) []Target {
	targets := []Target{{URL: normalizeTargetURL(homepageURL), PageType: domain.PageTypeHomepage}}
	selectedURLs := map[string]bool{targets[0].URL: true}
	selectedTypes := map[domain.PageType]bool{domain.PageTypeHomepage: true}

	// first-seen URL per classified type, preserving candidate order
	byType := map[domain.PageType]string{}
	for _, c := range candidates {
		u := normalizeTargetURL(c.URL)
		if u == "" || selectedURLs[u] {
			continue
		}
		pt := ClassifyLink(u, c.Text)
		if pt == domain.PageTypeOther {
			continue
		}
		if _, seen := byType[pt]; !seen {
			byType[pt] = u
		}
	}

	for _, pt := range typePriority {
		if len(targets) >= maxPages {
			return targets
		}
		u, ok := byType[pt]
		if !ok || selectedURLs[u] {
			continue
		}
		targets = append(targets, Target{URL: u, PageType: pt})
		selectedURLs[u] = true
		selectedTypes[pt] = true
	}

	contentAdded := 0
	for _, c := range candidates {
		if len(targets) >= maxPages || contentAdded >= maxContentTargets {
			break
		}
		u := normalizeTargetURL(c.URL)
		if u == "" || selectedURLs[u] || !isContentPath(u) {
			continue
		}
		pt := ClassifyLink(u, c.Text)
		if pt == domain.PageTypeOther {
			pt = domain.PageTypeBlog
		}
		targets = append(targets, Target{URL: u, PageType: pt})
		selectedURLs[u] = true
		contentAdded++
	}

	base, err := url.Parse(homepageURL)
	if err != nil {
		return targets
	}
	for _, pt := range typePriority {
		if len(targets) >= maxPages {
			break
		}
		if selectedTypes[pt] {
			continue
		}
		for _, path := range mandatoryPaths[pt] {
			u := normalizeTargetURL(base.Scheme + "://" + base.Host + path)
			if selectedURLs[u] {
				continue
			}
			targets = append(targets, Target{URL: u, PageType: pt})
			selectedURLs[u] = true
			selectedTypes[pt] = true
			break
		}
	}

	return targets
}

func isContentPath(u string) bool {
	lower := strings.ToLower(u)
	for _, p := range contentPathPatterns {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

// normalizeTargetURL strips fragments and queries and trailing slashes so
// the same page never occupies two budget slots.
func normalizeTargetURL(raw string) string {
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Host == "" {
		return ""
	}
	parsed.Fragment = ""
	parsed.RawQuery = ""
	return strings.TrimSuffix(parsed.String(), "/")
}
