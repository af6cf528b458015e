// Package profile holds the two deterministic analyzers that run beside the
// intelligence report: the baseline company profile and the strategic
// dimension model. Both are pure transforms over aggregated page signals.
package profile

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/rivalscope/rivalscope/internal/domain"
	"github.com/rivalscope/rivalscope/internal/services/intel"
)

// BaselineProfile is the company identity and segmentation classification
type BaselineProfile struct {
	CompetitorID       string          `json:"competitor_id"`
	Industry           Classification  `json:"industry"`
	Segment            Classification  `json:"segment"`
	OfferingComplexity string          `json:"offering_complexity"` // simple, moderate, complex
	ValuePropTheme     Classification  `json:"value_prop_theme"`
	TrustIndicators    TrustIndicators `json:"trust_indicators"`
	GeneratedAt        time.Time       `json:"generated_at"`
}

// Classification is one keyword-scored label with its scoring trail
type Classification struct {
	Label      string            `json:"label"`
	Confidence domain.Confidence `json:"confidence"`
	Scores     map[string]int    `json:"scores,omitempty"`
}

// TrustIndicators summarizes visible credibility markers
type TrustIndicators struct {
	CaseStudyCount   int      `json:"case_study_count"`
	Certifications   []string `json:"certifications,omitempty"`
	HasLogoGrid      bool     `json:"has_logo_grid"`
	TestimonialCount int      `json:"testimonial_count"`
}

// Keyword vocabularies. Demo-quality lists; the scoring mechanism is the
// contract, the specific words are tunable.
var industryVocab = map[string][]string{
	"finance":       {"bank", "fintech", "payment", "lending", "trading", "insurance", "wealth"},
	"healthcare":    {"health", "clinical", "patient", "medical", "care", "pharma", "telehealth"},
	"retail":        {"retail", "ecommerce", "commerce", "store", "shopper", "merchandis", "checkout"},
	"manufacturing": {"manufactur", "factory", "supply chain", "logistics", "industrial", "warehouse"},
	"technology":    {"developer", "saas", "cloud", "api", "software", "platform", "infrastructure"},
}

var segmentVocab = map[string][]string{
	"enterprise": {"enterprise", "fortune 500", "sso", "sla", "compliance", "procurement", "dedicated support"},
	"mid-market": {"mid-market", "growing teams", "scale-up", "scaling", "department"},
	"smb":        {"small business", "smb", "startup", "freelancer", "solo", "affordable", "simple pricing"},
}

var valuePropVocab = map[string][]string{
	"efficiency":     {"faster", "automate", "save time", "streamline", "productivity"},
	"growth":         {"grow", "revenue", "scale", "convert", "pipeline"},
	"risk_reduction": {"secure", "compliance", "reliable", "protect", "audit"},
	"innovation":     {"ai", "intelligent", "next-generation", "modern", "cutting"},
	"cost":           {"save money", "reduce cost", "affordable", "roi", "lower"},
}

var (
	certificationRe  = regexp.MustCompile(`(?i)\b(soc ?2|iso ?27001|hipaa|gdpr|pci[- ]dss|fedramp)\b`)
	logoGridRe       = regexp.MustCompile(`(?i)(trusted by|our customers|used by teams at|powering)`)
	testimonialQuote = regexp.MustCompile(`[“"][^”"]{40,300}[”"]`)
)

// tieMargin is the minimum lead over the runner-up for high confidence
const tieMargin = 2

// BuildBaseline classifies a competitor's identity from raw signals. Pure
// and total; empty signals resolve every classification to "unknown".
func BuildBaseline(raw intel.RawSignals) BaselineProfile {
	corpus := signalCorpus(raw)

	return BaselineProfile{
		CompetitorID:       raw.CompetitorID,
		Industry:           scoreVocab(corpus, industryVocab),
		Segment:            scoreVocab(corpus, segmentVocab),
		OfferingComplexity: offeringComplexity(raw),
		ValuePropTheme:     scoreVocab(headlineCorpus(raw), valuePropVocab),
		TrustIndicators:    trustIndicators(raw),
		GeneratedAt:        time.Now().UTC(),
	}
}

// signalCorpus flattens headlines, headings and meta text into one
// lowercased string for keyword scoring.
func signalCorpus(raw intel.RawSignals) string {
	var parts []string
	for _, s := range raw.PageSignals {
		parts = append(parts, s.Headline, s.SEO.MetaDescription)
		parts = append(parts, s.Headings...)
		parts = append(parts, s.ListItems...)
	}
	return strings.ToLower(strings.Join(parts, " "))
}

func headlineCorpus(raw intel.RawSignals) string {
	var parts []string
	for _, s := range raw.PageSignals {
		parts = append(parts, s.Headline, s.SEO.MetaDescription)
	}
	return strings.ToLower(strings.Join(parts, " "))
}

// scoreVocab counts keyword hits per label. The winner takes the label; the
// margin over the runner-up sets confidence.
func scoreVocab(corpus string, vocab map[string][]string) Classification {
	c := Classification{Label: "unknown", Confidence: domain.ConfidenceLow}
	if strings.TrimSpace(corpus) == "" {
		return c
	}

	c.Scores = map[string]int{}
	best, bestScore, second := "", 0, 0
	for label, keywords := range vocab {
		score := 0
		for _, kw := range keywords {
			score += strings.Count(corpus, kw)
		}
		c.Scores[label] = score
		switch {
		case score > bestScore:
			second = bestScore
			best, bestScore = label, score
		case score > second:
			second = score
		}
	}

	if bestScore == 0 {
		return c
	}
	c.Label = best
	switch {
	case bestScore-second >= tieMargin && bestScore >= 3:
		c.Confidence = domain.ConfidenceHigh
	case bestScore > second:
		c.Confidence = domain.ConfidenceMedium
	default:
		c.Confidence = domain.ConfidenceLow
	}
	return c
}

func offeringComplexity(raw intel.RawSignals) string {
	count := 0
	for _, pt := range []domain.PageType{domain.PageTypeServices, domain.PageTypeProduct} {
		if s, ok := raw.PageSignals[pt]; ok {
			count += len(s.Headings)
		}
	}
	switch {
	case count == 0:
		return "unknown"
	case count >= 10:
		return "complex"
	case count >= 4:
		return "moderate"
	default:
		return "simple"
	}
}

func trustIndicators(raw intel.RawSignals) TrustIndicators {
	var ti TrustIndicators

	if cs, ok := raw.PageSignals[domain.PageTypeCaseStudies]; ok {
		ti.CaseStudyCount = len(cs.Headings) + len(cs.ListItems)
	}

	corpus := signalCorpus(raw)
	seen := map[string]bool{}
	for _, m := range certificationRe.FindAllString(corpus, -1) {
		norm := strings.ToUpper(strings.ReplaceAll(m, " ", ""))
		if !seen[norm] {
			seen[norm] = true
			ti.Certifications = append(ti.Certifications, norm)
		}
	}

	ti.HasLogoGrid = logoGridRe.MatchString(corpus)
	ti.TestimonialCount = len(testimonialQuote.FindAllString(corpus, -1))
	return ti
}

// Summary renders a one-line description for logs and events
func (p BaselineProfile) Summary() string {
	return fmt.Sprintf("%s / %s / %s offering", p.Industry.Label, p.Segment.Label, p.OfferingComplexity)
}
