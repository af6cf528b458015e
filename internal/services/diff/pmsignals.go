package diff

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rivalscope/rivalscope/internal/domain"
	"github.com/rivalscope/rivalscope/internal/services/extract"
)

// planLabelKeywords identify pricing plan headings
var planLabelKeywords = []string{
	"free", "starter", "basic", "pro", "plus", "premium", "business",
	"team", "growth", "scale", "enterprise", "custom",
}

// ComparePM runs the narrower PM-signal diff over the extracted signals of
// two consecutive snapshots. Each emitted change targets one
// product-manager-relevant field and carries a confidence level; the trait
// engine later collapses them into signal themes.
func ComparePM(before, after domain.PageSignals, pageType domain.PageType) []Detected {
	var out []Detected

	if pageType == domain.PageTypeHomepage {
		if d, ok := fieldChange(domain.SignalHeadline, pageType, before.Headline, after.Headline, domain.ConfidenceHigh,
			"Homepage headline changed from %q to %q"); ok {
			out = append(out, d)
		}
	}

	if d, ok := fieldChange(domain.SignalPrimaryCTA, pageType, before.PrimaryCTA().Text, after.PrimaryCTA().Text, domain.ConfidenceHigh,
		"Primary CTA changed from %q to %q"); ok {
		out = append(out, d)
	}

	if d, ok := setChange(domain.SignalNavLabels, pageType, navLabels(before), navLabels(after), domain.ConfidenceMedium,
		"Navigation labels changed"); ok {
		out = append(out, d)
	}

	if pageType == domain.PageTypePricing {
		beforeTokens := append(append([]string{}, before.PricingTokens...), planLabels(before)...)
		afterTokens := append(append([]string{}, after.PricingTokens...), planLabels(after)...)
		if d, ok := setChange(domain.SignalPricingStructure, pageType, beforeTokens, afterTokens, domain.ConfidenceHigh,
			"Pricing structure changed"); ok {
			out = append(out, d)
		}
	}

	if pageType == domain.PageTypeServices || pageType == domain.PageTypeProduct {
		if d, ok := setChange(domain.SignalSections, pageType, before.Headings, after.Headings, domain.ConfidenceMedium,
			"Product/service sections changed"); ok {
			out = append(out, d)
		}
	}

	if pageType == domain.PageTypeCaseStudies {
		beforeCount := socialProofCount(before)
		afterCount := socialProofCount(after)
		if beforeCount != afterCount {
			out = append(out, Detected{
				Type:    domain.ChangeTypeWebpageSignal,
				Summary: fmt.Sprintf("Social proof volume changed (%d -> %d mentions)", beforeCount, afterCount),
				Details: domain.WebpageSignalDetails{
					Signal:     domain.SignalSocialProof,
					PageType:   pageType,
					Before:     fmt.Sprintf("%d", beforeCount),
					After:      fmt.Sprintf("%d", afterCount),
					Confidence: domain.ConfidenceMedium,
				},
			})
		}
	}

	return out
}

func fieldChange(kind domain.WebpageSignalKind, pageType domain.PageType, before, after string, conf domain.Confidence, format string) (Detected, bool) {
	if extract.NormalizeText(before) == extract.NormalizeText(after) {
		return Detected{}, false
	}
	if before == "" && after == "" {
		return Detected{}, false
	}
	return Detected{
		Type:    domain.ChangeTypeWebpageSignal,
		Summary: fmt.Sprintf(format, before, after),
		Details: domain.WebpageSignalDetails{
			Signal:     kind,
			PageType:   pageType,
			Before:     before,
			After:      after,
			Confidence: conf,
		},
	}, true
}

func setChange(kind domain.WebpageSignalKind, pageType domain.PageType, before, after []string, conf domain.Confidence, summary string) (Detected, bool) {
	b := normalizedSet(before)
	a := normalizedSet(after)
	if b == a {
		return Detected{}, false
	}
	return Detected{
		Type:    domain.ChangeTypeWebpageSignal,
		Summary: summary,
		Details: domain.WebpageSignalDetails{
			Signal:     kind,
			PageType:   pageType,
			Before:     b,
			After:      a,
			Confidence: conf,
		},
	}, true
}

// normalizedSet renders a string set in canonical sorted form for stable
// before/after comparison and storage.
func normalizedSet(items []string) string {
	seen := map[string]bool{}
	var norm []string
	for _, s := range items {
		n := extract.NormalizeText(s)
		if n != "" && !seen[n] {
			seen[n] = true
			norm = append(norm, n)
		}
	}
	sort.Strings(norm)
	return strings.Join(norm, " | ")
}

func navLabels(s domain.PageSignals) []string {
	out := make([]string, 0, len(s.NavItems))
	for _, n := range s.NavItems {
		out = append(out, n.Text)
	}
	return out
}

// planLabels picks headings that look like pricing plan names
func planLabels(s domain.PageSignals) []string {
	var out []string
	for _, h := range s.Headings {
		norm := extract.NormalizeText(h)
		for _, kw := range planLabelKeywords {
			if strings.Contains(norm, kw) {
				out = append(out, h)
				break
			}
		}
	}
	return out
}

// socialProofCount counts case-study and logo mentions across alt text,
// headings and list items.
func socialProofCount(s domain.PageSignals) int {
	count := len(s.SEO.ImageAlts)
	for _, h := range s.Headings {
		norm := extract.NormalizeText(h)
		if strings.Contains(norm, "case stud") || strings.Contains(norm, "customer") || strings.Contains(norm, "success stor") {
			count++
		}
	}
	for _, li := range s.ListItems {
		norm := extract.NormalizeText(li)
		if strings.Contains(norm, "case stud") || strings.Contains(norm, "testimonial") {
			count++
		}
	}
	return count
}
