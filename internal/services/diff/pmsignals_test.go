package diff

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rivalscope/rivalscope/internal/domain"
)

func signalsOf(out []Detected) map[domain.WebpageSignalKind]domain.WebpageSignalDetails {
	m := map[domain.WebpageSignalKind]domain.WebpageSignalDetails{}
	for _, d := range out {
		if det, ok := d.Details.(domain.WebpageSignalDetails); ok {
			m[det.Signal] = det
		}
	}
	return m
}

func TestComparePM_HeadlineOnlyOnHomepage(t *testing.T) {
	before := domain.PageSignals{Headline: "Ship faster"}
	after := domain.PageSignals{Headline: "Ship smarter"}

	out := ComparePM(before, after, domain.PageTypeHomepage)
	signals := signalsOf(out)
	require.Contains(t, signals, domain.SignalHeadline)
	assert.Equal(t, "Ship faster", signals[domain.SignalHeadline].Before)
	assert.Equal(t, "Ship smarter", signals[domain.SignalHeadline].After)
	assert.Equal(t, domain.ConfidenceHigh, signals[domain.SignalHeadline].Confidence)

	out = ComparePM(before, after, domain.PageTypeAbout)
	assert.NotContains(t, signalsOf(out), domain.SignalHeadline)
}

func TestComparePM_PrimaryCTA(t *testing.T) {
	before := domain.PageSignals{CTAs: []domain.CTA{{Text: "Get Started", Href: "/signup", Score: 6}}}
	after := domain.PageSignals{CTAs: []domain.CTA{{Text: "Book a Demo", Href: "/demo", Score: 6}}}

	out := ComparePM(before, after, domain.PageTypeHomepage)
	signals := signalsOf(out)
	require.Contains(t, signals, domain.SignalPrimaryCTA)
	assert.Equal(t, "Get Started", signals[domain.SignalPrimaryCTA].Before)
	assert.Equal(t, "Book a Demo", signals[domain.SignalPrimaryCTA].After)
}

func TestComparePM_NoChangesOnEqualSignals(t *testing.T) {
	s := domain.PageSignals{
		Headline: "Same",
		CTAs:     []domain.CTA{{Text: "Try", Href: "/try"}},
		NavItems: []domain.NavItem{{Text: "Product", Href: "/product"}},
	}
	assert.Empty(t, ComparePM(s, s, domain.PageTypeHomepage))
}

func TestComparePM_NavLabelsIgnoreOrderAndCase(t *testing.T) {
	before := domain.PageSignals{NavItems: []domain.NavItem{
		{Text: "Product", Href: "/product"},
		{Text: "Pricing", Href: "/pricing"},
	}}
	reordered := domain.PageSignals{NavItems: []domain.NavItem{
		{Text: "PRICING", Href: "/pricing"},
		{Text: "product", Href: "/product"},
	}}
	changed := domain.PageSignals{NavItems: []domain.NavItem{
		{Text: "Product", Href: "/product"},
		{Text: "Platform", Href: "/platform"},
	}}

	assert.Empty(t, ComparePM(before, reordered, domain.PageTypeHomepage))

	out := ComparePM(before, changed, domain.PageTypeHomepage)
	require.Contains(t, signalsOf(out), domain.SignalNavLabels)
}

func TestComparePM_PricingStructure(t *testing.T) {
	before := domain.PageSignals{
		PricingTokens: []string{"$29", "$99"},
		Headings:      []string{"Starter", "Pro"},
	}
	after := domain.PageSignals{
		PricingTokens: []string{"$29", "$99", "$249"},
		Headings:      []string{"Starter", "Pro", "Enterprise"},
	}

	out := ComparePM(before, after, domain.PageTypePricing)
	signals := signalsOf(out)
	require.Contains(t, signals, domain.SignalPricingStructure)
	assert.Equal(t, domain.ConfidenceHigh, signals[domain.SignalPricingStructure].Confidence)

	// Pricing structure is only compared on the pricing page.
	out = ComparePM(before, after, domain.PageTypeHomepage)
	assert.NotContains(t, signalsOf(out), domain.SignalPricingStructure)
}

func TestComparePM_SectionsOnProductPages(t *testing.T) {
	before := domain.PageSignals{Headings: []string{"Automation", "Reporting"}}
	after := domain.PageSignals{Headings: []string{"Automation", "Reporting", "Forecasting"}}

	out := ComparePM(before, after, domain.PageTypeServices)
	require.Contains(t, signalsOf(out), domain.SignalSections)

	out = ComparePM(before, after, domain.PageTypeBlog)
	assert.NotContains(t, signalsOf(out), domain.SignalSections)
}

func TestComparePM_SocialProofVolume(t *testing.T) {
	before := domain.PageSignals{SEO: domain.SEOFields{ImageAlts: []string{"Acme logo"}}}
	after := domain.PageSignals{
		SEO:      domain.SEOFields{ImageAlts: []string{"Acme logo", "Globex logo"}},
		Headings: []string{"Customer stories"},
	}

	out := ComparePM(before, after, domain.PageTypeCaseStudies)
	signals := signalsOf(out)
	require.Contains(t, signals, domain.SignalSocialProof)
	assert.Equal(t, "1", signals[domain.SignalSocialProof].Before)
	assert.Equal(t, "3", signals[domain.SignalSocialProof].After)
}
