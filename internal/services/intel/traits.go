package intel

import (
	"fmt"
	"strings"

	"github.com/rivalscope/rivalscope/internal/domain"
)

// Trait ids. Nine traits, always all present in the engine output.
const (
	TraitServiceBreadth     = "service_breadth"
	TraitServiceFocus       = "service_focus"
	TraitVerticalFocus      = "vertical_focus"
	TraitMonetizationSignal = "monetization_signal"
	TraitGTMMotion          = "gtm_motion"
	TraitMessagingEmphasis  = "messaging_emphasis"
	TraitCredibilitySurface = "credibility_surface"
	TraitExecutionVelocity  = "execution_velocity"
	TraitBotMitigation      = "bot_mitigation_block"
)

// ValueUnknown is the explicit fallback for traits whose inputs are absent
const ValueUnknown = "unknown"

// Trait is a qualitative label derived from raw signals, always
// evidence-backed for explainability.
type Trait struct {
	ID       string     `json:"id"`
	Value    string     `json:"value"`
	RuleID   string     `json:"rule_id"`
	Evidence []Evidence `json:"evidence,omitempty"`
}

// Evidence records one source value a trait rule consumed
type Evidence struct {
	Source string `json:"source"`
	Value  string `json:"value"`
}

// verticalVocab scores heading/meta text against five fixed vertical
// vocabularies. Placeholder-quality keyword lists; the mechanism matters,
// not the words.
var verticalVocab = map[string][]string{
	"finance":       {"bank", "fintech", "payment", "lending", "trading", "insurance"},
	"healthcare":    {"health", "clinical", "patient", "medical", "care", "pharma"},
	"retail":        {"retail", "ecommerce", "commerce", "store", "shopper", "merchandis"},
	"manufacturing": {"manufactur", "factory", "supply chain", "logistics", "industrial"},
	"technology":    {"developer", "saas", "cloud", "api", "software", "platform"},
}

// DeriveTraits maps raw signals into the nine qualitative traits. Pure;
// absent inputs resolve to "unknown" rather than failing.
func DeriveTraits(raw RawSignals) []Trait {
	return []Trait{
		serviceBreadth(raw),
		serviceFocus(raw),
		verticalFocus(raw),
		monetizationSignal(raw),
		gtmMotion(raw),
		messagingEmphasis(raw),
		credibilitySurface(raw),
		executionVelocity(raw),
		botMitigation(raw),
	}
}

// TraitValue returns the value of a trait by id, or "unknown"
func TraitValue(traits []Trait, id string) string {
	for _, t := range traits {
		if t.ID == id {
			return t.Value
		}
	}
	return ValueUnknown
}

// serviceHeadings collects product/service section headings across the
// pages that describe the offering.
func serviceHeadings(raw RawSignals) []string {
	var out []string
	for _, pt := range []domain.PageType{domain.PageTypeServices, domain.PageTypeProduct, domain.PageTypeHomepage} {
		if s, ok := raw.PageSignals[pt]; ok {
			out = append(out, s.Headings...)
		}
	}
	return out
}

func serviceBreadth(raw RawSignals) Trait {
	headings := serviceHeadings(raw)
	t := Trait{ID: TraitServiceBreadth, RuleID: "breadth_heading_count", Value: ValueUnknown}
	if len(headings) == 0 {
		return t
	}
	t.Evidence = append(t.Evidence, Evidence{Source: "service_heading_count", Value: fmt.Sprintf("%d", len(headings))})
	switch {
	case len(headings) >= 8:
		t.Value = "broad"
	case len(headings) >= 4:
		t.Value = "moderate"
	default:
		t.Value = "focused"
	}
	return t
}

func serviceFocus(raw RawSignals) Trait {
	t := Trait{ID: TraitServiceFocus, RuleID: "focus_from_breadth", Value: ValueUnknown}
	breadth := serviceBreadth(raw)
	if breadth.Value == ValueUnknown {
		return t
	}
	t.Evidence = append(t.Evidence, Evidence{Source: TraitServiceBreadth, Value: breadth.Value})
	switch breadth.Value {
	case "focused":
		t.Value = "specialized"
	case "moderate":
		t.Value = "balanced"
	default:
		t.Value = "generalist"
	}
	return t
}

func verticalFocus(raw RawSignals) Trait {
	t := Trait{ID: TraitVerticalFocus, RuleID: "vertical_keyword_scoring", Value: ValueUnknown}

	var corpus []string
	for _, s := range raw.PageSignals {
		corpus = append(corpus, s.Headline, s.SEO.MetaDescription)
		corpus = append(corpus, s.Headings...)
	}
	text := strings.ToLower(strings.Join(corpus, " "))
	if strings.TrimSpace(text) == "" {
		return t
	}

	best, second := "", 0
	bestScore := 0
	for _, name := range []string{"finance", "healthcare", "manufacturing", "retail", "technology"} {
		score := 0
		for _, kw := range verticalVocab[name] {
			score += strings.Count(text, kw)
		}
		if score > bestScore {
			second = bestScore
			best, bestScore = name, score
		} else if score > second {
			second = score
		}
	}
	if bestScore == 0 {
		t.Value = "horizontal"
		return t
	}
	t.Evidence = append(t.Evidence,
		Evidence{Source: "top_vertical", Value: best},
		Evidence{Source: "top_score", Value: fmt.Sprintf("%d", bestScore)},
	)
	if bestScore >= 2 && bestScore >= second*2 {
		t.Value = best
	} else {
		t.Value = "multi_vertical"
	}
	return t
}

func monetizationSignal(raw RawSignals) Trait {
	t := Trait{ID: TraitMonetizationSignal, RuleID: "pricing_page_tokens", Value: ValueUnknown}
	pricing, ok := raw.PageSignals[domain.PageTypePricing]
	if !ok {
		return t
	}
	t.Evidence = append(t.Evidence, Evidence{Source: "pricing_token_count", Value: fmt.Sprintf("%d", len(pricing.PricingTokens))})
	if len(pricing.PricingTokens) > 0 {
		t.Value = "transparent"
	} else {
		t.Value = "gated"
	}
	return t
}

func gtmMotion(raw RawSignals) Trait {
	t := Trait{ID: TraitGTMMotion, RuleID: "cta_motion_keywords", Value: ValueUnknown}

	var ctaTexts []string
	for _, s := range raw.PageSignals {
		for _, c := range s.CTAs {
			ctaTexts = append(ctaTexts, c.Text)
		}
	}
	ctaTexts = append(ctaTexts, raw.Themes.GTMMotion...)
	if len(ctaTexts) == 0 {
		return t
	}

	joined := strings.Join(ctaTexts, " ")
	sales := gtmSalesRe.MatchString(joined)
	selfServe := gtmSelfServeRe.MatchString(joined)
	t.Evidence = append(t.Evidence, Evidence{Source: "cta_texts", Value: fmt.Sprintf("%d candidates", len(ctaTexts))})
	switch {
	case sales && selfServe:
		t.Value = "hybrid"
	case sales:
		t.Value = "sales_led"
	case selfServe:
		t.Value = "self_serve"
	default:
		t.Value = "unclear"
	}
	return t
}

func messagingEmphasis(raw RawSignals) Trait {
	t := Trait{ID: TraitMessagingEmphasis, RuleID: "headline_emphasis_keywords", Value: ValueUnknown}
	home, ok := raw.PageSignals[domain.PageTypeHomepage]
	if !ok || home.Headline == "" {
		return t
	}
	headline := strings.ToLower(home.Headline)
	t.Evidence = append(t.Evidence, Evidence{Source: "homepage_headline", Value: home.Headline})
	switch {
	case containsAny(headline, "roi", "save", "grow", "revenue", "faster", "results"):
		t.Value = "outcome"
	case containsAny(headline, "platform", "ai", "technology", "automation", "intelligent"):
		t.Value = "technology"
	case containsAny(headline, "trusted", "secure", "proven", "reliable", "compliance"):
		t.Value = "trust"
	default:
		t.Value = "generic"
	}
	return t
}

func credibilitySurface(raw RawSignals) Trait {
	t := Trait{ID: TraitCredibilitySurface, RuleID: "social_proof_volume", Value: ValueUnknown}
	if len(raw.PageSignals) == 0 {
		return t
	}
	cs, hasCaseStudies := raw.PageSignals[domain.PageTypeCaseStudies]
	if !hasCaseStudies {
		t.Value = "thin"
		return t
	}
	volume := len(cs.SEO.ImageAlts) + len(cs.ListItems)
	t.Evidence = append(t.Evidence, Evidence{Source: "proof_volume", Value: fmt.Sprintf("%d", volume)})
	if volume >= 10 {
		t.Value = "strong"
	} else {
		t.Value = "present"
	}
	return t
}

func executionVelocity(raw RawSignals) Trait {
	t := Trait{ID: TraitExecutionVelocity, RuleID: "changes_30d_threshold", Value: ValueUnknown}
	if len(raw.TrackedPageTypes) == 0 && raw.ChangesLast30d == 0 {
		return t
	}
	t.Evidence = append(t.Evidence, Evidence{Source: "changes_last_30d", Value: fmt.Sprintf("%d", raw.ChangesLast30d)})
	switch {
	case raw.ChangesLast30d >= 5:
		t.Value = "active"
	case raw.ChangesLast30d >= 2:
		t.Value = "selective"
	default:
		t.Value = "stable"
	}
	return t
}

func botMitigation(raw RawSignals) Trait {
	t := Trait{ID: TraitBotMitigation, RuleID: "blocked_status_codes", Value: ValueUnknown}
	if len(raw.TrackedPageTypes) == 0 {
		return t
	}
	if raw.BotBlocked {
		t.Value = "blocked"
		t.Evidence = append(t.Evidence, Evidence{Source: "http_status", Value: "anti-bot status codes observed"})
	} else {
		t.Value = "clear"
	}
	return t
}

func containsAny(s string, keywords ...string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
