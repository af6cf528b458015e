package diff

import (
	"strings"

	"github.com/rivalscope/rivalscope/internal/domain"
	"github.com/rivalscope/rivalscope/internal/services/extract"
)

// Keyword vocabularies for classification. Placeholder-quality business
// heuristics kept as package constants so they read as configuration.
var (
	productKeywords = []string{
		"product", "feature", "platform", "integration", "solution",
		"service", "capability", "api", "module",
	}
	trustKeywords = []string{
		"logo", "testimonial", "trusted by", "customer", "case stud",
		"partner", "award", "certified", "review",
	}
	ctaTextKeywords = []string{
		"get started", "sign up", "start free", "free trial", "demo",
		"contact sales", "book a", "subscribe", "buy",
	}
)

// Classify assigns a business category to a detected change. Total pure
// function over (change, page type, after HTML); rules apply in strict
// priority order and the first match wins.
func Classify(d Detected, pageType domain.PageType, afterHTML string) domain.Category {
	switch {
	case d.Type == domain.ChangeTypeCTAText || isSignal(d, domain.SignalPrimaryCTA):
		return domain.CategoryPositioning

	case pageType == domain.PageTypePricing || isSignal(d, domain.SignalPricingStructure):
		return domain.CategoryPricing

	case changeTextMatches(d, ctaTextKeywords):
		return domain.CategoryPositioning

	case pageType == domain.PageTypeProduct || pageType == domain.PageTypeServices:
		return domain.CategoryProduct

	case pageType == domain.PageTypeCaseStudies || isSignal(d, domain.SignalSocialProof):
		return domain.CategoryTrust

	case pageType == domain.PageTypeAbout || pageType == domain.PageTypeContact ||
		pageType == domain.PageTypeCareers || pageType == domain.PageTypeDocs:
		return domain.CategoryNavigation

	case d.Type == domain.ChangeTypeElementAdded && changeTextMatches(d, productKeywords):
		return domain.CategoryProduct

	case d.Type == domain.ChangeTypeElementAdded && isTrustAddition(d, afterHTML):
		return domain.CategoryTrust

	case d.Type == domain.ChangeTypeNav || isFooterScoped(d):
		return domain.CategoryNavigation

	default:
		return domain.CategoryNavigation
	}
}

// DeriveImpact assigns the impact level. Independent of the category rule
// table by design of the rule set, not by shared code.
func DeriveImpact(d Detected, pageType domain.PageType) domain.Impact {
	switch {
	case d.Type == domain.ChangeTypeCTAText || isSignal(d, domain.SignalPrimaryCTA):
		return domain.ImpactModerate

	case isSignal(d, domain.SignalPricingStructure),
		d.Type == domain.ChangeTypeText && pageType == domain.PageTypePricing:
		return domain.ImpactModerate

	case d.Type == domain.ChangeTypeNav || isSignal(d, domain.SignalNavLabels):
		return domain.ImpactMinor

	case pageType == domain.PageTypeHomepage && isStructural(d):
		return domain.ImpactStrategic

	case (pageType == domain.PageTypeProduct || pageType == domain.PageTypeServices) &&
		(isStructural(d) || isSignal(d, domain.SignalSections)):
		return domain.ImpactStrategic

	case isSignal(d, domain.SignalSocialProof),
		d.Type == domain.ChangeTypeElementAdded && changeTextMatches(d, trustKeywords):
		return domain.ImpactModerate

	default:
		return domain.ImpactMinor
	}
}

// interpretationTemplates map (category, impact) to a fixed strategic
// interpretation line.
var interpretationTemplates = map[domain.Category]map[domain.Impact]string{
	domain.CategoryPositioning: {
		domain.ImpactStrategic: "The competitor is repositioning its core message, which usually precedes a broader go-to-market shift.",
		domain.ImpactModerate:  "Messaging is being tuned, likely testing which value proposition converts better.",
		domain.ImpactMinor:     "Minor copy adjustment with no clear strategic intent.",
	},
	domain.CategoryPricing: {
		domain.ImpactStrategic: "Pricing architecture is being restructured, signaling a change in monetization strategy.",
		domain.ImpactModerate:  "Pricing presentation changed, suggesting active experimentation with packaging or price points.",
		domain.ImpactMinor:     "Cosmetic pricing page adjustment.",
	},
	domain.CategoryProduct: {
		domain.ImpactStrategic: "The service portfolio is shifting, indicating investment in new capabilities or retirement of old ones.",
		domain.ImpactModerate:  "Product descriptions are evolving, pointing to feature-level changes.",
		domain.ImpactMinor:     "Small product content update.",
	},
	domain.CategoryTrust: {
		domain.ImpactStrategic: "Credibility assets are being overhauled, often ahead of a push upmarket.",
		domain.ImpactModerate:  "New social proof added, strengthening the competitor's credibility surface.",
		domain.ImpactMinor:     "Minor trust content adjustment.",
	},
	domain.CategoryNavigation: {
		domain.ImpactStrategic: "Site structure is being reorganized, which may reflect a new product or audience focus.",
		domain.ImpactModerate:  "Navigation changes suggest content priorities are shifting.",
		domain.ImpactMinor:     "Routine navigation tweak.",
	},
}

// actionTemplates map (category, impact) to a suggested monitoring action.
var actionTemplates = map[domain.Category]map[domain.Impact]string{
	domain.CategoryPositioning: {
		domain.ImpactStrategic: "Review your own positioning against the new message within the week.",
		domain.ImpactModerate:  "Watch whether the new copy persists over the next two crawls.",
		domain.ImpactMinor:     "No action needed; keep routine monitoring.",
	},
	domain.CategoryPricing: {
		domain.ImpactStrategic: "Compare the new pricing structure against your tiers and flag gaps to the pricing owner.",
		domain.ImpactModerate:  "Track whether the price points stabilize before reacting.",
		domain.ImpactMinor:     "No action needed; keep routine monitoring.",
	},
	domain.CategoryProduct: {
		domain.ImpactStrategic: "Assess overlap between the new offerings and your roadmap.",
		domain.ImpactModerate:  "Note the feature changes for the next competitive review.",
		domain.ImpactMinor:     "No action needed; keep routine monitoring.",
	},
	domain.CategoryTrust: {
		domain.ImpactStrategic: "Audit your own proof points against the refreshed credibility surface.",
		domain.ImpactModerate:  "Record the new references for win/loss analysis.",
		domain.ImpactMinor:     "No action needed; keep routine monitoring.",
	},
	domain.CategoryNavigation: {
		domain.ImpactStrategic: "Map the new site structure to infer the competitor's priority segments.",
		domain.ImpactModerate:  "Check which sections gained or lost prominence.",
		domain.ImpactMinor:     "No action needed; keep routine monitoring.",
	},
}

// Interpret returns the templated strategic interpretation and suggested
// monitoring action for a classified change.
func Interpret(category domain.Category, impact domain.Impact) (interpretation, action string) {
	return interpretationTemplates[category][impact], actionTemplates[category][impact]
}

func isSignal(d Detected, kind domain.WebpageSignalKind) bool {
	ws, ok := d.Details.(domain.WebpageSignalDetails)
	return ok && ws.Signal == kind
}

func isStructural(d Detected) bool {
	switch d.Type {
	case domain.ChangeTypeElementAdded, domain.ChangeTypeElementRemoved, domain.ChangeTypeManyStructural:
		return true
	}
	return false
}

// changeTextMatches reports whether the change's own text content matches
// any keyword.
func changeTextMatches(d Detected, keywords []string) bool {
	var text string
	switch det := d.Details.(type) {
	case domain.ElementChangeDetails:
		text = det.Text
	case domain.CTATextDetails:
		text = det.AfterText
	case domain.WebpageSignalDetails:
		text = det.After
	default:
		return false
	}
	norm := extract.NormalizeText(text)
	for _, kw := range keywords {
		if strings.Contains(norm, kw) {
			return true
		}
	}
	return false
}

// isTrustAddition checks whether newly added content carries logo or
// testimonial markers, looking at the change text and nearby alt/aria
// content in the after document.
func isTrustAddition(d Detected, afterHTML string) bool {
	if changeTextMatches(d, trustKeywords) {
		return true
	}
	det, ok := d.Details.(domain.ElementChangeDetails)
	if !ok || det.Text == "" {
		return false
	}
	// The added node's text appears near trust markers in the document.
	norm := extract.NormalizeText(afterHTML)
	idx := strings.Index(norm, extract.NormalizeText(det.Text))
	if idx < 0 {
		return false
	}
	lo := idx - 400
	if lo < 0 {
		lo = 0
	}
	hi := idx + 400
	if hi > len(norm) {
		hi = len(norm)
	}
	window := norm[lo:hi]
	for _, kw := range []string{"logo", "testimonial", "trusted by", "alt="} {
		if strings.Contains(window, kw) {
			return true
		}
	}
	return false
}

func isFooterScoped(d Detected) bool {
	det, ok := d.Details.(domain.ElementChangeDetails)
	return ok && strings.HasPrefix(det.Key, "footer")
}
