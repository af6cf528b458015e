package domain

import "time"

// PageSignals is the structured record the content extractor pulls out of a
// rendered page. It is stored on every snapshot and is the only view of page
// content the downstream engines ever see.
type PageSignals struct {
	Headline      string    `json:"headline,omitempty"`
	Headings      []string  `json:"headings,omitempty"`
	ListItems     []string  `json:"list_items,omitempty"`
	NavItems      []NavItem `json:"nav_items,omitempty"`
	FooterLinks   []NavItem `json:"footer_links,omitempty"`
	CTAs          []CTA     `json:"ctas,omitempty"`
	PricingTokens []string  `json:"pricing_tokens,omitempty"`
	SEO           SEOFields `json:"seo"`
	ContentHash   string    `json:"content_hash"`
}

// PrimaryCTA returns the highest-scored CTA, or the zero value when none
// were extracted.
func (s PageSignals) PrimaryCTA() CTA {
	if len(s.CTAs) == 0 {
		return CTA{}
	}
	return s.CTAs[0]
}

// NavItem is one navigation or footer anchor
type NavItem struct {
	Text string `json:"text"`
	Href string `json:"href"`
}

// CTA is a call-to-action candidate, scored by the extractor
type CTA struct {
	Text  string `json:"text"`
	Href  string `json:"href"`
	Score int    `json:"score"`
}

// SEOFields holds the search-oriented signals of a page
type SEOFields struct {
	MetaDescription string     `json:"meta_description,omitempty"`
	Slug            string     `json:"slug,omitempty"`
	AnchorTexts     []string   `json:"anchor_texts,omitempty"`
	ImageAlts       []string   `json:"image_alts,omitempty"`
	WordCount       int        `json:"word_count"`
	PublishedAt     *time.Time `json:"published_at,omitempty"`
}
