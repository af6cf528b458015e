package seo

import "regexp"

// FunnelStage classifies a content page's position in the buyer journey
type FunnelStage string

const (
	FunnelTop     FunnelStage = "top"
	FunnelMid     FunnelStage = "mid"
	FunnelBottom  FunnelStage = "bottom"
	FunnelUnknown FunnelStage = "unknown"
)

// Fixed regex sets. Bottom wins over mid wins over top when several match,
// since purchase intent is the stronger signal.
var (
	funnelBottomRe = regexp.MustCompile(`(?i)\b(pricing|demo|trial|buy|vs\.?|versus|comparison|alternative)\b`)
	funnelMidRe    = regexp.MustCompile(`(?i)\b(case study|customer story|solution|use case|integration|how we)\b`)
	funnelTopRe    = regexp.MustCompile(`(?i)\b(what is|guide|introduction|101|trends|why|how to|best practices)\b`)
)

// ClassifyFunnel assigns a funnel stage from a page's title and headline
func ClassifyFunnel(p PageInput) FunnelStage {
	text := p.Title + " " + p.Signals.Headline + " " + p.URL
	switch {
	case funnelBottomRe.MatchString(text):
		return FunnelBottom
	case funnelMidRe.MatchString(text):
		return FunnelMid
	case funnelTopRe.MatchString(text):
		return FunnelTop
	}
	return FunnelUnknown
}

// FunnelBalance counts content pages per stage
type FunnelBalance struct {
	Top     int `json:"top"`
	Mid     int `json:"mid"`
	Bottom  int `json:"bottom"`
	Unknown int `json:"unknown"`
}

// BuildFunnelBalance classifies every content page into a stage
func BuildFunnelBalance(pages []PageInput) FunnelBalance {
	var fb FunnelBalance
	for _, p := range pages {
		if !p.PageType.IsContent() {
			continue
		}
		switch ClassifyFunnel(p) {
		case FunnelTop:
			fb.Top++
		case FunnelMid:
			fb.Mid++
		case FunnelBottom:
			fb.Bottom++
		default:
			fb.Unknown++
		}
	}
	return fb
}

// Total returns the classified page count, unknown excluded
func (fb FunnelBalance) Total() int {
	return fb.Top + fb.Mid + fb.Bottom
}

// IsImbalanced reports whether one stage holds more than 70% of the
// classified pages. Requires at least three classified pages to fire.
func (fb FunnelBalance) IsImbalanced() (FunnelStage, bool) {
	total := fb.Total()
	if total < 3 {
		return FunnelUnknown, false
	}
	threshold := total * 7 / 10
	switch {
	case fb.Top > threshold:
		return FunnelTop, true
	case fb.Mid > threshold:
		return FunnelMid, true
	case fb.Bottom > threshold:
		return FunnelBottom, true
	}
	return FunnelUnknown, false
}
