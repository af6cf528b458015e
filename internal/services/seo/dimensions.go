package seo

import "strings"

// SEO dimension names, canonical order
const (
	DimTopicConcentration    = "topic_concentration"
	DimVerticalFocus         = "vertical_focus"
	DimFunnelBalance         = "funnel_balance"
	DimContentIntensity      = "content_intensity"
	DimEnterpriseOrientation = "enterprise_orientation"
	DimMomentum              = "momentum"
)

// SEODims lists the six dimensions in canonical order
var SEODims = []string{
	DimTopicConcentration,
	DimVerticalFocus,
	DimFunnelBalance,
	DimContentIntensity,
	DimEnterpriseOrientation,
	DimMomentum,
}

var verticalStems = []string{"bank", "health", "retail", "manufactur", "fintech", "clinical", "ecommerce"}

var enterpriseStems = []string{"enterprise", "compliance", "security", "sso", "governance"}

// BuildDimensions derives the six SEO dimension scores from the assembled
// artifacts via fixed formulas.
func BuildDimensions(profile KeywordProfile, clusters []TopicCluster, fb FunnelBalance, depth ContentDepth, recentChanges int) map[string]int {
	return map[string]int{
		DimTopicConcentration:    topicConcentration(clusters),
		DimVerticalFocus:         stemShare(profile, verticalStems),
		DimFunnelBalance:         funnelBalanceScore(fb),
		DimContentIntensity:      depth.InvestmentScore,
		DimEnterpriseOrientation: stemShare(profile, enterpriseStems),
		DimMomentum:              clampScore(recentChanges * 12),
	}
}

// topicConcentration is the top cluster's share of total cluster weight
func topicConcentration(clusters []TopicCluster) int {
	if len(clusters) == 0 {
		return 0
	}
	total := 0
	for _, c := range clusters {
		total += c.Weight
	}
	if total == 0 {
		return 0
	}
	return clampScore(clusters[0].Weight * 100 / total)
}

// stemShare scores how much of the top-50 keyword weight matches the stems
func stemShare(profile KeywordProfile, stems []string) int {
	top := profile.Top(50)
	if len(top) == 0 {
		return 0
	}
	matched, total := 0, 0
	for _, k := range top {
		total += k.Weight()
		for _, s := range stems {
			if strings.Contains(k.Term, s) {
				matched += k.Weight()
				break
			}
		}
	}
	if total == 0 {
		return 0
	}
	return clampScore(matched * 300 / total)
}

// funnelBalanceScore rewards coverage of all three stages and penalizes a
// dominant one.
func funnelBalanceScore(fb FunnelBalance) int {
	total := fb.Total()
	if total == 0 {
		return 0
	}
	score := 0
	for _, n := range []int{fb.Top, fb.Mid, fb.Bottom} {
		if n > 0 {
			score += 25
		}
	}
	if _, imbalanced := fb.IsImbalanced(); !imbalanced {
		score += 25
	}
	return score
}

func clampScore(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
