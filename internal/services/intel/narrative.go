package intel

import (
	"fmt"

	"github.com/rivalscope/rivalscope/pkg/stablehash"
)

// NarrativeLine is one deterministically selected sentence of the report
type NarrativeLine struct {
	ID         string `json:"id"`
	Kind       string `json:"kind"` // strength, risk, imbalance, implication
	Text       string `json:"text"`
	TemplateID string `json:"template_id"`
	Evidence   string `json:"evidence,omitempty"`
}

// template is one phrasing option; %s is the dimension label, %d the score
// or severity.
type template struct {
	id   string
	text string
}

// Fixed template pools. Variety comes from the stable hash of
// (competitor id + item id), never from a random source, so the same
// competitor always reads the same phrasing for the same signal state.
var strengthTemplates = map[Dimension][]template{
	DimensionPositioning: {
		{"pos-s1", "Positioning is a clear strength: messaging and motion align at a score of %d."},
		{"pos-s2", "The competitor communicates a sharp, consistent position (score %d)."},
		{"pos-s3", "Messaging discipline stands out, scoring %d on positioning."},
	},
	DimensionOperationalDepth: {
		{"ops-s1", "Operational depth is well developed, scoring %d."},
		{"ops-s2", "A substantial service portfolio drives an operational depth score of %d."},
		{"ops-s3", "The breadth and structure of the offering earn %d on operational depth."},
	},
	DimensionMonetizationClarity: {
		{"mon-s1", "Monetization is unusually transparent, scoring %d."},
		{"mon-s2", "Clear packaging and pricing signals produce a monetization score of %d."},
		{"mon-s3", "The pricing story is easy to read, scoring %d on monetization clarity."},
	},
	DimensionMarketFocus: {
		{"mkt-s1", "Market focus is a strength: the target segment reads clearly at %d."},
		{"mkt-s2", "A disciplined vertical focus earns a market focus score of %d."},
		{"mkt-s3", "Audience targeting is precise, scoring %d on market focus."},
	},
	DimensionCredibilityProof: {
		{"cred-s1", "Credibility proof is strong, scoring %d."},
		{"cred-s2", "A dense social-proof surface drives a credibility score of %d."},
		{"cred-s3", "Customer evidence is prominent, earning %d on credibility proof."},
	},
	DimensionExecutionVelocity: {
		{"exec-s1", "Execution velocity is high: the site changes often, scoring %d."},
		{"exec-s2", "Frequent visible iteration earns an execution velocity score of %d."},
		{"exec-s3", "The pace of change on public surfaces scores %d."},
	},
}

var riskTemplates = map[Dimension][]template{
	DimensionPositioning: {
		{"pos-r1", "Positioning is a weak spot (severity %d): the message does not land distinctly."},
		{"pos-r2", "Messaging lacks a clear edge, a positioning risk at severity %d."},
		{"pos-r3", "The position reads generic, with risk severity %d."},
	},
	DimensionOperationalDepth: {
		{"ops-r1", "Operational depth trails the rest of the profile (severity %d)."},
		{"ops-r2", "The offering looks thin relative to peers, an operational risk at severity %d."},
		{"ops-r3", "Limited visible service depth carries risk severity %d."},
	},
	DimensionMonetizationClarity: {
		{"mon-r1", "Monetization is opaque (severity %d): pricing signals are hidden or absent."},
		{"mon-r2", "The pricing story is hard to read, a monetization risk at severity %d."},
		{"mon-r3", "Unclear packaging carries monetization risk severity %d."},
	},
	DimensionMarketFocus: {
		{"mkt-r1", "Market focus is diffuse (severity %d): no segment clearly owns the message."},
		{"mkt-r2", "The target audience is ambiguous, a market focus risk at severity %d."},
		{"mkt-r3", "Horizontal messaging carries focus risk severity %d."},
	},
	DimensionCredibilityProof: {
		{"cred-r1", "Credibility proof is thin (severity %d): little customer evidence is visible."},
		{"cred-r2", "Social proof lags the claims being made, a credibility risk at severity %d."},
		{"cred-r3", "Sparse references carry credibility risk severity %d."},
	},
	DimensionExecutionVelocity: {
		{"exec-r1", "Execution velocity is low (severity %d): public surfaces rarely change."},
		{"exec-r2", "The site has been static, an execution risk at severity %d."},
		{"exec-r3", "Slow visible iteration carries risk severity %d."},
	},
}

var dimensionLabels = map[Dimension]string{
	DimensionPositioning:        "positioning",
	DimensionOperationalDepth:   "operational depth",
	DimensionMonetizationClarity: "monetization clarity",
	DimensionMarketFocus:        "market focus",
	DimensionCredibilityProof:   "credibility proof",
	DimensionExecutionVelocity:  "execution velocity",
}

// Compose renders the narrative for a ranking. Selection is
// stablehash.Index over competitorID+itemID, so two calls with identical
// inputs produce byte-identical text.
func Compose(competitorID string, ranking Ranking) []NarrativeLine {
	var lines []NarrativeLine

	for _, item := range ranking.Strengths {
		pool := strengthTemplates[item.Dimension]
		if len(pool) == 0 {
			continue
		}
		tpl := pool[stablehash.Index(competitorID+item.ID, len(pool))]
		lines = append(lines, NarrativeLine{
			ID:         "line:" + item.ID,
			Kind:       "strength",
			Text:       fmt.Sprintf(tpl.text, item.Score),
			TemplateID: tpl.id,
			Evidence:   fmt.Sprintf("%s score %d", dimensionLabels[item.Dimension], item.Score),
		})
	}

	for _, item := range ranking.Risks {
		pool := riskTemplates[item.Dimension]
		if len(pool) == 0 {
			continue
		}
		tpl := pool[stablehash.Index(competitorID+item.ID, len(pool))]
		lines = append(lines, NarrativeLine{
			ID:         "line:" + item.ID,
			Kind:       "risk",
			Text:       fmt.Sprintf(tpl.text, item.Severity),
			TemplateID: tpl.id,
			Evidence:   fmt.Sprintf("%s score %d", dimensionLabels[item.Dimension], item.Score),
		})
	}

	for _, imb := range ranking.Imbalances {
		lines = append(lines, NarrativeLine{
			ID:         "line:imbalance:" + imb.ID,
			Kind:       "imbalance",
			Text:       imb.Description,
			TemplateID: imb.ID,
		})
	}

	// Two implication lines always describe the single top and bottom
	// dimensions.
	if dim, score, ok := ranking.TopDimension(); ok {
		lines = append(lines, NarrativeLine{
			ID:         "line:implication:top",
			Kind:       "implication",
			Text:       fmt.Sprintf("Expect this competitor to press its advantage in %s (score %d).", dimensionLabels[dim], score),
			TemplateID: "implication-top",
		})
	}
	if dim, score, ok := ranking.BottomDimension(); ok {
		lines = append(lines, NarrativeLine{
			ID:         "line:implication:bottom",
			Kind:       "implication",
			Text:       fmt.Sprintf("The most exploitable gap is %s (score %d).", dimensionLabels[dim], score),
			TemplateID: "implication-bottom",
		})
	}

	return lines
}
