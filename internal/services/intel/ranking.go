package intel

import "sort"

// RankedItem is one strength or risk derived from the score card
type RankedItem struct {
	ID        string    `json:"id"`
	Dimension Dimension `json:"dimension"`
	Kind      string    `json:"kind"` // strength, risk
	Score     int       `json:"score"`
	Severity  int       `json:"severity,omitempty"` // risks only, 100-score
}

// Imbalance flags an internally inconsistent signal pattern across
// dimensions. The two rules fire independently of the ranking.
type Imbalance struct {
	ID          string `json:"id"`
	Description string `json:"description"`
}

// Ranking holds the ordered strengths, risks and imbalances
type Ranking struct {
	Strengths  []RankedItem `json:"strengths"`
	Risks      []RankedItem `json:"risks"`
	Imbalances []Imbalance  `json:"imbalances,omitempty"`
}

// Rank orders the score card into top-3 strengths and bottom-3 risks and
// evaluates the imbalance rules. Ties break on canonical dimension order
// so the result is deterministic.
func Rank(card ScoreCard, traits []Trait) Ranking {
	ordered := make([]DimensionScore, len(card.Scores))
	copy(ordered, card.Scores)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Score > ordered[j].Score
	})

	var r Ranking
	for i := 0; i < 3 && i < len(ordered); i++ {
		r.Strengths = append(r.Strengths, RankedItem{
			ID:        "strength:" + string(ordered[i].Dimension),
			Dimension: ordered[i].Dimension,
			Kind:      "strength",
			Score:     ordered[i].Score,
		})
	}
	for i := 0; i < 3 && i < len(ordered); i++ {
		ds := ordered[len(ordered)-1-i]
		r.Risks = append(r.Risks, RankedItem{
			ID:        "risk:" + string(ds.Dimension),
			Dimension: ds.Dimension,
			Kind:      "risk",
			Score:     ds.Score,
			Severity:  100 - ds.Score,
		})
	}

	if TraitValue(traits, TraitServiceBreadth) == "broad" && card.Get(DimensionMarketFocus) < 50 {
		r.Imbalances = append(r.Imbalances, Imbalance{
			ID:          "breadth_without_focus",
			Description: "Broad service portfolio without a clear market focus dilutes positioning.",
		})
	}
	if card.Get(DimensionMonetizationClarity) >= 70 && card.Get(DimensionCredibilityProof) < 40 {
		r.Imbalances = append(r.Imbalances, Imbalance{
			ID:          "monetization_without_proof",
			Description: "Confident monetization story is not yet backed by credibility proof.",
		})
	}

	return r
}

// TopDimension returns the single highest-scoring dimension
func (r Ranking) TopDimension() (Dimension, int, bool) {
	if len(r.Strengths) == 0 {
		return "", 0, false
	}
	return r.Strengths[0].Dimension, r.Strengths[0].Score, true
}

// BottomDimension returns the single lowest-scoring dimension
func (r Ranking) BottomDimension() (Dimension, int, bool) {
	if len(r.Risks) == 0 {
		return "", 0, false
	}
	return r.Risks[0].Dimension, r.Risks[0].Score, true
}
