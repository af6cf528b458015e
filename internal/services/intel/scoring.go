package intel

import "math"

// Dimension is one of the six strategic posture scores
type Dimension string

const (
	DimensionPositioning        Dimension = "Positioning"
	DimensionOperationalDepth   Dimension = "OperationalDepth"
	DimensionMonetizationClarity Dimension = "MonetizationClarity"
	DimensionMarketFocus        Dimension = "MarketFocus"
	DimensionCredibilityProof   Dimension = "CredibilityProof"
	DimensionExecutionVelocity  Dimension = "ExecutionVelocity"
)

// Dimensions lists all six in canonical order
var Dimensions = []Dimension{
	DimensionPositioning,
	DimensionOperationalDepth,
	DimensionMonetizationClarity,
	DimensionMarketFocus,
	DimensionCredibilityProof,
	DimensionExecutionVelocity,
}

// Contribution records one trait's share of a dimension score
type Contribution struct {
	TraitID string  `json:"trait_id"`
	Value   string  `json:"value"`
	Points  int     `json:"points"`
	Weight  float64 `json:"weight"`
}

// DimensionScore is one scored dimension with its contributions
type DimensionScore struct {
	Dimension     Dimension      `json:"dimension"`
	Score         int            `json:"score"`
	Contributions []Contribution `json:"contributions"`
}

// ScoreCard holds all six dimension scores in canonical order
type ScoreCard struct {
	Scores []DimensionScore `json:"scores"`
}

// Get returns the score for a dimension, 0 when absent
func (sc ScoreCard) Get(d Dimension) int {
	for _, s := range sc.Scores {
		if s.Dimension == d {
			return s.Score
		}
	}
	return 0
}

// traitPoints maps trait values to 0-100 point values. Fixed constants,
// not learned; unknown always maps to 0.
var traitPoints = map[string]map[string]int{
	TraitServiceBreadth: {
		"broad": 85, "moderate": 65, "focused": 45,
	},
	TraitServiceFocus: {
		"specialized": 80, "balanced": 65, "generalist": 50,
	},
	TraitVerticalFocus: {
		"finance": 80, "healthcare": 80, "retail": 80, "manufacturing": 80,
		"technology": 80, "multi_vertical": 55, "horizontal": 35,
	},
	TraitMonetizationSignal: {
		"transparent": 85, "gated": 50,
	},
	TraitGTMMotion: {
		"hybrid": 80, "self_serve": 70, "sales_led": 65, "unclear": 30,
	},
	TraitMessagingEmphasis: {
		"outcome": 85, "technology": 70, "trust": 70, "generic": 40,
	},
	TraitCredibilitySurface: {
		"strong": 90, "present": 60, "thin": 25,
	},
	TraitExecutionVelocity: {
		"active": 90, "selective": 60, "stable": 30,
	},
	TraitBotMitigation: {
		"clear": 70, "blocked": 30,
	},
}

// dimensionWeights is the fixed linear model: each dimension combines one
// to three trait point values.
var dimensionWeights = map[Dimension][]struct {
	TraitID string
	Weight  float64
}{
	DimensionPositioning: {
		{TraitMessagingEmphasis, 0.6},
		{TraitGTMMotion, 0.4},
	},
	DimensionOperationalDepth: {
		{TraitServiceBreadth, 0.6},
		{TraitServiceFocus, 0.4},
	},
	DimensionMonetizationClarity: {
		{TraitMonetizationSignal, 0.7},
		{TraitGTMMotion, 0.3},
	},
	DimensionMarketFocus: {
		{TraitVerticalFocus, 0.6},
		{TraitServiceFocus, 0.4},
	},
	DimensionCredibilityProof: {
		{TraitCredibilitySurface, 1.0},
	},
	DimensionExecutionVelocity: {
		{TraitExecutionVelocity, 0.8},
		{TraitBotMitigation, 0.2},
	},
}

// PointsFor returns the lookup-table points for a trait value
func PointsFor(traitID, value string) int {
	return traitPoints[traitID][value]
}

// Score computes the six-dimension score card from traits. Weighted sums
// are clamped to [0,100] and rounded.
func Score(traits []Trait) ScoreCard {
	card := ScoreCard{}
	for _, dim := range Dimensions {
		var (
			sum           float64
			contributions []Contribution
		)
		for _, w := range dimensionWeights[dim] {
			value := TraitValue(traits, w.TraitID)
			points := PointsFor(w.TraitID, value)
			sum += float64(points) * w.Weight
			contributions = append(contributions, Contribution{
				TraitID: w.TraitID,
				Value:   value,
				Points:  points,
				Weight:  w.Weight,
			})
		}
		card.Scores = append(card.Scores, DimensionScore{
			Dimension:     dim,
			Score:         clampRound(sum),
			Contributions: contributions,
		})
	}
	return card
}

func clampRound(v float64) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return int(math.Round(v))
}
