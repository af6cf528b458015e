package profile

import (
	"strings"
	"time"

	"github.com/rivalscope/rivalscope/internal/domain"
	"github.com/rivalscope/rivalscope/internal/services/intel"
)

// Strategic dimension names, canonical order
const (
	DimStrategicElevation    = "strategic_elevation"
	DimServiceBreadth        = "service_breadth"
	DimVerticalDepth         = "vertical_depth"
	DimEnterpriseOrientation = "enterprise_orientation"
	DimMonetizationMaturity  = "monetization_maturity"
	DimMarketMomentum        = "market_momentum"
)

// StrategicDims lists the six dimensions in canonical order
var StrategicDims = []string{
	DimStrategicElevation,
	DimServiceBreadth,
	DimVerticalDepth,
	DimEnterpriseOrientation,
	DimMonetizationMaturity,
	DimMarketMomentum,
}

// DimensionVector holds the six 0-100 strategic scores
type DimensionVector map[string]int

// StrategicProfile is one scored run of the strategic dimension model
type StrategicProfile struct {
	CompetitorID string          `json:"competitor_id"`
	Dimensions   DimensionVector `json:"dimensions"`
	GeneratedAt  time.Time       `json:"generated_at"`
}

// PressureLevel grades competitive pressure per dimension
type PressureLevel string

const (
	PressureLow      PressureLevel = "low"
	PressureModerate PressureLevel = "moderate"
	PressureHigh     PressureLevel = "high"
)

// Trajectory grades the rate of dimensional change across snapshots
type Trajectory string

const (
	TrajectoryStable     Trajectory = "stable"
	TrajectoryIncreasing Trajectory = "increasing"
	TrajectoryRapid      Trajectory = "rapid"
)

var outcomeWords = []string{"transform", "accelerate", "outcome", "strategic", "partner", "roi"}

var enterpriseWords = []string{"enterprise", "sso", "sla", "compliance", "security", "dedicated", "procurement"}

// BuildStrategic computes the six strategic dimensions from raw signals.
// Fixed formulas over raw counts; no randomness, no learned weights.
func BuildStrategic(raw intel.RawSignals) StrategicProfile {
	corpus := signalCorpus(raw)

	dims := DimensionVector{
		DimStrategicElevation:    clamp(keywordHits(corpus, outcomeWords) * 20),
		DimServiceBreadth:        clamp(serviceHeadingCount(raw) * 10),
		DimVerticalDepth:         verticalDepth(corpus),
		DimEnterpriseOrientation: clamp(keywordHits(corpus, enterpriseWords) * 15),
		DimMonetizationMaturity:  monetizationMaturity(raw),
		DimMarketMomentum:        clamp(raw.ChangesLast30d * 12),
	}

	return StrategicProfile{
		CompetitorID: raw.CompetitorID,
		Dimensions:   dims,
		GeneratedAt:  time.Now().UTC(),
	}
}

func keywordHits(corpus string, words []string) int {
	n := 0
	for _, w := range words {
		n += strings.Count(corpus, w)
	}
	return n
}

func serviceHeadingCount(raw intel.RawSignals) int {
	n := 0
	for _, pt := range []domain.PageType{domain.PageTypeServices, domain.PageTypeProduct, domain.PageTypeHomepage} {
		if s, ok := raw.PageSignals[pt]; ok {
			n += len(s.Headings)
		}
	}
	return n
}

// verticalDepth scores concentration in the best-matching industry
// vocabulary: deep hits in one vertical score higher than the same volume
// spread across several.
func verticalDepth(corpus string) int {
	best, total := 0, 0
	for _, keywords := range industryVocab {
		score := keywordHits(corpus, keywords)
		total += score
		if score > best {
			best = score
		}
	}
	if total == 0 {
		return 0
	}
	return clamp(best * 100 / (total + 2))
}

func monetizationMaturity(raw intel.RawSignals) int {
	pricing, ok := raw.PageSignals[domain.PageTypePricing]
	if !ok {
		return 10
	}
	score := 40
	score += len(pricing.PricingTokens) * 10
	score += len(pricing.Headings) * 5
	return clamp(score)
}

func clamp(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// Pressure compares a competitor's vector against its peers. For each
// dimension the signal is the average peer score minus the self score; a
// large positive gap means the field is ahead on that front.
func Pressure(self DimensionVector, peers []DimensionVector) map[string]PressureLevel {
	out := map[string]PressureLevel{}
	for _, dim := range StrategicDims {
		if len(peers) == 0 {
			out[dim] = PressureLow
			continue
		}
		sum := 0
		for _, p := range peers {
			sum += p[dim]
		}
		gap := sum/len(peers) - self[dim]
		switch {
		case gap >= 20:
			out[dim] = PressureHigh
		case gap >= 10:
			out[dim] = PressureModerate
		default:
			out[dim] = PressureLow
		}
	}
	return out
}

// DeriveTrajectory grades movement between consecutive dimension snapshots,
// newest first. The largest absolute per-dimension delta between the two
// most recent snapshots decides the grade.
func DeriveTrajectory(history []DimensionVector) Trajectory {
	if len(history) < 2 {
		return TrajectoryStable
	}
	maxDelta := 0
	for _, dim := range StrategicDims {
		d := history[0][dim] - history[1][dim]
		if d < 0 {
			d = -d
		}
		if d > maxDelta {
			maxDelta = d
		}
	}
	switch {
	case maxDelta >= 15:
		return TrajectoryRapid
	case maxDelta >= 5:
		return TrajectoryIncreasing
	default:
		return TrajectoryStable
	}
}
