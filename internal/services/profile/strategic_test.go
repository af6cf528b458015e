package profile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rivalscope/rivalscope/internal/domain"
	"github.com/rivalscope/rivalscope/internal/services/intel"
)

func TestBuildStrategic_AllDimensionsPresent(t *testing.T) {
	p := BuildStrategic(intel.RawSignals{CompetitorID: "comp-1"})

	assert.Equal(t, "comp-1", p.CompetitorID)
	require.Len(t, p.Dimensions, len(StrategicDims))
	for _, dim := range StrategicDims {
		v, ok := p.Dimensions[dim]
		require.True(t, ok, dim)
		assert.GreaterOrEqual(t, v, 0)
		assert.LessOrEqual(t, v, 100)
	}
}

func TestBuildStrategic_Formulas(t *testing.T) {
	raw := rawWith(map[domain.PageType]domain.PageSignals{
		domain.PageTypeHomepage: {
			Headline: "Transform and accelerate outcomes with a strategic partner",
			Headings: []string{"One", "Two", "Three"},
		},
		domain.PageTypePricing: {
			PricingTokens: []string{"$29", "$99"},
			Headings:      []string{"Starter", "Pro"},
		},
	})
	raw.ChangesLast30d = 4

	p := BuildStrategic(raw)

	// 5 outcome-word hits * 20, clamped.
	assert.Equal(t, 100, p.Dimensions[DimStrategicElevation])
	// 3 homepage headings * 10.
	assert.Equal(t, 30, p.Dimensions[DimServiceBreadth])
	// Pricing page present: 40 + 2 tokens*10 + 2 headings*5.
	assert.Equal(t, 70, p.Dimensions[DimMonetizationMaturity])
	// 4 recent changes * 12.
	assert.Equal(t, 48, p.Dimensions[DimMarketMomentum])
}

func TestBuildStrategic_MonetizationFloorWithoutPricingPage(t *testing.T) {
	p := BuildStrategic(rawWith(map[domain.PageType]domain.PageSignals{
		domain.PageTypeHomepage: {Headline: "hi"},
	}))

	assert.Equal(t, 10, p.Dimensions[DimMonetizationMaturity])
}

func TestBuildStrategic_VerticalDepthRewardsConcentration(t *testing.T) {
	concentrated := BuildStrategic(rawWith(map[domain.PageType]domain.PageSignals{
		domain.PageTypeHomepage: {
			Headings: []string{"Bank payments", "Lending desks", "Trading and insurance"},
		},
	}))
	spread := BuildStrategic(rawWith(map[domain.PageType]domain.PageSignals{
		domain.PageTypeHomepage: {
			Headings: []string{"Bank tools", "Patient care", "Retail checkout", "Factory floors"},
		},
	}))

	assert.Greater(t,
		concentrated.Dimensions[DimVerticalDepth],
		spread.Dimensions[DimVerticalDepth],
	)
}

func TestPressure(t *testing.T) {
	self := DimensionVector{DimServiceBreadth: 40, DimMarketMomentum: 50}

	peers := []DimensionVector{
		{DimServiceBreadth: 70, DimMarketMomentum: 62},
		{DimServiceBreadth: 70, DimMarketMomentum: 58},
	}

	pressure := Pressure(self, peers)
	// Peer average 70 vs self 40.
	assert.Equal(t, PressureHigh, pressure[DimServiceBreadth])
	// Peer average 60 vs self 50.
	assert.Equal(t, PressureModerate, pressure[DimMarketMomentum])
	// Dimensions where self is not behind read low.
	assert.Equal(t, PressureLow, pressure[DimStrategicElevation])
}

func TestPressure_NoPeersIsLow(t *testing.T) {
	pressure := Pressure(DimensionVector{DimServiceBreadth: 10}, nil)
	for _, dim := range StrategicDims {
		assert.Equal(t, PressureLow, pressure[dim])
	}
}

func TestDeriveTrajectory(t *testing.T) {
	base := DimensionVector{DimServiceBreadth: 50, DimMarketMomentum: 50}

	assert.Equal(t, TrajectoryStable, DeriveTrajectory(nil))
	assert.Equal(t, TrajectoryStable, DeriveTrajectory([]DimensionVector{base}))

	small := DimensionVector{DimServiceBreadth: 53, DimMarketMomentum: 50}
	assert.Equal(t, TrajectoryStable, DeriveTrajectory([]DimensionVector{small, base}))

	moderate := DimensionVector{DimServiceBreadth: 58, DimMarketMomentum: 50}
	assert.Equal(t, TrajectoryIncreasing, DeriveTrajectory([]DimensionVector{moderate, base}))

	rapid := DimensionVector{DimServiceBreadth: 50, DimMarketMomentum: 30}
	assert.Equal(t, TrajectoryRapid, DeriveTrajectory([]DimensionVector{rapid, base}))

	// Only the two most recent snapshots decide the grade.
	history := []DimensionVector{base, small, rapid}
	assert.Equal(t, TrajectoryStable, DeriveTrajectory(history))
}
