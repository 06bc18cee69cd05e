package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnergyUsageKWh(t *testing.T) {
	assert.Equal(t, 7.5, EnergyUsageKWh(1500, 5))
	assert.Equal(t, 0.0, EnergyUsageKWh(0, 10))
}

func TestCostPerUnit(t *testing.T) {
	assert.Equal(t, 0.0, CostPerUnit(3000, 0))
	assert.Equal(t, 20.0, CostPerUnit(3000, 150))
}

func TestApplianceSavings(t *testing.T) {
	assert.Equal(t, 0.0, ApplianceSavings(0, 20))
	assert.Equal(t, 0.0, ApplianceSavings(0, 1e6))
	assert.Equal(t, 30.0, ApplianceSavings(1500, 20))
}

func TestRecommendation(t *testing.T) {
	p := DefaultPolicy()
	assert.Equal(t, RecommendationIncrease, p.Recommendation(150, 100))
	assert.Equal(t, RecommendationSteady, p.Recommendation(110, 100))
	assert.Equal(t, RecommendationSteady, p.Recommendation(120, 100))
	assert.Equal(t, RecommendationSteady, p.Recommendation(500, 0))
	assert.Equal(t, RecommendationSteady, p.Recommendation(150, 150))
}

func TestSeasonalFactor(t *testing.T) {
	p := DefaultPolicy()
	tests := map[string]float64{
		"June 2023":    1.1,
		"JUL-2024":     1.1,
		"aug":          1.1,
		"December":     0.9,
		"Jan 2023":     0.9,
		"feb":          0.9,
		"March 2023":   1.0,
		"":             1.0,
		"Jan/Jun 2023": 1.1,
	}
	for label, want := range tests {
		assert.Equal(t, want, p.SeasonalFactor(label), label)
	}
}

func TestTariffAndBenchmark(t *testing.T) {
	p := DefaultPolicy()
	assert.Equal(t, TariffLowUsage, p.TariffSuggestion(99.9))
	assert.Equal(t, TariffOffPeak, p.TariffSuggestion(100))

	assert.Equal(t, BenchmarkAbove, p.UsageBenchmark(200))
	assert.Equal(t, BenchmarkBelow, p.UsageBenchmark(199))
}

func TestCarbonSolarAnnual(t *testing.T) {
	p := DefaultPolicy()
	assert.InDelta(t, 123.0, p.CarbonFootprint(150), 1e-9)
	assert.InDelta(t, 900.0, p.SolarSavings(150, 20), 1e-9)
	assert.Equal(t, 36000.0, AnnualProjection(3000))
}

func TestIsAnomaly(t *testing.T) {
	p := DefaultPolicy()
	history := []float64{1000, 1000, 1000}

	assert.False(t, p.IsAnomaly(1000, history))
	assert.True(t, p.IsAnomaly(5000, history))
	assert.False(t, p.IsAnomaly(5000, nil), "first submission is never anomalous")
	assert.True(t, p.IsAnomaly(1001, []float64{1000}))

	// mean 4, sample stdev 2 -> threshold 8
	assert.False(t, p.IsAnomaly(8, []float64{2, 4, 6}))
	assert.True(t, p.IsAnomaly(8.01, []float64{2, 4, 6}))
}

func TestIsPeakDemand(t *testing.T) {
	assert.True(t, IsPeakDemand(10, nil))
	assert.True(t, IsPeakDemand(500, []float64{100, 500}))
	assert.False(t, IsPeakDemand(400, []float64{100, 500}))
}

func TestEfficiencyAlert(t *testing.T) {
	p := DefaultPolicy()
	assert.Equal(t, AlertNormal, p.EfficiencyAlert(nil))
	assert.Equal(t, AlertNormal, p.EfficiencyAlert([]float64{7.5}))
	assert.Equal(t, AlertNormal, p.EfficiencyAlert([]float64{5, 5, 6}))
	assert.Equal(t, AlertEfficiencyDrop, p.EfficiencyAlert([]float64{5, 5, 10}))
}

func TestPolicyValidate(t *testing.T) {
	assert.NoError(t, DefaultPolicy().Validate())

	p := DefaultPolicy()
	p.SolarOffsetRatio = 1.5
	p.IncreaseWarningRatio = 0
	err := p.Validate()
	assert.ErrorContains(t, err, "solar_offset_ratio")
	assert.ErrorContains(t, err, "increase_warning_ratio")
}
