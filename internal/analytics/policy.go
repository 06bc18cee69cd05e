package analytics

import (
	"fmt"
	"strings"
)

const (
	RecommendationIncrease = "Warning: Your consumption increased by over 20%. Consider reducing appliance usage for cost savings."
	RecommendationSteady   = "Good job! Your energy consumption is within expected limits."

	TariffLowUsage = "Your usage is low; no specific recommendation."
	TariffOffPeak  = "Operate appliances during off-peak hours (e.g., 12 AM - 6 AM)"

	BenchmarkAbove = "Above Average"
	BenchmarkBelow = "Below Average"

	AlertEfficiencyDrop = "Efficiency drop detected. Consider maintenance."
	AlertNormal         = "Normal performance."

	monthsPerYear = 12
)

// Policy holds the constants behind the derived metrics.
type Policy struct {
	CarbonKgPerKWh       float64  `yaml:"carbon_kg_per_kwh"`
	IncreaseWarningRatio float64  `yaml:"increase_warning_ratio"`
	EfficiencyDropRatio  float64  `yaml:"efficiency_drop_ratio"`
	SolarOffsetRatio     float64  `yaml:"solar_offset_ratio"`
	AnomalySigmas        float64  `yaml:"anomaly_sigmas"`
	BenchmarkUnits       float64  `yaml:"benchmark_units"`
	LowUsageUnits        float64  `yaml:"low_usage_units"`
	SummerFactor         float64  `yaml:"summer_factor"`
	WinterFactor         float64  `yaml:"winter_factor"`
	SummerTokens         []string `yaml:"summer_tokens"`
	WinterTokens         []string `yaml:"winter_tokens"`
	Precision            int32    `yaml:"precision"`
}

func DefaultPolicy() Policy {
	return Policy{
		CarbonKgPerKWh:       0.82,
		IncreaseWarningRatio: 1.2,
		EfficiencyDropRatio:  1.2,
		SolarOffsetRatio:     0.3,
		AnomalySigmas:        2,
		BenchmarkUnits:       200,
		LowUsageUnits:        100,
		SummerFactor:         1.1,
		WinterFactor:         0.9,
		SummerTokens:         []string{"jun", "jul", "aug"},
		WinterTokens:         []string{"dec", "jan", "feb"},
		Precision:            2,
	}
}

// Validate reports policy values that would make the metrics meaningless.
func (p Policy) Validate() error {
	var problems []string
	if p.CarbonKgPerKWh < 0 {
		problems = append(problems, "carbon_kg_per_kwh must not be negative")
	}
	if p.IncreaseWarningRatio <= 0 {
		problems = append(problems, "increase_warning_ratio must be positive")
	}
	if p.EfficiencyDropRatio <= 0 {
		problems = append(problems, "efficiency_drop_ratio must be positive")
	}
	if p.SolarOffsetRatio < 0 || p.SolarOffsetRatio > 1 {
		problems = append(problems, "solar_offset_ratio must be between 0 and 1")
	}
	if p.AnomalySigmas < 0 {
		problems = append(problems, "anomaly_sigmas must not be negative")
	}
	if p.Precision < 0 || p.Precision > 10 {
		problems = append(problems, "precision must be between 0 and 10")
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid policy: %s", strings.Join(problems, "; "))
	}
	return nil
}

// EnergyUsageKWh converts a power rating and hours of use into kWh.
func EnergyUsageKWh(powerRatingWatts, usageHours float64) float64 {
	return powerRatingWatts * usageHours / 1000
}

// CostPerUnit is zero when no units were billed.
func CostPerUnit(billAmount, totalUnits float64) float64 {
	if totalUnits > 0 {
		return billAmount / totalUnits
	}
	return 0
}

// ApplianceSavings is the cost of running the appliance for one hour.
func ApplianceSavings(powerRatingWatts, costPerUnit float64) float64 {
	return powerRatingWatts / 1000 * costPerUnit
}

func AnnualProjection(predictedNextBill float64) float64 {
	return predictedNextBill * monthsPerYear
}

func (p Policy) Recommendation(currentUnits, previousUnits float64) string {
	if previousUnits > 0 && currentUnits > previousUnits*p.IncreaseWarningRatio {
		return RecommendationIncrease
	}
	return RecommendationSteady
}

func (p Policy) CarbonFootprint(totalUnits float64) float64 {
	return totalUnits * p.CarbonKgPerKWh
}

// SeasonalFactor matches month tokens anywhere in the label, case-insensitively.
// Summer tokens win when both kinds appear.
func (p Policy) SeasonalFactor(periodLabel string) float64 {
	label := strings.ToLower(periodLabel)
	if containsAny(label, p.SummerTokens) {
		return p.SummerFactor
	}
	if containsAny(label, p.WinterTokens) {
		return p.WinterFactor
	}
	return 1.0
}

func (p Policy) TariffSuggestion(totalUnits float64) string {
	if totalUnits < p.LowUsageUnits {
		return TariffLowUsage
	}
	return TariffOffPeak
}

func (p Policy) SolarSavings(predictedUnits, costPerUnit float64) float64 {
	return predictedUnits * p.SolarOffsetRatio * costPerUnit
}

func (p Policy) UsageBenchmark(totalUnits float64) string {
	if totalUnits >= p.BenchmarkUnits {
		return BenchmarkAbove
	}
	return BenchmarkBelow
}

// IsAnomaly compares a bill against the mean and spread of earlier bills.
// With no earlier bills the bill is its own baseline and never anomalous.
func (p Policy) IsAnomaly(billAmount float64, previous []float64) bool {
	mean, sd := billAmount, 0.0
	if len(previous) > 0 {
		mean, sd = Mean(previous), StdDev(previous)
	}
	return billAmount > mean+p.AnomalySigmas*sd
}

// IsPeakDemand reports whether units match or exceed every earlier period.
func IsPeakDemand(totalUnits float64, previous []float64) bool {
	peak, ok := Max(previous)
	if !ok {
		return true
	}
	return totalUnits >= peak
}

// EfficiencyAlert flags an appliance whose latest reading runs above the
// series mean by more than the configured ratio.
func (p Policy) EfficiencyAlert(series []float64) string {
	if len(series) == 0 {
		return AlertNormal
	}
	if series[len(series)-1] > Mean(series)*p.EfficiencyDropRatio {
		return AlertEfficiencyDrop
	}
	return AlertNormal
}

func containsAny(s string, tokens []string) bool {
	for _, tok := range tokens {
		if tok != "" && strings.Contains(s, strings.ToLower(tok)) {
			return true
		}
	}
	return false
}
