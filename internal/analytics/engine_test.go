package analytics

import (
	"encoding/json"
	"testing"
	"time"

	"energy-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2023, 1, 31, 12, 0, 0, 0, time.UTC)

func bill(id int64, owner, label string, units, amount float64, at time.Time) models.BillingRecord {
	return models.BillingRecord{
		ID:          id,
		OwnerID:     owner,
		PeriodLabel: label,
		TotalUnits:  units,
		BillAmount:  amount,
		RecordedAt:  at,
	}
}

func reading(id, billID int64, name string, watts, hours float64, at time.Time) models.ApplianceReading {
	return models.ApplianceReading{
		ID:               id,
		BillingRecordID:  billID,
		ApplianceName:    name,
		PowerRatingWatts: watts,
		UsageHours:       hours,
		EnergyUsageKWh:   EnergyUsageKWh(watts, hours),
		RecordedAt:       at,
	}
}

func scenario() (models.BillingRecord, []models.ApplianceReading, History) {
	newBill := bill(4, "alice", "Mar 2023", 150, 5000, t0.AddDate(0, 2, 0))
	newReadings := []models.ApplianceReading{
		reading(4, 4, "AC", 1500, 10, newBill.RecordedAt),
	}

	history := History{
		Bills: []models.BillingRecord{
			bill(2, "alice", "Feb 2023", 100, 1000, t0.AddDate(0, 1, 0)),
			bill(1, "alice", "Jan 2023", 100, 1000, t0),
			bill(3, "bob", "Feb 2023", 900, 9000, t0.AddDate(0, 1, 1)),
			newBill,
		},
		Appliances: []models.ApplianceReading{
			reading(1, 1, "AC", 1500, 5, t0),
			reading(2, 1, "Fridge", 100, 12, t0),
			reading(3, 3, "Heater", 2000, 1, t0.AddDate(0, 1, 1)),
			reading(5, 3, "AC", 750, 10, t0.AddDate(0, 1, 1)),
			newReadings[0],
		},
	}
	return newBill, newReadings, history
}

func TestEngineAnalyze(t *testing.T) {
	e := NewEngine(DefaultPolicy(), nil)
	newBill, readings, history := scenario()

	result := e.Analyze(newBill, readings, history)

	assert.Equal(t, models.BillSummary{
		ID:             4,
		OwnerID:        "alice",
		PeriodLabel:    "Mar 2023",
		TotalUnits:     150,
		BillAmount:     5000,
		Recommendation: RecommendationIncrease,
	}, result.Bill)
	assert.Equal(t, []models.ApplianceUsage{{Appliance: "AC", EnergyUsageKWh: 15}}, result.Appliances)

	p := result.Predictions
	// amounts [1000 1000 5000], units [100 100 150]; bob's bill is ignored
	assert.InDelta(t, 6333.33, p.PredictedNextBill, 1e-9)
	assert.InDelta(t, 166.67, p.PredictedNextTotalUnits, 1e-9)
	assert.InDelta(t, 76000.0, p.AnnualFinancialProjection, 1e-9)
	assert.InDelta(t, 123.0, p.CarbonFootprint, 1e-9)
	assert.InDelta(t, 166.67, p.PredictedSeasonalConsumption, 1e-9)
	assert.InDelta(t, 1666.67, p.SolarEnergySavings, 1e-9)
	assert.Equal(t, TariffOffPeak, p.DynamicTariffSuggestion)
	assert.Equal(t, BenchmarkBelow, p.UsageBenchmark)
	assert.True(t, p.AnomalyFlag)
	assert.Equal(t, "Yes", p.PeakDemandPrediction)

	// appliance series span every owner: AC is [7.5 7.5 15]
	require.Len(t, p.ApplianceLevelPredictions, 3)
	assert.InDelta(t, 17.5, p.ApplianceLevelPredictions["AC"], 1e-9)
	assert.InDelta(t, 1.2, p.ApplianceLevelPredictions["Fridge"], 1e-9)
	assert.InDelta(t, 2.0, p.ApplianceLevelPredictions["Heater"], 1e-9)
	assert.Equal(t, AlertEfficiencyDrop, p.ApplianceEfficiencyAlerts["AC"])
	assert.Equal(t, AlertNormal, p.ApplianceEfficiencyAlerts["Fridge"])
	assert.Equal(t, AlertNormal, p.ApplianceEfficiencyAlerts["Heater"])

	assert.Equal(t, map[string]float64{"AC": 50}, p.EnergySavingsSimulation)
}

func TestEngineFirstSubmission(t *testing.T) {
	e := NewEngine(DefaultPolicy(), nil)
	first := bill(1, "carol", "July 2024", 80, 1200, t0)
	readings := []models.ApplianceReading{
		reading(1, 1, "Pump", 0, 3, t0),
	}

	result := e.Analyze(first, readings, History{})

	p := result.Predictions
	assert.Equal(t, RecommendationSteady, result.Bill.Recommendation)
	assert.Equal(t, 1200.0, p.PredictedNextBill)
	assert.Equal(t, 80.0, p.PredictedNextTotalUnits)
	assert.InDelta(t, 88.0, p.PredictedSeasonalConsumption, 1e-9)
	assert.Equal(t, TariffLowUsage, p.DynamicTariffSuggestion)
	assert.False(t, p.AnomalyFlag)
	assert.Equal(t, "Yes", p.PeakDemandPrediction)
	assert.Equal(t, 0.0, p.EnergySavingsSimulation["Pump"])
	assert.Equal(t, 0.0, p.ApplianceLevelPredictions["Pump"])
	assert.Equal(t, AlertNormal, p.ApplianceEfficiencyAlerts["Pump"])
}

func TestEngineZeroUnits(t *testing.T) {
	e := NewEngine(DefaultPolicy(), nil)
	b := bill(1, "dave", "Apr", 0, 500, t0)
	readings := []models.ApplianceReading{reading(1, 1, "TV", 200, 2, t0)}

	result := e.Analyze(b, readings, History{})

	assert.Equal(t, 0.0, result.Predictions.EnergySavingsSimulation["TV"])
	assert.Equal(t, 0.0, result.Predictions.SolarEnergySavings)
}

func TestEngineHistoryWithoutSubmission(t *testing.T) {
	e := NewEngine(DefaultPolicy(), nil)
	newBill, readings, full := scenario()

	partial := History{
		Bills:      full.Bills[:3],
		Appliances: full.Appliances[:4],
	}

	assert.Equal(t, e.Analyze(newBill, readings, full), e.Analyze(newBill, readings, partial))
}

func TestEngineIsDeterministic(t *testing.T) {
	e := NewEngine(DefaultPolicy(), nil)
	newBill, readings, history := scenario()

	first, err := json.Marshal(e.Analyze(newBill, readings, history))
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := json.Marshal(e.Analyze(newBill, readings, history))
		require.NoError(t, err)
		assert.Equal(t, string(first), string(again))
	}
}

func TestEngineNotAnomalousForSteadyBill(t *testing.T) {
	e := NewEngine(DefaultPolicy(), nil)
	newBill := bill(4, "erin", "Apr", 400, 1000, t0.AddDate(0, 3, 0))
	history := History{Bills: []models.BillingRecord{
		bill(1, "erin", "Jan", 100, 1000, t0),
		bill(2, "erin", "Feb", 500, 1000, t0.AddDate(0, 1, 0)),
		bill(3, "erin", "Mar", 300, 1000, t0.AddDate(0, 2, 0)),
		newBill,
	}}

	p := e.Analyze(newBill, nil, history).Predictions
	assert.False(t, p.AnomalyFlag)
	assert.Equal(t, "No", p.PeakDemandPrediction)
}

type lastValue struct{}

func (lastValue) PredictNext(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return values[len(values)-1]
}

func TestEngineUsesInjectedPredictor(t *testing.T) {
	e := NewEngine(DefaultPolicy(), lastValue{})
	newBill, readings, history := scenario()

	p := e.Analyze(newBill, readings, history).Predictions
	assert.Equal(t, 5000.0, p.PredictedNextBill)
	assert.Equal(t, 150.0, p.PredictedNextTotalUnits)
	assert.Equal(t, 15.0, p.ApplianceLevelPredictions["AC"])
}

func TestEngineHonoursPolicyOverrides(t *testing.T) {
	policy := DefaultPolicy()
	policy.CarbonKgPerKWh = 0.5
	policy.BenchmarkUnits = 100
	policy.Precision = 0
	e := NewEngine(policy, nil)

	newBill, readings, history := scenario()
	p := e.Analyze(newBill, readings, history).Predictions

	assert.Equal(t, 75.0, p.CarbonFootprint)
	assert.Equal(t, BenchmarkAbove, p.UsageBenchmark)
	assert.Equal(t, 6333.0, p.PredictedNextBill)
}
