package analytics

import (
	"math"

	"energy-service/internal/models"

	"github.com/shopspring/decimal"
)

// History is the snapshot of stored records an analysis runs against.
// Bills may hold every owner's records; only the submitting owner's are used.
// Appliances are evaluated across all owners.
type History struct {
	Bills      []models.BillingRecord
	Appliances []models.ApplianceReading
}

// Engine derives forecasts and advisory metrics from a submission and its
// history. It holds no state between calls and is safe for concurrent use.
type Engine struct {
	policy    Policy
	predictor Predictor
}

func NewEngine(policy Policy, predictor Predictor) *Engine {
	if predictor == nil {
		predictor = LinearTrend{}
	}
	return &Engine{policy: policy, predictor: predictor}
}

func (e *Engine) Policy() Policy {
	return e.policy
}

// Analyze evaluates bill and its readings against history. Records missing
// from history are added to the working set, so callers may pass a snapshot
// taken before or after persisting the submission.
func (e *Engine) Analyze(bill models.BillingRecord, readings []models.ApplianceReading, history History) models.AnalyticsResult {
	bills := ownerBills(bill, history.Bills)
	appliances := withReadings(history.Appliances, readings)

	amounts := make([]float64, len(bills))
	units := make([]float64, len(bills))
	var prevAmounts, prevUnits []float64
	for i, b := range bills {
		amounts[i] = b.BillAmount
		units[i] = b.TotalUnits
		if b.ID != bill.ID {
			prevAmounts = append(prevAmounts, b.BillAmount)
			prevUnits = append(prevUnits, b.TotalUnits)
		}
	}

	predictedBill := e.predictor.PredictNext(amounts)
	predictedUnits := e.predictor.PredictNext(units)

	previousUnits := bill.TotalUnits
	if len(bills) > 1 {
		previousUnits = bills[len(bills)-2].TotalUnits
	}

	applianceForecasts := make(map[string]float64)
	applianceAlerts := make(map[string]string)
	for name, series := range applianceSeries(appliances) {
		applianceForecasts[name] = e.round(e.predictor.PredictNext(series))
		applianceAlerts[name] = e.policy.EfficiencyAlert(series)
	}

	costPerUnit := CostPerUnit(bill.BillAmount, bill.TotalUnits)
	usage := make([]models.ApplianceUsage, 0, len(readings))
	savings := make(map[string]float64, len(readings))
	for _, r := range readings {
		usage = append(usage, models.ApplianceUsage{
			Appliance:      r.ApplianceName,
			EnergyUsageKWh: e.round(r.EnergyUsageKWh),
		})
		savings[r.ApplianceName] = e.round(ApplianceSavings(r.PowerRatingWatts, costPerUnit))
	}

	peak := "No"
	if IsPeakDemand(bill.TotalUnits, prevUnits) {
		peak = "Yes"
	}

	return models.AnalyticsResult{
		Bill: models.BillSummary{
			ID:             bill.ID,
			OwnerID:        bill.OwnerID,
			PeriodLabel:    bill.PeriodLabel,
			TotalUnits:     bill.TotalUnits,
			BillAmount:     bill.BillAmount,
			Recommendation: e.policy.Recommendation(bill.TotalUnits, previousUnits),
		},
		Appliances: usage,
		Predictions: models.Predictions{
			PredictedNextBill:            e.round(predictedBill),
			PredictedNextTotalUnits:      e.round(predictedUnits),
			ApplianceLevelPredictions:    applianceForecasts,
			ApplianceEfficiencyAlerts:    applianceAlerts,
			EnergySavingsSimulation:      savings,
			CarbonFootprint:              e.round(e.policy.CarbonFootprint(bill.TotalUnits)),
			PredictedSeasonalConsumption: e.round(predictedUnits * e.policy.SeasonalFactor(bill.PeriodLabel)),
			DynamicTariffSuggestion:      e.policy.TariffSuggestion(bill.TotalUnits),
			SolarEnergySavings:           e.round(e.policy.SolarSavings(predictedUnits, costPerUnit)),
			AnnualFinancialProjection:    e.round(AnnualProjection(predictedBill)),
			UsageBenchmark:               e.policy.UsageBenchmark(bill.TotalUnits),
			AnomalyFlag:                  e.policy.IsAnomaly(bill.BillAmount, prevAmounts),
			PeakDemandPrediction:         peak,
		},
	}
}

// round applies the policy precision. Non-finite values collapse to 0.
func (e *Engine) round(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	f, _ := decimal.NewFromFloat(v).Round(e.policy.Precision).Float64()
	return f
}

func ownerBills(bill models.BillingRecord, all []models.BillingRecord) []models.BillingRecord {
	var out []models.BillingRecord
	seen := false
	for _, b := range all {
		if b.OwnerID != bill.OwnerID {
			continue
		}
		if b.ID == bill.ID {
			seen = true
		}
		out = append(out, b)
	}
	if !seen {
		out = append(out, bill)
	}
	models.SortBills(out)
	return out
}

func withReadings(history, readings []models.ApplianceReading) []models.ApplianceReading {
	ids := make(map[int64]struct{}, len(history))
	out := make([]models.ApplianceReading, 0, len(history)+len(readings))
	for _, r := range history {
		ids[r.ID] = struct{}{}
		out = append(out, r)
	}
	for _, r := range readings {
		if _, ok := ids[r.ID]; !ok {
			out = append(out, r)
		}
	}
	return out
}

// applianceSeries groups energy usage per appliance name in recording order.
func applianceSeries(readings []models.ApplianceReading) map[string][]float64 {
	sorted := append([]models.ApplianceReading(nil), readings...)
	models.SortReadings(sorted)

	series := make(map[string][]float64)
	for _, r := range sorted {
		series[r.ApplianceName] = append(series[r.ApplianceName], r.EnergyUsageKWh)
	}
	return series
}
