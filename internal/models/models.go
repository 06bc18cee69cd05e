package models

import "time"

// BillingRecord is one monthly bill stored for an owner.
type BillingRecord struct {
	ID          int64     `json:"id"`
	OwnerID     string    `json:"owner_id"`
	PeriodLabel string    `json:"period_label"`
	TotalUnits  float64   `json:"total_units"`
	BillAmount  float64   `json:"bill_amount"`
	RecordedAt  time.Time `json:"recorded_at"`
}

// ApplianceReading is one appliance's usage attached to a billing record.
type ApplianceReading struct {
	ID               int64     `json:"id"`
	BillingRecordID  int64     `json:"billing_record_id"`
	ApplianceName    string    `json:"appliance_name"`
	PowerRatingWatts float64   `json:"power_rating_watts"`
	UsageHours       float64   `json:"usage_hours"`
	EnergyUsageKWh   float64   `json:"energy_usage_kwh"`
	RecordedAt       time.Time `json:"recorded_at"`
}

type BillSummary struct {
	ID             int64   `json:"id"`
	OwnerID        string  `json:"owner_id"`
	PeriodLabel    string  `json:"period_label"`
	TotalUnits     float64 `json:"total_units"`
	BillAmount     float64 `json:"bill_amount"`
	Recommendation string  `json:"recommendation"`
}

type ApplianceUsage struct {
	Appliance      string  `json:"appliance"`
	EnergyUsageKWh float64 `json:"energy_usage_kwh"`
}

type Predictions struct {
	PredictedNextBill            float64            `json:"predicted_next_bill"`
	PredictedNextTotalUnits      float64            `json:"predicted_next_total_units"`
	ApplianceLevelPredictions    map[string]float64 `json:"appliance_level_predictions"`
	ApplianceEfficiencyAlerts    map[string]string  `json:"appliance_efficiency_alerts"`
	EnergySavingsSimulation      map[string]float64 `json:"energy_savings_simulation"`
	CarbonFootprint              float64            `json:"carbon_footprint"`
	PredictedSeasonalConsumption float64            `json:"predicted_seasonal_consumption"`
	DynamicTariffSuggestion      string             `json:"dynamic_tariff_suggestion"`
	SolarEnergySavings           float64            `json:"solar_energy_savings"`
	AnnualFinancialProjection    float64            `json:"annual_financial_projection"`
	UsageBenchmark               string             `json:"usage_benchmark"`
	AnomalyFlag                  bool               `json:"anomaly_flag"`
	PeakDemandPrediction         string             `json:"peak_demand_prediction"`
}

// AnalyticsResult is everything derived from one submission.
type AnalyticsResult struct {
	Bill        BillSummary      `json:"bill"`
	Appliances  []ApplianceUsage `json:"appliances"`
	Predictions Predictions      `json:"predictions"`
}

type DashboardPoint struct {
	PeriodLabel string  `json:"period_label"`
	TotalUnits  float64 `json:"total_units"`
	BillAmount  float64 `json:"bill_amount"`
}

type AnomalyEvent struct {
	Timestamp   time.Time `json:"timestamp"`
	BillID      int64     `json:"bill_id"`
	OwnerID     string    `json:"owner_id"`
	PeriodLabel string    `json:"period_label"`
	BillAmount  float64   `json:"bill_amount"`
}

type AnalyticsStats struct {
	LastBillAmount     float64   `json:"last_bill_amount"`
	RollingAverageBill float64   `json:"rolling_average_bill"`
	AnomalyRate        float64   `json:"anomaly_rate"`
	TotalSubmissions   int64     `json:"total_submissions"`
	TotalAnomalies     int64     `json:"total_anomalies"`
	PeakDemandCount    int64     `json:"peak_demand_count"`
	LastAnomalyTime    time.Time `json:"last_anomaly_time,omitempty"`
	WindowSize         int       `json:"window_size"`
}
