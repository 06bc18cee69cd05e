package analytics

import (
	"sync"
	"time"

	"energy-service/internal/models"
)

const maxAnomalyEvents = 100

// Tracker keeps running statistics over analysed submissions: a rolling
// window of bill amounts and the most recent anomaly events.
type Tracker struct {
	windowSize int
	window     []float64
	anomalies  []models.AnomalyEvent
	stats      models.AnalyticsStats
	now        func() time.Time
	mu         sync.RWMutex
}

func NewTracker(windowSize int) *Tracker {
	if windowSize <= 0 {
		windowSize = 50
	}
	return &Tracker{
		windowSize: windowSize,
		window:     make([]float64, 0, windowSize),
		anomalies:  make([]models.AnomalyEvent, 0, maxAnomalyEvents),
		stats:      models.AnalyticsStats{WindowSize: windowSize},
		now:        time.Now,
	}
}

// Record folds one result into the statistics and returns the updated
// rolling average bill amount.
func (t *Tracker) Record(result models.AnalyticsResult) float64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.window = append(t.window, result.Bill.BillAmount)
	if len(t.window) > t.windowSize {
		t.window = t.window[1:]
	}

	t.stats.LastBillAmount = result.Bill.BillAmount
	t.stats.RollingAverageBill = Mean(t.window)
	t.stats.TotalSubmissions++
	if result.Predictions.PeakDemandPrediction == "Yes" {
		t.stats.PeakDemandCount++
	}

	if result.Predictions.AnomalyFlag {
		ts := t.now()
		t.stats.TotalAnomalies++
		t.stats.LastAnomalyTime = ts

		t.anomalies = append(t.anomalies, models.AnomalyEvent{
			Timestamp:   ts,
			BillID:      result.Bill.ID,
			OwnerID:     result.Bill.OwnerID,
			PeriodLabel: result.Bill.PeriodLabel,
			BillAmount:  result.Bill.BillAmount,
		})
		if len(t.anomalies) > maxAnomalyEvents {
			t.anomalies = t.anomalies[1:]
		}
	}
	t.stats.AnomalyRate = float64(t.stats.TotalAnomalies) / float64(t.stats.TotalSubmissions)

	return t.stats.RollingAverageBill
}

func (t *Tracker) Stats() models.AnalyticsStats {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.stats
}

// RecentAnomalies returns up to limit events, oldest first.
func (t *Tracker) RecentAnomalies(limit int) []models.AnomalyEvent {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if limit <= 0 || limit > len(t.anomalies) {
		limit = len(t.anomalies)
	}

	out := make([]models.AnomalyEvent, limit)
	copy(out, t.anomalies[len(t.anomalies)-limit:])
	return out
}
