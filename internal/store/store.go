package store

import (
	"context"
	"sync"
	"time"

	"energy-service/internal/models"
)

// Repository is the record store behind the analytics service. Listings are
// ordered by recorded_at, then id.
type Repository interface {
	// SaveSubmission stores a bill and its readings atomically and returns
	// the created records.
	SaveSubmission(ctx context.Context, sub models.NewSubmission, recordedAt time.Time) (models.BillingRecord, []models.ApplianceReading, error)
	HistoryFor(ctx context.Context, ownerID string) ([]models.BillingRecord, error)
	AllBills(ctx context.Context) ([]models.BillingRecord, error)
	AllApplianceReadings(ctx context.Context) ([]models.ApplianceReading, error)
	OwnerExists(ctx context.Context, ownerID string) (bool, error)
	Close() error
}

// Memory keeps records in process.
type Memory struct {
	mu         sync.RWMutex
	bills      []models.BillingRecord
	appliances []models.ApplianceReading
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) SaveSubmission(_ context.Context, sub models.NewSubmission, recordedAt time.Time) (models.BillingRecord, []models.ApplianceReading, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	bill := models.BillingRecord{
		ID:          int64(len(m.bills)) + 1,
		OwnerID:     sub.OwnerID,
		PeriodLabel: sub.PeriodLabel,
		TotalUnits:  sub.TotalUnits,
		BillAmount:  sub.BillAmount,
		RecordedAt:  recordedAt,
	}
	m.bills = append(m.bills, bill)

	readings := make([]models.ApplianceReading, 0, len(sub.Appliances))
	for _, a := range sub.Appliances {
		r := models.ApplianceReading{
			ID:               int64(len(m.appliances)) + 1,
			BillingRecordID:  bill.ID,
			ApplianceName:    a.Name,
			PowerRatingWatts: a.PowerRatingWatts,
			UsageHours:       a.UsageHours,
			EnergyUsageKWh:   a.EnergyUsageKWh,
			RecordedAt:       recordedAt,
		}
		m.appliances = append(m.appliances, r)
		readings = append(readings, r)
	}

	return bill, readings, nil
}

func (m *Memory) HistoryFor(_ context.Context, ownerID string) ([]models.BillingRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []models.BillingRecord
	for _, b := range m.bills {
		if b.OwnerID == ownerID {
			out = append(out, b)
		}
	}
	models.SortBills(out)
	return out, nil
}

func (m *Memory) AllBills(_ context.Context) ([]models.BillingRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := append([]models.BillingRecord(nil), m.bills...)
	models.SortBills(out)
	return out, nil
}

func (m *Memory) AllApplianceReadings(_ context.Context) ([]models.ApplianceReading, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := append([]models.ApplianceReading(nil), m.appliances...)
	models.SortReadings(out)
	return out, nil
}

func (m *Memory) OwnerExists(_ context.Context, ownerID string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, b := range m.bills {
		if b.OwnerID == ownerID {
			return true, nil
		}
	}
	return false, nil
}

func (m *Memory) Close() error {
	return nil
}
