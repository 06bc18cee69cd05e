package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"energy-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func repositories(t *testing.T) map[string]Repository {
	t.Helper()

	sqlite, err := NewSQLite(filepath.Join(t.TempDir(), "energy.db"))
	require.NoError(t, err)

	repos := map[string]Repository{
		"memory": NewMemory(),
		"sqlite": sqlite,
	}
	t.Cleanup(func() {
		for _, r := range repos {
			r.Close()
		}
	})
	return repos
}

func submission(owner, label string, units, amount float64, appliances ...models.NewAppliance) models.NewSubmission {
	return models.NewSubmission{
		OwnerID:     owner,
		PeriodLabel: label,
		TotalUnits:  units,
		BillAmount:  amount,
		Appliances:  appliances,
	}
}

func TestRepositorySaveAndQuery(t *testing.T) {
	ctx := context.Background()
	at := time.Date(2023, 3, 1, 10, 0, 0, 123, time.UTC)

	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			exists, err := repo.OwnerExists(ctx, "alice")
			require.NoError(t, err)
			assert.False(t, exists)

			bill, readings, err := repo.SaveSubmission(ctx, submission("alice", "Jan 2023", 150, 3000,
				models.NewAppliance{Name: "AC", PowerRatingWatts: 1500, UsageHours: 5, EnergyUsageKWh: 7.5},
				models.NewAppliance{Name: "Fan", PowerRatingWatts: 60, UsageHours: 10, EnergyUsageKWh: 0.6},
			), at)
			require.NoError(t, err)
			assert.Equal(t, int64(1), bill.ID)
			assert.True(t, bill.RecordedAt.Equal(at))
			require.Len(t, readings, 2)
			assert.Equal(t, bill.ID, readings[0].BillingRecordID)
			assert.Equal(t, "Fan", readings[1].ApplianceName)
			assert.NotEqual(t, readings[0].ID, readings[1].ID)

			_, _, err = repo.SaveSubmission(ctx, submission("bob", "Jan 2023", 90, 1200), at.Add(time.Hour))
			require.NoError(t, err)
			second, _, err := repo.SaveSubmission(ctx, submission("alice", "Feb 2023", 170, 3400), at.Add(2*time.Hour))
			require.NoError(t, err)
			assert.Equal(t, int64(3), second.ID)

			history, err := repo.HistoryFor(ctx, "alice")
			require.NoError(t, err)
			require.Len(t, history, 2)
			assert.Equal(t, "Jan 2023", history[0].PeriodLabel)
			assert.Equal(t, "Feb 2023", history[1].PeriodLabel)
			assert.Equal(t, 3400.0, history[1].BillAmount)

			all, err := repo.AllBills(ctx)
			require.NoError(t, err)
			require.Len(t, all, 3)
			assert.Equal(t, "bob", all[1].OwnerID)

			appliances, err := repo.AllApplianceReadings(ctx)
			require.NoError(t, err)
			require.Len(t, appliances, 2)
			assert.Equal(t, 7.5, appliances[0].EnergyUsageKWh)

			exists, err = repo.OwnerExists(ctx, "alice")
			require.NoError(t, err)
			assert.True(t, exists)
		})
	}
}

func TestRepositoryOrdersByRecordedAt(t *testing.T) {
	ctx := context.Background()
	at := time.Date(2023, 3, 1, 10, 0, 0, 0, time.UTC)

	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			_, _, err := repo.SaveSubmission(ctx, submission("alice", "late", 1, 1), at.Add(time.Hour))
			require.NoError(t, err)
			_, _, err = repo.SaveSubmission(ctx, submission("alice", "early", 1, 1), at)
			require.NoError(t, err)
			_, _, err = repo.SaveSubmission(ctx, submission("alice", "tie", 1, 1), at)
			require.NoError(t, err)

			history, err := repo.HistoryFor(ctx, "alice")
			require.NoError(t, err)
			require.Len(t, history, 3)
			assert.Equal(t, "early", history[0].PeriodLabel)
			assert.Equal(t, "tie", history[1].PeriodLabel)
			assert.Equal(t, "late", history[2].PeriodLabel)
		})
	}
}

func TestSQLitePersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "energy.db")

	db, err := NewSQLite(path)
	require.NoError(t, err)
	_, _, err = db.SaveSubmission(ctx, submission("alice", "Jan", 10, 20,
		models.NewAppliance{Name: "AC", PowerRatingWatts: 1000, UsageHours: 1, EnergyUsageKWh: 1},
	), time.Now())
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = NewSQLite(path)
	require.NoError(t, err)
	defer db.Close()

	history, err := db.HistoryFor(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, history, 1)

	readings, err := db.AllApplianceReadings(ctx)
	require.NoError(t, err)
	require.Len(t, readings, 1)
	assert.Equal(t, history[0].ID, readings[0].BillingRecordID)
}
