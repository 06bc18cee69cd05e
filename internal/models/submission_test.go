package models

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(v float64) *float64 { return &v }

func TestNormalize(t *testing.T) {
	t.Run("valid submission", func(t *testing.T) {
		sub := Submission{
			OwnerID:     " user123 ",
			PeriodLabel: "Jan 2023",
			TotalUnits:  ptr(150),
			BillAmount:  ptr(3000),
			Appliances: []ApplianceInput{
				{Name: "AC", PowerRatingWatts: ptr(1500), UsageHours: ptr(5)},
				{Name: "Washing Machine", PowerRatingWatts: ptr(500), UsageHours: ptr(2)},
			},
		}

		out, err := sub.Normalize()
		require.NoError(t, err)
		assert.Equal(t, "user123", out.OwnerID)
		assert.Equal(t, "Jan 2023", out.PeriodLabel)
		assert.Equal(t, 150.0, out.TotalUnits)
		assert.Equal(t, 3000.0, out.BillAmount)
		require.Len(t, out.Appliances, 2)
		assert.Equal(t, "AC", out.Appliances[0].Name)
		assert.Equal(t, 1500.0, out.Appliances[0].PowerRatingWatts)
	})

	t.Run("incomplete appliances are skipped", func(t *testing.T) {
		sub := Submission{
			PeriodLabel: "Feb 2023",
			TotalUnits:  ptr(0),
			BillAmount:  ptr(0),
			Appliances: []ApplianceInput{
				{Name: "", PowerRatingWatts: ptr(100), UsageHours: ptr(1)},
				{Name: "Fan", UsageHours: ptr(1)},
				{Name: "Heater", PowerRatingWatts: ptr(2000)},
				{Name: "Lamp", PowerRatingWatts: ptr(60), UsageHours: ptr(4)},
			},
		}

		out, err := sub.Normalize()
		require.NoError(t, err)
		require.Len(t, out.Appliances, 1)
		assert.Equal(t, "Lamp", out.Appliances[0].Name)
	})

	tests := []struct {
		name  string
		sub   Submission
		field string
	}{
		{"missing period", Submission{TotalUnits: ptr(1), BillAmount: ptr(1)}, "period_label"},
		{"blank period", Submission{PeriodLabel: "  ", TotalUnits: ptr(1), BillAmount: ptr(1)}, "period_label"},
		{"missing units", Submission{PeriodLabel: "Mar", BillAmount: ptr(1)}, "total_units"},
		{"missing amount", Submission{PeriodLabel: "Mar", TotalUnits: ptr(1)}, "bill_amount"},
		{"negative units", Submission{PeriodLabel: "Mar", TotalUnits: ptr(-1), BillAmount: ptr(1)}, "total_units"},
		{"nan amount", Submission{PeriodLabel: "Mar", TotalUnits: ptr(1), BillAmount: ptr(math.NaN())}, "bill_amount"},
		{"negative rating", Submission{
			PeriodLabel: "Mar", TotalUnits: ptr(1), BillAmount: ptr(1),
			Appliances: []ApplianceInput{{Name: "AC", PowerRatingWatts: ptr(-5), UsageHours: ptr(1)}},
		}, "appliances[0].power_rating_watts"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.sub.Normalize()
			var verr *ValidationError
			require.True(t, errors.As(err, &verr), "expected ValidationError, got %v", err)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}
