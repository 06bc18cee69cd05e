package models

import "sort"

// SortBills orders bills by recording time, breaking ties by id.
func SortBills(bills []BillingRecord) {
	sort.SliceStable(bills, func(i, j int) bool {
		if !bills[i].RecordedAt.Equal(bills[j].RecordedAt) {
			return bills[i].RecordedAt.Before(bills[j].RecordedAt)
		}
		return bills[i].ID < bills[j].ID
	})
}

// SortReadings orders readings by recording time, breaking ties by id.
func SortReadings(readings []ApplianceReading) {
	sort.SliceStable(readings, func(i, j int) bool {
		if !readings[i].RecordedAt.Equal(readings[j].RecordedAt) {
			return readings[i].RecordedAt.Before(readings[j].RecordedAt)
		}
		return readings[i].ID < readings[j].ID
	})
}
