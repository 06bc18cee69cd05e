package models

import (
	"fmt"
	"math"
	"strings"
)

// Submission is the payload accepted by the submit endpoint. Numeric fields
// are pointers so that a missing value can be told apart from zero.
type Submission struct {
	OwnerID     string           `json:"owner_id"`
	PeriodLabel string           `json:"period_label"`
	TotalUnits  *float64         `json:"total_units"`
	BillAmount  *float64         `json:"bill_amount"`
	Appliances  []ApplianceInput `json:"appliances"`
}

type ApplianceInput struct {
	Name             string   `json:"name"`
	PowerRatingWatts *float64 `json:"power_rating_watts"`
	UsageHours       *float64 `json:"usage_hours"`
}

// NewSubmission is a validated submission ready to be persisted.
type NewSubmission struct {
	OwnerID     string
	PeriodLabel string
	TotalUnits  float64
	BillAmount  float64
	Appliances  []NewAppliance
}

type NewAppliance struct {
	Name             string
	PowerRatingWatts float64
	UsageHours       float64
	EnergyUsageKWh   float64
}

// ValidationError reports a rejected submission field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for %s: %s", e.Field, e.Message)
}

// Normalize validates the submission and returns its persisted form.
// Appliance entries without a name, rating or hours are dropped rather than
// rejected. EnergyUsageKWh is left for the caller to fill in.
func (s Submission) Normalize() (NewSubmission, error) {
	label := strings.TrimSpace(s.PeriodLabel)
	if label == "" {
		return NewSubmission{}, &ValidationError{Field: "period_label", Message: "is required"}
	}
	if s.TotalUnits == nil {
		return NewSubmission{}, &ValidationError{Field: "total_units", Message: "is required"}
	}
	if s.BillAmount == nil {
		return NewSubmission{}, &ValidationError{Field: "bill_amount", Message: "is required"}
	}
	if err := checkQuantity("total_units", *s.TotalUnits); err != nil {
		return NewSubmission{}, err
	}
	if err := checkQuantity("bill_amount", *s.BillAmount); err != nil {
		return NewSubmission{}, err
	}

	out := NewSubmission{
		OwnerID:     strings.TrimSpace(s.OwnerID),
		PeriodLabel: label,
		TotalUnits:  *s.TotalUnits,
		BillAmount:  *s.BillAmount,
	}

	for i, a := range s.Appliances {
		name := strings.TrimSpace(a.Name)
		if name == "" || a.PowerRatingWatts == nil || a.UsageHours == nil {
			continue
		}
		if err := checkQuantity(fmt.Sprintf("appliances[%d].power_rating_watts", i), *a.PowerRatingWatts); err != nil {
			return NewSubmission{}, err
		}
		if err := checkQuantity(fmt.Sprintf("appliances[%d].usage_hours", i), *a.UsageHours); err != nil {
			return NewSubmission{}, err
		}
		out.Appliances = append(out.Appliances, NewAppliance{
			Name:             name,
			PowerRatingWatts: *a.PowerRatingWatts,
			UsageHours:       *a.UsageHours,
		})
	}

	return out, nil
}

func checkQuantity(field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return &ValidationError{Field: field, Message: "must be a finite number"}
	}
	if v < 0 {
		return &ValidationError{Field: field, Message: "must not be negative"}
	}
	return nil
}
