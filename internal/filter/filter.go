// Package filter narrows a dataset to the rows matching the sidebar selection.
package filter

import (
	"fmt"
	"math"

	"churnboard/domain/customer"
	"churnboard/internal/errors"
)

// Churn is the churn-status selector.
type Churn string

const (
	ChurnAll Churn = "All"
	ChurnYes Churn = customer.ChurnYes
	ChurnNo  Churn = customer.ChurnNo
)

// Choices lists the selector values in display order.
var Choices = []Churn{ChurnAll, ChurnYes, ChurnNo}

// ParseChurn accepts "All", "Yes" or "No" exactly; the empty string means All.
func ParseChurn(s string) (Churn, error) {
	switch Churn(s) {
	case "":
		return ChurnAll, nil
	case ChurnAll, ChurnYes, ChurnNo:
		return Churn(s), nil
	}
	return "", errors.InvalidInput(fmt.Sprintf("churn must be one of All, Yes, No; got %q", s))
}

// Selection is one render's filter input. Both bounds are inclusive.
type Selection struct {
	Churn     Churn   `json:"churn"`
	MinCharge float64 `json:"min_charge"`
	MaxCharge float64 `json:"max_charge"`
}

// Validate checks the bounds are ordered numbers.
func (s Selection) Validate() error {
	if math.IsNaN(s.MinCharge) || math.IsNaN(s.MaxCharge) {
		return errors.InvalidInput("charge bounds must be numbers")
	}
	if s.MinCharge > s.MaxCharge {
		return errors.InvalidInput(fmt.Sprintf("min charge %.2f is greater than max charge %.2f", s.MinCharge, s.MaxCharge))
	}
	return nil
}

// Clamp limits both bounds to [lo, hi], the way a two-handle slider would.
func (s Selection) Clamp(lo, hi float64) Selection {
	s.MinCharge = math.Min(math.Max(s.MinCharge, lo), hi)
	s.MaxCharge = math.Min(math.Max(s.MaxCharge, lo), hi)
	return s
}

// ByChurn keeps rows whose Churn equals c exactly. ChurnAll keeps everything.
func ByChurn(records []customer.Record, c Churn) []customer.Record {
	out := make([]customer.Record, 0, len(records))
	for _, r := range records {
		if c == ChurnAll || r.Churn == string(c) {
			out = append(out, r)
		}
	}
	return out
}

// ByChargeRange keeps rows with lo <= MonthlyCharges <= hi.
func ByChargeRange(records []customer.Record, lo, hi float64) []customer.Record {
	out := make([]customer.Record, 0, len(records))
	for _, r := range records {
		if r.MonthlyCharges >= lo && r.MonthlyCharges <= hi {
			out = append(out, r)
		}
	}
	return out
}

// Apply returns the rows of ds matching both predicates, in source order.
// An empty view is a valid result.
func Apply(ds *customer.Dataset, sel Selection) customer.View {
	rows := ByChurn(ds.Records(), sel.Churn)
	return customer.NewView(ByChargeRange(rows, sel.MinCharge, sel.MaxCharge))
}
