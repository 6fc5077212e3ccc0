// Package metrics computes the dashboard's headline numbers for a filtered view.
package metrics

import (
	"churnboard/domain/customer"

	"github.com/montanaflynn/stats"
)

// Summary holds the three KPI values. AvgTenure is nil for an empty view.
type Summary struct {
	Total     int      `json:"total"`
	ChurnRate float64  `json:"churn_rate"`
	AvgTenure *float64 `json:"avg_tenure"`
}

// Compute derives the summary of view. It never fails: an empty view yields
// Total 0, ChurnRate 0 and no AvgTenure.
func Compute(view customer.View) Summary {
	summary := Summary{Total: view.Len()}
	if view.IsEmpty() {
		return summary
	}

	churned := 0
	for _, r := range view.Records {
		if r.Churn == customer.ChurnYes {
			churned++
		}
	}
	summary.ChurnRate = round2(100 * float64(churned) / float64(summary.Total))

	mean, err := stats.Mean(view.Tenures())
	if err == nil {
		avg := round2(mean)
		summary.AvgTenure = &avg
	}
	return summary
}

func round2(v float64) float64 {
	rounded, err := stats.Round(v, 2)
	if err != nil {
		return v
	}
	return rounded
}
