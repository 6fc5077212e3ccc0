package analysis

import (
	"sort"

	"churnboard/domain/customer"

	"github.com/montanaflynn/stats"
)

// BoxSummary is a five-number summary with Tukey whiskers at 1.5 IQR.
type BoxSummary struct {
	N            int       `json:"n"`
	Min          float64   `json:"min"`
	Q1           float64   `json:"q1"`
	Median       float64   `json:"median"`
	Q3           float64   `json:"q3"`
	Max          float64   `json:"max"`
	LowerWhisker float64   `json:"lower_whisker"`
	UpperWhisker float64   `json:"upper_whisker"`
	Outliers     []float64 `json:"outliers"`
}

// GroupBox is the box summary of one churn group.
type GroupBox struct {
	Group string     `json:"group"`
	Box   BoxSummary `json:"box"`
}

// Summarize returns nil for no values. Quartiles are Tukey's hinges.
func Summarize(values []float64) *BoxSummary {
	if len(values) == 0 {
		return nil
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	box := &BoxSummary{
		N:        len(sorted),
		Min:      sorted[0],
		Max:      sorted[len(sorted)-1],
		Outliers: []float64{},
	}

	if len(sorted) == 1 {
		box.Q1, box.Median, box.Q3 = sorted[0], sorted[0], sorted[0]
	} else {
		q, err := stats.Quartile(sorted)
		if err != nil {
			return nil
		}
		box.Q1, box.Median, box.Q3 = q.Q1, q.Q2, q.Q3
	}

	iqr := box.Q3 - box.Q1
	lowFence := box.Q1 - 1.5*iqr
	highFence := box.Q3 + 1.5*iqr
	box.LowerWhisker, box.UpperWhisker = box.Max, box.Min
	for _, v := range sorted {
		if v < lowFence || v > highFence {
			box.Outliers = append(box.Outliers, v)
			continue
		}
		if v < box.LowerWhisker {
			box.LowerWhisker = v
		}
		if v > box.UpperWhisker {
			box.UpperWhisker = v
		}
	}
	return box
}

// TotalChargesByChurn summarizes TotalCharges per churn group in distribution
// order, skipping empty groups.
func TotalChargesByChurn(view customer.View) []GroupBox {
	groups := map[string][]float64{}
	for _, r := range view.Records {
		groups[r.Churn] = append(groups[r.Churn], r.TotalCharges)
	}

	out := []GroupBox{}
	for _, c := range ChurnDistribution(view) {
		if box := Summarize(groups[c.Value]); box != nil {
			out = append(out, GroupBox{Group: c.Value, Box: *box})
		}
	}
	return out
}
