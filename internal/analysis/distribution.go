// Package analysis derives chart-ready data from a filtered view. Every function
// is pure and tolerates an empty view.
package analysis

import (
	"sort"

	"churnboard/domain/customer"
)

// CategoryCount is one bar of the churn distribution.
type CategoryCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// ChurnDistribution counts rows per Churn value. Yes and No always come first,
// even at zero; unexpected values follow in lexical order.
func ChurnDistribution(view customer.View) []CategoryCount {
	counts := map[string]int{customer.ChurnYes: 0, customer.ChurnNo: 0}
	for _, r := range view.Records {
		counts[r.Churn]++
	}

	out := []CategoryCount{
		{Value: customer.ChurnYes, Count: counts[customer.ChurnYes]},
		{Value: customer.ChurnNo, Count: counts[customer.ChurnNo]},
	}
	delete(counts, customer.ChurnYes)
	delete(counts, customer.ChurnNo)

	others := make([]string, 0, len(counts))
	for v := range counts {
		others = append(others, v)
	}
	sort.Strings(others)
	for _, v := range others {
		out = append(out, CategoryCount{Value: v, Count: counts[v]})
	}
	return out
}

// Bin is a half-open histogram bucket [Lower, Upper); the last bin is closed.
type Bin struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Count int     `json:"count"`
}

// Histogram is the MonthlyCharges distribution with its marginal box summary.
type Histogram struct {
	Bins []Bin       `json:"bins"`
	Box  *BoxSummary `json:"box"`
}

// ChargeHistogram buckets MonthlyCharges into equal-width bins over the view's
// own range. A view holding a single distinct value gets one zero-width bin.
func ChargeHistogram(view customer.View, bins int) Histogram {
	values := view.MonthlyCharges()
	return Histogram{
		Bins: histogram(values, bins),
		Box:  Summarize(values),
	}
}

func histogram(values []float64, n int) []Bin {
	if len(values) == 0 || n <= 0 {
		return []Bin{}
	}

	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	if lo == hi {
		return []Bin{{Lower: lo, Upper: hi, Count: len(values)}}
	}

	width := (hi - lo) / float64(n)
	out := make([]Bin, n)
	for i := range out {
		out[i].Lower = lo + float64(i)*width
		out[i].Upper = lo + float64(i+1)*width
	}
	out[n-1].Upper = hi

	for _, v := range values {
		idx := int((v - lo) / width)
		if idx >= n {
			idx = n - 1
		}
		out[idx].Count++
	}
	return out
}
