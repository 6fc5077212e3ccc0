package metrics

import (
	"encoding/json"
	"testing"

	"churnboard/domain/customer"
	"churnboard/internal/filter"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scenarioDataset() *customer.Dataset {
	records := []customer.Record{
		{CustomerID: "1", Churn: "Yes", MonthlyCharges: 70, Tenure: 5},
		{CustomerID: "2", Churn: "No", MonthlyCharges: 50, Tenure: 10},
		{CustomerID: "3", Churn: "Yes", MonthlyCharges: 90, Tenure: 2},
	}
	return customer.NewDataset("scenario", "", nil, records, customer.Repair{})
}

func TestComputeScenarios(t *testing.T) {
	ds := scenarioDataset()

	tests := []struct {
		name      string
		sel       filter.Selection
		total     int
		churnRate float64
		avgTenure float64
	}{
		{"all customers", filter.Selection{Churn: filter.ChurnAll, MinCharge: 0, MaxCharge: 100}, 3, 66.67, 5.67},
		{"churned only", filter.Selection{Churn: filter.ChurnYes, MinCharge: 0, MaxCharge: 100}, 2, 100.0, 3.5},
		{"charge range", filter.Selection{Churn: filter.ChurnAll, MinCharge: 60, MaxCharge: 100}, 2, 100.0, 3.5},
		{"stayed only", filter.Selection{Churn: filter.ChurnNo, MinCharge: 0, MaxCharge: 100}, 1, 0, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Compute(filter.Apply(ds, tt.sel))
			assert.Equal(t, tt.total, got.Total)
			assert.InDelta(t, tt.churnRate, got.ChurnRate, 1e-9)
			require.NotNil(t, got.AvgTenure)
			assert.InDelta(t, tt.avgTenure, *got.AvgTenure, 1e-9)
		})
	}
}

func TestComputeEmptyView(t *testing.T) {
	ds := scenarioDataset()
	got := Compute(filter.Apply(ds, filter.Selection{Churn: filter.ChurnYes, MinCharge: 40, MaxCharge: 45}))

	assert.Equal(t, 0, got.Total)
	assert.Equal(t, 0.0, got.ChurnRate)
	assert.Nil(t, got.AvgTenure)

	encoded, err := json.Marshal(got)
	require.NoError(t, err)
	assert.JSONEq(t, `{"total":0,"churn_rate":0,"avg_tenure":null}`, string(encoded))
}

func TestChurnRateBounds(t *testing.T) {
	churns := [][]string{
		{},
		{"No"},
		{"No", "No", "No"},
		{"Yes"},
		{"Yes", "No", "No"},
		{"Yes", "Yes", "No", "", "yes"},
	}
	for _, values := range churns {
		var records []customer.Record
		yes := 0
		for i, c := range values {
			records = append(records, customer.Record{Churn: c, Tenure: i})
			if c == "Yes" {
				yes++
			}
		}

		got := Compute(customer.NewView(records))
		assert.GreaterOrEqual(t, got.ChurnRate, 0.0)
		assert.LessOrEqual(t, got.ChurnRate, 100.0)
		if yes == 0 {
			assert.Equal(t, 0.0, got.ChurnRate, "churn values %v", values)
		}
	}
}
