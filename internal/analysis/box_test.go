package analysis

import (
	"testing"

	"churnboard/domain/customer"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarize(t *testing.T) {
	t.Run("no values", func(t *testing.T) {
		assert.Nil(t, Summarize(nil))
		assert.Nil(t, Summarize([]float64{}))
	})

	t.Run("single value", func(t *testing.T) {
		box := Summarize([]float64{42})
		require.NotNil(t, box)
		assert.Equal(t, BoxSummary{
			N: 1, Min: 42, Q1: 42, Median: 42, Q3: 42, Max: 42,
			LowerWhisker: 42, UpperWhisker: 42, Outliers: []float64{},
		}, *box)
	})

	t.Run("outlier beyond the fence", func(t *testing.T) {
		box := Summarize([]float64{100, 9, 8, 7, 6, 5, 4, 3, 2, 1})
		require.NotNil(t, box)
		assert.Equal(t, 10, box.N)
		assert.Equal(t, 1.0, box.Min)
		assert.Equal(t, 100.0, box.Max)
		assert.Equal(t, 3.0, box.Q1)
		assert.Equal(t, 5.5, box.Median)
		assert.Equal(t, 8.0, box.Q3)
		assert.Equal(t, 1.0, box.LowerWhisker)
		assert.Equal(t, 9.0, box.UpperWhisker)
		assert.Equal(t, []float64{100}, box.Outliers)
	})

	t.Run("does not reorder input", func(t *testing.T) {
		in := []float64{3, 1, 2}
		Summarize(in)
		assert.Equal(t, []float64{3, 1, 2}, in)
	})
}

func TestTotalChargesByChurn(t *testing.T) {
	t.Run("empty view", func(t *testing.T) {
		got := TotalChargesByChurn(customer.View{})
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})

	t.Run("groups in distribution order", func(t *testing.T) {
		got := TotalChargesByChurn(viewOf(
			customer.Record{Churn: "No", TotalCharges: 100},
			customer.Record{Churn: "Yes", TotalCharges: 20},
			customer.Record{Churn: "No", TotalCharges: 300},
		))
		require.Len(t, got, 2)
		assert.Equal(t, "Yes", got[0].Group)
		assert.Equal(t, 1, got[0].Box.N)
		assert.Equal(t, "No", got[1].Group)
		assert.Equal(t, 2, got[1].Box.N)
		assert.Equal(t, 200.0, got[1].Box.Median)
	})

	t.Run("skips an empty group", func(t *testing.T) {
		got := TotalChargesByChurn(viewOf(customer.Record{Churn: "No", TotalCharges: 5}))
		require.Len(t, got, 1)
		assert.Equal(t, "No", got[0].Group)
	})
}
