package services

import (
	"bytes"
	"context"
	"encoding/json"
	"html/template"
	"testing"

	"churnboard/adapters/charts"
	"churnboard/domain/customer"
	"churnboard/internal/errors"
	"churnboard/internal/filter"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticLoader struct {
	ds  *customer.Dataset
	err error
}

func (l staticLoader) Load(ctx context.Context) (*customer.Dataset, error) {
	return l.ds, l.err
}

func scenarioDataset() *customer.Dataset {
	records := []customer.Record{
		{CustomerID: "1", Churn: "Yes", MonthlyCharges: 70, Tenure: 5, TotalCharges: 350},
		{CustomerID: "2", Churn: "No", MonthlyCharges: 50, Tenure: 10, TotalCharges: 500},
		{CustomerID: "3", Churn: "Yes", MonthlyCharges: 90, Tenure: 2, TotalCharges: 180},
	}
	return customer.NewDataset("scenario.csv", "", nil, records, customer.Repair{Median: 350})
}

func TestParseSelection(t *testing.T) {
	b := Bounds{Min: 20, Max: 110}

	tests := []struct {
		name     string
		churn    string
		min, max string
		want     filter.Selection
		code     string
	}{
		{"defaults", "", "", "", filter.Selection{Churn: filter.ChurnAll, MinCharge: 20, MaxCharge: 110}, ""},
		{"explicit", "Yes", "30", "60.5", filter.Selection{Churn: filter.ChurnYes, MinCharge: 30, MaxCharge: 60.5}, ""},
		{"clamped", "No", "0", "500", filter.Selection{Churn: filter.ChurnNo, MinCharge: 20, MaxCharge: 110}, ""},
		{"bad churn", "yes", "", "", filter.Selection{}, errors.CodeInvalidInput},
		{"bad number", "All", "abc", "", filter.Selection{}, errors.CodeInvalidInput},
		{"inverted", "All", "80", "40", filter.Selection{}, errors.CodeInvalidInput},
		{"nan", "All", "NaN", "", filter.Selection{}, errors.CodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSelection(tt.churn, tt.min, tt.max, b)
			if tt.code != "" {
				require.Error(t, err)
				assert.Equal(t, tt.code, errors.GetCode(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSelectionQuery(t *testing.T) {
	q := SelectionQuery(filter.Selection{Churn: filter.ChurnYes, MinCharge: 18.25, MaxCharge: 100})
	assert.Equal(t, "churn=Yes&min=18.25&max=100", q)
}

func TestDashboardBuild(t *testing.T) {
	svc := NewDashboardService(staticLoader{ds: scenarioDataset()}, 2, 5)
	ctx := context.Background()

	sel, err := svc.Select(ctx, "Yes", "", "")
	require.NoError(t, err)
	assert.Equal(t, filter.Selection{Churn: filter.ChurnYes, MinCharge: 50, MaxCharge: 90}, sel)

	d, err := svc.Build(ctx, sel)
	require.NoError(t, err)

	assert.Equal(t, "scenario.csv", d.Dataset.Source)
	assert.Equal(t, 3, d.Dataset.Rows)
	assert.Equal(t, 350.0, d.Dataset.Repair.Median)
	assert.Equal(t, Bounds{Min: 50, Max: 90}, d.Bounds)
	assert.Equal(t, 2, d.Metrics.Total)
	assert.Equal(t, 100.0, d.Metrics.ChurnRate)
	assert.Len(t, d.Preview, 2)
	assert.Len(t, d.Locations, 5)
	assert.Equal(t, 2, d.Churn[0].Count)
	assert.Equal(t, 0, d.Churn[1].Count)
	require.Len(t, d.TotalCharges, 1)
	assert.Equal(t, "Yes", d.TotalCharges[0].Group)

	_, err = json.Marshal(d)
	require.NoError(t, err)
}

func TestDashboardBuildEmptyView(t *testing.T) {
	svc := NewDashboardService(staticLoader{ds: scenarioDataset()}, 10, 30)
	d, err := svc.Build(context.Background(), filter.Selection{Churn: filter.ChurnNo, MinCharge: 60, MaxCharge: 60})
	require.NoError(t, err)

	assert.Equal(t, 0, d.Metrics.Total)
	assert.Nil(t, d.Metrics.AvgTenure)
	assert.Empty(t, d.Preview)
	assert.Empty(t, d.MonthlyCharges.Bins)

	encoded, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Contains(t, string(encoded), `"avg_tenure":null`)
}

func TestDashboardLoaderFailure(t *testing.T) {
	broken := errors.DataSourceError("missing.csv", assert.AnError)
	svc := NewDashboardService(staticLoader{err: broken}, 10, 30)

	_, err := svc.Build(context.Background(), filter.Selection{Churn: filter.ChurnAll})
	assert.Equal(t, errors.CodeDataSource, errors.GetCode(err))

	_, err = svc.Select(context.Background(), "", "", "")
	assert.Equal(t, errors.CodeDataSource, errors.GetCode(err))
}

func TestDashboardBuildCancelled(t *testing.T) {
	svc := NewDashboardService(staticLoader{ds: scenarioDataset()}, 10, 30)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Build(ctx, filter.Selection{Churn: filter.ChurnAll, MinCharge: 0, MaxCharge: 100})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestChartServiceRender(t *testing.T) {
	dash := NewDashboardService(staticLoader{ds: scenarioDataset()}, 10, 30)
	svc := NewChartService(dash, charts.NewRenderer(10), 2)
	sel := filter.Selection{Churn: filter.ChurnAll, MinCharge: 0, MaxCharge: 100}

	img, err := svc.Render(context.Background(), charts.ChartChurn, sel)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(img, []byte("\x89PNG")))

	_, err = svc.Render(context.Background(), "pie", sel)
	assert.Equal(t, errors.CodeNotFound, errors.GetCode(err))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = svc.Render(ctx, charts.ChartChurn, sel)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTakeaways(t *testing.T) {
	svc := NewRenderService(template.New("empty"))
	out := string(svc.Takeaways())

	assert.Contains(t, out, "<li>")
	assert.Contains(t, out, "<strong>Churn Rate:</strong>")
	assert.Contains(t, out, "Total Charges Distribution")
	assert.Equal(t, svc.Takeaways(), svc.Takeaways())
}
