package charts

import (
	"bytes"
	"testing"

	"churnboard/domain/customer"
	"churnboard/internal/analysis"
	"churnboard/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngMagic = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

func sampleView() customer.View {
	return customer.NewView([]customer.Record{
		{Churn: "No", SeniorCitizen: 0, Tenure: 1, MonthlyCharges: 29.85, TotalCharges: 29.85},
		{Churn: "No", SeniorCitizen: 0, Tenure: 34, MonthlyCharges: 56.95, TotalCharges: 1889.5},
		{Churn: "Yes", SeniorCitizen: 0, Tenure: 2, MonthlyCharges: 53.85, TotalCharges: 108.15},
		{Churn: "No", SeniorCitizen: 0, Tenure: 45, MonthlyCharges: 42.3, TotalCharges: 1840.75},
		{Churn: "Yes", SeniorCitizen: 1, Tenure: 2, MonthlyCharges: 70.7, TotalCharges: 151.65},
		{Churn: "Yes", SeniorCitizen: 0, Tenure: 8, MonthlyCharges: 99.65, TotalCharges: 820.5},
	})
}

func TestRenderProducesPNG(t *testing.T) {
	r := NewRenderer(10)
	views := map[string]customer.View{
		"sample": sampleView(),
		"empty":  {},
		"single": customer.NewView([]customer.Record{{Churn: "Yes", MonthlyCharges: 20, TotalCharges: 20}}),
	}
	for viewName, view := range views {
		for _, chart := range Names {
			t.Run(viewName+"/"+chart, func(t *testing.T) {
				img, err := r.Render(chart, view)
				require.NoError(t, err)
				assert.True(t, bytes.HasPrefix(img, pngMagic), "not a png")
			})
		}
	}
}

func TestRenderUnknownChart(t *testing.T) {
	_, err := NewRenderer(30).Render("pie", sampleView())
	require.Error(t, err)
	assert.Equal(t, errors.CodeNotFound, errors.GetCode(err))
}

func TestNewRendererDefaultsBins(t *testing.T) {
	assert.Equal(t, 30, NewRenderer(0).Bins)
	assert.Equal(t, 12, NewRenderer(12).Bins)
}

func TestGridOrientation(t *testing.T) {
	m := analysis.Correlation(sampleView())
	g := grid{m: m}

	c, r := g.Dims()
	assert.Equal(t, 4, c)
	assert.Equal(t, 4, r)
	// top row of the image is the first column of the matrix
	assert.Equal(t, m.Values[0][2], g.Z(2, 3))
	assert.Equal(t, m.Values[3][1], g.Z(1, 0))
	assert.Equal(t, "1.00", cellLabel(1))
	assert.Equal(t, "-0.25", cellLabel(-0.25))
}
