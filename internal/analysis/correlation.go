package analysis

import (
	"encoding/json"
	"math"

	"churnboard/domain/customer"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// NumericColumns are the columns the correlation heatmap covers, in file order.
var NumericColumns = []string{
	customer.ColumnSeniorCitizen,
	customer.ColumnTenure,
	customer.ColumnMonthlyCharges,
	customer.ColumnTotalCharges,
}

// Matrix is a square Pearson correlation matrix. Undefined cells are NaN and
// encode as JSON null.
type Matrix struct {
	Columns []string
	Values  [][]float64
	PValues [][]float64
	N       int
}

// Correlation computes pairwise Pearson coefficients over NumericColumns.
// Columns without variance, and views with fewer than two rows, give NaN.
func Correlation(view customer.View) Matrix {
	series := [][]float64{
		view.SeniorCitizens(),
		view.Tenures(),
		view.MonthlyCharges(),
		view.TotalCharges(),
	}
	k := len(series)
	n := view.Len()

	m := Matrix{
		Columns: append([]string(nil), NumericColumns...),
		Values:  make([][]float64, k),
		PValues: make([][]float64, k),
		N:       n,
	}

	varies := make([]bool, k)
	for i, s := range series {
		varies[i] = n >= 2 && stat.Variance(s, nil) > 0
	}

	for i := 0; i < k; i++ {
		m.Values[i] = make([]float64, k)
		m.PValues[i] = make([]float64, k)
		for j := 0; j < k; j++ {
			switch {
			case !varies[i] || !varies[j]:
				m.Values[i][j] = math.NaN()
				m.PValues[i][j] = math.NaN()
			case i == j:
				m.Values[i][j] = 1
				m.PValues[i][j] = 0
			case j < i:
				m.Values[i][j] = m.Values[j][i]
				m.PValues[i][j] = m.PValues[j][i]
			default:
				r := math.Max(-1, math.Min(1, stat.Correlation(series[i], series[j], nil)))
				m.Values[i][j] = r
				m.PValues[i][j] = correlationPValue(r, n)
			}
		}
	}
	return m
}

// correlationPValue is the two-tailed p-value of r under Student's t with n-2 df.
func correlationPValue(r float64, n int) float64 {
	if n < 3 || math.IsNaN(r) {
		return math.NaN()
	}
	if math.Abs(r) >= 1 {
		return 0
	}
	df := float64(n - 2)
	t := r * math.Sqrt(df/(1-r*r))
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	return 2 * (1 - dist.CDF(math.Abs(t)))
}

// At returns the coefficient for a column pair, NaN when either is unknown.
func (m Matrix) At(x, y string) float64 {
	i, j := indexOf(m.Columns, x), indexOf(m.Columns, y)
	if i < 0 || j < 0 {
		return math.NaN()
	}
	return m.Values[i][j]
}

func indexOf(cols []string, name string) int {
	for i, c := range cols {
		if c == name {
			return i
		}
	}
	return -1
}

// MarshalJSON writes NaN cells as null.
func (m Matrix) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Columns []string     `json:"columns"`
		Values  [][]*float64 `json:"values"`
		PValues [][]*float64 `json:"p_values"`
		N       int          `json:"n"`
	}{
		Columns: m.Columns,
		Values:  nullable(m.Values),
		PValues: nullable(m.PValues),
		N:       m.N,
	})
}

func nullable(grid [][]float64) [][]*float64 {
	out := make([][]*float64, len(grid))
	for i, row := range grid {
		out[i] = make([]*float64, len(row))
		for j := range row {
			if !math.IsNaN(row[j]) {
				v := row[j]
				out[i][j] = &v
			}
		}
	}
	return out
}
