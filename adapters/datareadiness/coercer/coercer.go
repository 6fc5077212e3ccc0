package coercer

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/montanaflynn/stats"
)

// TypeCoercer handles deterministic numeric coercion of text columns
type TypeCoercer struct {
	config CoercionConfig
}

// CoercionConfig defines the coercion rules
type CoercionConfig struct {
	// StripThousands removes "," separators before parsing ("1,234.5" -> 1234.5).
	StripThousands bool `json:"strip_thousands"`
}

// DefaultCoercionConfig accepts exactly what strconv.ParseFloat accepts, minus NaN and Inf.
func DefaultCoercionConfig() CoercionConfig {
	return CoercionConfig{
		StripThousands: false,
	}
}

// NewTypeCoercer creates a coercer with the given config
func NewTypeCoercer(config CoercionConfig) *TypeCoercer {
	return &TypeCoercer{config: config}
}

// NumericColumn is a text column after parsing. Missing[i] marks cells that did not parse.
type NumericColumn struct {
	Values       []float64
	Missing      []bool
	MissingCount int
}

// TryParseNumeric parses one cell. Blank, NaN and infinite values are not numeric.
func (c *TypeCoercer) TryParseNumeric(raw string) (float64, bool) {
	cleanVal := strings.TrimSpace(raw)
	if cleanVal == "" {
		return 0, false
	}
	if c.config.StripThousands {
		cleanVal = strings.ReplaceAll(cleanVal, ",", "")
	}

	val, err := strconv.ParseFloat(cleanVal, 64)
	if err != nil || math.IsInf(val, 0) || math.IsNaN(val) {
		return 0, false
	}
	return val, true
}

// CoerceNumeric parses every cell; unparsable cells become missing (value NaN).
func (c *TypeCoercer) CoerceNumeric(raw []string) NumericColumn {
	col := NumericColumn{
		Values:  make([]float64, len(raw)),
		Missing: make([]bool, len(raw)),
	}
	for i, cell := range raw {
		if v, ok := c.TryParseNumeric(cell); ok {
			col.Values[i] = v
			continue
		}
		col.Values[i] = math.NaN()
		col.Missing[i] = true
		col.MissingCount++
	}
	return col
}

// Present returns the non-missing values in column order.
func (col NumericColumn) Present() []float64 {
	out := make([]float64, 0, len(col.Values)-col.MissingCount)
	for i, v := range col.Values {
		if !col.Missing[i] {
			out = append(out, v)
		}
	}
	return out
}

// FillMedian replaces every missing value with the median of the present ones, in place.
// It fails when nothing parsed, since no median exists.
func (col NumericColumn) FillMedian() (float64, error) {
	present := col.Present()
	if len(present) == 0 {
		return math.NaN(), fmt.Errorf("no parsable values to take a median of")
	}

	median, err := stats.Median(present)
	if err != nil {
		return math.NaN(), fmt.Errorf("median: %w", err)
	}

	for i := range col.Values {
		if col.Missing[i] {
			col.Values[i] = median
		}
	}
	return median, nil
}
