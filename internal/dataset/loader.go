// Package dataset loads the churn dataset once per source and hands out the
// repaired, immutable result.
package dataset

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"sync"
	"time"

	"churnboard/adapters/datareadiness/coercer"
	"churnboard/adapters/excel"
	"churnboard/domain/customer"
	"churnboard/internal"
	"churnboard/internal/errors"
)

// Source produces the raw rows of a dataset file.
type Source interface {
	ReadData() (*excel.ExcelData, error)
	FilePath() string
}

// Loader reads its source at most once and memoizes the outcome, errors included.
type Loader struct {
	source  Source
	coercer *coercer.TypeCoercer
	logger  *internal.Logger

	once    sync.Once
	dataset *customer.Dataset
	err     error
}

// Option configures a Loader.
type Option func(*Loader)

// WithSource replaces the file reader, mostly for tests.
func WithSource(src Source) Option {
	return func(l *Loader) { l.source = src }
}

// WithCoercion overrides the TotalCharges parsing rules.
func WithCoercion(cfg coercer.CoercionConfig) Option {
	return func(l *Loader) { l.coercer = coercer.NewTypeCoercer(cfg) }
}

// WithLogger sets the logger used for load and coercion diagnostics.
func WithLogger(logger *internal.Logger) Option {
	return func(l *Loader) { l.logger = logger }
}

// NewLoader creates a loader for the CSV or xlsx file at path.
func NewLoader(path string, opts ...Option) *Loader {
	l := &Loader{
		source:  excel.NewDataReader(path),
		coercer: coercer.NewTypeCoercer(coercer.DefaultCoercionConfig()),
		logger:  internal.DefaultLogger,
	}
	for _, opt := range opts {
		opt(l)
	}
	l.logger = l.logger.With("DatasetLoader")
	return l
}

var (
	sharedMu      sync.Mutex
	sharedLoaders = map[string]*Loader{}
)

// Shared returns the process-wide loader for path, creating it on first use.
func Shared(path string) *Loader {
	sharedMu.Lock()
	defer sharedMu.Unlock()

	if l, ok := sharedLoaders[path]; ok {
		return l
	}
	l := NewLoader(path)
	sharedLoaders[path] = l
	return l
}

// Load returns the repaired dataset, reading the source on the first call only.
// Later calls return the same *Dataset, or the same error.
func (l *Loader) Load(ctx context.Context) (*customer.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	l.once.Do(func() {
		l.dataset, l.err = l.load()
	})
	return l.dataset, l.err
}

func (l *Loader) load() (*customer.Dataset, error) {
	start := time.Now()
	path := l.source.FilePath()

	raw, err := l.source.ReadData()
	if err != nil {
		l.logger.Error("reading %s failed: %v", path, err)
		return nil, errors.Wrap(err, "load dataset")
	}

	for _, col := range customer.RequiredColumns {
		if !raw.HasColumn(col) {
			return nil, errors.DataSourceError(path, fmt.Errorf("missing required column %q", col))
		}
	}

	records, err := buildRecords(raw)
	if err != nil {
		return nil, errors.DataSourceError(path, err)
	}

	repair, err := l.repairTotalCharges(raw, records)
	if err != nil {
		return nil, errors.DataSourceError(path, err)
	}
	if repair.Coerced > 0 {
		l.logger.Warn("%d %s values were not numeric and were set to the median %.4f",
			repair.Coerced, customer.ColumnTotalCharges, repair.Median)
	}

	ds := customer.NewDataset(path, raw.Fingerprint, raw.Headers, records, repair)
	l.logger.Info("loaded %d records from %s (sha %s) in %s",
		ds.Len(), path, raw.Fingerprint.Short(), time.Since(start).Round(time.Millisecond))
	return ds, nil
}

// repairTotalCharges coerces the column and fills missing cells with the median
// of the parsable ones, computed over the full dataset.
func (l *Loader) repairTotalCharges(raw *excel.ExcelData, records []customer.Record) (customer.Repair, error) {
	cells := make([]string, len(raw.Rows))
	for i, row := range raw.Rows {
		cells[i] = row[customer.ColumnTotalCharges]
	}

	col := l.coercer.CoerceNumeric(cells)
	median, err := col.FillMedian()
	if err != nil {
		return customer.Repair{}, fmt.Errorf("column %s: %w", customer.ColumnTotalCharges, err)
	}

	for i := range records {
		if col.Missing[i] {
			l.logger.Debug("row %d: %s %q coerced to median", i+2, customer.ColumnTotalCharges, cells[i])
		}
		records[i].TotalCharges = col.Values[i]
	}
	return customer.Repair{Median: median, Coerced: col.MissingCount}, nil
}

// buildRecords maps raw rows onto the typed schema. Line numbers count the header as line 1.
func buildRecords(raw *excel.ExcelData) ([]customer.Record, error) {
	records := make([]customer.Record, len(raw.Rows))
	for i, row := range raw.Rows {
		line := i + 2

		tenure, err := strconv.Atoi(row[customer.ColumnTenure])
		if err != nil {
			return nil, fmt.Errorf("line %d: %s %q is not an integer", line, customer.ColumnTenure, row[customer.ColumnTenure])
		}
		monthly, err := strconv.ParseFloat(row[customer.ColumnMonthlyCharges], 64)
		if err != nil || math.IsNaN(monthly) || math.IsInf(monthly, 0) {
			return nil, fmt.Errorf("line %d: %s %q is not a number", line, customer.ColumnMonthlyCharges, row[customer.ColumnMonthlyCharges])
		}
		senior := 0
		if v, ok := row[customer.ColumnSeniorCitizen]; ok {
			if senior, err = strconv.Atoi(v); err != nil {
				return nil, fmt.Errorf("line %d: %s %q is not an integer", line, customer.ColumnSeniorCitizen, v)
			}
		}

		records[i] = customer.Record{
			CustomerID:       row[customer.ColumnCustomerID],
			Gender:           row[customer.ColumnGender],
			SeniorCitizen:    senior,
			Partner:          row[customer.ColumnPartner],
			Dependents:       row[customer.ColumnDependents],
			Tenure:           tenure,
			PhoneService:     row[customer.ColumnPhoneService],
			MultipleLines:    row[customer.ColumnMultipleLines],
			InternetService:  row[customer.ColumnInternet],
			OnlineSecurity:   row[customer.ColumnOnlineSecurity],
			OnlineBackup:     row[customer.ColumnOnlineBackup],
			DeviceProtection: row[customer.ColumnDeviceProtect],
			TechSupport:      row[customer.ColumnTechSupport],
			StreamingTV:      row[customer.ColumnStreamingTV],
			StreamingMovies:  row[customer.ColumnStreamingMovie],
			Contract:         row[customer.ColumnContract],
			PaperlessBilling: row[customer.ColumnPaperless],
			PaymentMethod:    row[customer.ColumnPaymentMethod],
			MonthlyCharges:   monthly,
			Churn:            row[customer.ColumnChurn],
		}
	}
	return records, nil
}

// ChargeBounds returns the observed MonthlyCharges range, used as the default
// filter range and the clamp for user input.
func ChargeBounds(ds *customer.Dataset) (float64, float64) {
	records := ds.Records()
	if len(records) == 0 {
		return 0, 0
	}
	lo, hi := records[0].MonthlyCharges, records[0].MonthlyCharges
	for _, r := range records[1:] {
		lo = math.Min(lo, r.MonthlyCharges)
		hi = math.Max(hi, r.MonthlyCharges)
	}
	return lo, hi
}
