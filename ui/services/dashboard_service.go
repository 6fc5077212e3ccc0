package services

import (
	"context"
	"html/template"
	"strconv"
	"strings"
	"time"

	"churnboard/adapters/charts"
	"churnboard/domain/customer"
	"churnboard/internal"
	"churnboard/internal/analysis"
	"churnboard/internal/dataset"
	"churnboard/internal/errors"
	"churnboard/internal/filter"
	"churnboard/internal/metrics"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// DatasetLoader yields the immutable dataset, loading it on first use.
type DatasetLoader interface {
	Load(ctx context.Context) (*customer.Dataset, error)
}

// Bounds is the observed MonthlyCharges range.
type Bounds struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// DatasetInfo describes the loaded source.
type DatasetInfo struct {
	Source      string          `json:"source"`
	Rows        int             `json:"rows"`
	Fingerprint string          `json:"fingerprint"`
	Repair      customer.Repair `json:"repair"`
}

// Dashboard is the full payload for one selection.
type Dashboard struct {
	Dataset        DatasetInfo              `json:"dataset"`
	Selection      filter.Selection         `json:"selection"`
	Bounds         Bounds                   `json:"bounds"`
	Metrics        metrics.Summary          `json:"metrics"`
	Churn          []analysis.CategoryCount `json:"churn_distribution"`
	MonthlyCharges analysis.Histogram       `json:"monthly_charges"`
	TotalCharges   []analysis.GroupBox      `json:"total_charges_by_churn"`
	Correlation    analysis.Matrix          `json:"correlation"`
	Preview        []customer.Record        `json:"preview"`
	Locations      []analysis.Location      `json:"locations"`
}

// DashboardPage is what the HTML template receives.
type DashboardPage struct {
	*Dashboard
	Choices    []filter.Churn
	Charts     []string
	ChartQuery template.URL
	Takeaways  template.HTML
	RequestID  string
}

// NewDashboardPage wraps a dashboard with the template-only fields.
func NewDashboardPage(d *Dashboard, takeaways template.HTML, requestID string) *DashboardPage {
	return &DashboardPage{
		Dashboard:  d,
		Choices:    filter.Choices,
		Charts:     charts.Names,
		ChartQuery: template.URL(SelectionQuery(d.Selection)),
		Takeaways:  takeaways,
		RequestID:  requestID,
	}
}

// SelectionQuery encodes a selection back into churn/min/max query parameters.
func SelectionQuery(sel filter.Selection) string {
	return "churn=" + string(sel.Churn) +
		"&min=" + strconv.FormatFloat(sel.MinCharge, 'f', -1, 64) +
		"&max=" + strconv.FormatFloat(sel.MaxCharge, 'f', -1, 64)
}

type DashboardService struct {
	loader      DatasetLoader
	previewRows int
	bins        int
	logger      *internal.Logger
}

func NewDashboardService(loader DatasetLoader, previewRows, bins int) *DashboardService {
	return &DashboardService{
		loader:      loader,
		previewRows: previewRows,
		bins:        bins,
		logger:      internal.DefaultLogger.With("DashboardService"),
	}
}

// Dataset returns the loaded dataset.
func (s *DashboardService) Dataset(ctx context.Context) (*customer.Dataset, error) {
	return s.loader.Load(ctx)
}

// Bounds returns the dataset's MonthlyCharges range.
func (s *DashboardService) Bounds(ctx context.Context) (Bounds, error) {
	ds, err := s.loader.Load(ctx)
	if err != nil {
		return Bounds{}, err
	}
	lo, hi := dataset.ChargeBounds(ds)
	return Bounds{Min: lo, Max: hi}, nil
}

// ParseSelection builds a selection from raw query values. Missing bounds take
// the dataset bounds and given ones are clamped to them.
func ParseSelection(churn, minCharge, maxCharge string, b Bounds) (filter.Selection, error) {
	c, err := filter.ParseChurn(churn)
	if err != nil {
		return filter.Selection{}, err
	}
	lo, err := parseBound("min", minCharge, b.Min)
	if err != nil {
		return filter.Selection{}, err
	}
	hi, err := parseBound("max", maxCharge, b.Max)
	if err != nil {
		return filter.Selection{}, err
	}

	sel := filter.Selection{Churn: c, MinCharge: lo, MaxCharge: hi}
	if err := sel.Validate(); err != nil {
		return filter.Selection{}, err
	}
	return sel.Clamp(b.Min, b.Max), nil
}

func parseBound(name, raw string, fallback float64) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, errors.InvalidInput(name + " must be a number, got " + strconv.Quote(raw))
	}
	return v, nil
}

// Select parses query values against the loaded dataset's bounds.
func (s *DashboardService) Select(ctx context.Context, churn, minCharge, maxCharge string) (filter.Selection, error) {
	b, err := s.Bounds(ctx)
	if err != nil {
		return filter.Selection{}, err
	}
	return ParseSelection(churn, minCharge, maxCharge, b)
}

// View filters the dataset for one render.
func (s *DashboardService) View(ctx context.Context, sel filter.Selection) (customer.View, error) {
	ds, err := s.loader.Load(ctx)
	if err != nil {
		return customer.View{}, err
	}
	return filter.Apply(ds, sel), nil
}

// Build computes every dashboard section for sel. Sections only read the
// shared view, so they run concurrently.
func (s *DashboardService) Build(ctx context.Context, sel filter.Selection) (*Dashboard, error) {
	start := time.Now()
	ds, err := s.loader.Load(ctx)
	if err != nil {
		return nil, err
	}
	lo, hi := dataset.ChargeBounds(ds)
	view := filter.Apply(ds, sel)

	d := &Dashboard{
		Dataset: DatasetInfo{
			Source:      ds.Source(),
			Rows:        ds.Len(),
			Fingerprint: ds.Fingerprint().Short(),
			Repair:      ds.Repair(),
		},
		Selection: sel,
		Bounds:    Bounds{Min: lo, Max: hi},
		Locations: analysis.Locations(),
	}

	g, gctx := errgroup.WithContext(ctx)
	run := func(section func()) {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			section()
			return nil
		})
	}
	run(func() { d.Metrics = metrics.Compute(view) })
	run(func() { d.Churn = analysis.ChurnDistribution(view) })
	run(func() { d.MonthlyCharges = analysis.ChargeHistogram(view, s.bins) })
	run(func() { d.TotalCharges = analysis.TotalChargesByChurn(view) })
	run(func() { d.Correlation = analysis.Correlation(view) })
	run(func() { d.Preview = analysis.Preview(view, s.previewRows) })
	if err := g.Wait(); err != nil {
		return nil, errors.Wrap(err, "build dashboard")
	}

	s.logger.Debug("built churn=%s range=[%.2f, %.2f] rows=%d in %s",
		sel.Churn, sel.MinCharge, sel.MaxCharge, view.Len(), time.Since(start))
	return d, nil
}

// ChartService renders PNG charts with a bound on concurrent renders.
type ChartService struct {
	dashboard *DashboardService
	renderer  *charts.Renderer
	sem       *semaphore.Weighted
}

func NewChartService(dashboard *DashboardService, renderer *charts.Renderer, maxConcurrent int64) *ChartService {
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	return &ChartService{
		dashboard: dashboard,
		renderer:  renderer,
		sem:       semaphore.NewWeighted(maxConcurrent),
	}
}

// Render draws the named chart for sel.
func (s *ChartService) Render(ctx context.Context, name string, sel filter.Selection) ([]byte, error) {
	view, err := s.dashboard.View(ctx, sel)
	if err != nil {
		return nil, err
	}
	if err := s.sem.Acquire(ctx, 1); err != nil {
		return nil, errors.Wrap(err, "wait for chart renderer")
	}
	defer s.sem.Release(1)
	return s.renderer.Render(name, view)
}

// PreviewRows is the configured preview size.
func (s *DashboardService) PreviewRows() int {
	return s.previewRows
}
