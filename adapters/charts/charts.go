// Package charts renders the dashboard figures as PNG images with gonum/plot.
package charts

import (
	"bytes"
	"fmt"
	"image/color"
	"math"

	"churnboard/domain/customer"
	"churnboard/internal/analysis"
	"churnboard/internal/errors"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// Chart names served under /charts/{name}.png.
const (
	ChartChurn          = "churn"
	ChartMonthlyCharges = "monthly-charges"
	ChartTotalCharges   = "total-charges"
	ChartCorrelation    = "correlation"
)

// Names lists every chart in dashboard order.
var Names = []string{ChartChurn, ChartMonthlyCharges, ChartTotalCharges, ChartCorrelation}

var (
	colorYes     = color.RGBA{R: 0xFF, G: 0x6F, B: 0x61, A: 255}
	colorNo      = color.RGBA{R: 0x4A, G: 0x90, B: 0xE2, A: 255}
	colorOther   = color.RGBA{R: 150, G: 150, B: 150, A: 255}
	colorCharges = color.RGBA{R: 0x4A, G: 0x90, B: 0xE2, A: 200}
	colorNaN     = color.RGBA{R: 220, G: 220, B: 220, A: 255}
)

// Renderer draws charts at a fixed canvas size.
type Renderer struct {
	Width  vg.Length
	Height vg.Length
	Bins   int
}

// NewRenderer returns a renderer producing 8x5 inch images.
func NewRenderer(bins int) *Renderer {
	if bins <= 0 {
		bins = 30
	}
	return &Renderer{Width: 8 * vg.Inch, Height: 5 * vg.Inch, Bins: bins}
}

// Render draws the named chart for the view.
func (r *Renderer) Render(name string, view customer.View) ([]byte, error) {
	var (
		p   *plot.Plot
		err error
	)
	switch name {
	case ChartChurn:
		p, err = churnBars(analysis.ChurnDistribution(view))
	case ChartMonthlyCharges:
		p, err = monthlyCharges(view, r.Bins)
	case ChartTotalCharges:
		p, err = totalChargesBox(view)
	case ChartCorrelation:
		p, err = correlationHeatmap(analysis.Correlation(view))
	default:
		return nil, errors.NotFound("chart " + name)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "render chart %s", name)
	}
	return r.encode(p)
}

func (r *Renderer) encode(p *plot.Plot) ([]byte, error) {
	wt, err := p.WriterTo(r.Width, r.Height, "png")
	if err != nil {
		return nil, errors.Wrap(err, "create png canvas")
	}
	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return nil, errors.Wrap(err, "encode png")
	}
	return buf.Bytes(), nil
}

func churnColor(value string) color.Color {
	switch value {
	case customer.ChurnYes:
		return colorYes
	case customer.ChurnNo:
		return colorNo
	default:
		return colorOther
	}
}

func churnBars(counts []analysis.CategoryCount) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = "Churn Distribution"
	p.X.Label.Text = "Churn"
	p.Y.Label.Text = "Customers"
	p.Y.Min = 0

	names := make([]string, len(counts))
	peak := 0.0
	for i, c := range counts {
		names[i] = c.Value
		if c.Value == "" {
			names[i] = "(blank)"
		}
		bars, err := plotter.NewBarChart(plotter.Values{float64(c.Count)}, vg.Points(40))
		if err != nil {
			return nil, err
		}
		bars.XMin = float64(i)
		bars.Color = churnColor(c.Value)
		bars.LineStyle.Width = vg.Length(0)
		p.Add(bars)
		peak = math.Max(peak, float64(c.Count))
	}
	p.NominalX(names...)
	p.Y.Max = math.Max(1, peak*1.15)

	for i, c := range counts {
		label, err := plotter.NewLabels(plotter.XYLabels{
			XYs:    []plotter.XY{{X: float64(i), Y: float64(c.Count) + p.Y.Max*0.02}},
			Labels: []string{fmt.Sprintf("%d", c.Count)},
		})
		if err != nil {
			return nil, err
		}
		label.TextStyle[0].XAlign = draw.XCenter
		p.Add(label)
	}
	return p, nil
}

func monthlyCharges(view customer.View, bins int) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = "Monthly Charges Distribution"
	p.X.Label.Text = "MonthlyCharges"
	p.Y.Label.Text = "Customers"
	if view.IsEmpty() {
		return p, nil
	}

	h := analysis.ChargeHistogram(view, bins)
	hist := &plotter.Histogram{
		Bins:      make([]plotter.HistogramBin, len(h.Bins)),
		FillColor: colorCharges,
		LineStyle: plotter.DefaultLineStyle,
	}
	peak := 0.0
	for i, b := range h.Bins {
		hist.Bins[i] = plotter.HistogramBin{Min: b.Lower, Max: b.Upper, Weight: float64(b.Count)}
		peak = math.Max(peak, float64(b.Count))
	}
	hist.LineStyle.Width = vg.Points(0.5)
	p.Add(hist)

	// marginal box sits above the tallest bar
	box, err := plotter.NewBoxPlot(vg.Points(14), peak*1.12, plotter.Values(view.MonthlyCharges()))
	if err != nil {
		return nil, err
	}
	box.Horizontal = true
	box.FillColor = colorCharges
	p.Add(box)
	p.Y.Min = 0
	p.Y.Max = peak * 1.25
	return p, nil
}

func totalChargesBox(view customer.View) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = "Total Charges by Churn"
	p.X.Label.Text = "Churn"
	p.Y.Label.Text = "TotalCharges"

	groups := analysis.TotalChargesByChurn(view)
	if len(groups) == 0 {
		return p, nil
	}
	values := map[string]plotter.Values{}
	for _, rec := range view.Records {
		values[rec.Churn] = append(values[rec.Churn], rec.TotalCharges)
	}

	names := make([]string, len(groups))
	for i, g := range groups {
		names[i] = g.Group
		box, err := plotter.NewBoxPlot(vg.Points(50), float64(i), values[g.Group])
		if err != nil {
			return nil, err
		}
		box.FillColor = churnColor(g.Group)
		p.Add(box)
	}
	p.NominalX(names...)
	return p, nil
}

// grid adapts a correlation matrix to plotter.GridXYZ, row 0 at the top.
type grid struct {
	m analysis.Matrix
}

func (g grid) Dims() (c, r int) { return len(g.m.Columns), len(g.m.Columns) }
func (g grid) Z(c, r int) float64 { return g.m.Values[g.flip(r)][c] }
func (g grid) X(c int) float64 { return float64(c) }
func (g grid) Y(r int) float64 { return float64(r) }
func (g grid) flip(r int) int { return len(g.m.Columns) - 1 - r }
func (g grid) label(c, r int) string { return cellLabel(g.Z(c, r)) }

func cellLabel(v float64) string {
	if math.IsNaN(v) {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", v)
}

func correlationHeatmap(m analysis.Matrix) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = "Correlation Heatmap"

	cm := moreland.SmoothBlueRed()
	cm.SetMin(-1)
	cm.SetMax(1)

	g := grid{m: m}
	hm := plotter.NewHeatMap(g, cm.Palette(255))
	hm.Min, hm.Max = -1, 1
	hm.NaN = colorNaN
	p.Add(hm)

	n := len(m.Columns)
	var (
		xy     plotter.XYs
		labels []string
		xticks []plot.Tick
		yticks []plot.Tick
	)
	for c := 0; c < n; c++ {
		xticks = append(xticks, plot.Tick{Value: float64(c), Label: m.Columns[c]})
		yticks = append(yticks, plot.Tick{Value: float64(c), Label: m.Columns[g.flip(c)]})
		for r := 0; r < n; r++ {
			xy = append(xy, plotter.XY{X: float64(c), Y: float64(r)})
			labels = append(labels, g.label(c, r))
		}
	}
	annotations, err := plotter.NewLabels(plotter.XYLabels{XYs: xy, Labels: labels})
	if err != nil {
		return nil, err
	}
	for i := range annotations.TextStyle {
		annotations.TextStyle[i].XAlign = draw.XCenter
		annotations.TextStyle[i].YAlign = draw.YCenter
	}
	p.Add(annotations)

	p.X.Tick.Marker = plot.ConstantTicks(xticks)
	p.Y.Tick.Marker = plot.ConstantTicks(yticks)
	return p, nil
}
