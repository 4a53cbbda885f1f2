// Package chart renders summaries as bar charts of total price with a count
// line on a secondary axis.
package chart

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/shopspring/decimal"
	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/example/market-stats/internal/report"
	"github.com/example/market-stats/pkg/summary"
)

const barWidth = 0.6

// ErrNoData is returned for an empty summary; no image is produced.
var ErrNoData = errors.New("nothing to chart")

var (
	barColor   = drawing.ColorFromHex("87CEEB")
	priceColor = drawing.ColorBlue
	countColor = drawing.ColorRed
)

// Options sets the image size and the currency label on the price axis
type Options struct {
	Width    int
	Height   int
	Currency string
}

// Renderer draws summaries as PNG charts
type Renderer struct {
	opts Options
}

// New returns a Renderer using opts
func New(opts Options) *Renderer {
	return &Renderer{opts: opts}
}

// dataset is one chart's worth of bars: one label, price and count per bar
type dataset struct {
	labels []string
	prices []float64
	counts []float64
}

func (d *dataset) add(label string, price decimal.Decimal, count int) {
	d.labels = append(d.labels, label)
	d.prices = append(d.prices, price.InexactFloat64())
	d.counts = append(d.counts, float64(count))
}

// ByName renders per-item totals as PNG to w
func (r *Renderer) ByName(w io.Writer, total decimal.Decimal, byName []summary.NameTotal) error {
	if len(byName) == 0 {
		return ErrNoData
	}
	var d dataset
	for _, nt := range byName {
		d.add(nt.Name, nt.Total, nt.Count)
	}

	title := fmt.Sprintf("Total Price and Count per Item (Total Price: %s %s)", report.FormatAmount(total), r.opts.Currency)
	c := r.build(title, "Item Name", d)
	return c.Render(gochart.PNG, w)
}

// ByMonth renders per-month totals as PNG to w
func (r *Renderer) ByMonth(w io.Writer, byMonth []summary.MonthTotal) error {
	if len(byMonth) == 0 {
		return ErrNoData
	}
	var d dataset
	for _, mt := range byMonth {
		d.add(mt.Month.String(), mt.Total, mt.Count)
	}

	c := r.build("Total Price and Count per Month", "Month", d)
	return c.Render(gochart.PNG, w)
}

// SaveByName writes the per-item chart to path. Nothing is created for an empty summary.
func (r *Renderer) SaveByName(path string, total decimal.Decimal, byName []summary.NameTotal) error {
	if len(byName) == 0 {
		return ErrNoData
	}
	return saveFile(path, func(w io.Writer) error {
		return r.ByName(w, total, byName)
	})
}

// SaveByMonth writes the per-month chart to path. Nothing is created for an empty summary.
func (r *Renderer) SaveByMonth(path string, byMonth []summary.MonthTotal) error {
	if len(byMonth) == 0 {
		return ErrNoData
	}
	return saveFile(path, func(w io.Writer) error {
		return r.ByMonth(w, byMonth)
	})
}

func saveFile(path string, render func(io.Writer) error) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create chart directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create chart file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close chart file: %w", cerr)
		}
		if err != nil {
			os.Remove(path)
		}
	}()

	if err := render(f); err != nil {
		return fmt.Errorf("render %s: %w", filepath.Base(path), err)
	}
	return nil
}

func (r *Renderer) build(title, xName string, d dataset) *gochart.Chart {
	n := len(d.labels)

	// go-chart takes the x range from the ticks, so unlabeled ticks half a slot
	// beyond each end keep the outer bars whole and give one bar a nonzero range.
	ticks := make([]gochart.Tick, 0, n+2)
	ticks = append(ticks, gochart.Tick{Value: -0.5})
	for i, label := range d.labels {
		ticks = append(ticks, gochart.Tick{Value: float64(i), Label: label})
	}
	ticks = append(ticks, gochart.Tick{Value: float64(n) - 0.5})

	// Each bar is traced as a rectangle on the baseline so a filled series draws the bars.
	barX := make([]float64, 0, n*4)
	barY := make([]float64, 0, n*4)
	pointX := make([]float64, n)
	for i, price := range d.prices {
		x := float64(i)
		barX = append(barX, x-barWidth/2, x-barWidth/2, x+barWidth/2, x+barWidth/2)
		barY = append(barY, 0, price, price, 0)
		pointX[i] = x
	}

	c := &gochart.Chart{
		Title:  title,
		Width:  r.opts.Width,
		Height: r.opts.Height,
		Background: gochart.Style{
			Padding: gochart.Box{Top: 50, Left: 20, Right: 20, Bottom: 20},
		},
		XAxis: gochart.XAxis{
			Name:  xName,
			Ticks: ticks,
			Style: gochart.Style{TextRotationDegrees: 45},
		},
		YAxis: gochart.YAxis{
			Name:      fmt.Sprintf("Total Price (%s)", r.opts.Currency),
			NameStyle: gochart.Style{FontColor: priceColor},
			Range:     &gochart.ContinuousRange{Min: 0, Max: axisMax(d.prices, 1.1)},
		},
		YAxisSecondary: gochart.YAxis{
			Name:           "Count",
			NameStyle:      gochart.Style{FontColor: countColor},
			Range:          &gochart.ContinuousRange{Min: 0, Max: axisMax(d.counts, 1.2)},
			ValueFormatter: countFormatter,
		},
		Series: []gochart.Series{
			gochart.ContinuousSeries{
				Name:    "Total Price",
				XValues: barX,
				YValues: barY,
				Style: gochart.Style{
					StrokeColor: barColor,
					StrokeWidth: 1,
					FillColor:   barColor.WithAlpha(180),
				},
			},
			gochart.ContinuousSeries{
				Name:    "Count",
				YAxis:   gochart.YAxisSecondary,
				XValues: pointX,
				YValues: d.counts,
				Style: gochart.Style{
					StrokeColor: countColor,
					StrokeWidth: 2,
					DotColor:    countColor,
					DotWidth:    4,
				},
			},
		},
	}
	c.Elements = []gochart.Renderable{gochart.Legend(c)}
	return c
}

// axisMax returns the largest value scaled by headroom, or 1 when all are zero.
func axisMax(values []float64, headroom float64) float64 {
	m := 0.0
	for _, v := range values {
		m = math.Max(m, v)
	}
	if m == 0 {
		return 1
	}
	return m * headroom
}

func countFormatter(v interface{}) string {
	if f, ok := v.(float64); ok {
		return strconv.FormatFloat(f, 'f', 0, 64)
	}
	return fmt.Sprint(v)
}
