// Package chart draws the per-column histogram images of the analysis page.
package chart

import (
	"bytes"
	"errors"
	"fmt"
	"image/color"
	"io"
	"math"
	"slices"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// ContentType of every image produced here.
const ContentType = "image/png"

const (
	width  = 6 * vg.Inch
	height = 4 * vg.Inch

	maxBins = 500
)

// ErrNoData is returned when a column has no finite value to plot.
var ErrNoData = errors.New("chart: no finite values")

//nolint:gochecknoglobals // palette
var (
	barFill  = color.RGBA{R: 0x4c, G: 0x72, B: 0xb0, A: 0xb4}
	barEdge  = color.RGBA{R: 0x2f, G: 0x4b, B: 0x7c, A: 0xff}
	kdeColor = color.RGBA{R: 0x1f, G: 0x3a, B: 0x66, A: 0xff}
)

// Histogram writes a PNG histogram of xs titled after the column, with a
// Gaussian kernel density curve scaled to counts drawn over the bars when
// the sample allows one.
func Histogram(w io.Writer, column string, xs []float64) error {
	values := finite(xs)
	if len(values) == 0 {
		return ErrNoData
	}

	p := plot.New()
	p.Title.Text = "Histogram of " + column
	p.X.Label.Text = column
	p.Y.Label.Text = "Count"

	hist, err := plotter.NewHist(plotter.Values(values), Bins(values))
	if err != nil {
		return fmt.Errorf("chart: build histogram: %w", err)
	}
	hist.FillColor = barFill
	hist.LineStyle.Color = barEdge
	p.Add(hist)

	if density := KDE(values); density != nil && len(hist.Bins) > 0 {
		binWidth := hist.Bins[0].Max - hist.Bins[0].Min
		scale := float64(len(values)) * binWidth

		curve := plotter.NewFunction(func(x float64) float64 { return scale * density(x) })
		curve.XMin = hist.Bins[0].Min
		curve.XMax = hist.Bins[len(hist.Bins)-1].Max
		curve.Samples = 200
		curve.Color = kdeColor
		curve.Width = vg.Points(2)
		p.Add(curve)
	}

	wt, err := p.WriterTo(width, height, "png")
	if err != nil {
		return fmt.Errorf("chart: canvas: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("chart: encode png: %w", err)
	}

	return nil
}

// HistogramPNG is Histogram into memory.
func HistogramPNG(column string, xs []float64) ([]byte, error) {
	var buf bytes.Buffer
	if err := Histogram(&buf, column, xs); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Bins picks the larger of the Sturges and Freedman-Diaconis bin counts.
func Bins(xs []float64) int {
	n := len(xs)
	if n < 2 {
		return 1
	}

	sorted := slices.Clone(xs)
	slices.Sort(sorted)
	span := sorted[n-1] - sorted[0]
	if span == 0 {
		return 1
	}

	sturges := int(math.Ceil(math.Log2(float64(n)))) + 1

	fd := 0
	iqr := stat.Quantile(0.75, stat.LinInterp, sorted, nil) - stat.Quantile(0.25, stat.LinInterp, sorted, nil)
	if iqr > 0 {
		binWidth := 2 * iqr / math.Cbrt(float64(n))
		fd = int(math.Ceil(span / binWidth))
	}

	return min(max(sturges, fd, 1), maxBins)
}

// KDE returns a Gaussian kernel density estimate of xs with Scott's
// bandwidth, or nil when the sample has fewer than two distinct values.
func KDE(xs []float64) func(float64) float64 {
	if len(xs) < 2 {
		return nil
	}

	sd := stat.StdDev(xs, nil)
	if sd == 0 || math.IsNaN(sd) {
		return nil
	}

	n := float64(len(xs))
	bw := sd * math.Pow(n, -0.2)
	norm := 1 / (n * bw * math.Sqrt(2*math.Pi))
	sample := slices.Clone(xs)

	return func(x float64) float64 {
		sum := 0.0
		for _, xi := range sample {
			z := (x - xi) / bw
			sum += math.Exp(-0.5 * z * z)
		}
		return sum * norm
	}
}

func finite(xs []float64) []float64 {
	out := make([]float64, 0, len(xs))
	for _, x := range xs {
		if !math.IsNaN(x) && !math.IsInf(x, 0) {
			out = append(out, x)
		}
	}
	return out
}
