// Package render draws a sampled signal as a PNG strip chart.
package render

import (
	"errors"
	"image/color"
	"io"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// One point per pixel: canvas lengths given in points map 1:1 to output pixels.
const dpi = 72

var (
	gridColor  = color.RGBA{R: 0xf2, G: 0xb8, B: 0xb8, A: 0xff}
	traceColor = color.RGBA{R: 0x10, G: 0x10, B: 0x10, A: 0xff}
)

// Options controls the output size in pixels. Zero values use 1200x300; anything
// smaller than 200x100 is raised to that so the axes keep room for the trace.
type Options struct {
	Width  int
	Height int
}

func (o Options) withDefaults() Options {
	if o.Width <= 0 {
		o.Width = 1200
	}
	if o.Height <= 0 {
		o.Height = 300
	}
	o.Width = max(o.Width, 200)
	o.Height = max(o.Height, 100)
	return o
}

// Chart builds the plot of signal (mV) against t (s) on ECG-paper style grid lines.
// The vertical axis spans the signal's value range with a 5% margin.
func Chart(t, signal []float64) (*plot.Plot, error) {
	if len(signal) == 0 || len(t) != len(signal) {
		return nil, errors.New("render: empty or mismatched series")
	}

	p := plot.New()
	p.X.Label.Text = "time (s)"
	p.Y.Label.Text = "mV"

	grid := plotter.NewGrid()
	grid.Vertical.Color = gridColor
	grid.Horizontal.Color = gridColor
	p.Add(grid)

	xys := make(plotter.XYs, len(signal))
	lo, hi := signal[0], signal[0]
	for i, v := range signal {
		xys[i].X = t[i]
		xys[i].Y = v
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	line, err := plotter.NewLine(xys)
	if err != nil {
		return nil, err
	}
	line.LineStyle.Color = traceColor
	line.LineStyle.Width = vg.Points(1)
	p.Add(line)

	if hi-lo < 1e-9 {
		lo, hi = lo-0.5, hi+0.5
	}
	pad := 0.05 * (hi - lo)
	p.Y.Min, p.Y.Max = lo-pad, hi+pad
	p.X.Min, p.X.Max = t[0], t[len(t)-1]
	if p.X.Max <= p.X.Min {
		p.X.Max = p.X.Min + 1
	}
	return p, nil
}

// Plot rasterizes the chart of signal against t onto a new canvas.
func Plot(t, signal []float64, opts Options) (*vgimg.Canvas, error) {
	p, err := Chart(t, signal)
	if err != nil {
		return nil, err
	}
	opts = opts.withDefaults()
	c := vgimg.NewWith(
		vgimg.UseWH(vg.Length(opts.Width), vg.Length(opts.Height)),
		vgimg.UseDPI(dpi),
	)
	p.Draw(draw.New(c))
	return c, nil
}

// WritePNG encodes the plot of signal against t to w.
func WritePNG(w io.Writer, t, signal []float64, opts Options) error {
	c, err := Plot(t, signal, opts)
	if err != nil {
		return err
	}
	return EncodePNG(w, c)
}

// EncodePNG writes a rasterized canvas as PNG.
func EncodePNG(w io.Writer, c *vgimg.Canvas) error {
	_, err := vgimg.PngCanvas{Canvas: c}.WriteTo(w)
	return err
}
