package viz

import (
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
)

type PlotOptions func(p *plot.Plot)

var (
	foreground = color.White
	gridColor  = color.Gray{Y: 0x40}
)

func plotWithDefaults(opts ...PlotOptions) *plot.Plot {
	p := plot.New()
	p.BackgroundColor = color.Black
	p.Title.TextStyle.Color = foreground
	p.Legend.TextStyle.Color = foreground
	for _, ax := range []*plot.Axis{&p.X, &p.Y} {
		ax.Color = foreground
		ax.Label.TextStyle.Color = foreground
		ax.Tick.Color = foreground
		ax.Tick.Label.Color = foreground
	}

	grid := plotter.NewGrid()
	grid.Vertical.Color = gridColor
	grid.Horizontal.Color = gridColor
	p.Add(grid)

	for _, opt := range opts {
		opt(p)
	}
	return p
}

// WithBitAxes labels the Y axis with the two bit levels and fixes the
// X range to n bits.
func WithBitAxes(n int) PlotOptions {
	return func(p *plot.Plot) {
		p.Y.Label.Text = "Bit"
		p.Y.Min = -0.5
		p.Y.Max = 1.5
		p.Y.Tick.Marker = plot.ConstantTicks([]plot.Tick{
			{Value: 0, Label: "0"},
			{Value: 1, Label: "1"},
		})
		p.X.Label.Text = "n"
		p.X.Min = 0
		p.X.Max = float64(n)
	}
}
