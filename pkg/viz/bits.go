package viz

import (
	"bytes"
	"sync"

	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// BitPlotter draws the most recent size bits of a one-bit-per-byte
// stream as a square wave.
type BitPlotter struct {
	mu          sync.Mutex
	bits        []byte
	size        int
	name        string
	plotOptions []PlotOptions
}

func NewBitPlotter(name string, size int) *BitPlotter {
	return &BitPlotter{
		bits: make([]byte, 0, size),
		size: size,
		name: name,
	}
}

func (bp *BitPlotter) Name() string {
	return bp.name
}

func (bp *BitPlotter) AppendBits(b []byte) {
	bp.mu.Lock()
	defer bp.mu.Unlock()

	bp.bits = append(bp.bits, b...)
	if len(bp.bits) > bp.size {
		bp.bits = append(bp.bits[:0], bp.bits[len(bp.bits)-bp.size:]...)
	}
}

func (bp *BitPlotter) AddPlotOption(opt PlotOptions) {
	bp.plotOptions = append(bp.plotOptions, opt)
}

// points returns two points per bit so lines render as steps.
func (bp *BitPlotter) points() plotter.XYs {
	ret := make(plotter.XYs, 0, 2*len(bp.bits))
	for i, b := range bp.bits {
		y := float64(b & 1)
		ret = append(ret, plotter.XY{X: float64(i), Y: y}, plotter.XY{X: float64(i + 1), Y: y})
	}
	return ret
}

func (bp *BitPlotter) GetImage() (*ImageContainer, error) {
	bp.mu.Lock()
	if len(bp.bits) == 0 {
		bp.mu.Unlock()
		return nil, nil
	}
	pts := bp.points()
	bp.mu.Unlock()

	p := plotWithDefaults(append([]PlotOptions{WithBitAxes(len(pts) / 2)}, bp.plotOptions...)...)
	p.Title.Text = bp.name

	if err := plotutil.AddLines(p, "bits", pts); err != nil {
		return nil, err
	}

	var imageData bytes.Buffer
	w, err := p.WriterTo(8*vg.Inch, 3*vg.Inch, "png")
	if err != nil {
		return nil, err
	}
	if _, err := w.WriteTo(&imageData); err != nil {
		return nil, err
	}
	return &ImageContainer{name: bp.name, data: imageData.Bytes()}, nil
}

var _ Producer = (*BitPlotter)(nil)
