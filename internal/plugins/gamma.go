package plugins

import (
	"math"

	"github.com/kvanlaer/ndview/internal/control"
	"github.com/kvanlaer/ndview/internal/frame"
	"github.com/kvanlaer/ndview/internal/view"
)

// Gamma applies a gamma curve to the (autoscaled) pixel values.
type Gamma struct {
	gamma *control.Control
}

func NewGamma() *Gamma {
	return &Gamma{
		gamma: control.New("gamma", control.Float, 0.1, 4.0, 1.0),
	}
}

func (p *Gamma) Name() string                 { return "gamma" }
func (p *Gamma) Attach(*view.Viewer) error    { return nil }
func (p *Gamma) Close() (any, error)          { return nil, nil }
func (p *Gamma) Controls() []*control.Control { return []*control.Control{p.gamma} }

func (p *Gamma) ProcessFrame(f *frame.Frame) (*frame.Frame, error) {
	g := p.gamma.Value()
	if g == 1.0 {
		return f, nil
	}
	lo, hi := f.MinMax()
	if hi <= lo {
		return f, nil
	}
	span := hi - lo
	out := f.Clone()
	for i, v := range out.Pix {
		norm := (v - lo) / span
		out.Pix[i] = lo + math.Pow(norm, g)*span
	}
	return out, nil
}
