// Package plugins ships the example plugins composed by the CLI's
// --example-plugins flag: a noise filter and a gamma filter with slider
// controls, a read-only annotation overlay, and the interactive
// selection editor.
package plugins

import (
	"math/rand"

	"github.com/kvanlaer/ndview/internal/control"
	"github.com/kvanlaer/ndview/internal/frame"
	"github.com/kvanlaer/ndview/internal/view"
)

// Noise adds per-pixel noise scaled by its level slider. The noise is
// seeded from the frame index, so a given frame at a given level always
// renders identically.
type Noise struct {
	level *control.Control
}

func NewNoise() *Noise {
	return &Noise{
		level: control.New("level", control.Int, 0, 100, 0),
	}
}

func (p *Noise) Name() string                { return "noise" }
func (p *Noise) Attach(*view.Viewer) error   { return nil }
func (p *Noise) Close() (any, error)         { return nil, nil }
func (p *Noise) Controls() []*control.Control { return []*control.Control{p.level} }

func (p *Noise) ProcessFrame(f *frame.Frame) (*frame.Frame, error) {
	level := float64(p.level.Int()) / 100.0
	if level == 0 {
		return f, nil
	}
	_, hi := f.MinMax()
	if hi == 0 {
		hi = 1
	}
	rng := rand.New(rand.NewSource(int64(f.Index.Get("t")) + 1))
	out := f.Clone()
	for i := range out.Pix {
		out.Pix[i] += rng.Float64() * level * hi
	}
	return out, nil
}
