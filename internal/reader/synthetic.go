package reader

import (
	"context"
	"math"
	"math/rand"

	"github.com/kvanlaer/ndview/internal/axis"
	"github.com/kvanlaer/ndview/internal/frame"
)

// Gradient is a deterministic t/z ramp useful for eyeballing navigation:
// intensity shifts with time and the ramp direction tilts with z.
type Gradient struct {
	w, h int
	axes []axis.Axis
}

func NewGradient() *Gradient {
	return &Gradient{
		w: 128,
		h: 96,
		axes: []axis.Axis{
			{Name: "t", Size: 50, Kind: axis.Time},
			{Name: "z", Size: 20, Kind: axis.Z},
		},
	}
}

func (g *Gradient) Axes() []axis.Axis { return g.axes }
func (g *Gradient) Size() (int, int)  { return g.w, g.h }
func (g *Gradient) Close() error      { return nil }

func (g *Gradient) ReadFrame(ctx context.Context, idx axis.Index) (*frame.Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	t := float64(idx.Get("t")) / 50.0
	z := float64(idx.Get("z")) / 20.0
	f := frame.Gray(g.w, g.h)
	for y := 0; y < g.h; y++ {
		for x := 0; x < g.w; x++ {
			fx := float64(x) / float64(g.w)
			fy := float64(y) / float64(g.h)
			v := 0.5 + 0.5*math.Sin(2*math.Pi*((1-z)*fx+z*fy+t))
			f.Set(x, y, 0, v)
		}
	}
	return f.Tag(idx), nil
}

// Blobs renders moving Gaussian spots, one set per channel. It is the
// default sequence when no file is given.
type Blobs struct {
	w, h int
	axes []axis.Axis
}

func NewBlobs() *Blobs {
	return &Blobs{
		w: 160,
		h: 120,
		axes: []axis.Axis{
			{Name: "t", Size: 60, Kind: axis.Time},
			{Name: "c", Size: 2, Kind: axis.Channel},
		},
	}
}

func (b *Blobs) Axes() []axis.Axis { return b.axes }
func (b *Blobs) Size() (int, int)  { return b.w, b.h }
func (b *Blobs) Close() error      { return nil }

func (b *Blobs) ReadFrame(ctx context.Context, idx axis.Index) (*frame.Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	t := float64(idx.Get("t"))
	c := idx.Get("c")
	f := frame.Gray(b.w, b.h)
	// three spots per channel on circular tracks, phase-shifted per channel
	for spot := 0; spot < 3; spot++ {
		phase := 2 * math.Pi * (t/60 + float64(spot)/3 + float64(c)/2)
		cx := float64(b.w)/2 + float64(b.w)/3*math.Cos(phase)
		cy := float64(b.h)/2 + float64(b.h)/3*math.Sin(phase)
		sigma := 6.0 + 2.0*float64(spot)
		for y := 0; y < b.h; y++ {
			for x := 0; x < b.w; x++ {
				dx := float64(x) - cx
				dy := float64(y) - cy
				v := math.Exp(-(dx*dx + dy*dy) / (2 * sigma * sigma))
				if v > 0.001 {
					f.Set(x, y, 0, math.Min(1, f.At(x, y, 0)+v))
				}
			}
		}
	}
	return f.Tag(idx), nil
}

// Noise produces per-frame uniform noise, seeded from the index so that
// revisiting a frame reproduces it exactly.
type Noise struct {
	w, h int
	axes []axis.Axis
}

func NewNoise() *Noise {
	return &Noise{
		w:    128,
		h:    128,
		axes: []axis.Axis{{Name: "t", Size: 100, Kind: axis.Time}},
	}
}

func (n *Noise) Axes() []axis.Axis { return n.axes }
func (n *Noise) Size() (int, int)  { return n.w, n.h }
func (n *Noise) Close() error      { return nil }

func (n *Noise) ReadFrame(ctx context.Context, idx axis.Index) (*frame.Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rng := rand.New(rand.NewSource(int64(idx.Get("t")) + 1))
	f := frame.Gray(n.w, n.h)
	for i := range f.Pix {
		f.Pix[i] = rng.Float64()
	}
	return f.Tag(idx), nil
}
