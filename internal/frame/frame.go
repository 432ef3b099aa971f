// Package frame holds the pixel buffers that flow through the viewer
// pipeline. A Frame is tagged with the index tuple it was decoded for and
// is treated as immutable once built; pipeline stages return fresh frames.
package frame

import (
	"github.com/kvanlaer/ndview/internal/axis"
)

// Frame is a W x H pixel buffer with one or more channels, stored planar:
// Pix[c*W*H + y*W + x].
type Frame struct {
	Pix      []float64
	W, H     int
	Channels int
	Index    axis.Index
}

// New allocates a zeroed frame.
func New(w, h, channels int) *Frame {
	if channels < 1 {
		channels = 1
	}
	return &Frame{
		Pix:      make([]float64, w*h*channels),
		W:        w,
		H:        h,
		Channels: channels,
	}
}

// Gray allocates a single-channel frame.
func Gray(w, h int) *Frame { return New(w, h, 1) }

func (f *Frame) Clone() *Frame {
	c := &Frame{
		Pix:      make([]float64, len(f.Pix)),
		W:        f.W,
		H:        f.H,
		Channels: f.Channels,
		Index:    f.Index.Clone(),
	}
	copy(c.Pix, f.Pix)
	return c
}

// Tag returns a shallow copy of f tagged with idx.
func (f *Frame) Tag(idx axis.Index) *Frame {
	t := *f
	t.Index = idx.Clone()
	return &t
}

func (f *Frame) At(x, y, c int) float64 {
	return f.Pix[c*f.W*f.H+y*f.W+x]
}

func (f *Frame) Set(x, y, c int, v float64) {
	f.Pix[c*f.W*f.H+y*f.W+x] = v
}

// SameShape reports whether two frames have identical dimensions. The
// dispatcher rejects pixel-mutating steps that change shape.
func SameShape(a, b *Frame) bool {
	if a == nil || b == nil {
		return false
	}
	return a.W == b.W && a.H == b.H && a.Channels == b.Channels
}

// MinMax returns the value range of the buffer, used for autoscaling.
func (f *Frame) MinMax() (lo, hi float64) {
	if len(f.Pix) == 0 {
		return 0, 0
	}
	lo, hi = f.Pix[0], f.Pix[0]
	for _, v := range f.Pix[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}

// Bounds returns the spatial extent as floats, for clamping overlay
// coordinates and drag positions.
func (f *Frame) Bounds() (w, h float64) {
	return float64(f.W), float64(f.H)
}
