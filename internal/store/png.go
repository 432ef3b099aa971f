package store

import (
	"image"
	"image/color"
	"image/png"
	"os"

	"github.com/kvanlaer/ndview/internal/frame"
)

// ExportPNG writes a frame as an 8-bit PNG. With autoscale the value
// range is stretched to full contrast, matching the on-screen rendering.
func ExportPNG(path string, f *frame.Frame, autoscale bool) error {
	lo, hi := 0.0, 1.0
	if autoscale {
		lo, hi = f.MinMax()
		if hi <= lo {
			lo, hi = 0, 1
		}
	}
	scale := 255.0 / (hi - lo)

	img := image.NewRGBA(image.Rect(0, 0, f.W, f.H))
	for y := 0; y < f.H; y++ {
		for x := 0; x < f.W; x++ {
			var r, g, b uint8
			if f.Channels >= 3 {
				r = clamp8((f.At(x, y, 0) - lo) * scale)
				g = clamp8((f.At(x, y, 1) - lo) * scale)
				b = clamp8((f.At(x, y, 2) - lo) * scale)
			} else {
				v := clamp8((f.At(x, y, 0) - lo) * scale)
				r, g, b = v, v, v
			}
			img.SetRGBA(x, y, color.RGBA{R: r, G: g, B: b, A: 255})
		}
	}

	out, err := os.Create(path)
	if err != nil {
		return err
	}
	defer out.Close()
	return png.Encode(out, img)
}

func clamp8(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
