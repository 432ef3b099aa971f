package tui

import (
	"fmt"
	"image"
	"strings"

	"github.com/charmbracelet/lipgloss"
	xdraw "golang.org/x/image/draw"

	"github.com/kvanlaer/ndview/internal/frame"
	"github.com/kvanlaer/ndview/internal/render"
)

// renderImage converts a frame into cols x rows terminal cells using
// half-block glyphs: every cell shows two vertically stacked pixels, the
// top one as foreground of '▀', the bottom one as background.
func renderImage(f *frame.Frame, cols, rows int, autoscale bool) string {
	if f == nil || cols < 1 || rows < 1 {
		return ""
	}
	img := toRGBA(f, autoscale)
	scaled := image.NewRGBA(image.Rect(0, 0, cols, rows*2))
	xdraw.ApproxBiLinear.Scale(scaled, scaled.Bounds(), img, img.Bounds(), xdraw.Src, nil)

	var b strings.Builder
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			top := scaled.RGBAAt(col, row*2)
			bot := scaled.RGBAAt(col, row*2+1)
			style := lipgloss.NewStyle().
				Foreground(lipgloss.Color(hexColor(top.R, top.G, top.B))).
				Background(lipgloss.Color(hexColor(bot.R, bot.G, bot.B)))
			b.WriteString(style.Render("▀"))
		}
		if row < rows-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func toRGBA(f *frame.Frame, autoscale bool) *image.RGBA {
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
			} else if f.Channels == 2 {
				// two-channel stacks map to magenta/green, the
				// conventional fluorescence palette
				m := clamp8((f.At(x, y, 0) - lo) * scale)
				g2 := clamp8((f.At(x, y, 1) - lo) * scale)
				r, g, b = m, g2, m
			} else {
				v := clamp8((f.At(x, y, 0) - lo) * scale)
				r, g, b = v, v, v
			}
			i := img.PixOffset(x, y)
			img.Pix[i+0] = r
			img.Pix[i+1] = g
			img.Pix[i+2] = b
			img.Pix[i+3] = 255
		}
	}
	return img
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

func hexColor(r, g, b uint8) string {
	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}

var primStyles = map[string]lipgloss.Style{
	"red":    lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
	"yellow": lipgloss.NewStyle().Foreground(lipgloss.Color("220")),
	"grey":   lipgloss.NewStyle().Foreground(lipgloss.Color("242")),
	"green":  lipgloss.NewStyle().Foreground(lipgloss.Color("82")),
}

// drawPrimitives composites overlay primitives onto the rendered image
// grid, mapping frame pixel coordinates to cells.
func drawPrimitives(base string, prims []render.Primitive, f *frame.Frame, cols, rows int) string {
	if f == nil || f.W == 0 || f.H == 0 {
		return base
	}
	sx := float64(cols) / float64(f.W)
	sy := float64(rows) / float64(f.H)
	for _, p := range prims {
		style, ok := primStyles[p.Color]
		if !ok {
			style = primStyles["red"]
		}
		cx := int(p.X * sx)
		cy := int(p.Y * sy)
		switch p.Kind {
		case render.KindMarker:
			base = overlayAt(base, style.Render("+"), cx, cy, cols, rows)
		case render.KindCircle:
			glyph := "○"
			if p.Selected {
				glyph = "◉"
			}
			base = overlayAt(base, style.Render(glyph), cx, cy, cols, rows)
		case render.KindText:
			base = overlayAt(base, style.Render(p.Label), cx, cy, cols, rows)
		case render.KindLine:
			base = drawLine(base, style, p, sx, sy, cols, rows)
		}
	}
	return base
}

// drawLine rasterizes a line primitive cell by cell (Bresenham).
func drawLine(base string, style lipgloss.Style, p render.Primitive, sx, sy float64, cols, rows int) string {
	x1, y1 := int(p.X*sx), int(p.Y*sy)
	x2, y2 := int(p.X2*sx), int(p.Y2*sy)
	dx := abs(x2 - x1)
	dy := abs(y2 - y1)
	stepX, stepY := 1, 1
	if x1 > x2 {
		stepX = -1
	}
	if y1 > y2 {
		stepY = -1
	}
	err := dx - dy
	for {
		base = overlayAt(base, style.Render("·"), x1, y1, cols, rows)
		if x1 == x2 && y1 == y2 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x1 += stepX
		}
		if e2 < dx {
			err += dx
			y1 += stepY
		}
	}
	return base
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
