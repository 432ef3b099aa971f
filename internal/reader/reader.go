// Package reader is the boundary to frame sources. A Reader decodes one
// 2D (possibly multi-channel) frame per index tuple and may block; the
// viewer always calls it from the fetch worker, never from the owner
// goroutine.
package reader

import (
	"context"

	"github.com/kvanlaer/ndview/internal/axis"
	"github.com/kvanlaer/ndview/internal/frame"
)

type Reader interface {
	// Axes returns the ordered non-spatial axes of the sequence.
	Axes() []axis.Axis
	// Size returns the fixed spatial dimensions.
	Size() (w, h int)
	// ReadFrame decodes the frame selected by idx. The returned frame
	// must be tagged with idx.
	ReadFrame(ctx context.Context, idx axis.Index) (*frame.Frame, error)
	Close() error
}
