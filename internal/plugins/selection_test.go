package plugins

import (
	"context"
	"testing"
	"time"

	"github.com/kvanlaer/ndview/internal/annotate"
	"github.com/kvanlaer/ndview/internal/axis"
	"github.com/kvanlaer/ndview/internal/frame"
	"github.com/kvanlaer/ndview/internal/render"
	"github.com/kvanlaer/ndview/internal/view"
)

type grayReader struct{}

func (grayReader) Axes() []axis.Axis {
	return []axis.Axis{{Name: "t", Size: 5, Kind: axis.Time}}
}

func (grayReader) Size() (int, int) { return 32, 32 }
func (grayReader) Close() error     { return nil }

func (grayReader) ReadFrame(ctx context.Context, idx axis.Index) (*frame.Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return frame.Gray(32, 32).Tag(idx), nil
}

func settle(t *testing.T, v *view.Viewer) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := v.WaitIdle(ctx); err != nil {
		t.Fatalf("viewer did not settle: %v", err)
	}
}

// Undo/Redo/ArmPlace arrive from the UI goroutine while the viewer's
// deliver goroutine runs Overlay on the same tracker. Both paths must
// serialize through the viewer; run with -race.
func TestSelectionEditsSerializeWithPipeline(t *testing.T) {
	sel := NewSelection(annotate.NewTable(), 5)
	v, err := view.New(grayReader{}, view.Options{})
	if err != nil {
		t.Fatal(err)
	}
	v.Compose(sel)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 200; i++ {
			v.HandlePointer(render.PointerEvent{
				Kind: render.PointerDown,
				X:    float64(i % 30),
				Y:    float64(i % 30),
				Mod:  render.ModAdd,
			})
			v.Invalidate()
		}
	}()

	for i := 0; i < 200; i++ {
		sel.ArmPlace()
		sel.Undo()
		sel.Redo()
	}
	<-done

	settle(t, v)
	if _, err := v.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}
}

func TestSelectionUndoRedrawsThroughViewer(t *testing.T) {
	tbl := annotate.NewTable()
	sel := NewSelection(tbl, 5)
	v, err := view.New(grayReader{}, view.Options{})
	if err != nil {
		t.Fatal(err)
	}
	defer v.Close()
	v.Compose(sel)
	settle(t, v)

	v.HandlePointer(render.PointerEvent{Kind: render.PointerDown, X: 10, Y: 10, Mod: render.ModAdd})
	settle(t, v)
	if tbl.Len() != 1 {
		t.Fatalf("expected 1 feature after add, got %d", tbl.Len())
	}

	if !sel.Undo() {
		t.Fatal("expected undo to apply")
	}
	settle(t, v)
	if tbl.Len() != 0 {
		t.Error("undo did not take effect")
	}

	// the undone feature must be gone from the settled render list too
	for _, p := range v.RenderList() {
		if p.Kind == render.KindCircle {
			t.Error("stale overlay after undo")
		}
	}

	if !sel.Redo() {
		t.Fatal("expected redo to apply")
	}
	settle(t, v)
	if tbl.Len() != 1 {
		t.Error("redo did not take effect")
	}
}

func TestSelectionOverlayUsesMarkerRadius(t *testing.T) {
	tbl := annotate.NewTable()
	tbl.Add(0, 10, 10)
	sel := NewSelection(tbl, 5)
	v, err := view.New(grayReader{}, view.Options{})
	if err != nil {
		t.Fatal(err)
	}
	defer v.Close()
	v.Compose(sel)
	settle(t, v)

	for _, p := range v.RenderList() {
		if p.Kind == render.KindCircle && p.R != markerRadius {
			t.Errorf("circle radius %f, want %f", p.R, markerRadius)
		}
	}
}
