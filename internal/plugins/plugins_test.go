package plugins

import (
	"testing"

	"github.com/kvanlaer/ndview/internal/annotate"
	"github.com/kvanlaer/ndview/internal/axis"
	"github.com/kvanlaer/ndview/internal/frame"
	"github.com/kvanlaer/ndview/internal/render"
)

func testFrame(t int) *frame.Frame {
	f := frame.Gray(4, 4)
	for i := range f.Pix {
		f.Pix[i] = 0.5
	}
	return f.Tag(axis.Index{"t": t})
}

func TestNoiseZeroLevelPassesThrough(t *testing.T) {
	p := NewNoise()
	in := testFrame(0)

	out, err := p.ProcessFrame(in)
	if err != nil {
		t.Fatalf("process failed: %v", err)
	}
	if out != in {
		t.Error("level 0 should return the input untouched")
	}
}

func TestNoiseIsDeterministicPerFrame(t *testing.T) {
	p := NewNoise()
	p.Controls()[0].SetNow(50)

	a, err := p.ProcessFrame(testFrame(3))
	if err != nil {
		t.Fatal(err)
	}
	b, err := p.ProcessFrame(testFrame(3))
	if err != nil {
		t.Fatal(err)
	}
	for i := range a.Pix {
		if a.Pix[i] != b.Pix[i] {
			t.Fatal("same frame at same level must render identically")
		}
	}

	c, err := p.ProcessFrame(testFrame(4))
	if err != nil {
		t.Fatal(err)
	}
	same := true
	for i := range a.Pix {
		if a.Pix[i] != c.Pix[i] {
			same = false
			break
		}
	}
	if same {
		t.Error("different frames should get different noise")
	}
}

func TestNoiseDoesNotMutateInput(t *testing.T) {
	p := NewNoise()
	p.Controls()[0].SetNow(50)
	in := testFrame(0)

	if _, err := p.ProcessFrame(in); err != nil {
		t.Fatal(err)
	}
	for _, v := range in.Pix {
		if v != 0.5 {
			t.Fatal("filter mutated its input frame")
		}
	}
}

func TestGammaUnityPassesThrough(t *testing.T) {
	p := NewGamma()
	in := testFrame(0)

	out, err := p.ProcessFrame(in)
	if err != nil {
		t.Fatal(err)
	}
	if out != in {
		t.Error("gamma 1.0 should return the input untouched")
	}
}

func TestGammaPreservesRangeEndpoints(t *testing.T) {
	p := NewGamma()
	p.Controls()[0].SetNow(2.0)

	in := frame.Gray(2, 1)
	in.Pix = []float64{0.2, 0.8}
	out, err := p.ProcessFrame(in.Tag(axis.Index{"t": 0}))
	if err != nil {
		t.Fatal(err)
	}

	// lo and hi map to themselves; the curve bends only between them
	if out.Pix[0] != 0.2 || out.Pix[1] != 0.8 {
		t.Errorf("endpoints moved: %v", out.Pix)
	}
}

func TestGammaDarkensMidtonesAboveOne(t *testing.T) {
	p := NewGamma()
	p.Controls()[0].SetNow(2.0)

	in := frame.Gray(3, 1)
	in.Pix = []float64{0, 0.5, 1}
	out, err := p.ProcessFrame(in.Tag(axis.Index{"t": 0}))
	if err != nil {
		t.Fatal(err)
	}
	if out.Pix[1] >= 0.5 {
		t.Errorf("gamma 2 should darken the midtone, got %f", out.Pix[1])
	}
}

func TestAnnotateRefusesOverlayBeforeAttach(t *testing.T) {
	p := NewAnnotate(annotate.NewTable())
	if _, err := p.Overlay(testFrame(0)); err == nil {
		t.Fatal("expected error before Attach")
	}
}

func TestSelectionPointerStartsDrag(t *testing.T) {
	tbl := annotate.NewTable()
	tbl.Add(0, 10, 10)
	p := NewSelection(tbl, 5)

	// drag the feature directly through the tracker
	p.Tracker().SetFrame(0)
	p.Tracker().SetBounds(100, 100)
	p.HandlePointer(render.PointerEvent{Kind: render.PointerDown, X: 10, Y: 10})

	if p.Tracker().State() != annotate.Dragging {
		t.Fatal("expected a drag in progress")
	}
}

func TestSelectionResetInteraction(t *testing.T) {
	tbl := annotate.NewTable()
	tbl.Add(0, 10, 10)
	p := NewSelection(tbl, 5)
	p.Tracker().SetFrame(0)
	p.HandlePointer(render.PointerEvent{Kind: render.PointerDown, X: 10, Y: 10})

	p.ResetInteraction(1)
	if p.Tracker().State() != annotate.Idle {
		t.Error("frame change must reset the interaction state")
	}
}

func TestSelectionClosedRefusesInput(t *testing.T) {
	tbl := annotate.NewTable()
	tbl.Add(0, 10, 10)
	p := NewSelection(tbl, 5)
	p.Tracker().SetFrame(0)

	out, err := p.Close()
	if err != nil {
		t.Fatalf("close failed: %v", err)
	}
	if out != tbl {
		t.Error("Close should hand back the table")
	}

	if p.HandlePointer(render.PointerEvent{Kind: render.PointerDown, X: 10, Y: 10}) {
		t.Error("closed plugin must not consume events")
	}
	if p.Tracker().State() != annotate.Idle {
		t.Error("closed plugin must not start drags")
	}
}
