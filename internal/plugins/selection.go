package plugins

import (
	"strconv"

	"github.com/kvanlaer/ndview/internal/annotate"
	"github.com/kvanlaer/ndview/internal/axis"
	"github.com/kvanlaer/ndview/internal/frame"
	"github.com/kvanlaer/ndview/internal/render"
	"github.com/kvanlaer/ndview/internal/view"
)

// Selection wires the annotate tracker into the viewer: it overlays the
// editable feature table, consumes pointer events, resets drag state on
// frame changes, and returns the table as its output when the session
// ends.
type Selection struct {
	tracker *annotate.Tracker
	viewer  *view.Viewer
	radius  float64
	closed  bool
}

func NewSelection(table *annotate.Table, hitRadius float64) *Selection {
	return &Selection{
		tracker: annotate.NewTracker(table, hitRadius),
		radius:  markerRadius,
	}
}

func (p *Selection) Name() string               { return "selection" }
func (p *Selection) Tracker() *annotate.Tracker { return p.tracker }

func (p *Selection) Attach(v *view.Viewer) error {
	p.viewer = v
	p.tracker.SetFrame(v.FrameNumber())
	return nil
}

// Close seals the table and hands it back; no further mutation is
// possible through this plugin afterwards.
func (p *Selection) Close() (any, error) {
	p.closed = true
	return p.tracker.Table(), nil
}

func (p *Selection) Overlay(f *frame.Frame) ([]render.Primitive, error) {
	frameNo := axis.FrameNumber(p.viewer.Axes(), f.Index)
	p.tracker.SetFrame(frameNo)
	w, h := f.Bounds()
	p.tracker.SetBounds(w, h)

	dragID := int64(0)
	if p.tracker.State() == annotate.Dragging {
		dragID = p.tracker.DragTarget()
	}
	var prims []render.Primitive
	for _, ft := range p.tracker.Table().Visible(frameNo) {
		color := "red"
		selected := ft.ID == dragID
		if selected {
			color = "yellow"
		}
		c := render.Circle(ft.X, ft.Y, p.radius, color)
		c.Selected = selected
		prims = append(prims, c)
		prims = append(prims, render.Text(ft.X+2, ft.Y-2, strconv.FormatInt(ft.ID, 10), color))
	}
	return prims, nil
}

func (p *Selection) HandlePointer(ev render.PointerEvent) bool {
	if p.closed {
		return false
	}
	return p.tracker.HandlePointer(ev)
}

func (p *Selection) ResetInteraction(frameNo int) {
	p.tracker.SetFrame(frameNo)
	p.tracker.Reset()
}

// Undo, Redo, and ArmPlace arrive from the UI goroutine; the tracker is
// only touched inside the viewer's critical section so they never run
// concurrently with Overlay or HandlePointer.

func (p *Selection) Undo() bool {
	if p.closed {
		return false
	}
	if p.viewer == nil {
		return p.tracker.Undo()
	}
	ok := false
	p.viewer.Update(func() bool {
		ok = p.tracker.Undo()
		return ok
	})
	return ok
}

func (p *Selection) Redo() bool {
	if p.closed {
		return false
	}
	if p.viewer == nil {
		return p.tracker.Redo()
	}
	ok := false
	p.viewer.Update(func() bool {
		ok = p.tracker.Redo()
		return ok
	})
	return ok
}

// ArmPlace arms the tracker to add a feature on the next plain click.
func (p *Selection) ArmPlace() {
	if p.closed {
		return
	}
	if p.viewer == nil {
		p.tracker.ArmPlace()
		return
	}
	p.viewer.Update(func() bool {
		p.tracker.ArmPlace()
		return false
	})
}
