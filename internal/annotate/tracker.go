package annotate

import (
	"github.com/kvanlaer/ndview/internal/render"
)

// State is the interaction mode of the tracker. Exactly one State exists
// per viewer.
type State int

const (
	// Idle accepts selection and add/delete clicks.
	Idle State = iota
	// Dragging follows pointer moves 1:1 until pointer-up commits.
	Dragging
	// Placing is armed to add a feature on the next plain pointer-down.
	Placing
)

const (
	// DefaultHitRadius is the pick tolerance in frame pixels.
	DefaultHitRadius = 5.0
	undoDepth        = 10
)

// Tracker edits one Table interactively. All methods must be called from
// the viewer's owner section; the tracker itself is not goroutine safe.
type Tracker struct {
	table     *Table
	frameNo   int
	hitRadius float64

	w, h float64 // frame bounds for drag clamping

	state  State
	dragID int64
	grabDX float64
	grabDY float64

	undo []map[int][]Feature
	redo []map[int][]Feature
}

func NewTracker(table *Table, hitRadius float64) *Tracker {
	if table == nil {
		table = NewTable()
	}
	if hitRadius <= 0 {
		hitRadius = DefaultHitRadius
	}
	return &Tracker{table: table, hitRadius: hitRadius}
}

func (tr *Tracker) Table() *Table { return tr.table }
func (tr *Tracker) State() State  { return tr.state }

// DragTarget returns the feature id being dragged, valid only in Dragging.
func (tr *Tracker) DragTarget() int64 { return tr.dragID }

// SetFrame scopes subsequent edits to the given frame number. A pending
// drag does not carry across frames; it is forcibly reset.
func (tr *Tracker) SetFrame(no int) {
	if no != tr.frameNo {
		tr.frameNo = no
		tr.Reset()
	}
}

// SetBounds updates the spatial extent drag positions are clamped to.
func (tr *Tracker) SetBounds(w, h float64) {
	tr.w, tr.h = w, h
}

// Reset forces the tracker back to Idle, abandoning any drag in progress
// (the feature keeps its last committed position from the move events).
func (tr *Tracker) Reset() {
	tr.state = Idle
	tr.dragID = 0
}

// ArmPlace switches to Placing: the next plain pointer-down adds a
// feature at the click position and returns to Idle.
func (tr *Tracker) ArmPlace() {
	if tr.state == Idle {
		tr.state = Placing
	}
}

// HandlePointer advances the state machine. It returns true when the
// event changed the table or the selection, i.e. when a redraw is due.
func (tr *Tracker) HandlePointer(ev render.PointerEvent) bool {
	// delete works from any state and leaves the state unchanged
	if ev.Mod == render.ModDelete && ev.Kind == render.PointerDown {
		if f, ok := tr.table.HitTest(tr.frameNo, ev.X, ev.Y, tr.hitRadius); ok {
			tr.pushUndo()
			tr.table.Hide(tr.frameNo, f.ID)
			return true
		}
		return false
	}

	switch tr.state {
	case Idle:
		if ev.Kind != render.PointerDown {
			return false
		}
		if f, ok := tr.table.HitTest(tr.frameNo, ev.X, ev.Y, tr.hitRadius); ok {
			tr.pushUndo()
			tr.state = Dragging
			tr.dragID = f.ID
			tr.grabDX = f.X - ev.X
			tr.grabDY = f.Y - ev.Y
			return true
		}
		if ev.Mod == render.ModAdd {
			tr.pushUndo()
			x, y := tr.clampPos(ev.X, ev.Y)
			tr.table.Add(tr.frameNo, x, y)
			return true
		}
		return false

	case Placing:
		if ev.Kind != render.PointerDown {
			return false
		}
		tr.pushUndo()
		x, y := tr.clampPos(ev.X, ev.Y)
		tr.table.Add(tr.frameNo, x, y)
		tr.state = Idle
		return true

	case Dragging:
		switch ev.Kind {
		case render.PointerMove:
			// no debounce: the drag must track the pointer 1:1
			x, y := tr.clampPos(ev.X+tr.grabDX, ev.Y+tr.grabDY)
			return tr.table.Move(tr.frameNo, tr.dragID, x, y)
		case render.PointerUp:
			// the drag is already committed move by move
			tr.state = Idle
			tr.dragID = 0
			return true
		}
		return false
	}
	return false
}

func (tr *Tracker) clampPos(x, y float64) (float64, float64) {
	if tr.w > 0 {
		if x < 0 {
			x = 0
		}
		if x > tr.w-1 {
			x = tr.w - 1
		}
	}
	if tr.h > 0 {
		if y < 0 {
			y = 0
		}
		if y > tr.h-1 {
			y = tr.h - 1
		}
	}
	return x, y
}

func (tr *Tracker) pushUndo() {
	tr.undo = append(tr.undo, tr.table.clone())
	if len(tr.undo) > undoDepth {
		tr.undo = tr.undo[1:]
	}
	tr.redo = nil
}

func (tr *Tracker) Undo() bool {
	if len(tr.undo) == 0 {
		return false
	}
	tr.redo = append(tr.redo, tr.table.clone())
	if len(tr.redo) > undoDepth {
		tr.redo = tr.redo[1:]
	}
	tr.table.restoreFrom(tr.undo[len(tr.undo)-1])
	tr.undo = tr.undo[:len(tr.undo)-1]
	tr.Reset()
	return true
}

func (tr *Tracker) Redo() bool {
	if len(tr.redo) == 0 {
		return false
	}
	tr.undo = append(tr.undo, tr.table.clone())
	if len(tr.undo) > undoDepth {
		tr.undo = tr.undo[1:]
	}
	tr.table.restoreFrom(tr.redo[len(tr.redo)-1])
	tr.redo = tr.redo[:len(tr.redo)-1]
	tr.Reset()
	return true
}
