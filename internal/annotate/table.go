// Package annotate holds the per-frame feature table and the interactive
// selection state machine that edits it. Only the tracker mutates the
// table (single-writer discipline); renderers read snapshots.
package annotate

import (
	"math"
	"sort"
)

// Feature is one annotated point. IDs are monotonic for the lifetime of a
// table and never reused, even after deletion. Hidden features are soft
// deleted: kept for undo/restore, excluded from rendering and hit tests.
type Feature struct {
	ID      int64
	X, Y    float64
	Visible bool
}

// Row pairs a feature with its frame number, for persistence.
type Row struct {
	Frame   int
	Feature Feature
}

type Table struct {
	frames map[int][]Feature
	nextID int64
}

func NewTable() *Table {
	return &Table{frames: make(map[int][]Feature), nextID: 1}
}

// Add creates a visible feature with a fresh id on the given frame.
func (t *Table) Add(frame int, x, y float64) Feature {
	f := Feature{ID: t.nextID, X: x, Y: y, Visible: true}
	t.nextID++
	t.frames[frame] = append(t.frames[frame], f)
	return f
}

// Insert places an existing feature (e.g. from an import) on a frame,
// keeping the id counter ahead of every inserted id.
func (t *Table) Insert(frame int, f Feature) {
	if f.ID >= t.nextID {
		t.nextID = f.ID + 1
	}
	t.frames[frame] = append(t.frames[frame], f)
}

// Move repositions a feature. Returns false when the id is not on frame.
func (t *Table) Move(frame int, id int64, x, y float64) bool {
	fs := t.frames[frame]
	for i := range fs {
		if fs[i].ID == id {
			fs[i].X = x
			fs[i].Y = y
			return true
		}
	}
	return false
}

// Hide soft-deletes a feature. Hiding an already-hidden feature is a
// no-op; the feature never reappears without Restore.
func (t *Table) Hide(frame int, id int64) bool {
	fs := t.frames[frame]
	for i := range fs {
		if fs[i].ID == id {
			fs[i].Visible = false
			return true
		}
	}
	return false
}

func (t *Table) Restore(frame int, id int64) bool {
	fs := t.frames[frame]
	for i := range fs {
		if fs[i].ID == id {
			fs[i].Visible = true
			return true
		}
	}
	return false
}

func (t *Table) Get(frame int, id int64) (Feature, bool) {
	for _, f := range t.frames[frame] {
		if f.ID == id {
			return f, true
		}
	}
	return Feature{}, false
}

// Visible returns a snapshot of the visible features on frame.
func (t *Table) Visible(frame int) []Feature {
	var out []Feature
	for _, f := range t.frames[frame] {
		if f.Visible {
			out = append(out, f)
		}
	}
	return out
}

// All returns a snapshot of every feature on frame, hidden included.
func (t *Table) All(frame int) []Feature {
	return append([]Feature(nil), t.frames[frame]...)
}

// Frames returns the frame numbers that carry features, sorted.
func (t *Table) Frames() []int {
	out := make([]int, 0, len(t.frames))
	for fr := range t.frames {
		out = append(out, fr)
	}
	sort.Ints(out)
	return out
}

// Rows flattens the table in (frame, id) order.
func (t *Table) Rows() []Row {
	var rows []Row
	for _, fr := range t.Frames() {
		fs := t.All(fr)
		sort.Slice(fs, func(i, j int) bool { return fs[i].ID < fs[j].ID })
		for _, f := range fs {
			rows = append(rows, Row{Frame: fr, Feature: f})
		}
	}
	return rows
}

func (t *Table) Len() int {
	n := 0
	for _, fs := range t.frames {
		n += len(fs)
	}
	return n
}

// HitTest returns the visible feature on frame closest to (x, y) within
// radius r. Ties at equal distance go to the largest id, so the most
// recently created feature wins.
func (t *Table) HitTest(frame int, x, y, r float64) (Feature, bool) {
	var best Feature
	bestDist := math.Inf(1)
	found := false
	for _, f := range t.frames[frame] {
		if !f.Visible {
			continue
		}
		d := math.Hypot(f.X-x, f.Y-y)
		if d > r {
			continue
		}
		if !found || d < bestDist || (d == bestDist && f.ID > best.ID) {
			best = f
			bestDist = d
			found = true
		}
	}
	return best, found
}

// clone deep-copies the table contents for undo snapshots. The id counter
// is deliberately not part of a snapshot: undoing an add must not allow
// its id to be reissued.
func (t *Table) clone() map[int][]Feature {
	c := make(map[int][]Feature, len(t.frames))
	for fr, fs := range t.frames {
		c[fr] = append([]Feature(nil), fs...)
	}
	return c
}

func (t *Table) restoreFrom(snapshot map[int][]Feature) {
	t.frames = make(map[int][]Feature, len(snapshot))
	for fr, fs := range snapshot {
		t.frames[fr] = append([]Feature(nil), fs...)
	}
}
