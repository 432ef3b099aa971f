package annotate

import "testing"

func TestAddAssignsMonotonicIDs(t *testing.T) {
	tbl := NewTable()

	a := tbl.Add(0, 1, 1)
	b := tbl.Add(0, 2, 2)
	c := tbl.Add(5, 3, 3)

	if a.ID != 1 || b.ID != 2 || c.ID != 3 {
		t.Errorf("expected ids 1,2,3 got %d,%d,%d", a.ID, b.ID, c.ID)
	}
}

func TestInsertKeepsCounterAhead(t *testing.T) {
	tbl := NewTable()
	tbl.Insert(0, Feature{ID: 40, X: 1, Y: 1, Visible: true})

	f := tbl.Add(0, 2, 2)
	if f.ID != 41 {
		t.Errorf("expected next id 41 after inserting id 40, got %d", f.ID)
	}
}

func TestHideIsSoftAndIdempotent(t *testing.T) {
	tbl := NewTable()
	f := tbl.Add(3, 10, 10)

	if !tbl.Hide(3, f.ID) {
		t.Fatal("Hide returned false for existing feature")
	}
	tbl.Hide(3, f.ID) // second hide is a no-op

	if len(tbl.Visible(3)) != 0 {
		t.Error("hidden feature still visible")
	}
	if len(tbl.All(3)) != 1 {
		t.Error("hidden feature should remain in the table")
	}

	if !tbl.Restore(3, f.ID) {
		t.Fatal("Restore returned false")
	}
	if len(tbl.Visible(3)) != 1 {
		t.Error("restored feature not visible")
	}
}

func TestMoveUnknownID(t *testing.T) {
	tbl := NewTable()
	if tbl.Move(0, 99, 1, 1) {
		t.Error("Move of unknown id should return false")
	}
}

func TestHitTestNearestWins(t *testing.T) {
	tbl := NewTable()
	tbl.Add(0, 10, 10) // id 1
	tbl.Add(0, 20, 10) // id 2

	f, ok := tbl.HitTest(0, 11, 10, 5)
	if !ok {
		t.Fatal("expected a hit")
	}
	if f.ID != 1 {
		t.Errorf("expected nearest feature 1, got %d", f.ID)
	}
}

func TestHitTestTieGoesToLargestID(t *testing.T) {
	tbl := NewTable()
	tbl.Add(0, 10, 10) // id 1
	tbl.Add(0, 12, 10) // id 2, equidistant from x=11

	f, ok := tbl.HitTest(0, 11, 10, 5)
	if !ok {
		t.Fatal("expected a hit")
	}
	if f.ID != 2 {
		t.Errorf("expected tie to go to the newer feature 2, got %d", f.ID)
	}
}

func TestHitTestIgnoresHiddenAndOutOfRadius(t *testing.T) {
	tbl := NewTable()
	f := tbl.Add(0, 10, 10)
	tbl.Hide(0, f.ID)

	if _, ok := tbl.HitTest(0, 10, 10, 5); ok {
		t.Error("hidden feature should not be hit")
	}

	tbl.Add(0, 100, 100)
	if _, ok := tbl.HitTest(0, 10, 10, 5); ok {
		t.Error("feature outside radius should not be hit")
	}
}

func TestHitTestScopedToFrame(t *testing.T) {
	tbl := NewTable()
	tbl.Add(7, 10, 10)

	if _, ok := tbl.HitTest(0, 10, 10, 5); ok {
		t.Error("hit test must only see the requested frame")
	}
}

func TestRowsOrderedByFrameThenID(t *testing.T) {
	tbl := NewTable()
	tbl.Add(5, 1, 1) // id 1
	tbl.Add(0, 2, 2) // id 2
	tbl.Add(0, 3, 3) // id 3

	rows := tbl.Rows()
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if rows[0].Frame != 0 || rows[0].Feature.ID != 2 {
		t.Errorf("row 0 = %+v", rows[0])
	}
	if rows[1].Frame != 0 || rows[1].Feature.ID != 3 {
		t.Errorf("row 1 = %+v", rows[1])
	}
	if rows[2].Frame != 5 || rows[2].Feature.ID != 1 {
		t.Errorf("row 2 = %+v", rows[2])
	}
}
