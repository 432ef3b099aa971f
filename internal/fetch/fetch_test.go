package fetch

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/kvanlaer/ndview/internal/axis"
	"github.com/kvanlaer/ndview/internal/frame"
)

// blockReader serves frames only when the test releases it, so requests
// can pile up deterministically.
type blockReader struct {
	mu      sync.Mutex
	reads   []axis.Index
	release chan struct{}
	failOn  int // t value that fails, -1 for none
}

func newBlockReader() *blockReader {
	return &blockReader{release: make(chan struct{}, 16), failOn: -1}
}

func (r *blockReader) Axes() []axis.Axis {
	return []axis.Axis{{Name: "t", Size: 100, Kind: axis.Time}}
}

func (r *blockReader) Size() (int, int) { return 4, 4 }
func (r *blockReader) Close() error     { return nil }

func (r *blockReader) ReadFrame(ctx context.Context, idx axis.Index) (*frame.Frame, error) {
	r.mu.Lock()
	r.reads = append(r.reads, idx.Clone())
	r.mu.Unlock()
	select {
	case <-r.release:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	if idx.Get("t") == r.failOn {
		return nil, fmt.Errorf("decode failed at t=%d", idx.Get("t"))
	}
	return frame.Gray(4, 4).Tag(idx), nil
}

func (r *blockReader) readCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.reads)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met within deadline")
		}
		time.Sleep(2 * time.Millisecond)
	}
}

func TestDeliversResult(t *testing.T) {
	r := newBlockReader()
	f := New(r)
	defer f.Close()

	f.Request(1, axis.Index{"t": 3})
	r.release <- struct{}{}

	res := <-f.Results()
	if res.Gen != 1 || res.Err != nil {
		t.Fatalf("unexpected result: %+v", res)
	}
	if res.Index.Get("t") != 3 {
		t.Errorf("result index = %v", res.Index)
	}
	if res.Frame == nil || res.Frame.Index.Get("t") != 3 {
		t.Error("frame not tagged with the requested index")
	}
}

func TestQueuedRequestIsReplaced(t *testing.T) {
	r := newBlockReader()
	f := New(r)
	defer f.Close()

	f.Request(1, axis.Index{"t": 0})
	waitFor(t, func() bool { return r.readCount() == 1 })

	// while the first decode runs, queue two more: only the last survives
	f.Request(2, axis.Index{"t": 1})
	f.Request(3, axis.Index{"t": 2})

	r.release <- struct{}{}
	r.release <- struct{}{}

	first := <-f.Results()
	if first.Gen != 1 {
		t.Fatalf("expected gen 1 first, got %d", first.Gen)
	}
	second := <-f.Results()
	if second.Gen != 3 || second.Index.Get("t") != 2 {
		t.Fatalf("expected the replacing request (gen 3, t=2), got %+v", second)
	}
	if n := r.readCount(); n != 2 {
		t.Errorf("expected 2 decodes, got %d", n)
	}
}

func TestErrorsAreDelivered(t *testing.T) {
	r := newBlockReader()
	r.failOn = 5
	f := New(r)
	defer f.Close()

	f.Request(1, axis.Index{"t": 5})
	r.release <- struct{}{}

	res := <-f.Results()
	if res.Err == nil {
		t.Fatal("expected a decode error")
	}
	if res.Gen != 1 || res.Index.Get("t") != 5 {
		t.Errorf("error result should carry gen and index: %+v", res)
	}
}

func TestCloseStopsWorkerAndClosesResults(t *testing.T) {
	r := newBlockReader()
	f := New(r)

	f.Request(1, axis.Index{"t": 0})
	waitFor(t, func() bool { return r.readCount() == 1 })

	if err := f.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	if _, ok := <-f.Results(); ok {
		t.Error("results channel should be closed after Close")
	}
}

func TestRequestIndexIsCopied(t *testing.T) {
	r := newBlockReader()
	f := New(r)
	defer f.Close()

	idx := axis.Index{"t": 4}
	f.Request(1, idx)
	idx["t"] = 99
	r.release <- struct{}{}

	res := <-f.Results()
	if res.Index.Get("t") != 4 {
		t.Errorf("request must clone the index, got t=%d", res.Index.Get("t"))
	}
}
