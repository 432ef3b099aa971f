// Package fetch decodes frames off the viewer's owner goroutine. One
// worker services a depth-1 request slot: a request that arrives while
// another is queued replaces it, so a fast-scrubbing slider never builds
// a backlog of decodes. Completed results are always delivered; deciding
// whether a result is stale is the viewer's job.
package fetch

import (
	"context"
	"sync"

	"github.com/kvanlaer/ndview/internal/axis"
	"github.com/kvanlaer/ndview/internal/frame"
	"github.com/kvanlaer/ndview/internal/reader"
)

type Result struct {
	Gen   uint64
	Index axis.Index
	Frame *frame.Frame
	Err   error
}

type Fetcher struct {
	r       reader.Reader
	results chan Result

	mu   sync.Mutex
	next *request

	kick   chan struct{}
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

type request struct {
	gen uint64
	idx axis.Index
}

func New(r reader.Reader) *Fetcher {
	ctx, cancel := context.WithCancel(context.Background())
	f := &Fetcher{
		r:       r,
		results: make(chan Result, 1),
		kick:    make(chan struct{}, 1),
		ctx:     ctx,
		cancel:  cancel,
		done:    make(chan struct{}),
	}
	go f.loop()
	return f
}

// Request queues a decode for idx. A queued-but-unstarted request is
// replaced; a decode already running is left to finish and its result is
// delivered for the viewer to discard.
func (f *Fetcher) Request(gen uint64, idx axis.Index) {
	f.mu.Lock()
	f.next = &request{gen: gen, idx: idx.Clone()}
	f.mu.Unlock()
	select {
	case f.kick <- struct{}{}:
	default:
	}
}

func (f *Fetcher) Results() <-chan Result { return f.results }

// Close cancels any running decode, stops the worker, and closes the
// underlying reader. The results channel is closed once the worker exits.
func (f *Fetcher) Close() error {
	f.cancel()
	<-f.done
	return f.r.Close()
}

func (f *Fetcher) loop() {
	defer close(f.done)
	defer close(f.results)
	for {
		select {
		case <-f.ctx.Done():
			return
		case <-f.kick:
		}
		for {
			f.mu.Lock()
			req := f.next
			f.next = nil
			f.mu.Unlock()
			if req == nil {
				break
			}
			fr, err := f.r.ReadFrame(f.ctx, req.idx)
			if f.ctx.Err() != nil {
				return
			}
			res := Result{Gen: req.gen, Index: req.idx, Frame: fr, Err: err}
			select {
			case f.results <- res:
			case <-f.ctx.Done():
				return
			}
		}
	}
}
