package view

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kvanlaer/ndview/internal/axis"
	"github.com/kvanlaer/ndview/internal/control"
	"github.com/kvanlaer/ndview/internal/fetch"
	"github.com/kvanlaer/ndview/internal/frame"
	"github.com/kvanlaer/ndview/internal/reader"
	"github.com/kvanlaer/ndview/internal/render"
)

// Options tune a viewer instance. Zero values select the defaults.
type Options struct {
	// Debounce is the control change coalescing window.
	Debounce time.Duration
	// Target receives finished redraws; may be set later via SetTarget.
	Target Target
	// PlayFPS is the default playback rate.
	PlayFPS float64
}

type attached struct {
	id     string
	plugin Plugin
}

// Viewer is the pipeline dispatcher. One mutex serializes all state
// mutation and every plugin callback: plugins never run concurrently
// with each other or with an index/control change. The fetch worker is
// the only other goroutine; its results re-enter through deliver.
type Viewer struct {
	mu sync.Mutex

	reader  reader.Reader
	axes    []axis.Axis
	fetcher *fetch.Fetcher

	index axis.Index

	plugins    []attached
	filters    []attached // mutates-pixels capability, registration order
	overlayers []attached // draws-overlay capability, registration order
	pointers   []attached // handles-pointer-input capability
	resetters  []attached

	gen      uint64
	inFlight bool
	dirty    bool
	wake     chan struct{}

	raw     *frame.Frame // last good decoded frame
	current *frame.Frame // last fully processed frame
	list    []render.Primitive

	target   Target
	errs     chan error
	debounce time.Duration

	playFPS  float64
	playAxis string
	playStop chan struct{}

	closed bool
	done   chan struct{}
}

// New builds a viewer over r and issues the initial recompute.
func New(r reader.Reader, opts Options) (*Viewer, error) {
	axes := r.Axes()
	for _, ax := range axes {
		if ax.Size < 1 {
			return nil, fmt.Errorf("axis %q has size %d", ax.Name, ax.Size)
		}
	}
	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = control.DefaultDebounce
	}
	playFPS := opts.PlayFPS
	if playFPS <= 0 {
		playFPS = 25
	}
	v := &Viewer{
		reader:   r,
		axes:     axes,
		fetcher:  fetch.New(r),
		index:    axis.Zero(axes),
		wake:     make(chan struct{}),
		target:   opts.Target,
		errs:     make(chan error, 16),
		debounce: debounce,
		playFPS:  playFPS,
		done:     make(chan struct{}),
	}
	go v.deliverLoop()

	v.mu.Lock()
	v.requestRecomputeLocked()
	v.mu.Unlock()
	return v, nil
}

// Axes returns the reader's non-spatial axes.
func (v *Viewer) Axes() []axis.Axis { return v.axes }

// Index returns a copy of the current index tuple.
func (v *Viewer) Index() axis.Index {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.index.Clone()
}

// FrameNumber returns the current time-axis position, keying the feature
// table.
func (v *Viewer) FrameNumber() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return axis.FrameNumber(v.axes, v.index)
}

// Compose appends plugins to the dispatch chain and returns the viewer
// for chaining. Composing A then B is identical to composing [A, B] at
// once: order is registration order and fixed for the viewer's lifetime.
// A plugin whose Attach fails is not appended; the failure is published
// on the error channel.
func (v *Viewer) Compose(plugins ...Plugin) *Viewer {
	for _, p := range plugins {
		if err := p.Attach(v); err != nil {
			v.publish(&PluginError{Plugin: p.Name(), Stage: "attach", Err: err})
			continue
		}
		a := attached{id: uuid.NewString(), plugin: p}

		v.mu.Lock()
		v.plugins = append(v.plugins, a)
		if _, ok := p.(FrameFilter); ok {
			v.filters = append(v.filters, a)
		}
		if _, ok := p.(Overlayer); ok {
			v.overlayers = append(v.overlayers, a)
		}
		if _, ok := p.(PointerHandler); ok {
			v.pointers = append(v.pointers, a)
		}
		if _, ok := p.(InteractionResetter); ok {
			v.resetters = append(v.resetters, a)
		}
		if owner, ok := p.(ControlOwner); ok {
			for _, c := range owner.Controls() {
				c.Bind(v.debounce, v.controlChanged)
			}
		}
		v.requestRecomputeLocked()
		v.mu.Unlock()
	}
	return v
}

// SetIndex validates and updates the position along one axis, resets any
// pending drag interaction, and schedules a recompute. On a validation
// failure the state is unchanged.
func (v *Viewer) SetIndex(name string, value int) error {
	if err := axis.Check(v.axes, name, value); err != nil {
		return err
	}
	v.mu.Lock()
	if v.index.Get(name) == value {
		v.mu.Unlock()
		return nil
	}
	v.index[name] = value
	frameNo := axis.FrameNumber(v.axes, v.index)
	for _, r := range v.resetters {
		r.plugin.(InteractionResetter).ResetInteraction(frameNo)
	}
	v.requestRecomputeLocked()
	v.mu.Unlock()
	return nil
}

// Step moves the index along an axis by delta, clamping at the ends.
func (v *Viewer) Step(name string, delta int) error {
	v.mu.Lock()
	cur := v.index.Get(name)
	v.mu.Unlock()
	next := cur + delta
	for _, ax := range v.axes {
		if ax.Name == name {
			if next < 0 {
				next = 0
			}
			if next >= ax.Size {
				next = ax.Size - 1
			}
			return v.SetIndex(name, next)
		}
	}
	return &axis.OutOfRangeError{Axis: name, Value: next, Size: -1}
}

// Invalidate schedules a recompute without changing the index. Plugins
// call it after mutating external data (e.g. the feature table).
func (v *Viewer) Invalidate() {
	v.mu.Lock()
	v.requestRecomputeLocked()
	v.mu.Unlock()
}

// Update runs fn inside the viewer's critical section, serialized with
// every plugin callback and state mutation, and schedules a redraw when
// fn reports a change. Plugins use it for mutations triggered outside
// the dispatch path, e.g. key bindings. fn must not call back into the
// viewer.
func (v *Viewer) Update(fn func() bool) {
	v.mu.Lock()
	if fn() && !v.closed {
		v.requestRecomputeLocked()
	}
	v.mu.Unlock()
}

func (v *Viewer) controlChanged(control.Change) {
	v.mu.Lock()
	if !v.closed {
		v.requestRecomputeLocked()
	}
	v.mu.Unlock()
}

// HandlePointer routes a pointer event through the handlers in
// registration order until one consumes it, then schedules a redraw.
func (v *Viewer) HandlePointer(ev render.PointerEvent) bool {
	v.mu.Lock()
	consumed := false
	for _, h := range v.pointers {
		if h.plugin.(PointerHandler).HandlePointer(ev) {
			consumed = true
			break
		}
	}
	if consumed && !v.closed {
		v.requestRecomputeLocked()
	}
	v.mu.Unlock()
	return consumed
}

// CurrentFrame returns the most recently rendered, fully-processed pixel
// buffer (nil before the first redraw completes). Callers must not write
// to it.
func (v *Viewer) CurrentFrame() *frame.Frame {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.current
}

// RenderList returns the overlay primitives of the last redraw.
func (v *Viewer) RenderList() []render.Primitive {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.list
}

// Errors exposes recoverable failures: PluginError, ReaderError. The
// channel is buffered; when nobody drains it, old reports are dropped in
// favor of new ones.
func (v *Viewer) Errors() <-chan error { return v.errs }

// SetTarget replaces the render target for subsequent redraws.
func (v *Viewer) SetTarget(t Target) {
	v.mu.Lock()
	v.target = t
	v.mu.Unlock()
	v.Invalidate()
}

// WaitIdle blocks until no recompute is in flight or pending, so callers
// observe a settled CurrentFrame.
func (v *Viewer) WaitIdle(ctx context.Context) error {
	for {
		v.mu.Lock()
		idle := !v.inFlight && !v.dirty
		ch := v.wake
		v.mu.Unlock()
		if idle {
			return nil
		}
		select {
		case <-ch:
		case <-ctx.Done():
			return ctx.Err()
		case <-v.done:
			return nil
		}
	}
}

// Close stops playback and the fetch worker, closes every plugin in
// registration order, and returns their output values (nil for plugins
// without output). The viewer must not be used afterwards.
func (v *Viewer) Close() ([]any, error) {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return nil, nil
	}
	v.closed = true
	v.stopPlayLocked()
	plugins := v.plugins
	v.mu.Unlock()

	var outputs []any
	var firstErr error
	for _, a := range plugins {
		if owner, ok := a.plugin.(ControlOwner); ok {
			for _, c := range owner.Controls() {
				c.Unbind()
			}
		}
		out, err := a.plugin.Close()
		if err != nil && firstErr == nil {
			firstErr = err
		}
		outputs = append(outputs, out)
	}
	if err := v.fetcher.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	<-v.done
	return outputs, firstErr
}

// --- recompute cycle -------------------------------------------------

// requestRecomputeLocked starts a fetch for the current index, or marks
// the in-flight cycle dirty so exactly one follow-up runs with the
// latest state once it completes.
func (v *Viewer) requestRecomputeLocked() {
	if v.closed {
		return
	}
	if v.inFlight {
		v.dirty = true
		return
	}
	v.inFlight = true
	v.gen++
	v.fetcher.Request(v.gen, v.index)
}

func (v *Viewer) deliverLoop() {
	defer close(v.done)
	for res := range v.fetcher.Results() {
		v.deliver(res)
	}
}

func (v *Viewer) deliver(res fetch.Result) {
	v.mu.Lock()
	v.inFlight = false

	// Staleness: only a result produced for the exact current index may
	// be rendered. Anything else is silently dropped; the dirty flag
	// below guarantees a fresh request is already due.
	stale := res.Gen != v.gen || !res.Index.Equal(v.index)
	var outFrame *frame.Frame
	var outList []render.Primitive
	var target Target

	if !stale {
		if res.Err != nil {
			// keep the last good frame on screen, no auto-retry
			v.publish(&ReaderError{Index: res.Index, Err: res.Err})
		} else {
			v.raw = res.Frame
			outFrame, outList = v.runPipelineLocked(res.Frame)
			v.current = outFrame
			v.list = outList
			target = v.target
		}
	}

	if v.dirty {
		v.dirty = false
		v.requestRecomputeLocked()
	}
	close(v.wake)
	v.wake = make(chan struct{})
	v.mu.Unlock()

	// The render target is external; call it outside the critical
	// section so it may call back into the viewer.
	if target != nil && outFrame != nil {
		target.Render(outFrame, outList)
	}
}

// runPipelineLocked applies active plugins in order, then collects
// overlays. A failing or panicking step is isolated: its input frame is
// carried forward (filters) or its overlay omitted (overlayers), and one
// PluginError per failing step is published.
func (v *Viewer) runPipelineLocked(raw *frame.Frame) (*frame.Frame, []render.Primitive) {
	cur := raw
	for _, a := range v.filters {
		out, err := v.safeProcess(a, cur)
		if err != nil {
			v.publish(&PluginError{Plugin: a.plugin.Name(), ID: a.id, Stage: "frame", Err: err})
			continue // degraded: keep pre-mutation frame for this step
		}
		cur = out
	}
	var list []render.Primitive
	for _, a := range v.overlayers {
		prims, err := v.safeOverlay(a, cur)
		if err != nil {
			v.publish(&PluginError{Plugin: a.plugin.Name(), ID: a.id, Stage: "overlay", Err: err})
			continue // degraded: omit this overlay for this redraw
		}
		list = append(list, prims...)
	}
	return cur, list
}

func (v *Viewer) safeProcess(a attached, in *frame.Frame) (out *frame.Frame, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("panic: %v", r)
		}
	}()
	out, err = a.plugin.(FrameFilter).ProcessFrame(in)
	if err != nil {
		return nil, err
	}
	if out == nil {
		return in, nil // returning nothing means pass-through
	}
	if !frame.SameShape(in, out) {
		return nil, fmt.Errorf("frame shape changed from %dx%dx%d to %dx%dx%d",
			in.W, in.H, in.Channels, out.W, out.H, out.Channels)
	}
	out.Index = in.Index
	return out, nil
}

func (v *Viewer) safeOverlay(a attached, f *frame.Frame) (prims []render.Primitive, err error) {
	defer func() {
		if r := recover(); r != nil {
			prims, err = nil, fmt.Errorf("panic: %v", r)
		}
	}()
	return a.plugin.(Overlayer).Overlay(f)
}

func (v *Viewer) publish(err error) {
	for {
		select {
		case v.errs <- err:
			return
		default:
		}
		// full: drop the oldest report
		select {
		case <-v.errs:
		default:
		}
	}
}
