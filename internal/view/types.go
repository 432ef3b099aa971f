// Package view implements the viewer core: it owns the current index
// tuple, drives the asynchronous fetch/recompute/redraw cycle, and
// dispatches the composed plugin chain in registration order.
package view

import (
	"fmt"

	"github.com/kvanlaer/ndview/internal/axis"
	"github.com/kvanlaer/ndview/internal/control"
	"github.com/kvanlaer/ndview/internal/frame"
	"github.com/kvanlaer/ndview/internal/render"
)

// Plugin is the base capability every extension implements. The optional
// capabilities below are discovered by type assertion at attach time;
// dispatch never probes attributes at call time.
type Plugin interface {
	Name() string
	Attach(v *Viewer) error
	// Close releases the plugin and returns its output value, if any.
	// The selection plugin returns its feature table here.
	Close() (any, error)
}

// FrameFilter mutates pixel data. Filters run in registration order, each
// consuming the previous output; a filter must preserve frame shape.
type FrameFilter interface {
	ProcessFrame(f *frame.Frame) (*frame.Frame, error)
}

// Overlayer draws on top of the final pixel buffer without altering it.
// Overlayers run after all filters, in registration order.
type Overlayer interface {
	Overlay(f *frame.Frame) ([]render.Primitive, error)
}

// ControlOwner exposes slider bindings. The viewer binds each control's
// change notification to its own recompute trigger on attach.
type ControlOwner interface {
	Controls() []*control.Control
}

// PointerHandler receives pointer events routed through the viewer.
// Returning true consumes the event and schedules a redraw.
type PointerHandler interface {
	HandlePointer(ev render.PointerEvent) bool
}

// InteractionResetter is notified when the index tuple changes, so
// pending drag state never carries across frames. frameNo is the
// time-axis value of the new index.
type InteractionResetter interface {
	ResetInteraction(frameNo int)
}

// Target receives the finished pixel buffer and overlay render list of
// each redraw. Both are read-only snapshots.
type Target interface {
	Render(f *frame.Frame, list []render.Primitive)
}

// PluginError reports a failing or panicking plugin step. The step is
// isolated: the pipeline continued with the step's input substituted
// (filters) or the overlay omitted (overlayers).
type PluginError struct {
	Plugin string
	ID     string // instance id, distinguishes same-named plugins
	Stage  string // "frame" or "overlay"
	Err    error
}

func (e *PluginError) Error() string {
	return fmt.Sprintf("plugin %s (%s stage): %v", e.Plugin, e.Stage, e.Err)
}

func (e *PluginError) Unwrap() error { return e.Err }

// ReaderError reports a failed decode. The viewer keeps showing the last
// good frame; there is no automatic retry.
type ReaderError struct {
	Index axis.Index
	Err   error
}

func (e *ReaderError) Error() string {
	return fmt.Sprintf("reader failed for %v: %v", e.Index, e.Err)
}

func (e *ReaderError) Unwrap() error { return e.Err }
