// Package control implements the named, ranged value bindings that
// plugins expose as sliders. Setting a value clamps instead of failing
// and change notification is debounced, so dragging a slider produces one
// recompute per settle (or per window under continuous movement), always
// ending on the final value.
package control

import (
	"math"
	"sync"
	"time"
)

type Kind int

const (
	Int Kind = iota
	Float
)

type Orientation int

const (
	Horizontal Orientation = iota
	Vertical
)

// DefaultDebounce is used until the owning viewer binds the control with
// its configured window.
const DefaultDebounce = 50 * time.Millisecond

// Change carries the settled value of one debounce window. Seq increases
// monotonically with every Set, so receivers can discard reordered
// notifications.
type Change struct {
	Name  string
	Value float64
	Seq   uint64
}

type Control struct {
	name        string
	kind        Kind
	low, high   float64
	orientation Orientation

	mu     sync.Mutex
	value  float64
	seq    uint64
	window time.Duration
	timer  *time.Timer
	notify func(Change)
}

func New(name string, kind Kind, low, high, value float64) *Control {
	c := &Control{
		name:   name,
		kind:   kind,
		low:    low,
		high:   high,
		window: DefaultDebounce,
	}
	c.value = c.clamp(value)
	return c
}

func (c *Control) Name() string             { return c.name }
func (c *Control) Kind() Kind               { return c.kind }
func (c *Control) Range() (float64, float64) { return c.low, c.high }
func (c *Control) Orientation() Orientation { return c.orientation }

func (c *Control) SetOrientation(o Orientation) *Control {
	c.orientation = o
	return c
}

func (c *Control) Value() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value
}

func (c *Control) Int() int { return int(math.Round(c.Value())) }

func (c *Control) clamp(v float64) float64 {
	if v < c.low {
		v = c.low
	}
	if v > c.high {
		v = c.high
	}
	if c.kind == Int {
		v = math.Round(v)
	}
	return v
}

// Set stores clamp(v) and (re)arms the debounce timer. Rapid calls within
// one window collapse into a single notification carrying the last value.
func (c *Control) Set(v float64) {
	c.mu.Lock()
	c.value = c.clamp(v)
	c.seq++
	if c.notify == nil {
		c.mu.Unlock()
		return
	}
	if c.timer == nil {
		c.timer = time.AfterFunc(c.window, c.fire)
	} else {
		c.timer.Reset(c.window)
	}
	c.mu.Unlock()
}

// SetNow stores clamp(v) and notifies synchronously, bypassing the
// debounce window. Used by imports and tests.
func (c *Control) SetNow(v float64) {
	c.mu.Lock()
	c.value = c.clamp(v)
	c.seq++
	ch := Change{Name: c.name, Value: c.value, Seq: c.seq}
	notify := c.notify
	if c.timer != nil {
		c.timer.Stop()
	}
	c.mu.Unlock()
	if notify != nil {
		notify(ch)
	}
}

func (c *Control) fire() {
	c.mu.Lock()
	ch := Change{Name: c.name, Value: c.value, Seq: c.seq}
	notify := c.notify
	c.mu.Unlock()
	if notify != nil {
		notify(ch)
	}
}

// Bind attaches the owning viewer's notification sink and debounce
// window. A control is bound by exactly one viewer at a time.
func (c *Control) Bind(window time.Duration, notify func(Change)) {
	c.mu.Lock()
	if window > 0 {
		c.window = window
	}
	c.notify = notify
	c.mu.Unlock()
}

// Unbind stops pending notification delivery.
func (c *Control) Unbind() {
	c.mu.Lock()
	c.notify = nil
	if c.timer != nil {
		c.timer.Stop()
	}
	c.mu.Unlock()
}
