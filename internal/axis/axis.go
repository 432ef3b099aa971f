// Package axis describes the non-spatial dimensions of an image sequence
// and the index tuple that selects a single frame from it.
package axis

import "fmt"

type Kind int

const (
	Spatial Kind = iota
	Time
	Z
	Channel
	Other
)

func (k Kind) String() string {
	switch k {
	case Spatial:
		return "spatial"
	case Time:
		return "time"
	case Z:
		return "z"
	case Channel:
		return "channel"
	default:
		return "other"
	}
}

// KindOf maps conventional single-letter axis names to kinds.
func KindOf(name string) Kind {
	switch name {
	case "t":
		return Time
	case "z":
		return Z
	case "c":
		return Channel
	case "x", "y":
		return Spatial
	default:
		return Other
	}
}

type Axis struct {
	Name string
	Size int
	Kind Kind
}

// Index maps axis name to the current integer position along that axis.
type Index map[string]int

func (idx Index) Clone() Index {
	c := make(Index, len(idx))
	for k, v := range idx {
		c[k] = v
	}
	return c
}

func (idx Index) Equal(other Index) bool {
	if len(idx) != len(other) {
		return false
	}
	for k, v := range idx {
		if ov, ok := other[k]; !ok || ov != v {
			return false
		}
	}
	return true
}

// Get returns the position along name, defaulting to 0 for unknown axes.
func (idx Index) Get(name string) int {
	return idx[name]
}

// With returns a copy of idx with name set to v.
func (idx Index) With(name string, v int) Index {
	c := idx.Clone()
	c[name] = v
	return c
}

// Zero builds the all-zeros index over the given axes.
func Zero(axes []Axis) Index {
	idx := make(Index, len(axes))
	for _, ax := range axes {
		idx[ax.Name] = 0
	}
	return idx
}

// OutOfRangeError reports an index outside [0, Size) or an unknown axis.
type OutOfRangeError struct {
	Axis  string
	Value int
	Size  int
}

func (e *OutOfRangeError) Error() string {
	if e.Size < 0 {
		return fmt.Sprintf("unknown axis %q", e.Axis)
	}
	return fmt.Sprintf("index %d out of range for axis %q (size %d)", e.Value, e.Axis, e.Size)
}

// Check validates a position along one axis of axes.
func Check(axes []Axis, name string, v int) error {
	for _, ax := range axes {
		if ax.Name != name {
			continue
		}
		if v < 0 || v >= ax.Size {
			return &OutOfRangeError{Axis: name, Value: v, Size: ax.Size}
		}
		return nil
	}
	return &OutOfRangeError{Axis: name, Value: v, Size: -1}
}

// FrameNumber returns the value of the first time-kind axis in idx, or 0
// when the sequence has no time axis. It keys per-frame feature tables.
func FrameNumber(axes []Axis, idx Index) int {
	for _, ax := range axes {
		if ax.Kind == Time {
			return idx.Get(ax.Name)
		}
	}
	return 0
}
