// Package render defines the overlay primitives produced by passive
// plugins and the pointer events routed to interactive ones. Coordinates
// are frame pixels; the render target maps them to its own grid.
package render

type PrimitiveKind int

const (
	KindMarker PrimitiveKind = iota
	KindCircle
	KindText
	KindLine
)

type Primitive struct {
	Kind     PrimitiveKind
	X, Y     float64
	X2, Y2   float64 // line end point
	R        float64 // circle radius
	Label    string
	Color    string
	Selected bool
}

func Marker(x, y float64, color string) Primitive {
	return Primitive{Kind: KindMarker, X: x, Y: y, Color: color}
}

func Circle(x, y, r float64, color string) Primitive {
	return Primitive{Kind: KindCircle, X: x, Y: y, R: r, Color: color}
}

func Text(x, y float64, label, color string) Primitive {
	return Primitive{Kind: KindText, X: x, Y: y, Label: label, Color: color}
}

func Line(x1, y1, x2, y2 float64, color string) Primitive {
	return Primitive{Kind: KindLine, X: x1, Y: y1, X2: x2, Y2: y2, Color: color}
}

type PointerKind int

const (
	PointerDown PointerKind = iota
	PointerMove
	PointerUp
)

type Modifier int

const (
	ModNone Modifier = iota
	ModAdd
	ModDelete
)

type PointerEvent struct {
	Kind PointerKind
	X, Y float64
	Mod  Modifier
}
