package plugins

import (
	"fmt"
	"strconv"

	"github.com/kvanlaer/ndview/internal/annotate"
	"github.com/kvanlaer/ndview/internal/axis"
	"github.com/kvanlaer/ndview/internal/frame"
	"github.com/kvanlaer/ndview/internal/render"
	"github.com/kvanlaer/ndview/internal/view"
)

// markerRadius is the drawn circle radius in frame pixels. Picking uses
// the tracker's configurable hit radius, not this.
const markerRadius = 6.0

// Annotate overlays a read-only feature table (e.g. imported tracking
// results) as circles with id labels on the frame they belong to.
type Annotate struct {
	table  *annotate.Table
	viewer *view.Viewer
	radius float64
}

func NewAnnotate(table *annotate.Table) *Annotate {
	if table == nil {
		table = annotate.NewTable()
	}
	return &Annotate{table: table, radius: markerRadius}
}

func (p *Annotate) Name() string { return "annotate" }

func (p *Annotate) Attach(v *view.Viewer) error {
	p.viewer = v
	return nil
}

func (p *Annotate) Close() (any, error) { return p.table, nil }

func (p *Annotate) Overlay(f *frame.Frame) ([]render.Primitive, error) {
	if p.viewer == nil {
		return nil, fmt.Errorf("not attached")
	}
	frameNo := axis.FrameNumber(p.viewer.Axes(), f.Index)
	var prims []render.Primitive
	for _, ft := range p.table.Visible(frameNo) {
		prims = append(prims, render.Circle(ft.X, ft.Y, p.radius, "red"))
		prims = append(prims, render.Text(ft.X+2, ft.Y-2, strconv.FormatInt(ft.ID, 10), "red"))
	}
	return prims, nil
}
