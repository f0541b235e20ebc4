package parser

import (
	"math"
)

// Projection converts projected coordinates to geographic degrees.
type Projection interface {
	Geographic(x, y float64) (lon, lat float64)
}

// Projector recognizes projection parameters (typically the contents of a
// .prj file) and returns the matching Projection. ok is false when the
// parameters are not understood; coordinates are then left unchanged.
type Projector interface {
	Projection(params []byte) (p Projection, ok bool)
}

// ProjectionFunc adapts a function to Projection
type ProjectionFunc func(x, y float64) (lon, lat float64)

func (f ProjectionFunc) Geographic(x, y float64) (float64, float64) {
	return f(x, y)
}

// projectRectangle converts the four corners and returns their bounds.
func projectRectangle(p Projection, r Rectangle) Rectangle {
	corners := [4][2]float64{
		{r.MinX, r.MinY},
		{r.MinX, r.MaxY},
		{r.MaxX, r.MinY},
		{r.MaxX, r.MaxY},
	}
	out := Rectangle{
		MinX: math.Inf(1), MinY: math.Inf(1),
		MaxX: math.Inf(-1), MaxY: math.Inf(-1),
	}
	for _, c := range corners {
		lon, lat := p.Geographic(c[0], c[1])
		out = out.Extend(lon, lat)
	}
	return out
}

// ProjectHeader converts the header bounds in place when p is non-nil.
func ProjectHeader(h *Header, p Projection) {
	if p == nil {
		return
	}
	h.Bounds = projectRectangle(p, h.Bounds)
}
