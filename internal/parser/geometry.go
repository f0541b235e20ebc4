package parser

import (
	"math"
)

// ShapeType is the integer geometry code stored in file and record headers.
//
// Codes 1x carry an elevation (Z) channel, codes 2x a measure (M) channel.
// Z types may also carry measures, so HasM is true for both families.
type ShapeType int32

const (
	ShapeNull        ShapeType = 0
	ShapePoint       ShapeType = 1
	ShapePolyline    ShapeType = 3
	ShapePolygon     ShapeType = 5
	ShapeMultiPoint  ShapeType = 8
	ShapePointZ      ShapeType = 11
	ShapePolylineZ   ShapeType = 13
	ShapePolygonZ    ShapeType = 15
	ShapeMultiPointZ ShapeType = 18
	ShapePointM      ShapeType = 21
	ShapePolylineM   ShapeType = 23
	ShapePolygonM    ShapeType = 25
	ShapeMultiPointM ShapeType = 28
)

var shapeTypeNames = map[ShapeType]string{
	ShapeNull:        "Null",
	ShapePoint:       "Point",
	ShapePolyline:    "Polyline",
	ShapePolygon:     "Polygon",
	ShapeMultiPoint:  "MultiPoint",
	ShapePointZ:      "PointZ",
	ShapePolylineZ:   "PolylineZ",
	ShapePolygonZ:    "PolygonZ",
	ShapeMultiPointZ: "MultiPointZ",
	ShapePointM:      "PointM",
	ShapePolylineM:   "PolylineM",
	ShapePolygonM:    "PolygonM",
	ShapeMultiPointM: "MultiPointM",
}

// ShapeTypeFromCode maps a stored code to a ShapeType.
// MultiPatch (31) and unknown codes are rejected.
func ShapeTypeFromCode(code int32) (ShapeType, error) {
	t := ShapeType(code)
	if _, ok := shapeTypeNames[t]; !ok {
		return ShapeNull, &ErrUnsupportedShapeType{Code: code}
	}
	return t, nil
}

// String returns the shape type name
func (t ShapeType) String() string {
	if name, ok := shapeTypeNames[t]; ok {
		return name
	}
	return "Unknown"
}

// Valid reports whether t is one of the supported codes
func (t ShapeType) Valid() bool {
	_, ok := shapeTypeNames[t]
	return ok
}

// HasZ reports whether records of this type carry elevation values
func (t ShapeType) HasZ() bool {
	switch t {
	case ShapePointZ, ShapePolylineZ, ShapePolygonZ, ShapeMultiPointZ:
		return true
	}
	return false
}

// HasM reports whether records of this type may carry a measure block
func (t ShapeType) HasM() bool {
	if t.HasZ() {
		return true
	}
	switch t {
	case ShapePointM, ShapePolylineM, ShapePolygonM, ShapeMultiPointM:
		return true
	}
	return false
}

// Kind strips the Z/M flavour, returning Null, Point, MultiPoint, Polyline or Polygon.
func (t ShapeType) Kind() ShapeType {
	switch t {
	case ShapePoint, ShapePointZ, ShapePointM:
		return ShapePoint
	case ShapeMultiPoint, ShapeMultiPointZ, ShapeMultiPointM:
		return ShapeMultiPoint
	case ShapePolyline, ShapePolylineZ, ShapePolylineM:
		return ShapePolyline
	case ShapePolygon, ShapePolygonZ, ShapePolygonM:
		return ShapePolygon
	}
	return ShapeNull
}

// Dims returns the number of stored values per point: 3 for Z types, else 2
func (t ShapeType) Dims() int {
	if t.HasZ() {
		return 3
	}
	return 2
}

// Rectangle is an axis-aligned bounding rectangle in file coordinates
// (geographic degrees once projected).
type Rectangle struct {
	MinX float64 // Western edge
	MinY float64 // Southern edge
	MaxX float64 // Eastern edge
	MaxY float64 // Northern edge
}

// PointRectangle returns the zero-area rectangle at (x, y)
func PointRectangle(x, y float64) Rectangle {
	return Rectangle{MinX: x, MinY: y, MaxX: x, MaxY: y}
}

func (r Rectangle) Width() float64 {
	return r.MaxX - r.MinX
}

func (r Rectangle) Height() float64 {
	return r.MaxY - r.MinY
}

// IsEmpty reports whether r encloses nothing: either extent is negative,
// or any edge is NaN.
func (r Rectangle) IsEmpty() bool {
	return !(r.MinX <= r.MaxX && r.MinY <= r.MaxY)
}

// Intersects returns true if the rectangles overlap or touch.
func (r Rectangle) Intersects(other Rectangle) bool {
	return !(other.MaxX < r.MinX ||
		other.MinX > r.MaxX ||
		other.MaxY < r.MinY ||
		other.MinY > r.MaxY)
}

// ContainsPoint tests strict containment: the minimum edges are inside,
// the maximum edges are not.
func (r Rectangle) ContainsPoint(x, y float64) bool {
	return x >= r.MinX && x < r.MaxX &&
		y >= r.MinY && y < r.MaxY
}

// Union returns the smallest rectangle enclosing both
func (r Rectangle) Union(other Rectangle) Rectangle {
	return Rectangle{
		MinX: math.Min(r.MinX, other.MinX),
		MinY: math.Min(r.MinY, other.MinY),
		MaxX: math.Max(r.MaxX, other.MaxX),
		MaxY: math.Max(r.MaxY, other.MaxY),
	}
}

// Extend returns r grown to include (x, y)
func (r Rectangle) Extend(x, y float64) Rectangle {
	if x < r.MinX {
		r.MinX = x
	}
	if x > r.MaxX {
		r.MaxX = x
	}
	if y < r.MinY {
		r.MinY = y
	}
	if y > r.MaxY {
		r.MaxY = y
	}
	return r
}

// CrossesAntimeridian reports whether the longitude extent leaves [-180, 180]
func (r Rectangle) CrossesAntimeridian() bool {
	return r.MinX < -180 || r.MaxX > 180
}
