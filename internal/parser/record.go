package parser

// Record is one decoded geometry record.
//
// Coordinates live in the file's PointStore; Parts are views into it and
// FirstPart indexes the file-wide part table. Shape carries the variant
// payload and is nil for Null records.
type Record struct {
	Number     int
	Type       ShapeType
	FirstPart  int
	Parts      []PartView
	PointCount int
	Bounds     *Rectangle // nil for Null and Point records
	Attributes *Row       // nil when no table is joined or the row is missing
	Shape      Shape
}

// Shape is the closed set of record payloads: *PointData, *MultiPointData
// and *PolyData.
type Shape interface {
	kind() ShapeType
}

// PointData holds the optional channels of a Point record. The coordinate
// itself is the record's single part.
type PointData struct {
	Z *float64
	M *float64
}

func (*PointData) kind() ShapeType { return ShapePoint }

// Channels are the optional elevation and measure blocks of multi-point
// records. Z values are stored as the third coordinate of each point and are
// present only when ZRange is set.
type Channels struct {
	ZRange  *[2]float64
	MRange  *[2]float64
	MValues []float64
}

// MultiPointData is the payload of MultiPoint records: one implicit part of N points.
type MultiPointData struct {
	Channels
}

func (*MultiPointData) kind() ShapeType { return ShapeMultiPoint }

// PolyData is shared by Polyline and Polygon records. Ring is true for
// polygons, whose parts are closed rings rather than open paths.
type PolyData struct {
	Channels
	Ring bool
}

func (p *PolyData) kind() ShapeType {
	if p.Ring {
		return ShapePolygon
	}
	return ShapePolyline
}

// IsNull reports whether the record has no geometry
func (r *Record) IsNull() bool {
	return r.Shape == nil
}

// Channels returns the Z/M channels of multi-point records, nil otherwise
func (r *Record) Channels() *Channels {
	switch s := r.Shape.(type) {
	case *MultiPointData:
		return &s.Channels
	case *PolyData:
		return &s.Channels
	}
	return nil
}

// ZValues copies the elevation of every point in part order.
func (r *Record) ZValues() []float64 {
	ch := r.Channels()
	if ch == nil || ch.ZRange == nil {
		return nil
	}
	zs := make([]float64, 0, r.PointCount)
	for _, part := range r.Parts {
		for _, p := range part.Points() {
			zs = append(zs, p.Z)
		}
	}
	return zs
}

// computeBounds returns the minimal rectangle over the record's points
func (r *Record) computeBounds() (Rectangle, bool) {
	var (
		rect  Rectangle
		found bool
	)
	for _, part := range r.Parts {
		for _, p := range part.Points() {
			if !found {
				rect = PointRectangle(p.X, p.Y)
				found = true
				continue
			}
			rect = rect.Extend(p.X, p.Y)
		}
	}
	return rect, found
}
