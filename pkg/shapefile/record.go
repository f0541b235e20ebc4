package shapefile

import (
	"github.com/beetlebugorg/shapefile/internal/parser"
)

// Record is one geometry record with its optional attribute row.
//
// Point and MultiPoint records have a single implicit part. Polyline parts
// are open paths; Polygon parts are rings. Null records have no parts.
type Record struct {
	r *parser.Record
}

// Number returns the 1-based record number stored in the file.
func (r *Record) Number() int { return r.r.Number }

// ShapeType returns the record's shape type: the file's type, or ShapeNull.
func (r *Record) ShapeType() ShapeType { return r.r.Type }

// IsNull reports whether the record carries no geometry.
func (r *Record) IsNull() bool { return r.r.IsNull() }

// IsRing reports whether the parts are polygon rings.
func (r *Record) IsRing() bool {
	poly, ok := r.r.Shape.(*parser.PolyData)
	return ok && poly.Ring
}

func (r *Record) NumberOfParts() int { return len(r.r.Parts) }

func (r *Record) NumberOfPoints() int { return r.r.PointCount }

// Part returns the i-th part.
func (r *Record) Part(i int) (PartView, error) {
	if i < 0 || i >= len(r.r.Parts) {
		return PartView{}, &ErrIndexOutOfRange{What: "part", Index: i, Len: len(r.r.Parts)}
	}
	return r.r.Parts[i], nil
}

// Parts returns every part. The slice is shared; do not modify it.
func (r *Record) Parts() []PartView { return r.r.Parts }

// Bounds returns the record's bounding rectangle. Point records carry none;
// use Point instead.
func (r *Record) Bounds() (Rectangle, bool) {
	if r.r.Bounds == nil {
		return Rectangle{}, false
	}
	return *r.r.Bounds, true
}

// Attributes returns the joined attribute row, or nil.
func (r *Record) Attributes() *Row { return r.r.Attributes }

// Attribute returns one attribute value. Values are string, int64, float64,
// bool or time.Time.
func (r *Record) Attribute(name string) (any, bool) {
	return r.r.Attributes.Get(name)
}

// Point returns the coordinate of a Point record.
func (r *Record) Point() (x, y float64, ok bool) {
	if _, isPoint := r.r.Shape.(*parser.PointData); !isPoint {
		return 0, 0, false
	}
	p, err := r.r.Parts[0].Point(0)
	if err != nil {
		return 0, 0, false
	}
	return p.X, p.Y, true
}

// Z returns the elevation of a Point record.
func (r *Record) Z() (float64, bool) {
	if p, ok := r.r.Shape.(*parser.PointData); ok && p.Z != nil {
		return *p.Z, true
	}
	return 0, false
}

// M returns the measure of a Point record.
func (r *Record) M() (float64, bool) {
	if p, ok := r.r.Shape.(*parser.PointData); ok && p.M != nil {
		return *p.M, true
	}
	return 0, false
}

// ZRange returns the elevation range of a MultiPoint, Polyline or Polygon
// record.
func (r *Record) ZRange() ([2]float64, bool) {
	if ch := r.r.Channels(); ch != nil && ch.ZRange != nil {
		return *ch.ZRange, true
	}
	return [2]float64{}, false
}

// ZValues returns the elevation of every point in part order, or nil.
func (r *Record) ZValues() []float64 { return r.r.ZValues() }

// MRange returns the measure range, when the measure block was present.
func (r *Record) MRange() ([2]float64, bool) {
	if ch := r.r.Channels(); ch != nil && ch.MRange != nil {
		return *ch.MRange, true
	}
	return [2]float64{}, false
}

// MValues returns one measure per point, or nil when the block was absent or
// shorter than its point count requires.
func (r *Record) MValues() []float64 {
	if ch := r.r.Channels(); ch != nil {
		return ch.MValues
	}
	return nil
}
