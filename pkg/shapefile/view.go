package shapefile

import (
	"iter"
)

// View is a lightweight index of parts taken from a set of records. It
// shares the records' point store; building a view never copies coordinates.
type View struct {
	store  *PointStore
	parts  []PartView
	points int
}

// ViewFromRecords collects the parts of records, in order. Null records add
// nothing. Records should come from one file; Store reports the store of the
// first part.
func ViewFromRecords(records []*Record) *View {
	v := &View{}
	for _, rec := range records {
		for _, part := range rec.Parts() {
			if v.store == nil {
				v.store = part.Store()
			}
			v.parts = append(v.parts, part)
			v.points += part.Len()
		}
	}
	return v
}

// Store returns the shared point store, or nil for an empty view.
func (v *View) Store() *PointStore { return v.store }

// Parts returns the (offset, count) handles of the view.
func (v *View) Parts() []PartView { return v.parts }

// Len returns the number of parts.
func (v *View) Len() int { return len(v.parts) }

// PointCount returns the number of points across all parts.
func (v *View) PointCount() int { return v.points }

// Points yields every point of every part; the index runs across parts.
func (v *View) Points() iter.Seq2[int, Point] {
	return func(yield func(int, Point) bool) {
		n := 0
		for _, part := range v.parts {
			for _, p := range part.Points() {
				if !yield(n, p) {
					return
				}
				n++
			}
		}
	}
}
