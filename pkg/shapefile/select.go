package shapefile

import (
	"reflect"
	"strings"
	"time"

	"github.com/beetlebugorg/shapefile/internal/parser"
)

// SelectByAttribute keeps the records whose attribute field equals value.
//
// Strings compare case-insensitively. Numbers compare by value whatever
// their Go type, so int64(3) matches 3.0. Records lacking the field, or
// lacking attributes entirely, are kept only when acceptAbsent is true.
// An empty input returns nil.
func SelectByAttribute(records []*Record, field string, value any, acceptAbsent bool) []*Record {
	if len(records) == 0 {
		return nil
	}
	out := make([]*Record, 0, len(records))
	for _, rec := range records {
		got, ok := rec.Attribute(field)
		if !ok {
			if acceptAbsent {
				out = append(out, rec)
			}
			continue
		}
		if attributeEqual(got, value) {
			out = append(out, rec)
		}
	}
	return out
}

func attributeEqual(got, want any) bool {
	switch g := got.(type) {
	case string:
		w, ok := want.(string)
		return ok && strings.EqualFold(g, w)
	case time.Time:
		w, ok := want.(time.Time)
		return ok && g.Equal(w)
	}

	if gf, ok := toFloat(got); ok {
		wf, ok := toFloat(want)
		return ok && gf == wf
	}

	if want == nil || !reflect.TypeOf(want).Comparable() {
		return false
	}
	return got == want
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

// SelectBySector keeps the records that fall in sector.
//
// Point records are tested by containment with the sector's max edges
// excluded. Other records are kept when their bounding rectangle intersects
// the sector, edges included; this is a bounding-box test, not clipping.
// Null records are never selected. An empty input returns nil.
func SelectBySector(records []*Record, sector Rectangle) []*Record {
	if len(records) == 0 {
		return nil
	}
	out := make([]*Record, 0, len(records))
	for _, rec := range records {
		if inSector(rec, sector) {
			out = append(out, rec)
		}
	}
	return out
}

func inSector(rec *Record, sector Rectangle) bool {
	if rec.IsNull() {
		return false
	}
	if x, y, ok := rec.Point(); ok {
		return sector.ContainsPoint(x, y)
	}
	b, ok := rec.Bounds()
	return ok && sector.Intersects(b)
}

// ComputeBounds returns the union of the records' bounding rectangles. A
// Point record contributes the zero-area rectangle at its coordinate. ok is
// false when no record contributes.
func ComputeBounds(records []*Record) (bounds Rectangle, ok bool) {
	for _, rec := range records {
		var r Rectangle
		if x, y, isPoint := rec.Point(); isPoint {
			r = parser.PointRectangle(x, y)
		} else if b, has := rec.Bounds(); has {
			r = b
		} else {
			continue
		}

		if !ok {
			bounds, ok = r, true
			continue
		}
		bounds = bounds.Union(r)
	}
	return bounds, ok
}
