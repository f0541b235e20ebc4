package parser

import (
	"math"
)

// NormalizeLongitude wraps x into [-180, 180] by whole turns of 360 degrees.
// Values already in range, NaN and infinities are returned unchanged.
func NormalizeLongitude(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return x
	}
	switch {
	case x > 180:
		x -= 360 * math.Ceil((x-180)/360)
	case x < -180:
		x += 360 * math.Ceil((-180-x)/360)
	}
	return x
}

// NormalizeRectangle maps r into [-180, 180] longitude. A rectangle that
// still spans the antimeridian after wrapping, or is 360 degrees wide or
// more, becomes the full longitude range.
func NormalizeRectangle(r Rectangle) Rectangle {
	if !r.CrossesAntimeridian() {
		return r
	}
	if r.Width() >= 360 {
		return Rectangle{MinX: -180, MinY: r.MinY, MaxX: 180, MaxY: r.MaxY}
	}
	minX, maxX := NormalizeLongitude(r.MinX), NormalizeLongitude(r.MaxX)
	if minX > maxX {
		return Rectangle{MinX: -180, MinY: r.MinY, MaxX: 180, MaxY: r.MaxY}
	}
	return Rectangle{MinX: minX, MinY: r.MinY, MaxX: maxX, MaxY: r.MaxY}
}

// Normalize rewraps every stored longitude and recomputes record bounds when
// the file bounds crossed the antimeridian at construction. It reports
// whether any work was done; later calls are no-ops.
func Normalize(f *File) bool {
	if !f.pendingNormalize {
		return false
	}
	f.pendingNormalize = false

	s := f.Store
	for i := 0; i < len(s.coords); i += s.dims {
		s.coords[i] = NormalizeLongitude(s.coords[i])
	}

	for _, rec := range f.Records {
		if rec.Bounds == nil {
			continue
		}
		if b, ok := rec.computeBounds(); ok {
			*rec.Bounds = b
		} else {
			*rec.Bounds = NormalizeRectangle(*rec.Bounds)
		}
	}

	f.Normalized = true
	return true
}
