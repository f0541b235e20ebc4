package parser

import (
	"math"
	"testing"
)

func TestRectangleIntersects(t *testing.T) {
	base := Rectangle{MinX: 0, MinY: 0, MaxX: 10, MaxY: 10}

	tests := []struct {
		name  string
		other Rectangle
		want  bool
	}{
		{"overlap", Rectangle{MinX: 5, MinY: 5, MaxX: 15, MaxY: 15}, true},
		{"inside", Rectangle{MinX: 2, MinY: 2, MaxX: 3, MaxY: 3}, true},
		{"touching edge", Rectangle{MinX: 10, MinY: 0, MaxX: 20, MaxY: 10}, true},
		{"touching corner", Rectangle{MinX: 10, MinY: 10, MaxX: 11, MaxY: 11}, true},
		{"disjoint east", Rectangle{MinX: 11, MinY: 0, MaxX: 20, MaxY: 10}, false},
		{"disjoint south", Rectangle{MinX: 0, MinY: -5, MaxX: 10, MaxY: -1}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := base.Intersects(tt.other); got != tt.want {
				t.Errorf("Intersects = %v, want %v", got, tt.want)
			}
			if got := tt.other.Intersects(base); got != tt.want {
				t.Errorf("Intersects is not symmetric")
			}
		})
	}
}

func TestRectangleContainsPoint(t *testing.T) {
	r := Rectangle{MinX: 0, MinY: 0, MaxX: 10, MaxY: 10}

	tests := []struct {
		x, y float64
		want bool
	}{
		{5, 5, true},
		{0, 0, true},
		{10, 5, false},
		{5, 10, false},
		{-0.1, 5, false},
	}
	for _, tt := range tests {
		if got := r.ContainsPoint(tt.x, tt.y); got != tt.want {
			t.Errorf("ContainsPoint(%v, %v) = %v, want %v", tt.x, tt.y, got, tt.want)
		}
	}
}

func TestRectangleUnionExtend(t *testing.T) {
	a := Rectangle{MinX: 0, MinY: 0, MaxX: 1, MaxY: 1}
	b := Rectangle{MinX: -2, MinY: 3, MaxX: 0.5, MaxY: 4}

	want := Rectangle{MinX: -2, MinY: 0, MaxX: 1, MaxY: 4}
	if got := a.Union(b); got != want {
		t.Errorf("Union = %+v, want %+v", got, want)
	}

	got := PointRectangle(1, 1).Extend(-1, 3).Extend(0, 0)
	want = Rectangle{MinX: -1, MinY: 0, MaxX: 1, MaxY: 3}
	if got != want {
		t.Errorf("Extend = %+v, want %+v", got, want)
	}
}

func TestRectangleIsEmpty(t *testing.T) {
	if PointRectangle(1, 1).IsEmpty() {
		t.Error("Point rectangle must not be empty")
	}
	if !(Rectangle{MinX: 1, MaxX: 0}).IsEmpty() {
		t.Error("Inverted rectangle must be empty")
	}
	if !(Rectangle{MinX: math.NaN()}).IsEmpty() {
		t.Error("NaN rectangle must be empty")
	}
}

func TestShapeTypeFromCode(t *testing.T) {
	for _, code := range []int32{0, 1, 3, 5, 8, 11, 13, 15, 18, 21, 23, 25, 28} {
		st, err := ShapeTypeFromCode(code)
		if err != nil {
			t.Errorf("Code %d: unexpected error %v", code, err)
			continue
		}
		if int32(st) != code {
			t.Errorf("Code %d decoded as %d", code, st)
		}
	}

	for _, code := range []int32{2, 31, -1, 99} {
		if _, err := ShapeTypeFromCode(code); err == nil {
			t.Errorf("Code %d: expected error", code)
		}
	}
}

func TestProjectRectangle(t *testing.T) {
	swap := ProjectionFunc(func(x, y float64) (float64, float64) { return y, -x })

	h := Header{Bounds: Rectangle{MinX: 1, MinY: 2, MaxX: 3, MaxY: 5}}
	ProjectHeader(&h, swap)

	want := Rectangle{MinX: 2, MinY: -3, MaxX: 5, MaxY: -1}
	if h.Bounds != want {
		t.Errorf("Projected bounds = %+v, want %+v", h.Bounds, want)
	}

	unchanged := Header{Bounds: want}
	ProjectHeader(&unchanged, nil)
	if unchanged.Bounds != want {
		t.Error("Nil projection must leave bounds unchanged")
	}
}
