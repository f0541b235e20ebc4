package parser

import (
	"iter"
)

// Point is one stored coordinate. Z is zero for two-dimensional stores.
type Point struct {
	X, Y, Z float64
}

// PointStore is an append-only arena of coordinates shared by every record of a
// file. Values are stored flat, Dims per point.
//
// Parts refer to the store by point offset, never by slice, so growing the
// arena past its reservation does not invalidate views handed out earlier.
type PointStore struct {
	dims   int
	coords []float64
}

// NewPointStore creates an empty store holding 2 (x, y) or 3 (x, y, z) values per point.
func NewPointStore(dims int) *PointStore {
	if dims != 3 {
		dims = 2
	}
	return &PointStore{dims: dims}
}

// Dims returns the number of values per point
func (s *PointStore) Dims() int {
	return s.dims
}

// Len returns the number of stored points
func (s *PointStore) Len() int {
	return len(s.coords) / s.dims
}

// Reserve grows capacity so that n more points can be appended without reallocation.
func (s *PointStore) Reserve(n int) {
	if n <= 0 {
		return
	}
	need := len(s.coords) + n*s.dims
	if need <= cap(s.coords) {
		return
	}
	grown := make([]float64, len(s.coords), need)
	copy(grown, s.coords)
	s.coords = grown
}

// Append copies flat coordinates (Dims values per point) to the end of the
// store and returns a view over them. A trailing partial point is ignored.
func (s *PointStore) Append(coords []float64) PartView {
	count := len(coords) / s.dims
	offset := s.Len()
	s.coords = append(s.coords, coords[:count*s.dims]...)
	return PartView{store: s, Offset: offset, Count: count}
}

// grow extends the store by n zeroed points and returns the first new offset
func (s *PointStore) grow(n int) int {
	offset := s.Len()
	s.coords = append(s.coords, make([]float64, n*s.dims)...)
	return offset
}

func (s *PointStore) setXY(i int, x, y float64) {
	s.coords[i*s.dims] = x
	s.coords[i*s.dims+1] = y
}

func (s *PointStore) setZ(i int, z float64) {
	if s.dims == 3 {
		s.coords[i*s.dims+2] = z
	}
}

func (s *PointStore) at(i int) Point {
	p := Point{X: s.coords[i*s.dims], Y: s.coords[i*s.dims+1]}
	if s.dims == 3 {
		p.Z = s.coords[i*s.dims+2]
	}
	return p
}

// View returns the view of count points starting at offset.
func (s *PointStore) View(offset, count int) (PartView, error) {
	if offset < 0 || count < 0 || offset+count > s.Len() {
		return PartView{}, &ErrIndexOutOfRange{What: "view end", Index: offset + count, Len: s.Len() + 1}
	}
	return PartView{store: s, Offset: offset, Count: count}, nil
}

// Get iterates the points of v without copying
func (s *PointStore) Get(v PartView) iter.Seq2[int, Point] {
	return func(yield func(int, Point) bool) {
		for i := 0; i < v.Count; i++ {
			if !yield(i, s.at(v.Offset+i)) {
				return
			}
		}
	}
}

// PartView is a non-owning (offset, count) window into a PointStore.
// Two views are equal when they share store, offset and count.
type PartView struct {
	store  *PointStore
	Offset int
	Count  int
}

// Len returns the number of points in the view
func (v PartView) Len() int {
	return v.Count
}

// Store returns the backing store
func (v PartView) Store() *PointStore {
	return v.store
}

// Point returns the i-th point of the view.
func (v PartView) Point(i int) (Point, error) {
	if i < 0 || i >= v.Count {
		return Point{}, &ErrIndexOutOfRange{What: "point", Index: i, Len: v.Count}
	}
	return v.store.at(v.Offset + i), nil
}

// Points iterates the view's points in order
func (v PartView) Points() iter.Seq2[int, Point] {
	if v.store == nil {
		return func(func(int, Point) bool) {}
	}
	return v.store.Get(v)
}
