// Package shptest assembles geometry, index and attribute file images for tests.
package shptest

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
)

// Shape type codes, mirrored here so the package has no dependency on the decoder.
const (
	Null        int32 = 0
	Point       int32 = 1
	Polyline    int32 = 3
	Polygon     int32 = 5
	MultiPoint  int32 = 8
	PointZ      int32 = 11
	PolylineZ   int32 = 13
	PolygonZ    int32 = 15
	MultiPointZ int32 = 18
	PointM      int32 = 21
	PolylineM   int32 = 23
	PolygonM    int32 = 25
	MultiPointM int32 = 28
)

func kind(code int32) int32 {
	switch code {
	case Point, PointZ, PointM:
		return Point
	case MultiPoint, MultiPointZ, MultiPointM:
		return MultiPoint
	case Polyline, PolylineZ, PolylineM:
		return Polyline
	case Polygon, PolygonZ, PolygonM:
		return Polygon
	}
	return Null
}

func hasZ(code int32) bool {
	return code == PointZ || code == PolylineZ || code == PolygonZ || code == MultiPointZ
}

// Record describes one geometry record.
type Record struct {
	// Type overrides the file type for this record (use Null for empty records).
	// Zero value means "same as the file".
	Type   int32
	IsNull bool

	// Number overrides the record number; zero means 1-based position.
	Number int

	// Points are (x, y) pairs, or (x, y, z) for Z types
	Points [][]float64

	// Parts holds the start index of each part for Polyline/Polygon.
	// Nil means a single part.
	Parts []int

	// M holds measures. Nil omits the measure block.
	M []float64

	// MTail, if non-zero, truncates the measure block to that many bytes.
	MTail int

	// Bounds overrides the computed record bounds
	Bounds *[4]float64
}

// File describes a geometry file
type File struct {
	Type    int32
	Records []Record

	// Bounds overrides the file bounds computed from the records
	Bounds *[4]float64
}

// Shp returns the .shp image
func (f *File) Shp() []byte {
	var body bytes.Buffer
	for i, r := range f.Records {
		content := f.content(r)
		writeBE32(&body, int32(f.number(i, r)))
		writeBE32(&body, int32(len(content)/2))
		body.Write(content)
	}

	var out bytes.Buffer
	f.header(&out, HeaderLen+body.Len())
	out.Write(body.Bytes())
	return out.Bytes()
}

// Shx returns the .shx image matching Shp
func (f *File) Shx() []byte {
	var entries bytes.Buffer
	offset := HeaderLen
	for _, r := range f.Records {
		content := f.content(r)
		writeBE32(&entries, int32(offset/2))
		writeBE32(&entries, int32(len(content)/2))
		offset += 8 + len(content)
	}

	var out bytes.Buffer
	f.header(&out, HeaderLen+entries.Len())
	out.Write(entries.Bytes())
	return out.Bytes()
}

// HeaderLen is the fixed geometry/index header size
const HeaderLen = 100

func (f *File) number(i int, r Record) int {
	if r.Number != 0 {
		return r.Number
	}
	return i + 1
}

func (f *File) header(w *bytes.Buffer, length int) {
	writeBE32(w, 0x270A)
	for i := 0; i < 5; i++ {
		writeBE32(w, 0)
	}
	writeBE32(w, int32(length/2))
	writeLE32(w, 1000)
	writeLE32(w, f.Type)

	b := f.bounds()
	for _, v := range b {
		writeF64(w, v)
	}
	for i := 0; i < 4; i++ {
		writeF64(w, 0)
	}
}

func (f *File) bounds() [4]float64 {
	if f.Bounds != nil {
		return *f.Bounds
	}
	var (
		b     [4]float64
		found bool
	)
	for _, r := range f.Records {
		for _, p := range r.Points {
			if !found {
				b = [4]float64{p[0], p[1], p[0], p[1]}
				found = true
				continue
			}
			b[0] = math.Min(b[0], p[0])
			b[1] = math.Min(b[1], p[1])
			b[2] = math.Max(b[2], p[0])
			b[3] = math.Max(b[3], p[1])
		}
	}
	return b
}

func recordBounds(r Record) [4]float64 {
	if r.Bounds != nil {
		return *r.Bounds
	}
	f := File{Records: []Record{r}}
	return f.bounds()
}

func (f *File) content(r Record) []byte {
	var w bytes.Buffer
	code := f.Type
	if r.Type != 0 {
		code = r.Type
	}
	if r.IsNull {
		code = Null
	}
	writeLE32(&w, code)

	switch kind(code) {
	case Null:
		return w.Bytes()

	case Point:
		p := r.Points[0]
		writeF64(&w, p[0])
		writeF64(&w, p[1])
		if hasZ(code) {
			writeF64(&w, z(p))
		}
		if len(r.M) > 0 {
			writeF64(&w, r.M[0])
		}
		return w.Bytes()

	case MultiPoint:
		writeBounds(&w, recordBounds(r))
		writeLE32(&w, int32(len(r.Points)))

	case Polyline, Polygon:
		writeBounds(&w, recordBounds(r))
		parts := r.Parts
		if parts == nil {
			parts = []int{0}
		}
		writeLE32(&w, int32(len(parts)))
		writeLE32(&w, int32(len(r.Points)))
		for _, s := range parts {
			writeLE32(&w, int32(s))
		}
	}

	for _, p := range r.Points {
		writeF64(&w, p[0])
		writeF64(&w, p[1])
	}
	if hasZ(code) {
		zs := make([]float64, len(r.Points))
		for i, p := range r.Points {
			zs[i] = z(p)
		}
		writeRangeBlock(&w, zs)
	}
	if r.M != nil {
		var m bytes.Buffer
		writeRangeBlock(&m, r.M)
		tail := m.Bytes()
		if r.MTail > 0 && r.MTail < len(tail) {
			tail = tail[:r.MTail]
		}
		w.Write(tail)
	}
	return w.Bytes()
}

func z(p []float64) float64 {
	if len(p) > 2 {
		return p[2]
	}
	return 0
}

func writeRangeBlock(w *bytes.Buffer, values []float64) {
	lo, hi := 0.0, 0.0
	for i, v := range values {
		if i == 0 || v < lo {
			lo = v
		}
		if i == 0 || v > hi {
			hi = v
		}
	}
	writeF64(w, lo)
	writeF64(w, hi)
	for _, v := range values {
		writeF64(w, v)
	}
}

func writeBounds(w *bytes.Buffer, b [4]float64) {
	for _, v := range b {
		writeF64(w, v)
	}
}

func writeBE32(w *bytes.Buffer, v int32) {
	_ = binary.Write(w, binary.BigEndian, v)
}

func writeLE32(w *bytes.Buffer, v int32) {
	_ = binary.Write(w, binary.LittleEndian, v)
}

func writeF64(w *bytes.Buffer, v float64) {
	_ = binary.Write(w, binary.LittleEndian, v)
}

// Field describes one dBase column
type Field struct {
	Name     string
	Type     byte
	Length   int
	Decimals int
}

// Table describes a dBase file. Rows hold raw cell text, padded on output.
type Table struct {
	FileCode       byte // default 0x03
	LanguageDriver byte
	Year           int // years since 1900
	Month, Day     int
	Fields         []Field
	Rows           [][]string
	Deleted        map[int]bool // 0-based row indices
}

// Dbf returns the .dbf image
func (t *Table) Dbf() []byte {
	var w bytes.Buffer
	code := t.FileCode
	if code == 0 {
		code = 0x03
	}
	recordLength := 1
	for _, f := range t.Fields {
		recordLength += f.Length
	}
	headerLength := 32 + 32*len(t.Fields) + 1

	w.WriteByte(code)
	w.WriteByte(byte(t.Year))
	w.WriteByte(byte(t.Month))
	w.WriteByte(byte(t.Day))
	_ = binary.Write(&w, binary.LittleEndian, uint32(len(t.Rows)))
	_ = binary.Write(&w, binary.LittleEndian, int16(headerLength))
	_ = binary.Write(&w, binary.LittleEndian, int16(recordLength))
	reserved := make([]byte, 20)
	reserved[17] = t.LanguageDriver // offset 29
	w.Write(reserved)

	for _, f := range t.Fields {
		name := make([]byte, 11)
		copy(name, f.Name)
		w.Write(name)
		w.WriteByte(f.Type)
		w.Write(make([]byte, 4))
		w.WriteByte(byte(f.Length))
		w.WriteByte(byte(f.Decimals))
		w.Write(make([]byte, 14))
	}
	w.WriteByte(0x0D)

	for i, row := range t.Rows {
		if t.Deleted[i] {
			w.WriteByte(0x2A)
		} else {
			w.WriteByte(' ')
		}
		for j, f := range t.Fields {
			cell := ""
			if j < len(row) {
				cell = row[j]
			}
			w.WriteString(fmt.Sprintf("%-*.*s", f.Length, f.Length, cell))
		}
	}
	return w.Bytes()
}
