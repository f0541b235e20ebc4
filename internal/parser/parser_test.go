package parser

import (
	"bytes"
	"errors"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beetlebugorg/shapefile/internal/shptest"
)

func readShp(t *testing.T, file *shptest.File, table *shptest.Table, opts ParseOptions) *File {
	t.Helper()
	src := Sources{Shape: bytes.NewReader(file.Shp())}
	if table != nil {
		src.Attributes = bytes.NewReader(table.Dbf())
	}
	f, err := Read(src, opts)
	require.NoError(t, err)
	return f
}

func square(x, y, size float64) [][]float64 {
	return [][]float64{{x, y}, {x, y + size}, {x + size, y + size}, {x, y}}
}

func TestReadSinglePoint(t *testing.T) {
	file := &shptest.File{
		Type:    shptest.Point,
		Records: []shptest.Record{{Points: [][]float64{{10.0, 20.0}}}},
	}
	f := readShp(t, file, nil, DefaultParseOptions())

	require.Len(t, f.Records, 1)
	rec := f.Records[0]
	assert.Equal(t, 1, rec.Number)
	assert.Equal(t, ShapePoint, rec.Type)
	assert.Nil(t, rec.Bounds)
	require.Len(t, rec.Parts, 1)

	p, err := rec.Parts[0].Point(0)
	require.NoError(t, err)
	assert.Equal(t, 10.0, p.X)
	assert.Equal(t, 20.0, p.Y)

	data, ok := rec.Shape.(*PointData)
	require.True(t, ok)
	assert.Nil(t, data.Z)
	assert.Nil(t, data.M)
}

func TestReadPolygonParts(t *testing.T) {
	ring1 := [][]float64{{0, 0}, {0, 10}, {10, 10}, {0, 0}}
	ring2 := [][]float64{{2, 2}, {4, 2}, {2, 2}}
	file := &shptest.File{
		Type: shptest.Polygon,
		Records: []shptest.Record{{
			Points: append(append([][]float64{}, ring1...), ring2...),
			Parts:  []int{0, 4},
		}},
	}
	f := readShp(t, file, nil, DefaultParseOptions())

	require.Len(t, f.Records, 1)
	rec := f.Records[0]
	require.Len(t, rec.Parts, 2)
	assert.Equal(t, 4, rec.Parts[0].Len())
	assert.Equal(t, 3, rec.Parts[1].Len())
	assert.Equal(t, 7, rec.PointCount)
	assert.Equal(t, &Rectangle{MinX: 0, MinY: 0, MaxX: 10, MaxY: 10}, rec.Bounds)

	poly, ok := rec.Shape.(*PolyData)
	require.True(t, ok)
	assert.True(t, poly.Ring)

	p, err := rec.Parts[1].Point(1)
	require.NoError(t, err)
	assert.Equal(t, Point{X: 4, Y: 2}, p)
}

func TestReadPolylineUsesSameDecoder(t *testing.T) {
	file := &shptest.File{
		Type: shptest.Polyline,
		Records: []shptest.Record{{
			Points: [][]float64{{0, 0}, {1, 1}, {2, 0}, {5, 5}, {6, 6}},
			Parts:  []int{0, 3},
		}},
	}
	f := readShp(t, file, nil, DefaultParseOptions())

	rec := f.Records[0]
	poly, ok := rec.Shape.(*PolyData)
	require.True(t, ok)
	assert.False(t, poly.Ring)
	assert.Equal(t, []int{3, 2}, []int{rec.Parts[0].Len(), rec.Parts[1].Len()})
}

func TestReadMultiPointShortMeasureBlock(t *testing.T) {
	points := [][]float64{{1, 1}, {2, 2}, {3, 3}}
	file := &shptest.File{
		Type: shptest.MultiPointM,
		Records: []shptest.Record{
			{Points: points, M: []float64{7, 8, 9}, MTail: 16 + 2*8},
			{Points: points, M: []float64{7, 8, 9}},
			{Points: points},
		},
	}
	f := readShp(t, file, nil, DefaultParseOptions())
	require.Len(t, f.Records, 3)

	short := f.Records[0].Channels()
	require.NotNil(t, short)
	assert.Nil(t, short.MValues)
	assert.Nil(t, short.MRange)

	full := f.Records[1].Channels()
	assert.Equal(t, []float64{7, 8, 9}, full.MValues)
	assert.Equal(t, &[2]float64{7, 9}, full.MRange)

	assert.Nil(t, f.Records[2].Channels().MValues)
}

func TestReadZChannels(t *testing.T) {
	file := &shptest.File{
		Type: shptest.PolylineZ,
		Records: []shptest.Record{{
			Points: [][]float64{{0, 0, 5}, {1, 1, 6}, {2, 2, 7}},
			M:      []float64{0, 1, 2},
		}},
	}
	f := readShp(t, file, nil, DefaultParseOptions())

	assert.Equal(t, 3, f.Store.Dims())
	rec := f.Records[0]
	assert.Equal(t, []float64{5, 6, 7}, rec.ZValues())
	assert.Equal(t, &[2]float64{5, 7}, rec.Channels().ZRange)
	assert.Equal(t, []float64{0, 1, 2}, rec.Channels().MValues)

	pointZ := &shptest.File{
		Type: shptest.PointZ,
		Records: []shptest.Record{
			{Points: [][]float64{{1, 2, 3}}, M: []float64{4}},
			{Points: [][]float64{{1, 2, 3}}},
		},
	}
	f = readShp(t, pointZ, nil, DefaultParseOptions())
	withM := f.Records[0].Shape.(*PointData)
	require.NotNil(t, withM.Z)
	require.NotNil(t, withM.M)
	assert.Equal(t, 3.0, *withM.Z)
	assert.Equal(t, 4.0, *withM.M)
	assert.Nil(t, f.Records[1].Shape.(*PointData).M)
}

func TestReadNullRecords(t *testing.T) {
	file := &shptest.File{
		Type: shptest.Polyline,
		Records: []shptest.Record{
			{IsNull: true},
			{Points: [][]float64{{0, 0}, {1, 1}}},
		},
	}
	f := readShp(t, file, nil, DefaultParseOptions())

	require.Len(t, f.Records, 2)
	null := f.Records[0]
	assert.True(t, null.IsNull())
	assert.Equal(t, ShapeNull, null.Type)
	assert.Empty(t, null.Parts)
	assert.Zero(t, null.PointCount)
	assert.Equal(t, 1, f.Records[1].FirstPart)
}

func TestReadErrors(t *testing.T) {
	t.Run("record type mismatch", func(t *testing.T) {
		file := &shptest.File{
			Type:    shptest.Polygon,
			Records: []shptest.Record{{Type: shptest.Point, Points: [][]float64{{1, 1}}}},
		}
		_, err := Read(Sources{Shape: bytes.NewReader(file.Shp())}, DefaultParseOptions())

		var se *StageError
		require.True(t, errors.As(err, &se), "got %v", err)
		assert.Equal(t, StageRecords, se.Stage)
		assert.Equal(t, 1, se.RecordNumber)

		var e *ErrUnsupportedShapeType
		require.True(t, errors.As(err, &e))
		assert.True(t, e.Mismatch)
	})

	t.Run("truncated record", func(t *testing.T) {
		file := &shptest.File{
			Type: shptest.Polyline,
			Records: []shptest.Record{
				{Points: [][]float64{{0, 0}, {1, 1}}},
				{Points: [][]float64{{0, 0}, {1, 1}, {2, 2}}},
			},
		}
		data := file.Shp()
		_, err := Read(Sources{Shape: bytes.NewReader(data[:len(data)-10])}, DefaultParseOptions())

		var e *ErrTruncated
		require.True(t, errors.As(err, &e), "got %v", err)
		assert.Equal(t, StageRecords, e.Stage)
		assert.Contains(t, err.Error(), "record 2")
	})

	t.Run("corrupt part starts", func(t *testing.T) {
		file := &shptest.File{
			Type:    shptest.Polygon,
			Records: []shptest.Record{{Points: square(0, 0, 1), Parts: []int{0, 9}}},
		}
		_, err := Read(Sources{Shape: bytes.NewReader(file.Shp())}, DefaultParseOptions())
		var e *ErrCorruptRecord
		require.True(t, errors.As(err, &e), "got %v", err)
	})

	t.Run("bad header", func(t *testing.T) {
		_, err := Read(Sources{Shape: bytes.NewReader(make([]byte, 100))}, DefaultParseOptions())
		var se *StageError
		require.True(t, errors.As(err, &se))
		assert.Equal(t, StageHeader, se.Stage)
	})
}

func TestAttributeJoin(t *testing.T) {
	file := &shptest.File{
		Type: shptest.Point,
		Records: []shptest.Record{
			{Points: [][]float64{{1, 1}}},
			{Points: [][]float64{{2, 2}}},
			{Points: [][]float64{{3, 3}}},
		},
	}
	table := &shptest.Table{
		Fields: []shptest.Field{{Name: "NAME", Type: 'C', Length: 8}},
		Rows:   [][]string{{"one"}, {"two"}},
	}
	f := readShp(t, file, table, DefaultParseOptions())

	require.Len(t, f.Records, 3)
	for _, rec := range f.Records[:2] {
		require.NotNil(t, rec.Attributes)
		assert.Equal(t, rec.Number, rec.Attributes.RecordNumber)
	}
	assert.Equal(t, "two", f.Records[1].Attributes.Values["NAME"])

	assert.Nil(t, f.Records[2].Attributes)
	require.Len(t, f.Warnings, 1)
	var w *ErrRecordNumberOutOfRange
	require.True(t, errors.As(f.Warnings[0], &w))
	assert.Equal(t, 3, w.RecordNumber)
	assert.Equal(t, 2, w.Rows)
}

func TestAcceptRecord(t *testing.T) {
	file := &shptest.File{
		Type: shptest.Point,
		Records: []shptest.Record{
			{Points: [][]float64{{1, 1}}},
			{Points: [][]float64{{50, 50}}},
		},
	}
	opts := DefaultParseOptions()
	opts.AcceptRecord = func(r *Record) bool {
		p, _ := r.Parts[0].Point(0)
		return p.X < 10
	}
	f := readShp(t, file, nil, opts)

	require.Len(t, f.Records, 1)
	assert.Equal(t, 1, f.Records[0].Number)
}

type offsetProjection struct{ dx, dy float64 }

func (p offsetProjection) Geographic(x, y float64) (float64, float64) {
	return x + p.dx, y + p.dy
}

func TestProjectionInline(t *testing.T) {
	file := &shptest.File{
		Type:    shptest.Polyline,
		Records: []shptest.Record{{Points: [][]float64{{0, 0}, {2, 4}}}},
	}
	opts := DefaultParseOptions()
	opts.Projection = offsetProjection{dx: 100, dy: -10}
	f := readShp(t, file, nil, opts)

	assert.Equal(t, Rectangle{MinX: 100, MinY: -10, MaxX: 102, MaxY: -6}, f.Bounds)
	rec := f.Records[0]
	assert.Equal(t, &Rectangle{MinX: 100, MinY: -10, MaxX: 102, MaxY: -6}, rec.Bounds)
	p, _ := rec.Parts[0].Point(1)
	assert.Equal(t, Point{X: 102, Y: -6}, p)
}

func TestOpenLazyMatchesRead(t *testing.T) {
	file := &shptest.File{
		Type: shptest.Polygon,
		Records: []shptest.Record{
			{Points: square(0, 0, 1)},
			{IsNull: true},
			{Points: append(square(5, 5, 2), square(6, 6, 0.5)...), Parts: []int{0, 4}},
		},
	}
	table := &shptest.Table{
		Fields: []shptest.Field{{Name: "ID", Type: 'N', Length: 4}},
		Rows:   [][]string{{"1"}, {"2"}, {"3"}},
	}
	shp, shx, dbf := file.Shp(), file.Shx(), table.Dbf()

	eager := readShp(t, file, table, DefaultParseOptions())

	for _, withIndex := range []bool{true, false} {
		src := RandomAccessSources{
			Shape: bytes.NewReader(shp), ShapeSize: int64(len(shp)),
			Attributes: bytes.NewReader(dbf), AttributesSize: int64(len(dbf)),
		}
		if withIndex {
			src.Index = bytes.NewReader(shx)
			src.IndexSize = int64(len(shx))
		}

		lazy, err := Open(src, DefaultParseOptions())
		require.NoError(t, err)
		assert.False(t, lazy.Loaded())
		assert.Empty(t, lazy.Records)

		require.NoError(t, lazy.Load())
		require.NoError(t, lazy.Load())
		assert.True(t, lazy.Loaded())

		require.Len(t, lazy.Records, len(eager.Records))
		for i, rec := range lazy.Records {
			want := eager.Records[i]
			assert.Equal(t, want.Number, rec.Number)
			assert.Equal(t, want.Type, rec.Type)
			assert.Equal(t, want.PointCount, rec.PointCount)
			assert.Equal(t, want.Bounds, rec.Bounds)
			assert.Equal(t, want.Attributes, rec.Attributes)
			assert.Equal(t, len(want.Parts), len(rec.Parts))
		}
	}
}

func TestPartCountsSumProperty(t *testing.T) {
	properties := gopter.NewProperties(gopter.DefaultTestParameters())

	properties.Property("part lengths sum to point count", prop.ForAll(
		func(sizes []int) bool {
			var (
				points [][]float64
				parts  []int
			)
			for _, size := range sizes {
				parts = append(parts, len(points))
				for i := 0; i < size; i++ {
					points = append(points, []float64{float64(i), float64(size)})
				}
			}
			if len(parts) == 0 {
				return true
			}
			file := &shptest.File{
				Type:    shptest.Polyline,
				Records: []shptest.Record{{Points: points, Parts: parts}},
			}
			f, err := Read(Sources{Shape: bytes.NewReader(file.Shp())}, DefaultParseOptions())
			if err != nil {
				return false
			}
			rec := f.Records[0]
			sum := 0
			for _, part := range rec.Parts {
				sum += part.Len()
			}
			return sum == rec.PointCount && len(rec.Parts) == len(sizes)
		},
		gen.SliceOf(gen.IntRange(1, 20)),
	))

	properties.TestingRun(t)
}

func BenchmarkReadPolygons(b *testing.B) {
	records := make([]shptest.Record, 500)
	for i := range records {
		x := float64(i % 100)
		records[i] = shptest.Record{Points: square(x, x, 1)}
	}
	data := (&shptest.File{Type: shptest.Polygon, Records: records}).Shp()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Read(Sources{Shape: bytes.NewReader(data)}, DefaultParseOptions()); err != nil {
			b.Fatal(err)
		}
	}
}
