package parser

import (
	"bytes"
	"math"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beetlebugorg/shapefile/internal/shptest"
)

func TestNormalizeLongitude(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0, 0},
		{180, 180},
		{-180, -180},
		{190, -170},
		{-190, 170},
		{540, 180},
		{-541, 179},
		{725, 5},
	}

	for _, tt := range tests {
		assert.InDelta(t, tt.want, NormalizeLongitude(tt.in), 1e-9, "NormalizeLongitude(%v)", tt.in)
	}

	assert.True(t, math.IsNaN(NormalizeLongitude(math.NaN())))
	assert.True(t, math.IsInf(NormalizeLongitude(math.Inf(1)), 1))
}

func TestNormalizeLongitudeProperties(t *testing.T) {
	properties := gopter.NewProperties(gopter.DefaultTestParameters())

	properties.Property("result is within [-180, 180]", prop.ForAll(
		func(x float64) bool {
			n := NormalizeLongitude(x)
			return n >= -180 && n <= 180
		},
		gen.Float64Range(-1e5, 1e5),
	))

	properties.Property("idempotent", prop.ForAll(
		func(x float64) bool {
			n := NormalizeLongitude(x)
			return NormalizeLongitude(n) == n
		},
		gen.Float64Range(-1e5, 1e5),
	))

	properties.Property("shifts by whole turns", prop.ForAll(
		func(x float64) bool {
			turns := (x - NormalizeLongitude(x)) / 360
			return math.Abs(turns-math.Round(turns)) < 1e-6
		},
		gen.Float64Range(-1e5, 1e5),
	))

	properties.TestingRun(t)
}

func TestNormalizeRectangle(t *testing.T) {
	tests := []struct {
		name string
		in   Rectangle
		want Rectangle
	}{
		{
			name: "in range",
			in:   Rectangle{MinX: -10, MinY: 0, MaxX: 10, MaxY: 5},
			want: Rectangle{MinX: -10, MinY: 0, MaxX: 10, MaxY: 5},
		},
		{
			name: "shifted east",
			in:   Rectangle{MinX: 190, MinY: 0, MaxX: 200, MaxY: 5},
			want: Rectangle{MinX: -170, MinY: 0, MaxX: -160, MaxY: 5},
		},
		{
			name: "full turn",
			in:   Rectangle{MinX: -190, MinY: -90, MaxX: 170, MaxY: 90},
			want: Rectangle{MinX: -180, MinY: -90, MaxX: 180, MaxY: 90},
		},
		{
			name: "straddles after wrapping",
			in:   Rectangle{MinX: 170, MinY: 0, MaxX: 190, MaxY: 5},
			want: Rectangle{MinX: -180, MinY: 0, MaxX: 180, MaxY: 5},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeRectangle(tt.in))
		})
	}
}

func TestNormalizeFileAcrossAntimeridian(t *testing.T) {
	file := &shptest.File{
		Type:   shptest.Polyline,
		Bounds: &[4]float64{-190, -10, 170, 10},
		Records: []shptest.Record{
			{Points: [][]float64{{-190, 0}, {-185, 5}}},
			{Points: [][]float64{{100, -10}, {170, 10}}},
		},
	}
	f := readShp(t, file, nil, DefaultParseOptions())

	assert.True(t, f.Normalized)
	assert.GreaterOrEqual(t, f.Bounds.MinX, -180.0)
	assert.LessOrEqual(t, f.Bounds.MaxX, 180.0)
	assert.Equal(t, -10.0, f.Bounds.MinY)

	first := f.Records[0]
	p, err := first.Parts[0].Point(0)
	require.NoError(t, err)
	assert.InDelta(t, 170, p.X, 1e-9)
	assert.Equal(t, &Rectangle{MinX: 170, MinY: 0, MaxX: 175, MaxY: 5}, first.Bounds)

	second := f.Records[1]
	assert.Equal(t, &Rectangle{MinX: 100, MinY: -10, MaxX: 170, MaxY: 10}, second.Bounds)

	assert.False(t, Normalize(f), "second pass must be a no-op")
}

func TestNormalizeInRangeIsNoop(t *testing.T) {
	file := &shptest.File{
		Type:    shptest.Point,
		Records: []shptest.Record{{Points: [][]float64{{-71, 42}}}},
	}
	f := readShp(t, file, nil, DefaultParseOptions())
	assert.False(t, f.Normalized)

	disabled := &shptest.File{
		Type:    shptest.Point,
		Records: []shptest.Record{{Points: [][]float64{{200, 42}}}},
	}
	opts := DefaultParseOptions()
	opts.Normalize = false
	f = readShp(t, disabled, nil, opts)
	assert.False(t, f.Normalized)
	p, _ := f.Records[0].Parts[0].Point(0)
	assert.Equal(t, 200.0, p.X)
}

func TestNormalizeLazyBoundsStable(t *testing.T) {
	file := &shptest.File{
		Type:    shptest.MultiPoint,
		Records: []shptest.Record{{Points: [][]float64{{181, 1}, {182, 2}}}},
	}
	shp := file.Shp()

	f, err := Open(RandomAccessSources{Shape: bytes.NewReader(shp), ShapeSize: int64(len(shp))}, DefaultParseOptions())
	require.NoError(t, err)
	before := f.Bounds
	assert.False(t, f.Normalized)

	require.NoError(t, f.Load())
	assert.Equal(t, before, f.Bounds)
	assert.True(t, f.Normalized)
	assert.Equal(t, &Rectangle{MinX: -179, MinY: 1, MaxX: -178, MaxY: 2}, f.Records[0].Bounds)
}
