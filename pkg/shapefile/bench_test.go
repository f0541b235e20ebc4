package shapefile

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/beetlebugorg/shapefile/internal/shptest"
)

// Viewports over grids of small squares west of Boston.
var (
	smallViewport = Rectangle{MinX: -71.1, MinY: 42.0, MaxX: -71.0, MaxY: 42.1}
	largeViewport = Rectangle{MinX: -72.0, MinY: 42.0, MaxX: -71.0, MaxY: 43.0}
)

func gridRecords(b *testing.B, n int, size float64) []*Record {
	b.Helper()
	file := &shptest.File{Type: shptest.Polygon}
	for i := 0; i < n; i++ {
		x := -72.0 + float64(i%100)*size
		y := 42.0 + float64(i/100)*size
		file.Records = append(file.Records, squareRecord(x, y, size))
	}
	sf, err := Read(Sources{Shape: bytes.NewReader(file.Shp())}, DefaultParseOptions())
	require.NoError(b, err)
	records, err := sf.Records()
	require.NoError(b, err)
	return records
}

func BenchmarkSelectBySector(b *testing.B) {
	records := gridRecords(b, 10000, 0.01)

	for _, bm := range []struct {
		name     string
		viewport Rectangle
	}{
		{"small", smallViewport},
		{"large", largeViewport},
	} {
		b.Run(bm.name, func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				_ = SelectBySector(records, bm.viewport)
			}
		})
	}
}

func BenchmarkLibraryQuery(b *testing.B) {
	fs := afero.NewMemMapFs()
	for i := 0; i < 1000; i++ {
		x := -72.0 + float64(i%40)*0.05
		y := 42.0 + float64(i/40)*0.05
		file := &shptest.File{Type: shptest.Polygon, Records: []shptest.Record{squareRecord(x, y, 0.05)}}
		writeShapefile(b, fs, fmt.Sprintf("grid/%04d", i), file, nil)
	}
	lib, err := NewLibrary(context.Background(), fs, "grid", DefaultLibraryOptions())
	require.NoError(b, err)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = lib.Query(smallViewport)
	}
}
