package shapefile

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/beetlebugorg/shapefile/internal/shptest"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// writeShapefile writes base.shp, base.shx and, when table is set, base.dbf.
func writeShapefile(t testing.TB, fs afero.Fs, base string, file *shptest.File, table *shptest.Table) {
	t.Helper()
	require.NoError(t, afero.WriteFile(fs, base+".shp", file.Shp(), 0o644))
	require.NoError(t, afero.WriteFile(fs, base+".shx", file.Shx(), 0o644))
	if table != nil {
		require.NoError(t, afero.WriteFile(fs, base+".dbf", table.Dbf(), 0o644))
	}
}

func pointFile(coords ...[2]float64) *shptest.File {
	f := &shptest.File{Type: shptest.Point}
	for _, c := range coords {
		f.Records = append(f.Records, shptest.Record{Points: [][]float64{{c[0], c[1]}}})
	}
	return f
}

func squareRecord(x, y, size float64) shptest.Record {
	return shptest.Record{Points: [][]float64{{x, y}, {x, y + size}, {x + size, y + size}, {x + size, y}, {x, y}}}
}
