package shapefile

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingParser counts parses of the wrapped parser.
type countingParser struct {
	Parser
	parses atomic.Int64
}

func (p *countingParser) Parse(path string) (*ShapeFile, error) {
	p.parses.Add(1)
	return p.Parser.Parse(path)
}

func cacheFixture(t *testing.T, n int) (afero.Fs, []string) {
	t.Helper()
	fs := afero.NewMemMapFs()
	paths := make([]string, n)
	for i := range paths {
		base := fmt.Sprintf("c/file%02d", i)
		writeShapefile(t, fs, base, pointFile([2]float64{float64(i), float64(i)}), nil)
		paths[i] = base + ".shp"
	}
	return fs, paths
}

func TestFileCacheHitsAndMisses(t *testing.T) {
	fs, paths := cacheFixture(t, 2)
	p := &countingParser{Parser: NewParser(fs)}
	cache, err := NewFileCache(p, DefaultCacheOptions())
	require.NoError(t, err)

	first, err := cache.Get(paths[0])
	require.NoError(t, err)
	assert.True(t, first.Loaded())

	again, err := cache.Get(paths[0])
	require.NoError(t, err)
	assert.Same(t, first, again)

	_, err = cache.Get(paths[1])
	require.NoError(t, err)

	stats := cache.Stats()
	assert.Equal(t, 2, stats.Files)
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(2), stats.Misses)
	assert.InDelta(t, 1.0/3.0, stats.HitRate(), 1e-9)
	assert.Equal(t, int64(2), p.parses.Load())
	assert.Positive(t, stats.UsedMemory)
}

func TestFileCacheFileLimit(t *testing.T) {
	fs, paths := cacheFixture(t, 3)
	cache, err := NewFileCache(NewParser(fs), CacheOptions{MaxFiles: 2})
	require.NoError(t, err)

	for _, path := range paths {
		_, err := cache.Get(path)
		require.NoError(t, err)
	}

	stats := cache.Stats()
	assert.Equal(t, 2, stats.Files)

	one, err := cache.Get(paths[0])
	require.NoError(t, err)
	assert.Equal(t, int64(4), cache.Stats().Misses, "the oldest file was evicted")
	assert.Equal(t, int64(2*one.memorySize()), cache.Stats().UsedMemory)
}

func TestFileCacheMemoryLimit(t *testing.T) {
	fs, paths := cacheFixture(t, 3)
	p := NewParser(fs)

	sample, err := loadFully(p, paths[0])
	require.NoError(t, err)
	size := sample.memorySize()

	cache, err := NewFileCache(p, CacheOptions{MaxFiles: 10, MaxMemory: 2 * size})
	require.NoError(t, err)
	for _, path := range paths {
		_, err := cache.Get(path)
		require.NoError(t, err)
	}

	stats := cache.Stats()
	assert.Equal(t, 2, stats.Files)
	assert.LessOrEqual(t, stats.UsedMemory, 2*size)

	cache.Remove(paths[2])
	assert.Equal(t, size, cache.Stats().UsedMemory)

	cache.Clear()
	assert.Zero(t, cache.Stats().Files)
	assert.Zero(t, cache.Stats().UsedMemory)
}

func TestFileCacheTooLarge(t *testing.T) {
	fs, paths := cacheFixture(t, 1)
	cache, err := NewFileCache(NewParser(fs), CacheOptions{MaxMemory: 1})
	require.NoError(t, err)

	sf, err := cache.Get(paths[0])
	require.NoError(t, err, "oversized files are returned uncached")
	assert.Equal(t, 1, sf.Len())
	assert.Zero(t, cache.Stats().Files)

	assert.Error(t, cache.Add(paths[0], sf))
}

func TestFileCacheReplaceKeepsAccounting(t *testing.T) {
	fs, paths := cacheFixture(t, 1)
	cache, err := NewFileCache(NewParser(fs), DefaultCacheOptions())
	require.NoError(t, err)

	sf, err := cache.Get(paths[0])
	require.NoError(t, err)
	require.NoError(t, cache.Add(paths[0], sf))
	assert.Equal(t, sf.memorySize(), cache.Stats().UsedMemory)
}

func TestFileCacheConcurrentGetDecodesOnce(t *testing.T) {
	fs, paths := cacheFixture(t, 1)
	p := &countingParser{Parser: NewParser(fs)}
	cache, err := NewFileCache(p, DefaultCacheOptions())
	require.NoError(t, err)

	var wg sync.WaitGroup
	files := make([]*ShapeFile, 16)
	for i := range files {
		wg.Add(1)
		go func() {
			defer wg.Done()
			files[i], _ = cache.Get(paths[0])
		}()
	}
	wg.Wait()

	for _, sf := range files {
		assert.Same(t, files[0], sf)
	}
	assert.Equal(t, int64(1), p.parses.Load())
}

func TestFileCacheMissingFile(t *testing.T) {
	cache, err := NewFileCache(NewParser(afero.NewMemMapFs()), DefaultCacheOptions())
	require.NoError(t, err)

	_, err = cache.Get("missing/x.shp")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load shapefile")
	assert.Zero(t, cache.Stats().Files)
}

func TestFileCacheMetrics(t *testing.T) {
	fs, paths := cacheFixture(t, 1)
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)

	cache, err := NewFileCache(NewParser(fs), CacheOptions{Metrics: metrics})
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		_, err := cache.Get(paths[0])
		require.NoError(t, err)
	}

	count, err := testutil.GatherAndCount(reg, "shapefile_cache_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count, "one series per result")
}
