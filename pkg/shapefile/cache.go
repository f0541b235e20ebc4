package shapefile

import (
	"sync"
	"sync/atomic"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pkg/errors"
	"golang.org/x/sync/singleflight"
)

// FileCache keeps fully decoded shapefiles in memory with least-recently-used
// eviction.
//
// Two limits apply: the number of files and an estimate of their memory.
// Memory estimation is approximate, based on point, part and record counts.
// Concurrent Gets for the same path decode it once.
//
// Example:
//
//	cache, err := shapefile.NewFileCache(shapefile.NewParser(afero.NewOsFs()), shapefile.CacheOptions{
//	    MaxFiles:  64,
//	    MaxMemory: 512 * 1024 * 1024,
//	})
//	sf, err := cache.Get("data/roads.shp")
type FileCache struct {
	parser    Parser
	maxMemory int64
	metrics   *Metrics
	logger    log.Logger

	mu         sync.Mutex // serializes Add so memory accounting stays exact
	files      *lru.Cache[string, *cacheEntry]
	usedMemory atomic.Int64
	hits       atomic.Int64
	misses     atomic.Int64
	loads      singleflight.Group
}

type cacheEntry struct {
	file       *ShapeFile
	memorySize int64
}

// CacheOptions configures a FileCache.
type CacheOptions struct {
	// MaxFiles bounds the number of cached files.
	// Default: 128
	MaxFiles int

	// MaxMemory bounds the estimated memory of cached files in bytes.
	// Zero means no memory limit.
	MaxMemory int64

	Metrics *Metrics
	Logger  log.Logger
}

// DefaultCacheOptions returns cache options with defaults.
func DefaultCacheOptions() CacheOptions {
	return CacheOptions{
		MaxFiles:  128,
		MaxMemory: 512 * 1024 * 1024,
		Logger:    log.NewNopLogger(),
	}
}

// NewFileCache creates a cache that loads misses through p.
func NewFileCache(p Parser, opts CacheOptions) (*FileCache, error) {
	if opts.MaxFiles <= 0 {
		opts.MaxFiles = 128
	}
	if opts.Logger == nil {
		opts.Logger = log.NewNopLogger()
	}

	c := &FileCache{
		parser:    p,
		maxMemory: opts.MaxMemory,
		metrics:   opts.Metrics,
		logger:    opts.Logger,
	}
	files, err := lru.NewWithEvict[string, *cacheEntry](opts.MaxFiles, c.onEvict)
	if err != nil {
		return nil, errors.Wrap(err, "create file cache")
	}
	c.files = files
	return c, nil
}

func (c *FileCache) onEvict(path string, entry *cacheEntry) {
	c.usedMemory.Add(-entry.memorySize)
	level.Debug(c.logger).Log("msg", "evicted shapefile", "path", path, "bytes", entry.memorySize)
}

// Get returns the cached file for path, or parses it, decodes all records and
// caches it. Cached files hold no open file handles.
//
// A file larger than the memory limit is returned without being cached.
func (c *FileCache) Get(path string) (*ShapeFile, error) {
	if entry, ok := c.files.Get(path); ok {
		c.hits.Add(1)
		c.metrics.CacheLookup(true)
		return entry.file, nil
	}
	c.misses.Add(1)
	c.metrics.CacheLookup(false)

	v, err, _ := c.loads.Do(path, func() (interface{}, error) {
		if entry, ok := c.files.Get(path); ok {
			return entry.file, nil
		}
		sf, err := loadFully(c.parser, path)
		if err != nil {
			return nil, err
		}
		if err := c.Add(path, sf); err != nil {
			level.Warn(c.logger).Log("msg", "shapefile not cached", "path", path, "err", err)
		}
		return sf, nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "load shapefile")
	}
	return v.(*ShapeFile), nil
}

// Add caches sf under path, evicting least-recently-used files until the
// memory limit holds. It fails when sf alone exceeds the limit.
func (c *FileCache) Add(path string, sf *ShapeFile) error {
	size := sf.memorySize()
	if c.maxMemory > 0 && size > c.maxMemory {
		return errors.Errorf("file too large for cache (%d bytes > %d bytes max)", size, c.maxMemory)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// Replacing an entry does not fire the eviction callback.
	if old, ok := c.files.Peek(path); ok {
		c.usedMemory.Add(-old.memorySize)
	}
	c.files.Add(path, &cacheEntry{file: sf, memorySize: size})
	c.usedMemory.Add(size)

	if c.maxMemory > 0 {
		for c.usedMemory.Load() > c.maxMemory && c.files.Len() > 1 {
			c.files.RemoveOldest()
		}
	}
	return nil
}

// Remove drops path from the cache.
func (c *FileCache) Remove(path string) {
	c.files.Remove(path)
}

// Clear drops every cached file.
func (c *FileCache) Clear() {
	c.files.Purge()
}

// Stats returns cache statistics.
func (c *FileCache) Stats() CacheStats {
	return CacheStats{
		Files:      c.files.Len(),
		UsedMemory: c.usedMemory.Load(),
		MaxMemory:  c.maxMemory,
		Hits:       c.hits.Load(),
		Misses:     c.misses.Load(),
	}
}

// CacheStats holds cache performance metrics.
type CacheStats struct {
	Files      int   // Number of files currently cached
	UsedMemory int64 // Estimated memory usage in bytes
	MaxMemory  int64 // Memory limit in bytes, 0 for none
	Hits       int64
	Misses     int64
}

// HitRate returns the fraction of lookups served from the cache.
func (s CacheStats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// loadFully parses path, decodes every record and releases the file handles.
func loadFully(p Parser, path string) (*ShapeFile, error) {
	sf, err := p.Parse(path)
	if err != nil {
		return nil, err
	}
	if _, err := sf.Records(); err != nil {
		sf.Close()
		return nil, errors.Wrapf(err, "decode %s", path)
	}
	if err := sf.Close(); err != nil {
		return nil, errors.Wrapf(err, "close %s", path)
	}
	return sf, nil
}
