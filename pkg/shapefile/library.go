package shapefile

import (
	"context"
	"math"
	"sort"

	"github.com/dhconnelly/rtreego"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

// Library indexes the shapefiles of a directory tree by their bounds and
// loads them on demand through a FileCache.
//
// Building a library reads only headers and indexes, so it is cheap even for
// large trees. Files are decoded the first time a query needs them and
// evicted when the cache limits are exceeded.
//
// Example:
//
//	lib, err := shapefile.NewLibrary(ctx, afero.NewOsFs(), "/data", shapefile.DefaultLibraryOptions())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	viewport := shapefile.Rectangle{MinX: -71.5, MinY: 42.0, MaxX: -71.0, MaxY: 42.5}
//	records, err := lib.RecordsInSector(viewport)
type Library struct {
	root    string
	entries []LibraryEntry
	rtree   *rtreego.Rtree
	cache   *FileCache
	skipped []error
	logger  log.Logger
}

// LibraryEntry is the indexed metadata of one shapefile.
type LibraryEntry struct {
	Path       string
	ShapeType  ShapeType
	Bounds     Rectangle // projected and normalized like ShapeFile.BoundingRectangle
	Records    int       // from the index, -1 without one
	FileLength int       // geometry file length in bytes
	Fields     int       // attribute columns, 0 without a table
}

// indexedEntry adapts an entry to rtreego.Spatial.
type indexedEntry struct {
	entry *LibraryEntry
	rect  rtreego.Rect
}

// Minimum R-tree extent in degrees; zero-area bounds are not valid rectangles.
const rtreeEpsilon = 1e-9

func (e indexedEntry) Bounds() rtreego.Rect {
	return e.rect
}

// rtreeRect fails for bounds with NaN or infinite coordinates, which some
// empty files carry in their headers.
func rtreeRect(r Rectangle, pad float64) (rtreego.Rect, error) {
	if !finite(r) {
		return rtreego.Rect{}, errors.Errorf("bounds %v are not finite", r)
	}
	width := r.Width()
	if width < rtreeEpsilon {
		width = rtreeEpsilon
	}
	height := r.Height()
	if height < rtreeEpsilon {
		height = rtreeEpsilon
	}
	rect, err := rtreego.NewRect(
		rtreego.Point{r.MinX - pad, r.MinY - pad},
		[]float64{width + 2*pad, height + 2*pad},
	)
	return rect, errors.Wrapf(err, "bounds %v", r)
}

func finite(r Rectangle) bool {
	for _, v := range []float64{r.MinX, r.MinY, r.MaxX, r.MaxY} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// LibraryOptions configures a Library.
type LibraryOptions struct {
	Parse ParseOptions
	Cache CacheOptions
	Load  LoadOptions
}

// DefaultLibraryOptions returns library options with defaults.
func DefaultLibraryOptions() LibraryOptions {
	return LibraryOptions{
		Parse: DefaultParseOptions(),
		Cache: DefaultCacheOptions(),
		Load:  DefaultLoadOptions(),
	}
}

// NewLibrary discovers the shapefiles under root and indexes their headers.
//
// With opts.Load.SkipErrors, unreadable files are left out and reported by
// Skipped; otherwise the first failure is returned.
func NewLibrary(ctx context.Context, fs afero.Fs, root string, opts LibraryOptions) (*Library, error) {
	logger := opts.Parse.Logger
	if logger == nil {
		logger = log.NewNopLogger()
	}
	if opts.Load.Logger == nil {
		opts.Load.Logger = logger
	}
	if opts.Cache.Logger == nil {
		opts.Cache.Logger = logger
	}
	if opts.Cache.Metrics == nil {
		opts.Cache.Metrics = opts.Parse.Metrics
	}

	paths, err := Discover(fs, root)
	if err != nil {
		return nil, err
	}

	p := newParserWithOptions(fs, opts.Parse)
	found := make([]*LibraryEntry, len(paths))
	errs := forEachPath(ctx, paths, opts.Load, func(i int, path string) error {
		entry, err := indexFile(p, path)
		if err != nil {
			return err
		}
		found[i] = entry
		return nil
	})
	if len(errs) > 0 && !opts.Load.SkipErrors {
		return nil, errs[0]
	}

	cache, err := NewFileCache(p, opts.Cache)
	if err != nil {
		return nil, err
	}

	lib := &Library{
		root:    root,
		cache:   cache,
		skipped: errs,
		logger:  logger,
		rtree:   rtreego.NewTree(2, 25, 50),
	}
	for _, entry := range found {
		if entry != nil {
			lib.entries = append(lib.entries, *entry)
		}
	}
	for i := range lib.entries {
		entry := &lib.entries[i]
		rect, err := rtreeRect(entry.Bounds, 0)
		if err != nil {
			level.Warn(logger).Log("msg", "file left out of spatial queries", "path", entry.Path, "err", err)
			continue
		}
		lib.rtree.Insert(indexedEntry{entry: entry, rect: rect})
	}

	level.Info(logger).Log("msg", "indexed shapefile library", "root", root,
		"files", len(lib.entries), "skipped", len(errs))
	return lib, nil
}

// indexFile reads the headers of one file without decoding its records.
func indexFile(p Parser, path string) (*LibraryEntry, error) {
	sf, err := p.Parse(path)
	if err != nil {
		return nil, err
	}
	defer sf.Close()

	entry := &LibraryEntry{
		Path:       path,
		ShapeType:  sf.ShapeType(),
		Bounds:     sf.BoundingRectangle(),
		Records:    -1,
		FileLength: sf.Header().FileLength,
		Fields:     len(sf.Schema()),
	}
	if idx := sf.Index(); idx != nil {
		entry.Records = len(idx)
	}
	return entry, nil
}

// Len returns the number of indexed files.
func (l *Library) Len() int {
	return len(l.entries)
}

// Entries returns every indexed file in path order.
func (l *Library) Entries() []LibraryEntry {
	return l.entries
}

// Skipped returns the errors of files left out of the index.
func (l *Library) Skipped() []error {
	return l.skipped
}

// Bounds returns the union of all finite file bounds. ok is false when no
// file has any.
func (l *Library) Bounds() (bounds Rectangle, ok bool) {
	for _, e := range l.entries {
		switch {
		case !finite(e.Bounds):
		case !ok:
			bounds, ok = e.Bounds, true
		default:
			bounds = bounds.Union(e.Bounds)
		}
	}
	return bounds, ok
}

// Query returns the files whose bounds intersect sector, edges included,
// smallest coverage first so the most detailed files come before overviews.
func (l *Library) Query(sector Rectangle) []LibraryEntry {
	// The R-tree excludes touching rectangles, so search a padded sector and
	// apply the inclusive test to the candidates.
	query, err := rtreeRect(sector, rtreeEpsilon)
	if err != nil {
		return nil
	}
	candidates := l.rtree.SearchIntersect(query)

	result := make([]LibraryEntry, 0, len(candidates))
	for _, c := range candidates {
		entry := c.(indexedEntry).entry
		if sector.Intersects(entry.Bounds) {
			result = append(result, *entry)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		ai := result[i].Bounds.Width() * result[i].Bounds.Height()
		aj := result[j].Bounds.Width() * result[j].Bounds.Height()
		if ai != aj {
			return ai < aj
		}
		return result[i].Path < result[j].Path
	})
	return result
}

// File returns the decoded file at path, loading it through the cache.
func (l *Library) File(path string) (*ShapeFile, error) {
	return l.cache.Get(path)
}

// Files returns the decoded files intersecting sector, in Query order.
func (l *Library) Files(sector Rectangle) ([]*ShapeFile, error) {
	entries := l.Query(sector)
	files := make([]*ShapeFile, 0, len(entries))
	for _, e := range entries {
		sf, err := l.cache.Get(e.Path)
		if err != nil {
			return nil, errors.Wrapf(err, "library file %s", e.Path)
		}
		files = append(files, sf)
	}
	return files, nil
}

// RecordsInSector returns the records of every intersecting file that fall
// in sector, using SelectBySector on each file.
func (l *Library) RecordsInSector(sector Rectangle) ([]*Record, error) {
	files, err := l.Files(sector)
	if err != nil {
		return nil, err
	}

	var out []*Record
	for _, sf := range files {
		records, err := sf.Records()
		if err != nil {
			return nil, err
		}
		out = append(out, SelectBySector(records, sector)...)
	}
	return out, nil
}

// Stats returns library statistics.
func (l *Library) Stats() LibraryStats {
	return LibraryStats{
		Files:   len(l.entries),
		Skipped: len(l.skipped),
		Cache:   l.cache.Stats(),
	}
}

// LibraryStats holds library and cache statistics.
type LibraryStats struct {
	Files   int
	Skipped int
	Cache   CacheStats
}
