package shapefile

import (
	"io"
	"path/filepath"
	"strings"

	"github.com/go-kit/log/level"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

// Parser opens shapefiles by the path of their geometry file.
//
// Create a parser with NewParser and use Parse or ParseWithOptions.
type Parser interface {
	// Parse opens path (the .shp file) and its siblings with default options.
	Parse(path string) (*ShapeFile, error)

	// ParseWithOptions opens path with custom options.
	ParseWithOptions(path string, opts ParseOptions) (*ShapeFile, error)
}

// NewParser returns a parser reading from fs.
//
// Example:
//
//	p := shapefile.NewParser(afero.NewOsFs())
//	sf, err := p.Parse("data/roads.shp")
func NewParser(fs afero.Fs) Parser {
	return &fsParser{fs: fs, defaults: DefaultParseOptions()}
}

// newParserWithOptions returns a parser whose Parse uses opts.
func newParserWithOptions(fs afero.Fs, opts ParseOptions) Parser {
	return &fsParser{fs: fs, defaults: opts}
}

// Open opens a shapefile from the operating system's filesystem with
// default options. Close the result to release its files.
func Open(path string) (*ShapeFile, error) {
	return NewParser(afero.NewOsFs()).Parse(path)
}

type fsParser struct {
	fs       afero.Fs
	defaults ParseOptions
}

func (p *fsParser) Parse(path string) (*ShapeFile, error) {
	return p.ParseWithOptions(path, p.defaults)
}

func (p *fsParser) ParseWithOptions(path string, opts ParseOptions) (*ShapeFile, error) {
	siblings, err := findSiblings(p.fs, path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}

	var (
		src     ReaderAtSources
		closers []io.Closer
	)
	closeAll := func() {
		for _, c := range closers {
			c.Close()
		}
	}

	open := func(ext string) (io.ReaderAt, int64, error) {
		name, ok := siblings[ext]
		if !ok {
			return nil, 0, nil
		}
		f, err := p.fs.Open(name)
		if err != nil {
			return nil, 0, &ErrSourceUnavailable{Source: name, Err: err}
		}
		closers = append(closers, f)
		info, err := f.Stat()
		if err != nil {
			return nil, 0, &ErrSourceUnavailable{Source: name, Err: err}
		}
		return f, info.Size(), nil
	}

	if src.Shape, src.ShapeSize, err = open(".shp"); err != nil {
		closeAll()
		return nil, errors.Wrapf(err, "open %s", path)
	}
	if src.Index, src.IndexSize, err = open(".shx"); err != nil {
		closeAll()
		return nil, errors.Wrapf(err, "open %s", path)
	}
	if src.Attributes, src.AttributesSize, err = open(".dbf"); err != nil {
		closeAll()
		return nil, errors.Wrapf(err, "open %s", path)
	}

	if name, ok := siblings[".prj"]; ok {
		if src.ProjectionParams, err = afero.ReadFile(p.fs, name); err != nil {
			closeAll()
			return nil, errors.Wrapf(&ErrSourceUnavailable{Source: name, Err: err}, "open %s", path)
		}
	}
	if name, ok := siblings[".cpg"]; ok {
		data, err := afero.ReadFile(p.fs, name)
		if err != nil {
			closeAll()
			return nil, errors.Wrapf(&ErrSourceUnavailable{Source: name, Err: err}, "open %s", path)
		}
		src.CodePage = strings.TrimSpace(string(data))
	}

	if opts.Logger != nil {
		level.Debug(opts.Logger).Log("msg", "opening shapefile", "path", path,
			"index", src.Index != nil, "attributes", src.Attributes != nil,
			"projection", src.ProjectionParams != nil, "code_page", src.CodePage)
	}

	sf, err := ReadAt(src, opts)
	if err != nil {
		closeAll()
		return nil, errors.Wrapf(err, "open %s", path)
	}
	sf.closers = closers
	return sf, nil
}

// findSiblings maps lower-case extensions (".shp", ".shx", ...) to the files
// sharing path's base name. Names and extensions match case-insensitively,
// so roads.SHP finds roads.shx and ROADS.DBF.
func findSiblings(fs afero.Fs, path string) (map[string]string, error) {
	dir := filepath.Dir(path)
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	entries, err := afero.ReadDir(fs, dir)
	if err != nil {
		return nil, &ErrSourceUnavailable{Source: dir, Err: err}
	}

	siblings := make(map[string]string, 5)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		ext := filepath.Ext(name)
		if !strings.EqualFold(strings.TrimSuffix(name, ext), stem) {
			continue
		}
		ext = strings.ToLower(ext)
		switch ext {
		case ".shp", ".shx", ".dbf", ".prj", ".cpg":
		default:
			continue
		}
		// An exact match for the requested geometry file wins over case variants.
		if existing, ok := siblings[ext]; ok && filepath.Base(existing) == filepath.Base(path) {
			continue
		}
		siblings[ext] = filepath.Join(dir, name)
	}

	if _, ok := siblings[".shp"]; !ok {
		return nil, &ErrSourceUnavailable{Source: path, Err: afero.ErrFileNotFound}
	}
	return siblings, nil
}
