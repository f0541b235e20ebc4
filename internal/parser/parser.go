package parser

import (
	"bufio"
	"io"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"golang.org/x/text/encoding"
)

// ParseOptions configures decoding
type ParseOptions struct {
	// Logger receives warnings and debug events. Default: no-op
	Logger log.Logger

	// Projection converts coordinates to geographic degrees as they are read.
	// Nil leaves coordinates unchanged.
	Projection Projection

	// Encoding decodes dBase Char fields. Nil uses the table's language driver or UTF-8.
	Encoding encoding.Encoding

	// AcceptRecord, if set, drops records for which it returns false
	AcceptRecord func(*Record) bool

	// Normalize enables the antimeridian pass. Default: true
	Normalize bool

	// Metrics, if set, records decoder activity
	Metrics *Metrics
}

// DefaultParseOptions returns parse options with defaults
func DefaultParseOptions() ParseOptions {
	return ParseOptions{
		Logger:    log.NewNopLogger(),
		Normalize: true,
	}
}

func (o ParseOptions) withDefaults() ParseOptions {
	if o.Logger == nil {
		o.Logger = log.NewNopLogger()
	}
	return o
}

func (o ParseOptions) tableOptions() TableOptions {
	return TableOptions{Encoding: o.Encoding, Logger: o.Logger}
}

// Sources are one-shot streams. Index and Attributes are optional.
type Sources struct {
	Shape      io.Reader
	Index      io.Reader
	Attributes io.Reader
}

// Read decodes everything from one-shot streams before returning.
// The index, when given, only sizes the point store; records are read in
// file order from Shape.
func Read(src Sources, opts ParseOptions) (*File, error) {
	opts = opts.withDefaults()
	f, err := read(src, opts)
	if err != nil {
		opts.Metrics.ParseFailed(err)
		return nil, err
	}
	return f, nil
}

func read(src Sources, opts ParseOptions) (*File, error) {
	if src.Shape == nil {
		return nil, stageError(StageHeader, 0, &ErrSourceUnavailable{Source: "shape", Err: io.ErrUnexpectedEOF})
	}
	shape := bufio.NewReader(src.Shape)

	h, err := DecodeHeader(shape)
	if err != nil {
		return nil, stageError(StageHeader, 0, err)
	}

	var index IndexTable
	if src.Index != nil {
		if _, index, err = DecodeIndex(bufio.NewReader(src.Index)); err != nil {
			return nil, stageError(StageIndex, 0, err)
		}
	}

	var table *Table
	if src.Attributes != nil {
		if table, err = ReadTable(bufio.NewReader(src.Attributes), opts.tableOptions()); err != nil {
			return nil, stageError(StageAttributes, 0, err)
		}
	}

	f := newFile(h, index, table, -1, opts)
	f.load = func() error {
		return decodeAll(f, opts, "stream", func(d *decoder) error {
			return d.decodeStream(shape, -1)
		})
	}
	if err := f.Load(); err != nil {
		return nil, err
	}
	return f, nil
}

// RandomAccessSources are re-readable byte sources with known sizes.
// Index and Attributes are optional.
type RandomAccessSources struct {
	Shape          io.ReaderAt
	ShapeSize      int64
	Index          io.ReaderAt
	IndexSize      int64
	Attributes     io.ReaderAt
	AttributesSize int64
}

// Open decodes headers, the index and the attribute schema immediately and
// defers records and rows to the first File.Load call. With an index, records
// are located through it; without one the geometry file is scanned in order.
func Open(src RandomAccessSources, opts ParseOptions) (*File, error) {
	opts = opts.withDefaults()
	f, err := open(src, opts)
	if err != nil {
		opts.Metrics.ParseFailed(err)
		return nil, err
	}
	return f, nil
}

func open(src RandomAccessSources, opts ParseOptions) (*File, error) {
	if src.Shape == nil {
		return nil, stageError(StageHeader, 0, &ErrSourceUnavailable{Source: "shape", Err: io.ErrUnexpectedEOF})
	}

	h, err := DecodeHeader(io.NewSectionReader(src.Shape, 0, src.ShapeSize))
	if err != nil {
		return nil, stageError(StageHeader, 0, err)
	}

	var index IndexTable
	if src.Index != nil {
		if _, index, err = DecodeIndex(io.NewSectionReader(src.Index, 0, src.IndexSize)); err != nil {
			return nil, stageError(StageIndex, 0, err)
		}
	}

	var table *Table
	if src.Attributes != nil {
		if table, err = OpenTable(src.Attributes, src.AttributesSize, opts.tableOptions()); err != nil {
			return nil, stageError(StageAttributes, 0, err)
		}
	}

	f := newFile(h, index, table, src.ShapeSize, opts)
	f.load = func() error {
		err := decodeAll(f, opts, "random_access", func(d *decoder) error {
			if index != nil {
				return d.decodeIndexed(src.Shape, src.ShapeSize, index)
			}
			body := io.NewSectionReader(src.Shape, HeaderLength, src.ShapeSize-HeaderLength)
			return d.decodeStream(bufio.NewReader(body), src.ShapeSize)
		})
		opts.Metrics.ParseFailed(err)
		return err
	}
	return f, nil
}

// decodeAll runs one decode pass and the normalization that follows it.
func decodeAll(f *File, opts ParseOptions, mode string, pass func(*decoder) error) error {
	start := time.Now()

	d, err := newDecoder(f, opts)
	if err != nil {
		return err
	}
	if err := pass(d); err != nil {
		return err
	}

	if Normalize(f) {
		level.Debug(opts.Logger).Log("msg", "longitudes normalized across the antimeridian",
			"records", len(f.Records), "bounds_min_x", f.Bounds.MinX, "bounds_max_x", f.Bounds.MaxX)
	}

	opts.Metrics.fileParsed(mode)
	opts.Metrics.observeDuration(time.Since(start).Seconds())
	level.Debug(opts.Logger).Log("msg", "records decoded", "mode", mode,
		"shape_type", f.Header.ShapeType, "records", len(f.Records),
		"points", f.Store.Len(), "warnings", len(f.Warnings))
	return nil
}
