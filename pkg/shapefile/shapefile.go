package shapefile

import (
	"io"
	"sync"

	"github.com/beetlebugorg/shapefile/internal/parser"
)

// Sources are one-shot streams, read once in order. Index and Attributes are
// optional.
type Sources struct {
	Shape      io.Reader
	Index      io.Reader
	Attributes io.Reader

	// ProjectionParams are handed to ParseOptions.Projector, typically the
	// contents of a .prj file.
	ProjectionParams []byte

	// CodePage names the attribute text encoding, typically the contents of
	// a .cpg file ("UTF-8", "1252", "ISO-8859-1").
	CodePage string
}

// ReaderAtSources are re-readable sources with known sizes. Index and
// Attributes are optional; a nil reader means absent.
type ReaderAtSources struct {
	Shape          io.ReaderAt
	ShapeSize      int64
	Index          io.ReaderAt
	IndexSize      int64
	Attributes     io.ReaderAt
	AttributesSize int64

	ProjectionParams []byte
	CodePage         string
}

// Read decodes every record from one-shot streams before returning.
//
// A failure at any stage returns a single *StageError naming the header,
// index, attributes or record N.
func Read(src Sources, opts ParseOptions) (*ShapeFile, error) {
	f, err := parser.Read(parser.Sources{
		Shape:      src.Shape,
		Index:      src.Index,
		Attributes: src.Attributes,
	}, opts.internal(src.ProjectionParams, src.CodePage))
	if err != nil {
		return nil, err
	}
	return newShapeFile(f, src.ProjectionParams), nil
}

// ReadAt decodes the headers, the index and the attribute schema now and
// defers records to the first Records call. With an index, records are
// located by offset; without one the geometry file is scanned in order.
func ReadAt(src ReaderAtSources, opts ParseOptions) (*ShapeFile, error) {
	f, err := parser.Open(parser.RandomAccessSources{
		Shape:          src.Shape,
		ShapeSize:      src.ShapeSize,
		Index:          src.Index,
		IndexSize:      src.IndexSize,
		Attributes:     src.Attributes,
		AttributesSize: src.AttributesSize,
	}, opts.internal(src.ProjectionParams, src.CodePage))
	if err != nil {
		return nil, err
	}
	return newShapeFile(f, src.ProjectionParams), nil
}

// ShapeFile is a decoded geometry file with its optional index and attribute
// table.
//
// Once Records has returned successfully the ShapeFile is read-only and safe
// for concurrent use. Concurrent first calls to Records decode only once.
type ShapeFile struct {
	file             *parser.File
	projectionParams []byte

	once    sync.Once
	records []*Record
	err     error

	closeOnce sync.Once
	closers   []io.Closer
	closeErr  error
}

func newShapeFile(f *parser.File, projectionParams []byte) *ShapeFile {
	return &ShapeFile{file: f, projectionParams: projectionParams}
}

func (s *ShapeFile) load() error {
	s.once.Do(func() {
		if s.err = s.file.Load(); s.err != nil {
			return
		}
		s.records = make([]*Record, len(s.file.Records))
		for i, r := range s.file.Records {
			s.records[i] = &Record{r: r}
		}
	})
	return s.err
}

// Header returns the geometry header. When a projection applied, its bounds
// are in geographic degrees.
func (s *ShapeFile) Header() Header {
	return s.file.Header
}

// ShapeType returns the declared shape type of the file.
func (s *ShapeFile) ShapeType() ShapeType {
	return s.file.Header.ShapeType
}

// BoundingRectangle returns the file bounds, projected and normalized.
// It is available before records are decoded.
func (s *ShapeFile) BoundingRectangle() Rectangle {
	return s.file.Bounds
}

// Index returns the position index, or nil when none was supplied.
func (s *ShapeFile) Index() IndexTable {
	return s.file.Index
}

// Schema returns the attribute columns, or nil when no table was supplied.
func (s *ShapeFile) Schema() Schema {
	if s.file.Table == nil {
		return nil
	}
	return s.file.Table.Schema()
}

// TableHeader returns the attribute table header. ok is false when no table
// was supplied.
func (s *ShapeFile) TableHeader() (h TableHeader, ok bool) {
	if s.file.Table == nil {
		return TableHeader{}, false
	}
	return s.file.Table.Header(), true
}

// Records returns the decoded records in file order, decoding them on the
// first call.
func (s *ShapeFile) Records() ([]*Record, error) {
	if err := s.load(); err != nil {
		return nil, err
	}
	return s.records, nil
}

// Record returns the i-th record (0-based position, not record number).
func (s *ShapeFile) Record(i int) (*Record, error) {
	records, err := s.Records()
	if err != nil {
		return nil, err
	}
	if i < 0 || i >= len(records) {
		return nil, &ErrIndexOutOfRange{What: "record", Index: i, Len: len(records)}
	}
	return records[i], nil
}

// Len returns the number of records, or 0 if decoding failed.
func (s *ShapeFile) Len() int {
	records, _ := s.Records()
	return len(records)
}

// Loaded reports whether records have been decoded.
func (s *ShapeFile) Loaded() bool {
	return s.file.Loaded()
}

// Store returns the point store backing every record's parts.
func (s *ShapeFile) Store() *PointStore {
	return s.file.Store
}

// Warnings returns the non-fatal problems collected while decoding, such as
// records without a matching attribute row.
func (s *ShapeFile) Warnings() []error {
	if err := s.load(); err != nil {
		return nil
	}
	return s.file.Warnings
}

// ProjectionParams returns the projection parameters the file was opened
// with, or nil.
func (s *ShapeFile) ProjectionParams() []byte {
	return s.projectionParams
}

// Normalized reports whether longitudes were wrapped across the antimeridian.
func (s *ShapeFile) Normalized() bool {
	if err := s.load(); err != nil {
		return false
	}
	return s.file.Normalized
}

// Close releases the files opened by a Parser. Records already decoded stay
// usable; a file closed before its first Records call can no longer load.
func (s *ShapeFile) Close() error {
	s.closeOnce.Do(func() {
		for _, c := range s.closers {
			if err := c.Close(); err != nil && s.closeErr == nil {
				s.closeErr = err
			}
		}
		s.closers = nil
	})
	return s.closeErr
}

// memorySize approximates the bytes held by a decoded file.
func (s *ShapeFile) memorySize() int64 {
	const (
		fileOverhead   = 1024
		recordOverhead = 160
		partSize       = 24
	)
	size := int64(fileOverhead)
	size += int64(s.file.Store.Len()*s.file.Store.Dims()) * 8
	size += int64(len(s.file.Parts)) * partSize
	size += int64(len(s.file.Records)) * recordOverhead
	if s.file.Table != nil {
		size += int64(s.file.Table.Header().RecordCount * s.file.Table.Header().RecordLength * 2)
	}
	return size
}
