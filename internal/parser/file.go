package parser

import (
	"sync"
	"sync/atomic"
)

// File is the decoded model of one geometry file and its companions.
//
// Records are filled either during construction (streams) or by the first
// Load call (random-access sources). After loading, every field is read-only.
type File struct {
	Header     Header
	Bounds     Rectangle // header bounds, projected and normalized
	Index      IndexTable
	Table      *Table
	Store      *PointStore
	Parts      []PartView
	Records    []*Record
	Warnings   []error
	Normalized bool

	pendingNormalize bool

	once    sync.Once
	load    func() error
	loadErr error
	loaded  atomic.Bool
}

// maxStreamReserve caps the points reserved up front when the geometry
// file's size is unknown.
const maxStreamReserve = 1 << 20

// newFile sizes the point store from the header. size is the byte length of
// the geometry file, or -1 when unknown.
func newFile(h Header, index IndexTable, table *Table, size int64, opts ParseOptions) *File {
	ProjectHeader(&h, opts.Projection)

	f := &File{
		Header: h,
		Bounds: h.Bounds,
		Index:  index,
		Table:  table,
		Store:  NewPointStore(h.ShapeType.Dims()),
	}

	if opts.Normalize && f.Bounds.CrossesAntimeridian() {
		f.Bounds = NormalizeRectangle(f.Bounds)
		f.pendingNormalize = true
	}

	recordCount := -1
	if index != nil {
		recordCount = len(index)
	}
	fileLength := h.FileLength
	if size >= 0 && int64(fileLength) > size {
		fileLength = int(size)
	}
	reserve := EstimatePointCount(h.ShapeType, fileLength, recordCount)
	if size < 0 {
		reserve = min(reserve, maxStreamReserve)
	}
	f.Store.Reserve(reserve)
	if recordCount >= 0 {
		f.Parts = make([]PartView, 0, recordCount)
		f.Records = make([]*Record, 0, recordCount)
	}
	return f
}

// Load decodes the records of a lazily opened file. It is safe for
// concurrent use; only the first call does any work.
func (f *File) Load() error {
	f.once.Do(func() {
		if f.load != nil {
			f.loadErr = f.load()
			f.load = nil
		}
		f.loaded.Store(f.loadErr == nil)
	})
	return f.loadErr
}

// Loaded reports whether records have been decoded successfully
func (f *File) Loaded() bool {
	return f.loaded.Load()
}
