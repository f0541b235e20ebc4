package parser

import (
	"bufio"
	"io"
	"sync"

	"github.com/go-kit/log"
	"golang.org/x/text/encoding"
)

// TableOptions configures attribute decoding
type TableOptions struct {
	// Encoding decodes Char fields. Nil selects the header's language
	// driver when it is recognized, otherwise bytes are taken as UTF-8.
	Encoding encoding.Encoding

	Logger log.Logger
}

// Table is a decoded dBase attribute file.
//
// Tables built by ReadTable hold all rows already. Tables built by OpenTable
// decode rows on the first call to Rows; concurrent first calls share one load.
type Table struct {
	header TableHeader
	schema Schema
	rows   []Row

	once sync.Once
	err  error
	src  io.ReaderAt
	size int64
	dec  *rowDecoder
}

// ReadTable decodes the header and every row from a one-shot stream.
func ReadTable(r io.Reader, opts TableOptions) (*Table, error) {
	t, err := newTable(r, opts)
	if err != nil {
		return nil, err
	}
	t.once.Do(func() {
		t.rows, t.err = t.readRows(r, min(t.header.RecordCount, maxStreamRows))
	})
	if t.err != nil {
		return nil, t.err
	}
	return t, nil
}

// OpenTable decodes the header now and defers rows until first use.
func OpenTable(r io.ReaderAt, size int64, opts TableOptions) (*Table, error) {
	t, err := newTable(io.NewSectionReader(r, 0, size), opts)
	if err != nil {
		return nil, err
	}
	t.src = r
	t.size = size
	return t, nil
}

func newTable(r io.Reader, opts TableOptions) (*Table, error) {
	header, schema, err := DecodeTableHeader(r)
	if err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.NewNopLogger()
	}
	enc := opts.Encoding
	if enc == nil {
		enc = LanguageDriverEncoding(header.LanguageDriver)
	}

	return &Table{
		header: header,
		schema: schema,
		dec:    newRowDecoder(schema, enc, logger),
	}, nil
}

// Header returns the fixed dBase header
func (t *Table) Header() TableHeader {
	return t.header
}

// Schema returns the ordered field descriptors
func (t *Table) Schema() Schema {
	return t.schema
}

// Rows returns every row, decoding them on first use for lazily opened tables.
func (t *Table) Rows() ([]Row, error) {
	t.once.Do(func() {
		if t.src == nil {
			return
		}
		start := int64(t.header.HeaderLength)
		want := start + int64(t.header.RecordCount)*int64(t.header.RecordLength)
		if want > t.size {
			t.err = &ErrTruncated{Stage: StageAttributes, Want: int(want), Got: int(t.size)}
			return
		}
		section := io.NewSectionReader(t.src, start, t.size-start)
		t.rows, t.err = t.readRows(bufio.NewReader(section), t.header.RecordCount)
	})
	return t.rows, t.err
}

// Row returns the row with the given 1-based record number.
func (t *Table) Row(recordNumber int) (*Row, error) {
	rows, err := t.Rows()
	if err != nil {
		return nil, err
	}
	if recordNumber < 1 || recordNumber > len(rows) {
		return nil, &ErrRecordNumberOutOfRange{RecordNumber: recordNumber, Rows: len(rows)}
	}
	return &rows[recordNumber-1], nil
}

// maxStreamRows caps the rows reserved up front when the source size is unknown
const maxStreamRows = 4096

// readRows expects r positioned at the first row. capacity is only a
// reservation; rows beyond it are appended.
func (t *Table) readRows(r io.Reader, capacity int) ([]Row, error) {
	n := t.header.RecordCount
	if t.header.RecordLength <= 0 {
		return []Row{}, nil
	}
	rows := make([]Row, 0, max(capacity, 0))

	buf := make([]byte, t.header.RecordLength)
	for i := 0; i < n; i++ {
		if err := readFull(r, buf, StageAttributes); err != nil {
			return nil, err
		}
		rows = append(rows, t.dec.decode(buf, i+1))
	}
	return rows, nil
}
