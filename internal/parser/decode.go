package parser

import (
	"encoding/binary"
	"io"

	"github.com/go-kit/log/level"
	"github.com/pkg/errors"
)

// decoder appends records of one file. It reuses its content buffer and
// part-start scratch space, so steady-state decoding does not allocate per
// record beyond the Record value itself and any measure block.
type decoder struct {
	f      *File
	opts   ParseOptions
	rows   []Row
	joined bool
	buf    []byte
	starts []int
}

func newDecoder(f *File, opts ParseOptions) (*decoder, error) {
	d := &decoder{f: f, opts: opts}
	if f.Table != nil {
		rows, err := f.Table.Rows()
		if err != nil {
			return nil, stageError(StageAttributes, 0, err)
		}
		d.rows = rows
		d.joined = true
	}
	return d, nil
}

// decodeStream reads records sequentially from r, which must be positioned
// just past the 100-byte header. It stops at the declared file length or at
// a clean end of stream between records. size is the byte length of the whole
// geometry file, or -1 when unknown.
func (d *decoder) decodeStream(r io.Reader, size int64) error {
	var hdr [recordHeaderLength]byte
	consumed := HeaderLength
	for d.f.Header.FileLength == 0 || consumed < d.f.Header.FileLength {
		n, err := io.ReadFull(r, hdr[:])
		if errors.Is(err, io.EOF) && n == 0 {
			return nil
		}
		if err != nil {
			if errors.Is(err, io.ErrUnexpectedEOF) {
				return stageError(StageRecords, 0, &ErrTruncated{Stage: StageRecords, Want: len(hdr), Got: n})
			}
			return stageError(StageRecords, 0, &ErrSourceUnavailable{Source: string(StageRecords), Err: err})
		}

		number := int(binary.BigEndian.Uint32(hdr[0:4]))
		length := int(binary.BigEndian.Uint32(hdr[4:8])) * 2

		end := consumed + recordHeaderLength + length
		if declared := d.f.Header.FileLength; declared > 0 && end > declared {
			return stageError(StageRecords, number, &ErrTruncated{Stage: StageRecords, Want: end, Got: declared})
		}
		if size >= 0 && int64(end) > size {
			return stageError(StageRecords, number, &ErrTruncated{Stage: StageRecords, Want: end, Got: int(size)})
		}

		content, err := readGrowing(r, d.buf, length, StageRecords)
		if err != nil {
			return stageError(StageRecords, number, err)
		}
		d.buf = content
		if err := d.decodeRecord(number, content); err != nil {
			return stageError(StageRecords, number, err)
		}
		consumed = end
	}
	return nil
}

// decodeIndexed reads each record at the offset named by its index entry.
// Entries reaching past size are reported as truncation before any read.
func (d *decoder) decodeIndexed(r io.ReaderAt, size int64, index IndexTable) error {
	for i, entry := range index {
		end := entry.Offset + recordHeaderLength + int64(entry.Length)
		if end > size {
			return stageError(StageRecords, i+1, &ErrTruncated{Stage: StageRecords, Want: int(end), Got: int(size)})
		}
		buf := d.content(recordHeaderLength + entry.Length)
		n, err := r.ReadAt(buf, entry.Offset)
		if n < len(buf) {
			if err == nil || errors.Is(err, io.EOF) {
				return stageError(StageRecords, i+1, &ErrTruncated{Stage: StageRecords, Want: len(buf), Got: n})
			}
			return stageError(StageRecords, i+1, &ErrSourceUnavailable{Source: string(StageRecords), Err: err})
		}

		number := int(binary.BigEndian.Uint32(buf[0:4]))
		if err := d.decodeRecord(number, buf[recordHeaderLength:]); err != nil {
			return stageError(StageRecords, number, err)
		}
	}
	return nil
}

func (d *decoder) content(n int) []byte {
	if cap(d.buf) < n {
		d.buf = make([]byte, n)
	}
	return d.buf[:n]
}

func (d *decoder) decodeRecord(number int, content []byte) error {
	c := cursor{data: content}
	if !c.has(4) {
		return &ErrTruncated{Stage: StageRecords, Want: 4, Got: len(content)}
	}

	code := c.int32LE()
	t, err := ShapeTypeFromCode(code)
	if err != nil {
		return err
	}
	if t != ShapeNull && t != d.f.Header.ShapeType {
		return &ErrUnsupportedShapeType{Code: code, Expected: d.f.Header.ShapeType, Mismatch: true}
	}

	rec := &Record{
		Number:    number,
		Type:      t,
		FirstPart: len(d.f.Parts),
	}

	switch t.Kind() {
	case ShapePoint:
		err = d.decodePoint(&c, rec)
	case ShapeMultiPoint:
		err = d.decodeMultiPoint(&c, rec)
	case ShapePolyline, ShapePolygon:
		err = d.decodePoly(&c, rec, t.Kind() == ShapePolygon)
	}
	if err != nil {
		return err
	}

	end := len(d.f.Parts)
	rec.Parts = d.f.Parts[rec.FirstPart:end:end]
	d.join(rec)

	if d.opts.AcceptRecord != nil && !d.opts.AcceptRecord(rec) {
		return nil
	}
	d.f.Records = append(d.f.Records, rec)
	d.opts.Metrics.recordDecoded(t)
	return nil
}

func (d *decoder) join(rec *Record) {
	if !d.joined {
		return
	}
	if rec.Number < 1 || rec.Number > len(d.rows) {
		warning := &ErrRecordNumberOutOfRange{RecordNumber: rec.Number, Rows: len(d.rows)}
		d.f.Warnings = append(d.f.Warnings, warning)
		d.opts.Metrics.joinWarning()
		level.Warn(d.opts.Logger).Log("msg", "record left without attributes", "err", warning)
		return
	}
	rec.Attributes = &d.rows[rec.Number-1]
}

func (d *decoder) project(x, y float64) (float64, float64) {
	if d.opts.Projection == nil {
		return x, y
	}
	return d.opts.Projection.Geographic(x, y)
}

func (d *decoder) bounds(c *cursor) *Rectangle {
	r := c.rectangleLE()
	if d.opts.Projection != nil {
		r = projectRectangle(d.opts.Projection, r)
	}
	return &r
}

// decodePoint: X, Y, then Z for Z types, then M when at least 8 bytes remain.
func (d *decoder) decodePoint(c *cursor, rec *Record) error {
	if !c.has(16) {
		return &ErrTruncated{Stage: StageRecords, Want: c.off + 16, Got: len(c.data)}
	}
	x, y := d.project(c.float64LE(), c.float64LE())

	store := d.f.Store
	off := store.grow(1)
	store.setXY(off, x, y)

	data := &PointData{}
	if rec.Type.HasZ() && c.has(8) {
		z := c.float64LE()
		store.setZ(off, z)
		data.Z = &z
	}
	if rec.Type.HasM() && c.has(8) {
		m := c.float64LE()
		data.M = &m
	}

	rec.Shape = data
	rec.PointCount = 1
	d.f.Parts = append(d.f.Parts, PartView{store: store, Offset: off, Count: 1})
	return nil
}

// decodeMultiPoint: bounds, N, N×XY, optional Z block, optional M block.
func (d *decoder) decodeMultiPoint(c *cursor, rec *Record) error {
	if !c.has(36) {
		return &ErrTruncated{Stage: StageRecords, Want: c.off + 36, Got: len(c.data)}
	}
	rec.Bounds = d.bounds(c)
	n := int(c.int32LE())
	if n < 0 {
		return &ErrCorruptRecord{RecordNumber: rec.Number, Reason: "negative point count"}
	}

	off, err := d.readXY(c, n)
	if err != nil {
		return err
	}

	data := &MultiPointData{}
	d.readChannels(c, rec.Type, off, n, &data.Channels)

	rec.Shape = data
	rec.PointCount = n
	d.f.Parts = append(d.f.Parts, PartView{store: d.f.Store, Offset: off, Count: n})
	return nil
}

// decodePoly decodes Polyline and Polygon records alike: bounds, part count P,
// point count N, P part starts, N×XY, optional Z and M blocks.
func (d *decoder) decodePoly(c *cursor, rec *Record, ring bool) error {
	if !c.has(40) {
		return &ErrTruncated{Stage: StageRecords, Want: c.off + 40, Got: len(c.data)}
	}
	rec.Bounds = d.bounds(c)
	p := int(c.int32LE())
	n := int(c.int32LE())
	if p < 0 || n < 0 {
		return &ErrCorruptRecord{RecordNumber: rec.Number, Reason: "negative part or point count"}
	}
	if !c.has(p * 4) {
		return &ErrTruncated{Stage: StageRecords, Want: c.off + p*4, Got: len(c.data)}
	}

	d.starts = d.starts[:0]
	for i := 0; i < p; i++ {
		start := int(c.int32LE())
		switch {
		case i == 0 && start != 0:
			return &ErrCorruptRecord{RecordNumber: rec.Number, Reason: "first part does not start at 0"}
		case start < 0 || start > n:
			return &ErrCorruptRecord{RecordNumber: rec.Number, Reason: "part start outside point array"}
		case i > 0 && start < d.starts[i-1]:
			return &ErrCorruptRecord{RecordNumber: rec.Number, Reason: "part starts not ascending"}
		}
		d.starts = append(d.starts, start)
	}
	if p == 0 && n > 0 {
		return &ErrCorruptRecord{RecordNumber: rec.Number, Reason: "points without parts"}
	}

	off, err := d.readXY(c, n)
	if err != nil {
		return err
	}

	data := &PolyData{Ring: ring}
	d.readChannels(c, rec.Type, off, n, &data.Channels)

	for i, start := range d.starts {
		end := n
		if i+1 < len(d.starts) {
			end = d.starts[i+1]
		}
		d.f.Parts = append(d.f.Parts, PartView{store: d.f.Store, Offset: off + start, Count: end - start})
	}

	rec.Shape = data
	rec.PointCount = n
	return nil
}

// readXY appends n projected points to the store and returns their offset
func (d *decoder) readXY(c *cursor, n int) (int, error) {
	if !c.has(n * 16) {
		return 0, &ErrTruncated{Stage: StageRecords, Want: c.off + n*16, Got: len(c.data)}
	}
	store := d.f.Store
	off := store.grow(n)
	for i := 0; i < n; i++ {
		x, y := d.project(c.float64LE(), c.float64LE())
		store.setXY(off+i, x, y)
	}
	return off, nil
}

// readChannels reads the Z block for Z types and the M block for measured
// types. A block is read only if its range and all n values are present;
// shorter tails leave the channel absent.
func (d *decoder) readChannels(c *cursor, t ShapeType, off, n int, ch *Channels) {
	block := 16 + n*8

	if t.HasZ() && c.has(block) {
		zr := c.rangeLE()
		ch.ZRange = &zr
		for i := 0; i < n; i++ {
			d.f.Store.setZ(off+i, c.float64LE())
		}
	}

	if t.HasM() && c.has(block) {
		mr := c.rangeLE()
		ch.MRange = &mr
		ch.MValues = make([]float64, n)
		for i := range ch.MValues {
			ch.MValues[i] = c.float64LE()
		}
	}
}
