package parser

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beetlebugorg/shapefile/internal/shptest"
)

// Length and count fields near their maximum must fail as truncation,
// not as an allocation sized from the field.

func lineFile() *shptest.File {
	return &shptest.File{
		Type: shptest.Polyline,
		Records: []shptest.Record{
			{Points: [][]float64{{0, 0}, {1, 1}}},
			{Points: [][]float64{{2, 2}, {3, 3}}},
		},
	}
}

func requireTruncated(t *testing.T, err error, stage Stage) *ErrTruncated {
	t.Helper()
	var e *ErrTruncated
	require.True(t, errors.As(err, &e), "got %v", err)
	assert.Equal(t, stage, e.Stage)
	return e
}

func TestOversizedRowCount(t *testing.T) {
	table := &shptest.Table{
		Fields: []shptest.Field{{Name: "NAME", Type: 'C', Length: 8}},
		Rows:   [][]string{{"one"}},
	}
	data := table.Dbf()
	binary.LittleEndian.PutUint32(data[4:8], 0xFFFFFFF0)

	t.Run("stream", func(t *testing.T) {
		_, err := ReadTable(bytes.NewReader(data), TableOptions{})
		requireTruncated(t, err, StageAttributes)
	})

	t.Run("random access", func(t *testing.T) {
		tbl, err := OpenTable(bytes.NewReader(data), int64(len(data)), TableOptions{})
		require.NoError(t, err)
		_, err = tbl.Rows()
		e := requireTruncated(t, err, StageAttributes)
		assert.Equal(t, len(data), e.Got)
	})

	t.Run("joined to geometry", func(t *testing.T) {
		_, err := Read(Sources{
			Shape:      bytes.NewReader(lineFile().Shp()),
			Attributes: bytes.NewReader(data),
		}, DefaultParseOptions())
		requireTruncated(t, err, StageAttributes)

		var se *StageError
		require.True(t, errors.As(err, &se))
		assert.Equal(t, StageAttributes, se.Stage)
	})
}

func TestOversizedIndexLength(t *testing.T) {
	file := lineFile()
	shx := file.Shx()
	binary.BigEndian.PutUint32(shx[24:28], 0x7FFFFFFF)

	t.Run("stream", func(t *testing.T) {
		_, err := Read(Sources{
			Shape: bytes.NewReader(file.Shp()),
			Index: bytes.NewReader(shx),
		}, DefaultParseOptions())
		requireTruncated(t, err, StageIndex)
	})

	t.Run("random access", func(t *testing.T) {
		shp := file.Shp()
		_, err := Open(RandomAccessSources{
			Shape: bytes.NewReader(shp), ShapeSize: int64(len(shp)),
			Index: bytes.NewReader(shx), IndexSize: int64(len(shx)),
		}, DefaultParseOptions())
		e := requireTruncated(t, err, StageIndex)
		assert.Equal(t, len(shx)-HeaderLength, e.Got)
	})
}

func TestOversizedRecordLength(t *testing.T) {
	file := lineFile()
	shp := file.Shp()
	// content length of record 1, in 16-bit words
	binary.BigEndian.PutUint32(shp[HeaderLength+4:HeaderLength+8], 0x7FFFFFFF)

	requireRecord := func(t *testing.T, err error, number int) {
		t.Helper()
		requireTruncated(t, err, StageRecords)
		var se *StageError
		require.True(t, errors.As(err, &se))
		assert.Equal(t, number, se.RecordNumber)
	}

	t.Run("stream past declared length", func(t *testing.T) {
		_, err := Read(Sources{Shape: bytes.NewReader(shp)}, DefaultParseOptions())
		requireRecord(t, err, 1)
	})

	// A declared file length as large as the record leaves only the bytes
	// actually present to stop the read.
	huge := bytes.Clone(file.Shp())
	binary.BigEndian.PutUint32(huge[24:28], 0x7FFFFFFF)
	binary.BigEndian.PutUint32(huge[HeaderLength+4:HeaderLength+8], 0x10000000)

	t.Run("stream with oversized declared length", func(t *testing.T) {
		_, err := Read(Sources{Shape: bytes.NewReader(huge)}, DefaultParseOptions())
		requireRecord(t, err, 1)
	})

	t.Run("scan past source size", func(t *testing.T) {
		f, err := Open(RandomAccessSources{Shape: bytes.NewReader(huge), ShapeSize: int64(len(huge))}, DefaultParseOptions())
		require.NoError(t, err)
		err = f.Load()
		requireRecord(t, err, 1)
		var e *ErrTruncated
		require.True(t, errors.As(err, &e))
		assert.Equal(t, len(huge), e.Got)
	})

	t.Run("index entry past source size", func(t *testing.T) {
		good := file.Shp()
		shx := file.Shx()
		// length of entry 2
		binary.BigEndian.PutUint32(shx[HeaderLength+12:HeaderLength+16], 0x7FFFFFFF)
		f, err := Open(RandomAccessSources{
			Shape: bytes.NewReader(good), ShapeSize: int64(len(good)),
			Index: bytes.NewReader(shx), IndexSize: int64(len(shx)),
		}, DefaultParseOptions())
		require.NoError(t, err)
		err = f.Load()
		requireRecord(t, err, 2)
		var e *ErrTruncated
		require.True(t, errors.As(err, &e))
		assert.Equal(t, len(good), e.Got)
	})
}

func TestOversizedFileLengthReservation(t *testing.T) {
	header := (&shptest.File{Type: shptest.Polygon}).Shp()
	binary.BigEndian.PutUint32(header[24:28], 0x7FFFFFFF)

	f, err := Read(Sources{Shape: bytes.NewReader(header)}, DefaultParseOptions())
	require.NoError(t, err)
	assert.Empty(t, f.Records)
	assert.LessOrEqual(t, cap(f.Store.coords), maxStreamReserve*f.Store.dims)

	f, err = Open(RandomAccessSources{Shape: bytes.NewReader(header), ShapeSize: int64(len(header))}, DefaultParseOptions())
	require.NoError(t, err)
	assert.Zero(t, cap(f.Store.coords))
}
