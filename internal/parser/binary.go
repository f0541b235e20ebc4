package parser

import (
	"encoding/binary"
	"io"
	"math"
	"slices"

	"github.com/pkg/errors"
)

// readFull fills buf from r, mapping short reads to ErrTruncated for the given stage.
func readFull(r io.Reader, buf []byte, stage Stage) error {
	n, err := io.ReadFull(r, buf)
	if err == nil {
		return nil
	}
	if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
		return &ErrTruncated{Stage: stage, Want: len(buf), Got: n}
	}
	return &ErrSourceUnavailable{Source: string(stage), Err: err}
}

// maxChunk bounds how far a buffer sized from a length field may grow ahead
// of the bytes actually received.
const maxChunk = 1 << 20

// readGrowing reads n bytes, reusing buf's backing array. The buffer grows a
// chunk at a time, so a corrupt length costs at most one chunk past the end
// of the source before it is reported as ErrTruncated.
func readGrowing(r io.Reader, buf []byte, n int, stage Stage) ([]byte, error) {
	buf = buf[:0]
	for len(buf) < n {
		step := min(n-len(buf), maxChunk)
		buf = slices.Grow(buf, step)
		got, err := io.ReadFull(r, buf[len(buf):len(buf)+step])
		buf = buf[:len(buf)+got]
		if err != nil {
			if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
				return nil, &ErrTruncated{Stage: stage, Want: n, Got: len(buf)}
			}
			return nil, &ErrSourceUnavailable{Source: string(stage), Err: err}
		}
	}
	return buf, nil
}

// cursor walks a record's content bytes. Every read names its byte order;
// record payloads are little-endian throughout.
type cursor struct {
	data []byte
	off  int
}

func (c *cursor) remaining() int {
	return len(c.data) - c.off
}

func (c *cursor) has(n int) bool {
	return n >= 0 && c.remaining() >= n
}

func (c *cursor) int32LE() int32 {
	v := int32(binary.LittleEndian.Uint32(c.data[c.off : c.off+4]))
	c.off += 4
	return v
}

func (c *cursor) float64LE() float64 {
	v := math.Float64frombits(binary.LittleEndian.Uint64(c.data[c.off : c.off+8]))
	c.off += 8
	return v
}

// rectangleLE reads minX, minY, maxX, maxY
func (c *cursor) rectangleLE() Rectangle {
	return Rectangle{
		MinX: c.float64LE(),
		MinY: c.float64LE(),
		MaxX: c.float64LE(),
		MaxY: c.float64LE(),
	}
}

func (c *cursor) rangeLE() [2]float64 {
	return [2]float64{c.float64LE(), c.float64LE()}
}

func float64LE(b []byte) float64 {
	return math.Float64frombits(binary.LittleEndian.Uint64(b))
}
