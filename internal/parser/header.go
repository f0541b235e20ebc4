package parser

import (
	"encoding/binary"
	"io"
)

const (
	// HeaderLength is the fixed size of .shp and .shx headers
	HeaderLength = 100

	// FileCode is the big-endian magic at offset 0 of .shp and .shx files
	FileCode = 0x0000270A

	recordHeaderLength = 8
)

// Header is the fixed 100-byte prefix shared by geometry and index files.
type Header struct {
	FileCode   uint32
	FileLength int // bytes, including this header
	Version    int32
	ShapeType  ShapeType
	Bounds     Rectangle
	ZRange     [2]float64
	MRange     [2]float64
}

// DecodeHeader reads exactly HeaderLength bytes from r.
func DecodeHeader(r io.Reader) (Header, error) {
	var buf [HeaderLength]byte
	if err := readFull(r, buf[:], StageHeader); err != nil {
		return Header{}, err
	}
	return decodeHeader(buf[:], StageHeader)
}

// decodeHeader interprets the header bytes.
//
// Layout (byte offsets):
//
//	0   int32 BE  file code 0x270A
//	4   5×int32 BE unused
//	24  int32 BE  file length in 16-bit words
//	28  int32 LE  version
//	32  int32 LE  shape type
//	36  4×float64 LE  minX, minY, maxX, maxY
//	68  4×float64 LE  minZ, maxZ, minM, maxM
func decodeHeader(buf []byte, stage Stage) (Header, error) {
	var h Header

	h.FileCode = binary.BigEndian.Uint32(buf[0:4])
	if h.FileCode != FileCode {
		return Header{}, &ErrBadMagic{Stage: stage, Got: h.FileCode}
	}

	// Bytes 4-23 are unused big-endian words
	h.FileLength = int(binary.BigEndian.Uint32(buf[24:28])) * 2

	h.Version = int32(binary.LittleEndian.Uint32(buf[28:32]))

	shapeType, err := ShapeTypeFromCode(int32(binary.LittleEndian.Uint32(buf[32:36])))
	if err != nil {
		return Header{}, err
	}
	h.ShapeType = shapeType

	h.Bounds = Rectangle{
		MinX: float64LE(buf[36:44]),
		MinY: float64LE(buf[44:52]),
		MaxX: float64LE(buf[52:60]),
		MaxY: float64LE(buf[60:68]),
	}
	h.ZRange = [2]float64{float64LE(buf[68:76]), float64LE(buf[76:84])}
	h.MRange = [2]float64{float64LE(buf[84:92]), float64LE(buf[92:100])}

	return h, nil
}
