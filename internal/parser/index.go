package parser

import (
	"encoding/binary"
	"io"
)

// IndexEntry locates one record in the geometry file.
// Offset points at the record header; Length is the content length in bytes.
type IndexEntry struct {
	Offset int64
	Length int
}

// IndexTable is the ordered list of entries, one per record
type IndexTable []IndexEntry

// DecodeIndex reads an .shx stream: the shared 100-byte header followed by
// (FileLength-100)/8 big-endian (offset, length) word pairs.
func DecodeIndex(r io.Reader) (Header, IndexTable, error) {
	var buf [HeaderLength]byte
	if err := readFull(r, buf[:], StageIndex); err != nil {
		return Header{}, nil, err
	}
	h, err := decodeHeader(buf[:], StageIndex)
	if err != nil {
		return Header{}, nil, err
	}

	n := (h.FileLength - HeaderLength) / 8
	if n <= 0 {
		return h, IndexTable{}, nil
	}

	data, err := readGrowing(r, nil, n*8, StageIndex)
	if err != nil {
		return Header{}, nil, err
	}

	table := make(IndexTable, n)
	for i := range table {
		off := i * 8
		table[i] = IndexEntry{
			Offset: int64(binary.BigEndian.Uint32(data[off:off+4])) * 2,
			Length: int(binary.BigEndian.Uint32(data[off+4:off+8])) * 2,
		}
	}
	return h, table, nil
}
