package parser

import (
	"bytes"
	"encoding/binary"
	"io"
	"time"
)

const (
	tableHeaderLength     = 32
	fieldDescriptorLength = 32
	deletedFlag           = 0x2A
)

// FieldType is the normalized dBase column type
type FieldType int

const (
	FieldChar FieldType = iota
	FieldNumber
	FieldDate
	FieldBoolean
)

func (t FieldType) String() string {
	switch t {
	case FieldChar:
		return "Char"
	case FieldNumber:
		return "Number"
	case FieldDate:
		return "Date"
	case FieldBoolean:
		return "Boolean"
	default:
		return "Unknown"
	}
}

// fieldTypeFromChar maps the descriptor type byte. F (float) shares Number.
func fieldTypeFromChar(c byte) (FieldType, bool) {
	switch c {
	case 'C':
		return FieldChar, true
	case 'D':
		return FieldDate, true
	case 'F', 'N':
		return FieldNumber, true
	case 'L':
		return FieldBoolean, true
	}
	return 0, false
}

// FieldDescriptor describes one fixed-width column
type FieldDescriptor struct {
	Name     string
	Type     FieldType
	Length   int
	Decimals int
}

// Schema is the ordered column list. Names are used as row keys; when a name
// repeats, the later column wins.
type Schema []FieldDescriptor

// Lookup returns the first descriptor with the given name
func (s Schema) Lookup(name string) (FieldDescriptor, bool) {
	for _, f := range s {
		if f.Name == name {
			return f, true
		}
	}
	return FieldDescriptor{}, false
}

// Names returns the column names in order
func (s Schema) Names() []string {
	names := make([]string, len(s))
	for i, f := range s {
		names[i] = f.Name
	}
	return names
}

// TableHeader is the fixed 32-byte dBase header
type TableHeader struct {
	FileCode       int8
	LastModified   time.Time
	RecordCount    int
	HeaderLength   int
	RecordLength   int
	LanguageDriver byte
}

// DecodeTableHeader reads the fixed header and the field descriptors,
// consuming exactly HeaderLength bytes from r.
//
// Layout of the fixed part (byte offsets, little-endian):
//
//	0   uint8   file code (signed value must be <= 5)
//	1   3×uint8 last update yy mm dd, year = 1900+yy
//	4   uint32  record count
//	8   int16   header length
//	10  int16   record length
//	29  uint8   language driver id
func DecodeTableHeader(r io.Reader) (TableHeader, Schema, error) {
	var buf [tableHeaderLength]byte
	if err := readFull(r, buf[:], StageAttributes); err != nil {
		return TableHeader{}, nil, err
	}

	var h TableHeader
	h.FileCode = int8(buf[0])
	if h.FileCode > 5 {
		return TableHeader{}, nil, &ErrBadMagic{Stage: StageAttributes, Got: uint32(buf[0])}
	}

	yy, mm, dd := int(buf[1]), int(buf[2]), int(buf[3])
	h.LastModified = time.Date(1900+yy, time.Month(mm), dd, 0, 0, 0, 0, time.UTC)
	h.RecordCount = int(binary.LittleEndian.Uint32(buf[4:8]))
	h.HeaderLength = int(int16(binary.LittleEndian.Uint16(buf[8:10])))
	h.RecordLength = int(int16(binary.LittleEndian.Uint16(buf[10:12])))
	h.LanguageDriver = buf[29]

	rest := h.HeaderLength - tableHeaderLength
	if rest < 0 {
		return TableHeader{}, nil, &ErrTruncated{Stage: StageAttributes, Want: tableHeaderLength, Got: h.HeaderLength}
	}
	descriptors := make([]byte, rest)
	if err := readFull(r, descriptors, StageAttributes); err != nil {
		return TableHeader{}, nil, err
	}

	schema, err := decodeFieldDescriptors(descriptors, h.HeaderLength)
	if err != nil {
		return TableHeader{}, nil, err
	}
	return h, schema, nil
}

// decodeFieldDescriptors reads (headerLength-1-32)/32 descriptors.
//
// Descriptor layout: 11-byte name, 1-byte type, 4 skipped bytes,
// uint8 length, uint8 decimal count, 14 reserved bytes.
func decodeFieldDescriptors(data []byte, headerLength int) (Schema, error) {
	n := (headerLength - 1 - tableHeaderLength) / fieldDescriptorLength
	if n <= 0 {
		return Schema{}, nil
	}

	schema := make(Schema, 0, n)
	for i := 0; i < n; i++ {
		d := data[i*fieldDescriptorLength : (i+1)*fieldDescriptorLength]

		name := fieldName(d[0:11])
		ft, ok := fieldTypeFromChar(d[11])
		if !ok {
			return nil, &ErrUnsupportedFieldType{Field: name, Type: d[11]}
		}

		schema = append(schema, FieldDescriptor{
			Name:     name,
			Type:     ft,
			Length:   int(d[16]),
			Decimals: int(d[17]),
		})
	}
	return schema, nil
}

// fieldName cuts the name at the first zero or space byte
func fieldName(b []byte) string {
	if i := bytes.IndexAny(b, "\x00 "); i >= 0 {
		b = b[:i]
	}
	return string(b)
}
