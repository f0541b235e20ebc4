package parser

import (
	"bytes"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"
	"golang.org/x/text/encoding"
)

// Row is one decoded attribute record. A field that was empty or failed to
// convert has no key in Values.
type Row struct {
	RecordNumber int // 1-based
	Deleted      bool
	Values       map[string]any
}

// Get returns the typed value of a field: string, int64, float64, bool or time.Time.
func (r *Row) Get(name string) (any, bool) {
	if r == nil {
		return nil, false
	}
	v, ok := r.Values[name]
	return v, ok
}

// rowDecoder converts fixed-width row bytes into Rows
type rowDecoder struct {
	schema  Schema
	decoder *encoding.Decoder
	logger  log.Logger
}

func newRowDecoder(schema Schema, enc encoding.Encoding, logger log.Logger) *rowDecoder {
	d := &rowDecoder{schema: schema, logger: logger}
	if enc != nil {
		d.decoder = enc.NewDecoder()
	}
	return d
}

// decode parses one row. data starts at the deletion flag byte.
func (d *rowDecoder) decode(data []byte, recordNumber int) Row {
	row := Row{
		RecordNumber: recordNumber,
		Values:       make(map[string]any, len(d.schema)),
	}
	if len(data) == 0 {
		return row
	}
	row.Deleted = data[0] == deletedFlag

	off := 1
	for _, field := range d.schema {
		end := off + field.Length
		if end > len(data) {
			break
		}
		raw := data[off:end]
		off = end

		value, present, err := d.convert(field, raw)
		if err != nil {
			level.Debug(d.logger).Log("msg", "attribute field left absent",
				"record", recordNumber, "field", field.Name, "err", err)
			continue
		}
		if present {
			row.Values[field.Name] = value
		}
	}
	return row
}

func (d *rowDecoder) convert(field FieldDescriptor, raw []byte) (any, bool, error) {
	if i := bytes.IndexByte(raw, 0); i >= 0 {
		raw = raw[:i]
	}
	raw = bytes.TrimSpace(raw)

	switch field.Type {
	case FieldBoolean:
		s := strings.ToUpper(string(raw))
		return s == "T" || s == "Y", true, nil

	case FieldChar:
		if d.decoder == nil {
			return string(raw), true, nil
		}
		decoded, err := d.decoder.Bytes(raw)
		if err != nil {
			return nil, false, errors.Wrap(err, "decode text")
		}
		return strings.TrimSpace(string(decoded)), true, nil

	case FieldDate:
		if len(raw) == 0 {
			return nil, false, nil
		}
		t, err := parseDate(string(raw))
		if err != nil {
			return nil, false, err
		}
		return t, true, nil

	case FieldNumber:
		if len(raw) == 0 {
			return nil, false, nil
		}
		f, err := strconv.ParseFloat(string(raw), 64)
		if err != nil {
			return nil, false, errors.Wrap(err, "parse number")
		}
		// Integers past the int64 range stay float64
		if field.Decimals == 0 && f >= math.MinInt64 && f < math.MaxInt64 {
			return int64(f), true, nil
		}
		return f, true, nil
	}
	return nil, false, errors.Errorf("unknown field type %v", field.Type)
}

// parseDate reads YYYYMMDD
func parseDate(s string) (time.Time, error) {
	if len(s) != 8 {
		return time.Time{}, errors.Errorf("date %q is not YYYYMMDD", s)
	}
	year, err := strconv.Atoi(s[0:4])
	if err != nil {
		return time.Time{}, errors.Wrap(err, "date year")
	}
	month, err := strconv.Atoi(s[4:6])
	if err != nil {
		return time.Time{}, errors.Wrap(err, "date month")
	}
	day, err := strconv.Atoi(s[6:8])
	if err != nil {
		return time.Time{}, errors.Wrap(err, "date day")
	}
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC), nil
}
