package parser

import (
	"fmt"

	"github.com/pkg/errors"
)

// Stage names the part of a file open that failed.
type Stage string

const (
	StageHeader     Stage = "header"
	StageIndex      Stage = "index"
	StageAttributes Stage = "attributes"
	StageRecords    Stage = "record"
)

// ErrBadMagic indicates the leading file code does not identify the expected format
type ErrBadMagic struct {
	Stage Stage
	Got   uint32
}

func (e *ErrBadMagic) Error() string {
	return fmt.Sprintf("bad magic in %s: 0x%08x", e.Stage, e.Got)
}

// ErrUnsupportedShapeType indicates a shape type code outside the supported table,
// or a record whose type disagrees with the file's declared type.
type ErrUnsupportedShapeType struct {
	Code     int32
	Expected ShapeType
	Mismatch bool
}

func (e *ErrUnsupportedShapeType) Error() string {
	if e.Mismatch {
		return fmt.Sprintf("record shape type %d does not match file shape type %v",
			e.Code, e.Expected)
	}
	return fmt.Sprintf("unsupported shape type: %d", e.Code)
}

// ErrUnsupportedFieldType indicates a dBase field descriptor with an unknown type char
type ErrUnsupportedFieldType struct {
	Field string
	Type  byte
}

func (e *ErrUnsupportedFieldType) Error() string {
	return fmt.Sprintf("field %q: unsupported dBase field type %q", e.Field, e.Type)
}

// ErrTruncated indicates fewer bytes were available than the format declared
type ErrTruncated struct {
	Stage Stage
	Want  int
	Got   int
}

func (e *ErrTruncated) Error() string {
	return fmt.Sprintf("truncated %s: want %d bytes, got %d", e.Stage, e.Want, e.Got)
}

// ErrSourceUnavailable indicates a byte source could not be opened or read
type ErrSourceUnavailable struct {
	Source string
	Err    error
}

func (e *ErrSourceUnavailable) Error() string {
	return fmt.Sprintf("source %s unavailable: %v", e.Source, e.Err)
}

func (e *ErrSourceUnavailable) Unwrap() error {
	return e.Err
}

// ErrCorruptRecord indicates a record whose counts or part indices contradict its length
type ErrCorruptRecord struct {
	RecordNumber int
	Reason       string
}

func (e *ErrCorruptRecord) Error() string {
	return fmt.Sprintf("corrupt record %d: %s", e.RecordNumber, e.Reason)
}

// ErrIndexOutOfRange is returned by part and record accessors.
// It never invalidates the parsed file.
type ErrIndexOutOfRange struct {
	What  string
	Index int
	Len   int
}

func (e *ErrIndexOutOfRange) Error() string {
	return fmt.Sprintf("%s index %d out of range [0,%d)", e.What, e.Index, e.Len)
}

// ErrRecordNumberOutOfRange is collected as a warning when a geometry record
// has no attribute row with the same ordinal.
type ErrRecordNumberOutOfRange struct {
	RecordNumber int
	Rows         int
}

func (e *ErrRecordNumberOutOfRange) Error() string {
	return fmt.Sprintf("record %d has no attribute row (table has %d rows)",
		e.RecordNumber, e.Rows)
}

// StageError is the single terminal error of a failed file open
type StageError struct {
	Stage        Stage
	RecordNumber int
	Err          error
}

func (e *StageError) Error() string {
	if e.Stage == StageRecords && e.RecordNumber > 0 {
		return fmt.Sprintf("%s %d: %v", e.Stage, e.RecordNumber, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

func stageError(stage Stage, record int, err error) error {
	if err == nil {
		return nil
	}
	var se *StageError
	if errors.As(err, &se) {
		return err
	}
	return &StageError{Stage: stage, RecordNumber: record, Err: err}
}
