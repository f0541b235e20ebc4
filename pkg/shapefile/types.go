package shapefile

import (
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/text/encoding"

	"github.com/beetlebugorg/shapefile/internal/parser"
)

// ShapeType is the geometry code shared by a file and its records.
type ShapeType = parser.ShapeType

const (
	ShapeNull        = parser.ShapeNull
	ShapePoint       = parser.ShapePoint
	ShapePolyline    = parser.ShapePolyline
	ShapePolygon     = parser.ShapePolygon
	ShapeMultiPoint  = parser.ShapeMultiPoint
	ShapePointZ      = parser.ShapePointZ
	ShapePolylineZ   = parser.ShapePolylineZ
	ShapePolygonZ    = parser.ShapePolygonZ
	ShapeMultiPointZ = parser.ShapeMultiPointZ
	ShapePointM      = parser.ShapePointM
	ShapePolylineM   = parser.ShapePolylineM
	ShapePolygonM    = parser.ShapePolygonM
	ShapeMultiPointM = parser.ShapeMultiPointM
)

// Rectangle is an axis-aligned bounding box in file (or projected) units.
type Rectangle = parser.Rectangle

// Header is the fixed 100-byte geometry file header.
type Header = parser.Header

type (
	IndexEntry = parser.IndexEntry
	IndexTable = parser.IndexTable
)

// Attribute table types.
type (
	FieldType       = parser.FieldType
	FieldDescriptor = parser.FieldDescriptor
	Schema          = parser.Schema
	TableHeader     = parser.TableHeader
	Row             = parser.Row
)

const (
	FieldChar    = parser.FieldChar
	FieldNumber  = parser.FieldNumber
	FieldDate    = parser.FieldDate
	FieldBoolean = parser.FieldBoolean
)

// Point store types. A PartView is a (store, offset, count) handle; two views
// are equal when they reference the same range of the same store.
type (
	Point      = parser.Point
	PointStore = parser.PointStore
	PartView   = parser.PartView
)

// Projection converts projected coordinates to geographic degrees.
type Projection = parser.Projection

// Projector turns projection parameters (the contents of a .prj file) into a
// Projection. Returning false leaves coordinates unchanged.
type Projector = parser.Projector

// ProjectionFunc adapts a plain function to Projection.
type ProjectionFunc = parser.ProjectionFunc

// ProjectorFunc adapts a plain function to Projector.
type ProjectorFunc func(params []byte) (Projection, bool)

func (f ProjectorFunc) Projection(params []byte) (Projection, bool) {
	return f(params)
}

// Errors. Use errors.As to inspect them; every failed open returns a
// *StageError wrapping one of the others.
type (
	Stage                     = parser.Stage
	StageError                = parser.StageError
	ErrBadMagic               = parser.ErrBadMagic
	ErrUnsupportedShapeType   = parser.ErrUnsupportedShapeType
	ErrUnsupportedFieldType   = parser.ErrUnsupportedFieldType
	ErrTruncated              = parser.ErrTruncated
	ErrSourceUnavailable      = parser.ErrSourceUnavailable
	ErrCorruptRecord          = parser.ErrCorruptRecord
	ErrIndexOutOfRange        = parser.ErrIndexOutOfRange
	ErrRecordNumberOutOfRange = parser.ErrRecordNumberOutOfRange
)

const (
	StageHeader     = parser.StageHeader
	StageIndex      = parser.StageIndex
	StageAttributes = parser.StageAttributes
	StageRecords    = parser.StageRecords
)

// Metrics counts decoding and cache activity. A nil *Metrics is valid and
// records nothing.
type Metrics = parser.Metrics

// NewMetrics registers the shapefile metrics with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	return parser.NewMetrics(reg)
}

// NormalizeLongitude wraps x into [-180, 180].
func NormalizeLongitude(x float64) float64 {
	return parser.NormalizeLongitude(x)
}

// CodePageEncoding resolves a code page name, as found in a .cpg file, to an
// encoding for ParseOptions.Encoding. UTF-8 resolves to nil.
func CodePageEncoding(name string) (encoding.Encoding, error) {
	return parser.CodePageEncoding(name)
}
