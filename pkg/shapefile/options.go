package shapefile

import (
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"golang.org/x/text/encoding"

	"github.com/beetlebugorg/shapefile/internal/parser"
)

// ParseOptions configures parsing behavior.
type ParseOptions struct {
	// Logger receives join warnings and debug events.
	// Default: no-op logger
	Logger log.Logger

	// Projector resolves the projection parameters of a file (its .prj
	// contents). When it recognizes them, every coordinate and bounding
	// rectangle is converted to geographic degrees as it is read.
	Projector Projector

	// Encoding decodes Char attributes. It takes precedence over a .cpg
	// sibling and the table's language driver byte; UTF-8 is the fallback.
	Encoding encoding.Encoding

	// AcceptRecord, if set, keeps only records for which it returns true.
	AcceptRecord func(*Record) bool

	// Normalize wraps longitudes into [-180, 180] when the file bounds cross
	// the antimeridian.
	// Default: true
	Normalize bool

	// Metrics, if set, counts parses, records, failures and cache lookups.
	Metrics *Metrics
}

// DefaultParseOptions returns default options.
func DefaultParseOptions() ParseOptions {
	return ParseOptions{
		Logger:    log.NewNopLogger(),
		Normalize: true,
	}
}

// internal resolves the public options against the per-file inputs: the
// projection parameters and the .cpg contents.
func (o ParseOptions) internal(projectionParams []byte, codePage string) parser.ParseOptions {
	logger := o.Logger
	if logger == nil {
		logger = log.NewNopLogger()
	}

	opts := parser.ParseOptions{
		Logger:    logger,
		Encoding:  o.Encoding,
		Normalize: o.Normalize,
		Metrics:   o.Metrics,
	}

	if opts.Encoding == nil && codePage != "" {
		enc, err := parser.CodePageEncoding(codePage)
		if err != nil {
			level.Warn(logger).Log("msg", "ignoring unknown code page", "code_page", codePage, "err", err)
		} else {
			opts.Encoding = enc
		}
	}

	if len(projectionParams) > 0 {
		if o.Projector == nil {
			level.Debug(logger).Log("msg", "projection parameters present but no projector configured")
		} else if p, ok := o.Projector.Projection(projectionParams); ok {
			opts.Projection = p
		} else {
			level.Debug(logger).Log("msg", "projection parameters not recognized, coordinates left unchanged")
		}
	}

	if accept := o.AcceptRecord; accept != nil {
		opts.AcceptRecord = func(r *parser.Record) bool {
			return accept(&Record{r: r})
		}
	}
	return opts
}
