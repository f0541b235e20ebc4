package parser

import (
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts decoder activity. A nil *Metrics records nothing.
type Metrics struct {
	filesParsed    *prometheus.CounterVec
	recordsDecoded *prometheus.CounterVec
	joinWarnings   prometheus.Counter
	parseFailures  *prometheus.CounterVec
	parseDuration  prometheus.Histogram
	cacheRequests  *prometheus.CounterVec
}

// NewMetrics registers the decoder metrics with reg. A nil reg creates
// unregistered collectors.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		filesParsed: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "shapefile",
			Name:      "files_parsed_total",
			Help:      "Geometry files whose records were decoded, by loading mode.",
		}, []string{"mode"}),
		recordsDecoded: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "shapefile",
			Name:      "records_decoded_total",
			Help:      "Decoded geometry records by shape type.",
		}, []string{"shape_type"}),
		joinWarnings: f.NewCounter(prometheus.CounterOpts{
			Namespace: "shapefile",
			Name:      "attribute_join_warnings_total",
			Help:      "Records produced without attributes because no row matched.",
		}),
		parseFailures: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "shapefile",
			Name:      "parse_failures_total",
			Help:      "Failed file opens by stage.",
		}, []string{"stage"}),
		parseDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: "shapefile",
			Name:      "record_decode_duration_seconds",
			Help:      "Time spent decoding all records of a file.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
		}),
		cacheRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "shapefile",
			Name:      "cache_requests_total",
			Help:      "File cache lookups by result.",
		}, []string{"result"}),
	}
}

func (m *Metrics) fileParsed(mode string) {
	if m == nil {
		return
	}
	m.filesParsed.WithLabelValues(mode).Inc()
}

func (m *Metrics) recordDecoded(t ShapeType) {
	if m == nil {
		return
	}
	m.recordsDecoded.WithLabelValues(t.String()).Inc()
}

func (m *Metrics) joinWarning() {
	if m == nil {
		return
	}
	m.joinWarnings.Inc()
}

func (m *Metrics) observeDuration(seconds float64) {
	if m == nil {
		return
	}
	m.parseDuration.Observe(seconds)
}

// ParseFailed counts err under its stage label
func (m *Metrics) ParseFailed(err error) {
	if m == nil || err == nil {
		return
	}
	stage := "unknown"
	var se *StageError
	if errors.As(err, &se) {
		stage = string(se.Stage)
	}
	m.parseFailures.WithLabelValues(stage).Inc()
}

// CacheLookup counts a cache hit or miss
func (m *Metrics) CacheLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheRequests.WithLabelValues(result).Inc()
}
