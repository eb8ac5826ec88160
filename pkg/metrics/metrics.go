// Package metrics exposes Prometheus instrumentation for the ingestion pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the collectors registered for the ingestion service.
type Metrics struct {
	DocumentsParsed  *prometheus.CounterVec
	RecordsExtracted *prometheus.CounterVec
	RowsSkipped      *prometheus.CounterVec
	ParseDuration    *prometheus.HistogramVec
	InsertFailures   prometheus.Counter
}

// New registers all collectors against the given registerer.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		DocumentsParsed: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "caixa_documents_parsed_total",
			Help: "Documents processed, labelled by document kind and outcome.",
		}, []string{"kind", "outcome"}),
		RecordsExtracted: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "caixa_records_extracted_total",
			Help: "Records emitted by the extractors, labelled by document kind.",
		}, []string{"kind"}),
		RowsSkipped: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "caixa_rows_skipped_total",
			Help: "Table rows discarded during extraction, labelled by document kind.",
		}, []string{"kind"}),
		ParseDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "caixa_parse_duration_seconds",
			Help:    "Wall time spent parsing a single document.",
			Buckets: prometheus.DefBuckets,
		}, []string{"kind"}),
		InsertFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "caixa_insert_failures_total",
			Help: "Batch inserts that failed entirely.",
		}),
	}
}
