// Package metrics exposes Prometheus counters for statement uploads.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Upload outcomes.
const (
	OutcomeOK            = "ok"
	OutcomeEmpty         = "empty"
	OutcomeMalformed     = "malformed_input"
	OutcomeMissingColumn = "missing_column"
	OutcomeError         = "error"
)

type Metrics struct {
	registry    *prometheus.Registry
	uploads     *prometheus.CounterVec
	rowsDropped *prometheus.CounterVec
	ledgerRows  prometheus.Histogram
}

// New registers the collectors on a dedicated registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		uploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "uft_uploads_total",
			Help: "Statement uploads processed, by source format and outcome.",
		}, []string{"format", "outcome"}),
		rowsDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "uft_rows_dropped_total",
			Help: "Statement rows excluded from the ledger, by reason.",
		}, []string{"reason"}),
		ledgerRows: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "uft_ledger_rows",
			Help:    "Transactions kept per uploaded statement.",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		}),
	}
	m.registry.MustRegister(
		m.uploads,
		m.rowsDropped,
		m.ledgerRows,
		collectors.NewGoCollector(),
	)
	return m
}

// Upload counts one processed upload.
func (m *Metrics) Upload(format, outcome string) {
	if m == nil {
		return
	}
	m.uploads.WithLabelValues(format, outcome).Inc()
}

// RowsDropped adds n excluded rows for reason.
func (m *Metrics) RowsDropped(reason string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.rowsDropped.WithLabelValues(reason).Add(float64(n))
}

// LedgerRows observes the size of a built ledger.
func (m *Metrics) LedgerRows(n int) {
	if m == nil {
		return
	}
	m.ledgerRows.Observe(float64(n))
}

// Registry returns the underlying registry, or nil.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
