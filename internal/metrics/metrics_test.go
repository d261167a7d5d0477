package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	m := New()
	m.Upload("csv", OutcomeOK)
	m.Upload("csv", OutcomeOK)
	m.Upload("pdf", OutcomeMalformed)
	m.RowsDropped("bad_date", 3)
	m.RowsDropped("bad_date", 0)
	m.LedgerRows(12)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.uploads.WithLabelValues("csv", OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.uploads.WithLabelValues("pdf", OutcomeMalformed)))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.rowsDropped.WithLabelValues("bad_date")))
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.Upload("csv", OutcomeOK)
		m.RowsDropped("bad_date", 1)
		m.LedgerRows(1)
	})
	assert.Nil(t, m.Registry())

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.Upload("xlsx", OutcomeEmpty)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `uft_uploads_total{format="xlsx",outcome="empty"} 1`)
}
