package utils

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsRecorders(t *testing.T) {
	m := newMetrics(prometheus.NewRegistry())

	m.RecordRequest(http.MethodPost, "/create-loan", http.StatusCreated, 20*time.Millisecond)
	m.RecordRequest(http.MethodPost, "/create-loan", http.StatusCreated, 30*time.Millisecond)
	assert.Equal(t, 2.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("POST", "/create-loan", "201")))

	m.RecordDecision(true, 80)
	m.RecordDecision(false, 5)
	m.RecordDecision(false, 0)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EligibilityDecisions.WithLabelValues("approved")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.EligibilityDecisions.WithLabelValues("rejected")))

	m.RecordIngestion("loans", 3, 1, 2, time.Second)
	assert.Equal(t, 3.0, testutil.ToFloat64(m.IngestionRows.WithLabelValues("loans", "created")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.IngestionRows.WithLabelValues("loans", "skipped")))

	m.RecordError("create_loan")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Errors.WithLabelValues("create_loan")))
}

func TestMetricsHandler(t *testing.T) {
	m := GetMetrics()
	assert.Same(t, m, GetMetrics())
	m.LoansCreated.Inc()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "credit_loans_created_total")
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}
