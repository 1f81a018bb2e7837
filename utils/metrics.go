package utils

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics содержит метрики приложения
type Metrics struct {
	registry *prometheus.Registry

	// Метрики запросов
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// Метрики кредитных решений
	EligibilityDecisions *prometheus.CounterVec
	CreditScores         prometheus.Histogram
	LoansCreated         prometheus.Counter

	// Метрики импорта
	IngestionRows     *prometheus.CounterVec
	IngestionDuration *prometheus.HistogramVec
	MaturedLoans      prometheus.Counter

	// Метрики ошибок
	Errors *prometheus.CounterVec
}

var (
	metrics     *Metrics
	metricsOnce sync.Once
)

// GetMetrics возвращает экземпляр метрик
func GetMetrics() *Metrics {
	metricsOnce.Do(func() {
		metrics = newMetrics(prometheus.NewRegistry())
	})
	return metrics
}

func newMetrics(reg *prometheus.Registry) *Metrics {
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		RequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "credit_http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "route", "status"}),
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "credit_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"method", "route"}),
		EligibilityDecisions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "credit_eligibility_decisions_total",
			Help: "Loan eligibility decisions by outcome",
		}, []string{"outcome"}),
		CreditScores: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "credit_score",
			Help:    "Distribution of computed credit scores",
			Buckets: []float64{10, 30, 50, 70, 90, 100},
		}),
		LoansCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "credit_loans_created_total",
			Help: "Total number of loans created through the API",
		}),
		IngestionRows: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "credit_ingestion_rows_total",
			Help: "Spreadsheet rows processed by kind and outcome",
		}, []string{"kind", "outcome"}),
		IngestionDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "credit_ingestion_duration_seconds",
			Help:    "Duration of a spreadsheet ingestion run",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
		}, []string{"kind"}),
		MaturedLoans: factory.NewCounter(prometheus.CounterOpts{
			Name: "credit_matured_loans_total",
			Help: "Loans deactivated by the maturity sweep",
		}),
		Errors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "credit_errors_total",
			Help: "Errors by operation",
		}, []string{"operation"}),
	}
}

// Handler возвращает HTTP-обработчик для /metrics
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordRequest записывает метрики запроса
func (m *Metrics) RecordRequest(method, route string, status int, duration time.Duration) {
	m.RequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.RequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordDecision записывает результат проверки кредитоспособности
func (m *Metrics) RecordDecision(approved bool, score int) {
	outcome := "rejected"
	if approved {
		outcome = "approved"
	}
	m.EligibilityDecisions.WithLabelValues(outcome).Inc()
	m.CreditScores.Observe(float64(score))
}

// RecordIngestion записывает итоги импорта одного файла
func (m *Metrics) RecordIngestion(kind string, created, updated, skipped int, duration time.Duration) {
	m.IngestionRows.WithLabelValues(kind, "created").Add(float64(created))
	m.IngestionRows.WithLabelValues(kind, "updated").Add(float64(updated))
	m.IngestionRows.WithLabelValues(kind, "skipped").Add(float64(skipped))
	m.IngestionDuration.WithLabelValues(kind).Observe(duration.Seconds())
}

// RecordError записывает метрики ошибки
func (m *Metrics) RecordError(operation string) {
	m.Errors.WithLabelValues(operation).Inc()
}
