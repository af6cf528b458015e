package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	HTTPRequestsActive  prometheus.Gauge

	// Crawl pipeline metrics
	CrawlJobsTotal       *prometheus.CounterVec
	CrawlDuration        prometheus.Histogram
	PagesFetchedTotal    *prometheus.CounterVec
	FetchDuration        prometheus.Histogram
	ChangesDetectedTotal *prometheus.CounterVec
	SnapshotsStoredTotal prometheus.Counter

	// Analyzer metrics
	ReportsGeneratedTotal *prometheus.CounterVec
}

// NewMetrics creates a new metrics instance with all Prometheus metrics registered
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "rivalscope"
	}

	return &Metrics{
		HTTPRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		HTTPRequestsActive: promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "http_requests_active",
				Help:      "Number of active HTTP requests",
			},
		),

		CrawlJobsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "crawl_jobs_total",
				Help:      "Total number of crawl jobs by terminal status",
			},
			[]string{"status"},
		),
		CrawlDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "crawl_duration_seconds",
				Help:      "End-to-end crawl job duration in seconds",
				Buckets:   []float64{10, 30, 60, 120, 300, 600, 1200},
			},
		),
		PagesFetchedTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "pages_fetched_total",
				Help:      "Total number of page fetch outcomes",
			},
			[]string{"result"},
		),
		FetchDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "fetch_duration_seconds",
				Help:      "Single page fetch duration in seconds",
				Buckets:   []float64{1, 2, 5, 10, 20, 30, 60},
			},
		),
		ChangesDetectedTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "changes_detected_total",
				Help:      "Total number of detected changes by impact",
			},
			[]string{"impact"},
		),
		SnapshotsStoredTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "snapshots_stored_total",
				Help:      "Total number of snapshots persisted",
			},
		),

		ReportsGeneratedTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "reports_generated_total",
				Help:      "Total number of analyzer outputs by kind",
			},
			[]string{"kind"},
		),
	}
}

// Handler returns the Prometheus HTTP handler
func (m *Metrics) Handler() http.Handler {
	return promhttp.Handler()
}

// RecordHTTPRequest records HTTP request metrics
func (m *Metrics) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// HTTPMiddleware returns middleware for recording HTTP metrics
func (m *Metrics) HTTPMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.HTTPRequestsActive.Inc()
		defer m.HTTPRequestsActive.Dec()

		start := time.Now()

		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		m.RecordHTTPRequest(r.Method, r.URL.Path, wrapped.statusCode, time.Since(start))
	})
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
