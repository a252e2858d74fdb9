// Package metrics provides Prometheus metrics for the tally record store.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns the metric set. A default manager registered against the
// default Prometheus registry is created at init; tests can build their
// own against a private registry.
type Manager struct {
	namespace string
	registry  prometheus.Registerer

	// Backend health
	backendCalls   *prometheus.CounterVec
	backendRetries *prometheus.CounterVec
	headerRepairs  *prometheus.CounterVec

	// Fallback engagement
	fallbackEngaged *prometheus.CounterVec
	fallbackActive  prometheus.Gauge

	// Store throughput
	storeOps      *prometheus.CounterVec
	recordsLoaded prometheus.Gauge

	// HTTP surface
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

var defaultManager *Manager

func init() { //nolint:gochecknoinits // global metrics setup mirrors the registry lifetime
	defaultManager = NewManager()
}

// NewManager builds a metric set using the provided options.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace: "tally",
		registry:  prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initialize()
	return m
}

func (m *Manager) initialize() {
	factory := promauto.With(m.registry)

	m.backendCalls = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "backend_calls_total",
		Help:      "Remote spreadsheet calls by operation and outcome.",
	}, []string{"op", "outcome"})

	m.backendRetries = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "backend_retries_total",
		Help:      "Retries of transient backend failures by operation.",
	}, []string{"op"})

	m.headerRepairs = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "header_repairs_total",
		Help:      "Worksheet header rows rewritten by the provisioner.",
	}, []string{"sheet"})

	m.fallbackEngaged = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "fallback_engaged_total",
		Help:      "Operations redirected to the local fallback store.",
	}, []string{"op"})

	m.fallbackActive = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Name:      "fallback_active",
		Help:      "1 while the session is pinned to the local fallback store.",
	})

	m.storeOps = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "store_operations_total",
		Help:      "Completed store operations by kind and serving store.",
	}, []string{"op", "store"})

	m.recordsLoaded = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Name:      "records_loaded",
		Help:      "Row count returned by the most recent full record load.",
	})

	m.httpRequests = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests by endpoint, method and status.",
	}, []string{"endpoint", "method", "status"})

	m.httpRequestDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Name:      "http_request_duration_ms",
		Help:      "HTTP request latency in milliseconds.",
		Buckets:   []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500},
	}, []string{"endpoint", "method", "status"})
}

// Package-level helpers against the default manager.

// RecordBackendCall counts one remote call with its outcome ("ok",
// "transient", "permanent").
func RecordBackendCall(op, outcome string) {
	defaultManager.backendCalls.WithLabelValues(op, outcome).Inc()
}

// RecordBackendRetry counts one retry of a transient failure.
func RecordBackendRetry(op string) {
	defaultManager.backendRetries.WithLabelValues(op).Inc()
}

// RecordHeaderRepair counts one header rewrite on the named sheet.
func RecordHeaderRepair(sheet string) {
	defaultManager.headerRepairs.WithLabelValues(sheet).Inc()
}

// RecordFallbackEngaged counts one operation redirected to the fallback.
func RecordFallbackEngaged(op string) {
	defaultManager.fallbackEngaged.WithLabelValues(op).Inc()
}

// SetFallbackActive flags whether the session is pinned to the fallback.
func SetFallbackActive(active bool) {
	if active {
		defaultManager.fallbackActive.Set(1)
		return
	}
	defaultManager.fallbackActive.Set(0)
}

// RecordStoreOp counts one completed store operation.
func RecordStoreOp(op, store string) {
	defaultManager.storeOps.WithLabelValues(op, store).Inc()
}

// SetRecordsLoaded publishes the size of the latest full record load.
func SetRecordsLoaded(n int) {
	defaultManager.recordsLoaded.Set(float64(n))
}

// RecordHTTPRequest counts one handled HTTP request.
func RecordHTTPRequest(endpoint, method, status string) {
	defaultManager.httpRequests.WithLabelValues(endpoint, method, status).Inc()
}

// RecordHTTPRequestDuration observes one HTTP request latency.
func RecordHTTPRequestDuration(endpoint, method, status string, ms float64) {
	defaultManager.httpRequestDuration.WithLabelValues(endpoint, method, status).Observe(ms)
}
