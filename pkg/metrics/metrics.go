package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all application metrics
type Metrics struct {
	// Gateway operations, labelled by operation name and envelope code.
	Operations       *prometheus.CounterVec
	OperationLatency *prometheus.HistogramVec

	// Remote backend traffic
	BackendRequests *prometheus.CounterVec
	BackendLatency  *prometheus.HistogramVec
	BreakerState    *prometheus.GaugeVec

	// Lookup caches
	CacheHits   *prometheus.CounterVec
	CacheMisses *prometheus.CounterVec

	// Emulated backend HTTP surface
	HTTPRequests *prometheus.CounterVec
	HTTPLatency  *prometheus.HistogramVec
}

// NewMetrics creates all metrics and registers them with reg. A nil reg
// uses a private registry so repeated construction in tests never panics.
func NewMetrics(reg prometheus.Registerer, namespace, subsystem string) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	f := promauto.With(reg)
	return &Metrics{
		Operations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "operations_total",
			Help:      "Total number of gateway operations by result code",
		}, []string{"operation", "code"}),
		OperationLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "operation_duration_seconds",
			Help:      "Duration of gateway operations",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		}, []string{"operation"}),

		BackendRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "backend_requests_total",
			Help:      "Total number of requests sent to the remote backend",
		}, []string{"method", "status"}),
		BackendLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "backend_request_duration_seconds",
			Help:      "Duration of remote backend requests",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}, []string{"method"}),
		BreakerState: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "circuit_breaker_open",
			Help:      "1 while the named circuit breaker is open",
		}, []string{"name"}),

		CacheHits: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "cache_hits_total",
			Help:      "Total number of cache hits",
		}, []string{"cache"}),
		CacheMisses: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "cache_misses_total",
			Help:      "Total number of cache misses",
		}, []string{"cache"}),

		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests served",
		}, []string{"method", "path", "status"}),
		HTTPLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of served HTTP requests",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path"}),
	}
}

func (m *Metrics) ObserveOperation(op string, code int, d time.Duration) {
	m.Operations.WithLabelValues(op, strconv.Itoa(code)).Inc()
	m.OperationLatency.WithLabelValues(op).Observe(d.Seconds())
}

func (m *Metrics) ObserveBackend(method string, status int, d time.Duration) {
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	m.BackendRequests.WithLabelValues(method, label).Inc()
	m.BackendLatency.WithLabelValues(method).Observe(d.Seconds())
}

func (m *Metrics) SetBreakerOpen(name string, open bool) {
	v := 0.0
	if open {
		v = 1
	}
	m.BreakerState.WithLabelValues(name).Set(v)
}

func (m *Metrics) CacheLookup(cache string, hit bool) {
	if hit {
		m.CacheHits.WithLabelValues(cache).Inc()
		return
	}
	m.CacheMisses.WithLabelValues(cache).Inc()
}
