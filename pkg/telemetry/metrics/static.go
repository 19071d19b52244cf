package metrics

import (
	"time"

	"mercator-hq/harbor/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// StaticMetrics tracks metrics related to file serving.
//
// Metrics:
//   - harbor_static_requests_total: request count by result
//   - harbor_static_bytes_served_total: bytes written to clients
//   - harbor_static_request_duration_seconds: request duration histogram
type StaticMetrics struct {
	requestsTotal   *prometheus.CounterVec
	bytesServed     prometheus.Counter
	requestDuration prometheus.Histogram
}

// NewStaticMetrics creates and registers static file metrics with the provided registry.
func NewStaticMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *StaticMetrics {
	sm := &StaticMetrics{
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: "static",
				Name:      "requests_total",
				Help:      "Total number of static file requests by result",
			},
			[]string{"result"},
		),

		bytesServed: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: "static",
				Name:      "bytes_served_total",
				Help:      "Total number of response body bytes written",
			},
		),

		requestDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: "static",
				Name:      "request_duration_seconds",
				Help:      "Duration of static file requests in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 9), // 0.5ms to ~33s
			},
		),
	}

	registry.MustRegister(
		sm.requestsTotal,
		sm.bytesServed,
		sm.requestDuration,
	)

	return sm
}

// ObserveRequest records one completed request.
func (sm *StaticMetrics) ObserveRequest(result string, bytes int64, duration time.Duration) {
	sm.requestsTotal.WithLabelValues(result).Inc()
	if bytes > 0 {
		sm.bytesServed.Add(float64(bytes))
	}
	sm.requestDuration.Observe(duration.Seconds())
}
