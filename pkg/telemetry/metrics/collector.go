package metrics

import (
	"time"

	"mercator-hq/harbor/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Collector groups every harbor metric behind one registry.
//
// A collector built from a disabled MetricsConfig accepts every call and
// records nothing, so callers never need to nil-check it.
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	staticMetrics *StaticMetrics
	serverMetrics *ServerMetrics
}

// NewCollector creates a collector registering into registry. A nil
// registry gets a fresh private one carrying the Go and process collectors.
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	if cfg.Namespace == "" {
		cfg.Namespace = config.DefaultMetricsNamespace
	}

	return &Collector{
		config:        cfg,
		registry:      registry,
		staticMetrics: NewStaticMetrics(cfg, registry),
		serverMetrics: NewServerMetrics(cfg, registry),
	}
}

// Registry returns the registry the collector registers into.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// ObserveRequest records a completed static file request.
//
// Parameters:
//   - result: request outcome ("ok", "not_found", "forbidden", ...)
//   - bytes: response body bytes written
//   - duration: time spent serving the request
func (c *Collector) ObserveRequest(result string, bytes int64, duration time.Duration) {
	if !c.config.Enabled {
		return
	}

	c.staticMetrics.ObserveRequest(result, bytes, duration)
}

// SetServerState marks state as the current server lifecycle state.
func (c *Collector) SetServerState(state string) {
	if !c.config.Enabled {
		return
	}

	c.serverMetrics.SetState(state)
}

// SetCertificateExpiry records the remaining validity of the served
// certificate. Negative values mean the certificate has expired.
func (c *Collector) SetCertificateExpiry(remaining time.Duration) {
	if !c.config.Enabled {
		return
	}

	c.serverMetrics.SetCertificateExpiry(remaining)
}

// ObserveCertificateChange records the outcome of a certificate file
// check: CertificateChanged, CertificateInvalid or CertificateUnchanged.
func (c *Collector) ObserveCertificateChange(outcome string) {
	if !c.config.Enabled {
		return
	}

	c.serverMetrics.ObserveCertificateChange(outcome)
}
