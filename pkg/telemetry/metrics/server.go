package metrics

import (
	"sync"
	"time"

	"mercator-hq/harbor/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// ServerStates lists the lifecycle states exported by harbor_server_state.
var ServerStates = []string{"starting", "serving", "shutting_down", "stopped"}

// ServerMetrics tracks server lifecycle and TLS identity metrics.
//
// Metrics:
//   - harbor_server_state: one series per lifecycle state, 1 for the current one
//   - harbor_tls_certificate_expiry_seconds: seconds until the certificate expires
//   - harbor_tls_certificate_restart_pending: 1 when a different valid pair is on disk
//   - harbor_tls_certificate_file_changes_total: certificate file checks by outcome
type ServerMetrics struct {
	mu    sync.Mutex
	state *prometheus.GaugeVec

	certificateExpiry  prometheus.Gauge
	restartPending     prometheus.Gauge
	certificateChanges *prometheus.CounterVec
}

// NewServerMetrics creates and registers server metrics with the provided registry.
func NewServerMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *ServerMetrics {
	sm := &ServerMetrics{
		state: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: "server",
				Name:      "state",
				Help:      "Current server lifecycle state (1 for the active state)",
			},
			[]string{"state"},
		),

		certificateExpiry: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: "tls",
				Name:      "certificate_expiry_seconds",
				Help:      "Seconds until the served certificate expires (negative when expired)",
			},
		),

		restartPending: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: "tls",
				Name:      "certificate_restart_pending",
				Help:      "1 when the certificate on disk differs from the served one",
			},
		),

		certificateChanges: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: "tls",
				Name:      "certificate_file_changes_total",
				Help:      "Certificate file modifications by outcome (changed, invalid, unchanged)",
			},
			[]string{"outcome"},
		),
	}

	for _, s := range ServerStates {
		sm.state.WithLabelValues(s).Set(0)
	}

	registry.MustRegister(
		sm.state,
		sm.certificateExpiry,
		sm.restartPending,
		sm.certificateChanges,
	)

	return sm
}

// SetState sets the gauge for state to 1 and every other state to 0.
func (sm *ServerMetrics) SetState(state string) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	for _, s := range ServerStates {
		sm.state.WithLabelValues(s).Set(0)
	}
	sm.state.WithLabelValues(state).Set(1)
}

// SetCertificateExpiry records the remaining certificate validity.
func (sm *ServerMetrics) SetCertificateExpiry(remaining time.Duration) {
	sm.certificateExpiry.Set(remaining.Seconds())
}

// Certificate file change outcomes.
const (
	CertificateChanged   = "changed"
	CertificateInvalid   = "invalid"
	CertificateUnchanged = "unchanged"
)

// ObserveCertificateChange counts a certificate file check and updates the
// restart-pending gauge. An invalid pair leaves the gauge untouched.
func (sm *ServerMetrics) ObserveCertificateChange(outcome string) {
	sm.certificateChanges.WithLabelValues(outcome).Inc()

	switch outcome {
	case CertificateChanged:
		sm.restartPending.Set(1)
	case CertificateUnchanged:
		sm.restartPending.Set(0)
	}
}
