package tls

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// ExpiryObserver receives the remaining validity of the served certificate
// after every check.
type ExpiryObserver func(remaining time.Duration)

// MonitorConfig controls the certificate expiry monitor.
type MonitorConfig struct {
	// Schedule is a standard cron expression or descriptor ("@hourly").
	// An empty schedule disables the monitor.
	Schedule string

	// WarnWithin is the remaining validity below which a warning is logged.
	WarnWithin time.Duration
}

// ExpiryMonitor periodically checks the served certificate and logs when it
// is about to expire. It does not reload or replace the certificate.
type ExpiryMonitor struct {
	identity *Identity
	config   MonitorConfig
	observe  ExpiryObserver
	logger   *slog.Logger

	mu      sync.Mutex
	cron    *cron.Cron
	running bool
}

// NewExpiryMonitor creates an expiry monitor for id. observe may be nil.
func NewExpiryMonitor(id *Identity, cfg MonitorConfig, logger *slog.Logger, observe ExpiryObserver) *ExpiryMonitor {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExpiryMonitor{
		identity: id,
		config:   cfg,
		observe:  observe,
		logger:   logger.With("component", "tls.expiry"),
		cron:     cron.New(),
	}
}

// Start runs an initial check and schedules the following ones. The
// monitor stops when ctx is cancelled or Stop is called.
func (m *ExpiryMonitor) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return fmt.Errorf("expiry monitor already running")
	}

	if m.config.Schedule == "" {
		m.logger.Info("expiry schedule not configured, skipping monitor")
		return nil
	}

	if _, err := cron.ParseStandard(m.config.Schedule); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", m.config.Schedule, err)
	}

	if _, err := m.cron.AddFunc(m.config.Schedule, func() { m.Check() }); err != nil {
		return fmt.Errorf("failed to schedule expiry check: %w", err)
	}

	m.Check()

	m.cron.Start()
	m.running = true

	attrs := []any{
		"schedule", m.config.Schedule,
		"warn_within", m.config.WarnWithin.String(),
	}
	if next := m.nextRun(); next != nil {
		attrs = append(attrs, "next_run", next.Format(time.RFC3339))
	}
	m.logger.Info("expiry monitor started", attrs...)

	go func() {
		<-ctx.Done()
		m.Stop()
	}()

	return nil
}

// Check inspects the certificate once, logs the result and notifies the
// observer. It returns the remaining validity.
func (m *ExpiryMonitor) Check() time.Duration {
	leaf := m.identity.Leaf
	remaining, warning := CheckCertificateExpiration(leaf, m.config.WarnWithin)

	if m.observe != nil {
		m.observe(remaining)
	}

	days := int(remaining.Hours() / 24)
	switch {
	case remaining <= 0:
		m.logger.Error("certificate expired",
			"subject", leaf.Subject.CommonName,
			"expired_at", leaf.NotAfter.Format(time.RFC3339),
			"cert_file", m.identity.CertFile,
		)
	case warning != "":
		m.logger.Warn("certificate expiring soon",
			"subject", leaf.Subject.CommonName,
			"expires_in_days", days,
			"expires_at", leaf.NotAfter.Format(time.RFC3339),
			"cert_file", m.identity.CertFile,
		)
	default:
		m.logger.Debug("certificate expiry checked",
			"subject", leaf.Subject.CommonName,
			"expires_in_days", days,
		)
	}

	return remaining
}

// Stop stops the scheduler and waits for a running check to finish.
func (m *ExpiryMonitor) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running {
		return
	}
	ctx := m.cron.Stop()
	<-ctx.Done()
	m.running = false
	m.logger.Info("expiry monitor stopped")
}

// NextRun returns the next scheduled check, or nil if none is scheduled.
func (m *ExpiryMonitor) NextRun() *time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.nextRun()
}

func (m *ExpiryMonitor) nextRun() *time.Time {
	entries := m.cron.Entries()
	if !m.running || len(entries) == 0 {
		return nil
	}
	next := entries[0].Next
	return &next
}
