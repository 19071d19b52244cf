package tls

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"mercator-hq/harbor/internal/testcerts"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestExpiryMonitor_StartRunsInitialCheck(t *testing.T) {
	id := loadTestIdentity(t)

	var observed []time.Duration
	monitor := NewExpiryMonitor(id, MonitorConfig{Schedule: "@hourly"}, discardLogger(), func(d time.Duration) {
		observed = append(observed, d)
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := monitor.Start(ctx); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	defer monitor.Stop()

	if !monitor.isRunning() {
		t.Error("monitor should be running")
	}
	if len(observed) != 1 {
		t.Fatalf("observed %d checks, want 1", len(observed))
	}
	if observed[0] <= 0 {
		t.Errorf("remaining = %v, want positive", observed[0])
	}
	if next := monitor.NextRun(); next == nil || !next.After(time.Now()) {
		t.Errorf("NextRun() = %v, want a future time", next)
	}

	if err := monitor.Start(ctx); err == nil {
		t.Error("second Start() should fail")
	}
}

func TestExpiryMonitor_EmptySchedule(t *testing.T) {
	monitor := NewExpiryMonitor(loadTestIdentity(t), MonitorConfig{}, discardLogger(), nil)

	if err := monitor.Start(context.Background()); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	if monitor.isRunning() {
		t.Error("monitor should not run without a schedule")
	}
	if monitor.NextRun() != nil {
		t.Error("NextRun() should be nil")
	}
}

func TestExpiryMonitor_InvalidSchedule(t *testing.T) {
	monitor := NewExpiryMonitor(loadTestIdentity(t), MonitorConfig{Schedule: "every tuesday"}, discardLogger(), nil)

	if err := monitor.Start(context.Background()); err == nil {
		t.Fatal("expected error for invalid schedule")
	}
}

func TestExpiryMonitor_StopsOnContextCancel(t *testing.T) {
	monitor := NewExpiryMonitor(loadTestIdentity(t), MonitorConfig{Schedule: "@every 1h"}, discardLogger(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	if err := monitor.Start(ctx); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	cancel()

	deadline := time.Now().Add(2 * time.Second)
	for monitor.isRunning() {
		if time.Now().After(deadline) {
			t.Fatal("monitor did not stop after context cancellation")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestExpiryMonitor_CheckExpiring(t *testing.T) {
	pair := testcerts.Generate(t, testcerts.Options{NotAfter: time.Now().AddDate(0, 0, 5)})
	id, err := ParseIdentity(pair.CertPEM, pair.KeyPEM)
	if err != nil {
		t.Fatalf("ParseIdentity() failed: %v", err)
	}

	monitor := NewExpiryMonitor(id, MonitorConfig{WarnWithin: 30 * 24 * time.Hour}, discardLogger(), nil)
	remaining := monitor.Check()
	if remaining > 6*24*time.Hour || remaining < 4*24*time.Hour {
		t.Errorf("remaining = %v, want about 5 days", remaining)
	}
}

func TestExpiryMonitor_LogsNextRun(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	monitor := NewExpiryMonitor(loadTestIdentity(t), MonitorConfig{Schedule: "@hourly"}, logger, nil)

	if err := monitor.Start(context.Background()); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	defer monitor.Stop()

	out := buf.String()
	if !strings.Contains(out, "expiry monitor started") || !strings.Contains(out, "next_run=") {
		t.Errorf("start log missing next_run:\n%s", out)
	}
}

func (m *ExpiryMonitor) isRunning() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}
