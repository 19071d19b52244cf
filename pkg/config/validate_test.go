package config

import (
	"errors"
	"strings"
	"testing"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantField string
	}{
		{
			name:   "defaults are valid",
			mutate: func(*Config) {},
		},
		{
			name:      "empty listen address",
			mutate:    func(c *Config) { c.Server.ListenAddress = "" },
			wantField: "server.listen_address",
		},
		{
			name:      "listen address without port",
			mutate:    func(c *Config) { c.Server.ListenAddress = "localhost" },
			wantField: "server.listen_address",
		},
		{
			name:   "port zero is allowed",
			mutate: func(c *Config) { c.Server.ListenAddress = "127.0.0.1:0" },
		},
		{
			name:      "zero shutdown timeout",
			mutate:    func(c *Config) { c.Server.ShutdownTimeout = 0 },
			wantField: "server.shutdown_timeout",
		},
		{
			name:      "negative idle timeout",
			mutate:    func(c *Config) { c.Server.IdleTimeout = -1 },
			wantField: "server.idle_timeout",
		},
		{
			name:      "huge header limit",
			mutate:    func(c *Config) { c.Server.MaxHeaderBytes = 20 * 1024 * 1024 },
			wantField: "server.max_header_bytes",
		},
		{
			name:      "empty document root",
			mutate:    func(c *Config) { c.Static.DocumentRoot = "" },
			wantField: "static.document_root",
		},
		{
			name:      "index file with path",
			mutate:    func(c *Config) { c.Static.IndexFiles = []string{"../secret.html"} },
			wantField: "static.index_files[0]",
		},
		{
			name:      "missing cert file",
			mutate:    func(c *Config) { c.TLS.CertFile = "" },
			wantField: "tls.cert_file",
		},
		{
			name:      "missing key file",
			mutate:    func(c *Config) { c.TLS.KeyFile = "" },
			wantField: "tls.key_file",
		},
		{
			name:      "unknown cipher suite",
			mutate:    func(c *Config) { c.TLS.CipherSuites = []string{"TLS_RSA_WITH_RC4_128_SHA"} },
			wantField: "tls.cipher_suites",
		},
		{
			name:      "invalid cron schedule",
			mutate:    func(c *Config) { c.Monitor.Schedule = "every day" },
			wantField: "monitor.schedule",
		},
		{
			name:   "empty schedule disables monitor",
			mutate: func(c *Config) { c.Monitor.Schedule = "" },
		},
		{
			name:      "invalid log level",
			mutate:    func(c *Config) { c.Telemetry.Logging.Level = "verbose" },
			wantField: "telemetry.logging.level",
		},
		{
			name:      "invalid log format",
			mutate:    func(c *Config) { c.Telemetry.Logging.Format = "xml" },
			wantField: "telemetry.logging.format",
		},
		{
			name: "metrics path without slash",
			mutate: func(c *Config) {
				c.Telemetry.Metrics.Enabled = true
				c.Telemetry.Metrics.Path = "metrics"
			},
			wantField: "telemetry.metrics.path",
		},
		{
			name: "unknown tracing sampler",
			mutate: func(c *Config) {
				c.Telemetry.Tracing.Enabled = true
				c.Telemetry.Tracing.Sampler = "sometimes"
			},
			wantField: "telemetry.tracing.sampler",
		},
		{
			name: "tracing ratio out of range",
			mutate: func(c *Config) {
				c.Telemetry.Tracing.Enabled = true
				c.Telemetry.Tracing.SampleRatio = 1.5
			},
			wantField: "telemetry.tracing.sample_ratio",
		},
		{
			name: "tracing disabled ignores bad sampler",
			mutate: func(c *Config) {
				c.Telemetry.Tracing.Sampler = "sometimes"
			},
		},
		{
			name: "metrics disabled ignores bad address",
			mutate: func(c *Config) {
				c.Telemetry.Metrics.ListenAddress = "bogus"
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := Validate(cfg)
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}

			var verr ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			found := false
			for _, fe := range verr.Errors {
				if fe.Field == tt.wantField {
					found = true
				}
			}
			if !found {
				t.Errorf("expected error for field %q, got %v", tt.wantField, verr.Errors)
			}
		})
	}
}

func TestValidationError_Error(t *testing.T) {
	single := ValidationError{Errors: []FieldError{{Field: "a", Message: "bad"}}}
	if got := single.Error(); got != "configuration validation failed: a: bad" {
		t.Errorf("unexpected message %q", got)
	}

	multi := ValidationError{Errors: []FieldError{
		{Field: "a", Message: "bad"},
		{Field: "b", Message: "worse"},
	}}
	got := multi.Error()
	if !strings.Contains(got, "2 errors") || !strings.Contains(got, "  - b: worse") {
		t.Errorf("unexpected message %q", got)
	}
}
