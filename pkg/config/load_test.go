package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "harbor.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return path
}

func TestLoadConfig_ValidFile(t *testing.T) {
	path := writeConfig(t, `
server:
  listen_address: "127.0.0.1:8443"
  shutdown_timeout: "3s"

static:
  document_root: "/srv/www"
  index_files: ["index.htm", "default.html"]
  directory_listing: false

tls:
  cert_file: "/etc/harbor/cert.pem"
  key_file: "/etc/harbor/key.pem"
  min_version: "1.3"

telemetry:
  logging:
    level: "debug"
    format: "json"
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Server.ListenAddress != "127.0.0.1:8443" {
		t.Errorf("expected listen address %q, got %q", "127.0.0.1:8443", cfg.Server.ListenAddress)
	}
	if cfg.Server.ShutdownTimeout != 3*time.Second {
		t.Errorf("expected shutdown timeout %v, got %v", 3*time.Second, cfg.Server.ShutdownTimeout)
	}
	if cfg.Static.DocumentRoot != "/srv/www" {
		t.Errorf("expected document root %q, got %q", "/srv/www", cfg.Static.DocumentRoot)
	}
	if len(cfg.Static.IndexFiles) != 2 || cfg.Static.IndexFiles[0] != "index.htm" {
		t.Errorf("unexpected index files %v", cfg.Static.IndexFiles)
	}
	if cfg.Static.DirectoryListing {
		t.Error("expected directory listing to be disabled")
	}
	if cfg.TLS.MinVersion != "1.3" {
		t.Errorf("expected min version %q, got %q", "1.3", cfg.TLS.MinVersion)
	}
	if cfg.Telemetry.Logging.Level != "debug" {
		t.Errorf("expected logging level %q, got %q", "debug", cfg.Telemetry.Logging.Level)
	}

	// Unset values keep their defaults
	if cfg.Server.ReadHeaderTimeout != DefaultReadHeaderTimeout {
		t.Errorf("expected default read header timeout, got %v", cfg.Server.ReadHeaderTimeout)
	}
	if cfg.Monitor.Schedule != DefaultMonitorSchedule {
		t.Errorf("expected default monitor schedule, got %q", cfg.Monitor.Schedule)
	}
}

func TestLoadConfig_EmptyFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, ""))
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Server.ListenAddress != DefaultListenAddress {
		t.Errorf("expected %q, got %q", DefaultListenAddress, cfg.Server.ListenAddress)
	}
	if !cfg.Static.DirectoryListing {
		t.Error("expected directory listing enabled by default")
	}
	if cfg.TLS.CertFile != DefaultCertFile || cfg.TLS.KeyFile != DefaultKeyFile {
		t.Errorf("unexpected TLS files %q %q", cfg.TLS.CertFile, cfg.TLS.KeyFile)
	}
}

func TestLoadConfig_Errors(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		errorMsg string
	}{
		{
			name:     "invalid yaml",
			content:  "server: [unterminated",
			errorMsg: "failed to parse configuration file",
		},
		{
			name: "invalid tls version",
			content: `
tls:
  min_version: "1.0"
`,
			errorMsg: "tls.min_version",
		},
		{
			name: "invalid port",
			content: `
server:
  listen_address: "0.0.0.0:99999"
`,
			errorMsg: "server.listen_address",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.content))
			if err == nil {
				t.Fatal("expected error but got none")
			}
			if !strings.Contains(err.Error(), tt.errorMsg) {
				t.Errorf("expected error containing %q, got %q", tt.errorMsg, err.Error())
			}
		})
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected not-exist error, got %v", err)
	}
}

func TestLoadConfigWithEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
server:
  listen_address: "127.0.0.1:8443"
`)

	t.Setenv("HARBOR_SERVER_LISTEN_ADDRESS", "0.0.0.0:9443")
	t.Setenv("HARBOR_STATIC_DOCUMENT_ROOT", "/var/www")
	t.Setenv("HARBOR_STATIC_DIRECTORY_LISTING", "false")
	t.Setenv("HARBOR_STATIC_INDEX_FILES", "index.html, home.html")
	t.Setenv("HARBOR_SERVER_SHUTDOWN_TIMEOUT", "2s")
	t.Setenv("HARBOR_TELEMETRY_LOGGING_FORMAT", "json")
	t.Setenv("HARBOR_TELEMETRY_TRACING_SAMPLE_RATIO", "0.5")

	cfg, err := LoadConfigWithEnvOverrides(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Server.ListenAddress != "0.0.0.0:9443" {
		t.Errorf("env override not applied, got %q", cfg.Server.ListenAddress)
	}
	if cfg.Static.DocumentRoot != "/var/www" {
		t.Errorf("env override not applied, got %q", cfg.Static.DocumentRoot)
	}
	if cfg.Static.DirectoryListing {
		t.Error("expected directory listing disabled by env")
	}
	if len(cfg.Static.IndexFiles) != 2 || cfg.Static.IndexFiles[1] != "home.html" {
		t.Errorf("unexpected index files %v", cfg.Static.IndexFiles)
	}
	if cfg.Server.ShutdownTimeout != 2*time.Second {
		t.Errorf("expected 2s shutdown timeout, got %v", cfg.Server.ShutdownTimeout)
	}
	if cfg.Telemetry.Logging.Format != "json" {
		t.Errorf("expected json format, got %q", cfg.Telemetry.Logging.Format)
	}
	if cfg.Telemetry.Tracing.SampleRatio != 0.5 {
		t.Errorf("expected 0.5 sample ratio, got %v", cfg.Telemetry.Tracing.SampleRatio)
	}
}

func TestLoadConfigWithEnvOverrides_InvalidValue(t *testing.T) {
	path := writeConfig(t, "")
	t.Setenv("HARBOR_SERVER_SHUTDOWN_TIMEOUT", "soon")

	_, err := LoadConfigWithEnvOverrides(path)
	if err == nil {
		t.Fatal("expected error for malformed duration")
	}
	if !strings.Contains(err.Error(), "HARBOR_SERVER_SHUTDOWN_TIMEOUT") {
		t.Errorf("expected variable name in error, got %q", err.Error())
	}
}

func TestLoadOptional(t *testing.T) {
	t.Run("missing file falls back to defaults", func(t *testing.T) {
		t.Setenv("HARBOR_TLS_CERT_FILE", "/tmp/c.pem")

		cfg, found, err := LoadOptional(filepath.Join(t.TempDir(), "missing.yaml"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if found {
			t.Error("expected found=false")
		}
		if cfg.TLS.CertFile != "/tmp/c.pem" {
			t.Errorf("env override not applied, got %q", cfg.TLS.CertFile)
		}
	})

	t.Run("existing file", func(t *testing.T) {
		cfg, found, err := LoadOptional(writeConfig(t, "static:\n  document_root: public\n"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !found {
			t.Error("expected found=true")
		}
		if cfg.Static.DocumentRoot != "public" {
			t.Errorf("got document root %q", cfg.Static.DocumentRoot)
		}
	})

	t.Run("invalid file is an error", func(t *testing.T) {
		if _, _, err := LoadOptional(writeConfig(t, "server: [")); err == nil {
			t.Error("expected parse error")
		}
	})
}
