package config

import "time"

// Config is the root configuration structure for harbor.
type Config struct {
	// Server contains listener and HTTP server settings.
	Server ServerConfig `yaml:"server"`

	// Static contains document root and directory handling settings.
	Static StaticConfig `yaml:"static"`

	// TLS contains the certificate, key and protocol settings.
	TLS TLSConfig `yaml:"tls"`

	// Monitor contains the certificate expiry monitor settings.
	Monitor MonitorConfig `yaml:"monitor"`

	// Telemetry contains logging and metrics configuration.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ServerConfig contains configuration for the HTTPS listener.
type ServerConfig struct {
	// ListenAddress is the address and port to listen on.
	// Format: "host:port". Port 0 picks a free port.
	// Default: "0.0.0.0:4433"
	ListenAddress string `yaml:"listen_address"`

	// ReadHeaderTimeout is the amount of time allowed to read request headers.
	// Default: 10s
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout"`

	// ReadTimeout is the maximum duration for reading the entire request.
	// Zero means no timeout.
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out writes of the
	// response. Zero means no timeout, which suits large file downloads.
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is the maximum amount of time to wait for the next request
	// when keep-alives are enabled.
	// Default: 120s
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout is how long in-flight requests may drain after an
	// interrupt before their connections are closed.
	// Default: 10s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// MaxHeaderBytes limits the size of request headers.
	// Default: 1048576 (1MB)
	MaxHeaderBytes int `yaml:"max_header_bytes"`
}

// StaticConfig controls how files are served from the document root.
type StaticConfig struct {
	// DocumentRoot is the directory files are served from, read-only.
	// Default: "."
	DocumentRoot string `yaml:"document_root"`

	// IndexFiles are tried in order when a directory is requested.
	// Default: ["index.html"]
	IndexFiles []string `yaml:"index_files"`

	// DirectoryListing renders an HTML listing for directories without an
	// index file. When false such requests are forbidden.
	// Default: true
	DirectoryListing bool `yaml:"directory_listing"`
}

// TLSConfig contains the TLS identity and protocol settings.
type TLSConfig struct {
	// CertFile is the path to the PEM-encoded certificate (chain).
	// Default: "cert.pem"
	CertFile string `yaml:"cert_file"`

	// KeyFile is the path to the PEM-encoded private key.
	// Default: "key.pem"
	KeyFile string `yaml:"key_file"`

	// MinVersion is the minimum TLS version: "1.2" or "1.3".
	// Default: "1.2"
	MinVersion string `yaml:"min_version"`

	// CipherSuites restricts the TLS 1.2 cipher suites.
	// Empty means Go's defaults.
	CipherSuites []string `yaml:"cipher_suites"`
}

// MonitorConfig controls the scheduled certificate expiry check.
type MonitorConfig struct {
	// Schedule is a cron expression or descriptor. Empty disables the check.
	// Default: "@hourly"
	Schedule string `yaml:"schedule"`

	// WarnWithin is the remaining validity that triggers a warning.
	// Default: 720h (30 days)
	WarnWithin time.Duration `yaml:"warn_within"`

	// WatchFiles logs a warning when the certificate or key file changes
	// on disk. The served pair is never replaced.
	// Default: true
	WatchFiles bool `yaml:"watch_files"`
}

// TelemetryConfig contains configuration for observability.
type TelemetryConfig struct {
	// Logging contains logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains metrics and health endpoint configuration.
	Metrics MetricsConfig `yaml:"metrics"`

	// Tracing contains OpenTelemetry tracing configuration.
	Tracing TracingConfig `yaml:"tracing"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level to emit.
	// Options: "debug", "info", "warn", "error"
	// Default: "info"
	Level string `yaml:"level"`

	// Format is the log output format.
	// Options: "json", "text"
	// Default: "text"
	Format string `yaml:"format"`

	// AddSource includes file:line in log records.
	AddSource bool `yaml:"add_source"`
}

// MetricsConfig contains metrics collection configuration.
type MetricsConfig struct {
	// Enabled starts the plain-HTTP ops listener serving metrics and
	// health endpoints.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// ListenAddress is the ops listener address.
	// Default: "127.0.0.1:9090"
	ListenAddress string `yaml:"listen_address"`

	// Path is the HTTP path for the Prometheus endpoint.
	// Default: "/metrics"
	Path string `yaml:"path"`

	// Namespace prefixes every metric name.
	// Default: "harbor"
	Namespace string `yaml:"namespace"`
}

// TracingConfig contains distributed tracing configuration. Spans are
// exported over OTLP/gRPC.
type TracingConfig struct {
	// Enabled controls whether a span is recorded for every request.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Endpoint is the OTLP collector address (host:port).
	// Default: "localhost:4317"
	Endpoint string `yaml:"endpoint"`

	// Insecure disables TLS towards the collector.
	// Default: false
	Insecure bool `yaml:"insecure"`

	// Timeout bounds each export call.
	// Default: 10s
	Timeout time.Duration `yaml:"timeout"`

	// Sampler determines the sampling strategy.
	// Options: "always", "never", "ratio"
	// Default: "ratio"
	Sampler string `yaml:"sampler"`

	// SampleRatio is the fraction of traces to sample (0.0 to 1.0).
	// Only used when Sampler is "ratio".
	// Default: 0.1
	SampleRatio float64 `yaml:"sample_ratio"`

	// ServiceName is reported as the service.name resource attribute.
	// Default: "harbor"
	ServiceName string `yaml:"service_name"`
}
