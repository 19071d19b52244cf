package config

import "time"

// Default values for configuration fields.
const (
	// Server defaults
	DefaultListenAddress     = "0.0.0.0:4433"
	DefaultReadHeaderTimeout = 10 * time.Second
	DefaultIdleTimeout       = 120 * time.Second
	DefaultShutdownTimeout   = 10 * time.Second
	DefaultMaxHeaderBytes    = 1048576 // 1MB

	// Static defaults
	DefaultDocumentRoot     = "."
	DefaultIndexFile        = "index.html"
	DefaultDirectoryListing = true

	// TLS defaults
	DefaultCertFile      = "cert.pem"
	DefaultKeyFile       = "key.pem"
	DefaultTLSMinVersion = "1.2"

	// Monitor defaults
	DefaultMonitorSchedule   = "@hourly"
	DefaultMonitorWarnWithin = 30 * 24 * time.Hour
	DefaultMonitorWatchFiles = true

	// Telemetry defaults
	DefaultLoggingLevel         = "info"
	DefaultLoggingFormat        = "text"
	DefaultMetricsEnabled       = false
	DefaultMetricsListenAddress = "127.0.0.1:9090"
	DefaultMetricsPath          = "/metrics"
	DefaultMetricsNamespace     = "harbor"
	DefaultTracingEnabled       = false
	DefaultTracingEndpoint      = "localhost:4317"
	DefaultTracingTimeout       = 10 * time.Second
	DefaultTracingSampler       = "ratio"
	DefaultTracingSampleRatio   = 0.1
	DefaultTracingServiceName   = "harbor"
)

// Default returns a fully populated configuration with default values.
func Default() *Config {
	cfg := &Config{
		Static: StaticConfig{
			DirectoryListing: DefaultDirectoryListing,
		},
		Monitor: MonitorConfig{
			Schedule:   DefaultMonitorSchedule,
			WatchFiles: DefaultMonitorWatchFiles,
		},
		Telemetry: TelemetryConfig{
			Metrics: MetricsConfig{
				Enabled: DefaultMetricsEnabled,
			},
			Tracing: TracingConfig{
				Enabled:     DefaultTracingEnabled,
				SampleRatio: DefaultTracingSampleRatio,
			},
		},
	}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills zero-valued fields with their default values.
// Boolean fields, the monitor schedule and the sample ratio treat their zero value as
// meaningful, so their defaults are set by Default() before the YAML
// file is decoded.
func ApplyDefaults(cfg *Config) {
	// Server defaults
	if cfg.Server.ListenAddress == "" {
		cfg.Server.ListenAddress = DefaultListenAddress
	}
	if cfg.Server.ReadHeaderTimeout == 0 {
		cfg.Server.ReadHeaderTimeout = DefaultReadHeaderTimeout
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if cfg.Server.MaxHeaderBytes == 0 {
		cfg.Server.MaxHeaderBytes = DefaultMaxHeaderBytes
	}

	// Static defaults
	if cfg.Static.DocumentRoot == "" {
		cfg.Static.DocumentRoot = DefaultDocumentRoot
	}
	if cfg.Static.IndexFiles == nil {
		cfg.Static.IndexFiles = []string{DefaultIndexFile}
	}

	// TLS defaults
	if cfg.TLS.CertFile == "" {
		cfg.TLS.CertFile = DefaultCertFile
	}
	if cfg.TLS.KeyFile == "" {
		cfg.TLS.KeyFile = DefaultKeyFile
	}
	if cfg.TLS.MinVersion == "" {
		cfg.TLS.MinVersion = DefaultTLSMinVersion
	}

	// Monitor defaults
	if cfg.Monitor.WarnWithin == 0 {
		cfg.Monitor.WarnWithin = DefaultMonitorWarnWithin
	}

	// Telemetry defaults
	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLoggingFormat
	}
	if cfg.Telemetry.Metrics.ListenAddress == "" {
		cfg.Telemetry.Metrics.ListenAddress = DefaultMetricsListenAddress
	}
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = DefaultMetricsPath
	}
	if cfg.Telemetry.Metrics.Namespace == "" {
		cfg.Telemetry.Metrics.Namespace = DefaultMetricsNamespace
	}
	if cfg.Telemetry.Tracing.Endpoint == "" {
		cfg.Telemetry.Tracing.Endpoint = DefaultTracingEndpoint
	}
	if cfg.Telemetry.Tracing.Timeout == 0 {
		cfg.Telemetry.Tracing.Timeout = DefaultTracingTimeout
	}
	if cfg.Telemetry.Tracing.Sampler == "" {
		cfg.Telemetry.Tracing.Sampler = DefaultTracingSampler
	}
	if cfg.Telemetry.Tracing.ServiceName == "" {
		cfg.Telemetry.Tracing.ServiceName = DefaultTracingServiceName
	}
}
