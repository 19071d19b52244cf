package server

import (
	"time"

	"mercator-hq/harbor/pkg/config"
	securitytls "mercator-hq/harbor/pkg/security/tls"
)

// Config is the immutable configuration of one Server.
type Config struct {
	// ListenAddress is the TCP address to bind, "host:port".
	ListenAddress string

	// DocumentRoot is the directory served read-only.
	DocumentRoot string

	// IndexFiles are tried in order for directory requests.
	IndexFiles []string

	// DirectoryListing renders directories without an index file.
	DirectoryListing bool

	// TLS holds the certificate, key and protocol settings.
	TLS securitytls.Config

	ReadHeaderTimeout time.Duration
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration

	// ShutdownTimeout bounds the drain of in-flight requests.
	ShutdownTimeout time.Duration

	MaxHeaderBytes int
}

// ConfigFrom extracts the server configuration from the application config.
func ConfigFrom(cfg *config.Config) Config {
	return Config{
		ListenAddress:    cfg.Server.ListenAddress,
		DocumentRoot:     cfg.Static.DocumentRoot,
		IndexFiles:       append([]string(nil), cfg.Static.IndexFiles...),
		DirectoryListing: cfg.Static.DirectoryListing,
		TLS: securitytls.Config{
			CertFile:     cfg.TLS.CertFile,
			KeyFile:      cfg.TLS.KeyFile,
			MinVersion:   cfg.TLS.MinVersion,
			CipherSuites: append([]string(nil), cfg.TLS.CipherSuites...),
		},
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
		ShutdownTimeout:   cfg.Server.ShutdownTimeout,
		MaxHeaderBytes:    cfg.Server.MaxHeaderBytes,
	}
}
