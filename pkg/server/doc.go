// Package server runs harbor's HTTPS static file server.
//
// A Server owns one listener, one http.Server and one TLS identity. Its
// lifecycle is linear:
//
//	Starting -> Serving -> ShuttingDown -> Stopped
//
// New loads the certificate, key and document root without touching the
// network, so configuration and certificate problems are reported before
// the port is bound. Start binds, announces the address and serves until
// Shutdown or Close is called or its context is cancelled.
//
// # Errors
//
// Startup failures are typed:
//
//   - *ConfigurationError: a file or setting is missing or unreadable
//   - *CertificateError: the certificate or key cannot be used
//   - *BindError: the listen address cannot be bound
//
// # Basic Usage
//
//	srv, err := server.New(server.ConfigFrom(cfg), server.WithLogger(logger))
//	if err != nil {
//	    return err
//	}
//
//	stop := cli.NotifyShutdown(srv, cfg.Server.ShutdownTimeout, logger)
//	defer stop()
//
//	return srv.Start(ctx)
//
// # Shutdown
//
// Shutdown stops accepting connections and drains in-flight requests for up
// to ShutdownTimeout, then closes whatever is left. It is idempotent: later
// calls return the first call's result. Close abandons in-flight requests
// immediately and is safe to call at any time, including during a Shutdown.
// Start returns nil once either has finished.
package server
