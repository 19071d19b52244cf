// Package telemetry groups harbor's observability packages.
//
//   - logging: slog logger construction from configuration
//   - metrics: Prometheus collectors for requests, lifecycle and TLS state
//   - tracing: OpenTelemetry spans for static file requests
//   - health: liveness and readiness checks with HTTP handlers
//
// Metrics, health and version endpoints share a plain-HTTP ops listener
// that is started only when telemetry.metrics.enabled is true. No access
// log is written.
package telemetry
