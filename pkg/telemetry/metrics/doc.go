// Package metrics provides Prometheus metrics collection for harbor.
//
// # Metrics
//
//   - harbor_static_requests_total{result}: requests by outcome
//   - harbor_static_bytes_served_total: response body bytes written
//   - harbor_static_request_duration_seconds: time spent serving a request
//   - harbor_server_state{state}: 1 for the current lifecycle state, 0 otherwise
//   - harbor_tls_certificate_expiry_seconds: remaining certificate validity
//
// # Usage
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	handler := static.NewHandler(staticCfg, static.WithRecorder(collector))
//	mux.Handle("/metrics", collector.Handler())
//
// The collector owns a private registry, so several collectors can coexist
// in one process (tests rely on this).
package metrics
