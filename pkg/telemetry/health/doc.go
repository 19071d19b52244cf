// Package health provides liveness, readiness and version endpoints for
// harbor's ops listener.
//
// # Endpoints
//
//   - /health: the process is running
//   - /ready: every registered check passes (the HTTPS server is serving
//     and its certificate is valid)
//   - /version: build information
//
// # Usage
//
//	checker := health.New(2 * time.Second)
//	checker.RegisterCheck("server", health.StateCheck(srv.State, "serving"))
//	checker.RegisterCheck("certificate", health.CertificateCheck(identity.Leaf))
//
//	mux := http.NewServeMux()
//	health.Register(mux, checker, health.VersionInfo{Version: version})
//
// Readiness answers 503 while any check fails, which covers the startup
// window and the drain after an interrupt.
package health
