// Package tracing records an OpenTelemetry span for every static file
// request and exports spans over OTLP/gRPC.
//
// When tracing is disabled New returns a Tracer backed by the noop
// provider, so callers never need to check Enabled before starting spans.
//
// # Configuration
//
//	telemetry:
//	  tracing:
//	    enabled: true
//	    endpoint: "otel-collector:4317"
//	    insecure: true
//	    sampler: ratio
//	    sample_ratio: 0.1
//
// # Context Propagation
//
// Incoming W3C traceparent and baggage headers are honored, so a span
// recorded by harbor joins the caller's trace:
//
//	ctx := tracing.Extract(r.Context(), r.Header)
//	ctx, span := tracer.Start(ctx, tracing.SpanStaticServe)
//	defer span.End()
//
// The tracer must be shut down before exit to flush buffered spans:
//
//	defer tracer.Shutdown(context.Background())
package tracing
