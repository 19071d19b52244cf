package tracing

import (
	"net/http"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// SpanStaticServe names the span recorded for each file request.
const SpanStaticServe = "static.serve"

// Attribute keys. HTTP keys follow the OpenTelemetry semantic
// conventions; harbor-specific keys use the "harbor." prefix.
const (
	AttrHTTPMethod     = "http.request.method"
	AttrHTTPStatusCode = "http.response.status_code"
	AttrURLPath        = "url.path"
	AttrStaticResult   = "harbor.static.result"
	AttrStaticBytes    = "harbor.static.bytes"
)

// SetRequestAttributes records the request line on span.
func SetRequestAttributes(span trace.Span, method, path string) {
	span.SetAttributes(
		attribute.String(AttrHTTPMethod, method),
		attribute.String(AttrURLPath, path),
	)
}

// SetResponseAttributes records the outcome of a request on span. A 5xx
// status marks the span as failed.
func SetResponseAttributes(span trace.Span, status int, result string, bytes int64) {
	span.SetAttributes(
		attribute.Int(AttrHTTPStatusCode, status),
		attribute.String(AttrStaticResult, result),
		attribute.Int64(AttrStaticBytes, bytes),
	)
	if status >= http.StatusInternalServerError {
		span.SetStatus(codes.Error, http.StatusText(status))
	}
}
