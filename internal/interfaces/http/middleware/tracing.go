package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// MaxRequestIDLength caps request IDs read from headers so oversized values
// never become span attributes.
const MaxRequestIDLength = 128

// TracingConfig configures the tracing middleware.
type TracingConfig struct {
	// ServiceName identifies this service in exported spans.
	ServiceName string
	// Enabled turns span creation on or off.
	Enabled bool
}

// DefaultTracingConfig returns the tracing defaults.
func DefaultTracingConfig() TracingConfig {
	return TracingConfig{
		ServiceName: "crm-backend",
		Enabled:     true,
	}
}

// Tracing returns tracing middleware with the default configuration.
func Tracing() gin.HandlerFunc {
	return TracingWithConfig(DefaultTracingConfig())
}

// TracingWithConfig returns otelgin-based tracing middleware. Spans are named
// "METHOD route_pattern", e.g. "GET /api/v1/customers/:id".
//
// otelgin ends the span when the handler chain returns, so request-scoped
// attributes must be added from inside the chain: install
// TracingAttributeInjector and SpanErrorMarker after this middleware.
func TracingWithConfig(cfg TracingConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return passthrough
	}
	return otelgin.Middleware(cfg.ServiceName)
}

// TracingAttributeInjector copies request_id and client_ip onto the current
// span. Install after both Tracing and RequestID.
func TracingAttributeInjector() gin.HandlerFunc {
	return func(c *gin.Context) {
		if span := trace.SpanFromContext(c.Request.Context()); span.IsRecording() {
			annotateSpan(c, span)
		}
		c.Next()
	}
}

// SpanErrorMarker marks the current span with error status when the response
// is 4xx or 5xx. Install after Tracing.
func SpanErrorMarker() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		span := trace.SpanFromContext(c.Request.Context())
		if !span.IsRecording() {
			return
		}
		if status := c.Writer.Status(); status >= http.StatusBadRequest {
			span.SetStatus(codes.Error, statusMessage(status))
			span.SetAttributes(attribute.Int("http.status_code", status))
		}
	}
}

func annotateSpan(c *gin.Context, span trace.Span) {
	if id := spanRequestID(c); id != "" {
		span.SetAttributes(attribute.String("request_id", id))
	}
	if ip := c.ClientIP(); ip != "" {
		span.SetAttributes(attribute.String("client_ip", ip))
	}
}

// spanRequestID prefers the ID assigned by the RequestID middleware and falls
// back to the raw header, truncated to MaxRequestIDLength.
func spanRequestID(c *gin.Context) string {
	if id := c.GetString("request_id"); id != "" {
		return id
	}
	id := c.GetHeader(RequestIDKey)
	if len(id) > MaxRequestIDLength {
		id = id[:MaxRequestIDLength]
	}
	return id
}

// statusMessage maps a response status to the span error description.
func statusMessage(status int) string {
	switch {
	case status >= http.StatusInternalServerError:
		return "Internal Server Error"
	case status == http.StatusNotFound:
		return "Not Found"
	default:
		return "Client Error"
	}
}
