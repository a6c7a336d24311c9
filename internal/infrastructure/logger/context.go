package logger

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// contextKey keeps this package's context values from colliding with keys
// owned by other packages.
type contextKey string

const (
	// LoggerKey carries the request-scoped logger.
	LoggerKey contextKey = "logger"
	// RequestIDKey carries the request correlation ID.
	RequestIDKey contextKey = "request_id"
)

// WithContext stores the logger in the context so downstream layers can
// retrieve it without threading a *zap.Logger through every signature.
func WithContext(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, LoggerKey, logger)
}

// FromContext returns the logger stored by WithContext. Callers outside a
// request cycle get a no-op logger, never nil.
func FromContext(ctx context.Context) *zap.Logger {
	if logger, ok := ctx.Value(LoggerKey).(*zap.Logger); ok {
		return logger
	}
	return zap.NewNop()
}

// WithRequestID stores the request ID in the context and returns a logger
// that tags every entry with it. The enriched logger is also stored in the
// returned context.
func WithRequestID(ctx context.Context, logger *zap.Logger, requestID string) (context.Context, *zap.Logger) {
	ctx = context.WithValue(ctx, RequestIDKey, requestID)
	enriched := logger.With(zap.String("request_id", requestID))
	return WithContext(ctx, enriched), enriched
}

// GetRequestID returns the request ID stored by WithRequestID, or an empty
// string when the context carries none.
func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(RequestIDKey).(string); ok {
		return requestID
	}
	return ""
}

// spanContext returns the context's span context when one is present and
// sampled into a valid trace.
func spanContext(ctx context.Context) (trace.SpanContext, bool) {
	sc := trace.SpanFromContext(ctx).SpanContext()
	return sc, sc.IsValid()
}

// GetTraceID returns the active trace ID, or an empty string without a
// valid span.
func GetTraceID(ctx context.Context) string {
	if sc, ok := spanContext(ctx); ok {
		return sc.TraceID().String()
	}
	return ""
}

// GetSpanID returns the active span ID, or an empty string without a
// valid span.
func GetSpanID(ctx context.Context) string {
	if sc, ok := spanContext(ctx); ok {
		return sc.SpanID().String()
	}
	return ""
}

// WithTraceContext returns a logger that tags entries with the trace_id and
// span_id of the context's span. Without a valid span the logger is returned
// unchanged, so the call is safe on any code path.
func WithTraceContext(ctx context.Context, logger *zap.Logger) *zap.Logger {
	sc, ok := spanContext(ctx)
	if !ok {
		return logger
	}
	return logger.With(
		zap.String("trace_id", sc.TraceID().String()),
		zap.String("span_id", sc.SpanID().String()),
	)
}

// ContextLogger binds a context to a logger so every entry automatically
// carries trace_id, span_id and request_id when the context provides them.
type ContextLogger struct {
	ctx    context.Context
	logger *zap.Logger
}

// L returns a ContextLogger backed by the logger stored in ctx.
//
//	logger.L(ctx).Info("quote accepted", zap.String("quote_number", num))
func L(ctx context.Context) *ContextLogger {
	return &ContextLogger{ctx: ctx, logger: FromContext(ctx)}
}

// WithLogger returns a ContextLogger backed by the given logger instead of
// the one stored in ctx.
func WithLogger(ctx context.Context, logger *zap.Logger) *ContextLogger {
	return &ContextLogger{ctx: ctx, logger: logger}
}

// resolve produces the fully enriched zap logger for one log call. Fields
// are resolved per call because the span can change between calls on the
// same context.
func (cl *ContextLogger) resolve() *zap.Logger {
	l := cl.logger
	if l == nil {
		l = zap.NewNop()
	}
	l = WithTraceContext(cl.ctx, l)
	if requestID := GetRequestID(cl.ctx); requestID != "" {
		l = l.With(zap.String("request_id", requestID))
	}
	return l
}

// With returns a child ContextLogger carrying additional fields.
func (cl *ContextLogger) With(fields ...zap.Field) *ContextLogger {
	return &ContextLogger{ctx: cl.ctx, logger: cl.logger.With(fields...)}
}

func (cl *ContextLogger) Debug(msg string, fields ...zap.Field) {
	cl.resolve().Debug(msg, fields...)
}

func (cl *ContextLogger) Info(msg string, fields ...zap.Field) {
	cl.resolve().Info(msg, fields...)
}

func (cl *ContextLogger) Warn(msg string, fields ...zap.Field) {
	cl.resolve().Warn(msg, fields...)
}

func (cl *ContextLogger) Error(msg string, fields ...zap.Field) {
	cl.resolve().Error(msg, fields...)
}

// Fatal logs the message and then exits the process.
func (cl *ContextLogger) Fatal(msg string, fields ...zap.Field) {
	cl.resolve().Fatal(msg, fields...)
}

// Panic logs the message and then panics.
func (cl *ContextLogger) Panic(msg string, fields ...zap.Field) {
	cl.resolve().Panic(msg, fields...)
}

// Zap returns the enriched *zap.Logger for APIs that take one directly.
func (cl *ContextLogger) Zap() *zap.Logger {
	return cl.resolve()
}

// Sugar returns the enriched logger's sugared form.
func (cl *ContextLogger) Sugar() *zap.SugaredLogger {
	return cl.resolve().Sugar()
}
