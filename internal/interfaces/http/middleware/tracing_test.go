package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace/noop"
)

// newSpanRecorder installs a recording tracer provider as the global provider
// and returns the recorder. otelgin resolves the provider globally, so tests
// in this file must not run in parallel.
func newSpanRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()

	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	t.Cleanup(func() {
		_ = tp.Shutdown(t.Context())
	})
	return sr
}

func spanNamed(t *testing.T, sr *tracetest.SpanRecorder, name string) sdktrace.ReadOnlySpan {
	t.Helper()
	for _, s := range sr.Ended() {
		if s.Name() == name {
			return s
		}
	}
	t.Fatalf("no span named %q was recorded", name)
	return nil
}

func spanAttr(s sdktrace.ReadOnlySpan, key attribute.Key) (attribute.Value, bool) {
	set := attribute.NewSet(s.Attributes()...)
	return set.Value(key)
}

func TestTracingWithConfig(t *testing.T) {
	t.Run("disabled records nothing", func(t *testing.T) {
		sr := newSpanRecorder(t)

		r := gin.New()
		r.Use(TracingWithConfig(TracingConfig{ServiceName: "test-tracing", Enabled: false}))
		r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, sr.Ended())
	})

	t.Run("span is named after the route pattern", func(t *testing.T) {
		sr := newSpanRecorder(t)

		r := gin.New()
		r.Use(TracingWithConfig(TracingConfig{ServiceName: "test-tracing", Enabled: true}))
		r.GET("/api/v1/customers/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/customers/42", nil))

		require.Equal(t, http.StatusOK, w.Code)
		span := spanNamed(t, sr, "GET /api/v1/customers/:id")
		assert.NotNil(t, span)
	})
}

func TestTracingAttributeInjector(t *testing.T) {
	// Full chain as wired in the server: RequestID, then tracing, then the
	// injector reading what RequestID stored.
	serve := func(t *testing.T, requestID string, remoteAddr string, withRequestID bool) sdktrace.ReadOnlySpan {
		t.Helper()
		sr := newSpanRecorder(t)

		r := gin.New()
		if withRequestID {
			r.Use(RequestID())
		}
		r.Use(TracingWithConfig(TracingConfig{ServiceName: "test-tracing", Enabled: true}))
		r.Use(TracingAttributeInjector())
		r.GET("/quotes", func(c *gin.Context) { c.Status(http.StatusOK) })

		req := httptest.NewRequest(http.MethodGet, "/quotes", nil)
		if requestID != "" {
			req.Header.Set("X-Request-ID", requestID)
		}
		if remoteAddr != "" {
			req.RemoteAddr = remoteAddr
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)

		return spanNamed(t, sr, "GET /quotes")
	}

	t.Run("request id from middleware", func(t *testing.T) {
		span := serve(t, "ride-along-7", "", true)

		v, ok := spanAttr(span, "request_id")
		require.True(t, ok)
		assert.Equal(t, "ride-along-7", v.AsString())
	})

	t.Run("generated request id", func(t *testing.T) {
		span := serve(t, "", "", true)

		v, ok := spanAttr(span, "request_id")
		require.True(t, ok)
		assert.NotEmpty(t, v.AsString())
	})

	t.Run("header fallback without RequestID middleware", func(t *testing.T) {
		span := serve(t, "fallback-55", "", false)

		v, ok := spanAttr(span, "request_id")
		require.True(t, ok)
		assert.Equal(t, "fallback-55", v.AsString())
	})

	t.Run("client ip", func(t *testing.T) {
		span := serve(t, "", "10.1.2.3:55001", true)

		v, ok := spanAttr(span, "client_ip")
		require.True(t, ok)
		assert.Equal(t, "10.1.2.3", v.AsString())
	})

	t.Run("no recording span is harmless", func(t *testing.T) {
		otel.SetTracerProvider(noop.NewTracerProvider())

		r := gin.New()
		r.Use(TracingAttributeInjector())
		r.GET("/quotes", func(c *gin.Context) { c.Status(http.StatusOK) })

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/quotes", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestSpanErrorMarker(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		wantCode codes.Code
		wantDesc string
	}{
		{"not found", http.StatusNotFound, codes.Error, "Not Found"},
		{"bad request", http.StatusBadRequest, codes.Error, "Client Error"},
		{"conflict", http.StatusConflict, codes.Error, "Client Error"},
		// otelgin overwrites the description on 5xx, so only assert the code.
		{"server error", http.StatusInternalServerError, codes.Error, ""},
		{"success left unmarked", http.StatusOK, codes.Unset, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sr := newSpanRecorder(t)

			r := gin.New()
			r.Use(TracingWithConfig(TracingConfig{ServiceName: "test-tracing", Enabled: true}))
			r.Use(SpanErrorMarker())
			r.GET("/tickets", func(c *gin.Context) { c.Status(tt.status) })

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/tickets", nil))
			require.Equal(t, tt.status, w.Code)

			span := spanNamed(t, sr, "GET /tickets")
			assert.Equal(t, tt.wantCode, span.Status().Code)
			if tt.wantDesc != "" {
				assert.Equal(t, tt.wantDesc, span.Status().Description)
			}
			if tt.wantCode == codes.Error {
				v, ok := spanAttr(span, "http.status_code")
				require.True(t, ok)
				assert.Equal(t, int64(tt.status), v.AsInt64())
			}
		})
	}

	t.Run("no recording span is harmless", func(t *testing.T) {
		otel.SetTracerProvider(noop.NewTracerProvider())

		r := gin.New()
		r.Use(SpanErrorMarker())
		r.GET("/tickets", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/tickets", nil))
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestSpanRequestID(t *testing.T) {
	newCtx := func(header string) *gin.Context {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			c.Request.Header.Set("X-Request-ID", header)
		}
		return c
	}

	t.Run("context value wins", func(t *testing.T) {
		c := newCtx("from-header")
		c.Set("request_id", "from-context")

		assert.Equal(t, "from-context", spanRequestID(c))
	})

	t.Run("header fallback", func(t *testing.T) {
		assert.Equal(t, "from-header", spanRequestID(newCtx("from-header")))
	})

	t.Run("empty context value falls through", func(t *testing.T) {
		c := newCtx("from-header")
		c.Set("request_id", "")

		assert.Equal(t, "from-header", spanRequestID(c))
	})

	t.Run("oversized header is truncated", func(t *testing.T) {
		long := strings.Repeat("x", 300)

		got := spanRequestID(newCtx(long))
		assert.Len(t, got, MaxRequestIDLength)
		assert.Equal(t, long[:MaxRequestIDLength], got)
	})

	t.Run("missing everywhere", func(t *testing.T) {
		assert.Empty(t, spanRequestID(newCtx("")))
	})
}

func TestStatusMessage(t *testing.T) {
	assert.Equal(t, "Not Found", statusMessage(http.StatusNotFound))
	assert.Equal(t, "Client Error", statusMessage(http.StatusBadRequest))
	assert.Equal(t, "Client Error", statusMessage(http.StatusTooManyRequests))
	assert.Equal(t, "Internal Server Error", statusMessage(http.StatusInternalServerError))
	assert.Equal(t, "Internal Server Error", statusMessage(http.StatusBadGateway))
}

func TestTracingDefaults(t *testing.T) {
	cfg := DefaultTracingConfig()
	assert.Equal(t, "crm-backend", cfg.ServiceName)
	assert.True(t, cfg.Enabled)

	sr := newSpanRecorder(t)

	r := gin.New()
	r.Use(Tracing())
	r.GET("/suppliers", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/suppliers", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, sr.Ended())
}
