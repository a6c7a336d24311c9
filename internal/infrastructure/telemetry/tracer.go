// Package telemetry wires OpenTelemetry tracing and metrics plus Pyroscope
// continuous profiling into the service.
package telemetry

import (
	"context"
	"fmt"
	"sync"
	"time"

	otelpyroscope "github.com/grafana/otel-profiling-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

// Config selects the span export target and sampling behavior.
type Config struct {
	Enabled           bool
	CollectorEndpoint string
	SamplingRatio     float64
	ServiceName       string
	Insecure          bool
}

// TracerProvider wraps the OpenTelemetry TracerProvider with lifecycle
// management. With tracing disabled it degrades to a no-op that still
// satisfies the full interface.
type TracerProvider struct {
	sdk          *sdktrace.TracerProvider
	log          *zap.Logger
	cfg          Config
	mu           sync.RWMutex
	spanProfiles bool
}

// NewTracerProvider configures OTLP gRPC span export and installs the
// provider globally. When cfg.Enabled is false no exporter is created and
// the global provider stays the default no-op.
func NewTracerProvider(ctx context.Context, cfg Config, logger *zap.Logger) (*TracerProvider, error) {
	tp := &TracerProvider{log: logger, cfg: cfg}

	if !cfg.Enabled {
		logger.Info("Tracing disabled, spans will not be exported")
		return tp, nil
	}

	opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(cfg.CollectorEndpoint)}
	if cfg.Insecure {
		opts = append(opts, otlptracegrpc.WithInsecure())
	}
	exporter, err := otlptracegrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create OTLP exporter: %w", err)
	}

	res, err := buildResource(cfg.ServiceName)
	if err != nil {
		return nil, err
	}

	tp.sdk = sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(newSampler(cfg.SamplingRatio)),
	)

	otel.SetTracerProvider(tp.sdk)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	logger.Info("Trace export configured",
		zap.String("collector_endpoint", cfg.CollectorEndpoint),
		zap.Float64("sampling_ratio", cfg.SamplingRatio),
		zap.String("service_name", cfg.ServiceName),
	)

	return tp, nil
}

func buildResource(serviceName string) (*resource.Resource, error) {
	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion("1.0.0"),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("create resource: %w", err)
	}
	return res, nil
}

func newSampler(ratio float64) sdktrace.Sampler {
	if ratio >= 1.0 {
		return sdktrace.AlwaysSample()
	}
	if ratio <= 0 {
		return sdktrace.NeverSample()
	}
	return sdktrace.TraceIDRatioBased(ratio)
}

// EnableSpanProfiles wraps the provider with the Pyroscope span profiles
// integration so CPU profiles carry a span_id label and can be filtered per
// span. The Pyroscope profiler must already be running when this is called,
// and only CPU profiles are linked. Spans shorter than 10ms may carry no
// profile data at the default 100Hz sampling rate.
func (tp *TracerProvider) EnableSpanProfiles() error {
	tp.mu.Lock()
	defer tp.mu.Unlock()

	if tp.sdk == nil {
		tp.log.Debug("Span profiles skipped, tracing is disabled")
		return nil
	}

	if tp.spanProfiles {
		tp.log.Debug("Span profiles already active")
		return nil
	}

	otel.SetTracerProvider(otelpyroscope.NewTracerProvider(tp.sdk))
	tp.spanProfiles = true

	tp.log.Info("Span profiles linked to traces",
		zap.String("service_name", tp.cfg.ServiceName),
	)

	return nil
}

// IsSpanProfilesEnabled reports whether span profiles integration is active.
func (tp *TracerProvider) IsSpanProfilesEnabled() bool {
	tp.mu.RLock()
	defer tp.mu.RUnlock()
	return tp.spanProfiles
}

// Shutdown flushes pending spans and releases the provider. Bounded by an
// internal timeout so a dead collector cannot hang process exit.
func (tp *TracerProvider) Shutdown(ctx context.Context) error {
	if tp.sdk == nil {
		return nil
	}

	tp.log.Info("Flushing spans and stopping trace export")

	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	if err := tp.sdk.Shutdown(shutdownCtx); err != nil {
		tp.log.Error("Trace export shutdown failed", zap.Error(err))
		return fmt.Errorf("shutdown tracer provider: %w", err)
	}

	tp.log.Info("Trace export stopped")
	return nil
}

// Tracer returns a named tracer. With tracing disabled this delegates to the
// global provider, which hands out no-op tracers.
func (tp *TracerProvider) Tracer(name string, opts ...trace.TracerOption) trace.Tracer {
	if tp.sdk == nil {
		return otel.GetTracerProvider().Tracer(name, opts...)
	}
	return tp.sdk.Tracer(name, opts...)
}

// IsEnabled reports whether spans are actually being exported.
func (tp *TracerProvider) IsEnabled() bool {
	return tp.cfg.Enabled && tp.sdk != nil
}

// GetConfig returns a copy of the tracing configuration.
func (tp *TracerProvider) GetConfig() Config {
	return tp.cfg
}

// ForceFlush exports all spans that have not yet been exported. Useful in
// tests and before shutdown.
func (tp *TracerProvider) ForceFlush(ctx context.Context) error {
	if tp.sdk == nil {
		return nil
	}
	return tp.sdk.ForceFlush(ctx)
}
