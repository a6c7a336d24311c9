package event

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/crm/backend/internal/domain/shared"
	"github.com/crm/backend/internal/infrastructure/logger"
	"github.com/crm/backend/internal/infrastructure/telemetry"
)

// InMemoryEventBus implements shared.EventBus with synchronous in-memory
// pub/sub. Handlers run on the publisher's goroutine in subscription order;
// a failing or panicking handler never stops delivery to the rest. Each bus
// is an explicit instance wired in at construction, never a package global.
type InMemoryEventBus struct {
	registry *HandlerRegistry
	logger   *zap.Logger
	running  atomic.Bool
	metrics  *busMetrics
}

// busMetrics holds the dispatch instruments. Nil until SetMeter is called.
type busMetrics struct {
	dispatchTotal    *telemetry.Counter
	dispatchDuration *telemetry.Histogram
}

// NewInMemoryEventBus creates a new in-memory event bus
func NewInMemoryEventBus(log *zap.Logger) *InMemoryEventBus {
	return &InMemoryEventBus{
		registry: NewHandlerRegistry(),
		logger:   log,
	}
}

// Publish delivers each event to every handler subscribed to its entity
// type. Handler failures are collected and reported together under the
// EVENT_HANDLING family after all deliveries have run, so a publish error
// never means a partial delivery.
func (b *InMemoryEventBus) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	var failures []error

	for _, event := range events {
		handlers := b.registry.HandlersFor(event.EntityType())

		for _, handler := range handlers {
			if err := b.dispatchToHandler(ctx, handler, event); err != nil {
				// Correlate with the publishing request's trace
				logger.WithTraceContext(ctx, b.logger).Error("handler failed to process event",
					zap.String("event_type", event.EventType()),
					zap.String("event_id", event.EventID().String()),
					zap.Error(err),
				)
				failures = append(failures, fmt.Errorf("event %s: %w", event.EventType(), err))
			}
		}
	}

	if len(failures) > 0 {
		return fmt.Errorf("%w: %w", shared.ErrEventHandling, errors.Join(failures...))
	}
	return nil
}

// Subscribe registers a handler for specific entity types
func (b *InMemoryEventBus) Subscribe(handler shared.EventHandler, entityTypes ...string) {
	// If the handler declares its own entity types, use those
	if len(entityTypes) == 0 {
		entityTypes = handler.EntityTypes()
	}
	b.registry.Register(handler, entityTypes...)
	b.logger.Debug("handler subscribed",
		zap.Strings("entity_types", entityTypes),
	)
}

// Unsubscribe removes a handler
func (b *InMemoryEventBus) Unsubscribe(handler shared.EventHandler) {
	b.registry.Unregister(handler)
	b.logger.Debug("handler unsubscribed")
}

// Start starts the event bus
func (b *InMemoryEventBus) Start(ctx context.Context) error {
	b.running.Store(true)
	b.logger.Info("event bus started")
	return nil
}

// Stop stops the event bus
func (b *InMemoryEventBus) Stop(ctx context.Context) error {
	b.running.Store(false)
	b.logger.Info("event bus stopped")
	return nil
}

// SetMeter attaches dispatch instruments to the bus. Call during wiring,
// before the first Publish.
func (b *InMemoryEventBus) SetMeter(meter metric.Meter) error {
	total, err := telemetry.NewCounter(meter,
		"event_dispatch_total", "Total number of event handler dispatches", "{dispatch}")
	if err != nil {
		return err
	}
	duration, err := telemetry.NewHistogram(meter, telemetry.HistogramOpts{
		Name:        "event_dispatch_duration_seconds",
		Description: "Event handler execution time",
		Unit:        "s",
		Boundaries:  telemetry.SmallDurationBuckets,
	})
	if err != nil {
		return err
	}

	b.metrics = &busMetrics{dispatchTotal: total, dispatchDuration: duration}
	return nil
}

// dispatchToHandler invokes a handler, converting a panic into an error so
// one broken handler cannot take the publisher down. The handler runs under
// profiling labels keyed by event type.
func (b *InMemoryEventBus) dispatchToHandler(ctx context.Context, handler shared.EventHandler, event shared.DomainEvent) (err error) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			logger.WithTraceContext(ctx, b.logger).Error("handler panicked",
				zap.String("event_type", event.EventType()),
				zap.Any("panic", r),
			)
			err = fmt.Errorf("handler panicked: %v", r)
		}
		b.recordDispatch(ctx, event, time.Since(start), err)
	}()

	telemetry.NewProfilingScope(nil).
		WithOperation("event_dispatch").
		WithLabel("event_type", event.EventType()).
		Run(ctx, func(ctx context.Context) {
			err = handler.Handle(ctx, event)
		})
	return err
}

// recordDispatch feeds the dispatch instruments when a meter is attached.
func (b *InMemoryEventBus) recordDispatch(ctx context.Context, event shared.DomainEvent, elapsed time.Duration, err error) {
	m := b.metrics
	if m == nil {
		return
	}

	status := "ok"
	if err != nil {
		status = "error"
	}
	m.dispatchTotal.Inc(ctx,
		attribute.String("event_type", event.EventType()),
		telemetry.AttrStatus.String(status),
	)
	m.dispatchDuration.RecordDuration(ctx, elapsed,
		attribute.String("event_type", event.EventType()),
	)
}

// Ensure InMemoryEventBus implements EventBus
var _ shared.EventBus = (*InMemoryEventBus)(nil)
