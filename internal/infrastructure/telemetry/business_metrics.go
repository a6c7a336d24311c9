// Package telemetry provides OpenTelemetry integration for metrics collection.
package telemetry

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// BusinessMetrics provides business metrics for the CRM system.
// It tracks partner registrations, quote activity, and the open support load.
type BusinessMetrics struct {
	meter  metric.Meter
	logger *zap.Logger

	// Counter metrics (monotonically increasing)
	partnerCreatedTotal *Counter
	quoteCreatedTotal   *Counter
	quoteAmountTotal    *Counter
	ticketResolvedTotal *Counter

	// Gauge metrics (point-in-time values)
	openTicketCount  *Gauge
	overdueTaskCount *Gauge

	// Periodic collector
	stopChan    chan struct{}
	stopOnce    sync.Once
	collectOnce sync.Once

	// Data provider for periodic collection
	supportProvider SupportMetricsProvider
}

// SupportMetricsProvider provides support workload data for periodic metrics
// collection. This interface allows the telemetry layer to query support
// state without depending on the support domain directly.
type SupportMetricsProvider interface {
	// GetOpenTicketCount returns the number of service tickets not yet closed
	GetOpenTicketCount(ctx context.Context) (int64, error)

	// GetOverdueTaskCount returns the number of unfinished tasks past their due date
	GetOverdueTaskCount(ctx context.Context) (int64, error)
}

// BusinessMetricsConfig holds configuration for business metrics.
type BusinessMetricsConfig struct {
	Meter           metric.Meter
	Logger          *zap.Logger
	CollectInterval time.Duration // Default: 5 minutes
	SupportProvider SupportMetricsProvider
}

// NewBusinessMetrics creates a new BusinessMetrics instance.
func NewBusinessMetrics(cfg BusinessMetricsConfig) (*BusinessMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	bm := &BusinessMetrics{
		meter:           cfg.Meter,
		logger:          logger,
		stopChan:        make(chan struct{}),
		supportProvider: cfg.SupportProvider,
	}

	// Initialize counter metrics
	var err error

	// Partner metrics
	bm.partnerCreatedTotal, err = NewCounter(
		cfg.Meter,
		"crm_partner_created_total",
		"Total number of partners (customers and suppliers) created",
		"{partners}",
	)
	if err != nil {
		return nil, err
	}

	// Quote metrics
	bm.quoteCreatedTotal, err = NewCounter(
		cfg.Meter,
		"crm_quote_created_total",
		"Total number of quotes created",
		"{quotes}",
	)
	if err != nil {
		return nil, err
	}

	bm.quoteAmountTotal, err = NewCounter(
		cfg.Meter,
		"crm_quote_amount_total",
		"Total quoted amount in cents (fen)",
		"{fen}",
	)
	if err != nil {
		return nil, err
	}

	// Ticket metrics
	bm.ticketResolvedTotal, err = NewCounter(
		cfg.Meter,
		"crm_ticket_resolved_total",
		"Total number of service tickets resolved",
		"{tickets}",
	)
	if err != nil {
		return nil, err
	}

	// Support gauge metrics
	bm.openTicketCount, err = NewGauge(
		cfg.Meter,
		"crm_ticket_open_count",
		"Number of service tickets not yet closed",
		"{tickets}",
	)
	if err != nil {
		return nil, err
	}

	bm.overdueTaskCount, err = NewGauge(
		cfg.Meter,
		"crm_task_overdue_count",
		"Number of unfinished follow-up tasks past their due date",
		"{tasks}",
	)
	if err != nil {
		return nil, err
	}

	return bm, nil
}

// =============================================================================
// Partner Metrics
// =============================================================================

// RecordPartnerCreated records a partner creation event.
// entityType is the domain entity name ("customer" or "supplier").
// This should be called from the application layer when a partner is created.
func (bm *BusinessMetrics) RecordPartnerCreated(ctx context.Context, entityType string) {
	bm.partnerCreatedTotal.Inc(ctx,
		AttrEntityType.String(entityType),
	)
}

// =============================================================================
// Quote Metrics
// =============================================================================

// RecordQuoteCreated records a quote creation event.
func (bm *BusinessMetrics) RecordQuoteCreated(ctx context.Context) {
	bm.quoteCreatedTotal.Inc(ctx)
}

// RecordQuoteAmount records the quoted amount.
// Amount should be in the smallest currency unit (cents/fen).
func (bm *BusinessMetrics) RecordQuoteAmount(ctx context.Context, amountFen int64) {
	bm.quoteAmountTotal.Add(ctx, amountFen)
}

// RecordQuoteWithAmount is a convenience method that records both quote count and amount.
func (bm *BusinessMetrics) RecordQuoteWithAmount(ctx context.Context, amount decimal.Decimal) {
	bm.RecordQuoteCreated(ctx)

	// Convert to fen (multiply by 100)
	amountFen := amount.Mul(decimal.NewFromInt(100)).IntPart()
	bm.RecordQuoteAmount(ctx, amountFen)
}

// =============================================================================
// Support Metrics
// =============================================================================

// RecordTicketResolved records a ticket resolution event.
// This should be called when a solution is recorded on a ticket.
func (bm *BusinessMetrics) RecordTicketResolved(ctx context.Context, priority string) {
	bm.ticketResolvedTotal.Inc(ctx,
		AttrPriority.String(priority),
	)
}

// RecordOpenTicketCount records the current number of open service tickets.
// This is a gauge metric that should be updated periodically.
func (bm *BusinessMetrics) RecordOpenTicketCount(ctx context.Context, count int64) {
	bm.openTicketCount.Record(ctx, count)
}

// RecordOverdueTaskCount records the number of unfinished tasks past their due date.
// This is a gauge metric that should be updated periodically.
func (bm *BusinessMetrics) RecordOverdueTaskCount(ctx context.Context, count int64) {
	bm.overdueTaskCount.Record(ctx, count)
}

// =============================================================================
// Periodic Collection
// =============================================================================

// StartPeriodicCollection starts periodic collection of gauge metrics.
// It collects support workload metrics every interval (default: 5 minutes).
// This is non-blocking - use Stop() to stop collection.
func (bm *BusinessMetrics) StartPeriodicCollection(ctx context.Context, interval time.Duration) {
	bm.collectOnce.Do(func() {
		if interval <= 0 {
			interval = 5 * time.Minute
		}

		go bm.runPeriodicCollection(ctx, interval)
	})
}

// runPeriodicCollection runs the periodic collection loop.
func (bm *BusinessMetrics) runPeriodicCollection(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Collect immediately on start
	bm.collectSupportMetrics(ctx)

	for {
		select {
		case <-bm.stopChan:
			bm.logger.Info("Stopping periodic business metrics collection")
			return
		case <-ctx.Done():
			bm.logger.Info("Context cancelled, stopping periodic business metrics collection")
			return
		case <-ticker.C:
			bm.collectSupportMetrics(ctx)
		}
	}
}

// collectSupportMetrics collects support workload gauge metrics.
func (bm *BusinessMetrics) collectSupportMetrics(ctx context.Context) {
	if bm.supportProvider == nil {
		bm.logger.Debug("No support provider configured, skipping support metrics collection")
		return
	}

	openTickets, err := bm.supportProvider.GetOpenTicketCount(ctx)
	if err != nil {
		bm.logger.Warn("Failed to get open ticket count", zap.Error(err))
	} else {
		bm.RecordOpenTicketCount(ctx, openTickets)
	}

	overdueTasks, err := bm.supportProvider.GetOverdueTaskCount(ctx)
	if err != nil {
		bm.logger.Warn("Failed to get overdue task count", zap.Error(err))
	} else {
		bm.RecordOverdueTaskCount(ctx, overdueTasks)
	}
}

// Stop stops the periodic collection.
func (bm *BusinessMetrics) Stop() {
	bm.stopOnce.Do(func() {
		close(bm.stopChan)
	})
}

// =============================================================================
// Error Types
// =============================================================================

// ErrMeterNil is returned when meter is nil.
var ErrMeterNil = &MetricsError{Op: "NewBusinessMetrics", Err: "meter cannot be nil"}

// MetricsError represents a metrics-related error.
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}
