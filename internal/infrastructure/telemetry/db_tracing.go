// Package telemetry provides OpenTelemetry integration for database query tracing.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBTracingConfig controls span creation for database queries.
type DBTracingConfig struct {
	Enabled          bool
	LogFullSQL       bool          // Include bind variables in spans. Never enable in production.
	SlowQueryThresh  time.Duration // Queries above this get a slow_query_warning event, default 200ms.
	DBSystem         string
	WithoutVariables bool // Strip bind variables even when LogFullSQL is set.
}

// DefaultDBTracingConfig returns the secure defaults: tracing off, variables
// stripped from recorded statements.
func DefaultDBTracingConfig() DBTracingConfig {
	return DBTracingConfig{
		Enabled:          false,
		LogFullSQL:       false,
		SlowQueryThresh:  200 * time.Millisecond,
		DBSystem:         "postgresql",
		WithoutVariables: true,
	}
}

// DBTracingPlugin attaches otelgorm spans to GORM queries and enriches them
// with row counts, table names, errors and slow query events.
type DBTracingPlugin struct {
	config DBTracingConfig
	logger *zap.Logger
}

func NewDBTracingPlugin(cfg DBTracingConfig, logger *zap.Logger) *DBTracingPlugin {
	return &DBTracingPlugin{
		config: cfg,
		logger: logger,
	}
}

// RegisterOtelGorm wires query spans into the given GORM instance. The
// enrichment callbacks are registered before the otelgorm plugin: GORM keeps
// registration order among hooks on the same anchor, and otelgorm ends the
// query span in its own after hook, so ours must come first to see a span
// that is still recording.
func (p *DBTracingPlugin) RegisterOtelGorm(db *gorm.DB) error {
	if !p.config.Enabled {
		p.logger.Debug("Database tracing disabled, skipping otelgorm registration")
		return nil
	}

	if err := p.registerQueryCallbacks(db); err != nil {
		return fmt.Errorf("register query callbacks: %w", err)
	}
	if err := db.Use(otelgorm.NewPlugin(p.otelgormOptions()...)); err != nil {
		return fmt.Errorf("register otelgorm plugin: %w", err)
	}

	p.logger.Info("Database tracing enabled",
		zap.Bool("log_full_sql", p.config.LogFullSQL),
		zap.Duration("slow_query_threshold", p.config.SlowQueryThresh),
		zap.String("db_system", p.config.DBSystem),
	)
	return nil
}

func (p *DBTracingPlugin) otelgormOptions() []otelgorm.Option {
	opts := []otelgorm.Option{
		otelgorm.WithDBName(p.config.DBSystem),
	}
	if p.config.WithoutVariables || !p.config.LogFullSQL {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	return opts
}

// registerQueryCallbacks hooks query timing and span enrichment around every
// GORM operation kind.
func (p *DBTracingPlugin) registerQueryCallbacks(db *gorm.DB) error {
	cb := db.Callback()
	return errors.Join(
		cb.Create().Before("gorm:create").Register("telemetry:start_create", stampQueryStart),
		cb.Create().After("gorm:create").Register("telemetry:inspect_create", p.inspectQuery),
		cb.Query().Before("gorm:query").Register("telemetry:start_query", stampQueryStart),
		cb.Query().After("gorm:query").Register("telemetry:inspect_query", p.inspectQuery),
		cb.Update().Before("gorm:update").Register("telemetry:start_update", stampQueryStart),
		cb.Update().After("gorm:update").Register("telemetry:inspect_update", p.inspectQuery),
		cb.Delete().Before("gorm:delete").Register("telemetry:start_delete", stampQueryStart),
		cb.Delete().After("gorm:delete").Register("telemetry:inspect_delete", p.inspectQuery),
		cb.Row().Before("gorm:row").Register("telemetry:start_row", stampQueryStart),
		cb.Row().After("gorm:row").Register("telemetry:inspect_row", p.inspectQuery),
		cb.Raw().Before("gorm:raw").Register("telemetry:start_raw", stampQueryStart),
		cb.Raw().After("gorm:raw").Register("telemetry:inspect_raw", p.inspectQuery),
	)
}

func stampQueryStart(db *gorm.DB) {
	if db.Statement.Context != nil {
		db.Statement.Context = context.WithValue(db.Statement.Context, queryStartTimeKey, time.Now())
	}
}

// inspectQuery annotates the active query span after the operation ran.
func (p *DBTracingPlugin) inspectQuery(db *gorm.DB) {
	ctx := db.Statement.Context
	if ctx == nil {
		return
	}
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}

	if db.Statement.RowsAffected >= 0 {
		span.SetAttributes(attribute.Int64("db.rows_affected", db.Statement.RowsAffected))
	}
	if db.Statement.Table != "" {
		span.SetAttributes(attribute.String("db.sql.table", db.Statement.Table))
	}

	// Missing rows are an expected outcome, not a query failure.
	if db.Error != nil && !errors.Is(db.Error, gorm.ErrRecordNotFound) {
		span.SetStatus(codes.Error, db.Error.Error())
		span.RecordError(db.Error)
	}

	start, ok := ctx.Value(queryStartTimeKey).(time.Time)
	if !ok {
		return
	}
	if elapsed := time.Since(start); elapsed > p.config.SlowQueryThresh {
		span.SetAttributes(
			attribute.Bool("db.slow_query", true),
			attribute.Int64("db.query_duration_ms", elapsed.Milliseconds()),
		)
		span.AddEvent("slow_query_warning", trace.WithAttributes(
			attribute.Int64("duration_ms", elapsed.Milliseconds()),
			attribute.Int64("threshold_ms", p.config.SlowQueryThresh.Milliseconds()),
		))
	}
}

type contextKey string

// queryStartTimeKey carries the query start time from the before callback to
// inspectQuery.
const queryStartTimeKey contextKey = "query_start_time"

// WithQueryStartTime marks the start of a query issued outside the callback
// chain so inspectQuery can still measure it.
func WithQueryStartTime(ctx context.Context) context.Context {
	return context.WithValue(ctx, queryStartTimeKey, time.Now())
}
