// Package telemetry provides OpenTelemetry integration for database metrics collection.
package telemetry

import (
	"context"
	"database/sql"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBMetricsConfig holds configuration for database metrics collection.
type DBMetricsConfig struct {
	// Enabled controls whether metrics collection is active.
	Enabled bool
	// SlowQueryThreshold marks queries as slow, default 200ms.
	SlowQueryThreshold time.Duration
	// PoolStatsInterval is the sampling period for pool stats, default 15s.
	PoolStatsInterval time.Duration
}

// DefaultDBMetricsConfig returns the default database metrics configuration.
func DefaultDBMetricsConfig() DBMetricsConfig {
	return DBMetricsConfig{
		Enabled:            true,
		SlowQueryThreshold: 200 * time.Millisecond,
		PoolStatsInterval:  15 * time.Second,
	}
}

// DBMetrics bundles the instruments that describe database health: pool
// saturation gauges plus query volume, latency and slow-query counters.
type DBMetrics struct {
	poolConnections    *Gauge
	poolConnectionsMax *Gauge
	poolUtilization    *FloatGauge

	queryTotal     *Counter
	queryDuration  *Histogram
	slowQueryTotal *Counter

	config   DBMetricsConfig
	logger   *zap.Logger
	sqlDB    *sql.DB
	stopCh   chan struct{}
	wg       sync.WaitGroup
	mu       sync.RWMutex
	stopOnce sync.Once
}

// NewDBMetrics registers the database instruments on the given meter.
func NewDBMetrics(meter metric.Meter, cfg DBMetricsConfig, logger *zap.Logger) (*DBMetrics, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.SlowQueryThreshold <= 0 {
		cfg.SlowQueryThreshold = 200 * time.Millisecond
	}
	if cfg.PoolStatsInterval <= 0 {
		cfg.PoolStatsInterval = 15 * time.Second
	}

	m := &DBMetrics{
		config: cfg,
		logger: logger,
		stopCh: make(chan struct{}),
	}

	var err error
	if m.poolConnections, err = NewGauge(meter, "db_pool_connections",
		"Connections in the pool by state", "{connection}"); err != nil {
		return nil, err
	}
	if m.poolConnectionsMax, err = NewGauge(meter, "db_pool_connections_max",
		"Connection pool size limit", "{connection}"); err != nil {
		return nil, err
	}
	if m.poolUtilization, err = NewFloatGauge(meter, "db_pool_utilization_ratio",
		"Fraction of the connection pool in use", "1"); err != nil {
		return nil, err
	}
	if m.queryTotal, err = NewCounter(meter, "db_query_total",
		"Database queries by operation type", "{query}"); err != nil {
		return nil, err
	}
	if m.queryDuration, err = NewHistogram(meter, HistogramOpts{
		Name:        "db_query_duration_seconds",
		Description: "Database query latency distribution in seconds",
		Unit:        "s",
		Boundaries:  DBDurationBuckets,
	}); err != nil {
		return nil, err
	}
	if m.slowQueryTotal, err = NewCounter(meter, "db_slow_query_total",
		"Queries slower than the configured threshold", "{query}"); err != nil {
		return nil, err
	}

	return m, nil
}

// SetSQLDB attaches the sql.DB whose pool stats will be sampled. Must be
// called before StartPoolStatsCollection.
func (m *DBMetrics) SetSQLDB(sqlDB *sql.DB) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sqlDB = sqlDB
}

// StartPoolStatsCollection launches a goroutine that samples connection pool
// statistics on the configured interval until Stop or context cancellation.
func (m *DBMetrics) StartPoolStatsCollection(ctx context.Context) {
	m.mu.RLock()
	sqlDB := m.sqlDB
	m.mu.RUnlock()

	if sqlDB == nil {
		m.logger.Warn("Cannot start pool stats collection: sqlDB not set")
		return
	}

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()

		ticker := time.NewTicker(m.config.PoolStatsInterval)
		defer ticker.Stop()

		m.samplePool(ctx)

		for {
			select {
			case <-ticker.C:
				m.samplePool(ctx)
			case <-m.stopCh:
				m.logger.Debug("Stopping pool stats collection")
				return
			case <-ctx.Done():
				m.logger.Debug("Pool stats collection context cancelled")
				return
			}
		}
	}()

	m.logger.Info("Started database connection pool stats collection",
		zap.Duration("interval", m.config.PoolStatsInterval),
	)
}

// samplePool records one snapshot of the connection pool state. Idle and
// InUse sum to OpenConnections; WaitCount is cumulative, not a state, and is
// therefore skipped.
func (m *DBMetrics) samplePool(ctx context.Context) {
	m.mu.RLock()
	sqlDB := m.sqlDB
	m.mu.RUnlock()

	if sqlDB == nil {
		return
	}

	stats := sqlDB.Stats()

	m.poolConnectionsMax.Record(ctx, int64(stats.MaxOpenConnections))
	m.poolConnections.Record(ctx, int64(stats.Idle), AttrDBState.String("idle"))
	m.poolConnections.Record(ctx, int64(stats.InUse), AttrDBState.String("in_use"))
	m.poolConnections.Record(ctx, int64(stats.OpenConnections), AttrDBState.String("open"))

	if stats.MaxOpenConnections > 0 {
		m.poolUtilization.Record(ctx, float64(stats.InUse)/float64(stats.MaxOpenConnections))
	}
}

// Stop terminates the pool stats goroutine. Safe to call multiple times.
func (m *DBMetrics) Stop() {
	m.stopOnce.Do(func() {
		close(m.stopCh)
		m.wg.Wait()
		m.logger.Debug("Database metrics stopped")
	})
}

// RecordQuery records count, latency and slow-query metrics for one query.
func (m *DBMetrics) RecordQuery(ctx context.Context, operation string, table string, duration time.Duration, err error) {
	operation = strings.ToUpper(operation)
	if operation == "" {
		operation = "UNKNOWN"
	}

	m.queryTotal.Inc(ctx, AttrDBOperation.String(operation))
	m.queryDuration.RecordDuration(ctx, duration, AttrDBOperation.String(operation))

	if duration > m.config.SlowQueryThreshold {
		if table == "" {
			table = "unknown"
		}
		m.slowQueryTotal.Inc(ctx, AttrDBTable.String(table))
	}
}

// queryStartKey carries the query start time through the gorm statement
// context between the before and after callbacks.
type queryStartKey struct{}

// DBMetricsPlugin is a GORM plugin that feeds query metrics into DBMetrics.
type DBMetricsPlugin struct {
	metrics *DBMetrics
	logger  *zap.Logger
}

// NewDBMetricsPlugin creates a GORM plugin wired to the given metrics.
func NewDBMetricsPlugin(metrics *DBMetrics, logger *zap.Logger) *DBMetricsPlugin {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DBMetricsPlugin{
		metrics: metrics,
		logger:  logger,
	}
}

// Name returns the plugin name.
func (p *DBMetricsPlugin) Name() string {
	return "db_metrics"
}

// Initialize hooks every operation type with a start-time stamp before and a
// metric record after. Create/Query/Update/Delete map directly to SQL verbs;
// Row and Raw carry arbitrary SQL, so the verb is sniffed from the statement.
func (p *DBMetricsPlugin) Initialize(db *gorm.DB) error {
	cb := db.Callback()

	registrations := []error{
		cb.Create().Before("gorm:create").Register("db_metrics:before_create", markQueryStart),
		cb.Query().Before("gorm:query").Register("db_metrics:before_query", markQueryStart),
		cb.Update().Before("gorm:update").Register("db_metrics:before_update", markQueryStart),
		cb.Delete().Before("gorm:delete").Register("db_metrics:before_delete", markQueryStart),
		cb.Row().Before("gorm:row").Register("db_metrics:before_row", markQueryStart),
		cb.Raw().Before("gorm:raw").Register("db_metrics:before_raw", markQueryStart),

		cb.Create().After("gorm:create").Register("db_metrics:after_create", p.afterOp("INSERT")),
		cb.Query().After("gorm:query").Register("db_metrics:after_query", p.afterOp("SELECT")),
		cb.Update().After("gorm:update").Register("db_metrics:after_update", p.afterOp("UPDATE")),
		cb.Delete().After("gorm:delete").Register("db_metrics:after_delete", p.afterOp("DELETE")),
		cb.Row().After("gorm:row").Register("db_metrics:after_row", p.afterSQL),
		cb.Raw().After("gorm:raw").Register("db_metrics:after_raw", p.afterSQL),
	}
	for _, err := range registrations {
		if err != nil {
			return err
		}
	}

	p.logger.Info("Database metrics plugin initialized")
	return nil
}

func markQueryStart(db *gorm.DB) {
	ctx := db.Statement.Context
	if ctx == nil {
		ctx = context.Background()
	}
	db.Statement.Context = context.WithValue(ctx, queryStartKey{}, time.Now())
}

// afterOp returns an after-callback that records the given operation verb.
func (p *DBMetricsPlugin) afterOp(operation string) func(*gorm.DB) {
	return func(db *gorm.DB) {
		p.record(db, operation)
	}
}

// afterSQL records a Row/Raw statement, sniffing the verb from its SQL.
func (p *DBMetricsPlugin) afterSQL(db *gorm.DB) {
	p.record(db, detectOperationType(db.Statement.SQL.String()))
}

func (p *DBMetricsPlugin) record(db *gorm.DB, operation string) {
	ctx := db.Statement.Context
	if ctx == nil {
		ctx = context.Background()
	}

	var elapsed time.Duration
	if start, ok := ctx.Value(queryStartKey{}).(time.Time); ok {
		elapsed = time.Since(start)
	}

	p.metrics.RecordQuery(ctx, operation, db.Statement.Table, elapsed, db.Error)
}

// detectOperationType sniffs the SQL verb from a raw statement.
func detectOperationType(sql string) string {
	sql = strings.ToUpper(strings.TrimSpace(sql))

	for _, op := range [...]string{"SELECT", "INSERT", "UPDATE", "DELETE"} {
		if strings.HasPrefix(sql, op) {
			return op
		}
	}
	return "OTHER"
}

// RegisterDBMetrics creates database metrics and installs the GORM plugin on
// db. It returns nil metrics when collection is disabled or no meter provider
// is available; otherwise the caller owns the returned DBMetrics lifecycle
// and must call Stop on shutdown.
func RegisterDBMetrics(db *gorm.DB, meterProvider *MeterProvider, cfg DBMetricsConfig, logger *zap.Logger) (*DBMetrics, error) {
	if !cfg.Enabled {
		logger.Debug("Database metrics disabled, skipping registration")
		return nil, nil
	}
	if meterProvider == nil || !meterProvider.IsEnabled() {
		logger.Debug("MeterProvider not available, skipping database metrics")
		return nil, nil
	}

	metrics, err := NewDBMetrics(meterProvider.Meter("db.client"), cfg, logger)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	metrics.SetSQLDB(sqlDB)

	if err := db.Use(NewDBMetricsPlugin(metrics, logger)); err != nil {
		return nil, err
	}

	logger.Info("Database metrics registered",
		zap.Duration("slow_query_threshold", cfg.SlowQueryThreshold),
		zap.Duration("pool_stats_interval", cfg.PoolStatsInterval),
	)

	return metrics, nil
}
