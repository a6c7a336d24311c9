package logger

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"
)

// GormLogger routes gorm's query log through zap so SQL statements land in
// the same stream as the rest of the application logs.
type GormLogger struct {
	log           *zap.Logger
	sugar         *zap.SugaredLogger
	level         gormlogger.LogLevel
	slowThreshold time.Duration
	skipNotFound  bool
}

// GormLoggerOption tunes a GormLogger beyond the constructor defaults.
type GormLoggerOption func(*GormLogger)

// WithSlowThreshold overrides the elapsed time after which a statement is
// reported as slow. Zero disables slow statement reporting.
func WithSlowThreshold(d time.Duration) GormLoggerOption {
	return func(l *GormLogger) { l.slowThreshold = d }
}

// WithIgnoreRecordNotFoundError controls whether gorm's ErrRecordNotFound
// shows up in the error log. Defaults to true, keeping routine lookup misses
// out of the stream.
func WithIgnoreRecordNotFoundError(ignore bool) GormLoggerOption {
	return func(l *GormLogger) { l.skipNotFound = ignore }
}

// NewGormLogger adapts a zap logger to gorm's logger interface. Statements
// slower than 200ms are reported as slow unless an option says otherwise.
func NewGormLogger(zapLogger *zap.Logger, level gormlogger.LogLevel, opts ...GormLoggerOption) *GormLogger {
	named := zapLogger.Named("gorm")
	l := &GormLogger{
		log:           named,
		sugar:         named.Sugar(),
		level:         level,
		slowThreshold: 200 * time.Millisecond,
		skipNotFound:  true,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// LogMode implements gormlogger.Interface. It returns a copy so per-session
// level overrides do not touch the shared logger.
func (l *GormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	clone := *l
	clone.level = level
	return &clone
}

// Info implements gormlogger.Interface.
func (l *GormLogger) Info(ctx context.Context, msg string, data ...any) {
	if l.level < gormlogger.Info {
		return
	}
	l.sugar.Infof(msg, data...)
}

// Warn implements gormlogger.Interface.
func (l *GormLogger) Warn(ctx context.Context, msg string, data ...any) {
	if l.level < gormlogger.Warn {
		return
	}
	l.sugar.Warnf(msg, data...)
}

// Error implements gormlogger.Interface.
func (l *GormLogger) Error(ctx context.Context, msg string, data ...any) {
	if l.level < gormlogger.Error {
		return
	}
	l.sugar.Errorf(msg, data...)
}

// Trace implements gormlogger.Interface. Failed statements log at error,
// slow ones at warn, everything else at debug when info logging is on.
func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}

	elapsed := time.Since(begin)
	sql, rows := fc()

	switch {
	case err != nil && l.level >= gormlogger.Error:
		if l.skipNotFound && errors.Is(err, gormlogger.ErrRecordNotFound) {
			return
		}
		l.log.Error("SQL error", l.queryFields(ctx, sql, rows, elapsed, zap.Error(err))...)

	case l.slowThreshold > 0 && elapsed > l.slowThreshold && l.level >= gormlogger.Warn:
		l.log.Warn("Slow SQL", l.queryFields(ctx, sql, rows, elapsed, zap.Duration("threshold", l.slowThreshold))...)

	case l.level >= gormlogger.Info:
		l.log.Debug("SQL query", l.queryFields(ctx, sql, rows, elapsed)...)
	}
}

// queryFields builds the field set for a traced statement, tagging it with
// the request id when the calling context carries one.
func (l *GormLogger) queryFields(ctx context.Context, sql string, rows int64, elapsed time.Duration, extra ...zap.Field) []zap.Field {
	fields := make([]zap.Field, 0, 4+len(extra))
	fields = append(fields,
		zap.String("sql", sql),
		zap.Int64("rows", rows),
		zap.Duration("elapsed", elapsed),
	)
	if id := GetRequestID(ctx); id != "" {
		fields = append(fields, zap.String("request_id", id))
	}
	return append(fields, extra...)
}

var gormLevels = map[string]gormlogger.LogLevel{
	"silent": gormlogger.Silent,
	"error":  gormlogger.Error,
	"warn":   gormlogger.Warn,
	"info":   gormlogger.Info,
	"debug":  gormlogger.Info,
}

// MapGormLogLevel translates the application log level into the matching
// gorm level. Debug maps to gorm's Info, its most verbose setting, and
// unrecognized values fall back to Warn.
func MapGormLogLevel(level string) gormlogger.LogLevel {
	if lvl, ok := gormLevels[level]; ok {
		return lvl
	}
	return gormlogger.Warn
}
