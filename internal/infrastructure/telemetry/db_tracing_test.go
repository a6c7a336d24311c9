package telemetry

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type ticketNote struct {
	ID        uint   `gorm:"primaryKey"`
	Body      string `gorm:"size:200"`
	CreatedAt time.Time
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&ticketNote{}))
	return db
}

// startRecordedSpan opens a span on a throwaway provider so tests can drive
// inspectQuery directly and read back what it recorded.
func startRecordedSpan(t *testing.T, name string) (context.Context, trace.Span, *tracetest.SpanRecorder) {
	t.Helper()

	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	ctx, span := tp.Tracer("db-tracing-test").Start(context.Background(), name)
	return ctx, span, sr
}

// installGlobalRecorder swaps the global tracer provider for one backed by a
// span recorder. otelgorm picks up the provider at plugin creation time, so
// tests using this must not run in parallel.
func installGlobalRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()

	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(prev)
		_ = tp.Shutdown(context.Background())
	})
	return sr
}

func spanAttribute(s sdktrace.ReadOnlySpan, key attribute.Key) (attribute.Value, bool) {
	set := attribute.NewSet(s.Attributes()...)
	return set.Value(key)
}

func recordedStatements(sr *tracetest.SpanRecorder) []string {
	var out []string
	for _, s := range sr.Ended() {
		if v, ok := spanAttribute(s, "db.statement"); ok {
			out = append(out, v.AsString())
		}
	}
	return out
}

func TestDefaultDBTracingConfig(t *testing.T) {
	cfg := DefaultDBTracingConfig()

	assert.False(t, cfg.Enabled)
	assert.False(t, cfg.LogFullSQL)
	assert.Equal(t, 200*time.Millisecond, cfg.SlowQueryThresh)
	assert.Equal(t, "postgresql", cfg.DBSystem)
	assert.True(t, cfg.WithoutVariables, "bind variables must be stripped by default")
}

func TestDBTracingPlugin_Register(t *testing.T) {
	enabled := DBTracingConfig{
		Enabled:          true,
		SlowQueryThresh:  200 * time.Millisecond,
		DBSystem:         "sqlite",
		WithoutVariables: true,
	}

	t.Run("config is retained", func(t *testing.T) {
		plugin := NewDBTracingPlugin(enabled, zap.NewNop())
		assert.Equal(t, enabled, plugin.config)
	})

	t.Run("disabled registers nothing", func(t *testing.T) {
		db := openTestDB(t)
		plugin := NewDBTracingPlugin(DefaultDBTracingConfig(), zap.NewNop())

		require.NoError(t, plugin.RegisterOtelGorm(db))
		assert.Nil(t, db.Callback().Query().Get("telemetry:inspect_query"))
		assert.Empty(t, db.Config.Plugins)
	})

	t.Run("enabled registers callbacks and plugin", func(t *testing.T) {
		db := openTestDB(t)
		plugin := NewDBTracingPlugin(enabled, zap.NewNop())

		require.NoError(t, plugin.RegisterOtelGorm(db))
		assert.NotNil(t, db.Callback().Create().Get("telemetry:start_create"))
		assert.NotNil(t, db.Callback().Query().Get("telemetry:inspect_query"))
		assert.NotEmpty(t, db.Config.Plugins)
	})

	t.Run("second registration fails", func(t *testing.T) {
		db := openTestDB(t)
		plugin := NewDBTracingPlugin(enabled, zap.NewNop())

		require.NoError(t, plugin.RegisterOtelGorm(db))
		assert.Error(t, plugin.RegisterOtelGorm(db))
	})
}

func TestInspectQuery(t *testing.T) {
	newPlugin := func(thresh time.Duration) *DBTracingPlugin {
		return NewDBTracingPlugin(DBTracingConfig{SlowQueryThresh: thresh}, zap.NewNop())
	}

	t.Run("rows affected and table", func(t *testing.T) {
		db := openTestDB(t)
		ctx, span, sr := startRecordedSpan(t, "bulk-insert")

		notes := []ticketNote{{Body: "first"}, {Body: "second"}, {Body: "third"}}
		tx := db.WithContext(ctx).Create(&notes)
		require.NoError(t, tx.Error)

		newPlugin(200 * time.Millisecond).inspectQuery(tx)
		span.End()

		spans := sr.Ended()
		require.Len(t, spans, 1)

		rows, ok := spanAttribute(spans[0], "db.rows_affected")
		require.True(t, ok)
		assert.Equal(t, int64(3), rows.AsInt64())

		table, ok := spanAttribute(spans[0], "db.sql.table")
		require.True(t, ok)
		assert.Equal(t, "ticket_notes", table.AsString())
	})

	t.Run("slow query gets marked", func(t *testing.T) {
		db := openTestDB(t)
		ctx, span, sr := startRecordedSpan(t, "slow-find")

		ctx = WithQueryStartTime(ctx)
		time.Sleep(time.Millisecond)

		var note ticketNote
		tx := db.WithContext(ctx).Limit(1).Find(&note)
		require.NoError(t, tx.Error)

		newPlugin(time.Nanosecond).inspectQuery(tx)
		span.End()

		spans := sr.Ended()
		require.Len(t, spans, 1)

		slow, ok := spanAttribute(spans[0], "db.slow_query")
		require.True(t, ok)
		assert.True(t, slow.AsBool())

		var warned bool
		for _, event := range spans[0].Events() {
			if event.Name != "slow_query_warning" {
				continue
			}
			warned = true
			eventSet := attribute.NewSet(event.Attributes...)
			duration, ok := eventSet.Value("duration_ms")
			require.True(t, ok)
			assert.GreaterOrEqual(t, duration.AsInt64(), int64(1))
		}
		assert.True(t, warned, "slow_query_warning event should be recorded")
	})

	t.Run("fast query stays unmarked", func(t *testing.T) {
		db := openTestDB(t)
		ctx, span, sr := startRecordedSpan(t, "fast-find")

		ctx = WithQueryStartTime(ctx)

		var note ticketNote
		tx := db.WithContext(ctx).Limit(1).Find(&note)
		require.NoError(t, tx.Error)

		newPlugin(time.Hour).inspectQuery(tx)
		span.End()

		spans := sr.Ended()
		require.Len(t, spans, 1)

		_, ok := spanAttribute(spans[0], "db.slow_query")
		assert.False(t, ok)
		assert.Empty(t, spans[0].Events())
	})

	t.Run("record not found is not an error", func(t *testing.T) {
		db := openTestDB(t)
		ctx, span, sr := startRecordedSpan(t, "missing-row")

		var note ticketNote
		tx := db.WithContext(ctx).First(&note, 99999)
		require.ErrorIs(t, tx.Error, gorm.ErrRecordNotFound)

		newPlugin(200 * time.Millisecond).inspectQuery(tx)
		span.End()

		spans := sr.Ended()
		require.Len(t, spans, 1)
		assert.Equal(t, codes.Unset, spans[0].Status().Code)
	})

	t.Run("query errors mark the span", func(t *testing.T) {
		db := openTestDB(t)
		ctx, span, sr := startRecordedSpan(t, "broken-query")

		var rows []ticketNote
		tx := db.WithContext(ctx).Table("missing_table").Find(&rows)
		require.Error(t, tx.Error)

		newPlugin(200 * time.Millisecond).inspectQuery(tx)
		span.End()

		spans := sr.Ended()
		require.Len(t, spans, 1)
		assert.Equal(t, codes.Error, spans[0].Status().Code)
		assert.Contains(t, spans[0].Status().Description, "no such table")

		var recorded bool
		for _, event := range spans[0].Events() {
			if event.Name == "exception" {
				recorded = true
			}
		}
		assert.True(t, recorded, "the error should be recorded on the span")
	})

	t.Run("no recording span is a no-op", func(t *testing.T) {
		db := openTestDB(t)
		tx := db.WithContext(context.Background())
		newPlugin(200 * time.Millisecond).inspectQuery(tx)
	})

	t.Run("nil statement context is a no-op", func(t *testing.T) {
		db := openTestDB(t)
		db.Statement.Context = nil
		newPlugin(200 * time.Millisecond).inspectQuery(db)
	})
}

func TestRegisterOtelGorm_SpanEnrichment(t *testing.T) {
	register := func(t *testing.T, cfg DBTracingConfig) *gorm.DB {
		t.Helper()
		db := openTestDB(t)
		require.NoError(t, NewDBTracingPlugin(cfg, zap.NewNop()).RegisterOtelGorm(db))
		return db
	}

	t.Run("query spans carry enrichment", func(t *testing.T) {
		sr := installGlobalRecorder(t)
		db := register(t, DBTracingConfig{
			Enabled:          true,
			SlowQueryThresh:  200 * time.Millisecond,
			DBSystem:         "sqlite",
			WithoutVariables: true,
		})

		require.NoError(t, db.Create(&ticketNote{Body: "ordering works"}).Error)

		var enriched sdktrace.ReadOnlySpan
		for _, s := range sr.Ended() {
			if _, ok := spanAttribute(s, "db.rows_affected"); ok {
				enriched = s
				break
			}
		}
		require.NotNil(t, enriched, "enrichment must land before otelgorm ends the span")

		rows, _ := spanAttribute(enriched, "db.rows_affected")
		assert.Equal(t, int64(1), rows.AsInt64())
		table, _ := spanAttribute(enriched, "db.sql.table")
		assert.Equal(t, "ticket_notes", table.AsString())
	})

	t.Run("bind variables stripped by default", func(t *testing.T) {
		sr := installGlobalRecorder(t)
		db := register(t, DBTracingConfig{
			Enabled:          true,
			SlowQueryThresh:  200 * time.Millisecond,
			DBSystem:         "sqlite",
			WithoutVariables: true,
		})

		require.NoError(t, db.Create(&ticketNote{Body: "secret-note-11"}).Error)

		stmts := strings.Join(recordedStatements(sr), "\n")
		require.NotEmpty(t, stmts)
		assert.Contains(t, stmts, "INSERT INTO")
		assert.NotContains(t, stmts, "secret-note-11")
	})

	t.Run("full sql keeps variables", func(t *testing.T) {
		sr := installGlobalRecorder(t)
		db := register(t, DBTracingConfig{
			Enabled:         true,
			LogFullSQL:      true,
			SlowQueryThresh: 200 * time.Millisecond,
			DBSystem:        "sqlite",
		})

		require.NoError(t, db.Create(&ticketNote{Body: "body-literal-77"}).Error)

		stmts := strings.Join(recordedStatements(sr), "\n")
		assert.Contains(t, stmts, "body-literal-77")
	})
}

func TestWithQueryStartTime(t *testing.T) {
	ctx := WithQueryStartTime(context.Background())

	start, ok := ctx.Value(queryStartTimeKey).(time.Time)
	require.True(t, ok)
	assert.WithinDuration(t, time.Now(), start, time.Second)
}

func BenchmarkInspectQuery(b *testing.B) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		b.Fatal(err)
	}
	if err := db.AutoMigrate(&ticketNote{}); err != nil {
		b.Fatal(err)
	}

	plugin := NewDBTracingPlugin(DBTracingConfig{SlowQueryThresh: 200 * time.Millisecond}, zap.NewNop())
	tx := db.WithContext(context.Background())

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		plugin.inspectQuery(tx)
	}
}
