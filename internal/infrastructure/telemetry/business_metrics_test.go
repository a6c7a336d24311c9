package telemetry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/crm/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"
	"go.uber.org/zap"
)

func TestNewBusinessMetrics(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")

	bm, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
		Meter:  meter,
		Logger: zap.NewNop(),
	})

	require.NoError(t, err)
	require.NotNil(t, bm)
}

func TestNewBusinessMetrics_NilMeter(t *testing.T) {
	bm, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
		Meter:  nil,
		Logger: zap.NewNop(),
	})

	require.Error(t, err)
	assert.Nil(t, bm)
	assert.Equal(t, "NewBusinessMetrics: meter cannot be nil", err.Error())
}

func TestBusinessMetrics_RecordPartnerCreated(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")
	bm, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
		Meter: meter,
	})
	require.NoError(t, err)

	ctx := context.Background()

	// Should not panic
	bm.RecordPartnerCreated(ctx, "customer")
	bm.RecordPartnerCreated(ctx, "supplier")
}

func TestBusinessMetrics_RecordQuoteCreated(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")
	bm, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
		Meter: meter,
	})
	require.NoError(t, err)

	ctx := context.Background()

	// Should not panic
	bm.RecordQuoteCreated(ctx)
	bm.RecordQuoteCreated(ctx)
}

func TestBusinessMetrics_RecordQuoteAmount(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")
	bm, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
		Meter: meter,
	})
	require.NoError(t, err)

	ctx := context.Background()

	// Should not panic
	bm.RecordQuoteAmount(ctx, 10000) // 100.00 CNY
	bm.RecordQuoteAmount(ctx, 50000)
}

func TestBusinessMetrics_RecordQuoteWithAmount(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")
	bm, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
		Meter: meter,
	})
	require.NoError(t, err)

	ctx := context.Background()
	amount := decimal.NewFromFloat(199.99)

	// Should not panic and record both count and amount
	bm.RecordQuoteWithAmount(ctx, amount)
}

func TestBusinessMetrics_RecordTicketResolved(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")
	bm, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
		Meter: meter,
	})
	require.NoError(t, err)

	ctx := context.Background()

	// Should not panic
	bm.RecordTicketResolved(ctx, "high")
	bm.RecordTicketResolved(ctx, "low")
}

func TestBusinessMetrics_RecordOpenTicketCount(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")
	bm, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
		Meter: meter,
	})
	require.NoError(t, err)

	ctx := context.Background()

	// Should not panic
	bm.RecordOpenTicketCount(ctx, 12)
	bm.RecordOpenTicketCount(ctx, 7)
}

func TestBusinessMetrics_RecordOverdueTaskCount(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")
	bm, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
		Meter: meter,
	})
	require.NoError(t, err)

	ctx := context.Background()

	// Should not panic
	bm.RecordOverdueTaskCount(ctx, 5)
	bm.RecordOverdueTaskCount(ctx, 0)
}

// Mock implementation for testing periodic collection

type mockSupportProvider struct {
	openTickets  int64
	overdueTasks int64
	err          error
}

func (m *mockSupportProvider) GetOpenTicketCount(ctx context.Context) (int64, error) {
	if m.err != nil {
		return 0, m.err
	}
	return m.openTickets, nil
}

func (m *mockSupportProvider) GetOverdueTaskCount(ctx context.Context) (int64, error) {
	if m.err != nil {
		return 0, m.err
	}
	return m.overdueTasks, nil
}

func TestBusinessMetrics_PeriodicCollection(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")

	supportProvider := &mockSupportProvider{
		openTickets:  12,
		overdueTasks: 3,
	}

	bm, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
		Meter:           meter,
		Logger:          zap.NewNop(),
		SupportProvider: supportProvider,
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start periodic collection with short interval for testing
	bm.StartPeriodicCollection(ctx, 100*time.Millisecond)

	// Wait for at least one collection cycle
	time.Sleep(150 * time.Millisecond)

	// Stop collection
	bm.Stop()

	// Should complete without error
}

func TestBusinessMetrics_PeriodicCollection_NoProvider(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")

	bm, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
		Meter:  meter,
		Logger: zap.NewNop(),
		// No support provider
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Should not panic with no support provider
	bm.StartPeriodicCollection(ctx, 50*time.Millisecond)

	time.Sleep(100 * time.Millisecond)
	bm.Stop()
}

func TestBusinessMetrics_PeriodicCollection_ProviderError(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")

	supportProvider := &mockSupportProvider{
		err: errors.New("database unavailable"),
	}

	bm, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
		Meter:           meter,
		Logger:          zap.NewNop(),
		SupportProvider: supportProvider,
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Provider errors are logged, not propagated
	bm.StartPeriodicCollection(ctx, 50*time.Millisecond)

	time.Sleep(100 * time.Millisecond)
	bm.Stop()
}

func TestBusinessMetrics_Stop_Idempotent(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")
	bm, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
		Meter: meter,
	})
	require.NoError(t, err)

	// Calling Stop multiple times should not panic
	bm.Stop()
	bm.Stop()
	bm.Stop()
}

func TestBusinessMetrics_StartPeriodicCollection_OnlyOnce(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")
	bm, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
		Meter:  meter,
		Logger: zap.NewNop(),
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Calling StartPeriodicCollection multiple times should only start once
	bm.StartPeriodicCollection(ctx, time.Hour)
	bm.StartPeriodicCollection(ctx, time.Minute)
	bm.StartPeriodicCollection(ctx, time.Second)

	bm.Stop()
}

func TestMetricsError_Error(t *testing.T) {
	err := &telemetry.MetricsError{
		Op:  "TestOperation",
		Err: "test error message",
	}

	assert.Equal(t, "TestOperation: test error message", err.Error())
}
