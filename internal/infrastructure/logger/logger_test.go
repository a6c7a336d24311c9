package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "info", cfg.Level)
	assert.Equal(t, "console", cfg.Format)
	assert.Equal(t, "stdout", cfg.Output)
	assert.NotEmpty(t, cfg.TimeFormat)
}

func TestProductionConfig(t *testing.T) {
	cfg := ProductionConfig()

	assert.Equal(t, "info", cfg.Level)
	assert.Equal(t, "json", cfg.Format)
	assert.Equal(t, "stdout", cfg.Output)
	assert.NotEmpty(t, cfg.TimeFormat)
}

func TestNew(t *testing.T) {
	tests := []struct {
		name string
		cfg  *Config
	}{
		{name: "default config", cfg: DefaultConfig()},
		{name: "production config", cfg: ProductionConfig()},
		{
			name: "debug console",
			cfg: &Config{
				Level:      "debug",
				Format:     "console",
				Output:     "stdout",
				TimeFormat: "2006-01-02T15:04:05Z07:00",
			},
		},
		{
			name: "json to stderr",
			cfg: &Config{
				Level:      "warn",
				Format:     "json",
				Output:     "stderr",
				TimeFormat: "2006-01-02T15:04:05Z07:00",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := New(tt.cfg)

			require.NoError(t, err)
			assert.NotNil(t, logger)
		})
	}
}

func TestNew_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "crm.log")

	logger, err := New(&Config{
		Level:      "info",
		Format:     "json",
		Output:     path,
		TimeFormat: "2006-01-02T15:04:05Z07:00",
	})
	require.NoError(t, err)

	logger.Info("customer created", zap.Int64("customer_id", 42))
	require.NoError(t, logger.Sync())

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "customer created")
	assert.Contains(t, string(content), `"customer_id":42`)
}

func TestNew_UnwritableFileOutput(t *testing.T) {
	// A directory component that does not exist makes the open fail
	path := filepath.Join(t.TempDir(), "missing", "crm.log")

	_, err := New(&Config{
		Level:      "info",
		Format:     "json",
		Output:     path,
		TimeFormat: "2006-01-02T15:04:05Z07:00",
	})
	assert.Error(t, err)
}

func TestNewForEnvironment(t *testing.T) {
	tests := []struct {
		name string
		env  string
	}{
		{name: "development", env: "development"},
		{name: "production", env: "production"},
		{name: "unknown", env: "staging"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := NewForEnvironment(tt.env)

			require.NoError(t, err)
			assert.NotNil(t, logger)
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		level    string
		expected zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"DEBUG", zapcore.DebugLevel},
		{"info", zapcore.InfoLevel},
		{"warn", zapcore.WarnLevel},
		{"warning", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"fatal", zapcore.FatalLevel},
		{"unknown", zapcore.InfoLevel},
		{"", zapcore.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseLevel(tt.level))
		})
	}
}

func TestBuildEncoder(t *testing.T) {
	t.Run("console", func(t *testing.T) {
		encoder := buildEncoder(&Config{Format: "console", TimeFormat: "2006-01-02T15:04:05Z07:00"})
		assert.NotNil(t, encoder)
	})

	t.Run("json", func(t *testing.T) {
		encoder := buildEncoder(&Config{Format: "json", TimeFormat: "2006-01-02T15:04:05Z07:00"})
		assert.NotNil(t, encoder)
	})
}

func TestOpenWriter(t *testing.T) {
	tests := []string{"stdout", "stderr", "STDOUT", ""}

	for _, output := range tests {
		t.Run("output "+output, func(t *testing.T) {
			writer, err := openWriter(output)

			require.NoError(t, err)
			assert.NotNil(t, writer)
		})
	}
}

func TestWith(t *testing.T) {
	logger, err := NewForEnvironment("development")
	require.NoError(t, err)

	childLogger := With(logger, zap.String("key", "value"))
	assert.NotNil(t, childLogger)
	assert.NotEqual(t, logger, childLogger)
}

func TestNamed(t *testing.T) {
	logger, err := NewForEnvironment("development")
	require.NoError(t, err)

	namedLogger := Named(logger, "event-bus")
	assert.NotNil(t, namedLogger)
	assert.NotEqual(t, logger, namedLogger)
}

func TestSync(t *testing.T) {
	logger, err := NewForEnvironment("development")
	require.NoError(t, err)

	// Sync on stdout can fail in some environments; it must not panic
	_ = Sync(logger)
}

func TestLogOutput(t *testing.T) {
	var buf bytes.Buffer

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(zapcore.EncoderConfig{
			TimeKey:        "time",
			LevelKey:       "level",
			MessageKey:     "msg",
			EncodeLevel:    zapcore.LowercaseLevelEncoder,
			EncodeTime:     zapcore.ISO8601TimeEncoder,
			EncodeDuration: zapcore.MillisDurationEncoder,
		}),
		zapcore.AddSync(&buf),
		zapcore.InfoLevel,
	)
	logger := zap.New(core)

	logger.Info("quote accepted", zap.String("quote_number", "Q-20260801-0001"))

	var output map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &output))

	assert.Equal(t, "quote accepted", output["msg"])
	assert.Equal(t, "info", output["level"])
	assert.Equal(t, "Q-20260801-0001", output["quote_number"])
}

func TestLogLevels(t *testing.T) {
	var buf bytes.Buffer

	encoderConfig := zapcore.EncoderConfig{
		LevelKey:    "level",
		MessageKey:  "msg",
		EncodeLevel: zapcore.LowercaseLevelEncoder,
	}

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.AddSync(&buf),
		zapcore.DebugLevel,
	)
	logger := zap.New(core)

	logger.Debug("debug message")
	assert.True(t, strings.Contains(buf.String(), "debug message"))

	buf.Reset()

	// An info-level core drops debug entries
	core = zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.AddSync(&buf),
		zapcore.InfoLevel,
	)
	logger = zap.New(core)

	logger.Debug("debug message")
	assert.False(t, strings.Contains(buf.String(), "debug message"))

	logger.Info("info message")
	assert.True(t, strings.Contains(buf.String(), "info message"))
}
