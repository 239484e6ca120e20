package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func newBufferedLogger(buf *bytes.Buffer) *zap.Logger {
	encoderConfig := zapcore.EncoderConfig{
		TimeKey:       "timestamp",
		LevelKey:      "level",
		MessageKey:    "message",
		StacktraceKey: "stacktrace",
		LineEnding:    zapcore.DefaultLineEnding,
		EncodeLevel:   zapcore.LowercaseLevelEncoder,
		EncodeTime:    zapcore.ISO8601TimeEncoder,
	}

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.AddSync(buf),
		zapcore.DebugLevel,
	)
	return zap.New(core)
}

// Feature: inventory, Property 1: Logs are structured
func TestProperty_LogsAreStructured(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("all log entries are JSON with level, timestamp and message", prop.ForAll(
		func(message string, level string, barcode string) bool {
			var buf bytes.Buffer
			logger := newBufferedLogger(&buf)

			switch level {
			case "debug":
				logger.Debug(message, zap.String("barcode", barcode))
			case "warn":
				logger.Warn(message, zap.String("barcode", barcode))
			case "error":
				logger.Error(message, zap.String("barcode", barcode))
			default:
				logger.Info(message, zap.String("barcode", barcode))
			}

			var entry map[string]interface{}
			if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
				return false
			}

			for _, key := range []string{"level", "timestamp", "message", "barcode"} {
				if _, ok := entry[key]; !ok {
					return false
				}
			}

			return entry["message"] == message && entry["barcode"] == barcode
		},
		gen.AnyString(),
		gen.OneConstOf("debug", "info", "warn", "error"),
		gen.NumString(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestNew_Environments(t *testing.T) {
	for _, env := range []string{"production", "development"} {
		logger, err := New(env, "")
		if err != nil {
			t.Fatalf("New(%q) failed: %v", env, err)
		}
		if logger == nil {
			t.Fatalf("New(%q) returned nil logger", env)
		}
	}
}

func TestNew_LevelOverride(t *testing.T) {
	logger, err := New("production", "warn")
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}

	if logger.Core().Enabled(zapcore.InfoLevel) {
		t.Error("Info should be disabled at warn level")
	}
	if !logger.Core().Enabled(zapcore.ErrorLevel) {
		t.Error("Error should be enabled at warn level")
	}
}

func TestNew_InvalidLevel(t *testing.T) {
	if _, err := New("development", "loud"); err == nil {
		t.Error("Expected error for invalid level")
	}
}
