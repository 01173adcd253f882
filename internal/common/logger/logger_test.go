package logger

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewLogger_WritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "archiver.log")

	log, err := NewLogger(LoggingConfig{Level: "debug", Format: "json", OutputPath: path})
	require.NoError(t, err)

	log.Info("projects listed", zap.Int("count", 3))
	require.NoError(t, log.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"projects listed"`)
	assert.Contains(t, string(data), `"count":3`)
	assert.Contains(t, string(data), `"level":"info"`)
}

func TestNewLogger_InvalidLevelFallsBackToInfo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "archiver.log")

	log, err := NewLogger(LoggingConfig{Level: "verbose", Format: "json", OutputPath: path})
	require.NoError(t, err)

	log.Debug("hidden")
	log.Info("shown")
	require.NoError(t, log.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "hidden")
	assert.Contains(t, string(data), "shown")
}

func TestWithContext(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := NewFromZap(zap.New(core))

	t.Run("adds run id from context", func(t *testing.T) {
		ctx := ContextWithRunID(context.Background(), "run-123")
		log.WithContext(ctx).Info("with run")

		entries := logs.FilterMessage("with run").All()
		require.Len(t, entries, 1)
		assert.Equal(t, "run-123", entries[0].ContextMap()["run_id"])
	})

	t.Run("returns same logger without run id", func(t *testing.T) {
		assert.Same(t, log, log.WithContext(context.Background()))
	})
}

func TestWithHelpers(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := NewFromZap(zap.New(core))

	log.WithProject("OPS").WithError(errors.New("boom")).Warn("skipped")

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "OPS", fields["project_key"])
	assert.Equal(t, "boom", fields["error"])
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
}

func TestDetectFormat(t *testing.T) {
	t.Setenv("KUBERNETES_SERVICE_HOST", "")
	t.Setenv("ARCHIVER_ENV", "")
	assert.Equal(t, "text", DetectFormat())

	t.Setenv("ARCHIVER_ENV", "production")
	assert.Equal(t, "json", DetectFormat())

	t.Setenv("ARCHIVER_ENV", "")
	t.Setenv("KUBERNETES_SERVICE_HOST", "10.0.0.1")
	assert.Equal(t, "json", DetectFormat())
}
