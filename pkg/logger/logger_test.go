package logger

import (
	"bytes"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelBasedMuxHandler(t *testing.T) {
	var stdout, file bytes.Buffer
	log := slog.New(NewLevelBasedMuxHandler(&stdout, &file, slog.LevelDebug))

	log.Debug("chunk classified", slog.Int("size", 10))
	log.Info("chunk committed", slog.Int("index", 1))

	assert.Contains(t, stdout.String(), "chunk classified")
	assert.Contains(t, stdout.String(), "chunk committed")
	assert.NotContains(t, file.String(), "chunk classified")
	assert.Contains(t, file.String(), "chunk committed")
	assert.Contains(t, file.String(), `"source"`)
}

func TestLevelBasedMuxHandler_WithAttrs(t *testing.T) {
	var stdout, file bytes.Buffer
	log := slog.New(NewLevelBasedMuxHandler(&stdout, &file, slog.LevelInfo)).
		With(slog.String("run_id", "r-1"))

	log.Warn("fault")

	assert.Contains(t, stdout.String(), `"run_id":"r-1"`)
	assert.Contains(t, file.String(), `"run_id":"r-1"`)
}

func TestParseLevel(t *testing.T) {
	lvl, err := ParseLevel("DEBUG")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, lvl)

	lvl, err = ParseLevel("")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelInfo, lvl)

	_, err = ParseLevel("verbose")
	assert.Error(t, err)
}

func TestNewLoggerWithFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "batch.log")

	lf, err := NewLoggerWithFile(path, "info")
	require.NoError(t, err)
	defer lf.LogFile.Close()

	lf.Logger.Info("started")
	assert.FileExists(t, path)
}
