package main

import (
	"bytes"
	"context"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/quire/internal/platform"
)

func TestNewLogger(t *testing.T) {
	t.Run("Defaults To Text Info On Stderr", func(t *testing.T) {
		var buf bytes.Buffer
		logger, closer, err := newLogger(platform.LogConfig{}, false, &buf)
		require.NoError(t, err)
		defer closer.Close()

		logger.Debug("hidden")
		logger.Info("shown", "k", "v")
		assert.NotContains(t, buf.String(), "hidden")
		assert.Contains(t, buf.String(), "msg=shown k=v")
	})

	t.Run("Verbose Wins Over Level", func(t *testing.T) {
		var buf bytes.Buffer
		logger, _, err := newLogger(platform.LogConfig{Level: "error"}, true, &buf)
		require.NoError(t, err)
		assert.True(t, logger.Enabled(context.Background(), slog.LevelDebug))
	})

	t.Run("JSON", func(t *testing.T) {
		var buf bytes.Buffer
		logger, _, err := newLogger(platform.LogConfig{Format: "json", Level: "warn"}, false, &buf)
		require.NoError(t, err)
		logger.Warn("careful")
		assert.Contains(t, buf.String(), `"msg":"careful"`)
	})

	t.Run("Rotating File", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "logs", "quire.log")
		var buf bytes.Buffer
		logger, closer, err := newLogger(platform.LogConfig{File: file}, false, &buf)
		require.NoError(t, err)

		logger.Info("to file")
		require.NoError(t, closer.Close())
		assert.Empty(t, buf.String())
		assert.FileExists(t, file)
	})

	t.Run("Invalid Settings", func(t *testing.T) {
		_, _, err := newLogger(platform.LogConfig{Level: "loud"}, false, &bytes.Buffer{})
		assert.Error(t, err)
		_, _, err = newLogger(platform.LogConfig{Format: "xml"}, false, &bytes.Buffer{})
		assert.Error(t, err)
	})
}
