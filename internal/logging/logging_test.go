package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func readLines(t *testing.T, path string) []map[string]any {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(string(data)), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &m))
		out = append(out, m)
	}
	return out
}

func TestNewWritesJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "ovor.log")

	logger, err := New(path, "info")
	require.NoError(t, err)
	logger.Info("districts loaded", zap.Int("count", 3))
	logger.Debug("hidden")
	require.NoError(t, logger.Sync())

	lines := readLines(t, path)
	require.Len(t, lines, 1)
	assert.Equal(t, "districts loaded", lines[0]["message"])
	assert.Equal(t, "INFO", lines[0]["severity"])
	assert.EqualValues(t, 3, lines[0]["count"])
	assert.NotEmpty(t, lines[0]["timestamp"])
}

func TestNewLevelFallback(t *testing.T) {
	for _, level := range []string{"", "loud"} {
		path := filepath.Join(t.TempDir(), "ovor.log")
		logger, err := New(path, level)
		require.NoError(t, err)
		logger.Debug("dropped")
		logger.Info("kept")
		require.NoError(t, logger.Sync())

		lines := readLines(t, path)
		require.Len(t, lines, 1, "level %q", level)
		assert.Equal(t, "kept", lines[0]["message"])
	}
}

func TestNewDebugLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ovor.log")
	logger, err := New(path, "DEBUG")
	require.NoError(t, err)
	logger.Debug("visible")
	require.NoError(t, logger.Sync())

	lines := readLines(t, path)
	require.Len(t, lines, 1)
	assert.Equal(t, "DEBUG", lines[0]["severity"])
}
