package observability

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNewWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: "debug"}, zapcore.AddSync(&buf))
	logger.Debug("simulation finished", zap.Int("beats", 9))
	require.NoError(t, logger.Sync())

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "DEBUG", entry["level"])
	assert.Equal(t, "ecg-synth", entry["logger"])
	assert.Equal(t, "simulation finished", entry["msg"])
	assert.EqualValues(t, 9, entry["beats"])
}

func TestNewFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: "shouting"}, zapcore.AddSync(&buf))
	logger.Debug("hidden")
	logger.Info("shown")
	require.NoError(t, logger.Sync())

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestFileSinkReceivesJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "ecgsim.log")
	var console bytes.Buffer
	logger := New(Config{Level: "info", Development: true, File: path, MaxSizeMB: 1}, zapcore.AddSync(&console))
	logger.Warn("mains hum disabled", zap.Int("mains_hz", 55))
	require.NoError(t, logger.Sync())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(raw), &entry))
	assert.Equal(t, "WARN", entry["level"])
	assert.Contains(t, console.String(), "mains hum disabled")
}
