package slog_test

import (
	"bytes"
	"encoding/json"
	logslog "log/slog"
	"testing"

	"github.com/JulianoL13/app-config-aggregator/internal/common/logs/slog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want logslog.Level
	}{
		{"debug", logslog.LevelDebug},
		{"WARN", logslog.LevelWarn},
		{"warning", logslog.LevelWarn},
		{"error", logslog.LevelError},
		{"", logslog.LevelInfo},
		{"verbose", logslog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, slog.ParseLevel(tt.in))
		})
	}
}

func TestLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.NewWithWriter(&buf, logslog.LevelInfo, true)

	logger.With("run", 1).Info("run complete", "selected", 3)
	logger.Debug("hidden")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "run complete", entry["msg"])
	assert.Equal(t, float64(1), entry["run"])
	assert.Equal(t, float64(3), entry["selected"])
}
