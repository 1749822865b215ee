package app

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/tidwall/gjson"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{" Error ", slog.LevelError},
		{"unknown", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, ParseLogLevel(tt.input), tt.input)
	}
}

func TestNewLogger_Level(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LoggerConfig{Level: slog.LevelWarn, Output: &buf})

	logger.Info("hidden")
	assert.Empty(t, buf.String())

	logger.Warn("shown", "mod", "examplemod")
	assert.Contains(t, buf.String(), "msg=shown")
	assert.Contains(t, buf.String(), "mod=examplemod")
}

func TestNewLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := componentLogger(NewLogger(LoggerConfig{
		Level:  slog.LevelDebug,
		Output: &buf,
		Prefix: "modernconfig",
		JSON:   true,
	}), "registry")

	logger.Debug("config reloaded", "applied", 2)

	line := gjson.Parse(buf.String())
	assert.Equal(t, "config reloaded", line.Get("msg").String())
	assert.Equal(t, "modernconfig", line.Get("app").String())
	assert.Equal(t, "registry", line.Get("component").String())
	assert.Equal(t, int64(2), line.Get("applied").Int())
}

func TestNullLogger(t *testing.T) {
	assert.False(t, NullLogger().Enabled(context.Background(), slog.LevelError))
}

func TestReloadError(t *testing.T) {
	base := errors.New("boom")
	err := &ReloadError{ModID: "examplemod", Path: "config/examplemod.json", Err: base}

	assert.ErrorIs(t, err, base)
	assert.Equal(t, "reload examplemod (config/examplemod.json): boom", err.Error())
}

func TestMetrics(t *testing.T) {
	m := NewMetrics()
	m.RecordTick(2*time.Millisecond, 3)
	m.RecordTick(4*time.Millisecond, 1)
	m.RecordReload()
	m.RecordFailure()
	m.RecordIgnored()
	m.RecordIgnored()

	s := m.Snapshot()
	assert.Equal(t, uint64(2), s.Ticks)
	assert.Equal(t, uint64(4), s.Events)
	assert.Equal(t, uint64(1), s.Reloads)
	assert.Equal(t, uint64(1), s.Failures)
	assert.Equal(t, uint64(2), s.Ignored)
	assert.Equal(t, (3 * time.Millisecond).Nanoseconds(), s.AvgTickNs)
	assert.Equal(t, (4 * time.Millisecond).Nanoseconds(), s.MaxTickNs)
	assert.False(t, s.LastReload.IsZero())
}
