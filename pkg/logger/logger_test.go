package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/noah-isme/timetable-organizer/pkg/config"
)

func TestNewWritesRotatingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "timetable.log")
	cfg := &config.Config{Env: config.EnvDevelopment, Log: config.LogConfig{Level: "info", Format: "console", File: path}}

	l, err := New(cfg)
	require.NoError(t, err)
	l.Info("snapshot saved")
	_ = l.Sync()

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(raw), "snapshot saved")
}

func TestNewInvalidLevelFallsBackToInfo(t *testing.T) {
	cfg := &config.Config{Env: config.EnvProduction, Log: config.LogConfig{Level: "chatty"}}

	l, err := New(cfg)
	require.NoError(t, err)
	require.False(t, l.Core().Enabled(zapcore.DebugLevel))
	require.True(t, l.Core().Enabled(zapcore.InfoLevel))
}
