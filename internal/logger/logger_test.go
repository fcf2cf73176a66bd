package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want log.Level
	}{
		{"debug", log.DebugLevel},
		{"INFO", log.InfoLevel},
		{"warn", log.WarnLevel},
		{"error", log.ErrorLevel},
		{"fatal", log.FatalLevel},
		{"bogus", log.InfoLevel},
		{"", log.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}

func TestConfigure_EnvFallback(t *testing.T) {
	t.Setenv(EnvLogLevel, "debug")
	require.NoError(t, Configure("", "", false))
	assert.Equal(t, log.DebugLevel, Logger.GetLevel())

	require.NoError(t, Configure("error", "", false))
	assert.Equal(t, log.ErrorLevel, Logger.GetLevel(), "flag wins over env")
}

func TestConfigure_LogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ecli.log")
	require.NoError(t, Configure("info", path, false))
	Info("hello", "key", "value")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello")
	assert.Contains(t, string(data), "key=value")

	require.NoError(t, ConfigureWriter(os.Stderr, "info", false))
}

func TestConfigure_TestModeForcesInfo(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ConfigureWriter(&buf, "debug", true))
	assert.Equal(t, log.InfoLevel, Logger.GetLevel())
	require.NoError(t, ConfigureWriter(os.Stderr, "info", false))
}

func TestNewStyledLogger_FollowsGlobalLevel(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ConfigureWriter(&buf, "debug", false))
	defer func() { _ = ConfigureWriter(os.Stderr, "info", false) }()

	l := NewStyledLogger("cli")
	assert.Equal(t, log.DebugLevel, l.GetLevel())
	l.Debug("binding added", "binding", "led")
	assert.Contains(t, buf.String(), "binding added")
}
