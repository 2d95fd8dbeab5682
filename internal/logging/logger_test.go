package logging

import (
	"bytes"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	require.Equal(t, log.DebugLevel, ParseLevel("debug"))
	require.Equal(t, log.WarnLevel, ParseLevel("warn"))
	require.Equal(t, log.ErrorLevel, ParseLevel("error"))
	require.Equal(t, log.InfoLevel, ParseLevel(""))
	require.Equal(t, log.InfoLevel, ParseLevel("verbose"))
}

func TestNewLoggerWithWriter(t *testing.T) {
	t.Setenv("SIGMAKER_LOG_LEVEL", "warn")

	var buf bytes.Buffer
	lg := NewLoggerWithWriter(&buf)
	lg.Info("hidden")
	lg.Warn("shown", "addr", "0x1000")

	out := buf.String()
	require.NotContains(t, out, "hidden")
	require.Contains(t, out, "shown")
	require.Contains(t, out, "sigmaker")
	require.NoError(t, lg.Close())
}
