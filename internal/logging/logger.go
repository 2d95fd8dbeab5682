// Package logging builds the structured logger used across sigmaker.
package logging

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
)

// LoggerCloser wraps a logger and the writer it may own.
type LoggerCloser struct {
	*log.Logger
	closer io.Closer
}

func (lc *LoggerCloser) Close() error {
	if lc.closer != nil {
		return lc.closer.Close()
	}
	return nil
}

// NewLoggerWithWriter creates a logger writing to w. The level comes from
// SIGMAKER_LOG_LEVEL (debug, info, warn, error; default info).
func NewLoggerWithWriter(w io.Writer) *LoggerCloser {
	lg := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.Kitchen,
		Prefix:          "sigmaker",
	})
	lg.SetLevel(ParseLevel(os.Getenv("SIGMAKER_LOG_LEVEL")))

	var closer io.Closer
	if c, ok := w.(io.Closer); ok && w != os.Stderr && w != os.Stdout {
		closer = c
	}

	return &LoggerCloser{Logger: lg, closer: closer}
}

// NewLogger logs to w, or to a timestamped file when SIGMAKER_LOG_TO_FILE=1.
func NewLogger(w io.Writer) *LoggerCloser {
	if os.Getenv("SIGMAKER_LOG_TO_FILE") == "1" {
		name := fmt.Sprintf("sigmaker-%s.log", time.Now().Format("20060102-150405"))
		f, err := os.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
		if err == nil {
			return NewLoggerWithWriter(f)
		}
	}
	return NewLoggerWithWriter(w)
}

func ParseLevel(s string) log.Level {
	switch s {
	case "debug":
		return log.DebugLevel
	case "warn":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}
