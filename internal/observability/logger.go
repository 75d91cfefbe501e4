package observability

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	loggerMu     sync.RWMutex
	globalLogger = zerolog.New(os.Stderr).With().Timestamp().Logger()
)

// InitLogger configures the process-wide logger. A nil out writes to stderr.
func InitLogger(level string, pretty bool, out io.Writer) {
	if out == nil {
		out = os.Stderr
	}

	zerolog.SetGlobalLevel(ParseLevel(level))

	var logger zerolog.Logger
	if pretty {
		logger = zerolog.New(zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.RFC3339,
		}).With().Timestamp().Logger()
	} else {
		logger = zerolog.New(out).With().Timestamp().Logger()
	}

	loggerMu.Lock()
	globalLogger = logger
	loggerMu.Unlock()
	log.Logger = logger
}

// ParseLevel maps a config string to a zerolog level, defaulting to info.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled", "off":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

// Logger returns the global logger tagged with a component name.
func Logger(component string) zerolog.Logger {
	loggerMu.RLock()
	defer loggerMu.RUnlock()
	return globalLogger.With().Str("component", component).Logger()
}

// OpenLogFile opens path for appending. An empty path yields io.Discard so
// full-screen front ends never interleave log lines with their output.
func OpenLogFile(path string) (io.WriteCloser, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nopWriteCloser{io.Discard}, nil
	}
	return os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }
