package utils

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// Logger wraps zerolog with the printf-style helpers used throughout
// the pipeline. Output is human-readable console text by default;
// set LOG_FORMAT=json for machine-readable entries.
type Logger struct {
	z zerolog.Logger
}

// NewLogger creates a logger writing to stdout at the given level.
// Unknown level strings fall back to info.
func NewLogger(level string) *Logger {
	return NewLoggerTo(os.Stdout, level)
}

// NewLoggerTo creates a logger writing to w, used by tests to capture output.
func NewLoggerTo(w io.Writer, level string) *Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	if os.Getenv("LOG_FORMAT") != "json" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}
	}

	z := zerolog.New(w).With().Timestamp().Logger().Level(lvl)
	return &Logger{z: z}
}

func (l *Logger) Info(msg string, args ...interface{}) {
	l.z.Info().Msgf(msg, args...)
}

func (l *Logger) Warn(msg string, args ...interface{}) {
	l.z.Warn().Msgf(msg, args...)
}

func (l *Logger) Error(msg string, args ...interface{}) {
	l.z.Error().Msgf(msg, args...)
}

func (l *Logger) Debug(msg string, args ...interface{}) {
	l.z.Debug().Msgf(msg, args...)
}
