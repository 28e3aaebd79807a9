// Package common provides shared utilities for Fairval
package common

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger wraps zerolog.Logger to provide a consistent interface
type Logger struct {
	zerolog.Logger
}

func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// NewLogger creates a new logger with the specified level
func NewLogger(level string) *Logger {
	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	}

	logger := zerolog.New(output).
		Level(parseLevel(level)).
		With().
		Timestamp().
		Logger()

	return &Logger{Logger: logger}
}

// NewLoggerWithOutput creates a logger writing to a specific output
func NewLoggerWithOutput(level string, w io.Writer) *Logger {
	logger := zerolog.New(w).
		Level(parseLevel(level)).
		With().
		Timestamp().
		Logger()

	return &Logger{Logger: logger}
}

// NewLoggerFromConfig creates a logger from a LoggingConfig.
// Console output is human-readable; file output is JSON with rotation.
func NewLoggerFromConfig(cfg LoggingConfig) *Logger {
	var writers []io.Writer

	for _, out := range cfg.Outputs {
		switch strings.ToLower(out) {
		case "console":
			writers = append(writers, zerolog.ConsoleWriter{
				Out:        os.Stderr,
				TimeFormat: time.RFC3339,
			})
		case "file":
			if cfg.FilePath == "" {
				continue
			}
			writers = append(writers, &lumberjack.Logger{
				Filename:   cfg.FilePath,
				MaxSize:    cfg.MaxSizeMB,
				MaxBackups: cfg.MaxBackups,
				Compress:   true,
			})
		}
	}

	var w io.Writer
	switch len(writers) {
	case 0:
		w = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	case 1:
		w = writers[0]
	default:
		w = zerolog.MultiLevelWriter(writers...)
	}

	logger := zerolog.New(w).
		Level(parseLevel(cfg.Level)).
		With().
		Timestamp().
		Logger()

	return &Logger{Logger: logger}
}

// NewDefaultLogger creates a logger with default settings
func NewDefaultLogger() *Logger {
	return NewLogger("info")
}

// NewSilentLogger creates a logger that discards all output
func NewSilentLogger() *Logger {
	logger := zerolog.New(io.Discard)
	return &Logger{Logger: logger}
}
