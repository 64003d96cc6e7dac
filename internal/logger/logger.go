package logger

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/couponwatch/couponwatch/internal/config"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// New creates a zerolog logger from the application log configuration.
// Console output always goes to stderr; if a log file is configured the
// logger additionally writes to it through a size-rotated file handle.
func New(cfg config.LogConfig) (zerolog.Logger, error) {
	level, err := parseLevel(cfg.LogLevel)
	if err != nil {
		return zerolog.Logger{}, err
	}

	writers := []io.Writer{consoleWriter(cfg.LogFormat, os.Stderr)}

	if cfg.LogFile != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0755); err != nil {
			return zerolog.Logger{}, err
		}
		fileSink := &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    cfg.MaxLogSizeMB,
			MaxBackups: cfg.MaxLogBackup,
			LocalTime:  true,
		}
		writers = append(writers, fileWriter(cfg.LogFormat, fileSink))
	}

	logger := zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(level).
		With().
		Timestamp().
		Logger()

	return logger, nil
}

// consoleWriter builds the stderr writer for the configured format.
func consoleWriter(format string, sink io.Writer) io.Writer {
	switch strings.ToLower(format) {
	case "json":
		return sink
	default:
		return zerolog.ConsoleWriter{Out: sink, TimeFormat: time.RFC3339}
	}
}

// fileWriter builds the rotated file writer. Console formatting is forced to
// no-color so log files stay grep-able.
func fileWriter(format string, sink io.Writer) io.Writer {
	switch strings.ToLower(format) {
	case "console", "text":
		return zerolog.ConsoleWriter{Out: sink, TimeFormat: time.RFC3339, NoColor: true}
	default:
		return sink
	}
}

// parseLevel maps the configured level string onto a zerolog level.
func parseLevel(level string) (zerolog.Level, error) {
	if level == "" {
		return zerolog.InfoLevel, nil
	}
	return zerolog.ParseLevel(strings.ToLower(level))
}
