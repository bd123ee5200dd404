package logging

import (
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
)

// defaultLogger is the package-level default logger instance.
//
//nolint:gochecknoglobals // Package-level logger is intentional for convenience
var (
	defaultLogger     *log.Logger
	defaultLoggerOnce sync.Once
)

func getDefaultLogger() *log.Logger {
	defaultLoggerOnce.Do(func() {
		if defaultLogger == nil {
			defaultLogger = New("info")
		}
	})
	return defaultLogger
}

// New creates a stderr logger with the specified level.
// Valid levels: "debug", "info", "warn", "error".
func New(level string) *log.Logger {
	return NewWithWriter(os.Stderr, level, "text")
}

// NewWithWriter creates a logger writing to w. Format is "text", "json" or
// "logfmt"; anything else means text.
func NewWithWriter(w io.Writer, level, format string) *log.Logger {
	opts := log.Options{
		ReportTimestamp: false,
		ReportCaller:    false,
	}
	switch strings.ToLower(format) {
	case "json":
		opts.Formatter = log.JSONFormatter
	case "logfmt":
		opts.Formatter = log.LogfmtFormatter
	default:
		opts.Formatter = log.TextFormatter
	}

	logger := log.NewWithOptions(w, opts)
	setLoggerLevel(logger, level)
	return logger
}

// Discard returns a logger that drops everything.
func Discard() *log.Logger {
	return NewWithWriter(io.Discard, "error", "text")
}

func setLoggerLevel(logger *log.Logger, level string) {
	switch strings.ToLower(level) {
	case "debug":
		logger.SetLevel(log.DebugLevel)
	case "info":
		logger.SetLevel(log.InfoLevel)
	case "warn", "warning":
		logger.SetLevel(log.WarnLevel)
	case "error":
		logger.SetLevel(log.ErrorLevel)
	default:
		logger.SetLevel(log.InfoLevel)
	}
}

// Default returns the package-level default logger.
func Default() *log.Logger {
	return getDefaultLogger()
}

// SetDefault sets the package-level default logger.
func SetDefault(logger *log.Logger) {
	getDefaultLogger()
	defaultLogger = logger
}

// SetLevel updates the log level of the default logger.
func SetLevel(level string) {
	setLoggerLevel(getDefaultLogger(), level)
}
