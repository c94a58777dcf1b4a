// Package log provides the leveled logger used across helmfile-deps, built on log/slog.
//
// A single global logger writes JSON (or text when LOG_FORMAT=text) to os.Stderr.
// The level is held in a slog.LevelVar so the CLI can change it after flags are parsed.
// SetOutput redirects the logger and returns a restore function, mainly for tests.
package log

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

const (
	levelDebugStr = "DEBUG"
	levelInfoStr  = "INFO"
	levelWarnStr  = "WARN"
	levelErrorStr = "ERROR"

	// FormatEnvVar selects the handler: "text" or anything else for JSON.
	FormatEnvVar = "LOG_FORMAT"
)

var (
	logger        *slog.Logger
	globalLeveler           = &slog.LevelVar{}
	outputWriter  io.Writer = os.Stderr
	// ErrInvalidLogLevel indicates an invalid log level string was provided.
	ErrInvalidLogLevel = fmt.Errorf("invalid log level")
	// keepTimestamps forces the time attribute into JSON output (used by log capture helpers).
	keepTimestamps bool
)

func init() {
	globalLeveler.Set(slog.LevelInfo)
	configureLogger()
}

// configureLogger rebuilds the handler from outputWriter, globalLeveler and LOG_FORMAT.
func configureLogger() {
	opts := &slog.HandlerOptions{Level: globalLeveler}

	var handler slog.Handler
	if strings.EqualFold(os.Getenv(FormatEnvVar), "text") {
		handler = slog.NewTextHandler(outputWriter, opts)
	} else {
		opts.ReplaceAttr = func(_ []string, a slog.Attr) slog.Attr {
			if !keepTimestamps && a.Key == slog.TimeKey {
				return slog.Attr{}
			}
			return a
		}
		handler = slog.NewJSONHandler(outputWriter, opts)
	}
	logger = slog.New(handler)
}

// SetOutput changes the output destination for the logger.
// It returns a function that restores the previous writer.
func SetOutput(w io.Writer) (restore func()) {
	originalWriter := outputWriter
	outputWriter = w
	configureLogger()
	return func() {
		outputWriter = originalWriter
		configureLogger()
	}
}

// Debug logs a debug message with optional key-value pairs
func Debug(msg string, args ...any) {
	logger.Debug(msg, args...)
}

// Info logs an info message with optional key-value pairs
func Info(msg string, args ...any) {
	logger.Info(msg, args...)
}

// Warn logs a warning message with optional key-value pairs
func Warn(msg string, args ...any) {
	logger.Warn(msg, args...)
}

// Error logs an error message with optional key-value pairs
func Error(msg string, args ...any) {
	logger.Error(msg, args...)
}

// Logger returns the underlying slog.Logger
func Logger() *slog.Logger {
	return logger
}

// SetLevel changes the log level at runtime. It accepts a Level or a slog.Level.
func SetLevel(level interface{}) {
	switch v := level.(type) {
	case slog.Level:
		globalLeveler.Set(v)
	case Level:
		globalLeveler.Set(slog.Level(v))
	default:
		panic(fmt.Sprintf("SetLevel: unsupported level type %T", level))
	}
}

// CurrentLevel returns the current slog.Level from the LevelVar
func CurrentLevel() slog.Level {
	return globalLeveler.Level()
}

// IsDebugEnabled reports whether debug messages are currently emitted.
func IsDebugEnabled() bool {
	return globalLeveler.Level() <= slog.LevelDebug
}

// Level mirrors slog.Level so callers do not need to import log/slog.
type Level int8

// Log level definitions.
const (
	LevelDebug Level = Level(slog.LevelDebug)
	LevelInfo  Level = Level(slog.LevelInfo)
	LevelWarn  Level = Level(slog.LevelWarn)
	LevelError Level = Level(slog.LevelError)
)

// String returns the string representation of the log level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return levelDebugStr
	case LevelInfo:
		return levelInfoStr
	case LevelWarn:
		return levelWarnStr
	case LevelError:
		return levelErrorStr
	default:
		return "UNKNOWN"
	}
}

// ParseLevel parses a level name case-insensitively. On failure it returns LevelInfo
// together with an error wrapping ErrInvalidLogLevel.
func ParseLevel(levelStr string) (Level, error) {
	switch strings.ToUpper(strings.TrimSpace(levelStr)) {
	case levelDebugStr:
		return LevelDebug, nil
	case levelInfoStr:
		return LevelInfo, nil
	case levelWarnStr, "WARNING":
		return LevelWarn, nil
	case levelErrorStr:
		return LevelError, nil
	default:
		return LevelInfo, fmt.Errorf("%w: %s", ErrInvalidLogLevel, levelStr)
	}
}

// SetTestModeWithTimestamps controls whether timestamps are kept in JSON logs.
func SetTestModeWithTimestamps(enabled bool) {
	keepTimestamps = enabled
	configureLogger()
}
