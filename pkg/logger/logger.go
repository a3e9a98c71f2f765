// Package logger provides structured JSON logging for the challenge hub.
// It wraps log/slog with typed field helpers for the identifiers that show
// up in nearly every log line.
// No external dependencies - uses only standard library.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
)

// Level is the minimum severity a logger emits.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	}
	return "UNKNOWN"
}

func (l Level) slogLevel() slog.Level {
	switch {
	case l <= LevelDebug:
		return slog.LevelDebug
	case l == LevelInfo:
		return slog.LevelInfo
	case l == LevelWarn:
		return slog.LevelWarn
	case l == LevelError:
		return slog.LevelError
	default:
		// Above every severity; silences the logger entirely.
		return slog.Level(128)
	}
}

// ParseLevel maps a config string to a Level. Unknown values read as info.
func ParseLevel(s string) Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return LevelDebug
	case "WARN", "WARNING":
		return LevelWarn
	case "ERROR":
		return LevelError
	default:
		return LevelInfo
	}
}

// Field is one structured key/value pair.
type Field = slog.Attr

// Generic field constructors.
func String(key, value string) Field          { return slog.String(key, value) }
func Int(key string, value int) Field         { return slog.Int(key, value) }
func Int64(key string, value int64) Field     { return slog.Int64(key, value) }
func Float64(key string, value float64) Field { return slog.Float64(key, value) }
func Bool(key string, value bool) Field       { return slog.Bool(key, value) }

// Duration renders as a human-readable string, not nanoseconds.
func Duration(key string, value time.Duration) Field {
	return slog.String(key, value.String())
}

// Err is the conventional error field.
func Err(err error) Field {
	if err == nil {
		return slog.Any("error", nil)
	}
	return slog.String("error", err.Error())
}

// Domain field helpers.
func UserID(id string) Field     { return slog.String("user_id", id) }
func TeamID(id string) Field     { return slog.String("team_id", id) }
func ActivityID(id string) Field { return slog.String("activity_id", id) }
func GoalID(id string) Field     { return slog.String("goal_id", id) }
func Meters(m float64) Field     { return slog.Float64("distance_m", m) }
func Window(w string) Field      { return slog.String("window", w) }

// Options configures a Logger.
type Options struct {
	// Output defaults to stdout.
	Output io.Writer

	// Level is the minimum emitted severity.
	Level Level

	// AddCaller annotates entries with the logging call site.
	AddCaller bool
}

// Logger emits structured JSON log entries.
type Logger struct {
	s *slog.Logger
}

// New creates a Logger.
func New(opts Options) *Logger {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	handler := slog.NewJSONHandler(opts.Output, &slog.HandlerOptions{
		Level:     opts.Level.slogLevel(),
		AddSource: opts.AddCaller,
	})
	return &Logger{s: slog.New(handler)}
}

// Default creates an info-level stdout logger.
func Default() *Logger {
	return New(Options{})
}

// NewNop creates a logger that discards everything. Used in tests and as
// the fallback when a component is wired without a logger.
func NewNop() *Logger {
	return New(Options{Output: io.Discard, Level: LevelError + 1})
}

// With returns a Logger that attaches the given fields to every entry.
func (l *Logger) With(fields ...Field) *Logger {
	args := make([]any, len(fields))
	for i, f := range fields {
		args[i] = f
	}
	return &Logger{s: l.s.With(args...)}
}

// Slog exposes the underlying slog logger for components that take one
// directly, like the event bus.
func (l *Logger) Slog() *slog.Logger {
	return l.s
}

func (l *Logger) Debug(msg string, fields ...Field) {
	l.s.LogAttrs(context.Background(), slog.LevelDebug, msg, fields...)
}

func (l *Logger) Info(msg string, fields ...Field) {
	l.s.LogAttrs(context.Background(), slog.LevelInfo, msg, fields...)
}

func (l *Logger) Warn(msg string, fields ...Field) {
	l.s.LogAttrs(context.Background(), slog.LevelWarn, msg, fields...)
}

func (l *Logger) Error(msg string, fields ...Field) {
	l.s.LogAttrs(context.Background(), slog.LevelError, msg, fields...)
}
