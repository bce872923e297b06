// Package usersettings provides default logging implementations.
package usersettings

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// LogLevel defines the log levels understood by Logger.SetLevel.
type LogLevel int

const (
	LogLevelDebug LogLevel = iota - 1
	LogLevelInfo
	LogLevelWarn
	LogLevelError
)

// Logger defines the logging operations used by the store and its collaborators.
// The args are alternating key-value pairs, similar to slog.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	SetLevel(level LogLevel)
}

// zerologLogger implements Logger on top of zerolog.
type zerologLogger struct {
	mu     sync.RWMutex
	logger zerolog.Logger
}

// NewDefaultLogger returns a JSON logger writing to os.Stderr at info level.
func NewDefaultLogger() Logger {
	return NewLogger(os.Stderr, LogLevelInfo)
}

// NewConsoleLogger returns a human-readable logger writing to w.
func NewConsoleLogger(w io.Writer, level LogLevel) Logger {
	return NewLogger(zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}, level)
}

// NewLogger returns a JSON logger writing to w.
func NewLogger(w io.Writer, level LogLevel) Logger {
	return &zerologLogger{
		logger: zerolog.New(w).Level(toZerologLevel(level)).With().Timestamp().Logger(),
	}
}

func toZerologLevel(level LogLevel) zerolog.Level {
	switch level {
	case LogLevelDebug:
		return zerolog.DebugLevel
	case LogLevelWarn:
		return zerolog.WarnLevel
	case LogLevelError:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

func (l *zerologLogger) Debug(msg string, args ...any) {
	l.event(zerolog.DebugLevel, msg, args)
}

func (l *zerologLogger) Info(msg string, args ...any) {
	l.event(zerolog.InfoLevel, msg, args)
}

func (l *zerologLogger) Warn(msg string, args ...any) {
	l.event(zerolog.WarnLevel, msg, args)
}

func (l *zerologLogger) Error(msg string, args ...any) {
	l.event(zerolog.ErrorLevel, msg, args)
}

// SetLevel changes the level for subsequent calls.
func (l *zerologLogger) SetLevel(level LogLevel) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.logger = l.logger.Level(toZerologLevel(level))
}

func (l *zerologLogger) event(level zerolog.Level, msg string, args []any) {
	l.mu.RLock()
	logger := l.logger
	l.mu.RUnlock()

	e := logger.WithLevel(level)
	if len(args) > 0 {
		e = e.Fields(args)
	}
	e.Msg(msg)
}

// nopLogger discards everything.
type nopLogger struct{}

// NewNopLogger returns a Logger that discards all messages.
func NewNopLogger() Logger { return nopLogger{} }

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}
func (nopLogger) SetLevel(LogLevel)    {}
