package cli

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

// Logger is the printf-style logger the commands use. It forwards to a
// structured slog.Logger tagged with the invocation id.
type Logger struct {
	Verbose   bool
	DebugMode bool

	slog         *slog.Logger
	invocationID string
}

// NewLogger wraps base for one command invocation.
func NewLogger(base *slog.Logger, verbose, debug bool) *Logger {
	id := uuid.New().String()
	return &Logger{
		Verbose:      verbose,
		DebugMode:    debug,
		slog:         base.With(slog.String("invocation", id)),
		invocationID: id,
	}
}

// InvocationID identifies this run in the logs.
func (l *Logger) InvocationID() string { return l.invocationID }

// Slog returns the structured logger carrying the invocation id.
func (l *Logger) Slog() *slog.Logger { return l.slog }

// Info logs an info message
func (l *Logger) Info(format string, args ...interface{}) {
	if l.Verbose || l.DebugMode {
		l.slog.Info(fmt.Sprintf(format, args...))
	}
}

// Debug logs a debug message
func (l *Logger) Debug(format string, args ...interface{}) {
	if l.DebugMode {
		l.slog.Debug(fmt.Sprintf(format, args...))
	}
}

// Warn logs a warning message
func (l *Logger) Warn(format string, args ...interface{}) {
	l.slog.Warn(fmt.Sprintf(format, args...))
}

// Error logs an error message
func (l *Logger) Error(format string, args ...interface{}) {
	l.slog.Error(fmt.Sprintf(format, args...))
}
