// Package rlog provides the structured logger used across this module: a
// thin wrapper over logrus that attaches a "component" field, matching the
// per-subsystem loggers the original C++ engine builds on top of spdlog.
package rlog

import "github.com/sirupsen/logrus"

// Logger is a component-scoped structured logger.
type Logger struct {
	entry *logrus.Entry
}

// base is the process-wide logrus instance. Tests may swap its output via
// SetOutput without touching global state elsewhere.
var base = logrus.New()

// SetLevel sets the minimum level logged by every Logger.
func SetLevel(level logrus.Level) {
	base.SetLevel(level)
}

// For returns a Logger tagged with the given component name, e.g.
// rlog.For("laptimer").
func For(component string) *Logger {
	return &Logger{entry: base.WithField("component", component)}
}

// WithField returns a derived Logger with an additional structured field.
func (l *Logger) WithField(key string, value any) *Logger {
	return &Logger{entry: l.entry.WithField(key, value)}
}

// WithError returns a derived Logger with an "error" field set to err.
func (l *Logger) WithError(err error) *Logger {
	return &Logger{entry: l.entry.WithError(err)}
}

// Debug logs at debug level.
func (l *Logger) Debug(args ...any) { l.entry.Debug(args...) }

// Info logs at info level.
func (l *Logger) Info(args ...any) { l.entry.Info(args...) }

// Warn logs at warn level — the level used for UsageError conditions that
// are logged and otherwise ignored (spec §7).
func (l *Logger) Warn(args ...any) { l.entry.Warn(args...) }

// Error logs at error level.
func (l *Logger) Error(args ...any) { l.entry.Error(args...) }
