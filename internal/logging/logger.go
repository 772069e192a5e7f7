// Package logging provides a logging abstraction layer that decouples the
// engine from a specific logging framework. Components receive a Logger
// through their constructors, which keeps them testable and lets the
// embedding application choose the backend.
package logging

import "sync"

// Logger defines the interface for structured logging throughout the engine.
// Implementations should provide structured logging with support for fields
// and error context.
type Logger interface {
	// Debug logs a debug-level message with optional fields
	Debug(msg string, fields ...Field)

	// Info logs an info-level message with optional fields
	Info(msg string, fields ...Field)

	// Warn logs a warning-level message with optional fields
	Warn(msg string, fields ...Field)

	// Error logs an error-level message with optional fields
	Error(msg string, fields ...Field)

	// WithError returns a new logger with an error field attached
	WithError(err error) Logger

	// WithField returns a new logger with a single field attached
	WithField(key string, value interface{}) Logger

	// WithFields returns a new logger with multiple fields attached
	WithFields(fields ...Field) Logger
}

// Field represents a key-value pair for structured logging.
// Fields provide context to log messages without cluttering the message text.
type Field struct {
	Key   string
	Value interface{}
}

// Standardized field names for structured logging. Keeping the keys in one
// place makes per-user log filtering reliable.
const (
	FieldUserID     = "user_id"
	FieldCandidate  = "candidate_id"
	FieldCategory   = "category"
	FieldStrategy   = "strategy"
	FieldConfidence = "confidence"
	FieldOperation  = "operation"
	FieldCount      = "count"
	FieldReason     = "reason"
	FieldTokens     = "tokens"
	FieldSimilarity = "similarity"
)

var (
	defaultLogger Logger
	defaultOnce   sync.Once
)

// GetLogger returns the process-wide default logger, creating a text-format
// info-level logrus adapter on first use. Prefer passing a Logger explicitly;
// this exists for package-level convenience in tools and tests.
func GetLogger() Logger {
	defaultOnce.Do(func() {
		defaultLogger = NewLogrusAdapter("info", "text")
	})
	return defaultLogger
}
