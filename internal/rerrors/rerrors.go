// Package rerrors defines the error taxonomy used across this module:
// ParseError, NotFound, StorageError, TransportError, and UsageError. Each
// wraps an underlying cause with github.com/pkg/errors so a stack trace is
// captured at the point of failure while still supporting errors.Is/As at
// call sites.
package rerrors

import (
	"fmt"

	"github.com/pkg/errors"
)

// ParseError reports malformed input that was parsed into a substituted
// default value rather than aborting the caller (spec §7: "source value is
// logged, a default-constructed value is substituted").
type ParseError struct {
	Field string
	Value string
	cause error
}

// NewParseError wraps cause as a ParseError naming the offending field/value.
func NewParseError(field, value string, cause error) *ParseError {
	return &ParseError{Field: field, Value: value, cause: errors.WithStack(cause)}
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s %q: %v", e.Field, e.Value, e.cause)
}

func (e *ParseError) Unwrap() error { return e.cause }

// NotFound reports that a lookup by id, index, or metadata found nothing.
type NotFound struct {
	Kind string
	Key  string
}

// NewNotFound constructs a NotFound error for the given kind/key, e.g.
// NewNotFound("session", "index=12").
func NewNotFound(kind, key string) *NotFound {
	return &NotFound{Kind: kind, Key: key}
}

func (e *NotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.Key)
}

// StorageError wraps a failure from the session/track database.
type StorageError struct {
	Op    string
	cause error
}

// NewStorageError wraps cause, attaching a stack trace if it doesn't already
// carry one.
func NewStorageError(op string, cause error) *StorageError {
	return &StorageError{Op: op, cause: errors.WithStack(cause)}
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.cause)
}

func (e *StorageError) Unwrap() error { return e.cause }

// TransportError wraps a failure talking to the REST server: connection
// refused, non-2xx status, or a malformed response body.
type TransportError struct {
	Op    string
	cause error
}

// NewTransportError wraps cause as a TransportError for the given operation.
func NewTransportError(op string, cause error) *TransportError {
	return &TransportError{Op: op, cause: errors.WithStack(cause)}
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport: %s: %v", e.Op, e.cause)
}

func (e *TransportError) Unwrap() error { return e.cause }

// UsageError reports a programmer mistake: double SetResult, cross-thread
// WaitForFinished, duplicate FD+kind registration. Per spec §7 these are
// logged at Warn level and otherwise ignored rather than propagated.
type UsageError struct {
	Msg string
}

// NewUsageError constructs a UsageError with the given message.
func NewUsageError(msg string) *UsageError {
	return &UsageError{Msg: msg}
}

func (e *UsageError) Error() string { return "usage: " + e.Msg }
