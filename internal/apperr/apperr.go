// Package apperr defines the typed errors shared by the store, the reminder
// manager and the TUI. The Message of an *Error is safe to show to the user.
package apperr

import (
	"errors"
	"fmt"
	"log/slog"
)

// Type classifies an error by where it came from.
type Type string

const (
	TypeValidation Type = "validation"
	TypeDatabase   Type = "database"
	TypeNotFound   Type = "not_found"
	TypePermission Type = "permission"
	TypeInternal   Type = "internal"
)

// Error is an application error carrying a user-facing message.
type Error struct {
	Type     Type
	Code     string
	Message  string
	Internal error
}

func (e *Error) Error() string {
	if e.Internal != nil {
		return fmt.Sprintf("%s: %s (internal: %v)", e.Type, e.Message, e.Internal)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Internal
}

// Is matches another *Error with the same Type and Code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Type == t.Type && e.Code == t.Code
	}
	return false
}

// LogAttrs returns structured logging fields.
func (e *Error) LogAttrs() []any {
	attrs := []any{
		"error_type", string(e.Type),
		"error_code", e.Code,
		"error_message", e.Message,
	}
	if e.Internal != nil {
		attrs = append(attrs, "internal_error", e.Internal.Error())
	}
	return attrs
}

func New(t Type, code, message string) *Error {
	return &Error{Type: t, Code: code, Message: message}
}

func Wrap(err error, t Type, code, message string) *Error {
	return &Error{Type: t, Code: code, Message: message, Internal: err}
}

// Validation is shorthand for New(TypeValidation, code, message).
func Validation(code, message string) *Error {
	return New(TypeValidation, code, message)
}

// IsType reports whether any error in err's chain is an *Error of type t.
func IsType(err error, t Type) bool {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Type == t
	}
	return false
}

// UserMessage returns the text to surface in the UI for err.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Message
	}
	return "Something went wrong: " + err.Error()
}

// Log writes err to logger at a level matching its type: validation
// problems are user mistakes and only logged at debug.
func Log(logger *slog.Logger, msg string, err error) {
	if err == nil || logger == nil {
		return
	}
	var ae *Error
	if !errors.As(err, &ae) {
		logger.Error(msg, "error", err)
		return
	}
	switch ae.Type {
	case TypeValidation:
		logger.Debug(msg, ae.LogAttrs()...)
	case TypePermission, TypeNotFound:
		logger.Warn(msg, ae.LogAttrs()...)
	default:
		logger.Error(msg, ae.LogAttrs()...)
	}
}
