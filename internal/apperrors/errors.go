// Package apperrors defines typed application errors and their HTTP mapping.
package apperrors

import (
	"context"
	"errors"
	"net/http"
)

// Kind classifies application failures for consistent HTTP mapping.
type Kind string

const (
	KindUnknown      Kind = "unknown"
	KindInvalidInput Kind = "invalid_input"
	KindUnauthorized Kind = "unauthorized"
	KindForbidden    Kind = "forbidden"
	KindNotFound     Kind = "not_found"
	KindConflict     Kind = "conflict"
	KindTimeout      Kind = "timeout"
	KindUnavailable  Kind = "unavailable"
)

// Error is a typed application failure. Fields carries per-field
// validation messages keyed by the JSON field name.
type Error struct {
	Kind    Kind
	Message string
	Fields  map[string]string
	Cause   error
}

func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Kind)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// E builds a typed error.
func E(kind Kind, message string) error {
	return &Error{Kind: kind, Message: message}
}

// Wrap builds a typed error around an underlying cause.
func Wrap(kind Kind, message string, cause error) error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// Invalid builds an invalid-input error with per-field messages.
func Invalid(message string, fields map[string]string) error {
	return &Error{Kind: KindInvalidInput, Message: message, Fields: fields}
}

// KindOf returns the kind of err. Context deadline errors map to
// KindTimeout; anything untyped is KindUnknown.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	return KindUnknown
}

// FieldsOf returns the per-field messages carried by err, if any.
func FieldsOf(err error) map[string]string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Fields
	}
	return nil
}

// HTTPStatus maps an error to an HTTP status code.
func HTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}
	switch KindOf(err) {
	case KindInvalidInput:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindTimeout:
		return http.StatusGatewayTimeout
	case KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage returns the message safe to show to a client. Unknown
// failures collapse to a fixed message so internals do not leak.
func PublicMessage(err error, fallback string) string {
	var appErr *Error
	if errors.As(err, &appErr) && appErr.Kind != KindUnknown {
		return appErr.Error()
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "request timed out"
	}
	return fallback
}
