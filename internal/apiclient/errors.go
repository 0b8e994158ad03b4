// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package apiclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/olegiv/recipe-console/internal/model"
)

// Sentinel errors matched with errors.Is.
var (
	// ErrUnauthorized matches 401 and 403 responses.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrNotFound matches 404 responses.
	ErrNotFound = errors.New("not found")
	// ErrTransport wraps failures to reach the backend at all.
	ErrTransport = errors.New("backend unreachable")
	// ErrValidation matches client-side form failures and 400 responses
	// that carry field errors.
	ErrValidation = errors.New("validation failed")
)

// Generic user-facing messages.
const (
	MessageSessionExpired = "Your session has expired. Please sign in again."
	MessageUnavailable    = "The recipe service is unavailable. Please try again."
	MessageServerError    = "Something went wrong on the server. Please try again later."
	MessageRequestFailed  = "The request could not be completed."
)

// Error is a non-2xx backend response.
type Error struct {
	Method  string
	Path    string
	Status  int
	Payload *model.ErrorResponse
}

func (e *Error) Error() string {
	msg := http.StatusText(e.Status)
	if e.Payload != nil && e.Payload.Message != "" {
		msg = e.Payload.Message
	}
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.Status, msg)
}

// Is lets callers match the response class with the sentinel errors.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden
	case ErrNotFound:
		return e.Status == http.StatusNotFound
	case ErrValidation:
		return e.Status == http.StatusBadRequest && e.Payload != nil && len(e.Payload.FieldErrors) > 0
	}
	return false
}

// FieldErrors returns the backend's per-field failures, if any.
func (e *Error) FieldErrors() []model.FieldError {
	if e.Payload == nil {
		return nil
	}
	return e.Payload.FieldErrors
}

// ValidationError is a form that failed client-side constraints before any
// request was made.
type ValidationError struct {
	Fields []model.FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return strings.Join(parts, "; ")
}

// Is matches ErrValidation.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Retryable reports whether a query may be retried after err: transport
// failures and 5xx responses. Cancellation is never retried.
func Retryable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, ErrTransport) {
		return true
	}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Status >= 500
	}
	return false
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// Message returns the text to show the user for err: the backend's message
// when the response carried one, otherwise a generic message for its class.
func Message(err error) string {
	if err == nil {
		return ""
	}

	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return vErr.Error()
	}

	if errors.Is(err, ErrTransport) {
		return MessageUnavailable
	}

	var apiErr *Error
	if !errors.As(err, &apiErr) {
		return MessageRequestFailed
	}
	switch {
	case errors.Is(apiErr, ErrUnauthorized):
		return MessageSessionExpired
	case apiErr.Payload != nil && apiErr.Payload.Message != "":
		return apiErr.Payload.Message
	case apiErr.Status >= 500:
		return MessageServerError
	case len(apiErr.FieldErrors()) > 0:
		return (&ValidationError{Fields: apiErr.FieldErrors()}).Error()
	}
	return MessageRequestFailed
}
