// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

// FieldError is a per-field validation failure reported by the backend.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ErrorResponse is the backend's error payload.
type ErrorResponse struct {
	Status      int          `json:"status"`
	Error       string       `json:"error"`
	Message     string       `json:"message"`
	FieldErrors []FieldError `json:"fieldErrors,omitempty"`
	Timestamp   LocalTime    `json:"timestamp"`
}
