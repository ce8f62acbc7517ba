// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package apperr defines the error taxonomy shared by stores, handlers and
// the JSON renderer. Each type maps to exactly one HTTP status class.
package apperr

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ValidationError reports missing, malformed or out-of-range input,
// keyed by field name.
type ValidationError struct {
	Fields map[string][]string
}

// NewValidation returns an empty ValidationError ready for Add calls.
func NewValidation() *ValidationError {
	return &ValidationError{Fields: make(map[string][]string)}
}

// Invalid is shorthand for a ValidationError with a single message.
func Invalid(field, msg string) *ValidationError {
	v := NewValidation()
	v.Add(field, msg)
	return v
}

// Add records a message against a field.
func (e *ValidationError) Add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string][]string)
	}
	e.Fields[field] = append(e.Fields[field], msg)
}

// Empty reports whether no field has an error.
func (e *ValidationError) Empty() bool {
	return len(e.Fields) == 0
}

// Err returns e as an error, or nil when nothing was recorded. Returning a
// typed nil pointer through the error interface would be non-nil.
func (e *ValidationError) Err() error {
	if e.Empty() {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+strings.Join(e.Fields[k], "; "))
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// ConflictError reports a uniqueness violation on a single field.
type ConflictError struct {
	Field   string
	Message string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflict on %s: %s", e.Field, e.Message)
}

// NotFoundError reports a missing row, or one the caller may not see.
// The two cases are deliberately indistinguishable.
type NotFoundError struct {
	Resource string
	// Detail overrides the client-facing message when set.
	Detail string
}

func (e *NotFoundError) Error() string {
	return e.Resource + " not found"
}

// NotFound returns a NotFoundError for the named resource.
func NotFound(resource string) *NotFoundError {
	return &NotFoundError{Resource: resource}
}

// InvalidPage is the NotFoundError for a page number past the last page.
func InvalidPage() *NotFoundError {
	return &NotFoundError{Resource: "page", Detail: "Invalid page."}
}

// AuthorizationError reports a write attempted without credentials
// (Authenticated false) or by a caller the policy rejects.
type AuthorizationError struct {
	Authenticated bool
	Message       string
}

func (e *AuthorizationError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if !e.Authenticated {
		return "authentication required"
	}
	return "permission denied"
}

// Unauthenticated returns the error used when no principal is present.
func Unauthenticated() *AuthorizationError {
	return &AuthorizationError{Message: "Authentication credentials were not provided."}
}

// Forbidden returns the error used when an authenticated caller is denied.
func Forbidden(msg string) *AuthorizationError {
	if msg == "" {
		msg = "You do not have permission to perform this action."
	}
	return &AuthorizationError{Authenticated: true, Message: msg}
}

// TransientError wraps a store connectivity failure. The core never
// retries; the transport maps it to 503.
type TransientError struct {
	Op  string
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("%s: store unavailable: %v", e.Op, e.Err)
}

func (e *TransientError) Unwrap() error { return e.Err }

// IsNotFound reports whether err is, or wraps, a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
