// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package render writes JSON responses and maps application errors to HTTP
// status codes and bodies.
package render

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"inkwell/internal/apperr"
)

// Detail is the body used for errors that are not tied to a field.
type Detail struct {
	Detail string `json:"detail"`
}

// JSON writes v as the response body with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}

// NoContent writes an empty 204 response.
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// DetailJSON writes a {"detail": msg} body.
func DetailJSON(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, Detail{Detail: msg})
}

// Status returns the HTTP status an error maps to.
func Status(err error) int {
	var (
		validation *apperr.ValidationError
		conflict   *apperr.ConflictError
		notFound   *apperr.NotFoundError
		authz      *apperr.AuthorizationError
		transient  *apperr.TransientError
	)
	switch {
	case errors.As(err, &validation):
		return http.StatusBadRequest
	case errors.As(err, &conflict):
		return http.StatusConflict
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &authz):
		if authz.Authenticated {
			return http.StatusForbidden
		}
		return http.StatusUnauthorized
	case errors.As(err, &transient):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Error writes the response for err. Unclassified errors are logged and
// hidden behind a generic 500 body.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	status := Status(err)

	var (
		validation *apperr.ValidationError
		conflict   *apperr.ConflictError
		notFound   *apperr.NotFoundError
		authz      *apperr.AuthorizationError
	)
	switch {
	case errors.As(err, &validation):
		JSON(w, status, validation.Fields)
	case errors.As(err, &conflict):
		JSON(w, status, map[string][]string{conflict.Field: {conflict.Message}})
	case errors.As(err, &notFound):
		msg := "Not found."
		if notFound.Detail != "" {
			msg = notFound.Detail
		}
		DetailJSON(w, status, msg)
	case errors.As(err, &authz):
		if status == http.StatusUnauthorized {
			w.Header().Set("WWW-Authenticate", `Bearer realm="api"`)
		}
		DetailJSON(w, status, authz.Error())
	case status == http.StatusServiceUnavailable:
		slog.Error("store unavailable", "error", err, "method", r.Method, "path", r.URL.Path)
		DetailJSON(w, status, "Service temporarily unavailable, try again later.")
	default:
		slog.Error("request failed", "error", err, "method", r.Method, "path", r.URL.Path)
		DetailJSON(w, status, "A server error occurred.")
	}
}
