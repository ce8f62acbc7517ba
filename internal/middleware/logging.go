// Package middleware provides the HTTP middleware for the inkwell API:
// caller identification, the authentication gate, CSRF for session
// callers, request logging, panic recovery and security headers.
package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"

	"inkwell/internal/identity"
)

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

// WriteHeader captures the status code before writing it.
func (rw *responseWriter) WriteHeader(code int) {
	if !rw.written {
		rw.statusCode = code
		rw.written = true
	}
	rw.ResponseWriter.WriteHeader(code)
}

// Write ensures a default 200 status if WriteHeader was never called.
func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.written {
		rw.statusCode = http.StatusOK
		rw.written = true
	}
	return rw.ResponseWriter.Write(b)
}

// Logger records one structured line per request. The user id is read
// after the handler runs, so the Authenticator must sit inside Logger.
func Logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		var userID string
		next.ServeHTTP(wrapped, r.WithContext(withUserSink(r.Context(), &userID)))

		slog.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", wrapped.statusCode,
			"duration", time.Since(start).String(),
			"remote", r.RemoteAddr,
			"request_id", chimw.GetReqID(r.Context()),
			"user_id", userID,
		)
	})
}

// RecordUser copies the resolved principal into the Logger's sink. It is
// mounted directly after the Authenticator.
func RecordUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if sink := userSink(r.Context()); sink != nil {
			if p := identity.FromContext(r.Context()); p.IsAuthenticated() {
				*sink = p.UserID.String()
			}
		}
		next.ServeHTTP(w, r)
	})
}

type userSinkKey struct{}

func withUserSink(ctx context.Context, dst *string) context.Context {
	return context.WithValue(ctx, userSinkKey{}, dst)
}

func userSink(ctx context.Context) *string {
	dst, _ := ctx.Value(userSinkKey{}).(*string)
	return dst
}
