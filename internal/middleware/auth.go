// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"inkwell/internal/apperr"
	"inkwell/internal/identity"
	"inkwell/internal/models"
	"inkwell/internal/render"
	"inkwell/internal/session"
)

// TokenParser validates a bearer access token and returns its subject.
type TokenParser interface {
	ParseAccess(token string) (uuid.UUID, error)
}

// SessionReader loads the session named by the request cookie.
type SessionReader interface {
	Get(ctx context.Context, r *http.Request) (*session.Data, error)
}

// UserFinder reloads the account behind a token or session.
type UserFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// Authenticator resolves the caller's identity. A bearer token wins over a
// session cookie; with neither the request proceeds anonymously. It never
// rejects anonymous requests, that is RequireAuth's job.
type Authenticator struct {
	Tokens   TokenParser
	Sessions SessionReader
	Users    UserFinder
}

func invalidToken(msg string) *apperr.AuthorizationError {
	return &apperr.AuthorizationError{Message: msg}
}

// Middleware attaches an identity.Principal to every request context.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if token, ok := bearerToken(r); ok {
			userID, err := a.Tokens.ParseAccess(token)
			if err != nil {
				render.Error(w, r, invalidToken("Given token not valid for any token type"))
				return
			}
			user, err := a.Users.FindByID(ctx, userID)
			if err != nil {
				render.Error(w, r, err)
				return
			}
			if user == nil || !user.IsActive {
				render.Error(w, r, invalidToken("User not found or inactive."))
				return
			}
			next.ServeHTTP(w, r.WithContext(identity.WithPrincipal(ctx, principal(user, identity.MethodToken))))
			return
		}

		p := identity.Anonymous()
		if a.Sessions != nil {
			data, err := a.Sessions.Get(ctx, r)
			if err != nil {
				// Treat an unreachable session store as anonymous.
				slog.Warn("session lookup failed", "error", err)
			}
			if data != nil {
				user, err := a.Users.FindByID(ctx, data.UserID)
				if err != nil {
					render.Error(w, r, err)
					return
				}
				if user != nil && user.IsActive {
					p = principal(user, identity.MethodSession)
				}
			}
		}

		next.ServeHTTP(w, r.WithContext(identity.WithPrincipal(ctx, p)))
	})
}

// RequireAuth rejects anonymous callers with 401.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !identity.FromContext(r.Context()).IsAuthenticated() {
			render.Error(w, r, apperr.Unauthenticated())
			return
		}
		next.ServeHTTP(w, r)
	})
}

// bearerToken returns the token of an "Authorization: Bearer" header.
// Other schemes are ignored so session callers can still send Basic auth
// through proxies.
func bearerToken(r *http.Request) (string, bool) {
	scheme, token, found := strings.Cut(r.Header.Get("Authorization"), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	return strings.TrimSpace(token), true
}

func principal(u *models.User, m identity.Method) identity.Principal {
	return identity.Principal{
		UserID:   u.ID,
		Username: u.Username,
		IsStaff:  u.IsStaff,
		Method:   m,
	}
}
