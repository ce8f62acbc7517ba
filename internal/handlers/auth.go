// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"inkwell/internal/apperr"
	"inkwell/internal/middleware"
	"inkwell/internal/render"
	"inkwell/internal/serializer"
	"inkwell/internal/session"
)

// Auth groups the token and session login handlers.
type Auth struct {
	users    UserStore
	tokens   TokenIssuer
	sessions SessionManager
	opts     Options
}

// NewAuth creates the auth handler group. sessions may be nil, which
// disables session login.
func NewAuth(users UserStore, tokens TokenIssuer, sessions SessionManager, opts Options) *Auth {
	return &Auth{users: users, tokens: tokens, sessions: sessions, opts: opts}
}

type credentials struct {
	Username *string `json:"username"`
	Password *string `json:"password"`
}

func (c credentials) validate() error {
	v := apperr.NewValidation()
	if c.Username == nil || strings.TrimSpace(*c.Username) == "" {
		v.Add("username", "This field is required.")
	}
	if c.Password == nil || *c.Password == "" {
		v.Add("password", "This field is required.")
	}
	return v.Err()
}

type refreshRequest struct {
	Refresh string `json:"refresh"`
}

type verifyRequest struct {
	Token string `json:"token"`
}

type accessResponse struct {
	Access string `json:"access"`
}

type loginResponse struct {
	Username  string `json:"username"`
	CSRFToken string `json:"csrf_token"`
}

func tokenInvalid() *apperr.AuthorizationError {
	return &apperr.AuthorizationError{Message: "Token is invalid or expired"}
}

// ObtainToken exchanges a username and password for an access/refresh pair.
func (h *Auth) ObtainToken(w http.ResponseWriter, r *http.Request) {
	var in credentials
	if err := serializer.Decode(r.Body, &in); err != nil {
		render.Error(w, r, err)
		return
	}
	if err := in.validate(); err != nil {
		render.Error(w, r, err)
		return
	}

	userID, err := h.authenticate(r, *in.Username, *in.Password)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	pair, err := h.tokens.IssuePair(userID)
	if err != nil {
		render.Error(w, r, err)
		return
	}
	render.JSON(w, http.StatusOK, pair)
}

// RefreshToken trades a refresh token for a new access token.
func (h *Auth) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var in refreshRequest
	if err := serializer.Decode(r.Body, &in); err != nil {
		render.Error(w, r, err)
		return
	}
	if in.Refresh == "" {
		render.Error(w, r, apperr.Invalid("refresh", "This field is required."))
		return
	}

	access, err := h.tokens.Refresh(in.Refresh)
	if err != nil {
		render.Error(w, r, tokenInvalid())
		return
	}
	render.JSON(w, http.StatusOK, accessResponse{Access: access})
}

// VerifyToken answers 200 with an empty object when the token is valid.
func (h *Auth) VerifyToken(w http.ResponseWriter, r *http.Request) {
	var in verifyRequest
	if err := serializer.Decode(r.Body, &in); err != nil {
		render.Error(w, r, err)
		return
	}
	if in.Token == "" {
		render.Error(w, r, apperr.Invalid("token", "This field is required."))
		return
	}

	if err := h.tokens.Verify(in.Token); err != nil {
		render.Error(w, r, tokenInvalid())
		return
	}
	render.JSON(w, http.StatusOK, struct{}{})
}

// Login starts a browser session and issues the CSRF cookie that unsafe
// session requests must echo. Accepts JSON or a urlencoded form.
func (h *Auth) Login(w http.ResponseWriter, r *http.Request) {
	if h.sessions == nil {
		render.DetailJSON(w, http.StatusServiceUnavailable, "Session login is not available.")
		return
	}

	in, err := readCredentials(r)
	if err != nil {
		render.Error(w, r, err)
		return
	}
	if err := in.validate(); err != nil {
		render.Error(w, r, err)
		return
	}

	userID, err := h.authenticate(r, *in.Username, *in.Password)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	username := strings.TrimSpace(*in.Username)
	if _, err := h.sessions.Create(r.Context(), w, &session.Data{UserID: userID, Username: username}); err != nil {
		render.Error(w, r, err)
		return
	}
	token, err := middleware.SetCSRFCookie(w, h.opts.SecureCookies)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	slog.Info("session login", "username", username)
	render.JSON(w, http.StatusOK, loginResponse{Username: username, CSRFToken: token})
}

// Logout ends the browser session.
func (h *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	if h.sessions != nil {
		if err := h.sessions.Destroy(r.Context(), w, r); err != nil {
			render.Error(w, r, err)
			return
		}
	}
	middleware.ClearCSRFCookie(w)
	render.NoContent(w)
}

// authenticate checks a username and password. Unknown users, wrong
// passwords and inactive accounts are indistinguishable to the client.
func (h *Auth) authenticate(r *http.Request, username, password string) (uuid.UUID, error) {
	user, err := h.users.FindByUsername(r.Context(), strings.TrimSpace(username))
	if err != nil {
		return uuid.Nil, err
	}
	if user == nil || !user.IsActive || !h.users.CheckPassword(user, password) {
		return uuid.Nil, &apperr.AuthorizationError{Message: "No active account found with the given credentials"}
	}
	return user.ID, nil
}

func readCredentials(r *http.Request) (credentials, error) {
	var in credentials
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/x-www-form-urlencoded" {
		if err := r.ParseForm(); err != nil {
			return in, apperr.Invalid("detail", "Malformed form body.")
		}
		if r.PostForm.Has("username") {
			u := r.PostFormValue("username")
			in.Username = &u
		}
		if r.PostForm.Has("password") {
			p := r.PostFormValue("password")
			in.Password = &p
		}
		return in, nil
	}
	err := serializer.Decode(r.Body, &in)
	return in, err
}
