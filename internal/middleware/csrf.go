package middleware

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"net/http"

	"inkwell/internal/apperr"
	"inkwell/internal/identity"
	"inkwell/internal/render"
)

const (
	// csrfTokenLength is the byte length of CSRF tokens (64 hex chars).
	csrfTokenLength = 32

	// CSRFCookieName is the cookie that holds the CSRF token.
	CSRFCookieName = "inkwell_csrf"

	// CSRFHeaderName is the header clients echo the cookie value in.
	CSRFHeaderName = "X-CSRF-Token"
)

// CSRF enforces double-submit protection for session-authenticated callers.
// Bearer-token and anonymous requests are not cookie-driven and pass
// through; so do safe methods.
func CSRF(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if safeMethod(r.Method) || identity.FromContext(r.Context()).Method != identity.MethodSession {
			next.ServeHTTP(w, r)
			return
		}

		cookie, err := r.Cookie(CSRFCookieName)
		submitted := r.Header.Get(CSRFHeaderName)
		if err != nil || cookie.Value == "" || submitted == "" ||
			subtle.ConstantTimeCompare([]byte(cookie.Value), []byte(submitted)) != 1 {
			render.Error(w, r, apperr.Forbidden("CSRF Failed: CSRF token missing or incorrect."))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// SetCSRFCookie issues a fresh CSRF token, readable by scripts so they can
// copy it into the header. Called on session login.
func SetCSRFCookie(w http.ResponseWriter, secure bool) (string, error) {
	token, err := generateCSRFToken()
	if err != nil {
		return "", err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CSRFCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: false,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
	})
	return token, nil
}

// ClearCSRFCookie expires the CSRF cookie. Called on session logout.
func ClearCSRFCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:   CSRFCookieName,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})
}

func safeMethod(m string) bool {
	return m == http.MethodGet || m == http.MethodHead || m == http.MethodOptions || m == http.MethodTrace
}

func generateCSRFToken() (string, error) {
	b := make([]byte, csrfTokenLength)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
