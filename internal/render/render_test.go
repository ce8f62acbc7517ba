package render

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inkwell/internal/apperr"
)

func TestJSON(t *testing.T) {
	w := httptest.NewRecorder()
	JSON(w, http.StatusCreated, map[string]string{"slug": "hello"})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"slug":"hello"}`, w.Body.String())
}

func TestNoContent(t *testing.T) {
	w := httptest.NewRecorder()
	NoContent(w)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		body   string
	}{
		{
			name:   "validation",
			err:    apperr.Invalid("title", "This field is required."),
			status: http.StatusBadRequest,
			body:   `{"title":["This field is required."]}`,
		},
		{
			name:   "wrapped validation",
			err:    fmt.Errorf("create article: %w", apperr.Invalid("categories", "Referenced object does not exist.")),
			status: http.StatusBadRequest,
			body:   `{"categories":["Referenced object does not exist."]}`,
		},
		{
			name:   "conflict",
			err:    &apperr.ConflictError{Field: "slug", Message: "article with this slug already exists."},
			status: http.StatusConflict,
			body:   `{"slug":["article with this slug already exists."]}`,
		},
		{
			name:   "not found",
			err:    fmt.Errorf("retrieve: %w", apperr.NotFound("article")),
			status: http.StatusNotFound,
			body:   `{"detail":"Not found."}`,
		},
		{
			name:   "invalid page",
			err:    apperr.InvalidPage(),
			status: http.StatusNotFound,
			body:   `{"detail":"Invalid page."}`,
		},
		{
			name:   "unauthenticated",
			err:    apperr.Unauthenticated(),
			status: http.StatusUnauthorized,
			body:   `{"detail":"Authentication credentials were not provided."}`,
		},
		{
			name:   "forbidden",
			err:    apperr.Forbidden(""),
			status: http.StatusForbidden,
			body:   `{"detail":"You do not have permission to perform this action."}`,
		},
		{
			name:   "transient",
			err:    &apperr.TransientError{Op: "list articles", Err: errors.New("dial tcp: refused")},
			status: http.StatusServiceUnavailable,
			body:   `{"detail":"Service temporarily unavailable, try again later."}`,
		},
		{
			name:   "unknown",
			err:    errors.New("boom"),
			status: http.StatusInternalServerError,
			body:   `{"detail":"A server error occurred."}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, "/api/v1/articles", nil)
			Error(w, r, tt.err)

			assert.Equal(t, tt.status, w.Code)
			assert.JSONEq(t, tt.body, w.Body.String())
		})
	}
}

func TestErrorUnauthenticatedChallenge(t *testing.T) {
	w := httptest.NewRecorder()
	Error(w, httptest.NewRequest(http.MethodPost, "/", nil), apperr.Unauthenticated())

	assert.NotEmpty(t, w.Header().Get("WWW-Authenticate"))

	var body Detail
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.NotEmpty(t, body.Detail)
}
