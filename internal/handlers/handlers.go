// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers contains the HTTP handlers for the inkwell API.
// Handlers are grouped by resource (articles, categories, media, auth) and
// receive their dependencies through the handler struct.
package handlers

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"

	"inkwell/internal/auth"
	"inkwell/internal/models"
	"inkwell/internal/policy"
	"inkwell/internal/serializer"
	"inkwell/internal/session"
	"inkwell/internal/store"
)

// ArticleStore is the persistence the article handlers need.
type ArticleStore interface {
	List(ctx context.Context, q store.ArticleQuery) ([]models.Article, int, error)
	FindBySlug(ctx context.Context, slug string, scope policy.Scope) (*models.Article, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Article, error)
	Create(ctx context.Context, a *models.Article) error
	Update(ctx context.Context, a *models.Article) error
	Delete(ctx context.Context, id uuid.UUID) error
	IncrementViewCount(ctx context.Context, id uuid.UUID) (int64, error)
}

// CategoryStore is the persistence the category handlers need.
type CategoryStore interface {
	List(ctx context.Context, q store.CategoryQuery) ([]models.Category, int, error)
	FindBySlug(ctx context.Context, slug string) (*models.Category, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Category, error)
	Create(ctx context.Context, c *models.Category) error
	Update(ctx context.Context, c *models.Category) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// MediaStore is the persistence for uploaded image records.
type MediaStore interface {
	Create(ctx context.Context, m *models.Media) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Media, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Media, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// AssetStore holds the bytes behind media records.
type AssetStore interface {
	serializer.AssetLocator
	Upload(ctx context.Context, key, contentType string, body io.Reader, size int64) error
	Delete(ctx context.Context, key string) error
}

// UserStore looks up accounts for credential checks.
type UserStore interface {
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	CheckPassword(user *models.User, password string) bool
}

// TokenIssuer issues and checks JWT pairs.
type TokenIssuer interface {
	IssuePair(userID uuid.UUID) (auth.Pair, error)
	Refresh(refresh string) (string, error)
	Verify(token string) error
}

// SessionManager creates and destroys browser sessions.
type SessionManager interface {
	Create(ctx context.Context, w http.ResponseWriter, data *session.Data) (string, error)
	Destroy(ctx context.Context, w http.ResponseWriter, r *http.Request) error
}

// Options carries the request-independent settings shared by the handler
// groups.
type Options struct {
	// PageSize is the number of results per list page.
	PageSize int
	// BaseURL, when set, is used for absolute links instead of the
	// request's scheme and host.
	BaseURL *url.URL
	// Writes decides who may create and modify articles.
	Writes policy.WritePolicy
	// SecureCookies marks session and CSRF cookies Secure.
	SecureCookies bool
	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

const defaultPageSize = 10

func (o Options) pageSize() int {
	if o.PageSize <= 0 {
		return defaultPageSize
	}
	return o.PageSize
}

func (o Options) now() time.Time {
	if o.Now != nil {
		return o.Now().UTC()
	}
	return time.Now().UTC()
}

// baseURL returns the absolute origin links and image URLs are built on.
func (o Options) baseURL(r *http.Request) *url.URL {
	if o.BaseURL != nil {
		return o.BaseURL
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto == "https" || proto == "http" {
		scheme = proto
	}
	return &url.URL{Scheme: scheme, Host: r.Host, Path: "/"}
}
