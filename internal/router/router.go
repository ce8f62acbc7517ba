// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router sets up all HTTP routes and middleware chains for the
// Inkwell API. Reads are open to everyone; writes sit behind RequireAuth
// and the per-handler policy checks.
package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	"inkwell/internal/handlers"
	"inkwell/internal/middleware"
	"inkwell/internal/render"
)

// Deps carries everything the router mounts.
type Deps struct {
	Authenticator *middleware.Authenticator
	Articles      *handlers.Articles
	Categories    *handlers.Categories
	Media         *handlers.Media
	Auth          *handlers.Auth
	Health        http.HandlerFunc

	// CORSOrigins lists the browser origins allowed to call the API.
	// Empty means no cross-origin access.
	CORSOrigins []string
	// RateLimit is the per-IP request budget per minute. Zero disables it.
	RateLimit int
}

// New creates and returns the configured Chi router.
func New(d Deps) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)
	r.Use(chimw.StripSlashes)
	r.Use(cors.New(cors.Options{
		AllowedOrigins:   d.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", middleware.CSRFHeaderName},
		AllowCredentials: true,
		MaxAge:           300,
	}).Handler)
	if d.RateLimit > 0 {
		r.Use(httprate.LimitByIP(d.RateLimit, time.Minute))
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		render.DetailJSON(w, http.StatusNotFound, "Not found.")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		render.DetailJSON(w, http.StatusMethodNotAllowed, `Method "`+r.Method+`" not allowed.`)
	})

	// Health check: no identity, no CSRF.
	if d.Health != nil {
		r.Get("/health", d.Health)
	}

	r.Group(func(r chi.Router) {
		r.Use(d.Authenticator.Middleware)
		r.Use(middleware.RecordUser)
		r.Use(middleware.CSRF)

		// Token endpoints.
		r.Post("/api/token", d.Auth.ObtainToken)
		r.Post("/api/token/refresh", d.Auth.RefreshToken)
		r.Post("/api/token/verify", d.Auth.VerifyToken)

		// Browsable session login.
		r.Post("/api-auth/login", d.Auth.Login)
		r.Post("/api-auth/logout", d.Auth.Logout)

		r.Route("/api/v1", func(r chi.Router) {
			r.Route("/articles", func(r chi.Router) {
				r.Get("/", d.Articles.List)
				r.Get("/published", d.Articles.Published)
				r.Get("/featured", d.Articles.Featured)
				r.With(middleware.RequireAuth).Get("/my_articles", d.Articles.MyArticles)
				r.Get("/{slug}", d.Articles.Retrieve)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireAuth)
					r.Post("/", d.Articles.Create)
					r.Put("/{slug}", d.Articles.Update)
					r.Patch("/{slug}", d.Articles.PartialUpdate)
					r.Delete("/{slug}", d.Articles.Delete)
				})
			})

			r.Route("/categories", func(r chi.Router) {
				r.Get("/", d.Categories.List)
				r.Get("/{slug}", d.Categories.Retrieve)
				r.Get("/{slug}/articles", d.Categories.Articles)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireAuth)
					r.Post("/", d.Categories.Create)
					r.Put("/{slug}", d.Categories.Update)
					r.Patch("/{slug}", d.Categories.PartialUpdate)
					r.Delete("/{slug}", d.Categories.Delete)
				})
			})

			r.Route("/media", func(r chi.Router) {
				r.Get("/{id}", d.Media.Retrieve)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireAuth)
					r.Post("/", d.Media.Upload)
					r.Delete("/{id}", d.Media.Delete)
				})
			})
		})
	})

	return r
}
