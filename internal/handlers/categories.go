// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"inkwell/internal/apperr"
	"inkwell/internal/identity"
	"inkwell/internal/models"
	"inkwell/internal/policy"
	"inkwell/internal/render"
	"inkwell/internal/serializer"
	"inkwell/internal/store"
)

// Categories groups the category HTTP handlers. Categories are shared:
// any authenticated caller may write them.
type Categories struct {
	categories CategoryStore
	articles   ArticleStore
	assets     serializer.AssetLocator
	opts       Options
}

// NewCategories creates the category handler group.
func NewCategories(categories CategoryStore, articles ArticleStore, assets serializer.AssetLocator, opts Options) *Categories {
	return &Categories{
		categories: categories,
		articles:   articles,
		assets:     assets,
		opts:       opts,
	}
}

// List serves the searchable, paginated category collection.
func (h *Categories) List(w http.ResponseWriter, r *http.Request) {
	q := store.CategoryQuery{
		Search:   strings.TrimSpace(r.URL.Query().Get("search")),
		Ordering: r.URL.Query().Get("ordering"),
	}
	fetch := func(limit, offset int) ([]models.Category, int, error) {
		q.Limit, q.Offset = limit, offset
		return h.categories.List(r.Context(), q)
	}
	paginate(w, r, h.opts, fetch, serializer.Categories)
}

// Retrieve returns one category by slug.
func (h *Categories) Retrieve(w http.ResponseWriter, r *http.Request) {
	c, err := h.find(r)
	if err != nil {
		render.Error(w, r, err)
		return
	}
	render.JSON(w, http.StatusOK, serializer.Category(c))
}

// Create stores a new category with a slug derived from its name.
func (h *Categories) Create(w http.ResponseWriter, r *http.Request) {
	if err := policy.CanWriteCategory(identity.FromContext(r.Context())); err != nil {
		render.Error(w, r, err)
		return
	}

	var in serializer.CategoryInput
	if err := serializer.Decode(r.Body, &in); err != nil {
		render.Error(w, r, err)
		return
	}
	if err := in.Validate(false); err != nil {
		render.Error(w, r, err)
		return
	}

	c := &models.Category{}
	in.Apply(c)
	if err := c.PrepareSave(h.opts.now()); err != nil {
		render.Error(w, r, err)
		return
	}
	if err := h.categories.Create(r.Context(), c); err != nil {
		render.Error(w, r, err)
		return
	}
	render.JSON(w, http.StatusCreated, serializer.Category(c))
}

// Update replaces a category's name and description (PUT).
func (h *Categories) Update(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, false)
}

// PartialUpdate changes only the fields present in the body (PATCH).
func (h *Categories) PartialUpdate(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, true)
}

func (h *Categories) update(w http.ResponseWriter, r *http.Request, partial bool) {
	if err := policy.CanWriteCategory(identity.FromContext(r.Context())); err != nil {
		render.Error(w, r, err)
		return
	}

	c, err := h.find(r)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	var in serializer.CategoryInput
	if err := serializer.Decode(r.Body, &in); err != nil {
		render.Error(w, r, err)
		return
	}
	if err := in.Validate(partial); err != nil {
		render.Error(w, r, err)
		return
	}

	in.Apply(c)
	if err := c.PrepareSave(h.opts.now()); err != nil {
		render.Error(w, r, err)
		return
	}
	if err := h.categories.Update(r.Context(), c); err != nil {
		render.Error(w, r, err)
		return
	}
	render.JSON(w, http.StatusOK, serializer.Category(c))
}

// Delete removes a category. Articles in it survive without the link.
func (h *Categories) Delete(w http.ResponseWriter, r *http.Request) {
	if err := policy.CanWriteCategory(identity.FromContext(r.Context())); err != nil {
		render.Error(w, r, err)
		return
	}

	c, err := h.find(r)
	if err != nil {
		render.Error(w, r, err)
		return
	}
	if err := h.categories.Delete(r.Context(), c.ID); err != nil {
		render.Error(w, r, err)
		return
	}
	render.NoContent(w)
}

// Articles lists the published articles in a category.
func (h *Categories) Articles(w http.ResponseWriter, r *http.Request) {
	c, err := h.find(r)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	q := store.ArticleQuery{
		Scope:      policy.PublishedOnly(),
		CategoryID: &c.ID,
		Ordering:   defaultArticleOrdering,
	}
	fetch := func(limit, offset int) ([]models.Article, int, error) {
		q.Limit, q.Offset = limit, offset
		return h.articles.List(r.Context(), q)
	}
	shaper := serializer.Shaper{Assets: h.assets, Base: h.opts.baseURL(r)}
	paginate(w, r, h.opts, fetch, shaper.List)
}

func (h *Categories) find(r *http.Request) (*models.Category, error) {
	c, err := h.categories.FindBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, apperr.NotFound("category")
	}
	return c, nil
}
