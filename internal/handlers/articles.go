// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"inkwell/internal/apperr"
	"inkwell/internal/identity"
	"inkwell/internal/models"
	"inkwell/internal/policy"
	"inkwell/internal/render"
	"inkwell/internal/serializer"
	"inkwell/internal/store"
)

const (
	// featuredLimit is how many articles the featured action returns.
	featuredLimit = 5

	// defaultArticleOrdering is the model ordering used by the actions that
	// take no client ordering.
	defaultArticleOrdering = "-published_date,-created_at"
)

// Articles groups the article HTTP handlers and their dependencies.
type Articles struct {
	articles   ArticleStore
	categories CategoryStore
	media      MediaStore
	assets     serializer.AssetLocator
	opts       Options
}

// NewArticles creates the article handler group. assets may be nil when
// no asset storage is configured.
func NewArticles(articles ArticleStore, categories CategoryStore, media MediaStore, assets serializer.AssetLocator, opts Options) *Articles {
	return &Articles{
		articles:   articles,
		categories: categories,
		media:      media,
		assets:     assets,
		opts:       opts,
	}
}

func (h *Articles) shaper(r *http.Request) serializer.Shaper {
	return serializer.Shaper{Assets: h.assets, Base: h.opts.baseURL(r)}
}

// List serves the filtered, searchable, paginated article collection.
func (h *Articles) List(w http.ResponseWriter, r *http.Request) {
	q, err := articleFilters(r.URL.Query())
	if err != nil {
		render.Error(w, r, err)
		return
	}
	q.Scope = policy.ScopeFor(identity.FromContext(r.Context()))
	h.page(w, r, q)
}

// Published lists published articles regardless of the caller.
func (h *Articles) Published(w http.ResponseWriter, r *http.Request) {
	h.page(w, r, store.ArticleQuery{Scope: policy.PublishedOnly(), Ordering: defaultArticleOrdering})
}

// Featured returns the most viewed published articles as a plain array.
func (h *Articles) Featured(w http.ResponseWriter, r *http.Request) {
	items, _, err := h.articles.List(r.Context(), store.ArticleQuery{
		Scope:    policy.PublishedOnly(),
		Ordering: "-view_count",
		Limit:    featuredLimit,
	})
	if err != nil {
		render.Error(w, r, err)
		return
	}
	render.JSON(w, http.StatusOK, h.shaper(r).List(items))
}

// MyArticles lists the caller's own articles, drafts included.
func (h *Articles) MyArticles(w http.ResponseWriter, r *http.Request) {
	p := identity.FromContext(r.Context())
	if !p.IsAuthenticated() {
		render.Error(w, r, apperr.Unauthenticated())
		return
	}
	h.page(w, r, store.ArticleQuery{
		Scope:    policy.ScopeFor(p),
		AuthorID: &p.UserID,
		Ordering: defaultArticleOrdering,
	})
}

func (h *Articles) page(w http.ResponseWriter, r *http.Request, q store.ArticleQuery) {
	fetch := func(limit, offset int) ([]models.Article, int, error) {
		q.Limit, q.Offset = limit, offset
		return h.articles.List(r.Context(), q)
	}
	paginate(w, r, h.opts, fetch, h.shaper(r).List)
}

// Retrieve returns one article by slug. Reading a published article counts
// as a view.
func (h *Articles) Retrieve(w http.ResponseWriter, r *http.Request) {
	a, err := h.visible(r)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	if a.IsPublished() {
		n, err := h.articles.IncrementViewCount(r.Context(), a.ID)
		if err != nil {
			render.Error(w, r, err)
			return
		}
		a.ViewCount = n
	}

	render.JSON(w, http.StatusOK, h.shaper(r).Detail(a))
}

// Create stores a new article authored by the caller.
func (h *Articles) Create(w http.ResponseWriter, r *http.Request) {
	p := identity.FromContext(r.Context())
	if err := h.opts.Writes.CanCreate(p); err != nil {
		render.Error(w, r, err)
		return
	}

	var in serializer.ArticleInput
	if err := serializer.Decode(r.Body, &in); err != nil {
		render.Error(w, r, err)
		return
	}
	if err := in.Validate(false); err != nil {
		render.Error(w, r, err)
		return
	}

	a := &models.Article{AuthorID: p.UserID, Status: models.StatusDraft}
	in.Apply(a)

	if err := h.save(r.Context(), &in, a, h.articles.Create); err != nil {
		render.Error(w, r, err)
		return
	}
	h.respondSaved(w, r, http.StatusCreated, a.ID)
}

// Update replaces the writable fields of an article (PUT).
func (h *Articles) Update(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, false)
}

// PartialUpdate changes only the fields present in the body (PATCH).
func (h *Articles) PartialUpdate(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, true)
}

func (h *Articles) update(w http.ResponseWriter, r *http.Request, partial bool) {
	a, err := h.visible(r)
	if err != nil {
		render.Error(w, r, err)
		return
	}
	if err := h.opts.Writes.CanModify(identity.FromContext(r.Context()), a); err != nil {
		render.Error(w, r, err)
		return
	}

	var in serializer.ArticleInput
	if err := serializer.Decode(r.Body, &in); err != nil {
		render.Error(w, r, err)
		return
	}
	if err := in.Validate(partial); err != nil {
		render.Error(w, r, err)
		return
	}
	in.Apply(a)

	if err := h.save(r.Context(), &in, a, h.articles.Update); err != nil {
		render.Error(w, r, err)
		return
	}
	h.respondSaved(w, r, http.StatusOK, a.ID)
}

// Delete removes an article. Its images are left alone.
func (h *Articles) Delete(w http.ResponseWriter, r *http.Request) {
	a, err := h.visible(r)
	if err != nil {
		render.Error(w, r, err)
		return
	}
	if err := h.opts.Writes.CanModify(identity.FromContext(r.Context()), a); err != nil {
		render.Error(w, r, err)
		return
	}

	if err := h.articles.Delete(r.Context(), a.ID); err != nil {
		render.Error(w, r, err)
		return
	}
	render.NoContent(w)
}

// visible loads the article named in the URL through the caller's scope.
// Rows the caller may not see are reported exactly like missing ones.
func (h *Articles) visible(r *http.Request) (*models.Article, error) {
	scope := policy.ScopeFor(identity.FromContext(r.Context()))
	a, err := h.articles.FindBySlug(r.Context(), chi.URLParam(r, "slug"), scope)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, apperr.NotFound("article")
	}
	return a, nil
}

// save checks references, runs the save rules and persists a.
func (h *Articles) save(ctx context.Context, in *serializer.ArticleInput, a *models.Article, persist func(context.Context, *models.Article) error) error {
	if err := h.checkReferences(ctx, in, a); err != nil {
		return err
	}
	if err := a.PrepareSave(h.opts.now()); err != nil {
		return err
	}
	return persist(ctx, a)
}

// respondSaved reloads the article so the response carries its author,
// categories and images.
func (h *Articles) respondSaved(w http.ResponseWriter, r *http.Request, status int, id uuid.UUID) {
	saved, err := h.articles.FindByID(r.Context(), id)
	if err != nil {
		render.Error(w, r, err)
		return
	}
	if saved == nil {
		render.Error(w, r, apperr.NotFound("article"))
		return
	}
	render.JSON(w, status, h.shaper(r).Detail(saved))
}

// checkReferences reports categories and images that do not exist.
func (h *Articles) checkReferences(ctx context.Context, in *serializer.ArticleInput, a *models.Article) error {
	v := apperr.NewValidation()

	if in.Categories != nil && len(a.CategoryIDs) > 0 {
		found, err := h.categories.FindByIDs(ctx, a.CategoryIDs)
		if err != nil {
			return err
		}
		known := make(map[uuid.UUID]bool, len(found))
		for _, c := range found {
			known[c.ID] = true
		}
		for _, id := range a.CategoryIDs {
			if !known[id] {
				v.Add("categories", missingRef(id))
			}
		}
	}

	refs := in.ImageRefs()
	if len(refs) > 0 {
		ids := make([]uuid.UUID, 0, len(refs))
		for _, id := range refs {
			ids = append(ids, id)
		}
		found, err := h.media.FindByIDs(ctx, ids)
		if err != nil {
			return err
		}
		known := make(map[uuid.UUID]bool, len(found))
		for _, m := range found {
			known[m.ID] = true
		}
		for _, field := range []string{"featured_image", "og_image"} {
			if id, ok := refs[field]; ok && !known[id] {
				v.Add(field, missingRef(id))
			}
		}
	}

	return v.Err()
}

func missingRef(id uuid.UUID) string {
	return fmt.Sprintf("Invalid pk %q - object does not exist.", id.String())
}

// articleFilters reads the list filters from the query string.
func articleFilters(qs url.Values) (store.ArticleQuery, error) {
	q := store.ArticleQuery{
		Search:   strings.TrimSpace(qs.Get("search")),
		Ordering: qs.Get("ordering"),
	}
	v := apperr.NewValidation()

	if raw := qs.Get("status"); raw != "" {
		status := models.ArticleStatus(raw)
		if !status.Valid() {
			v.Add("status", fmt.Sprintf("Select a valid choice. %s is not one of the available choices.", raw))
		}
		q.Status = status
	}

	if raw := qs.Get("author"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			v.Add("author", fmt.Sprintf("%q is not a valid UUID.", raw))
		} else {
			q.AuthorID = &id
		}
	}

	for _, key := range []string{"categories", "category"} {
		raw := qs.Get(key)
		if raw == "" {
			continue
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			v.Add(key, fmt.Sprintf("%q is not a valid UUID.", raw))
			continue
		}
		q.CategoryID = &id
		break
	}

	if raw := qs.Get("published_date"); raw != "" {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			q.PublishedDate = &t
		} else if d, err := time.Parse(time.DateOnly, raw); err == nil {
			q.PublishedDay = &d
		} else {
			v.Add("published_date", "Enter a valid date/time.")
		}
	}

	return q, v.Err()
}
