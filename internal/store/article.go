// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"inkwell/internal/apperr"
	"inkwell/internal/models"
	"inkwell/internal/policy"
)

// ArticleStore handles article persistence, including the category
// association and the view counter.
type ArticleStore struct {
	db *sql.DB
}

// NewArticleStore creates a new ArticleStore with the given database connection.
func NewArticleStore(db *sql.DB) *ArticleStore {
	return &ArticleStore{db: db}
}

// ArticleQuery selects and pages articles. Zero-valued filters are ignored.
type ArticleQuery struct {
	Scope         policy.Scope
	Status        models.ArticleStatus
	AuthorID      *uuid.UUID
	CategoryID    *uuid.UUID
	PublishedDate *time.Time
	PublishedDay  *time.Time // matches the calendar day in UTC
	Search        string
	Ordering      string // e.g. "-view_count,title"; empty uses the default
	Limit         int
	Offset        int
}

// articleOrderColumns are the fields clients may sort by.
var articleOrderColumns = map[string]string{
	"published_date": "a.published_date",
	"created_at":     "a.created_at",
	"view_count":     "a.view_count",
	"title":          "a.title",
}

var (
	defaultArticleOrder = []orderTerm{{column: "a.published_date", desc: true}}
	articleTieBreakers  = []orderTerm{{column: "a.created_at", desc: true}, {column: "a.id"}}
)

const articleColumns = `a.id, a.title, a.slug, a.excerpt, a.content,
	a.featured_image_id, a.og_image_id, a.author_id, a.status, a.published_date,
	a.created_at, a.updated_at, a.meta_title, a.meta_description, a.meta_keywords,
	a.og_title, a.og_description, a.view_count,
	u.id, u.username, u.email, u.first_name, u.last_name, u.is_staff, u.is_active,
	u.created_at, u.updated_at`

const articleFrom = ` FROM articles a JOIN users u ON u.id = a.author_id`

// scanArticle scans a row selected with articleColumns.
func scanArticle(scanner interface{ Scan(...any) error }) (*models.Article, error) {
	var a models.Article
	var u models.User
	err := scanner.Scan(
		&a.ID, &a.Title, &a.Slug, &a.Excerpt, &a.Content,
		&a.FeaturedImageID, &a.OGImageID, &a.AuthorID, &a.Status, &a.PublishedDate,
		&a.CreatedAt, &a.UpdatedAt, &a.MetaTitle, &a.MetaDescription, &a.MetaKeywords,
		&a.OGTitle, &a.OGDescription, &a.ViewCount,
		&u.ID, &u.Username, &u.Email, &u.FirstName, &u.LastName, &u.IsStaff, &u.IsActive,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	a.Author = &u
	return &a, nil
}

// applyScope restricts b to the rows scope admits.
func applyScope(b *sqlBuilder, scope policy.Scope) {
	switch {
	case scope.Unrestricted:
	case scope.OwnerID != uuid.Nil:
		b.and("(a.status = 'published' OR a.author_id = " + b.arg(scope.OwnerID) + ")")
	default:
		b.and("a.status = 'published'")
	}
}

func (q ArticleQuery) filters() *sqlBuilder {
	b := &sqlBuilder{}
	applyScope(b, q.Scope)
	if q.Status != "" {
		b.and("a.status = " + b.arg(q.Status))
	}
	if q.AuthorID != nil {
		b.and("a.author_id = " + b.arg(*q.AuthorID))
	}
	if q.CategoryID != nil {
		b.and("EXISTS (SELECT 1 FROM article_categories ac WHERE ac.article_id = a.id AND ac.category_id = " + b.arg(*q.CategoryID) + ")")
	}
	if q.PublishedDate != nil {
		b.and("a.published_date = " + b.arg(*q.PublishedDate))
	}
	if q.PublishedDay != nil {
		b.and("(a.published_date AT TIME ZONE 'UTC')::date = " + b.arg(q.PublishedDay.UTC().Format(time.DateOnly)) + "::date")
	}
	b.searchTerms(q.Search, "a.title", "a.excerpt", "a.content", "a.meta_keywords")
	return b
}

// List returns one page of articles matching q and the total number of
// matches across all pages.
func (s *ArticleStore) List(ctx context.Context, q ArticleQuery) ([]models.Article, int, error) {
	b := q.filters()

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM articles a`+b.whereSQL(), b.args...).Scan(&total); err != nil {
		return nil, 0, classify("count articles", err)
	}

	order := parseOrdering(q.Ordering, articleOrderColumns)
	if order == nil {
		order = defaultArticleOrder
	}

	query := `SELECT ` + articleColumns + articleFrom + b.whereSQL() +
		orderSQL(order, articleTieBreakers...) + b.limitSQL(q.Limit, q.Offset)

	rows, err := s.db.QueryContext(ctx, query, b.args...)
	if err != nil {
		return nil, 0, classify("list articles", err)
	}
	defer rows.Close()

	var items []models.Article
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, 0, classify("scan article", err)
		}
		items = append(items, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, classify("list articles", err)
	}

	if err := s.hydrate(ctx, items); err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// FindBySlug retrieves an article visible within scope. Returns nil if
// there is none.
func (s *ArticleStore) FindBySlug(ctx context.Context, slug string, scope policy.Scope) (*models.Article, error) {
	b := &sqlBuilder{}
	applyScope(b, scope)
	b.and("a.slug = " + b.arg(slug))
	return s.findOne(ctx, "find article by slug", b)
}

// FindByID retrieves an article regardless of status. Returns nil if not found.
func (s *ArticleStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Article, error) {
	b := &sqlBuilder{}
	b.and("a.id = " + b.arg(id))
	return s.findOne(ctx, "find article by id", b)
}

func (s *ArticleStore) findOne(ctx context.Context, op string, b *sqlBuilder) (*models.Article, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+articleColumns+articleFrom+b.whereSQL(), b.args...)
	a, err := scanArticle(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, classify(op, err)
	}

	items := []models.Article{*a}
	if err := s.hydrate(ctx, items); err != nil {
		return nil, err
	}
	return &items[0], nil
}

// hydrate loads categories and images for items in two batched queries.
func (s *ArticleStore) hydrate(ctx context.Context, items []models.Article) error {
	if len(items) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, len(items))
	var mediaIDs []uuid.UUID
	for i := range items {
		ids[i] = items[i].ID
		if items[i].FeaturedImageID != nil {
			mediaIDs = append(mediaIDs, *items[i].FeaturedImageID)
		}
		if items[i].OGImageID != nil {
			mediaIDs = append(mediaIDs, *items[i].OGImageID)
		}
	}

	cats, err := categoriesForArticles(ctx, s.db, ids)
	if err != nil {
		return err
	}

	media, err := findMediaByIDs(ctx, s.db, mediaIDs)
	if err != nil {
		return err
	}
	byID := make(map[uuid.UUID]*models.Media, len(media))
	for i := range media {
		byID[media[i].ID] = &media[i]
	}

	for i := range items {
		a := &items[i]
		a.Categories = cats[a.ID]
		a.CategoryIDs = make([]uuid.UUID, len(a.Categories))
		for j, c := range a.Categories {
			a.CategoryIDs[j] = c.ID
		}
		if a.FeaturedImageID != nil {
			a.FeaturedImage = byID[*a.FeaturedImageID]
		}
		if a.OGImageID != nil {
			a.OGImage = byID[*a.OGImageID]
		}
	}
	return nil
}

// Create inserts a and its category links in one transaction, filling in
// the generated id and timestamps.
func (s *ArticleStore) Create(ctx context.Context, a *models.Article) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return classify("create article: begin", err)
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx, `
		INSERT INTO articles (title, slug, excerpt, content, featured_image_id, og_image_id,
			author_id, status, published_date, meta_title, meta_description, meta_keywords,
			og_title, og_description)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id, view_count, created_at, updated_at
	`, a.Title, a.Slug, a.Excerpt, a.Content, a.FeaturedImageID, a.OGImageID,
		a.AuthorID, a.Status, a.PublishedDate, a.MetaTitle, a.MetaDescription, a.MetaKeywords,
		a.OGTitle, a.OGDescription,
	).Scan(&a.ID, &a.ViewCount, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return classify("create article", err)
	}

	if err := replaceCategories(ctx, tx, a.ID, a.CategoryIDs); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return classify("create article: commit", err)
	}
	return nil
}

// Update saves a and replaces its category links in one transaction. The
// author and view count are never written here.
func (s *ArticleStore) Update(ctx context.Context, a *models.Article) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return classify("update article: begin", err)
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx, `
		UPDATE articles SET
			title = $1, slug = $2, excerpt = $3, content = $4,
			featured_image_id = $5, og_image_id = $6, status = $7, published_date = $8,
			meta_title = $9, meta_description = $10, meta_keywords = $11,
			og_title = $12, og_description = $13, updated_at = NOW()
		WHERE id = $14
		RETURNING view_count, updated_at
	`, a.Title, a.Slug, a.Excerpt, a.Content,
		a.FeaturedImageID, a.OGImageID, a.Status, a.PublishedDate,
		a.MetaTitle, a.MetaDescription, a.MetaKeywords,
		a.OGTitle, a.OGDescription, a.ID,
	).Scan(&a.ViewCount, &a.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("update article: %w", apperr.NotFound("article"))
	}
	if err != nil {
		return classify("update article", err)
	}

	if err := replaceCategories(ctx, tx, a.ID, a.CategoryIDs); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return classify("update article: commit", err)
	}
	return nil
}

// replaceCategories makes ids the full set of categories linked to articleID.
func replaceCategories(ctx context.Context, tx *sql.Tx, articleID uuid.UUID, ids []uuid.UUID) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM article_categories WHERE article_id = $1`, articleID); err != nil {
		return classify("clear article categories", err)
	}
	if len(ids) == 0 {
		return nil
	}
	_, err := tx.ExecContext(ctx, `
		INSERT INTO article_categories (article_id, category_id)
		SELECT $1, unnest($2::uuid[])
		ON CONFLICT DO NOTHING
	`, articleID, uuidStrings(ids))
	if err != nil {
		return classify("link article categories", err)
	}
	return nil
}

// Delete removes an article. Its category links go with it; images stay.
func (s *ArticleStore) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM articles WHERE id = $1`, id)
	if err != nil {
		return classify("delete article", err)
	}
	return nil
}

// IncrementViewCount adds one to the article's view counter in a single
// statement and returns the new value. Concurrent calls never lose updates.
func (s *ArticleStore) IncrementViewCount(ctx context.Context, id uuid.UUID) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, `
		UPDATE articles SET view_count = view_count + 1 WHERE id = $1 RETURNING view_count
	`, id).Scan(&n)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("increment view count: %w", apperr.NotFound("article"))
	}
	if err != nil {
		return 0, classify("increment view count", err)
	}
	return n, nil
}
