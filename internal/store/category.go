// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"inkwell/internal/apperr"
	"inkwell/internal/models"
)

// CategoryStore manages categories in the database.
type CategoryStore struct {
	db *sql.DB
}

// NewCategoryStore returns a new CategoryStore.
func NewCategoryStore(db *sql.DB) *CategoryStore {
	return &CategoryStore{db: db}
}

// CategoryQuery selects and pages categories.
type CategoryQuery struct {
	Search   string
	Ordering string // "name", "-created_at", ...; empty sorts by name
	Limit    int
	Offset   int
}

var categoryOrderColumns = map[string]string{
	"name":       "c.name",
	"created_at": "c.created_at",
}

// publishedCountSQL counts the published articles linked to c.
const publishedCountSQL = `(SELECT COUNT(*) FROM article_categories pc
	JOIN articles pa ON pa.id = pc.article_id
	WHERE pc.category_id = c.id AND pa.status = 'published')`

const categoryColumns = `c.id, c.name, c.slug, c.description, c.created_at, c.updated_at, ` + publishedCountSQL

// scanCategory scans a row selected with categoryColumns.
func scanCategory(scanner interface{ Scan(...any) error }) (*models.Category, error) {
	var c models.Category
	err := scanner.Scan(
		&c.ID, &c.Name, &c.Slug, &c.Description, &c.CreatedAt, &c.UpdatedAt,
		&c.ArticleCount,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// List returns one page of categories and the total number of matches.
func (s *CategoryStore) List(ctx context.Context, q CategoryQuery) ([]models.Category, int, error) {
	b := &sqlBuilder{}
	b.searchTerms(q.Search, "c.name", "c.description")

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM categories c`+b.whereSQL(), b.args...).Scan(&total); err != nil {
		return nil, 0, classify("count categories", err)
	}

	order := parseOrdering(q.Ordering, categoryOrderColumns)
	if order == nil {
		order = []orderTerm{{column: "c.name"}}
	}

	query := `SELECT ` + categoryColumns + ` FROM categories c` + b.whereSQL() +
		orderSQL(order, orderTerm{column: "c.id"}) + b.limitSQL(q.Limit, q.Offset)

	rows, err := s.db.QueryContext(ctx, query, b.args...)
	if err != nil {
		return nil, 0, classify("list categories", err)
	}
	defer rows.Close()

	var items []models.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, 0, classify("scan category", err)
		}
		items = append(items, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, classify("list categories", err)
	}
	return items, total, nil
}

// FindBySlug retrieves a category by slug. Returns nil if not found.
func (s *CategoryStore) FindBySlug(ctx context.Context, slug string) (*models.Category, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+categoryColumns+` FROM categories c WHERE c.slug = $1`, slug)
	c, err := scanCategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, classify("find category by slug", err)
	}
	return c, nil
}

// FindByIDs returns the categories among ids that exist, in name order.
func (s *CategoryStore) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Category, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+categoryColumns+` FROM categories c
		WHERE c.id = ANY($1::uuid[])
		ORDER BY c.name
	`, uuidStrings(ids))
	if err != nil {
		return nil, classify("find categories by id", err)
	}
	defer rows.Close()

	var items []models.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, classify("scan category", err)
		}
		items = append(items, *c)
	}
	return items, classify("find categories by id", rows.Err())
}

// Create inserts a category, filling in the generated id and timestamps.
func (s *CategoryStore) Create(ctx context.Context, c *models.Category) error {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO categories (name, slug, description)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`, c.Name, c.Slug, c.Description).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return classify("create category", err)
	}
	return nil
}

// Update saves the name and description of c.
func (s *CategoryStore) Update(ctx context.Context, c *models.Category) error {
	err := s.db.QueryRowContext(ctx, `
		UPDATE categories SET name = $1, slug = $2, description = $3, updated_at = NOW()
		WHERE id = $4
		RETURNING updated_at
	`, c.Name, c.Slug, c.Description, c.ID).Scan(&c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("update category: %w", apperr.NotFound("category"))
	}
	if err != nil {
		return classify("update category", err)
	}
	return nil
}

// Delete removes a category. Linked articles survive; only the links go.
func (s *CategoryStore) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return classify("delete category", err)
	}
	return nil
}

// categoriesForArticles returns the categories of each article, keyed by
// article id and sorted by name.
func categoriesForArticles(ctx context.Context, db *sql.DB, articleIDs []uuid.UUID) (map[uuid.UUID][]models.Category, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT ac.article_id, `+categoryColumns+`
		FROM article_categories ac
		JOIN categories c ON c.id = ac.category_id
		WHERE ac.article_id = ANY($1::uuid[])
		ORDER BY c.name
	`, uuidStrings(articleIDs))
	if err != nil {
		return nil, classify("load article categories", err)
	}
	defer rows.Close()

	out := make(map[uuid.UUID][]models.Category)
	for rows.Next() {
		var articleID uuid.UUID
		var c models.Category
		if err := rows.Scan(
			&articleID,
			&c.ID, &c.Name, &c.Slug, &c.Description, &c.CreatedAt, &c.UpdatedAt,
			&c.ArticleCount,
		); err != nil {
			return nil, classify("scan article category", err)
		}
		out[articleID] = append(out[articleID], c)
	}
	return out, classify("load article categories", rows.Err())
}
