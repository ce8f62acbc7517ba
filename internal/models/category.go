// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"

	"inkwell/internal/apperr"
	"inkwell/internal/slug"
)

// Column limits for categories.
const (
	CategoryNameMaxLen = 100
	CategorySlugMaxLen = 100
)

// Category groups articles. Categories are shared between all authors.
type Category struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Virtual field populated by store methods: published articles only.
	ArticleCount int `json:"article_count"`
}

// CategoryRule mutates a category in place before it is persisted.
type CategoryRule func(c *Category, now time.Time)

// CategorySaveRules run in order on every category save.
var CategorySaveRules = []CategoryRule{
	DeriveCategorySlug,
}

// DeriveCategorySlug fills a blank slug from the name. An existing slug is
// never re-derived, so renaming keeps the URL stable.
func DeriveCategorySlug(c *Category, _ time.Time) {
	if isBlank(c.Slug) {
		c.Slug = slug.GenerateN(c.Name, CategorySlugMaxLen)
	}
}

// PrepareSave applies CategorySaveRules and checks that the result can be
// stored.
func (c *Category) PrepareSave(now time.Time) error {
	for _, rule := range CategorySaveRules {
		rule(c, now)
	}
	if c.Slug == "" {
		return apperr.Invalid("slug", "Could not derive a slug from the name; use letters or digits.")
	}
	return nil
}
