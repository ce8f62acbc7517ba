// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"inkwell/internal/apperr"
	"inkwell/internal/slug"
)

// ArticleStatus represents the publishing state of an article.
type ArticleStatus string

const (
	StatusDraft     ArticleStatus = "draft"
	StatusPublished ArticleStatus = "published"
	StatusArchived  ArticleStatus = "archived"
)

// Valid reports whether s is one of the known statuses.
func (s ArticleStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusPublished, StatusArchived:
		return true
	}
	return false
}

// Column limits for articles, counted in characters.
const (
	TitleMaxLen           = 200
	SlugMaxLen            = 200
	ExcerptMaxLen         = 500
	MetaTitleMaxLen       = 60
	MetaDescriptionMaxLen = 160
	MetaKeywordsMaxLen    = 255
	OGTitleMaxLen         = 95
	OGDescriptionMaxLen   = 200
)

// WordsPerMinute is the reading speed behind ReadingTime.
const WordsPerMinute = 200

// Article is a piece of content with SEO and Open Graph metadata.
type Article struct {
	ID              uuid.UUID     `json:"id"`
	Title           string        `json:"title"`
	Slug            string        `json:"slug"`
	Excerpt         string        `json:"excerpt"`
	Content         string        `json:"content"`
	FeaturedImageID *uuid.UUID    `json:"featured_image_id"`
	OGImageID       *uuid.UUID    `json:"og_image_id"`
	AuthorID        uuid.UUID     `json:"author_id"`
	CategoryIDs     []uuid.UUID   `json:"category_ids"`
	Status          ArticleStatus `json:"status"`
	PublishedDate   *time.Time    `json:"published_date"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`

	MetaTitle       string `json:"meta_title"`
	MetaDescription string `json:"meta_description"`
	MetaKeywords    string `json:"meta_keywords"`
	OGTitle         string `json:"og_title"`
	OGDescription   string `json:"og_description"`

	ViewCount int64 `json:"view_count"`

	// Populated by store reads.
	Author        *User      `json:"-"`
	Categories    []Category `json:"-"`
	FeaturedImage *Media     `json:"-"`
	OGImage       *Media     `json:"-"`
}

// ArticleRule mutates an article in place before it is persisted. Rules
// see the output of the rules before them.
type ArticleRule func(a *Article, now time.Time)

// ArticleSaveRules run in this order on every article save.
var ArticleSaveRules = []ArticleRule{
	DeriveArticleSlug,
	SyncPublishedDate,
	DefaultMetaTitle,
	DefaultMetaDescription,
	DefaultOGTitle,
	DefaultOGDescription,
}

// ArticleSEORules is the metadata tail of ArticleSaveRules, replayed at
// read time to build the SEO bundle.
var ArticleSEORules = []ArticleRule{
	DefaultMetaTitle,
	DefaultMetaDescription,
	DefaultOGTitle,
	DefaultOGDescription,
}

// DeriveArticleSlug fills a blank slug from the title.
func DeriveArticleSlug(a *Article, _ time.Time) {
	if isBlank(a.Slug) {
		a.Slug = slug.GenerateN(a.Title, SlugMaxLen)
	}
}

// SyncPublishedDate stamps published articles that have no date and
// clears the date on anything else.
func SyncPublishedDate(a *Article, now time.Time) {
	if a.Status != StatusPublished {
		a.PublishedDate = nil
		return
	}
	if a.PublishedDate == nil {
		t := now
		a.PublishedDate = &t
	}
}

// DefaultMetaTitle falls back to the title.
func DefaultMetaTitle(a *Article, _ time.Time) {
	if isBlank(a.MetaTitle) {
		a.MetaTitle = truncate(a.Title, MetaTitleMaxLen)
	}
}

// DefaultMetaDescription falls back to the excerpt, if there is one.
func DefaultMetaDescription(a *Article, _ time.Time) {
	if isBlank(a.MetaDescription) && !isBlank(a.Excerpt) {
		a.MetaDescription = truncate(a.Excerpt, MetaDescriptionMaxLen)
	}
}

// DefaultOGTitle falls back to the meta title.
func DefaultOGTitle(a *Article, _ time.Time) {
	if isBlank(a.OGTitle) {
		a.OGTitle = truncate(a.MetaTitle, OGTitleMaxLen)
	}
}

// DefaultOGDescription falls back to the meta description.
func DefaultOGDescription(a *Article, _ time.Time) {
	if isBlank(a.OGDescription) {
		a.OGDescription = truncate(a.MetaDescription, OGDescriptionMaxLen)
	}
}

// PrepareSave applies ArticleSaveRules and checks that the result can be
// stored.
func (a *Article) PrepareSave(now time.Time) error {
	for _, rule := range ArticleSaveRules {
		rule(a, now)
	}
	if a.Slug == "" {
		return apperr.Invalid("slug", "Could not derive a slug from the title; use letters or digits.")
	}
	return nil
}

// WithSEODefaults returns a copy with the metadata fallbacks applied. The
// receiver is left untouched.
func (a *Article) WithSEODefaults() Article {
	cp := *a
	for _, rule := range ArticleSEORules {
		rule(&cp, time.Time{})
	}
	return cp
}

// IsPublished reports whether the article is live.
func (a *Article) IsPublished() bool {
	return a.Status == StatusPublished && a.PublishedDate != nil
}

// ReadingTime estimates minutes to read the content, never less than one.
// Halves round to even.
func (a *Article) ReadingTime() int {
	words := len(strings.Fields(a.Content))
	minutes := int(math.RoundToEven(float64(words) / WordsPerMinute))
	return max(1, minutes)
}

// SEOImage returns the Open Graph image, else the featured image, else nil.
func (a *Article) SEOImage() *Media {
	if a.OGImage != nil {
		return a.OGImage
	}
	return a.FeaturedImage
}

// HasCategory reports whether id is among the article's categories.
func (a *Article) HasCategory(id uuid.UUID) bool {
	for _, c := range a.CategoryIDs {
		if c == id {
			return true
		}
	}
	return false
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// truncate cuts s to at most n characters.
func truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
