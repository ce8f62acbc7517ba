// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package serializer turns models into response payloads and decodes
// client input into validated changes.
package serializer

import (
	"net/url"
	"time"

	"github.com/google/uuid"

	"inkwell/internal/models"
)

// AssetLocator resolves a stored object key to a servable URL.
type AssetLocator interface {
	FileURL(key string) string
}

// LocalMediaPrefix is the store-relative path used when no asset locator
// is configured.
const LocalMediaPrefix = "/media/"

// AuthorSummary is the public view of an article's author.
type AuthorSummary struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
}

// CategoryView is the flat category shape, used standalone and nested in
// articles.
type CategoryView struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Slug         string    `json:"slug"`
	Description  string    `json:"description"`
	ArticleCount int       `json:"article_count"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ArticleListItem is the compact article shape used by every list.
type ArticleListItem struct {
	ID               uuid.UUID            `json:"id"`
	Title            string               `json:"title"`
	Slug             string               `json:"slug"`
	Excerpt          string               `json:"excerpt"`
	FeaturedImageURL *string              `json:"featured_image_url"`
	Author           AuthorSummary        `json:"author"`
	Categories       []CategoryView       `json:"categories"`
	Status           models.ArticleStatus `json:"status"`
	PublishedDate    *time.Time           `json:"published_date"`
	ReadingTime      int                  `json:"reading_time"`
	ViewCount        int64                `json:"view_count"`
	CreatedAt        time.Time            `json:"created_at"`
}

// SEO is the consolidated metadata bundle of the detail shape.
type SEO struct {
	MetaTitle       string  `json:"meta_title"`
	MetaDescription string  `json:"meta_description"`
	MetaKeywords    string  `json:"meta_keywords"`
	OGTitle         string  `json:"og_title"`
	OGDescription   string  `json:"og_description"`
	OGImage         *string `json:"og_image"`
}

// ArticleDetail is the full article shape.
type ArticleDetail struct {
	ID               uuid.UUID            `json:"id"`
	Title            string               `json:"title"`
	Slug             string               `json:"slug"`
	Excerpt          string               `json:"excerpt"`
	Content          string               `json:"content"`
	FeaturedImageURL *string              `json:"featured_image_url"`
	OGImageURL       *string              `json:"og_image_url"`
	Author           AuthorSummary        `json:"author"`
	Categories       []CategoryView       `json:"categories"`
	Status           models.ArticleStatus `json:"status"`
	PublishedDate    *time.Time           `json:"published_date"`
	CreatedAt        time.Time            `json:"created_at"`
	UpdatedAt        time.Time            `json:"updated_at"`
	ReadingTime      int                  `json:"reading_time"`
	ViewCount        int64                `json:"view_count"`
	IsPublished      bool                 `json:"is_published"`
	SEO              SEO                  `json:"seo"`
}

// MediaView describes an uploaded image.
type MediaView struct {
	ID           uuid.UUID  `json:"id"`
	URL          *string    `json:"url"`
	Filename     string     `json:"filename"`
	OriginalName string     `json:"original_name"`
	ContentType  string     `json:"content_type"`
	SizeBytes    int64      `json:"size_bytes"`
	AltText      string     `json:"alt_text"`
	UploaderID   *uuid.UUID `json:"uploader_id"`
	CreatedAt    time.Time  `json:"created_at"`
}

// Shaper builds response payloads for one request. Base, when set, is the
// absolute URL relative asset paths are resolved against.
type Shaper struct {
	Assets AssetLocator
	Base   *url.URL
}

// ImageURL resolves m to a URL, or nil when there is no image.
func (s Shaper) ImageURL(m *models.Media) *string {
	if m == nil {
		return nil
	}

	var raw string
	if s.Assets != nil {
		raw = s.Assets.FileURL(m.S3Key)
	} else {
		raw = LocalMediaPrefix + m.S3Key
	}

	if s.Base != nil {
		if ref, err := url.Parse(raw); err == nil && !ref.IsAbs() {
			raw = s.Base.ResolveReference(ref).String()
		}
	}
	return &raw
}

// Author returns the summary of an article's author. Only the id is known
// when the author row was not loaded.
func Author(a *models.Article) AuthorSummary {
	u := a.Author
	if u == nil {
		return AuthorSummary{ID: a.AuthorID}
	}
	return AuthorSummary{
		ID:        u.ID,
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
	}
}

// Category returns the flat shape of c.
func Category(c *models.Category) CategoryView {
	return CategoryView{
		ID:           c.ID,
		Name:         c.Name,
		Slug:         c.Slug,
		Description:  c.Description,
		ArticleCount: c.ArticleCount,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}

// Categories returns the flat shapes of cs, never nil.
func Categories(cs []models.Category) []CategoryView {
	out := make([]CategoryView, 0, len(cs))
	for i := range cs {
		out = append(out, Category(&cs[i]))
	}
	return out
}

// ListItem returns the list shape of a.
func (s Shaper) ListItem(a *models.Article) ArticleListItem {
	return ArticleListItem{
		ID:               a.ID,
		Title:            a.Title,
		Slug:             a.Slug,
		Excerpt:          a.Excerpt,
		FeaturedImageURL: s.ImageURL(a.FeaturedImage),
		Author:           Author(a),
		Categories:       Categories(a.Categories),
		Status:           a.Status,
		PublishedDate:    a.PublishedDate,
		ReadingTime:      a.ReadingTime(),
		ViewCount:        a.ViewCount,
		CreatedAt:        a.CreatedAt,
	}
}

// List returns the list shapes of as, never nil.
func (s Shaper) List(as []models.Article) []ArticleListItem {
	out := make([]ArticleListItem, 0, len(as))
	for i := range as {
		out = append(out, s.ListItem(&as[i]))
	}
	return out
}

// Detail returns the detail shape of a. Blank metadata in the SEO bundle
// falls back exactly as it would on save.
func (s Shaper) Detail(a *models.Article) ArticleDetail {
	seo := a.WithSEODefaults()
	ogImage := s.ImageURL(a.SEOImage())

	return ArticleDetail{
		ID:               a.ID,
		Title:            a.Title,
		Slug:             a.Slug,
		Excerpt:          a.Excerpt,
		Content:          a.Content,
		FeaturedImageURL: s.ImageURL(a.FeaturedImage),
		OGImageURL:       ogImage,
		Author:           Author(a),
		Categories:       Categories(a.Categories),
		Status:           a.Status,
		PublishedDate:    a.PublishedDate,
		CreatedAt:        a.CreatedAt,
		UpdatedAt:        a.UpdatedAt,
		ReadingTime:      a.ReadingTime(),
		ViewCount:        a.ViewCount,
		IsPublished:      a.IsPublished(),
		SEO: SEO{
			MetaTitle:       seo.MetaTitle,
			MetaDescription: seo.MetaDescription,
			MetaKeywords:    seo.MetaKeywords,
			OGTitle:         seo.OGTitle,
			OGDescription:   seo.OGDescription,
			OGImage:         ogImage,
		},
	}
}

// Media returns the shape of an uploaded image.
func (s Shaper) Media(m *models.Media) MediaView {
	return MediaView{
		ID:           m.ID,
		URL:          s.ImageURL(m),
		Filename:     m.Filename,
		OriginalName: m.OriginalName,
		ContentType:  m.ContentType,
		SizeBytes:    m.SizeBytes,
		AltText:      m.AltText,
		UploaderID:   m.UploaderID,
		CreatedAt:    m.CreatedAt,
	}
}
