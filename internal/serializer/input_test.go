package serializer

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inkwell/internal/apperr"
	"inkwell/internal/models"
)

func decodeArticle(t *testing.T, body string) *ArticleInput {
	t.Helper()
	var in ArticleInput
	require.NoError(t, Decode(strings.NewReader(body), &in))
	return &in
}

func fieldErrors(t *testing.T, err error) map[string][]string {
	t.Helper()
	var verr *apperr.ValidationError
	require.True(t, errors.As(err, &verr), "want ValidationError, got %v", err)
	return verr.Fields
}

func TestNullableDistinguishesAbsentFromNull(t *testing.T) {
	in := decodeArticle(t, `{"title": "x"}`)
	assert.False(t, in.FeaturedImage.Set)

	in = decodeArticle(t, `{"featured_image": null}`)
	assert.True(t, in.FeaturedImage.Set)
	assert.Nil(t, in.FeaturedImage.Value)

	id := uuid.New()
	in = decodeArticle(t, `{"featured_image": "`+id.String()+`"}`)
	assert.True(t, in.FeaturedImage.Set)
	require.NotNil(t, in.FeaturedImage.Value)
	assert.Equal(t, id, *in.FeaturedImage.Value)
}

func TestDecodeErrors(t *testing.T) {
	var in ArticleInput

	fields := fieldErrors(t, Decode(strings.NewReader(`{"title": 5}`), &in))
	assert.Contains(t, fields, "title")

	fields = fieldErrors(t, Decode(strings.NewReader(`{"title":`), &in))
	assert.Contains(t, fields, "detail")

	fields = fieldErrors(t, Decode(strings.NewReader(``), &in))
	assert.Contains(t, fields, "detail")
}

func TestArticleInputValidate(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		partial    bool
		wantFields []string
	}{
		{name: "minimal create", body: `{"title": "Hi", "content": "Body"}`},
		{name: "missing required on create", body: `{}`, wantFields: []string{"title", "content"}},
		{name: "missing required allowed when partial", body: `{}`, partial: true},
		{name: "blank title", body: `{"title": "   ", "content": "x"}`, wantFields: []string{"title"}},
		{name: "blank title when partial", body: `{"title": ""}`, partial: true, wantFields: []string{"title"}},
		{name: "title too long", body: `{"title": "` + strings.Repeat("a", 201) + `", "content": "x"}`, wantFields: []string{"title"}},
		{name: "bad slug", body: `{"title": "a", "content": "x", "slug": "no spaces"}`, wantFields: []string{"slug"}},
		{name: "blank slug allowed", body: `{"title": "a", "content": "x", "slug": ""}`},
		{name: "excerpt too long", body: `{"title": "a", "content": "x", "excerpt": "` + strings.Repeat("e", 501) + `"}`, wantFields: []string{"excerpt"}},
		{name: "meta title too long", body: `{"meta_title": "` + strings.Repeat("m", 61) + `"}`, partial: true, wantFields: []string{"meta_title"}},
		{name: "og title at limit", body: `{"og_title": "` + strings.Repeat("o", 95) + `"}`, partial: true},
		{name: "unknown status", body: `{"status": "deleted"}`, partial: true, wantFields: []string{"status"}},
		{name: "author is ignored", body: `{"author": "someone", "title": "a", "content": "x"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := decodeArticle(t, tt.body).Validate(tt.partial)
			if len(tt.wantFields) == 0 {
				assert.NoError(t, err)
				return
			}
			fields := fieldErrors(t, err)
			for _, f := range tt.wantFields {
				assert.Contains(t, fields, f)
			}
			assert.Len(t, fields, len(tt.wantFields))
		})
	}
}

func TestArticleInputApply(t *testing.T) {
	featured := uuid.New()
	cat := uuid.New()
	date := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	a := &models.Article{
		Title:           "Old",
		Content:         "Old body",
		MetaKeywords:    "kept",
		FeaturedImageID: &featured,
		Status:          models.StatusDraft,
	}

	in := decodeArticle(t, `{
		"title": "  New title  ",
		"featured_image": null,
		"categories": ["`+cat.String()+`", "`+cat.String()+`"],
		"status": "published",
		"published_date": "2026-01-02T03:04:05Z"
	}`)
	in.Apply(a)

	assert.Equal(t, "New title", a.Title)
	assert.Equal(t, "Old body", a.Content)
	assert.Equal(t, "kept", a.MetaKeywords)
	assert.Nil(t, a.FeaturedImageID)
	assert.Equal(t, []uuid.UUID{cat}, a.CategoryIDs)
	assert.Equal(t, models.StatusPublished, a.Status)
	require.NotNil(t, a.PublishedDate)
	assert.True(t, date.Equal(*a.PublishedDate))
}

func TestImageRefs(t *testing.T) {
	og := uuid.New()
	in := decodeArticle(t, `{"featured_image": null, "og_image": "`+og.String()+`"}`)
	assert.Equal(t, map[string]uuid.UUID{"og_image": og}, in.ImageRefs())
}

func TestCategoryInput(t *testing.T) {
	var in CategoryInput
	require.NoError(t, Decode(strings.NewReader(`{"name": " Go ", "slug": "ignored", "description": "All about Go"}`), &in))
	require.NoError(t, in.Validate(false))

	c := &models.Category{Slug: "existing"}
	in.Apply(c)
	assert.Equal(t, "Go", c.Name)
	assert.Equal(t, "existing", c.Slug)
	assert.Equal(t, "All about Go", c.Description)

	var empty CategoryInput
	assert.Contains(t, fieldErrors(t, empty.Validate(false)), "name")
	assert.NoError(t, empty.Validate(true))

	long := CategoryInput{Name: strp(strings.Repeat("n", 101))}
	assert.Contains(t, fieldErrors(t, long.Validate(true)), "name")
}
