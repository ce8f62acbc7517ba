// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package serializer

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"inkwell/internal/apperr"
	"inkwell/internal/models"
	"inkwell/internal/slug"
)

// Field messages shared by article and category validation.
const (
	msgRequired = "This field is required."
	msgBlank    = "This field may not be blank."
	msgSlug     = "Enter a valid slug consisting of letters, numbers, underscores or hyphens."
)

func msgMaxLen(n int) string {
	return fmt.Sprintf("Ensure this field has no more than %d characters.", n)
}

// Nullable distinguishes a field that was absent from one sent as null.
type Nullable[T any] struct {
	Set   bool
	Value *T
}

// UnmarshalJSON records that the field was present.
func (n *Nullable[T]) UnmarshalJSON(b []byte) error {
	n.Set = true
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		n.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	n.Value = &v
	return nil
}

// ArticleInput is the write shape of an article. Absent fields are nil and
// leave the stored value alone. The author is not part of it.
type ArticleInput struct {
	Title           *string               `json:"title"`
	Slug            *string               `json:"slug"`
	Excerpt         *string               `json:"excerpt"`
	Content         *string               `json:"content"`
	FeaturedImage   Nullable[uuid.UUID]   `json:"featured_image"`
	OGImage         Nullable[uuid.UUID]   `json:"og_image"`
	Categories      *[]uuid.UUID          `json:"categories"`
	Status          *models.ArticleStatus `json:"status"`
	PublishedDate   Nullable[time.Time]   `json:"published_date"`
	MetaTitle       *string               `json:"meta_title"`
	MetaDescription *string               `json:"meta_description"`
	MetaKeywords    *string               `json:"meta_keywords"`
	OGTitle         *string               `json:"og_title"`
	OGDescription   *string               `json:"og_description"`
}

// CategoryInput is the write shape of a category. The slug is derived and
// cannot be set by clients.
type CategoryInput struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

// Decode reads a JSON object from r into dst, reporting malformed bodies
// and mistyped fields as validation errors.
func Decode(r io.Reader, dst any) error {
	err := json.NewDecoder(r).Decode(dst)
	if err == nil {
		return nil
	}

	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.Is(err, io.EOF):
		return apperr.Invalid("detail", "Request body is empty.")
	case errors.As(err, &typeErr) && typeErr.Field != "":
		return apperr.Invalid(typeErr.Field, "Incorrect type. Expected "+typeErr.Type.String()+".")
	default:
		return apperr.Invalid("detail", "JSON parse error - "+err.Error())
	}
}

// Validate checks the input before it is applied. With partial unset the
// required fields must be present.
func (in *ArticleInput) Validate(partial bool) error {
	v := apperr.NewValidation()

	requiredText(v, "title", in.Title, partial, models.TitleMaxLen)
	requiredText(v, "content", in.Content, partial, 0)

	if in.Slug != nil {
		s := strings.TrimSpace(*in.Slug)
		switch {
		case utf8.RuneCountInString(s) > models.SlugMaxLen:
			v.Add("slug", msgMaxLen(models.SlugMaxLen))
		case s != "" && !slug.Valid(s):
			v.Add("slug", msgSlug)
		}
	}

	optionalText(v, "excerpt", in.Excerpt, models.ExcerptMaxLen)
	optionalText(v, "meta_title", in.MetaTitle, models.MetaTitleMaxLen)
	optionalText(v, "meta_description", in.MetaDescription, models.MetaDescriptionMaxLen)
	optionalText(v, "meta_keywords", in.MetaKeywords, models.MetaKeywordsMaxLen)
	optionalText(v, "og_title", in.OGTitle, models.OGTitleMaxLen)
	optionalText(v, "og_description", in.OGDescription, models.OGDescriptionMaxLen)

	if in.Status != nil && !in.Status.Valid() {
		v.Add("status", fmt.Sprintf("%q is not a valid choice.", string(*in.Status)))
	}

	return v.Err()
}

// Apply copies the present fields onto a, trimming surrounding whitespace
// from text.
func (in *ArticleInput) Apply(a *models.Article) {
	setText(&a.Title, in.Title)
	setText(&a.Slug, in.Slug)
	setText(&a.Excerpt, in.Excerpt)
	setText(&a.Content, in.Content)
	setText(&a.MetaTitle, in.MetaTitle)
	setText(&a.MetaDescription, in.MetaDescription)
	setText(&a.MetaKeywords, in.MetaKeywords)
	setText(&a.OGTitle, in.OGTitle)
	setText(&a.OGDescription, in.OGDescription)

	if in.FeaturedImage.Set {
		a.FeaturedImageID = in.FeaturedImage.Value
		a.FeaturedImage = nil
	}
	if in.OGImage.Set {
		a.OGImageID = in.OGImage.Value
		a.OGImage = nil
	}
	if in.Categories != nil {
		a.CategoryIDs = dedupe(*in.Categories)
		a.Categories = nil
	}
	if in.Status != nil {
		a.Status = *in.Status
	}
	if in.PublishedDate.Set {
		a.PublishedDate = in.PublishedDate.Value
	}
}

// ImageRefs returns the image ids the input points at.
func (in *ArticleInput) ImageRefs() map[string]uuid.UUID {
	refs := make(map[string]uuid.UUID, 2)
	if in.FeaturedImage.Value != nil {
		refs["featured_image"] = *in.FeaturedImage.Value
	}
	if in.OGImage.Value != nil {
		refs["og_image"] = *in.OGImage.Value
	}
	return refs
}

// Validate checks the input before it is applied.
func (in *CategoryInput) Validate(partial bool) error {
	v := apperr.NewValidation()
	requiredText(v, "name", in.Name, partial, models.CategoryNameMaxLen)
	return v.Err()
}

// Apply copies the present fields onto c.
func (in *CategoryInput) Apply(c *models.Category) {
	setText(&c.Name, in.Name)
	setText(&c.Description, in.Description)
}

func requiredText(v *apperr.ValidationError, field string, val *string, partial bool, limit int) {
	if val == nil {
		if !partial {
			v.Add(field, msgRequired)
		}
		return
	}
	s := strings.TrimSpace(*val)
	if s == "" {
		v.Add(field, msgBlank)
		return
	}
	if limit > 0 && utf8.RuneCountInString(s) > limit {
		v.Add(field, msgMaxLen(limit))
	}
}

func optionalText(v *apperr.ValidationError, field string, val *string, limit int) {
	if val != nil && utf8.RuneCountInString(strings.TrimSpace(*val)) > limit {
		v.Add(field, msgMaxLen(limit))
	}
}

func setText(dst *string, val *string) {
	if val != nil {
		*dst = strings.TrimSpace(*val)
	}
}

func dedupe(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
