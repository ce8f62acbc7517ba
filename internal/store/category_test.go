package store

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inkwell/internal/apperr"
	"inkwell/internal/models"
	"inkwell/internal/policy"
)

func TestCategoryStoreArticleCountIsPublishedOnly(t *testing.T) {
	db := testDB(t)
	s := NewCategoryStore(db)
	ctx := context.Background()
	author := testUser(t, db, false)
	cat := testCategory(t, db)

	testArticle(t, db, author.ID, models.StatusPublished, cat.ID)
	testArticle(t, db, author.ID, models.StatusPublished, cat.ID)
	testArticle(t, db, author.ID, models.StatusDraft, cat.ID)
	testArticle(t, db, author.ID, models.StatusArchived, cat.ID)

	found, err := s.FindBySlug(ctx, cat.Slug)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, 2, found.ArticleCount)
}

func TestCategoryStoreDeleteKeepsArticles(t *testing.T) {
	db := testDB(t)
	s := NewCategoryStore(db)
	as := NewArticleStore(db)
	ctx := context.Background()
	author := testUser(t, db, false)
	cat := testCategory(t, db)
	a := testArticle(t, db, author.ID, models.StatusPublished, cat.ID)

	require.NoError(t, s.Delete(ctx, cat.ID))

	found, err := as.FindBySlug(ctx, a.Slug, policy.PublishedOnly())
	require.NoError(t, err)
	require.NotNil(t, found, "article must survive category deletion")
	assert.Empty(t, found.Categories)
}

func TestCategoryStoreDuplicateName(t *testing.T) {
	db := testDB(t)
	s := NewCategoryStore(db)
	cat := testCategory(t, db)

	dup := &models.Category{Name: cat.Name, Slug: "other-" + uuid.NewString()[:8]}
	err := s.Create(context.Background(), dup)

	var conflict *apperr.ConflictError
	require.True(t, errors.As(err, &conflict), "got %v", err)
	assert.Equal(t, "name", conflict.Field)
}

func TestCategoryStoreListSearchAndOrder(t *testing.T) {
	db := testDB(t)
	s := NewCategoryStore(db)
	ctx := context.Background()

	marker := "zq" + uuid.NewString()[:6]
	for _, name := range []string{"B " + marker, "A " + marker} {
		c := &models.Category{Name: name}
		require.NoError(t, c.PrepareSave(testNow()))
		require.NoError(t, s.Create(ctx, c))
		t.Cleanup(func() { s.Delete(context.Background(), c.ID) })
	}

	items, total, err := s.List(ctx, CategoryQuery{Search: marker})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, items, 2)
	assert.Equal(t, "A "+marker, items[0].Name)

	items, _, err = s.List(ctx, CategoryQuery{Search: marker, Ordering: "-name"})
	require.NoError(t, err)
	assert.Equal(t, "B "+marker, items[0].Name)
}

func TestCategoryStoreUpdate(t *testing.T) {
	db := testDB(t)
	s := NewCategoryStore(db)
	ctx := context.Background()
	cat := testCategory(t, db)

	cat.Name = cat.Name + " renamed"
	cat.Description = "New description"
	require.NoError(t, s.Update(ctx, cat))

	found, err := s.FindBySlug(ctx, cat.Slug)
	require.NoError(t, err)
	assert.Equal(t, cat.Name, found.Name)
	assert.Equal(t, "New description", found.Description)

	ghost := &models.Category{ID: uuid.New(), Name: "ghost", Slug: "ghost-" + uuid.NewString()[:8]}
	assert.True(t, apperr.IsNotFound(s.Update(ctx, ghost)))
}

func TestCategoryStoreFindByIDs(t *testing.T) {
	db := testDB(t)
	s := NewCategoryStore(db)
	cat := testCategory(t, db)

	items, err := s.FindByIDs(context.Background(), []uuid.UUID{cat.ID, uuid.New()})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, cat.ID, items[0].ID)
}
