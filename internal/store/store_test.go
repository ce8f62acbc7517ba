// store_test.go provides a shared test database helper for all store
// integration tests. Tests are skipped if PostgreSQL is not available.
package store

import (
	"context"
	"database/sql"
	"os"
	"testing"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"inkwell/internal/database"
	"inkwell/internal/models"
)

// testDSN returns the PostgreSQL connection string for testing.
// Uses environment variables with defaults matching docker-compose.yml.
func testDSN() string {
	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "inkwell")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "inkwell")
	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test database and runs migrations.
// If the database is unavailable, the test is skipped.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("pgx", testDSN())
	if err != nil {
		t.Skipf("skipping integration test: cannot open DB: %v", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping integration test: DB not reachable: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	// Reset goose global state.
	goose.SetBaseFS(nil)

	t.Cleanup(func() { db.Close() })
	return db
}

// testUser creates a throwaway account removed when the test ends. Deleting
// it cascades to every article it authored.
func testUser(t *testing.T, db *sql.DB, staff bool) *models.User {
	t.Helper()
	s := NewUserStore(db)
	u, err := s.Create(context.Background(), NewUser{
		Username: "store-test-" + uuid.NewString()[:8],
		Password: "pass",
		IsStaff:  staff,
	})
	if err != nil {
		t.Fatalf("create test user: %v", err)
	}
	t.Cleanup(func() { s.Delete(context.Background(), u.ID) })
	return u
}

// testCategory creates a category removed when the test ends.
func testCategory(t *testing.T, db *sql.DB) *models.Category {
	t.Helper()
	s := NewCategoryStore(db)
	c := &models.Category{Name: "Store Test " + uuid.NewString()[:8]}
	if err := c.PrepareSave(testNow()); err != nil {
		t.Fatalf("prepare category: %v", err)
	}
	if err := s.Create(context.Background(), c); err != nil {
		t.Fatalf("create test category: %v", err)
	}
	t.Cleanup(func() { s.Delete(context.Background(), c.ID) })
	return c
}

// testArticle saves an article by author with the given status.
func testArticle(t *testing.T, db *sql.DB, author uuid.UUID, status models.ArticleStatus, categories ...uuid.UUID) *models.Article {
	t.Helper()
	a := &models.Article{
		Title:       "Store test " + uuid.NewString()[:8],
		Content:     "Some content here.",
		AuthorID:    author,
		Status:      status,
		CategoryIDs: categories,
	}
	if err := a.PrepareSave(testNow()); err != nil {
		t.Fatalf("prepare article: %v", err)
	}
	if err := NewArticleStore(db).Create(context.Background(), a); err != nil {
		t.Fatalf("create test article: %v", err)
	}
	return a
}

// cleanMediaByKey removes test media by object key. Call in t.Cleanup().
func cleanMediaByKey(t *testing.T, db *sql.DB, s3keys ...string) {
	t.Helper()
	for _, key := range s3keys {
		db.Exec("DELETE FROM media WHERE s3_key = $1", key)
	}
}
