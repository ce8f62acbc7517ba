package handlers

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"inkwell/internal/apperr"
	"inkwell/internal/models"
	"inkwell/internal/policy"
	"inkwell/internal/session"
	"inkwell/internal/store"
)

// memDB is the shared state behind the in-memory store fakes.
type memDB struct {
	mu         sync.Mutex
	clock      time.Time
	users      map[uuid.UUID]*models.User
	articles   map[uuid.UUID]*models.Article
	categories map[uuid.UUID]*models.Category
	media      map[uuid.UUID]*models.Media
}

func newMemDB() *memDB {
	return &memDB{
		clock:      time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
		users:      make(map[uuid.UUID]*models.User),
		articles:   make(map[uuid.UUID]*models.Article),
		categories: make(map[uuid.UUID]*models.Category),
		media:      make(map[uuid.UUID]*models.Media),
	}
}

// tick returns a strictly increasing timestamp. Callers hold mu.
func (db *memDB) tick() time.Time {
	db.clock = db.clock.Add(time.Second)
	return db.clock
}

// hydrate returns a copy of a with its relations loaded. Callers hold mu.
func (db *memDB) hydrate(a *models.Article) models.Article {
	cp := *a
	cp.CategoryIDs = append([]uuid.UUID(nil), a.CategoryIDs...)
	if u, ok := db.users[a.AuthorID]; ok {
		uc := *u
		cp.Author = &uc
	}
	cp.Categories = nil
	for _, id := range a.CategoryIDs {
		if c, ok := db.categories[id]; ok {
			cp.Categories = append(cp.Categories, db.category(c))
		}
	}
	cp.FeaturedImage, cp.OGImage = nil, nil
	if a.FeaturedImageID != nil {
		cp.FeaturedImage = db.media[*a.FeaturedImageID]
	}
	if a.OGImageID != nil {
		cp.OGImage = db.media[*a.OGImageID]
	}
	return cp
}

// category returns a copy of c with its published article count.
func (db *memDB) category(c *models.Category) models.Category {
	cp := *c
	cp.ArticleCount = 0
	for _, a := range db.articles {
		if a.Status == models.StatusPublished && a.HasCategory(c.ID) {
			cp.ArticleCount++
		}
	}
	return cp
}

// --- articles ---

type memArticles struct{ db *memDB }

func (s memArticles) List(_ context.Context, q store.ArticleQuery) ([]models.Article, int, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	var matched []models.Article
	for _, a := range s.db.articles {
		if !q.Scope.Allows(a) {
			continue
		}
		if q.Status != "" && a.Status != q.Status {
			continue
		}
		if q.AuthorID != nil && a.AuthorID != *q.AuthorID {
			continue
		}
		if q.CategoryID != nil && !a.HasCategory(*q.CategoryID) {
			continue
		}
		if q.PublishedDay != nil && (a.PublishedDate == nil ||
			a.PublishedDate.UTC().Format(time.DateOnly) != q.PublishedDay.Format(time.DateOnly)) {
			continue
		}
		if !matchesSearch(a, q.Search) {
			continue
		}
		matched = append(matched, s.db.hydrate(a))
	}

	sortArticles(matched, q.Ordering)

	total := len(matched)
	if q.Offset > len(matched) {
		matched = nil
	} else {
		matched = matched[q.Offset:]
	}
	if q.Limit > 0 && len(matched) > q.Limit {
		matched = matched[:q.Limit]
	}
	return matched, total, nil
}

func matchesSearch(a *models.Article, search string) bool {
	for _, term := range strings.Fields(strings.ToLower(search)) {
		hay := strings.ToLower(a.Title + "\x00" + a.Excerpt + "\x00" + a.Content + "\x00" + a.MetaKeywords)
		if !strings.Contains(hay, term) {
			return false
		}
	}
	return true
}

// sortArticles orders like the SQL store for the fields tests use:
// view_count, published_date (NULLs last) and created_at.
func sortArticles(items []models.Article, ordering string) {
	if ordering == "" {
		ordering = "-published_date"
	}
	terms := strings.Split(ordering, ",")
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		for _, term := range append(terms, "-created_at") {
			desc := strings.HasPrefix(term, "-")
			var c int
			switch strings.TrimPrefix(term, "-") {
			case "view_count":
				c = cmpInt(a.ViewCount, b.ViewCount)
			case "title":
				c = strings.Compare(a.Title, b.Title)
			case "created_at":
				c = a.CreatedAt.Compare(b.CreatedAt)
			case "published_date":
				switch {
				case a.PublishedDate == nil && b.PublishedDate == nil:
				case a.PublishedDate == nil:
					return false
				case b.PublishedDate == nil:
					return true
				default:
					c = a.PublishedDate.Compare(*b.PublishedDate)
				}
			}
			if c != 0 {
				return (c < 0) != desc
			}
		}
		return false
	})
}

func cmpInt(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func (s memArticles) FindBySlug(_ context.Context, slug string, scope policy.Scope) (*models.Article, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, a := range s.db.articles {
		if a.Slug == slug && scope.Allows(a) {
			cp := s.db.hydrate(a)
			return &cp, nil
		}
	}
	return nil, nil
}

func (s memArticles) FindByID(_ context.Context, id uuid.UUID) (*models.Article, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	a, ok := s.db.articles[id]
	if !ok {
		return nil, nil
	}
	cp := s.db.hydrate(a)
	return &cp, nil
}

func (s memArticles) slugTaken(slug string, except uuid.UUID) bool {
	for _, a := range s.db.articles {
		if a.Slug == slug && a.ID != except {
			return true
		}
	}
	return false
}

func (s memArticles) Create(_ context.Context, a *models.Article) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if s.slugTaken(a.Slug, uuid.Nil) {
		return &apperr.ConflictError{Field: "slug", Message: "article with this slug already exists."}
	}
	a.ID = uuid.New()
	a.CreatedAt = s.db.tick()
	a.UpdatedAt = a.CreatedAt
	cp := *a
	cp.Author, cp.Categories, cp.FeaturedImage, cp.OGImage = nil, nil, nil, nil
	s.db.articles[a.ID] = &cp
	return nil
}

func (s memArticles) Update(_ context.Context, a *models.Article) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	prev, ok := s.db.articles[a.ID]
	if !ok {
		return apperr.NotFound("article")
	}
	if s.slugTaken(a.Slug, a.ID) {
		return &apperr.ConflictError{Field: "slug", Message: "article with this slug already exists."}
	}
	cp := *a
	cp.AuthorID = prev.AuthorID
	cp.ViewCount = prev.ViewCount
	cp.CreatedAt = prev.CreatedAt
	cp.UpdatedAt = s.db.tick()
	cp.Author, cp.Categories, cp.FeaturedImage, cp.OGImage = nil, nil, nil, nil
	s.db.articles[a.ID] = &cp
	a.ViewCount, a.UpdatedAt = cp.ViewCount, cp.UpdatedAt
	return nil
}

func (s memArticles) Delete(_ context.Context, id uuid.UUID) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	delete(s.db.articles, id)
	return nil
}

func (s memArticles) IncrementViewCount(_ context.Context, id uuid.UUID) (int64, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	a, ok := s.db.articles[id]
	if !ok {
		return 0, apperr.NotFound("article")
	}
	a.ViewCount++
	return a.ViewCount, nil
}

// --- categories ---

type memCategories struct{ db *memDB }

func (s memCategories) List(_ context.Context, q store.CategoryQuery) ([]models.Category, int, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	var items []models.Category
	for _, c := range s.db.categories {
		hay := strings.ToLower(c.Name + "\x00" + c.Description)
		ok := true
		for _, term := range strings.Fields(strings.ToLower(q.Search)) {
			ok = ok && strings.Contains(hay, term)
		}
		if ok {
			items = append(items, s.db.category(c))
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Name < items[j].Name })

	total := len(items)
	if q.Offset > len(items) {
		items = nil
	} else {
		items = items[q.Offset:]
	}
	if q.Limit > 0 && len(items) > q.Limit {
		items = items[:q.Limit]
	}
	return items, total, nil
}

func (s memCategories) FindBySlug(_ context.Context, slug string) (*models.Category, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, c := range s.db.categories {
		if c.Slug == slug {
			cp := s.db.category(c)
			return &cp, nil
		}
	}
	return nil, nil
}

func (s memCategories) FindByIDs(_ context.Context, ids []uuid.UUID) ([]models.Category, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var out []models.Category
	for _, id := range ids {
		if c, ok := s.db.categories[id]; ok {
			out = append(out, s.db.category(c))
		}
	}
	return out, nil
}

func (s memCategories) conflict(c *models.Category) error {
	for _, other := range s.db.categories {
		if other.ID == c.ID {
			continue
		}
		if other.Name == c.Name {
			return &apperr.ConflictError{Field: "name", Message: "category with this name already exists."}
		}
		if other.Slug == c.Slug {
			return &apperr.ConflictError{Field: "slug", Message: "category with this slug already exists."}
		}
	}
	return nil
}

func (s memCategories) Create(_ context.Context, c *models.Category) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if err := s.conflict(c); err != nil {
		return err
	}
	c.ID = uuid.New()
	c.CreatedAt = s.db.tick()
	c.UpdatedAt = c.CreatedAt
	cp := *c
	s.db.categories[c.ID] = &cp
	return nil
}

func (s memCategories) Update(_ context.Context, c *models.Category) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, ok := s.db.categories[c.ID]; !ok {
		return apperr.NotFound("category")
	}
	if err := s.conflict(c); err != nil {
		return err
	}
	c.UpdatedAt = s.db.tick()
	cp := *c
	s.db.categories[c.ID] = &cp
	return nil
}

func (s memCategories) Delete(_ context.Context, id uuid.UUID) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	delete(s.db.categories, id)
	for _, a := range s.db.articles {
		kept := a.CategoryIDs[:0]
		for _, cid := range a.CategoryIDs {
			if cid != id {
				kept = append(kept, cid)
			}
		}
		a.CategoryIDs = kept
	}
	return nil
}

// --- media ---

type memMedia struct{ db *memDB }

func (s memMedia) Create(_ context.Context, m *models.Media) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	m.ID = uuid.New()
	m.CreatedAt = s.db.tick()
	cp := *m
	s.db.media[m.ID] = &cp
	return nil
}

func (s memMedia) FindByID(_ context.Context, id uuid.UUID) (*models.Media, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	m, ok := s.db.media[id]
	if !ok {
		return nil, nil
	}
	cp := *m
	return &cp, nil
}

func (s memMedia) FindByIDs(_ context.Context, ids []uuid.UUID) ([]models.Media, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var out []models.Media
	for _, id := range ids {
		if m, ok := s.db.media[id]; ok {
			out = append(out, *m)
		}
	}
	return out, nil
}

// Delete removes the record and nulls article references, like the
// ON DELETE SET NULL foreign keys.
func (s memMedia) Delete(_ context.Context, id uuid.UUID) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	delete(s.db.media, id)
	for _, a := range s.db.articles {
		if a.FeaturedImageID != nil && *a.FeaturedImageID == id {
			a.FeaturedImageID = nil
		}
		if a.OGImageID != nil && *a.OGImageID == id {
			a.OGImageID = nil
		}
	}
	return nil
}

// --- users ---

type memUsers struct {
	db        *memDB
	passwords map[uuid.UUID]string
}

func (s memUsers) FindByUsername(_ context.Context, username string) (*models.User, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, u := range s.db.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (s memUsers) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	u, ok := s.db.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (s memUsers) CheckPassword(u *models.User, password string) bool {
	return s.passwords[u.ID] == password
}

// --- assets ---

type memAssets struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
}

func newMemAssets() *memAssets {
	return &memAssets{objects: make(map[string][]byte), types: make(map[string]string)}
}

func (a *memAssets) FileURL(key string) string {
	return "https://cdn.example.test/" + key
}

func (a *memAssets) Upload(_ context.Context, key, contentType string, body io.Reader, _ int64) error {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, body); err != nil {
		return err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.objects[key] = buf.Bytes()
	a.types[key] = contentType
	return nil
}

func (a *memAssets) Delete(_ context.Context, key string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.objects, key)
	return nil
}

func (a *memAssets) has(key string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	_, ok := a.objects[key]
	return ok
}

// --- sessions ---

type memSessions struct {
	mu      sync.Mutex
	created []session.Data
	cleared int
}

func (s *memSessions) Create(_ context.Context, w http.ResponseWriter, data *session.Data) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.created = append(s.created, *data)
	http.SetCookie(w, &http.Cookie{Name: session.CookieName, Value: "sid", Path: "/"})
	return "sid", nil
}

func (s *memSessions) Destroy(_ context.Context, w http.ResponseWriter, _ *http.Request) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cleared++
	return nil
}
