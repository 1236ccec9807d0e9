// AngelaMos | 2026
// category_test.go

package category

import (
	"context"
	"net/http"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edustack/edustack-api/internal/core"
	"github.com/edustack/edustack-api/internal/testutil"
)

type memoryRepo struct {
	mu         sync.Mutex
	nextID     int64
	categories map[int64]*Category
	inUse      map[int64]bool
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{categories: map[int64]*Category{}, inUse: map[int64]bool{}}
}

func (m *memoryRepo) Create(_ context.Context, c *Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.categories {
		if existing.Name == c.Name {
			return core.ErrDuplicateKey
		}
	}
	m.nextID++
	c.ID = m.nextID
	c.IsActive = true
	c.CreatedAt = time.Now()
	cp := *c
	m.categories[c.ID] = &cp
	return nil
}

func (m *memoryRepo) GetByID(_ context.Context, id int64) (*Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.categories[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *memoryRepo) List(_ context.Context, params ListParams) ([]Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []Category{}
	for _, c := range m.categories {
		if params.ActiveOnly && !c.IsActive {
			continue
		}
		if params.ParentID != nil && (c.ParentID == nil || *c.ParentID != *params.ParentID) {
			continue
		}
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *memoryRepo) Update(_ context.Context, c *Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.categories[c.ID]; !ok {
		return core.ErrNotFound
	}
	cp := *c
	m.categories[c.ID] = &cp
	return nil
}

func (m *memoryRepo) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.categories[id]; !ok {
		return core.ErrNotFound
	}
	if m.inUse[id] {
		return core.ErrForeignKey
	}
	for _, c := range m.categories {
		if c.ParentID != nil && *c.ParentID == id {
			return core.ErrForeignKey
		}
	}
	delete(m.categories, id)
	return nil
}

func (m *memoryRepo) IsDescendant(_ context.Context, id, candidate int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for cur := m.categories[candidate]; cur != nil && cur.ParentID != nil; cur = m.categories[*cur.ParentID] {
		if *cur.ParentID == id {
			return true, nil
		}
	}
	return false, nil
}

func newRouter(svc *Service) http.Handler {
	h := NewHandler(svc)
	g := testutil.Guards()

	r := chi.NewRouter()
	r.Route("/courses", func(r chi.Router) { h.RegisterRoutes(r, g) })
	r.Route("/admin", func(r chi.Router) {
		r.Use(g.Authenticate, g.Admin)
		h.RegisterAdminRoutes(r)
	})
	return r
}

func ptr[T any](v T) *T { return &v }

func TestCreateValidatesParent(t *testing.T) {
	svc := NewService(newMemoryRepo())
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateCategoryRequest{Name: "Go", ParentID: ptr(int64(42))})
	assert.ErrorIs(t, err, ErrParentNotFound)

	parent, err := svc.Create(ctx, CreateCategoryRequest{Name: "Programming"})
	require.NoError(t, err)

	child, err := svc.Create(ctx, CreateCategoryRequest{Name: "Go", ParentID: &parent.ID})
	require.NoError(t, err)
	assert.Equal(t, parent.ID, *child.ParentID)
}

func TestUpdateRejectsSelfAndCycles(t *testing.T) {
	svc := NewService(newMemoryRepo())
	ctx := context.Background()

	root, err := svc.Create(ctx, CreateCategoryRequest{Name: "Root"})
	require.NoError(t, err)
	child, err := svc.Create(ctx, CreateCategoryRequest{Name: "Child", ParentID: &root.ID})
	require.NoError(t, err)
	grandchild, err := svc.Create(ctx, CreateCategoryRequest{Name: "Grandchild", ParentID: &child.ID})
	require.NoError(t, err)

	_, err = svc.Update(ctx, root.ID, UpdateCategoryRequest{ParentID: &root.ID})
	assert.ErrorIs(t, err, ErrSelfParent)

	_, err = svc.Update(ctx, root.ID, UpdateCategoryRequest{ParentID: &grandchild.ID})
	assert.ErrorIs(t, err, ErrParentCycle)

	detached, err := svc.Update(ctx, child.ID, UpdateCategoryRequest{ParentID: ptr(int64(0))})
	require.NoError(t, err)
	assert.Nil(t, detached.ParentID)
}

func TestDeleteInUse(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)
	ctx := context.Background()

	c, err := svc.Create(ctx, CreateCategoryRequest{Name: "Design"})
	require.NoError(t, err)
	repo.inUse[c.ID] = true

	assert.ErrorIs(t, svc.Delete(ctx, c.ID), ErrInUse)

	repo.inUse[c.ID] = false
	assert.NoError(t, svc.Delete(ctx, c.ID))
	assert.ErrorIs(t, svc.Delete(ctx, c.ID), core.ErrNotFound)
}

func TestPublicListHidesInactive(t *testing.T) {
	svc := NewService(newMemoryRepo())
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateCategoryRequest{Name: "Active"})
	require.NoError(t, err)
	hidden, err := svc.Create(ctx, CreateCategoryRequest{Name: "Hidden"})
	require.NoError(t, err)
	_, err = svc.Update(ctx, hidden.ID, UpdateCategoryRequest{IsActive: ptr(false)})
	require.NoError(t, err)

	router := newRouter(svc)

	rec := testutil.Do(t, router, http.MethodGet, "/courses/categories", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	public := testutil.Data[[]CategoryResponse](t, rec)
	require.Len(t, public, 1)
	assert.Equal(t, "Active", public[0].Name)

	rec = testutil.Do(t, router, http.MethodGet, "/admin/categories", testutil.Token(1, core.RoleAdmin), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, testutil.Data[[]CategoryResponse](t, rec), 2)
}

func TestHandlerAdminOnlyWrites(t *testing.T) {
	router := newRouter(NewService(newMemoryRepo()))
	body := map[string]any{"name": "Data"}

	rec := testutil.Do(t, router, http.MethodPost, "/courses/categories", "", body)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = testutil.Do(t, router, http.MethodPost, "/courses/categories",
		testutil.Token(2, core.RoleInstructor), body)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = testutil.Do(t, router, http.MethodPost, "/courses/categories",
		testutil.Token(1, core.RoleAdmin), body)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = testutil.Do(t, router, http.MethodPost, "/courses/categories",
		testutil.Token(1, core.RoleAdmin), body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "DUPLICATE", testutil.ErrorCode(t, rec))
}

func TestHandlerGetMissing(t *testing.T) {
	router := newRouter(NewService(newMemoryRepo()))

	rec := testutil.Do(t, router, http.MethodGet, "/courses/categories/9", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = testutil.Do(t, router, http.MethodGet, "/courses/categories/abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRepositoryListFilters(t *testing.T) {
	db, mock := testutil.MockDB(t)
	repo := NewRepository(db)

	mock.ExpectQuery(`FROM categories c WHERE c.is_active AND c.parent_id = \$1 ORDER BY c.name`).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "name", "description", "parent_id", "icon_url", "is_active",
			"created_at", "course_count",
		}).AddRow(4, "Go", nil, 3, nil, true, time.Now(), 2))

	categories, err := repo.List(context.Background(), ListParams{ParentID: ptr(int64(3)), ActiveOnly: true})
	require.NoError(t, err)
	require.Len(t, categories, 1)
	assert.Equal(t, 2, categories[0].CourseCount)
}

func TestRepositoryDeleteRestricted(t *testing.T) {
	db, mock := testutil.MockDB(t)
	repo := NewRepository(db)

	mock.ExpectExec(`DELETE FROM categories WHERE id = \$1`).
		WithArgs(int64(3)).
		WillReturnError(&pgconn.PgError{Code: "23503"})

	assert.ErrorIs(t, repo.Delete(context.Background(), 3), core.ErrForeignKey)
}
