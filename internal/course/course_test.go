// AngelaMos | 2026
// course_test.go

package course

import (
	"context"
	"net/http"
	"sort"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edustack/edustack-api/internal/category"
	"github.com/edustack/edustack-api/internal/core"
	"github.com/edustack/edustack-api/internal/testutil"
)

const (
	ownerID    int64 = 10
	strangerID int64 = 11
	adminID    int64 = 1
)

type memoryCategories map[int64]*category.Category

func (m memoryCategories) GetByID(_ context.Context, id int64) (*category.Category, error) {
	c, ok := m[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	return c, nil
}

type memoryRepo struct {
	mu          sync.Mutex
	nextID      int64
	courses     map[int64]*Course
	sections    map[int64]*Section
	lessons     []LessonOutline
	hasPayments map[int64]bool
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		courses:     map[int64]*Course{},
		sections:    map[int64]*Section{},
		hasPayments: map[int64]bool{},
	}
}

func (m *memoryRepo) Create(_ context.Context, c *Course) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	c.ID = m.nextID
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt
	cp := *c
	m.courses[c.ID] = &cp
	return nil
}

func (m *memoryRepo) GetByID(_ context.Context, id int64) (*Course, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.courses[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *memoryRepo) List(_ context.Context, params ListCoursesParams) ([]Course, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []Course{}
	for _, c := range m.courses {
		if params.Published != nil && c.IsPublished != *params.Published {
			continue
		}
		if params.InstructorID != nil && c.InstructorID != *params.InstructorID {
			continue
		}
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, len(out), nil
}

func (m *memoryRepo) Update(_ context.Context, c *Course) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *c
	m.courses[c.ID] = &cp
	return nil
}

func (m *memoryRepo) SetPublished(_ context.Context, id int64, published bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.courses[id].IsPublished = published
	return nil
}

func (m *memoryRepo) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.hasPayments[id] {
		return core.ErrForeignKey
	}
	delete(m.courses, id)
	return nil
}

func (m *memoryRepo) TopCourses(context.Context, int) ([]TopCourse, error) {
	return []TopCourse{}, nil
}

func (m *memoryRepo) CreateSection(_ context.Context, s *Section) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	s.ID = m.nextID
	s.IsPublished = true
	cp := *s
	m.sections[s.ID] = &cp
	return nil
}

func (m *memoryRepo) GetSection(_ context.Context, id int64) (*SectionOwner, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sections[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	return &SectionOwner{Section: *s, InstructorID: m.courses[s.CourseID].InstructorID}, nil
}

func (m *memoryRepo) ListSections(_ context.Context, courseID int64, publishedOnly bool) ([]Section, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []Section{}
	for _, s := range m.sections {
		if s.CourseID == courseID && (s.IsPublished || !publishedOnly) {
			out = append(out, *s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrderIndex < out[j].OrderIndex })
	return out, nil
}

func (m *memoryRepo) UpdateSection(_ context.Context, s *Section) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *s
	m.sections[s.ID] = &cp
	return nil
}

func (m *memoryRepo) DeleteSection(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sections, id)
	return nil
}

func (m *memoryRepo) ListOutline(_ context.Context, courseID int64, publishedOnly bool) ([]LessonOutline, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []LessonOutline{}
	for _, l := range m.lessons {
		s := m.sections[l.SectionID]
		if s != nil && s.CourseID == courseID && (l.IsPublished || !publishedOnly) {
			out = append(out, l)
		}
	}
	return out, nil
}

type fixture struct {
	repo   *memoryRepo
	svc    *Service
	router http.Handler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	repo := newMemoryRepo()
	categories := memoryCategories{
		1: {ID: 1, Name: "Programming", IsActive: true},
		2: {ID: 2, Name: "Retired", IsActive: false},
	}
	svc := NewService(repo, categories)
	h := NewHandler(svc)
	g := testutil.Guards()

	r := chi.NewRouter()
	r.Route("/courses", func(r chi.Router) { h.RegisterRoutes(r, g) })
	r.Route("/admin", func(r chi.Router) {
		r.Use(g.Authenticate, g.Admin)
		h.RegisterAdminRoutes(r)
	})

	return &fixture{repo: repo, svc: svc, router: r}
}

func owner() core.Actor { return core.Actor{UserID: ownerID, Role: core.RoleInstructor} }

func (f *fixture) course(t *testing.T, price string) *Course {
	t.Helper()
	c, err := f.svc.Create(context.Background(), owner(), CreateCourseRequest{
		Title:      "Concurrency in Go",
		Price:      decimal.RequireFromString(price),
		CategoryID: 1,
	})
	require.NoError(t, err)
	return c
}

func TestCreateDefaultsAndValidation(t *testing.T) {
	f := newFixture(t)

	c := f.course(t, "49.99")
	assert.False(t, c.IsPublished)
	assert.Equal(t, ownerID, c.InstructorID)
	assert.Equal(t, DifficultyBeginner, c.DifficultyLevel)
	assert.Equal(t, "en", c.Language)
	assert.False(t, c.IsFree())

	_, err := f.svc.Create(context.Background(), owner(), CreateCourseRequest{
		Title: "x", Price: decimal.NewFromInt(-1), CategoryID: 1,
	})
	assert.ErrorIs(t, err, ErrNegativePrice)

	_, err = f.svc.Create(context.Background(), owner(), CreateCourseRequest{
		Title: "x", CategoryID: 2,
	})
	assert.ErrorIs(t, err, ErrCategoryNotFound)

	_, err = f.svc.Create(context.Background(), owner(), CreateCourseRequest{
		Title: "x", CategoryID: 99,
	})
	assert.ErrorIs(t, err, ErrCategoryNotFound)
}

func TestUnpublishedHiddenFromCatalogue(t *testing.T) {
	f := newFixture(t)
	c := f.course(t, "0")

	rec := testutil.Do(t, f.router, http.MethodGet, "/courses", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, testutil.Data[[]CourseResponse](t, rec))

	path := "/courses/" + itoa(c.ID)

	rec = testutil.Do(t, f.router, http.MethodGet, path, "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = testutil.Do(t, f.router, http.MethodGet, path, testutil.Token(strangerID, core.RoleStudent), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = testutil.Do(t, f.router, http.MethodGet, path, testutil.Token(ownerID, core.RoleInstructor), nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = testutil.Do(t, f.router, http.MethodPost, path+"/publish",
		testutil.Token(ownerID, core.RoleInstructor), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = testutil.Do(t, f.router, http.MethodGet, "/courses", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, testutil.Data[[]CourseResponse](t, rec), 1)
}

func TestOwnershipEnforced(t *testing.T) {
	f := newFixture(t)
	c := f.course(t, "10")
	path := "/courses/" + itoa(c.ID)

	rec := testutil.Do(t, f.router, http.MethodPut, path,
		testutil.Token(strangerID, core.RoleInstructor), map[string]any{"title": "Mine now"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = testutil.Do(t, f.router, http.MethodPut, path,
		testutil.Token(strangerID, core.RoleStudent), map[string]any{"title": "Mine now"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = testutil.Do(t, f.router, http.MethodPut, path,
		testutil.Token(adminID, core.RoleAdmin), map[string]any{"title": "Edited by admin"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Edited by admin", testutil.Data[CourseResponse](t, rec).Title)
}

func TestDeleteWithPayments(t *testing.T) {
	f := newFixture(t)
	c := f.course(t, "10")
	f.repo.hasPayments[c.ID] = true

	rec := testutil.Do(t, f.router, http.MethodDelete, "/courses/"+itoa(c.ID),
		testutil.Token(ownerID, core.RoleInstructor), nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "BUSINESS_RULE", testutil.ErrorCode(t, rec))

	f.repo.hasPayments[c.ID] = false
	rec = testutil.Do(t, f.router, http.MethodDelete, "/admin/courses/"+itoa(c.ID),
		testutil.Token(adminID, core.RoleAdmin), nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestDetailBuildsCurriculum(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.course(t, "0")

	intro, err := f.svc.CreateSection(ctx, owner(), c.ID, CreateSectionRequest{Title: "Intro", OrderIndex: 0})
	require.NoError(t, err)
	draft, err := f.svc.CreateSection(ctx, owner(), c.ID, CreateSectionRequest{Title: "Draft", OrderIndex: 1})
	require.NoError(t, err)
	_, err = f.svc.UpdateSection(ctx, owner(), draft.ID, UpdateSectionRequest{IsPublished: new(bool)})
	require.NoError(t, err)

	f.repo.lessons = []LessonOutline{
		{ID: 1, SectionID: intro.ID, Title: "Hello", DurationMinutes: 15, IsPublished: true, IsPreview: true},
		{ID: 2, SectionID: intro.ID, Title: "Goroutines", DurationMinutes: 30, IsPublished: true},
		{ID: 3, SectionID: intro.ID, Title: "Unfinished", DurationMinutes: 60},
	}
	_, err = f.svc.SetPublished(ctx, owner(), c.ID, true)
	require.NoError(t, err)

	public, err := f.svc.GetDetail(ctx, core.Actor{}, c.ID)
	require.NoError(t, err)
	require.Len(t, public.Sections, 1)
	assert.Len(t, public.Sections[0].Lessons, 2)
	assert.Equal(t, 45, public.TotalDurationMinutes)

	mine, err := f.svc.GetDetail(ctx, owner(), c.ID)
	require.NoError(t, err)
	require.Len(t, mine.Sections, 2)
	assert.Len(t, mine.Sections[0].Lessons, 3)
	assert.Equal(t, 45, mine.TotalDurationMinutes)

	resp := ToCourseDetailResponse(mine)
	assert.Equal(t, 3, resp.TotalLessons)
}

func TestSectionOwnership(t *testing.T) {
	f := newFixture(t)
	c := f.course(t, "0")

	rec := testutil.Do(t, f.router, http.MethodPost, "/courses/"+itoa(c.ID)+"/sections",
		testutil.Token(ownerID, core.RoleInstructor), map[string]any{"title": "Basics", "order_index": 1})
	require.Equal(t, http.StatusCreated, rec.Code)
	section := testutil.Data[SectionResponse](t, rec)

	rec = testutil.Do(t, f.router, http.MethodDelete, "/courses/sections/"+itoa(section.ID),
		testutil.Token(strangerID, core.RoleInstructor), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = testutil.Do(t, f.router, http.MethodPut, "/courses/sections/"+itoa(section.ID),
		testutil.Token(ownerID, core.RoleInstructor), map[string]any{"order_index": 4})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 4, testutil.Data[SectionResponse](t, rec).OrderIndex)
}

func TestMyCoursesRequiresInstructor(t *testing.T) {
	f := newFixture(t)
	f.course(t, "0")

	rec := testutil.Do(t, f.router, http.MethodGet, "/courses/my-courses",
		testutil.Token(strangerID, core.RoleStudent), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = testutil.Do(t, f.router, http.MethodGet, "/courses/my-courses",
		testutil.Token(ownerID, core.RoleInstructor), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, testutil.Data[[]CourseResponse](t, rec), 1)
}

func TestListRejectsUnknownDifficulty(t *testing.T) {
	f := newFixture(t)

	rec := testutil.Do(t, f.router, http.MethodGet, "/courses?difficulty=expert", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRepositoryListFilters(t *testing.T) {
	db, mock := testutil.MockDB(t)
	repo := NewRepository(db)
	published := true
	categoryID := int64(3)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM courses c WHERE \(c.title ILIKE \$1 OR c.description ILIKE \$1\) AND c.category_id = \$2 AND c.difficulty_level = \$3 AND c.is_published = \$4`).
		WithArgs("%go%", categoryID, DifficultyAdvanced, true).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	mock.ExpectQuery(`SELECT ROUND\(AVG\(r.rating\)::numeric, 2\)::float8 AS average_rating .+ LIMIT \$5 OFFSET \$6`).
		WithArgs("%go%", categoryID, DifficultyAdvanced, true, 20, 0).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "title", "description", "price", "instructor_id", "category_id",
			"thumbnail_url", "is_published", "difficulty_level", "duration_hours",
			"language", "created_at", "updated_at", "instructor_name", "category_name",
			"average_rating", "total_reviews", "total_students",
		}).AddRow(
			5, "Advanced Go", nil, "19.90", ownerID, categoryID,
			nil, true, DifficultyAdvanced, 12,
			"en", time.Now(), time.Now(), "Rob", "Programming",
			4.5, 2, 40,
		))

	courses, total, err := repo.List(context.Background(), ListCoursesParams{
		Search:     "go",
		CategoryID: &categoryID,
		Difficulty: DifficultyAdvanced,
		Published:  &published,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, courses, 1)
	assert.True(t, decimal.RequireFromString("19.90").Equal(courses[0].Price))
	assert.InDelta(t, 4.5, courses[0].AverageRating, 0.001)
	assert.Equal(t, 40, courses[0].TotalStudents)
}

func TestRepositoryTopCoursesRoundsRating(t *testing.T) {
	db, mock := testutil.MockDB(t)
	repo := NewRepository(db)

	mock.ExpectQuery(`SELECT ROUND\(AVG\(rv.rating\)::numeric, 2\)::float8 FROM reviews rv .+ LIMIT \$1`).
		WithArgs(5).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "title", "instructor_name", "price", "total_students", "average_rating",
		}).AddRow(5, "Advanced Go", "Rob", "19.90", 40, 4.67))

	courses, err := repo.TopCourses(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, courses, 1)
	assert.InDelta(t, 4.67, courses[0].AverageRating, 0.0001)
}

func TestRepositoryDeleteRestricted(t *testing.T) {
	db, mock := testutil.MockDB(t)
	repo := NewRepository(db)

	mock.ExpectExec(`DELETE FROM courses WHERE id = \$1`).
		WithArgs(int64(5)).
		WillReturnError(&pgconn.PgError{Code: "23503", ConstraintName: "payments_course_id_fkey"})

	assert.ErrorIs(t, repo.Delete(context.Background(), 5), core.ErrForeignKey)
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
