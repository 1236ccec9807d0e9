// AngelaMos | 2026
// lesson_test.go

package lesson

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
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edustack/edustack-api/internal/core"
	"github.com/edustack/edustack-api/internal/testutil"
)

const (
	courseID   int64 = 7
	sectionID  int64 = 70
	ownerID    int64 = 10
	studentID  int64 = 20
	strangerID int64 = 21
)

type enrollmentSet map[int64]bool

func (e enrollmentSet) IsActivelyEnrolled(_ context.Context, student, course int64) (bool, error) {
	return course == courseID && e[student], nil
}

type memoryRepo struct {
	mu      sync.Mutex
	nextID  int64
	lessons map[int64]*Lesson
	draft   bool
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{lessons: map[int64]*Lesson{}}
}

func (m *memoryRepo) read(l *Lesson) Lesson {
	cp := *l
	cp.ParentsPublished = !m.draft
	return cp
}

func (m *memoryRepo) Create(_ context.Context, l *Lesson) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	l.ID = m.nextID
	l.IsPublished = true
	l.CreatedAt = time.Now()
	l.UpdatedAt = l.CreatedAt
	cp := *l
	m.lessons[l.ID] = &cp
	return nil
}

func (m *memoryRepo) GetByID(_ context.Context, id int64) (*Lesson, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.lessons[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	cp := m.read(l)
	return &cp, nil
}

func (m *memoryRepo) ListBySection(_ context.Context, section int64, publishedOnly bool) ([]Lesson, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []Lesson{}
	for _, l := range m.lessons {
		cp := m.read(l)
		if cp.SectionID == section && (cp.Live() || !publishedOnly) {
			out = append(out, cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrderIndex < out[j].OrderIndex })
	return out, nil
}

func (m *memoryRepo) Update(_ context.Context, l *Lesson) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *l
	m.lessons[l.ID] = &cp
	return nil
}

func (m *memoryRepo) SetPublished(_ context.Context, id int64, published bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lessons[id].IsPublished = published
	return nil
}

func (m *memoryRepo) SetPreview(_ context.Context, id int64, preview bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lessons[id].IsPreview = preview
	return nil
}

func (m *memoryRepo) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.lessons[id]; !ok {
		return core.ErrNotFound
	}
	delete(m.lessons, id)
	return nil
}

func (m *memoryRepo) PlaceSection(_ context.Context, id int64) (*Placement, error) {
	if id != sectionID {
		return nil, core.ErrNotFound
	}
	return &Placement{SectionID: sectionID, CourseID: courseID, InstructorID: ownerID}, nil
}

type fixture struct {
	repo   *memoryRepo
	svc    *Service
	router http.Handler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	repo := newMemoryRepo()
	svc := NewService(repo, enrollmentSet{studentID: true})
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Route("/courses", func(r chi.Router) { h.RegisterRoutes(r, testutil.Guards()) })

	return &fixture{repo: repo, svc: svc, router: r}
}

func instructor() core.Actor { return core.Actor{UserID: ownerID, Role: core.RoleInstructor} }

func (f *fixture) lesson(t *testing.T, title string, preview bool) *Lesson {
	t.Helper()
	video := "https://cdn.example.com/" + title + ".mp4"
	l, err := f.svc.Create(context.Background(), instructor(), sectionID, CreateLessonRequest{
		Title:           title,
		LessonType:      TypeVideo,
		VideoURL:        &video,
		FileURL:         &video,
		DurationMinutes: 10,
		IsPreview:       preview,
	})
	require.NoError(t, err)
	return l
}

func lessonPath(id int64) string {
	return "/courses/lessons/" + strconv.FormatInt(id, 10)
}

func TestAccessRule(t *testing.T) {
	f := newFixture(t)
	preview := f.lesson(t, "Welcome", true)
	locked := f.lesson(t, "Channels", false)

	cases := []struct {
		name   string
		token  string
		lesson int64
		want   int
	}{
		{"preview is public", "", preview.ID, http.StatusOK},
		{"anonymous locked", "", locked.ID, http.StatusUnauthorized},
		{"stranger locked", testutil.Token(strangerID, core.RoleStudent), locked.ID, http.StatusForbidden},
		{"enrolled student", testutil.Token(studentID, core.RoleStudent), locked.ID, http.StatusOK},
		{"course owner", testutil.Token(ownerID, core.RoleInstructor), locked.ID, http.StatusOK},
		{"admin", testutil.Token(1, core.RoleAdmin), locked.ID, http.StatusOK},
		{"other instructor", testutil.Token(99, core.RoleInstructor), locked.ID, http.StatusForbidden},
		{"missing", "", 999, http.StatusNotFound},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := testutil.Do(t, f.router, http.MethodGet, lessonPath(tc.lesson), tc.token, nil)
			assert.Equal(t, tc.want, rec.Code)
		})
	}
}

func TestUnpublishedLessonOnlyForOwner(t *testing.T) {
	f := newFixture(t)
	l := f.lesson(t, "Draft", true)

	_, err := f.svc.SetPublished(context.Background(), instructor(), l.ID, false)
	require.NoError(t, err)

	_, err = f.svc.Access(context.Background(), core.Actor{UserID: studentID, Role: core.RoleStudent}, l.ID)
	assert.ErrorIs(t, err, core.ErrNotFound)

	_, err = f.svc.Access(context.Background(), instructor(), l.ID)
	assert.NoError(t, err)

	listing, err := f.svc.ListBySection(context.Background(), core.Actor{}, sectionID)
	require.NoError(t, err)
	assert.Empty(t, listing.Lessons)

	listing, err = f.svc.ListBySection(context.Background(), instructor(), sectionID)
	require.NoError(t, err)
	assert.Len(t, listing.Lessons, 1)
}

func TestDraftCourseHidesPreviewLessons(t *testing.T) {
	f := newFixture(t)
	preview := f.lesson(t, "Welcome", true)
	f.repo.draft = true

	rec := testutil.Do(t, f.router, http.MethodGet, lessonPath(preview.ID), "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = testutil.Do(t, f.router, http.MethodGet, lessonPath(preview.ID),
		testutil.Token(studentID, core.RoleStudent), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = testutil.Do(t, f.router, http.MethodGet, "/courses/sections/70/lessons", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, testutil.Data[[]LessonResponse](t, rec))

	rec = testutil.Do(t, f.router, http.MethodGet, lessonPath(preview.ID),
		testutil.Token(ownerID, core.RoleInstructor), nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSectionListHidesLockedMedia(t *testing.T) {
	f := newFixture(t)
	preview := f.lesson(t, "Welcome", true)
	locked := f.lesson(t, "Paid", false)

	byID := func(t *testing.T, token string) map[int64]LessonResponse {
		t.Helper()
		rec := testutil.Do(t, f.router, http.MethodGet, "/courses/sections/70/lessons", token, nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		out := map[int64]LessonResponse{}
		for _, l := range testutil.Data[[]LessonResponse](t, rec) {
			out[l.ID] = l
		}
		require.Len(t, out, 2)
		return out
	}

	for _, token := range []string{"", testutil.Token(strangerID, core.RoleStudent)} {
		got := byID(t, token)
		assert.Nil(t, got[locked.ID].VideoURL)
		assert.Nil(t, got[locked.ID].FileURL)
		assert.NotNil(t, got[preview.ID].VideoURL)
	}

	for _, token := range []string{
		testutil.Token(studentID, core.RoleStudent),
		testutil.Token(ownerID, core.RoleInstructor),
		testutil.Token(1, core.RoleAdmin),
	} {
		got := byID(t, token)
		assert.NotNil(t, got[locked.ID].VideoURL)
		assert.NotNil(t, got[locked.ID].FileURL)
	}
}

func TestOwnerOnlyMutations(t *testing.T) {
	f := newFixture(t)
	l := f.lesson(t, "Select", false)
	other := testutil.Token(99, core.RoleInstructor)

	rec := testutil.Do(t, f.router, http.MethodPut, lessonPath(l.ID)+"/preview", other,
		map[string]any{"is_preview": true})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = testutil.Do(t, f.router, http.MethodPut, lessonPath(l.ID)+"/preview",
		testutil.Token(ownerID, core.RoleInstructor), map[string]any{"is_preview": true})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, testutil.Data[LessonResponse](t, rec).IsPreview)

	rec = testutil.Do(t, f.router, http.MethodPut, lessonPath(l.ID)+"/preview",
		testutil.Token(ownerID, core.RoleInstructor), map[string]any{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = testutil.Do(t, f.router, http.MethodPost, "/courses/sections/70/lessons", other,
		map[string]any{"title": "Sneaky", "lesson_type": "text"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = testutil.Do(t, f.router, http.MethodPost, "/courses/sections/70/lessons",
		testutil.Token(ownerID, core.RoleInstructor),
		map[string]any{"title": "Podcast", "lesson_type": "audio"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = testutil.Do(t, f.router, http.MethodDelete, lessonPath(l.ID),
		testutil.Token(ownerID, core.RoleInstructor), nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestUpdatePartial(t *testing.T) {
	f := newFixture(t)
	l := f.lesson(t, "Maps", false)
	minutes := 25

	updated, err := f.svc.Update(context.Background(), instructor(), l.ID, UpdateLessonRequest{
		DurationMinutes: &minutes,
	})
	require.NoError(t, err)
	assert.Equal(t, "Maps", updated.Title)
	assert.Equal(t, 25, updated.DurationMinutes)
}

func TestListOmitsContent(t *testing.T) {
	content := "secret notes"
	video := "https://cdn.example.com/paid.mp4"
	lessons := []Lesson{
		{ID: 1, Content: &content, VideoURL: &video, FileURL: &video},
		{ID: 2, Content: &content, VideoURL: &video, IsPreview: true},
	}

	resp := ToLessonResponseList(lessons, false)
	require.Len(t, resp, 2)
	assert.Nil(t, resp[0].Content)
	assert.Nil(t, resp[0].VideoURL)
	assert.Nil(t, resp[0].FileURL)
	assert.Nil(t, resp[1].Content)
	assert.Equal(t, &video, resp[1].VideoURL)

	resp = ToLessonResponseList(lessons, true)
	assert.Nil(t, resp[0].Content)
	assert.Equal(t, &video, resp[0].VideoURL)
	assert.Equal(t, &video, resp[0].FileURL)
}

func TestRepositoryGetByIDJoinsCourse(t *testing.T) {
	db, mock := testutil.MockDB(t)
	repo := NewRepository(db)
	now := time.Now()

	mock.ExpectQuery(`JOIN course_sections s ON s.id = l.section_id JOIN courses c ON c.id = s.course_id WHERE l.id = \$1`).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "section_id", "title", "description", "lesson_type", "content",
			"video_url", "file_url", "duration_minutes", "order_index",
			"is_published", "is_preview", "created_at", "updated_at",
			"course_id", "instructor_id", "parents_published",
		}).AddRow(3, sectionID, "Slices", nil, TypeText, "body", nil, nil, 12, 1,
			true, false, now, now, courseID, ownerID, false))

	l, err := repo.GetByID(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, courseID, l.CourseID)
	assert.Equal(t, ownerID, l.InstructorID)
	assert.False(t, l.Live())
}

func TestRepositoryExecNotFound(t *testing.T) {
	db, mock := testutil.MockDB(t)
	repo := NewRepository(db)

	mock.ExpectExec(`UPDATE lessons SET is_preview = \$2`).
		WithArgs(int64(3), true).
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, repo.SetPreview(context.Background(), 3, true), core.ErrNotFound)
}
