// AngelaMos | 2026
// review_test.go

package review

import (
	"context"
	"database/sql"
	"net/http"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edustack/edustack-api/internal/core"
	"github.com/edustack/edustack-api/internal/course"
	"github.com/edustack/edustack-api/internal/testutil"
)

type memoryCourses map[int64]*course.Course

func (m memoryCourses) GetByID(_ context.Context, id int64) (*course.Course, error) {
	c, ok := m[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	return c, nil
}

type enrolledSet map[[2]int64]bool

func (e enrolledSet) IsActivelyEnrolled(_ context.Context, studentID, courseID int64) (bool, error) {
	return e[[2]int64{studentID, courseID}], nil
}

func reviewRow(id, studentID int64, approved bool) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "student_id", "course_id", "rating", "comment", "is_approved",
		"created_at", "updated_at", "student_name", "course_title", "instructor_id",
	}).AddRow(id, studentID, 1, 4, "solid", approved, now, now, "Ada", "Go in Practice", 2)
}

type fixture struct {
	mock   sqlmock.Sqlmock
	svc    *Service
	router http.Handler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, mock := testutil.MockDB(t)
	svc := NewService(
		NewRepository(db),
		memoryCourses{1: {ID: 1, InstructorID: 2, IsPublished: true}},
		enrolledSet{{7, 1}: true},
	)
	h := NewHandler(svc)
	g := testutil.Guards()

	r := chi.NewRouter()
	r.Route("/reviews", func(r chi.Router) { h.RegisterRoutes(r, g) })
	r.Route("/admin", func(r chi.Router) {
		r.Use(g.Authenticate, g.Admin)
		h.RegisterAdminRoutes(r)
	})

	return &fixture{mock: mock, svc: svc, router: r}
}

func TestCreateStartsUnapproved(t *testing.T) {
	f := newFixture(t)

	f.mock.ExpectQuery(`INSERT INTO reviews`).
		WithArgs(int64(7), int64(1), 4, "solid").
		WillReturnRows(sqlmock.NewRows([]string{"id", "is_approved", "created_at", "updated_at"}).
			AddRow(3, false, time.Now(), time.Now()))
	f.mock.ExpectQuery(`WHERE r.id = \$1`).
		WithArgs(int64(3)).
		WillReturnRows(reviewRow(3, 7, false))

	rec := testutil.Do(t, f.router, http.MethodPost, "/reviews/",
		testutil.Token(7, core.RoleStudent),
		map[string]any{"course_id": 1, "rating": 4, "comment": "solid"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.False(t, testutil.Data[ReviewResponse](t, rec).IsApproved)
}

func TestCreateRejections(t *testing.T) {
	f := newFixture(t)

	rec := testutil.Do(t, f.router, http.MethodPost, "/reviews/",
		testutil.Token(8, core.RoleStudent), map[string]any{"course_id": 1, "rating": 5})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = testutil.Do(t, f.router, http.MethodPost, "/reviews/",
		testutil.Token(7, core.RoleStudent), map[string]any{"course_id": 1, "rating": 6})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = testutil.Do(t, f.router, http.MethodPost, "/reviews/",
		testutil.Token(7, core.RoleStudent), map[string]any{"course_id": 42, "rating": 3})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	f.mock.ExpectQuery(`INSERT INTO reviews`).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	rec = testutil.Do(t, f.router, http.MethodPost, "/reviews/",
		testutil.Token(7, core.RoleStudent), map[string]any{"course_id": 1, "rating": 3})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "you have already reviewed this course")
}

func TestUpdateResetsApproval(t *testing.T) {
	f := newFixture(t)

	f.mock.ExpectQuery(`WHERE r.id = \$1`).
		WithArgs(int64(3)).
		WillReturnRows(reviewRow(3, 7, true))
	f.mock.ExpectQuery(`UPDATE reviews SET rating = \$2, comment = \$3, is_approved = FALSE`).
		WithArgs(int64(3), 2, "solid").
		WillReturnRows(sqlmock.NewRows([]string{"is_approved", "updated_at"}).AddRow(false, time.Now()))

	rating := 2
	rv, err := f.svc.Update(context.Background(),
		core.Actor{UserID: 7, Role: core.RoleStudent}, 3, UpdateReviewRequest{Rating: &rating})
	require.NoError(t, err)
	assert.Equal(t, 2, rv.Rating)
	assert.False(t, rv.IsApproved)
}

func TestUpdateByOtherStudentForbidden(t *testing.T) {
	f := newFixture(t)

	f.mock.ExpectQuery(`WHERE r.id = \$1`).
		WillReturnRows(reviewRow(3, 7, true))

	rec := testutil.Do(t, f.router, http.MethodPut, "/reviews/3",
		testutil.Token(8, core.RoleStudent), map[string]any{"rating": 1})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestUnapprovedHiddenFromPublic(t *testing.T) {
	f := newFixture(t)

	f.mock.ExpectQuery(`WHERE r.id = \$1`).
		WillReturnRows(reviewRow(3, 7, false))

	rec := testutil.Do(t, f.router, http.MethodGet, "/reviews/3", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	f.mock.ExpectQuery(`WHERE r.id = \$1`).
		WillReturnRows(reviewRow(3, 7, false))

	rec = testutil.Do(t, f.router, http.MethodGet, "/reviews/3", testutil.Token(7, core.RoleStudent), nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCourseReviewsApprovedOnly(t *testing.T) {
	f := newFixture(t)

	f.mock.ExpectQuery(`SELECT COUNT\(\*\) FROM reviews r WHERE r.course_id = \$1 AND r.is_approved`).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	f.mock.ExpectQuery(`WHERE r.course_id = \$1 AND r.is_approved ORDER BY`).
		WithArgs(int64(1), core.DefaultPageSize, 0).
		WillReturnRows(reviewRow(3, 7, true))

	rec := testutil.Do(t, f.router, http.MethodGet, "/reviews/course/1", "", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Len(t, testutil.Data[[]ReviewResponse](t, rec), 1)
}

func TestStats(t *testing.T) {
	f := newFixture(t)

	f.mock.ExpectQuery(`FROM reviews WHERE course_id = \$1 AND is_approved`).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{
			"average_rating", "total_reviews", "rating_5", "rating_4", "rating_3", "rating_2", "rating_1",
		}).AddRow(4.5, 2, 1, 1, 0, 0, 0))

	rec := testutil.Do(t, f.router, http.MethodGet, "/reviews/course/1/stats", "", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	stats := testutil.Data[StatsResponse](t, rec)
	assert.InDelta(t, 4.5, stats.AverageRating, 0.001)
	assert.Equal(t, 1, stats.Distribution[5])
}

func TestCheckReviewWithoutReview(t *testing.T) {
	f := newFixture(t)

	f.mock.ExpectQuery(`WHERE r.student_id = \$1 AND r.course_id = \$2`).
		WithArgs(int64(7), int64(1)).
		WillReturnError(sql.ErrNoRows)

	rec := testutil.Do(t, f.router, http.MethodGet, "/reviews/course/1/check-review",
		testutil.Token(7, core.RoleStudent), nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := testutil.Data[CheckReviewResponse](t, rec)
	assert.False(t, resp.HasReviewed)
	assert.Nil(t, resp.Review)
}

func TestModeration(t *testing.T) {
	f := newFixture(t)
	admin := testutil.Token(100, core.RoleAdmin)

	rec := testutil.Do(t, f.router, http.MethodPost, "/reviews/3/approve",
		testutil.Token(7, core.RoleStudent), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	f.mock.ExpectExec(`UPDATE reviews SET is_approved = TRUE`).
		WithArgs(int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	f.mock.ExpectQuery(`WHERE r.id = \$1`).
		WillReturnRows(reviewRow(3, 7, true))

	rec = testutil.Do(t, f.router, http.MethodPost, "/admin/reviews/3/approve", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.True(t, testutil.Data[ReviewResponse](t, rec).IsApproved)

	f.mock.ExpectExec(`DELETE FROM reviews WHERE id = \$1`).
		WithArgs(int64(4)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	rec = testutil.Do(t, f.router, http.MethodPost, "/reviews/4/reject", admin, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	f.mock.ExpectExec(`DELETE FROM reviews WHERE id = \$1`).
		WithArgs(int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	rec = testutil.Do(t, f.router, http.MethodPost, "/admin/reviews/5/reject", admin, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
