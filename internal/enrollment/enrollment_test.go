// AngelaMos | 2026
// enrollment_test.go

package enrollment

import (
	"context"
	"net/http"
	"net/mail"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
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

type recordingNotifier struct {
	sent []mail.Address
}

func (n *recordingNotifier) SendEnrollmentConfirmation(
	_ context.Context,
	to mail.Address,
	_ int64,
	_ string,
) error {
	n.sent = append(n.sent, to)
	return nil
}

func enrollmentColumns() []string {
	return []string{
		"id", "student_id", "course_id", "enrollment_date", "progress_percentage",
		"completion_date", "is_active", "payment_status", "student_name",
		"student_email", "course_title", "course_thumbnail", "instructor_id",
	}
}

func enrollmentRow(id, studentID, courseID int64, payment string) *sqlmock.Rows {
	return sqlmock.NewRows(enrollmentColumns()).AddRow(
		id, studentID, courseID, time.Now(), "0",
		nil, true, payment, "Ada",
		"ada@example.com", "Go in Practice", nil, 2,
	)
}

type fixture struct {
	mock     sqlmock.Sqlmock
	svc      *Service
	notifier *recordingNotifier
	router   http.Handler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, mock := testutil.MockDB(t)
	courses := memoryCourses{
		1: {ID: 1, Title: "Go in Practice", InstructorID: 2, IsPublished: true},
		2: {ID: 2, Title: "Paid", InstructorID: 2, IsPublished: true, Price: decimal.RequireFromString("19.99")},
		3: {ID: 3, Title: "Draft", InstructorID: 2},
	}
	notifier := &recordingNotifier{}
	svc := NewService(db, NewRepository(db), courses, notifier, nil)

	r := chi.NewRouter()
	r.Route("/enrollments", func(r chi.Router) {
		NewHandler(svc).RegisterRoutes(r, testutil.Guards())
	})

	return &fixture{mock: mock, svc: svc, notifier: notifier, router: r}
}

func TestPercentage(t *testing.T) {
	tests := []struct {
		completed, total int
		want             string
	}{
		{0, 0, "0"},
		{3, 0, "0"},
		{0, 5, "0"},
		{1, 3, "33.33"},
		{2, 3, "66.67"},
		{5, 5, "100"},
		{7, 5, "100"},
	}

	for _, tt := range tests {
		got := Percentage(tt.completed, tt.total)
		assert.True(t, got.Equal(decimal.RequireFromString(tt.want)),
			"Percentage(%d, %d) = %s, want %s", tt.completed, tt.total, got, tt.want)
	}
}

func TestEnrollFreeCourseSettlesPayment(t *testing.T) {
	f := newFixture(t)

	f.mock.ExpectQuery(`INSERT INTO enrollments`).
		WithArgs(int64(7), int64(1), PaymentCompleted).
		WillReturnRows(sqlmock.NewRows(
			[]string{"id", "enrollment_date", "progress_percentage", "is_active"},
		).AddRow(5, time.Now(), "0", true))
	f.mock.ExpectQuery(`WHERE e.id = \$1`).
		WithArgs(int64(5)).
		WillReturnRows(enrollmentRow(5, 7, 1, PaymentCompleted))

	rec := testutil.Do(t, f.router, http.MethodPost, "/enrollments/",
		testutil.Token(7, core.RoleStudent), map[string]any{"course_id": 1})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	e := testutil.Data[EnrollmentResponse](t, rec)
	assert.Equal(t, PaymentCompleted, e.PaymentStatus)
	require.Len(t, f.notifier.sent, 1)
	assert.Equal(t, "ada@example.com", f.notifier.sent[0].Address)
}

func TestEnrollPaidCourseIsPending(t *testing.T) {
	f := newFixture(t)

	f.mock.ExpectQuery(`INSERT INTO enrollments`).
		WithArgs(int64(7), int64(2), PaymentPending).
		WillReturnRows(sqlmock.NewRows(
			[]string{"id", "enrollment_date", "progress_percentage", "is_active"},
		).AddRow(6, time.Now(), "0", true))
	f.mock.ExpectQuery(`WHERE e.id = \$1`).
		WillReturnRows(enrollmentRow(6, 7, 2, PaymentPending))

	e, err := f.svc.Enroll(context.Background(), core.Actor{UserID: 7, Role: core.RoleStudent}, 2)
	require.NoError(t, err)
	assert.Equal(t, PaymentPending, e.PaymentStatus)
}

func TestEnrollRejections(t *testing.T) {
	f := newFixture(t)
	student := testutil.Token(7, core.RoleStudent)

	rec := testutil.Do(t, f.router, http.MethodPost, "/enrollments/", student,
		map[string]any{"course_id": 3})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = testutil.Do(t, f.router, http.MethodPost, "/enrollments/", student,
		map[string]any{"course_id": 99})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = testutil.Do(t, f.router, http.MethodPost, "/enrollments/",
		testutil.Token(2, core.RoleInstructor), map[string]any{"course_id": 1})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "BUSINESS_RULE", testutil.ErrorCode(t, rec))

	f.mock.ExpectQuery(`INSERT INTO enrollments`).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	rec = testutil.Do(t, f.router, http.MethodPost, "/enrollments/", student,
		map[string]any{"course_id": 1})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "already enrolled in this course")
	assert.Empty(t, f.notifier.sent)
}

func TestUpdateProgressRecomputesInTransaction(t *testing.T) {
	f := newFixture(t)

	f.mock.ExpectBegin()
	f.mock.ExpectQuery(`FROM lessons l JOIN course_sections s ON s.id = l.section_id WHERE l.id = \$1`).
		WithArgs(int64(10)).
		WillReturnRows(sqlmock.NewRows([]string{"lesson_id", "course_id", "is_published"}).
			AddRow(10, 1, true))
	f.mock.ExpectQuery(`WHERE e.student_id = \$1 AND e.course_id = \$2`).
		WithArgs(int64(7), int64(1)).
		WillReturnRows(enrollmentRow(5, 7, 1, PaymentCompleted))
	f.mock.ExpectQuery(`INSERT INTO lesson_progress`).
		WithArgs(int64(7), int64(10), true, nil, nil).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "student_id", "lesson_id", "is_completed", "completion_date",
			"time_spent_minutes", "last_position_seconds", "created_at", "updated_at",
		}).AddRow(1, 7, 10, true, time.Now(), 0, 0, time.Now(), time.Now()))
	f.mock.ExpectQuery(`COUNT\(\*\) FILTER`).
		WithArgs(int64(7), int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"completed", "total"}).AddRow(2, 2))
	f.mock.ExpectExec(`UPDATE enrollments SET progress_percentage = \$2, completion_date = \$3`).
		WithArgs(int64(5), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	f.mock.ExpectCommit()

	rec := testutil.Do(t, f.router, http.MethodPut, "/enrollments/lessons/progress",
		testutil.Token(7, core.RoleStudent),
		map[string]any{"lesson_id": 10, "is_completed": true})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := testutil.Data[ProgressUpdateResponse](t, rec)
	assert.True(t, resp.ProgressPercentage.Equal(decimal.NewFromInt(100)))
	assert.Equal(t, 2, resp.CompletedLessons)
	assert.True(t, resp.Lesson.IsCompleted)
}

func TestUpdateProgressRequiresEnrollment(t *testing.T) {
	f := newFixture(t)

	f.mock.ExpectBegin()
	f.mock.ExpectQuery(`WHERE l.id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"lesson_id", "course_id", "is_published"}).
			AddRow(10, 1, true))
	f.mock.ExpectQuery(`WHERE e.student_id = \$1 AND e.course_id = \$2`).
		WillReturnRows(sqlmock.NewRows(enrollmentColumns()))
	f.mock.ExpectRollback()

	rec := testutil.Do(t, f.router, http.MethodPut, "/enrollments/lessons/progress",
		testutil.Token(8, core.RoleStudent),
		map[string]any{"lesson_id": 10, "time_spent_minutes": 4})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestUpdateProgressValidation(t *testing.T) {
	f := newFixture(t)

	rec := testutil.Do(t, f.router, http.MethodPut, "/enrollments/lessons/progress",
		testutil.Token(7, core.RoleStudent),
		map[string]any{"lesson_id": 10, "last_position_seconds": -5})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = testutil.Do(t, f.router, http.MethodPut, "/enrollments/lessons/progress", "",
		map[string]any{"lesson_id": 10})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUnenrollDeletesProgress(t *testing.T) {
	f := newFixture(t)

	f.mock.ExpectBegin()
	f.mock.ExpectQuery(`WHERE e.student_id = \$1 AND e.course_id = \$2`).
		WithArgs(int64(7), int64(1)).
		WillReturnRows(enrollmentRow(5, 7, 1, PaymentCompleted))
	f.mock.ExpectExec(`DELETE FROM lesson_progress`).
		WithArgs(int64(7), int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 3))
	f.mock.ExpectExec(`DELETE FROM enrollments WHERE id = \$1`).
		WithArgs(int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	f.mock.ExpectCommit()

	rec := testutil.Do(t, f.router, http.MethodDelete, "/enrollments/course/1",
		testutil.Token(7, core.RoleStudent), nil)
	assert.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())
}

func TestCheckEnrollment(t *testing.T) {
	f := newFixture(t)

	f.mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs(int64(7), int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	rec := testutil.Do(t, f.router, http.MethodGet, "/enrollments/course/1/check-enrollment",
		testutil.Token(7, core.RoleStudent), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, testutil.Data[CheckEnrollmentResponse](t, rec).IsEnrolled)
}

func TestStudentsRequiresOwner(t *testing.T) {
	f := newFixture(t)

	rec := testutil.Do(t, f.router, http.MethodGet, "/enrollments/course/1/students",
		testutil.Token(9, core.RoleInstructor), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	f.mock.ExpectQuery(`SELECT COUNT\(\*\) FROM enrollments WHERE course_id = \$1`).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	f.mock.ExpectQuery(`WHERE e.course_id = \$1`).
		WithArgs(int64(1), core.DefaultPageSize, 0).
		WillReturnRows(enrollmentRow(5, 7, 1, PaymentCompleted))

	rec = testutil.Do(t, f.router, http.MethodGet, "/enrollments/course/1/students",
		testutil.Token(2, core.RoleInstructor), nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Len(t, testutil.Data[[]EnrollmentResponse](t, rec), 1)
}

func TestGetHidesOtherStudents(t *testing.T) {
	f := newFixture(t)

	f.mock.ExpectQuery(`WHERE e.id = \$1`).
		WithArgs(int64(5)).
		WillReturnRows(enrollmentRow(5, 7, 1, PaymentCompleted))

	_, err := f.svc.Get(context.Background(), core.Actor{UserID: 8, Role: core.RoleStudent}, 5)
	assert.ErrorIs(t, err, core.ErrForbidden)
}

func TestCourseProgressGroupsSections(t *testing.T) {
	rows := []CurriculumRow{
		{SectionID: 1, SectionTitle: "Basics", LessonID: 10, IsCompleted: true},
		{SectionID: 1, SectionTitle: "Basics", LessonID: 11},
		{SectionID: 2, SectionTitle: "Concurrency", LessonID: 20, IsCompleted: true},
	}

	resp := ToCourseProgressResponse(&Enrollment{ID: 5}, rows)

	assert.Equal(t, 3, resp.TotalLessons)
	assert.Equal(t, 2, resp.CompletedLessons)
	require.Len(t, resp.Sections, 2)
	assert.Len(t, resp.Sections[0].Lessons, 2)
	assert.Equal(t, 1, resp.Sections[0].CompletedLessons)
	assert.Equal(t, "Concurrency", resp.Sections[1].Title)
}
