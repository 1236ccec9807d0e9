// AngelaMos | 2026
// repository.go

package enrollment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/edustack/edustack-api/internal/core"
)

type Repository interface {
	Create(ctx context.Context, e *Enrollment) error
	GetByID(ctx context.Context, id int64) (*Enrollment, error)
	GetByStudentCourse(ctx context.Context, studentID, courseID int64) (*Enrollment, error)
	ListByStudent(ctx context.Context, studentID int64) ([]Enrollment, error)
	ListByCourse(ctx context.Context, courseID int64, params core.ListParams) ([]Enrollment, int, error)
	IsActivelyEnrolled(ctx context.Context, studentID, courseID int64) (bool, error)
	SetProgress(ctx context.Context, id int64, pct decimal.Decimal, completedAt *time.Time) error
	SetPaymentStatus(ctx context.Context, studentID, courseID int64, status string) (bool, error)
	Delete(ctx context.Context, id int64) error

	PlaceLesson(ctx context.Context, lessonID int64) (*LessonPlacement, error)
	UpsertProgress(ctx context.Context, u ProgressUpdate) (*LessonProgress, error)
	CountCompleted(ctx context.Context, studentID, courseID int64) (completed, total int, err error)
	ListProgress(ctx context.Context, studentID, courseID int64) ([]LessonProgress, error)
	Curriculum(ctx context.Context, studentID, courseID int64) ([]CurriculumRow, error)
	DeleteProgress(ctx context.Context, studentID, courseID int64) error
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

const selectEnrollment = `
	SELECT e.id, e.student_id, e.course_id, e.enrollment_date,
	       e.progress_percentage, e.completion_date, e.is_active, e.payment_status,
	       u.name AS student_name, u.email AS student_email,
	       c.title AS course_title, c.thumbnail_url AS course_thumbnail,
	       c.instructor_id
	FROM enrollments e
	JOIN users u ON u.id = e.student_id
	JOIN courses c ON c.id = e.course_id`

func (r *repository) Create(ctx context.Context, e *Enrollment) error {
	query := `
		INSERT INTO enrollments (student_id, course_id, payment_status)
		VALUES ($1, $2, $3)
		RETURNING id, enrollment_date, progress_percentage, is_active`

	err := r.db.QueryRowxContext(ctx, query,
		e.StudentID,
		e.CourseID,
		e.PaymentStatus,
	).Scan(&e.ID, &e.EnrollmentDate, &e.ProgressPercentage, &e.IsActive)
	if err != nil {
		return core.WrapDBError("create enrollment", err)
	}

	return nil
}

func (r *repository) getOne(ctx context.Context, op, where string, args ...any) (*Enrollment, error) {
	var e Enrollment
	err := r.db.GetContext(ctx, &e, selectEnrollment+` WHERE `+where, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &e, nil
}

func (r *repository) GetByID(ctx context.Context, id int64) (*Enrollment, error) {
	return r.getOne(ctx, "get enrollment", `e.id = $1`, id)
}

func (r *repository) GetByStudentCourse(
	ctx context.Context,
	studentID, courseID int64,
) (*Enrollment, error) {
	return r.getOne(ctx, "get enrollment by course",
		`e.student_id = $1 AND e.course_id = $2`, studentID, courseID)
}

func (r *repository) ListByStudent(ctx context.Context, studentID int64) ([]Enrollment, error) {
	query := selectEnrollment + `
		WHERE e.student_id = $1
		ORDER BY e.enrollment_date DESC, e.id DESC`

	enrollments := []Enrollment{}
	if err := r.db.SelectContext(ctx, &enrollments, query, studentID); err != nil {
		return nil, fmt.Errorf("list student enrollments: %w", err)
	}

	return enrollments, nil
}

func (r *repository) ListByCourse(
	ctx context.Context,
	courseID int64,
	params core.ListParams,
) ([]Enrollment, int, error) {
	params.Normalize()

	var total int
	countQuery := `SELECT COUNT(*) FROM enrollments WHERE course_id = $1`
	if err := r.db.GetContext(ctx, &total, countQuery, courseID); err != nil {
		return nil, 0, fmt.Errorf("count course enrollments: %w", err)
	}

	query := selectEnrollment + `
		WHERE e.course_id = $1
		ORDER BY e.enrollment_date DESC, e.id DESC
		LIMIT $2 OFFSET $3`

	enrollments := []Enrollment{}
	err := r.db.SelectContext(ctx, &enrollments, query, courseID, params.PageSize, params.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("list course enrollments: %w", err)
	}

	return enrollments, total, nil
}

func (r *repository) IsActivelyEnrolled(
	ctx context.Context,
	studentID, courseID int64,
) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM enrollments
			WHERE student_id = $1 AND course_id = $2 AND is_active
		)`

	var enrolled bool
	if err := r.db.GetContext(ctx, &enrolled, query, studentID, courseID); err != nil {
		return false, fmt.Errorf("check enrollment: %w", err)
	}

	return enrolled, nil
}

func (r *repository) SetProgress(
	ctx context.Context,
	id int64,
	pct decimal.Decimal,
	completedAt *time.Time,
) error {
	query := `
		UPDATE enrollments
		SET progress_percentage = $2, completion_date = $3
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, pct, completedAt)
	if err != nil {
		return core.WrapDBError("set enrollment progress", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("set enrollment progress: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("set enrollment progress: %w", core.ErrNotFound)
	}

	return nil
}

// SetPaymentStatus mirrors a payment outcome onto the matching enrollment.
// It reports false when the student has not enrolled yet.
func (r *repository) SetPaymentStatus(
	ctx context.Context,
	studentID, courseID int64,
	status string,
) (bool, error) {
	query := `
		UPDATE enrollments
		SET payment_status = $3
		WHERE student_id = $1 AND course_id = $2`

	result, err := r.db.ExecContext(ctx, query, studentID, courseID, status)
	if err != nil {
		return false, core.WrapDBError("set enrollment payment status", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("set enrollment payment status: %w", err)
	}

	return rows > 0, nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM enrollments WHERE id = $1`, id)
	if err != nil {
		return core.WrapDBError("delete enrollment", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete enrollment: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("delete enrollment: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) PlaceLesson(ctx context.Context, lessonID int64) (*LessonPlacement, error) {
	query := `
		SELECT l.id AS lesson_id, s.course_id, (l.is_published AND s.is_published) AS is_published
		FROM lessons l
		JOIN course_sections s ON s.id = l.section_id
		WHERE l.id = $1`

	var p LessonPlacement
	err := r.db.GetContext(ctx, &p, query, lessonID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("place lesson: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("place lesson: %w", err)
	}

	return &p, nil
}

const progressColumns = `id, student_id, lesson_id, is_completed, completion_date,
	time_spent_minutes, last_position_seconds, created_at, updated_at`

// UpsertProgress writes the non-nil fields of u. The completion date is
// stamped on the first completion and cleared when a lesson is marked
// incomplete again.
func (r *repository) UpsertProgress(ctx context.Context, u ProgressUpdate) (*LessonProgress, error) {
	query := `
		INSERT INTO lesson_progress (
			student_id, lesson_id, is_completed, completion_date,
			time_spent_minutes, last_position_seconds
		) VALUES (
			$1, $2, COALESCE($3::boolean, FALSE),
			CASE WHEN $3::boolean THEN NOW() END,
			COALESCE($4::integer, 0), COALESCE($5::integer, 0)
		)
		ON CONFLICT (student_id, lesson_id) DO UPDATE SET
			is_completed = COALESCE($3::boolean, lesson_progress.is_completed),
			completion_date = CASE
				WHEN $3::boolean IS NULL THEN lesson_progress.completion_date
				WHEN $3::boolean THEN COALESCE(lesson_progress.completion_date, NOW())
				ELSE NULL
			END,
			time_spent_minutes = COALESCE($4::integer, lesson_progress.time_spent_minutes),
			last_position_seconds = COALESCE($5::integer, lesson_progress.last_position_seconds),
			updated_at = NOW()
		RETURNING ` + progressColumns

	var p LessonProgress
	err := r.db.GetContext(ctx, &p, query,
		u.StudentID,
		u.LessonID,
		u.IsCompleted,
		u.TimeSpentMinutes,
		u.LastPositionSeconds,
	)
	if err != nil {
		return nil, core.WrapDBError("upsert lesson progress", err)
	}

	return &p, nil
}

// CountCompleted counts published lessons of a course and how many of them
// the student has completed.
func (r *repository) CountCompleted(
	ctx context.Context,
	studentID, courseID int64,
) (int, int, error) {
	query := `
		SELECT COUNT(*) FILTER (WHERE lp.is_completed) AS completed,
		       COUNT(*) AS total
		FROM lessons l
		JOIN course_sections s ON s.id = l.section_id
		LEFT JOIN lesson_progress lp ON lp.lesson_id = l.id AND lp.student_id = $1
		WHERE s.course_id = $2 AND l.is_published AND s.is_published`

	var counts struct {
		Completed int `db:"completed"`
		Total     int `db:"total"`
	}
	if err := r.db.GetContext(ctx, &counts, query, studentID, courseID); err != nil {
		return 0, 0, fmt.Errorf("count completed lessons: %w", err)
	}

	return counts.Completed, counts.Total, nil
}

func (r *repository) ListProgress(
	ctx context.Context,
	studentID, courseID int64,
) ([]LessonProgress, error) {
	query := `
		SELECT lp.id, lp.student_id, lp.lesson_id, lp.is_completed, lp.completion_date,
		       lp.time_spent_minutes, lp.last_position_seconds, lp.created_at, lp.updated_at
		FROM lesson_progress lp
		JOIN lessons l ON l.id = lp.lesson_id
		JOIN course_sections s ON s.id = l.section_id
		WHERE lp.student_id = $1 AND s.course_id = $2
		ORDER BY s.order_index, l.order_index, l.id`

	progress := []LessonProgress{}
	if err := r.db.SelectContext(ctx, &progress, query, studentID, courseID); err != nil {
		return nil, fmt.Errorf("list lesson progress: %w", err)
	}

	return progress, nil
}

func (r *repository) Curriculum(
	ctx context.Context,
	studentID, courseID int64,
) ([]CurriculumRow, error) {
	query := `
		SELECT s.id AS section_id, s.title AS section_title, s.order_index AS section_order,
		       l.id AS lesson_id, l.title AS lesson_title, l.lesson_type,
		       l.duration_minutes, l.order_index, l.is_preview,
		       COALESCE(lp.is_completed, FALSE) AS is_completed,
		       lp.completion_date,
		       COALESCE(lp.time_spent_minutes, 0) AS time_spent_minutes,
		       COALESCE(lp.last_position_seconds, 0) AS last_position_seconds
		FROM course_sections s
		JOIN lessons l ON l.section_id = s.id
		LEFT JOIN lesson_progress lp ON lp.lesson_id = l.id AND lp.student_id = $1
		WHERE s.course_id = $2 AND s.is_published AND l.is_published
		ORDER BY s.order_index, s.id, l.order_index, l.id`

	rows := []CurriculumRow{}
	if err := r.db.SelectContext(ctx, &rows, query, studentID, courseID); err != nil {
		return nil, fmt.Errorf("load curriculum progress: %w", err)
	}

	return rows, nil
}

func (r *repository) DeleteProgress(ctx context.Context, studentID, courseID int64) error {
	query := `
		DELETE FROM lesson_progress lp
		USING lessons l, course_sections s
		WHERE lp.lesson_id = l.id AND l.section_id = s.id
		  AND lp.student_id = $1 AND s.course_id = $2`

	if _, err := r.db.ExecContext(ctx, query, studentID, courseID); err != nil {
		return core.WrapDBError("delete lesson progress", err)
	}

	return nil
}
