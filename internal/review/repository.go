// AngelaMos | 2026
// repository.go

package review

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/edustack/edustack-api/internal/core"
)

type Repository interface {
	Create(ctx context.Context, r *Review) error
	GetByID(ctx context.Context, id int64) (*Review, error)
	GetByStudentCourse(ctx context.Context, studentID, courseID int64) (*Review, error)
	ListByCourse(ctx context.Context, courseID int64, params core.ListParams) ([]Review, int, error)
	ListByStudent(ctx context.Context, studentID int64) ([]Review, error)
	ListPending(ctx context.Context, params core.ListParams) ([]Review, int, error)
	Stats(ctx context.Context, courseID int64) (*Stats, error)
	Update(ctx context.Context, r *Review) error
	Approve(ctx context.Context, id int64) error
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

const selectReview = `
	SELECT r.id, r.student_id, r.course_id, r.rating, r.comment, r.is_approved,
	       r.created_at, r.updated_at, u.name AS student_name,
	       c.title AS course_title, c.instructor_id
	FROM reviews r
	JOIN users u ON u.id = r.student_id
	JOIN courses c ON c.id = r.course_id`

func (r *repository) Create(ctx context.Context, rv *Review) error {
	query := `
		INSERT INTO reviews (student_id, course_id, rating, comment)
		VALUES ($1, $2, $3, $4)
		RETURNING id, is_approved, created_at, updated_at`

	err := r.db.QueryRowxContext(ctx, query,
		rv.StudentID,
		rv.CourseID,
		rv.Rating,
		rv.Comment,
	).Scan(&rv.ID, &rv.IsApproved, &rv.CreatedAt, &rv.UpdatedAt)
	if err != nil {
		return core.WrapDBError("create review", err)
	}

	return nil
}

func (r *repository) getOne(ctx context.Context, where string, args ...any) (*Review, error) {
	var rv Review
	err := r.db.GetContext(ctx, &rv, selectReview+` WHERE `+where, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get review: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get review: %w", err)
	}

	return &rv, nil
}

func (r *repository) GetByID(ctx context.Context, id int64) (*Review, error) {
	return r.getOne(ctx, `r.id = $1`, id)
}

func (r *repository) GetByStudentCourse(ctx context.Context, studentID, courseID int64) (*Review, error) {
	return r.getOne(ctx, `r.student_id = $1 AND r.course_id = $2`, studentID, courseID)
}

func (r *repository) ListByCourse(
	ctx context.Context,
	courseID int64,
	params core.ListParams,
) ([]Review, int, error) {
	var where core.WhereBuilder
	where.Add("r.course_id = ?", courseID)
	where.AddRaw("r.is_approved")
	return r.list(ctx, "list course reviews", where, "r.created_at DESC, r.id DESC", params)
}

func (r *repository) ListPending(ctx context.Context, params core.ListParams) ([]Review, int, error) {
	var where core.WhereBuilder
	where.AddRaw("NOT r.is_approved")
	return r.list(ctx, "list pending reviews", where, "r.created_at ASC, r.id ASC", params)
}

func (r *repository) list(
	ctx context.Context,
	op string,
	where core.WhereBuilder,
	orderBy string,
	params core.ListParams,
) ([]Review, int, error) {
	params.Normalize()

	var total int
	countQuery := `SELECT COUNT(*) FROM reviews r WHERE ` + where.Clause()
	if err := r.db.GetContext(ctx, &total, countQuery, where.Args()...); err != nil {
		return nil, 0, fmt.Errorf("%s: count: %w", op, err)
	}

	next := where.Next()
	query := fmt.Sprintf(`%s
		WHERE %s
		ORDER BY %s
		LIMIT $%d OFFSET $%d`, selectReview, where.Clause(), orderBy, next, next+1)

	reviews := []Review{}
	args := append(where.Args(), params.PageSize, params.Offset())
	if err := r.db.SelectContext(ctx, &reviews, query, args...); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	return reviews, total, nil
}

func (r *repository) ListByStudent(ctx context.Context, studentID int64) ([]Review, error) {
	query := selectReview + `
		WHERE r.student_id = $1
		ORDER BY r.created_at DESC, r.id DESC`

	reviews := []Review{}
	if err := r.db.SelectContext(ctx, &reviews, query, studentID); err != nil {
		return nil, fmt.Errorf("list student reviews: %w", err)
	}

	return reviews, nil
}

func (r *repository) Stats(ctx context.Context, courseID int64) (*Stats, error) {
	query := `
		SELECT COALESCE(ROUND(AVG(rating)::numeric, 2), 0)::float8 AS average_rating,
		       COUNT(*) AS total_reviews,
		       COUNT(*) FILTER (WHERE rating = 5) AS rating_5,
		       COUNT(*) FILTER (WHERE rating = 4) AS rating_4,
		       COUNT(*) FILTER (WHERE rating = 3) AS rating_3,
		       COUNT(*) FILTER (WHERE rating = 2) AS rating_2,
		       COUNT(*) FILTER (WHERE rating = 1) AS rating_1
		FROM reviews
		WHERE course_id = $1 AND is_approved`

	var s Stats
	if err := r.db.GetContext(ctx, &s, query, courseID); err != nil {
		return nil, fmt.Errorf("review stats: %w", err)
	}

	return &s, nil
}

// Update rewrites the rating and comment and sends the review back to
// moderation.
func (r *repository) Update(ctx context.Context, rv *Review) error {
	query := `
		UPDATE reviews
		SET rating = $2, comment = $3, is_approved = FALSE, updated_at = NOW()
		WHERE id = $1
		RETURNING is_approved, updated_at`

	err := r.db.QueryRowxContext(ctx, query, rv.ID, rv.Rating, rv.Comment).
		Scan(&rv.IsApproved, &rv.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("update review: %w", core.ErrNotFound)
	}
	if err != nil {
		return core.WrapDBError("update review", err)
	}

	return nil
}

func (r *repository) exec(ctx context.Context, op, query string, args ...any) error {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return core.WrapDBError(op, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if rows == 0 {
		return fmt.Errorf("%s: %w", op, core.ErrNotFound)
	}

	return nil
}

func (r *repository) Approve(ctx context.Context, id int64) error {
	return r.exec(ctx, "approve review",
		`UPDATE reviews SET is_approved = TRUE, updated_at = NOW() WHERE id = $1`, id)
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	return r.exec(ctx, "delete review", `DELETE FROM reviews WHERE id = $1`, id)
}
