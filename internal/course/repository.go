// AngelaMos | 2026
// repository.go

package course

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/edustack/edustack-api/internal/core"
)

type Repository interface {
	Create(ctx context.Context, c *Course) error
	GetByID(ctx context.Context, id int64) (*Course, error)
	List(ctx context.Context, params ListCoursesParams) ([]Course, int, error)
	Update(ctx context.Context, c *Course) error
	SetPublished(ctx context.Context, id int64, published bool) error
	Delete(ctx context.Context, id int64) error
	TopCourses(ctx context.Context, limit int) ([]TopCourse, error)

	CreateSection(ctx context.Context, s *Section) error
	GetSection(ctx context.Context, id int64) (*SectionOwner, error)
	ListSections(ctx context.Context, courseID int64, publishedOnly bool) ([]Section, error)
	UpdateSection(ctx context.Context, s *Section) error
	DeleteSection(ctx context.Context, id int64) error
	ListOutline(ctx context.Context, courseID int64, publishedOnly bool) ([]LessonOutline, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

const selectCourse = `
	SELECT c.id, c.title, c.description, c.price, c.instructor_id, c.category_id,
	       c.thumbnail_url, c.is_published, c.difficulty_level, c.duration_hours,
	       c.language, c.created_at, c.updated_at,
	       u.name AS instructor_name, cat.name AS category_name,
	       COALESCE(rs.average_rating, 0) AS average_rating,
	       COALESCE(rs.total_reviews, 0) AS total_reviews,
	       COALESCE(es.total_students, 0) AS total_students
	FROM courses c
	JOIN users u ON u.id = c.instructor_id
	JOIN categories cat ON cat.id = c.category_id
	LEFT JOIN LATERAL (
		SELECT ROUND(AVG(r.rating)::numeric, 2)::float8 AS average_rating, COUNT(*) AS total_reviews
		FROM reviews r
		WHERE r.course_id = c.id AND r.is_approved
	) rs ON TRUE
	LEFT JOIN LATERAL (
		SELECT COUNT(*) AS total_students
		FROM enrollments e
		WHERE e.course_id = c.id AND e.is_active
	) es ON TRUE`

func (r *repository) Create(ctx context.Context, c *Course) error {
	query := `
		INSERT INTO courses (
			title, description, price, instructor_id, category_id, thumbnail_url,
			difficulty_level, duration_hours, language
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, is_published, created_at, updated_at`

	err := r.db.QueryRowxContext(ctx, query,
		c.Title,
		c.Description,
		c.Price,
		c.InstructorID,
		c.CategoryID,
		c.ThumbnailURL,
		c.DifficultyLevel,
		c.DurationHours,
		c.Language,
	).Scan(&c.ID, &c.IsPublished, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return core.WrapDBError("create course", err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id int64) (*Course, error) {
	var c Course
	err := r.db.GetContext(ctx, &c, selectCourse+` WHERE c.id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get course: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get course: %w", err)
	}

	return &c, nil
}

func (r *repository) List(
	ctx context.Context,
	params ListCoursesParams,
) ([]Course, int, error) {
	params.Normalize()

	var where core.WhereBuilder

	if search := strings.TrimSpace(params.Search); search != "" {
		where.Add("(c.title ILIKE ? OR c.description ILIKE ?)", "%"+core.EscapeLike(search)+"%")
	}
	if params.CategoryID != nil {
		where.Add("c.category_id = ?", *params.CategoryID)
	}
	if params.Difficulty != "" {
		where.Add("c.difficulty_level = ?", params.Difficulty)
	}
	if params.InstructorID != nil {
		where.Add("c.instructor_id = ?", *params.InstructorID)
	}
	if params.Published != nil {
		where.Add("c.is_published = ?", *params.Published)
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM courses c WHERE ` + where.Clause()
	if err := r.db.GetContext(ctx, &total, countQuery, where.Args()...); err != nil {
		return nil, 0, fmt.Errorf("count courses: %w", err)
	}

	next := where.Next()
	query := fmt.Sprintf(`%s
		WHERE %s
		ORDER BY c.created_at DESC, c.id DESC
		LIMIT $%d OFFSET $%d`,
		selectCourse, where.Clause(), next, next+1)

	args := append(where.Args(), params.PageSize, params.Offset())

	courses := []Course{}
	if err := r.db.SelectContext(ctx, &courses, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list courses: %w", err)
	}

	return courses, total, nil
}

func (r *repository) Update(ctx context.Context, c *Course) error {
	query := `
		UPDATE courses
		SET title = $2, description = $3, price = $4, category_id = $5,
		    thumbnail_url = $6, difficulty_level = $7, duration_hours = $8,
		    language = $9, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := r.db.GetContext(ctx, &c.UpdatedAt, query,
		c.ID,
		c.Title,
		c.Description,
		c.Price,
		c.CategoryID,
		c.ThumbnailURL,
		c.DifficultyLevel,
		c.DurationHours,
		c.Language,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("update course: %w", core.ErrNotFound)
	}
	if err != nil {
		return core.WrapDBError("update course", err)
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

func (r *repository) SetPublished(ctx context.Context, id int64, published bool) error {
	return r.exec(ctx, "set course published", `
		UPDATE courses
		SET is_published = $2, updated_at = NOW()
		WHERE id = $1`, id, published)
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	return r.exec(ctx, "delete course", `DELETE FROM courses WHERE id = $1`, id)
}

// TopCourses ranks published courses by active enrollments.
func (r *repository) TopCourses(ctx context.Context, limit int) ([]TopCourse, error) {
	query := `
		SELECT c.id, c.title, u.name AS instructor_name, c.price,
		       COUNT(e.id) AS total_students,
		       COALESCE((
		           SELECT ROUND(AVG(rv.rating)::numeric, 2)::float8 FROM reviews rv
		           WHERE rv.course_id = c.id AND rv.is_approved
		       ), 0) AS average_rating
		FROM courses c
		JOIN users u ON u.id = c.instructor_id
		LEFT JOIN enrollments e ON e.course_id = c.id AND e.is_active
		WHERE c.is_published
		GROUP BY c.id, u.name
		ORDER BY total_students DESC, c.id
		LIMIT $1`

	courses := []TopCourse{}
	if err := r.db.SelectContext(ctx, &courses, query, limit); err != nil {
		return nil, fmt.Errorf("top courses: %w", err)
	}

	return courses, nil
}

const sectionColumns = `s.id, s.course_id, s.title, s.description, s.order_index,
	s.is_published, s.created_at, s.updated_at`

func (r *repository) CreateSection(ctx context.Context, s *Section) error {
	query := `
		INSERT INTO course_sections (course_id, title, description, order_index)
		VALUES ($1, $2, $3, $4)
		RETURNING id, is_published, created_at, updated_at`

	err := r.db.QueryRowxContext(ctx, query,
		s.CourseID,
		s.Title,
		s.Description,
		s.OrderIndex,
	).Scan(&s.ID, &s.IsPublished, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return core.WrapDBError("create section", err)
	}

	return nil
}

func (r *repository) GetSection(ctx context.Context, id int64) (*SectionOwner, error) {
	query := `SELECT ` + sectionColumns + `, c.instructor_id
		FROM course_sections s
		JOIN courses c ON c.id = s.course_id
		WHERE s.id = $1`

	var s SectionOwner
	err := r.db.GetContext(ctx, &s, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get section: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get section: %w", err)
	}

	return &s, nil
}

func (r *repository) ListSections(
	ctx context.Context,
	courseID int64,
	publishedOnly bool,
) ([]Section, error) {
	query := `SELECT ` + sectionColumns + `
		FROM course_sections s
		WHERE s.course_id = $1 AND (s.is_published OR NOT $2)
		ORDER BY s.order_index, s.id`

	sections := []Section{}
	if err := r.db.SelectContext(ctx, &sections, query, courseID, publishedOnly); err != nil {
		return nil, fmt.Errorf("list sections: %w", err)
	}

	return sections, nil
}

func (r *repository) UpdateSection(ctx context.Context, s *Section) error {
	return r.exec(ctx, "update section", `
		UPDATE course_sections
		SET title = $2, description = $3, order_index = $4, is_published = $5,
		    updated_at = NOW()
		WHERE id = $1`,
		s.ID, s.Title, s.Description, s.OrderIndex, s.IsPublished)
}

func (r *repository) DeleteSection(ctx context.Context, id int64) error {
	return r.exec(ctx, "delete section", `DELETE FROM course_sections WHERE id = $1`, id)
}

// ListOutline returns the lessons of every section of a course in
// curriculum order.
func (r *repository) ListOutline(
	ctx context.Context,
	courseID int64,
	publishedOnly bool,
) ([]LessonOutline, error) {
	query := `
		SELECT l.id, l.section_id, l.title, l.lesson_type, l.duration_minutes,
		       l.order_index, l.is_published, l.is_preview
		FROM lessons l
		JOIN course_sections s ON s.id = l.section_id
		WHERE s.course_id = $1 AND (l.is_published OR NOT $2)
		ORDER BY s.order_index, s.id, l.order_index, l.id`

	lessons := []LessonOutline{}
	if err := r.db.SelectContext(ctx, &lessons, query, courseID, publishedOnly); err != nil {
		return nil, fmt.Errorf("list course outline: %w", err)
	}

	return lessons, nil
}
