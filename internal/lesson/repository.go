// AngelaMos | 2026
// repository.go

package lesson

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/edustack/edustack-api/internal/core"
)

type Repository interface {
	Create(ctx context.Context, l *Lesson) error
	GetByID(ctx context.Context, id int64) (*Lesson, error)
	ListBySection(ctx context.Context, sectionID int64, publishedOnly bool) ([]Lesson, error)
	Update(ctx context.Context, l *Lesson) error
	SetPublished(ctx context.Context, id int64, published bool) error
	SetPreview(ctx context.Context, id int64, preview bool) error
	Delete(ctx context.Context, id int64) error
	PlaceSection(ctx context.Context, sectionID int64) (*Placement, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

const selectLesson = `
	SELECT l.id, l.section_id, l.title, l.description, l.lesson_type, l.content,
	       l.video_url, l.file_url, l.duration_minutes, l.order_index,
	       l.is_published, l.is_preview, l.created_at, l.updated_at,
	       s.course_id, c.instructor_id,
	       (s.is_published AND c.is_published) AS parents_published
	FROM lessons l
	JOIN course_sections s ON s.id = l.section_id
	JOIN courses c ON c.id = s.course_id`

func (r *repository) Create(ctx context.Context, l *Lesson) error {
	query := `
		INSERT INTO lessons (
			section_id, title, description, lesson_type, content, video_url,
			file_url, duration_minutes, order_index, is_preview
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, is_published, created_at, updated_at`

	err := r.db.QueryRowxContext(ctx, query,
		l.SectionID,
		l.Title,
		l.Description,
		l.LessonType,
		l.Content,
		l.VideoURL,
		l.FileURL,
		l.DurationMinutes,
		l.OrderIndex,
		l.IsPreview,
	).Scan(&l.ID, &l.IsPublished, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return core.WrapDBError("create lesson", err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id int64) (*Lesson, error) {
	var l Lesson
	err := r.db.GetContext(ctx, &l, selectLesson+` WHERE l.id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get lesson: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get lesson: %w", err)
	}

	return &l, nil
}

func (r *repository) ListBySection(
	ctx context.Context,
	sectionID int64,
	publishedOnly bool,
) ([]Lesson, error) {
	query := selectLesson + `
		WHERE l.section_id = $1
		  AND ((l.is_published AND s.is_published AND c.is_published) OR NOT $2)
		ORDER BY l.order_index, l.id`

	lessons := []Lesson{}
	if err := r.db.SelectContext(ctx, &lessons, query, sectionID, publishedOnly); err != nil {
		return nil, fmt.Errorf("list lessons: %w", err)
	}

	return lessons, nil
}

func (r *repository) Update(ctx context.Context, l *Lesson) error {
	query := `
		UPDATE lessons
		SET title = $2, description = $3, lesson_type = $4, content = $5,
		    video_url = $6, file_url = $7, duration_minutes = $8,
		    order_index = $9, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := r.db.GetContext(ctx, &l.UpdatedAt, query,
		l.ID,
		l.Title,
		l.Description,
		l.LessonType,
		l.Content,
		l.VideoURL,
		l.FileURL,
		l.DurationMinutes,
		l.OrderIndex,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("update lesson: %w", core.ErrNotFound)
	}
	if err != nil {
		return core.WrapDBError("update lesson", err)
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
	return r.exec(ctx, "set lesson published", `
		UPDATE lessons SET is_published = $2, updated_at = NOW() WHERE id = $1`,
		id, published)
}

func (r *repository) SetPreview(ctx context.Context, id int64, preview bool) error {
	return r.exec(ctx, "set lesson preview", `
		UPDATE lessons SET is_preview = $2, updated_at = NOW() WHERE id = $1`,
		id, preview)
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	return r.exec(ctx, "delete lesson", `DELETE FROM lessons WHERE id = $1`, id)
}

func (r *repository) PlaceSection(ctx context.Context, sectionID int64) (*Placement, error) {
	query := `
		SELECT s.id AS section_id, s.course_id, c.instructor_id
		FROM course_sections s
		JOIN courses c ON c.id = s.course_id
		WHERE s.id = $1`

	var p Placement
	err := r.db.GetContext(ctx, &p, query, sectionID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("place section: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("place section: %w", err)
	}

	return &p, nil
}
