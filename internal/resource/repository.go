// AngelaMos | 2026
// repository.go

package resource

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/edustack/edustack-api/internal/core"
)

type Repository interface {
	Create(ctx context.Context, res *Resource) error
	GetByID(ctx context.Context, id int64) (*Resource, error)
	ListByLesson(ctx context.Context, lessonID int64) ([]Resource, error)
	Delete(ctx context.Context, id int64) error
	IncrementDownloads(ctx context.Context, id int64) (*Resource, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

const resourceColumns = `id, lesson_id, file_name, file_url, file_type, file_size,
	download_count, created_at`

func (r *repository) Create(ctx context.Context, res *Resource) error {
	query := `
		INSERT INTO resources (lesson_id, file_name, file_url, file_type, file_size)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, download_count, created_at`

	err := r.db.QueryRowxContext(ctx, query,
		res.LessonID,
		res.FileName,
		res.FileURL,
		res.FileType,
		res.FileSize,
	).Scan(&res.ID, &res.DownloadCount, &res.CreatedAt)
	if err != nil {
		return core.WrapDBError("create resource", err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id int64) (*Resource, error) {
	query := `SELECT ` + resourceColumns + ` FROM resources WHERE id = $1`

	var res Resource
	err := r.db.GetContext(ctx, &res, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get resource: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get resource: %w", err)
	}

	return &res, nil
}

func (r *repository) ListByLesson(ctx context.Context, lessonID int64) ([]Resource, error) {
	query := `SELECT ` + resourceColumns + `
		FROM resources
		WHERE lesson_id = $1
		ORDER BY created_at, id`

	resources := []Resource{}
	if err := r.db.SelectContext(ctx, &resources, query, lessonID); err != nil {
		return nil, fmt.Errorf("list resources: %w", err)
	}

	return resources, nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM resources WHERE id = $1`, id)
	if err != nil {
		return core.WrapDBError("delete resource", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete resource: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("delete resource: %w", core.ErrNotFound)
	}

	return nil
}

// IncrementDownloads bumps the counter in place and returns the updated
// row.
func (r *repository) IncrementDownloads(ctx context.Context, id int64) (*Resource, error) {
	query := `
		UPDATE resources
		SET download_count = download_count + 1
		WHERE id = $1
		RETURNING ` + resourceColumns

	var res Resource
	err := r.db.GetContext(ctx, &res, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("count download: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("count download: %w", err)
	}

	return &res, nil
}
