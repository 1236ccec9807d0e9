// AngelaMos | 2026
// repository.go

package category

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/edustack/edustack-api/internal/core"
)

type Repository interface {
	Create(ctx context.Context, c *Category) error
	GetByID(ctx context.Context, id int64) (*Category, error)
	List(ctx context.Context, params ListParams) ([]Category, error)
	Update(ctx context.Context, c *Category) error
	Delete(ctx context.Context, id int64) error
	IsDescendant(ctx context.Context, id, candidate int64) (bool, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

const selectCategory = `
	SELECT c.id, c.name, c.description, c.parent_id, c.icon_url, c.is_active,
	       c.created_at,
	       (SELECT COUNT(*) FROM courses co
	        WHERE co.category_id = c.id AND co.is_published) AS course_count
	FROM categories c`

func (r *repository) Create(ctx context.Context, c *Category) error {
	query := `
		INSERT INTO categories (name, description, parent_id, icon_url)
		VALUES ($1, $2, $3, $4)
		RETURNING id, is_active, created_at`

	err := r.db.QueryRowxContext(ctx, query,
		c.Name,
		c.Description,
		c.ParentID,
		c.IconURL,
	).Scan(&c.ID, &c.IsActive, &c.CreatedAt)
	if err != nil {
		return core.WrapDBError("create category", err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id int64) (*Category, error) {
	var c Category
	err := r.db.GetContext(ctx, &c, selectCategory+` WHERE c.id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get category: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get category: %w", err)
	}

	return &c, nil
}

func (r *repository) List(ctx context.Context, params ListParams) ([]Category, error) {
	var where core.WhereBuilder
	if params.ActiveOnly {
		where.AddRaw("c.is_active")
	}
	if params.ParentID != nil {
		where.Add("c.parent_id = ?", *params.ParentID)
	}

	query := selectCategory + ` WHERE ` + where.Clause() + ` ORDER BY c.name`

	categories := []Category{}
	if err := r.db.SelectContext(ctx, &categories, query, where.Args()...); err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}

	return categories, nil
}

func (r *repository) Update(ctx context.Context, c *Category) error {
	query := `
		UPDATE categories
		SET name = $2, description = $3, parent_id = $4, icon_url = $5, is_active = $6
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query,
		c.ID,
		c.Name,
		c.Description,
		c.ParentID,
		c.IconURL,
		c.IsActive,
	)
	if err != nil {
		return core.WrapDBError("update category", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update category: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("update category: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return core.WrapDBError("delete category", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("delete category: %w", core.ErrNotFound)
	}

	return nil
}

// IsDescendant reports whether candidate sits anywhere below id in the tree.
func (r *repository) IsDescendant(ctx context.Context, id, candidate int64) (bool, error) {
	query := `
		WITH RECURSIVE tree AS (
			SELECT id FROM categories WHERE parent_id = $1
			UNION
			SELECT c.id FROM categories c JOIN tree t ON c.parent_id = t.id
		)
		SELECT EXISTS(SELECT 1 FROM tree WHERE id = $2)`

	var found bool
	if err := r.db.GetContext(ctx, &found, query, id, candidate); err != nil {
		return false, fmt.Errorf("walk category tree: %w", err)
	}

	return found, nil
}
