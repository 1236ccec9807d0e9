// AngelaMos | 2026
// repository.go

package instructor

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/edustack/edustack-api/internal/core"
)

type Repository interface {
	Create(ctx context.Context, app *Application) error
	GetByID(ctx context.Context, id int64) (*Application, error)
	ListByUser(ctx context.Context, userID int64) ([]Application, error)
	List(ctx context.Context, status string, params core.ListParams) ([]Application, int, error)
	HasPending(ctx context.Context, userID int64) (bool, error)
	Review(ctx context.Context, id int64, status string, remarks *string, reviewerID int64) error
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

const selectApplication = `
	SELECT a.id, a.user_id, u.name AS applicant_name, u.email AS applicant_email,
	       a.application_status, a.qualifications, a.experience_years,
	       a.portfolio_url, a.motivation, a.admin_remarks, a.reviewed_by,
	       a.reviewed_at, a.created_at, a.updated_at
	FROM instructor_applications a
	JOIN users u ON u.id = a.user_id`

func (r *repository) Create(ctx context.Context, app *Application) error {
	query := `
		INSERT INTO instructor_applications (
			user_id, qualifications, experience_years, portfolio_url, motivation
		) VALUES ($1, $2, $3, $4, $5)
		RETURNING id, application_status, created_at, updated_at`

	err := r.db.QueryRowxContext(ctx, query,
		app.UserID,
		app.Qualifications,
		app.ExperienceYears,
		app.PortfolioURL,
		app.Motivation,
	).Scan(&app.ID, &app.Status, &app.CreatedAt, &app.UpdatedAt)
	if err != nil {
		return core.WrapDBError("create instructor application", err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id int64) (*Application, error) {
	var app Application
	err := r.db.GetContext(ctx, &app, selectApplication+` WHERE a.id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get instructor application: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get instructor application: %w", err)
	}

	return &app, nil
}

func (r *repository) ListByUser(ctx context.Context, userID int64) ([]Application, error) {
	query := selectApplication + `
		WHERE a.user_id = $1
		ORDER BY a.created_at DESC`

	apps := []Application{}
	if err := r.db.SelectContext(ctx, &apps, query, userID); err != nil {
		return nil, fmt.Errorf("list user applications: %w", err)
	}

	return apps, nil
}

// List pages through applications, oldest first so reviewers work the
// queue in order. An empty status lists all of them.
func (r *repository) List(
	ctx context.Context,
	status string,
	params core.ListParams,
) ([]Application, int, error) {
	params.Normalize()

	var where core.WhereBuilder
	if status != "" {
		where.Add("a.application_status = ?", status)
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM instructor_applications a WHERE ` + where.Clause()
	if err := r.db.GetContext(ctx, &total, countQuery, where.Args()...); err != nil {
		return nil, 0, fmt.Errorf("count applications: %w", err)
	}

	next := where.Next()
	query := fmt.Sprintf(`%s
		WHERE %s
		ORDER BY a.created_at ASC, a.id ASC
		LIMIT $%d OFFSET $%d`, selectApplication, where.Clause(), next, next+1)

	apps := []Application{}
	args := append(where.Args(), params.PageSize, params.Offset())
	if err := r.db.SelectContext(ctx, &apps, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list applications: %w", err)
	}

	return apps, total, nil
}

func (r *repository) HasPending(ctx context.Context, userID int64) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM instructor_applications
			WHERE user_id = $1 AND application_status = 'pending'
		)`

	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, userID); err != nil {
		return false, fmt.Errorf("check pending application: %w", err)
	}

	return exists, nil
}

// Review records a decision. The pending guard in the WHERE clause makes a
// second concurrent review a no-op that reports ErrNotPending.
func (r *repository) Review(
	ctx context.Context,
	id int64,
	status string,
	remarks *string,
	reviewerID int64,
) error {
	query := `
		UPDATE instructor_applications
		SET application_status = $2, admin_remarks = $3, reviewed_by = $4,
		    reviewed_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND application_status = 'pending'`

	result, err := r.db.ExecContext(ctx, query, id, status, remarks, reviewerID)
	if err != nil {
		return core.WrapDBError("review application", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("review application: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("review application: %w", ErrNotPending)
	}

	return nil
}
