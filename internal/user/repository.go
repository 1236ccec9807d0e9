// AngelaMos | 2026
// repository.go

package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/edustack/edustack-api/internal/core"
)

type Repository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	UpdateProfile(ctx context.Context, user *User) error
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
	UpdateRole(ctx context.Context, id, roleID int64) error
	IncrementTokenVersion(ctx context.Context, id int64) error
	SetVerificationToken(
		ctx context.Context,
		id int64,
		tokenHash string,
		expiresAt time.Time,
	) error
	MarkEmailVerified(ctx context.Context, id int64) error
	SetActive(ctx context.Context, id int64, active bool) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, params ListUsersParams) ([]User, int, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

type repository struct {
	db core.DBTX
}

// NewRepository accepts either the pool or a transaction.
func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

const selectUser = `
	SELECT u.id, u.name, u.email, u.password_hash, u.role_id, r.name AS role_name,
	       u.profile_image, u.phone, u.bio, u.is_active, u.email_verified,
	       u.verification_token, u.verification_token_expiry, u.token_version,
	       u.created_at, u.updated_at
	FROM users u
	JOIN roles r ON r.id = u.role_id`

func (r *repository) Create(ctx context.Context, user *User) error {
	query := `
		INSERT INTO users (
			name, email, password_hash, role_id, is_active, email_verified,
			verification_token, verification_token_expiry
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, token_version, created_at, updated_at`

	row := r.db.QueryRowxContext(ctx, query,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.RoleID,
		user.IsActive,
		user.EmailVerified,
		user.VerificationToken,
		user.VerificationTokenExpiry,
	)
	err := row.Scan(&user.ID, &user.TokenVersion, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return core.WrapDBError("create user", err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id int64) (*User, error) {
	var user User
	err := r.db.GetContext(ctx, &user, selectUser+` WHERE u.id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get user: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	return &user, nil
}

func (r *repository) GetByEmail(
	ctx context.Context,
	email string,
) (*User, error) {
	var user User
	err := r.db.GetContext(ctx, &user, selectUser+` WHERE u.email = $1`, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get user by email: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", err)
	}

	return &user, nil
}

func (r *repository) UpdateProfile(ctx context.Context, user *User) error {
	query := `
		UPDATE users
		SET name = $2, phone = $3, bio = $4, profile_image = $5, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := r.db.GetContext(ctx, &user.UpdatedAt, query,
		user.ID,
		user.Name,
		user.Phone,
		user.Bio,
		user.ProfileImage,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("update user: %w", core.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("update user: %w", err)
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

func (r *repository) UpdatePassword(
	ctx context.Context,
	id int64,
	passwordHash string,
) error {
	return r.exec(ctx, "update password", `
		UPDATE users
		SET password_hash = $2, updated_at = NOW()
		WHERE id = $1`, id, passwordHash)
}

func (r *repository) UpdateRole(ctx context.Context, id, roleID int64) error {
	return r.exec(ctx, "update role", `
		UPDATE users
		SET role_id = $2, updated_at = NOW()
		WHERE id = $1`, id, roleID)
}

func (r *repository) IncrementTokenVersion(ctx context.Context, id int64) error {
	return r.exec(ctx, "increment token version", `
		UPDATE users
		SET token_version = token_version + 1, updated_at = NOW()
		WHERE id = $1`, id)
}

func (r *repository) SetVerificationToken(
	ctx context.Context,
	id int64,
	tokenHash string,
	expiresAt time.Time,
) error {
	return r.exec(ctx, "set verification token", `
		UPDATE users
		SET verification_token = $2, verification_token_expiry = $3, updated_at = NOW()
		WHERE id = $1`, id, tokenHash, expiresAt)
}

func (r *repository) MarkEmailVerified(ctx context.Context, id int64) error {
	return r.exec(ctx, "mark email verified", `
		UPDATE users
		SET email_verified = TRUE, verification_token = NULL,
		    verification_token_expiry = NULL, updated_at = NOW()
		WHERE id = $1`, id)
}

func (r *repository) SetActive(ctx context.Context, id int64, active bool) error {
	return r.exec(ctx, "set user active", `
		UPDATE users
		SET is_active = $2, token_version = token_version + 1, updated_at = NOW()
		WHERE id = $1`, id, active)
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	return r.exec(ctx, "delete user", `DELETE FROM users WHERE id = $1`, id)
}

func (r *repository) List(
	ctx context.Context,
	params ListUsersParams,
) ([]User, int, error) {
	params.Normalize()

	var where core.WhereBuilder

	if search := strings.TrimSpace(params.Search); search != "" {
		where.Add("(u.email ILIKE ? OR u.name ILIKE ?)", "%"+core.EscapeLike(search)+"%")
	}
	if params.Role != "" {
		where.Add("r.name = ?", params.Role)
	}
	if params.IsActive != nil {
		where.Add("u.is_active = ?", *params.IsActive)
	}

	countQuery := `
		SELECT COUNT(*)
		FROM users u
		JOIN roles r ON r.id = u.role_id
		WHERE ` + where.Clause()

	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, where.Args()...); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	next := where.Next()
	query := fmt.Sprintf(`%s
		WHERE %s
		ORDER BY u.created_at DESC, u.id DESC
		LIMIT $%d OFFSET $%d`,
		selectUser, where.Clause(), next, next+1)

	args := append(where.Args(), params.PageSize, params.Offset())

	users := []User{}
	if err := r.db.SelectContext(ctx, &users, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}

	return users, total, nil
}

func (r *repository) ExistsByEmail(
	ctx context.Context,
	email string,
) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`

	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, email); err != nil {
		return false, fmt.Errorf("check email exists: %w", err)
	}

	return exists, nil
}
