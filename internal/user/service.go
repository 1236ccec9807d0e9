// AngelaMos | 2026
// service.go

package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/edustack/edustack-api/internal/auth"
	"github.com/edustack/edustack-api/internal/core"
	"github.com/edustack/edustack-api/internal/role"
)

var (
	ErrSelfDelete     = errors.New("cannot delete own account")
	ErrSelfDeactivate = errors.New("cannot deactivate own account")
	ErrUnknownRole    = errors.New("unknown role")
)

type Service struct {
	repo  Repository
	roles role.Repository
}

func NewService(repo Repository, roles role.Repository) *Service {
	return &Service{repo: repo, roles: roles}
}

func (s *Service) GetByID(ctx context.Context, id int64) (*auth.UserInfo, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return toUserInfo(user), nil
}

func (s *Service) GetByEmail(
	ctx context.Context,
	email string,
) (*auth.UserInfo, error) {
	user, err := s.repo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, err
	}

	return toUserInfo(user), nil
}

// Create registers a new Student. Accounts start active and unverified.
func (s *Service) Create(
	ctx context.Context,
	email, passwordHash, name string,
) (*auth.UserInfo, error) {
	student, err := s.roles.GetByName(ctx, core.RoleStudent)
	if err != nil {
		return nil, fmt.Errorf("resolve student role: %w", err)
	}

	user := &User{
		Name:         strings.TrimSpace(name),
		Email:        normalizeEmail(email),
		PasswordHash: passwordHash,
		RoleID:       student.ID,
		Role:         student.Name,
		IsActive:     true,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	return toUserInfo(user), nil
}

func (s *Service) IncrementTokenVersion(ctx context.Context, userID int64) error {
	return s.repo.IncrementTokenVersion(ctx, userID)
}

func (s *Service) UpdatePassword(
	ctx context.Context,
	userID int64,
	passwordHash string,
) error {
	return s.repo.UpdatePassword(ctx, userID, passwordHash)
}

func (s *Service) SetVerificationToken(
	ctx context.Context,
	userID int64,
	tokenHash string,
	expiresAt time.Time,
) error {
	return s.repo.SetVerificationToken(ctx, userID, tokenHash, expiresAt)
}

func (s *Service) MarkEmailVerified(ctx context.Context, userID int64) error {
	return s.repo.MarkEmailVerified(ctx, userID)
}

func (s *Service) GetUser(ctx context.Context, id int64) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetProfile(ctx context.Context, userID int64) (*User, error) {
	if userID == 0 {
		return nil, fmt.Errorf("get profile: %w", core.ErrUnauthorized)
	}

	return s.repo.GetByID(ctx, userID)
}

func (s *Service) UpdateProfile(
	ctx context.Context,
	userID int64,
	req UpdateProfileRequest,
) (*User, error) {
	if userID == 0 {
		return nil, fmt.Errorf("update profile: %w", core.ErrUnauthorized)
	}

	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		user.Name = strings.TrimSpace(*req.Name)
	}
	if req.Phone != nil {
		user.Phone = req.Phone
	}
	if req.Bio != nil {
		user.Bio = req.Bio
	}
	if req.ProfileImage != nil {
		user.ProfileImage = req.ProfileImage
	}

	if err := s.repo.UpdateProfile(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

func (s *Service) ListUsers(
	ctx context.Context,
	params ListUsersParams,
) ([]User, int, error) {
	if params.Role != "" {
		if _, err := s.roles.GetByName(ctx, params.Role); err != nil {
			if errors.Is(err, core.ErrNotFound) {
				return nil, 0, fmt.Errorf("list users: %q: %w", params.Role, ErrUnknownRole)
			}
			return nil, 0, err
		}
	}

	return s.repo.List(ctx, params)
}

// SetActive toggles an account. Deactivation bumps the token version so
// outstanding refresh tokens stop working.
func (s *Service) SetActive(
	ctx context.Context,
	actor core.Actor,
	id int64,
	active bool,
) (*User, error) {
	if !active && actor.UserID == id {
		return nil, fmt.Errorf("deactivate user: %w", ErrSelfDeactivate)
	}

	if err := s.repo.SetActive(ctx, id, active); err != nil {
		return nil, err
	}

	return s.repo.GetByID(ctx, id)
}

// DeleteUser removes the row for good. Users that still own courses,
// payments or enrollments are protected by foreign keys.
func (s *Service) DeleteUser(ctx context.Context, actor core.Actor, id int64) error {
	if actor.UserID == id {
		return fmt.Errorf("delete user: %w", ErrSelfDelete)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	return nil
}

func (s *Service) EmailExists(ctx context.Context, email string) (bool, error) {
	return s.repo.ExistsByEmail(ctx, normalizeEmail(email))
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func toUserInfo(u *User) *auth.UserInfo {
	return &auth.UserInfo{
		ID:                      u.ID,
		Email:                   u.Email,
		Name:                    u.Name,
		PasswordHash:            u.PasswordHash,
		Role:                    u.Role,
		TokenVersion:            u.TokenVersion,
		IsActive:                u.IsActive,
		EmailVerified:           u.EmailVerified,
		VerificationToken:       u.VerificationToken,
		VerificationTokenExpiry: u.VerificationTokenExpiry,
		CreatedAt:               u.CreatedAt,
	}
}

var _ auth.UserProvider = (*Service)(nil)
