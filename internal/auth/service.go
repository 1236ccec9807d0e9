// AngelaMos | 2026
// service.go

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/edustack/edustack-api/internal/config"
	"github.com/edustack/edustack-api/internal/core"
	"github.com/edustack/edustack-api/internal/middleware"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenReuse         = errors.New("token reuse detected")
	ErrEmailExists        = errors.New("email already registered")
	ErrAccountDeactivated = errors.New("account deactivated")
	ErrEmailNotVerified   = errors.New("email not verified")
	ErrInvalidCode        = errors.New("invalid verification code")
	ErrCodeExpired        = errors.New("verification code expired")
	ErrCooldown           = errors.New("verification recently sent")
	ErrInvalidResetToken  = errors.New("invalid or expired reset token")
)

const (
	verificationCodeDigits = 6
	resetTokenBytes        = 32

	blacklistPrefix      = "blacklist:"
	passwordResetPrefix  = "password_reset:"
	verifyCooldownPrefix = "verify_cooldown:"
)

type UserProvider interface {
	GetByEmail(ctx context.Context, email string) (*UserInfo, error)
	GetByID(ctx context.Context, id int64) (*UserInfo, error)
	Create(ctx context.Context, email, passwordHash, name string) (*UserInfo, error)
	IncrementTokenVersion(ctx context.Context, userID int64) error
	UpdatePassword(ctx context.Context, userID int64, passwordHash string) error
	SetVerificationToken(ctx context.Context, userID int64, tokenHash string, expiresAt time.Time) error
	MarkEmailVerified(ctx context.Context, userID int64) error
}

// Notifier delivers the account emails. *email.Mailer satisfies it.
type Notifier interface {
	SendVerificationCode(ctx context.Context, to mail.Address, code string, ttl time.Duration) error
	SendPasswordReset(ctx context.Context, to mail.Address, token string, ttl time.Duration) error
	SendWelcome(ctx context.Context, to mail.Address) error
}

type Service struct {
	repo     Repository
	jwt      *JWTManager
	users    UserProvider
	store    core.KeyStore
	notifier Notifier
	cfg      config.AuthConfig
	logger   *slog.Logger
}

func NewService(
	repo Repository,
	jwt *JWTManager,
	users UserProvider,
	store core.KeyStore,
	notifier Notifier,
	cfg config.AuthConfig,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:     repo,
		jwt:      jwt,
		users:    users,
		store:    store,
		notifier: notifier,
		cfg:      cfg,
		logger:   logger,
	}
}

// VerifyAccessToken validates the JWT and rejects tokens whose jti was
// revoked by logout. If Redis is unreachable the token is accepted.
func (s *Service) VerifyAccessToken(
	ctx context.Context,
	token string,
) (*middleware.AccessTokenClaims, error) {
	claims, err := s.jwt.VerifyAccessToken(ctx, token)
	if err != nil {
		return nil, err
	}

	if claims.JTI == "" {
		return claims, nil
	}

	revoked, err := s.store.Exists(ctx, blacklistPrefix+claims.JTI)
	if err != nil {
		s.logger.WarnContext(ctx, "blacklist lookup failed", "error", err)
		return claims, nil
	}
	if revoked {
		return nil, fmt.Errorf("verify token: %w", core.ErrTokenRevoked)
	}

	return claims, nil
}

func (s *Service) Register(
	ctx context.Context,
	req RegisterRequest,
	userAgent, ipAddress string,
) (*RegisterResponse, error) {
	passwordHash, err := core.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.Create(ctx, req.Email, passwordHash, req.Name)
	if err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	if err := s.issueVerificationCode(ctx, user); err != nil {
		s.logger.ErrorContext(ctx, "verification code not delivered",
			"user_id", user.ID,
			"error", err,
		)
	}

	resp := &RegisterResponse{
		User:                 toUserResponse(user),
		VerificationRequired: s.cfg.RequireEmailVerification,
	}

	if !s.cfg.RequireEmailVerification {
		session, err := s.startSession(ctx, user, userAgent, ipAddress)
		if err != nil {
			return nil, err
		}
		resp.Tokens = &session.Tokens
	}

	return resp, nil
}

func (s *Service) Login(
	ctx context.Context,
	req LoginRequest,
	userAgent, ipAddress string,
) (*AuthResponse, error) {
	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			//nolint:errcheck // burn the same time as a real check
			_, _, _ = core.VerifyPasswordTimingSafe(req.Password, nil)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	valid, newHash, err := core.VerifyPasswordTimingSafe(req.Password, &user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !valid {
		return nil, ErrInvalidCredentials
	}

	if !user.IsActive {
		return nil, ErrAccountDeactivated
	}
	if s.cfg.RequireEmailVerification && !user.EmailVerified {
		return nil, ErrEmailNotVerified
	}

	if newHash != "" {
		if err := s.users.UpdatePassword(ctx, user.ID, newHash); err != nil {
			s.logger.WarnContext(ctx, "password rehash failed", "user_id", user.ID, "error", err)
		}
	}

	return s.startSession(ctx, user, userAgent, ipAddress)
}

// Refresh exchanges a refresh token for a new pair. Presenting a token that
// was already rotated revokes every token of its family.
func (s *Service) Refresh(
	ctx context.Context,
	refreshToken, userAgent, ipAddress string,
) (*AuthResponse, error) {
	stored, err := s.repo.FindByHash(ctx, core.HashToken(refreshToken))
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, fmt.Errorf("refresh: %w", core.ErrTokenInvalid)
		}
		return nil, fmt.Errorf("find token: %w", err)
	}

	if stored.IsUsed {
		s.revokeFamily(ctx, stored)
		return nil, ErrTokenReuse
	}
	if stored.IsRevoked() {
		return nil, fmt.Errorf("refresh: %w", core.ErrTokenRevoked)
	}
	if stored.IsExpired() {
		return nil, fmt.Errorf("refresh: %w", core.ErrTokenExpired)
	}

	user, err := s.users.GetByID(ctx, stored.UserID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if !user.IsActive {
		s.revokeFamily(ctx, stored)
		return nil, ErrAccountDeactivated
	}

	access, err := s.jwt.CreateAccessToken(AccessTokenClaims{
		UserID:       user.ID,
		Role:         user.Role,
		TokenVersion: user.TokenVersion,
	})
	if err != nil {
		return nil, fmt.Errorf("create access token: %w", err)
	}

	refresh, err := s.jwt.NewRefreshToken()
	if err != nil {
		return nil, err
	}

	next := &RefreshToken{
		ID:        uuid.New().String(),
		UserID:    user.ID,
		TokenHash: refresh.Hash,
		ExpiresAt: refresh.ExpiresAt,
		UserAgent: userAgent,
		IPAddress: ipAddress,
	}

	if err := s.repo.Rotate(ctx, stored.ID, next); err != nil {
		if errors.Is(err, core.ErrConflict) {
			s.revokeFamily(ctx, stored)
			return nil, ErrTokenReuse
		}
		return nil, fmt.Errorf("rotate refresh token: %w", err)
	}

	return s.authResponse(user, access, refresh.Token), nil
}

// Logout revokes the given refresh token and blacklists the access token
// that authenticated the request.
func (s *Service) Logout(
	ctx context.Context,
	claims *middleware.AccessTokenClaims,
	refreshToken string,
) error {
	stored, err := s.repo.FindByHash(ctx, core.HashToken(refreshToken))
	switch {
	case errors.Is(err, core.ErrNotFound):
	case err != nil:
		return fmt.Errorf("find token: %w", err)
	case stored.UserID != claims.UserID:
		return fmt.Errorf("logout: %w", core.ErrForbidden)
	default:
		if err := s.repo.RevokeByID(ctx, stored.ID); err != nil && !errors.Is(err, core.ErrNotFound) {
			return fmt.Errorf("revoke token: %w", err)
		}
	}

	return s.RevokeAccessToken(ctx, claims.JTI, claims.ExpiresAt)
}

func (s *Service) LogoutAll(ctx context.Context, claims *middleware.AccessTokenClaims) error {
	if err := s.revokeAllSessions(ctx, claims.UserID); err != nil {
		return err
	}

	return s.RevokeAccessToken(ctx, claims.JTI, claims.ExpiresAt)
}

func (s *Service) RevokeAccessToken(ctx context.Context, jti string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if jti == "" || ttl <= 0 {
		return nil
	}

	if err := s.store.Put(ctx, blacklistPrefix+jti, "1", ttl); err != nil {
		return fmt.Errorf("blacklist token: %w", err)
	}

	return nil
}

func (s *Service) GetActiveSessions(ctx context.Context, userID int64) ([]SessionInfo, error) {
	tokens, err := s.repo.GetActiveSessionsForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get sessions: %w", err)
	}

	sessions := make([]SessionInfo, 0, len(tokens))
	for _, t := range tokens {
		sessions = append(sessions, SessionInfo{
			ID:        t.ID,
			UserAgent: t.UserAgent,
			IPAddress: t.IPAddress,
			CreatedAt: t.CreatedAt,
			ExpiresAt: t.ExpiresAt,
		})
	}

	return sessions, nil
}

func (s *Service) RevokeSession(ctx context.Context, userID int64, sessionID string) error {
	token, err := s.repo.FindByID(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("find session: %w", err)
	}

	if token.UserID != userID {
		return fmt.Errorf("revoke session: %w", core.ErrForbidden)
	}

	if err := s.repo.RevokeByID(ctx, sessionID); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}

	return nil
}

func (s *Service) ChangePassword(ctx context.Context, userID int64, req ChangePasswordRequest) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("get user: %w", err)
	}

	valid, err := core.VerifyPassword(req.CurrentPassword, user.PasswordHash)
	if err != nil {
		return fmt.Errorf("verify password: %w", err)
	}
	if !valid {
		return ErrInvalidCredentials
	}

	return s.setPassword(ctx, userID, req.NewPassword)
}

// VerifyEmail checks a 6-digit code against the stored hash. Verifying an
// already verified address succeeds without touching the code.
func (s *Service) VerifyEmail(ctx context.Context, req VerifyEmailRequest) (*UserResponse, error) {
	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, ErrInvalidCode
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	if user.EmailVerified {
		resp := toUserResponse(user)
		return &resp, nil
	}

	if user.VerificationToken == nil || user.VerificationTokenExpiry == nil {
		return nil, ErrInvalidCode
	}
	if !core.CompareTokenHash(req.Code, *user.VerificationToken) {
		return nil, ErrInvalidCode
	}
	if time.Now().After(*user.VerificationTokenExpiry) {
		return nil, ErrCodeExpired
	}

	if err := s.users.MarkEmailVerified(ctx, user.ID); err != nil {
		return nil, fmt.Errorf("mark verified: %w", err)
	}
	user.EmailVerified = true

	if err := s.notifier.SendWelcome(ctx, addressOf(user)); err != nil {
		s.logger.WarnContext(ctx, "welcome email failed", "user_id", user.ID, "error", err)
	}

	resp := toUserResponse(user)
	return &resp, nil
}

// ResendVerification issues a fresh code. The cooldown applies per address
// whether or not an account exists, so the response does not reveal it.
func (s *Service) ResendVerification(ctx context.Context, email string) error {
	email = normalizeEmail(email)

	fresh, err := s.store.PutIfAbsent(ctx, verifyCooldownPrefix+email, "1", s.cfg.ResendCooldown)
	if err != nil {
		return fmt.Errorf("resend cooldown: %w", err)
	}
	if !fresh {
		return ErrCooldown
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("get user: %w", err)
	}

	if user.EmailVerified {
		return nil
	}

	return s.issueVerificationCode(ctx, user)
}

// ForgotPassword never reports whether the address belongs to an account.
func (s *Service) ForgotPassword(ctx context.Context, email string) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, core.ErrNotFound) {
			s.logger.ErrorContext(ctx, "forgot password lookup failed", "error", err)
		}
		return
	}

	if !user.IsActive {
		return
	}

	token, err := core.GenerateSecureToken(resetTokenBytes)
	if err != nil {
		s.logger.ErrorContext(ctx, "reset token generation failed", "error", err)
		return
	}

	key := passwordResetPrefix + core.HashToken(token)
	if err := s.store.Put(ctx, key, strconv.FormatInt(user.ID, 10), s.cfg.PasswordResetTTL); err != nil {
		s.logger.ErrorContext(ctx, "reset token not stored", "user_id", user.ID, "error", err)
		return
	}

	if err := s.notifier.SendPasswordReset(ctx, addressOf(user), token, s.cfg.PasswordResetTTL); err != nil {
		s.logger.ErrorContext(ctx, "reset email failed", "user_id", user.ID, "error", err)
	}
}

func (s *Service) ResetPassword(ctx context.Context, req ResetPasswordRequest) error {
	raw, err := s.store.Take(ctx, passwordResetPrefix+core.HashToken(req.Token))
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return ErrInvalidResetToken
		}
		return fmt.Errorf("consume reset token: %w", err)
	}

	userID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return ErrInvalidResetToken
	}

	return s.setPassword(ctx, userID, req.NewPassword)
}

func (s *Service) GetCurrentUser(ctx context.Context, userID int64) (*UserResponse, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	resp := toUserResponse(user)
	return &resp, nil
}

func (s *Service) setPassword(ctx context.Context, userID int64, password string) error {
	hash, err := core.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := s.users.UpdatePassword(ctx, userID, hash); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	return s.revokeAllSessions(ctx, userID)
}

func (s *Service) revokeAllSessions(ctx context.Context, userID int64) error {
	if err := s.repo.RevokeAllForUser(ctx, userID); err != nil {
		return fmt.Errorf("revoke all tokens: %w", err)
	}

	if err := s.users.IncrementTokenVersion(ctx, userID); err != nil {
		return fmt.Errorf("increment token version: %w", err)
	}

	return nil
}

func (s *Service) revokeFamily(ctx context.Context, token *RefreshToken) {
	s.logger.WarnContext(ctx, "refresh token reuse, revoking family",
		"user_id", token.UserID,
		"family_id", token.FamilyID,
	)
	if err := s.repo.RevokeByFamilyID(ctx, token.FamilyID); err != nil {
		s.logger.ErrorContext(ctx, "revoke token family failed", "error", err)
	}
}

func (s *Service) issueVerificationCode(ctx context.Context, user *UserInfo) error {
	code, err := core.GenerateNumericCode(verificationCodeDigits)
	if err != nil {
		return err
	}

	expiresAt := time.Now().Add(s.cfg.VerificationCodeTTL)
	if err := s.users.SetVerificationToken(ctx, user.ID, core.HashToken(code), expiresAt); err != nil {
		return fmt.Errorf("store verification code: %w", err)
	}

	if err := s.notifier.SendVerificationCode(ctx, addressOf(user), code, s.cfg.VerificationCodeTTL); err != nil {
		return fmt.Errorf("send verification code: %w", err)
	}

	return nil
}

// startSession issues an access token and the first refresh token of a new
// family.
func (s *Service) startSession(
	ctx context.Context,
	user *UserInfo,
	userAgent, ipAddress string,
) (*AuthResponse, error) {
	access, err := s.jwt.CreateAccessToken(AccessTokenClaims{
		UserID:       user.ID,
		Role:         user.Role,
		TokenVersion: user.TokenVersion,
	})
	if err != nil {
		return nil, fmt.Errorf("create access token: %w", err)
	}

	refresh, err := s.jwt.NewRefreshToken()
	if err != nil {
		return nil, err
	}

	token := &RefreshToken{
		ID:        uuid.New().String(),
		UserID:    user.ID,
		TokenHash: refresh.Hash,
		FamilyID:  uuid.New().String(),
		ExpiresAt: refresh.ExpiresAt,
		UserAgent: userAgent,
		IPAddress: ipAddress,
	}

	if err := s.repo.Create(ctx, token); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}

	return s.authResponse(user, access, refresh.Token), nil
}

func (s *Service) authResponse(user *UserInfo, access *IssuedToken, refreshToken string) *AuthResponse {
	return &AuthResponse{
		User: toUserResponse(user),
		Tokens: TokenResponse{
			AccessToken:  access.Token,
			RefreshToken: refreshToken,
			TokenType:    "Bearer",
			ExpiresIn:    int(s.jwt.AccessTokenTTL() / time.Second),
			ExpiresAt:    access.ExpiresAt,
		},
	}
}

func addressOf(u *UserInfo) mail.Address {
	return mail.Address{Name: u.Name, Address: u.Email}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
