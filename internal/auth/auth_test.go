// AngelaMos | 2026
// auth_test.go

package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/mail"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edustack/edustack-api/internal/config"
	"github.com/edustack/edustack-api/internal/core"
	"github.com/edustack/edustack-api/internal/middleware"
)

type memoryTokens struct {
	mu     sync.Mutex
	tokens map[string]*RefreshToken
}

func newMemoryTokens() *memoryTokens {
	return &memoryTokens{tokens: map[string]*RefreshToken{}}
}

func (m *memoryTokens) Create(_ context.Context, token *RefreshToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	token.CreatedAt = time.Now()
	cp := *token
	m.tokens[token.ID] = &cp
	return nil
}

func (m *memoryTokens) Rotate(_ context.Context, usedID string, next *RefreshToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	used, ok := m.tokens[usedID]
	if !ok || used.IsUsed || used.IsRevoked() {
		return core.ErrConflict
	}
	now := time.Now()
	used.IsUsed = true
	used.UsedAt = &now
	used.ReplacedByID = &next.ID
	next.FamilyID = used.FamilyID
	next.CreatedAt = now
	cp := *next
	m.tokens[next.ID] = &cp
	return nil
}

func (m *memoryTokens) find(match func(*RefreshToken) bool) (*RefreshToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.tokens {
		if match(t) {
			cp := *t
			return &cp, nil
		}
	}
	return nil, core.ErrNotFound
}

func (m *memoryTokens) FindByHash(_ context.Context, hash string) (*RefreshToken, error) {
	return m.find(func(t *RefreshToken) bool { return t.TokenHash == hash })
}

func (m *memoryTokens) FindByID(_ context.Context, id string) (*RefreshToken, error) {
	return m.find(func(t *RefreshToken) bool { return t.ID == id })
}

func (m *memoryTokens) revokeWhere(match func(*RefreshToken) bool) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	n := 0
	for _, t := range m.tokens {
		if match(t) && t.RevokedAt == nil {
			t.RevokedAt = &now
			n++
		}
	}
	return n
}

func (m *memoryTokens) RevokeByID(_ context.Context, id string) error {
	if m.revokeWhere(func(t *RefreshToken) bool { return t.ID == id }) == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (m *memoryTokens) RevokeByFamilyID(_ context.Context, familyID string) error {
	m.revokeWhere(func(t *RefreshToken) bool { return t.FamilyID == familyID })
	return nil
}

func (m *memoryTokens) RevokeAllForUser(_ context.Context, userID int64) error {
	m.revokeWhere(func(t *RefreshToken) bool { return t.UserID == userID })
	return nil
}

func (m *memoryTokens) GetActiveSessionsForUser(_ context.Context, userID int64) ([]RefreshToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []RefreshToken{}
	for _, t := range m.tokens {
		if t.UserID == userID && t.IsValid() {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (m *memoryTokens) DeleteExpired(_ context.Context, _ time.Duration) (int64, error) {
	return 0, nil
}

type memoryUsers struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]*UserInfo
}

func newMemoryUsers() *memoryUsers {
	return &memoryUsers{users: map[int64]*UserInfo{}}
}

func (m *memoryUsers) GetByEmail(_ context.Context, email string) (*UserInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == strings.ToLower(strings.TrimSpace(email)) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, core.ErrNotFound
}

func (m *memoryUsers) GetByID(_ context.Context, id int64) (*UserInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memoryUsers) Create(_ context.Context, email, hash, name string) (*UserInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	email = strings.ToLower(email)
	for _, u := range m.users {
		if u.Email == email {
			return nil, core.ErrDuplicateKey
		}
	}
	m.nextID++
	u := &UserInfo{
		ID:           m.nextID,
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		Role:         core.RoleStudent,
		IsActive:     true,
		CreatedAt:    time.Now(),
	}
	m.users[u.ID] = u
	cp := *u
	return &cp, nil
}

func (m *memoryUsers) update(id int64, fn func(*UserInfo)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return core.ErrNotFound
	}
	fn(u)
	return nil
}

func (m *memoryUsers) IncrementTokenVersion(_ context.Context, id int64) error {
	return m.update(id, func(u *UserInfo) { u.TokenVersion++ })
}

func (m *memoryUsers) UpdatePassword(_ context.Context, id int64, hash string) error {
	return m.update(id, func(u *UserInfo) { u.PasswordHash = hash })
}

func (m *memoryUsers) SetVerificationToken(_ context.Context, id int64, hash string, exp time.Time) error {
	return m.update(id, func(u *UserInfo) {
		u.VerificationToken = &hash
		u.VerificationTokenExpiry = &exp
	})
}

func (m *memoryUsers) MarkEmailVerified(_ context.Context, id int64) error {
	return m.update(id, func(u *UserInfo) {
		u.EmailVerified = true
		u.VerificationToken = nil
		u.VerificationTokenExpiry = nil
	})
}

type recordingNotifier struct {
	mu         sync.Mutex
	codes      map[string]string
	resets     map[string]string
	welcomed   []string
	failVerify bool
}

func newRecordingNotifier() *recordingNotifier {
	return &recordingNotifier{codes: map[string]string{}, resets: map[string]string{}}
}

func (n *recordingNotifier) SendVerificationCode(_ context.Context, to mail.Address, code string, _ time.Duration) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.failVerify {
		return assert.AnError
	}
	n.codes[to.Address] = code
	return nil
}

func (n *recordingNotifier) SendPasswordReset(_ context.Context, to mail.Address, token string, _ time.Duration) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.resets[to.Address] = token
	return nil
}

func (n *recordingNotifier) SendWelcome(_ context.Context, to mail.Address) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.welcomed = append(n.welcomed, to.Address)
	return nil
}

type fixture struct {
	svc      *Service
	tokens   *memoryTokens
	users    *memoryUsers
	notifier *recordingNotifier
	redis    *miniredis.Miniredis
	jwt      *JWTManager
}

func newJWTManager(t *testing.T, ttl time.Duration) *JWTManager {
	t.Helper()
	dir := t.TempDir()
	priv := filepath.Join(dir, "private.pem")
	pub := filepath.Join(dir, "public.pem")
	require.NoError(t, GenerateKeyPair(priv, pub))

	m, err := NewJWTManager(config.JWTConfig{
		PrivateKeyPath:     priv,
		PublicKeyPath:      pub,
		AccessTokenExpire:  ttl,
		RefreshTokenExpire: time.Hour,
		Issuer:             "edustack",
		Audience:           "edustack-api",
	})
	require.NoError(t, err)
	return m
}

func newFixture(t *testing.T, requireVerification bool) *fixture {
	t.Helper()
	mr := miniredis.RunT(t)
	store := &core.Redis{Client: redis.NewClient(&redis.Options{Addr: mr.Addr()})}
	t.Cleanup(func() { _ = store.Close() })

	f := &fixture{
		tokens:   newMemoryTokens(),
		users:    newMemoryUsers(),
		notifier: newRecordingNotifier(),
		redis:    mr,
		jwt:      newJWTManager(t, 15*time.Minute),
	}
	f.svc = NewService(f.tokens, f.jwt, f.users, store, f.notifier, config.AuthConfig{
		RequireEmailVerification: requireVerification,
		VerificationCodeTTL:      10 * time.Minute,
		PasswordResetTTL:         time.Hour,
		ResendCooldown:           time.Minute,
	}, nil)
	return f
}

var ada = RegisterRequest{Name: "Ada", Email: "ada@example.com", Password: "correct horse"}

func (f *fixture) registerVerified(t *testing.T) *AuthResponse {
	t.Helper()
	ctx := context.Background()
	_, err := f.svc.Register(ctx, ada, "test", "127.0.0.1")
	require.NoError(t, err)
	_, err = f.svc.VerifyEmail(ctx, VerifyEmailRequest{Email: ada.Email, Code: f.notifier.codes[ada.Email]})
	require.NoError(t, err)
	resp, err := f.svc.Login(ctx, LoginRequest{Email: ada.Email, Password: ada.Password}, "test", "127.0.0.1")
	require.NoError(t, err)
	return resp
}

func TestJWTRoundTrip(t *testing.T) {
	m := newJWTManager(t, 15*time.Minute)

	issued, err := m.CreateAccessToken(AccessTokenClaims{UserID: 42, Role: core.RoleInstructor, TokenVersion: 3})
	require.NoError(t, err)

	claims, err := m.VerifyAccessToken(context.Background(), issued.Token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, core.RoleInstructor, claims.Role)
	assert.Equal(t, 3, claims.TokenVersion)
	assert.Equal(t, issued.JTI, claims.JTI)
	assert.WithinDuration(t, issued.ExpiresAt, claims.ExpiresAt, time.Second)
	assert.NotEmpty(t, m.KeyID())
}

func TestJWTRejectsForeignAndExpiredTokens(t *testing.T) {
	m := newJWTManager(t, 15*time.Minute)
	other := newJWTManager(t, 15*time.Minute)

	issued, err := other.CreateAccessToken(AccessTokenClaims{UserID: 1, Role: core.RoleStudent})
	require.NoError(t, err)
	_, err = m.VerifyAccessToken(context.Background(), issued.Token)
	assert.ErrorIs(t, err, core.ErrTokenInvalid)

	_, err = m.VerifyAccessToken(context.Background(), "not-a-jwt")
	assert.ErrorIs(t, err, core.ErrTokenInvalid)

	expired := newJWTManager(t, -time.Minute)
	issued, err = expired.CreateAccessToken(AccessTokenClaims{UserID: 1, Role: core.RoleStudent})
	require.NoError(t, err)
	_, err = expired.VerifyAccessToken(context.Background(), issued.Token)
	assert.ErrorIs(t, err, core.ErrTokenExpired)
}

func TestRegisterLoginRequiresVerification(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()

	reg, err := f.svc.Register(ctx, ada, "test", "127.0.0.1")
	require.NoError(t, err)
	assert.True(t, reg.VerificationRequired)
	assert.Nil(t, reg.Tokens)
	assert.Equal(t, core.RoleStudent, reg.User.Role)

	code := f.notifier.codes[ada.Email]
	require.Len(t, code, 6)

	login := LoginRequest{Email: ada.Email, Password: ada.Password}
	_, err = f.svc.Login(ctx, login, "test", "127.0.0.1")
	assert.ErrorIs(t, err, ErrEmailNotVerified)

	verified, err := f.svc.VerifyEmail(ctx, VerifyEmailRequest{Email: ada.Email, Code: code})
	require.NoError(t, err)
	assert.True(t, verified.EmailVerified)
	assert.Equal(t, []string{ada.Email}, f.notifier.welcomed)

	resp, err := f.svc.Login(ctx, login, "test", "127.0.0.1")
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Tokens.AccessToken)
	assert.NotEmpty(t, resp.Tokens.RefreshToken)
	assert.Equal(t, 900, resp.Tokens.ExpiresIn)

	again, err := f.svc.VerifyEmail(ctx, VerifyEmailRequest{Email: ada.Email, Code: "000000"})
	require.NoError(t, err, "verifying twice is idempotent")
	assert.True(t, again.EmailVerified)
}

func TestRegisterWithoutVerificationIssuesTokens(t *testing.T) {
	f := newFixture(t, false)

	reg, err := f.svc.Register(context.Background(), ada, "test", "127.0.0.1")
	require.NoError(t, err)
	assert.False(t, reg.VerificationRequired)
	require.NotNil(t, reg.Tokens)
	assert.NotEmpty(t, reg.Tokens.AccessToken)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()

	_, err := f.svc.Register(ctx, ada, "", "")
	require.NoError(t, err)

	dup := ada
	dup.Email = "ADA@example.com"
	_, err = f.svc.Register(ctx, dup, "", "")
	assert.ErrorIs(t, err, ErrEmailExists)
}

func TestRegisterSucceedsWhenEmailFails(t *testing.T) {
	f := newFixture(t, true)
	f.notifier.failVerify = true

	_, err := f.svc.Register(context.Background(), ada, "", "")
	assert.NoError(t, err)
}

func TestVerifyEmailRejectsBadCodes(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	_, err := f.svc.Register(ctx, ada, "", "")
	require.NoError(t, err)

	code := f.notifier.codes[ada.Email]
	wrong := "000000"
	if code == wrong {
		wrong = "111111"
	}

	_, err = f.svc.VerifyEmail(ctx, VerifyEmailRequest{Email: ada.Email, Code: wrong})
	assert.ErrorIs(t, err, ErrInvalidCode)

	_, err = f.svc.VerifyEmail(ctx, VerifyEmailRequest{Email: "nobody@example.com", Code: code})
	assert.ErrorIs(t, err, ErrInvalidCode)

	past := time.Now().Add(-time.Minute)
	require.NoError(t, f.users.update(1, func(u *UserInfo) { u.VerificationTokenExpiry = &past }))
	_, err = f.svc.VerifyEmail(ctx, VerifyEmailRequest{Email: ada.Email, Code: code})
	assert.ErrorIs(t, err, ErrCodeExpired)
}

func TestLoginFailures(t *testing.T) {
	f := newFixture(t, true)
	f.registerVerified(t)
	ctx := context.Background()

	_, err := f.svc.Login(ctx, LoginRequest{Email: ada.Email, Password: "wrong password"}, "", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = f.svc.Login(ctx, LoginRequest{Email: "ghost@example.com", Password: "whatever1"}, "", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	require.NoError(t, f.users.update(1, func(u *UserInfo) { u.IsActive = false }))
	_, err = f.svc.Login(ctx, LoginRequest{Email: ada.Email, Password: ada.Password}, "", "")
	assert.ErrorIs(t, err, ErrAccountDeactivated)
}

func TestRefreshRotationAndReuse(t *testing.T) {
	f := newFixture(t, true)
	first := f.registerVerified(t)
	ctx := context.Background()

	second, err := f.svc.Refresh(ctx, first.Tokens.RefreshToken, "", "")
	require.NoError(t, err)
	assert.NotEqual(t, first.Tokens.RefreshToken, second.Tokens.RefreshToken)

	_, err = f.svc.Refresh(ctx, first.Tokens.RefreshToken, "", "")
	assert.ErrorIs(t, err, ErrTokenReuse)

	_, err = f.svc.Refresh(ctx, second.Tokens.RefreshToken, "", "")
	assert.ErrorIs(t, err, core.ErrTokenRevoked, "reuse revokes the whole family")

	_, err = f.svc.Refresh(ctx, "unknown", "", "")
	assert.ErrorIs(t, err, core.ErrTokenInvalid)
}

func TestRefreshCarriesCurrentRole(t *testing.T) {
	f := newFixture(t, true)
	first := f.registerVerified(t)
	ctx := context.Background()

	require.NoError(t, f.users.update(1, func(u *UserInfo) { u.Role = core.RoleInstructor }))

	next, err := f.svc.Refresh(ctx, first.Tokens.RefreshToken, "", "")
	require.NoError(t, err)
	assert.Equal(t, core.RoleInstructor, next.User.Role)

	claims, err := f.svc.VerifyAccessToken(ctx, next.Tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, core.RoleInstructor, claims.Role)
}

func TestLogoutBlacklistsAccessToken(t *testing.T) {
	f := newFixture(t, true)
	resp := f.registerVerified(t)
	ctx := context.Background()

	claims, err := f.svc.VerifyAccessToken(ctx, resp.Tokens.AccessToken)
	require.NoError(t, err)

	require.NoError(t, f.svc.Logout(ctx, claims, resp.Tokens.RefreshToken))

	_, err = f.svc.VerifyAccessToken(ctx, resp.Tokens.AccessToken)
	assert.ErrorIs(t, err, core.ErrTokenRevoked)
	assert.True(t, f.redis.Exists(blacklistPrefix+claims.JTI))

	_, err = f.svc.Refresh(ctx, resp.Tokens.RefreshToken, "", "")
	assert.ErrorIs(t, err, core.ErrTokenRevoked)
}

func TestLogoutOtherUsersToken(t *testing.T) {
	f := newFixture(t, true)
	resp := f.registerVerified(t)

	intruder := &middleware.AccessTokenClaims{UserID: 99, JTI: "x", ExpiresAt: time.Now().Add(time.Minute)}
	err := f.svc.Logout(context.Background(), intruder, resp.Tokens.RefreshToken)
	assert.ErrorIs(t, err, core.ErrForbidden)
}

func TestBlacklistFailsOpen(t *testing.T) {
	f := newFixture(t, true)
	resp := f.registerVerified(t)

	f.redis.Close()

	_, err := f.svc.VerifyAccessToken(context.Background(), resp.Tokens.AccessToken)
	assert.NoError(t, err)
}

func TestSessions(t *testing.T) {
	f := newFixture(t, true)
	resp := f.registerVerified(t)
	ctx := context.Background()

	sessions, err := f.svc.GetActiveSessions(ctx, 1)
	require.NoError(t, err)
	require.Len(t, sessions, 1)

	assert.ErrorIs(t, f.svc.RevokeSession(ctx, 2, sessions[0].ID), core.ErrForbidden)
	require.NoError(t, f.svc.RevokeSession(ctx, 1, sessions[0].ID))

	_, err = f.svc.Refresh(ctx, resp.Tokens.RefreshToken, "", "")
	assert.ErrorIs(t, err, core.ErrTokenRevoked)
}

func TestChangePassword(t *testing.T) {
	f := newFixture(t, true)
	f.registerVerified(t)
	ctx := context.Background()

	err := f.svc.ChangePassword(ctx, 1, ChangePasswordRequest{CurrentPassword: "nope", NewPassword: "brand new pass"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	require.NoError(t, f.svc.ChangePassword(ctx, 1, ChangePasswordRequest{
		CurrentPassword: ada.Password,
		NewPassword:     "brand new pass",
	}))

	sessions, err := f.svc.GetActiveSessions(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, sessions)

	_, err = f.svc.Login(ctx, LoginRequest{Email: ada.Email, Password: "brand new pass"}, "", "")
	assert.NoError(t, err)
}

func TestResendVerificationCooldown(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	_, err := f.svc.Register(ctx, ada, "", "")
	require.NoError(t, err)

	require.NoError(t, f.svc.ResendVerification(ctx, ada.Email))
	assert.ErrorIs(t, f.svc.ResendVerification(ctx, ada.Email), ErrCooldown)

	f.redis.FastForward(time.Minute + time.Second)
	require.NoError(t, f.svc.ResendVerification(ctx, ada.Email))

	_, err = f.svc.VerifyEmail(ctx, VerifyEmailRequest{Email: ada.Email, Code: f.notifier.codes[ada.Email]})
	assert.NoError(t, err)

	assert.NoError(t, f.svc.ResendVerification(ctx, "nobody@example.com"))
}

func TestResendVerificationReportsDeliveryFailure(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	_, err := f.svc.Register(ctx, ada, "", "")
	require.NoError(t, err)

	f.notifier.failVerify = true
	assert.Error(t, f.svc.ResendVerification(ctx, ada.Email))
}

func TestPasswordResetFlow(t *testing.T) {
	f := newFixture(t, true)
	first := f.registerVerified(t)
	ctx := context.Background()

	f.svc.ForgotPassword(ctx, "nobody@example.com")
	assert.Empty(t, f.notifier.resets)

	f.svc.ForgotPassword(ctx, ada.Email)
	token := f.notifier.resets[ada.Email]
	require.NotEmpty(t, token)

	reset := ResetPasswordRequest{Token: token, NewPassword: "reset password 1"}
	require.NoError(t, f.svc.ResetPassword(ctx, reset))
	assert.ErrorIs(t, f.svc.ResetPassword(ctx, reset), ErrInvalidResetToken, "tokens are single use")

	_, err := f.svc.Refresh(ctx, first.Tokens.RefreshToken, "", "")
	assert.ErrorIs(t, err, core.ErrTokenRevoked)

	_, err = f.svc.Login(ctx, LoginRequest{Email: ada.Email, Password: "reset password 1"}, "", "")
	assert.NoError(t, err)
}

func TestPasswordResetTokenExpires(t *testing.T) {
	f := newFixture(t, true)
	f.registerVerified(t)
	ctx := context.Background()

	f.svc.ForgotPassword(ctx, ada.Email)
	f.redis.FastForward(time.Hour + time.Second)

	err := f.svc.ResetPassword(ctx, ResetPasswordRequest{
		Token:       f.notifier.resets[ada.Email],
		NewPassword: "reset password 1",
	})
	assert.ErrorIs(t, err, ErrInvalidResetToken)
}

func newTestRouter(f *fixture) http.Handler {
	r := chi.NewRouter()
	r.Route("/auth", func(r chi.Router) {
		NewHandler(f.svc).RegisterRoutes(r, middleware.NewGuards(f.svc))
	})
	return r
}

func doJSON(t *testing.T, h http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body core.Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	require.NotNil(t, body.Error)
	return body.Error.Code
}

func TestHandlerRegisterAndLogin(t *testing.T) {
	f := newFixture(t, true)
	h := newTestRouter(f)

	rec := doJSON(t, h, http.MethodPost, "/auth/register", "", ada)
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/auth/register", "", ada)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "DUPLICATE", errorCode(t, rec))

	rec = doJSON(t, h, http.MethodPost, "/auth/register", "", RegisterRequest{Name: "x", Email: "bad", Password: "short"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", errorCode(t, rec))

	login := LoginRequest{Email: ada.Email, Password: ada.Password}
	rec = doJSON(t, h, http.MethodPost, "/auth/login", "", login)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "EMAIL_NOT_VERIFIED", errorCode(t, rec))

	rec = doJSON(t, h, http.MethodPost, "/auth/verify-email", "",
		VerifyEmailRequest{Email: ada.Email, Code: f.notifier.codes[ada.Email]})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/auth/login", "", login)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data AuthResponse `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))

	rec = doJSON(t, h, http.MethodGet, "/auth/me", body.Data.Tokens.AccessToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/auth/logout", body.Data.Tokens.AccessToken,
		RefreshRequest{RefreshToken: body.Data.Tokens.RefreshToken})
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/auth/me", body.Data.Tokens.AccessToken, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "TOKEN_REVOKED", errorCode(t, rec))
}

func TestHandlerErrors(t *testing.T) {
	f := newFixture(t, true)
	h := newTestRouter(f)

	rec := doJSON(t, h, http.MethodPost, "/auth/login", "",
		LoginRequest{Email: "ghost@example.com", Password: "whatever1"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "UNAUTHORIZED", errorCode(t, rec))

	rec = doJSON(t, h, http.MethodPost, "/auth/reset-password", "",
		ResetPasswordRequest{Token: "nope", NewPassword: "long enough"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/auth/forgot-password", "", EmailRequest{Email: "ghost@example.com"})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/auth/resend-verification", "", EmailRequest{Email: "ghost@example.com"})
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = doJSON(t, h, http.MethodPost, "/auth/resend-verification", "", EmailRequest{Email: "ghost@example.com"})
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/auth/refresh", "", RefreshRequest{RefreshToken: "unknown"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "TOKEN_INVALID", errorCode(t, rec))
}

func TestHandlerRevokeSessionValidatesID(t *testing.T) {
	f := newFixture(t, true)
	resp := f.registerVerified(t)
	h := newTestRouter(f)

	rec := doJSON(t, h, http.MethodDelete, "/auth/sessions/not-a-uuid", resp.Tokens.AccessToken, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, h, http.MethodDelete, "/auth/sessions/00000000-0000-0000-0000-000000000000",
		resp.Tokens.AccessToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
