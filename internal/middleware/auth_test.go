package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"spendly/internal/auth"
	"spendly/internal/model"
)

// fakeUserRepo serves a single user. Only the methods the gate touches are
// meaningful; the rest satisfy the interface.
type fakeUserRepo struct {
	user    *model.User
	findErr error
}

func (f *fakeUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	if f.user != nil && f.user.ID == id {
		return f.user, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) Create(ctx context.Context, user *model.User) error { return nil }
func (f *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return nil, gorm.ErrRecordNotFound
}
func (f *fakeUserRepo) FindByPasswordResetHash(ctx context.Context, hash string, now time.Time) (*model.User, error) {
	return nil, gorm.ErrRecordNotFound
}
func (f *fakeUserRepo) FindByVerificationHash(ctx context.Context, hash string, now time.Time) (*model.User, error) {
	return nil, gorm.ErrRecordNotFound
}
func (f *fakeUserRepo) List(ctx context.Context) ([]model.User, error) { return nil, nil }
func (f *fakeUserRepo) UpdateResetToken(ctx context.Context, userID uuid.UUID, token model.PasswordResetToken) error {
	return nil
}
func (f *fakeUserRepo) UpdateVerificationToken(ctx context.Context, userID uuid.UUID, token model.EmailVerificationToken) error {
	return nil
}
func (f *fakeUserRepo) UpdatePassword(ctx context.Context, userID uuid.UUID, passwordHash string, changedAt time.Time) error {
	return nil
}
func (f *fakeUserRepo) MarkEmailVerified(ctx context.Context, userID uuid.UUID) error { return nil }

// fakeTokenStore is an in-memory revocation set.
type fakeTokenStore struct {
	revoked map[string]bool
}

func (f *fakeTokenStore) RevokeSession(ctx context.Context, tokenID string, ttl time.Duration) error {
	if f.revoked == nil {
		f.revoked = map[string]bool{}
	}
	f.revoked[tokenID] = true
	return nil
}

func (f *fakeTokenStore) IsSessionRevoked(ctx context.Context, tokenID string) (bool, error) {
	return f.revoked[tokenID], nil
}

type gateFixture struct {
	e          *echo.Echo
	jwtService *auth.JWTService
	repo       *fakeUserRepo
	tokens     *fakeTokenStore
}

func newGateFixture(t *testing.T) *gateFixture {
	t.Helper()
	jwtService := auth.NewJWTService("test-secret", time.Hour)
	repo := &fakeUserRepo{}
	tokens := &fakeTokenStore{}
	gate := NewGate(jwtService, tokens, repo, true)

	e := echo.New()
	secured := e.Group("", gate.SessionParser(), gate.Authenticate)
	secured.GET("/me", func(c echo.Context) error {
		user, ok := CurrentUser(c)
		if !ok {
			return echo.NewHTTPError(http.StatusInternalServerError, "no user in context")
		}
		return c.JSON(http.StatusOK, map[string]string{"email": user.Email})
	})
	admin := secured.Group("/admin", gate.RequireRoles(model.RoleAdmin))
	admin.GET("/users", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	return &gateFixture{e: e, jwtService: jwtService, repo: repo, tokens: tokens}
}

func (f *gateFixture) request(path, bearer string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if bearer != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	f.e.ServeHTTP(rec, req)
	return rec
}

func TestGate_MissingOrBadToken(t *testing.T) {
	f := newGateFixture(t)

	rec := f.request("/me", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.request("/me", "not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// token signed with another secret
	other := auth.NewJWTService("other-secret", time.Hour)
	token, _, err := other.GenerateSessionToken(uuid.New(), model.RoleUser)
	assert.NoError(t, err)
	rec = f.request("/me", token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGate_ValidToken(t *testing.T) {
	f := newGateFixture(t)
	f.repo.user = &model.User{ID: uuid.New(), Email: "a@b.com", Role: model.RoleUser}

	token, _, err := f.jwtService.GenerateSessionToken(f.repo.user.ID, f.repo.user.Role)
	assert.NoError(t, err)

	rec := f.request("/me", token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "a@b.com")
}

func TestGate_VanishedUserIsUnauthenticated(t *testing.T) {
	f := newGateFixture(t)
	// valid token for a user that no longer exists: 401, not 404
	token, _, err := f.jwtService.GenerateSessionToken(uuid.New(), model.RoleUser)
	assert.NoError(t, err)

	rec := f.request("/me", token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGate_UserStoreFailure(t *testing.T) {
	f := newGateFixture(t)
	f.repo.user = &model.User{ID: uuid.New(), Email: "a@b.com", Role: model.RoleUser}

	token, _, err := f.jwtService.GenerateSessionToken(f.repo.user.ID, f.repo.user.Role)
	assert.NoError(t, err)

	// An unreachable user store is an internal failure, not a bad credential.
	f.repo.findErr = errors.New("dial tcp 127.0.0.1:3306: connect: connection refused")
	rec := f.request("/me", token)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "INTERNAL_ERROR")
}

func TestGate_RevokedToken(t *testing.T) {
	f := newGateFixture(t)
	f.repo.user = &model.User{ID: uuid.New(), Email: "a@b.com", Role: model.RoleUser}

	token, tokenID, err := f.jwtService.GenerateSessionToken(f.repo.user.ID, f.repo.user.Role)
	assert.NoError(t, err)

	rec := f.request("/me", token)
	assert.Equal(t, http.StatusOK, rec.Code)

	assert.NoError(t, f.tokens.RevokeSession(context.Background(), tokenID, time.Hour))
	rec = f.request("/me", token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGate_StaleTokenAfterPasswordChange(t *testing.T) {
	f := newGateFixture(t)
	f.repo.user = &model.User{ID: uuid.New(), Email: "a@b.com", Role: model.RoleUser}

	token, _, err := f.jwtService.GenerateSessionToken(f.repo.user.ID, f.repo.user.Role)
	assert.NoError(t, err)

	rec := f.request("/me", token)
	assert.Equal(t, http.StatusOK, rec.Code)

	// password changed after the token was issued
	changed := time.Now().Add(2 * time.Second)
	f.repo.user.PasswordChangedAt = &changed
	rec = f.request("/me", token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "STALE_TOKEN")
}

func TestGate_RoleRestriction(t *testing.T) {
	f := newGateFixture(t)

	f.repo.user = &model.User{ID: uuid.New(), Email: "a@b.com", Role: model.RoleUser}
	token, _, err := f.jwtService.GenerateSessionToken(f.repo.user.ID, f.repo.user.Role)
	assert.NoError(t, err)

	rec := f.request("/admin/users", token)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	f.repo.user = &model.User{ID: uuid.New(), Email: "root@b.com", Role: model.RoleAdmin}
	token, _, err = f.jwtService.GenerateSessionToken(f.repo.user.ID, f.repo.user.Role)
	assert.NoError(t, err)

	rec = f.request("/admin/users", token)
	assert.Equal(t, http.StatusOK, rec.Code)
}
