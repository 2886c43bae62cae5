package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"spendly/internal/model"
)

func TestJWTService_RoundTrip(t *testing.T) {
	service := NewJWTService("test-secret", time.Hour)
	userID := uuid.New()

	token, tokenID, err := service.GenerateSessionToken(userID, model.RoleUser)
	assert.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.NotEmpty(t, tokenID)

	claims, err := service.ValidateToken(token)
	assert.NoError(t, err)
	assert.Equal(t, userID.String(), claims.UserID)
	assert.Equal(t, model.RoleUser, claims.Role)
	assert.Equal(t, tokenID, claims.ID)
	assert.False(t, claims.IssuedAt.Time.After(time.Now()))
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, 5*time.Second)
}

func TestJWTService_WrongSecret(t *testing.T) {
	issuer := NewJWTService("secret-a", time.Hour)
	verifier := NewJWTService("secret-b", time.Hour)

	token, _, err := issuer.GenerateSessionToken(uuid.New(), model.RoleUser)
	assert.NoError(t, err)

	_, err = verifier.ValidateToken(token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestJWTService_Expired(t *testing.T) {
	service := NewJWTService("test-secret", -time.Minute)

	token, _, err := service.GenerateSessionToken(uuid.New(), model.RoleUser)
	assert.NoError(t, err)

	_, err = service.ValidateToken(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestJWTService_Garbage(t *testing.T) {
	service := NewJWTService("test-secret", time.Hour)

	_, err := service.ValidateToken("not-a-jwt")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}
