package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestUser_PasswordChangedAfter(t *testing.T) {
	issued := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	user := &User{}
	assert.False(t, user.PasswordChangedAfter(issued), "never changed")

	changed := issued.Add(-time.Minute)
	user.PasswordChangedAt = &changed
	assert.False(t, user.PasswordChangedAfter(issued), "changed before issue")

	changed = issued.Add(time.Minute)
	assert.True(t, user.PasswordChangedAfter(issued), "changed after issue")

	// same second as issuance does not count as after; JWT iat has second
	// precision, so sub-second differences must not invalidate the token
	changed = issued.Add(500 * time.Millisecond)
	assert.False(t, user.PasswordChangedAfter(issued))
}

func TestTokenTypes_SetAndClear(t *testing.T) {
	expires := time.Now().Add(10 * time.Minute)

	var reset PasswordResetToken
	reset.Set("digest", expires)
	assert.Equal(t, "digest", *reset.Hash)
	assert.Equal(t, expires, *reset.ExpiresAt)
	reset.Clear()
	assert.Nil(t, reset.Hash)
	assert.Nil(t, reset.ExpiresAt)

	var verify EmailVerificationToken
	verify.Set("digest", expires)
	assert.Equal(t, "digest", *verify.Hash)
	verify.Clear()
	assert.Nil(t, verify.Hash)
	assert.Nil(t, verify.ExpiresAt)
}
