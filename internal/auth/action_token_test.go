package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateActionToken(t *testing.T) {
	raw, hash, err := GenerateActionToken()
	assert.NoError(t, err)
	assert.Len(t, raw, 64)  // 32 bytes hex
	assert.Len(t, hash, 64) // sha256 hex
	assert.NotEqual(t, raw, hash)
	assert.Equal(t, hash, HashActionToken(raw))
}

func TestGenerateActionToken_Unique(t *testing.T) {
	rawA, hashA, err := GenerateActionToken()
	assert.NoError(t, err)
	rawB, hashB, err := GenerateActionToken()
	assert.NoError(t, err)

	assert.NotEqual(t, rawA, rawB)
	assert.NotEqual(t, hashA, hashB)

	// A token generated for one user never matches another user's digest.
	assert.NotEqual(t, hashB, HashActionToken(rawA))
}
