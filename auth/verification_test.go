package auth_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kavyakala/kavyakala/auth"
)

func TestGenerateVerificationToken(t *testing.T) {
	token, err := auth.GenerateVerificationToken()
	require.NoError(t, err)

	// 32 random bytes hex encoded
	assert.Len(t, token.Raw, 64)
	assert.Len(t, token.Hash, 64)
	assert.NotEqual(t, token.Raw, token.Hash)
	assert.Equal(t, auth.HashVerificationToken(token.Raw), token.Hash)

	remaining := time.Until(token.ExpiresAt)
	assert.Greater(t, remaining, 23*time.Hour)
	assert.LessOrEqual(t, remaining, auth.VerificationTokenTTL)
}

func TestGenerateVerificationTokenIsUnique(t *testing.T) {
	a, err := auth.GenerateVerificationToken()
	require.NoError(t, err)

	b, err := auth.GenerateVerificationToken()
	require.NoError(t, err)

	assert.NotEqual(t, a.Raw, b.Raw)
	assert.NotEqual(t, a.Hash, b.Hash)
}

func TestHashVerificationTokenIsDeterministic(t *testing.T) {
	assert.Equal(t,
		auth.HashVerificationToken("some-raw-token"),
		auth.HashVerificationToken("some-raw-token"),
	)
	assert.NotEqual(t,
		auth.HashVerificationToken("some-raw-token"),
		auth.HashVerificationToken("another-raw-token"),
	)
}
