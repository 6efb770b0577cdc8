package middleware

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidateAccessToken(t *testing.T) {
	token, err := GenerateToken(42, "alice", "secret", 1)
	require.NoError(t, err)

	claims, err := parse(token, "secret")
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, tokenTypeAccess, claims.TokenType)
}

func TestValidateRefreshToken_RejectsAccessToken(t *testing.T) {
	token, err := GenerateToken(1, "bob", "secret", 1)
	require.NoError(t, err)

	_, err = ValidateRefreshToken(token, "secret")
	assert.Error(t, err)
}

func TestValidateRefreshToken_AcceptsRefreshToken(t *testing.T) {
	token, err := GenerateRefreshToken(1, "bob", "secret", 7)
	require.NoError(t, err)

	claims, err := ValidateRefreshToken(token, "secret")
	require.NoError(t, err)
	assert.Equal(t, int64(1), claims.UserID)
}

func TestParse_RejectsWrongSecret(t *testing.T) {
	token, err := GenerateToken(1, "bob", "secret", 1)
	require.NoError(t, err)

	_, err = parse(token, "wrong-secret")
	assert.Error(t, err)
}

func TestParse_RejectsExpiredToken(t *testing.T) {
	token, err := sign(1, "bob", tokenTypeAccess, "secret", -time.Minute)
	require.NoError(t, err)

	_, err = parse(token, "secret")
	assert.Error(t, err)
}
