package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	t.Setenv("JWT_ACCESS_TOKEN", "access-secret")
	t.Setenv("JWT_REFRESH_TOKEN", "refresh-secret")

	token, err := GenerateAccessToken("64a0e1b2c3d4e5f601234567", true)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "64a0e1b2c3d4e5f601234567", claims.UserID)
	assert.True(t, claims.IsAdmin)
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	t.Setenv("JWT_ACCESS_TOKEN", "access-secret")
	t.Setenv("JWT_REFRESH_TOKEN", "refresh-secret")

	token, err := GenerateRefreshToken("64a0e1b2c3d4e5f601234567", false)
	require.NoError(t, err)

	claims, err := ValidateRefreshToken(token)
	require.NoError(t, err)
	assert.Equal(t, "64a0e1b2c3d4e5f601234567", claims.UserID)
	assert.False(t, claims.IsAdmin)
}

func TestTokensAreNotInterchangeable(t *testing.T) {
	t.Setenv("JWT_ACCESS_TOKEN", "access-secret")
	t.Setenv("JWT_REFRESH_TOKEN", "refresh-secret")

	refresh, err := GenerateRefreshToken("64a0e1b2c3d4e5f601234567", false)
	require.NoError(t, err)

	_, err = ValidateAccessToken(refresh)
	assert.Error(t, err, "refresh token must not validate as access token")
}

func TestExpiredTokenRejected(t *testing.T) {
	t.Setenv("JWT_ACCESS_TOKEN", "access-secret")

	token, err := generateToken("64a0e1b2c3d4e5f601234567", false, accessSecret(), -time.Minute)
	require.NoError(t, err)

	_, err = ValidateAccessToken(token)
	require.Error(t, err)
	assert.True(t, IsTokenExpired(err))
}

func TestTamperedTokenRejected(t *testing.T) {
	t.Setenv("JWT_ACCESS_TOKEN", "access-secret")

	token, err := GenerateAccessToken("64a0e1b2c3d4e5f601234567", false)
	require.NoError(t, err)

	_, err = ValidateAccessToken(token + "x")
	assert.Error(t, err)
	assert.False(t, IsTokenExpired(err))
}
