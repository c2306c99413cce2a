package utils

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTokenCookieAttributes(t *testing.T) {
	cookie := TokenCookie(AccessTokenCookie, "token-value", time.Hour, false)

	assert.Equal(t, "accessToken", cookie.Name)
	assert.Equal(t, "token-value", cookie.Value)
	assert.Equal(t, "/", cookie.Path)
	assert.Equal(t, 3600, cookie.MaxAge)
	assert.True(t, cookie.HttpOnly)
	assert.False(t, cookie.Secure)
	assert.Equal(t, http.SameSiteStrictMode, cookie.SameSite)
}

func TestTokenCookieSecureInProduction(t *testing.T) {
	cookie := TokenCookie(RefreshTokenCookie, "v", RefreshTokenTTL, true)
	assert.True(t, cookie.Secure)
	assert.Equal(t, int(RefreshTokenTTL.Seconds()), cookie.MaxAge)
}

func TestExpiredCookieClears(t *testing.T) {
	cookie := expiredCookie(AccessTokenCookie, false)
	assert.Equal(t, -1, cookie.MaxAge)
	assert.Empty(t, cookie.Value)
	assert.True(t, cookie.Expires.Before(time.Now()))
}

func TestSecureCookiesFollowsEnvironment(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	assert.False(t, SecureCookies())

	t.Setenv("APP_ENV", "production")
	assert.True(t, SecureCookies())
}
