package utils

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"magazin-backend/config"
)

const (
	AccessTokenCookie  = "accessToken"
	RefreshTokenCookie = "refreshToken"
)

// TokenCookie builds an http-only, same-site-strict session cookie.
// Secure is set only in production so local development over plain
// HTTP keeps working.
func TokenCookie(name, value string, ttl time.Duration, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
	}
}

// SecureCookies reports whether session cookies should carry the Secure
// flag, which is tied to the deployment environment.
func SecureCookies() bool {
	return config.IsProduction()
}

// SetTokenCookies attaches the access/refresh token pair to the response.
func SetTokenCookies(c echo.Context, accessToken, refreshToken string) {
	secure := SecureCookies()
	c.SetCookie(TokenCookie(AccessTokenCookie, accessToken, AccessTokenTTL, secure))
	c.SetCookie(TokenCookie(RefreshTokenCookie, refreshToken, RefreshTokenTTL, secure))
}

// ClearTokenCookies expires both session cookies.
func ClearTokenCookies(c echo.Context) {
	secure := SecureCookies()
	c.SetCookie(expiredCookie(AccessTokenCookie, secure))
	c.SetCookie(expiredCookie(RefreshTokenCookie, secure))
}

func expiredCookie(name string, secure bool) *http.Cookie {
	cookie := TokenCookie(name, "", 0, secure)
	cookie.MaxAge = -1
	cookie.Expires = time.Unix(0, 0)
	return cookie
}
