package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"magazin-backend/utils"
)

func signAccessToken(t *testing.T, userID string, isAdmin bool, ttl time.Duration) string {
	t.Helper()

	claims := &utils.TokenClaims{
		UserID:  userID,
		IsAdmin: isAdmin,
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: time.Now().Add(ttl).Unix(),
			IssuedAt:  time.Now().Unix(),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("access-secret"))
	require.NoError(t, err)
	return token
}

func authRequest(token string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if token != "" {
		req.AddCookie(&http.Cookie{Name: utils.AccessTokenCookie, Value: token})
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestAuthSetsUserContext(t *testing.T) {
	t.Setenv("JWT_ACCESS_TOKEN", "access-secret")

	userID := primitive.NewObjectID()
	c, _ := authRequest(signAccessToken(t, userID.Hex(), true, time.Hour))

	called := false
	next := func(c echo.Context) error {
		called = true
		assert.Equal(t, userID, c.Get(UserIDKey))
		assert.Equal(t, true, c.Get(IsAdminKey))
		return nil
	}

	require.NoError(t, Auth(next)(c))
	assert.True(t, called)
}

func TestAuthRejectsMissingCookie(t *testing.T) {
	t.Setenv("JWT_ACCESS_TOKEN", "access-secret")

	c, _ := authRequest("")
	err := Auth(func(echo.Context) error { return nil })(c)

	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
}

func TestAuthRejectsExpiredToken(t *testing.T) {
	t.Setenv("JWT_ACCESS_TOKEN", "access-secret")

	c, rec := authRequest(signAccessToken(t, primitive.NewObjectID().Hex(), false, -time.Minute))
	err := Auth(func(echo.Context) error { return nil })(c)

	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
	assert.Equal(t, "Token has expired", httpErr.Message)

	// Stale cookies are cleared so the client retries with a refresh.
	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)
	for _, cookie := range cookies {
		assert.Equal(t, -1, cookie.MaxAge)
	}
}

func TestAuthRejectsForgedToken(t *testing.T) {
	t.Setenv("JWT_ACCESS_TOKEN", "access-secret")

	claims := &utils.TokenClaims{
		UserID: primitive.NewObjectID().Hex(),
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: time.Now().Add(time.Hour).Unix(),
		},
	}
	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("wrong-secret"))
	require.NoError(t, err)

	c, _ := authRequest(forged)
	handlerErr := Auth(func(echo.Context) error { return nil })(c)

	var httpErr *echo.HTTPError
	require.ErrorAs(t, handlerErr, &httpErr)
	assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
}

func TestAdminOnly(t *testing.T) {
	e := echo.New()

	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	c.Set(IsAdminKey, true)
	assert.NoError(t, AdminOnly(func(echo.Context) error { return nil })(c))

	c = e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	c.Set(IsAdminKey, false)
	err := AdminOnly(func(echo.Context) error { return nil })(c)

	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusForbidden, httpErr.Code)

	// Unset flag (Auth never ran) is treated the same as non-admin.
	c = e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	err = AdminOnly(func(echo.Context) error { return nil })(c)
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusForbidden, httpErr.Code)
}
