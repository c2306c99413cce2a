package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"magazin-backend/utils"
)

// Context keys set by Auth for downstream handlers.
const (
	UserIDKey  = "userID"
	IsAdminKey = "isAdmin"
)

// Auth reads the access token from its cookie, verifies it and puts the
// user id and admin flag on the request context. An expired token also
// clears the stale cookie, matching the behavior clients rely on to
// trigger a refresh.
func Auth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		cookie, err := c.Cookie(utils.AccessTokenCookie)
		if err != nil || cookie.Value == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "You need to log in")
		}

		claims, err := utils.ValidateAccessToken(cookie.Value)
		if err != nil {
			if utils.IsTokenExpired(err) {
				utils.ClearTokenCookies(c)
				return echo.NewHTTPError(http.StatusUnauthorized, "Token has expired")
			}
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
		}

		userID, err := primitive.ObjectIDFromHex(claims.UserID)
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
		}

		c.Set(UserIDKey, userID)
		c.Set(IsAdminKey, claims.IsAdmin)
		return next(c)
	}
}

// AdminOnly allows the request through only when the authenticated user
// carries the admin flag. Must run after Auth.
func AdminOnly(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		isAdmin, _ := c.Get(IsAdminKey).(bool)
		if !isAdmin {
			return echo.NewHTTPError(http.StatusForbidden, "Admins only")
		}
		return next(c)
	}
}
