package utils

import (
	"time"

	"github.com/golang-jwt/jwt"

	"magazin-backend/config"
)

const (
	// AccessTokenTTL is the lifetime of the short-lived session token.
	AccessTokenTTL = time.Hour
	// RefreshTokenTTL is the lifetime of the refresh token.
	RefreshTokenTTL = 24 * time.Hour
)

// TokenClaims identify a user session. The refresh token carries the same
// claims signed with a different secret.
type TokenClaims struct {
	UserID  string `json:"id"`
	IsAdmin bool   `json:"isAdmin"`
	jwt.StandardClaims
}

func GenerateAccessToken(userID string, isAdmin bool) (string, error) {
	return generateToken(userID, isAdmin, accessSecret(), AccessTokenTTL)
}

func GenerateRefreshToken(userID string, isAdmin bool) (string, error) {
	return generateToken(userID, isAdmin, refreshSecret(), RefreshTokenTTL)
}

func ValidateAccessToken(tokenString string) (*TokenClaims, error) {
	return validateToken(tokenString, accessSecret())
}

func ValidateRefreshToken(tokenString string) (*TokenClaims, error) {
	return validateToken(tokenString, refreshSecret())
}

// IsTokenExpired reports whether a validation error is specifically an
// expiry, so the auth middleware can clear the stale cookie.
func IsTokenExpired(err error) bool {
	ve, ok := err.(*jwt.ValidationError)
	return ok && ve.Errors&jwt.ValidationErrorExpired != 0
}

func generateToken(userID string, isAdmin bool, secret []byte, ttl time.Duration) (string, error) {
	claims := &TokenClaims{
		UserID:  userID,
		IsAdmin: isAdmin,
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: time.Now().Add(ttl).Unix(),
			IssuedAt:  time.Now().Unix(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

func validateToken(tokenString string, secret []byte) (*TokenClaims, error) {
	claims := &TokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, jwt.ErrSignatureInvalid
	}
	return claims, nil
}

func accessSecret() []byte {
	return []byte(config.GetEnv("JWT_ACCESS_TOKEN", ""))
}

func refreshSecret() []byte {
	return []byte(config.GetEnv("JWT_REFRESH_TOKEN", ""))
}
