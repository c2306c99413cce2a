package handlers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "user@example.com", normalizeEmail("  User@Example.COM "))
	assert.Equal(t, "user@example.com", normalizeEmail("user@example.com"))
	assert.Equal(t, "", normalizeEmail("  "))
}

func TestIsValidEmail(t *testing.T) {
	assert.True(t, isValidEmail("user@example.com"))
	assert.False(t, isValidEmail("not-an-email"))
	assert.False(t, isValidEmail(""))
}

func TestPasswordHashRoundTrip(t *testing.T) {
	hashed, err := hashPassword("S3cret!pass")
	require.NoError(t, err)
	assert.NotEqual(t, "S3cret!pass", hashed, "password must never be stored in plaintext")

	assert.True(t, checkPassword(hashed, "S3cret!pass"))
	assert.False(t, checkPassword(hashed, "wrong"))
	assert.False(t, checkPassword(hashed, ""))
}

func TestCodeValid(t *testing.T) {
	now := time.Now()
	future := now.Add(time.Minute)
	past := now.Add(-time.Second)

	assert.True(t, codeValid("123456", &future, "123456", now))

	// Wrong code, even inside the window.
	assert.False(t, codeValid("123456", &future, "654321", now))
	assert.False(t, codeValid("123456", &future, "12345", now))

	// Right code after the window has passed.
	assert.False(t, codeValid("123456", &past, "123456", now))

	// No code stored at all.
	assert.False(t, codeValid("", &future, "", now))
	assert.False(t, codeValid("123456", nil, "123456", now))
}

func TestAllowAdminSignup(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	assert.True(t, allowAdminSignup("true"))
	assert.False(t, allowAdminSignup("false"))
	assert.False(t, allowAdminSignup(""))

	// Production admins are provisioned in the database, never via the
	// public register form.
	t.Setenv("APP_ENV", "production")
	assert.False(t, allowAdminSignup("true"))
}

func TestCodeWindows(t *testing.T) {
	assert.Equal(t, 3*time.Minute, resetCodeTTL)
	assert.Equal(t, 5*time.Minute, deleteCodeTTL)
}
