package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateOneTimeCode(t *testing.T) {
	code, err := GenerateOneTimeCode()
	require.NoError(t, err)
	assert.Len(t, code, 6)
	assert.Regexp(t, `^\d{6}$`, code)
}

func TestGenerateOneTimeCodeVaries(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		code, err := GenerateOneTimeCode()
		require.NoError(t, err)
		seen[code] = true
	}
	// 20 draws from a million values colliding down to one code would
	// mean the generator is broken.
	assert.Greater(t, len(seen), 1)
}
