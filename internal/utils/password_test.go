package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("my-password1", 4)
	require.NoError(t, err)
	require.NotEmpty(t, hash)

	assert.True(t, VerifyPassword(hash, "my-password1"))
	assert.False(t, VerifyPassword(hash, "my-password2"))
	assert.False(t, VerifyPassword("not-a-hash", "my-password1"))
}

func TestHashPassword_OutOfRangeCostFallsBack(t *testing.T) {
	hash, err := HashPassword("my-password1", 99)
	require.NoError(t, err)
	assert.True(t, VerifyPassword(hash, "my-password1"))
}

func TestHashPassword_SamePasswordDifferentHashes(t *testing.T) {
	h1, err := HashPassword("my-password1", 4)
	require.NoError(t, err)
	h2, err := HashPassword("my-password1", 4)
	require.NoError(t, err)
	assert.NotEqual(t, h1, h2)
}
