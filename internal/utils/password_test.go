package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("med-evac-2024", 4)
	assert.NoError(t, err)
	assert.NotEqual(t, "med-evac-2024", hash)
	assert.True(t, VerifyPassword(hash, "med-evac-2024"))
	assert.False(t, VerifyPassword(hash, "wrong"))
}

func TestHashPassword_ZeroCostUsesDefault(t *testing.T) {
	hash, err := HashPassword("secret", 0)
	assert.NoError(t, err)
	assert.True(t, VerifyPassword(hash, "secret"))
}
