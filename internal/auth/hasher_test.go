package auth

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword_RoundTrip(t *testing.T) {
	hash, salt, err := HashPassword("correct horse battery staple")
	require.NoError(t, err)
	assert.NotEmpty(t, hash)
	assert.NotEmpty(t, salt)

	ok, err := VerifyPassword("correct horse battery staple", hash, salt)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestVerifyPassword_WrongPassword(t *testing.T) {
	hash, salt, err := HashPassword("password-one")
	require.NoError(t, err)

	ok, err := VerifyPassword("password-two", hash, salt)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHashPassword_SaltRandomness(t *testing.T) {
	hash1, salt1, err := HashPassword("same password")
	require.NoError(t, err)
	hash2, salt2, err := HashPassword("same password")
	require.NoError(t, err)

	assert.NotEqual(t, salt1, salt2)
	assert.NotEqual(t, hash1, hash2)
}

func TestHashPassword_OutputLengths(t *testing.T) {
	hash, salt, err := HashPassword("whatever")
	require.NoError(t, err)

	hashBytes, err := base64.StdEncoding.DecodeString(hash)
	require.NoError(t, err)
	saltBytes, err := base64.StdEncoding.DecodeString(salt)
	require.NoError(t, err)

	assert.Len(t, hashBytes, keyLength)
	assert.Len(t, saltBytes, saltLength)
}

func TestVerifyPassword_CorruptStoredEncoding(t *testing.T) {
	hash, salt, err := HashPassword("a password")
	require.NoError(t, err)

	_, err = VerifyPassword("a password", "%%%not-base64%%%", salt)
	assert.Error(t, err)

	_, err = VerifyPassword("a password", hash, "%%%not-base64%%%")
	assert.Error(t, err)
}

func TestVerifyPassword_EmptyPassword(t *testing.T) {
	hash, salt, err := HashPassword("non-empty")
	require.NoError(t, err)

	ok, err := VerifyPassword("", hash, salt)
	require.NoError(t, err)
	assert.False(t, ok)
}
