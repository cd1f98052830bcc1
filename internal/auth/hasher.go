// Package auth implements credential hashing and bearer-token issuance for
// the service. Both are pure computations: storage and transport stay in
// their own layers.
package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

// PBKDF2 parameters. The iteration count is the cost knob: it must stay high
// enough that offline brute force of a leaked hash is impractical.
const (
	saltLength = 16
	keyLength  = 32
	iterations = 100_000
)

// HashPassword derives a storable hash from a plaintext password using a
// fresh random salt. Both values are returned base64-encoded.
func HashPassword(password string) (hash string, salt string, err error) {
	saltBytes := make([]byte, saltLength)
	if _, err := rand.Read(saltBytes); err != nil {
		return "", "", fmt.Errorf("generate salt: %w", err)
	}

	key := pbkdf2.Key([]byte(password), saltBytes, iterations, keyLength, sha256.New)
	return base64.StdEncoding.EncodeToString(key), base64.StdEncoding.EncodeToString(saltBytes), nil
}

// VerifyPassword re-derives the key from the stored salt and compares it
// against the stored hash in constant time. A wrong password yields
// (false, nil); a stored value that fails to decode is an integrity error,
// not an authentication failure.
func VerifyPassword(password, storedHash, storedSalt string) (bool, error) {
	saltBytes, err := base64.StdEncoding.DecodeString(storedSalt)
	if err != nil {
		return false, fmt.Errorf("decode stored salt: %w", err)
	}
	hashBytes, err := base64.StdEncoding.DecodeString(storedHash)
	if err != nil {
		return false, fmt.Errorf("decode stored hash: %w", err)
	}

	key := pbkdf2.Key([]byte(password), saltBytes, iterations, keyLength, sha256.New)
	return subtle.ConstantTimeCompare(key, hashBytes) == 1, nil
}
