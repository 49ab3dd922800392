// Package credentials hashes and verifies user passwords. The stored format
// is hex(sha256(secret+salt)) followed by the 8-character hex salt, so a
// stored digest is always 72 characters long.
package credentials

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
)

const saltLength = 8

// Digest hashes secret with a freshly generated random salt.
func Digest(secret string) (string, error) {
	salt, err := randomSalt()
	if err != nil {
		return "", err
	}
	return DigestWithSalt(secret, salt), nil
}

// DigestWithSalt hashes secret with the given salt. The salt must be
// exactly 8 characters; Verify relies on that to split the stored value.
func DigestWithSalt(secret, salt string) string {
	sum := sha256.Sum256([]byte(secret + salt))
	return hex.EncodeToString(sum[:]) + salt
}

// Verify reports whether secret matches a stored digest. The comparison is
// constant-time.
func Verify(secret, stored string) bool {
	if len(stored) <= saltLength {
		return false
	}
	salt := stored[len(stored)-saltLength:]
	computed := DigestWithSalt(secret, salt)
	return subtle.ConstantTimeCompare([]byte(computed), []byte(stored)) == 1
}

// randomSalt draws 8 hex characters from a cryptographically secure source.
func randomSalt() (string, error) {
	raw := make([]byte, saltLength/2)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	return hex.EncodeToString(raw), nil
}
