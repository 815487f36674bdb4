package auth

import (
	"crypto/subtle"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// bcrypt hashes start with one of these prefixes; anything else in the
// password_hash column is a legacy plaintext secret awaiting migration.
var bcryptPrefixes = []string{"$2a$", "$2b$", "$2y$"}

// HashPassword derives a salted bcrypt hash from a plaintext password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword reports whether password matches the stored bcrypt hash.
func VerifyPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// IsHashed reports whether the stored secret is a recognized bcrypt hash.
func IsHashed(secret string) bool {
	for _, prefix := range bcryptPrefixes {
		if strings.HasPrefix(secret, prefix) {
			return true
		}
	}
	return false
}

// LegacyMatch compares a plaintext legacy secret in constant time.
func LegacyMatch(password, stored string) bool {
	return subtle.ConstantTimeCompare([]byte(password), []byte(stored)) == 1
}
