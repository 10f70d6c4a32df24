package password

import (
	"crypto/subtle"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const cost = 12 // bcrypt cost factor (higher = slower but more secure)

// Hash hashes password using bcrypt
func Hash(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	return string(bytes), err
}

// Verify compares password with hash
func Verify(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// IsHash reports whether stored looks like a bcrypt hash.
func IsHash(stored string) bool {
	return strings.HasPrefix(stored, "$2a$") ||
		strings.HasPrefix(stored, "$2b$") ||
		strings.HasPrefix(stored, "$2y$")
}

// Matches checks a submitted password against the configured value, which may
// be either a bcrypt hash or a plaintext secret from the settings file.
func Matches(submitted, stored string) bool {
	if stored == "" {
		return false
	}
	if IsHash(stored) {
		return Verify(submitted, stored)
	}
	return subtle.ConstantTimeCompare([]byte(submitted), []byte(stored)) == 1
}
