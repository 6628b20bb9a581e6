// Package auth provides password hashing and session token handling.
// Passwords are stored as bcrypt hashes; sessions are signed JWTs whose raw
// string is also persisted on the user row so that logout (clearing the
// column) invalidates every outstanding copy of the token.
package auth

import "golang.org/x/crypto/bcrypt"

// bcryptCost trades hash strength against login latency. 10 is the library
// default and keeps a login under ~100ms on current hardware.
const bcryptCost = 10

// HashPassword returns the bcrypt hash of a plaintext password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether the plaintext password matches the stored
// bcrypt hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
