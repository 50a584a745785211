package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"

	"boardkit/domain"
)

// HashPassword hashes a plaintext password for storage.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword compares a stored hash against a login attempt. A mismatch is
// reported as an AuthenticationError so callers never leak which part failed.
func CheckPassword(hash, password string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return domain.AuthenticationError{Message: "invalid email or password"}
		}
		return err
	}
	return nil
}
