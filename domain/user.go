package domain

import (
	"net/mail"
	"strings"
	"time"
)

// User is an account holder. The password hash never leaves the server.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// MinPasswordLength is the minimum accepted password size at registration.
const MinPasswordLength = 6

// NormalizeEmail lowercases and trims the address and rejects malformed ones.
func NormalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", ValidationError{Message: "email is required"}
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", ValidationError{Message: "invalid email address"}
	}
	return email, nil
}

// ValidatePassword enforces the registration password policy.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return ValidationError{Message: "password must be at least 6 characters"}
	}
	return nil
}
