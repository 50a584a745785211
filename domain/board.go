package domain

import (
	"strings"
	"time"
)

// Board is a named collection of todos owned by exactly one user.
type Board struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// NormalizeBoardName trims the given name and rejects empty results.
func NormalizeBoardName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ValidationError{Message: "board name is required"}
	}
	return name, nil
}
