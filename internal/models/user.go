package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents a registered account.
type User struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never serialize the hash
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Summary is the minimal public view of a user, attached to projects,
// comments and login responses.
type Summary struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Email    string    `json:"email,omitempty"`
}

// Summary returns the user's public summary including email. Handlers
// that must not leak the email clear it before responding.
func (u *User) Summary() Summary {
	return Summary{ID: u.ID, Username: u.Username, Email: u.Email}
}
