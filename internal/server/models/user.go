package models

import "time"

// User is a registered account. PasswordHash holds a bcrypt hash with the
// salt and cost embedded; the plaintext password is never stored.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
