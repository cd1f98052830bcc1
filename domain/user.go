package domain

import "time"

// User represents a registered identity. Usernames are stored lowercase and
// unique; the record is never mutated after registration.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	PasswordSalt string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
