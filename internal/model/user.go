// Package model defines the data structures used throughout the application.
// In Go, we use structs to represent our data, and the `json:"..."` struct tags
// decide the wire shape the frontend sees.
package model

import "time"

// User represents a registered account.
//
// PasswordHash holds the bcrypt output (salt and cost are embedded in it).
// The `json:"-"` tag keeps it out of every API response: the hash is only ever
// read back by the user service when it verifies a password.
type User struct {
	ID           int64     `json:"userId"    db:"id"`
	Username     string    `json:"username"  db:"username"`
	Email        string    `json:"email"     db:"email"`
	PasswordHash string    `json:"-"         db:"password_hash"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}
