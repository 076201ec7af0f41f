// Package models defines server-side data models persisted in the database.
package models

import "time"

// User is a registered account. PasswordHash and RefreshToken never leave
// the server: they are excluded from JSON.
type User struct {
	ID           string    `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	RefreshToken *string   `db:"refresh_token" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `db:"updated_at" json:"updatedAt"`
}

// Identity is the authenticated caller attached to a request.
type Identity struct {
	UserID string
	Email  string
}
