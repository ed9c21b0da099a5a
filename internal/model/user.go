// Package model defines the data structures used throughout the application.
package model

import "time"

// User represents a registered account.
//
// Accounts are created either by signup (username + email + password) or by
// GitHub OAuth. For OAuth accounts, PasswordHash is empty and GitHubID holds
// GitHub's numeric user ID; password signin always fails for them because an
// empty hash never verifies.
//
// PasswordHash is never serialized — the `json:"-"` tag excludes it from
// every response, so there is no way to leak it through a handler.
type User struct {
	ID           string    `json:"id"        db:"id"`
	Username     string    `json:"username"  db:"username"`
	Email        string    `json:"email"     db:"email"`         // unique when non-empty
	PasswordHash string    `json:"-"         db:"password_hash"` // bcrypt; empty for OAuth-only accounts
	GitHubID     int64     `json:"-"         db:"github_id"`     // 0 unless the account is linked to GitHub
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}
