// Package models holds the server-side persistent records.
package models

import "time"

// User is a credential record. PasswordHash is a bcrypt hash, never the
// plaintext. Records are not modified after creation.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	DisplayName  string
	CreatedAt    time.Time
}
