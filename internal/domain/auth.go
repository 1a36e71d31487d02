package domain

import "time"

// SessionClaims is the identity asserted by a verified bearer token.
type SessionClaims struct {
	TokenID        string
	SubjectID      string
	Email          string
	DocumentNumber string
	Role           Role
	IssuedAt       time.Time
	ExpiresAt      time.Time
}

