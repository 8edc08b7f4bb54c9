package domain

import "time"

// RefreshToken is the single live refresh credential of a user.
// Only the SHA-256 hash of the value is stored; the raw value goes to the client once.
type RefreshToken struct {
	ID         string
	UserID     string
	TokenHash  string
	ExpireDate time.Time
	CreatedAt  time.Time
}

// Expired reports whether the token is past its expire date at now.
func (t *RefreshToken) Expired(now time.Time) bool {
	return !t.ExpireDate.IsZero() && !now.Before(t.ExpireDate)
}
