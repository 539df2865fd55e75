package auth

import (
	"crypto/subtle"
	"time"
)

// PasswordResetToken lets the owner of Email set a new password once. Only
// a hash of the token is stored, and an email has at most one token.
type PasswordResetToken struct {
	Email     string
	TokenHash string
	ExpiresAt time.Time
	Used      bool
	UsedAt    *time.Time
	CreatedAt time.Time
}

func (t PasswordResetToken) IsValid(now time.Time) bool {
	return !t.Used && now.Before(t.ExpiresAt)
}

// Matches compares tokenHash with the stored hash in constant time.
func (t PasswordResetToken) Matches(tokenHash string) bool {
	return subtle.ConstantTimeCompare([]byte(t.TokenHash), []byte(tokenHash)) == 1
}
