package auth

import (
	"context"
	"time"
)

type PasswordResetRepository interface {
	// Save stores token as the only one for its email, replacing any earlier token.
	Save(ctx context.Context, token PasswordResetToken) (PasswordResetToken, error)

	// GetByEmail returns ErrInvalidResetToken when the email has no token.
	GetByEmail(ctx context.Context, email string) (PasswordResetToken, error)

	// Claim marks the token used only if it matches tokenHash and is unused and
	// unexpired at now. It returns ErrInvalidResetToken otherwise.
	Claim(ctx context.Context, email, tokenHash string, now time.Time) (PasswordResetToken, error)
}
