package registration

import (
	"context"
	"time"
)

type RegistrationCodeRepository interface {
	// Create returns ErrCodeExists when the code already exists.
	Create(ctx context.Context, code RegistrationCode) (RegistrationCode, error)

	// GetByCode returns ErrInvalidOrExpiredCode when no such code exists.
	GetByCode(ctx context.Context, code string) (RegistrationCode, error)

	// Claim marks the code used by employeeID only if it is unused and unexpired at now.
	// It returns ErrInvalidOrExpiredCode otherwise.
	Claim(ctx context.Context, code string, employeeID *int64, now time.Time) (RegistrationCode, error)

	// MarkUsed sets used = true whatever the current state. Already used codes are left as they are.
	MarkUsed(ctx context.Context, code string, now time.Time) (RegistrationCode, error)
}
