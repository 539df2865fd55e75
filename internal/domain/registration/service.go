package registration

import "context"

type RegistrationCodeService interface {
	// Generate creates a new code valid for ExpiryDays (registration.manage)
	Generate(ctx context.Context, req GenerateRequest) (RegistrationCodeResponse, error)

	// IsValid is a pure read: the code exists, is unused and has not expired
	IsValid(ctx context.Context, code string) (ValidateResponse, error)

	// Consume marks the code used; repeating it is a no-op (registration.manage)
	Consume(ctx context.Context, code string) (RegistrationCodeResponse, error)
}
