package auth

import (
	"context"
)

type AuthService interface {
	// Register claims a registration code and creates the employee account
	Register(ctx context.Context, req RegisterRequest) (TokenResponse, error)
	Login(ctx context.Context, req LoginRequest) (TokenResponse, error)

	// ForgotPassword mails a reset link. Unknown emails succeed silently.
	ForgotPassword(ctx context.Context, req ForgotPasswordRequest) error
	ValidateResetToken(ctx context.Context, req ValidateResetTokenRequest) (ValidateResetTokenResponse, error)
	// ResetPassword sets a new password and spends the token
	ResetPassword(ctx context.Context, req ResetPasswordRequest) error
}
