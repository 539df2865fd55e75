package auth

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrPasswordMismatch   = errors.New("password and confirm_password do not match")
	ErrInvalidResetToken  = errors.New("password reset token is invalid or expired")
)
