package registration

import "errors"

var (
	ErrInvalidOrExpiredCode = errors.New("registration code is invalid or expired")
	ErrCodeExists           = errors.New("registration code already exists")
	ErrCodeGenerationFailed = errors.New("could not generate a unique registration code")
)
