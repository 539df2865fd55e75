package employee

import "errors"

var (
	ErrEmployeeNotFound       = errors.New("employee not found")
	ErrEmployeeCodeExists     = errors.New("employee code already exists")
	ErrEmailAlreadyRegistered = errors.New("email already registered")
	ErrInvalidStatus          = errors.New("status must be one of: available, busy, away, offline")
	ErrCannotChangeOwnRole    = errors.New("cannot change your own role")
)
