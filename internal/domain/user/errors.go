package user

import (
	"errors"
	"fmt"
)

var (
	ErrUnauthenticated         = errors.New("authentication required")
	ErrInvalidRole             = errors.New("invalid role")
	ErrInsufficientPermissions = errors.New("insufficient permissions")
)

// PermissionError names the permission a role was missing.
type PermissionError struct {
	Role       Role
	Permission Permission
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("insufficient permissions: required '%s', but role is '%s'", e.Permission, e.Role)
}

func (e *PermissionError) Unwrap() error {
	return ErrInsufficientPermissions
}
