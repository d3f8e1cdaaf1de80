package domain

import (
	"errors"
	"fmt"
)

// Login failures for an unknown identifier and for a wrong password share one
// sentinel so the response never discloses which of the two happened.
var ErrInvalidCredentials = errors.New("invalid username or password")

// ErrAccountInactive is deliberately distinct from ErrInvalidCredentials:
// a disabled account is disclosed to the caller.
var ErrAccountInactive = errors.New("account is disabled")

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenRevoked = errors.New("token has been revoked")

	// ErrRoleNotFound is returned when a principal carries a role code with no
	// backing role record. Authorization fails closed on it.
	ErrRoleNotFound = errors.New("role not found")

	ErrUserNotFound       = errors.New("user not found")
	ErrPermissionNotFound = errors.New("permission not found")
	ErrMenuNotFound       = errors.New("menu not found")
	ErrAPIKeyNotFound     = errors.New("api key not found")

	ErrConflict     = errors.New("resource already exists")
	ErrSelfDeletion = errors.New("cannot delete own account")
	ErrSystemRole   = errors.New("system role cannot be deleted")

	// ErrAuthorizationUnavailable wraps session/revocation store failures so
	// infrastructure errors are never leaked verbatim to clients.
	ErrAuthorizationUnavailable = errors.New("authorization temporarily unavailable")
)

// PermissionDeniedError reports a failed permission check together with a
// human-readable label for the missing permission.
type PermissionDeniedError struct {
	Code  string
	Label string
}

func (e *PermissionDeniedError) Error() string {
	return fmt.Sprintf("missing permission: %s", e.Label)
}

// IsPermissionDenied reports whether err is a PermissionDeniedError.
func IsPermissionDenied(err error) bool {
	var pde *PermissionDeniedError
	return errors.As(err, &pde)
}
