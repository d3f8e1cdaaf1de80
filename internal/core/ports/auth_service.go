package ports

import (
	"context"

	"github.com/opsboard/admin-system/internal/core/domain"
)

// LoginResult is returned by a successful credential login.
type LoginResult struct {
	User         *domain.User
	AccessToken  string
	RefreshToken string
}

// AuthService orchestrates credential verification, token issuance, and the
// session store.
type AuthService interface {
	// Login authenticates by username or email. Unknown identifier and wrong
	// password both return domain.ErrInvalidCredentials; a disabled account
	// returns domain.ErrAccountInactive.
	Login(ctx context.Context, identifier, password string) (*LoginResult, error)

	// RefreshAccessToken exchanges a valid, currently-stored refresh token
	// for a new access token. The refresh token itself is not rotated.
	RefreshAccessToken(ctx context.Context, refreshToken string) (string, error)

	// ValidateAccessToken verifies the token and loads the active principal.
	// Callers must separately consult the blacklist before trusting it.
	ValidateAccessToken(ctx context.Context, token string) (*domain.User, error)

	// Logout deletes the session and refresh token unconditionally, and
	// blacklists the supplied access token for its remaining lifetime.
	Logout(ctx context.Context, userID, accessToken string) error
}

// Authorizer resolves a principal's effective permissions from current Role
// and Permission records on every check.
type Authorizer interface {
	HasRole(user *domain.User, allowed ...domain.RoleCode) bool

	// CheckPermission returns nil when the principal holds the permission
	// code. It returns domain.ErrRoleNotFound for a dangling role code and
	// *domain.PermissionDeniedError otherwise.
	CheckPermission(ctx context.Context, user *domain.User, code string) error
}
