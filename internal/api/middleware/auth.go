package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/opsboard/admin-system/internal/api/metrics"
	"github.com/opsboard/admin-system/internal/core/domain"
	"github.com/opsboard/admin-system/internal/core/ports"
)

// Context keys set by Auth for downstream handlers.
const (
	CtxUser        = "auth_user"
	CtxAccessToken = "auth_token"
)

// Auth authenticates the request from its bearer token and injects the
// resolved principal into the echo context.
//
// The blacklist is consulted before the token is trusted. If the blacklist
// cannot be reached the request is rejected with 503 rather than letting a
// possibly-revoked token through.
func Auth(auth ports.AuthService, sessions ports.SessionStore) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, err := bearerToken(c)
			if err != nil {
				return err
			}

			revoked, err := sessions.IsTokenBlacklisted(c.Request().Context(), token)
			if err != nil {
				return domain.ErrAuthorizationUnavailable
			}
			if revoked {
				metrics.TokensRevokedTotal.Inc()
				return domain.ErrTokenRevoked
			}

			user, err := auth.ValidateAccessToken(c.Request().Context(), token)
			if err != nil {
				return err
			}

			c.Set(CtxUser, user)
			c.Set(CtxAccessToken, token)

			return next(c)
		}
	}
}

// UserFrom returns the principal injected by Auth, or nil when the route is
// not behind the Auth middleware.
func UserFrom(c echo.Context) *domain.User {
	user, _ := c.Get(CtxUser).(*domain.User)
	return user
}

// AccessTokenFrom returns the raw bearer token injected by Auth.
func AccessTokenFrom(c echo.Context) string {
	token, _ := c.Get(CtxAccessToken).(string)
	return token
}

func bearerToken(c echo.Context) (string, error) {
	header := c.Request().Header.Get("Authorization")
	if header == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
	}

	return parts[1], nil
}
