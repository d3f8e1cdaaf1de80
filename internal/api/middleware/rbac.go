package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/opsboard/admin-system/internal/api/metrics"
	"github.com/opsboard/admin-system/internal/core/domain"
	"github.com/opsboard/admin-system/internal/core/ports"
)

// RequireRole allows the request only when the principal's role code is one
// of the allowed codes. Role codes are compared case-insensitively.
func RequireRole(authz ports.Authorizer, allowed ...domain.RoleCode) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user := UserFrom(c)
			if user == nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
			}
			if !authz.HasRole(user, allowed...) {
				return echo.NewHTTPError(http.StatusForbidden, "insufficient role")
			}
			return next(c)
		}
	}
}

// RequirePermission resolves the principal's effective permissions on every
// request and allows it only when the permission code is granted. Super
// admins always pass.
func RequirePermission(authz ports.Authorizer, code string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user := UserFrom(c)
			if user == nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
			}
			if err := authz.CheckPermission(c.Request().Context(), user, code); err != nil {
				if domain.IsPermissionDenied(err) {
					metrics.PermissionDenialsTotal.WithLabelValues(code).Inc()
				}
				return err
			}
			return next(c)
		}
	}
}
