package middleware

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/opsboard/admin-system/internal/api/metrics"
)

// Limiter reports whether another hit for key fits in the current window.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// RateLimit throttles requests per client address. It fails open: if the
// limiter backend is unreachable the request proceeds, since throttling is a
// protection layer rather than an authorization decision.
func RateLimit(limiter Limiter, scope string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := scope + ":" + c.RealIP()

			ok, err := limiter.Allow(c.Request().Context(), key)
			if err != nil {
				c.Logger().Warnf("rate limiter unavailable: %v", err)
				return next(c)
			}
			if !ok {
				if scope == "login" {
					metrics.LoginsTotal.WithLabelValues("rate_limited").Inc()
				}
				return echo.NewHTTPError(http.StatusTooManyRequests, "too many requests")
			}

			return next(c)
		}
	}
}
