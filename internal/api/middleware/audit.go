package middleware

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/opsboard/admin-system/internal/core/domain"
	"github.com/opsboard/admin-system/internal/core/ports"
)

// CtxResourceID lets handlers name the concrete resource an audited request
// acted on, e.g. the id of a freshly created user.
const CtxResourceID = "audit_resource_id"

// Audit emits an operation-log event for every request passing through it,
// capturing the actor, route, outcome, and latency. Recording is
// fire-and-forget: a full queue drops the event rather than delaying the
// response.
func Audit(recorder ports.AuditRecorder, action, resource string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			event := domain.AuditEvent{
				Action:    action,
				Resource:  resource,
				Method:    c.Request().Method,
				Path:      c.Request().URL.Path,
				IP:        c.RealIP(),
				UserAgent: c.Request().UserAgent(),
				Outcome:   domain.AuditSuccess,
				Duration:  time.Since(start).Milliseconds(),
				CreatedAt: time.Now().UTC(),
			}

			if user := UserFrom(c); user != nil {
				event.UserID = user.ID
				event.Username = user.Username
			}
			if id, ok := c.Get(CtxResourceID).(string); ok {
				event.ResourceID = id
			} else if id := c.Param("id"); id != "" {
				event.ResourceID = id
			}
			if err != nil {
				event.Outcome = domain.AuditFailed
				event.Error = err.Error()
			} else if c.Response().Status >= http.StatusBadRequest {
				event.Outcome = domain.AuditFailed
			}

			recorder.Record(event)
			return err
		}
	}
}
