package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/trackercrm/tracker-api/internal/core/ports"
)

// SessionCookie is the cookie carrying the opaque session token.
const SessionCookie = "session_id"

// AgentContextKey is where the authenticated agent lands in the echo context.
const AgentContextKey = "agent"

// Session resolves the session cookie to its owning agent and injects it into
// the request context. Absent, unknown and expired tokens all fail with the
// same 401; the error handler keeps the message uniform.
func Session(auth ports.AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := c.Cookie(SessionCookie)
			if err != nil || cookie.Value == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
			}

			agent, err := auth.Authenticate(c.Request().Context(), cookie.Value)
			if err != nil {
				return err
			}

			c.Set(AgentContextKey, agent)
			return next(c)
		}
	}
}
