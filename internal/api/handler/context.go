package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/trackercrm/tracker-api/internal/core/domain"
)

// agentContextKey mirrors middleware.AgentContextKey; redeclared here to keep
// the handler package free of a middleware import.
const agentContextKey = "agent"

// currentAgent extracts the authenticated agent injected by the session
// middleware. A nil agent means the middleware did not run on this route;
// fail closed with a 401.
func currentAgent(c echo.Context) (*domain.Agent, error) {
	agent, _ := c.Get(agentContextKey).(*domain.Agent)
	if agent == nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	}
	return agent, nil
}

// pathID parses the named path parameter as a positive int64 id.
func pathID(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return id, nil
}
