package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/trackercrm/tracker-api/internal/core/ports"
)

// StatsHandler serves the dashboard aggregates and the calendar feed.
type StatsHandler struct {
	stats    ports.StatsService
	calendar ports.CalendarService
}

func NewStatsHandler(stats ports.StatsService, calendar ports.CalendarService) *StatsHandler {
	return &StatsHandler{stats: stats, calendar: calendar}
}

// Dashboard returns the landing-page aggregates for the caller.
//
// @Summary      Dashboard statistics
// @Tags         stats
// @Produce      json
// @Success      200  {object}  ports.DashboardStats
// @Failure      401  {object}  map[string]string
// @Router       /v1/stats/dashboard [get]
func (h *StatsHandler) Dashboard(c echo.Context) error {
	caller, err := currentAgent(c)
	if err != nil {
		return err
	}
	stats, err := h.stats.Dashboard(c.Request().Context(), caller)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stats)
}

// Calendar returns the merged events feed of incident deadlines and activity
// dates.
//
// @Summary      Calendar events feed
// @Tags         stats
// @Produce      json
// @Success      200  {array}  ports.CalendarEvent
// @Router       /v1/calendar/events [get]
func (h *StatsHandler) Calendar(c echo.Context) error {
	events, err := h.calendar.Events(c.Request().Context())
	if err != nil {
		return err
	}
	if events == nil {
		events = []ports.CalendarEvent{}
	}
	return c.JSON(http.StatusOK, events)
}
