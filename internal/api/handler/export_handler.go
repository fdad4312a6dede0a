package handler

import (
	"encoding/csv"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/trackercrm/tracker-api/internal/core/ports"
)

// ExportHandler streams CSV exports of the main listings.
type ExportHandler struct {
	incidents  ports.IncidentService
	activities ports.ActivityService
}

func NewExportHandler(incidents ports.IncidentService, activities ports.ActivityService) *ExportHandler {
	return &ExportHandler{incidents: incidents, activities: activities}
}

// Incidents exports all incidents as CSV.
//
// @Summary      Export incidents as CSV
// @Tags         export
// @Produce      text/csv
// @Success      200  {string}  string
// @Router       /v1/export/incidents [get]
func (h *ExportHandler) Incidents(c echo.Context) error {
	incidents, err := h.incidents.List(c.Request().Context(), ports.IncidentFilter{})
	if err != nil {
		return err
	}

	c.Response().Header().Set(echo.HeaderContentType, "text/csv; charset=utf-8")
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="incidents.csv"`)
	c.Response().WriteHeader(http.StatusOK)

	w := csv.NewWriter(c.Response())
	if err := w.Write([]string{"id", "business", "title", "priority", "status", "category", "assigned_to", "deadline", "created_at"}); err != nil {
		return err
	}
	for _, inc := range incidents {
		record := []string{
			strconv.FormatInt(inc.ID, 10),
			inc.BusinessName,
			inc.Title,
			string(inc.Priority),
			string(inc.Status),
			inc.Category,
			inc.AssignedTo,
			inc.Deadline,
			inc.CreatedAt.UTC().Format("2006-01-02"),
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// Activities exports the caller's visible activities as CSV.
//
// @Summary      Export activities as CSV
// @Tags         export
// @Produce      text/csv
// @Success      200  {string}  string
// @Failure      401  {object}  map[string]string
// @Router       /v1/export/activities [get]
func (h *ExportHandler) Activities(c echo.Context) error {
	caller, err := currentAgent(c)
	if err != nil {
		return err
	}
	activities, err := h.activities.List(c.Request().Context(), caller, ports.ActivityQuery{})
	if err != nil {
		return err
	}

	c.Response().Header().Set(echo.HeaderContentType, "text/csv; charset=utf-8")
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="activities.csv"`)
	c.Response().WriteHeader(http.StatusOK)

	w := csv.NewWriter(c.Response())
	if err := w.Write([]string{"id", "agent", "business", "type", "title", "status", "date", "duration_min"}); err != nil {
		return err
	}
	for _, act := range activities {
		record := []string{
			strconv.FormatInt(act.ID, 10),
			act.AgentName,
			act.BusinessName,
			string(act.Type),
			act.Title,
			string(act.Status),
			act.Date,
			strconv.Itoa(act.DurationMin),
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
