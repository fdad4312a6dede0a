package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/trackercrm/tracker-api/internal/core/domain"
	"github.com/trackercrm/tracker-api/internal/core/ports"
)

// ActivityHandler handles HTTP requests for agent activities. Listings are
// scoped to the caller's visibility set by the service.
type ActivityHandler struct {
	activities ports.ActivityService
}

func NewActivityHandler(activities ports.ActivityService) *ActivityHandler {
	return &ActivityHandler{activities: activities}
}

type createActivityRequest struct {
	AgentID     int64  `json:"agent_id" validate:"required,gte=1"`
	BusinessID  int64  `json:"business_id"`
	Type        string `json:"type" validate:"required,oneof=visit call email meeting demo proposal closing other"`
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	Outcome     string `json:"outcome"`
	Status      string `json:"status" validate:"omitempty,oneof=pending completed cancelled"`
	Date        string `json:"date" validate:"required,datetime=2006-01-02"`
	DurationMin int    `json:"duration_min" validate:"omitempty,gte=0"`
}

type updateActivityRequest struct {
	AgentID     *int64  `json:"agent_id"`
	BusinessID  *int64  `json:"business_id"`
	Type        *string `json:"type" validate:"omitempty,oneof=visit call email meeting demo proposal closing other"`
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Outcome     *string `json:"outcome"`
	Status      *string `json:"status" validate:"omitempty,oneof=pending completed cancelled"`
	Date        *string `json:"date" validate:"omitempty,datetime=2006-01-02"`
	DurationMin *int    `json:"duration_min" validate:"omitempty,gte=0"`
}

type activityListResponse struct {
	Activities []domain.Activity `json:"activities"`
	Total      int               `json:"total"`
}

// List returns activities visible to the caller, narrowed by the optional
// filters.
//
// @Summary      List activities
// @Tags         activities
// @Produce      json
// @Param        q            query     string  false  "Free-text search over title, description and outcome"
// @Param        agent_id     query     int     false  "Owning agent id"
// @Param        business_id  query     int     false  "Related business id"
// @Param        type         query     string  false  "Activity type"
// @Param        status       query     string  false  "Lifecycle status"
// @Success      200          {object}  activityListResponse
// @Failure      401          {object}  map[string]string
// @Router       /v1/activities [get]
func (h *ActivityHandler) List(c echo.Context) error {
	caller, err := currentAgent(c)
	if err != nil {
		return err
	}

	query := ports.ActivityQuery{
		Query:  c.QueryParam("q"),
		Type:   domain.ActivityType(c.QueryParam("type")),
		Status: domain.ActivityStatus(c.QueryParam("status")),
	}
	if raw := c.QueryParam("agent_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid agent_id")
		}
		query.AgentID = id
	}
	if raw := c.QueryParam("business_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid business_id")
		}
		query.BusinessID = id
	}

	activities, err := h.activities.List(c.Request().Context(), caller, query)
	if err != nil {
		return err
	}
	if activities == nil {
		activities = []domain.Activity{}
	}
	return c.JSON(http.StatusOK, activityListResponse{Activities: activities, Total: len(activities)})
}

// Get returns a single activity by id.
//
// @Summary      Get an activity
// @Tags         activities
// @Produce      json
// @Param        id   path      int  true  "Activity id"
// @Success      200  {object}  domain.Activity
// @Failure      404  {object}  map[string]string
// @Router       /v1/activities/{id} [get]
func (h *ActivityHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	activity, err := h.activities.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, activity)
}

// Create records an activity for an agent.
//
// @Summary      Create an activity
// @Tags         activities
// @Accept       json
// @Produce      json
// @Param        body  body      createActivityRequest  true  "Activity details"
// @Success      201   {object}  domain.Activity
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /v1/activities [post]
func (h *ActivityHandler) Create(c echo.Context) error {
	var req createActivityRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	activity, err := h.activities.Create(c.Request().Context(), ports.CreateActivityInput{
		AgentID:     req.AgentID,
		BusinessID:  req.BusinessID,
		Type:        domain.ActivityType(req.Type),
		Title:       req.Title,
		Description: req.Description,
		Outcome:     req.Outcome,
		Status:      domain.ActivityStatus(req.Status),
		Date:        req.Date,
		DurationMin: req.DurationMin,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, activity)
}

// Update patches an activity; absent fields are left untouched.
//
// @Summary      Update an activity
// @Tags         activities
// @Accept       json
// @Produce      json
// @Param        id    path      int                    true  "Activity id"
// @Param        body  body      updateActivityRequest  true  "Fields to update"
// @Success      200   {object}  domain.Activity
// @Failure      404   {object}  map[string]string
// @Router       /v1/activities/{id} [put]
func (h *ActivityHandler) Update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	var req updateActivityRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	input := ports.UpdateActivityInput{
		AgentID:     req.AgentID,
		BusinessID:  req.BusinessID,
		Title:       req.Title,
		Description: req.Description,
		Outcome:     req.Outcome,
		Date:        req.Date,
		DurationMin: req.DurationMin,
	}
	if req.Type != nil {
		tp := domain.ActivityType(*req.Type)
		input.Type = &tp
	}
	if req.Status != nil {
		st := domain.ActivityStatus(*req.Status)
		input.Status = &st
	}

	activity, err := h.activities.Update(c.Request().Context(), id, input)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, activity)
}

// Delete removes an activity.
//
// @Summary      Delete an activity
// @Tags         activities
// @Produce      json
// @Param        id   path      int  true  "Activity id"
// @Success      200  {object}  messageResponse
// @Failure      404  {object}  map[string]string
// @Router       /v1/activities/{id} [delete]
func (h *ActivityHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.activities.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "activity deleted"})
}
