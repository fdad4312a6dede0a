package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/trackercrm/tracker-api/internal/core/domain"
	"github.com/trackercrm/tracker-api/internal/core/ports"
)

// AgentHandler handles HTTP requests for agent profile management.
type AgentHandler struct {
	agents     ports.AgentService
	activities ports.ActivityService
}

func NewAgentHandler(agents ports.AgentService, activities ports.ActivityService) *AgentHandler {
	return &AgentHandler{agents: agents, activities: activities}
}

type createAgentRequest struct {
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name"`
	Email     string `json:"email" validate:"omitempty,email"`
	Phone     string `json:"phone"`
	Zone      string `json:"zone"`
	Active    *bool  `json:"active"`
}

type updateAgentRequest struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Email     *string `json:"email" validate:"omitempty,email"`
	Phone     *string `json:"phone"`
	Zone      *string `json:"zone"`
	Active    *bool   `json:"active"`
}

type agentListResponse struct {
	Agents []domain.Agent `json:"agents"`
	Total  int            `json:"total"`
}

// List returns agents matching the optional filters.
//
// @Summary      List agents
// @Tags         agents
// @Produce      json
// @Param        q       query     string  false  "Free-text search over name, email and zone"
// @Param        zone    query     string  false  "Exact zone"
// @Param        active  query     bool    false  "Filter by active flag"
// @Success      200     {object}  agentListResponse
// @Router       /v1/agents [get]
func (h *AgentHandler) List(c echo.Context) error {
	filter := ports.AgentFilter{
		Query: c.QueryParam("q"),
		Zone:  c.QueryParam("zone"),
	}
	switch c.QueryParam("active") {
	case "true":
		active := true
		filter.Active = &active
	case "false":
		active := false
		filter.Active = &active
	}

	agents, err := h.agents.List(c.Request().Context(), filter)
	if err != nil {
		return err
	}
	if agents == nil {
		agents = []domain.Agent{}
	}
	return c.JSON(http.StatusOK, agentListResponse{Agents: agents, Total: len(agents)})
}

// Get returns a single agent by id.
//
// @Summary      Get an agent
// @Tags         agents
// @Produce      json
// @Param        id   path      int  true  "Agent id"
// @Success      200  {object}  domain.Agent
// @Failure      404  {object}  map[string]string
// @Router       /v1/agents/{id} [get]
func (h *AgentHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	agent, err := h.agents.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, agent)
}

// Create adds an agent profile without credentials.
//
// @Summary      Create an agent profile
// @Tags         agents
// @Accept       json
// @Produce      json
// @Param        body  body      createAgentRequest  true  "Agent profile"
// @Success      201   {object}  domain.Agent
// @Failure      400   {object}  map[string]string
// @Router       /v1/agents [post]
func (h *AgentHandler) Create(c echo.Context) error {
	var req createAgentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	agent, err := h.agents.Create(c.Request().Context(), ports.CreateAgentInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
		Zone:      req.Zone,
		Active:    req.Active,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, agent)
}

// Update patches an agent profile; absent fields are left untouched.
//
// @Summary      Update an agent
// @Tags         agents
// @Accept       json
// @Produce      json
// @Param        id    path      int                 true  "Agent id"
// @Param        body  body      updateAgentRequest  true  "Fields to update"
// @Success      200   {object}  domain.Agent
// @Failure      404   {object}  map[string]string
// @Router       /v1/agents/{id} [put]
func (h *AgentHandler) Update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	var req updateAgentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	agent, err := h.agents.Update(c.Request().Context(), id, ports.UpdateAgentInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
		Zone:      req.Zone,
		Active:    req.Active,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, agent)
}

// Delete removes an agent and cascades to its sessions and reset tokens.
//
// @Summary      Delete an agent
// @Tags         agents
// @Produce      json
// @Param        id   path      int  true  "Agent id"
// @Success      200  {object}  messageResponse
// @Failure      404  {object}  map[string]string
// @Router       /v1/agents/{id} [delete]
func (h *AgentHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.agents.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "agent deleted"})
}

// Activities returns the activity log of one agent.
//
// @Summary      List an agent's activities
// @Tags         agents
// @Produce      json
// @Param        id   path      int  true  "Agent id"
// @Success      200  {object}  activityListResponse
// @Router       /v1/agents/{id}/activities [get]
func (h *AgentHandler) Activities(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	activities, err := h.activities.ListByAgent(c.Request().Context(), id)
	if err != nil {
		return err
	}
	if activities == nil {
		activities = []domain.Activity{}
	}
	return c.JSON(http.StatusOK, activityListResponse{Activities: activities, Total: len(activities)})
}

// Zones returns the distinct zones in use.
//
// @Summary      List zones
// @Tags         agents
// @Produce      json
// @Success      200  {object}  map[string][]string
// @Router       /v1/agents/zones [get]
func (h *AgentHandler) Zones(c echo.Context) error {
	zones, err := h.agents.Zones(c.Request().Context())
	if err != nil {
		return err
	}
	if zones == nil {
		zones = []string{}
	}
	return c.JSON(http.StatusOK, map[string][]string{"zones": zones})
}
