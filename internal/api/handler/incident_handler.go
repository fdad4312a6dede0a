package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/trackercrm/tracker-api/internal/core/domain"
	"github.com/trackercrm/tracker-api/internal/core/ports"
)

// IncidentHandler handles HTTP requests for incidents and their comments.
type IncidentHandler struct {
	incidents ports.IncidentService
}

func NewIncidentHandler(incidents ports.IncidentService) *IncidentHandler {
	return &IncidentHandler{incidents: incidents}
}

type createIncidentRequest struct {
	BusinessID  int64  `json:"business_id" validate:"required,gte=1"`
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	Priority    string `json:"priority" validate:"omitempty,oneof=low medium high critical"`
	Status      string `json:"status" validate:"omitempty,oneof=open in_progress resolved closed"`
	Category    string `json:"category"`
	AssignedTo  string `json:"assigned_to"`
	Deadline    string `json:"deadline" validate:"omitempty,datetime=2006-01-02"`
	Resolution  string `json:"resolution"`
}

type updateIncidentRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Priority    *string `json:"priority" validate:"omitempty,oneof=low medium high critical"`
	Status      *string `json:"status" validate:"omitempty,oneof=open in_progress resolved closed"`
	Category    *string `json:"category"`
	AssignedTo  *string `json:"assigned_to"`
	Deadline    *string `json:"deadline" validate:"omitempty,datetime=2006-01-02"`
	Resolution  *string `json:"resolution"`
}

type addCommentRequest struct {
	Content string `json:"content" validate:"required"`
}

type incidentListResponse struct {
	Incidents []domain.Incident `json:"incidents"`
	Total     int               `json:"total"`
}

type commentListResponse struct {
	Comments []domain.Comment `json:"comments"`
	Total    int              `json:"total"`
}

// List returns incidents matching the optional filters.
//
// @Summary      List incidents
// @Tags         incidents
// @Produce      json
// @Param        q            query     string  false  "Free-text search over title, description and category"
// @Param        business_id  query     int     false  "Owning business id"
// @Param        status       query     string  false  "Lifecycle status"
// @Param        priority     query     string  false  "Priority"
// @Param        category     query     string  false  "Exact category"
// @Success      200          {object}  incidentListResponse
// @Router       /v1/incidents [get]
func (h *IncidentHandler) List(c echo.Context) error {
	filter := ports.IncidentFilter{
		Query:    c.QueryParam("q"),
		Status:   domain.IncidentStatus(c.QueryParam("status")),
		Priority: domain.IncidentPriority(c.QueryParam("priority")),
		Category: c.QueryParam("category"),
	}
	if raw := c.QueryParam("business_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid business_id")
		}
		filter.BusinessID = id
	}

	incidents, err := h.incidents.List(c.Request().Context(), filter)
	if err != nil {
		return err
	}
	if incidents == nil {
		incidents = []domain.Incident{}
	}
	return c.JSON(http.StatusOK, incidentListResponse{Incidents: incidents, Total: len(incidents)})
}

// Get returns a single incident by id.
//
// @Summary      Get an incident
// @Tags         incidents
// @Produce      json
// @Param        id   path      int  true  "Incident id"
// @Success      200  {object}  domain.Incident
// @Failure      404  {object}  map[string]string
// @Router       /v1/incidents/{id} [get]
func (h *IncidentHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	incident, err := h.incidents.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, incident)
}

// Create opens an incident against a business.
//
// @Summary      Create an incident
// @Tags         incidents
// @Accept       json
// @Produce      json
// @Param        body  body      createIncidentRequest  true  "Incident details"
// @Success      201   {object}  domain.Incident
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /v1/incidents [post]
func (h *IncidentHandler) Create(c echo.Context) error {
	var req createIncidentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	incident, err := h.incidents.Create(c.Request().Context(), ports.CreateIncidentInput{
		BusinessID:  req.BusinessID,
		Title:       req.Title,
		Description: req.Description,
		Priority:    domain.IncidentPriority(req.Priority),
		Status:      domain.IncidentStatus(req.Status),
		Category:    req.Category,
		AssignedTo:  req.AssignedTo,
		Deadline:    req.Deadline,
		Resolution:  req.Resolution,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, incident)
}

// Update patches an incident; absent fields are left untouched.
//
// @Summary      Update an incident
// @Tags         incidents
// @Accept       json
// @Produce      json
// @Param        id    path      int                    true  "Incident id"
// @Param        body  body      updateIncidentRequest  true  "Fields to update"
// @Success      200   {object}  domain.Incident
// @Failure      404   {object}  map[string]string
// @Router       /v1/incidents/{id} [put]
func (h *IncidentHandler) Update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	var req updateIncidentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	input := ports.UpdateIncidentInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		AssignedTo:  req.AssignedTo,
		Deadline:    req.Deadline,
		Resolution:  req.Resolution,
	}
	if req.Priority != nil {
		p := domain.IncidentPriority(*req.Priority)
		input.Priority = &p
	}
	if req.Status != nil {
		s := domain.IncidentStatus(*req.Status)
		input.Status = &s
	}

	incident, err := h.incidents.Update(c.Request().Context(), id, input)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, incident)
}

// Delete removes an incident together with its comment thread.
//
// @Summary      Delete an incident
// @Tags         incidents
// @Produce      json
// @Param        id   path      int  true  "Incident id"
// @Success      200  {object}  messageResponse
// @Failure      404  {object}  map[string]string
// @Router       /v1/incidents/{id} [delete]
func (h *IncidentHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.incidents.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "incident deleted"})
}

// Categories returns the distinct categories in use.
//
// @Summary      List incident categories
// @Tags         incidents
// @Produce      json
// @Success      200  {object}  map[string][]string
// @Router       /v1/incidents/categories [get]
func (h *IncidentHandler) Categories(c echo.Context) error {
	categories, err := h.incidents.Categories(c.Request().Context())
	if err != nil {
		return err
	}
	if categories == nil {
		categories = []string{}
	}
	return c.JSON(http.StatusOK, map[string][]string{"categories": categories})
}

// Comments returns the comment thread of one incident.
//
// @Summary      List an incident's comments
// @Tags         incidents
// @Produce      json
// @Param        id   path      int  true  "Incident id"
// @Success      200  {object}  commentListResponse
// @Failure      404  {object}  map[string]string
// @Router       /v1/incidents/{id}/comments [get]
func (h *IncidentHandler) Comments(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	comments, err := h.incidents.Comments(c.Request().Context(), id)
	if err != nil {
		return err
	}
	if comments == nil {
		comments = []domain.Comment{}
	}
	return c.JSON(http.StatusOK, commentListResponse{Comments: comments, Total: len(comments)})
}

// AddComment appends a note to an incident thread, authored by the caller.
//
// @Summary      Comment on an incident
// @Tags         incidents
// @Accept       json
// @Produce      json
// @Param        id    path      int                true  "Incident id"
// @Param        body  body      addCommentRequest  true  "Comment content"
// @Success      201   {object}  domain.Comment
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /v1/incidents/{id}/comments [post]
func (h *IncidentHandler) AddComment(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	agent, err := currentAgent(c)
	if err != nil {
		return err
	}

	var req addCommentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	author := agent.FirstName
	if agent.LastName != "" {
		author += " " + agent.LastName
	}
	comment, err := h.incidents.AddComment(c.Request().Context(), id, author, req.Content)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, comment)
}

// DeleteComment removes a single comment.
//
// @Summary      Delete a comment
// @Tags         incidents
// @Produce      json
// @Param        id          path      int  true  "Incident id"
// @Param        comment_id  path      int  true  "Comment id"
// @Success      200         {object}  messageResponse
// @Failure      404         {object}  map[string]string
// @Router       /v1/incidents/{id}/comments/{comment_id} [delete]
func (h *IncidentHandler) DeleteComment(c echo.Context) error {
	commentID, err := pathID(c, "comment_id")
	if err != nil {
		return err
	}
	if err := h.incidents.DeleteComment(c.Request().Context(), commentID); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "comment deleted"})
}
