package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/trackercrm/tracker-api/internal/core/domain"
	"github.com/trackercrm/tracker-api/internal/core/ports"
)

// BusinessHandler handles HTTP requests for customer businesses.
type BusinessHandler struct {
	businesses ports.BusinessService
}

func NewBusinessHandler(businesses ports.BusinessService) *BusinessHandler {
	return &BusinessHandler{businesses: businesses}
}

type createBusinessRequest struct {
	Name    string `json:"name" validate:"required"`
	Sector  string `json:"sector"`
	Phone   string `json:"phone"`
	Email   string `json:"email" validate:"omitempty,email"`
	Address string `json:"address"`
	Notes   string `json:"notes"`
}

type updateBusinessRequest struct {
	Name    *string `json:"name"`
	Sector  *string `json:"sector"`
	Phone   *string `json:"phone"`
	Email   *string `json:"email" validate:"omitempty,email"`
	Address *string `json:"address"`
	Notes   *string `json:"notes"`
}

type businessListResponse struct {
	Businesses []domain.Business `json:"businesses"`
	Total      int               `json:"total"`
}

// List returns businesses with incident aggregates joined in.
//
// @Summary      List businesses
// @Tags         businesses
// @Produce      json
// @Param        q       query     string  false  "Free-text search over name, sector and address"
// @Param        sector  query     string  false  "Exact sector"
// @Success      200     {object}  businessListResponse
// @Router       /v1/businesses [get]
func (h *BusinessHandler) List(c echo.Context) error {
	businesses, err := h.businesses.List(c.Request().Context(), ports.BusinessFilter{
		Query:  c.QueryParam("q"),
		Sector: c.QueryParam("sector"),
	})
	if err != nil {
		return err
	}
	if businesses == nil {
		businesses = []domain.Business{}
	}
	return c.JSON(http.StatusOK, businessListResponse{Businesses: businesses, Total: len(businesses)})
}

// Get returns a single business by id.
//
// @Summary      Get a business
// @Tags         businesses
// @Produce      json
// @Param        id   path      int  true  "Business id"
// @Success      200  {object}  domain.Business
// @Failure      404  {object}  map[string]string
// @Router       /v1/businesses/{id} [get]
func (h *BusinessHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	business, err := h.businesses.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, business)
}

// Create adds a business.
//
// @Summary      Create a business
// @Tags         businesses
// @Accept       json
// @Produce      json
// @Param        body  body      createBusinessRequest  true  "Business details"
// @Success      201   {object}  domain.Business
// @Failure      400   {object}  map[string]string
// @Router       /v1/businesses [post]
func (h *BusinessHandler) Create(c echo.Context) error {
	var req createBusinessRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	business, err := h.businesses.Create(c.Request().Context(), ports.CreateBusinessInput{
		Name:    req.Name,
		Sector:  req.Sector,
		Phone:   req.Phone,
		Email:   req.Email,
		Address: req.Address,
		Notes:   req.Notes,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, business)
}

// Update patches a business; absent fields are left untouched.
//
// @Summary      Update a business
// @Tags         businesses
// @Accept       json
// @Produce      json
// @Param        id    path      int                    true  "Business id"
// @Param        body  body      updateBusinessRequest  true  "Fields to update"
// @Success      200   {object}  domain.Business
// @Failure      404   {object}  map[string]string
// @Router       /v1/businesses/{id} [put]
func (h *BusinessHandler) Update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	var req updateBusinessRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	business, err := h.businesses.Update(c.Request().Context(), id, ports.UpdateBusinessInput{
		Name:    req.Name,
		Sector:  req.Sector,
		Phone:   req.Phone,
		Email:   req.Email,
		Address: req.Address,
		Notes:   req.Notes,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, business)
}

// Delete removes a business.
//
// @Summary      Delete a business
// @Tags         businesses
// @Produce      json
// @Param        id   path      int  true  "Business id"
// @Success      200  {object}  messageResponse
// @Failure      404  {object}  map[string]string
// @Router       /v1/businesses/{id} [delete]
func (h *BusinessHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.businesses.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "business deleted"})
}

// Incidents returns the incidents of one business.
//
// @Summary      List a business's incidents
// @Tags         businesses
// @Produce      json
// @Param        id   path      int  true  "Business id"
// @Success      200  {object}  incidentListResponse
// @Failure      404  {object}  map[string]string
// @Router       /v1/businesses/{id}/incidents [get]
func (h *BusinessHandler) Incidents(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	incidents, err := h.businesses.Incidents(c.Request().Context(), id)
	if err != nil {
		return err
	}
	if incidents == nil {
		incidents = []domain.Incident{}
	}
	return c.JSON(http.StatusOK, incidentListResponse{Incidents: incidents, Total: len(incidents)})
}

// Sectors returns the distinct sectors in use.
//
// @Summary      List sectors
// @Tags         businesses
// @Produce      json
// @Success      200  {object}  map[string][]string
// @Router       /v1/businesses/sectors [get]
func (h *BusinessHandler) Sectors(c echo.Context) error {
	sectors, err := h.businesses.Sectors(c.Request().Context())
	if err != nil {
		return err
	}
	if sectors == nil {
		sectors = []string{}
	}
	return c.JSON(http.StatusOK, map[string][]string{"sectors": sectors})
}
