package handler

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-ticketing/internal/apperr"
	"github.com/iliyamo/event-ticketing/internal/model"
)

type createVenueRequest struct {
	Name       string `json:"name" validate:"required"`
	City       string `json:"city" validate:"required"`
	Address    string `json:"address"`
	Rows       int    `json:"rows" validate:"required,gt=0,lte=702"`
	Cols       int    `json:"cols" validate:"required,gt=0,lte=1000"`
	AdminEmail string `json:"adminEmail"`
}

type updateVenueRequest struct {
	Name    *string `json:"name"`
	City    *string `json:"city"`
	Address *string `json:"address"`
	Rows    *int    `json:"rows" validate:"omitempty,gt=0,lte=702"`
	Cols    *int    `json:"cols" validate:"omitempty,gt=0,lte=1000"`
}

// ListVenues handles GET /api/admin/venues?adminEmail=. Without an admin
// email the list is empty.
func (h *CatalogHandler) ListVenues(c echo.Context) error {
	admin := actingAdmin(c, c.QueryParam("adminEmail"))
	if admin == "" || admin == "undefined" {
		return c.JSON(http.StatusOK, []model.Venue{})
	}
	venues, err := h.Venues.ListByAdmin(c.Request().Context(), admin)
	if err != nil {
		return fail(c, h.storeErr("list venues", err, ""))
	}
	return c.JSON(http.StatusOK, venues)
}

// CreateVenue handles POST /api/admin/create-venue.
func (h *CatalogHandler) CreateVenue(c echo.Context) error {
	var req createVenueRequest
	if err := bind(c, &req); err != nil {
		return fail(c, err)
	}
	admin := actingAdmin(c, req.AdminEmail)
	if admin == "" {
		return fail(c, apperr.Input("adminEmail is required"))
	}
	v := &model.Venue{
		ID:         uuid.NewString(),
		Name:       strings.TrimSpace(req.Name),
		City:       strings.TrimSpace(req.City),
		Address:    strings.TrimSpace(req.Address),
		Rows:       req.Rows,
		Cols:       req.Cols,
		AdminEmail: admin,
	}
	if err := h.Venues.Create(c.Request().Context(), v); err != nil {
		return fail(c, h.storeErr("create venue", err, ""))
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": "Venue created successfully!", "venue": v})
}

// UpdateVenue handles PUT /api/admin/venues/:id. Omitted fields keep their
// value; shrinking the grid past a booked or locked seat is a conflict.
func (h *CatalogHandler) UpdateVenue(c echo.Context) error {
	id, err := parseID(c.Param("id"), "venue")
	if err != nil {
		return fail(c, err)
	}
	var req updateVenueRequest
	if err := bind(c, &req); err != nil {
		return fail(c, err)
	}
	ctx := c.Request().Context()
	v, err := h.Venues.GetByID(ctx, id)
	if err != nil {
		return fail(c, h.storeErr("load venue", err, ""))
	}
	if req.Name != nil {
		v.Name = strings.TrimSpace(*req.Name)
	}
	if req.City != nil {
		v.City = strings.TrimSpace(*req.City)
	}
	if req.Address != nil {
		v.Address = strings.TrimSpace(*req.Address)
	}
	if req.Rows != nil {
		v.Rows = *req.Rows
	}
	if req.Cols != nil {
		v.Cols = *req.Cols
	}
	if v.Name == "" {
		return fail(c, apperr.Input("name must not be empty"))
	}
	if err := h.Venues.Update(ctx, v); err != nil {
		return fail(c, h.storeErr("update venue", err, "new grid would exclude seats already booked or locked"))
	}
	return c.JSON(http.StatusOK, v)
}

// DeleteVenue handles DELETE /api/admin/venues/:id.
func (h *CatalogHandler) DeleteVenue(c echo.Context) error {
	id, err := parseID(c.Param("id"), "venue")
	if err != nil {
		return fail(c, err)
	}
	if err := h.Venues.Delete(c.Request().Context(), id); err != nil {
		return fail(c, h.storeErr("delete venue", err, "venue has scheduled shows"))
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Venue deleted successfully"})
}
