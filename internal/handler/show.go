package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-ticketing/internal/apperr"
	"github.com/iliyamo/event-ticketing/internal/model"
	"github.com/iliyamo/event-ticketing/internal/pricing"
)

type pricesRequest struct {
	Gold   float64 `json:"gold" validate:"gt=0"`
	Silver float64 `json:"silver" validate:"gt=0"`
	Bronze float64 `json:"bronze" validate:"gt=0"`
}

type createShowRequest struct {
	EventID    string        `json:"eventId" validate:"required"`
	VenueID    string        `json:"venueId" validate:"required"`
	Date       string        `json:"date" validate:"required"`
	Time       string        `json:"time" validate:"required"`
	Prices     pricesRequest `json:"prices"`
	AdminEmail string        `json:"adminEmail"`
}

type lockSeatsRequest struct {
	Seats []string `json:"seats" validate:"required,min=1,dive,required"`
}

// CreateShow handles POST /api/admin/create-show. Date and time are stored
// in canonical "YYYY-MM-DD" and "HH:MM" form.
func (h *CatalogHandler) CreateShow(c echo.Context) error {
	var req createShowRequest
	if err := bind(c, &req); err != nil {
		return fail(c, err)
	}
	eventID, err := parseID(req.EventID, "event")
	if err != nil {
		return fail(c, err)
	}
	venueID, err := parseID(req.VenueID, "venue")
	if err != nil {
		return fail(c, err)
	}
	starts, err := model.ParseShowTime(req.Date, req.Time, h.loc)
	if err != nil {
		return fail(c, apperr.Input("date must be YYYY-MM-DD and time HH:MM"))
	}
	s := &model.Show{
		ID:         uuid.NewString(),
		EventID:    eventID,
		VenueID:    venueID,
		Date:       starts.Format("2006-01-02"),
		Time:       starts.Format("15:04"),
		Prices:     model.Prices(req.Prices),
		AdminEmail: actingAdmin(c, req.AdminEmail),
	}
	if err := h.Shows.Create(c.Request().Context(), s); err != nil {
		return fail(c, h.storeErr("create show", err, ""))
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": "Show scheduled successfully!", "show": s})
}

// ListShows handles GET /api/admin/shows/:eventId.
func (h *CatalogHandler) ListShows(c echo.Context) error {
	eventID, err := parseID(c.Param("eventId"), "event")
	if err != nil {
		return fail(c, err)
	}
	shows, err := h.Shows.ListByEvent(c.Request().Context(), eventID)
	if err != nil {
		return fail(c, h.storeErr("list shows", err, ""))
	}
	return c.JSON(http.StatusOK, shows)
}

// ShowDetails handles GET /api/admin/show-details/:id.
func (h *CatalogHandler) ShowDetails(c echo.Context) error {
	id, err := parseID(c.Param("id"), "show")
	if err != nil {
		return fail(c, err)
	}
	s, err := h.Shows.GetDetails(c.Request().Context(), id)
	if err != nil {
		return fail(c, h.storeErr("load show", err, ""))
	}
	return c.JSON(http.StatusOK, s)
}

// SeatMap handles GET /api/shows/:id/seats. A show whose venue is gone has
// no seat map.
func (h *CatalogHandler) SeatMap(c echo.Context) error {
	id, err := parseID(c.Param("id"), "show")
	if err != nil {
		return fail(c, err)
	}
	s, err := h.Shows.GetDetails(c.Request().Context(), id)
	if err != nil {
		return fail(c, h.storeErr("load show", err, ""))
	}
	m, err := pricing.BuildSeatMap(s, s.Venue)
	if errors.Is(err, pricing.ErrUnavailable) {
		return fail(c, apperr.NotFound("seat map unavailable for this show"))
	}
	if err != nil {
		return fail(c, h.storeErr("build seat map", err, ""))
	}
	return c.JSON(http.StatusOK, m)
}

// LockSeats handles PUT /api/admin/shows/:id/lock-seats. Locked seats are
// unavailable to bookings but belong to none; seats already taken stay as
// they are.
func (h *CatalogHandler) LockSeats(c echo.Context) error {
	id, err := parseID(c.Param("id"), "show")
	if err != nil {
		return fail(c, err)
	}
	var req lockSeatsRequest
	if err := bind(c, &req); err != nil {
		return fail(c, err)
	}
	ctx := c.Request().Context()
	s, err := h.Shows.GetDetails(ctx, id)
	if err != nil {
		return fail(c, h.storeErr("load show", err, ""))
	}
	if s.Venue == nil {
		return fail(c, apperr.NotFound("venue not found"))
	}
	if !s.Venue.Grid().Valid() {
		return fail(c, apperr.NotFound(pricing.ErrUnavailable.Error()))
	}
	seats, err := s.Venue.Grid().Resolve(req.Seats)
	if err != nil {
		return fail(c, apperr.Input("%s", strings.TrimSpace(err.Error())))
	}
	if err := h.Shows.LockSeats(ctx, id, seats); err != nil {
		return fail(c, h.storeErr("lock seats", err, ""))
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Seats locked successfully", "seats": seats})
}
