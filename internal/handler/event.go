package handler

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-ticketing/internal/apperr"
	"github.com/iliyamo/event-ticketing/internal/model"
)

const defaultAdminOwner = "Admin"

type createEventRequest struct {
	Name         string           `json:"name" validate:"required"`
	Poster       string           `json:"poster"`
	Duration     string           `json:"duration"`
	Genre        string           `json:"genre"`
	Languages    model.StringList `json:"languages"`
	Cast         model.StringList `json:"cast"`
	ActiveVenues []string         `json:"activeVenues"`
	AdminOwner   string           `json:"adminOwner"`
	AdminEmail   string           `json:"adminEmail"`
}

type updateEventRequest struct {
	Name         *string           `json:"name"`
	Poster       *string           `json:"poster"`
	Duration     *string           `json:"duration"`
	Genre        *string           `json:"genre"`
	Languages    *model.StringList `json:"languages"`
	Cast         *model.StringList `json:"cast"`
	ActiveVenues *[]string         `json:"activeVenues"`
	AdminOwner   *string           `json:"adminOwner"`
}

// venueIDs validates and canonicalizes active venue ids, dropping
// repeats.
func venueIDs(raw []string) ([]string, error) {
	out := make([]string, 0, len(raw))
	seen := make(map[string]bool, len(raw))
	for _, r := range raw {
		id, err := parseID(r, "venue")
		if err != nil {
			return nil, err
		}
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out, nil
}

// ListEvents handles GET /api/admin/events. With adminEmail (or a token)
// only that admin's events are listed.
func (h *CatalogHandler) ListEvents(c echo.Context) error {
	admin := actingAdmin(c, c.QueryParam("adminEmail"))
	if admin == "undefined" {
		admin = ""
	}
	events, err := h.Events.List(c.Request().Context(), admin)
	if err != nil {
		return fail(c, h.storeErr("list events", err, ""))
	}
	return c.JSON(http.StatusOK, events)
}

// CreateEvent handles POST /api/admin/events. Rating fields always start
// at zero.
func (h *CatalogHandler) CreateEvent(c echo.Context) error {
	var req createEventRequest
	if err := bind(c, &req); err != nil {
		return fail(c, err)
	}
	admin := actingAdmin(c, req.AdminEmail)
	if admin == "" {
		return fail(c, apperr.Input("adminEmail is required"))
	}
	venues, err := venueIDs(req.ActiveVenues)
	if err != nil {
		return fail(c, err)
	}
	owner := strings.TrimSpace(req.AdminOwner)
	if owner == "" {
		owner = defaultAdminOwner
	}
	ev := &model.Event{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(req.Name),
		Poster:       req.Poster,
		Duration:     strings.TrimSpace(req.Duration),
		Genre:        strings.TrimSpace(req.Genre),
		Languages:    nonNilList(req.Languages),
		Cast:         nonNilList(req.Cast),
		ActiveVenues: venues,
		AdminOwner:   owner,
		AdminEmail:   admin,
	}
	if err := h.Events.Create(c.Request().Context(), ev); err != nil {
		return fail(c, h.storeErr("create event", err, ""))
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": "Event created successfully!", "event": ev})
}

// UpdateEvent handles PUT /api/admin/events/:id. Omitted fields keep their
// value.
func (h *CatalogHandler) UpdateEvent(c echo.Context) error {
	id, err := parseID(c.Param("id"), "event")
	if err != nil {
		return fail(c, err)
	}
	var req updateEventRequest
	if err := bind(c, &req); err != nil {
		return fail(c, err)
	}
	ctx := c.Request().Context()
	ev, err := h.Events.GetByID(ctx, id)
	if err != nil {
		return fail(c, h.storeErr("load event", err, ""))
	}
	setString(&ev.Name, req.Name)
	setString(&ev.Duration, req.Duration)
	setString(&ev.Genre, req.Genre)
	setString(&ev.AdminOwner, req.AdminOwner)
	if req.Poster != nil {
		ev.Poster = *req.Poster
	}
	if req.Languages != nil {
		ev.Languages = nonNilList(*req.Languages)
	}
	if req.Cast != nil {
		ev.Cast = nonNilList(*req.Cast)
	}
	if req.ActiveVenues != nil {
		if ev.ActiveVenues, err = venueIDs(*req.ActiveVenues); err != nil {
			return fail(c, err)
		}
	}
	if ev.Name == "" {
		return fail(c, apperr.Input("name must not be empty"))
	}
	if err := h.Events.Update(ctx, ev); err != nil {
		return fail(c, h.storeErr("update event", err, ""))
	}
	return c.JSON(http.StatusOK, ev)
}

// DeleteEvent handles DELETE /api/admin/events/:id.
func (h *CatalogHandler) DeleteEvent(c echo.Context) error {
	id, err := parseID(c.Param("id"), "event")
	if err != nil {
		return fail(c, err)
	}
	if err := h.Events.Delete(c.Request().Context(), id); err != nil {
		return fail(c, h.storeErr("delete event", err, "event has scheduled shows"))
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Event deleted successfully"})
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = strings.TrimSpace(*v)
	}
}

func nonNilList(l model.StringList) model.StringList {
	if l == nil {
		return model.StringList{}
	}
	return l
}
