package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-ticketing/internal/model"
	"github.com/iliyamo/event-ticketing/internal/review"
)

// ReviewService is the review aggregator as seen by HTTP handlers.
type ReviewService interface {
	Submit(ctx context.Context, req review.SubmitRequest) (*model.Review, error)
	Moderate(ctx context.Context, id string, status model.ReviewStatus) (*model.Review, error)
	ListPendingForAdmin(ctx context.Context, adminEmail string) ([]model.Review, error)
	ListApprovedForEvent(ctx context.Context, eventID string) ([]model.Review, error)
}

// ReviewHandler serves /api/reviews and the admin review routes.
type ReviewHandler struct {
	Reviews ReviewService
}

// NewReviewHandler panics if svc is nil.
func NewReviewHandler(svc ReviewService) *ReviewHandler {
	if svc == nil {
		panic("nil review service passed to NewReviewHandler")
	}
	return &ReviewHandler{Reviews: svc}
}

type submitReviewRequest struct {
	EventID   string `json:"eventId" validate:"required"`
	UserEmail string `json:"userEmail" validate:"required"`
	UserName  string `json:"userName" validate:"required"`
	Rating    int    `json:"rating" validate:"required"`
	Comment   string `json:"comment" validate:"required"`
}

type moderateRequest struct {
	Status model.ReviewStatus `json:"status" validate:"required,oneof=approved rejected"`
}

// Submit handles POST /api/reviews.
func (h *ReviewHandler) Submit(c echo.Context) error {
	var req submitReviewRequest
	if err := bind(c, &req); err != nil {
		return fail(c, err)
	}
	rv, err := h.Reviews.Submit(c.Request().Context(), review.SubmitRequest(req))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": "Review sent to Admin for approval.", "review": rv})
}

// Moderate handles PUT /api/reviews/moderate/:id.
func (h *ReviewHandler) Moderate(c echo.Context) error {
	rv, err := h.moderate(c)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Review " + string(rv.Status) + "!", "review": rv})
}

// AdminModerate handles PUT /api/admin/reviews/:id and returns the updated
// review itself.
func (h *ReviewHandler) AdminModerate(c echo.Context) error {
	rv, err := h.moderate(c)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, rv)
}

func (h *ReviewHandler) moderate(c echo.Context) (*model.Review, error) {
	var req moderateRequest
	if err := bind(c, &req); err != nil {
		return nil, err
	}
	return h.Reviews.Moderate(c.Request().Context(), c.Param("id"), req.Status)
}

// Pending handles GET /api/reviews/admin/pending/:adminEmail.
func (h *ReviewHandler) Pending(c echo.Context) error {
	return h.pending(c, c.Param("adminEmail"))
}

// AdminPending handles GET /api/admin/reviews?adminEmail=.
func (h *ReviewHandler) AdminPending(c echo.Context) error {
	return h.pending(c, c.QueryParam("adminEmail"))
}

func (h *ReviewHandler) pending(c echo.Context, claimed string) error {
	list, err := h.Reviews.ListPendingForAdmin(c.Request().Context(), actingAdmin(c, claimed))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

// ForEvent handles GET /api/reviews/event/:eventId.
func (h *ReviewHandler) ForEvent(c echo.Context) error {
	list, err := h.Reviews.ListApprovedForEvent(c.Request().Context(), c.Param("eventId"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, list)
}
