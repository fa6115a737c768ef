package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-ticketing/internal/booking"
	"github.com/iliyamo/event-ticketing/internal/model"
)

// BookingService is the booking ledger as seen by HTTP handlers.
type BookingService interface {
	CreateBooking(ctx context.Context, req booking.CreateRequest) (*model.Booking, error)
	ListUserBookings(ctx context.Context, userEmail string) ([]model.BookingDetail, error)
	ComputeReminders(ctx context.Context, userEmail string) ([]model.Reminder, error)
	CancelBooking(ctx context.Context, bookingID string) error
	ListAdminBookings(ctx context.Context, adminEmail string) ([]model.BookingDetail, error)
	AdminCancelBooking(ctx context.Context, bookingID string) error
}

// BookingHandler serves /api/bookings and the admin booking routes.
type BookingHandler struct {
	Ledger BookingService
}

// NewBookingHandler panics if ledger is nil.
func NewBookingHandler(ledger BookingService) *BookingHandler {
	if ledger == nil {
		panic("nil ledger passed to NewBookingHandler")
	}
	return &BookingHandler{Ledger: ledger}
}

type createBookingRequest struct {
	ShowID      string   `json:"showId" validate:"required"`
	UserEmail   string   `json:"userEmail" validate:"required"`
	Seats       []string `json:"seats" validate:"required,min=1,dive,required"`
	BasePrice   float64  `json:"basePrice" validate:"gte=0"`
	ServiceFee  float64  `json:"serviceFee" validate:"gte=0"`
	TotalAmount float64  `json:"totalAmount" validate:"gte=0"`
}

// Create handles POST /api/bookings. Seat conflicts answer 400 with the
// taken seats so clients re-fetch the seat map.
func (h *BookingHandler) Create(c echo.Context) error {
	var req createBookingRequest
	if err := bind(c, &req); err != nil {
		return fail(c, err)
	}
	b, err := h.Ledger.CreateBooking(c.Request().Context(), booking.CreateRequest{
		ShowID:      req.ShowID,
		UserEmail:   req.UserEmail,
		Seats:       req.Seats,
		BasePrice:   req.BasePrice,
		ServiceFee:  req.ServiceFee,
		TotalAmount: req.TotalAmount,
	})
	if err != nil {
		return failWith(c, err, http.StatusBadRequest)
	}
	return c.JSON(http.StatusCreated, b)
}

// ListByUser handles GET /api/bookings/user/:email.
func (h *BookingHandler) ListByUser(c echo.Context) error {
	list, err := h.Ledger.ListUserBookings(c.Request().Context(), c.Param("email"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

// Reminders handles GET /api/bookings/reminders/:email.
func (h *BookingHandler) Reminders(c echo.Context) error {
	list, err := h.Ledger.ComputeReminders(c.Request().Context(), c.Param("email"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

// Cancel handles DELETE /api/bookings/:id.
func (h *BookingHandler) Cancel(c echo.Context) error {
	if err := h.Ledger.CancelBooking(c.Request().Context(), c.Param("id")); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Booking successfully cancelled and seats released"})
}

// ListForAdmin handles GET /api/admin/bookings?adminEmail=.
func (h *BookingHandler) ListForAdmin(c echo.Context) error {
	list, err := h.Ledger.ListAdminBookings(c.Request().Context(), actingAdmin(c, c.QueryParam("adminEmail")))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

// AdminCancel handles DELETE /api/admin/bookings/:id. The cancellation
// window does not apply.
func (h *BookingHandler) AdminCancel(c echo.Context) error {
	if err := h.Ledger.AdminCancelBooking(c.Request().Context(), c.Param("id")); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Booking cancelled by admin and seats released"})
}
