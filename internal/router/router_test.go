package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/iliyamo/event-ticketing/internal/booking"
	"github.com/iliyamo/event-ticketing/internal/handler"
	"github.com/iliyamo/event-ticketing/internal/model"
	"github.com/iliyamo/event-ticketing/internal/review"
	"github.com/iliyamo/event-ticketing/internal/utils"
)

type nopLedger struct{}

func (nopLedger) CreateBooking(context.Context, booking.CreateRequest) (*model.Booking, error) {
	return &model.Booking{}, nil
}
func (nopLedger) ListUserBookings(context.Context, string) ([]model.BookingDetail, error)  { return nil, nil }
func (nopLedger) ComputeReminders(context.Context, string) ([]model.Reminder, error)       { return nil, nil }
func (nopLedger) CancelBooking(context.Context, string) error                              { return nil }
func (nopLedger) ListAdminBookings(context.Context, string) ([]model.BookingDetail, error) { return nil, nil }
func (nopLedger) AdminCancelBooking(context.Context, string) error                         { return nil }

type nopReviews struct{}

func (nopReviews) Submit(context.Context, review.SubmitRequest) (*model.Review, error) {
	return &model.Review{}, nil
}
func (nopReviews) Moderate(context.Context, string, model.ReviewStatus) (*model.Review, error) {
	return &model.Review{Status: model.ReviewApproved}, nil
}
func (nopReviews) ListPendingForAdmin(context.Context, string) ([]model.Review, error)  { return nil, nil }
func (nopReviews) ListApprovedForEvent(context.Context, string) ([]model.Review, error) { return nil, nil }

type nopStore struct{}

func (nopStore) Create(context.Context, *model.Venue) error                 { return nil }
func (nopStore) GetByID(context.Context, string) (*model.Venue, error)      { return &model.Venue{}, nil }
func (nopStore) ListByAdmin(context.Context, string) ([]model.Venue, error) { return nil, nil }
func (nopStore) Update(context.Context, *model.Venue) error                 { return nil }
func (nopStore) Delete(context.Context, string) error                       { return nil }

type nopEvents struct{}

func (nopEvents) Create(context.Context, *model.Event) error            { return nil }
func (nopEvents) GetByID(context.Context, string) (*model.Event, error) { return &model.Event{}, nil }
func (nopEvents) List(context.Context, string) ([]model.Event, error)   { return nil, nil }
func (nopEvents) Update(context.Context, *model.Event) error            { return nil }
func (nopEvents) Delete(context.Context, string) error                  { return nil }

type nopShows struct{}

func (nopShows) Create(context.Context, *model.Show) error                 { return nil }
func (nopShows) GetDetails(context.Context, string) (*model.Show, error)   { return &model.Show{}, nil }
func (nopShows) ListByEvent(context.Context, string) ([]model.Show, error) { return nil, nil }
func (nopShows) LockSeats(context.Context, string, []string) error         { return nil }

func newEcho(secret string) *echo.Echo {
	e := echo.New()
	e.Validator = handler.NewValidator()
	RegisterRoutes(e, Handlers{
		Health:   func(c echo.Context) error { return c.NoContent(http.StatusOK) },
		Bookings: handler.NewBookingHandler(nopLedger{}),
		Reviews:  handler.NewReviewHandler(nopReviews{}),
		Catalog:  handler.NewCatalogHandler(nopStore{}, nopEvents{}, nopShows{}, time.UTC, zap.NewNop()),
	}, Options{JWTSecret: secret, Log: zap.NewNop()})
	return e
}

func TestRoutesRegistered(t *testing.T) {
	e := newEcho("")
	have := map[string]bool{}
	for _, r := range e.Routes() {
		have[r.Method+" "+r.Path] = true
	}
	for _, want := range []string{
		"GET /healthz",
		"POST /api/bookings",
		"GET /api/bookings/user/:email",
		"GET /api/bookings/reminders/:email",
		"DELETE /api/bookings/:id",
		"POST /api/reviews",
		"PUT /api/reviews/moderate/:id",
		"GET /api/reviews/admin/pending/:adminEmail",
		"GET /api/reviews/event/:eventId",
		"GET /api/shows/:id/seats",
		"GET /api/admin/venues",
		"POST /api/admin/create-venue",
		"PUT /api/admin/venues/:id",
		"DELETE /api/admin/venues/:id",
		"GET /api/admin/events",
		"POST /api/admin/events",
		"PUT /api/admin/events/:id",
		"DELETE /api/admin/events/:id",
		"POST /api/admin/create-show",
		"GET /api/admin/shows/:eventId",
		"GET /api/admin/show-details/:id",
		"PUT /api/admin/shows/:id/lock-seats",
		"GET /api/admin/bookings",
		"DELETE /api/admin/bookings/:id",
		"GET /api/admin/reviews",
		"PUT /api/admin/reviews/:id",
	} {
		assert.True(t, have[want], want)
	}
}

func TestAdminWritesNeedTokenWhenSecretSet(t *testing.T) {
	e := newEcho("s3cret")
	target := "/api/admin/bookings/6f1c1b0e-7f43-4a5e-9f59-2a3d7c0f9d11"

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, target, nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	tok, err := utils.NewAccessToken("s3cret", "admin@x.io", "ADMIN", time.Minute)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodDelete, target, nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+tok.Token)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	// public reads stay open
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/admin/events", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
