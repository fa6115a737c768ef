// Package booking implements the booking ledger: the only path through
// which seats of a show become occupied by, or are released from, a
// booking. It also derives reminders from a user's bookings.
package booking

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/iliyamo/event-ticketing/internal/apperr"
	"github.com/iliyamo/event-ticketing/internal/model"
	"github.com/iliyamo/event-ticketing/internal/pricing"
	"github.com/iliyamo/event-ticketing/internal/queue"
	"github.com/iliyamo/event-ticketing/internal/repository"
)

// ShowStore loads a show with its occupancy set, event and venue.
type ShowStore interface {
	GetDetails(ctx context.Context, id string) (*model.Show, error)
}

// BookingStore persists bookings. Create and Delete must apply the
// booking row and the show's occupancy change in one transaction; Create
// fails with repository.ErrSeatTaken when any seat is already occupied.
type BookingStore interface {
	Create(ctx context.Context, b *model.Booking) error
	GetByID(ctx context.Context, id string) (*model.Booking, error)
	Delete(ctx context.Context, b *model.Booking) error
	ListByUser(ctx context.Context, userEmail string) ([]model.BookingDetail, error)
	ListByAdmin(ctx context.Context, adminEmail string) ([]model.BookingDetail, error)
}

// EventPublisher announces committed booking changes.
type EventPublisher interface {
	Publish(ctx context.Context, ev queue.BookingEvent) error
}

// Ledger is the booking service.
type Ledger struct {
	shows    ShowStore
	bookings BookingStore
	events   EventPublisher
	log      *zap.Logger
	loc      *time.Location
	now      func() time.Time
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithClock overrides the ledger's time source.
func WithClock(now func() time.Time) Option { return func(l *Ledger) { l.now = now } }

// WithLocation sets the zone show date/time strings are interpreted in.
func WithLocation(loc *time.Location) Option { return func(l *Ledger) { l.loc = loc } }

// WithPublisher enables booking event publishing.
func WithPublisher(p EventPublisher) Option { return func(l *Ledger) { l.events = p } }

// NewLedger constructs a Ledger and panics if a store is nil.
func NewLedger(shows ShowStore, bookings BookingStore, log *zap.Logger, opts ...Option) *Ledger {
	if shows == nil || bookings == nil {
		panic("nil store passed to NewLedger")
	}
	if log == nil {
		log = zap.NewNop()
	}
	l := &Ledger{shows: shows, bookings: bookings, log: log, loc: time.UTC, now: time.Now}
	for _, o := range opts {
		o(l)
	}
	return l
}

// CreateRequest is the input of CreateBooking.
type CreateRequest struct {
	ShowID      string
	UserEmail   string
	Seats       []string
	BasePrice   float64
	ServiceFee  float64
	TotalAmount float64
}

// amountTolerance absorbs client-side float rounding.
var amountTolerance = decimal.NewFromFloat(0.01)

// CreateBooking books every requested seat or none of them.
func (l *Ledger) CreateBooking(ctx context.Context, req CreateRequest) (*model.Booking, error) {
	email, err := NormalizeEmail(req.UserEmail)
	if err != nil {
		return nil, err
	}
	if _, err := uuid.Parse(req.ShowID); err != nil {
		return nil, apperr.Input("invalid show id")
	}
	if len(req.Seats) == 0 {
		return nil, apperr.Input("at least one seat is required")
	}
	base, fee, total, err := reconcileAmounts(req.BasePrice, req.ServiceFee, req.TotalAmount)
	if err != nil {
		return nil, err
	}

	show, err := l.shows.GetDetails(ctx, req.ShowID)
	if errors.Is(err, repository.ErrShowNotFound) {
		return nil, apperr.NotFound("show not found")
	}
	if err != nil {
		return nil, l.storage("load show", err)
	}
	if show.Venue == nil || !show.Venue.Grid().Valid() {
		return nil, apperr.NotFound(pricing.ErrUnavailable.Error())
	}
	seats, err := show.Venue.Grid().Resolve(req.Seats)
	if err != nil {
		return nil, apperr.Input("%s", err.Error())
	}

	// Early rejection from the snapshot; the store's conditional insert is
	// what actually decides.
	if taken := intersect(seats, show.BookedSeats); len(taken) > 0 {
		l.log.Info("booking rejected: seats taken", zap.String("show_id", show.ID), zap.Strings("seats", taken))
		return nil, apperr.Conflict("seat already booked", taken...)
	}

	if quoted, qerr := pricing.Total(seats, show.Venue.Rows, show.Prices); qerr == nil &&
		!decimal.NewFromFloat(quoted).Sub(decimal.NewFromFloat(base)).Abs().LessThanOrEqual(amountTolerance) {
		l.log.Warn("booking base price differs from seat pricing",
			zap.String("show_id", show.ID), zap.Float64("base_price", base), zap.Float64("quoted", quoted))
	}
	if fee != model.StandardServiceFee {
		l.log.Warn("booking service fee differs from standard",
			zap.String("show_id", show.ID), zap.Float64("service_fee", fee), zap.Float64("standard", model.StandardServiceFee))
	}

	b := &model.Booking{
		ID:          uuid.NewString(),
		ShowID:      show.ID,
		UserEmail:   email,
		Seats:       seats,
		BasePrice:   base,
		ServiceFee:  fee,
		TotalAmount: total,
		BookingDate: l.now().UTC(),
	}
	err = l.bookings.Create(ctx, b)
	switch {
	case errors.Is(err, repository.ErrSeatTaken):
		var st *repository.SeatTakenError
		var taken []string
		if errors.As(err, &st) {
			taken = st.Seats
		}
		l.log.Info("booking rejected: concurrent claim", zap.String("show_id", show.ID), zap.Strings("seats", taken))
		return nil, apperr.Conflict("seat already booked", taken...)
	case errors.Is(err, repository.ErrShowNotFound):
		return nil, apperr.NotFound("show not found")
	case errors.Is(err, repository.ErrSeatOutsideGrid):
		return nil, apperr.Input("venue seat grid changed; reselect seats")
	case err != nil:
		return nil, l.storage("create booking", err)
	}

	l.log.Info("booking created", zap.String("booking_id", b.ID), zap.String("show_id", b.ShowID), zap.Strings("seats", b.Seats))
	l.publish(ctx, queue.BookingConfirmed, b, show, false)
	return b, nil
}

// ListUserBookings returns a user's bookings, most recent first.
func (l *Ledger) ListUserBookings(ctx context.Context, userEmail string) ([]model.BookingDetail, error) {
	email, err := lookupEmail(userEmail)
	if err != nil {
		return nil, err
	}
	list, err := l.bookings.ListByUser(ctx, email)
	if err != nil {
		return nil, l.storage("list bookings", err)
	}
	return list, nil
}

// ListAdminBookings returns bookings for the admin's events.
func (l *Ledger) ListAdminBookings(ctx context.Context, adminEmail string) ([]model.BookingDetail, error) {
	email, err := lookupEmail(adminEmail)
	if err != nil {
		return nil, apperr.Input("admin email required")
	}
	list, err := l.bookings.ListByAdmin(ctx, email)
	if err != nil {
		return nil, l.storage("list admin bookings", err)
	}
	return list, nil
}

// ComputeReminders returns notices for the user's shows in the next 48
// hours. Nothing is stored; every call recomputes.
func (l *Ledger) ComputeReminders(ctx context.Context, userEmail string) ([]model.Reminder, error) {
	list, err := l.ListUserBookings(ctx, userEmail)
	if err != nil {
		return nil, err
	}
	return Reminders(l.now(), l.loc, list), nil
}

// CancelBooking cancels on behalf of the user. It is refused once the show
// is less than CancellationWindow away.
func (l *Ledger) CancelBooking(ctx context.Context, bookingID string) error {
	return l.cancel(ctx, bookingID, false)
}

// AdminCancelBooking cancels regardless of the cancellation window.
func (l *Ledger) AdminCancelBooking(ctx context.Context, bookingID string) error {
	return l.cancel(ctx, bookingID, true)
}

func (l *Ledger) cancel(ctx context.Context, bookingID string, force bool) error {
	if _, err := uuid.Parse(bookingID); err != nil {
		return apperr.Input("invalid booking id")
	}
	b, err := l.bookings.GetByID(ctx, bookingID)
	if errors.Is(err, repository.ErrBookingNotFound) {
		return apperr.NotFound("booking not found")
	}
	if err != nil {
		return l.storage("load booking", err)
	}
	show, err := l.shows.GetDetails(ctx, b.ShowID)
	if err != nil && !errors.Is(err, repository.ErrShowNotFound) {
		return l.storage("load show", err)
	}

	if !force {
		if show == nil {
			return apperr.Policy("cancellation window cannot be determined")
		}
		starts, err := show.StartsAt(l.loc)
		if err != nil {
			return apperr.Policy("cancellation window cannot be determined")
		}
		if !CancellationAllowed(l.now(), starts) {
			return apperr.Policy("cancellation window expired (5-hour limit)")
		}
	}

	err = l.bookings.Delete(ctx, b)
	if errors.Is(err, repository.ErrBookingNotFound) {
		return apperr.NotFound("booking not found")
	}
	if err != nil {
		return l.storage("cancel booking", err)
	}

	l.log.Info("booking cancelled", zap.String("booking_id", b.ID), zap.Strings("seats", b.Seats), zap.Bool("forced", force))
	l.publish(ctx, queue.BookingCancelled, b, show, force)
	return nil
}

// HasAttended reports whether the user holds a booking for a show of the
// event that has already started.
func (l *Ledger) HasAttended(ctx context.Context, eventID, userEmail string) (bool, error) {
	list, err := l.ListUserBookings(ctx, userEmail)
	if err != nil {
		return false, err
	}
	now := l.now()
	for _, b := range list {
		if b.Show == nil || b.Show.EventID != eventID {
			continue
		}
		if starts, err := b.Show.StartsAt(l.loc); err == nil && !starts.After(now) {
			return true, nil
		}
	}
	return false, nil
}

// publish is best-effort: the booking change is already committed.
func (l *Ledger) publish(ctx context.Context, typ string, b *model.Booking, show *model.Show, forced bool) {
	if l.events == nil {
		return
	}
	ev := queue.BookingEvent{
		Type:        typ,
		BookingID:   b.ID,
		ShowID:      b.ShowID,
		UserEmail:   b.UserEmail,
		Seats:       b.Seats,
		TotalAmount: b.TotalAmount,
		OccurredAt:  l.now().UTC().Format(time.RFC3339),
		Forced:      forced,
	}
	if show != nil {
		ev.EventID = show.EventID
		if show.Event != nil {
			ev.EventName = show.Event.Name
		}
		if show.Venue != nil {
			ev.VenueName = show.Venue.Name
		}
		if starts, err := show.StartsAt(l.loc); err == nil {
			ev.StartsAt = starts.Format(time.RFC3339)
		}
	}
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 3*time.Second)
	defer cancel()
	if err := l.events.Publish(pctx, ev); err != nil {
		l.log.Warn("publish booking event failed", zap.String("type", typ), zap.String("booking_id", b.ID), zap.Error(err))
	}
}

func (l *Ledger) storage(op string, err error) error {
	l.log.Error("booking storage failure", zap.String("op", op), zap.Error(err))
	return apperr.Storage(op, err)
}

// reconcileAmounts validates the client's price breakdown. A zero total is
// derived from the parts.
func reconcileAmounts(base, fee, total float64) (float64, float64, float64, error) {
	if base < 0 || fee < 0 || total < 0 {
		return 0, 0, 0, apperr.Input("amounts must not be negative")
	}
	sum := decimal.NewFromFloat(base).Add(decimal.NewFromFloat(fee))
	if total == 0 {
		t, _ := sum.Round(2).Float64()
		return base, fee, t, nil
	}
	if sum.Sub(decimal.NewFromFloat(total)).Abs().GreaterThan(amountTolerance) {
		return 0, 0, 0, apperr.Input("totalAmount must equal basePrice + serviceFee")
	}
	return base, fee, total, nil
}

// intersect returns the elements of want present in have, in want's order.
func intersect(want, have []string) []string {
	if len(have) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(have))
	for _, s := range have {
		set[s] = struct{}{}
	}
	var out []string
	for _, s := range want {
		if _, ok := set[s]; ok {
			out = append(out, s)
		}
	}
	return out
}
