package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/event-ticketing/internal/model"
	"github.com/iliyamo/event-ticketing/internal/seatmap"
)

const bookingColumns = `b.id, b.show_id, b.user_email, b.base_price, b.service_fee, b.total_amount, b.booking_date, b.created_at`

// BookingRepo persists bookings. Every write that touches a booking also
// touches the show's occupancy set inside the same transaction.
type BookingRepo struct {
	db *sqlx.DB
}

// NewBookingRepo constructs a BookingRepo with the given DB handle.
func NewBookingRepo(db *sqlx.DB) *BookingRepo {
	return &BookingRepo{db: db}
}

// Create inserts the booking and claims its seats in one transaction. If
// any seat is already occupied the transaction is rolled back and a
// *SeatTakenError (matching ErrSeatTaken) is returned; no booking row is
// left behind. An unknown show yields ErrShowNotFound. The venue row is
// share-locked and every seat re-checked against its grid, so a concurrent
// grid shrink either waits for this booking or is seen by it
// (ErrSeatOutsideGrid).
func (r *BookingRepo) Create(ctx context.Context, b *model.Booking) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err := checkGridTx(ctx, tx, b.ShowID, b.Seats); err != nil {
		return err
	}

	const q = `INSERT INTO bookings (id, show_id, user_email, base_price, service_fee, total_amount, booking_date)
	           VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err = tx.ExecContext(ctx, q, b.ID, b.ShowID, b.UserEmail, b.BasePrice, b.ServiceFee, b.TotalAmount, b.BookingDate.UTC())
	if isMissingParent(err) {
		return ErrShowNotFound
	}
	if err != nil {
		return err
	}
	if err := addSeatsIfAvailableTx(ctx, tx, b.ShowID, b.ID, b.Seats); err != nil {
		return err
	}
	created, err := getBooking(ctx, tx, b.ID)
	if err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	*b = *created
	return nil
}

func checkGridTx(ctx context.Context, tx *sqlx.Tx, showID string, seats []string) error {
	var g struct {
		Rows int `db:"seat_rows"`
		Cols int `db:"seat_cols"`
	}
	const q = `SELECT v.seat_rows, v.seat_cols FROM shows s JOIN venues v ON v.id = s.venue_id
	           WHERE s.id = ? LOCK IN SHARE MODE`
	err := tx.GetContext(ctx, &g, q, showID)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrShowNotFound
	}
	if err != nil {
		return err
	}
	grid := seatmap.Grid{Rows: g.Rows, Cols: g.Cols}
	for _, id := range seats {
		if s, perr := seatmap.Parse(id); perr != nil || !grid.Contains(s) {
			return ErrSeatOutsideGrid
		}
	}
	return nil
}

// GetByID returns a booking with its seats, or ErrBookingNotFound.
func (r *BookingRepo) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	return getBooking(ctx, r.db, id)
}

// Delete releases the booking's seats and removes the booking in one
// transaction. It returns ErrBookingNotFound if the booking is already
// gone, for example after a concurrent cancellation.
func (r *BookingRepo) Delete(ctx context.Context, b *model.Booking) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if _, err := removeSeatsTx(ctx, tx, b.ShowID, b.ID); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM bookings WHERE id = ?`, b.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrBookingNotFound
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// ListByUser returns the user's bookings, most recent first, each with its
// show, event and venue.
func (r *BookingRepo) ListByUser(ctx context.Context, userEmail string) ([]model.BookingDetail, error) {
	var rows []model.Booking
	const q = `SELECT ` + bookingColumns + ` FROM bookings b WHERE b.user_email = ? ORDER BY b.created_at DESC`
	if err := r.db.SelectContext(ctx, &rows, q, userEmail); err != nil {
		return nil, err
	}
	return r.details(ctx, rows)
}

// ListByAdmin returns bookings of shows whose event is owned by
// adminEmail, most recent first.
func (r *BookingRepo) ListByAdmin(ctx context.Context, adminEmail string) ([]model.BookingDetail, error) {
	var rows []model.Booking
	const q = `SELECT ` + bookingColumns + `
	           FROM bookings b
	           JOIN shows s ON s.id = b.show_id
	           JOIN events e ON e.id = s.event_id
	           WHERE e.admin_email = ?
	           ORDER BY b.created_at DESC`
	if err := r.db.SelectContext(ctx, &rows, q, adminEmail); err != nil {
		return nil, err
	}
	return r.details(ctx, rows)
}

func (r *BookingRepo) details(ctx context.Context, rows []model.Booking) ([]model.BookingDetail, error) {
	out := make([]model.BookingDetail, 0, len(rows))
	if len(rows) == 0 {
		return out, nil
	}
	ids := make([]string, 0, len(rows))
	showIDs := make([]string, 0, len(rows))
	for _, b := range rows {
		ids = append(ids, b.ID)
		showIDs = append(showIDs, b.ShowID)
	}
	seats, err := seatsByBooking(ctx, r.db, ids)
	if err != nil {
		return nil, err
	}
	shows, err := loadShows(ctx, r.db, showIDs, true)
	if err != nil {
		return nil, err
	}
	for _, b := range rows {
		b.Seats = nonNil(seats[b.ID])
		out = append(out, model.BookingDetail{Booking: b, Show: shows[b.ShowID]})
	}
	return out, nil
}

func getBooking(ctx context.Context, q sqlx.QueryerContext, id string) (*model.Booking, error) {
	var b model.Booking
	err := sqlx.GetContext(ctx, q, &b, `SELECT `+bookingColumns+` FROM bookings b WHERE b.id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, err
	}
	seats, err := seatsByBooking(ctx, q, []string{id})
	if err != nil {
		return nil, err
	}
	b.Seats = nonNil(seats[id])
	return &b, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
