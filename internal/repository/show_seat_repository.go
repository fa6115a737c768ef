package repository

import (
	"context"
	"database/sql"
	"sort"
	"strings"

	"github.com/jmoiron/sqlx"
)

// The show_seats table is the occupancy set of every show. A row exists
// for each occupied seat; booking_id is NULL for admin locks. The helpers
// here take the caller's transaction so seat claims commit or roll back
// together with the booking row they belong to.

type seatClaim struct {
	seat     string
	position int
}

// addSeatsIfAvailableTx claims seats for bookingID in one INSERT. The
// (show_id, seat_id) primary key rejects the whole statement if any seat is
// already occupied, in which case a *SeatTakenError lists the clashing
// seats. Rows are inserted in seat order so concurrent claims lock keys in
// the same order; position keeps the order the seats were requested in.
func addSeatsIfAvailableTx(ctx context.Context, tx *sqlx.Tx, showID, bookingID string, seats []string) error {
	if len(seats) == 0 {
		return nil
	}
	claims := make([]seatClaim, len(seats))
	for i, s := range seats {
		claims[i] = seatClaim{seat: s, position: i}
	}
	sort.Slice(claims, func(i, j int) bool { return claims[i].seat < claims[j].seat })

	var b strings.Builder
	b.WriteString(`INSERT INTO show_seats (show_id, seat_id, booking_id, position) VALUES `)
	args := make([]any, 0, len(claims)*4)
	for i, c := range claims {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString("(?, ?, ?, ?)")
		args = append(args, showID, c.seat, bookingID, c.position)
	}
	_, err := tx.ExecContext(ctx, b.String(), args...)
	switch {
	case err == nil:
		return nil
	case isDuplicate(err):
		taken, qerr := occupiedAmong(ctx, tx, showID, seats)
		if qerr != nil {
			return &SeatTakenError{}
		}
		return &SeatTakenError{Seats: taken}
	case isLockContention(err):
		// another transaction is claiming an overlapping seat set
		return &SeatTakenError{}
	case isMissingParent(err):
		return ErrShowNotFound
	}
	return err
}

// removeSeatsTx releases every seat held by bookingID on showID. Seats that
// are already gone are ignored.
func removeSeatsTx(ctx context.Context, tx *sqlx.Tx, showID, bookingID string) (int64, error) {
	res, err := tx.ExecContext(ctx, `DELETE FROM show_seats WHERE show_id = ? AND booking_id = ?`, showID, bookingID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// occupiedAmong returns which of seats are currently occupied on showID, in
// request order.
func occupiedAmong(ctx context.Context, q sqlx.QueryerContext, showID string, seats []string) ([]string, error) {
	query, args, err := sqlx.In(`SELECT seat_id FROM show_seats WHERE show_id = ? AND seat_id IN (?)`, showID, seats)
	if err != nil {
		return nil, err
	}
	var found []string
	if err := sqlx.SelectContext(ctx, q, &found, query, args...); err != nil {
		return nil, err
	}
	set := make(map[string]bool, len(found))
	for _, s := range found {
		set[s] = true
	}
	out := make([]string, 0, len(found))
	for _, s := range seats {
		if set[s] {
			out = append(out, s)
		}
	}
	return out, nil
}

// lockSeats adds seats to the occupancy set without attributing them to a
// booking. Seats that are already occupied stay as they are.
func lockSeats(ctx context.Context, db sqlx.ExecerContext, showID string, seats []string) error {
	if len(seats) == 0 {
		return nil
	}
	var b strings.Builder
	b.WriteString(`INSERT INTO show_seats (show_id, seat_id, booking_id, position) VALUES `)
	args := make([]any, 0, len(seats)*3)
	for i, s := range seats {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString("(?, ?, NULL, ?)")
		args = append(args, showID, s, i)
	}
	b.WriteString(` ON DUPLICATE KEY UPDATE seat_id = seat_id`)
	_, err := db.ExecContext(ctx, b.String(), args...)
	if isMissingParent(err) {
		return ErrShowNotFound
	}
	return err
}

// bookedSeatsByShow loads the occupancy set of each show id.
func bookedSeatsByShow(ctx context.Context, q sqlx.QueryerContext, showIDs []string) (map[string][]string, error) {
	out := make(map[string][]string, len(showIDs))
	if len(showIDs) == 0 {
		return out, nil
	}
	query, args, err := sqlx.In(`SELECT show_id, seat_id FROM show_seats WHERE show_id IN (?) ORDER BY created_at, booking_id, position`, showIDs)
	if err != nil {
		return nil, err
	}
	var rows []struct {
		ShowID string `db:"show_id"`
		SeatID string `db:"seat_id"`
	}
	if err := sqlx.SelectContext(ctx, q, &rows, query, args...); err != nil {
		return nil, err
	}
	for _, r := range rows {
		out[r.ShowID] = append(out[r.ShowID], r.SeatID)
	}
	return out, nil
}

// seatsByBooking loads each booking's seats in requested order.
func seatsByBooking(ctx context.Context, q sqlx.QueryerContext, bookingIDs []string) (map[string][]string, error) {
	out := make(map[string][]string, len(bookingIDs))
	if len(bookingIDs) == 0 {
		return out, nil
	}
	query, args, err := sqlx.In(`SELECT booking_id, seat_id FROM show_seats WHERE booking_id IN (?) ORDER BY booking_id, position`, bookingIDs)
	if err != nil {
		return nil, err
	}
	var rows []struct {
		BookingID sql.NullString `db:"booking_id"`
		SeatID    string         `db:"seat_id"`
	}
	if err := sqlx.SelectContext(ctx, q, &rows, query, args...); err != nil {
		return nil, err
	}
	for _, r := range rows {
		out[r.BookingID.String] = append(out[r.BookingID.String], r.SeatID)
	}
	return out, nil
}
