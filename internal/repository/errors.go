// Package repository contains the MySQL data access layer. Repositories
// return the sentinel values below so higher layers can tell a missing
// row apart from a constraint clash or a plain database failure.
package repository

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"
)

var (
	ErrVenueNotFound   = errors.New("venue not found")
	ErrEventNotFound   = errors.New("event not found")
	ErrShowNotFound    = errors.New("show not found")
	ErrBookingNotFound = errors.New("booking not found")
	ErrReviewNotFound  = errors.New("review not found")

	// ErrConflict is returned when a delete or update cannot proceed
	// because of dependent records, such as deleting a venue that still
	// hosts shows.
	ErrConflict = errors.New("conflict")

	// ErrReviewExists is returned when a user already reviewed an event.
	ErrReviewExists = errors.New("review already exists")

	// ErrAlreadyModerated is returned when moderating a review that is no
	// longer pending.
	ErrAlreadyModerated = errors.New("review already moderated")

	// ErrSeatOutsideGrid is returned when a booking names a seat the
	// venue's current grid no longer contains.
	ErrSeatOutsideGrid = errors.New("seat outside venue grid")

	// ErrSeatTaken is matched by *SeatTakenError.
	ErrSeatTaken = errors.New("seat already booked")
)

// SeatTakenError reports the requested seats that were already occupied
// when a booking tried to claim them.
type SeatTakenError struct {
	Seats []string
}

func (e *SeatTakenError) Error() string {
	if len(e.Seats) == 0 {
		return ErrSeatTaken.Error()
	}
	return fmt.Sprintf("%s: %s", ErrSeatTaken, strings.Join(e.Seats, ","))
}

func (e *SeatTakenError) Is(target error) bool { return target == ErrSeatTaken }

// MySQL server error numbers the repositories react to.
const (
	errDupEntry      = 1062
	errNoReferenced  = 1452
	errLockDeadlock  = 1213
	errLockWaitTimed = 1205
)

func mysqlErrNo(err error) uint16 {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number
	}
	return 0
}

func isDuplicate(err error) bool { return mysqlErrNo(err) == errDupEntry }

func isMissingParent(err error) bool { return mysqlErrNo(err) == errNoReferenced }

func isLockContention(err error) bool {
	n := mysqlErrNo(err)
	return n == errLockDeadlock || n == errLockWaitTimed
}
