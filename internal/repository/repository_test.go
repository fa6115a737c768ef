package repository

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/event-ticketing/internal/database"
	"github.com/iliyamo/event-ticketing/internal/model"
)

// These tests need a MySQL server. Point TEST_DB_DSN at a scratch database,
// e.g. root:secret@tcp(127.0.0.1:3306)/tickets_test?parseTime=true&clientFoundRows=true
var testDB *sqlx.DB

func TestMain(m *testing.M) {
	if dsn := os.Getenv("TEST_DB_DSN"); dsn != "" {
		db, err := database.Open(context.Background(), dsn)
		if err != nil {
			fmt.Fprintf(os.Stderr, "open test db: %v\n", err)
			os.Exit(1)
		}
		if err := database.Migrate(context.Background(), db); err != nil {
			fmt.Fprintf(os.Stderr, "migrate test db: %v\n", err)
			os.Exit(1)
		}
		testDB = db
	}
	os.Exit(m.Run())
}

func requireDB(t *testing.T) *sqlx.DB {
	t.Helper()
	if testDB == nil {
		t.Skip("TEST_DB_DSN not set")
	}
	return testDB
}

type fixture struct {
	venue *model.Venue
	event *model.Event
	show  *model.Show
}

func newFixture(t *testing.T, db *sqlx.DB) fixture {
	t.Helper()
	ctx := context.Background()
	admin := uuid.NewString() + "@admin.test"

	v := &model.Venue{ID: uuid.NewString(), Name: "Hall", City: "Pune", Address: "1 Main St", Rows: 10, Cols: 10, AdminEmail: admin}
	require.NoError(t, NewVenueRepo(db).Create(ctx, v))

	e := &model.Event{ID: uuid.NewString(), Name: "Play", AdminOwner: "Admin", AdminEmail: admin, ActiveVenues: []string{v.ID}}
	require.NoError(t, NewEventRepo(db).Create(ctx, e))

	s := &model.Show{ID: uuid.NewString(), EventID: e.ID, VenueID: v.ID, Date: "2030-01-01", Time: "18:30",
		Prices: model.Prices{Gold: 300, Silver: 200, Bronze: 100}, AdminEmail: admin}
	require.NoError(t, NewShowRepo(db).Create(ctx, s))

	return fixture{venue: v, event: e, show: s}
}

func newBooking(showID, email string, seats ...string) *model.Booking {
	return &model.Booking{
		ID: uuid.NewString(), ShowID: showID, UserEmail: email, Seats: seats,
		BasePrice: 100, ServiceFee: 30, TotalAmount: 130, BookingDate: time.Now().UTC(),
	}
}

func TestBookingClaimsSeatsAtomically(t *testing.T) {
	db := requireDB(t)
	ctx := context.Background()
	f := newFixture(t, db)
	bookings := NewBookingRepo(db)
	shows := NewShowRepo(db)

	first := newBooking(f.show.ID, "a@example.com", "A5", "A6")
	require.NoError(t, bookings.Create(ctx, first))
	assert.Equal(t, []string{"A5", "A6"}, first.Seats)

	second := newBooking(f.show.ID, "b@example.com", "A7", "A6")
	err := bookings.Create(ctx, second)
	require.ErrorIs(t, err, ErrSeatTaken)
	var taken *SeatTakenError
	require.ErrorAs(t, err, &taken)
	assert.Equal(t, []string{"A6"}, taken.Seats)

	_, err = bookings.GetByID(ctx, second.ID)
	assert.ErrorIs(t, err, ErrBookingNotFound, "rejected booking must not persist")

	s, err := shows.GetByID(ctx, f.show.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"A5", "A6"}, s.BookedSeats)
}

func TestConcurrentBookingsOfSameSeat(t *testing.T) {
	db := requireDB(t)
	ctx := context.Background()
	f := newFixture(t, db)
	bookings := NewBookingRepo(db)

	const n = 8
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = bookings.Create(ctx, newBooking(f.show.ID, fmt.Sprintf("u%d@example.com", i), "C3", "C4"))
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.ErrorIs(t, err, ErrSeatTaken)
	}
	assert.Equal(t, 1, ok)
}

func TestDeleteReleasesSeats(t *testing.T) {
	db := requireDB(t)
	ctx := context.Background()
	f := newFixture(t, db)
	bookings := NewBookingRepo(db)

	b := newBooking(f.show.ID, "a@example.com", "B1", "B2")
	require.NoError(t, bookings.Create(ctx, b))
	require.NoError(t, bookings.Delete(ctx, b))
	assert.ErrorIs(t, bookings.Delete(ctx, b), ErrBookingNotFound)

	again := newBooking(f.show.ID, "c@example.com", "B2", "B1")
	require.NoError(t, bookings.Create(ctx, again))

	list, err := bookings.ListByUser(ctx, "a@example.com")
	require.NoError(t, err)
	for _, d := range list {
		assert.NotEqual(t, b.ID, d.ID)
	}
}

func TestListByUserPopulatesShow(t *testing.T) {
	db := requireDB(t)
	ctx := context.Background()
	f := newFixture(t, db)
	bookings := NewBookingRepo(db)
	email := uuid.NewString() + "@example.com"

	older := newBooking(f.show.ID, email, "D1")
	require.NoError(t, bookings.Create(ctx, older))
	newer := newBooking(f.show.ID, email, "D2", "D3")
	require.NoError(t, bookings.Create(ctx, newer))

	list, err := bookings.ListByUser(ctx, email)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, newer.ID, list[0].ID)
	require.NotNil(t, list[0].Show)
	require.NotNil(t, list[0].Show.Event)
	assert.Equal(t, "Play", list[0].Show.Event.Name)
	assert.Equal(t, f.venue.ID, list[0].Show.Venue.ID)
	assert.Equal(t, []string{"D2", "D3"}, list[0].Seats)

	admin, err := bookings.ListByAdmin(ctx, f.event.AdminEmail)
	require.NoError(t, err)
	assert.Len(t, admin, 2)
}

func TestLockSeatsAndVenueGuards(t *testing.T) {
	db := requireDB(t)
	ctx := context.Background()
	f := newFixture(t, db)
	shows := NewShowRepo(db)
	venues := NewVenueRepo(db)
	events := NewEventRepo(db)

	require.NoError(t, NewBookingRepo(db).Create(ctx, newBooking(f.show.ID, "a@example.com", "J10")))
	require.NoError(t, shows.LockSeats(ctx, f.show.ID, []string{"A1", "J10"}))

	s, err := shows.GetByID(ctx, f.show.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"A1", "J10"}, s.BookedSeats)

	shrunk := *f.venue
	shrunk.Rows = 5
	assert.ErrorIs(t, venues.Update(ctx, &shrunk), ErrConflict)

	assert.ErrorIs(t, venues.Delete(ctx, f.venue.ID), ErrConflict)
	assert.ErrorIs(t, events.Delete(ctx, f.event.ID), ErrConflict)
	assert.ErrorIs(t, venues.Delete(ctx, uuid.NewString()), ErrVenueNotFound)
}

func TestBookingRechecksGridInTransaction(t *testing.T) {
	db := requireDB(t)
	ctx := context.Background()
	f := newFixture(t, db)
	bookings := NewBookingRepo(db)

	shrunk := *f.venue
	shrunk.Rows = 5
	require.NoError(t, NewVenueRepo(db).Update(ctx, &shrunk))

	// seats resolved against the old 10-row grid
	stale := newBooking(f.show.ID, "a@example.com", "A1", "J10")
	assert.ErrorIs(t, bookings.Create(ctx, stale), ErrSeatOutsideGrid)
	_, err := bookings.GetByID(ctx, stale.ID)
	assert.ErrorIs(t, err, ErrBookingNotFound)

	require.NoError(t, bookings.Create(ctx, newBooking(f.show.ID, "a@example.com", "E10")))
	assert.ErrorIs(t, bookings.Create(ctx, newBooking(uuid.NewString(), "a@example.com", "A1")), ErrShowNotFound)
}

func TestReviewModeration(t *testing.T) {
	db := requireDB(t)
	ctx := context.Background()
	f := newFixture(t, db)
	reviews := NewReviewRepo(db)
	events := NewEventRepo(db)

	mk := func(email string, rating int) *model.Review {
		rv := &model.Review{ID: uuid.NewString(), EventID: f.event.ID, UserEmail: email, UserName: "U", Rating: rating, Comment: "ok"}
		require.NoError(t, reviews.Create(ctx, rv))
		return rv
	}
	r1 := mk("a@example.com", 5)
	r2 := mk("b@example.com", 4)
	r3 := mk("c@example.com", 1)

	dup := &model.Review{ID: uuid.NewString(), EventID: f.event.ID, UserEmail: "a@example.com", UserName: "U", Rating: 3, Comment: "again"}
	assert.ErrorIs(t, reviews.Create(ctx, dup), ErrReviewExists)

	pending, err := reviews.ListPendingByAdmin(ctx, f.event.AdminEmail)
	require.NoError(t, err)
	assert.Len(t, pending, 3)

	_, err = reviews.Moderate(ctx, r1.ID, model.ReviewApproved)
	require.NoError(t, err)
	_, err = reviews.Moderate(ctx, r2.ID, model.ReviewApproved)
	require.NoError(t, err)
	_, err = reviews.Moderate(ctx, r3.ID, model.ReviewRejected)
	require.NoError(t, err)

	_, err = reviews.Moderate(ctx, r1.ID, model.ReviewRejected)
	assert.ErrorIs(t, err, ErrAlreadyModerated)

	e, err := events.GetByID(ctx, f.event.ID)
	require.NoError(t, err)
	assert.Equal(t, 4.5, e.AverageRating)
	assert.Equal(t, 2, e.NumReviews)

	approved, err := reviews.ListApprovedByEvent(ctx, f.event.ID)
	require.NoError(t, err)
	assert.Len(t, approved, 2)
}
