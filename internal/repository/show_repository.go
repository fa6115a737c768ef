package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/event-ticketing/internal/model"
)

// showRow mirrors the shows table; prices are flattened into columns.
type showRow struct {
	ID          string    `db:"id"`
	EventID     string    `db:"event_id"`
	VenueID     string    `db:"venue_id"`
	Date        string    `db:"show_date"`
	Time        string    `db:"show_time"`
	PriceGold   float64   `db:"price_gold"`
	PriceSilver float64   `db:"price_silver"`
	PriceBronze float64   `db:"price_bronze"`
	AdminEmail  string    `db:"admin_email"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

func (r showRow) toModel() *model.Show {
	return &model.Show{
		ID:          r.ID,
		EventID:     r.EventID,
		VenueID:     r.VenueID,
		Date:        r.Date,
		Time:        r.Time,
		Prices:      model.Prices{Gold: r.PriceGold, Silver: r.PriceSilver, Bronze: r.PriceBronze},
		AdminEmail:  r.AdminEmail,
		BookedSeats: []string{},
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

const showColumns = `id, event_id, venue_id, show_date, show_time, price_gold, price_silver, price_bronze, admin_email, created_at, updated_at`

// ShowRepo manages persistence for shows and their occupancy sets.
type ShowRepo struct {
	db *sqlx.DB
}

// NewShowRepo constructs a ShowRepo with the given DB handle.
func NewShowRepo(db *sqlx.DB) *ShowRepo {
	return &ShowRepo{db: db}
}

// Create inserts a show. The event and venue must exist; otherwise
// ErrEventNotFound or ErrVenueNotFound is returned.
func (r *ShowRepo) Create(ctx context.Context, s *model.Show) error {
	const q = `INSERT INTO shows (id, event_id, venue_id, show_date, show_time, price_gold, price_silver, price_bronze, admin_email)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, q, s.ID, s.EventID, s.VenueID, s.Date, s.Time,
		s.Prices.Gold, s.Prices.Silver, s.Prices.Bronze, s.AdminEmail)
	if isMissingParent(err) {
		// name which parent is missing
		if _, e := getEvent(ctx, r.db, s.EventID); errors.Is(e, ErrEventNotFound) {
			return ErrEventNotFound
		}
		return ErrVenueNotFound
	}
	if err != nil {
		return err
	}
	created, err := r.GetByID(ctx, s.ID)
	if err != nil {
		return err
	}
	*s = *created
	return nil
}

// GetByID returns a show with its occupancy set. It returns
// ErrShowNotFound when there is no matching row.
func (r *ShowRepo) GetByID(ctx context.Context, id string) (*model.Show, error) {
	shows, err := loadShows(ctx, r.db, []string{id}, false)
	if err != nil {
		return nil, err
	}
	s, ok := shows[id]
	if !ok {
		return nil, ErrShowNotFound
	}
	return s, nil
}

// GetDetails returns a show with its event and venue populated.
func (r *ShowRepo) GetDetails(ctx context.Context, id string) (*model.Show, error) {
	shows, err := loadShows(ctx, r.db, []string{id}, true)
	if err != nil {
		return nil, err
	}
	s, ok := shows[id]
	if !ok {
		return nil, ErrShowNotFound
	}
	return s, nil
}

// ListByEvent returns all shows of an event with their venues populated,
// ordered by date and time.
func (r *ShowRepo) ListByEvent(ctx context.Context, eventID string) ([]model.Show, error) {
	var ids []string
	const q = `SELECT id FROM shows WHERE event_id = ? ORDER BY show_date, show_time, created_at`
	if err := r.db.SelectContext(ctx, &ids, q, eventID); err != nil {
		return nil, err
	}
	shows, err := loadShows(ctx, r.db, ids, true)
	if err != nil {
		return nil, err
	}
	out := make([]model.Show, 0, len(ids))
	for _, id := range ids {
		if s, ok := shows[id]; ok {
			s.Event = nil
			out = append(out, *s)
		}
	}
	return out, nil
}

// LockSeats adds seats to the show's occupancy set administratively.
// Seats already occupied, by a booking or a previous lock, are unchanged.
func (r *ShowRepo) LockSeats(ctx context.Context, showID string, seats []string) error {
	return lockSeats(ctx, r.db, showID, seats)
}

// loadShows fetches shows by id together with their occupancy sets. With
// refs set, each show's event and venue are attached as well.
func loadShows(ctx context.Context, q sqlx.QueryerContext, ids []string, refs bool) (map[string]*model.Show, error) {
	out := make(map[string]*model.Show, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	query, args, err := sqlx.In(`SELECT `+showColumns+` FROM shows WHERE id IN (?)`, ids)
	if err != nil {
		return nil, err
	}
	var rows []showRow
	if err := sqlx.SelectContext(ctx, q, &rows, query, args...); err != nil {
		return nil, err
	}
	found := make([]string, 0, len(rows))
	for _, row := range rows {
		out[row.ID] = row.toModel()
		found = append(found, row.ID)
	}
	seats, err := bookedSeatsByShow(ctx, q, found)
	if err != nil {
		return nil, err
	}
	for id, s := range seats {
		out[id].BookedSeats = s
	}
	if !refs || len(rows) == 0 {
		return out, nil
	}

	eventIDs := make([]string, 0, len(rows))
	venueIDs := make([]string, 0, len(rows))
	for _, row := range rows {
		eventIDs = append(eventIDs, row.EventID)
		venueIDs = append(venueIDs, row.VenueID)
	}
	events, err := loadEvents(ctx, q, eventIDs)
	if err != nil {
		return nil, err
	}
	venues, err := loadVenues(ctx, q, venueIDs)
	if err != nil {
		return nil, err
	}
	for _, s := range out {
		s.Event = events[s.EventID]
		s.Venue = venues[s.VenueID]
	}
	return out, nil
}
