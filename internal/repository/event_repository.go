package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/event-ticketing/internal/model"
)

const eventColumns = `id, name, poster, duration, genre, languages, cast_members, admin_owner, admin_email, average_rating, num_reviews, created_at, updated_at`

// EventRepo manages persistence for events and their active venues.
type EventRepo struct {
	db *sqlx.DB
}

// NewEventRepo constructs an EventRepo with the given DB handle.
func NewEventRepo(db *sqlx.DB) *EventRepo {
	return &EventRepo{db: db}
}

// Create inserts an event together with its active venue links. An unknown
// venue id returns ErrVenueNotFound and nothing is written.
func (r *EventRepo) Create(ctx context.Context, e *model.Event) error {
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

	const q = `INSERT INTO events (id, name, poster, duration, genre, languages, cast_members, admin_owner, admin_email)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	if _, err := tx.ExecContext(ctx, q, e.ID, e.Name, e.Poster, e.Duration, e.Genre,
		e.Languages, e.Cast, e.AdminOwner, e.AdminEmail); err != nil {
		return err
	}
	if err := replaceEventVenuesTx(ctx, tx, e.ID, e.ActiveVenues); err != nil {
		return err
	}
	created, err := getEvent(ctx, tx, e.ID)
	if err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	*e = *created
	return nil
}

// GetByID returns ErrEventNotFound when there is no matching row.
func (r *EventRepo) GetByID(ctx context.Context, id string) (*model.Event, error) {
	return getEvent(ctx, r.db, id)
}

// List returns every event, or only those owned by adminEmail when it is
// non-empty. Newest first.
func (r *EventRepo) List(ctx context.Context, adminEmail string) ([]model.Event, error) {
	var ids []string
	var err error
	if adminEmail == "" {
		err = r.db.SelectContext(ctx, &ids, `SELECT id FROM events ORDER BY created_at DESC`)
	} else {
		err = r.db.SelectContext(ctx, &ids, `SELECT id FROM events WHERE admin_email = ? ORDER BY created_at DESC`, adminEmail)
	}
	if err != nil {
		return nil, err
	}
	events, err := loadEvents(ctx, r.db, ids)
	if err != nil {
		return nil, err
	}
	out := make([]model.Event, 0, len(ids))
	for _, id := range ids {
		if e, ok := events[id]; ok {
			out = append(out, *e)
		}
	}
	return out, nil
}

// Update writes the event's descriptive fields and replaces its active
// venues. Rating fields are never touched here.
func (r *EventRepo) Update(ctx context.Context, e *model.Event) error {
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

	const q = `UPDATE events SET name = ?, poster = ?, duration = ?, genre = ?, languages = ?, cast_members = ?, admin_owner = ?
	           WHERE id = ?`
	res, err := tx.ExecContext(ctx, q, e.Name, e.Poster, e.Duration, e.Genre, e.Languages, e.Cast, e.AdminOwner, e.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrEventNotFound
	}
	if err := replaceEventVenuesTx(ctx, tx, e.ID, e.ActiveVenues); err != nil {
		return err
	}
	updated, err := getEvent(ctx, tx, e.ID)
	if err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	*e = *updated
	return nil
}

// Delete removes an event and its reviews. It returns ErrConflict while
// any show of the event exists.
func (r *EventRepo) Delete(ctx context.Context, id string) error {
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

	var shows int
	if err := tx.GetContext(ctx, &shows, `SELECT COUNT(*) FROM shows WHERE event_id = ?`, id); err != nil {
		return err
	}
	if shows > 0 {
		return ErrConflict
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM events WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrEventNotFound
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

func replaceEventVenuesTx(ctx context.Context, tx *sqlx.Tx, eventID string, venueIDs []string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM event_venues WHERE event_id = ?`, eventID); err != nil {
		return err
	}
	seen := make(map[string]bool, len(venueIDs))
	for _, v := range venueIDs {
		if seen[v] {
			continue
		}
		seen[v] = true
		_, err := tx.ExecContext(ctx, `INSERT INTO event_venues (event_id, venue_id) VALUES (?, ?)`, eventID, v)
		if isMissingParent(err) {
			return ErrVenueNotFound
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func getEvent(ctx context.Context, q sqlx.QueryerContext, id string) (*model.Event, error) {
	events, err := loadEvents(ctx, q, []string{id})
	if err != nil {
		return nil, err
	}
	e, ok := events[id]
	if !ok {
		return nil, ErrEventNotFound
	}
	return e, nil
}

// loadEvents fetches events by id with their active venue ids attached.
func loadEvents(ctx context.Context, q sqlx.QueryerContext, ids []string) (map[string]*model.Event, error) {
	out := make(map[string]*model.Event, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	query, args, err := sqlx.In(`SELECT `+eventColumns+` FROM events WHERE id IN (?)`, ids)
	if err != nil {
		return nil, err
	}
	var events []model.Event
	if err := sqlx.SelectContext(ctx, q, &events, query, args...); err != nil {
		return nil, err
	}
	for i := range events {
		events[i].ActiveVenues = []string{}
		out[events[i].ID] = &events[i]
	}
	if len(events) == 0 {
		return out, nil
	}

	query, args, err = sqlx.In(`SELECT event_id, venue_id FROM event_venues WHERE event_id IN (?) ORDER BY venue_id`, ids)
	if err != nil {
		return nil, err
	}
	var links []struct {
		EventID string `db:"event_id"`
		VenueID string `db:"venue_id"`
	}
	if err := sqlx.SelectContext(ctx, q, &links, query, args...); err != nil {
		return nil, err
	}
	for _, l := range links {
		if e, ok := out[l.EventID]; ok {
			e.ActiveVenues = append(e.ActiveVenues, l.VenueID)
		}
	}
	return out, nil
}
