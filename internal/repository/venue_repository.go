package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/event-ticketing/internal/model"
	"github.com/iliyamo/event-ticketing/internal/seatmap"
)

const venueColumns = `id, name, city, address, seat_rows, seat_cols, admin_email, created_at, updated_at`

// VenueRepo manages persistence for venues.
type VenueRepo struct {
	db *sqlx.DB
}

// NewVenueRepo constructs a VenueRepo with the given DB handle.
func NewVenueRepo(db *sqlx.DB) *VenueRepo {
	return &VenueRepo{db: db}
}

// Create inserts a venue and reloads it to pick up DB defaults.
func (r *VenueRepo) Create(ctx context.Context, v *model.Venue) error {
	const q = `INSERT INTO venues (id, name, city, address, seat_rows, seat_cols, admin_email) VALUES (?, ?, ?, ?, ?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, q, v.ID, v.Name, v.City, v.Address, v.Rows, v.Cols, v.AdminEmail); err != nil {
		return err
	}
	created, err := getVenue(ctx, r.db, v.ID)
	if err != nil {
		return err
	}
	*v = *created
	return nil
}

// GetByID returns ErrVenueNotFound when there is no matching row.
func (r *VenueRepo) GetByID(ctx context.Context, id string) (*model.Venue, error) {
	return getVenue(ctx, r.db, id)
}

// ListByAdmin returns the venues owned by adminEmail, newest first.
func (r *VenueRepo) ListByAdmin(ctx context.Context, adminEmail string) ([]model.Venue, error) {
	venues := []model.Venue{}
	const q = `SELECT ` + venueColumns + ` FROM venues WHERE admin_email = ? ORDER BY created_at DESC`
	if err := r.db.SelectContext(ctx, &venues, q, adminEmail); err != nil {
		return nil, err
	}
	return venues, nil
}

// Update writes the venue's descriptive fields and grid. Shrinking the grid
// so that an occupied seat of any show would fall outside it returns
// ErrConflict.
func (r *VenueRepo) Update(ctx context.Context, v *model.Venue) error {
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

	var current model.Venue
	err = tx.GetContext(ctx, &current, `SELECT `+venueColumns+` FROM venues WHERE id = ? FOR UPDATE`, v.ID)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrVenueNotFound
	}
	if err != nil {
		return err
	}

	if v.Rows < current.Rows || v.Cols < current.Cols {
		var occupied []string
		const q = `SELECT ss.seat_id FROM show_seats ss JOIN shows s ON s.id = ss.show_id WHERE s.venue_id = ?`
		if err := tx.SelectContext(ctx, &occupied, q, v.ID); err != nil {
			return err
		}
		g := v.Grid()
		for _, id := range occupied {
			if s, perr := seatmap.Parse(id); perr != nil || !g.Contains(s) {
				return ErrConflict
			}
		}
	}

	const upd = `UPDATE venues SET name = ?, city = ?, address = ?, seat_rows = ?, seat_cols = ? WHERE id = ?`
	if _, err := tx.ExecContext(ctx, upd, v.Name, v.City, v.Address, v.Rows, v.Cols, v.ID); err != nil {
		return err
	}
	updated, err := getVenue(ctx, tx, v.ID)
	if err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	*v = *updated
	return nil
}

// Delete removes a venue. It returns ErrConflict while any show is
// scheduled there and ErrVenueNotFound if the venue does not exist.
func (r *VenueRepo) Delete(ctx context.Context, id string) error {
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
	if err := tx.GetContext(ctx, &shows, `SELECT COUNT(*) FROM shows WHERE venue_id = ?`, id); err != nil {
		return err
	}
	if shows > 0 {
		return ErrConflict
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM venues WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrVenueNotFound
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

func getVenue(ctx context.Context, q sqlx.QueryerContext, id string) (*model.Venue, error) {
	var v model.Venue
	err := sqlx.GetContext(ctx, q, &v, `SELECT `+venueColumns+` FROM venues WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrVenueNotFound
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func loadVenues(ctx context.Context, q sqlx.QueryerContext, ids []string) (map[string]*model.Venue, error) {
	out := make(map[string]*model.Venue, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	query, args, err := sqlx.In(`SELECT `+venueColumns+` FROM venues WHERE id IN (?)`, ids)
	if err != nil {
		return nil, err
	}
	var venues []model.Venue
	if err := sqlx.SelectContext(ctx, q, &venues, query, args...); err != nil {
		return nil, err
	}
	for i := range venues {
		out[venues[i].ID] = &venues[i]
	}
	return out, nil
}
