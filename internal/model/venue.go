package model

import (
	"time"

	"github.com/iliyamo/event-ticketing/internal/seatmap"
)

// Venue is a physical location with a rectangular seat grid. The grid
// dimensions bound every seat id a show at this venue can contain.
//
// Fields:
//  ID         – UUID primary key.
//  Name       – display name.
//  City       – city the venue is in.
//  Address    – street address.
//  Rows       – number of seat rows (A, B, ...); 1..seatmap.MaxRows.
//  Cols       – seats per row; 1..seatmap.MaxCols.
//  AdminEmail – the admin that owns the venue.
type Venue struct {
	ID         string    `json:"_id" db:"id"`                  // venues.id
	Name       string    `json:"name" db:"name"`               // venues.name
	City       string    `json:"city" db:"city"`               // venues.city
	Address    string    `json:"address" db:"address"`         // venues.address
	Rows       int       `json:"rows" db:"seat_rows"`          // venues.seat_rows
	Cols       int       `json:"cols" db:"seat_cols"`          // venues.seat_cols
	AdminEmail string    `json:"adminEmail" db:"admin_email"`  // venues.admin_email
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`    // venues.created_at
	UpdatedAt  time.Time `json:"updatedAt" db:"updated_at"`    // venues.updated_at
}

// Grid returns the venue's seat extent.
func (v Venue) Grid() seatmap.Grid {
	return seatmap.Grid{Rows: v.Rows, Cols: v.Cols}
}
