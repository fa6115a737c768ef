// Package pricing derives a seat's tier and price from its row position.
//
// The first 20% of rows are Gold, rows up to 70% are Silver and the rest
// are Bronze. Boundaries compare the row index against the fractional row
// count with a strict less-than, so in a 10-row venue index 1 is Gold and
// index 2 is Silver.
package pricing

import (
	"errors"
	"fmt"

	"github.com/iliyamo/event-ticketing/internal/model"
	"github.com/iliyamo/event-ticketing/internal/seatmap"
)

// Tier is a seat price class.
type Tier string

const (
	Gold   Tier = "Gold"
	Silver Tier = "Silver"
	Bronze Tier = "Bronze"
)

const (
	goldShare   = 0.2
	silverShare = 0.7
)

// ErrUnavailable means the venue or show data needed to price a seat is
// missing. Callers must not show a price or accept a booking.
var ErrUnavailable = errors.New("seat map unavailable")

// TierForRow returns the tier of the zero-based row index in a venue with
// rows rows.
func TierForRow(index, rows int) Tier {
	f := float64(index)
	switch {
	case f < float64(rows)*goldShare:
		return Gold
	case f < float64(rows)*silverShare:
		return Silver
	default:
		return Bronze
	}
}

// PriceOf returns the show price for a tier.
func PriceOf(t Tier, p model.Prices) float64 {
	switch t {
	case Gold:
		return p.Gold
	case Silver:
		return p.Silver
	default:
		return p.Bronze
	}
}

// Quote is the tier and price of one seat.
type Quote struct {
	Seat  string  `json:"id"`
	Tier  Tier    `json:"tier"`
	Price float64 `json:"price"`
}

// Price quotes a single seat.
func Price(seatID string, venueRows int, prices model.Prices) (Quote, error) {
	if venueRows <= 0 {
		return Quote{}, ErrUnavailable
	}
	s, err := seatmap.Parse(seatID)
	if err != nil {
		return Quote{}, err
	}
	if s.Row >= venueRows {
		return Quote{}, fmt.Errorf("seat %s: row outside venue", s.ID())
	}
	t := TierForRow(s.Row, venueRows)
	return Quote{Seat: s.ID(), Tier: t, Price: PriceOf(t, prices)}, nil
}

// Total prices every seat and returns the sum.
func Total(seats []string, venueRows int, prices model.Prices) (float64, error) {
	var sum float64
	for _, id := range seats {
		q, err := Price(id, venueRows, prices)
		if err != nil {
			return 0, err
		}
		sum += q.Price
	}
	return sum, nil
}

// SeatState is a seat in a rendered seat map.
type SeatState struct {
	Quote
	Booked bool `json:"booked"`
}

// Row is one row of a rendered seat map.
type Row struct {
	Label string      `json:"label"`
	Tier  Tier        `json:"tier"`
	Price float64     `json:"price"`
	Seats []SeatState `json:"seats"`
}

// SeatMap is a show's full grid with per-seat tier, price and occupancy.
type SeatMap struct {
	ShowID    string       `json:"showId"`
	Rows      []Row        `json:"rows"`
	Prices    model.Prices `json:"prices"`
	Total     int          `json:"totalSeats"`
	Available int          `json:"availableSeats"`
}

// BuildSeatMap renders the seat map of show at venue. It fails closed when
// either is missing or the venue grid is empty or out of bounds.
func BuildSeatMap(show *model.Show, venue *model.Venue) (*SeatMap, error) {
	if show == nil || venue == nil {
		return nil, ErrUnavailable
	}
	g := venue.Grid()
	if !g.Valid() {
		return nil, ErrUnavailable
	}
	occ := seatmap.NewOccupancy(g)
	occ.Load(show.BookedSeats)

	m := &SeatMap{ShowID: show.ID, Prices: show.Prices, Total: g.Size(), Rows: make([]Row, 0, g.Rows)}
	for r := 0; r < g.Rows; r++ {
		t := TierForRow(r, g.Rows)
		price := PriceOf(t, show.Prices)
		row := Row{Label: seatmap.RowLabel(r), Tier: t, Price: price, Seats: make([]SeatState, 0, g.Cols)}
		for c := 1; c <= g.Cols; c++ {
			s := seatmap.Seat{Row: r, Col: c}
			row.Seats = append(row.Seats, SeatState{
				Quote:  Quote{Seat: s.ID(), Tier: t, Price: price},
				Booked: occ.Has(s),
			})
		}
		m.Rows = append(m.Rows, row)
	}
	m.Available = m.Total - occ.Count()
	return m, nil
}
