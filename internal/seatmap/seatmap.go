// Package seatmap models a venue's seat grid. Seats are addressed by a row
// label followed by a 1-based column number ("A1", "C7", "AA12"). Rows are
// labelled A..Z, then AA, AB and so on.
package seatmap

import (
	"errors"
	"fmt"
	"math/bits"
	"strconv"
	"strings"
)

// ErrMalformedSeat is returned by Parse for ids that are not row+column.
var ErrMalformedSeat = errors.New("malformed seat id")

// Seat is a position in the grid. Row is zero-based, Col is one-based, so
// Seat{Row: 2, Col: 7} is "C7".
type Seat struct {
	Row int
	Col int
}

// ID returns the canonical seat identifier.
func (s Seat) ID() string {
	return RowLabel(s.Row) + strconv.Itoa(s.Col)
}

// Parse reads a seat identifier. Surrounding spaces and lower case letters
// are accepted; leading zeros in the column are not significant.
func Parse(id string) (Seat, error) {
	s := strings.ToUpper(strings.TrimSpace(id))
	i := 0
	for i < len(s) && s[i] >= 'A' && s[i] <= 'Z' {
		i++
	}
	if i == 0 || i == len(s) {
		return Seat{}, fmt.Errorf("%w: %q", ErrMalformedSeat, id)
	}
	row, ok := RowIndex(s[:i])
	if !ok {
		return Seat{}, fmt.Errorf("%w: %q", ErrMalformedSeat, id)
	}
	col, err := strconv.Atoi(s[i:])
	if err != nil || col < 1 || strings.ContainsAny(s[i:], "+-") {
		return Seat{}, fmt.Errorf("%w: %q", ErrMalformedSeat, id)
	}
	return Seat{Row: row, Col: col}, nil
}

// RowLabel converts a zero-based row index to its label (0 -> A, 26 -> AA).
func RowLabel(i int) string {
	if i < 0 {
		return ""
	}
	var res []byte
	for {
		res = append(res, byte('A'+i%26))
		i = i/26 - 1
		if i < 0 {
			break
		}
	}
	for j, k := 0, len(res)-1; j < k; j, k = j+1, k-1 {
		res[j], res[k] = res[k], res[j]
	}
	return string(res)
}

// RowIndex converts a row label back to its zero-based index.
func RowIndex(label string) (int, bool) {
	s := strings.ToUpper(strings.TrimSpace(label))
	if s == "" {
		return -1, false
	}
	n := 0
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if ch < 'A' || ch > 'Z' {
			return -1, false
		}
		n = n*26 + int(ch-'A'+1)
	}
	return n - 1, true
}

// Grid bounds. MaxRows covers row labels A through ZZ.
const (
	MaxRows = 702
	MaxCols = 1000
)

// ErrGridBounds is returned for grids with a dimension outside
// 1..MaxRows or 1..MaxCols.
var ErrGridBounds = errors.New("seat grid out of bounds")

// Grid is a venue's seat extent.
type Grid struct {
	Rows int
	Cols int
}

// Valid reports whether both dimensions are within bounds.
func (g Grid) Valid() bool {
	return g.Rows >= 1 && g.Rows <= MaxRows && g.Cols >= 1 && g.Cols <= MaxCols
}

// Contains reports whether s lies inside the grid. Nothing lies inside an
// invalid grid.
func (g Grid) Contains(s Seat) bool {
	return g.Valid() && s.Row >= 0 && s.Row < g.Rows && s.Col >= 1 && s.Col <= g.Cols
}

// Size is the number of seats in the grid, or 0 for an invalid grid.
func (g Grid) Size() int {
	if !g.Valid() {
		return 0
	}
	return g.Rows * g.Cols
}

// Index maps a seat to its slot in a row-major occupancy bitset.
func (g Grid) Index(s Seat) int {
	return s.Row*g.Cols + (s.Col - 1)
}

// Resolve parses and range-checks every id and returns the canonical ids in
// request order. It fails on an invalid grid and on the first malformed,
// out-of-grid or repeated seat.
func (g Grid) Resolve(ids []string) ([]string, error) {
	if !g.Valid() {
		return nil, fmt.Errorf("%w: %dx%d", ErrGridBounds, g.Rows, g.Cols)
	}
	occ := NewOccupancy(g)
	out := make([]string, 0, len(ids))
	for _, raw := range ids {
		s, err := Parse(raw)
		if err != nil {
			return nil, err
		}
		if !g.Contains(s) {
			return nil, fmt.Errorf("seat %s is outside the %dx%d grid", s.ID(), g.Rows, g.Cols)
		}
		if !occ.Set(s) {
			return nil, fmt.Errorf("seat %s is listed more than once", s.ID())
		}
		out = append(out, s.ID())
	}
	return out, nil
}

// Occupancy is a fixed-size bitset over a grid.
type Occupancy struct {
	grid Grid
	bits []uint64
}

// NewOccupancy returns an empty bitset sized for g.
func NewOccupancy(g Grid) *Occupancy {
	return &Occupancy{grid: g, bits: make([]uint64, (g.Size()+63)/64)}
}

// Set marks s occupied. It returns false if s was already set or lies
// outside the grid.
func (o *Occupancy) Set(s Seat) bool {
	if !o.grid.Contains(s) {
		return false
	}
	i := o.grid.Index(s)
	w, m := i/64, uint64(1)<<(uint(i)%64)
	if o.bits[w]&m != 0 {
		return false
	}
	o.bits[w] |= m
	return true
}

// Has reports whether s is marked.
func (o *Occupancy) Has(s Seat) bool {
	if !o.grid.Contains(s) {
		return false
	}
	i := o.grid.Index(s)
	return o.bits[i/64]&(uint64(1)<<(uint(i)%64)) != 0
}

// Count returns the number of occupied seats.
func (o *Occupancy) Count() int {
	n := 0
	for _, w := range o.bits {
		n += bits.OnesCount64(w)
	}
	return n
}

// Load marks every parsable, in-grid id and returns the ids it skipped.
func (o *Occupancy) Load(ids []string) (skipped []string) {
	for _, id := range ids {
		s, err := Parse(id)
		if err != nil || !o.Set(s) {
			skipped = append(skipped, id)
		}
	}
	return skipped
}
