package seatmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want Seat
	}{
		{"A1", Seat{Row: 0, Col: 1}},
		{"c7", Seat{Row: 2, Col: 7}},
		{" J10 ", Seat{Row: 9, Col: 10}},
		{"AA3", Seat{Row: 26, Col: 3}},
		{"B05", Seat{Row: 1, Col: 5}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Parse(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseRejectsMalformed(t *testing.T) {
	for _, in := range []string{"", "A", "7", "A0", "A-1", "A+1", "7A", "A1B", "Ä1"} {
		_, err := Parse(in)
		assert.ErrorIs(t, err, ErrMalformedSeat, in)
	}
}

func TestRowLabelRoundTrip(t *testing.T) {
	for i := 0; i < 800; i++ {
		idx, ok := RowIndex(RowLabel(i))
		require.True(t, ok)
		require.Equal(t, i, idx)
	}
	assert.Equal(t, "Z", RowLabel(25))
	assert.Equal(t, "AA", RowLabel(26))
	assert.Equal(t, "", RowLabel(-1))
}

func TestSeatID(t *testing.T) {
	s, err := Parse("b05")
	require.NoError(t, err)
	assert.Equal(t, "B5", s.ID())
}

func TestGridResolve(t *testing.T) {
	g := Grid{Rows: 10, Cols: 12}

	ids, err := g.Resolve([]string{"a5", "J12", "C7"})
	require.NoError(t, err)
	assert.Equal(t, []string{"A5", "J12", "C7"}, ids)

	_, err = g.Resolve([]string{"K1"})
	assert.Error(t, err, "row outside grid")

	_, err = g.Resolve([]string{"A13"})
	assert.Error(t, err, "column outside grid")

	_, err = g.Resolve([]string{"A5", "a5"})
	assert.Error(t, err, "duplicate after normalization")
}

func TestOccupancy(t *testing.T) {
	g := Grid{Rows: 9, Cols: 9}
	occ := NewOccupancy(g)

	assert.True(t, occ.Set(Seat{Row: 0, Col: 1}))
	assert.False(t, occ.Set(Seat{Row: 0, Col: 1}))
	assert.True(t, occ.Set(Seat{Row: 8, Col: 9}))
	assert.False(t, occ.Set(Seat{Row: 9, Col: 1}))

	assert.True(t, occ.Has(Seat{Row: 8, Col: 9}))
	assert.False(t, occ.Has(Seat{Row: 4, Col: 4}))
	assert.Equal(t, 2, occ.Count())

	skipped := occ.Load([]string{"E5", "bogus", "A1", "Z1"})
	assert.Equal(t, []string{"bogus", "A1", "Z1"}, skipped)
	assert.Equal(t, 3, occ.Count())
}

func TestGridBounds(t *testing.T) {
	assert.True(t, Grid{Rows: MaxRows, Cols: MaxCols}.Valid())
	assert.Equal(t, MaxRows*MaxCols, Grid{Rows: MaxRows, Cols: MaxCols}.Size())
	assert.Equal(t, "ZZ", RowLabel(MaxRows-1))

	for _, g := range []Grid{
		{Rows: 0, Cols: 10},
		{Rows: MaxRows + 1, Cols: 10},
		{Rows: 10, Cols: MaxCols + 1},
		{Rows: 1 << 32, Cols: 1 << 32},
		{Rows: 3037000500, Cols: 3037000500},
		{Rows: 200000, Cols: 200000},
	} {
		assert.False(t, g.Valid(), "%dx%d", g.Rows, g.Cols)
		assert.Zero(t, g.Size(), "%dx%d", g.Rows, g.Cols)
		assert.False(t, g.Contains(Seat{Row: 0, Col: 1}))

		_, err := g.Resolve([]string{"A1"})
		assert.ErrorIs(t, err, ErrGridBounds, "%dx%d", g.Rows, g.Cols)

		occ := NewOccupancy(g)
		assert.False(t, occ.Set(Seat{Row: 0, Col: 1}))
		assert.False(t, occ.Has(Seat{Row: 0, Col: 1}))
	}
}
