package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/event-ticketing/internal/model"
)

var prices = model.Prices{Gold: 300, Silver: 200, Bronze: 100}

func TestTierBoundariesTenRows(t *testing.T) {
	want := []Tier{Gold, Gold, Silver, Silver, Silver, Silver, Silver, Bronze, Bronze, Bronze}
	for i, tier := range want {
		assert.Equal(t, tier, TierForRow(i, 10), "row index %d", i)
	}
}

func TestTierBoundariesFractionalRowCount(t *testing.T) {
	// 7 rows: gold < 1.4, silver < 4.9
	assert.Equal(t, Gold, TierForRow(1, 7))
	assert.Equal(t, Silver, TierForRow(2, 7))
	assert.Equal(t, Silver, TierForRow(4, 7))
	assert.Equal(t, Bronze, TierForRow(5, 7))

	// a single row venue is all gold
	assert.Equal(t, Gold, TierForRow(0, 1))
}

func TestPriceScenario(t *testing.T) {
	tests := []struct {
		seat  string
		tier  Tier
		price float64
	}{
		{"A5", Gold, 300},
		{"E5", Silver, 200},
		{"J5", Bronze, 100},
	}
	for _, tt := range tests {
		q, err := Price(tt.seat, 10, prices)
		require.NoError(t, err)
		assert.Equal(t, tt.tier, q.Tier, tt.seat)
		assert.Equal(t, tt.price, q.Price, tt.seat)
	}
}

func TestPriceFailsClosed(t *testing.T) {
	_, err := Price("A1", 0, prices)
	assert.ErrorIs(t, err, ErrUnavailable)

	_, err = Price("K1", 10, prices)
	assert.Error(t, err)

	_, err = Price("??", 10, prices)
	assert.Error(t, err)
}

func TestTotal(t *testing.T) {
	sum, err := Total([]string{"A5", "A6", "E1", "J9"}, 10, prices)
	require.NoError(t, err)
	assert.Equal(t, 900.0, sum)
}

func TestBuildSeatMap(t *testing.T) {
	venue := &model.Venue{Rows: 10, Cols: 4}
	show := &model.Show{ID: "s1", Prices: prices, BookedSeats: []string{"A1", "J4"}}

	m, err := BuildSeatMap(show, venue)
	require.NoError(t, err)
	assert.Equal(t, 40, m.Total)
	assert.Equal(t, 38, m.Available)
	require.Len(t, m.Rows, 10)

	first := m.Rows[0]
	assert.Equal(t, "A", first.Label)
	assert.Equal(t, Gold, first.Tier)
	assert.True(t, first.Seats[0].Booked)
	assert.False(t, first.Seats[1].Booked)

	last := m.Rows[9]
	assert.Equal(t, "J", last.Label)
	assert.Equal(t, 100.0, last.Price)
	assert.Equal(t, "J4", last.Seats[3].Seat)
	assert.True(t, last.Seats[3].Booked)
}

func TestBuildSeatMapFailsClosed(t *testing.T) {
	_, err := BuildSeatMap(nil, &model.Venue{Rows: 1, Cols: 1})
	assert.ErrorIs(t, err, ErrUnavailable)
	_, err = BuildSeatMap(&model.Show{}, nil)
	assert.ErrorIs(t, err, ErrUnavailable)
	_, err = BuildSeatMap(&model.Show{}, &model.Venue{})
	assert.ErrorIs(t, err, ErrUnavailable)
}
