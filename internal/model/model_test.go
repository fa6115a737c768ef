package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseShowTime(t *testing.T) {
	loc := time.FixedZone("IST", 5*3600+1800)
	want := time.Date(2025, 5, 1, 18, 30, 0, 0, loc)

	for _, clock := range []string{"18:30", "18:30:00", "6:30 PM", "6:30pm"} {
		got, err := ParseShowTime("2025-05-01", clock, loc)
		require.NoError(t, err, clock)
		assert.True(t, want.Equal(got), clock)
	}

	_, err := ParseShowTime("01/05/2025", "18:30", loc)
	assert.ErrorIs(t, err, ErrShowTime)
	_, err = ParseShowTime("2025-05-01", "", loc)
	assert.ErrorIs(t, err, ErrShowTime)
}

func TestShowStartsAtDefaultsToUTC(t *testing.T) {
	s := Show{Date: "2025-12-31", Time: "23:59"}
	got, err := s.StartsAt(nil)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 12, 31, 23, 59, 0, 0, time.UTC), got)
}

func TestAggregateRatings(t *testing.T) {
	assert.Equal(t, Rating{}, AggregateRatings(nil))
	assert.Equal(t, Rating{Average: 5, Count: 1}, AggregateRatings([]int{5}))
	assert.Equal(t, Rating{Average: 4.3, Count: 3}, AggregateRatings([]int{5, 4, 4}))
	assert.Equal(t, Rating{Average: 3.7, Count: 3}, AggregateRatings([]int{5, 5, 1}))
	assert.Equal(t, Rating{Average: 2.5, Count: 2}, AggregateRatings([]int{2, 3}))
}

func TestReviewStatusValid(t *testing.T) {
	assert.True(t, ReviewApproved.Valid())
	assert.False(t, ReviewStatus("archived").Valid())
}

func TestStringList(t *testing.T) {
	var l StringList
	require.NoError(t, l.Scan([]byte(`["Hindi","English"]`)))
	assert.Equal(t, StringList{"Hindi", "English"}, l)

	require.NoError(t, l.Scan(nil))
	assert.Equal(t, StringList{}, l)

	v, err := StringList(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, "[]", v)

	b, err := json.Marshal(struct {
		Cast StringList `json:"cast"`
	}{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"cast":[]}`, string(b))

	assert.Error(t, l.Scan(42))
}

func TestBookingDetailRendersShowUnderShowID(t *testing.T) {
	d := BookingDetail{
		Booking: Booking{ID: "b1", ShowID: "s1"},
		Show:    &Show{ID: "s1", Date: "2025-05-01"},
	}
	b, err := json.Marshal(d)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(b, &out))
	show, ok := out["showId"].(map[string]any)
	require.True(t, ok, "showId should be the populated show")
	assert.Equal(t, "s1", show["_id"])
}

func TestStringListUnmarshalAcceptsSingleString(t *testing.T) {
	var body struct {
		Languages StringList `json:"languages"`
		Cast      StringList `json:"cast"`
		Missing   StringList `json:"missing"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"languages":"Hindi","cast":["A","B"],"missing":null}`), &body))
	assert.Equal(t, StringList{"Hindi"}, body.Languages)
	assert.Equal(t, StringList{"A", "B"}, body.Cast)
	assert.Empty(t, body.Missing)

	assert.Error(t, json.Unmarshal([]byte(`{"cast":42}`), &body))
}
