package model

import (
	"errors"
	"strings"
	"time"
)

// Prices holds the per-tier seat price of a show.
type Prices struct {
	Gold   float64 `json:"gold"`
	Silver float64 `json:"silver"`
	Bronze float64 `json:"bronze"`
}

// Show is one scheduled screening of an event at a venue. BookedSeats is
// the occupancy set: every seat claimed by a booking or locked by an admin.
//
// Fields:
//  ID          – UUID primary key.
//  EventID     – event being screened.
//  VenueID     – venue hosting the screening.
//  Date        – local calendar date, "YYYY-MM-DD".
//  Time        – local wall clock time, "HH:MM".
//  Prices      – gold/silver/bronze tier prices.
//  AdminEmail  – admin that scheduled the show.
//  BookedSeats – occupied seat ids.
//  Event/Venue – populated on detail reads only.
type Show struct {
	ID          string    `json:"_id"`
	EventID     string    `json:"eventId"`
	VenueID     string    `json:"venueId"`
	Date        string    `json:"date"`
	Time        string    `json:"time"`
	Prices      Prices    `json:"prices"`
	AdminEmail  string    `json:"adminEmail"`
	BookedSeats []string  `json:"bookedSeats"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`

	Event *Event `json:"event,omitempty"`
	Venue *Venue `json:"venue,omitempty"`
}

// ErrShowTime is returned when a show's date or time cannot be parsed.
var ErrShowTime = errors.New("unparsable show date/time")

const showDateLayout = "2006-01-02"

var showTimeLayouts = []string{"15:04", "15:04:05", "3:04 PM", "3:04PM"}

// ParseShowTime combines a show's date and time into an instant in loc.
func ParseShowTime(date, clock string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	date, clock = strings.TrimSpace(date), strings.ToUpper(strings.TrimSpace(clock))
	for _, layout := range showTimeLayouts {
		if t, err := time.ParseInLocation(showDateLayout+" "+layout, date+" "+clock, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, ErrShowTime
}

// StartsAt returns the show's instant in loc.
func (s Show) StartsAt(loc *time.Location) (time.Time, error) {
	return ParseShowTime(s.Date, s.Time, loc)
}
