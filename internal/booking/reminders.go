package booking

import (
	"time"

	"github.com/iliyamo/event-ticketing/internal/model"
)

// CancellationWindow is how long before showtime a user may still cancel.
const CancellationWindow = 5 * time.Hour

// ReminderHorizon is the furthest ahead a booking produces a reminder.
const ReminderHorizon = 48 * time.Hour

type reminderWindow struct {
	within time.Duration
	label  string
}

// tightest first
var reminderWindows = []reminderWindow{
	{5 * time.Hour, "5 hours before"},
	{24 * time.Hour, "1 day before"},
	{ReminderHorizon, "2 days before"},
}

// ReminderLabel classifies the time until a show. ok is false when the show
// has started or is further than ReminderHorizon away.
func ReminderLabel(until time.Duration) (label string, ok bool) {
	if until <= 0 {
		return "", false
	}
	for _, w := range reminderWindows {
		if until <= w.within {
			return w.label, true
		}
	}
	return "", false
}

// Reminders derives upcoming-show notices from bookings at now. Bookings
// without a show, or whose show date/time cannot be parsed in loc, are
// skipped.
func Reminders(now time.Time, loc *time.Location, bookings []model.BookingDetail) []model.Reminder {
	out := []model.Reminder{}
	for _, b := range bookings {
		if b.Show == nil {
			continue
		}
		starts, err := b.Show.StartsAt(loc)
		if err != nil {
			continue
		}
		label, ok := ReminderLabel(starts.Sub(now))
		if !ok {
			continue
		}
		var name string
		if b.Show.Event != nil {
			name = b.Show.Event.Name
		}
		out = append(out, model.Reminder{BookingID: b.ID, EventName: name, TimeLabel: label, StartsAt: starts})
	}
	return out
}

// CancellationAllowed reports whether a user may cancel a booking for a
// show starting at starts.
func CancellationAllowed(now, starts time.Time) bool {
	return starts.Sub(now) >= CancellationWindow
}
