// Package queue carries booking lifecycle events over RabbitMQ.
package queue

// Routing keys, also used as durable queue names.
const (
	BookingConfirmed = "booking.confirmed"
	BookingCancelled = "booking.cancelled"
)

// BookingEvent is published after a booking is committed or cancelled. It
// holds enough context for consumers to log or notify without querying the
// primary database.
type BookingEvent struct {
	Type        string   `json:"type"`
	MessageID   string   `json:"message_id"`
	BookingID   string   `json:"booking_id"`
	ShowID      string   `json:"show_id"`
	EventID     string   `json:"event_id"`
	EventName   string   `json:"event_name"`
	VenueName   string   `json:"venue_name"`
	UserEmail   string   `json:"user_email"`
	Seats       []string `json:"seats"`
	TotalAmount float64  `json:"total_amount"`
	StartsAt    string   `json:"starts_at"`
	OccurredAt  string   `json:"occurred_at"`
	// Forced is set when an admin cancelled outside the user window.
	Forced bool `json:"forced,omitempty"`
}
