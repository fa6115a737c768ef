package model

import "time"

// StandardServiceFee is the flat convenience fee added to every booking.
const StandardServiceFee = 30.0

// Booking is a confirmed reservation of one or more seats of one show. Its
// existence implies confirmation; cancelling deletes it.
//
// Fields:
//  ID          – UUID primary key.
//  ShowID      – show the seats belong to.
//  UserEmail   – trimmed, lower-cased booker email.
//  Seats       – seat ids in the order they were requested.
//  BasePrice   – sum of seat prices as presented to the user.
//  ServiceFee  – convenience fee.
//  TotalAmount – BasePrice + ServiceFee.
//  BookingDate – when the booking was made.
type Booking struct {
	ID          string    `json:"_id" db:"id"`                    // bookings.id
	ShowID      string    `json:"showId" db:"show_id"`            // bookings.show_id
	UserEmail   string    `json:"userEmail" db:"user_email"`      // bookings.user_email
	Seats       []string  `json:"seats" db:"-"`                   // show_seats.seat_id ordered by position
	BasePrice   float64   `json:"basePrice" db:"base_price"`      // bookings.base_price
	ServiceFee  float64   `json:"serviceFee" db:"service_fee"`    // bookings.service_fee
	TotalAmount float64   `json:"totalAmount" db:"total_amount"`  // bookings.total_amount
	BookingDate time.Time `json:"bookingDate" db:"booking_date"`  // bookings.booking_date
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`      // bookings.created_at
}

// BookingDetail is a booking with its show, event and venue populated. The
// show is rendered under "showId" so clients that expect the populated
// reference keep working.
type BookingDetail struct {
	Booking
	Show *Show `json:"showId"`
}

// Reminder is a derived notice that a booked show is close.
type Reminder struct {
	BookingID string    `json:"bookingId"`
	EventName string    `json:"eventName"`
	TimeLabel string    `json:"timeLabel"`
	StartsAt  time.Time `json:"startsAt"`
}
