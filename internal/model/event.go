package model

import "time"

// Event is a production that can be scheduled as shows at its active
// venues. AverageRating and NumReviews are denormalized from approved
// reviews and are only written by the review aggregator.
//
// Fields:
//  ID            – UUID primary key.
//  Name          – title of the event.
//  Poster        – poster image URL or data URI.
//  Duration      – free-form running time, e.g. "2h 30m".
//  Genre         – free-form genre.
//  Languages     – spoken languages.
//  Cast          – cast members.
//  ActiveVenues  – venue ids the event may be screened at.
//  AdminOwner    – display name of the owning admin.
//  AdminEmail    – email of the owning admin.
//  AverageRating – mean approved rating, one decimal.
//  NumReviews    – count of approved reviews.
type Event struct {
	ID            string     `json:"_id" db:"id"`                        // events.id
	Name          string     `json:"name" db:"name"`                     // events.name
	Poster        string     `json:"poster" db:"poster"`                 // events.poster
	Duration      string     `json:"duration" db:"duration"`             // events.duration
	Genre         string     `json:"genre" db:"genre"`                   // events.genre
	Languages     StringList `json:"languages" db:"languages"`           // events.languages (JSON)
	Cast          StringList `json:"cast" db:"cast_members"`             // events.cast_members (JSON)
	ActiveVenues  []string   `json:"activeVenues" db:"-"`                // event_venues.venue_id
	AdminOwner    string     `json:"adminOwner" db:"admin_owner"`        // events.admin_owner
	AdminEmail    string     `json:"adminEmail" db:"admin_email"`        // events.admin_email
	AverageRating float64    `json:"averageRating" db:"average_rating"`  // events.average_rating
	NumReviews    int        `json:"numReviews" db:"num_reviews"`        // events.num_reviews
	CreatedAt     time.Time  `json:"createdAt" db:"created_at"`          // events.created_at
	UpdatedAt     time.Time  `json:"updatedAt" db:"updated_at"`          // events.updated_at
}
