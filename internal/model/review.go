package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReviewStatus is the moderation state of a review.
type ReviewStatus string

const (
	ReviewPending  ReviewStatus = "pending"
	ReviewApproved ReviewStatus = "approved"
	ReviewRejected ReviewStatus = "rejected"
)

// Valid reports whether s is one of the known statuses.
func (s ReviewStatus) Valid() bool {
	switch s {
	case ReviewPending, ReviewApproved, ReviewRejected:
		return true
	}
	return false
}

// Review is a user's rating of an event. There is at most one review per
// (EventID, UserEmail); it is created pending and moderated exactly once.
type Review struct {
	ID        string       `json:"_id" db:"id"`
	EventID   string       `json:"eventId" db:"event_id"`
	UserEmail string       `json:"userEmail" db:"user_email"`
	UserName  string       `json:"userName" db:"user_name"`
	Rating    int          `json:"rating" db:"rating"`
	Comment   string       `json:"comment" db:"comment"`
	Status    ReviewStatus `json:"status" db:"status"`
	CreatedAt time.Time    `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time    `json:"updatedAt" db:"updated_at"`
}

// Rating is an event's aggregate over approved reviews.
type Rating struct {
	Average float64
	Count   int
}

// AggregateRatings returns the arithmetic mean of ratings rounded half away
// from zero to one decimal, and their count. No ratings yields zero.
func AggregateRatings(ratings []int) Rating {
	if len(ratings) == 0 {
		return Rating{}
	}
	sum := decimal.Zero
	for _, r := range ratings {
		sum = sum.Add(decimal.NewFromInt(int64(r)))
	}
	avg, _ := sum.Div(decimal.NewFromInt(int64(len(ratings)))).Round(1).Float64()
	return Rating{Average: avg, Count: len(ratings)}
}
