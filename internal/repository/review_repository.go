package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/event-ticketing/internal/model"
)

const reviewColumns = `r.id, r.event_id, r.user_email, r.user_name, r.rating, r.comment, r.status, r.created_at, r.updated_at`

// ReviewRepo persists reviews and maintains the event rating aggregate.
type ReviewRepo struct {
	db *sqlx.DB
}

// NewReviewRepo constructs a ReviewRepo with the given DB handle.
func NewReviewRepo(db *sqlx.DB) *ReviewRepo {
	return &ReviewRepo{db: db}
}

// Create inserts a pending review. A second review for the same event and
// user returns ErrReviewExists; an unknown event returns ErrEventNotFound.
func (r *ReviewRepo) Create(ctx context.Context, rv *model.Review) error {
	const q = `INSERT INTO reviews (id, event_id, user_email, user_name, rating, comment, status) VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, q, rv.ID, rv.EventID, rv.UserEmail, rv.UserName, rv.Rating, rv.Comment, model.ReviewPending)
	switch {
	case isDuplicate(err):
		return ErrReviewExists
	case isMissingParent(err):
		return ErrEventNotFound
	case err != nil:
		return err
	}
	created, err := getReview(ctx, r.db, rv.ID)
	if err != nil {
		return err
	}
	*rv = *created
	return nil
}

// GetByID returns ErrReviewNotFound when there is no matching row.
func (r *ReviewRepo) GetByID(ctx context.Context, id string) (*model.Review, error) {
	return getReview(ctx, r.db, id)
}

// Moderate moves a pending review to status. On approval the event's
// average rating and review count are recomputed from all approved reviews
// in the same transaction. The event row is locked first so concurrent
// approvals for one event apply one after the other.
func (r *ReviewRepo) Moderate(ctx context.Context, id string, status model.ReviewStatus) (*model.Review, error) {
	current, err := getReview(ctx, r.db, id)
	if err != nil {
		return nil, err
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var locked string
	err = tx.GetContext(ctx, &locked, `SELECT id FROM events WHERE id = ? FOR UPDATE`, current.EventID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrEventNotFound
	}
	if err != nil {
		return nil, err
	}

	var st model.ReviewStatus
	err = tx.GetContext(ctx, &st, `SELECT status FROM reviews WHERE id = ? FOR UPDATE`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrReviewNotFound
	}
	if err != nil {
		return nil, err
	}
	if st != model.ReviewPending {
		return nil, ErrAlreadyModerated
	}

	if _, err := tx.ExecContext(ctx, `UPDATE reviews SET status = ? WHERE id = ?`, status, id); err != nil {
		return nil, err
	}

	if status == model.ReviewApproved {
		var ratings []int
		const q = `SELECT rating FROM reviews WHERE event_id = ? AND status = 'approved' LOCK IN SHARE MODE`
		if err := tx.SelectContext(ctx, &ratings, q, current.EventID); err != nil {
			return nil, err
		}
		agg := model.AggregateRatings(ratings)
		const upd = `UPDATE events SET average_rating = ?, num_reviews = ? WHERE id = ?`
		if _, err := tx.ExecContext(ctx, upd, agg.Average, agg.Count, current.EventID); err != nil {
			return nil, err
		}
	}

	updated, err := getReview(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	return updated, nil
}

// ListPendingByAdmin returns pending reviews of events owned by adminEmail,
// newest first.
func (r *ReviewRepo) ListPendingByAdmin(ctx context.Context, adminEmail string) ([]model.Review, error) {
	reviews := []model.Review{}
	const q = `SELECT ` + reviewColumns + `
	           FROM reviews r
	           JOIN events e ON e.id = r.event_id
	           WHERE e.admin_email = ? AND r.status = 'pending'
	           ORDER BY r.created_at DESC`
	if err := r.db.SelectContext(ctx, &reviews, q, adminEmail); err != nil {
		return nil, err
	}
	return reviews, nil
}

// ListApprovedByEvent returns an event's approved reviews, newest first.
func (r *ReviewRepo) ListApprovedByEvent(ctx context.Context, eventID string) ([]model.Review, error) {
	reviews := []model.Review{}
	const q = `SELECT ` + reviewColumns + ` FROM reviews r WHERE r.event_id = ? AND r.status = 'approved' ORDER BY r.created_at DESC`
	if err := r.db.SelectContext(ctx, &reviews, q, eventID); err != nil {
		return nil, err
	}
	return reviews, nil
}

func getReview(ctx context.Context, q sqlx.QueryerContext, id string) (*model.Review, error) {
	var rv model.Review
	err := sqlx.GetContext(ctx, q, &rv, `SELECT `+reviewColumns+` FROM reviews r WHERE r.id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrReviewNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rv, nil
}
