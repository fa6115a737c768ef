// Package review accepts user reviews of events, moderates them and keeps
// each event's rating aggregate in step with its approved reviews.
package review

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/iliyamo/event-ticketing/internal/apperr"
	"github.com/iliyamo/event-ticketing/internal/model"
	"github.com/iliyamo/event-ticketing/internal/repository"
)

// Store persists reviews. Moderate must recompute the event aggregate in
// the same transaction as an approval.
type Store interface {
	Create(ctx context.Context, rv *model.Review) error
	Moderate(ctx context.Context, id string, status model.ReviewStatus) (*model.Review, error)
	ListPendingByAdmin(ctx context.Context, adminEmail string) ([]model.Review, error)
	ListApprovedByEvent(ctx context.Context, eventID string) ([]model.Review, error)
}

// AttendanceChecker reports whether a user attended a show of the event.
type AttendanceChecker interface {
	HasAttended(ctx context.Context, eventID, userEmail string) (bool, error)
}

// Service is the review and rating aggregator.
type Service struct {
	store      Store
	attendance AttendanceChecker
	log        *zap.Logger
}

// NewService builds a Service. A nil attendance checker leaves eligibility
// to the client.
func NewService(store Store, attendance AttendanceChecker, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{store: store, attendance: attendance, log: log}
}

// SubmitRequest is the input of Submit.
type SubmitRequest struct {
	EventID   string
	UserEmail string
	UserName  string
	Rating    int
	Comment   string
}

// Submit creates a pending review. A second review by the same user for
// the same event is a conflict.
func (s *Service) Submit(ctx context.Context, req SubmitRequest) (*model.Review, error) {
	email := strings.ToLower(strings.TrimSpace(req.UserEmail))
	name := strings.TrimSpace(req.UserName)
	comment := strings.TrimSpace(req.Comment)
	if email == "" || name == "" || comment == "" {
		return nil, apperr.Input("eventId, userEmail, userName, rating and comment are required")
	}
	if _, err := uuid.Parse(req.EventID); err != nil {
		return nil, apperr.Input("invalid event id")
	}
	if req.Rating < 1 || req.Rating > 5 {
		return nil, apperr.Input("rating must be between 1 and 5")
	}

	if s.attendance != nil {
		ok, err := s.attendance.HasAttended(ctx, req.EventID, email)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, apperr.Policy("reviews open once you have attended a show of this event")
		}
	}

	rv := &model.Review{
		ID:        uuid.NewString(),
		EventID:   req.EventID,
		UserEmail: email,
		UserName:  name,
		Rating:    req.Rating,
		Comment:   comment,
		Status:    model.ReviewPending,
	}
	err := s.store.Create(ctx, rv)
	switch {
	case errors.Is(err, repository.ErrReviewExists):
		return nil, apperr.Conflict("you have already reviewed this event")
	case errors.Is(err, repository.ErrEventNotFound):
		return nil, apperr.NotFound("event not found")
	case err != nil:
		return nil, s.storage("create review", err)
	}
	return rv, nil
}

// Moderate approves or rejects a pending review.
func (s *Service) Moderate(ctx context.Context, id string, status model.ReviewStatus) (*model.Review, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, apperr.Input("invalid review id")
	}
	if !status.Valid() || status == model.ReviewPending {
		return nil, apperr.Input("status must be approved or rejected")
	}
	rv, err := s.store.Moderate(ctx, id, status)
	switch {
	case errors.Is(err, repository.ErrReviewNotFound), errors.Is(err, repository.ErrEventNotFound):
		return nil, apperr.NotFound("review not found")
	case errors.Is(err, repository.ErrAlreadyModerated):
		return nil, apperr.Conflict("review has already been moderated")
	case err != nil:
		return nil, s.storage("moderate review", err)
	}
	s.log.Info("review moderated", zap.String("review_id", id), zap.String("status", string(status)))
	return rv, nil
}

// ListPendingForAdmin returns pending reviews of the admin's events.
func (s *Service) ListPendingForAdmin(ctx context.Context, adminEmail string) ([]model.Review, error) {
	email := strings.ToLower(strings.TrimSpace(adminEmail))
	if email == "" || email == "undefined" {
		return nil, apperr.Input("admin email required")
	}
	list, err := s.store.ListPendingByAdmin(ctx, email)
	if err != nil {
		return nil, s.storage("list pending reviews", err)
	}
	return list, nil
}

// ListApprovedForEvent returns an event's approved reviews.
func (s *Service) ListApprovedForEvent(ctx context.Context, eventID string) ([]model.Review, error) {
	if _, err := uuid.Parse(eventID); err != nil {
		return nil, apperr.Input("invalid event id")
	}
	list, err := s.store.ListApprovedByEvent(ctx, eventID)
	if err != nil {
		return nil, s.storage("list reviews", err)
	}
	return list, nil
}

func (s *Service) storage(op string, err error) error {
	s.log.Error("review storage failure", zap.String("op", op), zap.Error(err))
	return apperr.Storage(op, err)
}
