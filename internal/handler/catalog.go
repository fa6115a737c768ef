package handler

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/event-ticketing/internal/apperr"
	"github.com/iliyamo/event-ticketing/internal/model"
	"github.com/iliyamo/event-ticketing/internal/repository"
)

// VenueStore persists venues.
type VenueStore interface {
	Create(ctx context.Context, v *model.Venue) error
	GetByID(ctx context.Context, id string) (*model.Venue, error)
	ListByAdmin(ctx context.Context, adminEmail string) ([]model.Venue, error)
	Update(ctx context.Context, v *model.Venue) error
	Delete(ctx context.Context, id string) error
}

// EventStore persists events.
type EventStore interface {
	Create(ctx context.Context, e *model.Event) error
	GetByID(ctx context.Context, id string) (*model.Event, error)
	List(ctx context.Context, adminEmail string) ([]model.Event, error)
	Update(ctx context.Context, e *model.Event) error
	Delete(ctx context.Context, id string) error
}

// ShowStore persists shows and their administrative seat locks.
type ShowStore interface {
	Create(ctx context.Context, s *model.Show) error
	GetDetails(ctx context.Context, id string) (*model.Show, error)
	ListByEvent(ctx context.Context, eventID string) ([]model.Show, error)
	LockSeats(ctx context.Context, showID string, seats []string) error
}

// CatalogHandler serves the venue, event and show admin routes and the
// public seat map.
type CatalogHandler struct {
	Venues VenueStore
	Events EventStore
	Shows  ShowStore

	loc *time.Location
	log *zap.Logger
}

// NewCatalogHandler constructs a CatalogHandler and panics if any store is
// nil. loc is the zone show dates and times are written in.
func NewCatalogHandler(venues VenueStore, events EventStore, shows ShowStore, loc *time.Location, log *zap.Logger) *CatalogHandler {
	if venues == nil || events == nil || shows == nil {
		panic("nil store passed to NewCatalogHandler")
	}
	if loc == nil {
		loc = time.UTC
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &CatalogHandler{Venues: venues, Events: events, Shows: shows, loc: loc, log: log}
}

// storeErr translates a repository error. conflict is the message used for
// repository.ErrConflict.
func (h *CatalogHandler) storeErr(op string, err error, conflict string) error {
	switch {
	case errors.Is(err, repository.ErrVenueNotFound):
		return apperr.NotFound("venue not found")
	case errors.Is(err, repository.ErrEventNotFound):
		return apperr.NotFound("event not found")
	case errors.Is(err, repository.ErrShowNotFound):
		return apperr.NotFound("show not found")
	case errors.Is(err, repository.ErrConflict):
		return apperr.Conflict(conflict)
	}
	h.log.Error("catalog storage failure", zap.String("op", op), zap.Error(err))
	return apperr.Storage(op, err)
}
