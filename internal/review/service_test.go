package review

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/event-ticketing/internal/apperr"
	"github.com/iliyamo/event-ticketing/internal/model"
	"github.com/iliyamo/event-ticketing/internal/repository"
)

type memStore struct {
	events  map[string]*model.Event
	reviews map[string]*model.Review
	order   []string
}

func newMemStore(eventIDs ...string) *memStore {
	m := &memStore{events: map[string]*model.Event{}, reviews: map[string]*model.Review{}}
	for _, id := range eventIDs {
		m.events[id] = &model.Event{ID: id, AdminEmail: "admin@x.io"}
	}
	return m
}

func (m *memStore) Create(_ context.Context, rv *model.Review) error {
	if _, ok := m.events[rv.EventID]; !ok {
		return repository.ErrEventNotFound
	}
	for _, other := range m.reviews {
		if other.EventID == rv.EventID && other.UserEmail == rv.UserEmail {
			return repository.ErrReviewExists
		}
	}
	cp := *rv
	m.reviews[rv.ID] = &cp
	m.order = append(m.order, rv.ID)
	return nil
}

func (m *memStore) Moderate(_ context.Context, id string, status model.ReviewStatus) (*model.Review, error) {
	rv, ok := m.reviews[id]
	if !ok {
		return nil, repository.ErrReviewNotFound
	}
	if rv.Status != model.ReviewPending {
		return nil, repository.ErrAlreadyModerated
	}
	rv.Status = status
	if status == model.ReviewApproved {
		var ratings []int
		for _, other := range m.reviews {
			if other.EventID == rv.EventID && other.Status == model.ReviewApproved {
				ratings = append(ratings, other.Rating)
			}
		}
		agg := model.AggregateRatings(ratings)
		m.events[rv.EventID].AverageRating = agg.Average
		m.events[rv.EventID].NumReviews = agg.Count
	}
	cp := *rv
	return &cp, nil
}

func (m *memStore) filter(keep func(*model.Review) bool) []model.Review {
	out := []model.Review{}
	for i := len(m.order) - 1; i >= 0; i-- {
		if rv := m.reviews[m.order[i]]; keep(rv) {
			out = append(out, *rv)
		}
	}
	return out
}

func (m *memStore) ListPendingByAdmin(_ context.Context, adminEmail string) ([]model.Review, error) {
	return m.filter(func(rv *model.Review) bool {
		return rv.Status == model.ReviewPending && m.events[rv.EventID].AdminEmail == adminEmail
	}), nil
}

func (m *memStore) ListApprovedByEvent(_ context.Context, eventID string) ([]model.Review, error) {
	return m.filter(func(rv *model.Review) bool {
		return rv.Status == model.ReviewApproved && rv.EventID == eventID
	}), nil
}

type attendanceFunc func(eventID, email string) (bool, error)

func (f attendanceFunc) HasAttended(_ context.Context, eventID, email string) (bool, error) {
	return f(eventID, email)
}

func submit(eventID, email string, rating int) SubmitRequest {
	return SubmitRequest{EventID: eventID, UserEmail: email, UserName: "Reviewer", Rating: rating, Comment: "great night"}
}

func TestSubmitAndDuplicate(t *testing.T) {
	ev := uuid.NewString()
	svc := NewService(newMemStore(ev), nil, nil)
	ctx := context.Background()

	rv, err := svc.Submit(ctx, submit(ev, " Ann@X.io", 4))
	require.NoError(t, err)
	assert.Equal(t, model.ReviewPending, rv.Status)
	assert.Equal(t, "ann@x.io", rv.UserEmail)

	_, err = svc.Submit(ctx, submit(ev, "ann@x.io", 5))
	assert.ErrorIs(t, err, apperr.ErrConflict)
}

func TestSubmitValidation(t *testing.T) {
	ev := uuid.NewString()
	svc := NewService(newMemStore(ev), nil, nil)
	ctx := context.Background()

	_, err := svc.Submit(ctx, submit(ev, "a@x.io", 0))
	assert.ErrorIs(t, err, apperr.ErrInput)
	_, err = svc.Submit(ctx, submit(ev, "a@x.io", 6))
	assert.ErrorIs(t, err, apperr.ErrInput)
	_, err = svc.Submit(ctx, submit("nope", "a@x.io", 3))
	assert.ErrorIs(t, err, apperr.ErrInput)
	_, err = svc.Submit(ctx, submit(ev, "", 3))
	assert.ErrorIs(t, err, apperr.ErrInput)
	_, err = svc.Submit(ctx, submit(uuid.NewString(), "a@x.io", 3))
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestSubmitRequiresAttendance(t *testing.T) {
	ev := uuid.NewString()
	attended := attendanceFunc(func(_, email string) (bool, error) { return email == "went@x.io", nil })
	svc := NewService(newMemStore(ev), attended, nil)

	_, err := svc.Submit(context.Background(), submit(ev, "stayed@x.io", 5))
	assert.ErrorIs(t, err, apperr.ErrPolicy)

	_, err = svc.Submit(context.Background(), submit(ev, "went@x.io", 5))
	assert.NoError(t, err)
}

func TestModerateRecomputesAverage(t *testing.T) {
	ev := uuid.NewString()
	store := newMemStore(ev)
	svc := NewService(store, nil, nil)
	ctx := context.Background()

	var ids []string
	for i, r := range []int{4, 5, 1} {
		rv, err := svc.Submit(ctx, submit(ev, string(rune('a'+i))+"@x.io", r))
		require.NoError(t, err)
		ids = append(ids, rv.ID)
	}

	_, err := svc.Moderate(ctx, ids[0], model.ReviewApproved)
	require.NoError(t, err)
	_, err = svc.Moderate(ctx, ids[1], model.ReviewApproved)
	require.NoError(t, err)
	_, err = svc.Moderate(ctx, ids[2], model.ReviewRejected)
	require.NoError(t, err)

	assert.Equal(t, 4.5, store.events[ev].AverageRating)
	assert.Equal(t, 2, store.events[ev].NumReviews)

	_, err = svc.Moderate(ctx, ids[0], model.ReviewRejected)
	assert.ErrorIs(t, err, apperr.ErrConflict)

	approved, err := svc.ListApprovedForEvent(ctx, ev)
	require.NoError(t, err)
	assert.Len(t, approved, 2)
}

func TestModerateErrors(t *testing.T) {
	svc := NewService(newMemStore(), nil, nil)
	ctx := context.Background()

	_, err := svc.Moderate(ctx, "bad", model.ReviewApproved)
	assert.ErrorIs(t, err, apperr.ErrInput)
	_, err = svc.Moderate(ctx, uuid.NewString(), model.ReviewPending)
	assert.ErrorIs(t, err, apperr.ErrInput)
	_, err = svc.Moderate(ctx, uuid.NewString(), model.ReviewStatus("archived"))
	assert.ErrorIs(t, err, apperr.ErrInput)
	_, err = svc.Moderate(ctx, uuid.NewString(), model.ReviewApproved)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestListPendingForAdmin(t *testing.T) {
	ev := uuid.NewString()
	svc := NewService(newMemStore(ev), nil, nil)
	ctx := context.Background()
	_, err := svc.Submit(ctx, submit(ev, "a@x.io", 3))
	require.NoError(t, err)

	got, err := svc.ListPendingForAdmin(ctx, "ADMIN@x.io")
	require.NoError(t, err)
	assert.Len(t, got, 1)

	_, err = svc.ListPendingForAdmin(ctx, "")
	assert.ErrorIs(t, err, apperr.ErrInput)
}

type failingStore struct{ memStore }

func (failingStore) ListApprovedByEvent(context.Context, string) ([]model.Review, error) {
	return nil, errors.New("db gone")
}

func TestStorageErrorIsWrapped(t *testing.T) {
	svc := NewService(&failingStore{*newMemStore()}, nil, nil)
	_, err := svc.ListApprovedForEvent(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, apperr.ErrStorage)
}
