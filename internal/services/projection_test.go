package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"afisha/internal/domain"
)

type projectionFixture struct {
	service   domain.ProjectionService
	requests  *fakeRequestRepo
	users     *fakeUserDirectory
	collector *fakeCollector
}

func newProjectionFixture(t *testing.T) *projectionFixture {
	t.Helper()
	f := &projectionFixture{
		requests: newFakeRequestRepo(),
		users: newFakeUserDirectory(
			&domain.UserSummary{ID: 1, Name: "Ivan"},
			&domain.UserSummary{ID: 2, Name: "Olga"},
		),
		collector: &fakeCollector{},
	}
	f.service = NewProjectionService(f.requests, f.users, f.collector, discardLogger())
	return f
}

func publishedEvent(id, initiatorID int64, limit int, moderation bool, publishedOn time.Time) *domain.Event {
	return &domain.Event{
		ID:                id,
		Title:             "Lecture on astronomy",
		InitiatorID:       initiatorID,
		ParticipantLimit:  limit,
		RequestModeration: moderation,
		State:             domain.EventStatePublished,
		PublishedOn:       &publishedOn,
		EventDate:         time.Now().Add(48 * time.Hour),
	}
}

func (f *projectionFixture) addRequests(eventID int64, status domain.RequestStatus, n int) {
	for i := 0; i < n; i++ {
		f.requests.add(&domain.ParticipationRequest{
			EventID:     eventID,
			RequesterID: int64(1000 + i),
			Status:      status,
		})
	}
}

func TestProjectionFoldsRejectedForUnmoderatedEvents(t *testing.T) {
	tests := []struct {
		name          string
		limit         int
		moderation    bool
		wantConfirmed int64
	}{
		// The rejected counter represents "attending" when every request is
		// auto-admitted; it is folded into confirmed for display.
		{name: "no limit", limit: 0, moderation: true, wantConfirmed: 5},
		{name: "moderation disabled", limit: 10, moderation: false, wantConfirmed: 5},
		{name: "moderated", limit: 10, moderation: true, wantConfirmed: 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newProjectionFixture(t)
			event := publishedEvent(1, 1, tt.limit, tt.moderation, time.Now().Add(-time.Hour))
			f.addRequests(event.ID, domain.RequestStatusConfirmed, 3)
			f.addRequests(event.ID, domain.RequestStatusRejected, 2)
			f.addRequests(event.ID, domain.RequestStatusPending, 4)

			fulls, err := f.service.Full(context.Background(), []*domain.Event{event})
			require.NoError(t, err)
			require.Len(t, fulls, 1)

			assert.Equal(t, tt.wantConfirmed, fulls[0].ConfirmedRequests)
		})
	}
}

func TestProjectionMergesViewCounts(t *testing.T) {
	f := newProjectionFixture(t)
	event := publishedEvent(7, 1, 10, true, time.Now().Add(-time.Hour))
	f.collector.stats = []domain.ViewStat{{App: "afisha", Path: "/events/7", Hits: 42}}

	fulls, err := f.service.Full(context.Background(), []*domain.Event{event})
	require.NoError(t, err)
	require.Len(t, fulls, 1)

	assert.Equal(t, int64(42), fulls[0].Views)
	assert.Equal(t, []string{"/events/7"}, f.collector.lastPaths)
	assert.True(t, f.collector.lastUnique, "views are counted per unique visitor")
}

func TestProjectionCollectorFailureDefaultsViewsToZero(t *testing.T) {
	f := newProjectionFixture(t)
	event := publishedEvent(7, 1, 10, true, time.Now().Add(-time.Hour))
	f.addRequests(event.ID, domain.RequestStatusConfirmed, 2)
	f.collector.err = domain.ErrUnavailable

	fulls, err := f.service.Full(context.Background(), []*domain.Event{event})
	require.NoError(t, err, "collector unavailability must not fail the read")
	require.Len(t, fulls, 1)

	assert.Zero(t, fulls[0].Views)
	assert.Equal(t, int64(2), fulls[0].ConfirmedRequests)
}

func TestProjectionSkipsUnpublishedEvents(t *testing.T) {
	f := newProjectionFixture(t)
	event := &domain.Event{ID: 3, InitiatorID: 1, State: domain.EventStatePending, ParticipantLimit: 10, RequestModeration: true}

	fulls, err := f.service.Full(context.Background(), []*domain.Event{event})
	require.NoError(t, err)
	require.Len(t, fulls, 1)

	assert.Zero(t, fulls[0].Views)
	assert.Zero(t, f.collector.calls, "no analytics query without a published event")
}

func TestProjectionQueriesFromEarliestPublication(t *testing.T) {
	f := newProjectionFixture(t)
	early := time.Now().Add(-72 * time.Hour)
	late := time.Now().Add(-time.Hour)
	events := []*domain.Event{
		publishedEvent(1, 1, 10, true, late),
		publishedEvent(2, 2, 10, true, early),
	}

	_, err := f.service.Full(context.Background(), events)
	require.NoError(t, err)

	require.Equal(t, 1, f.collector.calls)
	assert.True(t, f.collector.lastStart.Equal(early))
	assert.ElementsMatch(t, []string{"/events/1", "/events/2"}, f.collector.lastPaths)
}

func TestProjectionShort(t *testing.T) {
	f := newProjectionFixture(t)
	event := publishedEvent(1, 2, 10, true, time.Now().Add(-time.Hour))
	f.addRequests(event.ID, domain.RequestStatusConfirmed, 4)

	shorts, err := f.service.Short(context.Background(), []*domain.Event{event})
	require.NoError(t, err)
	require.Len(t, shorts, 1)

	assert.Equal(t, event.ID, shorts[0].ID)
	assert.Equal(t, event.Title, shorts[0].Title)
	assert.Equal(t, int64(2), shorts[0].Initiator.ID)
	assert.Equal(t, "Olga", shorts[0].Initiator.Name)
	assert.Equal(t, int64(4), shorts[0].ConfirmedRequests)
}

func TestProjectionMissingInitiator(t *testing.T) {
	f := newProjectionFixture(t)
	event := publishedEvent(1, 99, 10, true, time.Now().Add(-time.Hour))

	_, err := f.service.Full(context.Background(), []*domain.Event{event})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestProjectionEmptyInput(t *testing.T) {
	f := newProjectionFixture(t)

	fulls, err := f.service.Full(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, fulls)

	shorts, err := f.service.Short(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, shorts)
}
