package services

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"afisha/internal/domain"
)

type projectionService struct {
	requestRepo domain.RequestRepository
	users       domain.UserDirectory
	stats       domain.AnalyticsCollector
	logger      *slog.Logger
	now         func() time.Time
}

// NewProjectionService creates the read-model builder that merges request
// counts and external view statistics into event projections.
func NewProjectionService(
	requestRepo domain.RequestRepository,
	users domain.UserDirectory,
	stats domain.AnalyticsCollector,
	logger *slog.Logger,
) domain.ProjectionService {
	return &projectionService{
		requestRepo: requestRepo,
		users:       users,
		stats:       stats,
		logger:      logger,
		now:         time.Now,
	}
}

func (s *projectionService) Full(ctx context.Context, events []*domain.Event) ([]*domain.EventFull, error) {
	if len(events) == 0 {
		return []*domain.EventFull{}, nil
	}
	confirmed, rejected, views, initiators, err := s.gather(ctx, events)
	if err != nil {
		return nil, err
	}
	out := make([]*domain.EventFull, 0, len(events))
	for _, event := range events {
		full := &domain.EventFull{
			Event:             *event,
			Initiator:         initiators[event.InitiatorID],
			ConfirmedRequests: confirmed[event.ID],
			Views:             views[event.ID],
		}
		// Without real moderation the rejected counter is folded into
		// confirmed to represent "attending". Display rule only; the request
		// state machine is untouched.
		if !event.RequestModeration || event.ParticipantLimit == 0 {
			full.ConfirmedRequests += rejected[event.ID]
		}
		out = append(out, full)
	}
	return out, nil
}

func (s *projectionService) Short(ctx context.Context, events []*domain.Event) ([]*domain.EventShort, error) {
	if len(events) == 0 {
		return []*domain.EventShort{}, nil
	}
	confirmed, rejected, views, initiators, err := s.gather(ctx, events)
	if err != nil {
		return nil, err
	}
	out := make([]*domain.EventShort, 0, len(events))
	for _, event := range events {
		short := &domain.EventShort{
			ID:                event.ID,
			Title:             event.Title,
			Annotation:        event.Annotation,
			CategoryID:        event.CategoryID,
			EventDate:         event.EventDate,
			Paid:              event.Paid,
			Initiator:         initiators[event.InitiatorID],
			ConfirmedRequests: confirmed[event.ID],
			Views:             views[event.ID],
		}
		if !event.RequestModeration || event.ParticipantLimit == 0 {
			short.ConfirmedRequests += rejected[event.ID]
		}
		out = append(out, short)
	}
	return out, nil
}

func (s *projectionService) gather(ctx context.Context, events []*domain.Event) (confirmed, rejected, views map[int64]int64, initiators map[int64]domain.UserSummary, err error) {
	ids := make([]int64, 0, len(events))
	for _, e := range events {
		ids = append(ids, e.ID)
	}
	confirmed, err = s.requestRepo.CountByEventIDsAndStatus(ctx, ids, domain.RequestStatusConfirmed)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("count confirmed requests: %w", err)
	}
	rejected, err = s.requestRepo.CountByEventIDsAndStatus(ctx, ids, domain.RequestStatusRejected)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("count rejected requests: %w", err)
	}
	views = s.eventViews(ctx, events)
	initiators, err = s.initiatorMap(ctx, events)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	return confirmed, rejected, views, initiators, nil
}

// eventViews queries the analytics collector for hits on each published
// event's canonical path since the earliest publication in the set. Collector
// unavailability never blocks a response: every view count defaults to 0.
func (s *projectionService) eventViews(ctx context.Context, events []*domain.Event) map[int64]int64 {
	views := make(map[int64]int64)
	var start *time.Time
	var paths []string
	for _, e := range events {
		if e.PublishedOn == nil {
			continue
		}
		if start == nil || e.PublishedOn.Before(*start) {
			start = e.PublishedOn
		}
		paths = append(paths, "/events/"+strconv.FormatInt(e.ID, 10))
	}
	if start == nil {
		return views
	}
	stats, err := s.stats.QueryHits(ctx, *start, s.now(), paths, true)
	if err != nil {
		s.logger.WarnContext(ctx, "query view stats", "err", err)
		return views
	}
	for _, stat := range stats {
		parts := strings.Split(stat.Path, "/")
		if len(parts) < 3 {
			continue
		}
		id, err := strconv.ParseInt(parts[2], 10, 64)
		if err != nil {
			continue
		}
		views[id] = stat.Hits
	}
	return views
}

func (s *projectionService) initiatorMap(ctx context.Context, events []*domain.Event) (map[int64]domain.UserSummary, error) {
	seen := make(map[int64]struct{}, len(events))
	ids := make([]int64, 0, len(events))
	for _, e := range events {
		if _, ok := seen[e.InitiatorID]; ok {
			continue
		}
		seen[e.InitiatorID] = struct{}{}
		ids = append(ids, e.InitiatorID)
	}
	users, err := s.users.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("get initiators: %w", err)
	}
	out := make(map[int64]domain.UserSummary, len(users))
	for _, u := range users {
		out[u.ID] = *u
	}
	return out, nil
}
