package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"afisha/internal/domain"
)

type requestService struct {
	requestRepo domain.RequestRepository
	eventRepo   domain.EventRepository
	users       domain.UserDirectory
	now         func() time.Time
}

// NewRequestService creates a RequestService with the given collaborators.
func NewRequestService(
	requestRepo domain.RequestRepository,
	eventRepo domain.EventRepository,
	users domain.UserDirectory,
) domain.RequestService {
	return &requestService{
		requestRepo: requestRepo,
		eventRepo:   eventRepo,
		users:       users,
		now:         time.Now,
	}
}

func (s *requestService) Create(ctx context.Context, requesterID, eventID int64) (*domain.ParticipationRequest, error) {
	requester, err := s.users.GetByID(ctx, requesterID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get requester: %w", err)
	}
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if err := s.validateCreation(ctx, requester.ID, event); err != nil {
		return nil, err
	}

	status := domain.RequestStatusPending
	// Auto-admit fast path: unlimited capacity or moderation disabled.
	if event.ParticipantLimit == 0 || !event.RequestModeration {
		status = domain.RequestStatusConfirmed
	}
	req := &domain.ParticipationRequest{
		EventID:     event.ID,
		RequesterID: requester.ID,
		Status:      status,
		Created:     s.now(),
	}
	if err := s.requestRepo.Create(ctx, req); err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	return req, nil
}

func (s *requestService) Cancel(ctx context.Context, requesterID, requestID int64) (*domain.ParticipationRequest, error) {
	req, err := s.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get request: %w", err)
	}
	if req.RequesterID != requesterID {
		return nil, domain.ErrConflict
	}
	// Canceling an already canceled request is a no-op.
	if req.Status != domain.RequestStatusCanceled {
		if err := s.requestRepo.UpdateStatus(ctx, req.ID, domain.RequestStatusCanceled); err != nil {
			return nil, fmt.Errorf("cancel request: %w", err)
		}
		req.Status = domain.RequestStatusCanceled
	}
	return req, nil
}

func (s *requestService) ListByRequester(ctx context.Context, requesterID int64) ([]*domain.ParticipationRequest, error) {
	if _, err := s.users.GetByID(ctx, requesterID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get requester: %w", err)
	}
	reqs, err := s.requestRepo.ListByRequester(ctx, requesterID)
	if err != nil {
		return nil, fmt.Errorf("list requests by requester: %w", err)
	}
	if reqs == nil {
		reqs = []*domain.ParticipationRequest{}
	}
	return reqs, nil
}

func (s *requestService) ListByEvent(ctx context.Context, eventID int64) ([]*domain.ParticipationRequest, error) {
	reqs, err := s.requestRepo.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list requests by event: %w", err)
	}
	if reqs == nil {
		reqs = []*domain.ParticipationRequest{}
	}
	return reqs, nil
}

func (s *requestService) GetByIDs(ctx context.Context, ids []int64) ([]*domain.ParticipationRequest, error) {
	reqs, err := s.requestRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("get requests by ids: %w", err)
	}
	found := make(map[int64]struct{}, len(reqs))
	for _, r := range reqs {
		found[r.ID] = struct{}{}
	}
	var missing []int64
	for _, id := range ids {
		if _, ok := found[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		return nil, &domain.NotFoundIDsError{Entity: "requests", IDs: missing}
	}
	return reqs, nil
}

func (s *requestService) CountByEventAndStatus(ctx context.Context, eventID int64, status domain.RequestStatus) (int64, error) {
	count, err := s.requestRepo.CountByEventAndStatus(ctx, eventID, status)
	if err != nil {
		return 0, fmt.Errorf("count requests: %w", err)
	}
	return count, nil
}

func (s *requestService) validateCreation(ctx context.Context, requesterID int64, event *domain.Event) error {
	exists, err := s.requestRepo.ExistsActive(ctx, requesterID, event.ID)
	if err != nil {
		return fmt.Errorf("check existing request: %w", err)
	}
	if exists {
		return domain.ErrConflict
	}
	if event.InitiatorID == requesterID {
		return domain.ErrConflict
	}
	if event.State != domain.EventStatePublished {
		return domain.ErrConflict
	}
	if event.ParticipantLimit > 0 {
		confirmed, err := s.requestRepo.CountByEventAndStatus(ctx, event.ID, domain.RequestStatusConfirmed)
		if err != nil {
			return fmt.Errorf("count confirmed requests: %w", err)
		}
		if confirmed >= int64(event.ParticipantLimit) {
			return domain.ErrConflict
		}
	}
	return nil
}
