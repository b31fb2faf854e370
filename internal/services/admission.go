package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"afisha/internal/domain"
)

type admissionService struct {
	eventRepo   domain.EventRepository
	requestRepo domain.RequestRepository
	users       domain.UserDirectory
	email       domain.EmailService
	logger      *slog.Logger

	// mu serializes admission batches per event id so that two concurrent
	// batches cannot both observe stale free capacity. The DB transaction in
	// SwitchStatuses keeps each batch atomic; this lock keeps batches on the
	// same event ordered within a single process.
	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

// NewAdmissionService creates the capacity-constrained batch admission
// controller.
func NewAdmissionService(
	eventRepo domain.EventRepository,
	requestRepo domain.RequestRepository,
	users domain.UserDirectory,
	email domain.EmailService,
	logger *slog.Logger,
) domain.AdmissionService {
	return &admissionService{
		eventRepo:   eventRepo,
		requestRepo: requestRepo,
		users:       users,
		email:       email,
		logger:      logger,
		locks:       make(map[int64]*sync.Mutex),
	}
}

func (s *admissionService) SwitchRequestsStatus(ctx context.Context, eventID, actorID int64, requestIDs []int64, status domain.RequestStatus) (*domain.AdmissionResult, error) {
	if status != domain.RequestStatusConfirmed && status != domain.RequestStatusRejected {
		return nil, domain.ErrInvalidInput
	}
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if event.InitiatorID != actorID {
		return nil, domain.ErrForbidden
	}

	// Without a limit or moderation every request was auto-confirmed on
	// creation; there is nothing to reconcile.
	if event.ParticipantLimit == 0 || !event.RequestModeration {
		requests, err := s.loadBatch(ctx, requestIDs)
		if err != nil {
			return nil, err
		}
		return &domain.AdmissionResult{
			Confirmed: requests,
			Rejected:  []*domain.ParticipationRequest{},
		}, nil
	}

	unlock := s.lockEvent(eventID)
	defer unlock()

	if status == domain.RequestStatusConfirmed {
		return s.confirmBatch(ctx, event, requestIDs)
	}
	return s.rejectBatch(ctx, requestIDs)
}

// confirmBatch partitions the caller-ordered ids into the first freeSlots to
// confirm and the overflow to reject, guarding against decisions that would
// silently reverse a prior one.
func (s *admissionService) confirmBatch(ctx context.Context, event *domain.Event, requestIDs []int64) (*domain.AdmissionResult, error) {
	confirmed, err := s.requestRepo.CountByEventAndStatus(ctx, event.ID, domain.RequestStatusConfirmed)
	if err != nil {
		return nil, fmt.Errorf("count confirmed requests: %w", err)
	}
	freeSlots := int64(event.ParticipantLimit) - confirmed
	if freeSlots > int64(len(requestIDs)) {
		freeSlots = int64(len(requestIDs))
	}
	if freeSlots <= 0 {
		// Participant limit reached; no partial effect.
		return nil, domain.ErrConflict
	}

	confirmIDs := requestIDs[:freeSlots]
	rejectIDs := requestIDs[freeSlots:]

	requests, err := s.loadBatch(ctx, requestIDs)
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]*domain.ParticipationRequest, len(requests))
	for _, r := range requests {
		byID[r.ID] = r
	}
	for _, id := range rejectIDs {
		// A confirmed seat cannot be revoked by overflow.
		if byID[id].Status == domain.RequestStatusConfirmed {
			return nil, domain.ErrConflict
		}
	}
	for _, id := range confirmIDs {
		// A rejected request cannot be re-confirmed through this path.
		if byID[id].Status == domain.RequestStatusRejected {
			return nil, domain.ErrConflict
		}
	}

	if err := s.requestRepo.SwitchStatuses(ctx, confirmIDs, rejectIDs); err != nil {
		return nil, fmt.Errorf("switch request statuses: %w", err)
	}

	result := &domain.AdmissionResult{
		Confirmed: make([]*domain.ParticipationRequest, 0, len(confirmIDs)),
		Rejected:  make([]*domain.ParticipationRequest, 0, len(rejectIDs)),
	}
	for _, id := range confirmIDs {
		req := byID[id]
		req.Status = domain.RequestStatusConfirmed
		result.Confirmed = append(result.Confirmed, req)
	}
	for _, id := range rejectIDs {
		req := byID[id]
		req.Status = domain.RequestStatusRejected
		result.Rejected = append(result.Rejected, req)
	}
	s.notifyConfirmed(ctx, event, result.Confirmed)
	return result, nil
}

// rejectBatch explicitly rejects every referenced request. A confirmed seat
// cannot be revoked via bulk reject.
func (s *admissionService) rejectBatch(ctx context.Context, requestIDs []int64) (*domain.AdmissionResult, error) {
	requests, err := s.loadBatch(ctx, requestIDs)
	if err != nil {
		return nil, err
	}
	for _, req := range requests {
		if req.Status == domain.RequestStatusConfirmed {
			return nil, domain.ErrConflict
		}
	}
	if err := s.requestRepo.SwitchStatuses(ctx, nil, requestIDs); err != nil {
		return nil, fmt.Errorf("switch request statuses: %w", err)
	}
	for _, req := range requests {
		req.Status = domain.RequestStatusRejected
	}
	return &domain.AdmissionResult{
		Confirmed: []*domain.ParticipationRequest{},
		Rejected:  requests,
	}, nil
}

func (s *admissionService) ListEventRequests(ctx context.Context, eventID, actorID int64) ([]*domain.ParticipationRequest, error) {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if event.InitiatorID != actorID {
		return nil, domain.ErrForbidden
	}
	reqs, err := s.requestRepo.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list requests by event: %w", err)
	}
	if reqs == nil {
		reqs = []*domain.ParticipationRequest{}
	}
	return reqs, nil
}

// loadBatch resolves the referenced requests, keeping the caller-supplied
// order and naming every id that does not resolve.
func (s *admissionService) loadBatch(ctx context.Context, ids []int64) ([]*domain.ParticipationRequest, error) {
	requests, err := s.requestRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("get requests by ids: %w", err)
	}
	byID := make(map[int64]*domain.ParticipationRequest, len(requests))
	for _, r := range requests {
		byID[r.ID] = r
	}
	ordered := make([]*domain.ParticipationRequest, 0, len(ids))
	var missing []int64
	for _, id := range ids {
		req, ok := byID[id]
		if !ok {
			missing = append(missing, id)
			continue
		}
		ordered = append(ordered, req)
	}
	if len(missing) > 0 {
		return nil, &domain.NotFoundIDsError{Entity: "requests", IDs: missing}
	}
	return ordered, nil
}

func (s *admissionService) lockEvent(eventID int64) func() {
	s.mu.Lock()
	lock, ok := s.locks[eventID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[eventID] = lock
	}
	s.mu.Unlock()
	lock.Lock()
	return lock.Unlock
}

func (s *admissionService) notifyConfirmed(ctx context.Context, event *domain.Event, confirmed []*domain.ParticipationRequest) {
	for _, req := range confirmed {
		requester, err := s.users.GetByID(ctx, req.RequesterID)
		if err != nil || requester.Email == "" {
			continue
		}
		data := &domain.RequestConfirmedEmailData{
			Email:      requester.Email,
			Name:       requester.Name,
			EventTitle: event.Title,
		}
		if err := s.email.SendRequestConfirmed(ctx, data); err != nil {
			s.logger.WarnContext(ctx, "send admission notification", "request_id", req.ID, "err", err)
		}
	}
}
