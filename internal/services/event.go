package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"afisha/internal/domain"
)

// Schedule margins enforced by the event lifecycle.
const (
	createMargin  = 2 * time.Hour
	publishMargin = 1 * time.Hour
)

type eventService struct {
	eventRepo    domain.EventRepository
	categoryRepo domain.CategoryRepository
	users        domain.UserDirectory
	projections  domain.ProjectionService
	email        domain.EmailService
	logger       *slog.Logger
	now          func() time.Time
}

// NewEventService creates an EventService with the given collaborators.
func NewEventService(
	eventRepo domain.EventRepository,
	categoryRepo domain.CategoryRepository,
	users domain.UserDirectory,
	projections domain.ProjectionService,
	email domain.EmailService,
	logger *slog.Logger,
) domain.EventService {
	return &eventService{
		eventRepo:    eventRepo,
		categoryRepo: categoryRepo,
		users:        users,
		projections:  projections,
		email:        email,
		logger:       logger,
		now:          time.Now,
	}
}

func (s *eventService) Create(ctx context.Context, spec domain.NewEvent, initiatorID int64) (*domain.EventFull, error) {
	if err := validateEventFields(spec.Title, spec.Annotation, spec.Description); err != nil {
		return nil, err
	}
	if err := s.validateEventDate(spec.EventDate, createMargin); err != nil {
		return nil, err
	}
	if _, err := s.users.GetByID(ctx, initiatorID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get initiator: %w", err)
	}
	if _, err := s.categoryRepo.GetByID(ctx, spec.CategoryID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get category: %w", err)
	}

	moderation := true
	if spec.RequestModeration != nil {
		moderation = *spec.RequestModeration
	}
	event := &domain.Event{
		Title:             spec.Title,
		Annotation:        spec.Annotation,
		Description:       spec.Description,
		CategoryID:        spec.CategoryID,
		Location:          spec.Location,
		EventDate:         spec.EventDate,
		CreatedOn:         s.now(),
		Paid:              spec.Paid,
		ParticipantLimit:  spec.ParticipantLimit,
		RequestModeration: moderation,
		State:             domain.EventStatePending,
		InitiatorID:       initiatorID,
	}
	if err := s.eventRepo.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}
	return s.toFull(ctx, event)
}

func (s *eventService) UpdateAsOwner(ctx context.Context, eventID, actorID int64, patch domain.EventPatch) (*domain.EventFull, error) {
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
	if event.State == domain.EventStatePublished {
		// Only pending or canceled events can be changed by their owner.
		return nil, domain.ErrConflict
	}
	if patch.EventDate != nil {
		if err := s.validateEventDate(*patch.EventDate, createMargin); err != nil {
			return nil, err
		}
	}
	if err := s.applyPatch(ctx, event, patch); err != nil {
		return nil, err
	}
	if patch.StateAction != nil {
		switch *patch.StateAction {
		case domain.StateActionSendToReview:
			event.State = domain.EventStatePending
		case domain.StateActionCancelReview:
			event.State = domain.EventStateCanceled
		default:
			return nil, domain.ErrInvalidInput
		}
	}
	if err := s.eventRepo.Update(ctx, event); err != nil {
		return nil, fmt.Errorf("update event: %w", err)
	}
	return s.toFull(ctx, event)
}

func (s *eventService) UpdateAsAdmin(ctx context.Context, eventID int64, patch domain.EventPatch) (*domain.EventFull, error) {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if err := s.applyPatch(ctx, event, patch); err != nil {
		return nil, err
	}

	published := false
	if patch.StateAction != nil {
		switch *patch.StateAction {
		case domain.StateActionPublish:
			if s.now().After(event.EventDate.Add(-publishMargin)) {
				return nil, domain.ErrInvalidSchedule
			}
			if event.State != domain.EventStatePending {
				return nil, domain.ErrConflict
			}
			now := s.now()
			event.State = domain.EventStatePublished
			event.PublishedOn = &now
			published = true
		case domain.StateActionReject:
			if event.State == domain.EventStatePublished {
				return nil, domain.ErrConflict
			}
			event.State = domain.EventStateCanceled
		default:
			return nil, domain.ErrInvalidInput
		}
	}
	if err := s.eventRepo.Update(ctx, event); err != nil {
		return nil, fmt.Errorf("update event: %w", err)
	}
	if published {
		s.notifyPublished(ctx, event)
	}
	return s.toFull(ctx, event)
}

func (s *eventService) Get(ctx context.Context, eventID, actorID int64) (*domain.EventFull, error) {
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
	return s.toFull(ctx, event)
}

func (s *eventService) GetPublished(ctx context.Context, eventID int64) (*domain.EventFull, error) {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	// Publication gates public visibility.
	if event.State != domain.EventStatePublished {
		return nil, domain.ErrNotFound
	}
	return s.toFull(ctx, event)
}

func (s *eventService) ListByInitiator(ctx context.Context, initiatorID int64, page domain.PageParams) ([]*domain.EventShort, error) {
	if page.Empty() {
		return []*domain.EventShort{}, nil
	}
	events, err := s.eventRepo.ListByInitiator(ctx, initiatorID, page)
	if err != nil {
		return nil, fmt.Errorf("list events by initiator: %w", err)
	}
	shorts, err := s.projections.Short(ctx, events)
	if err != nil {
		return nil, err
	}
	if shorts == nil {
		shorts = []*domain.EventShort{}
	}
	return shorts, nil
}

func (s *eventService) AdminSearch(ctx context.Context, params domain.EventSearchParams) ([]*domain.EventFull, error) {
	if params.Page.Empty() {
		return []*domain.EventFull{}, nil
	}
	if params.RangeStart != nil && params.RangeEnd != nil && params.RangeStart.After(*params.RangeEnd) {
		return nil, domain.ErrInvalidInput
	}
	events, err := s.eventRepo.Search(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("search events: %w", err)
	}
	fulls, err := s.projections.Full(ctx, events)
	if err != nil {
		return nil, err
	}
	if fulls == nil {
		fulls = []*domain.EventFull{}
	}
	return fulls, nil
}

// applyPatch copies only the non-nil patch fields onto the event. A category
// reference in the patch must resolve.
func (s *eventService) applyPatch(ctx context.Context, event *domain.Event, patch domain.EventPatch) error {
	if patch.CategoryID != nil {
		if _, err := s.categoryRepo.GetByID(ctx, *patch.CategoryID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.ErrNotFound
			}
			return fmt.Errorf("get category: %w", err)
		}
		event.CategoryID = *patch.CategoryID
	}
	if patch.Title != nil {
		event.Title = *patch.Title
	}
	if patch.Annotation != nil {
		event.Annotation = *patch.Annotation
	}
	if patch.Description != nil {
		event.Description = *patch.Description
	}
	if patch.EventDate != nil {
		event.EventDate = *patch.EventDate
	}
	if patch.Location != nil {
		event.Location.Lat = patch.Location.Lat
		event.Location.Lon = patch.Location.Lon
	}
	if patch.Paid != nil {
		event.Paid = *patch.Paid
	}
	if patch.ParticipantLimit != nil {
		if *patch.ParticipantLimit < 0 {
			return domain.ErrInvalidInput
		}
		event.ParticipantLimit = *patch.ParticipantLimit
	}
	if patch.RequestModeration != nil {
		event.RequestModeration = *patch.RequestModeration
	}
	return validateEventFields(event.Title, event.Annotation, event.Description)
}

func (s *eventService) toFull(ctx context.Context, event *domain.Event) (*domain.EventFull, error) {
	fulls, err := s.projections.Full(ctx, []*domain.Event{event})
	if err != nil {
		return nil, err
	}
	if len(fulls) == 0 {
		return nil, fmt.Errorf("project event %d: empty projection", event.ID)
	}
	return fulls[0], nil
}

func (s *eventService) notifyPublished(ctx context.Context, event *domain.Event) {
	initiator, err := s.users.GetByID(ctx, event.InitiatorID)
	if err != nil || initiator.Email == "" {
		return
	}
	data := &domain.EventPublishedEmailData{
		Email:         initiator.Email,
		InitiatorName: initiator.Name,
		EventTitle:    event.Title,
		EventDate:     event.EventDate.Format("2006-01-02 15:04"),
	}
	if err := s.email.SendEventPublished(ctx, data); err != nil {
		// Notification failure must not fail the publish.
		s.logger.WarnContext(ctx, "send publish notification", "event_id", event.ID, "err", err)
	}
}

func (s *eventService) validateEventDate(date time.Time, margin time.Duration) error {
	if !date.After(s.now().Add(margin)) {
		return domain.ErrInvalidSchedule
	}
	return nil
}

func validateEventFields(title, annotation, description string) error {
	if l := len([]rune(title)); l < 3 || l > 120 {
		return domain.ErrInvalidInput
	}
	if l := len([]rune(annotation)); l < 20 || l > 2000 {
		return domain.ErrInvalidInput
	}
	if l := len([]rune(description)); l < 20 || l > 7000 {
		return domain.ErrInvalidInput
	}
	return nil
}
