package controllers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"afisha/internal/delivery/http/helpers"
	"afisha/internal/domain"
)

// dateTimeLayout is the wire format for event dates.
const dateTimeLayout = "2006-01-02 15:04:05"

// EventController serves the initiator-facing event endpoints, including
// batch admission of participation requests.
type EventController struct {
	Logger    *slog.Logger
	Events    domain.EventService
	Admission domain.AdmissionService
}

func NewEventController(logger *slog.Logger, events domain.EventService, admission domain.AdmissionService) *EventController {
	return &EventController{
		Logger:    logger,
		Events:    events,
		Admission: admission,
	}
}

// NewEventRequest is the request body for POST /users/{userID}/events.
type NewEventRequest struct {
	Title             string          `json:"title"`
	Annotation        string          `json:"annotation"`
	Description       string          `json:"description"`
	Category          int64           `json:"category"`
	EventDate         string          `json:"eventDate"`
	Location          domain.Location `json:"location"`
	Paid              bool            `json:"paid"`
	ParticipantLimit  int             `json:"participantLimit"`
	RequestModeration *bool           `json:"requestModeration"`
}

// UpdateEventRequest is the request body for the event PATCH endpoints.
type UpdateEventRequest struct {
	Title             *string          `json:"title"`
	Annotation        *string          `json:"annotation"`
	Description       *string          `json:"description"`
	Category          *int64           `json:"category"`
	EventDate         *string          `json:"eventDate"`
	Location          *domain.Location `json:"location"`
	Paid              *bool            `json:"paid"`
	ParticipantLimit  *int             `json:"participantLimit"`
	RequestModeration *bool            `json:"requestModeration"`
	StateAction       *string          `json:"stateAction"`
}

func (b *UpdateEventRequest) toPatch() (domain.EventPatch, error) {
	patch := domain.EventPatch{
		Title:             b.Title,
		Annotation:        b.Annotation,
		Description:       b.Description,
		CategoryID:        b.Category,
		Location:          b.Location,
		Paid:              b.Paid,
		ParticipantLimit:  b.ParticipantLimit,
		RequestModeration: b.RequestModeration,
	}
	if b.EventDate != nil {
		date, err := time.Parse(dateTimeLayout, *b.EventDate)
		if err != nil {
			return domain.EventPatch{}, err
		}
		patch.EventDate = &date
	}
	if b.StateAction != nil {
		action := domain.StateAction(*b.StateAction)
		patch.StateAction = &action
	}
	return patch, nil
}

// SwitchRequestsStatusRequest is the request body for
// PATCH /users/{userID}/events/{eventID}/requests.
type SwitchRequestsStatusRequest struct {
	RequestIDs []int64 `json:"requestIds"`
	Status     string  `json:"status"`
}

// Create godoc
// @Summary Create a new event
// @Description Creates an event in state PENDING. The event date must be at least two hours in the future.
// @Tags events
// @Accept json
// @Produce json
// @Param userID path int true "Initiator user ID"
// @Param event body controllers.NewEventRequest true "Event to create"
// @Success 201 {object} helpers.APIResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: invalid_schedule"
// @Router /users/{userID}/events [post]
func (c *EventController) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "userID")
	if !ok {
		return
	}
	var body NewEventRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid request body")
		return
	}
	date, err := time.Parse(dateTimeLayout, body.EventDate)
	if err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid eventDate")
		return
	}
	spec := domain.NewEvent{
		Title:             body.Title,
		Annotation:        body.Annotation,
		Description:       body.Description,
		CategoryID:        body.Category,
		Location:          body.Location,
		EventDate:         date,
		Paid:              body.Paid,
		ParticipantLimit:  body.ParticipantLimit,
		RequestModeration: body.RequestModeration,
	}
	event, err := c.Events.Create(r.Context(), spec, userID)
	if err != nil {
		helpers.WriteDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, event)
}

// List godoc
// @Summary List the initiator's own events
// @Tags events
// @Produce json
// @Param userID path int true "Initiator user ID"
// @Param from query int false "Items to skip" default(0)
// @Param size query int false "Page size, 0 for unlimited" default(10)
// @Success 200 {object} helpers.APIResponse
// @Router /users/{userID}/events [get]
func (c *EventController) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "userID")
	if !ok {
		return
	}
	events, err := c.Events.ListByInitiator(r.Context(), userID, helpers.ParsePage(r))
	if err != nil {
		helpers.WriteDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, events)
}

// Get godoc
// @Summary Get one of the initiator's own events
// @Tags events
// @Produce json
// @Param userID path int true "Initiator user ID"
// @Param eventID path int true "Event ID"
// @Success 200 {object} helpers.APIResponse
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /users/{userID}/events/{eventID} [get]
func (c *EventController) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "userID")
	if !ok {
		return
	}
	eventID, ok := pathID(w, r, "eventID")
	if !ok {
		return
	}
	event, err := c.Events.Get(r.Context(), eventID, userID)
	if err != nil {
		helpers.WriteDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}

// Update godoc
// @Summary Update one of the initiator's own events
// @Description Partial update; only fields present in the body are changed. Published events cannot be edited by their owner.
// @Tags events
// @Accept json
// @Produce json
// @Param userID path int true "Initiator user ID"
// @Param eventID path int true "Event ID"
// @Param patch body controllers.UpdateEventRequest true "Fields to update"
// @Success 200 {object} helpers.APIResponse
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Router /users/{userID}/events/{eventID} [patch]
func (c *EventController) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "userID")
	if !ok {
		return
	}
	eventID, ok := pathID(w, r, "eventID")
	if !ok {
		return
	}
	var body UpdateEventRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid request body")
		return
	}
	patch, err := body.toPatch()
	if err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid eventDate")
		return
	}
	event, err := c.Events.UpdateAsOwner(r.Context(), eventID, userID, patch)
	if err != nil {
		helpers.WriteDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}

// ListRequests godoc
// @Summary List participation requests for one of the initiator's events
// @Tags admission
// @Produce json
// @Param userID path int true "Initiator user ID"
// @Param eventID path int true "Event ID"
// @Success 200 {object} helpers.APIResponse
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /users/{userID}/events/{eventID}/requests [get]
func (c *EventController) ListRequests(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "userID")
	if !ok {
		return
	}
	eventID, ok := pathID(w, r, "eventID")
	if !ok {
		return
	}
	requests, err := c.Admission.ListEventRequests(r.Context(), eventID, userID)
	if err != nil {
		helpers.WriteDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, requests)
}

// SwitchRequestsStatus godoc
// @Summary Confirm or reject a batch of participation requests
// @Description Reconciles the batch against the event's remaining capacity. Admission order follows the caller-supplied id order.
// @Tags admission
// @Accept json
// @Produce json
// @Param userID path int true "Initiator user ID"
// @Param eventID path int true "Event ID"
// @Param batch body controllers.SwitchRequestsStatusRequest true "Request ids and desired status"
// @Success 200 {object} helpers.APIResponse
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Router /users/{userID}/events/{eventID}/requests [patch]
func (c *EventController) SwitchRequestsStatus(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "userID")
	if !ok {
		return
	}
	eventID, ok := pathID(w, r, "eventID")
	if !ok {
		return
	}
	var body SwitchRequestsStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid request body")
		return
	}
	if len(body.RequestIDs) == 0 {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "requestIds must not be empty")
		return
	}
	result, err := c.Admission.SwitchRequestsStatus(r.Context(), eventID, userID, body.RequestIDs, domain.RequestStatus(body.Status))
	if err != nil {
		helpers.WriteDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, result)
}

// pathID parses an int64 path value, writing a 400 response when it is
// missing or malformed.
func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	raw := r.PathValue(name)
	if raw == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing "+name)
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid "+name)
		return 0, false
	}
	return id, true
}
