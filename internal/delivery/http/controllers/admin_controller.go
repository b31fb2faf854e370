package controllers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"afisha/internal/delivery/http/helpers"
	"afisha/internal/domain"
)

// AdminController serves the moderation endpoints.
type AdminController struct {
	Logger *slog.Logger
	Events domain.EventService
}

func NewAdminController(logger *slog.Logger, events domain.EventService) *AdminController {
	return &AdminController{
		Logger: logger,
		Events: events,
	}
}

// Update godoc
// @Summary Moderate an event
// @Description Partial update with an optional state action. PUBLISH_EVENT requires the event to be PENDING and at least one hour before its date; REJECT_EVENT is refused for published events.
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path int true "Event ID"
// @Param patch body controllers.UpdateEventRequest true "Fields to update"
// @Success 200 {object} helpers.APIResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict or invalid_schedule"
// @Router /admin/events/{eventID} [patch]
func (c *AdminController) Update(w http.ResponseWriter, r *http.Request) {
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
	event, err := c.Events.UpdateAsAdmin(r.Context(), eventID, patch)
	if err != nil {
		helpers.WriteDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}

// Search godoc
// @Summary Search events for moderation
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param users query string false "Comma-separated initiator ids"
// @Param states query string false "Comma-separated states"
// @Param categories query string false "Comma-separated category ids"
// @Param rangeStart query string false "Earliest event date (yyyy-MM-dd HH:mm:ss)"
// @Param rangeEnd query string false "Latest event date (yyyy-MM-dd HH:mm:ss)"
// @Param from query int false "Items to skip" default(0)
// @Param size query int false "Page size, 0 for unlimited" default(10)
// @Success 200 {object} helpers.APIResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /admin/events [get]
func (c *AdminController) Search(w http.ResponseWriter, r *http.Request) {
	params := domain.EventSearchParams{Page: helpers.ParsePage(r)}
	q := r.URL.Query()

	var err error
	if params.InitiatorIDs, err = parseIDList(q.Get("users")); err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid users")
		return
	}
	if params.CategoryIDs, err = parseIDList(q.Get("categories")); err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid categories")
		return
	}
	if raw := q.Get("states"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			params.States = append(params.States, domain.EventState(strings.TrimSpace(s)))
		}
	}
	if raw := q.Get("rangeStart"); raw != "" {
		t, err := time.Parse(dateTimeLayout, raw)
		if err != nil {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid rangeStart")
			return
		}
		params.RangeStart = &t
	}
	if raw := q.Get("rangeEnd"); raw != "" {
		t, err := time.Parse(dateTimeLayout, raw)
		if err != nil {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid rangeEnd")
			return
		}
		params.RangeEnd = &t
	}

	events, err := c.Events.AdminSearch(r.Context(), params)
	if err != nil {
		helpers.WriteDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, events)
}

func parseIDList(raw string) ([]int64, error) {
	if raw == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	ids := make([]int64, 0, len(parts))
	for _, p := range parts {
		id, err := strconv.ParseInt(strings.TrimSpace(p), 10, 64)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
