package controllers

import (
	"log/slog"
	"net/http"

	"afisha/internal/delivery/http/helpers"
	"afisha/internal/domain"
)

// PublicController serves the unauthenticated read endpoints.
type PublicController struct {
	Logger *slog.Logger
	Events domain.EventService
}

func NewPublicController(logger *slog.Logger, events domain.EventService) *PublicController {
	return &PublicController{
		Logger: logger,
		Events: events,
	}
}

// Get godoc
// @Summary Get a published event
// @Description Returns the full projection of a published event. Unpublished events are reported as not found.
// @Tags public
// @Produce json
// @Param eventID path int true "Event ID"
// @Success 200 {object} helpers.APIResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID} [get]
func (c *PublicController) Get(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathID(w, r, "eventID")
	if !ok {
		return
	}
	event, err := c.Events.GetPublished(r.Context(), eventID)
	if err != nil {
		helpers.WriteDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}
