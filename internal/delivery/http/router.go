package http

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	_ "afisha/docs"
	"afisha/internal/delivery/http/controllers"
	"afisha/internal/delivery/http/middleware"
	"afisha/internal/domain"
)

// NewRouter initializes the HTTP router with all application routes.
func NewRouter(
	eventController *controllers.EventController,
	requestController *controllers.RequestController,
	adminController *controllers.AdminController,
	publicController *controllers.PublicController,
	verifier domain.TokenVerifier,
) *http.ServeMux {
	mux := http.NewServeMux()
	admin := middleware.RequireRole(verifier, domain.RoleAdmin)

	// Initiator scope
	mux.HandleFunc("POST /users/{userID}/events", eventController.Create)
	mux.HandleFunc("GET /users/{userID}/events", eventController.List)
	mux.HandleFunc("GET /users/{userID}/events/{eventID}", eventController.Get)
	mux.HandleFunc("PATCH /users/{userID}/events/{eventID}", eventController.Update)
	mux.HandleFunc("GET /users/{userID}/events/{eventID}/requests", eventController.ListRequests)
	mux.HandleFunc("PATCH /users/{userID}/events/{eventID}/requests", eventController.SwitchRequestsStatus)

	// Requester scope
	mux.HandleFunc("POST /users/{userID}/requests", requestController.Create)
	mux.HandleFunc("GET /users/{userID}/requests", requestController.List)
	mux.HandleFunc("PATCH /users/{userID}/requests/{requestID}/cancel", requestController.Cancel)

	// Moderation
	mux.HandleFunc("PATCH /admin/events/{eventID}", admin(adminController.Update))
	mux.HandleFunc("GET /admin/events", admin(adminController.Search))

	// Public
	mux.HandleFunc("GET /events/{eventID}", publicController.Get)

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
