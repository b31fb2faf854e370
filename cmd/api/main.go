package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"afisha/config"
	"afisha/internal/adapters/auth"
	"afisha/internal/adapters/email"
	"afisha/internal/adapters/stats"
	delivery "afisha/internal/delivery/http"
	"afisha/internal/delivery/http/controllers"
	"afisha/internal/delivery/http/middleware"
	"afisha/internal/repository/postgres"
	"afisha/internal/services"
)

// @title afisha API
// @version 1.0
// @description Public events with capacity-constrained participation.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Exit(1)
	}
	logger := config.NewLogger()
	logger.Info("starting afisha", "env", cfg.Environment, "port", cfg.Port)

	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		logger.Error("open database", "err", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Error("ping database", "err", err)
		os.Exit(1)
	}

	eventRepo := postgres.NewEventRepository(db)
	requestRepo := postgres.NewRequestRepository(db)
	categoryRepo := postgres.NewCategoryRepository(db)
	users := postgres.NewUserDirectory(db)

	collector := stats.NewHTTPCollector(cfg.StatsURL, &http.Client{Timeout: 5 * time.Second})

	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.EmailProvider,
		FromAddress: cfg.EmailFrom,
		FromName:    cfg.EmailFromName,
		SES: email.SESConfig{
			Region:          cfg.SESRegion,
			AccessKeyID:     cfg.SESAccessKeyID,
			SecretAccessKey: cfg.SESSecretKey,
		},
	})
	if err != nil {
		logger.Error("create mailer", "err", err)
		os.Exit(1)
	}
	emailService := services.NewEmailService(mailer, email.NewTemplateRenderer())

	projections := services.NewProjectionService(requestRepo, users, collector, logger)
	eventService := services.NewEventService(eventRepo, categoryRepo, users, projections, emailService, logger)
	requestService := services.NewRequestService(requestRepo, eventRepo, users)
	admissionService := services.NewAdmissionService(eventRepo, requestRepo, users, emailService, logger)

	verifier := auth.NewJWTVerifier(cfg.JWTSecret)

	router := delivery.NewRouter(
		controllers.NewEventController(logger, eventService, admissionService),
		controllers.NewRequestController(logger, requestService),
		controllers.NewAdminController(logger, eventService),
		controllers.NewPublicController(logger, eventService),
		verifier,
	)

	handler := middleware.CORS(cfg.AllowedOrigins, middleware.LoggingMiddleware(logger, router))
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("listen and serve", "err", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("shutdown", "err", err)
	}
}
