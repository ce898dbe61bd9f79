package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/opositest/notification-service/internal/config"
	"github.com/opositest/notification-service/internal/database"
	"github.com/opositest/notification-service/internal/handlers"
	"github.com/opositest/notification-service/internal/jobs"
	"github.com/opositest/notification-service/internal/repository"
	cron "github.com/opositest/notification-service/internal/scheduler"
	"github.com/opositest/notification-service/internal/services"
	"github.com/opositest/notification-service/pkg/email"
	"github.com/opositest/notification-service/pkg/logger"
	"github.com/opositest/notification-service/pkg/middleware"
	"github.com/opositest/notification-service/pkg/presence"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
)

func main() {
	// Load configuration from .env file
	cfg := config.LoadConfig()

	logger.InitLogger()
	logger.Log.Info("Logger initialized")

	// Connect to MongoDB
	db, err := database.ConnectDB(cfg)
	if err != nil {
		log.Fatalf("Database connection error: %v", err)
	}

	// Redis-backed presence tracking
	redisClient := presence.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword)
	tracker := presence.NewTracker(redisClient)

	// Outbound mail transport, constructed once and injected
	transport := email.NewSMTPTransport(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPSender, cfg.SenderName, cfg.SMTPPassword)

	// --- Repositories ---
	userRepo := repository.NewUserRepository(db)
	prefRepo := repository.NewPreferenceRepository(db)
	tokenRepo := repository.NewTokenRepository(db)
	logRepo := repository.NewEmailLogRepository(db)
	attemptRepo := repository.NewAttemptRepository(db)
	disputeRepo := repository.NewDisputeRepository(db)
	supportRepo := repository.NewSupportRepository(db)

	// --- Services ---
	userService := services.NewUserService(userRepo)
	tokenService := services.NewTokenService(tokenRepo)
	prefService := services.NewPreferenceService(prefRepo, tokenRepo)
	detectorService := services.NewDetectorService(userRepo, attemptRepo, logRepo, prefService)
	campaignService := services.NewCampaignService(
		detectorService,
		prefService,
		tokenService,
		userRepo,
		logRepo,
		disputeRepo,
		supportRepo,
		transport,
		tracker,
		cfg.BaseURL,
		cfg.SendDelay,
	)

	// --- Handlers ---
	emailHandler := handlers.NewEmailHandler(campaignService, detectorService, logRepo)
	unsubscribeHandler := handlers.NewUnsubscribeHandler(tokenService, prefService)
	preferenceHandler := handlers.NewPreferenceHandler(prefService)
	adminHandler := handlers.NewAdminHandler(userService, cfg)

	// --- Scheduled jobs ---
	campaignJob := jobs.NewCampaignJob(campaignService)
	cleanupJob := jobs.NewTokenCleanupJob(tokenService)
	cron.StartEmailCronJobs(campaignJob, cleanupJob, cfg)

	// Initialize Gorilla Mux router
	router := mux.NewRouter()

	// Public routes
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "ok")
	}).Methods("GET")
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")
	router.HandleFunc("/unsubscribe", unsubscribeHandler.ValidateHandler).Methods("GET")
	router.HandleFunc("/unsubscribe", unsubscribeHandler.RedeemHandler).Methods("POST")
	router.HandleFunc("/admin/login", adminHandler.LoginHandler).Methods("POST")

	// Transactional email routes (triggered by the admin backend)
	router.HandleFunc("/api/send-dispute-email", emailHandler.SendDisputeEmailHandler).Methods("POST")
	router.HandleFunc("/api/send-dispute-email/psychometric", emailHandler.SendPsychometricDisputeEmailHandler).Methods("POST")
	router.HandleFunc("/api/send-dispute-email/direct", emailHandler.SendDisputeEmailDirectHandler).Methods("POST")
	router.HandleFunc("/api/send-support-email", emailHandler.SendSupportEmailHandler).Methods("POST")
	router.HandleFunc("/api/send-welcome-email", emailHandler.SendWelcomeEmailHandler).Methods("POST")

	// Authenticated user routes
	userRoutes := router.PathPrefix("/api/preferences").Subrouter()
	userRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	userRoutes.Use(middleware.UpdateLastActiveMiddleware(userService, tracker))
	userRoutes.HandleFunc("", preferenceHandler.GetPreferencesHandler).Methods("GET")
	userRoutes.HandleFunc("", preferenceHandler.UpdatePreferencesHandler).Methods("PUT")

	// Admin campaign routes
	adminRoutes := router.PathPrefix("/api/emails").Subrouter()
	adminRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	adminRoutes.Use(middleware.RequireRole("admin"))
	adminRoutes.HandleFunc("/send-automatic", emailHandler.SendAutomaticHandler).Methods("POST")
	adminRoutes.HandleFunc("/send-weekly-digest", emailHandler.SendWeeklyDigestHandler).Methods("POST")
	adminRoutes.HandleFunc("/retry", emailHandler.RetryFailedHandler).Methods("POST")
	adminRoutes.HandleFunc("/test-inactive", emailHandler.TestInactiveHandler).Methods("GET")
	adminRoutes.HandleFunc("/logs", emailHandler.GetEmailLogsHandler).Methods("GET")

	// Apply middleware for logging
	router.Use(middleware.LoggingMiddleware)

	// Start the HTTP server
	port := cfg.Port
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000"}, // adjust to frontend origin
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	handler := c.Handler(router)

	fmt.Printf("Server running on port %s\n", port)
	log.Fatal(http.ListenAndServe(":"+port, handler))
}
