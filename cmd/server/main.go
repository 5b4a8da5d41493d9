package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sportclub/internal/config"
	"sportclub/internal/database"
	"sportclub/internal/handlers"
	"sportclub/internal/repository"
	"sportclub/internal/scheduler"
	"sportclub/internal/security"
	"sportclub/internal/service"
	"sportclub/internal/verification"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database with config (supports sqlite, postgres, mysql)
	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	log.Printf("Database connection established (type: %s)", cfg.DatabaseType)

	// Run migrations
	if err := db.RunMigrations(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("Migrations completed successfully")

	if err := db.SeedSports(); err != nil {
		log.Printf("Warning: Failed to seed sports: %v", err)
	}
	if err := db.SeedSettings(map[string]string{repository.SettingRegistrationOpen: "true"}); err != nil {
		log.Printf("Warning: Failed to seed settings: %v", err)
	}

	// National ID registry. Without an endpoint only the checksum is enforced.
	var verifier verification.Verifier
	if cfg.VerificationURL != "" {
		verifier = verification.NewRegistryClient(cfg.VerificationURL, cfg.VerificationTimeout)
		log.Printf("National ID verification via %s", cfg.VerificationURL)
	} else {
		verifier = verification.NewFormatOnlyVerifier()
		log.Println("VERIFICATION_URL not set, national IDs are only checked for format")
	}

	// Email
	var notifier service.Notifier
	emailService, err := service.NewEmailService(cfg.AWSRegion, cfg.SESFromEmail, cfg.SESFromName, cfg.AppBaseURL, cfg.Debug)
	if err != nil {
		log.Printf("Warning: Email disabled: %v", err)
	} else if emailService.IsEnabled() {
		notifier = emailService
	}

	// Initialize services
	tokens := security.NewTokenIssuer(cfg.SessionSecret, cfg.JWTTTL)
	authService := service.NewAuthService(db, tokens, cfg.SessionDuration)
	rosterService := service.NewRosterService(db, nil)
	scheduleService := service.NewScheduleService(db, nil)
	attendanceService := service.NewAttendanceService(db, nil)
	registrationService := service.NewRegistrationService(db, verifier, notifier, nil)
	trainerService := service.NewTrainerService(db, notifier)
	contributionService := service.NewContributionService(db, nil)
	backupService := service.NewBackupService(db)

	if cfg.AdminEmail != "" {
		if err := authService.EnsureAdmin(cfg.AdminEmail, cfg.AdminPassword); err != nil {
			log.Fatalf("Failed to create bootstrap admin: %v", err)
		}
	}

	oauthProviders := map[string]handlers.OAuthProvider{
		"google": {
			Name:  "google",
			Label: "Google",
			Config: &oauth2.Config{
				ClientID:     cfg.GoogleClientID,
				ClientSecret: cfg.GoogleClientSecret,
				Endpoint:     google.Endpoint,
				Scopes:       []string{"openid", "email", "profile"},
			},
			UserInfoURL: "https://www.googleapis.com/oauth2/v2/userinfo",
		},
	}

	csrf := security.NewCSRFGenerator(cfg.SessionSecret)
	limiter := security.NewRateLimiter(cfg.RegistrationRate, cfg.RegistrationWindow)
	defer limiter.Stop()

	// Initialize handlers
	handler := handlers.NewRouter(handlers.Handlers{
		Middleware: handlers.NewMiddleware(authService, csrf, limiter),
		Public:     handlers.NewPublicHandler(db, rosterService, registrationService),
		Auth:       handlers.NewAuthHandler(authService, csrf, oauthProviders, cfg.OAuthRedirectBaseURL),
		Admin:      handlers.NewAdminHandler(rosterService, scheduleService, attendanceService, backupService),
		Roster:     handlers.NewRosterHandler(rosterService),
		Trainers:   handlers.NewTrainerHandler(trainerService),
		Attendance: handlers.NewAttendanceHandler(scheduleService, attendanceService),
		Dues:       handlers.NewContributionHandler(contributionService),
	})

	// Background jobs: rolling session horizon and expired login cleanup
	jobs, err := scheduler.New(scheduler.Config{
		HorizonSchedule: cfg.SessionHorizonSchedule,
		HorizonDays:     cfg.SessionHorizonDays,
		CleanupSchedule: cfg.SessionCleanupSchedule,
	}, scheduleService, authService)
	if err != nil {
		log.Fatalf("Failed to configure scheduler: %v", err)
	}
	jobs.Start()

	// Start server
	addr := ":" + cfg.ServerPort
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on http://localhost%s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}
	<-jobs.Stop().Done()
}
