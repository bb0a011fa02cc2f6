package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"typeb/internal/config"
	"typeb/internal/database"
	"typeb/internal/handlers"
	"typeb/internal/repository"
	"typeb/internal/security"
	"typeb/internal/service"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database (supports sqlite, postgres, mysql)
	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	log.Printf("Database connection established (type: %s)", cfg.DatabaseType)

	// Run migrations
	if err := db.RunMigrations(cfg.MigrationsPath); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("Migrations completed successfully")

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	familyRepo := repository.NewFamilyRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	rewardRepo := repository.NewRewardRepository(db)
	activityRepo := repository.NewActivityRepository(db)

	// Initialize services
	issuer, err := security.NewTokenIssuer(cfg.JWTSecret, cfg.JWTIssuer, cfg.AccessTokenTTL)
	if err != nil {
		log.Fatalf("Failed to initialize token issuer: %v", err)
	}

	emailService, err := service.NewEmailService(cfg.AWSRegion, cfg.SESFromEmail, cfg.SESFromName, cfg.AppBaseURL, cfg.Debug)
	if err != nil {
		log.Fatalf("Failed to initialize email service: %v", err)
	}

	photoService, err := service.NewPhotoService(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize photo service: %v", err)
	}
	if !photoService.IsEnabled() {
		log.Println("Photo storage disabled: S3_BUCKET not configured")
	}

	familyService := service.NewFamilyService(familyRepo, userRepo, activityRepo)
	authService := service.NewAuthService(userRepo, familyService, issuer, cfg.RefreshTokenTTL, cfg.ResetTokenTTL)
	taskService := service.NewTaskService(taskRepo, familyRepo, userRepo, submissionRepo, activityRepo, familyService, photoService)
	submissionService := service.NewSubmissionService(submissionRepo, taskRepo, userRepo, familyRepo, activityRepo, familyService, photoService)
	rewardService := service.NewRewardService(rewardRepo, userRepo, familyRepo, activityRepo, familyService)
	statsService := service.NewStatsService(activityRepo, taskRepo, userRepo, familyService)

	oauthProviders := map[string]handlers.OAuthProvider{
		"google": {
			Name: "google",
			Config: &oauth2.Config{
				ClientID:     cfg.GoogleClientID,
				ClientSecret: cfg.GoogleClientSecret,
				Endpoint:     google.Endpoint,
				Scopes:       []string{"openid", "email", "profile"},
			},
			UserInfoURL: "https://www.googleapis.com/oauth2/v2/userinfo",
		},
		"apple": {
			Name: "apple",
			Config: &oauth2.Config{
				ClientID:     cfg.AppleClientID,
				ClientSecret: cfg.AppleClientSecret,
				Endpoint: oauth2.Endpoint{
					AuthURL:  "https://appleid.apple.com/auth/authorize",
					TokenURL: "https://appleid.apple.com/auth/token",
				},
				Scopes: []string{"name", "email"},
			},
			AuthParams: map[string]string{
				"response_mode": "query",
			},
		},
	}

	// Initialize handlers
	limiter := security.NewRateLimiter(10, time.Minute)
	middleware := handlers.NewMiddleware(authService, limiter)
	authHandler := handlers.NewAuthHandler(authService, emailService, oauthProviders, cfg.OAuthRedirectBase)
	familyHandler := handlers.NewFamilyHandler(familyService, authService, emailService)
	taskHandler := handlers.NewTaskHandler(taskService)
	submissionHandler := handlers.NewSubmissionHandler(submissionService, cfg.UploadMaxSize)
	rewardHandler := handlers.NewRewardHandler(rewardService)
	statsHandler := handlers.NewStatsHandler(statsService)

	// Setup routes
	mux := http.NewServeMux()

	// Auth routes
	mux.HandleFunc("POST /api/v1/auth/register", middleware.RateLimit(authHandler.Register))
	mux.HandleFunc("POST /api/v1/auth/login", middleware.RateLimit(authHandler.Login))
	mux.HandleFunc("POST /api/v1/auth/refresh", authHandler.Refresh)
	mux.HandleFunc("POST /api/v1/auth/logout", authHandler.Logout)
	mux.HandleFunc("POST /api/v1/auth/forgot-password", middleware.RateLimit(authHandler.ForgotPassword))
	mux.HandleFunc("POST /api/v1/auth/reset-password", middleware.RateLimit(authHandler.ResetPassword))
	mux.HandleFunc("GET /api/v1/auth/oauth/{provider}/start", authHandler.StartOAuth)
	mux.HandleFunc("GET /api/v1/auth/oauth/{provider}/callback", authHandler.OAuthCallback)
	mux.HandleFunc("GET /api/v1/me", middleware.RequireAuth(authHandler.Me))
	mux.HandleFunc("PATCH /api/v1/me", middleware.RequireAuth(authHandler.UpdateProfile))

	// Family routes
	mux.HandleFunc("POST /api/v1/families", middleware.RequireAuth(familyHandler.Create))
	mux.HandleFunc("POST /api/v1/families/join", middleware.RequireAuth(familyHandler.Join))
	mux.HandleFunc("GET /api/v1/families/{id}", middleware.RequireAuth(familyHandler.Get))
	mux.HandleFunc("PATCH /api/v1/families/{id}", middleware.RequireParent(familyHandler.Update))
	mux.HandleFunc("POST /api/v1/families/{id}/leave", middleware.RequireAuth(familyHandler.Leave))
	mux.HandleFunc("DELETE /api/v1/families/{id}/members/{memberId}", middleware.RequireParent(familyHandler.RemoveMember))
	mux.HandleFunc("PATCH /api/v1/families/{id}/members/{memberId}/role", middleware.RequireParent(familyHandler.ChangeMemberRole))
	mux.HandleFunc("POST /api/v1/families/{id}/invite", middleware.RequireParent(familyHandler.Invite))

	// Category routes
	mux.HandleFunc("GET /api/v1/families/{id}/categories", middleware.RequireAuth(familyHandler.ListCategories))
	mux.HandleFunc("POST /api/v1/families/{id}/categories", middleware.RequireParent(familyHandler.CreateCategory))
	mux.HandleFunc("PATCH /api/v1/families/{id}/categories/{categoryId}", middleware.RequireParent(familyHandler.UpdateCategory))
	mux.HandleFunc("DELETE /api/v1/families/{id}/categories/{categoryId}", middleware.RequireParent(familyHandler.DeleteCategory))

	// Task routes
	mux.HandleFunc("POST /api/v1/tasks", middleware.RequireParent(taskHandler.Create))
	mux.HandleFunc("GET /api/v1/tasks", middleware.RequireAuth(taskHandler.List))
	mux.HandleFunc("GET /api/v1/tasks/{id}", middleware.RequireAuth(taskHandler.Get))
	mux.HandleFunc("PATCH /api/v1/tasks/{id}", middleware.RequireParent(taskHandler.Update))
	mux.HandleFunc("POST /api/v1/tasks/{id}/status", middleware.RequireAuth(taskHandler.ChangeStatus))
	mux.HandleFunc("DELETE /api/v1/tasks/{id}", middleware.RequireParent(taskHandler.Delete))

	// Submission routes
	mux.HandleFunc("POST /api/v1/tasks/{id}/submissions", middleware.RequireAuth(submissionHandler.Submit))
	mux.HandleFunc("GET /api/v1/tasks/{id}/submissions", middleware.RequireAuth(submissionHandler.ListForTask))
	mux.HandleFunc("GET /api/v1/families/{id}/queue", middleware.RequireParent(submissionHandler.Queue))
	mux.HandleFunc("POST /api/v1/submissions/{id}/approve", middleware.RequireParent(submissionHandler.Approve))
	mux.HandleFunc("POST /api/v1/submissions/{id}/reject", middleware.RequireParent(submissionHandler.Reject))

	// Reward routes
	mux.HandleFunc("POST /api/v1/rewards", middleware.RequireParent(rewardHandler.Create))
	mux.HandleFunc("GET /api/v1/families/{id}/rewards", middleware.RequireAuth(rewardHandler.List))
	mux.HandleFunc("PATCH /api/v1/rewards/{id}", middleware.RequireParent(rewardHandler.Update))
	mux.HandleFunc("DELETE /api/v1/rewards/{id}", middleware.RequireParent(rewardHandler.Delete))
	mux.HandleFunc("POST /api/v1/rewards/{id}/redeem", middleware.RequireAuth(rewardHandler.Redeem))
	mux.HandleFunc("GET /api/v1/me/redemptions", middleware.RequireAuth(rewardHandler.Redemptions))

	// Stats routes
	mux.HandleFunc("GET /api/v1/users/{id}/stats", middleware.RequireAuth(statsHandler.MemberStats))
	mux.HandleFunc("GET /api/v1/families/{id}/leaderboard", middleware.RequireAuth(statsHandler.Leaderboard))
	mux.HandleFunc("GET /api/v1/families/{id}/activity", middleware.RequireAuth(statsHandler.Activity))
	mux.HandleFunc("GET /api/v1/families/{id}/summary", middleware.RequireAuth(statsHandler.Summary))

	// Wrap with logging middleware
	handler := handlers.Logging(mux)

	addr := ":" + cfg.ServerPort
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Background maintenance
	stopCleanup := make(chan struct{})
	go cleanupExpiredTokens(authService, stopCleanup)
	go escalateOverdueTasks(taskService, cfg.EscalationInterval, stopCleanup)

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
	close(stopCleanup)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
}

// cleanupExpiredTokens periodically removes expired refresh and reset tokens
func cleanupExpiredTokens(authService *service.AuthService, stop <-chan struct{}) {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := authService.CleanupExpiredTokens(); err != nil {
				log.Printf("Failed to cleanup expired tokens: %v", err)
			}
		case <-stop:
			return
		}
	}
}

// escalateOverdueTasks periodically bumps the escalation level of overdue
// tasks so parents get nudged about them
func escalateOverdueTasks(taskService *service.TaskService, interval time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			count, err := taskService.EscalateOverdueTasks(time.Now())
			if err != nil {
				log.Printf("Failed to escalate overdue tasks: %v", err)
				continue
			}
			if count > 0 {
				log.Printf("Escalated %d overdue tasks", count)
			}
		case <-stop:
			return
		}
	}
}
