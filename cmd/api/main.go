package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-contrib/gzip"
	_ "github.com/joho/godotenv/autoload"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/Comfie/property-crm-sub000/docs" // Swagger docs
	"github.com/Comfie/property-crm-sub000/internal/config"
	"github.com/Comfie/property-crm-sub000/internal/database"
	"github.com/Comfie/property-crm-sub000/internal/handlers"
	"github.com/Comfie/property-crm-sub000/internal/jobs"
	"github.com/Comfie/property-crm-sub000/internal/middleware"
	"github.com/Comfie/property-crm-sub000/internal/repository"
	"github.com/Comfie/property-crm-sub000/internal/services"
	"github.com/Comfie/property-crm-sub000/internal/storage"
	"github.com/Comfie/property-crm-sub000/pkg/logger"

	"github.com/gin-gonic/gin"
)

// @title HabitaCRM API
// @version 1.0
// @description REST API for HabitaCRM Property Management System
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.url http://www.swagger.io/support
// @contact.email support@swagger.io

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host localhost:8080
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Setup(cfg.Environment)

	// Initialize Sentry (GlitchTip) when DSN is configured
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn: cfg.SentryDSN,
			// Set TracesSampleRate to 1.0 to capture 100% of transactions for performance monitoring.
			// Set to a lower value (e.g. 0.2) in production if needed.
			TracesSampleRate: 0.2,
			Environment:      cfg.Environment,
		}); err != nil {
			logger.Error("Sentry initialization failed", "error", err)
		} else {
			logger.Info("Sentry initialized")
		}
	}

	// Warn if Resend email is not configured (API loads .env, not .production.env)
	if cfg.ResendAPIKey == "" || cfg.FromEmail == "" {
		logger.Warn("Resend email disabled: RESEND_API_KEY or FROM_EMAIL not set. Set them in .env and ensure the From domain is verified in Resend dashboard.")
	}

	// Set Gin mode
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Connect to database
	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	logger.Info("Connected to database")

	// Initialize storage
	store, err := storage.NewLocalStorage(cfg.StoragePath)
	if err != nil {
		logger.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	logger.Info("Initialized local storage")

	// Initialize repositories
	repos := repository.NewRepositories(db)

	// Initialize background worker
	worker := jobs.NewWorker(cfg.WorkerCount)
	logger.Info("Started background worker", "goroutines", cfg.WorkerCount)

	// Initialize services
	svcs := services.NewServices(repos, worker, store, cfg, db)

	// Schedule recurring jobs
	scheduleJobs(worker, svcs)

	// Initialize handlers
	h := handlers.NewHandlers(svcs, store, cfg)

	// Setup router
	router := setupRouter(h, cfg)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	// Create context with timeout for shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Shutdown HTTP server
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	// Shutdown background worker
	worker.Shutdown()
	logger.Info("Background worker stopped")

	// Flush Sentry events before exit
	if cfg.SentryDSN != "" {
		sentry.Flush(5 * time.Second)
	}

	logger.Info("Server exited gracefully")
}

func setupRouter(h *handlers.Handlers, cfg *config.Config) *gin.Engine {
	router := gin.New()

	// Global middleware
	if cfg.SentryDSN != "" {
		router.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.CORS(cfg.AllowedOrigins))
	router.Use(gzip.Gzip(gzip.DefaultCompression))

	// Property photos are served straight from disk
	router.Static("/uploads", cfg.StoragePath+"/uploads")

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Redirect root to swagger
		router.GET("/", func(c *gin.Context) {
			c.Redirect(http.StatusMovedPermanently, "/swagger/index.html")
		})

		// Swagger documentation
		router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

		// Health check (public)
		v1.GET("/health", h.Health.Index)

		// Authentication (public)
		auth := v1.Group("/auth")
		{
			auth.POST("/login", h.Auth.Login)
			auth.POST("/refresh", h.Auth.Refresh)
			auth.POST("/logout", h.Auth.Logout)
		}

		// Password recovery (public)
		v1.POST("/users/send_recovery_code", h.User.SendRecoveryCode)
		v1.POST("/users/verify_recovery_code", h.User.VerifyRecoveryCode)
		v1.POST("/users/update_password_with_code", h.User.UpdatePasswordWithCode)

		// Protected routes (requires authentication)
		protected := v1.Group("")
		protected.Use(middleware.Auth(cfg.JWTSecret))
		{
			// Admin-only routes
			admin := protected.Group("")
			admin.Use(middleware.RequireAdmin())
			{
				// User management (admin only; PUT /users/:user_id is below for admin or owner)
				admin.DELETE("/users/:user_id", h.User.Delete)
				admin.PUT("/users/:user_id/toggle_status", h.User.ToggleStatus)
				admin.POST("/users/:user_id/restore", h.User.Restore)

				// Hard deletes stay admin only
				admin.DELETE("/properties/:property_id", h.Property.Delete)
				admin.DELETE("/bookings/:booking_id", h.Booking.Delete)
				admin.DELETE("/leases/:lease_id", h.Lease.Delete)
				admin.DELETE("/tenants/:tenant_id", h.Tenant.Delete)
				admin.POST("/tenants/:tenant_id/restore", h.Tenant.Restore)
				admin.DELETE("/maintenance/:request_id", h.Maintenance.Delete)
				admin.DELETE("/messages/:message_id", h.Message.Delete)

				// Background worker introspection
				admin.GET("/jobs/status", h.Job.Status)
			}

			// User data access (Admin, Agent, or Owner)
			userData := protected.Group("/users/:user_id")
			userData.Use(middleware.RequireAdminAgentOrOwner())
			{
				userData.GET("", h.User.Show)
			}

			// Agent + Admin routes (property and reservation management)
			agentAdmin := protected.Group("")
			agentAdmin.Use(middleware.RequireRole("admin", "agent"))
			{
				// User viewing (agent/admin can list all users) and creation
				agentAdmin.GET("/users", h.User.Index)
				agentAdmin.POST("/users", h.User.Create)

				// Property management
				agentAdmin.GET("/properties", h.Property.Index)
				agentAdmin.POST("/properties", h.Property.Create)
				agentAdmin.GET("/properties/:property_id", h.Property.Show)
				agentAdmin.PUT("/properties/:property_id", h.Property.Update)
				agentAdmin.POST("/properties/:property_id/upload_photo", h.Property.UploadPhoto)
				agentAdmin.GET("/properties/:property_id/bookings", h.Booking.IndexByProperty)
				agentAdmin.GET("/properties/:property_id/leases", h.Lease.IndexByProperty)
				agentAdmin.GET("/properties/:property_id/maintenance", h.Maintenance.IndexByProperty)

				// Tenant management
				agentAdmin.GET("/tenants", h.Tenant.Index)
				agentAdmin.POST("/tenants", h.Tenant.Create)
				agentAdmin.GET("/tenants/:tenant_id", h.Tenant.Show)
				agentAdmin.PUT("/tenants/:tenant_id", h.Tenant.Update)
				agentAdmin.GET("/tenants/:tenant_id/leases", h.Lease.IndexByTenant)
				agentAdmin.GET("/tenants/:tenant_id/messages", h.Message.Index)
				agentAdmin.POST("/tenants/:tenant_id/messages", h.Message.Send)

				// Availability lookup
				agentAdmin.GET("/availability/check", h.Availability.Check)

				// Booking lifecycle
				agentAdmin.GET("/bookings", h.Booking.Index)
				agentAdmin.GET("/bookings/stats", h.Booking.Stats)
				agentAdmin.POST("/bookings", h.Booking.Create)
				agentAdmin.GET("/bookings/:booking_id", h.Booking.Show)
				agentAdmin.PUT("/bookings/:booking_id", h.Booking.Update)
				agentAdmin.POST("/bookings/:booking_id/confirm", h.Booking.Confirm)
				agentAdmin.POST("/bookings/:booking_id/check_in", h.Booking.CheckIn)
				agentAdmin.POST("/bookings/:booking_id/check_out", h.Booking.CheckOut)
				agentAdmin.POST("/bookings/:booking_id/cancel", h.Booking.Cancel)
				agentAdmin.POST("/bookings/:booking_id/no_show", h.Booking.NoShow)
				agentAdmin.POST("/bookings/:booking_id/reinstate", h.Booking.Reinstate)

				// Lease lifecycle
				agentAdmin.GET("/leases", h.Lease.Index)
				agentAdmin.POST("/leases", h.Lease.Create)
				agentAdmin.GET("/leases/:lease_id", h.Lease.Show)
				agentAdmin.PUT("/leases/:lease_id", h.Lease.Update)
				agentAdmin.POST("/leases/:lease_id/terminate", h.Lease.Terminate)
				agentAdmin.POST("/leases/:lease_id/expire", h.Lease.Expire)
				agentAdmin.POST("/leases/:lease_id/upload_document", h.Lease.UploadDocument)
				agentAdmin.GET("/leases/:lease_id/download_document", h.Lease.DownloadDocument)

				// Maintenance requests
				agentAdmin.GET("/maintenance", h.Maintenance.Index)
				agentAdmin.POST("/maintenance", h.Maintenance.Create)
				agentAdmin.GET("/maintenance/:request_id", h.Maintenance.Show)
				agentAdmin.PUT("/maintenance/:request_id", h.Maintenance.Update)
				agentAdmin.POST("/maintenance/:request_id/start", h.Maintenance.Start)
				agentAdmin.POST("/maintenance/:request_id/resolve", h.Maintenance.Resolve)
				agentAdmin.POST("/maintenance/:request_id/close", h.Maintenance.Close)

				// Occupancy reports and exports
				agentAdmin.GET("/reports/occupancy", h.Report.Occupancy)
				agentAdmin.GET("/reports/occupancy_export", h.Report.ExportOccupancy)
				agentAdmin.GET("/reports/occupancy_statement_pdf", h.Report.OccupancyStatementPDF)
				agentAdmin.GET("/reports/bookings_csv", h.Report.BookingsCSV)

				// Audits (agent can view audit logs)
				agentAdmin.GET("/audits", h.Audit.Index)
			}

			// All authenticated users (personal data access)
			// Profile update: admin or profile owner only (agents cannot update other users' profiles)
			protected.PUT("/users/:user_id", middleware.RequireAdminOrOwner(), h.User.Update)
			// User can change their own password
			protected.PATCH("/users/:user_id/change_password", h.User.ChangePassword)
			protected.POST("/users/:user_id/resend_confirmation", h.User.ResendConfirmation)
			protected.PATCH("/users/:user_id/update_locale", h.User.UpdateLocale)

			// Notifications (users can manage their own notifications)
			// Static route first so "mark_all_as_read" is not matched as :notification_id
			notifications := protected.Group("/notifications")
			{
				notifications.GET("", h.Notification.Index)
				notifications.POST("/mark_all_as_read", h.Notification.MarkAllAsRead)
				notifications.POST("/:notification_id/mark_as_read", h.Notification.MarkAsRead)
				notifications.GET("/:notification_id", h.Notification.Show)
				notifications.DELETE("/:notification_id", h.Notification.Delete)
			}
		}
	}

	return router
}

func scheduleJobs(worker *jobs.Worker, svcs *services.Services) {
	// Release pending bookings whose hold window lapsed. Runs at startup too,
	// so a restart does not postpone the release by a day.
	worker.ScheduleEveryImmediate(24*time.Hour, func(ctx context.Context) error {
		logger.Info("[Job] Releasing stale pending bookings...")
		return svcs.Booking.ReleaseStalePending(ctx)
	})

	// Flag active leases that reached their end date. Interval only: running
	// this at startup would re-notify admins on every deploy.
	worker.ScheduleEvery(24*time.Hour, func(ctx context.Context) error {
		logger.Info("[Job] Checking leases past their end date...")
		return svcs.Lease.NotifyExpiring(ctx)
	})

	// Keep the dashboard occupancy cache warm from the moment the API is up
	worker.ScheduleEveryImmediate(15*time.Minute, func(ctx context.Context) error {
		logger.Info("[Job] Refreshing dashboard occupancy cache...")
		return svcs.Occupancy.RefreshDashboardCache(ctx)
	})

	// Drop expired report cache entries every hour
	worker.ScheduleEvery(1*time.Hour, func(ctx context.Context) error {
		logger.Info("[Job] Cleaning expired report cache...")
		return svcs.Occupancy.CleanExpiredCache(ctx)
	})

	logger.Info("Scheduled recurring jobs")
}
