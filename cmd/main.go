package main

import (
	"time"

	"clinic-service/internal/handler"
	"clinic-service/internal/middleware"
	"clinic-service/internal/tenant"
	"clinic-service/pkg/config"
	"clinic-service/pkg/database"
	"clinic-service/pkg/jwtutil"
	"clinic-service/pkg/logger"
	"clinic-service/prometheus"

	"github.com/getsentry/sentry-go"
	sentryecho "github.com/getsentry/sentry-go/echo"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

func main() {
	// Load configuration from .env file and environment variables
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger with config
	logger.InitLogger(cfg)
	log := logger.GetLogger()
	log.Info("Starting clinic service...", zap.String("environment", cfg.Server.Env))

	// Initialize database
	if err := database.InitDB(cfg); err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	log.Info("Database connection established")

	// Initialize JWT utility
	jwtutil.Initialize(&cfg.JWT)
	log.Info("JWT utility initialized")

	// Initialize Sentry error reporting when a DSN is configured
	if cfg.Sentry.DSN != "" {
		err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.Sentry.DSN,
			Environment:      cfg.Server.Env,
			TracesSampleRate: cfg.Sentry.TracesSampleRate,
		})
		if err != nil {
			log.Fatal("Failed to initialize Sentry", zap.Error(err))
		}
		defer sentry.Flush(2 * time.Second)
		log.Info("Sentry error reporting initialized")
	}

	// Initialize Prometheus metrics
	prometheus.InitMetrics(cfg)
	log.Info("Prometheus metrics initialized")

	// Initialize Echo framework
	e := echo.New()

	// Apply global middleware - order matters
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())
	e.Use(middleware.RequestIDMiddleware)
	e.Use(logger.Middleware(log))
	e.Use(prometheus.MetricsMiddleware())
	if cfg.Sentry.DSN != "" {
		e.Use(sentryecho.New(sentryecho.Options{Repanic: true}))
	}

	// Public routes - no authentication required
	e.GET("/health", handler.HealthCheck)
	e.GET("/metrics", handler.MetricsHandler)

	// Authentication routes
	auth := e.Group("/api/auth")
	auth.POST("/login", handler.Login)
	auth.POST("/register/company", handler.RegisterCompany)
	auth.POST("/register/staff", handler.RegisterStaff)
	auth.POST("/logout", handler.Logout)

	// API routes - all require authentication
	api := e.Group("/api")
	api.Use(middleware.AuthMiddleware)

	// Patients, with nested notes
	patients := api.Group("/patients")
	patients.GET("", handler.ListPatients)
	patients.POST("", handler.CreatePatient)
	patients.GET("/:id", handler.GetPatient)
	patients.PUT("/:id", handler.UpdatePatient)
	patients.DELETE("/:id", handler.DeletePatient)
	patients.GET("/:id/notes", handler.ListPatientNotes)
	patients.POST("/:id/notes", handler.CreatePatientNote)

	// Appointments
	appointments := api.Group("/appointments")
	appointments.GET("", handler.ListAppointments)
	appointments.POST("", handler.CreateAppointment)
	appointments.PATCH("/:id", handler.UpdateAppointment)

	// Follow-ups
	followups := api.Group("/followups")
	followups.GET("", handler.ListFollowUps)
	followups.POST("", handler.CreateFollowUp)
	followups.PATCH("/:id", handler.UpdateFollowUp)

	// Staff management - admin only
	staff := api.Group("/staff")
	staff.Use(tenant.RequireAdmin)
	staff.GET("", handler.ListStaff)
	staff.DELETE("/:id", handler.RemoveStaff)

	// Dashboard
	api.GET("/dashboard/stats", handler.GetDashboardStats)

	// Start server
	log.Info("Starting server", zap.String("port", cfg.Server.Port))
	if err := e.Start(":" + cfg.Server.Port); err != nil {
		log.Fatal("Failed to start server", zap.Error(err))
	}
}
