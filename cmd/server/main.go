package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"github.com/ttifoundation/admission-backend/internal/config"
	"github.com/ttifoundation/admission-backend/internal/database"
	"github.com/ttifoundation/admission-backend/internal/directory"
	"github.com/ttifoundation/admission-backend/internal/docstore"
	"github.com/ttifoundation/admission-backend/internal/handlers"
	"github.com/ttifoundation/admission-backend/internal/logging"
	"github.com/ttifoundation/admission-backend/internal/mailer"
	"github.com/ttifoundation/admission-backend/internal/middleware"
	"github.com/ttifoundation/admission-backend/internal/routes"
	"github.com/ttifoundation/admission-backend/internal/services"
)

func main() {
	// Structured logging (JSON to stdout)
	logging.Setup()

	cfg := config.Load()

	if cfg.DBPassword == "" {
		slog.Error("DB_PASSWORD environment variable is required")
		os.Exit(1)
	}

	// Per-course teacher directory, resolved once at startup
	courseDir, err := directory.LoadFromFile(cfg.TeachersConfigPath)
	if err != nil {
		slog.Error("failed to load teachers config", "path", cfg.TeachersConfigPath, "error", err)
		os.Exit(1)
	}

	// Database
	if err := database.Connect(cfg); err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	if err := database.Migrate(); err != nil {
		slog.Error("migration failed", "error", err)
		os.Exit(1)
	}

	// DB log handler (ERROR+ async batch)
	dbLogHandler := logging.NewDBHandler(database.DB)
	slog.SetDefault(slog.New(logging.NewMultiHandler(
		slog.NewJSONHandler(os.Stdout, nil),
		dbLogHandler,
	)))

	// Log cleanup (30-day retention)
	cleanupDone := make(chan struct{})
	logging.StartCleanup(database.DB, cleanupDone)

	// Document store
	docs, err := docstore.New(cfg)
	if err != nil {
		slog.Error("document store init failed", "error", err)
		os.Exit(1)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := docs.EnsureBucket(ctx); err != nil {
		slog.Error("document bucket bootstrap failed", "error", err)
		cancel()
		os.Exit(1)
	}
	cancel()

	// Services
	notifier := mailer.NewSMTP(cfg)
	feed := services.NewNotificationService(database.DB)
	authService := services.NewAuthService(database.DB, cfg, notifier)
	admissionService := services.NewAdmissionService(database.DB, docs, notifier, courseDir, feed, cfg.HeadEmail)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	admissionHandler := handlers.NewAdmissionHandler(admissionService)
	notificationHandler := handlers.NewNotificationHandler(feed)
	healthHandler := handlers.NewHealthHandler()

	// Sentry error tracking
	if dsn := os.Getenv("SENTRY_DSN"); dsn != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              dsn,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      os.Getenv("APP_ENV"),
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	// Fiber app; the body limit leaves room for six 7 MB documents
	app := fiber.New(fiber.Config{
		BodyLimit:    45 * 1024 * 1024,
		ErrorHandler: errorHandler,
	})

	app.Use(sentryfiber.New(sentryfiber.Options{
		Repanic:         true,
		WaitForDelivery: false,
	}))

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path}\n",
	}))
	app.Use(middleware.CORS(cfg))
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		return c.Next()
	})

	routes.Setup(app, authService, authHandler, admissionHandler, notificationHandler, healthHandler)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "port", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-quit
	slog.Info("shutting down server...")

	close(cleanupDone)
	dbLogHandler.Stop()
	sentry.Flush(2 * time.Second)

	if err := app.Shutdown(); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	if sqlDB, err := database.DB.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			slog.Error("database close error", "error", err)
		}
	}

	slog.Info("server stopped")
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	detail := ""
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		detail = e.Message
	}

	// Only expose error details for client errors, not server errors
	label := "request"
	if code >= 500 {
		slog.Error("unhandled server error", "method", c.Method(), "path", c.Path(), "error", err.Error())
		label = "internal"
		detail = ""
	}

	return c.Status(code).JSON(fiber.Map{
		"error":  label,
		"detail": detail,
	})
}
