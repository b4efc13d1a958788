package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"courseplatform/backend/certificates"
	"courseplatform/backend/config"
	"courseplatform/backend/middleware"
	"courseplatform/backend/migrations"
	"courseplatform/backend/observability"
	"courseplatform/backend/routes"
	"courseplatform/backend/services"
	"courseplatform/backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	// Initialize logger
	logger, err := utils.InitLogger(cfg.AppEnv)
	if err != nil {
		log.Fatalf("Error initializing logger: %v", err)
	}
	defer logger.Sync()

	shutdownTracing, err := observability.InitTracing(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("init tracing", "error", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			logger.Warn("tracing shutdown", "error", err)
		}
	}()

	// Initialize database
	db, err := utils.InitDB(cfg)
	if err != nil {
		logger.Fatal("init database", "error", err)
	}
	if err := migrations.Up(ctx, db, logger); err != nil {
		logger.Fatal("apply migrations", "error", err)
	}
	if err := services.NewAuthService(db, logger, cfg).SeedAdmin(ctx, cfg.DefaultAdminEmail, cfg.DefaultAdminPassword, cfg.DefaultAdminName); err != nil {
		logger.Fatal("seed admin", "error", err)
	}

	store, closeStore, err := certificateStore(ctx, cfg)
	if err != nil {
		logger.Fatal("init certificate store", "error", err)
	}
	defer closeStore()
	renderer, err := certificates.NewPDFRenderer()
	if err != nil {
		logger.Fatal("init certificate renderer", "error", err)
	}

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: utils.HandleError,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use(middleware.LoggingMiddleware(logger))

	// Setup routes
	routes.SetupRoutes(app, routes.Dependencies{
		DB:       db,
		Cfg:      cfg,
		Log:      logger,
		Renderer: renderer,
		Store:    store,
	})

	go func() {
		<-ctx.Done()
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			logger.Error("server shutdown", "error", err)
		}
	}()

	// Start server
	logger.Info("server starting", "port", cfg.ServerPort, "env", cfg.AppEnv)
	if err := app.Listen(":" + cfg.ServerPort); err != nil {
		logger.Error("server stopped", "error", err)
	}
}

func certificateStore(ctx context.Context, cfg *config.Config) (certificates.Store, func(), error) {
	if cfg.CertificatesStorage == "gcs" {
		store, err := certificates.NewGCSStore(ctx, cfg.CertificatesBucket, "certificates")
		if err != nil {
			return nil, nil, err
		}
		return store, func() { _ = store.Close() }, nil
	}
	store, err := certificates.NewLocalStore(cfg.CertificatesDir)
	if err != nil {
		return nil, nil, err
	}
	return store, func() {}, nil
}
