package main

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/adpilot/dashboard/internal/config"
	"github.com/adpilot/dashboard/internal/db"
	"github.com/adpilot/dashboard/internal/events"
	apphttp "github.com/adpilot/dashboard/internal/http"
	"github.com/adpilot/dashboard/internal/http/handlers"
	"github.com/adpilot/dashboard/internal/linkpreview"
	"github.com/adpilot/dashboard/internal/repositories"
	"github.com/adpilot/dashboard/internal/services"
	"github.com/adpilot/dashboard/migrations"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

func main() {
	log, _ := zap.NewProduction()
	defer log.Sync()

	cfg := config.Load()
	cfg.Validate(log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Database
	pool, err := db.NewPostgresPool(ctx, cfg.PostgresDSN, log)
	if err != nil {
		log.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer pool.Close()

	var migrationsFS fs.FS = migrations.FS
	if cfg.MigrationsDir != "" {
		migrationsFS = os.DirFS(cfg.MigrationsDir)
	}
	if err := db.RunMigrations(ctx, pool, migrationsFS, log); err != nil {
		log.Fatal("failed to run migrations", zap.Error(err))
	}

	// Redis
	rdb, err := db.NewRedisClient(ctx, cfg.RedisURL, log)
	if err != nil {
		log.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer rdb.Close()

	auditRepo := repositories.NewAuditRepo(pool)

	// Events
	publisher := events.NewRedisPublisher(rdb, log)
	subscriber := events.NewRedisSubscriber(rdb, log)

	// Services
	backend := services.NewBackendClient(cfg.BackendURL, cfg.BackendToken, cfg.BackendTimeout, log)
	wizardService := services.NewWizardService(backend, publisher, auditRepo, cfg.WizardIdleTTL, log)
	editorService := services.NewEditorService(backend, publisher, auditRepo, cfg.EditIdleTTL, log)
	previews := linkpreview.NewFetcher(cfg.LinkPreviewTimeoutMS, log)

	go runSweeper(ctx, cfg.SweepInterval, wizardService, editorService)

	// Handlers
	wsHub := handlers.NewWSHub(cfg.JWTSecret, subscriber, log)
	if err := wsHub.Start(ctx); err != nil {
		log.Fatal("failed to subscribe to ad events", zap.Error(err))
	}

	app := fiber.New(fiber.Config{
		// generation can outlast fiber's defaults
		ReadTimeout:  cfg.BackendTimeout + 10*time.Second,
		WriteTimeout: cfg.BackendTimeout + 10*time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{"error": err.Error()})
		},
	})

	apphttp.SetupRouter(app, cfg, log, rdb, apphttp.Handlers{
		Meta:     handlers.NewMetaHandler(backend, previews, log),
		Wizard:   handlers.NewWizardHandler(wizardService, log),
		Edit:     handlers.NewEditHandler(editorService, log),
		Activity: handlers.NewActivityHandler(auditRepo, log),
		WS:       wsHub,
	})

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")
		cancel()
		_ = app.Shutdown()
	}()

	addr := fmt.Sprintf(":%s", cfg.APIPort)
	log.Info("starting API server", zap.String("addr", addr))
	if err := app.Listen(addr); err != nil {
		log.Fatal("server error", zap.Error(err))
	}
}

type sweeper interface {
	Sweep() int
}

func runSweeper(ctx context.Context, interval time.Duration, targets ...sweeper) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, t := range targets {
				t.Sweep()
			}
		}
	}
}
