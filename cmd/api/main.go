package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"

	"github.com/samirrijal/transitcat/internal/adapters/http"
	natsadapter "github.com/samirrijal/transitcat/internal/adapters/nats"
	"github.com/samirrijal/transitcat/internal/adapters/valkey"
	"github.com/samirrijal/transitcat/internal/bootstrap"
	"github.com/samirrijal/transitcat/internal/core/ports"
	"github.com/samirrijal/transitcat/internal/core/usecases"
	"github.com/samirrijal/transitcat/internal/pkg/config"
	"github.com/samirrijal/transitcat/internal/pkg/logging"
	"github.com/samirrijal/transitcat/internal/pkg/render"
	"github.com/samirrijal/transitcat/internal/pkg/telemetry"
)

func main() {
	_ = godotenv.Load() // .env is optional

	cfg, err := config.Load("transitcat-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// Structured logging
	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	// Network snapshot
	src, db, err := bootstrap.Source(ctx, cfg)
	if err != nil {
		log.Fatalf("network source: %v", err)
	}
	if db != nil {
		defer db.Close()
	}
	snap, err := bootstrap.Snapshot(ctx, cfg, src)
	if err != nil {
		log.Fatalf("network: %v", err)
	}

	deps := &http.Dependencies{
		Render: render.DefaultSettings(),
		DB:     db,
	}

	// Cache
	var cache ports.CacheService
	if cfg.Valkey.Addr != "" {
		vc, err := valkey.New(cfg.Valkey.Addr)
		if err != nil {
			slog.Warn("valkey unavailable", "error", err)
		} else {
			defer vc.Close()
			cache = vc
			deps.Cache = vc
		}
	}

	// NATS
	if cfg.NATS.URL != "" {
		pub, err := natsadapter.NewPublisher(cfg.NATS.URL, cfg.NATS.SubjectPrefix)
		if err != nil {
			slog.Warn("nats unavailable", "error", err)
		} else {
			defer pub.Close()
			deps.NATS = pub.Conn()
			if err := pub.PublishSnapshotLoaded(ctx, snap.Summary()); err != nil {
				slog.Warn("publish snapshot event failed", "error", err)
			}
		}
	}

	// Use cases
	deps.Network = usecases.NewNetworkService(snap, cache, cfg.Valkey.TTLSeconds)
	deps.Requests = usecases.NewRequestService(deps.Network, deps.Render)

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    1024 * 1024, // 1 MB max request body
		AppName:      "Transitcat API",
	})
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "*",
		AllowMethods:     "GET,POST,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept",
		AllowCredentials: false,
		MaxAge:           3600,
	}))

	http.SetupRoutes(app, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr, "snapshot_id", snap.ID.String())
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	// Give in-flight requests up to 10s to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}
