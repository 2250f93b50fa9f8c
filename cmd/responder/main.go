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
	"github.com/joho/godotenv"

	natsadapter "github.com/samirrijal/transitcat/internal/adapters/nats"
	"github.com/samirrijal/transitcat/internal/adapters/valkey"
	"github.com/samirrijal/transitcat/internal/bootstrap"
	"github.com/samirrijal/transitcat/internal/core/ports"
	"github.com/samirrijal/transitcat/internal/core/usecases"
	"github.com/samirrijal/transitcat/internal/pkg/config"
	"github.com/samirrijal/transitcat/internal/pkg/logging"
	"github.com/samirrijal/transitcat/internal/pkg/metrics"
	"github.com/samirrijal/transitcat/internal/pkg/render"
	"github.com/samirrijal/transitcat/internal/pkg/telemetry"
)

func main() {
	_ = godotenv.Load() // .env is optional

	cfg, err := config.Load("transitcat-responder")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.NATS.URL == "" {
		log.Fatal("nats.url is required for the responder")
	}

	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

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

	var cache ports.CacheService
	if cfg.Valkey.Addr != "" {
		vc, err := valkey.New(cfg.Valkey.Addr)
		if err != nil {
			slog.Warn("valkey unavailable", "error", err)
		} else {
			defer vc.Close()
			cache = vc
		}
	}

	network := usecases.NewNetworkService(snap, cache, cfg.Valkey.TTLSeconds)
	requests := usecases.NewRequestService(network, render.DefaultSettings())

	conn, err := natsadapter.RawConn(cfg.NATS.URL)
	if err != nil {
		log.Fatalf("nats: %v", err)
	}
	defer func() { _ = conn.Drain() }()

	responder := natsadapter.NewResponder(conn, cfg.NATS.SubjectPrefix, requests)
	if err := responder.Start(ctx); err != nil {
		log.Fatalf("responder: %v", err)
	}

	// Metrics and liveness on the server port
	app := fiber.New(fiber.Config{DisableStartupMessage: true, AppName: "Transitcat Responder"})
	app.Get("/metrics", metrics.Handler())
	app.Get("/v1/health", func(c *fiber.Ctx) error {
		if !conn.IsConnected() {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "nats disconnected"})
		}
		return c.JSON(fiber.Map{"status": "healthy", "snapshot_id": snap.ID.String()})
	})
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		if err := app.Listen(addr); err != nil {
			slog.Error("metrics listener stopped", "error", err)
		}
	}()

	slog.Info("responder started",
		"prefix", cfg.NATS.SubjectPrefix,
		"queue", natsadapter.QueueGroup,
		"snapshot_id", snap.ID.String(),
	)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received, draining subscriptions...", "signal", sig.String())

	responder.Close()
	if err := app.ShutdownWithTimeout(5 * time.Second); err != nil {
		slog.Error("forced shutdown", "error", err)
	}
	slog.Info("responder stopped")
}
