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
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/samirrijal/checkout/internal/adapters/http"
	"github.com/samirrijal/checkout/internal/adapters/memory"
	natsadapter "github.com/samirrijal/checkout/internal/adapters/nats"
	"github.com/samirrijal/checkout/internal/adapters/postgres"
	"github.com/samirrijal/checkout/internal/adapters/valkey"
	"github.com/samirrijal/checkout/internal/core/ports"
	"github.com/samirrijal/checkout/internal/core/slo"
	"github.com/samirrijal/checkout/internal/core/usecases"
	"github.com/samirrijal/checkout/internal/pkg/config"
	"github.com/samirrijal/checkout/internal/pkg/logging"
	"github.com/samirrijal/checkout/internal/pkg/metrics"
	"github.com/samirrijal/checkout/internal/pkg/telemetry"
)

func main() {
	cfg, err := config.Load("checkout-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// Structured logging
	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.App.Env, cfg.App.Version, cfg.Telemetry.OTLPAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	// SLO telemetry
	recorder := slo.NewRecorder()
	reporter := slo.NewReporter(recorder)
	metrics.RegisterBudgetGauges(prometheus.DefaultRegisterer, reporter.Snapshot)

	deps := &http.Dependencies{
		App:       http.AppInfo{Env: cfg.App.Env, Version: cfg.App.Version},
		Budget:    reporter,
		RateLimit: cfg.Server.RateLimit,
	}

	// Order storage
	var orders ports.OrderRepository = memory.NewOrderRepo(cfg.Checkout.OrderCapacity)
	if cfg.Database.Enabled {
		db, err := postgres.New(ctx, cfg.Database.DSN(), cfg.Database.MaxConns)
		if err != nil {
			log.Fatalf("database: %v", err)
		}
		defer db.Close()

		orders = postgres.NewOrderRepo(db, cfg.Checkout.OrderCapacity)
		deps.DB = db
		go reportPoolStats(ctx, db)
	}

	// Idempotency store
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
	var events ports.EventPublisher
	if cfg.NATS.URL != "" {
		pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
		if err != nil {
			slog.Warn("nats unavailable", "error", err)
		} else {
			defer pub.Close()
			events = pub
			deps.NATS = pub.Conn()
		}
	}

	// Use cases
	deps.Checkout = usecases.NewCheckoutService(orders, recorder, metrics.Sink{}, events, cache, usecases.CheckoutConfig{
		MinDelay:          cfg.Checkout.MinDelay(),
		MaxDelay:          cfg.Checkout.MaxDelay(),
		IdempotencyTTLSec: cfg.Checkout.IdempotencyTTLSec,
	})
	deps.Orders = usecases.NewOrderService(orders)

	if events != nil && cfg.SLO.BroadcastInterval > 0 {
		interval := time.Duration(cfg.SLO.BroadcastInterval) * time.Second
		go usecases.NewBudgetBroadcaster(reporter, events, interval).Run(ctx)
	}

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    1024 * 1024, // 1 MB max request body
		AppName:      "Checkout API",
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, " + http.HeaderIdempotencyKey,
		MaxAge:       3600,
	}))

	http.SetupRoutes(app, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("Checkout API listening", "service", cfg.App.Name, "addr", addr, "env", cfg.App.Env)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())
	cancel()

	// Give in-flight requests up to 10s to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}

func reportPoolStats(ctx context.Context, db *postgres.DB) {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()

	for {
		metrics.UpdateDBPoolMetrics(db.Pool.Stat())
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
