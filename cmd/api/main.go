package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"parent-care-assistant/config"
	_ "parent-care-assistant/docs" // Swagger docs
	"parent-care-assistant/internal/app"
	tgDelivery "parent-care-assistant/internal/extraction/delivery/telegram"
	"parent-care-assistant/internal/httpserver"
	"parent-care-assistant/internal/middleware"
	"parent-care-assistant/internal/notification"
	"parent-care-assistant/pkg/log"
	"parent-care-assistant/pkg/telegram"
)

// @title       Parent Care Assistant API
// @description Turns calls with elderly parents into dated follow-ups, with a keyword-rule fallback when no language model answers.
// @version     1
// @host        localhost:8080
// @schemes     http
func main() {
	// 1. Configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Failed to load config: ", err)
		return
	}

	// 2. Logger
	logger := log.Init(log.ZapConfig{
		Level:        cfg.Logger.Level,
		Mode:         cfg.Logger.Mode,
		Encoding:     cfg.Logger.Encoding,
		ColorEnabled: cfg.Logger.ColorEnabled,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info(ctx, "Starting Parent Care Assistant...")
	logger.Infof(ctx, "Environment: %s", cfg.Environment.Name)

	// 3. Domain wiring
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	a, err := app.Build(ctx, cfg, logger, app.Options{Name: "care-api", Registerer: reg})
	if err != nil {
		logger.Error(ctx, "Failed to initialize application: ", err)
		return
	}
	defer a.Close()

	// 4. Telegram (optional)
	var telegramHandler tgDelivery.Handler
	if cfg.Telegram.BotToken != "" {
		bot := telegram.NewBot(cfg.Telegram.BotToken)
		telegramHandler = tgDelivery.New(logger, a.Extraction, bot, tgDelivery.Options{})

		if cfg.Telegram.WebhookURL != "" {
			if whErr := bot.SetWebhook(ctx, cfg.Telegram.WebhookURL); whErr != nil {
				logger.Warnf(ctx, "Failed to set Telegram webhook: %v", whErr)
			} else {
				logger.Infof(ctx, "Telegram webhook registered at %s", cfg.Telegram.WebhookURL)
			}
		}
	} else {
		logger.Warn(ctx, "Telegram skipped: TELEGRAM_BOT_TOKEN is missing")
	}

	// 5. HTTP Server
	var readiness func(context.Context) error
	if a.Pool != nil {
		readiness = a.Pool.Ping
	}
	httpServer, err := httpserver.New(logger, httpserver.Config{
		Logger:      logger,
		Port:        cfg.HTTPServer.Port,
		Mode:        cfg.HTTPServer.Mode,
		Environment: cfg.Environment.Name,
		Middleware: middleware.Config{
			RateLimitPerMin: cfg.Extraction.RateLimitPerMin,
		},
		MetricsGatherer:   reg,
		Readiness:         readiness,
		ExtractionUseCase: a.Extraction,
		TelegramHandler:   telegramHandler,
	})
	if err != nil {
		logger.Error(ctx, "Failed to initialize HTTP server: ", err)
		return
	}

	// 6. Run
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return httpServer.Run(gctx) })
	if a.Notification != nil && cfg.Notification.SweepInterval > 0 {
		g.Go(func() error {
			runSweeps(gctx, a.Notification, cfg.Notification.SweepInterval, logger)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		logger.Error(ctx, "Failed to run server: ", err)
		return
	}

	logger.Info(ctx, "Server stopped gracefully")
}

// runSweeps runs the notification sweep every interval until ctx ends. A failed
// sweep is logged and retried on the next tick.
func runSweeps(ctx context.Context, uc notification.UseCase, interval time.Duration, l log.Logger) {
	l.Infof(ctx, "Notification sweep every %s", interval)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if _, err := uc.Sweep(ctx, now); err != nil {
				l.Errorf(ctx, "notification sweep failed: %v", err)
			}
		}
	}
}
