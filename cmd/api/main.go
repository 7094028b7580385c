package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/PrathamRathore123/Whatsapp-Bot/internal/api/router"
	"github.com/PrathamRathore123/Whatsapp-Bot/internal/app/bootstrap"
	appconfig "github.com/PrathamRathore123/Whatsapp-Bot/internal/config"
	"github.com/PrathamRathore123/Whatsapp-Bot/internal/http/handlers"
	"github.com/PrathamRathore123/Whatsapp-Bot/internal/observability/metrics"
	eventsworker "github.com/PrathamRathore123/Whatsapp-Bot/internal/worker/events"
	"github.com/PrathamRathore123/Whatsapp-Bot/pkg/logging"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting whatsapp travel assistant",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	if err := run(cfg, logger); err != nil {
		logger.Error("server exited with error", "error", err)
		os.Exit(1)
	}
	logger.Info("server exited gracefully")
}

func run(cfg *appconfig.Config, logger *logging.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metricsHandler, botMetrics := setupMetrics()

	redisClient := bootstrap.BuildRedisClient(ctx, cfg, logger, true)
	if redisClient != nil {
		defer redisClient.Close()
	}
	pool, err := bootstrap.BuildPostgresPool(ctx, cfg, logger)
	if err != nil {
		return err
	}
	if pool != nil {
		defer pool.Close()
	}

	processed, purgeTarget := bootstrap.BuildProcessedStore(pool, redisClient, cfg)
	if purgeTarget != nil {
		go eventsworker.NewPurger(purgeTarget, logger).WithRetention(cfg.WebhookDedupeTTL).Run(ctx)
	}

	generator, closeGenerator, err := bootstrap.BuildGenerator(ctx, cfg, logger, botMetrics)
	if err != nil {
		return err
	}
	defer closeGenerator()

	messenger, _, err := bootstrap.BuildMessenger(cfg, logger)
	if err != nil {
		return err
	}
	backendClient, err := bootstrap.BuildBackend(cfg, logger)
	if err != nil {
		return err
	}
	sheetAppender, err := bootstrap.BuildSheetAppender(ctx, cfg, logger)
	if err != nil {
		// Sheet logging is best effort; bookings still go to the backend.
		logger.Warn("google sheets disabled", "error", err)
	}
	bookingService := bootstrap.BuildBookings(pool, logger)
	emailTransport := bootstrap.BuildEmailTransport(ctx, cfg, logger)

	service, err := bootstrap.BuildConversationService(cfg, bootstrap.Components{
		Transcripts: bootstrap.BuildTranscriptStore(redisClient, cfg, logger),
		Generator:   generator,
		Messenger:   messenger,
		Catalog:     bootstrap.BuildCatalog(cfg, logger),
		Backend:     backendClient,
		Sheets:      sheetAppender,
		Bookings:    bookingService,
		Executive:   bootstrap.BuildExecutiveMailer(emailTransport, cfg, logger),
	}, logger, botMetrics)
	if err != nil {
		return err
	}

	var status handlers.StatusLookup
	if client := bootstrap.BuildStatusClient(cfg, logger); client != nil {
		status = client
	}
	var bookingLister handlers.BookingLister
	if bookingService != nil {
		bookingLister = bookingService
	}

	if cfg.WhatsAppAppSecret == "" {
		logger.Warn("WHATSAPP_APP_SECRET not set; webhook signatures are not verified")
	}
	handler := router.New(&router.Config{
		Logger: logger,
		WhatsApp: handlers.NewWhatsAppWebhookHandler(handlers.WhatsAppWebhookConfig{
			Queue:       service,
			VerifyToken: cfg.WebhookVerifyToken,
			AppSecret:   cfg.WhatsAppAppSecret,
			Processed:   processed,
			DedupeTTL:   cfg.WebhookDedupeTTL,
			Logger:      logger,
			Metrics:     botMetrics,
		}),
		BackendWebhooks:  handlers.NewBackendWebhookHandler(service, status, cfg.BrandName, logger),
		Admin:            handlers.NewAdminHandler(service, bookingLister, logger),
		MetricsHandler:   metricsHandler,
		BackendAuthToken: cfg.WebhookAuthToken,
		BackendJWTSecret: cfg.BackendJWTSecret,
		WebhookRPS:       cfg.WebhookRPS,
		WebhookBurst:     cfg.WebhookBurst,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}

	logger.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}
	// Let queued conversation turns finish before closing stores.
	if err := service.Close(shutdownCtx); err != nil {
		logger.Warn("conversation queue did not drain", "error", err)
	}
	return nil
}

func setupMetrics() (http.Handler, *metrics.BotMetrics) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), metrics.NewBotMetrics(reg)
}
