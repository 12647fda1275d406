package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"turfbook/internal/application"
	"turfbook/internal/application/services"
	"turfbook/internal/config"
	"turfbook/internal/events"
	"turfbook/internal/infrastructure/cache"
	"turfbook/internal/infrastructure/gateway"
	"turfbook/internal/infrastructure/persistence/postgres"
	"turfbook/internal/interfaces/rest/handlers"
	"turfbook/internal/interfaces/rest/middleware"
	"turfbook/internal/worker"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := cfg.Logger.NewLogger()
	slog.SetDefault(logger)

	logger.Info("starting booking service",
		"port", cfg.Server.Port,
		"log_level", cfg.Logger.Level,
	)

	ctx := context.Background()
	db, err := postgres.Connect(ctx, &cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	bookingRepo := postgres.NewBookingRepository(db.Pool)
	groundRepo := postgres.NewGroundRepository(db.Pool)

	gatewayClient := gateway.NewClient(cfg.Gateway)
	retryGatewayClient := gateway.NewRetryClient(gatewayClient, cfg.Retry)

	var publisher application.EventPublisher = events.NoopPublisher{}
	if cfg.Events.AMQPURL != "" {
		p, err := events.NewPublisher(cfg.Events.AMQPURL, cfg.Events.Exchange)
		if err != nil {
			logger.Error("failed to connect to message broker", "error", err)
			os.Exit(1)
		}
		defer p.Close()
		publisher = p
	}

	var availCache application.AvailabilityCache = cache.NoopCache{}
	if cfg.Cache.RedisAddr != "" {
		c, err := cache.NewAvailabilityCache(cfg.Cache, logger)
		if err != nil {
			logger.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}
		defer c.Close()
		availCache = c
	}

	conflictChecker := services.NewConflictChecker(bookingRepo, groundRepo)

	createOrderService := services.NewCreateOrderService(
		bookingRepo, groundRepo, conflictChecker,
		retryGatewayClient, publisher, availCache,
		cfg.Gateway, logger,
	)
	verifyService := services.NewVerifyService(
		bookingRepo, groundRepo, conflictChecker, db,
		retryGatewayClient, cfg.Gateway.KeySecret,
		publisher, availCache, logger,
	)
	failureService := services.NewPaymentFailureService(
		bookingRepo, groundRepo, conflictChecker, db,
		publisher, availCache, logger,
	)
	cancelService := services.NewCancelService(
		bookingRepo, groundRepo, conflictChecker,
		publisher, availCache, logger,
	)
	availabilityService := services.NewAvailabilityService(
		groundRepo, conflictChecker, availCache, logger,
	)

	h := handlers.NewHandlers(
		createOrderService,
		verifyService,
		failureService,
		cancelService,
		availabilityService,
		logger,
	)

	mux := http.NewServeMux()
	h.RegisterRoutes(mux)

	handler := middleware.Recovery(logger)(mux)
	handler = middleware.Logging(logger)(handler)
	handler = middleware.Timeout(cfg.Server.ReadTimeout)(handler)

	server := &http.Server{
		Addr:         "0.0.0.0:" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	expirationWorker := worker.NewExpirationWorker(
		bookingRepo,
		groundRepo,
		db,
		publisher,
		availCache,
		cfg.Worker.Interval,
		cfg.Worker.PaymentWindow,
		cfg.Worker.BatchSize,
		logger,
	)

	workerCtx, cancelWorkers := context.WithCancel(context.Background())
	defer cancelWorkers()

	go expirationWorker.Start(workerCtx)

	go func() {
		logger.Info("server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	cancelWorkers()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	logger.Info("server exited")
}
