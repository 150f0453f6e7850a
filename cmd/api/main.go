package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"jalai-market/internal/config"
	"jalai-market/internal/database"
	"jalai-market/internal/events"
	"jalai-market/internal/handler"
	"jalai-market/internal/momo"
	"jalai-market/internal/repository"
	"jalai-market/internal/router"
	"jalai-market/internal/service"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Logger)
	logger.Info().Msg("starting jalai-market API server")

	// Create context for application lifecycle
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database connection pool
	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	// Initialize repositories
	txBeginner := repository.NewTxBeginner(pool)
	actorRepo := repository.NewActorRepository(pool, logger)
	productRepo := repository.NewProductRepository(pool, logger)
	cartRepo := repository.NewCartRepository(pool, logger)
	orderRepo := repository.NewOrderRepository(pool, logger)
	paymentRepo := repository.NewPaymentRepository(pool, logger)
	donationRepo := repository.NewDonationRepository(pool, logger)
	notificationRepo := repository.NewNotificationRepository(pool, logger)

	// Initialize workflow event publisher
	var publisher events.Publisher
	if cfg.Kafka.Enabled {
		publisher = events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, logger)
	} else {
		publisher = events.NewNopPublisher()
		logger.Info().Msg("workflow event publishing disabled")
	}
	defer publisher.Close()

	// Initialize mobile-money provider
	provider := momo.NewSimulatedProvider(cfg.MobileMoney.SuccessRate, 2*time.Second, logger)

	// Initialize services
	notificationService := service.NewNotificationService(
		notificationRepo, actorRepo,
		cfg.Notifications.RetentionAge, cfg.Notifications.SweepInterval,
		logger,
	)
	catalogService := service.NewCatalogService(productRepo, actorRepo, notificationService, publisher, logger)
	cartService := service.NewCartService(cartRepo, productRepo, actorRepo, logger)
	orderService := service.NewOrderService(txBeginner, orderRepo, cartRepo, productRepo, actorRepo, notificationService, publisher, logger)
	paymentService := service.NewPaymentService(txBeginner, paymentRepo, orderRepo, actorRepo, provider, cfg.MobileMoney.Timeout, notificationService, publisher, logger)
	donationService := service.NewDonationService(donationRepo, actorRepo, notificationService, publisher, logger)

	// Start the notification retention sweeper
	go notificationService.RunRetentionSweep(ctx)

	// Initialize HTTP handlers
	productHandler := handler.NewProductHandler(catalogService, logger)
	cartHandler := handler.NewCartHandler(cartService, logger)
	orderHandler := handler.NewOrderHandler(orderService, logger)
	paymentHandler := handler.NewPaymentHandler(paymentService, logger)
	donationHandler := handler.NewDonationHandler(donationService, logger)
	notificationHandler := handler.NewNotificationHandler(notificationService, logger)

	// Initialize router
	mux := router.New(
		productHandler,
		cartHandler,
		orderHandler,
		paymentHandler,
		donationHandler,
		notificationHandler,
		cfg.Auth.APIKey,
		logger,
	)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Channel to listen for errors from the server
	serverErrors := make(chan error, 1)

	// Start HTTP server in a goroutine
	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	// Channel to listen for interrupt signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a signal or an error
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received, starting graceful shutdown")

		// Create a context with timeout for shutdown
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		// Attempt graceful shutdown
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			// Force close
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}
