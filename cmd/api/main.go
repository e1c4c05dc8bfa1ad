package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storekart/internal/cart"
	"storekart/internal/catalog"
	"storekart/internal/checkout"
	"storekart/internal/config"
	"storekart/internal/coupon"
	"storekart/internal/database"
	"storekart/internal/handler"
	"storekart/internal/order"
	"storekart/internal/pricing"
	"storekart/internal/repository"
	"storekart/internal/router"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := config.NewLogger(cfg.Logger)
	logger.Info().Msg("starting storekart API server")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	// Repositories
	productRepo := repository.NewProductRepository(pool, logger)
	cartRepo := repository.NewCartRepository(pool, logger)
	orderRepo := repository.NewOrderRepository(pool, logger)
	addressRepo := repository.NewAddressRepository(pool, logger)

	// Coupon book, loaded from S3 or local files with a built-in fallback.
	var couponLoader coupon.Loader
	if cfg.Coupon.S3Enabled {
		s3Loader, err := coupon.NewS3Loader(ctx, cfg.Coupon.S3Bucket, cfg.Coupon.S3Region, logger)
		if err != nil {
			logger.Warn().
				Err(err).
				Msg("failed to initialise S3 coupon loader, falling back to local file system")
			couponLoader = coupon.NewFileLoader(logger)
		} else {
			couponLoader = s3Loader
		}
	} else {
		couponLoader = coupon.NewFileLoader(logger)
	}

	couponBook, err := coupon.BuildBook(ctx, cfg.Coupon.FilePaths, couponLoader, logger)
	if err != nil {
		return fmt.Errorf("failed to build coupon book: %w", err)
	}

	// Core services
	provider := catalog.NewProvider(productRepo, cfg.Catalog.LookupTimeout, cfg.Catalog.RetryBackoff, logger)
	pricer := pricing.NewEngine(couponBook)
	cartStore := cart.NewStore(cartRepo, provider, logger)
	orderManager := order.NewManager(orderRepo, logger)
	coordinator := checkout.NewCoordinator(
		cartStore,
		orderManager,
		addressRepo,
		pricer,
		cfg.Checkout.ClearRetries,
		cfg.Checkout.ClearBackoff,
		logger,
	)

	// HTTP handlers
	productHandler := handler.NewProductHandler(productRepo, logger)
	cartHandler := handler.NewCartHandler(cartStore, logger)
	checkoutHandler := handler.NewCheckoutHandler(coordinator, logger)
	orderHandler := handler.NewOrderHandler(orderManager, logger)
	adminOrderHandler := handler.NewAdminOrderHandler(orderManager, logger)

	mux := router.New(
		productHandler,
		cartHandler,
		checkoutHandler,
		orderHandler,
		adminOrderHandler,
		cfg.Auth.AdminAPIKey,
		logger,
	)

	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErrors := make(chan error, 1)

	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received, starting graceful shutdown")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}
