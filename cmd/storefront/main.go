package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/la-fiesta/storefront/internal/catalog"
	"github.com/la-fiesta/storefront/internal/handlers"
	"github.com/la-fiesta/storefront/internal/platform/config"
	"github.com/la-fiesta/storefront/internal/platform/observability"
	"github.com/la-fiesta/storefront/internal/platform/pagination"
	"github.com/la-fiesta/storefront/internal/repositories/memory"
	"github.com/la-fiesta/storefront/internal/services"
)

func main() {
	ctx := context.Background()

	baseLogger, err := observability.NewLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialise logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = baseLogger.Sync()
	}()

	logger := baseLogger.Named("storefront")
	ctx = observability.WithLogger(ctx, logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	loader := catalog.NewLoader(catalog.LoaderDeps{
		SpreadsheetURL: cfg.Catalog.SpreadsheetURL,
		JSONURL:        cfg.Catalog.JSONURL,
		FetchTimeout:   cfg.Catalog.FetchTimeout,
		Logger:         logger.Named("loader"),
	})

	catalogService, err := services.NewCatalogService(services.CatalogServiceDeps{
		Loader:          loader,
		DefaultPageSize: cfg.Catalog.PageSize,
		Logger:          logger.Named("catalog"),
	})
	if err != nil {
		logger.Fatal("failed to initialise catalog service", zap.Error(err))
	}

	loadCtx, cancelLoad := context.WithTimeout(ctx, 2*cfg.Catalog.FetchTimeout)
	if err := catalogService.Load(loadCtx); err != nil {
		cancelLoad()
		logger.Fatal("failed to load catalog", zap.Error(err))
	}
	cancelLoad()

	cartService, err := services.NewCartService(services.CartServiceDeps{
		Repository: memory.NewCartRepository(),
		Products:   catalogService,
		TaxRate:    cfg.Store.TaxRate,
		Logger:     logger.Named("cart"),
	})
	if err != nil {
		logger.Fatal("failed to initialise cart service", zap.Error(err))
	}

	orderService := services.NewOrderService(services.OrderServiceDeps{
		StoreName:      cfg.Store.Name,
		TaxRate:        cfg.Store.TaxRate,
		Locale:         cfg.Store.Locale,
		CurrencySymbol: cfg.Store.CurrencySymbol,
		WhatsAppPhone:  cfg.Store.WhatsAppPhone,
	})

	catalogHandlers := handlers.NewCatalogHandlers(catalogService, pagination.Options{
		DefaultPageSize: cfg.Catalog.PageSize,
	})
	cartHandlers := handlers.NewCartHandlers(cartService)
	checkoutHandlers := handlers.NewCheckoutHandlers(cartService, orderService)

	healthHandlers := handlers.NewHealthHandlers(
		handlers.WithReadinessCheck("catalog", func() error {
			if _, err := catalogService.Snapshot(context.Background()); err != nil {
				return err
			}
			return nil
		}),
	)

	router := handlers.NewRouter(
		handlers.WithMiddlewares(
			observability.InjectLoggerMiddleware(logger.Named("http")),
			observability.RequestLoggerMiddleware(),
		),
		handlers.WithHealthHandlers(healthHandlers),
		handlers.WithCatalogRoutes(catalogHandlers.Routes),
		handlers.WithCartRoutes(func(r chi.Router) {
			cartHandlers.Routes(r)
			checkoutHandlers.Routes(r)
		}),
	)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	serverLogger := logger.Named("http").With(zap.String("addr", server.Addr))
	go func() {
		serverLogger.Info("storefront api listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverLogger.Fatal("http server error", zap.Error(err))
		}
	}()

	<-shutdown
	logger.Info("shutdown signal received; draining requests")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}
