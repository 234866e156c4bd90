package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/tiendahub/tienda-backend/api/routes"
	"github.com/tiendahub/tienda-backend/internal/inventory"
	product "github.com/tiendahub/tienda-backend/internal/products"
	"github.com/tiendahub/tienda-backend/internal/purchases"
	"github.com/tiendahub/tienda-backend/internal/returns"
	"github.com/tiendahub/tienda-backend/internal/sales"
	"github.com/tiendahub/tienda-backend/internal/shrinkage"
	"github.com/tiendahub/tienda-backend/internal/stores"
	"github.com/tiendahub/tienda-backend/pkg/config"
	"github.com/tiendahub/tienda-backend/pkg/db"
	"github.com/tiendahub/tienda-backend/pkg/logger"
	"github.com/tiendahub/tienda-backend/pkg/migrate"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	storesRepo := stores.NewRepository(dbClient.DB())
	ledger := inventory.NewLedger(dbClient.DB())

	storeService, err := stores.NewService(storesRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create stores service", err)
		os.Exit(1)
	}

	productService, err := product.NewService(product.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create products service", err)
		os.Exit(1)
	}

	salesService, err := sales.NewService(dbClient, sales.NewRepository(dbClient.DB()), ledger, storesRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create sales service", err)
		os.Exit(1)
	}

	purchasesService, err := purchases.NewService(dbClient, purchases.NewRepository(dbClient.DB()), ledger, storesRepo, cfg.Documents)
	if err != nil {
		logg.Error(context.Background(), "failed to create purchases service", err)
		os.Exit(1)
	}

	returnsService, err := returns.NewService(dbClient, returns.NewRepository(dbClient.DB()), ledger)
	if err != nil {
		logg.Error(context.Background(), "failed to create returns service", err)
		os.Exit(1)
	}

	shrinkageService, err := shrinkage.NewService(dbClient, shrinkage.NewRepository(dbClient.DB()), ledger)
	if err != nil {
		logg.Error(context.Background(), "failed to create shrinkage service", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	handler := routes.NewRouter(cfg, logg, dbClient, registry, routes.Services{
		Stores:    storeService,
		Products:  productService,
		Sales:     salesService,
		Purchases: purchasesService,
		Returns:   returnsService,
		Shrinkage: shrinkageService,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	shutdownCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-shutdownCtx.Done():
		logg.Info(ctx, "shutting down api server")
		graceCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(graceCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
			os.Exit(1)
		}
	}
}
