package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/fidgetclicks/fidgetclicks-backend/api/routes"
	"github.com/fidgetclicks/fidgetclicks-backend/internal/catalog"
	"github.com/fidgetclicks/fidgetclicks-backend/internal/inventory"
	"github.com/fidgetclicks/fidgetclicks-backend/internal/keyboards"
	"github.com/fidgetclicks/fidgetclicks-backend/internal/orders"
	"github.com/fidgetclicks/fidgetclicks-backend/pkg/config"
	"github.com/fidgetclicks/fidgetclicks-backend/pkg/db"
	"github.com/fidgetclicks/fidgetclicks-backend/pkg/logger"
	"github.com/fidgetclicks/fidgetclicks-backend/pkg/metrics"
	"github.com/fidgetclicks/fidgetclicks-backend/pkg/migrate"
	"github.com/fidgetclicks/fidgetclicks-backend/pkg/redis"
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

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	orderMetrics := metrics.NewOrderEngineMetrics(registry)

	catalogRepo := catalog.NewRepository(dbClient.DB())
	keyboardsRepo := keyboards.NewRepository(dbClient.DB())
	ordersRepo := orders.NewRepository(dbClient.DB())

	keyboardsSvc, err := keyboards.NewService(keyboardsRepo, catalogRepo, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create keyboards service", err)
		os.Exit(1)
	}

	catalogSvc, err := catalog.NewService(catalogRepo, keyboardsSvc, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog service", err)
		os.Exit(1)
	}

	ordersSvc, err := orders.NewService(ordersRepo, dbClient, logg, orderMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}

	inventoryRepo, err := inventory.NewRepository(dbClient.DB())
	if err != nil {
		logg.Error(context.Background(), "failed to create inventory repository", err)
		os.Exit(1)
	}
	inventorySvc, err := inventory.NewService(inventoryRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create inventory service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	id := os.Getenv("DYNO")
	if id == "" {
		id = "local"
	}
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": id,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(cfg, logg, dbClient.DB(), redisClient, registry, routes.Services{
			Catalog:   catalogSvc,
			Keyboards: keyboardsSvc,
			Orders:    ordersSvc,
			Inventory: inventorySvc,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
