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

	"github.com/mercagoods/storefront-backend/api/controllers"
	"github.com/mercagoods/storefront-backend/api/routes"
	authsvc "github.com/mercagoods/storefront-backend/internal/auth"
	cartsvc "github.com/mercagoods/storefront-backend/internal/cart"
	"github.com/mercagoods/storefront-backend/internal/catalog"
	checkoutsvc "github.com/mercagoods/storefront-backend/internal/checkout"
	"github.com/mercagoods/storefront-backend/internal/orders"
	"github.com/mercagoods/storefront-backend/pkg/config"
	"github.com/mercagoods/storefront-backend/pkg/db"
	"github.com/mercagoods/storefront-backend/pkg/enums"
	"github.com/mercagoods/storefront-backend/pkg/logger"
	"github.com/mercagoods/storefront-backend/pkg/metrics"
	"github.com/mercagoods/storefront-backend/pkg/migrate"
	"github.com/mercagoods/storefront-backend/pkg/payments"
	"github.com/mercagoods/storefront-backend/pkg/redis"
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

	catalogRepo := catalog.NewRepository(dbClient.DB())
	if cfg.FeatureFlags.SeedCatalog {
		if err := catalog.SeedDev(context.Background(), catalogRepo); err != nil {
			logg.Error(context.Background(), "failed to seed catalog", err)
			os.Exit(1)
		}
	}

	registry := prometheus.NewRegistry()
	httpMetrics := metrics.NewHTTPMetrics(registry)
	cartMetrics := metrics.NewCartMetrics(registry)

	readyChecks := map[string]controllers.Pinger{"database": dbClient}

	persistence, redisClient, err := buildCartPersistence(cfg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap cart persistence", err)
		os.Exit(1)
	}
	if redisClient != nil {
		readyChecks["redis"] = redisClient
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}()
	}

	cartManager, err := cartsvc.NewManager(cartsvc.ManagerParams{
		Pricing:     cartsvc.PricingFromConfig(cfg.Cart),
		Policy:      cartsvc.QuantityPolicy(cfg.Cart.QuantityPolicy),
		Persistence: persistence,
		Logger:      logg,
		Metrics:     cartMetrics,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cart manager", err)
		os.Exit(1)
	}

	catalogService, err := catalog.NewService(catalogRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog service", err)
		os.Exit(1)
	}

	ordersRepo := orders.NewRepository(dbClient.DB())
	ordersService := orders.NewService(ordersRepo)

	currency, err := enums.ParseCurrency(cfg.Cart.Currency)
	if err != nil {
		logg.Error(context.Background(), "invalid cart currency", err)
		os.Exit(1)
	}
	checkoutService, err := checkoutsvc.NewService(dbClient, ordersRepo, payments.NewStubClient(logg), currency, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout service", err)
		os.Exit(1)
	}

	authService, err := authsvc.NewService(authsvc.NewRepository(dbClient.DB()), cfg.JWT, cfg.Password)
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

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
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:          cfg,
			Logger:          logg,
			HTTPMetrics:     httpMetrics,
			Gatherer:        registry,
			ReadyChecks:     readyChecks,
			CartManager:     cartManager,
			CatalogService:  catalogService,
			CheckoutService: checkoutService,
			OrdersService:   ordersService,
			AuthService:     authService,
		}),
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	}()

	<-shutdown
	logg.Info(ctx, "shutting down api server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logg.Error(shutdownCtx, "graceful shutdown failed", err)
	}
	// Flush any cart state still held in memory before the process exits.
	if err := cartManager.SaveAll(shutdownCtx); err != nil {
		logg.Error(shutdownCtx, "failed to flush carts", err)
	}
}

func buildCartPersistence(cfg *config.Config) (cartsvc.Persistence, *redis.Client, error) {
	switch cfg.Cart.PersistenceBackend {
	case "redis":
		client, err := redis.New(context.Background(), cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		persist, err := cartsvc.NewRedisPersistence(client, cfg.Cart.RedisTTL)
		if err != nil {
			return nil, nil, err
		}
		return persist, client, nil
	case "memory":
		return cartsvc.NewMemoryPersistence(), nil, nil
	default:
		persist, err := cartsvc.NewFilePersistence(cfg.Cart.FileDir)
		if err != nil {
			return nil, nil, err
		}
		return persist, nil, nil
	}
}
