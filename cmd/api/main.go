package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/restaus/restaus-backend/api/controllers"
	"github.com/restaus/restaus-backend/api/routes"
	"github.com/restaus/restaus-backend/internal/auth"
	"github.com/restaus/restaus-backend/internal/menus"
	"github.com/restaus/restaus-backend/internal/orders"
	"github.com/restaus/restaus-backend/internal/payments"
	"github.com/restaus/restaus-backend/internal/tables"
	"github.com/restaus/restaus-backend/internal/users"
	"github.com/restaus/restaus-backend/pkg/config"
	"github.com/restaus/restaus-backend/pkg/db"
	"github.com/restaus/restaus-backend/pkg/logger"
	"github.com/restaus/restaus-backend/pkg/metrics"
	"github.com/restaus/restaus-backend/pkg/migrate"
	"github.com/restaus/restaus-backend/pkg/outbox"
	"github.com/restaus/restaus-backend/pkg/redis"
)

const shutdownGrace = 15 * time.Second

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

	redisClient, err := redis.New(context.Background(), cfg.Redis)
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
	serviceMetrics := metrics.NewServiceMetrics(registry)

	gormDB := dbClient.DB()
	usersRepo := users.NewRepository(gormDB)
	outboxService := outbox.NewService(outbox.NewRepository(gormDB), logg)

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:  usersRepo,
		JWTConfig: cfg.JWT,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	tablesService, err := tables.NewService(tables.NewRepository(gormDB), cfg.FrontOfHouse.TableWarningAfter)
	if err != nil {
		logg.Error(context.Background(), "failed to create tables service", err)
		os.Exit(1)
	}

	menusService, err := menus.NewService(menus.NewRepository(gormDB), dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create menus service", err)
		os.Exit(1)
	}

	ordersRepo := orders.NewRepository(gormDB)
	ordersService, err := orders.NewService(orders.ServiceParams{
		Repo:         ordersRepo,
		Tx:           dbClient,
		Outbox:       outboxService,
		Stock:        orders.NewStockKeeper(),
		Tables:       orders.NewTableKeeper(),
		Metrics:      serviceMetrics,
		WarningAfter: cfg.FrontOfHouse.TableWarningAfter,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}

	paymentsService, err := payments.NewService(payments.ServiceParams{
		Repo:    payments.NewRepository(gormDB),
		Orders:  ordersRepo,
		Tx:      dbClient,
		Outbox:  outboxService,
		Tables:  payments.NewTableReleaser(),
		Metrics: serviceMetrics,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create payments service", err)
		os.Exit(1)
	}

	router := routes.NewRouter(routes.Deps{
		Cfg:  cfg,
		Logg: logg,
		Ready: map[string]controllers.Pinger{
			"database": dbClient,
			"redis":    redisClient,
		},
		IdemPot:         redisClient,
		Registry:        registry,
		AuthService:     authService,
		TablesService:   tablesService,
		MenusService:    menusService,
		OrdersService:   ordersService,
		PaymentsService: paymentsService,
		UsersRepo:       usersRepo,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "api server shutdown error", err)
		}
	}

	logg.Info(ctx, "api server shutting down gracefully")
}
