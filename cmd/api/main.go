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
	"go.uber.org/multierr"

	"github.com/rednammadhavi/laptopcare-erp/api/routes"
	"github.com/rednammadhavi/laptopcare-erp/internal/auth"
	"github.com/rednammadhavi/laptopcare-erp/internal/customers"
	"github.com/rednammadhavi/laptopcare-erp/internal/inventory"
	"github.com/rednammadhavi/laptopcare-erp/internal/jobs"
	"github.com/rednammadhavi/laptopcare-erp/internal/reports"
	"github.com/rednammadhavi/laptopcare-erp/internal/users"
	"github.com/rednammadhavi/laptopcare-erp/pkg/auth/session"
	"github.com/rednammadhavi/laptopcare-erp/pkg/config"
	"github.com/rednammadhavi/laptopcare-erp/pkg/db"
	"github.com/rednammadhavi/laptopcare-erp/pkg/logger"
	"github.com/rednammadhavi/laptopcare-erp/pkg/metrics"
	"github.com/rednammadhavi/laptopcare-erp/pkg/migrate"
	"github.com/rednammadhavi/laptopcare-erp/pkg/redis"
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

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	// Redis is optional; without it logout revocation degrades to the
	// in-process set and auth rate limiting is disabled.
	var redisClient *redis.Client
	var revoker session.Revoker = session.NewMemoryRevoker()
	if cfg.Redis.Enabled() {
		redisClient, err = redis.New(context.Background(), cfg.Redis)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap redis", err)
			os.Exit(1)
		}
		revoker, err = session.NewRedisRevoker(redisClient)
		if err != nil {
			logg.Error(context.Background(), "failed to create token revoker", err)
			os.Exit(1)
		}
	} else {
		logg.Warn(context.Background(), "redis not configured, using in-memory token revocation")
	}

	userRepo := users.NewRepository(dbClient.DB())

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       userRepo,
		Revoker:        revoker,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	registerService, err := auth.NewRegisterService(auth.RegisterServiceParams{
		DB:             dbClient,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create register service", err)
		os.Exit(1)
	}

	customerService, err := customers.NewService(customers.ServiceParams{DB: dbClient})
	if err != nil {
		logg.Error(context.Background(), "failed to create customer service", err)
		os.Exit(1)
	}

	jobService, err := jobs.NewService(jobs.ServiceParams{DB: dbClient})
	if err != nil {
		logg.Error(context.Background(), "failed to create job service", err)
		os.Exit(1)
	}

	inventoryService, err := inventory.NewService(inventory.ServiceParams{DB: dbClient})
	if err != nil {
		logg.Error(context.Background(), "failed to create inventory service", err)
		os.Exit(1)
	}

	reportService, err := reports.NewService(reports.ServiceParams{DB: dbClient})
	if err != nil {
		logg.Error(context.Background(), "failed to create report service", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()

	handler := routes.NewRouter(routes.RouterParams{
		Config:      cfg,
		Logger:      logg,
		DBPinger:    dbClient,
		RedisClient: redisClient,
		Revoker:     revoker,
		HTTPMetrics: metrics.NewHTTPMetrics(registry),
		Gatherer:    registry,

		AuthService:      authService,
		RegisterService:  registerService,
		CustomerService:  customerService,
		JobService:       jobService,
		InventoryService: inventoryService,
		ReportService:    reportService,
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
		Addr:    addr,
		Handler: handler,
	}

	stopCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-stopCtx.Done():
		logg.Info(ctx, "shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
		}
	}

	var closeErr error
	closeErr = multierr.Append(closeErr, dbClient.Close())
	if redisClient != nil {
		closeErr = multierr.Append(closeErr, redisClient.Close())
	}
	if closeErr != nil {
		logg.Error(ctx, "error closing resources", closeErr)
		os.Exit(1)
	}

	logg.Info(ctx, "api server stopped")
}
