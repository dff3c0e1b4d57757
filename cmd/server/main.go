package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"visitr/internal/api"
	"visitr/internal/api/handlers"
	"visitr/internal/api/middleware"
	"visitr/internal/engine/orgs"
	"visitr/internal/engine/visits"
	"visitr/internal/pkg/logger"
	"visitr/internal/platform/auth"
	"visitr/internal/platform/config"
	"visitr/internal/platform/database"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "Path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.Logging, "server")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}
}

func newLimiter(ctx context.Context, cfg config.RateLimitConfig) (middleware.Limiter, func(), error) {
	if cfg.Backend != "redis" {
		limiter := middleware.NewMemoryLimiter()
		return limiter, limiter.Stop, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, nil, fmt.Errorf("connect to redis: %w", err)
	}
	return middleware.NewRedisLimiter(rdb), func() { rdb.Close() }, nil
}

func run(ctx context.Context, cfg *config.Config) error {
	// Database Connections
	stores, err := database.Open(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer stores.Close(context.Background())

	limiter, closeLimiter, err := newLimiter(ctx, cfg.RateLimit)
	if err != nil {
		return err
	}
	defer closeLimiter()

	// Services
	tokenSvc := auth.NewTokenService(cfg.JWT)
	orgSvc := orgs.NewService(stores.Organizations, orgs.NewCache(cfg.Cache.OrganizationTTL), tokenSvc,
		cfg.App.ClientURL, cfg.Visits.DefaultMinVisitMinutes)
	visitSvc := visits.NewService(stores.Guests, orgSvc, cfg.Visits)

	dev := cfg.App.IsDevelopment()

	// Router
	deps := &api.Dependencies{
		AuthHandler:      handlers.NewAuthHandler(orgSvc, dev),
		OrgHandler:       handlers.NewOrgHandler(orgSvc, dev),
		GuestHandler:     handlers.NewGuestHandler(visitSvc, dev),
		QRHandler:        handlers.NewQRHandler(orgSvc, dev),
		DashboardHandler: handlers.NewDashboardHandler(visitSvc, dev),
		HealthHandler:    handlers.NewHealthHandler(stores.Organizations, cfg.App.Environment),
		AuthMiddleware:   middleware.NewAuthMiddleware(tokenSvc),
		TenantMiddleware: middleware.NewTenantMiddleware(orgSvc),
		Limiter:          limiter,
		RateLimit:        cfg.RateLimit,
	}
	router := api.NewRouter(deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      api.NewHTTPHandler(router, cfg.CORS),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("addr", srv.Addr).
			Str("environment", cfg.App.Environment).
			Str("database", stores.Driver).
			Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout(cfg.Server))
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func shutdownTimeout(cfg config.ServerConfig) time.Duration {
	if cfg.ShutdownTimeout <= 0 {
		return 10 * time.Second
	}
	return cfg.ShutdownTimeout
}
