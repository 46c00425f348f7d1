package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/pixelmint/backend/internal/adapter/repo"
	"github.com/pixelmint/backend/internal/auth"
	"github.com/pixelmint/backend/internal/http/handlers"
	httpapi "github.com/pixelmint/backend/internal/http"
	"github.com/pixelmint/backend/internal/infra"
	"github.com/pixelmint/backend/internal/infra/geoip"
	"github.com/pixelmint/backend/internal/middleware"
	"github.com/pixelmint/backend/internal/permission"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx := context.Background()
	dbpool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}
	defer dbpool.Close()

	rdb, err := infra.NewRedisClient(ctx, cfg)
	if err != nil {
		// Redis only backs the HTTP rate limiter; the API stays usable
		// without it.
		logger.Warn().Err(err).Msg("redis unavailable, rate limiting disabled")
		rdb = nil
	} else {
		defer rdb.Close()
	}

	resolver, err := geoip.NewResolver(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("geoip database unavailable")
	}
	var lookup middleware.CountryLookup
	if resolver != nil {
		defer resolver.Close()
		lookup = resolver.CountryCode
	}

	tokens := auth.NewTokenService(cfg.JWTSecret, cfg.JWTExpiry)
	gate := permission.NewGate(permission.Store{
		Entitlements: repo.NewEntitlementRepository(dbpool),
		Credits:      repo.NewCreditRepository(dbpool),
		Usage:        repo.NewUsageRepository(dbpool),
	}, cfg.PermissionCacheTTL, logger)

	app := &handlers.App{
		Logger:      logger,
		Tokens:      tokens,
		Gate:        gate,
		Users:       repo.NewUserRepository(dbpool),
		Tasks:       repo.NewTaskRepository(dbpool),
		Engagements: repo.NewEngagementRepository(dbpool),
		Usage:       repo.NewUsageRepository(dbpool),
	}

	router := httpapi.NewRouter(app, tokens, cfg, rdb, lookup, logger)
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
