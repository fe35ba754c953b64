// AngelaMos | 2026
// main.go

package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/carterperez-dev/templates/admin-dashboard/internal/admin"
	"github.com/carterperez-dev/templates/admin-dashboard/internal/authz"
	"github.com/carterperez-dev/templates/admin-dashboard/internal/config"
	"github.com/carterperez-dev/templates/admin-dashboard/internal/core"
	"github.com/carterperez-dev/templates/admin-dashboard/internal/guard"
	"github.com/carterperez-dev/templates/admin-dashboard/internal/health"
	"github.com/carterperez-dev/templates/admin-dashboard/internal/identity"
	"github.com/carterperez-dev/templates/admin-dashboard/internal/middleware"
	"github.com/carterperez-dev/templates/admin-dashboard/internal/server"
	"github.com/carterperez-dev/templates/admin-dashboard/internal/user"
)

const (
	drainDelay = 5 * time.Second
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

//nolint:funlen // bootstrap code is inherently verbose
func run(configPath string) error {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := config.NewLogger(cfg.Log, os.Stdout)
	slog.SetDefault(logger)

	logger.Info("starting application",
		"name", cfg.App.Name,
		"version", cfg.App.Version,
		"environment", cfg.App.Environment,
	)

	var telemetry *core.Telemetry
	if cfg.Otel.Enabled {
		tel, telErr := core.NewTelemetry(ctx, cfg.Otel, cfg.App)
		if telErr != nil {
			logger.Warn("failed to initialize telemetry", "error", telErr)
		} else {
			telemetry = tel
			logger.Info("OpenTelemetry tracer initialized",
				"endpoint", cfg.Otel.Endpoint,
			)
		}
	}

	db, err := core.NewDatabase(ctx, cfg.Database)
	if err != nil {
		return err
	}
	logger.Info("database connected",
		"max_open_conns", cfg.Database.MaxOpenConns,
		"max_idle_conns", cfg.Database.MaxIdleConns,
	)

	if cfg.Database.AutoMigrate {
		if err := db.Migrate(ctx); err != nil {
			return err
		}
		logger.Info("database migrations applied")
	}

	redis, err := core.NewRedis(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	logger.Info("redis connected",
		"pool_size", cfg.Redis.PoolSize,
	)

	verifier, err := identity.NewVerifier(ctx, cfg.Identity)
	if err != nil {
		return err
	}
	logger.Info("identity verifier initialized",
		"algorithm", cfg.Identity.Algorithm,
		"jwks", cfg.Identity.JWKSURL != "",
	)

	userRepo := user.NewRepository(db.DB)

	resolverOpts := []authz.Option{authz.WithLogger(logger)}
	userOpts := []user.ServiceOption{user.WithMaxLimit(cfg.Listing.MaxLimit)}
	if cfg.Authz.CacheTTL > 0 {
		cache := authz.NewRedisCache(redis.Client, cfg.Authz.CacheTTL, logger)
		resolverOpts = append(resolverOpts, authz.WithCache(cache))
		userOpts = append(userOpts, user.WithCacheInvalidator(cache))
	}

	resolver := authz.NewResolver(userRepo, resolverOpts...)
	userSvc := user.NewService(userRepo, userOpts...)
	userHandler := user.NewHandler(
		userSvc,
		resolver,
		user.WithDefaultLimits(
			cfg.Listing.DefaultLimit,
			cfg.Listing.AdminDefaultLimit,
		),
	)

	guardHandler := guard.NewHandler(resolver)

	healthHandler := health.NewHandler(
		health.Dependency{Name: "database", Checker: db},
		health.Dependency{Name: "redis", Checker: redis},
	)

	adminHandler := admin.NewHandler(admin.HandlerConfig{
		Users:      userSvc,
		DBStats:    db.Stats,
		RedisStats: redis.PoolStats,
		DBPing:     db.Ping,
		RedisPing:  redis.Ping,
	})

	srv := server.New(server.Config{
		ServerConfig:  cfg.Server,
		HealthHandler: healthHandler,
		Logger:        logger,
	})

	router := srv.Router()

	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(logger))
	router.Use(
		middleware.NewRateLimiter(redis.Client, middleware.RateLimitConfig{
			Limit: middleware.PerWindow(
				cfg.RateLimit.Requests,
				cfg.RateLimit.Burst,
				cfg.RateLimit.Window,
			),
			FailOpen: true,
		}).Handler,
	)
	router.Use(middleware.SecurityHeaders(cfg.IsProduction()))
	router.Use(middleware.CORS(cfg.CORS))

	healthHandler.RegisterRoutes(router)

	authenticator := middleware.Authenticator(verifier)
	identityLimiter := middleware.NewRateLimiter(
		redis.Client,
		middleware.RateLimitConfig{
			Limit: middleware.PerWindow(
				cfg.RateLimit.Requests,
				cfg.RateLimit.Burst,
				cfg.RateLimit.Window,
			),
			KeyFunc:  middleware.KeyByIdentity,
			FailOpen: true,
		},
	).Handler

	router.Route("/v1", func(r chi.Router) {
		userHandler.RegisterRoutes(r, authenticator, identityLimiter)
		guardHandler.RegisterRoutes(r, middleware.OptionalAuth(verifier))

		r.Route("/admin", func(r chi.Router) {
			r.Use(authenticator)
			r.Use(identityLimiter)

			userHandler.RegisterAdminRoutes(r)
			adminHandler.RegisterRoutes(
				r,
				authz.RequireAdmin(resolver),
				authz.RequireSuperAdmin(resolver),
			)
		})
	})

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		cfg.Server.ShutdownTimeout+drainDelay+5*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx, drainDelay); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			logger.Error("telemetry shutdown error", "error", err)
		}
	}

	if err := redis.Close(); err != nil {
		logger.Error("redis close error", "error", err)
	}

	if err := db.Close(); err != nil {
		logger.Error("database close error", "error", err)
	}

	logger.Info("application stopped")
	return nil
}
