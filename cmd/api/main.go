// AngelaMos | 2026
// main.go

package main

import (
	"context"
	"flag"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/carterperez-dev/templates/social-backend/internal/admin"
	"github.com/carterperez-dev/templates/social-backend/internal/auth"
	"github.com/carterperez-dev/templates/social-backend/internal/comment"
	"github.com/carterperez-dev/templates/social-backend/internal/config"
	"github.com/carterperez-dev/templates/social-backend/internal/core"
	"github.com/carterperez-dev/templates/social-backend/internal/docs"
	"github.com/carterperez-dev/templates/social-backend/internal/health"
	"github.com/carterperez-dev/templates/social-backend/internal/like"
	"github.com/carterperez-dev/templates/social-backend/internal/media"
	"github.com/carterperez-dev/templates/social-backend/internal/metrics"
	"github.com/carterperez-dev/templates/social-backend/internal/middleware"
	"github.com/carterperez-dev/templates/social-backend/internal/migrations"
	"github.com/carterperez-dev/templates/social-backend/internal/post"
	"github.com/carterperez-dev/templates/social-backend/internal/server"
	"github.com/carterperez-dev/templates/social-backend/internal/user"
)

const (
	drainDelay = 5 * time.Second
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	migrate := flag.Bool("migrate", false, "apply database migrations before serving")
	flag.Parse()

	if err := run(*configPath, *migrate); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

//nolint:funlen // bootstrap code is inherently verbose
func run(configPath string, migrate bool) error {
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

	logger := setupLogger(cfg.Log)
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
	defer closeLogged(logger, "database", db)
	logger.Info("database connected",
		"max_open_conns", cfg.Database.MaxOpenConns,
		"max_idle_conns", cfg.Database.MaxIdleConns,
	)

	if migrate {
		if err := migrations.Up(ctx, db.DB.DB); err != nil {
			return err
		}
		version, _ := migrations.Version(ctx, db.DB.DB) //nolint:errcheck // informational
		logger.Info("migrations applied", "version", version)
	}

	redis, err := core.NewRedis(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	defer closeLogged(logger, "redis", redis)
	logger.Info("redis connected",
		"pool_size", cfg.Redis.PoolSize,
	)

	storage := core.NewStorage(cfg.Storage)
	logger.Info("object storage configured",
		"bucket", storage.Bucket(),
		"endpoint", cfg.Storage.Endpoint,
	)

	codec, err := auth.NewTokenCodec(cfg.JWT)
	if err != nil {
		return err
	}
	logger.Info("token codec initialized",
		"algorithm", "HS256",
		"access_ttl", codec.AccessTTL(),
		"refresh_ttl", codec.RefreshTTL(),
	)

	uploads := media.NewService(storage, cfg.Storage.MaxUploadSize)

	userRepo := user.NewRepository(db.DB)
	userSvc := user.NewService(userRepo, uploads)

	blacklist := auth.NewBlacklist(redis.Client)
	sessions := auth.NewSessionManager(codec, userSvc, logger)
	authSvc := auth.NewService(sessions, userSvc, blacklist)
	authHandler := auth.NewHandler(authSvc)

	userHandler := user.NewHandler(userSvc, authSvc)

	postSvc := post.NewService(post.NewRepository(db.DB), userSvc, uploads)
	postHandler := post.NewHandler(postSvc, uploads)

	commentSvc := comment.NewService(comment.NewRepository(db.DB), postSvc, userSvc)
	commentHandler := comment.NewHandler(commentSvc)

	likeSvc := like.NewService(like.NewRepository(db.DB), postSvc)
	likeHandler := like.NewHandler(likeSvc)

	docsHandler := docs.NewHandler()

	healthHandler := health.NewHandler(
		health.Probe{Name: "database", Checker: db},
		health.Probe{Name: "redis", Checker: redis},
		health.Probe{Name: "storage", Checker: storage},
	)

	adminHandler := admin.NewHandler(admin.Sources{
		Content:     admin.NewRepository(db.DB),
		DBStats:     db.Stats,
		RedisStats:  redis.PoolStats,
		DBPing:      db.Ping,
		RedisPing:   redis.Ping,
		StoragePing: storage.Ping,
		SchemaVersion: func(ctx context.Context) (int64, error) {
			return migrations.Version(ctx, db.DB.DB)
		},
	})

	srv := server.New(server.Config{
		ServerConfig:  cfg.Server,
		HealthHandler: healthHandler,
		Logger:        logger,
		ServiceName:   cfg.Otel.ServiceName,
	})

	router := srv.Router()

	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(logger))
	if cfg.Metrics.Enabled {
		router.Use(metrics.Middleware)
	}
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
	docsHandler.RegisterRoutes(router)

	if cfg.Metrics.Enabled {
		router.Handle(cfg.Metrics.Path, metrics.Handler())
	}

	authenticator := middleware.Authenticator(codec, blacklist)
	optionalAuth := middleware.OptionalAuth(codec)
	adminOnly := middleware.RequireAdmin(userSvc)
	authThrottle := middleware.NewRateLimiter(
		redis.Client,
		middleware.RateLimitConfig{
			Limit:    middleware.PerMinute(cfg.RateLimit.AuthRequests, cfg.RateLimit.AuthRequests),
			KeyFunc:  middleware.KeyByIPAndEndpoint,
			FailOpen: true,
		},
	).Handler

	router.Route("/v1", func(r chi.Router) {
		authHandler.RegisterRoutes(r, authenticator, optionalAuth, authThrottle)

		userHandler.RegisterRoutes(r, authenticator)
		userHandler.RegisterAdminRoutes(r, authenticator, adminOnly)
		adminHandler.RegisterRoutes(r, authenticator, adminOnly)

		postHandler.RegisterRoutes(r, authenticator)
		commentHandler.RegisterRoutes(r, authenticator)
		likeHandler.RegisterRoutes(r, authenticator, optionalAuth)
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

	logger.Info("application stopped")
	return nil
}

func closeLogged(logger *slog.Logger, name string, c io.Closer) {
	if err := c.Close(); err != nil {
		logger.Error(name+" close error", "error", err)
	}
}

func setupLogger(cfg config.LogConfig) *slog.Logger {
	var handler slog.Handler

	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}

	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
