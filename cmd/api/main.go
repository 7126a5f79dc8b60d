package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/signup-service/internal/api/http"
	"github.com/spec-kit/signup-service/internal/api/http/handlers"
	"github.com/spec-kit/signup-service/internal/auth"
	"github.com/spec-kit/signup-service/internal/cache"
	"github.com/spec-kit/signup-service/internal/config"
	"github.com/spec-kit/signup-service/internal/events"
	"github.com/spec-kit/signup-service/internal/observability"
	"github.com/spec-kit/signup-service/internal/persistence"
	"github.com/spec-kit/signup-service/internal/repository"
	"github.com/spec-kit/signup-service/internal/service"
	"github.com/spec-kit/signup-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), cfg.Postgres.MigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()
	notifications := service.NewNotificationService(logger, metrics, cfg.Notification, cfg.App.IsDevelopment())
	notificationWorker := worker.StartNotificationWorker(dispatcher, notifications, logger, cfg.Notification.QueueSize)
	defer notificationWorker.Stop()

	pool := pg.PoolHandle()
	authCodeRepo := repository.NewAuthCodeRepository(pool)
	accountRepo := repository.NewAccountRepository(pool)
	store := cache.NewRedisStore(redis.Client)

	tokenManager, err := auth.NewTokenManager(auth.TokenManagerConfig{
		Secret:     cfg.Auth.JWTSecret,
		Algorithm:  cfg.Auth.JWTAlgorithm,
		Issuer:     cfg.App.BaseURL,
		AccessTTL:  cfg.Auth.AccessTokenTTL(),
		RefreshTTL: cfg.Auth.RefreshTokenTTL(),
	})
	if err != nil {
		logger.Fatal("failed to init token manager", zap.Error(err))
	}

	authCodeService := service.NewAuthCodeService(cfg.Auth, authCodeRepo, dispatcher, logger)
	tokenService := service.NewTokenService(tokenManager, store, logger)
	registrationService := service.NewRegistrationService(service.RegistrationDependencies{
		AuthCodes:  authCodeService,
		Accounts:   accountRepo,
		Cache:      store,
		Usernames:  service.NewUsernameAllocator(accountRepo, cfg.Auth.UsernameLength),
		Tokens:     tokenService,
		Dispatcher: dispatcher,
		Logger:     logger,
	})

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health: handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version,
			handlers.Dependency{Name: "postgres", Pinger: pg},
			handlers.Dependency{Name: "redis", Pinger: redis},
		),
		Auth:           handlers.NewAuthHandler(authCodeService, tokenService, metrics),
		Users:          handlers.NewUsersHandler(registrationService, metrics),
		AuthMiddleware: auth.NewAuthMiddleware(tokenService),
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Warn("shutdown", zap.Error(err))
	}
	logger.Info("shutdown complete", zap.Any("metrics", metrics.Snapshot()))
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
