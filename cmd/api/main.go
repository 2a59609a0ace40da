package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/auth-service/internal/api/http"
	"github.com/spec-kit/auth-service/internal/api/http/handlers"
	"github.com/spec-kit/auth-service/internal/auth"
	"github.com/spec-kit/auth-service/internal/config"
	"github.com/spec-kit/auth-service/internal/events"
	"github.com/spec-kit/auth-service/internal/mail"
	"github.com/spec-kit/auth-service/internal/observability"
	"github.com/spec-kit/auth-service/internal/persistence"
	"github.com/spec-kit/auth-service/internal/repository"
	"github.com/spec-kit/auth-service/internal/secrets"
	"github.com/spec-kit/auth-service/internal/service"
	"github.com/spec-kit/auth-service/internal/worker"
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

	metrics := observability.NewMetrics()

	// No signing material, no service: this is the one fatal path of the
	// secret store.
	secretStore, err := secrets.NewStore(cfg.Auth.SecretsPath, logger, metrics)
	if err != nil {
		logger.Fatal("failed to load signing material", zap.Error(err))
	}
	if err := secretStore.Watch(ctx, cfg.Auth.ReloadDebounce()); err != nil {
		logger.Fatal("failed to start secrets watcher", zap.Error(err))
	}

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	userRepo := repository.NewUserRepository(pg.PoolHandle())
	resetRepo := repository.NewResetTokenRepository(redis.Client)

	tokenManager, err := auth.NewTokenManager(secretStore, userRepo)
	if err != nil {
		logger.Fatal("failed to build token manager", zap.Error(err))
	}

	dispatcher := events.NewInMemoryDispatcher(logger)
	mailer := mail.NewMailer(cfg.Mail, logger)
	notificationService := service.NewNotificationService(dispatcher, mailer, logger)
	worker.StartNotificationWorker(notificationService)

	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		UserRepo:     userRepo,
		ResetRepo:    resetRepo,
		TokenManager: tokenManager,
		Dispatcher:   dispatcher,
		Metrics:      metrics,
		Logger:       logger,
	})
	userService := service.NewUserService(userRepo, dispatcher, logger)

	if pg.PoolHandle() != nil {
		if err := authService.EnsureDefaultUser(ctx, cfg.DefaultUser); err != nil {
			logger.Fatal("default user bootstrap failed", zap.Error(err))
		}
	} else {
		logger.Warn("no database configured, skipping default user bootstrap")
	}

	gate := auth.NewMiddleware(tokenManager, metrics)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health: handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:   handlers.NewAuthHandler(authService, cfg.App.Version),
		Users:  handlers.NewUsersHandler(userService, authService),
		Admin:  handlers.NewAdminHandler(userService),
		Gate:   gate,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
