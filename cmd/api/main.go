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

	httptransport "github.com/launchlist/waitlist-service/internal/api/http"
	"github.com/launchlist/waitlist-service/internal/api/http/handlers"
	"github.com/launchlist/waitlist-service/internal/auth"
	"github.com/launchlist/waitlist-service/internal/config"
	"github.com/launchlist/waitlist-service/internal/events"
	"github.com/launchlist/waitlist-service/internal/observability"
	"github.com/launchlist/waitlist-service/internal/persistence"
	"github.com/launchlist/waitlist-service/internal/repository"
	"github.com/launchlist/waitlist-service/internal/service"
	"github.com/launchlist/waitlist-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
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
		if err := persistence.RunMigrations(pg.DSN(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()

	forwarder := worker.ConnectForwarder(cfg.Events, logger)
	defer forwarder.Close() //nolint:errcheck
	var forward events.EventHandler
	if forwarder != nil {
		forward = forwarder.Handle
	}
	worker.StartNotificationWorker(service.NewNotificationService(dispatcher, logger, metrics, forward))

	tokens, err := auth.NewTokenManager(cfg.Admin.SessionSecret, cfg.Admin.SessionTTL())
	if err != nil {
		logger.Fatal("failed to init session tokens", zap.Error(err))
	}

	signupRepo := repository.NewSignupRepository(pg.PoolHandle())
	signupService := service.NewSignupService(signupRepo, dispatcher, logger, cfg.Waitlist.SuccessMessage)
	analyticsService := service.NewAnalyticsService(signupRepo, cfg.Waitlist.Location(), cfg.Waitlist.DefaultTrailingDay, logger)
	adminService := service.NewAdminAuthService(*cfg, service.AdminAuthDependencies{
		Tokens:      tokens,
		Attempts:    repository.NewLoginAttemptRepository(redis),
		Revocations: repository.NewSessionRevocationRepository(redis),
		Dispatcher:  dispatcher,
		Logger:      logger,
	})
	sessionMiddleware := auth.NewSessionMiddleware(adminService, cfg.Admin.CookieName)

	app := fiber.New(httptransport.NewFiberConfig(cfg.App))
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health: handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, map[string]handlers.Pinger{
			"postgres": pg,
			"redis":    redis,
		}),
		Signups:        handlers.NewSignupHandler(signupService),
		Admin:          handlers.NewAdminHandler(adminService, analyticsService, metrics, cfg.Admin, sessionMiddleware.TokenFromRequest),
		AuthMiddleware: sessionMiddleware,
		AdminPrincipal: adminService.Principal(),
	})

	go func() {
		logger.Info("listening", zap.String("addr", cfg.App.Addr()))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Warn("shutdown incomplete", zap.Error(err))
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
