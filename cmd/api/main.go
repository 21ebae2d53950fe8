package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/gavelworks/auction-service/internal/api/http"
	"github.com/gavelworks/auction-service/internal/api/http/handlers"
	"github.com/gavelworks/auction-service/internal/auth"
	"github.com/gavelworks/auction-service/internal/config"
	"github.com/gavelworks/auction-service/internal/events"
	"github.com/gavelworks/auction-service/internal/observability"
	"github.com/gavelworks/auction-service/internal/persistence"
	"github.com/gavelworks/auction-service/internal/repository"
	"github.com/gavelworks/auction-service/internal/service"
	"github.com/gavelworks/auction-service/internal/session"
	"github.com/gavelworks/auction-service/internal/worker"
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
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	auctionRepo := repository.NewAuctionRepository(pool)
	lotRepo := repository.NewLotRepository(pool)
	bidRepo := repository.NewBidRepository(pool)

	sessions := session.NewStore(redis.Client, cfg.Auth.SessionTTL())
	dispatcher := events.NewInMemoryDispatcher()
	metrics := observability.NewMetrics()

	authService := service.NewAuthService(*cfg, userRepo, sessions)
	auctionService := service.NewAuctionService(auctionRepo, dispatcher)
	lotService := service.NewLotService(auctionRepo, lotRepo, bidRepo, dispatcher)
	activityService := service.NewActivityService(lotRepo, auctionRepo)
	reportService := service.NewReportService(lotRepo, auctionRepo, userRepo)
	adminService := service.NewAdminService(userRepo)
	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notify)

	worker.StartNotificationWorker(notificationService)

	if err := authService.EnsureAdmin(ctx); err != nil {
		logger.Fatal("failed to seed admin account", zap.Error(err))
	}

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), userRepo, sessions)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:           handlers.NewAuthHandler(authService),
		Auctions:       handlers.NewAuctionsHandler(auctionService),
		Lots:           handlers.NewLotsHandler(lotService, metrics),
		Activity:       handlers.NewActivityHandler(activityService),
		Reports:        handlers.NewReportsHandler(reportService),
		Admin:          handlers.NewAdminHandler(adminService),
		AuthMiddleware: authMiddleware,
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
