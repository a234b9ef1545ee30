package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/digsafe/locate-ticket-service/internal/api/http"
	"github.com/digsafe/locate-ticket-service/internal/api/http/handlers"
	"github.com/digsafe/locate-ticket-service/internal/auth"
	"github.com/digsafe/locate-ticket-service/internal/cache"
	"github.com/digsafe/locate-ticket-service/internal/config"
	"github.com/digsafe/locate-ticket-service/internal/events"
	"github.com/digsafe/locate-ticket-service/internal/observability"
	"github.com/digsafe/locate-ticket-service/internal/persistence"
	"github.com/digsafe/locate-ticket-service/internal/repository"
	"github.com/digsafe/locate-ticket-service/internal/service"
	"github.com/digsafe/locate-ticket-service/internal/worker"
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
	ticketRepo := repository.NewTicketRepository(pool)
	responseRepo := repository.NewResponseRepository(pool)
	historyRepo := repository.NewTicketHistoryRepository(pool)

	ticketCache := cache.NewTicketCache(redis, cfg.Cache.TicketTTL(), logger)
	resetStore := auth.NewPasswordResetStore(redis, cfg.Auth.PasswordResetTTLMinutes)
	dispatcher := events.NewInMemoryDispatcher()

	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		UserRepo:   userRepo,
		ResetStore: resetStore,
	})
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo:   ticketRepo,
		ResponseRepo: responseRepo,
		HistoryRepo:  historyRepo,
		TicketCache:  ticketCache,
		Dispatcher:   dispatcher,
	})
	responseService := service.NewResponseService(service.ResponseDependencies{
		TicketRepo:   ticketRepo,
		ResponseRepo: responseRepo,
		HistoryRepo:  historyRepo,
		TicketCache:  ticketCache,
		Dispatcher:   dispatcher,
		Logger:       logger,
	})
	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	worker.StartNotificationWorker(notificationService)

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), userRepo)
	metrics := observability.NewMetrics()

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Users:          handlers.NewUsersHandler(authService),
		Tickets:        handlers.NewTicketsHandler(ticketService),
		Responses:      handlers.NewResponsesHandler(responseService, ticketService),
		Members:        handlers.NewMembersHandler(ticketService),
		Metrics:        handlers.NewMetricsHandler(metrics),
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
