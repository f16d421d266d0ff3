package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/ticket-desk/internal/api/http"
	"github.com/spec-kit/ticket-desk/internal/api/http/handlers"
	"github.com/spec-kit/ticket-desk/internal/auth"
	"github.com/spec-kit/ticket-desk/internal/clock"
	"github.com/spec-kit/ticket-desk/internal/config"
	"github.com/spec-kit/ticket-desk/internal/events"
	"github.com/spec-kit/ticket-desk/internal/observability"
	"github.com/spec-kit/ticket-desk/internal/persistence"
	"github.com/spec-kit/ticket-desk/internal/repository"
	"github.com/spec-kit/ticket-desk/internal/service"
	"github.com/spec-kit/ticket-desk/internal/timefmt"
	"github.com/spec-kit/ticket-desk/internal/worker"
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

	kv, err := persistence.Open(ctx, *cfg, logger)
	if err != nil {
		logger.Fatal("failed to open store", zap.String("driver", cfg.Store.Driver), zap.Error(err))
	}
	defer kv.Close()

	loc, err := cfg.Display.Location()
	if err != nil {
		logger.Fatal("invalid display timezone", zap.Error(err))
	}

	clk := clock.Real()
	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()
	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	worker.StartNotificationWorker(notificationService)

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes, clk)
	authService := service.NewAuthService(service.AuthDependencies{
		Store:      kv,
		Identity:   service.NewMockIdentityProvider(clk, cfg.Auth.SimulatedDelay()),
		Tokens:     tokens,
		Dispatcher: dispatcher,
		Clock:      clk,
		Logger:     logger,
	})
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo: repository.NewTicketRepository(kv, clk, logger),
		Dispatcher: dispatcher,
		Clock:      clk,
		Logger:     logger,
	})
	prefs := repository.NewPreferencesRepository(kv, logger)
	formatter := timefmt.NewFormatter(clk, loc)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, cfg.Store.Driver, kv, metrics),
		Users:          handlers.NewUsersHandler(authService, ticketService, formatter),
		Tickets:        handlers.NewTicketsHandler(ticketService, prefs, formatter),
		Dashboard:      handlers.NewDashboardHandler(ticketService, formatter),
		Preferences:    handlers.NewPreferencesHandler(prefs),
		Admin:          handlers.NewAdminHandler(ticketService, formatter),
		AuthMiddleware: auth.NewAuthMiddleware(tokens, authService),
	})

	syncDone := worker.StartStoreSync(ctx, clk, cfg.Store.SyncInterval(), ticketService, logger)

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	cancel()
	<-syncDone
	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
