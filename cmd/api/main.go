package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/ciplastic/support-tickets/internal/api/http"
	"github.com/ciplastic/support-tickets/internal/api/http/handlers"
	"github.com/ciplastic/support-tickets/internal/config"
	"github.com/ciplastic/support-tickets/internal/email"
	"github.com/ciplastic/support-tickets/internal/events"
	"github.com/ciplastic/support-tickets/internal/observability"
	"github.com/ciplastic/support-tickets/internal/persistence"
	"github.com/ciplastic/support-tickets/internal/repository"
	"github.com/ciplastic/support-tickets/internal/service"
	"github.com/ciplastic/support-tickets/internal/storage"
	"github.com/ciplastic/support-tickets/internal/worker"
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

	if err := cfg.RequirePostgres(); err != nil {
		logger.Fatal("missing database credentials", zap.Error(err))
	}

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

	uploader, err := storage.NewUploader(cfg.Storage)
	if err != nil {
		logger.Fatal("failed to init object storage", zap.Error(err))
	}

	mailer := email.NewResendClient(cfg.Resend)
	dispatcher := events.NewDispatcher(redis, logger)

	notificationWorker := worker.NewNotificationWorker(mailer, logger)
	notificationWorker.Register(dispatcher)

	pool := pg.PoolHandle()
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo:     repository.NewTicketRepository(pool),
		ComentarioRepo: repository.NewComentarioRepository(pool),
		Uploader:       uploader,
		Dispatcher:     dispatcher,
	})

	metrics := observability.NewMetrics()

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis, uploader),
		Tickets:        handlers.NewTicketsHandler(ticketService),
		Comentarios:    handlers.NewComentariosHandler(ticketService),
		Notificaciones: handlers.NewNotificacionesHandler(mailer),
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
