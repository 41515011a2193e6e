package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/ciplastic/support-tickets/internal/backup"
	"github.com/ciplastic/support-tickets/internal/config"
	"github.com/ciplastic/support-tickets/internal/observability"
	"github.com/ciplastic/support-tickets/internal/persistence"
	"github.com/ciplastic/support-tickets/internal/repository"
)

// Runs a one-shot export of all tickets and comentarios. When
// BACKUP_SCHEDULE holds a cron expression the process stays up and exports
// on that schedule instead.
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

	pool := pg.PoolHandle()
	exporter := backup.NewExporter(
		repository.NewTicketRepository(pool),
		repository.NewComentarioRepository(pool),
		cfg.Backup.OutputDir,
		logger,
	)

	if cfg.Backup.Schedule == "" {
		if err := exporter.Run(ctx); err != nil {
			logger.Error("respaldo falló", zap.Error(err))
			os.Exit(1)
		}
		return
	}

	scheduler := cron.New()
	_, err = scheduler.AddFunc(cfg.Backup.Schedule, func() {
		if err := exporter.Run(ctx); err != nil {
			logger.Error("respaldo falló", zap.Error(err))
		}
	})
	if err != nil {
		logger.Fatal("invalid BACKUP_SCHEDULE", zap.Error(err))
	}

	scheduler.Start()
	logger.Info("backup scheduler started", zap.String("schedule", cfg.Backup.Schedule))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	<-scheduler.Stop().Done()
	logger.Info("backup scheduler stopped")
}
